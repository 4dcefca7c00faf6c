package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"medibook/internal/domain"
	"medibook/internal/repository"
	"medibook/pkg/auth"
)

type UserServiceImpl struct {
	repo   repository.UserRepository
	logger *zap.Logger
}

func NewUserService(repo repository.UserRepository, logger *zap.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

func (s *UserServiceImpl) Create(ctx context.Context, dto domain.CreateUserDTO) (int64, error) {
	existingUser, err := s.repo.GetByEmail(ctx, dto.Email)
	if err == nil && existingUser != nil {
		return 0, errors.New("пользователь с таким email уже существует")
	}

	existingUser, err = s.repo.GetByPhone(ctx, dto.Phone)
	if err == nil && existingUser != nil {
		return 0, errors.New("пользователь с таким телефоном уже существует")
	}

	hashedPassword, err := auth.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("ошибка при хешировании пароля", zap.Error(err))
		return 0, errors.New("ошибка при создании пользователя")
	}
	dto.Password = hashedPassword

	id, err := s.repo.Create(ctx, dto)
	if err != nil {
		s.logger.Error("ошибка при создании пользователя", zap.Error(err))
		return 0, errors.New("ошибка при создании пользователя")
	}

	return id, nil
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	return user, nil
}

func (s *UserServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error {
	_, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	if dto.Email != nil {
		existingUser, err := s.repo.GetByEmail(ctx, *dto.Email)
		if err == nil && existingUser != nil && existingUser.ID != id {
			return errors.New("пользователь с таким email уже существует")
		}
	}

	if dto.Phone != nil {
		existingUser, err := s.repo.GetByPhone(ctx, *dto.Phone)
		if err == nil && existingUser != nil && existingUser.ID != id {
			return errors.New("пользователь с таким телефоном уже существует")
		}
	}

	if err := s.repo.Update(ctx, id, dto); err != nil {
		s.logger.Error("ошибка при обновлении пользователя", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при обновлении пользователя")
	}

	return nil
}

func (s *UserServiceImpl) UpdatePassword(ctx context.Context, id int64, dto domain.PasswordUpdateDTO) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ok, err := auth.VerifyPassword(dto.OldPassword, user.PasswordHash)
	if err != nil || !ok {
		return errors.New("неверный текущий пароль")
	}

	hashedPassword, err := auth.HashPassword(dto.NewPassword)
	if err != nil {
		s.logger.Error("ошибка при хешировании пароля", zap.Error(err))
		return errors.New("ошибка при смене пароля")
	}

	if err := s.repo.UpdatePassword(ctx, id, hashedPassword); err != nil {
		s.logger.Error("ошибка при смене пароля", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при смене пароля")
	}

	return nil
}

func (s *UserServiceImpl) Deactivate(ctx context.Context, id int64) error {
	_, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		s.logger.Error("ошибка при деактивации пользователя", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при деактивации пользователя")
	}

	return nil
}

func (s *UserServiceImpl) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("ошибка при получении списка пользователей", zap.Error(err))
		return nil, errors.New("ошибка при получении списка пользователей")
	}

	return users, nil
}
