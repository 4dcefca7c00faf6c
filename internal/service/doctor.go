package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"medibook/config"
	"medibook/internal/domain"
	"medibook/internal/repository"
	"medibook/internal/storage"
)

type DoctorServiceImpl struct {
	repo        repository.DoctorRepository
	userRepo    repository.UserRepository
	schedule    ScheduleService
	fileStorage storage.FileStorage
	cfg         config.ScheduleConfig
	logger      *zap.Logger
}

func NewDoctorService(repo repository.DoctorRepository, userRepo repository.UserRepository, schedule ScheduleService, fileStorage storage.FileStorage, cfg config.ScheduleConfig, logger *zap.Logger) *DoctorServiceImpl {
	return &DoctorServiceImpl{
		repo:        repo,
		userRepo:    userRepo,
		schedule:    schedule,
		fileStorage: fileStorage,
		cfg:         cfg,
		logger:      logger,
	}
}

func (s *DoctorServiceImpl) Create(ctx context.Context, dto domain.CreateDoctorDTO) (int64, error) {
	user, err := s.userRepo.GetByID(ctx, dto.UserID)
	if err != nil {
		return 0, domain.ErrUserNotFound
	}

	if user.Role != domain.UserRoleDoctor {
		return 0, errors.New("пользователь не имеет роли врача")
	}

	existing, err := s.repo.GetByUserID(ctx, dto.UserID)
	if err == nil && existing != nil {
		return 0, errors.New("профиль врача для этого пользователя уже существует")
	}

	slots := domain.WeeklySlots(dto.AvailableDays, domain.DefaultWorkingHours, s.cfg.SlotInterval)

	id, err := s.repo.Create(ctx, dto, slots)
	if err != nil {
		s.logger.Error("ошибка при создании профиля врача", zap.Int64("userId", dto.UserID), zap.Error(err))
		return 0, errors.New("ошибка при создании профиля врача")
	}

	return id, nil
}

func (s *DoctorServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Doctor, error) {
	doctor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.ErrDoctorNotFound
	}

	return doctor, nil
}

func (s *DoctorServiceImpl) GetByUserID(ctx context.Context, userID int64) (*domain.Doctor, error) {
	doctor, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, domain.ErrDoctorNotFound
	}

	return doctor, nil
}

func (s *DoctorServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateDoctorDTO) error {
	_, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ErrDoctorNotFound
	}

	if err := s.repo.Update(ctx, id, dto); err != nil {
		s.logger.Error("ошибка при обновлении профиля врача", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при обновлении профиля врача")
	}

	// Смена дней приема перестраивает недельную сетку. Занятые слоты
	// сохранившихся дней остаются, слоты убранных дней удаляются.
	if dto.AvailableDays != nil {
		slots := domain.WeeklySlots(*dto.AvailableDays, domain.DefaultWorkingHours, s.cfg.SlotInterval)
		if err := s.repo.ReplaceSlots(ctx, id, slots); err != nil {
			s.logger.Error("ошибка при перестроении сетки слотов", zap.Int64("id", id), zap.Error(err))
			return errors.New("ошибка при обновлении расписания врача")
		}

		s.schedule.InvalidateCache(ctx, id)
	}

	return nil
}

func (s *DoctorServiceImpl) List(ctx context.Context, filter domain.DoctorFilter) ([]domain.Doctor, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	doctors, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка при получении списка врачей", zap.Error(err))
		return nil, 0, errors.New("ошибка при получении списка врачей")
	}

	total, err := s.repo.CountByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка при подсчете врачей", zap.Error(err))
		return nil, 0, errors.New("ошибка при получении списка врачей")
	}

	return doctors, total, nil
}

func (s *DoctorServiceImpl) UploadProfilePhoto(ctx context.Context, doctorID int64, photo []byte, filename string) error {
	doctor, err := s.repo.GetByID(ctx, doctorID)
	if err != nil {
		return domain.ErrDoctorNotFound
	}

	if s.fileStorage == nil {
		return errors.New("файловое хранилище не настроено")
	}

	url, err := s.fileStorage.UploadFile(ctx, photo, filename)
	if err != nil {
		s.logger.Error("ошибка загрузки фото врача", zap.Int64("doctorId", doctorID), zap.Error(err))
		return errors.New("ошибка при загрузке фото")
	}

	if doctor.PhotoURL != "" {
		if err := s.fileStorage.DeleteFile(ctx, doctor.PhotoURL); err != nil {
			s.logger.Warn("не удалось удалить старое фото", zap.Int64("doctorId", doctorID), zap.Error(err))
		}
	}

	if err := s.repo.UpdatePhoto(ctx, doctorID, url); err != nil {
		s.logger.Error("ошибка сохранения URL фото", zap.Int64("doctorId", doctorID), zap.Error(err))
		return errors.New("ошибка при загрузке фото")
	}

	return nil
}

func (s *DoctorServiceImpl) DeleteProfilePhoto(ctx context.Context, doctorID int64) error {
	doctor, err := s.repo.GetByID(ctx, doctorID)
	if err != nil {
		return domain.ErrDoctorNotFound
	}

	if doctor.PhotoURL == "" {
		return nil
	}

	if s.fileStorage != nil {
		if err := s.fileStorage.DeleteFile(ctx, doctor.PhotoURL); err != nil {
			s.logger.Warn("не удалось удалить фото из хранилища", zap.Int64("doctorId", doctorID), zap.Error(err))
		}
	}

	if err := s.repo.UpdatePhoto(ctx, doctorID, ""); err != nil {
		s.logger.Error("ошибка очистки URL фото", zap.Int64("doctorId", doctorID), zap.Error(err))
		return errors.New("ошибка при удалении фото")
	}

	return nil
}
