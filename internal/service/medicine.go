package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"medibook/internal/domain"
	"medibook/internal/repository"
)

type MedicineServiceImpl struct {
	repo   repository.MedicineRepository
	logger *zap.Logger
}

func NewMedicineService(repo repository.MedicineRepository, logger *zap.Logger) *MedicineServiceImpl {
	return &MedicineServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

func (s *MedicineServiceImpl) Create(ctx context.Context, addedBy int64, dto domain.CreateMedicineDTO) (int64, error) {
	if !dto.ExpiryDate.After(time.Now()) {
		return 0, errors.New("срок годности препарата уже истек")
	}

	if dto.Category == "" {
		dto.Category = domain.MedicineCategoryOther
	}

	id, err := s.repo.Create(ctx, addedBy, dto)
	if err != nil {
		s.logger.Error("ошибка при добавлении препарата", zap.String("name", dto.Name), zap.Error(err))
		return 0, errors.New("ошибка при добавлении препарата")
	}

	return id, nil
}

func (s *MedicineServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Medicine, error) {
	medicine, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.ErrMedicineNotFound
	}

	return medicine, nil
}

func (s *MedicineServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateMedicineDTO) error {
	_, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ErrMedicineNotFound
	}

	if err := s.repo.Update(ctx, id, dto); err != nil {
		s.logger.Error("ошибка при обновлении препарата", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при обновлении препарата")
	}

	return nil
}

func (s *MedicineServiceImpl) UpdateStock(ctx context.Context, id int64, dto domain.UpdateStockDTO) (int, error) {
	_, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, domain.ErrMedicineNotFound
	}

	stock, err := s.repo.UpdateStock(ctx, id, dto.Delta)
	if err != nil {
		if errors.Is(err, domain.ErrMedicineNotFound) {
			return 0, errors.New("недостаточный остаток препарата")
		}
		s.logger.Error("ошибка при изменении остатка", zap.Int64("id", id), zap.Int("delta", dto.Delta), zap.Error(err))
		return 0, errors.New("ошибка при изменении остатка")
	}

	medicine, err := s.repo.GetByID(ctx, id)
	if err == nil && medicine.IsLowStock() {
		s.logger.Warn("низкий остаток препарата",
			zap.Int64("id", id),
			zap.String("name", medicine.Name),
			zap.Int("stock", stock))
	}

	return stock, nil
}

func (s *MedicineServiceImpl) Delete(ctx context.Context, id int64) error {
	_, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ErrMedicineNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("ошибка при удалении препарата", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при удалении препарата")
	}

	return nil
}

func (s *MedicineServiceImpl) List(ctx context.Context, filter domain.MedicineFilter) ([]domain.Medicine, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	medicines, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка при получении списка препаратов", zap.Error(err))
		return nil, 0, errors.New("ошибка при получении списка препаратов")
	}

	total, err := s.repo.CountByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка при подсчете препаратов", zap.Error(err))
		return nil, 0, errors.New("ошибка при получении списка препаратов")
	}

	return medicines, total, nil
}
