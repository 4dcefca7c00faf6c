package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"medibook/internal/domain"
)

type fakeMedicineRepo struct {
	nextID    int64
	medicines map[int64]*domain.Medicine
}

func newFakeMedicineRepo() *fakeMedicineRepo {
	return &fakeMedicineRepo{medicines: make(map[int64]*domain.Medicine)}
}

func (r *fakeMedicineRepo) Create(ctx context.Context, addedBy int64, dto domain.CreateMedicineDTO) (int64, error) {
	r.nextID++
	r.medicines[r.nextID] = &domain.Medicine{
		ID:         r.nextID,
		Name:       dto.Name,
		Stock:      dto.Stock,
		Category:   dto.Category,
		ExpiryDate: dto.ExpiryDate,
		AddedBy:    addedBy,
	}
	return r.nextID, nil
}

func (r *fakeMedicineRepo) GetByID(ctx context.Context, id int64) (*domain.Medicine, error) {
	medicine, ok := r.medicines[id]
	if !ok {
		return nil, domain.ErrMedicineNotFound
	}
	copied := *medicine
	return &copied, nil
}

func (r *fakeMedicineRepo) Update(ctx context.Context, id int64, dto domain.UpdateMedicineDTO) error {
	if _, ok := r.medicines[id]; !ok {
		return domain.ErrMedicineNotFound
	}
	return nil
}

func (r *fakeMedicineRepo) UpdateStock(ctx context.Context, id int64, delta int) (int, error) {
	medicine, ok := r.medicines[id]
	if !ok || medicine.Stock+delta < 0 {
		return 0, domain.ErrMedicineNotFound
	}
	medicine.Stock += delta
	return medicine.Stock, nil
}

func (r *fakeMedicineRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.medicines[id]; !ok {
		return domain.ErrMedicineNotFound
	}
	delete(r.medicines, id)
	return nil
}

func (r *fakeMedicineRepo) List(ctx context.Context, filter domain.MedicineFilter) ([]domain.Medicine, error) {
	var result []domain.Medicine
	for _, medicine := range r.medicines {
		result = append(result, *medicine)
	}
	return result, nil
}

func (r *fakeMedicineRepo) CountByFilter(ctx context.Context, filter domain.MedicineFilter) (int, error) {
	return len(r.medicines), nil
}

func newMedicineService() (*MedicineServiceImpl, *fakeMedicineRepo) {
	repo := newFakeMedicineRepo()
	return NewMedicineService(repo, zap.NewNop()), repo
}

func TestMedicineCreate(t *testing.T) {
	svc, repo := newMedicineService()

	id, err := svc.Create(context.Background(), 1, domain.CreateMedicineDTO{
		Name:       "Парацетамол",
		ExpiryDate: time.Now().AddDate(1, 0, 0),
	})
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	medicine, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if medicine.Category != domain.MedicineCategoryOther {
		t.Errorf("пустая категория должна заменяться на other, получено %s", medicine.Category)
	}
}

func TestMedicineCreateExpired(t *testing.T) {
	svc, repo := newMedicineService()

	_, err := svc.Create(context.Background(), 1, domain.CreateMedicineDTO{
		Name:       "Просроченный",
		ExpiryDate: time.Now().AddDate(0, 0, -1),
	})
	if err == nil {
		t.Fatal("препарат с истекшим сроком годности не должен создаваться")
	}
	if len(repo.medicines) != 0 {
		t.Error("хранилище не должно содержать препарат")
	}
}

func TestMedicineUpdateStock(t *testing.T) {
	svc, _ := newMedicineService()

	id, err := svc.Create(context.Background(), 1, domain.CreateMedicineDTO{
		Name:       "Ибупрофен",
		Stock:      10,
		ExpiryDate: time.Now().AddDate(1, 0, 0),
	})
	if err != nil {
		t.Fatal(err)
	}

	stock, err := svc.UpdateStock(context.Background(), id, domain.UpdateStockDTO{Delta: -4})
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if stock != 6 {
		t.Errorf("ожидался остаток 6, получено %d", stock)
	}

	// Остаток не может стать отрицательным.
	if _, err := svc.UpdateStock(context.Background(), id, domain.UpdateStockDTO{Delta: -100}); err == nil {
		t.Fatal("ожидалась ошибка при уходе остатка в минус")
	}

	if _, err := svc.UpdateStock(context.Background(), 999, domain.UpdateStockDTO{Delta: 1}); !errors.Is(err, domain.ErrMedicineNotFound) {
		t.Fatalf("ожидалась ErrMedicineNotFound, получено %v", err)
	}
}

func TestMedicineIsLowStock(t *testing.T) {
	tests := []struct {
		stock int
		low   bool
	}{
		{0, true},
		{9, true},
		{10, false},
		{100, false},
	}

	for _, tt := range tests {
		medicine := domain.Medicine{Stock: tt.stock}
		if got := medicine.IsLowStock(); got != tt.low {
			t.Errorf("остаток %d: IsLowStock = %v, ожидалось %v", tt.stock, got, tt.low)
		}
	}
}
