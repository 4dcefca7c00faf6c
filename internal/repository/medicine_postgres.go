package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medibook/internal/domain"
)

type MedicineRepo struct {
	db *pgxpool.Pool
}

func NewMedicineRepository(db *pgxpool.Pool) *MedicineRepo {
	return &MedicineRepo{
		db: db,
	}
}

func (r *MedicineRepo) Create(ctx context.Context, addedBy int64, dto domain.CreateMedicineDTO) (int64, error) {
	prescriptionRequired := true
	if dto.PrescriptionRequired != nil {
		prescriptionRequired = *dto.PrescriptionRequired
	}

	category := dto.Category
	if category == "" {
		category = domain.MedicineCategoryOther
	}

	query := `
		INSERT INTO medicines (name, generic_name, manufacturer, dosage_form, strength, price, stock, expiry_date, prescription_required, category, side_effects, added_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		RETURNING id
	`

	now := time.Now()
	var id int64
	err := r.db.QueryRow(ctx, query,
		dto.Name,
		dto.GenericName,
		dto.Manufacturer,
		dto.DosageForm,
		dto.Strength,
		dto.Price,
		dto.Stock,
		dto.ExpiryDate,
		prescriptionRequired,
		category,
		dto.SideEffects,
		addedBy,
		now,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания препарата: %w", err)
	}

	return id, nil
}

func (r *MedicineRepo) GetByID(ctx context.Context, id int64) (*domain.Medicine, error) {
	query := `
		SELECT id, name, generic_name, manufacturer, dosage_form, strength, price, stock, expiry_date, prescription_required, category, side_effects, added_by, created_at, updated_at
		FROM medicines
		WHERE id = $1
	`

	var medicine domain.Medicine
	err := r.db.QueryRow(ctx, query, id).Scan(
		&medicine.ID,
		&medicine.Name,
		&medicine.GenericName,
		&medicine.Manufacturer,
		&medicine.DosageForm,
		&medicine.Strength,
		&medicine.Price,
		&medicine.Stock,
		&medicine.ExpiryDate,
		&medicine.PrescriptionRequired,
		&medicine.Category,
		&medicine.SideEffects,
		&medicine.AddedBy,
		&medicine.CreatedAt,
		&medicine.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMedicineNotFound
		}
		return nil, fmt.Errorf("ошибка получения препарата: %w", err)
	}

	return &medicine, nil
}

func (r *MedicineRepo) Update(ctx context.Context, id int64, dto domain.UpdateMedicineDTO) error {
	var updateFields []string
	var args []interface{}

	argCount := 1

	if dto.GenericName != nil {
		updateFields = append(updateFields, fmt.Sprintf("generic_name = $%d", argCount))
		args = append(args, *dto.GenericName)
		argCount++
	}

	if dto.Manufacturer != nil {
		updateFields = append(updateFields, fmt.Sprintf("manufacturer = $%d", argCount))
		args = append(args, *dto.Manufacturer)
		argCount++
	}

	if dto.Strength != nil {
		updateFields = append(updateFields, fmt.Sprintf("strength = $%d", argCount))
		args = append(args, *dto.Strength)
		argCount++
	}

	if dto.Price != nil {
		updateFields = append(updateFields, fmt.Sprintf("price = $%d", argCount))
		args = append(args, *dto.Price)
		argCount++
	}

	if dto.ExpiryDate != nil {
		updateFields = append(updateFields, fmt.Sprintf("expiry_date = $%d", argCount))
		args = append(args, *dto.ExpiryDate)
		argCount++
	}

	if dto.PrescriptionRequired != nil {
		updateFields = append(updateFields, fmt.Sprintf("prescription_required = $%d", argCount))
		args = append(args, *dto.PrescriptionRequired)
		argCount++
	}

	if dto.Category != nil {
		updateFields = append(updateFields, fmt.Sprintf("category = $%d", argCount))
		args = append(args, *dto.Category)
		argCount++
	}

	if dto.SideEffects != nil {
		updateFields = append(updateFields, fmt.Sprintf("side_effects = $%d", argCount))
		args = append(args, *dto.SideEffects)
		argCount++
	}

	if len(updateFields) == 0 {
		return nil
	}

	updateFields = append(updateFields, fmt.Sprintf("updated_at = $%d", argCount))
	args = append(args, time.Now())
	argCount++

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE medicines
		SET %s
		WHERE id = $%d
	`, strings.Join(updateFields, ", "), argCount)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления препарата: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrMedicineNotFound
	}

	return nil
}

// UpdateStock меняет остаток на delta одним условным UPDATE: уход в
// минус отсекается на уровне запроса, а не чтением с последующей записью.
func (r *MedicineRepo) UpdateStock(ctx context.Context, id int64, delta int) (int, error) {
	query := `
		UPDATE medicines
		SET stock = stock + $1, updated_at = $2
		WHERE id = $3 AND stock + $1 >= 0
		RETURNING stock
	`

	var stock int
	err := r.db.QueryRow(ctx, query, delta, time.Now(), id).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrMedicineNotFound
		}
		return 0, fmt.Errorf("ошибка обновления остатка: %w", err)
	}

	return stock, nil
}

func (r *MedicineRepo) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM medicines WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления препарата: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrMedicineNotFound
	}

	return nil
}

func (r *MedicineRepo) List(ctx context.Context, filter domain.MedicineFilter) ([]domain.Medicine, error) {
	baseQuery := `
		SELECT id, name, generic_name, manufacturer, dosage_form, strength, price, stock, expiry_date, prescription_required, category, side_effects, added_by, created_at, updated_at
		FROM medicines
	`

	conditions, args := medicineFilterConditions(filter)

	query := baseQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY name"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	medicines := make([]domain.Medicine, 0)
	for rows.Next() {
		var medicine domain.Medicine
		if err := rows.Scan(
			&medicine.ID,
			&medicine.Name,
			&medicine.GenericName,
			&medicine.Manufacturer,
			&medicine.DosageForm,
			&medicine.Strength,
			&medicine.Price,
			&medicine.Stock,
			&medicine.ExpiryDate,
			&medicine.PrescriptionRequired,
			&medicine.Category,
			&medicine.SideEffects,
			&medicine.AddedBy,
			&medicine.CreatedAt,
			&medicine.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки препарата: %w", err)
		}
		medicines = append(medicines, medicine)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return medicines, nil
}

func (r *MedicineRepo) CountByFilter(ctx context.Context, filter domain.MedicineFilter) (int, error) {
	query := `SELECT COUNT(*) FROM medicines`

	conditions, args := medicineFilterConditions(filter)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета препаратов: %w", err)
	}

	return count, nil
}

func medicineFilterConditions(filter domain.MedicineFilter) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR generic_name ILIKE $%d)", argCount, argCount))
		args = append(args, "%"+*filter.Search+"%")
		argCount++
	}

	if filter.PrescriptionRequired != nil {
		conditions = append(conditions, fmt.Sprintf("prescription_required = $%d", argCount))
		args = append(args, *filter.PrescriptionRequired)
		argCount++
	}

	if filter.InStock != nil {
		if *filter.InStock {
			conditions = append(conditions, "stock > 0")
		} else {
			conditions = append(conditions, "stock <= 0")
		}
	}

	return conditions, args
}
