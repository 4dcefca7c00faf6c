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

type DoctorRepo struct {
	db *pgxpool.Pool
}

func NewDoctorRepository(db *pgxpool.Pool) *DoctorRepo {
	return &DoctorRepo{
		db: db,
	}
}

const insertSlotQuery = `
	INSERT INTO doctor_slots (doctor_id, day, start_time, is_booked)
	VALUES ($1, $2, $3, FALSE)
	ON CONFLICT (doctor_id, day, start_time) DO NOTHING
`

func (r *DoctorRepo) Create(ctx context.Context, dto domain.CreateDoctorDTO, slots []domain.Slot) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO doctors (user_id, specialization, qualifications, experience_years, consultation_fee, available_days, hospital, license_number, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id
	`

	now := time.Now()
	var id int64
	err = tx.QueryRow(ctx, query,
		dto.UserID,
		dto.Specialization,
		dto.Qualifications,
		dto.ExperienceYears,
		dto.ConsultationFee,
		dto.AvailableDays,
		dto.Hospital,
		dto.LicenseNumber,
		5.0,
		now,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания врача: %w", err)
	}

	for _, slot := range slots {
		if _, err := tx.Exec(ctx, insertSlotQuery, id, slot.Day, slot.Time); err != nil {
			return 0, fmt.Errorf("ошибка создания слота %s %s: %w", slot.Day, slot.Time, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	return id, nil
}

func (r *DoctorRepo) GetByID(ctx context.Context, id int64) (*domain.Doctor, error) {
	query := `
		SELECT d.id, d.user_id, d.specialization, d.qualifications, d.experience_years, d.consultation_fee, d.available_days, d.hospital, d.license_number, d.rating, d.photo_url, d.created_at, d.updated_at,
		       u.first_name, u.last_name, u.phone
		FROM doctors d
		JOIN users u ON d.user_id = u.id
		WHERE d.id = $1
	`

	return r.scanDoctor(r.db.QueryRow(ctx, query, id))
}

func (r *DoctorRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Doctor, error) {
	query := `
		SELECT d.id, d.user_id, d.specialization, d.qualifications, d.experience_years, d.consultation_fee, d.available_days, d.hospital, d.license_number, d.rating, d.photo_url, d.created_at, d.updated_at,
		       u.first_name, u.last_name, u.phone
		FROM doctors d
		JOIN users u ON d.user_id = u.id
		WHERE d.user_id = $1
	`

	return r.scanDoctor(r.db.QueryRow(ctx, query, userID))
}

func (r *DoctorRepo) scanDoctor(row pgx.Row) (*domain.Doctor, error) {
	var doctor domain.Doctor
	var firstName, lastName string
	var hospital, photoURL *string

	err := row.Scan(
		&doctor.ID,
		&doctor.UserID,
		&doctor.Specialization,
		&doctor.Qualifications,
		&doctor.ExperienceYears,
		&doctor.ConsultationFee,
		&doctor.AvailableDays,
		&hospital,
		&doctor.LicenseNumber,
		&doctor.Rating,
		&photoURL,
		&doctor.CreatedAt,
		&doctor.UpdatedAt,
		&firstName,
		&lastName,
		&doctor.Phone,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDoctorNotFound
		}
		return nil, fmt.Errorf("ошибка получения врача: %w", err)
	}

	if hospital != nil {
		doctor.Hospital = *hospital
	}
	if photoURL != nil {
		doctor.PhotoURL = *photoURL
	}
	doctor.FullName = firstName + " " + lastName

	return &doctor, nil
}

func (r *DoctorRepo) Update(ctx context.Context, id int64, dto domain.UpdateDoctorDTO) error {
	var updateFields []string
	var args []interface{}

	argCount := 1

	if dto.Specialization != nil {
		updateFields = append(updateFields, fmt.Sprintf("specialization = $%d", argCount))
		args = append(args, *dto.Specialization)
		argCount++
	}

	if dto.Qualifications != nil {
		updateFields = append(updateFields, fmt.Sprintf("qualifications = $%d", argCount))
		args = append(args, *dto.Qualifications)
		argCount++
	}

	if dto.ExperienceYears != nil {
		updateFields = append(updateFields, fmt.Sprintf("experience_years = $%d", argCount))
		args = append(args, *dto.ExperienceYears)
		argCount++
	}

	if dto.ConsultationFee != nil {
		updateFields = append(updateFields, fmt.Sprintf("consultation_fee = $%d", argCount))
		args = append(args, *dto.ConsultationFee)
		argCount++
	}

	if dto.AvailableDays != nil {
		updateFields = append(updateFields, fmt.Sprintf("available_days = $%d", argCount))
		args = append(args, *dto.AvailableDays)
		argCount++
	}

	if dto.Hospital != nil {
		updateFields = append(updateFields, fmt.Sprintf("hospital = $%d", argCount))
		args = append(args, *dto.Hospital)
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
		UPDATE doctors
		SET %s
		WHERE id = $%d
	`, strings.Join(updateFields, ", "), argCount)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления врача: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrDoctorNotFound
	}

	return nil
}

func (r *DoctorRepo) ReplaceSlots(ctx context.Context, doctorID int64, slots []domain.Slot) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	days := make([]string, 0, len(slots))
	seen := make(map[string]bool)
	for _, slot := range slots {
		if !seen[slot.Day] {
			seen[slot.Day] = true
			days = append(days, slot.Day)
		}
	}

	// Свободные слоты пересоздаются; занятые выживают только в днях,
	// оставшихся в сетке. Записи на удаленные дни остаются в appointments
	// как долговременный след.
	deleteQuery := `
		DELETE FROM doctor_slots
		WHERE doctor_id = $1 AND (is_booked = FALSE OR day != ALL($2))
	`

	if _, err := tx.Exec(ctx, deleteQuery, doctorID, days); err != nil {
		return fmt.Errorf("ошибка очистки сетки слотов: %w", err)
	}

	for _, slot := range slots {
		if _, err := tx.Exec(ctx, insertSlotQuery, doctorID, slot.Day, slot.Time); err != nil {
			return fmt.Errorf("ошибка создания слота %s %s: %w", slot.Day, slot.Time, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	return nil
}

func (r *DoctorRepo) UpdatePhoto(ctx context.Context, id int64, photoURL string) error {
	query := `
		UPDATE doctors
		SET photo_url = NULLIF($1, ''), updated_at = $2
		WHERE id = $3
	`

	tag, err := r.db.Exec(ctx, query, photoURL, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка обновления фото врача: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrDoctorNotFound
	}

	return nil
}

func (r *DoctorRepo) List(ctx context.Context, filter domain.DoctorFilter) ([]domain.Doctor, error) {
	baseQuery := `
		SELECT d.id, d.user_id, d.specialization, d.qualifications, d.experience_years, d.consultation_fee, d.available_days, d.hospital, d.license_number, d.rating, d.photo_url, d.created_at, d.updated_at,
		       u.first_name, u.last_name, u.phone
		FROM doctors d
		JOIN users u ON d.user_id = u.id
	`

	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.Specialization != nil {
		conditions = append(conditions, fmt.Sprintf("d.specialization = $%d", argCount))
		args = append(args, *filter.Specialization)
		argCount++
	}

	query := baseQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY d.rating DESC, d.id"

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

	doctors := make([]domain.Doctor, 0)
	for rows.Next() {
		var doctor domain.Doctor
		var firstName, lastName string
		var hospital, photoURL *string

		if err := rows.Scan(
			&doctor.ID,
			&doctor.UserID,
			&doctor.Specialization,
			&doctor.Qualifications,
			&doctor.ExperienceYears,
			&doctor.ConsultationFee,
			&doctor.AvailableDays,
			&hospital,
			&doctor.LicenseNumber,
			&doctor.Rating,
			&photoURL,
			&doctor.CreatedAt,
			&doctor.UpdatedAt,
			&firstName,
			&lastName,
			&doctor.Phone,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки врача: %w", err)
		}

		if hospital != nil {
			doctor.Hospital = *hospital
		}
		if photoURL != nil {
			doctor.PhotoURL = *photoURL
		}
		doctor.FullName = firstName + " " + lastName

		doctors = append(doctors, doctor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return doctors, nil
}

func (r *DoctorRepo) CountByFilter(ctx context.Context, filter domain.DoctorFilter) (int, error) {
	query := `SELECT COUNT(*) FROM doctors`

	var args []interface{}
	if filter.Specialization != nil {
		query += " WHERE specialization = $1"
		args = append(args, *filter.Specialization)
	}

	var count int
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета врачей: %w", err)
	}

	return count, nil
}

func (r *DoctorRepo) GetSlots(ctx context.Context, doctorID int64) ([]domain.Slot, error) {
	query := `
		SELECT day, start_time, is_booked
		FROM doctor_slots
		WHERE doctor_id = $1
		ORDER BY array_position(ARRAY['Monday','Tuesday','Wednesday','Thursday','Friday','Saturday','Sunday'], day), start_time
	`

	rows, err := r.db.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения слотов врача: %w", err)
	}
	defer rows.Close()

	slots := make([]domain.Slot, 0)
	for rows.Next() {
		var slot domain.Slot
		if err := rows.Scan(&slot.Day, &slot.Time, &slot.IsBooked); err != nil {
			return nil, fmt.Errorf("ошибка сканирования слота: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return slots, nil
}
