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

type AppointmentRepo struct {
	db *pgxpool.Pool
}

func NewAppointmentRepository(db *pgxpool.Pool) *AppointmentRepo {
	return &AppointmentRepo{
		db: db,
	}
}

func (r *AppointmentRepo) Create(ctx context.Context, patientID int64, dto domain.CreateAppointmentDTO, fee float64, day, startTime string) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Захват слота и создание записи коммитятся вместе: если INSERT не
	// пройдет, откат транзакции вернет слоту is_booked = FALSE.
	if err := markBooked(ctx, tx, dto.DoctorID, day, startTime); err != nil {
		return 0, err
	}

	query := `
		INSERT INTO appointments (patient_id, doctor_id, date_time, duration_min, reason, notes, status, fee, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id
	`

	now := time.Now()
	var id int64
	err = tx.QueryRow(ctx, query,
		patientID,
		dto.DoctorID,
		dto.DateTime,
		30,
		dto.Reason,
		dto.Notes,
		domain.AppointmentStatusScheduled,
		fee,
		now,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания записи на прием: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	return id, nil
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	query := `
		SELECT a.id, a.patient_id, a.doctor_id, a.date_time, a.duration_min, a.reason, a.notes, a.status, a.fee, a.created_at, a.updated_at,
		       pu.first_name AS patient_first_name, pu.last_name AS patient_last_name,
		       du.first_name AS doctor_first_name, du.last_name AS doctor_last_name
		FROM appointments a
		JOIN users pu ON a.patient_id = pu.id
		JOIN doctors d ON a.doctor_id = d.id
		JOIN users du ON d.user_id = du.id
		WHERE a.id = $1
	`

	var appointment domain.Appointment
	var patientFirstName, patientLastName, doctorFirstName, doctorLastName string

	err := r.db.QueryRow(ctx, query, id).Scan(
		&appointment.ID,
		&appointment.PatientID,
		&appointment.DoctorID,
		&appointment.DateTime,
		&appointment.DurationMin,
		&appointment.Reason,
		&appointment.Notes,
		&appointment.Status,
		&appointment.Fee,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
		&patientFirstName,
		&patientLastName,
		&doctorFirstName,
		&doctorLastName,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("ошибка получения записи на прием: %w", err)
	}

	appointment.PatientName = patientFirstName + " " + patientLastName
	appointment.DoctorName = doctorFirstName + " " + doctorLastName

	return &appointment, nil
}

func (r *AppointmentRepo) Cancel(ctx context.Context, id, doctorID int64, day, startTime string) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	tag, err := tx.Exec(ctx, query,
		domain.AppointmentStatusCancelled,
		time.Now(),
		id,
		domain.AppointmentStatusScheduled,
	)
	if err != nil {
		return false, fmt.Errorf("ошибка отмены записи: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return false, domain.ErrAlreadyFinalized
	}

	// Статус записи считается главной частью отмены; расхождение сетки слотов
	// отмену не блокирует, вызывающий слой его логирует.
	slotFreed := true
	if err := markFree(ctx, tx, doctorID, day, startTime); err != nil {
		if !errors.Is(err, domain.ErrSlotNotFound) {
			return false, err
		}
		slotFreed = false
	}

	if err = tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	return slotFreed, nil
}

func (r *AppointmentRepo) Finalize(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	tag, err := r.db.Exec(ctx, query, status, time.Now(), id, domain.AppointmentStatusScheduled)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса записи: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyFinalized
	}

	return nil
}

func (r *AppointmentRepo) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	baseQuery := `
		SELECT a.id, a.patient_id, a.doctor_id, a.date_time, a.duration_min, a.reason, a.notes, a.status, a.fee, a.created_at, a.updated_at,
		       pu.first_name AS patient_first_name, pu.last_name AS patient_last_name,
		       du.first_name AS doctor_first_name, du.last_name AS doctor_last_name
		FROM appointments a
		JOIN users pu ON a.patient_id = pu.id
		JOIN doctors d ON a.doctor_id = d.id
		JOIN users du ON d.user_id = du.id
	`

	conditions, args := appointmentFilterConditions(filter, "a.")

	query := baseQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY a.date_time DESC"

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

	appointments := make([]domain.Appointment, 0)
	for rows.Next() {
		var appointment domain.Appointment
		var patientFirstName, patientLastName, doctorFirstName, doctorLastName string

		if err := rows.Scan(
			&appointment.ID,
			&appointment.PatientID,
			&appointment.DoctorID,
			&appointment.DateTime,
			&appointment.DurationMin,
			&appointment.Reason,
			&appointment.Notes,
			&appointment.Status,
			&appointment.Fee,
			&appointment.CreatedAt,
			&appointment.UpdatedAt,
			&patientFirstName,
			&patientLastName,
			&doctorFirstName,
			&doctorLastName,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки записи: %w", err)
		}

		appointment.PatientName = patientFirstName + " " + patientLastName
		appointment.DoctorName = doctorFirstName + " " + doctorLastName
		appointments = append(appointments, appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return appointments, nil
}

func (r *AppointmentRepo) CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error) {
	query := `SELECT COUNT(*) FROM appointments a`

	conditions, args := appointmentFilterConditions(filter, "a.")
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета записей: %w", err)
	}

	return count, nil
}

func appointmentFilterConditions(filter domain.AppointmentFilter, prefix string) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.PatientID != nil {
		conditions = append(conditions, fmt.Sprintf("%spatient_id = $%d", prefix, argCount))
		args = append(args, *filter.PatientID)
		argCount++
	}

	if filter.DoctorID != nil {
		conditions = append(conditions, fmt.Sprintf("%sdoctor_id = $%d", prefix, argCount))
		args = append(args, *filter.DoctorID)
		argCount++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("%sstatus = $%d", prefix, argCount))
		args = append(args, *filter.Status)
		argCount++
	}

	if filter.ExcludeStatus != nil {
		conditions = append(conditions, fmt.Sprintf("%sstatus != $%d", prefix, argCount))
		args = append(args, *filter.ExcludeStatus)
		argCount++
	}

	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("%sdate_time >= $%d", prefix, argCount))
		args = append(args, *filter.StartDate)
		argCount++
	}

	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("%sdate_time <= $%d", prefix, argCount))
		args = append(args, *filter.EndDate)
		argCount++
	}

	return conditions, args
}
