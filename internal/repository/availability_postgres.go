package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"medibook/internal/domain"
)

// execer покрывает и пул, и транзакцию: одни и те же условные UPDATE
// выполняются напрямую или внутри транзакции бронирования.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	markBookedQuery = `
		UPDATE doctor_slots
		SET is_booked = TRUE
		WHERE doctor_id = $1 AND day = $2 AND start_time = $3 AND is_booked = FALSE
	`

	markFreeQuery = `
		UPDATE doctor_slots
		SET is_booked = FALSE
		WHERE doctor_id = $1 AND day = $2 AND start_time = $3 AND is_booked = TRUE
	`
)

// markBooked является единственной точкой захвата слота: условный UPDATE, при
// конкурентных вызовах ровно один увидит is_booked = FALSE.
func markBooked(ctx context.Context, db execer, doctorID int64, day, startTime string) error {
	tag, err := db.Exec(ctx, markBookedQuery, doctorID, day, startTime)
	if err != nil {
		return fmt.Errorf("ошибка бронирования слота: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrSlotUnavailable
	}

	return nil
}

func markFree(ctx context.Context, db execer, doctorID int64, day, startTime string) error {
	tag, err := db.Exec(ctx, markFreeQuery, doctorID, day, startTime)
	if err != nil {
		return fmt.Errorf("ошибка освобождения слота: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrSlotNotFound
	}

	return nil
}

type AvailabilityRepo struct {
	db *pgxpool.Pool
}

func NewAvailabilityRepository(db *pgxpool.Pool) *AvailabilityRepo {
	return &AvailabilityRepo{
		db: db,
	}
}

func (r *AvailabilityRepo) IsAvailable(ctx context.Context, doctorID int64, day, startTime string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM doctor_slots
			WHERE doctor_id = $1 AND day = $2 AND start_time = $3 AND is_booked = FALSE
		)
	`

	var available bool
	err := r.db.QueryRow(ctx, query, doctorID, day, startTime).Scan(&available)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки доступности слота: %w", err)
	}

	return available, nil
}

func (r *AvailabilityRepo) MarkBooked(ctx context.Context, doctorID int64, day, startTime string) error {
	return markBooked(ctx, r.db, doctorID, day, startTime)
}

func (r *AvailabilityRepo) MarkFree(ctx context.Context, doctorID int64, day, startTime string) error {
	return markFree(ctx, r.db, doctorID, day, startTime)
}
