package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"medibook/internal/domain"
)

type Repositories struct {
	User         UserRepository
	Auth         AuthRepository
	Doctor       DoctorRepository
	Availability AvailabilityRepository
	Appointment  AppointmentRepository
	Medicine     MedicineRepository
}

func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Auth:         NewAuthRepository(db),
		Doctor:       NewDoctorRepository(db),
		Availability: NewAvailabilityRepository(db),
		Appointment:  NewAppointmentRepository(db),
		Medicine:     NewMedicineRepository(db),
	}
}

type UserRepository interface {
	Create(ctx context.Context, user domain.CreateUserDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Update(ctx context.Context, id int64, user domain.UpdateUserDTO) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type AuthRepository interface {
	CreateSession(ctx context.Context, session domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsByUserID(ctx context.Context, userID int64) error
}

type DoctorRepository interface {
	// Create сохраняет врача и материализованную недельную сетку слотов
	// в одной транзакции.
	Create(ctx context.Context, dto domain.CreateDoctorDTO, slots []domain.Slot) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Doctor, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Doctor, error)
	Update(ctx context.Context, id int64, dto domain.UpdateDoctorDTO) error
	// ReplaceSlots перестраивает сетку при смене дней приема; занятые
	// слоты сохранившихся дней не трогаются.
	ReplaceSlots(ctx context.Context, doctorID int64, slots []domain.Slot) error
	UpdatePhoto(ctx context.Context, id int64, photoURL string) error
	List(ctx context.Context, filter domain.DoctorFilter) ([]domain.Doctor, error)
	CountByFilter(ctx context.Context, filter domain.DoctorFilter) (int, error)
	GetSlots(ctx context.Context, doctorID int64) ([]domain.Slot, error)
}

// AvailabilityRepository описывает хранилище доступности: единственный код,
// которому разрешено менять флаг is_booked.
type AvailabilityRepository interface {
	IsAvailable(ctx context.Context, doctorID int64, day, startTime string) (bool, error)
	MarkBooked(ctx context.Context, doctorID int64, day, startTime string) error
	MarkFree(ctx context.Context, doctorID int64, day, startTime string) error
}

type AppointmentRepository interface {
	// Create бронирует слот и создает запись одной транзакцией: условный
	// UPDATE слота, затем INSERT записи. Если слот занят, транзакция не
	// доходит до INSERT и возвращается domain.ErrSlotUnavailable.
	Create(ctx context.Context, patientID int64, dto domain.CreateAppointmentDTO, fee float64, day, startTime string) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	// Cancel переводит запись в cancelled (только из scheduled) и в той же
	// транзакции освобождает слот. Возвращает признак того, что слот
	// действительно был освобожден.
	Cancel(ctx context.Context, id, doctorID int64, day, startTime string) (bool, error)
	// Finalize переводит запись из scheduled в completed или no_show.
	Finalize(ctx context.Context, id int64, status domain.AppointmentStatus) error
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error)
	CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error)
}

type MedicineRepository interface {
	Create(ctx context.Context, addedBy int64, dto domain.CreateMedicineDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Medicine, error)
	Update(ctx context.Context, id int64, dto domain.UpdateMedicineDTO) error
	UpdateStock(ctx context.Context, id int64, delta int) (int, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.MedicineFilter) ([]domain.Medicine, error)
	CountByFilter(ctx context.Context, filter domain.MedicineFilter) (int, error)
}
