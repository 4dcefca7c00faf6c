package service

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"medibook/config"
	"medibook/internal/domain"
	"medibook/internal/repository"
	"medibook/internal/storage"
)

// Notifier рассылает уведомления о событиях записи. Отправка
// выполняется асинхронно и никогда не откатывает саму запись.
type Notifier interface {
	NotifyBooked(appointment domain.Appointment, patientEmail, patientPhone, doctorEmail string)
	NotifyCancelled(appointment domain.Appointment, patientEmail, patientPhone string)
}

type Deps struct {
	Repos       *repository.Repositories
	Logger      *zap.Logger
	Config      *config.Config
	FileStorage storage.FileStorage
	Cache       *redis.Client
	Notifier    Notifier
}

type Services struct {
	User        UserService
	Auth        AuthService
	Doctor      DoctorService
	Schedule    ScheduleService
	Appointment AppointmentService
	Medicine    MedicineService
}

func NewServices(deps Deps) *Services {
	schedule := NewScheduleService(deps.Repos.Doctor, deps.Cache, deps.Config.Schedule, deps.Logger)

	return &Services{
		User:        NewUserService(deps.Repos.User, deps.Logger),
		Auth:        NewAuthService(deps.Repos.Auth, deps.Repos.User, deps.Config.JWT, deps.Logger),
		Doctor:      NewDoctorService(deps.Repos.Doctor, deps.Repos.User, schedule, deps.FileStorage, deps.Config.Schedule, deps.Logger),
		Schedule:    schedule,
		Appointment: NewAppointmentService(deps.Repos.Appointment, deps.Repos.Availability, deps.Repos.Doctor, deps.Repos.User, schedule, deps.Notifier, deps.Config.Schedule, deps.Logger),
		Medicine:    NewMedicineService(deps.Repos.Medicine, deps.Logger),
	}
}

type UserService interface {
	Create(ctx context.Context, dto domain.CreateUserDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error
	UpdatePassword(ctx context.Context, id int64, dto domain.PasswordUpdateDTO) error
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type AuthService interface {
	Register(ctx context.Context, dto domain.RegisterRequest) (int64, error)
	Login(ctx context.Context, dto domain.LoginRequest, userAgent, ip string) (*domain.Tokens, error)
	RefreshTokens(ctx context.Context, refreshToken, userAgent, ip string) (*domain.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	ParseToken(ctx context.Context, token string) (int64, domain.UserRole, error)
}

type DoctorService interface {
	Create(ctx context.Context, dto domain.CreateDoctorDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Doctor, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Doctor, error)
	Update(ctx context.Context, id int64, dto domain.UpdateDoctorDTO) error
	List(ctx context.Context, filter domain.DoctorFilter) ([]domain.Doctor, int, error)

	UploadProfilePhoto(ctx context.Context, doctorID int64, photo []byte, filename string) error
	DeleteProfilePhoto(ctx context.Context, doctorID int64) error
}

// ScheduleService отвечает за сетку слотов и кэш доступности.
type ScheduleService interface {
	GetAvailability(ctx context.Context, doctor *domain.Doctor) (*domain.DoctorAvailability, error)
	FreeSlotsInRange(ctx context.Context, doctor *domain.Doctor, from, to string) ([]domain.SlotRange, error)
	InvalidateCache(ctx context.Context, doctorID int64)
}

type AppointmentService interface {
	Create(ctx context.Context, patientID int64, dto domain.CreateAppointmentDTO) (int64, error)
	GetByID(ctx context.Context, id, requesterID int64, role domain.UserRole) (*domain.Appointment, error)
	Cancel(ctx context.Context, id, requesterID int64, role domain.UserRole) error
	UpdateStatus(ctx context.Context, id, requesterID int64, role domain.UserRole, dto domain.UpdateAppointmentStatusDTO) error
	List(ctx context.Context, filter domain.AppointmentFilter, requesterID int64, role domain.UserRole) ([]domain.Appointment, int, error)
}

type MedicineService interface {
	Create(ctx context.Context, addedBy int64, dto domain.CreateMedicineDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Medicine, error)
	Update(ctx context.Context, id int64, dto domain.UpdateMedicineDTO) error
	UpdateStock(ctx context.Context, id int64, dto domain.UpdateStockDTO) (int, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.MedicineFilter) ([]domain.Medicine, int, error)
}
