package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"medibook/config"
	"medibook/internal/domain"
	"medibook/internal/repository"
)

// AppointmentServiceImpl координирует запись на прием: проверяет вход,
// выводит ключ слота и передает бронь в хранилище, где занятие слота и
// создание записи выполняются одной транзакцией.
type AppointmentServiceImpl struct {
	repo             repository.AppointmentRepository
	availabilityRepo repository.AvailabilityRepository
	doctorRepo       repository.DoctorRepository
	userRepo         repository.UserRepository
	schedule         ScheduleService
	notifier         Notifier
	cfg              config.ScheduleConfig
	logger           *zap.Logger

	location *time.Location
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	availabilityRepo repository.AvailabilityRepository,
	doctorRepo repository.DoctorRepository,
	userRepo repository.UserRepository,
	schedule ScheduleService,
	notifier Notifier,
	cfg config.ScheduleConfig,
	logger *zap.Logger,
) *AppointmentServiceImpl {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("неизвестный часовой пояс, используется UTC", zap.String("timezone", cfg.Timezone))
		loc = time.UTC
	}

	return &AppointmentServiceImpl{
		repo:             repo,
		availabilityRepo: availabilityRepo,
		doctorRepo:       doctorRepo,
		userRepo:         userRepo,
		schedule:         schedule,
		notifier:         notifier,
		cfg:              cfg,
		logger:           logger,
		location:         loc,
	}
}

func (s *AppointmentServiceImpl) Create(ctx context.Context, patientID int64, dto domain.CreateAppointmentDTO) (int64, error) {
	reason := strings.TrimSpace(dto.Reason)
	if reason == "" || len([]rune(reason)) > domain.MaxReasonLength {
		return 0, domain.ErrInvalidReason
	}
	dto.Reason = reason

	if len([]rune(dto.Notes)) > domain.MaxNotesLength {
		return 0, domain.ErrInvalidReason
	}

	if !dto.DateTime.After(time.Now()) {
		return 0, domain.ErrPastDateTime
	}

	doctor, err := s.doctorRepo.GetByID(ctx, dto.DoctorID)
	if err != nil {
		return 0, domain.ErrDoctorNotFound
	}

	day, startTime := domain.SlotKey(dto.DateTime, s.location)

	// Быстрая проверка до транзакции. Гонку решает не она, а условный
	// UPDATE внутри repo.Create.
	available, err := s.availabilityRepo.IsAvailable(ctx, dto.DoctorID, day, startTime)
	if err == nil && !available {
		return 0, domain.ErrSlotUnavailable
	}

	id, err := s.repo.Create(ctx, patientID, dto, doctor.ConsultationFee, day, startTime)
	if err != nil {
		if errors.Is(err, domain.ErrSlotUnavailable) {
			return 0, domain.ErrSlotUnavailable
		}
		s.logger.Error("ошибка при создании записи на прием",
			zap.Int64("patientId", patientID),
			zap.Int64("doctorId", dto.DoctorID),
			zap.Error(err))
		return 0, errors.New("ошибка при создании записи на прием")
	}

	s.schedule.InvalidateCache(ctx, dto.DoctorID)
	s.notifyBooked(ctx, id, doctor)

	return id, nil
}

func (s *AppointmentServiceImpl) GetByID(ctx context.Context, id, requesterID int64, role domain.UserRole) (*domain.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.ErrAppointmentNotFound
	}

	if err := s.authorize(ctx, appointment, requesterID, role); err != nil {
		return nil, err
	}

	return appointment, nil
}

func (s *AppointmentServiceImpl) Cancel(ctx context.Context, id, requesterID int64, role domain.UserRole) error {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ErrAppointmentNotFound
	}

	if err := s.authorize(ctx, appointment, requesterID, role); err != nil {
		return err
	}

	if appointment.Status.IsFinal() {
		return domain.ErrAlreadyFinalized
	}

	day, startTime := domain.SlotKey(appointment.DateTime, s.location)

	slotFreed, err := s.repo.Cancel(ctx, id, appointment.DoctorID, day, startTime)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyFinalized) {
			return domain.ErrAlreadyFinalized
		}
		s.logger.Error("ошибка при отмене записи", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при отмене записи")
	}

	// Слот мог исчезнуть из сетки, если врач сменил дни приема.
	// Отмена при этом остается в силе, расхождение только фиксируем.
	if !slotFreed {
		s.logger.Warn("слот отмененной записи отсутствует в сетке врача",
			zap.Int64("appointmentId", id),
			zap.Int64("doctorId", appointment.DoctorID),
			zap.String("day", day),
			zap.String("time", startTime))
	}

	s.schedule.InvalidateCache(ctx, appointment.DoctorID)
	s.notifyCancelled(ctx, appointment)

	return nil
}

func (s *AppointmentServiceImpl) UpdateStatus(ctx context.Context, id, requesterID int64, role domain.UserRole, dto domain.UpdateAppointmentStatusDTO) error {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ErrAppointmentNotFound
	}

	// Завершить прием или отметить неявку может только врач записи
	// либо администратор.
	if role == domain.UserRolePatient {
		return domain.ErrForbidden
	}
	if err := s.authorize(ctx, appointment, requesterID, role); err != nil {
		return err
	}

	if appointment.Status.IsFinal() {
		return domain.ErrAlreadyFinalized
	}

	if err := s.repo.Finalize(ctx, id, dto.Status); err != nil {
		if errors.Is(err, domain.ErrAlreadyFinalized) {
			return domain.ErrAlreadyFinalized
		}
		s.logger.Error("ошибка при смене статуса записи", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при смене статуса записи")
	}

	return nil
}

func (s *AppointmentServiceImpl) List(ctx context.Context, filter domain.AppointmentFilter, requesterID int64, role domain.UserRole) ([]domain.Appointment, int, error) {
	switch role {
	case domain.UserRolePatient:
		filter.PatientID = &requesterID
	case domain.UserRoleDoctor:
		doctor, err := s.doctorRepo.GetByUserID(ctx, requesterID)
		if err != nil {
			return nil, 0, domain.ErrDoctorNotFound
		}
		filter.DoctorID = &doctor.ID
	}

	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	appointments, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка при получении списка записей", zap.Error(err))
		return nil, 0, errors.New("ошибка при получении списка записей")
	}

	total, err := s.repo.CountByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка при подсчете записей", zap.Error(err))
		return nil, 0, errors.New("ошибка при получении списка записей")
	}

	return appointments, total, nil
}

// authorize проверяет, что запись принадлежит запрашивающему: пациент
// видит свои записи, врач видит записи к себе, администратор любые.
func (s *AppointmentServiceImpl) authorize(ctx context.Context, appointment *domain.Appointment, requesterID int64, role domain.UserRole) error {
	switch role {
	case domain.UserRoleAdmin:
		return nil
	case domain.UserRolePatient:
		if appointment.PatientID == requesterID {
			return nil
		}
	case domain.UserRoleDoctor:
		doctor, err := s.doctorRepo.GetByUserID(ctx, requesterID)
		if err == nil && doctor.ID == appointment.DoctorID {
			return nil
		}
	}

	return domain.ErrForbidden
}

func (s *AppointmentServiceImpl) notifyBooked(ctx context.Context, appointmentID int64, doctor *domain.Doctor) {
	if s.notifier == nil {
		return
	}

	appointment, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		s.logger.Warn("запись создана, но не найдена для уведомления", zap.Int64("id", appointmentID), zap.Error(err))
		return
	}

	patient, err := s.userRepo.GetByID(ctx, appointment.PatientID)
	if err != nil {
		s.logger.Warn("пациент не найден для уведомления", zap.Int64("id", appointment.PatientID), zap.Error(err))
		return
	}

	doctorEmail := ""
	if doctorUser, err := s.userRepo.GetByID(ctx, doctor.UserID); err == nil {
		doctorEmail = doctorUser.Email
	}

	s.notifier.NotifyBooked(*appointment, patient.Email, patient.Phone, doctorEmail)
}

func (s *AppointmentServiceImpl) notifyCancelled(ctx context.Context, appointment *domain.Appointment) {
	if s.notifier == nil {
		return
	}

	patient, err := s.userRepo.GetByID(ctx, appointment.PatientID)
	if err != nil {
		s.logger.Warn("пациент не найден для уведомления", zap.Int64("id", appointment.PatientID), zap.Error(err))
		return
	}

	s.notifier.NotifyCancelled(*appointment, patient.Email, patient.Phone)
}
