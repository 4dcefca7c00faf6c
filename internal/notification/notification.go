package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"medibook/internal/domain"
)

// Sender доставляет одно сообщение получателю. Ошибки доставки не
// влияют на запись, о которой уведомляют: вызывающая сторона их только
// логирует.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Service struct {
	email  Sender
	sms    Sender
	logger *zap.Logger
}

func NewService(email, sms Sender, logger *zap.Logger) *Service {
	return &Service{
		email:  email,
		sms:    sms,
		logger: logger,
	}
}

// NotifyBooked отправляет пациенту и врачу уведомление о новой записи.
// Выполняется в отдельной горутине: запись к этому моменту уже
// зафиксирована, и сбой доставки ее не отменяет.
func (s *Service) NotifyBooked(appointment domain.Appointment, patientEmail, patientPhone, doctorEmail string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		when := appointment.DateTime.Format("02.01.2006 15:04")
		subject := "Запись на прием подтверждена"
		body := fmt.Sprintf("Ваша запись к врачу %s на %s подтверждена. Причина обращения: %s.",
			appointment.DoctorName, when, appointment.Reason)

		s.deliver(ctx, "booked", appointment.ID, patientEmail, patientPhone, subject, body)

		if doctorEmail != "" && s.email != nil {
			doctorBody := fmt.Sprintf("Новая запись: пациент %s, %s. Причина обращения: %s.",
				appointment.PatientName, when, appointment.Reason)
			if err := s.email.Send(ctx, doctorEmail, "Новая запись на прием", doctorBody); err != nil {
				s.logger.Warn("не удалось отправить email врачу",
					zap.Int64("appointment_id", appointment.ID),
					zap.Error(err))
			}
		}
	}()
}

// NotifyCancelled отправляет уведомление об отмене записи.
func (s *Service) NotifyCancelled(appointment domain.Appointment, patientEmail, patientPhone string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		when := appointment.DateTime.Format("02.01.2006 15:04")
		subject := "Запись на прием отменена"
		body := fmt.Sprintf("Ваша запись к врачу %s на %s отменена.", appointment.DoctorName, when)

		s.deliver(ctx, "cancelled", appointment.ID, patientEmail, patientPhone, subject, body)
	}()
}

func (s *Service) deliver(ctx context.Context, event string, appointmentID int64, email, phone, subject, body string) {
	if s.email != nil && email != "" {
		if err := s.email.Send(ctx, email, subject, body); err != nil {
			s.logger.Warn("не удалось отправить email пациенту",
				zap.String("event", event),
				zap.Int64("appointment_id", appointmentID),
				zap.Error(err))
		}
	}

	if s.sms != nil && phone != "" {
		if err := s.sms.Send(ctx, phone, subject, body); err != nil {
			s.logger.Warn("не удалось отправить SMS пациенту",
				zap.String("event", event),
				zap.Int64("appointment_id", appointmentID),
				zap.Error(err))
		}
	}
}
