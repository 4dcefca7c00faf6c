package domain

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// IsFinal сообщает, достигла ли запись терминального статуса.
// Из терминального статуса переходов нет.
func (s AppointmentStatus) IsFinal() bool {
	return s == AppointmentStatusCompleted ||
		s == AppointmentStatusCancelled ||
		s == AppointmentStatusNoShow
}

const (
	MaxReasonLength = 500
	MaxNotesLength  = 1000
)

type Appointment struct {
	ID          int64             `json:"id"`
	PatientID   int64             `json:"patient_id"`
	DoctorID    int64             `json:"doctor_id"`
	DateTime    time.Time         `json:"date_time"`
	DurationMin int               `json:"duration_min"`
	Reason      string            `json:"reason"`
	Notes       string            `json:"notes,omitempty"`
	Status      AppointmentStatus `json:"status"`
	Fee         float64           `json:"fee"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	PatientName string `json:"patient_name,omitempty"`
	DoctorName  string `json:"doctor_name,omitempty"`
}

type CreateAppointmentDTO struct {
	DoctorID int64     `json:"doctor_id" binding:"required"`
	DateTime time.Time `json:"date_time" binding:"required"`
	Reason   string    `json:"reason" binding:"required"`
	Notes    string    `json:"notes" binding:"omitempty,max=1000"`
}

type UpdateAppointmentStatusDTO struct {
	Status AppointmentStatus `json:"status" binding:"required,oneof=completed no_show"`
}

type AppointmentFilter struct {
	PatientID     *int64             `json:"patient_id"`
	DoctorID      *int64             `json:"doctor_id"`
	Status        *AppointmentStatus `json:"status"`
	ExcludeStatus *AppointmentStatus `json:"exclude_status"`
	StartDate     *time.Time         `json:"start_date"`
	EndDate       *time.Time         `json:"end_date"`
	Limit         int                `json:"limit"`
	Offset        int                `json:"offset"`
}
