package domain

import (
	"time"
)

type Specialization string

const (
	SpecializationCardiology  Specialization = "cardiology"
	SpecializationNeurology   Specialization = "neurology"
	SpecializationPediatrics  Specialization = "pediatrics"
	SpecializationOrthopedics Specialization = "orthopedics"
	SpecializationDermatology Specialization = "dermatology"
	SpecializationGynecology  Specialization = "gynecology"
	SpecializationGeneral     Specialization = "general"
)

type Doctor struct {
	ID              int64          `json:"id"`
	UserID          int64          `json:"user_id"`
	Specialization  Specialization `json:"specialization"`
	Qualifications  []string       `json:"qualifications"`
	ExperienceYears int            `json:"experience_years"`
	ConsultationFee float64        `json:"consultation_fee"`
	AvailableDays   []string       `json:"available_days"`
	Hospital        string         `json:"hospital,omitempty"`
	LicenseNumber   string         `json:"license_number"`
	Rating          float64        `json:"rating"`
	PhotoURL        string         `json:"photo_url,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type CreateDoctorDTO struct {
	UserID          int64          `json:"user_id" binding:"required"`
	Specialization  Specialization `json:"specialization" binding:"required,oneof=cardiology neurology pediatrics orthopedics dermatology gynecology general"`
	Qualifications  []string       `json:"qualifications" binding:"required,min=1"`
	ExperienceYears int            `json:"experience_years" binding:"omitempty,min=0"`
	ConsultationFee float64        `json:"consultation_fee" binding:"required,min=0"`
	AvailableDays   []string       `json:"available_days" binding:"required,min=1,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday"`
	Hospital        string         `json:"hospital"`
	LicenseNumber   string         `json:"license_number" binding:"required"`
}

type UpdateDoctorDTO struct {
	Specialization  *Specialization `json:"specialization" binding:"omitempty,oneof=cardiology neurology pediatrics orthopedics dermatology gynecology general"`
	Qualifications  *[]string       `json:"qualifications" binding:"omitempty,min=1"`
	ExperienceYears *int            `json:"experience_years" binding:"omitempty,min=0"`
	ConsultationFee *float64        `json:"consultation_fee" binding:"omitempty,min=0"`
	AvailableDays   *[]string       `json:"available_days" binding:"omitempty,min=1,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday"`
	Hospital        *string         `json:"hospital"`
}

type DoctorFilter struct {
	Specialization *Specialization `json:"specialization"`
	Limit          int             `json:"limit"`
	Offset         int             `json:"offset"`
}

// DoctorAvailability содержит публичное представление сетки врача: дни приема,
// свободные слоты и стоимость консультации.
type DoctorAvailability struct {
	DoctorID        int64    `json:"doctor_id"`
	AvailableDays   []string `json:"available_days"`
	FreeSlots       []Slot   `json:"free_slots"`
	ConsultationFee float64  `json:"consultation_fee"`
}
