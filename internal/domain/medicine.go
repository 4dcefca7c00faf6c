package domain

import (
	"time"
)

type DosageForm string

const (
	DosageFormTablet    DosageForm = "tablet"
	DosageFormCapsule   DosageForm = "capsule"
	DosageFormSyrup     DosageForm = "syrup"
	DosageFormInjection DosageForm = "injection"
	DosageFormOintment  DosageForm = "ointment"
	DosageFormDrops     DosageForm = "drops"
	DosageFormInhaler   DosageForm = "inhaler"
)

type MedicineCategory string

const (
	MedicineCategoryAntibiotic    MedicineCategory = "antibiotic"
	MedicineCategoryAnalgesic     MedicineCategory = "analgesic"
	MedicineCategoryAntihistamine MedicineCategory = "antihistamine"
	MedicineCategoryAntacid       MedicineCategory = "antacid"
	MedicineCategoryVitamin       MedicineCategory = "vitamin"
	MedicineCategoryOther         MedicineCategory = "other"
)

const lowStockThreshold = 10

type Medicine struct {
	ID                   int64            `json:"id"`
	Name                 string           `json:"name"`
	GenericName          string           `json:"generic_name,omitempty"`
	Manufacturer         string           `json:"manufacturer"`
	DosageForm           DosageForm       `json:"dosage_form"`
	Strength             string           `json:"strength"`
	Price                float64          `json:"price"`
	Stock                int              `json:"stock"`
	ExpiryDate           time.Time        `json:"expiry_date"`
	PrescriptionRequired bool             `json:"prescription_required"`
	Category             MedicineCategory `json:"category"`
	SideEffects          []string         `json:"side_effects,omitempty"`
	AddedBy              int64            `json:"added_by"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// IsLowStock сообщает о заканчивающемся остатке для панели администратора.
func (m Medicine) IsLowStock() bool {
	return m.Stock < lowStockThreshold
}

type CreateMedicineDTO struct {
	Name                 string           `json:"name" binding:"required,max=100"`
	GenericName          string           `json:"generic_name"`
	Manufacturer         string           `json:"manufacturer" binding:"required"`
	DosageForm           DosageForm       `json:"dosage_form" binding:"required,oneof=tablet capsule syrup injection ointment drops inhaler"`
	Strength             string           `json:"strength" binding:"required"`
	Price                float64          `json:"price" binding:"required,min=0"`
	Stock                int              `json:"stock" binding:"omitempty,min=0"`
	ExpiryDate           time.Time        `json:"expiry_date" binding:"required"`
	PrescriptionRequired *bool            `json:"prescription_required"`
	Category             MedicineCategory `json:"category" binding:"omitempty,oneof=antibiotic analgesic antihistamine antacid vitamin other"`
	SideEffects          []string         `json:"side_effects"`
}

type UpdateMedicineDTO struct {
	GenericName          *string           `json:"generic_name"`
	Manufacturer         *string           `json:"manufacturer"`
	Strength             *string           `json:"strength"`
	Price                *float64          `json:"price" binding:"omitempty,min=0"`
	ExpiryDate           *time.Time        `json:"expiry_date"`
	PrescriptionRequired *bool             `json:"prescription_required"`
	Category             *MedicineCategory `json:"category" binding:"omitempty,oneof=antibiotic analgesic antihistamine antacid vitamin other"`
	SideEffects          *[]string         `json:"side_effects"`
}

type UpdateStockDTO struct {
	Delta int `json:"delta" binding:"required"`
}

type MedicineFilter struct {
	Search               *string `json:"search"`
	PrescriptionRequired *bool   `json:"prescription_required"`
	InStock              *bool   `json:"in_stock"`
	Limit                int     `json:"limit"`
	Offset               int     `json:"offset"`
}
