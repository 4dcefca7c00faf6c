package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"medibook/config"
	"medibook/internal/domain"
)

type slotDoctorRepo struct {
	fakeDoctorRepo
	slots []domain.Slot
}

func (r *slotDoctorRepo) GetSlots(ctx context.Context, doctorID int64) ([]domain.Slot, error) {
	return r.slots, nil
}

func newScheduleFixture() (*ScheduleServiceImpl, *slotDoctorRepo, *domain.Doctor) {
	repo := &slotDoctorRepo{
		slots: []domain.Slot{
			{Day: "Monday", Time: "09:00", IsBooked: false},
			{Day: "Monday", Time: "09:30", IsBooked: true},
			{Day: "Monday", Time: "10:00", IsBooked: false},
		},
	}

	cfg := config.ScheduleConfig{
		SlotInterval: 30 * time.Minute,
		Timezone:     "UTC",
		CacheTTL:     time.Minute,
	}

	doctor := &domain.Doctor{
		ID:              testDoctorID,
		AvailableDays:   []string{"Monday"},
		ConsultationFee: 1500,
	}

	return NewScheduleService(repo, nil, cfg, zap.NewNop()), repo, doctor
}

func TestScheduleGetAvailability(t *testing.T) {
	svc, _, doctor := newScheduleFixture()

	availability, err := svc.GetAvailability(context.Background(), doctor)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if availability.DoctorID != doctor.ID {
		t.Errorf("ожидался врач %d, получен %d", doctor.ID, availability.DoctorID)
	}
	if availability.ConsultationFee != 1500 {
		t.Errorf("ожидалась стоимость 1500, получено %v", availability.ConsultationFee)
	}

	if len(availability.FreeSlots) != 2 {
		t.Fatalf("ожидалось 2 свободных слота, получено %d", len(availability.FreeSlots))
	}
	for _, slot := range availability.FreeSlots {
		if slot.IsBooked {
			t.Errorf("занятый слот %s %s не должен попадать в свободные", slot.Day, slot.Time)
		}
	}
}

func TestScheduleFreeSlotsInRange(t *testing.T) {
	svc, _, doctor := newScheduleFixture()

	// Понедельник 2 марта 2026.
	slots, err := svc.FreeSlotsInRange(context.Background(), doctor, "2026-03-02", "2026-03-02")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	want := []string{"09:00", "10:00"}
	if len(slots) != len(want) {
		t.Fatalf("ожидалось %d слотов, получено %d", len(want), len(slots))
	}
	for i, slot := range slots {
		if got := slot.Start.Format("15:04"); got != want[i] {
			t.Errorf("слот %d: ожидалось %s, получено %s", i, want[i], got)
		}
		if slot.Start.Format("2006-01-02") != "2026-03-02" {
			t.Errorf("слот %d попал не на запрошенную дату: %s", i, slot.Start.Format("2006-01-02"))
		}
	}
}

func TestScheduleFreeSlotsInRangeBadDates(t *testing.T) {
	svc, _, doctor := newScheduleFixture()

	tests := []struct {
		name     string
		from, to string
	}{
		{"некорректный формат", "02.03.2026", "02.03.2026"},
		{"обратный диапазон", "2026-03-09", "2026-03-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.FreeSlotsInRange(context.Background(), doctor, tt.from, tt.to); err == nil {
				t.Fatal("ожидалась ошибка")
			}
		})
	}
}
