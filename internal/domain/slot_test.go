package domain

import (
	"reflect"
	"testing"
	"time"
)

func TestGenerateSlots(t *testing.T) {
	hours := WorkingHours{
		"Monday": {Start: 9, End: 11},
	}

	// Понедельник 2 марта 2026.
	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	slots := GenerateSlots([]string{"Monday"}, hours, 30*time.Minute, from, to)

	if len(slots) != 4 {
		t.Fatalf("ожидалось 4 слота, получено %d", len(slots))
	}

	want := []string{"09:00", "09:30", "10:00", "10:30"}
	for i, slot := range slots {
		if got := slot.Start.Format("15:04"); got != want[i] {
			t.Errorf("слот %d: ожидалось %s, получено %s", i, want[i], got)
		}
		if slot.End.Sub(slot.Start) != 30*time.Minute {
			t.Errorf("слот %d: неверная длительность %v", i, slot.End.Sub(slot.Start))
		}
	}
}

func TestGenerateSlotsDeterministic(t *testing.T) {
	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	days := []string{"Monday", "Wednesday", "Friday"}

	first := GenerateSlots(days, DefaultWorkingHours, 30*time.Minute, from, to)
	second := GenerateSlots(days, DefaultWorkingHours, 30*time.Minute, from, to)

	if !reflect.DeepEqual(first, second) {
		t.Error("повторный вызов с теми же аргументами дал другой результат")
	}
}

func TestGenerateSlotsTruncatesPartial(t *testing.T) {
	hours := WorkingHours{
		"Monday": {Start: 9, End: 10},
	}

	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	// Интервал 45 минут: в окно 09:00-10:00 помещается один слот,
	// неполный хвост 09:45-10:30 отбрасывается.
	slots := GenerateSlots([]string{"Monday"}, hours, 45*time.Minute, from, to)

	if len(slots) != 1 {
		t.Fatalf("ожидался 1 слот, получено %d", len(slots))
	}
	if got := slots[0].Start.Format("15:04"); got != "09:00" {
		t.Errorf("ожидалось начало 09:00, получено %s", got)
	}
}

func TestGenerateSlotsSkipsClosedDays(t *testing.T) {
	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	slots := GenerateSlots([]string{"Tuesday"}, DefaultWorkingHours, 30*time.Minute, from, to)

	for _, slot := range slots {
		if slot.Start.Weekday() != time.Tuesday {
			t.Fatalf("слот попал на закрытый день %s", slot.Start.Weekday())
		}
	}
	if len(slots) == 0 {
		t.Fatal("ожидались слоты на вторник")
	}
}

func TestGenerateSlotsEmptyInput(t *testing.T) {
	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		days     []string
		interval time.Duration
		from, to time.Time
	}{
		{"нет дней приема", nil, 30 * time.Minute, from, from.AddDate(0, 0, 7)},
		{"нулевой интервал", []string{"Monday"}, 0, from, from.AddDate(0, 0, 7)},
		{"пустой диапазон", []string{"Monday"}, 30 * time.Minute, from, from},
		{"обратный диапазон", []string{"Monday"}, 30 * time.Minute, from.AddDate(0, 0, 7), from},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if slots := GenerateSlots(tt.days, DefaultWorkingHours, tt.interval, tt.from, tt.to); len(slots) != 0 {
				t.Errorf("ожидался пустой результат, получено %d слотов", len(slots))
			}
		})
	}
}

func TestWeeklySlots(t *testing.T) {
	hours := WorkingHours{
		"Monday":   {Start: 9, End: 11},
		"Saturday": {Start: 10, End: 12},
	}

	slots := WeeklySlots([]string{"Saturday", "Monday"}, hours, time.Hour)

	want := []Slot{
		{Day: "Monday", Time: "09:00"},
		{Day: "Monday", Time: "10:00"},
		{Day: "Saturday", Time: "10:00"},
		{Day: "Saturday", Time: "11:00"},
	}

	if !reflect.DeepEqual(slots, want) {
		t.Errorf("ожидалось %v, получено %v", want, slots)
	}
}

func TestSlotKey(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Fatal(err)
	}

	// 2 марта 2026, 06:30 UTC соответствует 09:30 понедельника по Москве.
	dateTime := time.Date(2026, 3, 2, 6, 30, 0, 0, time.UTC)

	day, tm := SlotKey(dateTime, loc)
	if day != "Monday" || tm != "09:30" {
		t.Errorf("ожидалось Monday 09:30, получено %s %s", day, tm)
	}
}

func TestAppointmentStatusIsFinal(t *testing.T) {
	tests := []struct {
		status AppointmentStatus
		final  bool
	}{
		{AppointmentStatusScheduled, false},
		{AppointmentStatusCompleted, true},
		{AppointmentStatusCancelled, true},
		{AppointmentStatusNoShow, true},
	}

	for _, tt := range tests {
		if got := tt.status.IsFinal(); got != tt.final {
			t.Errorf("%s: ожидалось %v, получено %v", tt.status, tt.final, got)
		}
	}
}
