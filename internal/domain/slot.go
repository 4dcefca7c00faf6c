package domain

import (
	"time"
)

// Slot описывает единицу недельной сетки врача: день недели и время начала.
// Флаг IsBooked меняется только хранилищем доступности.
type Slot struct {
	Day      string `json:"day"`
	Time     string `json:"time"`
	IsBooked bool   `json:"is_booked"`
}

// SlotRange описывает кандидата слота в конкретном диапазоне дат.
type SlotRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// HourRange задает рабочие часы в пределах дня, [Start, End) в часах.
type HourRange struct {
	Start int
	End   int
}

// WorkingHours хранит таблицу рабочих часов по дням недели. День, которого
// нет в таблице, считается нерабочим.
type WorkingHours map[string]HourRange

var DefaultWorkingHours = WorkingHours{
	"Monday":    {Start: 9, End: 18},
	"Tuesday":   {Start: 9, End: 18},
	"Wednesday": {Start: 9, End: 18},
	"Thursday":  {Start: 9, End: 18},
	"Friday":    {Start: 9, End: 18},
	"Saturday":  {Start: 10, End: 15},
}

// weekdayOrder фиксирует порядок обхода дней при материализации сетки.
var weekdayOrder = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// GenerateSlots строит упорядоченный список кандидатов слотов в диапазоне
// [from, to): по одному на интервал, только в дни из availableDays и в
// рабочие часы. Функция чистая: на одинаковом входе дает одинаковый результат,
// обращений к часам нет. Неполный интервал в конце диапазона или
// рабочего дня отбрасывается целиком.
func GenerateSlots(availableDays []string, hours WorkingHours, interval time.Duration, from, to time.Time) []SlotRange {
	if interval <= 0 || !from.Before(to) {
		return nil
	}

	dayset := make(map[string]bool, len(availableDays))
	for _, day := range availableDays {
		dayset[day] = true
	}

	slots := make([]SlotRange, 0)
	for cur := from; !cur.Add(interval).After(to); cur = cur.Add(interval) {
		day := cur.Weekday().String()
		if !dayset[day] {
			continue
		}

		window, ok := hours[day]
		if !ok {
			continue
		}

		dayStart := time.Date(cur.Year(), cur.Month(), cur.Day(), window.Start, 0, 0, 0, cur.Location())
		dayEnd := time.Date(cur.Year(), cur.Month(), cur.Day(), window.End, 0, 0, 0, cur.Location())

		if cur.Before(dayStart) || cur.Add(interval).After(dayEnd) {
			continue
		}

		slots = append(slots, SlotRange{Start: cur, End: cur.Add(interval)})
	}

	return slots
}

// WeeklySlots материализует недельную сетку {день, время} для дней приема
// врача. Именно эти пары становятся строками doctor_slots.
func WeeklySlots(availableDays []string, hours WorkingHours, interval time.Duration) []Slot {
	if interval <= 0 {
		return nil
	}

	dayset := make(map[string]bool, len(availableDays))
	for _, day := range availableDays {
		dayset[day] = true
	}

	slots := make([]Slot, 0)
	for _, day := range weekdayOrder {
		if !dayset[day] {
			continue
		}

		window, ok := hours[day]
		if !ok {
			continue
		}

		base := time.Date(2000, 1, 1, window.Start, 0, 0, 0, time.UTC)
		end := time.Date(2000, 1, 1, window.End, 0, 0, 0, time.UTC)

		for cur := base; !cur.Add(interval).After(end); cur = cur.Add(interval) {
			slots = append(slots, Slot{Day: day, Time: cur.Format("15:04")})
		}
	}

	return slots
}

// SlotKey выводит пару (день, время) для даты приема в заданном часовом
// поясе. Пара однозначно идентифицирует слот в сетке врача.
func SlotKey(dateTime time.Time, loc *time.Location) (day, tm string) {
	local := dateTime.In(loc)
	return local.Weekday().String(), local.Format("15:04")
}
