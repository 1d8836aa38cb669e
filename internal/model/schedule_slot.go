package model

import "strings"

// Slot фиксированная пара дата+время из таблицы
type Slot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// String возвращает подпись слота в виде "15.12.2024 10:00"
func (s Slot) String() string {
	return s.Date + " " + s.Time
}

// ParseSlot разбирает подпись слота обратно на дату и время
func ParseSlot(label string) (Slot, bool) {
	date, t, ok := strings.Cut(strings.TrimSpace(label), " ")
	if !ok || date == "" || t == "" {
		return Slot{}, false
	}
	return Slot{Date: date, Time: strings.TrimSpace(t)}, true
}

// DaySlots свободное время на одну дату в порядке строк таблицы
type DaySlots struct {
	Date  string
	Times []string
}
