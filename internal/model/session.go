package model

import "time"

// Step текущий шаг диалога записи
type Step string

const (
	StepIdle                Step = "" // Нет активной сессии
	StepChoosingDateTime    Step = "choosing_date_time"
	StepEnteringDate        Step = "entering_date"
	StepEnteringTime        Step = "entering_time"
	StepCollectingName      Step = "collecting_name"
	StepCollectingPhone     Step = "collecting_phone"
	StepCollectingSituation Step = "collecting_situation"
	StepChoosingDays        Step = "choosing_days"
	StepEnteringTimePerDay  Step = "entering_time_per_day"
)

// Scratch данные, собранные по ходу диалога
type Scratch struct {
	ChosenSlot    *Slot             `json:"chosen_slot,omitempty"`
	ChosenDate    string            `json:"chosen_date,omitempty"`
	ChosenTime    string            `json:"chosen_time,omitempty"`
	SelectedDays  []string          `json:"selected_days,omitempty"`
	DayIndex      int               `json:"day_index,omitempty"`
	DaysWithTimes map[string]string `json:"days_with_times,omitempty"`
	UserName      string            `json:"user_name,omitempty"`
	UserPhone     string            `json:"user_phone,omitempty"`
	UserSituation string            `json:"user_situation,omitempty"`
}

// Session состояние диалога одного пользователя
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Step      Step      `json:"step"`
	Scratch   Scratch   `json:"scratch"`
	StartedAt time.Time `json:"started_at"`
}

// CurrentDay день, для которого сейчас вводится диапазон времени
func (s *Session) CurrentDay() (string, bool) {
	if s.Scratch.DayIndex < 0 || s.Scratch.DayIndex >= len(s.Scratch.SelectedDays) {
		return "", false
	}
	return s.Scratch.SelectedDays[s.Scratch.DayIndex], true
}

// ToggleDay добавляет день в выбор или убирает, если он уже выбран.
// Порядок выбора сохраняется.
func (s *Session) ToggleDay(day string) bool {
	for i, d := range s.Scratch.SelectedDays {
		if d == day {
			s.Scratch.SelectedDays = append(s.Scratch.SelectedDays[:i:i], s.Scratch.SelectedDays[i+1:]...)
			return false
		}
	}
	s.Scratch.SelectedDays = append(s.Scratch.SelectedDays, day)
	return true
}
