package model

import "fmt"

// Flavor вариант сценария записи
type Flavor string

const (
	FlavorSlots    Flavor = "slots"    // Выбор из заранее заведённых слотов
	FlavorFreeText Flavor = "freetext" // Дата и время вводятся текстом
	FlavorMultiDay Flavor = "multiday" // Несколько дней недели с диапазонами времени
)

// ParseFlavor проверяет название сценария из конфигурации
func ParseFlavor(s string) (Flavor, error) {
	switch f := Flavor(s); f {
	case FlavorSlots, FlavorFreeText, FlavorMultiDay:
		return f, nil
	case "":
		return FlavorSlots, nil
	default:
		return "", fmt.Errorf("unknown flow %q (want slots, freetext or multiday)", s)
	}
}

// Headers заголовки первой строки таблицы для сценария
func (f Flavor) Headers() Cells {
	first := "Дата"
	if f == FlavorMultiDay {
		first = "День недели"
	}
	return Cells{first, "Время", "Имя пользователя", "Телеграм ID", "Телефон", "Ситуация", "Статус"}
}

// Steps порядок шагов диалога для сценария
func (f Flavor) Steps() []Step {
	switch f {
	case FlavorFreeText:
		return []Step{StepEnteringDate, StepEnteringTime, StepCollectingName, StepCollectingPhone, StepCollectingSituation}
	case FlavorMultiDay:
		return []Step{StepCollectingName, StepCollectingPhone, StepCollectingSituation, StepChoosingDays, StepEnteringTimePerDay}
	default:
		return []Step{StepChoosingDateTime, StepCollectingName, StepCollectingPhone, StepCollectingSituation}
	}
}

// Weekdays дни недели в календарном порядке, как они пишутся в таблицу
var Weekdays = []string{
	"Понедельник",
	"Вторник",
	"Среда",
	"Четверг",
	"Пятница",
	"Суббота",
	"Воскресенье",
}

// IsWeekday проверяет что строка является названием дня недели
func IsWeekday(s string) bool {
	for _, d := range Weekdays {
		if d == s {
			return true
		}
	}
	return false
}
