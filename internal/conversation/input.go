package conversation

import "github.com/Freeeeeet/intake_bot/internal/model"

// InputKind вид входящего сообщения после разбора в транспортном слое
type InputKind int

const (
	InputText    InputKind = iota // Произвольный текст
	InputCommand                  // Команда меню
	InputDay                      // Нажатие на день недели
)

// Command закрытый набор команд, которые понимает движок
type Command int

const (
	CommandStart Command = iota + 1
	CommandHelp
	CommandBook
	CommandMyBookings
	CommandFreeSlots
	CommandBack
	CommandExit
	CommandFinishDays
)

var commandNames = map[Command]string{
	CommandStart:      "start",
	CommandHelp:       "help",
	CommandBook:       "book",
	CommandMyBookings: "my_bookings",
	CommandFreeSlots:  "free_slots",
	CommandBack:       "back",
	CommandExit:       "exit",
	CommandFinishDays: "finish_days",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Input входящее сообщение пользователя
type Input struct {
	Kind    InputKind
	Command Command
	Text    string // текст для InputText, название дня для InputDay
}

// Text произвольный текст пользователя
func Text(s string) Input {
	return Input{Kind: InputText, Text: s}
}

// Cmd команда меню
func Cmd(c Command) Input {
	return Input{Kind: InputCommand, Command: c}
}

// Day выбор дня недели
func Day(day string) Input {
	return Input{Kind: InputDay, Text: day}
}

// KeyboardKind какую клавиатуру показать пользователю
type KeyboardKind int

const (
	KeyboardKeep   KeyboardKind = iota // Оставить текущую
	KeyboardMain                       // Главное меню
	KeyboardExit                       // Только кнопка выхода
	KeyboardSlots                      // Свободные слоты + назад
	KeyboardDays                       // Дни недели + завершить выбор
)

// Keyboard описание клавиатуры без привязки к транспорту
type Keyboard struct {
	Kind     KeyboardKind
	Slots    []model.Slot // для KeyboardSlots
	Selected []string     // для KeyboardDays
}

// Reply ответ движка на одно сообщение
type Reply struct {
	Text     string
	Keyboard Keyboard
	// Step шаг сессии после обработки (StepIdle, если сессии нет)
	Step model.Step
	// OpenSlots заполняется для списка свободных дат, чтобы транспорт мог нарисовать картинку
	OpenSlots []model.DaySlots
}
