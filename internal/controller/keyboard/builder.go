package keyboard

import "github.com/go-telegram/bot/models"

// Builder упрощает создание reply-клавиатур
type Builder struct {
	rows        [][]models.KeyboardButton
	oneTime     bool
	placeholder string
}

// NewBuilder создаёт новый builder клавиатуры
func NewBuilder() *Builder {
	return &Builder{
		rows: make([][]models.KeyboardButton, 0),
	}
}

// Button создаёт кнопку с текстом
func Button(text string) models.KeyboardButton {
	return models.KeyboardButton{Text: text}
}

// Row добавляет новый ряд кнопок
func (b *Builder) Row(labels ...string) *Builder {
	if len(labels) == 0 {
		return b
	}
	row := make([]models.KeyboardButton, len(labels))
	for i, l := range labels {
		row[i] = Button(l)
	}
	b.rows = append(b.rows, row)
	return b
}

// Grid раскладывает подписи по perRow кнопок в ряду
func (b *Builder) Grid(labels []string, perRow int) *Builder {
	for i := 0; i < len(labels); i += perRow {
		end := i + perRow
		if end > len(labels) {
			end = len(labels)
		}
		b.Row(labels[i:end]...)
	}
	return b
}

// OneTime скрывает клавиатуру после нажатия
func (b *Builder) OneTime() *Builder {
	b.oneTime = true
	return b
}

// Placeholder подсказка в поле ввода
func (b *Builder) Placeholder(text string) *Builder {
	b.placeholder = text
	return b
}

// Build создаёт финальную клавиатуру
func (b *Builder) Build() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard:              b.rows,
		ResizeKeyboard:        true,
		OneTimeKeyboard:       b.oneTime,
		InputFieldPlaceholder: b.placeholder,
	}
}
