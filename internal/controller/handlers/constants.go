package handlers

// Подписи кнопок reply-клавиатуры
const (
	LabelBook       = "📅 Записаться на прием"
	LabelMyBookings = "📋 Мои записи"
	LabelFreeSlots  = "📅 Свободные даты"
	LabelHelp       = "🆘 Помощь"
	LabelBack       = "↩️ Назад"
	LabelExit       = "🚪 Выход"
	LabelFinishDays = "✅ Готово"
)

const (
	selectedDayMark = "✅ "
	slotsPerRow     = 2
	daysPerRow      = 2
	menuPlaceholder = "Выберите действие..."
	slotsImageName  = "slots.png"
)
