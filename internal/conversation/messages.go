package conversation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Freeeeeet/intake_bot/internal/model"
)

const (
	msgWelcome = "👋 Добро пожаловать в бота по записи на приём!\n\n" +
		"Я ваш виртуальный помощник. Я могу:\n" +
		"• 📅 Записать вас на прием к психологу\n" +
		"• 📋 Показать ваши активные записи\n" +
		"%s\n" +
		"Выберите действие из меню ниже:"

	msgMainMenu = "--Главное меню--\n" +
		"- «📅 Записаться на прием» - запись на приём\n" +
		"%s" +
		"- «📋 Мои записи» - просмотр ваших записей\n" +
		"Выберите действие из меню ниже:"

	msgInterrupted   = "❌ Процесс записи прерван. Возвращаемся в главное меню."
	msgAlreadyInMenu = "Вы уже в главном меню."
	msgNotUnderstood = "Я не совсем понимаю, что вы имеете в виду. " +
		"Пожалуйста, используйте кнопки меню или команды для взаимодействия с ботом."
	msgFollowSteps = "Пожалуйста, следуйте инструкциям процесса записи или нажмите «🚪 Выход» для отмены."
	msgTryLater    = "❌ Произошла ошибка. Попробуйте позже."

	msgNoSlots = "😔 К сожалению, все время занято. " +
		"Новые даты появляются регулярно - проверяйте позже или напишите нам для уточнения свободных окон."
	msgNoFreeDates = "⏳ На данный момент все время занято. " +
		"Новые даты появятся в ближайшее время - проверяйте регулярно!"
	msgChooseSlotFromList = "❌ Пожалуйста, выберите дату и время из предложенных вариантов кнопками ниже."
	msgSlotTaken          = "❌ К сожалению, это время уже занято. Пожалуйста, выберите другое время из списка."

	msgAskDate      = "📅 Введите желаемую дату приёма в формате ДД.ММ.ГГГГ (например, 15.12.2024):"
	msgAskName      = "Теперь введите ваше имя:"
	msgAskNameFirst = "📝 Давайте оформим заявку.\n\nВведите ваше имя:"
	msgAskPhone     = "📞 Теперь введите ваш номер телефона (в любом формате):"
	msgAskSituation = "📝 Опишите кратко вашу ситуацию или проблему, с которой хотите обратиться " +
		"(это поможет психологу лучше подготовиться к встрече):\n\n" +
		"Если не хотите описывать, отправьте \"-\" или \"пропустить\""
	msgAskDays = "📆 Выберите удобные дни недели. Повторное нажатие снимает выбор.\n" +
		"Когда закончите, нажмите «✅ Готово»."
	msgNoDaysSelected = "❌ Выберите хотя бы один день недели."

	msgNoRecords = "📝 У вас пока нет активных записей. " +
		"Хотите записаться на прием? Нажмите «📅 Записаться на прием»"
	msgRecordsFailed = "❌ Произошла ошибка при получении ваших записей. Попробуйте позже."

	msgThanks = "Мы ждем вас на консультации! За день до приема напомним о встрече.\n\n" +
		"Если у вас возникли вопросы - напишите нам."
	msgPendingThanks = "Администратор свяжется с вами для подтверждения времени.\n\n" +
		"Если у вас возникли вопросы - напишите нам."
)

func welcomeText(flavor model.Flavor) string {
	extra := ""
	if flavor == model.FlavorSlots {
		extra = "• 📅 Показать свободные даты для записи\n"
	}
	return fmt.Sprintf(msgWelcome, extra)
}

func mainMenuText(flavor model.Flavor) string {
	extra := ""
	if flavor == model.FlavorSlots {
		extra = "- «📅 Свободные даты» - доступное время для записи\n"
	}
	return fmt.Sprintf(msgMainMenu, extra)
}

func helpText(flavor model.Flavor) string {
	var b strings.Builder
	b.WriteString("🆘 Помощь по боту:\n\n📅 Запись на прием:\n- Нажмите «📅 Записаться на прием»\n")
	switch flavor {
	case model.FlavorFreeText:
		b.WriteString("- Введите желаемую дату и время\n")
	case model.FlavorMultiDay:
		b.WriteString("- Введите имя, телефон и ситуацию\n- Отметьте удобные дни недели и время для каждого\n")
	default:
		b.WriteString("- Выберите удобную дату и время из списка\n")
	}
	if flavor != model.FlavorMultiDay {
		b.WriteString("- Введите ваше имя, телефон и ситуацию\n")
	}
	b.WriteString("- В любой момент можно нажать «🚪 Выход» для отмены записи\n\n")
	if flavor == model.FlavorSlots {
		b.WriteString("ℹ️ Информация:\n- «📅 Свободные даты» - доступное время для записи\n\n")
	}
	b.WriteString("📋 Управление:\n" +
		"- «📋 Мои записи» - просмотр ваших записей\n" +
		"- «↩️ Назад» - вернуться в главное меню\n" +
		"- «🚪 Выход» - прервать процесс записи\n\n" +
		"Для начала работы нажмите /start")
	return b.String()
}

func slotListText(slots []model.Slot) string {
	lines := make([]string, len(slots))
	for i, s := range slots {
		lines[i] = "• " + s.String()
	}
	return "📅 Выберите удобную дату и время из доступных:\n\n" + strings.Join(lines, "\n")
}

// freeDatesText время внутри даты выводится отсортированным
func freeDatesText(grouped []model.DaySlots) string {
	var b strings.Builder
	b.WriteString("📅 Свободные даты и время для записи:\n\n")
	for _, d := range grouped {
		times := append([]string(nil), d.Times...)
		sort.Strings(times)
		b.WriteString(d.Date + ":\n")
		for _, t := range times {
			b.WriteString("• " + t + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("Для записи нажмите «📅 Записаться на прием»")
	return b.String()
}

func recordsText(records []model.BookingRecord) string {
	lines := make([]string, len(records))
	for i, r := range records {
		line := fmt.Sprintf("✅ %s %s - %s", r.Date, r.Time, r.Status)
		if r.Situation != "" {
			line += "\n   📝 Ситуация: " + r.Situation
		}
		lines[i] = line
	}
	return fmt.Sprintf("📋 Ваши записи (%s):\n\n", countBookings(len(records))) + strings.Join(lines, "\n")
}

func askTimeText(date string) string {
	return fmt.Sprintf("📅 Дата: %s\n\n🕐 Теперь введите время в формате ЧЧ:ММ (например, 10:00):", date)
}

func askRangeText(day string, n, total int) string {
	return fmt.Sprintf("🕐 %s (%d из %d)\n\nВведите удобный диапазон времени в формате ЧЧ:ММ-ЧЧ:ММ (например, 9:00-12:00):",
		day, n, total)
}

func selectedDaysText(days []string) string {
	if len(days) == 0 {
		return msgAskDays + "\n\nПока ничего не выбрано."
	}
	return msgAskDays + fmt.Sprintf("\n\nВыбрано %s: ", countDays(len(days))) + strings.Join(days, ", ")
}

// scheduleLines описание выбранного времени для подтверждения и уведомления
func scheduleLines(flavor model.Flavor, s model.Scratch) string {
	if flavor == model.FlavorMultiDay {
		var b strings.Builder
		b.WriteString("📆 Дни и время:\n")
		for _, d := range s.SelectedDays {
			if r, ok := s.DaysWithTimes[d]; ok {
				b.WriteString(fmt.Sprintf("   • %s: %s\n", d, r))
			}
		}
		return b.String()
	}
	return fmt.Sprintf("📅 Дата и время: %s %s\n", s.ChosenDate, s.ChosenTime)
}

func confirmationText(flavor model.Flavor, s model.Scratch) string {
	title := "🎉 Запись успешно оформлена!"
	thanks := msgThanks
	if flavor != model.FlavorSlots {
		title = "🎉 Заявка принята!"
		thanks = msgPendingThanks
	}

	text := title + "\n\n" +
		scheduleLines(flavor, s) +
		fmt.Sprintf("👤 Имя: %s\n📞 Телефон: %s\n", s.UserName, s.UserPhone)
	if s.UserSituation != "" {
		text += fmt.Sprintf("📝 Ситуация: %s\n", s.UserSituation)
	}
	return text + "\n" + thanks
}

func operatorSummary(flavor model.Flavor, userID string, s model.Scratch) string {
	title := "🔔 НОВАЯ ЗАПИСЬ НА КОНСУЛЬТАЦИЮ"
	if flavor != model.FlavorSlots {
		title = "🔔 НОВАЯ ЗАЯВКА, ТРЕБУЕТСЯ ПОДТВЕРЖДЕНИЕ"
	}

	text := title + "\n\n" +
		scheduleLines(flavor, s) +
		fmt.Sprintf("👤 Имя клиента: %s\n📞 Телефон: %s\n🆔 Telegram ID: %s\n", s.UserName, s.UserPhone, userID)
	if s.UserSituation != "" {
		text += fmt.Sprintf("📝 Ситуация: %s\n", s.UserSituation)
	}
	return text
}
