package handlers

import (
	"strings"

	"github.com/Freeeeeet/intake_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/intake_bot/internal/conversation"
	"github.com/Freeeeeet/intake_bot/internal/model"
	"github.com/go-telegram/bot/models"
)

var menuCommands = map[string]conversation.Command{
	"/start":        conversation.CommandStart,
	"/help":         conversation.CommandHelp,
	"/cancel":       conversation.CommandExit,
	LabelBook:       conversation.CommandBook,
	LabelMyBookings: conversation.CommandMyBookings,
	LabelFreeSlots:  conversation.CommandFreeSlots,
	LabelHelp:       conversation.CommandHelp,
	LabelBack:       conversation.CommandBack,
	LabelExit:       conversation.CommandExit,
	LabelFinishDays: conversation.CommandFinishDays,
}

// DecodeInput переводит текст сообщения (в том числе подпись кнопки) во вход движка
func DecodeInput(text string) conversation.Input {
	trimmed := strings.TrimSpace(text)

	if cmd, ok := menuCommands[trimmed]; ok {
		return conversation.Cmd(cmd)
	}

	day := strings.TrimPrefix(trimmed, selectedDayMark)
	if model.IsWeekday(day) {
		return conversation.Day(day)
	}

	return conversation.Text(text)
}

// RenderKeyboard строит reply-клавиатуру; nil означает оставить текущую
func RenderKeyboard(k conversation.Keyboard, flavor model.Flavor) models.ReplyMarkup {
	switch k.Kind {
	case conversation.KeyboardMain:
		b := keyboard.NewBuilder().Row(LabelBook)
		if flavor == model.FlavorSlots {
			b.Row(LabelMyBookings, LabelFreeSlots)
		} else {
			b.Row(LabelMyBookings)
		}
		return b.Row(LabelHelp).Placeholder(menuPlaceholder).Build()

	case conversation.KeyboardExit:
		return keyboard.NewBuilder().Row(LabelExit).OneTime().Build()

	case conversation.KeyboardSlots:
		labels := make([]string, len(k.Slots))
		for i, s := range k.Slots {
			labels[i] = s.String()
		}
		return keyboard.NewBuilder().Grid(labels, slotsPerRow).Row(LabelBack).Build()

	case conversation.KeyboardDays:
		selected := make(map[string]bool, len(k.Selected))
		for _, d := range k.Selected {
			selected[d] = true
		}
		labels := make([]string, len(model.Weekdays))
		for i, d := range model.Weekdays {
			if selected[d] {
				labels[i] = selectedDayMark + d
			} else {
				labels[i] = d
			}
		}
		return keyboard.NewBuilder().Grid(labels, daysPerRow).Row(LabelFinishDays).Row(LabelExit).Build()
	}
	return nil
}
