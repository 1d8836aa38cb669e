package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/intake_bot/internal/model"
	"github.com/Freeeeeet/intake_bot/internal/service"
	"go.uber.org/zap"
)

// handleStep обрабатывает ввод в текущем шаге сессии
func (e *Engine) handleStep(ctx context.Context, sess *model.Session, in Input) Reply {
	switch sess.Step {
	case model.StepChoosingDateTime:
		return e.stepChooseSlot(ctx, sess, in)
	case model.StepEnteringDate:
		return e.stepText(ctx, sess, in, func(s string) error {
			date, err := ValidateDate(s, e.now())
			sess.Scratch.ChosenDate = date
			return err
		})
	case model.StepEnteringTime:
		return e.stepText(ctx, sess, in, func(s string) error {
			t, err := ValidateTime(s)
			sess.Scratch.ChosenTime = t
			return err
		})
	case model.StepCollectingName:
		return e.stepText(ctx, sess, in, func(s string) error {
			name, err := ValidateName(s)
			sess.Scratch.UserName = name
			return err
		})
	case model.StepCollectingPhone:
		return e.stepText(ctx, sess, in, func(s string) error {
			phone, err := ValidatePhone(s)
			sess.Scratch.UserPhone = phone
			return err
		})
	case model.StepCollectingSituation:
		return e.stepText(ctx, sess, in, func(s string) error {
			sess.Scratch.UserSituation = NormalizeSituation(s)
			return nil
		})
	case model.StepChoosingDays:
		return e.stepChooseDays(ctx, sess, in)
	case model.StepEnteringTimePerDay:
		return e.stepDayRange(ctx, sess, in)
	}

	e.logger.Warn("Unknown step, session dropped",
		zap.String("user_id", sess.UserID),
		zap.String("step", string(sess.Step)))
	e.discard(ctx, sess, "unknown_step")
	return idleReply(msgNotUnderstood)
}

// stepText общий шаг с текстовым вводом: apply проверяет ввод и пишет поле в scratch.
// При ошибке scratch восстанавливается, шаг не меняется.
func (e *Engine) stepText(ctx context.Context, sess *model.Session, in Input, apply func(string) error) Reply {
	// Название дня недели здесь обычный текст
	if in.Kind != InputText && in.Kind != InputDay {
		return e.reprompt(ctx, sess, msgFollowSteps)
	}

	before := sess.Scratch
	if err := apply(in.Text); err != nil {
		sess.Scratch = before
		e.logger.Debug("Input rejected",
			zap.String("user_id", sess.UserID),
			zap.String("step", string(sess.Step)),
			zap.Error(err))
		return e.reprompt(ctx, sess, validationMessage(err))
	}
	return e.advance(ctx, sess)
}

func (e *Engine) stepChooseSlot(ctx context.Context, sess *model.Session, in Input) Reply {
	if in.Kind != InputText {
		return e.reprompt(ctx, sess, msgFollowSteps)
	}

	open := e.ledger.ListOpenSlots(ctx)
	chosen, ok := model.ParseSlot(in.Text)
	if ok {
		ok = false
		for _, s := range open {
			if s == chosen {
				ok = true
				break
			}
		}
	}
	if !ok {
		return Reply{
			Text:     msgChooseSlotFromList,
			Keyboard: Keyboard{Kind: KeyboardSlots, Slots: open},
			Step:     sess.Step,
		}
	}

	sess.Scratch.ChosenSlot = &chosen
	sess.Scratch.ChosenDate = chosen.Date
	sess.Scratch.ChosenTime = chosen.Time
	return e.advance(ctx, sess)
}

func (e *Engine) stepChooseDays(ctx context.Context, sess *model.Session, in Input) Reply {
	switch {
	case in.Kind == InputDay && model.IsWeekday(in.Text):
		added := sess.ToggleDay(in.Text)
		if err := e.sessions.Put(ctx, sess); err != nil {
			return e.saveFailed(ctx, sess, err)
		}
		e.logger.Debug("Day toggled",
			zap.String("user_id", sess.UserID),
			zap.String("day", in.Text),
			zap.Bool("selected", added))
		return e.daysReply(sess, selectedDaysText(sess.Scratch.SelectedDays))

	case in.Kind == InputCommand && in.Command == CommandFinishDays:
		if len(sess.Scratch.SelectedDays) == 0 {
			return e.daysReply(sess, msgNoDaysSelected+"\n\n"+selectedDaysText(nil))
		}
		sess.Scratch.DayIndex = 0
		sess.Scratch.DaysWithTimes = make(map[string]string, len(sess.Scratch.SelectedDays))
		return e.advance(ctx, sess)
	}

	return e.reprompt(ctx, sess, msgFollowSteps)
}

func (e *Engine) stepDayRange(ctx context.Context, sess *model.Session, in Input) Reply {
	if in.Kind != InputText {
		return e.reprompt(ctx, sess, msgFollowSteps)
	}

	day, ok := sess.CurrentDay()
	if !ok {
		// Индекс вышел за список: все дни уже заполнены
		return e.submit(ctx, sess)
	}

	r, err := ValidateTimeRange(in.Text)
	if err != nil {
		return e.reprompt(ctx, sess, validationMessage(err))
	}

	if sess.Scratch.DaysWithTimes == nil {
		sess.Scratch.DaysWithTimes = make(map[string]string)
	}
	sess.Scratch.DaysWithTimes[day] = r
	sess.Scratch.DayIndex++

	if sess.Scratch.DayIndex < len(sess.Scratch.SelectedDays) {
		if err := e.sessions.Put(ctx, sess); err != nil {
			return e.saveFailed(ctx, sess, err)
		}
		return e.prompt(ctx, sess, fmt.Sprintf("✅ %s: %s", day, r))
	}
	return e.submit(ctx, sess)
}

// advance переходит к следующему шагу сценария или к отправке заявки
func (e *Engine) advance(ctx context.Context, sess *model.Session) Reply {
	steps := e.flavor.Steps()
	next := model.StepIdle
	for i, s := range steps {
		if s == sess.Step && i+1 < len(steps) {
			next = steps[i+1]
			break
		}
	}
	if next == model.StepIdle {
		return e.submit(ctx, sess)
	}

	prev := sess.Step
	sess.Step = next
	if err := e.sessions.Put(ctx, sess); err != nil {
		return e.saveFailed(ctx, sess, err)
	}

	e.logger.Info("Step completed",
		zap.String("user_id", sess.UserID),
		zap.String("session_id", sess.ID),
		zap.String("from", string(prev)),
		zap.String("to", string(next)))

	return e.prompt(ctx, sess, confirmedField(prev, sess.Scratch))
}

// prompt приглашение к вводу для текущего шага; header выводится перед ним
func (e *Engine) prompt(ctx context.Context, sess *model.Session, header string) Reply {
	var text string
	switch sess.Step {
	case model.StepChoosingDateTime:
		slots := e.ledger.ListOpenSlots(ctx)
		return Reply{
			Text:     joinText(header, slotListText(slots)),
			Keyboard: Keyboard{Kind: KeyboardSlots, Slots: slots},
			Step:     sess.Step,
		}
	case model.StepChoosingDays:
		return e.daysReply(sess, joinText(header, selectedDaysText(sess.Scratch.SelectedDays)))
	case model.StepEnteringDate:
		text = msgAskDate
	case model.StepEnteringTime:
		text = askTimeText(sess.Scratch.ChosenDate)
	case model.StepCollectingName:
		text = msgAskName
	case model.StepCollectingPhone:
		text = msgAskPhone
	case model.StepCollectingSituation:
		text = msgAskSituation
	case model.StepEnteringTimePerDay:
		day, _ := sess.CurrentDay()
		text = askRangeText(day, sess.Scratch.DayIndex+1, len(sess.Scratch.SelectedDays))
	}
	return Reply{Text: joinText(header, text), Keyboard: Keyboard{Kind: KeyboardExit}, Step: sess.Step}
}

// reprompt повторяет текущий шаг с сообщением об ошибке, сессия не меняется
func (e *Engine) reprompt(ctx context.Context, sess *model.Session, msg string) Reply {
	switch sess.Step {
	case model.StepChoosingDateTime:
		return Reply{
			Text:     msg,
			Keyboard: Keyboard{Kind: KeyboardSlots, Slots: e.ledger.ListOpenSlots(ctx)},
			Step:     sess.Step,
		}
	case model.StepChoosingDays:
		return e.daysReply(sess, msg)
	case model.StepEnteringTimePerDay:
		day, _ := sess.CurrentDay()
		return Reply{
			Text:     joinText(msg, askRangeText(day, sess.Scratch.DayIndex+1, len(sess.Scratch.SelectedDays))),
			Keyboard: Keyboard{Kind: KeyboardExit},
			Step:     sess.Step,
		}
	}
	return Reply{Text: msg, Keyboard: Keyboard{Kind: KeyboardExit}, Step: sess.Step}
}

func (e *Engine) daysReply(sess *model.Session, text string) Reply {
	selected := append([]string(nil), sess.Scratch.SelectedDays...)
	return Reply{
		Text:     text,
		Keyboard: Keyboard{Kind: KeyboardDays, Selected: selected},
		Step:     sess.Step,
	}
}

// submit записывает заявку в таблицу; сессия удаляется при любом исходе
func (e *Engine) submit(ctx context.Context, sess *model.Session) Reply {
	e.discard(ctx, sess, "submitted")

	contact := model.Contact{
		DisplayName: sess.Scratch.UserName,
		UserID:      sess.UserID,
		Phone:       sess.Scratch.UserPhone,
		Situation:   sess.Scratch.UserSituation,
	}

	switch e.flavor {
	case model.FlavorSlots:
		slot := model.Slot{Date: sess.Scratch.ChosenDate, Time: sess.Scratch.ChosenTime}
		if sess.Scratch.ChosenSlot != nil {
			slot = *sess.Scratch.ChosenSlot
		}
		err := e.ledger.ReserveSlot(ctx, slot, contact)
		if errors.Is(err, service.ErrSlotTaken) {
			return idleReply(msgSlotTaken)
		}
		if err != nil {
			return idleReply(msgTryLater)
		}

	case model.FlavorFreeText:
		if err := e.ledger.AppendRequest(ctx, sess.Scratch.ChosenDate, sess.Scratch.ChosenTime, contact); err != nil {
			return idleReply(msgTryLater)
		}

	case model.FlavorMultiDay:
		want := len(sess.Scratch.SelectedDays)
		written := e.ledger.AppendMany(ctx, sess.Scratch.SelectedDays, sess.Scratch.DaysWithTimes, contact)
		if len(written) == 0 {
			return idleReply(msgTryLater)
		}
		if len(written) < want {
			e.logger.Warn("Request partially written",
				zap.String("user_id", sess.UserID),
				zap.String("session_id", sess.ID),
				zap.Strings("written", written),
				zap.Int("days", want))
		}
		sess.Scratch.SelectedDays = written
	}

	e.logger.Info("Booking submitted",
		zap.String("user_id", sess.UserID),
		zap.String("session_id", sess.ID),
		zap.String("flow", string(e.flavor)))

	reply := idleReply(confirmationText(e.flavor, sess.Scratch))
	e.notifyAsync(ctx, sess, operatorSummary(e.flavor, sess.UserID, sess.Scratch))
	return reply
}

func (e *Engine) saveFailed(ctx context.Context, sess *model.Session, err error) Reply {
	e.logger.Error("Failed to save session",
		zap.String("user_id", sess.UserID),
		zap.String("session_id", sess.ID),
		zap.Error(err))
	return Reply{Text: msgTryLater, Keyboard: Keyboard{Kind: KeyboardExit}, Step: sess.Step}
}

// confirmedField строка-подтверждение только что принятого поля
func confirmedField(step model.Step, s model.Scratch) string {
	switch step {
	case model.StepChoosingDateTime:
		return fmt.Sprintf("📅 Вы выбрали: %s %s", s.ChosenDate, s.ChosenTime)
	case model.StepEnteringDate:
		return ""
	case model.StepEnteringTime:
		return fmt.Sprintf("📅 Вы выбрали: %s %s", s.ChosenDate, s.ChosenTime)
	case model.StepCollectingName:
		return "✅ Имя: " + s.UserName
	case model.StepCollectingPhone:
		return "✅ Телефон: " + s.UserPhone
	}
	return ""
}

func joinText(header, body string) string {
	switch {
	case header == "":
		return body
	case body == "":
		return header
	}
	return header + "\n\n" + body
}
