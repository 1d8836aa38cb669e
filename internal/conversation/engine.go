package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Freeeeeet/intake_bot/internal/model"
	"github.com/Freeeeeet/intake_bot/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultNotifyTimeout = 10 * time.Second

// Ledger операции над таблицей записей, которые нужны диалогу
type Ledger interface {
	ListOpenSlots(ctx context.Context) []model.Slot
	ListOpenSlotsGrouped(ctx context.Context) []model.DaySlots
	ReserveSlot(ctx context.Context, slot model.Slot, c model.Contact) error
	AppendRequest(ctx context.Context, date, time string, c model.Contact) error
	AppendMany(ctx context.Context, days []string, ranges map[string]string, c model.Contact) []string
	ListByUser(ctx context.Context, userID string) ([]model.BookingRecord, error)
}

// SessionRepository хранилище сессий, не больше одной на пользователя
type SessionRepository interface {
	Get(ctx context.Context, userID string) (*model.Session, error)
	Put(ctx context.Context, s *model.Session) error
	Delete(ctx context.Context, userID string) error
}

// Engine конечный автомат диалога записи.
// Ничего не знает о транспорте: получает текст и идентификатор пользователя, возвращает Reply.
type Engine struct {
	flavor        model.Flavor
	sessions      SessionRepository
	ledger        Ledger
	notifier      service.Notifier
	logger        *zap.Logger
	now           func() time.Time
	notifyTimeout time.Duration

	notifications sync.WaitGroup
}

func NewEngine(
	flavor model.Flavor,
	sessions SessionRepository,
	ledger Ledger,
	notifier service.Notifier,
	logger *zap.Logger,
) *Engine {
	if notifier == nil {
		notifier = service.NopNotifier{}
	}
	return &Engine{
		flavor:        flavor,
		sessions:      sessions,
		ledger:        ledger,
		notifier:      notifier,
		logger:        logger,
		now:           time.Now,
		notifyTimeout: defaultNotifyTimeout,
	}
}

// WithClock подменяет часы (для проверки дат в тестах)
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Flavor сценарий, по которому работает движок
func (e *Engine) Flavor() model.Flavor {
	return e.flavor
}

// Wait ждёт завершения отправленных в фоне уведомлений оператору
func (e *Engine) Wait() {
	e.notifications.Wait()
}

// Handle обрабатывает одно сообщение пользователя
func (e *Engine) Handle(ctx context.Context, userID string, in Input) Reply {
	sess, err := e.sessions.Get(ctx, userID)
	if err != nil {
		e.logger.Error("Failed to load session", zap.String("user_id", userID), zap.Error(err))
		return Reply{Text: msgTryLater, Keyboard: Keyboard{Kind: KeyboardMain}}
	}

	if in.Kind == InputCommand && in.Command != CommandFinishDays {
		return e.handleCommand(ctx, userID, sess, in.Command)
	}

	if sess == nil {
		return Reply{Text: msgNotUnderstood, Keyboard: Keyboard{Kind: KeyboardMain}}
	}

	e.logger.Debug("Handling step",
		zap.String("user_id", userID),
		zap.String("session_id", sess.ID),
		zap.String("step", string(sess.Step)))

	return e.handleStep(ctx, sess, in)
}

func (e *Engine) handleCommand(ctx context.Context, userID string, sess *model.Session, cmd Command) Reply {
	switch cmd {
	case CommandStart:
		if sess != nil {
			e.discard(ctx, sess, "start")
			return idleReply(msgInterrupted)
		}
		return idleReply(welcomeText(e.flavor))

	case CommandHelp:
		if sess != nil {
			e.discard(ctx, sess, "help")
			return idleReply(msgInterrupted + "\n\n" + helpText(e.flavor))
		}
		return idleReply(helpText(e.flavor))

	case CommandBook:
		if sess != nil {
			e.discard(ctx, sess, "restart")
		}
		return e.startFlow(ctx, userID)

	case CommandMyBookings:
		return e.myBookings(ctx, userID, sess)

	case CommandFreeSlots:
		return e.freeSlots(ctx, sess)

	case CommandBack:
		if sess != nil {
			e.discard(ctx, sess, "back")
		}
		return idleReply(mainMenuText(e.flavor))

	case CommandExit:
		if sess != nil {
			e.discard(ctx, sess, "exit")
			return idleReply(msgInterrupted)
		}
		return idleReply(msgAlreadyInMenu)
	}

	e.logger.Warn("Unknown command", zap.String("user_id", userID), zap.Stringer("command", cmd))
	if sess != nil {
		return e.reprompt(ctx, sess, msgFollowSteps)
	}
	return Reply{Text: msgNotUnderstood, Keyboard: Keyboard{Kind: KeyboardMain}}
}

// startFlow создаёт новую сессию и переходит к первому шагу сценария
func (e *Engine) startFlow(ctx context.Context, userID string) Reply {
	sess := &model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Step:      e.flavor.Steps()[0],
		StartedAt: e.now(),
	}

	var reply Reply
	switch sess.Step {
	case model.StepChoosingDateTime:
		slots := e.ledger.ListOpenSlots(ctx)
		if len(slots) == 0 {
			return idleReply(msgNoSlots)
		}
		reply = Reply{Text: slotListText(slots), Keyboard: Keyboard{Kind: KeyboardSlots, Slots: slots}}
	case model.StepEnteringDate:
		reply = Reply{Text: msgAskDate, Keyboard: Keyboard{Kind: KeyboardExit}}
	default:
		reply = Reply{Text: msgAskNameFirst, Keyboard: Keyboard{Kind: KeyboardExit}}
	}

	if err := e.sessions.Put(ctx, sess); err != nil {
		e.logger.Error("Failed to save session", zap.String("user_id", userID), zap.Error(err))
		return idleReply(msgTryLater)
	}

	e.logger.Info("Booking flow started",
		zap.String("user_id", userID),
		zap.String("session_id", sess.ID),
		zap.String("flow", string(e.flavor)))

	reply.Step = sess.Step
	return reply
}

func (e *Engine) myBookings(ctx context.Context, userID string, sess *model.Session) Reply {
	reply := Reply{Step: stepOf(sess)}
	if sess == nil {
		reply.Keyboard = Keyboard{Kind: KeyboardMain}
	}

	records, err := e.ledger.ListByUser(ctx, userID)
	switch {
	case err != nil:
		reply.Text = msgRecordsFailed
	case len(records) == 0:
		reply.Text = msgNoRecords
	default:
		reply.Text = recordsText(records)
	}
	return reply
}

func (e *Engine) freeSlots(ctx context.Context, sess *model.Session) Reply {
	if e.flavor != model.FlavorSlots {
		if sess != nil {
			return e.reprompt(ctx, sess, msgFollowSteps)
		}
		return Reply{Text: msgNotUnderstood, Keyboard: Keyboard{Kind: KeyboardMain}}
	}

	reply := Reply{Step: stepOf(sess)}
	grouped := e.ledger.ListOpenSlotsGrouped(ctx)
	if len(grouped) == 0 {
		reply.Text = msgNoFreeDates
		return reply
	}
	reply.Text = freeDatesText(grouped)
	reply.OpenSlots = grouped
	return reply
}

// discard удаляет сессию; ошибка хранилища только логируется
func (e *Engine) discard(ctx context.Context, sess *model.Session, reason string) {
	if err := e.sessions.Delete(ctx, sess.UserID); err != nil {
		e.logger.Error("Failed to delete session",
			zap.String("user_id", sess.UserID),
			zap.String("session_id", sess.ID),
			zap.Error(err))
		return
	}
	e.logger.Info("Session discarded",
		zap.String("user_id", sess.UserID),
		zap.String("session_id", sess.ID),
		zap.String("step", string(sess.Step)),
		zap.String("reason", reason))
}

// notifyAsync отправляет сводку оператору, не задерживая ответ пользователю
func (e *Engine) notifyAsync(ctx context.Context, sess *model.Session, summary string) {
	e.notifications.Add(1)
	go func() {
		defer e.notifications.Done()

		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.notifyTimeout)
		defer cancel()

		if err := e.notifier.Notify(nctx, summary); err != nil {
			e.logger.Error("Failed to notify operator",
				zap.String("user_id", sess.UserID),
				zap.String("session_id", sess.ID),
				zap.Error(err))
			return
		}
		e.logger.Info("Operator notified",
			zap.String("user_id", sess.UserID),
			zap.String("session_id", sess.ID))
	}()
}

func idleReply(text string) Reply {
	return Reply{Text: text, Keyboard: Keyboard{Kind: KeyboardMain}, Step: model.StepIdle}
}

func stepOf(sess *model.Session) model.Step {
	if sess == nil {
		return model.StepIdle
	}
	return sess.Step
}

func validationMessage(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}
