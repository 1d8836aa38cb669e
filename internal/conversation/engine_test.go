package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/intake_bot/internal/controller/state"
	"github.com/Freeeeeet/intake_bot/internal/model"
	"github.com/Freeeeeet/intake_bot/internal/repository"
	"github.com/Freeeeeet/intake_bot/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testUser = "42"

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return n.err
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type fixture struct {
	engine   *Engine
	table    *repository.MemoryTable
	sessions *state.Manager
	notifier *recordingNotifier
}

func newFixture(t *testing.T, flavor model.Flavor) *fixture {
	t.Helper()

	table := repository.NewMemoryTable()
	ledger := service.NewLedger(table, zap.NewNop())
	require.NoError(t, ledger.Init(context.Background(), flavor))

	f := &fixture{
		table:    table,
		sessions: state.NewManager(),
		notifier: &recordingNotifier{},
	}
	f.engine = NewEngine(flavor, f.sessions, ledger, f.notifier, zap.NewNop()).
		WithClock(func() time.Time { return time.Date(2024, 12, 10, 12, 0, 0, 0, time.UTC) })
	return f
}

// send прогоняет входы по очереди и возвращает последний ответ
func (f *fixture) send(t *testing.T, user string, inputs ...Input) Reply {
	t.Helper()
	var reply Reply
	for _, in := range inputs {
		reply = f.engine.Handle(context.Background(), user, in)
	}
	return reply
}

func (f *fixture) rows(t *testing.T) []repository.Row {
	t.Helper()
	rows, err := f.table.ReadRows(context.Background())
	require.NoError(t, err)
	return rows
}

func (f *fixture) row(t *testing.T, index int) model.Cells {
	t.Helper()
	for _, r := range f.rows(t) {
		if r.Index == index {
			return r.Cells
		}
	}
	t.Fatalf("row %d not found", index)
	return model.Cells{}
}

func TestSlotsFlow_EndToEnd(t *testing.T) {
	f := newFixture(t, model.FlavorSlots)

	reply := f.send(t, testUser, Cmd(CommandBook))
	assert.Equal(t, model.StepChoosingDateTime, reply.Step)
	assert.Equal(t, KeyboardSlots, reply.Keyboard.Kind)
	assert.Len(t, reply.Keyboard.Slots, len(service.SeedSlots))

	reply = f.send(t, testUser, Text("15.12.2024 10:00"))
	assert.Equal(t, model.StepCollectingName, reply.Step)
	assert.Contains(t, reply.Text, "15.12.2024 10:00")

	reply = f.send(t, testUser, Text("Anna"), Text("123456"))
	assert.Equal(t, model.StepCollectingSituation, reply.Step)

	reply = f.send(t, testUser, Text("-"))
	assert.Equal(t, model.StepIdle, reply.Step)
	assert.Equal(t, KeyboardMain, reply.Keyboard.Kind)
	assert.Contains(t, reply.Text, "15.12.2024 10:00")
	assert.Contains(t, reply.Text, "Anna")

	assert.Equal(t,
		model.Cells{"15.12.2024", "10:00", "Anna", testUser, "123456", "", string(model.BookingStatusReserved)},
		f.row(t, 2))
	assert.Equal(t, 0, f.sessions.Len())

	f.engine.Wait()
	msgs := f.notifier.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Anna")
	assert.Contains(t, msgs[0], testUser)

	reply = f.send(t, testUser, Cmd(CommandBook))
	assert.Len(t, reply.Keyboard.Slots, len(service.SeedSlots)-1, "reserved slot is no longer offered")
}

func TestMultiDayFlow_EndToEnd(t *testing.T) {
	f := newFixture(t, model.FlavorMultiDay)

	reply := f.send(t, testUser, Cmd(CommandBook))
	assert.Equal(t, model.StepCollectingName, reply.Step)
	assert.Equal(t, msgAskNameFirst, reply.Text)
	assert.Equal(t, KeyboardExit, reply.Keyboard.Kind)

	reply = f.send(t, testUser, Text("Anna"), Text("123456"), Text("-"))
	assert.Equal(t, model.StepChoosingDays, reply.Step)
	assert.Equal(t, KeyboardDays, reply.Keyboard.Kind)

	reply = f.send(t, testUser, Day("Понедельник"), Day("Среда"))
	assert.Equal(t, []string{"Понедельник", "Среда"}, reply.Keyboard.Selected)

	reply = f.send(t, testUser, Cmd(CommandFinishDays))
	assert.Equal(t, model.StepEnteringTimePerDay, reply.Step)
	assert.Contains(t, reply.Text, "Понедельник")

	reply = f.send(t, testUser, Text("25:00-9:00"))
	assert.Equal(t, model.StepEnteringTimePerDay, reply.Step)
	assert.Contains(t, reply.Text, "Понедельник", "same day is asked again")

	reply = f.send(t, testUser, Text("9:00-12:00"))
	assert.Equal(t, model.StepEnteringTimePerDay, reply.Step)
	assert.Contains(t, reply.Text, "Среда")

	reply = f.send(t, testUser, Text("14:00-16:00"))
	assert.Equal(t, model.StepIdle, reply.Step)
	assert.Contains(t, reply.Text, "Понедельник: 09:00-12:00")
	assert.Contains(t, reply.Text, "Среда: 14:00-16:00")

	pending := string(model.BookingStatusPending)
	assert.Equal(t, model.Cells{"Понедельник", "09:00-12:00", "Anna", testUser, "123456", "", pending}, f.row(t, 2))
	assert.Equal(t, model.Cells{"Среда", "14:00-16:00", "Anna", testUser, "123456", "", pending}, f.row(t, 3))
	assert.Len(t, f.rows(t), 2)

	f.engine.Wait()
	assert.Len(t, f.notifier.Messages(), 1)
}

func TestMultiDay_ToggleIsSymmetric(t *testing.T) {
	f := newFixture(t, model.FlavorMultiDay)
	f.send(t, testUser, Cmd(CommandBook), Text("Anna"), Text("123456"), Text("-"))

	reply := f.send(t, testUser, Day("Вторник"), Day("Пятница"), Day("Вторник"))
	assert.Equal(t, []string{"Пятница"}, reply.Keyboard.Selected)

	reply = f.send(t, testUser, Day("Пятница"))
	assert.Empty(t, reply.Keyboard.Selected)

	reply = f.send(t, testUser, Cmd(CommandFinishDays))
	assert.Equal(t, model.StepChoosingDays, reply.Step)
	assert.Contains(t, reply.Text, msgNoDaysSelected)
}

func TestFreeTextFlow_EndToEnd(t *testing.T) {
	f := newFixture(t, model.FlavorFreeText)

	reply := f.send(t, testUser, Cmd(CommandBook))
	assert.Equal(t, model.StepEnteringDate, reply.Step)

	reply = f.send(t, testUser, Text("09.12.2024"))
	assert.Equal(t, model.StepEnteringDate, reply.Step, "past date is rejected")

	reply = f.send(t, testUser, Text("15.12.2024"))
	assert.Equal(t, model.StepEnteringTime, reply.Step)
	assert.Contains(t, reply.Text, "15.12.2024")

	reply = f.send(t, testUser, Text("9:30"), Text("Anna"), Text("123456"), Text("болит спина"))
	assert.Equal(t, model.StepIdle, reply.Step)

	assert.Equal(t,
		model.Cells{"15.12.2024", "09:30", "Anna", testUser, "123456", "болит спина", string(model.BookingStatusPending)},
		f.row(t, 2))
}

func TestCancelFromEveryStep(t *testing.T) {
	tests := []struct {
		name   string
		flavor model.Flavor
		prefix []Input
		step   model.Step
	}{
		{"choosing slot", model.FlavorSlots, nil, model.StepChoosingDateTime},
		{"slots name", model.FlavorSlots, []Input{Text("15.12.2024 10:00")}, model.StepCollectingName},
		{"slots phone", model.FlavorSlots, []Input{Text("15.12.2024 10:00"), Text("Anna")}, model.StepCollectingPhone},
		{"slots situation", model.FlavorSlots, []Input{Text("15.12.2024 10:00"), Text("Anna"), Text("123456")}, model.StepCollectingSituation},
		{"entering date", model.FlavorFreeText, nil, model.StepEnteringDate},
		{"entering time", model.FlavorFreeText, []Input{Text("15.12.2024")}, model.StepEnteringTime},
		{"choosing days", model.FlavorMultiDay, []Input{Text("Anna"), Text("123456"), Text("-"), Day("Среда")}, model.StepChoosingDays},
		{"range per day", model.FlavorMultiDay, []Input{Text("Anna"), Text("123456"), Text("-"), Day("Среда"), Cmd(CommandFinishDays)}, model.StepEnteringTimePerDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.flavor)
			before := len(f.rows(t))

			reply := f.send(t, testUser, append([]Input{Cmd(CommandBook)}, tt.prefix...)...)
			require.Equal(t, tt.step, reply.Step)

			reply = f.send(t, testUser, Cmd(CommandExit))
			assert.Equal(t, model.StepIdle, reply.Step)
			assert.Equal(t, msgInterrupted, reply.Text)
			assert.Equal(t, KeyboardMain, reply.Keyboard.Kind)
			assert.Equal(t, 0, f.sessions.Len())
			assert.Len(t, f.rows(t), before, "cancel writes nothing")

			f.engine.Wait()
			assert.Empty(t, f.notifier.Messages())
		})
	}
}

func TestInvalidInputKeepsStep(t *testing.T) {
	f := newFixture(t, model.FlavorSlots)
	f.send(t, testUser, Cmd(CommandBook), Text("15.12.2024 10:00"))

	reply := f.send(t, testUser, Text("A"))
	assert.Equal(t, model.StepCollectingName, reply.Step)
	assert.Contains(t, reply.Text, "Имя должно")

	reply = f.send(t, testUser, Text("Anna"), Text("12"))
	assert.Equal(t, model.StepCollectingPhone, reply.Step)
	assert.Contains(t, reply.Text, "слишком короткий")

	sess, err := f.sessions.Get(context.Background(), testUser)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "Anna", sess.Scratch.UserName)
	assert.Empty(t, sess.Scratch.UserPhone)
}

func TestChooseSlotNotInList(t *testing.T) {
	f := newFixture(t, model.FlavorSlots)
	f.send(t, testUser, Cmd(CommandBook))

	for _, in := range []Input{Text("20.12.2024 10:00"), Text("привет"), Day("Среда")} {
		reply := f.send(t, testUser, in)
		assert.Equal(t, model.StepChoosingDateTime, reply.Step)
		assert.Equal(t, KeyboardSlots, reply.Keyboard.Kind)
	}
}

func TestSlotTakenConcurrently(t *testing.T) {
	f := newFixture(t, model.FlavorSlots)

	f.send(t, "1", Cmd(CommandBook), Text("15.12.2024 10:00"), Text("Anna"), Text("123456"))
	f.send(t, "2", Cmd(CommandBook), Text("15.12.2024 10:00"), Text("Boris"), Text("654321"))

	first := f.send(t, "1", Text("-"))
	assert.Contains(t, first.Text, "15.12.2024 10:00")

	second := f.send(t, "2", Text("-"))
	assert.Equal(t, msgSlotTaken, second.Text)
	assert.Equal(t, model.StepIdle, second.Step)
	assert.Equal(t, 0, f.sessions.Len())

	assert.Equal(t, "1", f.row(t, 2)[model.ColUserID-1])

	f.engine.Wait()
	assert.Len(t, f.notifier.Messages(), 1)
}

func TestStoreFailureOnSubmit(t *testing.T) {
	f := newFixture(t, model.FlavorFreeText)
	f.send(t, testUser, Cmd(CommandBook), Text("15.12.2024"), Text("10:00"), Text("Anna"), Text("123456"))

	f.table.FailWith(errors.New("disk is full"))
	reply := f.send(t, testUser, Text("-"))

	assert.Equal(t, msgTryLater, reply.Text)
	assert.Equal(t, model.StepIdle, reply.Step)
	assert.Equal(t, 0, f.sessions.Len())

	f.engine.Wait()
	assert.Empty(t, f.notifier.Messages())
}

func TestNotifierFailureDoesNotAffectUser(t *testing.T) {
	f := newFixture(t, model.FlavorFreeText)
	f.notifier.err = errors.New("chat not found")

	reply := f.send(t, testUser, Cmd(CommandBook), Text("15.12.2024"), Text("10:00"), Text("Anna"), Text("123456"), Text("-"))
	f.engine.Wait()

	assert.Contains(t, reply.Text, "Заявка принята")
	assert.Len(t, f.rows(t), 1)
}

func TestSlotsFlow_NoOpenSlots(t *testing.T) {
	table := repository.NewMemoryTable()
	ledger := service.NewLedger(table, zap.NewNop())
	require.NoError(t, ledger.Init(context.Background(), model.FlavorFreeText))

	sessions := state.NewManager()
	e := NewEngine(model.FlavorSlots, sessions, ledger, nil, zap.NewNop())

	reply := e.Handle(context.Background(), testUser, Cmd(CommandBook))
	assert.Equal(t, msgNoSlots, reply.Text)
	assert.Equal(t, model.StepIdle, reply.Step)
	assert.Equal(t, 0, sessions.Len())

	reply = e.Handle(context.Background(), testUser, Cmd(CommandFreeSlots))
	assert.Equal(t, msgNoFreeDates, reply.Text)
	assert.Empty(t, reply.OpenSlots)
}

func TestIdleCommands(t *testing.T) {
	f := newFixture(t, model.FlavorSlots)

	reply := f.send(t, testUser, Text("hello"))
	assert.Equal(t, msgNotUnderstood, reply.Text)
	assert.Equal(t, KeyboardMain, reply.Keyboard.Kind)

	reply = f.send(t, testUser, Cmd(CommandExit))
	assert.Equal(t, msgAlreadyInMenu, reply.Text)

	reply = f.send(t, testUser, Cmd(CommandStart))
	assert.Equal(t, welcomeText(model.FlavorSlots), reply.Text)

	reply = f.send(t, testUser, Cmd(CommandMyBookings))
	assert.Equal(t, msgNoRecords, reply.Text)

	reply = f.send(t, testUser, Cmd(CommandFreeSlots))
	require.Len(t, reply.OpenSlots, 4)
	assert.Equal(t, "15.12.2024", reply.OpenSlots[0].Date)
	assert.Equal(t, []string{"10:00", "14:00"}, reply.OpenSlots[0].Times)
}

func TestMenuCommandsMidFlow(t *testing.T) {
	f := newFixture(t, model.FlavorSlots)
	f.send(t, testUser, Cmd(CommandBook), Text("15.12.2024 10:00"), Text("Anna"))

	first, err := f.sessions.Get(context.Background(), testUser)
	require.NoError(t, err)
	require.NotNil(t, first)

	reply := f.send(t, testUser, Cmd(CommandMyBookings))
	assert.Equal(t, model.StepCollectingPhone, reply.Step, "listing records keeps the session")
	assert.Equal(t, msgNoRecords, reply.Text)

	reply = f.send(t, testUser, Cmd(CommandBook))
	assert.Equal(t, model.StepChoosingDateTime, reply.Step)

	second, err := f.sessions.Get(context.Background(), testUser)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID, second.ID, "book restarts the flow")

	reply = f.send(t, testUser, Cmd(CommandHelp))
	assert.Equal(t, model.StepIdle, reply.Step)
	assert.Contains(t, reply.Text, msgInterrupted)
	assert.Equal(t, 0, f.sessions.Len())
}

func TestMyBookingsListsUserRows(t *testing.T) {
	f := newFixture(t, model.FlavorSlots)
	f.send(t, testUser, Cmd(CommandBook), Text("16.12.2024 11:00"), Text("Anna"), Text("123456"), Text("колено"))

	reply := f.send(t, testUser, Cmd(CommandMyBookings))
	assert.Contains(t, reply.Text, "16.12.2024 11:00 - Забронировано")
	assert.Contains(t, reply.Text, "колено")

	reply = f.send(t, "other", Cmd(CommandMyBookings))
	assert.Equal(t, msgNoRecords, reply.Text)

	f.table.FailWith(errors.New("locked"))
	reply = f.send(t, testUser, Cmd(CommandMyBookings))
	assert.Equal(t, msgRecordsFailed, reply.Text)
}

type brokenSessions struct{}

func (brokenSessions) Get(context.Context, string) (*model.Session, error) {
	return nil, errors.New("redis down")
}
func (brokenSessions) Put(context.Context, *model.Session) error { return errors.New("redis down") }
func (brokenSessions) Delete(context.Context, string) error      { return errors.New("redis down") }

func TestSessionStoreFailure(t *testing.T) {
	ledger := service.NewLedger(repository.NewMemoryTable(), zap.NewNop())
	e := NewEngine(model.FlavorSlots, brokenSessions{}, ledger, nil, zap.NewNop())

	reply := e.Handle(context.Background(), testUser, Cmd(CommandBook))
	assert.Equal(t, msgTryLater, reply.Text)
}

func TestFreeSlotsTextSortsTimes(t *testing.T) {
	f := newFixture(t, model.FlavorSlots)
	_, err := f.table.AppendRow(context.Background(),
		model.Cells{"15.12.2024", "08:00", "", "", "", "", string(model.BookingStatusOpen)})
	require.NoError(t, err)

	reply := f.send(t, testUser, Cmd(CommandFreeSlots))
	require.NotEmpty(t, reply.OpenSlots)
	assert.Equal(t, []string{"10:00", "14:00", "08:00"}, reply.OpenSlots[0].Times)

	early := strings.Index(reply.Text, "• 08:00")
	late := strings.Index(reply.Text, "• 10:00")
	require.NotEqual(t, -1, early)
	require.NotEqual(t, -1, late)
	assert.Less(t, early, late)
}

// skipFirstLedger теряет первый выбранный день при записи
type skipFirstLedger struct {
	*service.Ledger
}

func (l skipFirstLedger) AppendMany(ctx context.Context, days []string, ranges map[string]string, c model.Contact) []string {
	return l.Ledger.AppendMany(ctx, days[1:], ranges, c)
}

func TestMultiDayPartialWriteReportsWrittenDays(t *testing.T) {
	table := repository.NewMemoryTable()
	ledger := service.NewLedger(table, zap.NewNop())
	require.NoError(t, ledger.Init(context.Background(), model.FlavorMultiDay))
	notifier := &recordingNotifier{}
	engine := NewEngine(model.FlavorMultiDay, state.NewManager(), skipFirstLedger{ledger}, notifier, zap.NewNop())

	var reply Reply
	for _, in := range []Input{
		Cmd(CommandBook), Text("Anna"), Text("123456"), Text("-"),
		Day("Понедельник"), Day("Среда"), Cmd(CommandFinishDays),
		Text("9:00-12:00"), Text("14:00-16:00"),
	} {
		reply = engine.Handle(context.Background(), testUser, in)
	}

	assert.Equal(t, model.StepIdle, reply.Step)
	assert.Contains(t, reply.Text, "Среда: 14:00-16:00")
	assert.NotContains(t, reply.Text, "Понедельник")

	engine.Wait()
	msgs := notifier.Messages()
	require.Len(t, msgs, 1)
	assert.NotContains(t, msgs[0], "Понедельник")
}
