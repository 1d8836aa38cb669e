package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Freeeeeet/intake_bot/internal/model"
	"github.com/Freeeeeet/intake_bot/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLedger(t *testing.T, flavor model.Flavor) (*Ledger, *repository.MemoryTable) {
	t.Helper()
	table := repository.NewMemoryTable()
	l := NewLedger(table, zap.NewNop())
	require.NoError(t, l.Init(context.Background(), flavor))
	return l, table
}

var anna = model.Contact{DisplayName: "Anna", UserID: "42", Phone: "123456"}

func TestLedger_InitSeedsOnlySlots(t *testing.T) {
	ctx := context.Background()

	l, table := newLedger(t, model.FlavorSlots)
	assert.Equal(t, model.FlavorSlots.Headers(), table.Headers())
	assert.Equal(t, SeedSlots, l.ListOpenSlots(ctx))

	l, table = newLedger(t, model.FlavorMultiDay)
	assert.Equal(t, "День недели", table.Headers()[0])
	assert.Empty(t, l.ListOpenSlots(ctx))

	// повторный Init ничего не дописывает
	l, table = newLedger(t, model.FlavorSlots)
	require.NoError(t, l.Init(ctx, model.FlavorSlots))
	n, err := table.RowCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(SeedSlots), n)
}

func TestLedger_ReserveSlot(t *testing.T) {
	ctx := context.Background()
	l, table := newLedger(t, model.FlavorSlots)
	slot := model.Slot{Date: "16.12.2024", Time: "11:00"}

	require.NoError(t, l.ReserveSlot(ctx, slot, anna))

	rows, err := table.ReadRows(ctx)
	require.NoError(t, err)
	assert.Equal(t,
		model.Cells{"16.12.2024", "11:00", "Anna", "42", "123456", "", "Забронировано"},
		rows[2].Cells)

	err = l.ReserveSlot(ctx, slot, model.Contact{DisplayName: "Boris", UserID: "7", Phone: "654321"})
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NotContains(t, l.ListOpenSlots(ctx), slot)

	err = l.ReserveSlot(ctx, model.Slot{Date: "01.01.2030", Time: "10:00"}, anna)
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestLedger_StoreFailure(t *testing.T) {
	ctx := context.Background()
	l, table := newLedger(t, model.FlavorSlots)
	table.FailWith(errors.New("file is locked"))

	assert.Equal(t, []model.Slot{}, l.ListOpenSlots(ctx))
	assert.ErrorIs(t, l.ReserveSlot(ctx, SeedSlots[0], anna), ErrStoreUnavailable)
	assert.ErrorIs(t, l.AppendRequest(ctx, "15.12.2024", "10:00", anna), ErrStoreUnavailable)
	assert.Empty(t, l.AppendMany(ctx, []string{"Среда"}, map[string]string{"Среда": "09:00-10:00"}, anna))

	_, err := l.ListByUser(ctx, "42")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = l.AddSlots(ctx, "20.12.2024", []string{"10:00"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestLedger_AppendManySkipsDaysWithoutRange(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t, model.FlavorMultiDay)

	written := l.AppendMany(ctx,
		[]string{"Понедельник", "Вторник", "Среда"},
		map[string]string{"Понедельник": "09:00-12:00", "Среда": "14:00-16:00"},
		anna)
	assert.Equal(t, []string{"Понедельник", "Среда"}, written)

	records, err := l.ListByUser(ctx, "42")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Понедельник", records[0].Date)
	assert.Equal(t, "Среда", records[1].Date)
	assert.Equal(t, 3, records[1].Row)
	for _, r := range records {
		assert.Equal(t, model.BookingStatusPending, r.Status)
	}
}

func TestLedger_ListOpenSlotsGrouped(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t, model.FlavorSlots)

	require.NoError(t, l.ReserveSlot(ctx, model.Slot{Date: "17.12.2024", Time: "10:00"}, anna))
	require.NoError(t, l.ReserveSlot(ctx, model.Slot{Date: "17.12.2024", Time: "16:00"}, anna))

	grouped := l.ListOpenSlotsGrouped(ctx)
	require.Len(t, grouped, 3)
	assert.Equal(t, model.DaySlots{Date: "15.12.2024", Times: []string{"10:00", "14:00"}}, grouped[0])
	assert.Equal(t, "18.12.2024", grouped[2].Date)
}

func TestLedger_AddSlots(t *testing.T) {
	ctx := context.Background()
	l, table := newLedger(t, model.FlavorSlots)

	added, err := l.AddSlots(ctx, "15.12.2024", []string{"10:00", "12:00", " ", "12:00"})
	require.NoError(t, err)
	assert.Equal(t, 1, added, "existing and repeated times are skipped")

	added, err = l.AddSlots(ctx, "19.12.2024", []string{"09:00", "11:00"})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	n, err := table.RowCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(SeedSlots)+3, n)
	assert.Contains(t, l.ListOpenSlots(ctx), model.Slot{Date: "19.12.2024", Time: "11:00"})
}

func TestLedger_ListByUser(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t, model.FlavorSlots)

	require.NoError(t, l.ReserveSlot(ctx, SeedSlots[3], anna))
	require.NoError(t, l.ReserveSlot(ctx, SeedSlots[1], anna))
	require.NoError(t, l.ReserveSlot(ctx, SeedSlots[2], model.Contact{DisplayName: "Boris", UserID: "7", Phone: "654321"}))

	records, err := l.ListByUser(ctx, "42")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, SeedSlots[1].Time, records[0].Time, "table order")
	assert.Equal(t, SeedSlots[3].Time, records[1].Time)

	records, err = l.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLedger_OpenSlotsKeepRowOrder(t *testing.T) {
	ctx := context.Background()
	l, table := newLedger(t, model.FlavorSlots)

	for _, s := range []model.Slot{{Date: "14.12.2024", Time: "09:00"}, {Date: "15.12.2024", Time: "08:00"}} {
		_, err := table.AppendRow(ctx, openSlotCells(s))
		require.NoError(t, err)
	}

	open := l.ListOpenSlots(ctx)
	require.Len(t, open, len(SeedSlots)+2)
	assert.Equal(t, []model.Slot{
		{Date: "14.12.2024", Time: "09:00"},
		{Date: "15.12.2024", Time: "08:00"},
	}, open[len(open)-2:])

	grouped := l.ListOpenSlotsGrouped(ctx)
	assert.Equal(t, "15.12.2024", grouped[0].Date)
	assert.Equal(t, []string{"10:00", "14:00", "08:00"}, grouped[0].Times)
	assert.Equal(t, "14.12.2024", grouped[len(grouped)-1].Date, "first seen order, not calendar order")
}

func TestLedger_ListByUserRejectsEmptyID(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t, model.FlavorSlots)

	for _, id := range []string{"", "  "} {
		records, err := l.ListByUser(ctx, id)
		assert.ErrorIs(t, err, ErrNoUserID)
		assert.Empty(t, records, "open slots have no user id")
	}
}
