package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeSlots struct {
	calls map[string][]string
	fail  string
}

func (f *fakeSlots) AddSlots(_ context.Context, date string, times []string) (int, error) {
	if date == f.fail {
		return 0, errors.New("store down")
	}
	if f.calls == nil {
		f.calls = make(map[string][]string)
	}
	f.calls[date] = times
	return len(times), nil
}

// пятница
var friday = time.Date(2024, 12, 13, 9, 0, 0, 0, time.UTC)

func TestSlotPlan_Dates(t *testing.T) {
	plan := SlotPlan{Times: []string{"10:00"}, DaysAhead: 4, SkipWeekends: true}
	assert.Equal(t, []string{"16.12.2024", "17.12.2024"}, plan.Dates(friday))

	plan.SkipWeekends = false
	assert.Equal(t, []string{"14.12.2024", "15.12.2024", "16.12.2024", "17.12.2024"}, plan.Dates(friday))

	plan.Times = nil
	assert.Empty(t, plan.Dates(friday))
}

func TestScheduler_GenerateSlots(t *testing.T) {
	slots := &fakeSlots{}
	s := NewScheduler(slots, SlotPlan{Times: []string{"10:00", "15:00"}, DaysAhead: 3}, zap.NewNop())
	s.now = func() time.Time { return friday }

	assert.Equal(t, 6, s.GenerateSlots(context.Background()))
	assert.Len(t, slots.calls, 3)
	assert.Equal(t, []string{"10:00", "15:00"}, slots.calls["14.12.2024"])
}

func TestScheduler_StopsOnStoreError(t *testing.T) {
	slots := &fakeSlots{fail: "15.12.2024"}
	s := NewScheduler(slots, SlotPlan{Times: []string{"10:00"}, DaysAhead: 3}, zap.NewNop())
	s.now = func() time.Time { return friday }

	assert.Equal(t, 1, s.GenerateSlots(context.Background()))
	assert.NotContains(t, slots.calls, "16.12.2024")
}
