package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	slotGenerationInterval = 24 * time.Hour
	slotDateLayout         = "02.01.2006"
)

// SlotAdder заводит свободные слоты на дату
type SlotAdder interface {
	AddSlots(ctx context.Context, date string, times []string) (int, error)
}

// SlotPlan что и на сколько дней вперёд генерировать
type SlotPlan struct {
	Times        []string
	DaysAhead    int
	SkipWeekends bool
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	slots    SlotAdder
	plan     SlotPlan
	logger   *zap.Logger
	now      func() time.Time
	stopChan chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(slots SlotAdder, plan SlotPlan, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		slots:    slots,
		plan:     plan,
		logger:   logger,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler",
		zap.Strings("times", s.plan.Times),
		zap.Int("days_ahead", s.plan.DaysAhead))

	go s.runSlotGenerationTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runSlotGenerationTask периодически заводит слоты на ближайшие дни
func (s *Scheduler) runSlotGenerationTask(ctx context.Context) {
	// Первый запуск сразу при старте
	s.GenerateSlots(ctx)

	ticker := time.NewTicker(slotGenerationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.GenerateSlots(ctx)
		case <-s.stopChan:
			s.logger.Info("Slot generation task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Slot generation task cancelled")
			return
		}
	}
}

// GenerateSlots заводит слоты на все даты плана; возвращает число новых слотов
func (s *Scheduler) GenerateSlots(ctx context.Context) int {
	s.logger.Info("Starting automatic slot generation")

	total := 0
	for _, date := range s.plan.Dates(s.now()) {
		added, err := s.slots.AddSlots(ctx, date, s.plan.Times)
		total += added
		if err != nil {
			s.logger.Error("Failed to generate slots", zap.String("date", date), zap.Error(err))
			return total
		}
	}

	s.logger.Info("Automatic slot generation completed successfully", zap.Int("added", total))
	return total
}

// Dates даты DD.MM.YYYY с завтрашнего дня на DaysAhead дней вперёд
func (p SlotPlan) Dates(now time.Time) []string {
	if len(p.Times) == 0 {
		return nil
	}

	var dates []string
	for i := 1; i <= p.DaysAhead; i++ {
		day := now.AddDate(0, 0, i)
		if p.SkipWeekends && (day.Weekday() == time.Saturday || day.Weekday() == time.Sunday) {
			continue
		}
		dates = append(dates, day.Format(slotDateLayout))
	}
	return dates
}
