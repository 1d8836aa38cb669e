package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Freeeeeet/intake_bot/internal/model"
	"github.com/Freeeeeet/intake_bot/internal/repository"
	"go.uber.org/zap"
)

var (
	// ErrSlotTaken слот уже не свободен (занят параллельно или не существует)
	ErrSlotTaken = errors.New("slot is not open")
	// ErrStoreUnavailable таблица недоступна; подробности только в логе
	ErrStoreUnavailable = errors.New("booking store unavailable")
	// ErrNoUserID пустой идентификатор пользователя
	ErrNoUserID = errors.New("user id is empty")
)

// SeedSlots слоты, которыми заполняется новая таблица в сценарии со слотами
var SeedSlots = []model.Slot{
	{Date: "15.12.2024", Time: "10:00"},
	{Date: "15.12.2024", Time: "14:00"},
	{Date: "16.12.2024", Time: "11:00"},
	{Date: "16.12.2024", Time: "15:00"},
	{Date: "17.12.2024", Time: "10:00"},
	{Date: "17.12.2024", Time: "16:00"},
	{Date: "18.12.2024", Time: "12:00"},
	{Date: "18.12.2024", Time: "17:00"},
}

// Ledger доменные операции над таблицей записей.
// Ошибки хранилища логируются здесь и наружу отдаются только как ErrStoreUnavailable.
type Ledger struct {
	table  repository.Table
	logger *zap.Logger
}

func NewLedger(table repository.Table, logger *zap.Logger) *Ledger {
	return &Ledger{
		table:  table,
		logger: logger,
	}
}

// Init создаёт таблицу для сценария, если её ещё нет
func (l *Ledger) Init(ctx context.Context, flavor model.Flavor) error {
	var seed []model.Cells
	if flavor == model.FlavorSlots {
		for _, s := range SeedSlots {
			seed = append(seed, openSlotCells(s))
		}
	}

	if err := l.table.Init(ctx, flavor.Headers(), seed); err != nil {
		l.logger.Error("Failed to init booking table", zap.String("flow", string(flavor)), zap.Error(err))
		return ErrStoreUnavailable
	}
	return nil
}

// ListOpenSlots свободные слоты в порядке строк таблицы.
// При ошибке чтения возвращает пустой список.
func (l *Ledger) ListOpenSlots(ctx context.Context) []model.Slot {
	rows, err := l.table.ReadRows(ctx)
	if err != nil {
		l.logger.Error("Failed to read open slots", zap.Error(err))
		return []model.Slot{}
	}

	slots := []model.Slot{}
	for _, r := range rows {
		rec := model.RecordFromCells(r.Index, r.Cells)
		if isOpen(rec) {
			slots = append(slots, model.Slot{Date: rec.Date, Time: rec.Time})
		}
	}
	return slots
}

// ListOpenSlotsGrouped свободное время по датам; даты и время в порядке строк таблицы
func (l *Ledger) ListOpenSlotsGrouped(ctx context.Context) []model.DaySlots {
	var (
		grouped []model.DaySlots
		pos     = make(map[string]int)
	)
	for _, s := range l.ListOpenSlots(ctx) {
		i, ok := pos[s.Date]
		if !ok {
			i = len(grouped)
			pos[s.Date] = i
			grouped = append(grouped, model.DaySlots{Date: s.Date})
		}
		grouped[i].Times = append(grouped[i].Times, s.Time)
	}
	return grouped
}

// ReserveSlot занимает свободную строку с указанными датой и временем.
// Поиск и запись - две отдельные операции над таблицей, поэтому два параллельных
// вызова могут найти одну и ту же свободную строку; выигрывает последний записавший.
func (l *Ledger) ReserveSlot(ctx context.Context, slot model.Slot, c model.Contact) error {
	rows, err := l.table.ReadRows(ctx)
	if err != nil {
		l.logger.Error("Failed to read rows for reservation",
			zap.String("date", slot.Date),
			zap.String("time", slot.Time),
			zap.Error(err))
		return ErrStoreUnavailable
	}

	for _, r := range rows {
		rec := model.RecordFromCells(r.Index, r.Cells)
		if !isOpen(rec) || rec.Date != slot.Date || rec.Time != slot.Time {
			continue
		}

		rec.DisplayName = c.DisplayName
		rec.UserID = c.UserID
		rec.Phone = c.Phone
		rec.Situation = c.Situation
		rec.Status = model.BookingStatusReserved

		if err := l.table.WriteRow(ctx, r.Index, rec.Cells()); err != nil {
			l.logger.Error("Failed to write reservation",
				zap.Int("row", r.Index),
				zap.String("date", slot.Date),
				zap.String("time", slot.Time),
				zap.Error(err))
			return ErrStoreUnavailable
		}

		l.logger.Info("Slot reserved",
			zap.Int("row", r.Index),
			zap.String("date", slot.Date),
			zap.String("time", slot.Time),
			zap.String("user_id", c.UserID))
		return nil
	}

	l.logger.Warn("Slot is not open",
		zap.String("date", slot.Date),
		zap.String("time", slot.Time),
		zap.String("user_id", c.UserID))
	return ErrSlotTaken
}

// AppendRequest добавляет заявку со статусом "ожидает подтверждения"
func (l *Ledger) AppendRequest(ctx context.Context, date, time string, c model.Contact) error {
	rec := pendingRecord(date, time, c)

	row, err := l.table.AppendRow(ctx, rec.Cells())
	if err != nil {
		l.logger.Error("Failed to append request",
			zap.String("date", date),
			zap.String("time", time),
			zap.Error(err))
		return ErrStoreUnavailable
	}

	l.logger.Info("Request appended",
		zap.Int("row", row),
		zap.String("date", date),
		zap.String("time", time),
		zap.String("user_id", c.UserID))
	return nil
}

// AppendMany добавляет по строке на каждый день из days с диапазоном из ranges.
// День без диапазона пропускается. Возвращает записанные дни в порядке days;
// на первой ошибке хранилища останавливается.
func (l *Ledger) AppendMany(ctx context.Context, days []string, ranges map[string]string, c model.Contact) []string {
	var written []string
	for _, day := range days {
		r, ok := ranges[day]
		if !ok {
			l.logger.Debug("Day has no time range, skipped", zap.String("day", day))
			continue
		}
		if err := l.AppendRequest(ctx, day, r, c); err != nil {
			break
		}
		written = append(written, day)
	}
	return written
}

// ListByUser записи пользователя в порядке строк таблицы
func (l *Ledger) ListByUser(ctx context.Context, userID string) ([]model.BookingRecord, error) {
	// Строки со свободными слотами хранят пустой ID
	if strings.TrimSpace(userID) == "" {
		return nil, ErrNoUserID
	}

	rows, err := l.table.ReadRows(ctx)
	if err != nil {
		l.logger.Error("Failed to read user records", zap.String("user_id", userID), zap.Error(err))
		return nil, ErrStoreUnavailable
	}

	var records []model.BookingRecord
	for _, r := range rows {
		rec := model.RecordFromCells(r.Index, r.Cells)
		if rec.UserID == userID {
			records = append(records, rec)
		}
	}
	return records, nil
}

// AddSlots заводит свободные слоты на дату; уже существующие пары дата+время пропускаются.
// Возвращает количество добавленных слотов.
func (l *Ledger) AddSlots(ctx context.Context, date string, times []string) (int, error) {
	rows, err := l.table.ReadRows(ctx)
	if err != nil {
		l.logger.Error("Failed to read rows for new slots", zap.String("date", date), zap.Error(err))
		return 0, ErrStoreUnavailable
	}

	existing := make(map[model.Slot]bool, len(rows))
	for _, r := range rows {
		rec := model.RecordFromCells(r.Index, r.Cells)
		existing[model.Slot{Date: rec.Date, Time: rec.Time}] = true
	}

	added := 0
	for _, t := range times {
		slot := model.Slot{Date: date, Time: strings.TrimSpace(t)}
		if slot.Time == "" || existing[slot] {
			continue
		}
		if _, err := l.table.AppendRow(ctx, openSlotCells(slot)); err != nil {
			l.logger.Error("Failed to add slot",
				zap.String("date", slot.Date),
				zap.String("time", slot.Time),
				zap.Error(err))
			return added, ErrStoreUnavailable
		}
		existing[slot] = true
		added++
	}

	if added > 0 {
		l.logger.Info("Slots added", zap.String("date", date), zap.Int("count", added))
	}
	return added, nil
}

func isOpen(rec model.BookingRecord) bool {
	return rec.Status == model.BookingStatusOpen && rec.Date != "" && rec.Time != ""
}

func openSlotCells(s model.Slot) model.Cells {
	return model.BookingRecord{Date: s.Date, Time: s.Time, Status: model.BookingStatusOpen}.Cells()
}

func pendingRecord(date, time string, c model.Contact) model.BookingRecord {
	return model.BookingRecord{
		Date:        date,
		Time:        time,
		DisplayName: c.DisplayName,
		UserID:      c.UserID,
		Phone:       c.Phone,
		Situation:   c.Situation,
		Status:      model.BookingStatusPending,
	}
}
