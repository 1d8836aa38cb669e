package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/Freeeeeet/intake_bot/internal/model"
)

// MemoryTable таблица в памяти процесса. Используется в тестах и для локального запуска.
type MemoryTable struct {
	mu      sync.Mutex
	headers model.Cells
	rows    []model.Cells // rows[0] соответствует строке 2
	failErr error
}

// NewMemoryTable создаёт пустую таблицу
func NewMemoryTable() *MemoryTable {
	return &MemoryTable{}
}

// FailWith заставляет все последующие операции возвращать err (nil снимает сбой)
func (t *MemoryTable) FailWith(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failErr = err
}

// Init заполняет заголовки и начальные строки, если таблица ещё пуста
func (t *MemoryTable) Init(_ context.Context, headers model.Cells, seed []model.Cells) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.failErr != nil {
		return t.failErr
	}
	if t.headers != (model.Cells{}) {
		return nil
	}
	t.headers = headers
	t.rows = append(t.rows, seed...)
	return nil
}

// Headers возвращает первую строку
func (t *MemoryTable) Headers() model.Cells {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.headers
}

// ReadRows возвращает копию строк до последней непустой
func (t *MemoryTable) ReadRows(_ context.Context) ([]Row, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.failErr != nil {
		return nil, fmt.Errorf("read rows: %w", t.failErr)
	}

	last := lastFilledRow(t.firstColumn())
	rows := make([]Row, 0, last-FirstDataRow+1)
	for idx := FirstDataRow; idx <= last; idx++ {
		rows = append(rows, Row{Index: idx, Cells: t.rows[idx-FirstDataRow]})
	}
	return rows, nil
}

// WriteRow перезаписывает строку, расширяя таблицу при необходимости
func (t *MemoryTable) WriteRow(_ context.Context, index int, cells model.Cells) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.failErr != nil {
		return fmt.Errorf("write row %d: %w", index, t.failErr)
	}
	if index < FirstDataRow {
		return fmt.Errorf("write row %d: %w", index, ErrHeaderRow)
	}
	t.put(index, cells)
	return nil
}

// AppendRow пишет строку в первую свободную позицию
func (t *MemoryTable) AppendRow(_ context.Context, cells model.Cells) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.failErr != nil {
		return 0, fmt.Errorf("append row: %w", t.failErr)
	}
	index := nextEmptyRow(t.firstColumn())
	t.put(index, cells)
	return index, nil
}

// RowCount количество строк данных
func (t *MemoryTable) RowCount(_ context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.failErr != nil {
		return 0, fmt.Errorf("row count: %w", t.failErr)
	}
	return lastFilledRow(t.firstColumn()) - FirstDataRow + 1, nil
}

func (t *MemoryTable) put(index int, cells model.Cells) {
	for len(t.rows) < index-FirstDataRow+1 {
		t.rows = append(t.rows, model.Cells{})
	}
	t.rows[index-FirstDataRow] = cells
}

func (t *MemoryTable) firstColumn() []string {
	col := make([]string, len(t.rows))
	for i, r := range t.rows {
		col[i] = r[0]
	}
	return col
}
