package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/intake_bot/internal/model"
	"github.com/Freeeeeet/intake_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const upsertRowQuery = `
	INSERT INTO sheet_rows (sheet, row_index, c1, c2, c3, c4, c5, c6, c7)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (sheet, row_index) DO UPDATE SET
		c1 = EXCLUDED.c1, c2 = EXCLUDED.c2, c3 = EXCLUDED.c3, c4 = EXCLUDED.c4,
		c5 = EXCLUDED.c5, c6 = EXCLUDED.c6, c7 = EXCLUDED.c7, updated_at = now()
`

// PGTable таблица записей, хранящая строки листа в Postgres (таблица sheet_rows).
// Семантика та же, что у файла: номера строк, первая пустая строка для добавления.
type PGTable struct {
	*base.Repository
	sheet string
}

// NewPGTable создаёт адаптер для листа sheet
func NewPGTable(pool base.DB, sheet string) *PGTable {
	return &PGTable{
		Repository: base.NewRepository(pool),
		sheet:      sheet,
	}
}

// Init записывает заголовки и начальные строки, если лист ещё не создан
func (t *PGTable) Init(ctx context.Context, headers model.Cells, seed []model.Cells) error {
	var exists bool
	err := t.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sheet_rows WHERE sheet = $1 AND row_index = 1)`,
		t.sheet,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check sheet: %w", err)
	}
	if exists {
		return nil
	}

	err = t.InTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		batch.Queue(upsertRowQuery, upsertArgs(t.sheet, 1, headers)...)
		for i, cells := range seed {
			batch.Queue(upsertRowQuery, upsertArgs(t.sheet, FirstDataRow+i, cells)...)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("init sheet %s: %w", t.sheet, err)
	}
	return nil
}

// ReadRows возвращает строки со второй по последнюю непустую, пропуски заполняются пустыми строками
func (t *PGTable) ReadRows(ctx context.Context) ([]Row, error) {
	stored, err := t.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	column := positionalFirstColumn(stored)
	last := lastFilledRow(column)

	rows := make([]Row, 0, last-FirstDataRow+1)
	for idx := FirstDataRow; idx <= last; idx++ {
		rows = append(rows, Row{Index: idx, Cells: stored[idx]})
	}
	return rows, nil
}

// WriteRow перезаписывает строку
func (t *PGTable) WriteRow(ctx context.Context, index int, cells model.Cells) error {
	if index < FirstDataRow {
		return fmt.Errorf("write row %d: %w", index, ErrHeaderRow)
	}
	if _, err := t.ExecAffected(ctx, upsertRowQuery, upsertArgs(t.sheet, index, cells)...); err != nil {
		return fmt.Errorf("write row %d: %w", index, err)
	}
	return nil
}

// AppendRow пишет строку в первую строку с пустой первой колонкой
func (t *PGTable) AppendRow(ctx context.Context, cells model.Cells) (int, error) {
	stored, err := t.load(ctx)
	if err != nil {
		return 0, fmt.Errorf("append row: %w", err)
	}

	index := nextEmptyRow(positionalFirstColumn(stored))
	if _, err := t.ExecAffected(ctx, upsertRowQuery, upsertArgs(t.sheet, index, cells)...); err != nil {
		return 0, fmt.Errorf("append row %d: %w", index, err)
	}
	return index, nil
}

// RowCount количество строк данных
func (t *PGTable) RowCount(ctx context.Context) (int, error) {
	stored, err := t.load(ctx)
	if err != nil {
		return 0, fmt.Errorf("row count: %w", err)
	}
	return lastFilledRow(positionalFirstColumn(stored)) - FirstDataRow + 1, nil
}

// load читает все строки данных листа, ключ - номер строки
func (t *PGTable) load(ctx context.Context) (map[int]model.Cells, error) {
	rows, err := t.Query(ctx, `
		SELECT row_index, c1, c2, c3, c4, c5, c6, c7
		FROM sheet_rows
		WHERE sheet = $1 AND row_index >= $2
		ORDER BY row_index
	`, t.sheet, FirstDataRow)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stored := make(map[int]model.Cells)
	for rows.Next() {
		var (
			idx int
			c   model.Cells
		)
		if err := rows.Scan(&idx, &c[0], &c[1], &c[2], &c[3], &c[4], &c[5], &c[6]); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		stored[idx] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stored, nil
}

func positionalFirstColumn(stored map[int]model.Cells) []string {
	maxIdx := FirstDataRow - 1
	for idx := range stored {
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	column := make([]string, maxIdx-FirstDataRow+1)
	for idx, c := range stored {
		column[idx-FirstDataRow] = c[0]
	}
	return column
}

func upsertArgs(sheet string, index int, c model.Cells) []interface{} {
	return []interface{}{sheet, index, c[0], c[1], c[2], c[3], c[4], c[5], c[6]}
}
