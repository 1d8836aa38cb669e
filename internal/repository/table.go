package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Freeeeeet/intake_bot/internal/model"
)

// FirstDataRow первая строка с данными (строка 1 занята заголовками)
const FirstDataRow = 2

// ErrHeaderRow запись в строку заголовков запрещена
var ErrHeaderRow = errors.New("row 1 holds headers")

// Row строка таблицы с её номером
type Row struct {
	Index int
	Cells model.Cells
}

// Table табличное хранилище записей фиксированной ширины.
// Каждая операция самостоятельно открывает, читает или меняет и закрывает хранилище,
// блокировок между операциями нет.
type Table interface {
	// Init создаёт лист с заголовками и начальными строками, если его ещё нет
	Init(ctx context.Context, headers model.Cells, seed []model.Cells) error
	// ReadRows возвращает строки со второй по последнюю с непустой первой колонкой
	ReadRows(ctx context.Context) ([]Row, error)
	// WriteRow перезаписывает строку с указанным номером
	WriteRow(ctx context.Context, index int, cells model.Cells) error
	// AppendRow пишет в первую строку с пустой первой колонкой и возвращает её номер
	AppendRow(ctx context.Context, cells model.Cells) (int, error)
	// RowCount количество строк данных
	RowCount(ctx context.Context) (int, error)
}

// nextEmptyRow находит первую строку начиная со второй, у которой пустая первая колонка.
// firstColumn содержит значения первой колонки начиная со второй строки.
func nextEmptyRow(firstColumn []string) int {
	for i, v := range firstColumn {
		if strings.TrimSpace(v) == "" {
			return FirstDataRow + i
		}
	}
	return FirstDataRow + len(firstColumn)
}

// lastFilledRow номер последней строки с непустой первой колонкой (1, если данных нет)
func lastFilledRow(firstColumn []string) int {
	last := FirstDataRow - 1
	for i, v := range firstColumn {
		if strings.TrimSpace(v) != "" {
			last = FirstDataRow + i
		}
	}
	return last
}
