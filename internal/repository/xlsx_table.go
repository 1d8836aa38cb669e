package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/Freeeeeet/intake_bot/internal/model"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	reservedFillColor = "FFB6C1"
	hintCellRange     = "L1:P3"
	hintText          = "___Правило, чтобы все корректно работало___\n Все данные в таблице указываются в следующем формате: '15.12.2024'"
)

var columnWidths = [model.ColumnCount]float64{15, 10, 20, 15, 15, 30, 15}

// XLSXTable таблица записей в файле Excel.
// Файл открывается и закрывается на каждую операцию.
type XLSXTable struct {
	path      string
	sheet     string
	highlight model.BookingStatus
	logger    *zap.Logger

	// mu защищает только сам файл от одновременной записи внутри процесса;
	// последовательность "прочитать, затем записать" на уровне реестра по-прежнему не атомарна.
	mu sync.Mutex
}

// NewXLSXTable создаёт адаптер для файла path и листа sheet.
// Строки со статусом highlight при записи заливаются цветом.
func NewXLSXTable(path, sheet string, highlight model.BookingStatus, logger *zap.Logger) *XLSXTable {
	return &XLSXTable{
		path:      path,
		sheet:     sheet,
		highlight: highlight,
		logger:    logger,
	}
}

// Path путь к файлу таблицы
func (t *XLSXTable) Path() string {
	return t.path
}

// Init создаёт файл с заголовками, подсказкой и начальными слотами
func (t *XLSXTable) Init(_ context.Context, headers model.Cells, seed []model.Cells) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := os.Stat(t.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", t.path, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), t.sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := t.setRow(f, 1, headers); err != nil {
		return err
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(t.sheet, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := t.writeHint(f); err != nil {
		return err
	}

	for i, cells := range seed {
		if err := t.setRow(f, FirstDataRow+i, cells); err != nil {
			return err
		}
	}

	if err := f.SaveAs(t.path); err != nil {
		return fmt.Errorf("save %s: %w", t.path, err)
	}

	t.logger.Info("Excel file created",
		zap.String("path", t.path),
		zap.Int("seed_rows", len(seed)))
	return nil
}

// ReadRows читает строки листа до последней строки с непустой первой колонкой
func (t *XLSXTable) ReadRows(_ context.Context) ([]Row, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := excelize.OpenFile(t.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", t.path, err)
	}
	defer f.Close()

	return t.readRows(f)
}

// WriteRow перезаписывает строку и сохраняет файл
func (t *XLSXTable) WriteRow(_ context.Context, index int, cells model.Cells) error {
	if index < FirstDataRow {
		return fmt.Errorf("write row %d: %w", index, ErrHeaderRow)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := excelize.OpenFile(t.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", t.path, err)
	}
	defer f.Close()

	if err := t.setRow(f, index, cells); err != nil {
		return err
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("save %s: %w", t.path, err)
	}
	return nil
}

// AppendRow пишет строку в первую строку с пустой первой колонкой
func (t *XLSXTable) AppendRow(_ context.Context, cells model.Cells) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := excelize.OpenFile(t.path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", t.path, err)
	}
	defer f.Close()

	column, err := t.firstColumn(f)
	if err != nil {
		return 0, err
	}

	index := nextEmptyRow(column)
	if err := t.setRow(f, index, cells); err != nil {
		return 0, err
	}
	if err := f.Save(); err != nil {
		return 0, fmt.Errorf("save %s: %w", t.path, err)
	}
	return index, nil
}

// RowCount количество строк данных
func (t *XLSXTable) RowCount(_ context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := excelize.OpenFile(t.path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", t.path, err)
	}
	defer f.Close()

	column, err := t.firstColumn(f)
	if err != nil {
		return 0, err
	}
	return lastFilledRow(column) - FirstDataRow + 1, nil
}

func (t *XLSXTable) readRows(f *excelize.File) ([]Row, error) {
	raw, err := f.GetRows(t.sheetName(f))
	if err != nil {
		return nil, fmt.Errorf("get rows: %w", err)
	}

	column := firstColumnOf(raw)
	last := lastFilledRow(column)

	rows := make([]Row, 0, last-FirstDataRow+1)
	for idx := FirstDataRow; idx <= last; idx++ {
		var cells model.Cells
		if idx-1 < len(raw) {
			// Пустые ячейки в конце строки excelize не возвращает
			copy(cells[:], raw[idx-1])
		}
		rows = append(rows, Row{Index: idx, Cells: cells})
	}
	return rows, nil
}

func (t *XLSXTable) firstColumn(f *excelize.File) ([]string, error) {
	raw, err := f.GetRows(t.sheetName(f))
	if err != nil {
		return nil, fmt.Errorf("get rows: %w", err)
	}
	return firstColumnOf(raw), nil
}

func (t *XLSXTable) setRow(f *excelize.File, index int, cells model.Cells) error {
	sheet := t.sheetName(f)

	start, err := excelize.CoordinatesToCellName(1, index)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}

	values := make([]interface{}, len(cells))
	for i, v := range cells {
		values[i] = v
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("set row %d: %w", index, err)
	}

	if t.highlight != "" && model.BookingStatus(cells[model.ColStatus-1]) == t.highlight {
		end, err := excelize.CoordinatesToCellName(model.ColumnCount, index)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{reservedFillColor}, Pattern: 1},
		})
		if err != nil {
			return fmt.Errorf("new style: %w", err)
		}
		if err := f.SetCellStyle(sheet, start, end, style); err != nil {
			return fmt.Errorf("set style: %w", err)
		}
	}
	return nil
}

func (t *XLSXTable) writeHint(f *excelize.File) error {
	if err := f.MergeCell(t.sheet, "L1", "P3"); err != nil {
		return fmt.Errorf("merge %s: %w", hintCellRange, err)
	}
	if err := f.SetCellValue(t.sheet, "L1", hintText); err != nil {
		return fmt.Errorf("set hint: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top", Horizontal: "left"},
	})
	if err != nil {
		return fmt.Errorf("new style: %w", err)
	}
	return f.SetCellStyle(t.sheet, "L1", "L1", style)
}

// sheetName лист из настроек, а если его нет в файле, то активный
func (t *XLSXTable) sheetName(f *excelize.File) string {
	if idx, err := f.GetSheetIndex(t.sheet); err == nil && idx >= 0 {
		return t.sheet
	}
	return f.GetSheetName(f.GetActiveSheetIndex())
}

func firstColumnOf(raw [][]string) []string {
	if len(raw) <= 1 {
		return nil
	}
	column := make([]string, 0, len(raw)-1)
	for _, r := range raw[1:] {
		if len(r) == 0 {
			column = append(column, "")
			continue
		}
		column = append(column, r[0])
	}
	return column
}
