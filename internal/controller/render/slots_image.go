package render

import (
	"bytes"
	"errors"
	"image/color"
	"sort"

	"github.com/Freeeeeet/intake_bot/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Константы размеров и отступов
const (
	paddingX     = 24
	headerHeight = 56
	rowHeight    = 44
	dateWidth    = 120
	chipWidth    = 72
	chipHeight   = 28
	chipGap      = 10
	chipRadius   = 6.0
	minWidth     = 360
	legendHeight = 32
)

// Цветовая схема (та же, что у недельного расписания)
var (
	bgColor       = color.RGBA{245, 246, 248, 255}
	textColor     = color.RGBA{80, 85, 90, 220}
	evenRowColor  = color.NRGBA{240, 240, 240, 255}
	oddRowColor   = color.NRGBA{220, 220, 220, 255}
	slotFreeColor = color.RGBA{133, 193, 85, 220}
	slotTextColor = color.RGBA{20, 24, 28, 230}
	shadowColor   = color.RGBA{0, 0, 0, 20}
)

// ErrNoSlots нечего рисовать
var ErrNoSlots = errors.New("no open slots to render")

// SlotsImage рисует сетку свободных слотов: строка на дату, время отсортировано.
// Используется встроенный шрифт basicfont, поэтому все подписи латиницей и цифрами.
func SlotsImage(days []model.DaySlots) ([]byte, error) {
	if len(days) == 0 {
		return nil, ErrNoSlots
	}

	maxTimes := 0
	for _, d := range days {
		if len(d.Times) > maxTimes {
			maxTimes = len(d.Times)
		}
	}

	width := paddingX*2 + dateWidth + maxTimes*(chipWidth+chipGap)
	if width < minWidth {
		width = minWidth
	}
	height := headerHeight + len(days)*rowHeight + legendHeight

	dc := gg.NewContext(width, height)
	dc.SetColor(bgColor)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	drawHeader(dc, width)
	for i, d := range days {
		drawRow(dc, i, d, width)
	}
	drawLegend(dc, height)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawHeader(dc *gg.Context, width int) {
	dc.SetColor(textColor)
	dc.DrawStringAnchored("OPEN SLOTS", float64(width)/2, headerHeight/2, 0.5, 0.5)
}

func drawRow(dc *gg.Context, i int, d model.DaySlots, width int) {
	y := float64(headerHeight + i*rowHeight)

	if i%2 == 0 {
		dc.SetColor(evenRowColor)
	} else {
		dc.SetColor(oddRowColor)
	}
	dc.DrawRectangle(0, y, float64(width), rowHeight)
	dc.Fill()

	dc.SetColor(textColor)
	dc.DrawStringAnchored(d.Date, paddingX, y+rowHeight/2, 0, 0.5)

	times := append([]string(nil), d.Times...)
	sort.Strings(times)

	for j, t := range times {
		x := float64(paddingX + dateWidth + j*(chipWidth+chipGap))
		cy := y + (rowHeight-chipHeight)/2

		dc.SetColor(shadowColor)
		dc.DrawRoundedRectangle(x+2, cy+2, chipWidth, chipHeight, chipRadius)
		dc.Fill()

		dc.SetColor(slotFreeColor)
		dc.DrawRoundedRectangle(x, cy, chipWidth, chipHeight, chipRadius)
		dc.Fill()

		dc.SetColor(slotTextColor)
		dc.DrawStringAnchored(t, x+chipWidth/2, cy+chipHeight/2, 0.5, 0.5)
	}
}

func drawLegend(dc *gg.Context, height int) {
	y := float64(height - legendHeight/2)

	dc.SetColor(slotFreeColor)
	dc.DrawRoundedRectangle(paddingX, y-7, 14, 14, 3)
	dc.Fill()

	dc.SetColor(textColor)
	dc.DrawStringAnchored("free", paddingX+22, y, 0, 0.5)
}
