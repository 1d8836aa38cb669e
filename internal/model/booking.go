package model

// BookingStatus метка статуса в последней колонке таблицы.
// Сравнивается строго по строке, поэтому литералы менять нельзя.
type BookingStatus string

const (
	BookingStatusOpen     BookingStatus = "Свободно"               // Слот заведён оператором и свободен
	BookingStatusReserved BookingStatus = "Забронировано"          // Слот занят пользователем
	BookingStatusPending  BookingStatus = "Ожидает подтверждения" // Заявка ждёт ручного подтверждения
)

// ColumnCount количество колонок в строке таблицы записей
const ColumnCount = 7

// Номера колонок (с единицы, как в таблице)
const (
	ColDate = iota + 1
	ColTime
	ColName
	ColUserID
	ColPhone
	ColSituation
	ColStatus
)

// Cells значения одной строки таблицы
type Cells [ColumnCount]string

// BookingRecord строка таблицы записей.
// Date хранит дату ("15.12.2024") или день недели ("Понедельник"),
// Time хранит время ("10:00") или диапазон ("09:00-12:00") в зависимости от сценария.
type BookingRecord struct {
	Row         int           `json:"row"`
	Date        string        `json:"date"`
	Time        string        `json:"time"`
	DisplayName string        `json:"display_name"`
	UserID      string        `json:"user_id"`
	Phone       string        `json:"phone"`
	Situation   string        `json:"situation"`
	Status      BookingStatus `json:"status"`
}

// Cells раскладывает запись по колонкам
func (r BookingRecord) Cells() Cells {
	return Cells{r.Date, r.Time, r.DisplayName, r.UserID, r.Phone, r.Situation, string(r.Status)}
}

// RecordFromCells собирает запись из строки таблицы
func RecordFromCells(row int, c Cells) BookingRecord {
	return BookingRecord{
		Row:         row,
		Date:        c[ColDate-1],
		Time:        c[ColTime-1],
		DisplayName: c[ColName-1],
		UserID:      c[ColUserID-1],
		Phone:       c[ColPhone-1],
		Situation:   c[ColSituation-1],
		Status:      BookingStatus(c[ColStatus-1]),
	}
}

// Contact данные пользователя, собранные в диалоге
type Contact struct {
	DisplayName string
	UserID      string
	Phone       string
	Situation   string
}
