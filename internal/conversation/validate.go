package conversation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	NameMinLength  = 2
	PhoneMinLength = 5

	dateLayout = "02.01.2006"
)

var (
	timeRegex      = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)
	rangeSeparator = regexp.MustCompile(`\s*[-–—]\s*`)
	skipSituation  = []string{"-", "пропустить", "нет", "не хочу"}
)

// ValidationError ввод не прошёл проверку; Message показывается пользователю
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// ValidateName имя не короче двух видимых символов после обрезки пробелов
func ValidateName(s string) (string, error) {
	name := strings.TrimSpace(s)
	if visibleLen(name) < NameMinLength {
		return "", invalid("user_name",
			fmt.Sprintf("❌ Имя должно содержать хотя бы %d символа. Пожалуйста, введите ваше имя:", NameMinLength))
	}
	return name, nil
}

// visibleLen число отображаемых символов: без пробелов и служебных (Cf)
func visibleLen(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsGraphic(r) && !unicode.IsSpace(r) && !unicode.Is(unicode.Cf, r) {
			n++
		}
	}
	return n
}

// ValidatePhone телефон не короче пяти символов, формат не проверяется
func ValidatePhone(s string) (string, error) {
	phone := strings.TrimSpace(s)
	if utf8.RuneCountInString(phone) < PhoneMinLength {
		return "", invalid("user_phone",
			"❌ Номер телефона слишком короткий. Пожалуйста, введите корректный номер:")
	}
	return phone, nil
}

// NormalizeSituation пустая строка, если пользователь отказался описывать ситуацию
func NormalizeSituation(s string) string {
	situation := strings.TrimSpace(s)
	lower := strings.ToLower(situation)
	for _, w := range skipSituation {
		if lower == w {
			return ""
		}
	}
	return situation
}

// ValidateDate дата в формате ДД.ММ.ГГГГ не раньше сегодняшнего дня (по часам now)
func ValidateDate(s string, now time.Time) (string, error) {
	d, err := time.ParseInLocation("2.1.2006", strings.TrimSpace(s), now.Location())
	if err != nil {
		return "", invalid("chosen_date",
			"❌ Неверный формат даты!\n\nИспользуйте формат ДД.ММ.ГГГГ (например, 15.12.2024):")
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if d.Before(today) {
		return "", invalid("chosen_date",
			"❌ Эта дата уже прошла. Пожалуйста, введите дату не раньше сегодняшней:")
	}
	return d.Format(dateLayout), nil
}

// ValidateTime время ЧЧ:ММ, ведущий ноль у часа необязателен
func ValidateTime(s string) (string, error) {
	minutes, err := parseClock(strings.TrimSpace(s))
	if err != nil {
		return "", invalid("chosen_time",
			"❌ Неверный формат времени!\n\nИспользуйте формат ЧЧ:ММ (например, 09:30 или 14:45):")
	}
	return formatClock(minutes), nil
}

// ValidateTimeRange диапазон "9:00-12:00"; начало строго раньше конца.
// Возвращает нормализованный вид "09:00-12:00".
func ValidateTimeRange(s string) (string, error) {
	parts := rangeSeparator.Split(strings.TrimSpace(s), -1)
	if len(parts) != 2 {
		return "", invalid("days_with_times",
			"❌ Неверный формат!\n\nВведите диапазон времени в формате ЧЧ:ММ-ЧЧ:ММ (например, 9:00-12:00):")
	}

	start, err := parseClock(parts[0])
	if err != nil {
		return "", invalid("days_with_times",
			fmt.Sprintf("❌ Неверное время начала «%s». Часы от 0 до 23, минуты от 00 до 59:", parts[0]))
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return "", invalid("days_with_times",
			fmt.Sprintf("❌ Неверное время окончания «%s». Часы от 0 до 23, минуты от 00 до 59:", parts[1]))
	}
	if start >= end {
		return "", invalid("days_with_times",
			"❌ Время начала должно быть раньше времени окончания. Попробуйте ещё раз:")
	}
	return formatClock(start) + "-" + formatClock(end), nil
}

// parseClock минуты от начала суток
func parseClock(s string) (int, error) {
	m := timeRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return h*60 + mm, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
