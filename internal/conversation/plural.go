package conversation

import "fmt"

// pluralize выбирает форму слова для числа: one (1, 21), few (2-4, 22-24), many (остальные)
func pluralize(count int, one, few, many string) string {
	n := count % 100
	if n < 0 {
		n = -n
	}
	switch {
	case n%10 == 1 && n != 11:
		return one
	case n%10 >= 2 && n%10 <= 4 && (n < 10 || n >= 20):
		return few
	}
	return many
}

func countBookings(n int) string {
	return fmt.Sprintf("%d %s", n, pluralize(n, "запись", "записи", "записей"))
}

func countDays(n int) string {
	return fmt.Sprintf("%d %s", n, pluralize(n, "день", "дня", "дней"))
}
