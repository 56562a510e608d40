package calendar

import (
	"errors"
	"time"
)

// DateLayout: формат дат в API и запросах.
const DateLayout = "2006-01-02"

var (
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrInvalidWeekday   = errors.New("weekday must be between 1 and 7")
)

// DateOnly отбрасывает время и зону: полночь UTC той же календарной даты.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today: текущая дата площадки в часовом поясе loc.
func Today(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOnly(time.Now().In(loc))
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ISOWeekday: 1 = понедельник, 7 = воскресенье.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func ValidWeekday(day int) bool {
	return day >= 1 && day <= 7
}

var dayNames = map[int]string{
	1: "Senin",
	2: "Selasa",
	3: "Rabu",
	4: "Kamis",
	5: "Jumat",
	6: "Sabtu",
	7: "Minggu",
}

// TodayLabel: подпись первой колонки недельной матрицы.
const TodayLabel = "Hari Ini"

// DayName возвращает название дня недели по ISO-коду, "" для неверного кода.
func DayName(isoDay int) string {
	return dayNames[isoDay]
}

// UpcomingDays: n последовательных дат начиная с from (включительно).
func UpcomingDays(from time.Time, n int) []time.Time {
	from = DateOnly(from)
	days := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, from.AddDate(0, 0, i))
	}
	return days
}

// DateRange: закрытый интервал дат [Start, End].
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange нормализует границы до дат и проверяет End >= Start.
func NewDateRange(start, end time.Time) (DateRange, error) {
	if start.IsZero() || end.IsZero() {
		return DateRange{}, ErrInvalidDateRange
	}
	start, end = DateOnly(start), DateOnly(end)
	if end.Before(start) {
		return DateRange{}, ErrInvalidDateRange
	}
	return DateRange{Start: start, End: end}, nil
}

func (r DateRange) Contains(d time.Time) bool {
	d = DateOnly(d)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Overlaps: касание концами тоже пересечение,
// a.Start <= b.End && b.Start <= a.End.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.Start.After(o.End) && !o.Start.After(r.End)
}

// HasOverlap проверяет newRange против existing и возвращает конфликтующие.
func HasOverlap(newRange DateRange, existing []DateRange) (bool, []DateRange) {
	var conflicts []DateRange
	for _, r := range existing {
		if newRange.Overlaps(r) {
			conflicts = append(conflicts, r)
		}
	}
	return len(conflicts) > 0, conflicts
}

// OccursOn: попадает ли дата d в еженедельное повторение isoDay внутри r.
func OccursOn(r DateRange, isoDay int, d time.Time) bool {
	return r.Contains(d) && ISOWeekday(d) == isoDay
}
