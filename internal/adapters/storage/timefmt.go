package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// TimeLayout is the stored form of timestamps: fixed width UTC so text
// ordering matches time ordering on both backends.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// DateLayout is the stored form of calendar dates.
const DateLayout = "2006-01-02"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// NullTime renders t in TimeLayout, or NULL for the zero time.
func NullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return FormatTime(t)
}

// NullDate renders t in DateLayout, or NULL for the zero time.
func NullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(DateLayout)
}

// NullString stores "" as NULL.
func NullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// NullFloat stores 0 as NULL.
func NullFloat(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}

// BindValue converts filter and patch values to their stored form.
func BindValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return NullTime(x)
	default:
		return v
	}
}

// ParseTime reads a stored timestamp or date. Unparseable input yields the
// zero time and an error.
func ParseTime(s string) (time.Time, error) {
	formats := []string{
		TimeLayout,
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		DateLayout,
	}
	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}

// ParseNullTime reads a nullable stored timestamp; NULL yields the zero time.
func ParseNullTime(ns sql.NullString) time.Time {
	if !ns.Valid || ns.String == "" {
		return time.Time{}
	}
	t, _ := ParseTime(ns.String)
	return t
}
