package utils

import "time"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// IsISODate reports whether s is a calendar date in YYYY-MM-DD form.
func IsISODate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// IsClockTime reports whether s is a 24h time in HH:MM form.
func IsClockTime(s string) bool {
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

func Today() string {
	return time.Now().Format(DateLayout)
}
