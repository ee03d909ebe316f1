package utils

import (
	"time"
)

// UnixTimeToTime converts a Unix timestamp in seconds to time.Time.
func UnixTimeToTime(unixTime int64) time.Time {
	return time.Unix(unixTime, 0)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AtTimeOfDay returns day's date combined with the given wall-clock
// hour and minute. Used to resolve cancellation cutoffs from a menu
// configuration's end time.
func AtTimeOfDay(day time.Time, hour, minute int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, day.Location())
}
