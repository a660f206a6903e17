package utils

import (
	"time"
)

// GetCurrentTimeMillis returns current time in milliseconds since epoch
func GetCurrentTimeMillis() int64 {
	return time.Now().UnixMilli()
}

// MillisToTime converts milliseconds since epoch to time.Time
func MillisToTime(millis int64) time.Time {
	return time.UnixMilli(millis)
}

// TimeToMillis converts time.Time to milliseconds since epoch
func TimeToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FormatTime formats time in ISO 8601 format
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatMillis formats an epoch-millis timestamp in ISO 8601 format
func FormatMillis(millis int64) string {
	return FormatTime(MillisToTime(millis))
}

// ParseTime parses ISO 8601 formatted time string
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(time.RFC3339, timeStr)
}

// Int64Ptr returns a pointer to v, for nullable millis columns
func Int64Ptr(v int64) *int64 {
	return &v
}
