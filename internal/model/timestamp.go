package model

import (
	"strings"
	"time"
)

// Timestamp layouts. The display form is the entry key inside the
// markdown file; the file-safe form appears in URLs and asset names.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	FileSafeLayout  = "2006-01-02_15-04-05"
)

// FormatTimestamp renders t in the display layout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a display-form timestamp. It accepts the
// file-safe form as well so callers can pass keys straight from URLs.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(TimestampLayout, s, time.Local); err == nil {
		return t, nil
	}
	return time.ParseInLocation(FileSafeLayout, s, time.Local)
}

// ToFileSafe converts a display timestamp to its file-safe variant.
// Unparseable input is converted mechanically so unknown keys still map
// one-to-one.
func ToFileSafe(ts string) string {
	if t, err := time.ParseInLocation(TimestampLayout, ts, time.Local); err == nil {
		return t.Format(FileSafeLayout)
	}
	ts = strings.ReplaceAll(ts, " ", "_")
	return strings.ReplaceAll(ts, ":", "-")
}

// FromFileSafe converts a file-safe key back to the display form.
func FromFileSafe(key string) string {
	if t, err := time.ParseInLocation(FileSafeLayout, key, time.Local); err == nil {
		return t.Format(TimestampLayout)
	}
	return key
}
