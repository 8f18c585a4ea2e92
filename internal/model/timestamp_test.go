package model

import (
	"testing"
	"time"
)

func TestTimestampForms(t *testing.T) {
	display := "2026-08-24 10:15:30"
	fileSafe := "2026-08-24_10-15-30"

	if got := ToFileSafe(display); got != fileSafe {
		t.Errorf("ToFileSafe: got %q want %q", got, fileSafe)
	}
	if got := FromFileSafe(fileSafe); got != display {
		t.Errorf("FromFileSafe: got %q want %q", got, display)
	}
	// display form passes through FromFileSafe untouched
	if got := FromFileSafe(display); got != display {
		t.Errorf("FromFileSafe(display): got %q", got)
	}
}

func TestParseTimestampAcceptsBothForms(t *testing.T) {
	want := time.Date(2026, 8, 24, 10, 15, 30, 0, time.Local)
	for _, s := range []string{"2026-08-24 10:15:30", "2026-08-24_10-15-30"} {
		got, err := ParseTimestamp(s)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", s, err)
		}
		if !got.Equal(want) {
			t.Errorf("ParseTimestamp(%q): got %v", s, got)
		}
	}
	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Error("garbage timestamp accepted")
	}
}

func TestEntryKeyAndAssetPath(t *testing.T) {
	e := Entry{Timestamp: "2026-08-24 10:15:30", Screenshot: "assets/a.png"}
	if got := e.Key(); got != "2026-08-24_10-15-30" {
		t.Errorf("Key: got %q", got)
	}
	if got := e.AssetPath(); got != "assets/a.png" {
		t.Errorf("AssetPath: got %q", got)
	}
	e = Entry{File: "assets/doc.pdf"}
	if got := e.AssetPath(); got != "assets/doc.pdf" {
		t.Errorf("AssetPath(file): got %q", got)
	}
}
