package main

import (
	"testing"
	"time"
)

func TestReportDay(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	today := time.Date(2025, time.June, 27, 7, 0, 0, 0, shanghai)

	got, err := reportDay("", today)
	if err != nil || !got.Equal(today) {
		t.Fatalf("empty flag should mean today, got %v %v", got, err)
	}

	got, err = reportDay("2025-06-01", today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Location() != shanghai || got.Day() != 1 {
		t.Fatalf("unexpected day %v", got)
	}

	if _, err := reportDay("06/01/2025", today); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestModes(t *testing.T) {
	if modes(false, false, false) != 0 || modes(true, false, true) != 2 {
		t.Fatalf("unexpected mode count")
	}
}
