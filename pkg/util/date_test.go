package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestDayStartUTC(t *testing.T) {
	in := time.Date(2025, 3, 14, 15, 9, 26, 535000000, time.UTC)
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	if got := DayStartUTC(in); !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	// non-UTC input lands on the UTC day, not the local one
	loc := time.FixedZone("UTC-5", -5*3600)
	in = time.Date(2025, 3, 14, 22, 0, 0, 0, loc) // 03:00 next day in UTC
	want = time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := DayStartUTC(in); !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestLookbackWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	from, to := LookbackWindow(now, 90)
	if !to.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("window end %v", to)
	}
	if !from.Equal(to.AddDate(0, 0, -90)) {
		t.Fatalf("window start %v", from)
	}
}
