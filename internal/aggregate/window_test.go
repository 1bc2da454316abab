package aggregate

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in      string
		want    Window
		wantErr bool
	}{
		{"", Window7d, false},
		{"7d", Window7d, false},
		{"14d", Window14d, false},
		{"30d", Window30d, false},
		{"mtd", WindowMTD, false},
		{"90d", "", true},
		{"7D", "", true},
		{"week", "", true},
	}
	for _, tt := range tests {
		got, err := ParseWindow(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWindow(%q) error = %v, wantErr %v",
				tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWindow(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func series(dates ...string) []DailyAggregate {
	out := make([]DailyAggregate, len(dates))
	for i, d := range dates {
		out[i] = DailyAggregate{Date: d}
	}
	return out
}

func dates(daily []DailyAggregate) []string {
	out := make([]string, len(daily))
	for i, d := range daily {
		out[i] = d.Date
	}
	return out
}

func TestSliceWindowTrailingDays(t *testing.T) {
	// Fixed windows count entries, not calendar days, so a
	// gappy series still yields the trailing n rows.
	daily := series(
		"2024-05-20", "2024-05-22", "2024-05-23", "2024-05-28",
		"2024-05-29", "2024-05-30", "2024-05-31", "2024-06-01",
		"2024-06-02", "2024-06-03",
	)
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

	got := SliceWindow(daily, Window7d, now)

	want := []string{
		"2024-05-28", "2024-05-29", "2024-05-30", "2024-05-31",
		"2024-06-01", "2024-06-02", "2024-06-03",
	}
	if diff := cmp.Diff(want, dates(got)); diff != "" {
		t.Errorf("7d window mismatch (-want +got):\n%s", diff)
	}
}

func TestSliceWindowShorterThanWindow(t *testing.T) {
	daily := series("2024-06-01", "2024-06-02")
	now := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	got := SliceWindow(daily, Window30d, now)

	if diff := cmp.Diff(dates(daily), dates(got)); diff != "" {
		t.Errorf("short series mismatch (-want +got):\n%s", diff)
	}
}

func TestSliceWindowMonthToDate(t *testing.T) {
	daily := series(
		"2024-05-30", "2024-05-31", "2024-06-01", "2024-06-02",
	)
	now := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)

	got := SliceWindow(daily, WindowMTD, now)

	want := []string{"2024-06-01", "2024-06-02"}
	if diff := cmp.Diff(want, dates(got)); diff != "" {
		t.Errorf("mtd window mismatch (-want +got):\n%s", diff)
	}
}

func TestSliceWindowMonthToDateEmptyMonth(t *testing.T) {
	daily := series("2024-05-30", "2024-05-31")
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	got := SliceWindow(daily, WindowMTD, now)

	if len(got) != 0 {
		t.Errorf("mtd over prior-month series = %v, want empty", dates(got))
	}
}
