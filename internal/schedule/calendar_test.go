package schedule

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsWorkingDayWeekOnly(t *testing.T) {
	// 2025-06-02 is a Monday.
	monday := date(2025, time.June, 2)
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		want := i < 5
		if got := IsWorkingDay(day); got != want {
			t.Fatalf("IsWorkingDay(%s) = %v, want %v", day.Weekday(), got, want)
		}
	}
}

func TestAddWorkingDaysSkipsWeekend(t *testing.T) {
	friday := date(2025, time.June, 6)
	got := AddWorkingDays(friday, 1)
	want := date(2025, time.June, 9) // Monday
	if !got.Equal(want) {
		t.Fatalf("AddWorkingDays(Friday, 1) = %s, want %s", got, want)
	}
}

func TestAddWorkingDaysLandsOnWeekday(t *testing.T) {
	start := date(2025, time.June, 1) // Sunday
	for n := 1; n <= 30; n++ {
		if got := AddWorkingDays(start, n); !IsWorkingDay(got) {
			t.Fatalf("AddWorkingDays(%s, %d) landed on %s", start, n, got.Weekday())
		}
	}
}

func TestAddWorkingDaysZeroIsIdentity(t *testing.T) {
	saturday := date(2025, time.June, 7)
	if got := AddWorkingDays(saturday, 0); !got.Equal(saturday) {
		t.Fatalf("AddWorkingDays(d, 0) = %s, want %s", got, saturday)
	}
}

func TestAddWorkingDaysComposes(t *testing.T) {
	starts := []time.Time{
		date(2025, time.June, 2), // Monday
		date(2025, time.June, 6), // Friday
		date(2025, time.June, 7), // Saturday
	}
	for _, start := range starts {
		for n1 := 0; n1 <= 10; n1++ {
			for n2 := 0; n2 <= 10; n2++ {
				split := AddWorkingDays(AddWorkingDays(start, n1), n2)
				whole := AddWorkingDays(start, n1+n2)
				if !split.Equal(whole) {
					t.Fatalf("composition broke at start=%s n1=%d n2=%d: %s vs %s",
						start, n1, n2, split, whole)
				}
			}
		}
	}
}

func TestSkipToNextWeekday(t *testing.T) {
	saturday := date(2025, time.June, 7)
	monday := date(2025, time.June, 9)
	if got := SkipToNextWeekday(saturday); !got.Equal(monday) {
		t.Fatalf("SkipToNextWeekday(Saturday) = %s, want %s", got, monday)
	}
	if got := SkipToNextWeekday(monday); !got.Equal(monday) {
		t.Fatalf("SkipToNextWeekday not idempotent on weekday: got %s", got)
	}
}

func TestCountWorkingDays(t *testing.T) {
	monday := date(2025, time.June, 2)
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"full week", monday, monday.AddDate(0, 0, 7), 5},
		{"empty range", monday, monday, 0},
		{"weekend only", date(2025, time.June, 7), date(2025, time.June, 9), 0},
		{"two weeks", monday, monday.AddDate(0, 0, 14), 10},
	}
	for _, c := range cases {
		if got := CountWorkingDays(c.start, c.end); got != c.want {
			t.Fatalf("%s: CountWorkingDays = %d, want %d", c.name, got, c.want)
		}
	}
}
