package service

import (
	"testing"
	"time"

	"github.com/taichu-system/rental-management/internal/testutil"
)

func TestAddMonthsClampsDay(t *testing.T) {
	cases := []struct {
		in     time.Time
		months int
		want   time.Time
	}{
		{testutil.Date(2024, time.January, 31), 1, testutil.Date(2024, time.February, 29)},
		{testutil.Date(2023, time.January, 31), 1, testutil.Date(2023, time.February, 28)},
		{testutil.Date(2024, time.December, 15), 1, testutil.Date(2025, time.January, 15)},
		{testutil.Date(2024, time.February, 29), 12, testutil.Date(2025, time.February, 28)},
		{testutil.Date(2024, time.March, 15), 12, testutil.Date(2025, time.March, 15)},
	}
	for _, tc := range cases {
		assertDate(t, tc.want, addMonths(tc.in, tc.months))
	}
}

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	a := time.Date(2024, time.July, 15, 23, 59, 0, 0, time.UTC)
	b := time.Date(2024, time.October, 13, 0, 1, 0, 0, time.UTC)
	if got := daysBetween(a, b); got != 90 {
		t.Fatalf("daysBetween = %d, want 90", got)
	}
}
