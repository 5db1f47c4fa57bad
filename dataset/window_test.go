package dataset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixedWindowAssignment(t *testing.T) {
	w, err := NewFixed(1000)
	require.NoError(t, err)

	times := []int64{500, 999, 1000, 1500, 2500}
	wantStarts := []int64{0, 0, 1000, 1000, 2000}

	for i, tm := range times {
		spans := w.AssignWindows(tm)
		require.Len(t, spans, 1)
		require.Equal(t, wantStarts[i], spans[0].Start, "time %d", tm)
		require.Equal(t, wantStarts[i]+1000, spans[0].End, "time %d", tm)
	}
}

func TestSlidingWindowAssignment(t *testing.T) {
	w, err := NewSliding(1000, 500)
	require.NoError(t, err)

	// t=1200 falls in the windows starting at 1000 ([1000,2000)) and at 500
	// ([500,1500)); the window starting at 0 ([0,1000)) ends before it.
	spans := w.AssignWindows(1200)
	starts := make([]int64, len(spans))
	for i, s := range spans {
		starts[i] = s.Start
	}
	require.ElementsMatch(t, []int64{500, 1000}, starts)
}

func TestSlidingWindowRejectsNonMultipleInterval(t *testing.T) {
	_, err := NewSliding(1000, 300)
	require.Error(t, err)
}

func TestPeriodDayBounds(t *testing.T) {
	w := NewPeriod(PeriodDay)
	// 2024-03-15T10:30:00Z
	spans := w.AssignWindows(1710498600000)
	require.Len(t, spans, 1)
	require.Equal(t, int64(1710460800000), spans[0].Start) // 2024-03-15T00:00:00Z
	require.Equal(t, int64(1710547200000), spans[0].End)   // 2024-03-16T00:00:00Z
}

func TestFixedWindowRejectsNonPositiveLength(t *testing.T) {
	_, err := NewFixed(0)
	require.Error(t, err)
}

func TestSlidingWindowRejectsNonPositiveLengthOrInterval(t *testing.T) {
	_, err := NewSliding(0, 500)
	require.Error(t, err)

	_, err = NewSliding(1000, 0)
	require.Error(t, err)
}

func TestPeriodWeekBoundsStartsOnMonday(t *testing.T) {
	w := NewPeriod(PeriodWeek)
	// 2024-03-15 is a Friday.
	spans := w.AssignWindows(1710498600000)
	require.Len(t, spans, 1)
	require.Equal(t, int64(1710115200000), spans[0].Start) // 2024-03-11T00:00:00Z (Monday)
	require.Equal(t, int64(1710720000000), spans[0].End)   // 2024-03-18T00:00:00Z
}

func TestPeriodWeekBoundsForSunday(t *testing.T) {
	w := NewPeriod(PeriodWeek)
	// 2024-03-17T00:00:00Z is a Sunday, closing the same ISO week as the 15th.
	spans := w.AssignWindows(1710633600000)
	require.Len(t, spans, 1)
	require.Equal(t, int64(1710115200000), spans[0].Start)
	require.Equal(t, int64(1710720000000), spans[0].End)
}

func TestPeriodMonthBounds(t *testing.T) {
	w := NewPeriod(PeriodMonth)
	spans := w.AssignWindows(1710498600000) // 2024-03-15
	require.Len(t, spans, 1)
	require.Equal(t, int64(1709251200000), spans[0].Start) // 2024-03-01T00:00:00Z
	require.Equal(t, int64(1711929600000), spans[0].End)   // 2024-04-01T00:00:00Z
}

func TestPeriodYearBounds(t *testing.T) {
	w := NewPeriod(PeriodYear)
	spans := w.AssignWindows(1710498600000) // 2024-03-15
	require.Len(t, spans, 1)
	require.Equal(t, int64(1704067200000), spans[0].Start) // 2024-01-01T00:00:00Z
	require.Equal(t, int64(1735689600000), spans[0].End)   // 2025-01-01T00:00:00Z
}

func TestFloorDivRoundsTowardNegativeInfinity(t *testing.T) {
	require.Equal(t, int64(-1), floorDiv(-1, 1000))
	require.Equal(t, int64(-1), floorDiv(-500, 1000))
	require.Equal(t, int64(0), floorDiv(0, 1000))
	require.Equal(t, int64(1), floorDiv(1500, 1000))
}
