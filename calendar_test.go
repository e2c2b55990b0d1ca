package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func at(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.Local)
}

func record(id string, start time.Time) WorkoutRecord {
	return WorkoutRecord{
		ID:              id,
		Activity:        "Running",
		DurationSeconds: 1800,
		EnergyKcal:      250,
		Start:           start,
		End:             start.Add(30 * time.Minute),
	}
}

func TestBucketCountsSameDay(t *testing.T) {
	records := []WorkoutRecord{
		record("a", at(2024, time.March, 1, 8, 0)),
		record("b", at(2024, time.March, 1, 20, 0)),
		record("c", at(2024, time.March, 3, 7, 30)),
	}

	counts := bucketCounts(records)
	assert.Equal(t, 2, counts[day(2024, time.March, 1)])
	assert.Equal(t, 1, counts[day(2024, time.March, 3)])
	assert.Equal(t, 0, counts[day(2024, time.March, 2)], "absent day reads as zero")
	assert.Len(t, counts, 2)

	details := bucketDetails(records)
	require.Len(t, details[day(2024, time.March, 1)], 2)
	assert.Equal(t, "a", details[day(2024, time.March, 1)][0].ID, "insertion order preserved")
	assert.Equal(t, "b", details[day(2024, time.March, 1)][1].ID)
	assert.Empty(t, details[day(2024, time.March, 2)])
}

func TestBucketMidnightBoundary(t *testing.T) {
	midnight := day(2024, time.March, 2)
	counts := bucketCounts([]WorkoutRecord{record("a", midnight)})
	assert.Equal(t, 1, counts[day(2024, time.March, 2)])
	assert.Equal(t, 0, counts[day(2024, time.March, 1)], "midnight belongs to the starting day")
}

func TestBucketEmpty(t *testing.T) {
	assert.Empty(t, bucketCounts(nil))
	assert.Empty(t, bucketDetails(nil))
}

func TestDayOfNormalizesEqualDays(t *testing.T) {
	a := dayOf(at(2024, time.July, 9, 0, 1))
	b := dayOf(at(2024, time.July, 9, 23, 59))
	assert.True(t, a.Equal(b))
	assert.Equal(t, a, b, "same local day must be one map key")
}

func TestBuildGridWorkedExample(t *testing.T) {
	// 2024-01-15 is a Monday; the 30-day window starts on Sunday 2023-12-17.
	endDay := day(2024, time.January, 15)
	grid := buildGrid(endDay, 30, func(time.Time) int { return 0 })

	require.Len(t, grid.Weeks, 6, "6 + 30 cells pad out to 42 = 6 weeks")

	var flat []DayCell
	for _, week := range grid.Weeks {
		flat = append(flat, week[:]...)
	}
	require.Len(t, flat, 42)

	for i := 0; i < 6; i++ {
		assert.True(t, flat[i].Pad, "cell %d should be leading padding", i)
	}
	for i := 36; i < 42; i++ {
		assert.True(t, flat[i].Pad, "cell %d should be trailing padding", i)
	}
	assert.Equal(t, day(2023, time.December, 17), flat[6].Day)
	assert.Equal(t, endDay, flat[35].Day)
}

func TestBuildGridInvariants(t *testing.T) {
	endDay := day(2024, time.June, 5) // a Wednesday
	for dayCount := 1; dayCount <= 60; dayCount++ {
		grid := buildGrid(endDay, dayCount, func(time.Time) int { return 0 })

		total := len(grid.Weeks) * 7
		assert.Zero(t, total%7)

		populated := 0
		seen := map[time.Time]bool{}
		lead := 0
		counting := true
		for _, week := range grid.Weeks {
			for _, cell := range week {
				if cell.Pad {
					if counting {
						lead++
					}
					continue
				}
				counting = false
				populated++
				assert.False(t, seen[cell.Day], "day %s appears twice", cell.Day)
				seen[cell.Day] = true
			}
		}

		startDay := endDay.AddDate(0, 0, -(dayCount - 1))
		assert.Equal(t, dayCount, populated, "dayCount=%d", dayCount)
		assert.Equal(t, mondayIndex(startDay), lead, "dayCount=%d", dayCount)
		assert.LessOrEqual(t, total-dayCount, 12, "pads bounded by 6+6, dayCount=%d", dayCount)
	}
}

func TestBuildGridZeroDays(t *testing.T) {
	grid := buildGrid(day(2024, time.June, 5), 0, func(time.Time) int { return 0 })
	assert.Empty(t, grid.Weeks)
}

func TestGridCountsLookup(t *testing.T) {
	counts := map[time.Time]int{
		day(2024, time.June, 4): 2,
		day(2024, time.June, 5): 7,
	}
	grid := buildGrid(day(2024, time.June, 5), 7, func(d time.Time) int { return counts[d] })

	byDay := map[time.Time]int{}
	for _, week := range grid.Weeks {
		for _, cell := range week {
			if !cell.Pad {
				byDay[cell.Day] = cell.Count
			}
		}
	}
	assert.Equal(t, 2, byDay[day(2024, time.June, 4)])
	assert.Equal(t, 7, byDay[day(2024, time.June, 5)])
	assert.Equal(t, 0, byDay[day(2024, time.June, 1)])
}

func TestMondayIndex(t *testing.T) {
	assert.Equal(t, 0, mondayIndex(day(2024, time.January, 15)))  // Monday
	assert.Equal(t, 6, mondayIndex(day(2023, time.December, 17))) // Sunday
	assert.Equal(t, 5, mondayIndex(day(2024, time.June, 1)))      // Saturday
}

func TestMonthLabelsSingleMonth(t *testing.T) {
	grid := buildGrid(day(2023, time.December, 28), 28, func(time.Time) int { return 0 })
	labels := grid.MonthLabels()
	require.NotEmpty(t, labels)
	assert.Equal(t, "Dec", labels[0])
	for i := 1; i < len(labels); i++ {
		assert.Empty(t, labels[i], "week %d should carry no label", i)
	}
}

func TestMonthLabelsTransition(t *testing.T) {
	// Dec 17 .. Jan 15: weeks start Dec 17, Dec 18, Dec 25, Jan 1, Jan 8, Jan 15.
	grid := buildGrid(day(2024, time.January, 15), 30, func(time.Time) int { return 0 })
	labels := grid.MonthLabels()
	require.Len(t, labels, 6)
	assert.Equal(t, []string{"Dec", "", "", "Jan", "", ""}, labels)
}

func TestMonthLabelsLeadingPadding(t *testing.T) {
	// A single Sunday yields 6 leading pads; the one real week is labeled.
	grid := buildGrid(day(2023, time.December, 17), 1, func(time.Time) int { return 0 })
	labels := grid.MonthLabels()
	require.Len(t, labels, 1)
	assert.Equal(t, "Dec", labels[0])
}

func TestHeatLevelClamp(t *testing.T) {
	assert.Equal(t, 0, heatLevel(0))
	assert.Equal(t, 3, heatLevel(3))
	assert.Equal(t, 4, heatLevel(4))
	assert.Equal(t, 4, heatLevel(9))
}

func TestDaysRemaining(t *testing.T) {
	today := day(2024, time.March, 10)

	assert.Nil(t, daysRemaining(nil, today))

	future := today.AddDate(0, 0, 10)
	got := daysRemaining(&future, today)
	require.NotNil(t, got)
	assert.Equal(t, 10, *got)

	yesterday := today.AddDate(0, 0, -1)
	got = daysRemaining(&yesterday, today)
	require.NotNil(t, got)
	assert.Equal(t, 0, *got)

	sameDay := today
	got = daysRemaining(&sameDay, today)
	require.NotNil(t, got)
	assert.Equal(t, 0, *got)
}

func TestDaysRemainingMonotonic(t *testing.T) {
	goal := day(2024, time.March, 15)
	prev := 1 << 30
	for offset := -2; offset <= 8; offset++ {
		today := day(2024, time.March, 10).AddDate(0, 0, offset)
		got := daysRemaining(&goal, today)
		require.NotNil(t, got)
		assert.LessOrEqual(t, *got, prev, "countdown must not increase as today advances")
		assert.GreaterOrEqual(t, *got, 0)
		prev = *got
	}
	final := daysRemaining(&goal, day(2024, time.March, 20))
	assert.Equal(t, 0, *final)
}

func TestFetchWindow(t *testing.T) {
	start, end := fetchWindow(at(2024, time.March, 10, 14, 30), 30)
	assert.Equal(t, day(2024, time.February, 10), start)
	assert.Equal(t, day(2024, time.March, 11), end, "end is exclusive next midnight")
	assert.Equal(t, day(2024, time.March, 10), dayOf(end.Add(-time.Second)))
}
