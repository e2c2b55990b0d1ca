package main

import (
	"math"
	"time"
)

const (
	dayKeyLayout = "2006-01-02"
	maxHeatLevel = 4 // 5 bands: 0,1,2,3,>=4
)

// WorkoutRecord is a single workout sample from the health store.
type WorkoutRecord struct {
	ID              string
	Activity        string
	DurationSeconds float64
	EnergyKcal      float64
	Start           time.Time
	End             time.Time
}

// dayOf truncates a timestamp to local midnight. Two timestamps on the same
// local calendar day map to an identical value, so days can key maps directly.
// A timestamp exactly on midnight belongs to that day, not the previous one.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayKey(day time.Time) string {
	return day.Format(dayKeyLayout)
}

func parseDayKey(key string) (time.Time, error) {
	return time.ParseInLocation(dayKeyLayout, key, time.Local)
}

// bucketCounts groups records by calendar day of their start time. Days with
// no workouts are absent from the result; callers read missing keys as zero.
func bucketCounts(records []WorkoutRecord) map[time.Time]int {
	counts := make(map[time.Time]int, len(records))
	for _, r := range records {
		counts[dayOf(r.Start)]++
	}
	return counts
}

// bucketDetails groups the records themselves by calendar day, preserving the
// order they arrive in. The store hands them over sorted by start time, so
// per-day slices come out chronological without re-sorting here.
func bucketDetails(records []WorkoutRecord) map[time.Time][]WorkoutRecord {
	details := make(map[time.Time][]WorkoutRecord, len(records))
	for _, r := range records {
		day := dayOf(r.Start)
		details[day] = append(details[day], r)
	}
	return details
}

// DayCell is one slot of the calendar grid: a real day with its workout
// count, or padding used to align week boundaries.
type DayCell struct {
	Day   time.Time
	Count int
	Pad   bool
}

// WeekColumn holds one week of cells, index 0 = Monday ... index 6 = Sunday.
type WeekColumn [7]DayCell

// CalendarGrid is a week-aligned view over a contiguous day range,
// oldest week first.
type CalendarGrid struct {
	Weeks []WeekColumn
}

// mondayIndex maps a day to its Monday-based weekday index (Mon=0 ... Sun=6).
func mondayIndex(t time.Time) int {
	weekday := int(t.Weekday())
	if weekday == 0 { // Sunday -> 7
		weekday = 7
	}
	return weekday - 1
}

// buildGrid lays the dayCount days ending at endDay into Monday-start week
// columns. The range is left-padded so the first day lands under its weekday
// row and right-padded to a full final week; exactly dayCount cells are real.
func buildGrid(endDay time.Time, dayCount int, count func(day time.Time) int) CalendarGrid {
	if dayCount <= 0 {
		return CalendarGrid{}
	}
	startDay := endDay.AddDate(0, 0, -(dayCount - 1))
	lead := mondayIndex(startDay)

	cells := make([]DayCell, 0, lead+dayCount+6)
	for i := 0; i < lead; i++ {
		cells = append(cells, DayCell{Pad: true})
	}
	for i := 0; i < dayCount; i++ {
		day := startDay.AddDate(0, 0, i)
		cells = append(cells, DayCell{Day: day, Count: count(day)})
	}
	for len(cells)%7 != 0 {
		cells = append(cells, DayCell{Pad: true})
	}

	grid := CalendarGrid{Weeks: make([]WeekColumn, 0, len(cells)/7)}
	for i := 0; i < len(cells); i += 7 {
		var week WeekColumn
		copy(week[:], cells[i:i+7])
		grid.Weeks = append(grid.Weeks, week)
	}
	return grid
}

func (w WeekColumn) firstDay() (time.Time, bool) {
	for _, cell := range w {
		if !cell.Pad {
			return cell.Day, true
		}
	}
	return time.Time{}, false
}

// MonthLabels returns one entry per week column: the short month name where a
// new month starts, "" elsewhere. The first week that contains a real day is
// always labeled, later weeks only when their first real day changes month.
// A week of pure padding (only possible at the very start) stays blank.
func (g CalendarGrid) MonthLabels() []string {
	labels := make([]string, len(g.Weeks))
	havePrev := false
	var prev time.Month
	for i, week := range g.Weeks {
		day, ok := week.firstDay()
		if !ok {
			continue
		}
		if !havePrev || day.Month() != prev {
			labels[i] = day.Format("Jan")
		}
		prev = day.Month()
		havePrev = true
	}
	return labels
}

// heatLevel clamps a day count into one of the five render bands.
func heatLevel(count int) int {
	if count > maxHeatLevel {
		return maxHeatLevel
	}
	return count
}

// daysRemaining computes the whole-day countdown from today to the goal,
// floored at zero. Both ends are taken at local midnight and the difference
// is rounded, so a DST-shortened day still counts as one day. Nil goal means
// no countdown.
func daysRemaining(goal *time.Time, today time.Time) *int {
	if goal == nil {
		return nil
	}
	diff := int(math.Round(dayOf(*goal).Sub(dayOf(today)).Hours() / 24))
	if diff < 0 {
		diff = 0
	}
	return &diff
}

// fetchWindow is the instant range handed to the health store: the trailing
// windowDays local days ending today, end bound exclusive at next midnight.
func fetchWindow(today time.Time, windowDays int) (start, end time.Time) {
	day := dayOf(today)
	return day.AddDate(0, 0, -(windowDays - 1)), day.AddDate(0, 0, 1)
}
