package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
)

// renderWidget draws the compact secondary surface from snapshot data only:
// a one-rune-per-day heat grid and the countdown line. It never touches the
// health store, so it works identically in a process that has no access.
func renderWidget(goal *time.Time, counts map[time.Time]int, today time.Time, windowDays int) string {
	grid := buildGrid(dayOf(today), windowDays, func(day time.Time) int {
		return counts[day]
	})

	var b strings.Builder
	for row := 0; row < 7; row++ {
		for _, week := range grid.Weeks {
			cell := week[row]
			if cell.Pad {
				b.WriteString(" ")
				continue
			}
			b.WriteString(heatStyles[heatLevel(cell.Count)].Render("■"))
		}
		b.WriteString("\n")
	}

	if remaining := daysRemaining(goal, today); remaining != nil {
		b.WriteString(goalStyle.Render(fmt.Sprintf("🎯 %d days to %s", *remaining, goal.Format("Jan 2"))))
	} else {
		b.WriteString(dimStyle.Render("no goal set"))
	}
	b.WriteString("\n")
	return b.String()
}

// runWidget renders the widget once, or stays resident with -watch. A
// resident widget re-reads the snapshot when the dashboard signals SIGUSR1
// and, independently of any signal, at every local day boundary.
func runWidget(snapshotPath, pidPath string, windowDays int, watch bool) error {
	render := func() {
		goal, counts := loadSnapshot(snapshotPath)
		fmt.Print(renderWidget(goal, counts, time.Now(), windowDays))
	}

	if !watch {
		render()
		return nil
	}

	if err := writePidFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer removePidFile(pidPath)

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGUSR1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	midnight := make(chan struct{}, 1)
	c := cron.New()
	if _, err := c.AddFunc("@midnight", func() {
		select {
		case midnight <- struct{}{}:
		default:
		}
	}); err != nil {
		return fmt.Errorf("schedule day-boundary refresh: %w", err)
	}
	c.Start()
	defer c.Stop()

	render()
	for {
		select {
		case <-reload:
			render()
		case <-midnight:
			render()
		case <-quit:
			return nil
		}
	}
}

// reportWindow prints a plain-text table of the trailing window, one line per
// day, with the countdown at the bottom. The non-interactive sibling of the
// dashboard for scripts and quick checks.
func reportWindow(goal *time.Time, counts map[time.Time]int, details map[time.Time][]WorkoutRecord, today time.Time, windowDays int) string {
	var b strings.Builder
	day := dayOf(today)
	start := day.AddDate(0, 0, -(windowDays - 1))

	b.WriteString(fmt.Sprintf("last %d days ending %s\n", windowDays, day.Format("2006-01-02")))
	b.WriteString(strings.Repeat("-", 50) + "\n")
	b.WriteString(fmt.Sprintf("%-12s | %-8s | %s\n", "Date", "Workouts", "Activities"))
	b.WriteString(strings.Repeat("-", 50) + "\n")

	total := 0
	for d := start; !d.After(day); d = d.AddDate(0, 0, 1) {
		n := counts[d]
		total += n
		names := make([]string, 0, len(details[d]))
		for _, r := range details[d] {
			names = append(names, r.Activity)
		}
		b.WriteString(fmt.Sprintf("%-12s | %-8d | %s\n", d.Format("2006-01-02"), n, strings.Join(names, ", ")))
	}
	b.WriteString(strings.Repeat("-", 50) + "\n")
	b.WriteString(fmt.Sprintf("Total workouts : %d\n", total))
	if remaining := daysRemaining(goal, day); remaining != nil {
		b.WriteString(fmt.Sprintf("Goal %s : %d days remaining\n", goal.Format("2006-01-02"), *remaining))
	}
	return b.String()
}
