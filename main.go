package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	defaultWindowDays = 30
	snapshotFileName  = "snapshot.json"
	healthDBFileName  = "health.db"
	widgetPidFileName = "widget.pid"
)

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".workoutcal"
	}
	return filepath.Join(home, ".workoutcal")
}

func main() {
	var (
		fileFlag   = flag.String("file", "", "path to the shared snapshot (default ~/.workoutcal/snapshot.json)")
		dbFlag     = flag.String("db", "", "path to the workout database (default ~/.workoutcal/health.db)")
		daysFlag   = flag.Int("days", defaultWindowDays, "trailing window length in days")
		widgetFlag = flag.Bool("widget", false, "render the compact widget from the shared snapshot")
		watchFlag  = flag.Bool("watch", false, "with -widget: stay resident, re-render on reload signal and day boundary")
		reportFlag = flag.Bool("report", false, "print a plain-text report and exit")
		logFlag    = flag.String("log", "", "log a workout with the given activity (e.g. Running) and exit")
		durFlag    = flag.Int("duration", 30, "with -log: workout duration in minutes")
		energyFlag = flag.Float64("energy", 0, "with -log: energy burned in kcal")
		goalFlag   = flag.String("goal", "", "set the goal date (YYYY-MM-DD) and exit")
		clearGoal  = flag.Bool("clear-goal", false, "remove the goal date and exit")
	)
	flag.Parse()

	if *daysFlag <= 0 {
		fmt.Fprintln(os.Stderr, "-days must be positive")
		os.Exit(1)
	}

	dataDir := defaultDataDir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		fmt.Fprintln(os.Stderr, "mkdir:", err)
		os.Exit(1)
	}
	snapshotPath := *fileFlag
	if snapshotPath == "" {
		snapshotPath = filepath.Join(dataDir, snapshotFileName)
	}
	dbPath := *dbFlag
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, healthDBFileName)
	}
	pidPath := filepath.Join(dataDir, widgetPidFileName)

	switch {
	case *logFlag != "":
		if err := logWorkout(dbPath, snapshotPath, pidPath, *logFlag, *durFlag, *energyFlag, *daysFlag); err != nil {
			fmt.Fprintln(os.Stderr, "log workout:", err)
			os.Exit(1)
		}

	case *goalFlag != "" || *clearGoal:
		if err := updateGoal(snapshotPath, pidPath, *goalFlag, *clearGoal); err != nil {
			fmt.Fprintln(os.Stderr, "update goal:", err)
			os.Exit(1)
		}

	case *widgetFlag:
		if err := runWidget(snapshotPath, pidPath, *daysFlag, *watchFlag); err != nil {
			fmt.Fprintln(os.Stderr, "widget:", err)
			os.Exit(1)
		}

	case *reportFlag:
		if err := printReport(dbPath, snapshotPath, *daysFlag); err != nil {
			fmt.Fprintln(os.Stderr, "report:", err)
			os.Exit(1)
		}

	default:
		store := newHealthStore(dbPath)
		defer store.Close()
		m := newDashboardModel(store, snapshotPath, pidPath, *daysFlag, time.Now())
		p := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Fprintln(os.Stderr, "dashboard:", err)
			os.Exit(1)
		}
	}
}

// logWorkout appends a record to the health store, then republishes the
// snapshot with fresh counts so a resident widget picks the workout up
// without waiting for the next dashboard session.
func logWorkout(dbPath, snapshotPath, pidPath, activity string, durationMin int, energyKcal float64, windowDays int) error {
	ctx := context.Background()
	store := newHealthStore(dbPath)
	defer store.Close()

	record, err := store.LogWorkout(ctx, activity, time.Duration(durationMin)*time.Minute, energyKcal, time.Now())
	if err != nil {
		return err
	}

	goal, _ := loadSnapshot(snapshotPath)
	start, end := fetchWindow(time.Now(), windowDays)
	counts, err := store.Workouts(ctx, start, end)
	if err != nil {
		return err
	}
	if err := publishSnapshot(snapshotPath, goal, counts); err != nil {
		return err
	}
	signalWidgetReload(pidPath)

	fmt.Printf("Logged %s, %s (%.0f kcal)\n", record.Activity, humanDuration(durationMin), record.EnergyKcal)
	return nil
}

func updateGoal(snapshotPath, pidPath, goalDate string, clear bool) error {
	_, counts := loadSnapshot(snapshotPath)
	var goal *time.Time
	if !clear {
		day, err := parseDayKey(goalDate)
		if err != nil {
			return fmt.Errorf("goal date must be YYYY-MM-DD")
		}
		goal = &day
	}
	if err := publishSnapshot(snapshotPath, goal, counts); err != nil {
		return err
	}
	signalWidgetReload(pidPath)
	if goal != nil {
		fmt.Printf("Goal set: %s\n", goal.Format("Jan 2, 2006"))
	} else {
		fmt.Println("Goal removed")
	}
	return nil
}

func printReport(dbPath, snapshotPath string, windowDays int) error {
	ctx := context.Background()
	store := newHealthStore(dbPath)
	defer store.Close()
	if err := store.Authorize(ctx); err != nil {
		return err
	}

	now := time.Now()
	start, end := fetchWindow(now, windowDays)
	counts, err := store.Workouts(ctx, start, end)
	if err != nil {
		return err
	}
	details, err := store.WorkoutDetails(ctx, start, end)
	if err != nil {
		return err
	}
	goal, _ := loadSnapshot(snapshotPath)
	fmt.Print(reportWindow(goal, counts, details, now, windowDays))
	return nil
}
