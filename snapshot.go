package main

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// snapshot is the blob shared between the dashboard and the widget. The goal
// is epoch seconds of its local midnight; counts are keyed by "YYYY-MM-DD"
// local date strings. There is no version field: a missing or unreadable
// snapshot simply reads as "no goal, no counts".
type snapshot struct {
	GoalDate      *float64       `json:"goal_date,omitempty"`
	WorkoutCounts map[string]int `json:"workout_counts"`
}

// loadSnapshot reads the shared snapshot back into goal/day-count form.
// Absent file, bad JSON and unparsable entries all degrade to empty defaults;
// the read side never surfaces an error.
func loadSnapshot(path string) (goal *time.Time, counts map[time.Time]int) {
	counts = map[time.Time]int{}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, counts
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, counts
	}
	if snap.GoalDate != nil {
		day := dayOf(time.Unix(int64(*snap.GoalDate), 0))
		goal = &day
	}
	for key, n := range snap.WorkoutCounts {
		day, err := parseDayKey(key)
		if err != nil || n < 0 {
			continue
		}
		counts[day] = n
	}
	return goal, counts
}

// publishSnapshot writes the snapshot atomically (tmp file + rename) so the
// widget never observes a half-written blob.
func publishSnapshot(path string, goal *time.Time, counts map[time.Time]int) error {
	snap := snapshot{WorkoutCounts: make(map[string]int, len(counts))}
	if goal != nil {
		sec := float64(dayOf(*goal).Unix())
		snap.GoalDate = &sec
	}
	for day, n := range counts {
		snap.WorkoutCounts[dayKey(day)] = n
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// signalWidgetReload nudges a resident widget to re-read the snapshot.
// Delivery is fire-and-forget: no widget running, a stale pid file or a
// refused signal are all fine, the widget re-reads on its own schedule at
// the next day boundary anyway.
func signalWidgetReload(pidPath string) {
	data, err := os.ReadFile(pidPath)
	if err != nil {
		return
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return
	}
	_ = proc.Signal(syscall.SIGUSR1)
}

func writePidFile(pidPath string) error {
	return os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func removePidFile(pidPath string) {
	_ = os.Remove(pidPath)
}
