package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// errAuthorization marks failures to gain access to the health store, as
// opposed to a query going wrong once access was granted.
var errAuthorization = errors.New("health store access denied")

// activityCategories is the fixed set of recognized activity labels;
// anything else is filed under activityOther.
var activityCategories = []string{
	"Running",
	"Walking",
	"Cycling",
	"Swimming",
	"Strength",
	"Yoga",
	"HIIT",
	"Rowing",
}

const activityOther = "Other"

func normalizeActivity(raw string) string {
	trimmed := strings.TrimSpace(raw)
	for _, name := range activityCategories {
		if strings.EqualFold(trimmed, name) {
			return name
		}
	}
	return activityOther
}

// workoutSource is what the dashboard needs from the health data side:
// grant access, then serve day counts and day details for a window.
type workoutSource interface {
	Authorize(ctx context.Context) error
	Workouts(ctx context.Context, start, end time.Time) (map[time.Time]int, error)
	WorkoutDetails(ctx context.Context, start, end time.Time) (map[time.Time][]WorkoutRecord, error)
}

// healthStore serves workout samples from a local sqlite database.
type healthStore struct {
	path string
	db   *sql.DB
}

func newHealthStore(path string) *healthStore {
	return &healthStore{path: path}
}

// Authorize opens the database on first use and makes sure the schema is in
// place. Any failure here reads as "access denied" rather than a query error.
func (s *healthStore) Authorize(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return fmt.Errorf("%w: %v", errAuthorization, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("%w: %v", errAuthorization, err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS workouts (
		id TEXT PRIMARY KEY,
		activity TEXT NOT NULL,
		duration_seconds REAL NOT NULL,
		energy_kcal REAL NOT NULL DEFAULT 0,
		start_ts INTEGER NOT NULL,
		end_ts INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return fmt.Errorf("%w: %v", errAuthorization, err)
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_workouts_start ON workouts(start_ts)`); err != nil {
		db.Close()
		return fmt.Errorf("%w: %v", errAuthorization, err)
	}
	s.db = db
	return nil
}

func (s *healthStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// queryWindow fetches the raw records with start time in [start, end),
// ordered by start time so day buckets come out chronological.
func (s *healthStore) queryWindow(ctx context.Context, start, end time.Time) ([]WorkoutRecord, error) {
	if s.db == nil {
		return nil, errAuthorization
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, activity, duration_seconds, energy_kcal, start_ts, end_ts
		 FROM workouts
		 WHERE start_ts >= ? AND start_ts < ?
		 ORDER BY start_ts ASC, id ASC`,
		start.Unix(), end.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("query workouts: %w", err)
	}
	defer rows.Close()

	var records []WorkoutRecord
	for rows.Next() {
		var r WorkoutRecord
		var startTS, endTS int64
		if err := rows.Scan(&r.ID, &r.Activity, &r.DurationSeconds, &r.EnergyKcal, &startTS, &endTS); err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		r.Start = time.Unix(startTS, 0)
		r.End = time.Unix(endTS, 0)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read workouts: %w", err)
	}
	return records, nil
}

func (s *healthStore) Workouts(ctx context.Context, start, end time.Time) (map[time.Time]int, error) {
	records, err := s.queryWindow(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return bucketCounts(records), nil
}

func (s *healthStore) WorkoutDetails(ctx context.Context, start, end time.Time) (map[time.Time][]WorkoutRecord, error) {
	records, err := s.queryWindow(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return bucketDetails(records), nil
}

// LogWorkout appends a workout ending at the given time with the given
// duration. The activity label is normalized into the known category set.
func (s *healthStore) LogWorkout(ctx context.Context, activity string, duration time.Duration, energyKcal float64, endedAt time.Time) (WorkoutRecord, error) {
	if err := s.Authorize(ctx); err != nil {
		return WorkoutRecord{}, err
	}
	if duration <= 0 {
		return WorkoutRecord{}, fmt.Errorf("workout duration must be positive")
	}
	if energyKcal < 0 {
		return WorkoutRecord{}, fmt.Errorf("workout energy must not be negative")
	}
	r := WorkoutRecord{
		ID:              uuid.NewString(),
		Activity:        normalizeActivity(activity),
		DurationSeconds: duration.Seconds(),
		EnergyKcal:      energyKcal,
		Start:           endedAt.Add(-duration),
		End:             endedAt,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workouts (id, activity, duration_seconds, energy_kcal, start_ts, end_ts)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Activity, r.DurationSeconds, r.EnergyKcal, r.Start.Unix(), r.End.Unix(),
	)
	if err != nil {
		return WorkoutRecord{}, fmt.Errorf("insert workout: %w", err)
	}
	return r, nil
}
