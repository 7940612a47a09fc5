package main

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/selftrack/internal/db"
	"github.com/selftrack/internal/metrics"
	"github.com/selftrack/internal/service"
	"github.com/selftrack/internal/store"
)

func setupDemoTracker(t *testing.T) *service.TrackerService {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC) }
	st := store.New(db.NewMemoryKV(), store.WithClock(clock), store.WithTimezone("UTC"))
	if err := st.Initialize(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	return service.NewTrackerService(st, nil, service.WithTrackerClock(clock))
}

func TestGenerateDemoDataSeedsHabitsAndDays(t *testing.T) {
	tracker := setupDemoTracker(t)

	summary, err := generateDemoData(tracker, 30, rand.New(rand.NewPCG(1, 1)))
	if err != nil {
		t.Fatalf("generateDemoData returned error: %v", err)
	}

	state := tracker.GetState()
	if len(state.Habits) != len(demoHabits) || summary.Habits != len(demoHabits) {
		t.Fatalf("expected %d habits, got %d", len(demoHabits), len(state.Habits))
	}
	if len(state.Days) != 30 {
		t.Fatalf("expected 30 day records, got %d", len(state.Days))
	}
	if got := metrics.TotalCheckins(state.Days); got != summary.Checkins {
		t.Fatalf("expected %d check-ins, got %d", summary.Checkins, got)
	}
	if _, ok := state.Days["2024-02-09"]; ok {
		t.Fatal("expected no record before the generated range")
	}
	for iso, day := range state.Days {
		if day.Mood == nil {
			t.Fatalf("expected mood on %s", iso)
		}
	}
}

func TestGenerateDemoDataReusesExistingHabits(t *testing.T) {
	tracker := setupDemoTracker(t)
	if _, err := tracker.AddHabit("已有习惯"); err != nil {
		t.Fatalf("AddHabit returned error: %v", err)
	}

	summary, err := generateDemoData(tracker, 5, rand.New(rand.NewPCG(2, 2)))
	if err != nil {
		t.Fatalf("generateDemoData returned error: %v", err)
	}
	if summary.Habits != 1 || len(tracker.GetState().Habits) != 1 {
		t.Fatalf("expected existing habit to be reused, got %d", summary.Habits)
	}
}
