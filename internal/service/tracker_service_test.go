package service

import (
	"errors"
	"testing"
	"time"

	"github.com/selftrack/internal/db"
	"github.com/selftrack/internal/model"
	"github.com/selftrack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trackerNow = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

func setupTracker(t *testing.T, opts ...TrackerOption) (*TrackerService, *store.Store, *db.MemoryKV) {
	t.Helper()
	kv := db.NewMemoryKV()
	clock := func() time.Time { return trackerNow }
	st := store.New(kv, store.WithClock(clock), store.WithTimezone("UTC"))
	require.NoError(t, st.Initialize())

	opts = append([]TrackerOption{WithTrackerClock(clock)}, opts...)
	return NewTrackerService(st, nil, opts...), st, kv
}

func TestOpenSessionSeedsSamplesOnFirstRun(t *testing.T) {
	svc, _, _ := setupTracker(t, WithSampleHabits(true))

	state, err := svc.OpenSession()
	require.NoError(t, err)
	require.Len(t, state.Habits, len(SampleHabits))
	assert.True(t, state.Meta.Welcome)
	assert.True(t, state.Meta.Onboarded)
	assert.Equal(t, trackerNow.UnixMilli(), state.Meta.LastOpenDate)

	// 再次打开不会重复预置
	again, err := svc.OpenSession()
	require.NoError(t, err)
	assert.Len(t, again.Habits, len(SampleHabits))
}

func TestOpenSessionWithoutSamples(t *testing.T) {
	svc, _, _ := setupTracker(t)

	state, err := svc.OpenSession()
	require.NoError(t, err)
	assert.Empty(t, state.Habits)
	assert.False(t, state.Meta.Welcome)
	assert.True(t, state.Meta.Onboarded)
}

func TestAddHabitAssignsUniqueIDs(t *testing.T) {
	svc, _, _ := setupTracker(t)

	first, err := svc.AddHabit("  Read  ")
	require.NoError(t, err)
	second, err := svc.AddHabit("Walk")
	require.NoError(t, err)

	assert.Equal(t, "Read", first.Name)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, store.DefaultHabitIcon, first.Icon)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, first.TargetDays)
	assert.Len(t, svc.GetState().Habits, 2)

	_, err = svc.AddHabit("   ")
	assert.ErrorIs(t, err, ErrHabitNameRequired)
}

func TestAddThenDeleteLeavesNoReferences(t *testing.T) {
	svc, _, _ := setupTracker(t)

	habit, err := svc.AddHabit("Read")
	require.NoError(t, err)
	_, err = svc.ToggleHabitForToday(habit.ID, true)
	require.NoError(t, err)
	_, err = svc.ToggleHabitForDate("2024-01-01", habit.ID, true)
	require.NoError(t, err)
	_, err = svc.OpenSession()
	require.NoError(t, err)

	require.NoError(t, svc.DeleteHabit(habit.ID))

	state := svc.GetState()
	assert.Empty(t, state.Habits)
	for iso, day := range state.Days {
		_, ok := day.Habits[habit.ID]
		assert.False(t, ok, iso)
	}
	assert.NotContains(t, state.Meta.StreaksByHabit, habit.ID)

	assert.ErrorIs(t, svc.DeleteHabit(habit.ID), ErrHabitNotFound)
}

func TestUpdateHabitKeepsIdentity(t *testing.T) {
	svc, _, _ := setupTracker(t)
	habit, err := svc.AddHabit("Read")
	require.NoError(t, err)

	updated, err := svc.UpdateHabit(habit.ID, HabitInput{Name: "Read 20 minutes", Icon: "📚", TargetDays: []int{5, 1, 1}, Strict: true})
	require.NoError(t, err)
	assert.Equal(t, habit.ID, updated.ID)
	assert.Equal(t, habit.CreatedAt, updated.CreatedAt)
	assert.Equal(t, []int{1, 5}, updated.TargetDays)
	assert.True(t, updated.Strict)

	_, err = svc.UpdateHabit("missing", HabitInput{Name: "x"})
	assert.ErrorIs(t, err, ErrHabitNotFound)
}

func TestToggleHabitValidation(t *testing.T) {
	svc, _, kv := setupTracker(t)
	habit, err := svc.AddHabit("Read")
	require.NoError(t, err)
	before := kv.Dump()

	_, err = svc.ToggleHabitForDate("2024-13-01", habit.ID, true)
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = svc.ToggleHabitForDate("2024-01-01", "unknown", true)
	assert.ErrorIs(t, err, ErrHabitNotFound)
	assert.Equal(t, before, kv.Dump())

	record, err := svc.ToggleHabitForToday(habit.ID, true)
	require.NoError(t, err)
	assert.True(t, record.Habits[habit.ID])
	assert.Equal(t, trackerNow.UnixMilli(), record.TS)

	record, err = svc.ToggleHabitForToday(habit.ID, false)
	require.NoError(t, err)
	assert.False(t, record.Habits[habit.ID])
}

func TestJournalAndMood(t *testing.T) {
	svc, _, _ := setupTracker(t)

	_, err := svc.SetJournalForDate("2024-01-01", "felt good")
	require.NoError(t, err)
	text, err := svc.GetJournalForDate("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "felt good", text)

	text, err = svc.GetJournalForDate("2023-12-31")
	require.NoError(t, err)
	assert.Empty(t, text)

	record, err := svc.SetMoodForDate("2024-01-01", 4, 2)
	require.NoError(t, err)
	assert.Equal(t, &model.Mood{Mood: 4, Energy: 2}, record.Mood)
	assert.Equal(t, "felt good", record.Journal)

	_, err = svc.SetMoodForDate("2024-01-01", 6, 2)
	assert.ErrorIs(t, err, ErrInvalidMood)
}

func TestUpdateUserMergesPrefs(t *testing.T) {
	svc, _, _ := setupTracker(t)

	theme := "dark"
	user, err := svc.UpdateUser(UserPatch{Theme: &theme})
	require.NoError(t, err)
	assert.Equal(t, "dark", user.Theme)
	assert.Equal(t, "UTC", user.Timezone)

	bad := "Mars/Olympus"
	_, err = svc.UpdateUser(UserPatch{Timezone: &bad})
	assert.ErrorIs(t, err, ErrInvalidUserPrefs)

	week := 9
	_, err = svc.UpdateUser(UserPatch{StartOfWeek: &week})
	assert.ErrorIs(t, err, ErrInvalidUserPrefs)
	assert.Equal(t, "dark", svc.GetState().User.Theme)
}

func TestClearWelcome(t *testing.T) {
	svc, _, _ := setupTracker(t, WithSampleHabits(true))
	_, err := svc.OpenSession()
	require.NoError(t, err)

	meta, err := svc.ClearWelcome()
	require.NoError(t, err)
	assert.False(t, meta.Welcome)
	assert.False(t, svc.GetState().Meta.Welcome)
}

func TestTodayViewAndStats(t *testing.T) {
	svc, _, _ := setupTracker(t)
	read, _ := svc.AddHabit("Read")
	walk, _ := svc.AddHabit("Walk")

	for _, iso := range []string{"2023-12-31", "2024-01-01", "2024-01-02"} {
		_, err := svc.ToggleHabitForDate(iso, read.ID, true)
		require.NoError(t, err)
	}

	view := svc.TodayView()
	assert.Equal(t, "2024-01-02", view.Date)
	assert.Equal(t, 1, view.Done)
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, 50, view.Percent)
	require.Len(t, view.Habits, 2)
	assert.Equal(t, 3, view.Habits[0].CurrentStreak)
	assert.Equal(t, 0, view.Habits[1].CurrentStreak)

	stats := svc.Stats()
	assert.Equal(t, 3, stats.TotalCheckins)
	assert.Equal(t, 3, stats.ActiveDays)
	assert.Equal(t, walk.ID, stats.Habits[1].ID)
}

func TestCalendarMonthAndWeek(t *testing.T) {
	svc, _, _ := setupTracker(t)
	habit, _ := svc.AddHabit("Read")
	_, err := svc.ToggleHabitForDate("2024-01-02", habit.ID, true)
	require.NoError(t, err)

	month, err := svc.CalendarMonth("", "en")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", month.Anchor)
	assert.Equal(t, "January 2024", month.Label)
	assert.Zero(t, len(month.Cells)%7)
	assert.Equal(t, 1, month.Summary[habit.ID])

	var today *CalendarCell
	for i := range month.Cells {
		if month.Cells[i].IsToday {
			today = &month.Cells[i]
		}
	}
	require.NotNil(t, today)
	assert.Equal(t, 100, today.Completion)

	_, err = svc.CalendarMonth("bad", "en")
	assert.True(t, errors.Is(err, ErrInvalidDate))

	start, summary, err := svc.WeekSummary("")
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", start)
	assert.Equal(t, 1, summary[habit.ID])
}
