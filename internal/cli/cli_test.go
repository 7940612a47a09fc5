package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/selftrack/internal/config"
	"github.com/selftrack/internal/db"
	"github.com/selftrack/internal/logger"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.AppConfig{
		GinMode:       "test",
		SessionSecret: "test-secret",
		Timezone:      "UTC",
		ExportDir:     t.TempDir(),
	}
	app, err := newAppWithBackend(cfg, logger.NewNop(), db.NewMemoryKV())
	require.NoError(t, err)
	return app
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	return cmd, &out
}

func TestExportFileThenImport(t *testing.T) {
	app := newTestApp(t)
	habit, err := app.Tracker.AddHabit("Read")
	require.NoError(t, err)

	cmd, out := newTestCmd()
	require.NoError(t, runExport(cmd, app, false, ""))
	assert.Contains(t, out.String(), "Exported to ")

	entries, err := os.ReadDir(app.Config.ExportDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	path := filepath.Join(app.Config.ExportDir, entries[0].Name())

	require.NoError(t, app.Tracker.DeleteHabit(habit.ID))

	cmd, out = newTestCmd()
	require.NoError(t, runImport(cmd, app, path))
	assert.Contains(t, out.String(), "Imported 1 habits")
	assert.Equal(t, habit.ID, app.Tracker.GetState().Habits[0].ID)
}

func TestExportKeyThenImport(t *testing.T) {
	app := newTestApp(t)
	_, err := app.Tracker.AddHabit("Walk")
	require.NoError(t, err)

	cmd, out := newTestCmd()
	require.NoError(t, runExport(cmd, app, true, ""))
	key := strings.TrimSpace(out.String())
	require.NotEmpty(t, key)

	other := newTestApp(t)
	cmd, _ = newTestCmd()
	require.NoError(t, runImport(cmd, other, key))
	assert.Equal(t, "Walk", other.Tracker.GetState().Habits[0].Name)
}

func TestImportRejectsGarbage(t *testing.T) {
	app := newTestApp(t)
	cmd, _ := newTestCmd()
	assert.Error(t, runImport(cmd, app, "not a save key!"))
}

func TestStatsOutput(t *testing.T) {
	app := newTestApp(t)
	habit, err := app.Tracker.AddHabit("Read")
	require.NoError(t, err)
	_, err = app.Tracker.ToggleHabitForToday(habit.ID, true)
	require.NoError(t, err)

	cmd, out := newTestCmd()
	require.NoError(t, runStats(cmd, app))
	assert.Contains(t, out.String(), "Total check-ins: 1 across 1 days")
	assert.Contains(t, out.String(), "Read")
}
