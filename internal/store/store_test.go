package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/selftrack/internal/db"
	"github.com/selftrack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

// quotaBackend 在指定键上模拟容量不足
type quotaBackend struct {
	*db.MemoryKV
	reject map[string]bool
}

func (b *quotaBackend) Set(key, value string) error {
	if b.reject[key] {
		return errors.New("quota exceeded")
	}
	return b.MemoryKV.Set(key, value)
}

func newTestStore(backend Backend) *Store {
	return New(backend, WithClock(func() time.Time { return fixedNow }), WithTimezone("Asia/Shanghai"))
}

func TestInitializeWritesDefaultsOnce(t *testing.T) {
	kv := db.NewMemoryKV()
	s := newTestStore(kv)

	require.NoError(t, s.Initialize())
	for _, key := range Keys {
		has, _ := kv.Has(key)
		assert.True(t, has, key)
	}

	require.NoError(t, kv.Set(KeyUser, `{"timezone":"UTC","theme":"dark","startOfWeek":1}`))
	require.NoError(t, s.Initialize())

	raw, _, _ := kv.Get(KeyUser)
	assert.JSONEq(t, `{"timezone":"UTC","theme":"dark","startOfWeek":1}`, raw)
}

func TestLoadDefaults(t *testing.T) {
	s := newTestStore(db.NewMemoryKV())
	state := s.Load()

	assert.Equal(t, CurrentVersion, state.Version)
	assert.Equal(t, model.UserPrefs{Timezone: "Asia/Shanghai", Theme: model.ThemeAuto}, state.User)
	assert.NotNil(t, state.Habits)
	assert.Empty(t, state.Habits)
	assert.NotNil(t, state.Days)
	assert.Equal(t, fixedNow.UnixMilli(), state.Meta.InstallDate)
}

func TestLoadCorruptKeyFallsBackIndependently(t *testing.T) {
	kv := db.NewMemoryKV()
	require.NoError(t, kv.Set(KeyVersion, `"1.0.0"`))
	require.NoError(t, kv.Set(KeyUser, `{"timezone":"UTC","theme":"light","startOfWeek":1}`))
	require.NoError(t, kv.Set(KeyDays, `{"2024-01-01": {"habits": {"h1": tru`))
	require.NoError(t, kv.Set(KeyHabits, `[{"id":"h1","name":"Read","icon":"📚","targetDays":[1],"strict":false,"createdAt":1}]`))
	require.NoError(t, kv.Set(KeyMeta, `null`))

	state := newTestStore(kv).Load()

	assert.Equal(t, model.ThemeLight, state.User.Theme)
	assert.Equal(t, 1, state.User.StartOfWeek)
	assert.Len(t, state.Habits, 1)
	assert.Empty(t, state.Days)
	assert.Equal(t, fixedNow.UnixMilli(), state.Meta.InstallDate)

	nullUser := db.NewMemoryKV()
	require.NoError(t, nullUser.Set(KeyVersion, `"1.0.0"`))
	require.NoError(t, nullUser.Set(KeyUser, ` null `))
	require.NoError(t, nullUser.Set(KeyHabits, `null`))

	state = newTestStore(nullUser).Load()

	assert.Equal(t, "Asia/Shanghai", state.User.Timezone)
	assert.Equal(t, model.ThemeAuto, state.User.Theme)
	assert.NotNil(t, state.Habits)
	assert.Empty(t, state.Habits)
}

func TestPatchReplacesWholeField(t *testing.T) {
	kv := db.NewMemoryKV()
	s := newTestStore(kv)
	require.NoError(t, s.Initialize())

	user := model.UserPrefs{Timezone: "UTC", Theme: model.ThemeDark, StartOfWeek: 1}
	require.NoError(t, s.Patch(Patch{User: &user}))

	// 只包含部分字段的新值会整体覆盖旧值
	partial := model.UserPrefs{Theme: model.ThemeLight}
	require.NoError(t, s.Patch(Patch{User: &partial}))

	raw, _, _ := kv.Get(KeyUser)
	var stored model.UserPrefs
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, partial, stored)
}

func TestPatchReportsStorageWriteError(t *testing.T) {
	kv := &quotaBackend{MemoryKV: db.NewMemoryKV(), reject: map[string]bool{KeyDays: true}}
	s := newTestStore(kv)

	habits := []model.Habit{{ID: "h1", Name: "Read"}}
	days := model.Days{"2024-01-01": {Habits: map[string]bool{"h1": true}}}
	err := s.Patch(Patch{Habits: &habits, Days: &days})

	var writeErr *StorageWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, []string{KeyDays}, writeErr.Keys())
	assert.True(t, IsStorageWriteError(err))

	// 其余字段仍然写入
	has, _ := kv.Has(KeyHabits)
	assert.True(t, has)
}

func TestPatchWithoutFailuresReturnsNil(t *testing.T) {
	s := newTestStore(db.NewMemoryKV())
	meta := model.Meta{Onboarded: true}
	err := s.Patch(Patch{Meta: &meta})
	assert.Nil(t, err)
	assert.True(t, s.Load().Meta.Onboarded)
}

func TestFullPatchRoundTrip(t *testing.T) {
	s := newTestStore(db.NewMemoryKV())
	state := s.Defaults()
	state.Habits = []model.Habit{{ID: "h1", Name: "Walk", Icon: "🚶", TargetDays: []int{0, 1, 2, 3, 4, 5, 6}, CreatedAt: 10}}
	state.Days = model.Days{"2024-01-01": {Habits: map[string]bool{"h1": true}, Journal: "ok", TS: 5}}

	require.NoError(t, s.Patch(FullPatch(state)))
	assert.Equal(t, state, s.Load())
}

func TestUpdateAbortsWithoutWriting(t *testing.T) {
	kv := db.NewMemoryKV()
	s := newTestStore(kv)
	require.NoError(t, s.Initialize())
	before := kv.Dump()

	sentinel := errors.New("abort")
	err := s.Update(func(state model.State) (Patch, error) {
		state.Habits = append(state.Habits, model.Habit{ID: "h1", Name: "Read"})
		return Patch{Habits: &state.Habits}, sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, before, kv.Dump())
}

func TestUpdateWritesReturnedPatch(t *testing.T) {
	s := newTestStore(db.NewMemoryKV())
	require.NoError(t, s.Update(func(state model.State) (Patch, error) {
		state.Meta.Welcome = true
		return Patch{Meta: &state.Meta}, nil
	}))
	assert.True(t, s.Load().Meta.Welcome)
}
