package store

import (
	"sort"
	"strings"

	"github.com/selftrack/internal/calendar"
	"github.com/selftrack/internal/model"
	"golang.org/x/mod/semver"
)

// CurrentVersion 是当前的状态结构版本。
const CurrentVersion = "1.0.0"

// legacyVersion 是已知最早的版本，缺失或无法识别的版本都按它处理。
const legacyVersion = "0.1"

// DefaultHabitIcon 在旧数据缺少图标时补齐。
const DefaultHabitIcon = "🔥"

type migration struct {
	to    string
	apply func(model.State) model.State
}

// migrations 按版本升序排列，每一步都是纯函数。
var migrations = []migration{
	{to: "0.2.0", apply: migrateHabitDefaults},
	{to: "1.0.0", apply: migrateIntegrity},
}

// Migrate 依次执行高于当前版本的迁移步骤并校正用户偏好，结束后版本固定为 CurrentVersion。
// 不会修改入参，也不会失败。
func Migrate(state model.State) model.State {
	next := state.Clone()
	version := knownVersion(state.Version)

	for _, step := range migrations {
		if semver.Compare(canonical(version), canonical(step.to)) >= 0 {
			continue
		}
		next = step.apply(next)
		version = step.to
	}

	// 偏好在每次迁移后都校正，当前版本的数据同样适用
	next.User = normalizeUser(next.User)
	if next.Habits == nil {
		next.Habits = []model.Habit{}
	}
	if next.Days == nil {
		next.Days = model.Days{}
	}
	next.Version = CurrentVersion
	return next
}

// knownVersion 将版本号归一，未知或高于当前版本的值退回到最早版本。
func knownVersion(version string) string {
	v := canonical(version)
	if !semver.IsValid(v) || semver.Compare(v, canonical(CurrentVersion)) > 0 {
		return legacyVersion
	}
	return strings.TrimPrefix(v, "v")
}

func canonical(version string) string {
	v := strings.TrimSpace(version)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}

// migrateHabitDefaults 为 0.1 数据补齐习惯字段并规范用户偏好。
func migrateHabitDefaults(state model.State) model.State {
	for i := range state.Habits {
		habit := &state.Habits[i]
		habit.Name = strings.TrimSpace(habit.Name)
		if habit.Name == "" {
			habit.Name = habit.ID
		}
		if habit.Icon == "" {
			habit.Icon = DefaultHabitIcon
		}
		habit.TargetDays = NormalizeTargetDays(habit.TargetDays)
		if habit.CreatedAt == 0 {
			habit.CreatedAt = state.Meta.InstallDate
		}
	}

	state.User = normalizeUser(state.User)
	return state
}

// normalizeUser 把越界的主题与周起始日恢复为默认值。
func normalizeUser(user model.UserPrefs) model.UserPrefs {
	switch user.Theme {
	case model.ThemeAuto, model.ThemeDark, model.ThemeLight:
	default:
		user.Theme = model.ThemeAuto
	}
	if user.StartOfWeek < 0 || user.StartOfWeek > 6 {
		user.StartOfWeek = 0
	}
	return user
}

// migrateIntegrity 去除重复习惯与悬空的打卡项，丢弃非法日期键。
func migrateIntegrity(state model.State) model.State {
	seen := make(map[string]bool, len(state.Habits))
	habits := make([]model.Habit, 0, len(state.Habits))
	for _, habit := range state.Habits {
		if habit.ID == "" || seen[habit.ID] {
			continue
		}
		seen[habit.ID] = true
		habits = append(habits, habit)
	}
	state.Habits = habits

	valid := make(model.Days, len(state.Days))
	for iso, day := range state.Days {
		if calendar.IsValidISO(iso) {
			valid[iso] = day
		}
	}
	state.Days, _ = model.PruneDays(valid, seen)
	return state
}

// NormalizeTargetDays 去重并排序，空集合表示每天。
func NormalizeTargetDays(days []int) []int {
	set := make(map[int]bool, 7)
	for _, d := range days {
		if d >= 0 && d <= 6 {
			set[d] = true
		}
	}
	if len(set) == 0 {
		return []int{0, 1, 2, 3, 4, 5, 6}
	}
	out := make([]int, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}
