// Package snapshot 负责导出快照的构建、校验与 save key 编解码。
package snapshot

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/selftrack/internal/model"
	"github.com/tidwall/gjson"
)

// Build 将状态投影为快照，空集合统一输出为 [] / {}。
func Build(state model.State, now time.Time) model.Snapshot {
	clone := state.Clone()
	if clone.Habits == nil {
		clone.Habits = []model.Habit{}
	}
	if clone.Days == nil {
		clone.Days = model.Days{}
	}
	if len(clone.Meta.StreaksByHabit) == 0 {
		clone.Meta.StreaksByHabit = nil
	}
	return model.Snapshot{
		SchemaTag:  model.SnapshotTag,
		Version:    clone.Version,
		ExportedAt: now.UnixMilli(),
		User:       clone.User,
		Habits:     clone.Habits,
		Days:       clone.Days,
		Meta:       clone.Meta,
	}
}

// Validate 在信任任何字段之前检查快照结构，返回遇到的第一个问题。
func Validate(raw []byte) error {
	if !gjson.ValidBytes(raw) {
		return &MalformedInputError{Reason: "not valid JSON"}
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return invalid("file is not a JSON object")
	}

	// 顶层键不允许重复，否则 gjson 与解码器会读到不同的值
	var dup string
	seen := make(map[string]bool)
	root.ForEach(func(key, _ gjson.Result) bool {
		if seen[key.Str] {
			dup = key.Str
			return false
		}
		seen[key.Str] = true
		return true
	})
	if dup != "" {
		return invalid(fmt.Sprintf("duplicate key %q", dup))
	}

	tag := root.Get("schemaTag")
	if !tag.Exists() || tag.Type != gjson.String || tag.Str != model.SnapshotTag {
		return invalid("not a SelfTrack save file")
	}

	version := root.Get("version")
	if !version.Exists() || version.Type != gjson.String || strings.TrimSpace(version.Str) == "" {
		return invalid("missing schema version")
	}

	for _, key := range []string{"user", "habits", "days", "meta"} {
		if !root.Get(key).Exists() {
			return invalid("missing required keys (user, habits, days, meta)")
		}
	}

	if !root.Get("habits").IsArray() {
		return invalid("habits must be an array")
	}
	if !root.Get("days").IsObject() {
		return invalid("days must be an object map")
	}
	if !root.Get("user").IsObject() {
		return invalid("user must be an object")
	}
	if !root.Get("meta").IsObject() {
		return invalid("meta must be an object")
	}
	return nil
}

// Parse 校验并解码导出文件内容。
func Parse(raw []byte) (model.Snapshot, error) {
	raw = bytes.TrimSpace(raw)
	if err := Validate(raw); err != nil {
		return model.Snapshot{}, err
	}

	var snap model.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return model.Snapshot{}, invalid(fmt.Sprintf("unexpected field type: %v", err))
	}
	if snap.SchemaTag != model.SnapshotTag {
		return model.Snapshot{}, invalid("not a SelfTrack save file")
	}
	if err := checkUser(snap.User); err != nil {
		return model.Snapshot{}, err
	}
	if err := checkHabits(snap.Habits); err != nil {
		return model.Snapshot{}, err
	}
	if snap.Days == nil {
		snap.Days = model.Days{}
	}
	return snap, nil
}

// Encode 将快照编码为 save key：UTF-8 JSON 的标准 base64。
func Encode(snap model.Snapshot) (string, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decode 解码 save key 并完成校验，失败时不会返回半成品。
func Decode(token string) (model.Snapshot, error) {
	cleaned := strings.Join(strings.Fields(token), "")
	if cleaned == "" {
		return model.Snapshot{}, &MalformedInputError{Reason: "empty save key"}
	}
	raw, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return model.Snapshot{}, &MalformedInputError{Reason: "save key is not valid base64", Err: err}
	}
	return Parse(raw)
}

// CheckIntegrity 丢弃引用未知习惯的打卡项，返回修复后的快照与被丢弃的条目。
func CheckIntegrity(snap model.Snapshot) (model.Snapshot, []ReferentialIntegrityViolation) {
	days, dropped := model.PruneDays(snap.Days, model.KnownHabitIDs(snap.Habits))
	snap.Days = days

	violations := make([]ReferentialIntegrityViolation, 0, len(dropped))
	for _, entry := range dropped {
		violations = append(violations, ReferentialIntegrityViolation{Date: entry.Date, HabitID: entry.HabitID})
	}
	return snap, violations
}

// FileName 返回导出文件名，形如 SelfTrack-20240102-0930.json。
func FileName(now time.Time) string {
	return fmt.Sprintf("SelfTrack-%s.json", now.Format("20060102-1504"))
}

func checkHabits(habits []model.Habit) error {
	seen := make(map[string]bool, len(habits))
	for i, habit := range habits {
		if strings.TrimSpace(habit.ID) == "" {
			return invalid(fmt.Sprintf("habit #%d has no id", i+1))
		}
		if seen[habit.ID] {
			return invalid(fmt.Sprintf("duplicate habit id %q", habit.ID))
		}
		if strings.TrimSpace(habit.Name) == "" {
			return invalid(fmt.Sprintf("habit %q has an empty name", habit.ID))
		}
		seen[habit.ID] = true
	}
	return nil
}

// checkUser 主题允许为空（旧版本快照），其余取值必须合法。
func checkUser(user model.UserPrefs) error {
	switch user.Theme {
	case "", model.ThemeAuto, model.ThemeDark, model.ThemeLight:
	default:
		return invalid(fmt.Sprintf("unsupported theme %q", user.Theme))
	}
	if user.StartOfWeek < 0 || user.StartOfWeek > 6 {
		return invalid("startOfWeek must be between 0 and 6")
	}
	return nil
}
