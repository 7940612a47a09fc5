package model

// SnapshotTag 是导出文件的固定类型标识。
const SnapshotTag = "selftrack.save"

// Snapshot 是一次导出的完整副本，只由导出创建、只被导入消费。
type Snapshot struct {
	SchemaTag  string    `json:"schemaTag"`
	Version    string    `json:"version"`
	ExportedAt int64     `json:"exportedAt"`
	User       UserPrefs `json:"user"`
	Habits     []Habit   `json:"habits"`
	Days       Days      `json:"days"`
	Meta       Meta      `json:"meta"`
}

// State 将快照投影为存储状态，版本号原样保留以便后续迁移。
func (s Snapshot) State() State {
	return State{
		Version: s.Version,
		User:    s.User,
		Habits:  s.Habits,
		Days:    s.Days,
		Meta:    s.Meta,
	}
}
