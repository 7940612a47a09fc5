package model

// 主题取值
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// UserPrefs 保存用户偏好，首次启动写入默认值，只能通过整体替换修改。
type UserPrefs struct {
	Timezone    string `json:"timezone"`
	Theme       string `json:"theme"`
	StartOfWeek int    `json:"startOfWeek"`
}

// Habit 定义一个习惯，ID 创建后不再复用。
// TargetDays 为 0..6 的星期集合，0 表示周日。
type Habit struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	TargetDays []int  `json:"targetDays"`
	Strict     bool   `json:"strict"`
	CreatedAt  int64  `json:"createdAt"`
}

// Mood 记录当日心情与精力，取值 1..5。
type Mood struct {
	Mood   int `json:"mood"`
	Energy int `json:"energy"`
}

// DayRecord 以本地日期 YYYY-MM-DD 为键，首次写入时创建。
type DayRecord struct {
	Habits  map[string]bool `json:"habits"`
	Journal string          `json:"journal"`
	Mood    *Mood           `json:"mood,omitempty"`
	TS      int64           `json:"ts"`
}

// Days 是按日期索引的打卡记录。
type Days map[string]DayRecord

// Meta 记录安装与会话信息；StreaksByHabit 只是缓存，需要准确值时重新计算。
type Meta struct {
	InstallDate    int64          `json:"installDate"`
	LastOpenDate   int64          `json:"lastOpenDate"`
	Onboarded      bool           `json:"onboarded"`
	Welcome        bool           `json:"welcome"`
	StreaksByHabit map[string]int `json:"streaksByHabit,omitempty"`
}

// State 是存储层的完整状态，五个字段始终存在。
type State struct {
	Version string    `json:"version"`
	User    UserPrefs `json:"user"`
	Habits  []Habit   `json:"habits"`
	Days    Days      `json:"days"`
	Meta    Meta      `json:"meta"`
}

// HabitIDs 按定义顺序返回全部习惯 ID。
func (s State) HabitIDs() []string {
	ids := make([]string, 0, len(s.Habits))
	for _, habit := range s.Habits {
		ids = append(ids, habit.ID)
	}
	return ids
}

// FindHabit 返回指定 ID 的习惯下标，不存在时返回 -1。
func (s State) FindHabit(id string) int {
	for i, habit := range s.Habits {
		if habit.ID == id {
			return i
		}
	}
	return -1
}

// Clone 深拷贝状态，调用方可以在副本上构造下一个字段值。
func (s State) Clone() State {
	out := s
	out.Habits = CloneHabits(s.Habits)
	out.Days = s.Days.Clone()
	out.Meta = s.Meta.Clone()
	return out
}

// CloneHabits 复制习惯列表，包括 TargetDays。
func CloneHabits(habits []Habit) []Habit {
	if habits == nil {
		return nil
	}
	out := make([]Habit, len(habits))
	for i, habit := range habits {
		out[i] = habit
		if habit.TargetDays != nil {
			out[i].TargetDays = append([]int(nil), habit.TargetDays...)
		}
	}
	return out
}

// Clone 复制全部日期记录。
func (d Days) Clone() Days {
	if d == nil {
		return nil
	}
	out := make(Days, len(d))
	for iso, day := range d {
		out[iso] = day.Clone()
	}
	return out
}

// Clone 复制单日记录。
func (r DayRecord) Clone() DayRecord {
	out := r
	if r.Habits != nil {
		out.Habits = make(map[string]bool, len(r.Habits))
		for id, done := range r.Habits {
			out.Habits[id] = done
		}
	}
	if r.Mood != nil {
		mood := *r.Mood
		out.Mood = &mood
	}
	return out
}

// Clone 复制 Meta，包括连胜缓存。
func (m Meta) Clone() Meta {
	out := m
	if m.StreaksByHabit != nil {
		out.StreaksByHabit = make(map[string]int, len(m.StreaksByHabit))
		for id, n := range m.StreaksByHabit {
			out.StreaksByHabit[id] = n
		}
	}
	return out
}
