package model

import "sort"

// DanglingEntry 描述某天引用了不存在的习惯
type DanglingEntry struct {
	Date    string
	HabitID string
}

// KnownHabitIDs 返回习惯 ID 集合
func KnownHabitIDs(habits []Habit) map[string]bool {
	known := make(map[string]bool, len(habits))
	for _, habit := range habits {
		known[habit.ID] = true
	}
	return known
}

// PruneDays 删除引用未知习惯的打卡项，返回新的 Days 与被删除的条目。
// 输入不会被修改。
func PruneDays(days Days, known map[string]bool) (Days, []DanglingEntry) {
	out := make(Days, len(days))
	var dropped []DanglingEntry

	for iso, day := range days {
		next := day.Clone()
		if next.Habits == nil {
			next.Habits = map[string]bool{}
		}
		for id := range next.Habits {
			if !known[id] {
				delete(next.Habits, id)
				dropped = append(dropped, DanglingEntry{Date: iso, HabitID: id})
			}
		}
		out[iso] = next
	}

	sort.Slice(dropped, func(i, j int) bool {
		if dropped[i].Date != dropped[j].Date {
			return dropped[i].Date < dropped[j].Date
		}
		return dropped[i].HabitID < dropped[j].HabitID
	})
	return out, dropped
}
