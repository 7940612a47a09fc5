// Package metrics 计算连胜、完成率等派生数据，所有函数只读不写且不返回错误。
package metrics

import (
	"sort"

	"github.com/selftrack/internal/calendar"
	"github.com/selftrack/internal/model"
)

// CurrentStreak 从 today（含）向前数连续完成的天数，遇到缺失记录或未完成即停止。
func CurrentStreak(habitID string, days model.Days, today string) int {
	count := 0
	cursor := today
	for cursor != "" {
		day, ok := days[cursor]
		if !ok || !day.Habits[habitID] {
			break
		}
		count++
		cursor = calendar.AddDays(cursor, -1)
	}
	return count
}

// LongestStreak 按日期升序扫描全部记录，缺失的日期与未完成同样会打断连胜。
func LongestStreak(habitID string, days model.Days) int {
	dates := sortedDates(days)

	best, run := 0, 0
	prev := ""
	for _, iso := range dates {
		if !days[iso].Habits[habitID] {
			run = 0
			prev = iso
			continue
		}
		if run > 0 && calendar.AddDays(prev, 1) != iso {
			run = 0
		}
		run++
		if run > best {
			best = run
		}
		prev = iso
	}
	return best
}

// RecomputeStreaks 为每个习惯重新计算当前连胜，结果仅作为 Meta 中的缓存。
func RecomputeStreaks(habits []model.Habit, days model.Days, today string) map[string]int {
	out := make(map[string]int, len(habits))
	for _, habit := range habits {
		out[habit.ID] = CurrentStreak(habit.ID, days, today)
	}
	return out
}

func sortedDates(days model.Days) []string {
	dates := make([]string, 0, len(days))
	for iso := range days {
		if calendar.IsValidISO(iso) {
			dates = append(dates, iso)
		}
	}
	// ISO 字典序即时间顺序
	sort.Strings(dates)
	return dates
}
