package metrics

import (
	"math"

	"github.com/selftrack/internal/calendar"
	"github.com/selftrack/internal/model"
)

// DoneCount 统计单日已完成的习惯数
func DoneCount(day model.DayRecord) int {
	done := 0
	for _, ok := range day.Habits {
		if ok {
			done++
		}
	}
	return done
}

// DayCompletion 返回单日完成百分比 0..100，习惯总数为 0 时返回 0。
func DayCompletion(day model.DayRecord, totalHabits int) int {
	if totalHabits <= 0 {
		return 0
	}
	pct := int(math.Round(float64(DoneCount(day)) / float64(totalHabits) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

// WeekSummary 统计从 weekStart 开始 7 天内每个习惯的完成次数。
func WeekSummary(weekStart string, days model.Days, habitIDs []string) map[string]int {
	return rangeSummary(weekStart, 7, days, habitIDs)
}

// MonthSummary 统计锚点所在自然月内每个习惯的完成次数。
func MonthSummary(anchor string, days model.Days, habitIDs []string) map[string]int {
	first := calendar.FirstOfMonth(anchor)
	last := calendar.LastOfMonth(anchor)
	if first == "" {
		return rangeSummary("", 0, days, habitIDs)
	}
	t, _ := calendar.ParseISO(last)
	return rangeSummary(first, t.Day(), days, habitIDs)
}

// TotalCheckins 统计所有日期、所有习惯的完成次数。
func TotalCheckins(days model.Days) int {
	total := 0
	for _, day := range days {
		total += DoneCount(day)
	}
	return total
}

func rangeSummary(start string, length int, days model.Days, habitIDs []string) map[string]int {
	out := make(map[string]int, len(habitIDs))
	for _, id := range habitIDs {
		out[id] = 0
	}
	if start == "" {
		return out
	}

	for i := 0; i < length; i++ {
		day, ok := days[calendar.AddDays(start, i)]
		if !ok {
			continue
		}
		for _, id := range habitIDs {
			if day.Habits[id] {
				out[id]++
			}
		}
	}
	return out
}
