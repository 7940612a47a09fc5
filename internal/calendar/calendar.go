// Package calendar 提供基于本地日历日期的纯函数工具。
// 日期运算只作用于年/月/日分量，不依赖时间戳，避免夏令时偏移。
package calendar

import (
	"time"

	"github.com/selftrack/internal/locale"
)

// ISOLayout 是日期键的格式
const ISOLayout = "2006-01-02"

// GridCell 表示月视图中的一个格子。
type GridCell struct {
	Date    string `json:"date"`
	Day     int    `json:"day"`
	InMonth bool   `json:"in_month"`
}

// TodayLocal 返回 now 所在时区的日历日期；调用方负责先转换到用户时区。
func TodayLocal(now time.Time) string {
	return now.Format(ISOLayout)
}

// ParseISO 解析 YYYY-MM-DD，返回一个只承载日期分量的 UTC 时间。
func ParseISO(iso string) (time.Time, bool) {
	t, err := time.Parse(ISOLayout, iso)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsValidISO 判断字符串是否为合法的日期键
func IsValidISO(iso string) bool {
	_, ok := ParseISO(iso)
	return ok
}

// AddDays 在日期上加减 n 天，自动处理跨月跨年；非法输入或结果超出 0000..9999 年时返回空串。
func AddDays(iso string, n int) string {
	t, ok := ParseISO(iso)
	if !ok {
		return ""
	}
	return formatISO(t.AddDate(0, 0, n))
}

// Weekday 返回日期对应的星期，非法输入返回 -1。
func Weekday(iso string) int {
	t, ok := ParseISO(iso)
	if !ok {
		return -1
	}
	return int(t.Weekday())
}

// FirstOfMonth 返回日期所在月份的 1 号。
func FirstOfMonth(iso string) string {
	t, ok := ParseISO(iso)
	if !ok {
		return ""
	}
	return formatISO(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC))
}

// LastOfMonth 返回日期所在月份的最后一天。
func LastOfMonth(iso string) string {
	t, ok := ParseISO(iso)
	if !ok {
		return ""
	}
	return formatISO(time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC))
}

// ShiftMonth 将锚点移动 delta 个月，结果固定为目标月份的 1 号；超出可表示范围时返回空串。
func ShiftMonth(iso string, delta int) string {
	t, ok := ParseISO(iso)
	if !ok {
		return ""
	}
	return formatISO(time.Date(t.Year(), t.Month()+time.Month(delta), 1, 0, 0, 0, 0, time.UTC))
}

// WeekGridBounds 计算月视图的首尾格子。
// start 为 1 号当天或之前最近的 weekStart，end 为月末当天或之后最近的 weekStart-1，
// 两端都截断在 0000-01-01..9999-12-31 之内。
func WeekGridBounds(anchor string, weekStart int) (start, end string) {
	from, to, ok := gridRange(anchor, weekStart)
	if !ok {
		return "", ""
	}
	return formatISO(clampDate(from)), formatISO(clampDate(to))
}

// MonthGrid 返回完整的月视图格子，长度总是 7 的倍数。
// 落在可表示范围之外的补位格子 Date 为空、Day 为 0。
func MonthGrid(anchor string, weekStart int) []GridCell {
	from, to, ok := gridRange(anchor, weekStart)
	if !ok {
		return nil
	}
	month := from
	if t, ok := ParseISO(anchor); ok {
		month = t
	}

	count := int(to.Sub(from).Hours()/24) + 1
	cells := make([]GridCell, 0, count)
	for i := 0; i < count; i++ {
		day := from.AddDate(0, 0, i)
		date := formatISO(day)
		if date == "" {
			cells = append(cells, GridCell{})
			continue
		}
		cells = append(cells, GridCell{
			Date:    date,
			Day:     day.Day(),
			InMonth: day.Year() == month.Year() && day.Month() == month.Month(),
		})
	}
	return cells
}

// MonthLabel 返回本地化的 “Month Year” 标题。
func MonthLabel(anchor, lang string) string {
	t, ok := ParseISO(anchor)
	if !ok {
		return ""
	}
	return locale.MonthLabel(t.Year(), t.Month(), lang)
}

func normalizeWeekday(day int) int {
	day %= 7
	if day < 0 {
		day += 7
	}
	return day
}

var (
	minDate = time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC)
	maxDate = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
)

// gridRange 返回月视图首尾两天，未做范围截断。
func gridRange(anchor string, weekStart int) (from, to time.Time, ok bool) {
	t, ok := ParseISO(anchor)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	weekStart = normalizeWeekday(weekStart)
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)

	back := (int(first.Weekday()) - weekStart + 7) % 7
	forward := (weekStart - 1 - int(last.Weekday()) + 14) % 7
	return first.AddDate(0, 0, -back), last.AddDate(0, 0, forward), true
}

func clampDate(t time.Time) time.Time {
	if t.Before(minDate) {
		return minDate
	}
	if t.After(maxDate) {
		return maxDate
	}
	return t
}

// formatISO 只输出四位年份的日期，超出范围返回空串。
func formatISO(t time.Time) string {
	if t.Before(minDate) || t.After(maxDate) {
		return ""
	}
	return t.Format(ISOLayout)
}
