package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/selftrack/internal/calendar"
	"github.com/selftrack/internal/locale"
	"github.com/selftrack/internal/logger"
	"github.com/selftrack/internal/metrics"
	"github.com/selftrack/internal/model"
	"github.com/selftrack/internal/store"
)

var (
	// ErrHabitNotFound 在指定习惯不存在时返回
	ErrHabitNotFound = errors.New("habit not found")
	// ErrHabitNameRequired 习惯名称为空
	ErrHabitNameRequired = errors.New("habit name is required")
	// ErrInvalidDate 日期不是 YYYY-MM-DD
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	// ErrInvalidMood 心情或精力不在 1..5
	ErrInvalidMood = errors.New("mood and energy must be between 1 and 5")
	// ErrInvalidUserPrefs 用户偏好取值不合法
	ErrInvalidUserPrefs = errors.New("invalid user preferences")
)

// SampleHabits 是首次启动时预置的示例习惯
var SampleHabits = []string{
	"Read 10 minutes",
	"Walk 15 minutes",
	"Write 3 sentences",
}

// TrackerService 提供界面层使用的全部读写操作，状态只通过 Store 读写。
type TrackerService struct {
	store       *store.Store
	log         *logger.Logger
	now         func() time.Time
	seedSamples bool
}

// TrackerOption 定制 TrackerService
type TrackerOption func(*TrackerService)

// WithTrackerClock 替换时钟，主要用于测试。
func WithTrackerClock(now func() time.Time) TrackerOption {
	return func(s *TrackerService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSampleHabits 控制首次启动是否预置示例习惯。
func WithSampleHabits(enabled bool) TrackerOption {
	return func(s *TrackerService) {
		s.seedSamples = enabled
	}
}

// HabitInput 定义更新习惯时可配置字段
type HabitInput struct {
	Name       string
	Icon       string
	TargetDays []int
	Strict     bool
}

// UserPatch 只包含需要修改的偏好，其余字段沿用当前值。
type UserPatch struct {
	Timezone    *string
	Theme       *string
	StartOfWeek *int
}

// HabitStatus 是今日视图中单个习惯的状态
type HabitStatus struct {
	Habit         model.Habit `json:"habit"`
	Done          bool        `json:"done"`
	Scheduled     bool        `json:"scheduled"`
	CurrentStreak int         `json:"current_streak"`
	LongestStreak int         `json:"longest_streak"`
}

// TodayView 汇总今日完成情况
type TodayView struct {
	Date    string        `json:"date"`
	Done    int           `json:"done"`
	Total   int           `json:"total"`
	Percent int           `json:"percent"`
	Journal string        `json:"journal"`
	Mood    *model.Mood   `json:"mood,omitempty"`
	Welcome bool          `json:"welcome"`
	Habits  []HabitStatus `json:"habits"`
}

// CalendarCell 是月视图中带完成率的格子
type CalendarCell struct {
	calendar.GridCell
	Done       int  `json:"done"`
	Completion int  `json:"completion"`
	HasJournal bool `json:"has_journal"`
	IsToday    bool `json:"is_today"`
}

// MonthView 是历史页的月历数据
type MonthView struct {
	Anchor   string         `json:"anchor"`
	Label    string         `json:"label"`
	Weekdays []string       `json:"weekdays"`
	Cells    []CalendarCell `json:"cells"`
	Summary  map[string]int `json:"summary"`
}

// HabitStats 汇总单个习惯的连胜
type HabitStats struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
}

// StatsView 汇总全部统计
type StatsView struct {
	TotalCheckins int          `json:"total_checkins"`
	ActiveDays    int          `json:"active_days"`
	Habits        []HabitStats `json:"habits"`
}

// NewTrackerService 构造 TrackerService
func NewTrackerService(st *store.Store, log *logger.Logger, opts ...TrackerOption) *TrackerService {
	if log == nil {
		log = logger.NewNop()
	}
	s := &TrackerService{store: st, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetState 返回当前完整状态
func (s *TrackerService) GetState() model.State {
	return s.store.Load()
}

// Today 返回用户时区下的今日日期
func (s *TrackerService) Today() string {
	return s.todayFor(s.store.Load().User)
}

// OpenSession 记录打开时间；首次启动时预置示例习惯并显示欢迎提示，同时刷新连胜缓存。
func (s *TrackerService) OpenSession() (model.State, error) {
	var next model.State
	err := s.store.Update(func(state model.State) (store.Patch, error) {
		nowMs := s.now().UnixMilli()
		patch := store.Patch{}

		firstRun := state.Meta.LastOpenDate == 0 && len(state.Habits) == 0
		if firstRun && !state.Meta.Onboarded {
			if s.seedSamples {
				for _, name := range SampleHabits {
					state.Habits = append(state.Habits, s.newHabit(state, name, nowMs))
				}
				patch.Habits = &state.Habits
				state.Meta.Welcome = true
			}
			state.Meta.Onboarded = true
			s.log.Info("first run onboarding", "seeded", s.seedSamples)
		}

		if state.Meta.InstallDate == 0 {
			state.Meta.InstallDate = nowMs
		}
		state.Meta.LastOpenDate = nowMs
		state.Meta.StreaksByHabit = metrics.RecomputeStreaks(state.Habits, state.Days, s.todayFor(state.User))
		patch.Meta = &state.Meta

		next = state
		return patch, nil
	})
	if err != nil {
		return next, fmt.Errorf("open session: %w", err)
	}
	return next, nil
}

// AddHabit 新建习惯，ID 一经分配不会复用。
func (s *TrackerService) AddHabit(name string) (model.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Habit{}, ErrHabitNameRequired
	}

	var habit model.Habit
	err := s.store.Update(func(state model.State) (store.Patch, error) {
		habit = s.newHabit(state, name, s.now().UnixMilli())
		habits := append(state.Habits, habit)
		return store.Patch{Habits: &habits}, nil
	})
	if err != nil {
		return habit, fmt.Errorf("add habit: %w", err)
	}
	return habit, nil
}

// UpdateHabit 更新习惯的可编辑字段，ID 与创建时间保持不变。
func (s *TrackerService) UpdateHabit(id string, input HabitInput) (model.Habit, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return model.Habit{}, ErrHabitNameRequired
	}

	var updated model.Habit
	err := s.store.Update(func(state model.State) (store.Patch, error) {
		idx := state.FindHabit(id)
		if idx < 0 {
			return store.Patch{}, ErrHabitNotFound
		}

		habit := state.Habits[idx]
		habit.Name = name
		habit.Icon = strings.TrimSpace(input.Icon)
		if habit.Icon == "" {
			habit.Icon = store.DefaultHabitIcon
		}
		habit.TargetDays = store.NormalizeTargetDays(input.TargetDays)
		habit.Strict = input.Strict
		state.Habits[idx] = habit

		updated = habit
		return store.Patch{Habits: &state.Habits}, nil
	})
	if err != nil {
		return updated, fmt.Errorf("update habit: %w", err)
	}
	return updated, nil
}

// DeleteHabit 删除习惯，并从每一天的记录里移除它的打卡项。
func (s *TrackerService) DeleteHabit(id string) error {
	err := s.store.Update(func(state model.State) (store.Patch, error) {
		idx := state.FindHabit(id)
		if idx < 0 {
			return store.Patch{}, ErrHabitNotFound
		}

		habits := slices.Delete(slices.Clone(state.Habits), idx, idx+1)
		days := make(model.Days, len(state.Days))
		for iso, day := range state.Days {
			if _, ok := day.Habits[id]; ok {
				day = day.Clone()
				delete(day.Habits, id)
			}
			days[iso] = day
		}
		delete(state.Meta.StreaksByHabit, id)

		return store.Patch{Habits: &habits, Days: &days, Meta: &state.Meta}, nil
	})
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	return nil
}

// ToggleHabitForToday 设置今日的打卡状态
func (s *TrackerService) ToggleHabitForToday(habitID string, checked bool) (model.DayRecord, error) {
	return s.ToggleHabitForDate(s.Today(), habitID, checked)
}

// ToggleHabitForDate 设置指定日期的打卡状态，记录不存在时创建。
func (s *TrackerService) ToggleHabitForDate(iso, habitID string, checked bool) (model.DayRecord, error) {
	if !calendar.IsValidISO(iso) {
		return model.DayRecord{}, ErrInvalidDate
	}

	var record model.DayRecord
	err := s.store.Update(func(state model.State) (store.Patch, error) {
		if state.FindHabit(habitID) < 0 {
			return store.Patch{}, ErrHabitNotFound
		}
		record = s.touchDay(state.Days, iso, func(day *model.DayRecord) {
			day.Habits[habitID] = checked
		})
		return store.Patch{Days: &state.Days}, nil
	})
	if err != nil {
		return record, fmt.Errorf("toggle habit: %w", err)
	}
	return record, nil
}

// SetJournalForDate 覆盖指定日期的日记
func (s *TrackerService) SetJournalForDate(iso, text string) (model.DayRecord, error) {
	if !calendar.IsValidISO(iso) {
		return model.DayRecord{}, ErrInvalidDate
	}

	var record model.DayRecord
	err := s.store.Update(func(state model.State) (store.Patch, error) {
		record = s.touchDay(state.Days, iso, func(day *model.DayRecord) {
			day.Journal = text
		})
		return store.Patch{Days: &state.Days}, nil
	})
	if err != nil {
		return record, fmt.Errorf("set journal: %w", err)
	}
	return record, nil
}

// GetJournalForDate 读取指定日期的日记，没有记录时返回空串。
func (s *TrackerService) GetJournalForDate(iso string) (string, error) {
	if !calendar.IsValidISO(iso) {
		return "", ErrInvalidDate
	}
	return s.store.Load().Days[iso].Journal, nil
}

// SetMoodForDate 记录指定日期的心情与精力
func (s *TrackerService) SetMoodForDate(iso string, mood, energy int) (model.DayRecord, error) {
	if !calendar.IsValidISO(iso) {
		return model.DayRecord{}, ErrInvalidDate
	}
	if mood < 1 || mood > 5 || energy < 1 || energy > 5 {
		return model.DayRecord{}, ErrInvalidMood
	}

	var record model.DayRecord
	err := s.store.Update(func(state model.State) (store.Patch, error) {
		record = s.touchDay(state.Days, iso, func(day *model.DayRecord) {
			day.Mood = &model.Mood{Mood: mood, Energy: energy}
		})
		return store.Patch{Days: &state.Days}, nil
	})
	if err != nil {
		return record, fmt.Errorf("set mood: %w", err)
	}
	return record, nil
}

// UpdateUser 基于当前偏好应用修改，并整体写回。
func (s *TrackerService) UpdateUser(patch UserPatch) (model.UserPrefs, error) {
	var user model.UserPrefs
	err := s.store.Update(func(state model.State) (store.Patch, error) {
		next := state.User
		if patch.Timezone != nil {
			tz := strings.TrimSpace(*patch.Timezone)
			if _, err := time.LoadLocation(tz); err != nil || tz == "" {
				return store.Patch{}, fmt.Errorf("%w: unknown timezone %q", ErrInvalidUserPrefs, tz)
			}
			next.Timezone = tz
		}
		if patch.Theme != nil {
			theme := strings.ToLower(strings.TrimSpace(*patch.Theme))
			if theme != model.ThemeAuto && theme != model.ThemeDark && theme != model.ThemeLight {
				return store.Patch{}, fmt.Errorf("%w: unsupported theme %q", ErrInvalidUserPrefs, theme)
			}
			next.Theme = theme
		}
		if patch.StartOfWeek != nil {
			if *patch.StartOfWeek < 0 || *patch.StartOfWeek > 6 {
				return store.Patch{}, fmt.Errorf("%w: start of week must be 0..6", ErrInvalidUserPrefs)
			}
			next.StartOfWeek = *patch.StartOfWeek
		}

		user = next
		return store.Patch{User: &next}, nil
	})
	if err != nil {
		return user, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// ClearWelcome 关闭欢迎提示
func (s *TrackerService) ClearWelcome() (model.Meta, error) {
	var meta model.Meta
	err := s.store.Update(func(state model.State) (store.Patch, error) {
		state.Meta.Welcome = false
		meta = state.Meta
		return store.Patch{Meta: &state.Meta}, nil
	})
	if err != nil {
		return meta, fmt.Errorf("clear welcome: %w", err)
	}
	return meta, nil
}

// TodayView 汇总今日完成情况与每个习惯的连胜
func (s *TrackerService) TodayView() TodayView {
	state := s.store.Load()
	today := s.todayFor(state.User)
	day := state.Days[today]
	weekday := calendar.Weekday(today)

	view := TodayView{
		Date:    today,
		Done:    metrics.DoneCount(day),
		Total:   len(state.Habits),
		Percent: metrics.DayCompletion(day, len(state.Habits)),
		Journal: day.Journal,
		Mood:    day.Mood,
		Welcome: state.Meta.Welcome,
		Habits:  make([]HabitStatus, 0, len(state.Habits)),
	}
	for _, habit := range state.Habits {
		view.Habits = append(view.Habits, HabitStatus{
			Habit:         habit,
			Done:          day.Habits[habit.ID],
			Scheduled:     len(habit.TargetDays) == 0 || slices.Contains(habit.TargetDays, weekday),
			CurrentStreak: metrics.CurrentStreak(habit.ID, state.Days, today),
			LongestStreak: metrics.LongestStreak(habit.ID, state.Days),
		})
	}
	return view
}

// CalendarMonth 返回锚点所在月份的月历，anchor 为空时使用今天。
func (s *TrackerService) CalendarMonth(anchor, lang string) (MonthView, error) {
	state := s.store.Load()
	today := s.todayFor(state.User)
	if anchor == "" {
		anchor = today
	}
	if !calendar.IsValidISO(anchor) {
		return MonthView{}, ErrInvalidDate
	}

	grid := calendar.MonthGrid(anchor, state.User.StartOfWeek)
	total := len(state.Habits)
	cells := make([]CalendarCell, 0, len(grid))
	for _, cell := range grid {
		day := state.Days[cell.Date]
		cells = append(cells, CalendarCell{
			GridCell:   cell,
			Done:       metrics.DoneCount(day),
			Completion: metrics.DayCompletion(day, total),
			HasJournal: strings.TrimSpace(day.Journal) != "",
			IsToday:    cell.Date == today,
		})
	}

	return MonthView{
		Anchor:   calendar.FirstOfMonth(anchor),
		Label:    calendar.MonthLabel(anchor, lang),
		Weekdays: locale.WeekdayNames(state.User.StartOfWeek, lang),
		Cells:    cells,
		Summary:  metrics.MonthSummary(anchor, state.Days, state.HabitIDs()),
	}, nil
}

// WeekSummary 统计一周内每个习惯的完成次数，start 为空时取本周起始日。
func (s *TrackerService) WeekSummary(start string) (string, map[string]int, error) {
	state := s.store.Load()
	if start == "" {
		today := s.todayFor(state.User)
		back := (calendar.Weekday(today) - state.User.StartOfWeek + 7) % 7
		start = calendar.AddDays(today, -back)
	}
	if !calendar.IsValidISO(start) {
		return "", nil, ErrInvalidDate
	}
	return start, metrics.WeekSummary(start, state.Days, state.HabitIDs()), nil
}

// Stats 返回总打卡数与各习惯的连胜
func (s *TrackerService) Stats() StatsView {
	state := s.store.Load()
	today := s.todayFor(state.User)

	view := StatsView{
		TotalCheckins: metrics.TotalCheckins(state.Days),
		Habits:        make([]HabitStats, 0, len(state.Habits)),
	}
	for _, day := range state.Days {
		if metrics.DoneCount(day) > 0 {
			view.ActiveDays++
		}
	}
	for _, habit := range state.Habits {
		view.Habits = append(view.Habits, HabitStats{
			ID:            habit.ID,
			Name:          habit.Name,
			CurrentStreak: metrics.CurrentStreak(habit.ID, state.Days, today),
			LongestStreak: metrics.LongestStreak(habit.ID, state.Days),
		})
	}
	return view
}

// touchDay 修改 days 中的某一天并刷新时间戳，返回修改后的记录。
func (s *TrackerService) touchDay(days model.Days, iso string, mutate func(day *model.DayRecord)) model.DayRecord {
	day, ok := days[iso]
	if ok {
		day = day.Clone()
	}
	if day.Habits == nil {
		day.Habits = map[string]bool{}
	}
	mutate(&day)
	day.TS = s.now().UnixMilli()
	days[iso] = day
	return day
}

func (s *TrackerService) newHabit(state model.State, name string, createdAt int64) model.Habit {
	id := newHabitID()
	for state.FindHabit(id) >= 0 {
		id = newHabitID()
	}
	return model.Habit{
		ID:         id,
		Name:       name,
		Icon:       store.DefaultHabitIcon,
		TargetDays: []int{0, 1, 2, 3, 4, 5, 6},
		Strict:     false,
		CreatedAt:  createdAt,
	}
}

func (s *TrackerService) todayFor(user model.UserPrefs) string {
	return calendar.TodayLocal(s.now().In(resolveLocation(user.Timezone)))
}

func newHabitID() string {
	return "h_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func resolveLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}
