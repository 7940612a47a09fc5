package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/selftrack/internal/calendar"
	"github.com/selftrack/internal/service"
)

const historyAnchorKey = "history_anchor"

type habitPayload struct {
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	TargetDays []int  `json:"target_days"`
	Strict     bool   `json:"strict"`
}

type checkPayload struct {
	Checked bool `json:"checked"`
}

type journalPayload struct {
	Text string `json:"text"`
}

type moodPayload struct {
	Mood   int `json:"mood"`
	Energy int `json:"energy"`
}

type userPayload struct {
	Timezone    *string `json:"timezone"`
	Theme       *string `json:"theme"`
	StartOfWeek *int    `json:"start_of_week"`
}

// GetState 返回完整状态
func (a *API) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": a.tracker.GetState()})
}

// OpenSession 记录一次打开，首次打开时完成引导
func (a *API) OpenSession(c *gin.Context) {
	state, err := a.tracker.OpenSession()
	a.respondMutation(c, err, gin.H{"state": state}, "初始化会话失败")
}

// CreateHabit 新建习惯
func (a *API) CreateHabit(c *gin.Context) {
	var payload habitPayload
	if !bindJSON(c, &payload, "习惯参数不合法") {
		return
	}
	habit, err := a.tracker.AddHabit(payload.Name)
	a.respondMutation(c, err, gin.H{"habit": habit}, "创建习惯失败")
}

// UpdateHabit 更新习惯
func (a *API) UpdateHabit(c *gin.Context) {
	var payload habitPayload
	if !bindJSON(c, &payload, "习惯参数不合法") {
		return
	}
	habit, err := a.tracker.UpdateHabit(c.Param("id"), service.HabitInput{
		Name:       payload.Name,
		Icon:       payload.Icon,
		TargetDays: payload.TargetDays,
		Strict:     payload.Strict,
	})
	a.respondMutation(c, err, gin.H{"habit": habit}, "更新习惯失败")
}

// DeleteHabit 删除习惯及其全部打卡记录
func (a *API) DeleteHabit(c *gin.Context) {
	id := c.Param("id")
	err := a.tracker.DeleteHabit(id)
	a.respondMutation(c, err, gin.H{"id": id}, "删除习惯失败")
}

// ToggleToday 设置今日打卡状态
func (a *API) ToggleToday(c *gin.Context) {
	var payload checkPayload
	if !bindJSON(c, &payload, "打卡参数不合法") {
		return
	}
	day, err := a.tracker.ToggleHabitForToday(c.Param("id"), payload.Checked)
	a.respondMutation(c, err, gin.H{"day": day}, "打卡失败")
}

// ToggleForDate 设置指定日期的打卡状态
func (a *API) ToggleForDate(c *gin.Context) {
	var payload checkPayload
	if !bindJSON(c, &payload, "打卡参数不合法") {
		return
	}
	day, err := a.tracker.ToggleHabitForDate(c.Param("date"), c.Param("id"), payload.Checked)
	a.respondMutation(c, err, gin.H{"day": day}, "打卡失败")
}

// GetJournal 返回日记原文与渲染后的 HTML
func (a *API) GetJournal(c *gin.Context) {
	date := c.Param("date")
	text, err := a.tracker.GetJournalForDate(date)
	if err != nil {
		a.respondServiceError(c, err, "读取日记失败")
		return
	}
	html, err := service.RenderJournal(text)
	if err != nil {
		a.respondServiceError(c, err, "渲染日记失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "text": text, "html": string(html)})
}

// SaveJournal 保存日记
func (a *API) SaveJournal(c *gin.Context) {
	var payload journalPayload
	if !bindJSON(c, &payload, "日记内容不合法") {
		return
	}
	day, err := a.tracker.SetJournalForDate(c.Param("date"), payload.Text)
	a.respondMutation(c, err, gin.H{"day": day}, "保存日记失败")
}

// SaveMood 保存心情与精力
func (a *API) SaveMood(c *gin.Context) {
	var payload moodPayload
	if !bindJSON(c, &payload, "心情参数不合法") {
		return
	}
	day, err := a.tracker.SetMoodForDate(c.Param("date"), payload.Mood, payload.Energy)
	a.respondMutation(c, err, gin.H{"day": day}, "保存心情失败")
}

// UpdateUser 修改用户偏好
func (a *API) UpdateUser(c *gin.Context) {
	var payload userPayload
	if !bindJSON(c, &payload, "偏好设置不合法") {
		return
	}
	user, err := a.tracker.UpdateUser(service.UserPatch{
		Timezone:    payload.Timezone,
		Theme:       payload.Theme,
		StartOfWeek: payload.StartOfWeek,
	})
	a.respondMutation(c, err, gin.H{"user": user}, "保存偏好失败")
}

// DismissWelcome 关闭欢迎提示
func (a *API) DismissWelcome(c *gin.Context) {
	meta, err := a.tracker.ClearWelcome()
	a.respondMutation(c, err, gin.H{"meta": meta}, "操作失败")
}

// GetToday 返回今日视图
func (a *API) GetToday(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"today": a.tracker.TodayView()})
}

// GetHistory 返回月历；锚点月份保存在会话中，nav=-1/1 前后翻月。
func (a *API) GetHistory(c *gin.Context) {
	session := sessions.Default(c)

	anchor := c.Query("anchor")
	if anchor == "" {
		if saved, ok := session.Get(historyAnchorKey).(string); ok && calendar.IsValidISO(saved) {
			anchor = saved
		} else {
			anchor = a.tracker.Today()
		}
	}
	if nav, err := strconv.Atoi(c.DefaultQuery("nav", "0")); err == nil && nav != 0 && calendar.IsValidISO(anchor) {
		// 超出可表示范围时停留在当前月份
		if shifted := calendar.ShiftMonth(anchor, nav); shifted != "" {
			anchor = shifted
		}
	}

	view, err := a.tracker.CalendarMonth(anchor, requestLanguage(c))
	if err != nil {
		a.respondServiceError(c, err, "获取月历失败")
		return
	}

	session.Set(historyAnchorKey, view.Anchor)
	if err := session.Save(); err != nil {
		a.log.Warn("save history anchor failed", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"month": view})
}

// GetStats 返回累计统计
func (a *API) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stats": a.tracker.Stats()})
}

// GetWeekStats 返回一周内每个习惯的完成次数
func (a *API) GetWeekStats(c *gin.Context) {
	start, summary, err := a.tracker.WeekSummary(c.Query("start"))
	if err != nil {
		a.respondServiceError(c, err, "获取周统计失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"start": start, "summary": summary})
}

// RandomQuote 随机返回一条语录
func (a *API) RandomQuote(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"quote": a.quotes.Random()})
}
