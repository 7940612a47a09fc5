package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/selftrack/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 配置会话中间件，仅用于保存历史页的月份锚点
	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 30 * 24 * 60 * 60, HttpOnly: true})
	r.Use(sessions.Sessions("selftrack_session", store))
	r.Use(api.LocaleMiddleware())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/state", api.GetState)
		apiGroup.POST("/session/open", api.OpenSession)
		apiGroup.PATCH("/user", api.UpdateUser)
		apiGroup.POST("/welcome/dismiss", api.DismissWelcome)

		apiGroup.POST("/habits", api.CreateHabit)
		apiGroup.PUT("/habits/:id", api.UpdateHabit)
		apiGroup.DELETE("/habits/:id", api.DeleteHabit)

		apiGroup.GET("/today", api.GetToday)
		apiGroup.POST("/today/habits/:id", api.ToggleToday)

		apiGroup.PUT("/days/:date/habits/:id", api.ToggleForDate)
		apiGroup.GET("/days/:date/journal", api.GetJournal)
		apiGroup.PUT("/days/:date/journal", api.SaveJournal)
		apiGroup.PUT("/days/:date/mood", api.SaveMood)

		apiGroup.GET("/history", api.GetHistory)
		apiGroup.GET("/stats", api.GetStats)
		apiGroup.GET("/stats/week", api.GetWeekStats)
		apiGroup.GET("/quotes/random", api.RandomQuote)

		apiGroup.GET("/export/file", api.ExportFile)
		apiGroup.GET("/export/key", api.ExportKey)
		apiGroup.POST("/import", api.Import)
	}

	return r
}
