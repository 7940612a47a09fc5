package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/selftrack/internal/service"
	"github.com/selftrack/internal/snapshot"
	"github.com/selftrack/internal/store"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// respondMutation 输出写操作结果；仅持久化失败时仍返回 200，并带上 persisted=false。
func (a *API) respondMutation(c *gin.Context, err error, payload gin.H, fallback string) {
	if err == nil {
		payload["persisted"] = true
		c.JSON(http.StatusOK, payload)
		return
	}
	if store.IsStorageWriteError(err) {
		a.log.Warn("change kept in memory only", "path", c.FullPath(), "error", err)
		payload["persisted"] = false
		payload["warning"] = "数据已更新，但未能保存到本地存储"
		c.JSON(http.StatusOK, payload)
		return
	}
	a.respondServiceError(c, err, fallback)
}

// respondServiceError 将服务层错误映射为状态码与提示文案。
func (a *API) respondServiceError(c *gin.Context, err error, fallback string) {
	var malformed *snapshot.MalformedInputError
	var schema *snapshot.SchemaValidationError

	switch {
	case errors.Is(err, service.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, "习惯不存在")
	case errors.Is(err, service.ErrHabitNameRequired):
		respondError(c, http.StatusBadRequest, "习惯名称不能为空")
	case errors.Is(err, service.ErrInvalidDate):
		respondError(c, http.StatusBadRequest, "日期格式应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidMood):
		respondError(c, http.StatusBadRequest, "心情与精力需在 1 到 5 之间")
	case errors.Is(err, service.ErrInvalidUserPrefs):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &malformed):
		respondError(c, http.StatusBadRequest, "无法解析导入内容："+malformed.Reason)
	case errors.As(err, &schema):
		respondError(c, http.StatusBadRequest, "导入失败："+schema.Reason)
	default:
		a.log.Error(fallback, "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
