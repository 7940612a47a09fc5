package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/selftrack/internal/locale"
)

const (
	localeContextKey     = "__request_locale"
	languageCookieName   = "st_lang"
	languageCookieMaxAge = 365 * 24 * 60 * 60
)

// LocaleMiddleware resolves request language for month labels and weekday names.
func (a *API) LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := requestLanguage(c)
		c.Header("Content-Language", lang)
		c.Header("Vary", "Accept-Language, Cookie")
		c.Next()
	}
}

func requestLanguage(c *gin.Context) string {
	if cached, exists := c.Get(localeContextKey); exists {
		if lang, ok := cached.(string); ok {
			return lang
		}
	}
	lang, persist := resolveLanguage(c)
	if persist {
		persistLanguage(c, lang)
	}
	c.Set(localeContextKey, lang)
	return lang
}

func resolveLanguage(c *gin.Context) (string, bool) {
	if override := locale.NormalizeLanguage(c.Query("lang")); override != "" {
		return override, true
	}
	if cookie := readLanguageCookie(c); cookie != "" {
		return cookie, false
	}
	return locale.LanguageFromAcceptLanguage(c.GetHeader("Accept-Language")), false
}

func readLanguageCookie(c *gin.Context) string {
	value, err := c.Cookie(languageCookieName)
	if err != nil {
		return ""
	}
	return locale.NormalizeLanguage(value)
}

func persistLanguage(c *gin.Context, language string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     languageCookieName,
		Value:    language,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   languageCookieMaxAge,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		SameSite: http.SameSiteLaxMode,
	})
}
