package locale

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	LanguageChinese = "zh"
	LanguageEnglish = "en"
)

var matcher = language.NewMatcher([]language.Tag{language.English, language.Chinese})

var chineseWeekdays = []string{"日", "一", "二", "三", "四", "五", "六"}

func NormalizeLanguage(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "zh") || trimmed == "cn" {
		return LanguageChinese
	}
	if strings.HasPrefix(trimmed, "en") {
		return LanguageEnglish
	}
	return ""
}

// LanguageFromAcceptLanguage 按 Accept-Language 的权重匹配支持的语言，无法匹配时返回英文。
func LanguageFromAcceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(strings.TrimSpace(header))
	if err != nil || len(tags) == 0 {
		return LanguageEnglish
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return LanguageEnglish
	}
	if index == 1 {
		return LanguageChinese
	}
	return LanguageEnglish
}

// MonthLabel 生成 “Month Year” 形式的标题，中文为 “2024年1月”。
func MonthLabel(year int, month time.Month, lang string) string {
	if NormalizeLanguage(lang) == LanguageChinese {
		return fmt.Sprintf("%d年%d月", year, int(month))
	}
	return fmt.Sprintf("%s %d", month.String(), year)
}

// WeekdayNames 返回从 startOfWeek 开始的七个星期简称。
func WeekdayNames(startOfWeek int, lang string) []string {
	names := make([]string, 7)
	zh := NormalizeLanguage(lang) == LanguageChinese
	for i := 0; i < 7; i++ {
		day := (startOfWeek + i) % 7
		if day < 0 {
			day += 7
		}
		if zh {
			names[i] = chineseWeekdays[day]
			continue
		}
		names[i] = time.Weekday(day).String()[:3]
	}
	return names
}
