package service

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	journalEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	journalSanitizer = bluemonday.UGCPolicy()
)

// RenderJournal 将日记的 Markdown 转换为经过清洗的 HTML。
func RenderJournal(text string) (template.HTML, error) {
	if text == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := journalEngine.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render journal: %w", err)
	}
	return template.HTML(journalSanitizer.SanitizeBytes(buf.Bytes())), nil
}
