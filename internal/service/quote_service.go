package service

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"

	"github.com/selftrack/internal/logger"
	"github.com/tidwall/gjson"
)

// FallbackQuote 在语录文件缺失或无效时使用
var FallbackQuote = Quote{Text: "Small daily wins compound into greatness."}

// Quote 是一条语录
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author,omitempty"`
}

// QuoteService 读取语录文件并缓存结果，首次调用时加载。
type QuoteService struct {
	path string
	log  *logger.Logger

	once   sync.Once
	quotes []Quote
	pick   func(n int) int
}

// NewQuoteService 构造 QuoteService
func NewQuoteService(path string, log *logger.Logger) *QuoteService {
	if log == nil {
		log = logger.NewNop()
	}
	return &QuoteService{path: path, log: log, pick: rand.Intn}
}

// All 返回全部语录，至少包含一条。
func (s *QuoteService) All() []Quote {
	s.once.Do(func() {
		quotes, err := loadQuotes(s.path)
		if err != nil {
			s.log.Warn("quotes unavailable, using fallback", "path", s.path, "error", err)
		}
		if len(quotes) == 0 {
			quotes = []Quote{FallbackQuote}
		}
		s.quotes = quotes
	})
	return s.quotes
}

// Random 随机返回一条语录
func (s *QuoteService) Random() Quote {
	quotes := s.All()
	return quotes[s.pick(len(quotes))]
}

func loadQuotes(path string) ([]Quote, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("quotes path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read quotes: %w", err)
	}
	return parseQuotes(raw)
}

// parseQuotes 接受字符串或 {text, author} 对象组成的数组，空文本会被跳过。
func parseQuotes(raw []byte) ([]Quote, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("quotes file is not valid JSON")
	}
	root := gjson.ParseBytes(raw)
	if !root.IsArray() {
		return nil, errors.New("quotes file must be a JSON array")
	}

	var quotes []Quote
	root.ForEach(func(_, item gjson.Result) bool {
		var q Quote
		switch {
		case item.Type == gjson.String:
			q.Text = item.String()
		case item.IsObject():
			q.Text = item.Get("text").String()
			q.Author = strings.TrimSpace(item.Get("author").String())
		}
		q.Text = strings.TrimSpace(q.Text)
		if q.Text != "" {
			quotes = append(quotes, q)
		}
		return true
	})
	return quotes, nil
}
