package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/selftrack/internal/logger"
	"github.com/selftrack/internal/model"
)

// 每个顶层字段独立存放在一个键下。
const (
	KeyVersion = "selftrack:version"
	KeyUser    = "selftrack:user"
	KeyHabits  = "selftrack:habits"
	KeyDays    = "selftrack:days"
	KeyMeta    = "selftrack:meta"
)

// Keys 按写入顺序列出全部键。
var Keys = []string{KeyVersion, KeyUser, KeyHabits, KeyDays, KeyMeta}

// Backend 是同步的键值存储，写入可能因容量等原因失败。
type Backend interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Has(key string) (bool, error)
}

// Patch 描述一次整体替换，非 nil 字段会覆盖对应键，不做深度合并。
type Patch struct {
	Version *string
	User    *model.UserPrefs
	Habits  *[]model.Habit
	Days    *model.Days
	Meta    *model.Meta
}

// FullPatch 构造覆盖全部五个字段的 Patch。
func FullPatch(state model.State) Patch {
	return Patch{
		Version: &state.Version,
		User:    &state.User,
		Habits:  &state.Habits,
		Days:    &state.Days,
		Meta:    &state.Meta,
	}
}

// Store 持有唯一的状态来源，所有读写都经过 Backend。
type Store struct {
	mu       sync.Mutex
	backend  Backend
	log      *logger.Logger
	now      func() time.Time
	timezone string
}

// Option 用于定制 Store
type Option func(*Store)

// WithLogger 设置日志输出
func WithLogger(log *logger.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock 替换时钟，主要用于测试。
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTimezone 设置首次启动时写入的默认时区。
func WithTimezone(name string) Option {
	return func(s *Store) {
		s.timezone = strings.TrimSpace(name)
	}
}

// New 构造 Store
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		log:     logger.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.timezone == "" {
		s.timezone = deviceTimezone()
	}
	return s
}

// Defaults 返回全新安装时的完整状态。
func (s *Store) Defaults() model.State {
	return model.State{
		Version: CurrentVersion,
		User:    s.defaultUser(),
		Habits:  []model.Habit{},
		Days:    model.Days{},
		Meta:    model.Meta{InstallDate: s.now().UnixMilli()},
	}
}

// Initialize 为缺失的键写入默认值，已有数据保持不变，可在每次启动时调用。
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	defaults := s.Defaults()
	values := map[string]any{
		KeyVersion: defaults.Version,
		KeyUser:    defaults.User,
		KeyHabits:  defaults.Habits,
		KeyDays:    defaults.Days,
		KeyMeta:    defaults.Meta,
	}

	var failures []KeyFailure
	for _, key := range Keys {
		has, err := s.backend.Has(key)
		if err != nil {
			failures = append(failures, KeyFailure{Key: key, Err: err})
			continue
		}
		if has {
			continue
		}
		if err := s.write(key, values[key]); err != nil {
			failures = append(failures, KeyFailure{Key: key, Err: err})
		}
	}
	if err := newStorageWriteError(failures); err != nil {
		return err
	}
	return nil
}

// Load 逐键读取状态；某个键缺失或损坏时仅该字段回退默认值，随后执行迁移。
func (s *Store) Load() model.State {
	defaults := s.Defaults()
	state := model.State{
		Version: legacyVersion,
		User:    defaults.User,
		Habits:  defaults.Habits,
		Days:    defaults.Days,
		Meta:    defaults.Meta,
	}

	readKey(s, KeyVersion, &state.Version)
	readKey(s, KeyUser, &state.User)
	readKey(s, KeyHabits, &state.Habits)
	readKey(s, KeyDays, &state.Days)
	readKey(s, KeyMeta, &state.Meta)

	state = Migrate(state)
	if state.User.Timezone == "" {
		state.User.Timezone = s.timezone
	}
	return state
}

// Patch 按字段整体写入，全部字段都会尝试；失败时返回 *StorageWriteError，
// 调用方手里的内存状态仍然有效。
func (s *Store) Patch(p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patch(p)
}

// Update 在同一把锁内完成 读取-构造-写入，fn 负责给出每个被修改字段的完整新值。
// fn 返回错误时不会写入任何字段。
func (s *Store) Update(fn func(state model.State) (Patch, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := fn(s.Load())
	if err != nil {
		return err
	}
	return s.patch(p)
}

func (s *Store) patch(p Patch) error {
	var failures []KeyFailure
	attempt := func(key string, value any) {
		if err := s.write(key, value); err != nil {
			failures = append(failures, KeyFailure{Key: key, Err: err})
		}
	}

	if p.Version != nil {
		attempt(KeyVersion, *p.Version)
	}
	if p.User != nil {
		attempt(KeyUser, *p.User)
	}
	if p.Habits != nil {
		habits := *p.Habits
		if habits == nil {
			habits = []model.Habit{}
		}
		attempt(KeyHabits, habits)
	}
	if p.Days != nil {
		days := *p.Days
		if days == nil {
			days = model.Days{}
		}
		attempt(KeyDays, days)
	}
	if p.Meta != nil {
		attempt(KeyMeta, *p.Meta)
	}

	if err := newStorageWriteError(failures); err != nil {
		s.log.Warn("state patch not fully persisted", "keys", err.Keys())
		return err
	}
	return nil
}

func readKey[T any](s *Store, key string, dst *T) {
	raw, ok, err := s.backend.Get(key)
	if err != nil {
		s.log.Warn("state read failed, using default", "key", key, "error", err)
		return
	}
	// 字面量 null 视同缺失
	if trimmed := strings.TrimSpace(raw); !ok || trimmed == "" || trimmed == "null" {
		return
	}

	// 解码到新变量，失败时不会留下半解码的数据
	var decoded T
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		s.log.Warn("state value corrupt, using default", "key", key, "error", err)
		return
	}
	*dst = decoded
}

func (s *Store) write(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Set(key, string(raw)); err != nil {
		return err
	}
	return nil
}

func (s *Store) defaultUser() model.UserPrefs {
	return model.UserPrefs{
		Timezone:    s.timezone,
		Theme:       model.ThemeAuto,
		StartOfWeek: 0,
	}
}

func deviceTimezone() string {
	name := time.Now().Location().String()
	if name == "" || name == "Local" {
		return "UTC"
	}
	return name
}

// IsStorageWriteError 判断错误是否只是持久化失败
func IsStorageWriteError(err error) bool {
	var target *StorageWriteError
	return errors.As(err, &target)
}
