package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/selftrack/internal/logger"
	"github.com/selftrack/internal/model"
	"github.com/selftrack/internal/snapshot"
	"github.com/selftrack/internal/store"
)

// TransferService 负责导出快照与整体替换式导入。
type TransferService struct {
	store *store.Store
	log   *logger.Logger
	now   func() time.Time
}

// ImportResult 描述一次导入的结果，Repaired 为导入时丢弃的悬空打卡项。
type ImportResult struct {
	State    model.State                              `json:"state"`
	Repaired []snapshot.ReferentialIntegrityViolation `json:"repaired"`
}

// NewTransferService 构造 TransferService
func NewTransferService(st *store.Store, log *logger.Logger, now func() time.Time) *TransferService {
	if log == nil {
		log = logger.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &TransferService{store: st, log: log, now: now}
}

// ExportSnapshot 基于当前状态生成快照
func (s *TransferService) ExportSnapshot() model.Snapshot {
	return snapshot.Build(s.store.Load(), s.now())
}

// ExportToFile 将快照以缩进 JSON 写入 w，返回建议的文件名。
func (s *TransferService) ExportToFile(w io.Writer) (string, error) {
	snap := s.ExportSnapshot()
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export file: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return "", fmt.Errorf("export file: %w", err)
	}
	return snapshot.FileName(s.now()), nil
}

// ExportToDir 在 dir 下生成导出文件并返回完整路径。
func (s *TransferService) ExportToDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	var buf bytes.Buffer
	name, err := s.ExportToFile(&buf)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	s.log.Info("snapshot exported", "path", path)
	return path, nil
}

// ExportToKey 返回可复制粘贴的 save key
func (s *TransferService) ExportToKey() (string, error) {
	key, err := snapshot.Encode(s.ExportSnapshot())
	if err != nil {
		return "", fmt.Errorf("export key: %w", err)
	}
	return key, nil
}

// ImportReplaceAll 接受导出文件内容或 save key，校验通过后整体替换当前状态。
// 任何校验错误都发生在第一次写入之前，此时存储保持原样。
func (s *TransferService) ImportReplaceAll(source []byte) (ImportResult, error) {
	snap, err := decodeSource(source)
	if err != nil {
		return ImportResult{}, err
	}

	snap, violations := snapshot.CheckIntegrity(snap)
	if len(violations) > 0 {
		s.log.Warn("import dropped dangling check-ins", "count", len(violations))
	}

	// 五个字段原样写入，包括快照自身的版本号；旧版本在下一次 Load 时迁移
	imported := snap.State()
	err = s.store.Update(func(model.State) (store.Patch, error) {
		return store.FullPatch(imported), nil
	})
	result := ImportResult{State: s.store.Load(), Repaired: violations}
	if err != nil {
		return result, fmt.Errorf("import snapshot: %w", err)
	}
	s.log.Info("snapshot imported", "habits", len(imported.Habits), "days", len(imported.Days), "from_version", snap.Version)
	return result, nil
}

// decodeSource 以 '{' 开头的内容按文件解析，否则按 save key 解析。
func decodeSource(source []byte) (model.Snapshot, error) {
	trimmed := bytes.TrimSpace(source)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return snapshot.Parse(trimmed)
	}
	return snapshot.Decode(string(trimmed))
}
