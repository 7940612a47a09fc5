package store

import (
	"fmt"
	"strings"
)

// KeyFailure 记录单个键的写入失败
type KeyFailure struct {
	Key string
	Err error
}

// StorageWriteError 表示后端拒绝了写入（例如容量不足）。
// 这是非致命错误：调用方持有的内存状态依然可用。
type StorageWriteError struct {
	Failures []KeyFailure
}

func newStorageWriteError(failures []KeyFailure) *StorageWriteError {
	if len(failures) == 0 {
		return nil
	}
	return &StorageWriteError{Failures: failures}
}

func (e *StorageWriteError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Key, f.Err))
	}
	return "storage write failed: " + strings.Join(parts, "; ")
}

// Keys 返回写入失败的键
func (e *StorageWriteError) Keys() []string {
	keys := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		keys = append(keys, f.Key)
	}
	return keys
}

// Unwrap 返回第一个底层错误
func (e *StorageWriteError) Unwrap() error {
	if len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[0].Err
}
