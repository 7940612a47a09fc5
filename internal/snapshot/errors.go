package snapshot

import (
	"fmt"
)

// MalformedInputError 表示导入内容不是合法的 JSON 或 base64。
type MalformedInputError struct {
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed input: %s: %v", e.Reason, e.Err)
	}
	return "malformed input: " + e.Reason
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// SchemaValidationError 表示内容可解析但不符合快照结构，Reason 可直接展示给用户。
type SchemaValidationError struct {
	Reason string
}

func (e *SchemaValidationError) Error() string {
	return "invalid snapshot: " + e.Reason
}

// ReferentialIntegrityViolation 表示某天引用了快照中不存在的习惯，
// 导入时会丢弃该条目而不是拒绝整个快照。
type ReferentialIntegrityViolation struct {
	Date    string `json:"date"`
	HabitID string `json:"habit_id"`
}

func (v ReferentialIntegrityViolation) Error() string {
	return fmt.Sprintf("day %s references unknown habit %s", v.Date, v.HabitID)
}

func invalid(reason string) error {
	return &SchemaValidationError{Reason: reason}
}
