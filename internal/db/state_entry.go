package db

import "gorm.io/gorm"

// StateEntry 以键值对形式保存状态的一个顶层字段，值为 JSON 文本。
type StateEntry struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (StateEntry) TableName() string {
	return "state_entries"
}
