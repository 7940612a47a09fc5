package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVStore 基于 state_entries 表实现同步的 get/set/has。
type KVStore struct {
	db *gorm.DB
}

// NewKVStore 构造 KVStore
func NewKVStore(gdb *gorm.DB) *KVStore {
	return &KVStore{db: gdb}
}

// Get 读取键对应的值，键不存在时 ok 为 false。
func (s *KVStore) Get(key string) (string, bool, error) {
	var entry StateEntry
	if err := s.db.Where("key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get state entry %s: %w", key, err)
	}
	return entry.Value, true, nil
}

// Set 以 upsert 方式整体覆盖键值。
func (s *KVStore) Set(key, value string) error {
	entry := StateEntry{Key: key, Value: value}
	if err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&entry).Error; err != nil {
		return fmt.Errorf("upsert state entry %s: %w", key, err)
	}
	return nil
}

// Has 判断键是否存在。
func (s *KVStore) Has(key string) (bool, error) {
	var count int64
	if err := s.db.Model(&StateEntry{}).Where("key = ?", key).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count state entry %s: %w", key, err)
	}
	return count > 0, nil
}
