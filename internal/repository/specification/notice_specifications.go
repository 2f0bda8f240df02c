package specification

import "gorm.io/gorm"

// ByCaseRecordID matches the deterministic "CD<userId>" key.
type ByCaseRecordID struct {
	ID string
}

func (s ByCaseRecordID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// Latest orders newest first and keeps one row.
type Latest struct{}

func (s Latest) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Limit(1)
}
