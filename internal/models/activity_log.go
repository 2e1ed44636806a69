package models

import "time"

type ActivityLog struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time

	UserID uint
	User   User

	Entity   string `gorm:"size:50;not null"` // "cycle", "audit", "auditor"
	EntityID uint
	Action   string `gorm:"size:50;not null"` // "create", "complete", "move" и т.п.
	Details  string `gorm:"type:text"`
}
