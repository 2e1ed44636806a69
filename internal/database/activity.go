package database

import (
	"certcycle/internal/models"

	"gorm.io/gorm"
)

// helper для записи в журнал действий; принимает tx, чтобы запись
// попадала в ту же транзакцию, что и основное изменение
func LogActivity(db *gorm.DB, userID uint, entity string, entityID uint, action, details string) {
	if db == nil {
		return
	}
	record := models.ActivityLog{
		UserID:   userID,
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	_ = db.Create(&record).Error
}
