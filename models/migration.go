package models

import (
	"gorm.io/gorm"
)

func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&Campaign{}, &CampaignMetric{}, &Lead{},
		&Event{},
		&Profile{}, &UserRole{},
	)
}
