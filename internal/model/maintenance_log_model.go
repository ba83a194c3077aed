package model

import (
	"time"

	"github.com/google/uuid"
)

// Hard deletes only; see Equipment.
type MaintenanceLog struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkOrderId uuid.UUID `gorm:"type:uuid;not null;index"`
	Technician  string    `gorm:"type:varchar(255);index"`
	Action      string    `gorm:"type:varchar(100)"` // inspection, repair, replacement, calibration
	DurationMin int       `gorm:"default:0"`
	Notes       string    `gorm:"type:text"`
	PerformedAt time.Time `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (MaintenanceLog) TableName() string {
	return "maintenance_logs"
}
