package model

import (
	"time"

	"github.com/google/uuid"
)

// Hard deletes only; see Equipment.
type WorkOrder struct {
	Id          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EquipmentId uuid.UUID  `gorm:"type:uuid;not null;index"`
	Description string     `gorm:"type:text"`
	Priority    string     `gorm:"type:varchar(20);index"` // low, medium, high, emergency
	Status      string     `gorm:"type:varchar(50);index"` // open, in_progress, closed, cancelled
	OpenedAt    time.Time  `gorm:"not null;index"`
	ClosedAt    *time.Time ``
	Cost        float64    `gorm:"type:numeric(12,2)"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

func (WorkOrder) TableName() string {
	return "work_orders"
}
