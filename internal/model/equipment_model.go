package model

import (
	"time"

	"github.com/google/uuid"
)

// Raw analytics queries hit this table directly, so rows are removed
// with hard deletes rather than a deleted_at marker the generated SQL
// would have to filter on.
type Equipment struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code        string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Type        string    `gorm:"type:varchar(100);index"`
	Status      string    `gorm:"type:varchar(50);index"` // operational, maintenance, decommissioned
	Location    string    `gorm:"type:varchar(255)"`
	Criticality string    `gorm:"type:varchar(20)"` // low, medium, high
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Equipment) TableName() string {
	return "equipment"
}
