package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Notebook struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title            string         `gorm:"type:varchar(255);not null"`
	Cells            datatypes.JSON `gorm:"type:jsonb;not null"`
	Labels           datatypes.JSON `gorm:"type:jsonb"`
	TimeRangeMinutes *int64
	TimeRangeFrom    *time.Time
	TimeRangeTo      *time.Time
	UserId           uuid.UUID      `gorm:"type:uuid;not null;index"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (Notebook) TableName() string {
	return "notebooks"
}
