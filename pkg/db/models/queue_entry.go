package models

import (
	"gorm.io/datatypes"

	"github.com/angelmondragon/kickstock-backend/pkg/enums"
)

// QueueEntry is a raw intake submission waiting to become a shoe.
type QueueEntry struct {
	Base
	UserID  uint                        `gorm:"column:user_id;not null;index"`
	RawText string                      `gorm:"column:raw_text;type:text;not null"`
	Photos  datatypes.JSONSlice[string] `gorm:"column:photos"`
	Status  enums.ObjectState           `gorm:"column:status;type:varchar(32);not null;default:'Pending';index"`
	ShoeID  *uint                       `gorm:"column:shoe_id"`
	Images  []Image                     `gorm:"foreignKey:QueueID;constraint:OnDelete:CASCADE"`
}

func (QueueEntry) TableName() string { return "queue" }
