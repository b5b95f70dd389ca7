package models

import (
	"time"

	"gorm.io/datatypes"
)

// Base holds the columns every table shares.
type Base struct {
	ID         uint              `gorm:"column:id;primaryKey;autoIncrement"`
	Active     bool              `gorm:"column:active;not null;default:true"`
	Properties datatypes.JSONMap `gorm:"column:properties;not null;default:'{}'"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// NewBase returns an active base with an empty property bag. A nil bag is
// replaced so the column never stores JSON null.
func NewBase(properties map[string]any) Base {
	if properties == nil {
		properties = map[string]any{}
	}
	return Base{Active: true, Properties: datatypes.JSONMap(properties)}
}

// All lists every persisted model, in dependency order.
func All() []any {
	return []any{
		&User{},
		&QueueEntry{},
		&Image{},
		&Shoe{},
		&Transaction{},
		&Audit{},
	}
}
