package models

// Audit is an immutable trail entry for a shoe.
type Audit struct {
	Base
	ShoeID     uint   `gorm:"column:shoe_id;not null;index"`
	ActionType string `gorm:"column:action_type;type:varchar(64);not null"`
	Actor      string `gorm:"column:actor;type:varchar(255);not null"`
}

func (Audit) TableName() string { return "audits" }
