package models

import "github.com/angelmondragon/kickstock-backend/pkg/enums"

// Transaction is one append-only row per listing status change.
type Transaction struct {
	Base
	ShoeID        uint                `gorm:"column:shoe_id;not null;index"`
	ListingID     *string             `gorm:"column:listing_id;type:varchar(50)"`
	ListingStatus enums.ListingStatus `gorm:"column:listing_status;type:varchar(32);not null;default:'Not Listed'"`
}

func (Transaction) TableName() string { return "transactions" }
