package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/angelmondragon/kickstock-backend/pkg/enums"
)

// Shoe is the catalog record. The three status columns are only written by
// the transition operations.
type Shoe struct {
	Base
	UserID uint `gorm:"column:user_id;not null;index"`

	Brand    string           `gorm:"column:brand;type:varchar(255);not null;default:'';index"`
	Model    string           `gorm:"column:model;type:varchar(255);not null;default:'';index"`
	Gender   *enums.Gender    `gorm:"column:gender;type:varchar(16);index"`
	Size     *decimal.Decimal `gorm:"column:size;type:numeric(5,2);index"`
	Width    string           `gorm:"column:width;type:varchar(50);not null;default:'M'"`
	Color    string           `gorm:"column:color;type:varchar(255);not null;default:''"`
	ShoeType string           `gorm:"column:shoe_type;type:varchar(100);not null;default:''"`
	Style    string           `gorm:"column:style;type:varchar(100);not null;default:''"`
	Category *string          `gorm:"column:category;type:varchar(255)"`

	Material        *string                     `gorm:"column:material;type:varchar(255)"`
	HeelType        *string                     `gorm:"column:heel_type;type:varchar(100)"`
	Occasion        *string                     `gorm:"column:occasion;type:varchar(100)"`
	Condition       string                      `gorm:"column:condition;type:varchar(50);not null;default:'Brand New, in Box'"`
	SpecialFeatures datatypes.JSONSlice[string] `gorm:"column:special_features"`

	UPC                     *string          `gorm:"column:upc;type:varchar(20);uniqueIndex:idx_shoes_upc"`
	MSRP                    *decimal.Decimal `gorm:"column:msrp;type:numeric(10,2)"`
	AverageEbaySellingPrice *decimal.Decimal `gorm:"column:average_ebay_selling_price;type:numeric(10,2)"`

	Description      *string                     `gorm:"column:description;type:text"`
	Photos           datatypes.JSONSlice[string] `gorm:"column:photos"`
	EbayListingID    *string                     `gorm:"column:ebay_listing_id;type:varchar(50);uniqueIndex:idx_shoes_ebay_listing_id"`
	EbayListingURL   *string                     `gorm:"column:ebay_listing_url;type:varchar(255)"`
	ListingStatus    enums.ListingStatus         `gorm:"column:listing_status;type:varchar(32);not null;default:'Not Listed';index"`
	ListingStartDate *time.Time                  `gorm:"column:listing_start_date"`
	ListingEndDate   *time.Time                  `gorm:"column:listing_end_date"`

	SalePrice              *decimal.Decimal     `gorm:"column:sale_price;type:numeric(10,2)"`
	BuyerUsername          *string              `gorm:"column:buyer_username;type:varchar(255)"`
	PaymentStatus          enums.PaymentStatus  `gorm:"column:payment_status;type:varchar(32);not null;default:'Pending'"`
	ShippingStatus         enums.ShippingStatus `gorm:"column:shipping_status;type:varchar(32);not null;default:'Not Shipped'"`
	ShippingTrackingNumber *string              `gorm:"column:shipping_tracking_number;type:varchar(100)"`
}

func (Shoe) TableName() string { return "shoes" }

// ReadyToList reports whether the identity fields required for listing are set.
func (s Shoe) ReadyToList() bool {
	return s.Brand != "" && s.Model != "" && s.Size != nil
}
