package shoes

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/kickstock-backend/pkg/db/models"
	"github.com/angelmondragon/kickstock-backend/pkg/enums"
)

const (
	defaultWidth     = "M"
	defaultCondition = "Brand New, in Box"
)

// ShoeDTO is the transport shape of a catalog record.
type ShoeDTO struct {
	ID         uint           `json:"id"`
	UserID     uint           `json:"user_id"`
	Active     bool           `json:"active"`
	Properties map[string]any `json:"properties"`

	Brand    string           `json:"brand"`
	Model    string           `json:"model"`
	Gender   *enums.Gender    `json:"gender,omitempty"`
	Size     *decimal.Decimal `json:"size,omitempty"`
	Width    string           `json:"width"`
	Color    string           `json:"color"`
	ShoeType string           `json:"shoe_type"`
	Style    string           `json:"style"`
	Category *string          `json:"category,omitempty"`

	Material        *string  `json:"material,omitempty"`
	HeelType        *string  `json:"heel_type,omitempty"`
	Occasion        *string  `json:"occasion,omitempty"`
	Condition       string   `json:"condition"`
	SpecialFeatures []string `json:"special_features"`

	UPC                     *string          `json:"upc,omitempty"`
	MSRP                    *decimal.Decimal `json:"msrp,omitempty"`
	AverageEbaySellingPrice *decimal.Decimal `json:"average_ebay_selling_price,omitempty"`

	Description      *string             `json:"description,omitempty"`
	Photos           []string            `json:"photos"`
	EbayListingID    *string             `json:"ebay_listing_id,omitempty"`
	EbayListingURL   *string             `json:"ebay_listing_url,omitempty"`
	ListingStatus    enums.ListingStatus `json:"listing_status"`
	ListingStartDate *time.Time          `json:"listing_start_date,omitempty"`
	ListingEndDate   *time.Time          `json:"listing_end_date,omitempty"`

	SalePrice              *decimal.Decimal     `json:"sale_price,omitempty"`
	BuyerUsername          *string              `json:"buyer_username,omitempty"`
	PaymentStatus          enums.PaymentStatus  `json:"payment_status"`
	ShippingStatus         enums.ShippingStatus `json:"shipping_status"`
	ShippingTrackingNumber *string              `json:"shipping_tracking_number,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateShoeInput carries the attributes accepted when cataloguing a shoe.
// Identity fields may be left blank for a draft; listing requires them.
type CreateShoeInput struct {
	UserID uint `json:"user_id" validate:"required"`

	Brand    string           `json:"brand" validate:"max=255"`
	Model    string           `json:"model" validate:"max=255"`
	Gender   *enums.Gender    `json:"gender"`
	Size     *decimal.Decimal `json:"size"`
	Width    string           `json:"width" validate:"max=50"`
	Color    string           `json:"color" validate:"max=255"`
	ShoeType string           `json:"shoe_type" validate:"max=100"`
	Style    string           `json:"style" validate:"max=100"`
	Category *string          `json:"category" validate:"omitempty,max=255"`

	Material        *string  `json:"material" validate:"omitempty,max=255"`
	HeelType        *string  `json:"heel_type" validate:"omitempty,max=100"`
	Occasion        *string  `json:"occasion" validate:"omitempty,max=100"`
	Condition       string   `json:"condition" validate:"max=50"`
	SpecialFeatures []string `json:"special_features"`

	UPC                     *string          `json:"upc" validate:"omitempty,max=20"`
	MSRP                    *decimal.Decimal `json:"msrp"`
	AverageEbaySellingPrice *decimal.Decimal `json:"average_ebay_selling_price"`

	Description *string        `json:"description"`
	Photos      []string       `json:"photos"`
	Properties  map[string]any `json:"properties"`

	// Actor is recorded on the "created" audit entry.
	Actor string `json:"-"`
}

// UpdateShoeInput patches descriptive fields. Nil fields are left untouched;
// status fields only change through transitions.
type UpdateShoeInput struct {
	Brand    *string          `json:"brand" validate:"omitempty,max=255"`
	Model    *string          `json:"model" validate:"omitempty,max=255"`
	Gender   *enums.Gender    `json:"gender"`
	Size     *decimal.Decimal `json:"size"`
	Width    *string          `json:"width" validate:"omitempty,max=50"`
	Color    *string          `json:"color" validate:"omitempty,max=255"`
	ShoeType *string          `json:"shoe_type" validate:"omitempty,max=100"`
	Style    *string          `json:"style" validate:"omitempty,max=100"`
	Category *string          `json:"category" validate:"omitempty,max=255"`

	Material        *string   `json:"material" validate:"omitempty,max=255"`
	HeelType        *string   `json:"heel_type" validate:"omitempty,max=100"`
	Occasion        *string   `json:"occasion" validate:"omitempty,max=100"`
	Condition       *string   `json:"condition" validate:"omitempty,max=50"`
	SpecialFeatures *[]string `json:"special_features"`

	UPC                     *string          `json:"upc" validate:"omitempty,max=20"`
	MSRP                    *decimal.Decimal `json:"msrp"`
	AverageEbaySellingPrice *decimal.Decimal `json:"average_ebay_selling_price"`

	Description *string        `json:"description"`
	Photos      *[]string      `json:"photos"`
	Properties  map[string]any `json:"properties"`

	Actor string `json:"-"`
}

// ListingContext carries the data a listing transition may need.
type ListingContext struct {
	Actor         string           `json:"-"`
	ListingID     *string          `json:"listing_id" validate:"omitempty,max=50"`
	ListingURL    *string          `json:"listing_url" validate:"omitempty,max=255"`
	BuyerUsername *string          `json:"buyer_username" validate:"omitempty,max=255"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
}

// ShippingContext carries the data a shipping transition may need.
type ShippingContext struct {
	Actor          string  `json:"-"`
	TrackingNumber *string `json:"tracking_number" validate:"omitempty,max=100"`
}

// ListParams filters the catalog listing.
type ListParams struct {
	UserID        uint
	ListingStatus *enums.ListingStatus
	Brand         string
	Limit         int
	Cursor        string
}

// ListResult wraps one page of shoes.
type ListResult struct {
	Items      []ShoeDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// TransactionDTO is one row of a shoe's listing history.
type TransactionDTO struct {
	ID            uint                `json:"id"`
	ShoeID        uint                `json:"shoe_id"`
	ListingID     *string             `json:"listing_id,omitempty"`
	ListingStatus enums.ListingStatus `json:"listing_status"`
	CreatedAt     time.Time           `json:"created_at"`
}

// FromModel maps a shoe row into its DTO.
func FromModel(s *models.Shoe) *ShoeDTO {
	if s == nil {
		return nil
	}
	return &ShoeDTO{
		ID:                      s.ID,
		UserID:                  s.UserID,
		Active:                  s.Active,
		Properties:              s.Properties,
		Brand:                   s.Brand,
		Model:                   s.Model,
		Gender:                  s.Gender,
		Size:                    s.Size,
		Width:                   s.Width,
		Color:                   s.Color,
		ShoeType:                s.ShoeType,
		Style:                   s.Style,
		Category:                s.Category,
		Material:                s.Material,
		HeelType:                s.HeelType,
		Occasion:                s.Occasion,
		Condition:               s.Condition,
		SpecialFeatures:         nonNil(s.SpecialFeatures),
		UPC:                     s.UPC,
		MSRP:                    s.MSRP,
		AverageEbaySellingPrice: s.AverageEbaySellingPrice,
		Description:             s.Description,
		Photos:                  nonNil(s.Photos),
		EbayListingID:           s.EbayListingID,
		EbayListingURL:          s.EbayListingURL,
		ListingStatus:           s.ListingStatus,
		ListingStartDate:        s.ListingStartDate,
		ListingEndDate:          s.ListingEndDate,
		SalePrice:               s.SalePrice,
		BuyerUsername:           s.BuyerUsername,
		PaymentStatus:           s.PaymentStatus,
		ShippingStatus:          s.ShippingStatus,
		ShippingTrackingNumber:  s.ShippingTrackingNumber,
		CreatedAt:               s.CreatedAt,
		UpdatedAt:               s.UpdatedAt,
	}
}

func transactionFromModel(t models.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:            t.ID,
		ShoeID:        t.ShoeID,
		ListingID:     t.ListingID,
		ListingStatus: t.ListingStatus,
		CreatedAt:     t.CreatedAt,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
