package shoes

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/kickstock-backend/pkg/validation"
)

func validateCreate(input CreateShoeInput) error {
	if input.UserID == 0 {
		return validation.Field("user_id", "is required")
	}
	if err := validation.Struct(input); err != nil {
		return err
	}
	return validateAttributes(input.Gender != nil && !input.Gender.IsValid(), input.Size, input.MSRP, input.AverageEbaySellingPrice)
}

func validateUpdate(input UpdateShoeInput) error {
	if err := validation.Struct(input); err != nil {
		return err
	}
	if input.Width != nil && *input.Width == "" {
		return validation.Field("width", "must not be blank")
	}
	return validateAttributes(input.Gender != nil && !input.Gender.IsValid(), input.Size, input.MSRP, input.AverageEbaySellingPrice)
}

// Column shapes: size is NUMERIC(5,2), money columns are NUMERIC(10,2).
var (
	sizeColumn  = numericColumn{precision: 5, scale: 2}
	moneyColumn = numericColumn{precision: 10, scale: 2}
)

type numericColumn struct {
	precision int32
	scale     int32
}

// fits reports whether v can be stored without overflow or rounding.
func (c numericColumn) fits(v decimal.Decimal) bool {
	if !v.Equal(v.Truncate(c.scale)) {
		return false
	}
	return v.Abs().LessThan(decimal.New(1, c.precision-c.scale))
}

func (c numericColumn) message() string {
	return fmt.Sprintf("must be below %s with at most %d decimal places",
		decimal.New(1, c.precision-c.scale).String(), c.scale)
}

func validateAttributes(badGender bool, size, msrp, avgPrice *decimal.Decimal) error {
	if badGender {
		return validation.Field("gender", "must be one of Male, Female, Unisex")
	}
	if size != nil && !size.IsPositive() {
		return validation.Field("size", "must be positive")
	}
	if err := checkColumn("size", size, sizeColumn); err != nil {
		return err
	}
	if err := checkMoney("msrp", msrp); err != nil {
		return err
	}
	return checkMoney("average_ebay_selling_price", avgPrice)
}

func checkMoney(field string, v *decimal.Decimal) error {
	if v != nil && v.IsNegative() {
		return validation.Field(field, "must not be negative")
	}
	return checkColumn(field, v, moneyColumn)
}

func checkColumn(field string, v *decimal.Decimal, col numericColumn) error {
	if v == nil || col.fits(*v) {
		return nil
	}
	return validation.Field(field, col.message())
}
