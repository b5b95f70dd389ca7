package enums

import "fmt"

// ShippingStatus follows a paid shoe from the shelf to the buyer.
type ShippingStatus string

const (
	ShippingStatusNotShipped ShippingStatus = "Not Shipped"
	ShippingStatusShipped    ShippingStatus = "Shipped"
	ShippingStatusDelivered  ShippingStatus = "Delivered"
)

var validShippingStatuses = []ShippingStatus{
	ShippingStatusNotShipped,
	ShippingStatusShipped,
	ShippingStatusDelivered,
}

var shippingTransitions = map[ShippingStatus]map[ShippingStatus]bool{
	ShippingStatusNotShipped: {ShippingStatusShipped: true},
	ShippingStatusShipped:    {ShippingStatusDelivered: true},
	ShippingStatusDelivered:  {},
}

// String implements fmt.Stringer.
func (s ShippingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShippingStatus.
func (s ShippingStatus) IsValid() bool {
	for _, candidate := range validShippingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransition reports whether next is reachable from s in one step.
func (s ShippingStatus) CanTransition(next ShippingStatus) bool {
	return shippingTransitions[s][next]
}

// ParseShippingStatus converts raw input into a ShippingStatus.
func ParseShippingStatus(value string) (ShippingStatus, error) {
	for _, candidate := range validShippingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipping status %q", value)
}
