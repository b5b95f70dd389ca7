package enums

import "fmt"

// ListingStatus tracks where a shoe sits in the marketplace listing flow.
type ListingStatus string

const (
	ListingStatusNotListed ListingStatus = "Not Listed"
	ListingStatusListed    ListingStatus = "Listed"
	ListingStatusSold      ListingStatus = "Sold"
)

var validListingStatuses = []ListingStatus{
	ListingStatusNotListed,
	ListingStatusListed,
	ListingStatusSold,
}

var listingTransitions = map[ListingStatus]map[ListingStatus]bool{
	ListingStatusNotListed: {ListingStatusListed: true},
	ListingStatusListed:    {ListingStatusSold: true},
	ListingStatusSold:      {},
}

// String implements fmt.Stringer.
func (s ListingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ListingStatus.
func (s ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransition reports whether next is reachable from s in one step.
func (s ListingStatus) CanTransition(next ListingStatus) bool {
	return listingTransitions[s][next]
}

// ParseListingStatus converts raw input into a ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}
