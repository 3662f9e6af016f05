package booking

import "github.com/tidewater/service-booking/internal/domain"

// BoatCategory is the class of boat being booked.
type BoatCategory string

const (
	CategorySpeedBoat BoatCategory = "speed_boat"
	CategoryPartyBoat BoatCategory = "party_boat"
)

// IsValid returns true if the category is recognized.
func (c BoatCategory) IsValid() bool {
	switch c {
	case CategorySpeedBoat, CategoryPartyBoat:
		return true
	}
	return false
}

// String returns the string representation of the category.
func (c BoatCategory) String() string { return string(c) }

// ParseBoatCategory converts a string to a BoatCategory, returning an error
// if invalid.
func ParseBoatCategory(s string) (BoatCategory, error) {
	c := BoatCategory(s)
	if !c.IsValid() {
		return "", domain.Newf(domain.CodeValidation, "invalid boat category: %s", s)
	}
	return c, nil
}
