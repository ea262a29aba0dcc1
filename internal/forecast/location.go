package forecast

import (
	"errors"
	"fmt"
)

// Location describes a ski area tracked by the service. Locations are
// immutable configuration, keyed by a stable ID rather than the display name
// so a renamed area cannot silently orphan its forecast data.
type Location struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Base   float64 `json:"base"`   // base elevation in feet
	Summit float64 `json:"summit"` // summit elevation in feet
	Href   string  `json:"href"`   // reference link shown in the table header
}

// Validate reports configuration defects in a location definition.
func (l Location) Validate() error {
	if l.ID == "" {
		return errors.New("location id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("location %q: name is required", l.ID)
	}
	if l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("location %q: latitude %.4f out of range", l.ID, l.Lat)
	}
	if l.Lon < -180 || l.Lon > 180 {
		return fmt.Errorf("location %q: longitude %.4f out of range", l.ID, l.Lon)
	}
	if l.Summit <= l.Base {
		return fmt.Errorf("location %q: summit elevation %.0f not above base %.0f", l.ID, l.Summit, l.Base)
	}
	return nil
}

// BlobName returns the blob store key for the location's raw grid forecast.
func (l Location) BlobName() string {
	return l.ID + "_gridData.json"
}
