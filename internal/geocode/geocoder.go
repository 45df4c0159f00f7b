package geocode

import (
	"context"
	"fmt"
)

// Geocoder resolves coordinates to a human-readable address. Implementations
// are best-effort collaborators: callers must treat any error as soft and
// fall back to FallbackAddress.
type Geocoder interface {
	// ReverseGeocode converts coordinates to a formatted address.
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// FallbackAddress formats raw coordinates as the address of last resort.
func FallbackAddress(lat, lng float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lng)
}
