// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package locate

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/pirayeshfar/location-finder/internal/vartype"
)

const (
	AccuracyCountry = 300000
	AccuracyRegion  = 100000
	AccuracyCity    = 15000
	AccuracyZip     = 3000
	AccuracyUnknown = 1000000
)

var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// Coordinates represents a single position fix. Acc is the horizontal accuracy radius in meters
// and is optional, since not every positioning backend reports it.
type Coordinates struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
	Acc vartype.VarFloat64
}

// NewCoordinates returns Coordinates with the given accuracy. A negative or NaN accuracy is
// treated as not reported.
func NewCoordinates(lat, lon, acc float64) Coordinates {
	coords := Coordinates{Lat: lat, Lon: lon}
	if acc >= 0 && !math.IsNaN(acc) {
		coords.Acc.Set(acc)
	}
	return coords
}

// Validate checks if the coordinates are valid according to the EPSG:4326 bounds.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return fmt.Errorf("%w: latitude and longitude must be numbers", ErrInvalidCoordinates)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCoordinates, err)
	}
	return nil
}

// String returns the coordinates in "lat,lon" notation.
func (c Coordinates) String() string {
	return fmt.Sprintf("%s,%s", FormatDegrees(c.Lat), FormatDegrees(c.Lon))
}

// FormatDegrees formats a latitude or longitude value in plain decimal notation without trailing zeros.
func FormatDegrees(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}

func Truncate(x float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Trunc(x*p) / p
}
