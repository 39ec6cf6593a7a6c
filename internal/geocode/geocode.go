// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"
	"strings"

	"github.com/pirayeshfar/location-finder/internal/locate"
	"github.com/pirayeshfar/location-finder/internal/vartype"
)

// ErrInferenceFailed is returned when the address could not be inferred for any reason. No partial
// address is returned alongside it.
var ErrInferenceFailed = errors.New("address inference failed")

// Address is a structured postal address. FullAddress is always populated, all other fields are
// best effort and distinguish "absent" (unset) from "present but blank" (set to "").
type Address struct {
	FullAddress   string
	Road          vartype.VarString
	Neighbourhood vartype.VarString
	District      vartype.VarString
	City          vartype.VarString
	State         vartype.VarString
	Country       vartype.VarString
	Postcode      vartype.VarString
	Building      vartype.VarString
}

// HasDetails reports whether at least one structured field carries a value.
func (a Address) HasDetails() bool {
	for _, field := range a.Fields() {
		if Known(field.Value) {
			return true
		}
	}
	return false
}

// Known reports whether a field is present and not blank. Absent and blank fields are both unknown
// to the user.
func Known(val vartype.VarString) bool {
	return val.IsSet() && strings.TrimSpace(val.Value()) != ""
}

// FieldValue is a single structured address field with its name.
type FieldValue struct {
	Field Field
	Value vartype.VarString
}

// Fields returns the structured fields in display order.
func (a Address) Fields() []FieldValue {
	return []FieldValue{
		{FieldState, a.State},
		{FieldCity, a.City},
		{FieldDistrict, a.District},
		{FieldNeighbourhood, a.Neighbourhood},
		{FieldRoad, a.Road},
		{FieldBuilding, a.Building},
		{FieldPostcode, a.Postcode},
		{FieldCountry, a.Country},
	}
}

// Geocoder resolves coordinates into an address.
type Geocoder interface {
	Name() string
	Reverse(ctx context.Context, coords locate.Coordinates) (Address, error)
}

// Lookup is the result of a cached address lookup.
type Lookup struct {
	Address  Address
	CacheHit bool
}

// CachingGeocoder is implemented by geocoders that can tell whether an address was served from a
// cache.
type CachingGeocoder interface {
	Geocoder
	Lookup(ctx context.Context, coords locate.Coordinates) (Lookup, error)
}
