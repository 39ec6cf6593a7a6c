// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"github.com/vorlif/spreak/localize"

	"github.com/pirayeshfar/location-finder/internal/resolution"
)

// statusMessages holds the user facing text of the states that carry no message of their own.
var statusMessages = map[resolution.Status]localize.MsgID{
	resolution.StatusIdle:                 "Ready",
	resolution.StatusAcquiringCoordinates: "Determining your location...",
	resolution.StatusResolvingAddress:     "Looking up the address...",
	resolution.StatusResolved:             "Address found",
}

// i18nVars maps the keys accepted by the "loc" template function to message IDs.
var i18nVars = map[string]localize.MsgID{
	"address":       "Address",
	"fulladdress":   "Full address",
	"province":      "Province",
	"city":          "City",
	"district":      "District",
	"neighbourhood": "Neighbourhood",
	"street":        "Street",
	"building":      "Building number",
	"postcode":      "Postal code",
	"country":       "Country",
	"coordinates":   "Coordinates",
	"accuracy":      "Accuracy",
	"map":           "Map",
	"sunrise":       "Sunrise",
	"sunset":        "Sunset",
	"resolved":      "Resolved",
	"source":        "Source",
	"cached":        "cached",
	"unknown":       "unknown",
}
