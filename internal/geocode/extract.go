// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"errors"
	"regexp"
	"strings"
)

// Field identifies a structured address field.
type Field int

const (
	FieldFullAddress Field = iota
	FieldState
	FieldCity
	FieldDistrict
	FieldNeighbourhood
	FieldRoad
	FieldBuilding
	FieldPostcode
	FieldCountry
)

// ErrEmptyReply is returned by Extract for a reply without any non-whitespace text.
var ErrEmptyReply = errors.New("reply contains no text")

// String returns the English name of the field.
func (f Field) String() string {
	switch f {
	case FieldFullAddress:
		return "Full address"
	case FieldState:
		return "Province"
	case FieldCity:
		return "City"
	case FieldDistrict:
		return "District"
	case FieldNeighbourhood:
		return "Neighbourhood"
	case FieldRoad:
		return "Street"
	case FieldBuilding:
		return "Building number"
	case FieldPostcode:
		return "Postal code"
	case FieldCountry:
		return "Country"
	default:
		return "Unknown field"
	}
}

type label struct {
	field   Field
	text    string
	pattern *regexp.Regexp
}

// labels is the ordered label table. Each label is matched independently, the order only defines
// the order of the lines requested in the prompt.
var labels = []label{
	newLabel(FieldState, "استان"),
	newLabel(FieldCity, "شهر"),
	newLabel(FieldDistrict, "منطقه"),
	newLabel(FieldNeighbourhood, "محله"),
	newLabel(FieldRoad, "خیابان"),
	newLabel(FieldBuilding, "پلاک"),
	newLabel(FieldPostcode, "کدپستی"),
	newLabel(FieldFullAddress, "آدرس کامل"),
	newLabel(FieldCountry, "کشور"),
}

// newLabel compiles the line scoped pattern "label colon, then the rest of the line". Markdown
// emphasis around the label is tolerated.
func newLabel(field Field, text string) label {
	return label{
		field:   field,
		text:    text,
		pattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(text) + `\**[ \t]*:(.*)`),
	}
}

// PromptLabels returns the labels the reply is expected to contain, in order.
func PromptLabels() []string {
	var list []string
	for _, l := range labels {
		if l.field == FieldCountry {
			continue
		}
		list = append(list, l.text)
	}
	return list
}

// Extract parses a free text reply into an Address. For every label the first matching line wins.
// A label without a match leaves its field unset, a label with an empty value sets the field to "".
// FullAddress falls back to the first non-blank line of the reply.
func Extract(text string) (Address, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	firstLine := ""
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			firstLine = trimmed
			break
		}
	}
	if firstLine == "" {
		return Address{}, ErrEmptyReply
	}

	var addr Address
	for _, l := range labels {
		value, ok := l.match(lines)
		if !ok {
			continue
		}
		switch l.field {
		case FieldFullAddress:
			addr.FullAddress = value
		case FieldState:
			addr.State.Set(value)
		case FieldCity:
			addr.City.Set(value)
		case FieldDistrict:
			addr.District.Set(value)
		case FieldNeighbourhood:
			addr.Neighbourhood.Set(value)
		case FieldRoad:
			addr.Road.Set(value)
		case FieldBuilding:
			addr.Building.Set(value)
		case FieldPostcode:
			addr.Postcode.Set(value)
		case FieldCountry:
			addr.Country.Set(value)
		}
	}
	if addr.FullAddress == "" {
		addr.FullAddress = firstLine
	}
	return addr, nil
}

func (l label) match(lines []string) (string, bool) {
	for _, line := range lines {
		matches := l.pattern.FindStringSubmatch(line)
		if matches == nil {
			continue
		}
		return cleanValue(matches[1]), true
	}
	return "", false
}

// cleanValue trims whitespace and markdown emphasis from a captured value.
func cleanValue(value string) string {
	value = strings.TrimSpace(value)
	value = strings.Trim(value, "*")
	return strings.TrimSpace(value)
}
