package housing

import (
	"fmt"
	"strings"

	"amesdash/domain/core"
)

// Attribute identifies one of the fixed grouping attributes of the dashboard
type Attribute string

const (
	AttributeOverallQual  Attribute = "overall_qual"
	AttributeNeighborhood Attribute = "neighborhood"
	AttributeGarageType   Attribute = "garage_type"
)

// Attributes returns the fixed attribute set in display order
func Attributes() []Attribute {
	return []Attribute{AttributeOverallQual, AttributeNeighborhood, AttributeGarageType}
}

// AttributeSpec carries everything an analysis pass needs to know about
// one grouping attribute: which column to group by and how to present it.
type AttributeSpec struct {
	Attribute    Attribute
	Column       string
	Label        string
	Title        string
	XLabel       string
	Caption      string
	Palette      string
	RotateLabels bool
}

var attributeSpecs = map[Attribute]AttributeSpec{
	AttributeOverallQual: {
		Attribute: AttributeOverallQual,
		Column:    ColOverallQual,
		Label:     "Overall Quality",
		Title:     "Log sale price by overall quality grade",
		XLabel:    "Overall Qual (1-10)",
		Caption:   "Does the assessed quality grade move the sale price?",
		Palette:   "viridis",
	},
	AttributeNeighborhood: {
		Attribute:    AttributeNeighborhood,
		Column:       ColNeighborhood,
		Label:        "Neighborhood",
		Title:        "Log sale price by neighborhood",
		XLabel:       "Neighborhood",
		Caption:      "Do physical neighborhoods price differently across Ames?",
		Palette:      "plasma",
		RotateLabels: true,
	},
	AttributeGarageType: {
		Attribute:    AttributeGarageType,
		Column:       ColGarageType,
		Label:        "Garage Type",
		Title:        "Log sale price by garage type",
		XLabel:       "Garage Type",
		Caption:      "Is garage placement worth money, and how much is having none worth?",
		Palette:      "magma",
		RotateLabels: true,
	},
}

// SpecFor returns the spec of a known attribute
func SpecFor(a Attribute) (AttributeSpec, error) {
	spec, ok := attributeSpecs[a]
	if !ok {
		return AttributeSpec{}, fmt.Errorf("%w: %q", core.ErrUnknownAttribute, a)
	}
	return spec, nil
}

// ParseAttribute parses user input (route segment, query param) into an Attribute
func ParseAttribute(s string) (Attribute, error) {
	a := Attribute(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := attributeSpecs[a]; !ok {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownAttribute, s)
	}
	return a, nil
}

// String returns the wire form of the attribute
func (a Attribute) String() string {
	return string(a)
}

// Label returns the human-facing label, or the raw value for unknown attributes
func (a Attribute) Label() string {
	if spec, ok := attributeSpecs[a]; ok {
		return spec.Label
	}
	return string(a)
}
