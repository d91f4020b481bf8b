package scene

import (
	"fmt"
	"strings"
)

// Units is the length unit of the coordinates in a scene document
type Units string

const (
	Millimeters Units = "mm"
	Centimeters Units = "cm"
	Meters      Units = "m"
	Inches      Units = "in"
	Feet        Units = "ft"
)

// DefaultUnits applies when a document does not state its units
const DefaultUnits = Meters

var metersPerUnit = map[Units]float64{
	Millimeters: 0.001,
	Centimeters: 0.01,
	Meters:      1,
	Inches:      0.0254,
	Feet:        0.3048,
}

var unitAliases = map[string]Units{
	"mm": Millimeters, "millimeter": Millimeters, "millimeters": Millimeters, "millimetre": Millimeters, "millimetres": Millimeters,
	"cm": Centimeters, "centimeter": Centimeters, "centimeters": Centimeters, "centimetre": Centimeters, "centimetres": Centimeters,
	"m": Meters, "meter": Meters, "meters": Meters, "metre": Meters, "metres": Meters,
	"in": Inches, "inch": Inches, "inches": Inches,
	"ft": Feet, "foot": Feet, "feet": Feet,
}

// ParseUnits resolves a unit name or abbreviation, case-insensitively.
// An empty string yields DefaultUnits.
func ParseUnits(s string) (Units, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultUnits, nil
	}
	if u, ok := unitAliases[s]; ok {
		return u, nil
	}
	return "", fmt.Errorf("unknown units %q", s)
}

// MetersPerUnit returns the scale from u to meters
func (u Units) MetersPerUnit() float64 {
	if f, ok := metersPerUnit[u]; ok {
		return f
	}
	return 1
}

func (u Units) String() string { return string(u) }
