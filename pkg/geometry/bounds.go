package geometry

import (
	"encoding/json"
	"math"
)

// BoundingBox represents an axis-aligned bounding box.
// The zero-extent box around a single point is a real box; the box returned
// by NewBoundingBox is the empty sentinel and contains nothing.
type BoundingBox struct {
	Min Vector3
	Max Vector3
}

// NewBoundingBox creates a new, empty bounding box
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Vector3{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64},
		Max: Vector3{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64},
	}
}

// IsEmpty reports whether no point was ever added to the box
func (b BoundingBox) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend expands the bounding box to include a point
func (b *BoundingBox) Extend(point Vector3) {
	b.Min = b.Min.Min(point)
	b.Max = b.Max.Max(point)
}

// Union returns the smallest box containing both boxes
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	return BoundingBox{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Size returns the dimensions of the bounding box
func (b BoundingBox) Size() Vector3 {
	if b.IsEmpty() {
		return Vector3{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the center point of the bounding box
func (b BoundingBox) Center() Vector3 {
	if b.IsEmpty() {
		return Vector3{}
	}
	return Vector3{
		X: (b.Min.X + b.Max.X) / 2.0,
		Y: (b.Min.Y + b.Max.Y) / 2.0,
		Z: (b.Min.Z + b.Max.Z) / 2.0,
	}
}

// Diagonal returns the length of the bounding box diagonal
func (b BoundingBox) Diagonal() float64 {
	return b.Size().Length()
}

// Volume returns the volume of the bounding box
func (b BoundingBox) Volume() float64 {
	size := b.Size()
	return size.X * size.Y * size.Z
}

type boundingBoxJSON struct {
	Empty bool     `json:"empty,omitempty"`
	Min   *Vector3 `json:"min,omitempty"`
	Max   *Vector3 `json:"max,omitempty"`
}

// MarshalJSON encodes the empty sentinel as {"empty":true} so that consumers
// never see the +/-MaxFloat64 placeholders.
func (b BoundingBox) MarshalJSON() ([]byte, error) {
	if b.IsEmpty() {
		return json.Marshal(boundingBoxJSON{Empty: true})
	}
	return json.Marshal(boundingBoxJSON{Min: &b.Min, Max: &b.Max})
}

// UnmarshalJSON is the inverse of MarshalJSON
func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	var raw boundingBoxJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Empty || raw.Min == nil || raw.Max == nil {
		*b = NewBoundingBox()
		return nil
	}
	*b = BoundingBox{Min: *raw.Min, Max: *raw.Max}
	return nil
}
