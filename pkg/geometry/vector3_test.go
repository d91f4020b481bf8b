package geometry

import (
	"math"
	"testing"
)

func vecNear(a, b Vector3) bool {
	return math.Abs(a.X-b.X) < 1e-10 && math.Abs(a.Y-b.Y) < 1e-10 && math.Abs(a.Z-b.Z) < 1e-10
}

func TestVector3Arithmetic(t *testing.T) {
	a := NewVector3(1, 2, 3)
	b := NewVector3(4, 5, 6)

	tests := []struct {
		name     string
		got      Vector3
		expected Vector3
	}{
		{"Add", a.Add(b), NewVector3(5, 7, 9)},
		{"Sub", b.Sub(a), NewVector3(3, 3, 3)},
		{"Mul", a.Mul(-2), NewVector3(-2, -4, -6)},
		{"Cross", NewVector3(1, 0, 0).Cross(NewVector3(0, 1, 0)), NewVector3(0, 0, 1)},
		{"Min", NewVector3(1, 9, -3).Min(NewVector3(2, 4, -8)), NewVector3(1, 4, -8)},
		{"Max", NewVector3(1, 9, -3).Max(NewVector3(2, 4, -8)), NewVector3(2, 9, -3)},
		{"Normalize", NewVector3(0, 3, 4).Normalize(), NewVector3(0, 0.6, 0.8)},
		{"NormalizeZero", Vector3{}.Normalize(), Vector3{}},
	}
	for _, tt := range tests {
		if !vecNear(tt.got, tt.expected) {
			t.Errorf("%s failed: expected %v, got %v", tt.name, tt.expected, tt.got)
		}
	}
}

func TestVector3Scalars(t *testing.T) {
	if got := NewVector3(1, 2, 3).Dot(NewVector3(4, -5, 6)); got != 12 {
		t.Errorf("Dot failed: expected 12, got %v", got)
	}
	if got := NewVector3(3, 4, 0).Length(); math.Abs(got-5) > 1e-10 {
		t.Errorf("Length failed: expected 5, got %v", got)
	}
	if got := NewVector3(1, 1, 1).Distance(NewVector3(4, 5, 1)); math.Abs(got-5) > 1e-10 {
		t.Errorf("Distance failed: expected 5, got %v", got)
	}
}

func TestVector3IsFinite(t *testing.T) {
	if !NewVector3(1, -2, 3.5).IsFinite() {
		t.Errorf("IsFinite failed: finite vector reported non-finite")
	}
	if NewVector3(math.NaN(), 0, 0).IsFinite() {
		t.Errorf("IsFinite failed: NaN not detected")
	}
	if NewVector3(0, math.Inf(-1), 0).IsFinite() {
		t.Errorf("IsFinite failed: -Inf not detected")
	}
}
