package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector3 is a point or direction in model space. Arithmetic goes through
// mgl64 so vectors and transforms share one implementation.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NewVector3 creates a new 3D vector
func NewVector3(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

func (v Vector3) vec() mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

func fromVec(m mgl64.Vec3) Vector3 { return Vector3{X: m[0], Y: m[1], Z: m[2]} }

// Add returns the sum of two vectors
func (v Vector3) Add(other Vector3) Vector3 { return fromVec(v.vec().Add(other.vec())) }

// Sub returns the difference between two vectors
func (v Vector3) Sub(other Vector3) Vector3 { return fromVec(v.vec().Sub(other.vec())) }

// Mul scales the vector
func (v Vector3) Mul(scalar float64) Vector3 { return fromVec(v.vec().Mul(scalar)) }

// Dot returns the dot product of two vectors
func (v Vector3) Dot(other Vector3) float64 { return v.vec().Dot(other.vec()) }

// Cross follows the right-hand rule, so counter-clockwise triangles get
// outward normals
func (v Vector3) Cross(other Vector3) Vector3 { return fromVec(v.vec().Cross(other.vec())) }

// Length returns the magnitude of the vector
func (v Vector3) Length() float64 { return v.vec().Len() }

// Distance returns the distance between two points
func (v Vector3) Distance(other Vector3) float64 {
	return v.Sub(other).Length()
}

// Normalize returns a unit vector, or the zero vector for a zero input
func (v Vector3) Normalize() Vector3 {
	if v.Length() == 0 {
		return Vector3{}
	}
	return fromVec(v.vec().Normalize())
}

// Min returns the component-wise minimum
func (v Vector3) Min(other Vector3) Vector3 {
	return Vector3{X: min(v.X, other.X), Y: min(v.Y, other.Y), Z: min(v.Z, other.Z)}
}

// Max returns the component-wise maximum
func (v Vector3) Max(other Vector3) Vector3 {
	return Vector3{X: max(v.X, other.X), Y: max(v.Y, other.Y), Z: max(v.Z, other.Z)}
}

// IsFinite reports whether no component is NaN or infinite
func (v Vector3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
