package geometry

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Transform is an affine 4x4 transform. The matrix is stored column-major,
// the same layout three.js uses for Object3D.matrix. The zero value is the
// identity; a constructed all-zero matrix stays all-zero.
type Transform struct {
	m   mgl64.Mat4
	set bool
}

func wrap(m mgl64.Mat4) Transform { return Transform{m: m, set: true} }

func (t Transform) mat() mgl64.Mat4 {
	if !t.set {
		return mgl64.Ident4()
	}
	return t.m
}

// Identity returns the identity transform
func Identity() Transform {
	return wrap(mgl64.Ident4())
}

// FromMatrix builds a transform from 16 column-major elements
func FromMatrix(elements [16]float64) Transform {
	return wrap(mgl64.Mat4(elements))
}

// Translation returns a pure translation
func Translation(offset Vector3) Transform {
	return wrap(mgl64.Translate3D(offset.X, offset.Y, offset.Z))
}

// Scaling returns a non-uniform scale about the origin
func Scaling(scale Vector3) Transform {
	return wrap(mgl64.Scale3D(scale.X, scale.Y, scale.Z))
}

// Uniform returns a uniform scale about the origin
func Uniform(scale float64) Transform {
	return Scaling(NewVector3(scale, scale, scale))
}

// Euler returns a rotation from XYZ-ordered Euler angles in radians
func Euler(x, y, z float64) Transform {
	return wrap(mgl64.AnglesToQuat(x, y, z, mgl64.XYZ).Mat4())
}

// Quaternion returns a rotation from the components of a (not necessarily
// normalized) quaternion. A zero quaternion yields the identity.
func Quaternion(x, y, z, w float64) Transform {
	q := mgl64.Quat{W: w, V: mgl64.Vec3{x, y, z}}
	if q.Len() == 0 {
		return Identity()
	}
	return wrap(q.Normalize().Mat4())
}

// FromTRS composes translation * rotation * scale, the order three.js uses
// when it builds a matrix from position, quaternion and scale.
func FromTRS(translation Vector3, rotation Transform, scale Vector3) Transform {
	return Translation(translation).Mul(rotation).Mul(Scaling(scale))
}

// Mul returns t * other: other is applied first, then t.
func (t Transform) Mul(other Transform) Transform {
	return wrap(t.mat().Mul4(other.mat()))
}

// Apply transforms a point
func (t Transform) Apply(p Vector3) Vector3 {
	v := t.mat().Mul4x1(p.vec().Vec4(1))
	if w := v[3]; w != 1 && w != 0 {
		return NewVector3(v[0]/w, v[1]/w, v[2]/w)
	}
	return NewVector3(v[0], v[1], v[2])
}

// Determinant returns the determinant of the matrix. A negative value means
// the transform mirrors geometry and flips triangle winding.
func (t Transform) Determinant() float64 {
	return t.mat().Det()
}

// IsIdentity reports whether the transform is exactly the identity
func (t Transform) IsIdentity() bool {
	return t.mat() == mgl64.Ident4()
}

// Elements returns the 16 column-major matrix elements
func (t Transform) Elements() [16]float64 {
	return [16]float64(t.mat())
}
