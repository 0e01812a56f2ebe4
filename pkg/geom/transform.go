package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is the object-to-world placement of a rendered entity.
// Matrix is column-major and equals T(Position) * R(Rotation) * S(Scale).
type Transform struct {
	Position Vec3        `json:"Position"`
	Rotation Vec3        `json:"Rotation"` // Euler XYZ, radians
	Scale    Vec3        `json:"Scale"`
	Matrix   [16]float64 `json:"Matrix"`
}

// Mat4 returns the matrix as an mgl64 value.
func (t Transform) Mat4() mgl64.Mat4 {
	return mgl64.Mat4(t.Matrix)
}

// Identity is the transform of an entity placed at the origin.
func Identity() Transform {
	return Transform{Scale: Vec3{1, 1, 1}, Matrix: [16]float64(mgl64.Ident4())}
}

// Basis returns an orthonormal right-handed frame whose Z axis is the given
// normal. The X axis comes from Gram-Schmidt against world Z, or against
// world X when the normal is (anti)parallel to world Z. A zero normal is
// treated as world Z.
func Basis(normal Vec3) (x, y, z Vec3) {
	z = NormalOrZ(normal)
	ref := ZAxis
	if math.Abs(z[2]) > 1-AxisTolerance {
		ref = XAxis
	}
	x, ok := Normalize(ref.Sub(z.Mul(ref.Dot(z))))
	if !ok {
		x = XAxis
	}
	y = z.Cross(x)
	return x, y, z
}

// BasisMatrix returns the rotation whose columns are Basis(normal).
func BasisMatrix(normal Vec3) mgl64.Mat4 {
	x, y, z := Basis(normal)
	return mgl64.Mat4FromCols(x.Vec4(0), y.Vec4(0), z.Vec4(0), mgl64.Vec4{0, 0, 0, 1})
}

// PlaneRotation is the rotation of a planar entity: its normal frame followed
// by an in-plane rotation of angle radians about the normal.
func PlaneRotation(normal Vec3, angle float64) mgl64.Mat4 {
	return BasisMatrix(normal).Mul4(mgl64.HomogRotate3DZ(angle))
}

// Compose builds T(position) * rotation * S(scale).
func Compose(position Vec3, rotation mgl64.Mat4, scale Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(position[0], position[1], position[2]).
		Mul4(rotation).
		Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2]))
}

// NewTransform composes a Transform and fills in its Euler angles.
func NewTransform(position Vec3, rotation mgl64.Mat4, scale Vec3) Transform {
	return Transform{
		Position: position,
		Rotation: EulerXYZ(rotation),
		Scale:    scale,
		Matrix:   [16]float64(Compose(position, rotation, scale)),
	}
}

// Decompose splits an affine T*R*S matrix back into a Transform. Shear is
// not representable and ends up folded into the rotation.
func Decompose(m mgl64.Mat4) Transform {
	pos := m.Col(3).Vec3()
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	rot := mgl64.Ident4()
	cols := [3]float64{sx, sy, sz}
	for c := 0; c < 3; c++ {
		if cols[c] < Epsilon {
			continue
		}
		v := m.Col(c).Vec3().Mul(1 / cols[c])
		rot.SetCol(c, v.Vec4(0))
	}
	if m.Det() < 0 {
		// Mirrored: keep the rotation proper and carry the flip in X scale.
		sx = -sx
		rot.SetCol(0, rot.Col(0).Mul(-1))
	}
	return Transform{
		Position: pos,
		Rotation: EulerXYZ(rot),
		Scale:    Vec3{sx, sy, sz},
		Matrix:   [16]float64(m),
	}
}

// EulerXYZ extracts intrinsic XYZ Euler angles (the order three.js uses by
// default) from the rotation part of m.
func EulerXYZ(m mgl64.Mat4) Vec3 {
	m11, m12, m13 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	m22, m23 := m.At(1, 1), m.At(1, 2)
	m32, m33 := m.At(2, 1), m.At(2, 2)

	y := math.Asin(math.Max(-1, math.Min(1, m13)))
	if math.Abs(m13) < 0.9999999 {
		return Vec3{math.Atan2(-m23, m33), y, math.Atan2(-m12, m11)}
	}
	return Vec3{math.Atan2(m32, m22), y, 0}
}

// Apply transforms a point.
func Apply(m mgl64.Mat4, p Vec3) Vec3 {
	return mgl64.TransformCoordinate(p, m)
}

// ApplyDirection transforms a direction (no translation) and renormalizes.
// Directions collapsed by a zero scale come back as world Z.
func ApplyDirection(m mgl64.Mat4, d Vec3) Vec3 {
	return NormalOrZ(mgl64.TransformNormal(d, m))
}

// ApplyNormal transforms a surface normal by the inverse transpose of m.
func ApplyNormal(m mgl64.Mat4, n Vec3) Vec3 {
	if math.Abs(m.Det()) < Epsilon {
		return NormalOrZ(n)
	}
	return NormalOrZ(mgl64.TransformNormal(n, m.Inv().Transpose()))
}
