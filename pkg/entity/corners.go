package entity

import (
	"github.com/chazu/cadmesh/pkg/geom"
)

func fourthDiffers(c [4]geom.Vec3) bool {
	return geom.Distance(c[2], c[3]) > geom.Epsilon
}

func isQuad(c [4]geom.Vec3, count int) bool {
	switch count {
	case 3:
		return false
	case 4:
		return true
	}
	return fourthDiffers(c)
}

// HasFourthCorner reports whether the fourth corner differs from the third.
func (f Face3D) HasFourthCorner() bool { return fourthDiffers(f.Corners) }

// CornerCountFromFlag reports whether the source stated the corner count.
func (f Face3D) CornerCountFromFlag() bool { return f.CornerCount == 3 || f.CornerCount == 4 }

// IsQuad decides triangle versus quad. An explicit corner count wins over
// comparing the third and fourth corners, so a quad whose last two corners
// coincide on purpose stays a quad.
func (f Face3D) IsQuad() bool { return isQuad(f.Corners, f.CornerCount) }

// Outline returns the corners in drawing order, three or four of them.
func (f Face3D) Outline() []geom.Vec3 {
	if f.IsQuad() {
		return f.Corners[:]
	}
	return f.Corners[:3]
}

// HasFourthCorner reports whether the fourth corner differs from the third.
func (s Solid) HasFourthCorner() bool { return fourthDiffers(s.Corners) }

// IsQuad decides triangle versus quad, preferring the explicit count.
func (s Solid) IsQuad() bool { return isQuad(s.Corners, s.CornerCount) }

// Outline returns the corners in boundary order. Solids store their corners
// as 1-2-4-3, so the last two are swapped back.
func (s Solid) Outline() []geom.Vec3 {
	if s.IsQuad() {
		return []geom.Vec3{s.Corners[0], s.Corners[1], s.Corners[3], s.Corners[2]}
	}
	return s.Corners[:3]
}
