package tessellate

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/cadmesh/pkg/geom"
)

// Spline curve types as reported to renderers.
const (
	SplineNURBS      = "NURBSCurve"
	SplineCatmullRom = "CatmullRomCurve3"
)

// CatmullRomTension is the fixed tension of the Catmull-Rom path.
const CatmullRomTension = 0.5

// DefaultSplineSamples is the minimum number of samples for any spline.
const DefaultSplineSamples = 32

// SplineInput describes a spline as stored in a drawing.
type SplineInput struct {
	Degree        int
	Closed        bool
	ControlPoints []geom.Vec3
	FitPoints     []geom.Vec3
	Knots         []float64
	Weights       []float64
	MinSamples    int
}

// SplineResult is a sampled spline.
type SplineResult struct {
	Type    string
	Degree  int
	Points  []geom.Vec3
	Length  float64
	Knots   []float64 // knot vector actually used by the NURBS path
	Through []geom.Vec3
}

// IsRational reports whether any weight differs from 1.
func IsRational(weights []float64) bool {
	for _, w := range weights {
		if math.Abs(w-1) > geom.Epsilon {
			return true
		}
	}
	return false
}

// Spline samples a spline. Rational splines with control points are
// evaluated as NURBS with de Boor's algorithm; everything else is
// approximated by a Catmull-Rom curve through the control points, or the fit
// points when there are no control points. Sample count is
// max(MinSamples, 8*points). A lone point is returned twice so the result
// always has at least two samples; no points yields no samples.
func Spline(in SplineInput) SplineResult {
	minSamples := in.MinSamples
	if minSamples < 2 {
		minSamples = DefaultSplineSamples
	}

	through := in.ControlPoints
	if len(through) == 0 {
		through = in.FitPoints
	}

	if len(in.ControlPoints) >= 2 && IsRational(in.Weights) {
		degree := clampDegree(in.Degree, len(in.ControlPoints))
		knots := in.Knots
		if !validKnots(knots, len(in.ControlPoints), degree) {
			knots = ClampedKnots(len(in.ControlPoints), degree)
		}
		samples := max(minSamples, 8*len(in.ControlPoints))
		points := sampleNURBS(in.ControlPoints, weightsFor(in.Weights, len(in.ControlPoints)), knots, degree, samples)
		return SplineResult{
			Type:    SplineNURBS,
			Degree:  degree,
			Points:  points,
			Length:  PathLength(points, in.Closed),
			Knots:   knots,
			Through: through,
		}
	}

	res := SplineResult{Type: SplineCatmullRom, Degree: in.Degree, Through: through}
	switch len(through) {
	case 0:
		return res
	case 1:
		res.Points = []geom.Vec3{through[0], through[0]}
		return res
	}
	samples := max(minSamples, 8*len(through))
	res.Points = CatmullRom(through, in.Closed, samples)
	res.Length = PathLength(res.Points, in.Closed)
	return res
}

func clampDegree(degree, n int) int {
	if degree < 1 {
		degree = 3
	}
	if degree > n-1 {
		degree = n - 1
	}
	return degree
}

func weightsFor(weights []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
		if i < len(weights) && weights[i] > 0 {
			out[i] = weights[i]
		}
	}
	return out
}

// validKnots checks length n+degree+1, monotonicity and a non-empty domain.
func validKnots(knots []float64, n, degree int) bool {
	if len(knots) != n+degree+1 {
		return false
	}
	for i := 1; i < len(knots); i++ {
		if knots[i] < knots[i-1] || math.IsNaN(knots[i]) {
			return false
		}
	}
	return knots[degree] < knots[n]
}

// ClampedKnots returns a clamped uniform knot vector on [0,1] for n control
// points of the given degree.
func ClampedKnots(n, degree int) []float64 {
	knots := make([]float64, n+degree+1)
	spans := n - degree
	for i := range knots {
		switch {
		case i <= degree:
			knots[i] = 0
		case i >= n:
			knots[i] = 1
		default:
			knots[i] = float64(i-degree) / float64(spans)
		}
	}
	return knots
}

func sampleNURBS(ctrl []geom.Vec3, weights, knots []float64, degree, samples int) []geom.Vec3 {
	n := len(ctrl)
	lo, hi := knots[degree], knots[n]
	points := make([]geom.Vec3, samples)
	for i := range points {
		u := lo + (hi-lo)*float64(i)/float64(samples-1)
		points[i] = deBoor(ctrl, weights, knots, degree, u)
	}
	return points
}

// deBoor evaluates the rational curve at u in homogeneous coordinates.
func deBoor(ctrl []geom.Vec3, weights, knots []float64, p int, u float64) geom.Vec3 {
	n := len(ctrl)
	k := p
	for k < n-1 && u >= knots[k+1] {
		k++
	}

	d := make([]mgl64.Vec4, p+1)
	for j := 0; j <= p; j++ {
		w := weights[j+k-p]
		d[j] = ctrl[j+k-p].Mul(w).Vec4(w)
	}
	for r := 1; r <= p; r++ {
		for j := p; j >= r; j-- {
			i := j + k - p
			denom := knots[i+p-r+1] - knots[i]
			alpha := 0.0
			if denom != 0 {
				alpha = (u - knots[i]) / denom
			}
			d[j] = d[j-1].Mul(1 - alpha).Add(d[j].Mul(alpha))
		}
	}
	h := d[p]
	if math.Abs(h[3]) < geom.Epsilon {
		return h.Vec3()
	}
	return h.Vec3().Mul(1 / h[3])
}

// CatmullRom samples a uniform Catmull-Rom curve with tension 0.5 through
// points. Open curves extrapolate phantom end points and sample t in [0,1]
// inclusive; closed curves wrap and sample t in [0,1) so the caller closes
// the loop with an index pair.
func CatmullRom(points []geom.Vec3, closed bool, samples int) []geom.Vec3 {
	if len(points) < 2 {
		return append([]geom.Vec3(nil), points...)
	}
	if samples < 2 {
		samples = 2
	}
	out := make([]geom.Vec3, samples)
	for i := range out {
		var t float64
		if closed {
			t = float64(i) / float64(samples)
		} else {
			t = float64(i) / float64(samples-1)
		}
		out[i] = catmullRomAt(points, closed, t)
	}
	return out
}

func catmullRomAt(points []geom.Vec3, closed bool, t float64) geom.Vec3 {
	l := len(points)
	spans := l - 1
	if closed {
		spans = l
	}
	p := float64(spans) * t
	seg := int(math.Floor(p))
	w := p - float64(seg)
	if !closed && seg >= l-1 {
		seg, w = l-2, 1
	}

	at := func(i int) geom.Vec3 { return points[((i%l)+l)%l] }

	var p0, p3 geom.Vec3
	p1, p2 := at(seg), at(seg+1)
	if closed || seg > 0 {
		p0 = at(seg - 1)
	} else {
		p0 = points[0].Mul(2).Sub(points[1])
	}
	if closed || seg+2 < l {
		p3 = at(seg + 2)
	} else {
		p3 = points[l-1].Mul(2).Sub(points[l-2])
	}

	t0 := p2.Sub(p0).Mul(CatmullRomTension)
	t1 := p3.Sub(p1).Mul(CatmullRomTension)
	w2 := w * w
	w3 := w2 * w
	c2 := p1.Mul(-3).Add(p2.Mul(3)).Sub(t0.Mul(2)).Sub(t1)
	c3 := p1.Mul(2).Sub(p2.Mul(2)).Add(t0).Add(t1)
	return p1.Add(t0.Mul(w)).Add(c2.Mul(w2)).Add(c3.Mul(w3))
}
