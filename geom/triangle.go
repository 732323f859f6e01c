package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// degenerateEps is the relative size of the barycentric denominator
	// below which a triangle is considered to have zero area.
	degenerateEps = 1e-12
)

// Triangle is a triangle in 3D space. (Duh!)
type Triangle [3]r3.Vec

// Bounds returns the lower and upper corners of the triangle's axis-aligned
// bounding box.
func (t *Triangle) Bounds() (min, max r3.Vec) {
	min, max = t[0], t[0]
	for i := 1; i < 3; i++ {
		min.X, max.X = fMinMax(min.X, max.X, t[i].X)
		min.Y, max.Y = fMinMax(min.Y, max.Y, t[i].Y)
		min.Z, max.Z = fMinMax(min.Z, max.Z, t[i].Z)
	}
	return min, max
}

// Area returns the area of the triangle.
func (t *Triangle) Area() float64 {
	return r3.Norm(r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))) / 2
}

// Degenerate returns true if the triangle has zero area, i.e. if its
// barycentric denominator is singular.
func (t *Triangle) Degenerate() bool {
	_, ok := NewProjector(t)
	return !ok
}

// Projector computes distances from points to a single triangle. It caches
// the terms of the barycentric projection so that many points can be tested
// against the same triangle cheaply.
//
// Projectors are not safe for concurrent use.
type Projector struct {
	a, b, c      r3.Vec
	e0, e1       r3.Vec
	normal       r3.Vec
	dot00, dot01 float64
	dot11        float64
	invDenom     float64
}

// NewProjector returns a Projector for t and true, or nil and false if t is
// degenerate.
func NewProjector(t *Triangle) (*Projector, bool) {
	p := &Projector{a: t[0], b: t[1], c: t[2]}
	p.e0 = r3.Sub(t[2], t[0])
	p.e1 = r3.Sub(t[1], t[0])

	p.dot00 = r3.Dot(p.e0, p.e0)
	p.dot01 = r3.Dot(p.e0, p.e1)
	p.dot11 = r3.Dot(p.e1, p.e1)

	denom := p.dot00*p.dot11 - p.dot01*p.dot01
	if !(denom > degenerateEps*p.dot00*p.dot11) {
		return nil, false
	}
	p.invDenom = 1 / denom
	p.normal = r3.Unit(r3.Cross(p.e0, p.e1))

	return p, true
}

// Barycentric returns the barycentric coordinates (u, v) of the projection
// of q onto the triangle's plane, along with the signed distance from q to
// that plane. The projection lies inside the triangle when u >= 0, v >= 0
// and u + v <= 1.
func (p *Projector) Barycentric(q r3.Vec) (u, v, dist float64) {
	dist = r3.Dot(r3.Sub(q, p.a), p.normal)
	proj := r3.Sub(q, r3.Scale(dist, p.normal))

	v2 := r3.Sub(proj, p.a)
	dot02 := r3.Dot(p.e0, v2)
	dot12 := r3.Dot(p.e1, v2)

	u = (p.dot11*dot02 - p.dot01*dot12) * p.invDenom
	v = (p.dot00*dot12 - p.dot01*dot02) * p.invDenom
	return u, v, dist
}

// Distance returns the distance from q to the triangle. If q projects
// inside the triangle this is the distance to its plane; otherwise it is the
// minimum distance to the triangle's three edges.
func (p *Projector) Distance(q r3.Vec) float64 {
	u, v, dist := p.Barycentric(q)
	if u >= 0 && v >= 0 && u+v <= 1 {
		return math.Abs(dist)
	}

	d := segmentDistance(q, p.a, p.b)
	if dc := segmentDistance(q, p.b, p.c); dc < d {
		d = dc
	}
	if dc := segmentDistance(q, p.c, p.a); dc < d {
		d = dc
	}
	return d
}

// segmentDistance returns the distance from q to the segment a-b.
func segmentDistance(q, a, b r3.Vec) float64 {
	ab := r3.Sub(b, a)
	len2 := r3.Dot(ab, ab)
	if len2 == 0 {
		return r3.Norm(r3.Sub(q, a))
	}

	t := r3.Dot(r3.Sub(q, a), ab) / len2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return r3.Norm(r3.Sub(q, r3.Add(a, r3.Scale(t, ab))))
}

// fMinMax returns the minimum and maximum of (min, max, x), given min < max.
func fMinMax(min, max, x float64) (float64, float64) {
	if x < min {
		return x, max
	}
	if x > max {
		return min, x
	}
	return min, max
}
