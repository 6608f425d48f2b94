package geo

import "math"

// Point2D is a position on the ground plane (Y is up in the scene).
type Point2D struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Pt is a shorthand constructor for Point2D.
func Pt(x, z float64) Point2D {
	return Point2D{X: x, Z: z}
}

// Add returns p + q.
func (p Point2D) Add(q Point2D) Point2D {
	return Point2D{p.X + q.X, p.Z + q.Z}
}

// Sub returns p - q.
func (p Point2D) Sub(q Point2D) Point2D {
	return Point2D{p.X - q.X, p.Z - q.Z}
}

// Scale returns p * s.
func (p Point2D) Scale(s float64) Point2D {
	return Point2D{p.X * s, p.Z * s}
}

// Length returns the Euclidean length of the vector.
func (p Point2D) Length() float64 {
	return math.Hypot(p.X, p.Z)
}

// LengthSq returns the squared length.
func (p Point2D) LengthSq() float64 {
	return p.X*p.X + p.Z*p.Z
}

// Normalize returns the unit vector in the same direction.
// Returns zero vector if length is zero.
func (p Point2D) Normalize() Point2D {
	l := p.Length()
	if l < 1e-12 {
		return Point2D{}
	}
	return Point2D{p.X / l, p.Z / l}
}

// Dot returns the dot product of p and q.
func (p Point2D) Dot(q Point2D) float64 {
	return p.X*q.X + p.Z*q.Z
}

// Distance returns the Euclidean distance from p to q.
func (p Point2D) Distance(q Point2D) float64 {
	return p.Sub(q).Length()
}

// Heading returns the yaw that faces along p, measured from +Z toward +X.
func (p Point2D) Heading() float64 {
	return math.Atan2(p.X, p.Z)
}

// Polar returns the point at distance r and angle a (radians from +X) around p.
func (p Point2D) Polar(a, r float64) Point2D {
	return Point2D{p.X + math.Cos(a)*r, p.Z + math.Sin(a)*r}
}

// Lerp returns the linear interpolation between p and q at t in [0,1].
func (p Point2D) Lerp(q Point2D, t float64) Point2D {
	return Point2D{
		X: p.X + (q.X-p.X)*t,
		Z: p.Z + (q.Z-p.Z)*t,
	}
}

// InSquare reports whether p lies in [-half, half]² (inclusive).
func (p Point2D) InSquare(half float64) bool {
	return p.X >= -half && p.X <= half && p.Z >= -half && p.Z <= half
}
