package emath

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f64"
)

// Vec3 is an RGB triple (or any other three floats). All operations are
// component-wise.
type Vec3 f64.Vec3

func Splat(f float64) Vec3 { return Vec3{f, f, f} }

func (a Vec3) Add(b Vec3) Vec3      { return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func (a Vec3) Mul(b Vec3) Vec3      { return Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a[0] * s, a[1] * s, a[2] * s} }

// Map applies f to each component.
func (a Vec3) Map(f func(float64) float64) Vec3 {
	return Vec3{f(a[0]), f(a[1]), f(a[2])}
}

// Max returns the largest component.
func (a Vec3) Max() float64 {
	return math.Max(a[0], math.Max(a[1], a[2]))
}

// ApproxEqual reports whether every component of a and b differs by at most tol.
func (a Vec3) ApproxEqual(b Vec3, tol float64) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func (v *Vec3) FloorAt(min float64) {
	if v[0] < min {
		v[0] = min
	}
	if v[1] < min {
		v[1] = min
	}
	if v[2] < min {
		v[2] = min
	}
}

func (v *Vec3) CeilingAt(max float64) {
	if v[0] > max {
		v[0] = max
	}
	if v[1] > max {
		v[1] = max
	}
	if v[2] > max {
		v[2] = max
	}
}

func (v Vec3) String() string {
	return fmt.Sprintf("[%12.10f, %12.10f, %12.10f]", v[0], v[1], v[2])
}
