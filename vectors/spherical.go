package vectors

import "math"

// Spherical is a point in spherical coordinates around the origin.
// Phi is the polar angle measured from +Y, Theta the azimuth around +Y
// measured from +Z toward +X.
type Spherical struct {
	Radius float64
	Phi    float64
	Theta  float64
}

const sphericalEps = 1e-6

// FromSpherical converts s to Cartesian coordinates.
func FromSpherical(s Spherical) Vec3 {
	sinPhiRadius := math.Sin(s.Phi) * s.Radius
	return Vec3{
		X: sinPhiRadius * math.Sin(s.Theta),
		Y: math.Cos(s.Phi) * s.Radius,
		Z: sinPhiRadius * math.Cos(s.Theta),
	}
}

// SphericalFromVec is the inverse of FromSpherical.
func SphericalFromVec(v Vec3) Spherical {
	r := v.Norm()
	if r == 0 {
		return Spherical{}
	}
	return Spherical{
		Radius: r,
		Theta:  math.Atan2(v.X, v.Z),
		Phi:    math.Acos(clamp(v.Y/r, -1, 1)),
	}
}

// MakeSafe keeps Phi away from the poles so a look-at basis stays defined.
func (s Spherical) MakeSafe() Spherical {
	s.Phi = clamp(s.Phi, sphericalEps, math.Pi-sphericalEps)
	return s
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
