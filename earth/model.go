package earth

import (
	"math"
	"time"

	"github.com/echoflaresat/earthglow/vectors"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
)

const (
	Radius = 1.0 // scene units

	// AxialTilt is applied about the scene X axis.
	AxialTilt = 23.5 * math.Pi / 180.0

	// SpinRate is the rendered rotation rate in radians per second of
	// elapsed time. It is decorative, not sidereal.
	SpinRate = 0.1
)

// SpinAngle returns the Earth's rotation about its own axis after t seconds.
func SpinAngle(t float64) float64 {
	return SpinAngleAt(t, SpinRate)
}

// SpinAngleAt is SpinAngle for a configured rate.
func SpinAngleAt(t, rate float64) float64 {
	return t * rate
}

// SunDirection returns the unit vector toward the sun for the given
// spherical coordinates. The radius is ignored.
func SunDirection(s vectors.Spherical) vectors.Vec3 {
	s.Radius = 1
	return vectors.FromSpherical(s)
}

// SunDirectionECEF returns the apparent direction of the sun at t in
// Earth-centred Earth-fixed coordinates (Z through the north pole).
func SunDirectionECEF(t time.Time) vectors.Vec3 {
	t = t.UTC()
	jd := julian.TimeToJD(t)

	// Apparent RA/Dec of the Sun
	ra, dec := solar.ApparentEquatorial(jd)

	// Unit vector in ECI (Earth-centered inertial)
	x := dec.Cos() * ra.Cos()
	y := dec.Cos() * ra.Sin()
	z := dec.Sin()

	// Rotate ECI → ECEF using apparent sidereal time
	gmst := sidereal.Apparent(jd)
	cosGMST := gmst.Angle().Cos()
	sinGMST := gmst.Angle().Sin()

	return vectors.Vec3{
		X: x*cosGMST + y*sinGMST,
		Y: -x*sinGMST + y*cosGMST,
		Z: z,
	}
}

// FromECEF maps an ECEF direction into the unrotated globe's local frame,
// matching the equirectangular texture layout (longitude 0 at the map centre).
func FromECEF(v vectors.Vec3) vectors.Vec3 {
	return vectors.Vec3{X: v.X, Y: v.Z, Z: -v.Y}
}

// SunSphericalAt returns the spherical coordinates of the real sun at t as
// seen from the scene, with the globe tilted and its spin at zero.
func SunSphericalAt(t time.Time) vectors.Spherical {
	dir := FromECEF(SunDirectionECEF(t)).RotateX(AxialTilt)
	return vectors.SphericalFromVec(dir)
}
