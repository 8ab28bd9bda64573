// Package vecmath provides the 3-component vector primitive used by the
// particle simulation.
//
//   - [Vector3]: generic vector over any [Number] type
//   - [Vec3], [Point3]: float64 instantiations used for velocity and position
//   - [Normalize], [Unit]: float-only normalization that fails on zero length
//
// # Example
//
//	v := vecmath.Vec3{X: 3, Y: 4}
//	if err := vecmath.Normalize(&v); err != nil {
//	    return err
//	}
//
// Indexed access with [Vector3.At] and [Vector3.Set] reports
// [ErrIndexOutOfRange] instead of panicking.
package vecmath
