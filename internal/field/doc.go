// Package field provides the force fields that act on particles.
//
// Every field implements [Field]: a pure transform from one particle state
// to the next. A field never mutates shared state and never looks at other
// particles, which is what lets the world apply fields to the whole
// population in parallel.
//
//   - [Gravity]: constant downward acceleration scaled by mass
//   - [Wind]: constant lateral push, not scaled by mass
//   - [AirResistance]: drag opposing the direction of travel
//   - [GravityWell]: three fixed attraction shells around a point
//   - [BigGravityWell]: N widening shells, innermost match wins
//
// # Composition
//
// A [Chain] applies fields in registration order, each seeing the output of
// the previous one. The result depends on that order: drag computed after
// gravity sees the velocity gravity already changed.
//
// # Overlays
//
// Well fields also implement [Drawable]. Use [OverlayOf] to ask a field for
// its visual shells instead of asserting on concrete types.
package field
