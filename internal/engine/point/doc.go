// Package point provides the value types anchored on the tempo timeline.
//
// The point package handles:
//
//   - TimingPoint: binds one audio offset (seconds) to one music position
//   - TimeSignature: numerator/denominator pair with tempo unit helpers
//   - Position: the Pending | Anchored tag for a point's music position
//
// Tempo Model:
//
// Tempo is stored as measures per second (MPS). BPM is derived from MPS
// and the active time signature:
//
//	bpm = mps * 60 * (num * 4 / denom)
//
// so 0.5 MPS in 4/4 is 120 BPM. Points never cache references to their
// neighbors; neighbors are looked up by index in the owning timeline.
//
// Basic usage:
//
//	p := point.New(2.0, point.Anchored(2), point.Common)
//	p.MPS = point.MPSFromBPM(120, p.TimeSignature) // 0.5
package point
