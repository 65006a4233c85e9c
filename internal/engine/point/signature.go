package point

import "fmt"

// TimeSignature is a musical meter such as 4/4 or 6/8.
// TimeSignature is an immutable value type.
type TimeSignature struct {
	Num   uint32
	Denom uint32
}

// Common is 4/4, the signature in force when no segment says otherwise.
var Common = TimeSignature{Num: 4, Denom: 4}

// NewTimeSignature creates a time signature.
func NewTimeSignature(num, denom uint32) TimeSignature {
	return TimeSignature{Num: num, Denom: denom}
}

// IsValid returns true if the numerator is positive and the denominator
// is one of 4, 8 or 16.
func (ts TimeSignature) IsValid() bool {
	if ts.Num == 0 {
		return false
	}
	switch ts.Denom {
	case 4, 8, 16:
		return true
	default:
		return false
	}
}

// Ratio returns num/denom, the length of a measure in whole notes.
func (ts TimeSignature) Ratio() float64 {
	return float64(ts.Num) / float64(ts.Denom)
}

// QuarterNotesPerMeasure returns the number of quarter notes in one measure.
func (ts TimeSignature) QuarterNotesPerMeasure() float64 {
	return float64(ts.Num) * 4 / float64(ts.Denom)
}

// BeatsPerMeasure returns the number of beats in one measure.
// A beat is one denominator unit.
func (ts TimeSignature) BeatsPerMeasure() float64 {
	return float64(ts.Num)
}

// CorrectionFrom returns the factor that converts an MPS value measured
// under prev into the MPS that keeps the same beat rate under ts.
func (ts TimeSignature) CorrectionFrom(prev TimeSignature) float64 {
	return prev.Ratio() / ts.Ratio()
}

// String returns the conventional "num/denom" form.
func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Num, ts.Denom)
}

// BPMFromMPS converts measures per second into beats per minute.
func BPMFromMPS(mps float64, ts TimeSignature) float64 {
	return mps * 60 * ts.QuarterNotesPerMeasure()
}

// MPSFromBPM converts beats per minute into measures per second.
func MPSFromBPM(bpm float64, ts TimeSignature) float64 {
	return bpm / (60 * ts.QuarterNotesPerMeasure())
}
