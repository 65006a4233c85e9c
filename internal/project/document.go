package project

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dshills/tempomap/internal/engine/timeline"
)

// Document is a human-readable summary of a timeline.
type Document struct {
	Audio    string            `yaml:"audio"`
	Segments []SegmentDocument `yaml:"segments,omitempty"`
	Points   []PointDocument   `yaml:"points"`
}

// SegmentDocument describes one time signature segment.
type SegmentDocument struct {
	Measure   int    `yaml:"measure"`
	Signature string `yaml:"signature"`
}

// PointDocument describes one timing point.
type PointDocument struct {
	Offset    float64 `yaml:"offset"`
	Position  float64 `yaml:"position"`
	Signature string  `yaml:"signature"`
	MPS       float64 `yaml:"mps"`
	BPM       float64 `yaml:"bpm"`
	Pinned    bool    `yaml:"pinned,omitempty"`
}

// NewDocument summarizes tl.
func NewDocument(tl *timeline.Timeline, audioPath string) Document {
	doc := Document{Audio: audioPath}
	for _, seg := range tl.Segments() {
		doc.Segments = append(doc.Segments, SegmentDocument{
			Measure:   seg.Measure,
			Signature: seg.TimeSignature.String(),
		})
	}
	doc.Points = make([]PointDocument, 0, tl.Len())
	for _, p := range tl.Points() {
		doc.Points = append(doc.Points, PointDocument{
			Offset:    p.Offset,
			Position:  p.Pos(),
			Signature: p.TimeSignature.String(),
			MPS:       p.MPS,
			BPM:       p.BPM(),
			Pinned:    p.TempoPinned,
		})
	}
	return doc
}

// WriteYAML writes the document to w.
func (d Document) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}
