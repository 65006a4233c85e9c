package project

import (
	"bytes"
	"io"
	"strconv"
)

// Encode returns the project in file form. Skipped lines are not written.
func (p *Project) Encode() []byte {
	var buf bytes.Buffer
	p.encode(&buf)
	return buf.Bytes()
}

// WriteTo writes the project in file form to w.
func (p *Project) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	p.encode(&buf)
	return buf.WriteTo(w)
}

func (p *Project) encode(buf *bytes.Buffer) {
	writeHeader(buf, SectionAudioPath)
	buf.WriteString(p.AudioPath)
	buf.WriteByte('\n')

	writeHeader(buf, SectionTimeSignatures)
	for _, seg := range p.Segments {
		buf.WriteString(strconv.Itoa(seg.Measure))
		buf.WriteString(fieldSeparator)
		writeUint(buf, seg.TimeSignature.Num)
		buf.WriteString(fieldSeparator)
		writeUint(buf, seg.TimeSignature.Denom)
		buf.WriteByte('\n')
	}

	writeHeader(buf, SectionTimingPoints)
	for i, line := range p.Points {
		buf.WriteString(FormatFloat(line.Offset))
		buf.WriteString(fieldSeparator)
		buf.WriteString(FormatFloat(line.Position))
		buf.WriteString(fieldSeparator)
		writeUint(buf, line.TimeSignature.Num)
		buf.WriteString(fieldSeparator)
		writeUint(buf, line.TimeSignature.Denom)
		if i == len(p.Points)-1 && line.HasMPS {
			buf.WriteString(fieldSeparator)
			buf.WriteString(FormatFloat(line.MPS))
		}
		buf.WriteByte('\n')
	}
}

func writeHeader(buf *bytes.Buffer, name string) {
	buf.WriteByte('[')
	buf.WriteString(name)
	buf.WriteString("]\n")
}

func writeUint(buf *bytes.Buffer, v uint32) {
	buf.WriteString(strconv.FormatUint(uint64(v), 10))
}

// FormatFloat formats v with the fewest digits that parse back to the same
// value, never using an exponent.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
