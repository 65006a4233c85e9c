package project

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dshills/tempomap/internal/engine/point"
	"github.com/dshills/tempomap/internal/engine/timeline"
	"github.com/dshills/tempomap/internal/project/vfs"
)

// Section headers.
const (
	SectionAudioPath      = "AudioPath"
	SectionTimeSignatures = "TimeSignaturePoints"
	SectionTimingPoints   = "TimingPoints"
)

const fieldSeparator = ";"

// Parse decodes a project file. Malformed lines are skipped and recorded
// in Skipped. A missing audio path returns ErrAudioNotFound.
func Parse(data []byte) (*Project, error) {
	data = vfs.NormalizeLineEndings(vfs.StripBOM(data))

	p := &Project{}
	section := ""
	haveAudio := false

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for n := 1; sc.Scan(); n++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if name, ok := header(text); ok {
			section = name
			continue
		}

		skip := func(err error) {
			p.Skipped = append(p.Skipped, &LineError{Line: n, Section: section, Text: text, Err: err})
		}

		switch section {
		case SectionAudioPath:
			if haveAudio {
				skip(fmt.Errorf("%w: second audio path", ErrMalformedLine))
				continue
			}
			p.AudioPath = text
			haveAudio = true

		case SectionTimeSignatures:
			seg, err := parseSegment(text)
			if err != nil {
				skip(err)
				continue
			}
			p.Segments = append(p.Segments, seg)

		case SectionTimingPoints:
			line, err := parseLine(text)
			if err != nil {
				skip(err)
				continue
			}
			if k := len(p.Points); k > 0 {
				prev := p.Points[k-1]
				if prev.Offset >= line.Offset || prev.Position >= line.Position {
					skip(ErrOutOfOrder)
					continue
				}
			}
			p.Points = append(p.Points, line)

		default:
			skip(ErrUnknownSection)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if !haveAudio {
		return nil, fmt.Errorf("%w: no [%s] entry", ErrAudioNotFound, SectionAudioPath)
	}

	// Only the last point carries a free tempo.
	for i := 0; i+1 < len(p.Points); i++ {
		p.Points[i].MPS = 0
		p.Points[i].HasMPS = false
	}
	return p, nil
}

func header(text string) (string, bool) {
	if !strings.HasPrefix(text, "[") || !strings.HasSuffix(text, "]") {
		return "", false
	}
	return strings.TrimSpace(text[1 : len(text)-1]), true
}

func parseSegment(text string) (timeline.Segment, error) {
	fields := strings.Split(text, fieldSeparator)
	if len(fields) != 3 {
		return timeline.Segment{}, fmt.Errorf("%w: want 3 fields, got %d", ErrMalformedLine, len(fields))
	}

	measure, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil || measure < 0 {
		return timeline.Segment{}, fmt.Errorf("%w: measure %q", ErrMalformedLine, fields[0])
	}
	ts, err := parseSignature(fields[1], fields[2])
	if err != nil {
		return timeline.Segment{}, err
	}
	return timeline.Segment{Measure: measure, TimeSignature: ts}, nil
}

func parseLine(text string) (Line, error) {
	fields := strings.Split(text, fieldSeparator)
	if len(fields) != 4 && len(fields) != 5 {
		return Line{}, fmt.Errorf("%w: want 4 or 5 fields, got %d", ErrMalformedLine, len(fields))
	}

	offset, err := parseFloat(fields[0])
	if err != nil {
		return Line{}, err
	}
	pos, err := parseFloat(fields[1])
	if err != nil {
		return Line{}, err
	}
	ts, err := parseSignature(fields[2], fields[3])
	if err != nil {
		return Line{}, err
	}

	line := Line{Offset: offset, Position: pos, TimeSignature: ts}
	if len(fields) == 5 {
		mps, err := parseFloat(fields[4])
		if err != nil {
			return Line{}, err
		}
		if mps <= 0 {
			return Line{}, fmt.Errorf("%w: tempo %g", ErrMalformedLine, mps)
		}
		line.MPS = mps
		line.HasMPS = true
	}
	return line, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: number %q", ErrMalformedLine, s)
	}
	return v, nil
}

func parseSignature(num, denom string) (point.TimeSignature, error) {
	n, err1 := strconv.ParseUint(strings.TrimSpace(num), 10, 32)
	d, err2 := strconv.ParseUint(strings.TrimSpace(denom), 10, 32)
	if err1 != nil || err2 != nil {
		return point.TimeSignature{}, fmt.Errorf("%w: signature %s/%s", ErrMalformedLine, num, denom)
	}
	ts := point.NewTimeSignature(uint32(n), uint32(d))
	if !ts.IsValid() {
		return point.TimeSignature{}, fmt.Errorf("%w: signature %s", ErrMalformedLine, ts)
	}
	return ts, nil
}
