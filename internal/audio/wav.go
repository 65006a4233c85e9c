package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// WAVInfo describes a WAVE stream from its header.
type WAVInfo struct {
	Channels      int
	Rate          int
	BitsPerSample int
	DataBytes     int64
}

// SampleRate implements Source.
func (w WAVInfo) SampleRate() int { return w.Rate }

// LengthInSeconds implements Source.
func (w WAVInfo) LengthInSeconds() float64 {
	frame := int64(w.Channels) * int64(w.BitsPerSample/8)
	if frame == 0 || w.Rate == 0 {
		return 0
	}
	return float64(w.DataBytes/frame) / float64(w.Rate)
}

type chunkHeader struct {
	ID   [4]byte
	Size uint32
}

type fmtChunk struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// ProbeWAV reads a RIFF/WAVE header from r. Only the fmt and data chunk
// headers are read; sample data is skipped.
func ProbeWAV(r io.Reader) (WAVInfo, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return WAVInfo{}, fmt.Errorf("reading RIFF header: %w", err)
	}
	if !bytes.Equal(riff[0:4], []byte("RIFF")) || !bytes.Equal(riff[8:12], []byte("WAVE")) {
		return WAVInfo{}, ErrNotWAV
	}

	var info WAVInfo
	haveFmt := false
	for {
		var hdr chunkHeader
		if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
			return WAVInfo{}, fmt.Errorf("reading chunk header: %w", err)
		}

		switch string(hdr.ID[:]) {
		case "fmt ":
			var f fmtChunk
			if hdr.Size < 16 {
				return WAVInfo{}, ErrUnsupportedFormat
			}
			if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
				return WAVInfo{}, fmt.Errorf("reading fmt chunk: %w", err)
			}
			if err := skip(r, int64(hdr.Size)-16+int64(hdr.Size%2)); err != nil {
				return WAVInfo{}, err
			}
			info.Channels = int(f.Channels)
			info.Rate = int(f.SampleRate)
			info.BitsPerSample = int(f.BitsPerSample)
			haveFmt = true
		case "data":
			if !haveFmt || info.BitsPerSample%8 != 0 || info.BitsPerSample == 0 {
				return WAVInfo{}, ErrUnsupportedFormat
			}
			info.DataBytes = int64(hdr.Size)
			return info, nil
		default:
			if err := skip(r, int64(hdr.Size)+int64(hdr.Size%2)); err != nil {
				return WAVInfo{}, err
			}
		}
	}
}

// ProbeWAVFile opens path and probes its header.
func ProbeWAVFile(path string) (WAVInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return WAVInfo{}, err
	}
	defer f.Close()

	info, err := ProbeWAV(f)
	if err != nil {
		return WAVInfo{}, fmt.Errorf("probing %s: %w", path, err)
	}
	return info, nil
}

func skip(r io.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	if _, err := io.CopyN(io.Discard, r, n); err != nil {
		return fmt.Errorf("skipping chunk: %w", err)
	}
	return nil
}
