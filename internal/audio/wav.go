package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotWAV is returned when the data has no RIFF/WAVE header.
	ErrNotWAV = errors.New("not a RIFF/WAVE stream")

	// ErrUnsupportedFormat is returned for anything but 16-bit PCM.
	ErrUnsupportedFormat = errors.New("unsupported WAV format")

	// ErrNoData is returned when the stream has no data chunk.
	ErrNoData = errors.New("WAV stream has no data chunk")
)

// Format describes signed little-endian PCM.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// FrameSize returns the bytes per frame across all channels.
func (f Format) FrameSize() int {
	return f.BitDepth / 8 * f.Channels
}

// PCM is decoded audio ready for playback.
type PCM struct {
	Format Format
	Data   []byte
}

// Duration returns the playback length.
func (p PCM) Duration() time.Duration {
	fs := p.Format.FrameSize()
	if fs == 0 || p.Format.SampleRate == 0 {
		return 0
	}
	frames := len(p.Data) / fs
	return time.Duration(frames) * time.Second / time.Duration(p.Format.SampleRate)
}

// ParseWAV decodes a RIFF/WAVE buffer holding 16-bit PCM. espeak-ng
// writes 0xFFFFFFFF as the data size when streaming to stdout, so the data
// chunk is clamped to the bytes actually present.
func ParseWAV(b []byte) (PCM, error) {
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return PCM{}, ErrNotWAV
	}

	var (
		format  Format
		haveFmt bool
		pos     = 12
	)
	for pos+8 <= len(b) {
		id := string(b[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(b[pos+4 : pos+8]))
		body := pos + 8

		switch id {
		case "fmt ":
			if size < 16 || body+16 > len(b) {
				return PCM{}, fmt.Errorf("%w: short fmt chunk", ErrUnsupportedFormat)
			}
			audioFormat := binary.LittleEndian.Uint16(b[body:])
			format = Format{
				Channels:   int(binary.LittleEndian.Uint16(b[body+2:])),
				SampleRate: int(binary.LittleEndian.Uint32(b[body+4:])),
				BitDepth:   int(binary.LittleEndian.Uint16(b[body+14:])),
			}
			if audioFormat != 1 || format.BitDepth != 16 || format.Channels < 1 || format.SampleRate <= 0 {
				return PCM{}, fmt.Errorf("%w: format=%d bits=%d channels=%d", ErrUnsupportedFormat, audioFormat, format.BitDepth, format.Channels)
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return PCM{}, fmt.Errorf("%w: data before fmt", ErrUnsupportedFormat)
			}
			end := body + size
			if size < 0 || end > len(b) || end < body {
				end = len(b)
			}
			data := b[body:end]
			data = data[:len(data)-len(data)%format.FrameSize()]
			return PCM{Format: format, Data: data}, nil
		}

		// Chunks are word aligned.
		pos = body + size + size%2
		if pos < body {
			break
		}
	}
	return PCM{}, ErrNoData
}

// Resample converts p to rate using linear interpolation. Channel count
// and bit depth are kept.
func Resample(p PCM, rate int) PCM {
	if p.Format.SampleRate == rate || rate <= 0 || len(p.Data) == 0 {
		return p
	}

	ch := p.Format.Channels
	inFrames := len(p.Data) / p.Format.FrameSize()
	ratio := float64(rate) / float64(p.Format.SampleRate)
	outFrames := int(float64(inFrames) * ratio)
	out := make([]byte, outFrames*p.Format.FrameSize())

	sample := func(frame, c int) float64 {
		off := (frame*ch + c) * 2
		return float64(int16(binary.LittleEndian.Uint16(p.Data[off:])))
	}

	for i := 0; i < outFrames; i++ {
		pos := float64(i) / ratio
		idx := int(pos)
		frac := pos - float64(idx)
		for c := 0; c < ch; c++ {
			v := sample(min(idx, inFrames-1), c)
			if idx+1 < inFrames {
				v = v*(1-frac) + sample(idx+1, c)*frac
			}
			binary.LittleEndian.PutUint16(out[(i*ch+c)*2:], uint16(int16(v)))
		}
	}

	f := p.Format
	f.SampleRate = rate
	return PCM{Format: f, Data: out}
}
