package encoder

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

// Format selects the container used for the transient recording file.
type Format string

const (
	FormatWAV  Format = "wav"
	FormatFLAC Format = "flac"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatWAV, "":
		return FormatWAV, nil
	case FormatFLAC:
		return FormatFLAC, nil
	default:
		return "", fmt.Errorf("unknown format %q (use wav or flac)", s)
	}
}

func (f Format) Ext() string {
	return "." + string(f)
}

type Encoder interface {
	// EncodeBlock takes interleaved samples; len(block) must be a multiple of the channel count.
	EncodeBlock(block []int16) error
	Close() error
	TotalFrames() uint64
}

func New(f Format, w io.WriteSeeker, sampleRate, channels int) (Encoder, error) {
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("unsupported channel count %d", channels)
	}
	switch f {
	case FormatWAV:
		return NewWav(w, sampleRate, channels), nil
	case FormatFLAC:
		return NewFlac(w, sampleRate, channels)
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
}

// WriteFile encodes little-endian 16-bit PCM into path and returns the frame count.
func WriteFile(path string, f Format, pcm []byte, sampleRate, channels int) (uint64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, err
	}

	enc, err := New(f, file, sampleRate, channels)
	if err != nil {
		file.Close()
		return 0, err
	}

	blockLen := BlockSize * channels
	block := make([]int16, 0, blockLen)
	for i := 0; i+1 < len(pcm); i += 2 {
		block = append(block, int16(binary.LittleEndian.Uint16(pcm[i:])))
		if len(block) == blockLen {
			if err := enc.EncodeBlock(block); err != nil {
				file.Close()
				return 0, err
			}
			block = block[:0]
		}
	}
	// Drop a trailing partial frame so every block stays channel-aligned.
	block = block[:len(block)-len(block)%channels]
	if len(block) > 0 {
		if err := enc.EncodeBlock(block); err != nil {
			file.Close()
			return 0, err
		}
	}

	if err := enc.Close(); err != nil {
		file.Close()
		return 0, err
	}
	if err := file.Close(); err != nil {
		return 0, err
	}
	return enc.TotalFrames(), nil
}
