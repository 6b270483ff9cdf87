package encoder

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavPCM = 1

type WavEncoder struct {
	enc         *wav.Encoder
	format      *audio.Format
	buf         []int
	channels    int
	totalFrames uint64
}

func NewWav(w io.WriteSeeker, sampleRate, channels int) *WavEncoder {
	return &WavEncoder{
		enc:      wav.NewEncoder(w, sampleRate, BitsPerSample, channels, wavPCM),
		format:   &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		channels: channels,
	}
}

func (e *WavEncoder) EncodeBlock(block []int16) error {
	e.buf = e.buf[:0]
	for _, s := range block {
		e.buf = append(e.buf, int(s))
	}
	ib := &audio.IntBuffer{Format: e.format, Data: e.buf, SourceBitDepth: BitsPerSample}
	if err := e.enc.Write(ib); err != nil {
		return fmt.Errorf("writing wav block: %w", err)
	}
	e.totalFrames += uint64(len(block) / e.channels)
	return nil
}

// Close finalizes the RIFF header sizes; the underlying writer stays open.
func (e *WavEncoder) Close() error {
	return e.enc.Close()
}

func (e *WavEncoder) TotalFrames() uint64 {
	return e.totalFrames
}

// ReadPCM decodes a 16-bit PCM WAV file into little-endian bytes.
func ReadPCM(path string) (pcm []byte, sampleRate, channels int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("%s: not a valid wav file", path)
	}
	if d.BitDepth != BitsPerSample {
		return nil, 0, 0, fmt.Errorf("%s: %d-bit wav not supported", path, d.BitDepth)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decoding %s: %w", path, err)
	}

	pcm = make([]byte, len(buf.Data)*2)
	for i, s := range buf.Data {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(s)))
	}
	return pcm, int(d.SampleRate), int(d.NumChans), nil
}
