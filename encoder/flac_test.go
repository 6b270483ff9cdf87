package encoder

import (
	"os"
	"path/filepath"
	"testing"
)

func sineBlock(n, channels int) []int16 {
	block := make([]int16, n*channels)
	for i := range block {
		block[i] = int16((i % 200) * 100)
	}
	return block
}

func TestFlacEncoder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.flac")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc, err := NewFlac(f, SampleRate, Channels)
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}

	var totalFed uint64
	for i := 0; i < 3; i++ {
		block := sineBlock(BlockSize, Channels)
		if err := enc.EncodeBlock(block); err != nil {
			t.Fatalf("EncodeBlock %d: %v", i, err)
		}
		totalFed += BlockSize
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if enc.TotalFrames() != totalFed {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), totalFed)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 4 || string(data[:4]) != "fLaC" {
		t.Fatal("output does not start with FLAC magic")
	}
}

func TestFlacEncoderStereoPartialBlock(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "rec.flac"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc, err := NewFlac(f, SampleRate, 2)
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}

	partial := sineBlock(BlockSize/4, 2)
	if err := enc.EncodeBlock(partial); err != nil {
		t.Fatalf("EncodeBlock partial: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if enc.TotalFrames() != BlockSize/4 {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), BlockSize/4)
	}
}
