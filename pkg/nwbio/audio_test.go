package nwbio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeWav(t *testing.T, path string, sampleRate, numSamples int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	encoder := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, numSamples),
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestWavPlayLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stim.wav")
	writeWav(t, path, 8000, 12000)

	length, err := WavPlayLength(path)
	if err != nil {
		t.Fatalf("WavPlayLength: %v", err)
	}
	if math.Abs(length-1.5) > 1e-6 {
		t.Errorf("play length = %g, want 1.5", length)
	}
}

func TestWavPlayLengthInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stim.wav")
	if err := os.WriteFile(path, []byte("not a wav file"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := WavPlayLength(path); err == nil {
		t.Error("expected an error for an invalid WAV file")
	}
}
