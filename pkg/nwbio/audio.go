package nwbio

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// WavPlayLength returns the duration of a WAV file in seconds.
func WavPlayLength(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &ErrOpenFile{Filename: path, Err: err}
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return 0, fmt.Errorf("'%s' is not a valid WAV file", path)
	}
	duration, err := decoder.Duration()
	if err != nil {
		return 0, fmt.Errorf("read duration of '%s': %w", path, err)
	}
	return duration.Seconds(), nil
}
