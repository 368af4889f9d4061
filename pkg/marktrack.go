package trials

// MarkTrack is the analog mark signal recorded next to the neural data. It is
// treated as read-only once captured.
type MarkTrack struct {
	Samples    []float64
	SampleRate float64
	// StartTime is the starting time of the mark series in the output file.
	// Onset times are always relative to the first sample.
	StartTime float64
}

func NewMarkTrack(samples []float64, sampleRate float64) (MarkTrack, error) {
	if !(sampleRate > 0) {
		return MarkTrack{}, &ErrInvalidMarkTrack{SampleRate: sampleRate}
	}
	return MarkTrack{Samples: samples, SampleRate: sampleRate}, nil
}

func (m MarkTrack) NumSamples() int {
	return len(m.Samples)
}

// EndTime returns the recording duration covered by the mark track, in seconds.
func (m MarkTrack) EndTime() float64 {
	if m.SampleRate <= 0 {
		return 0
	}
	return float64(len(m.Samples)) / m.SampleRate
}
