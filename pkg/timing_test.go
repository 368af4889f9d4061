package trials

import "testing"

func TestAudioStartTime(t *testing.T) {
	if got := AudioStartTime(5.2, 0.05, 0.3); !approx(got, 4.85) {
		t.Errorf("AudioStartTime = %g, want 4.85", got)
	}
}

func TestComputeAudioStart(t *testing.T) {
	protocol := StimulusProtocol{MarkOffset: 0.05, FirstMark: 0.3}

	start, measured := ComputeAudioStart([]float64{5.2, 7}, protocol)
	if !measured || !approx(start, 4.85) {
		t.Errorf("ComputeAudioStart = %g, %v; want 4.85, true", start, measured)
	}

	start, measured = ComputeAudioStart(nil, protocol)
	if measured || start != 0 {
		t.Errorf("ComputeAudioStart without onsets = %g, %v; want 0, false", start, measured)
	}
}

func TestAudioEndTime(t *testing.T) {
	protocol := StimulusProtocol{FirstMark: 0.5, PlayLength: 100}
	if got := AudioEndTime(10, protocol); got != 109.5 {
		t.Errorf("AudioEndTime = %g, want 109.5", got)
	}
}
