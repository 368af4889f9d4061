package trials

// AudioStartTime positions the start of the stimulus audio file on the
// recording clock. markOffset is the delay between a mark crossing and the
// true stimulus onset, firstMark the delay between the start of the audio file
// and its first mark pulse.
func AudioStartTime(firstOnset, markOffset, firstMark float64) float64 {
	return firstOnset - markOffset - firstMark
}

// ComputeAudioStart returns the audio start time for a block and whether it
// was measured from an onset. Without onsets it falls back to 0.
func ComputeAudioStart(onsets []float64, protocol StimulusProtocol) (float64, bool) {
	if len(onsets) == 0 {
		return 0.0, false
	}
	return AudioStartTime(onsets[0], protocol.MarkOffset, protocol.FirstMark), true
}

// AudioEndTime is the time, on the recording clock, at which audio playback ends.
func AudioEndTime(firstOnset float64, protocol StimulusProtocol) float64 {
	return firstOnset - protocol.FirstMark + protocol.PlayLength
}
