package trials

// DetectEvents returns the times (in seconds from the first sample) at which
// the mark track rises above threshold. The comparison is strict, and the
// signal is treated as if it were preceded by a single zero sample, so a track
// that starts above threshold yields an onset at time 0.
func DetectEvents(track MarkTrack, threshold float64) []float64 {
	onsets := make([]float64, 0)
	if track.SampleRate <= 0 {
		return onsets
	}

	// Padding sample
	previous := 0.0 > threshold
	for i, sample := range track.Samples {
		above := sample > threshold
		if above && !previous {
			onsets = append(onsets, float64(i)/track.SampleRate)
		}
		previous = above
	}
	return onsets
}

// EnforceMinSeparation drops every onset closer than minSeparation to the last
// onset that was kept. A non-positive minSeparation disables the filter. The
// input slice is not modified.
func EnforceMinSeparation(onsets []float64, minSeparation float64) []float64 {
	kept := make([]float64, 0, len(onsets))
	if minSeparation <= 0 {
		return append(kept, onsets...)
	}
	for _, onset := range onsets {
		if len(kept) > 0 && onset-kept[len(kept)-1] < minSeparation {
			continue
		}
		kept = append(kept, onset)
	}
	return kept
}

// Detect runs threshold detection followed by the minimum separation filter.
func Detect(track MarkTrack, threshold float64, minSeparation float64) []float64 {
	return EnforceMinSeparation(DetectEvents(track, threshold), minSeparation)
}
