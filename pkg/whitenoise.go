package trials

// WhiteNoiseTokenizer handles fixed-length white noise bursts. The mark channel
// of these blocks may carry the noise itself, so onsets are filtered again
// and their count is only checked loosely.
type WhiteNoiseTokenizer struct{}

func (WhiteNoiseTokenizer) Columns() []TrialColumn {
	return []TrialColumn{sbColumn}
}

// RefineOnsets drops crossings closer than twice the stimulus duration.
func (WhiteNoiseTokenizer) RefineOnsets(onsets []float64, protocol StimulusProtocol) []float64 {
	return EnforceMinSeparation(onsets, 2*protocol.StimulusDuration())
}

func (WhiteNoiseTokenizer) Tokenize(onsets []float64, protocol StimulusProtocol, recEnd float64, diags *Diagnostics) ([]TrialInterval, error) {
	duration := protocol.StimulusDuration()
	tl := newTimeline(recEnd, diags)

	if len(onsets) > 0 {
		tl.add(0, onsets[0], LabelBaseline, nil)
	}
	for _, onset := range onsets {
		tl.add(onset, onset+duration, LabelStimulus, nil)
		if protocol.BaselineStart != protocol.BaselineEnd {
			tl.add(onset+protocol.BaselineStart, onset+protocol.BaselineEnd, LabelBaseline, nil)
		}
	}
	tl.fillTo(nil)
	return tl.intervals, nil
}
