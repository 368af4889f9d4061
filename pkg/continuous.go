package trials

// ContinuousTokenizer covers a block with a single stimulus period, such as a
// DMR presentation, or with a single baseline period for stimulus-free blocks.
type ContinuousTokenizer struct{}

func (ContinuousTokenizer) Columns() []TrialColumn {
	return []TrialColumn{
		sbColumn,
		{Name: ColumnStimulusName, Description: "Stimulus name"},
	}
}

func (ContinuousTokenizer) Tokenize(onsets []float64, protocol StimulusProtocol, recEnd float64, diags *Diagnostics) ([]TrialInterval, error) {
	tl := newTimeline(recEnd, diags)
	if protocol.IsBaseline() {
		tl.add(0, recEnd, LabelBaseline, map[string]string{ColumnStimulusName: protocol.Name})
		return tl.intervals, nil
	}

	// Only the first onset matters for a continuous stimulus
	if len(onsets) == 0 {
		return nil, &ErrOnsetCountMismatch{Expected: 1, Found: 0, AtLeast: true}
	}
	first := onsets[0]
	audioEnd := AudioEndTime(first, protocol)
	empty := map[string]string{ColumnStimulusName: ""}

	tl.add(0, first, LabelBaseline, empty)
	tl.add(first, min(audioEnd, recEnd), LabelStimulus, map[string]string{ColumnStimulusName: protocol.Name})
	if audioEnd < recEnd {
		tl.add(audioEnd, recEnd, LabelBaseline, empty)
	}
	return tl.intervals, nil
}
