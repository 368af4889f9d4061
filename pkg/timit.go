package trials

// TimitTokenizer handles TIMIT sentence playback, where every sample lasts
// until the next onset.
type TimitTokenizer struct {
	SampleFilenames []string
}

const timitBaselineFilename = "none"

func (t *TimitTokenizer) Columns() []TrialColumn {
	return []TrialColumn{
		sbColumn,
		{Name: ColumnSampleFilename, Description: "Sample Filename"},
	}
}

func (t *TimitTokenizer) Tokenize(onsets []float64, protocol StimulusProtocol, recEnd float64, diags *Diagnostics) ([]TrialInterval, error) {
	if err := checkParameterCount(protocol, len(onsets), len(t.SampleFilenames)); err != nil {
		return nil, err
	}

	baseline := map[string]string{ColumnSampleFilename: timitBaselineFilename}
	tl := newTimeline(recEnd, diags)
	if len(onsets) == 0 {
		tl.fillTo(baseline)
		return tl.intervals, nil
	}

	audioEnd := AudioEndTime(onsets[0], protocol)
	tl.add(0, onsets[0], LabelBaseline, baseline)
	for i, onset := range onsets {
		stop := audioEnd
		if i+1 < len(onsets) {
			stop = onsets[i+1]
		}
		tl.add(onset, stop, LabelStimulus, map[string]string{ColumnSampleFilename: t.SampleFilenames[i]})
	}
	tl.fillTo(baseline)
	return tl.intervals, nil
}
