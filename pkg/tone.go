package trials

// ToneParameter is the amplitude and frequency of one tone pip.
type ToneParameter struct {
	Amplitude float64
	Frequency float64
}

// ToneTokenizer splits every tone trial into pre-stimulus baseline, tone and
// post-stimulus baseline.
type ToneTokenizer struct {
	Parameters []ToneParameter
}

const toneBaselineValue = "nan"

func (t *ToneTokenizer) Columns() []TrialColumn {
	return []TrialColumn{
		sbColumn,
		{Name: ColumnFrequency, Description: "Stimulus Frequency"},
		{Name: ColumnAmplitude, Description: "Stimulus Amplitude"},
	}
}

func (t *ToneTokenizer) Tokenize(onsets []float64, protocol StimulusProtocol, recEnd float64, diags *Diagnostics) ([]TrialInterval, error) {
	if err := checkParameterCount(protocol, len(onsets), len(t.Parameters)); err != nil {
		return nil, err
	}

	baseline := map[string]string{ColumnFrequency: toneBaselineValue, ColumnAmplitude: toneBaselineValue}
	duration := protocol.StimulusDuration()
	tl := newTimeline(recEnd, diags)

	if len(onsets) > 0 {
		tl.add(0, onsets[0], LabelBaseline, baseline)
	}
	for i, onset := range onsets {
		toneStart := onset + protocol.BaselineStart
		toneStop := toneStart + duration
		tone := map[string]string{
			ColumnFrequency: formatValue(t.Parameters[i].Frequency),
			ColumnAmplitude: formatValue(t.Parameters[i].Amplitude),
		}
		tl.yield(onset)
		tl.add(onset, toneStart, LabelBaseline, baseline)
		tl.add(toneStart, toneStop, LabelStimulus, tone)
		tl.add(toneStop, toneStop+protocol.BaselineEnd, LabelBaseline, baseline)
	}
	tl.fillTo(baseline)
	return tl.intervals, nil
}
