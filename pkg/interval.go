package trials

import (
	"strconv"

	"golang.org/x/exp/maps"
)

type Label int

const (
	LabelBaseline Label = iota
	LabelStimulus
)

func (l Label) String() string {
	if l == LabelStimulus {
		return "stimulus"
	}
	return "baseline"
}

// Code is the single-letter value stored in the sb trial column.
func (l Label) Code() string {
	if l == LabelStimulus {
		return "s"
	}
	return "b"
}

// TrialInterval is one labeled period of the recording.
type TrialInterval struct {
	StartTime  float64
	StopTime   float64
	Label      Label
	Attributes map[string]string
}

func (t TrialInterval) Duration() float64 {
	return t.StopTime - t.StartTime
}

// TrialColumn describes a protocol-specific column of the trials table.
type TrialColumn struct {
	Name        string
	Description string
}

const (
	ColumnStimulusOrBaseline = "sb"
	ColumnStimulusName       = "stim_name"
	ColumnFrequency          = "frq"
	ColumnAmplitude          = "amp"
	ColumnSampleFilename     = "sample_filename"
)

var sbColumn = TrialColumn{Name: ColumnStimulusOrBaseline, Description: "Stimulus (s) or baseline (b) period"}

// timeline accumulates intervals for one recording. Intervals are clipped to
// [previous stop, end] and dropped when nothing is left of them. Baselines
// give way to stimuli: a stimulus starting inside a trailing baseline cuts
// that baseline back to its own start.
type timeline struct {
	end       float64
	intervals []TrialInterval
	diags     *Diagnostics
}

func newTimeline(recEnd float64, diags *Diagnostics) *timeline {
	return &timeline{end: recEnd, intervals: make([]TrialInterval, 0), diags: diags}
}

func (t *timeline) add(start, stop float64, label Label, attributes map[string]string) {
	if label == LabelStimulus {
		t.yield(start)
	}
	if n := len(t.intervals); n > 0 && start < t.intervals[n-1].StopTime {
		start = t.intervals[n-1].StopTime
	}
	if start < 0 {
		start = 0
	}
	if stop > t.end {
		stop = t.end
	}
	if !(stop > start) {
		return
	}
	t.intervals = append(t.intervals, TrialInterval{
		StartTime:  start,
		StopTime:   stop,
		Label:      label,
		Attributes: maps.Clone(attributes),
	})
}

// yield cuts trailing baseline intervals back to at. Baselines that start at
// or after at are removed. Stimulus intervals are never touched.
func (t *timeline) yield(at float64) {
	for n := len(t.intervals); n > 0; n = len(t.intervals) {
		last := &t.intervals[n-1]
		if last.Label != LabelBaseline || !(last.StopTime > at) {
			return
		}
		if last.StartTime >= at {
			t.diags.Warnf("tokenizer", "baseline [%.6f, %.6f) dropped, the next trial starts at %.6f",
				last.StartTime, last.StopTime, at)
			t.intervals = t.intervals[:n-1]
			continue
		}
		cut := last.StopTime - at
		t.diags.Warnf("tokenizer", "baseline [%.6f, %.6f) cut by %.6f s of %.6f s, the next trial starts at %.6f",
			last.StartTime, last.StopTime, cut, last.Duration(), at)
		last.StopTime = at
		return
	}
}

// lastStop is the stop time of the last interval, or 0 for an empty timeline.
func (t *timeline) lastStop() float64 {
	if len(t.intervals) == 0 {
		return 0
	}
	return t.intervals[len(t.intervals)-1].StopTime
}

// fillTo closes the timeline with a baseline interval up to the recording end.
func (t *timeline) fillTo(attributes map[string]string) {
	t.add(t.lastStop(), t.end, LabelBaseline, attributes)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
