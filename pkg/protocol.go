package trials

import (
	"errors"
	"fmt"
	"strings"
)

// ProtocolKind selects the tokenizer used for a stimulus protocol.
type ProtocolKind int

const (
	KindContinuous ProtocolKind = iota
	KindTone
	KindTimit
	KindWhiteNoise
)

var protocolKindStrings = []string{
	"continuous",
	"tone",
	"timit",
	"white-noise",
}

func (k ProtocolKind) String() string {
	if k < KindContinuous || k > KindWhiteNoise {
		return "unknown"
	}
	return protocolKindStrings[k]
}

type StimulusType string

const (
	StimulusDiscrete   StimulusType = "discrete"
	StimulusContinuous StimulusType = "continuous"
)

func (t StimulusType) IsValid() bool {
	return t == StimulusDiscrete || t == StimulusContinuous
}

const (
	// BaselineStimulus is the name of the null stimulus used for blocks recorded
	// without any stimulus presentation.
	BaselineStimulus = "baseline"

	// WhiteNoiseMarkThreshold replaces the configured threshold when the white
	// noise waveform itself is recorded on the mark channel.
	WhiteNoiseMarkThreshold = 0.25

	// DefaultToneAmplitudeOffset is added to the amplitude column of tone
	// parameter tables. Inherited from the legacy MARS pipeline; its physical
	// meaning still needs confirmation.
	DefaultToneAmplitudeOffset = 8.0
)

// StimulusProtocol describes one stimulus paradigm. It is loaded once per
// conversion and not modified afterwards.
type StimulusProtocol struct {
	Name               string       `yaml:"name"`
	Aliases            []string     `yaml:"aliases"`
	Description        string       `yaml:"description"`
	Type               StimulusType `yaml:"type"`
	MarkThreshold      float64      `yaml:"mark_threshold"`
	MarkOffset         float64      `yaml:"mark_offset"`
	Duration           *float64     `yaml:"duration"`
	BaselineStart      float64      `yaml:"baseline_start"`
	BaselineEnd        float64      `yaml:"baseline_end"`
	FirstMark          float64      `yaml:"first_mark"`
	ExpectedTrialCount *int         `yaml:"expected_trial_count"`
	PlayLength         float64      `yaml:"play_length"`
	AudioPath          string       `yaml:"audio_path"`
	StimValuesPath     string       `yaml:"stim_values_path"`
	MinSeparation      float64      `yaml:"min_separation"`
	UseLoggedEvents    bool         `yaml:"use_logged_events"`
	MarkIsStimulus     bool         `yaml:"mark_is_stimulus"`
	TolerantOnsetCount bool         `yaml:"tolerant_onset_count"`
	AmplitudeOffset    *float64     `yaml:"amplitude_offset"`

	Kind ProtocolKind `yaml:"-"`
}

// ResolveProtocolKind maps a stimulus name and type to a tokenizer family.
func ResolveProtocolKind(name string, stimType StimulusType) (ProtocolKind, error) {
	if stimType == StimulusContinuous || name == BaselineStimulus {
		return KindContinuous, nil
	}
	switch {
	case strings.Contains(name, "tone"):
		return KindTone, nil
	case strings.Contains(name, "timit"):
		return KindTimit, nil
	case strings.Contains(name, "wn"):
		return KindWhiteNoise, nil
	}
	return KindContinuous, &ErrUnknownProtocol{Name: name}
}

// Resolve fills in Kind. It must be called once after the protocol is loaded.
func (p *StimulusProtocol) Resolve() error {
	kind, err := ResolveProtocolKind(p.Name, p.Type)
	if err != nil {
		return err
	}
	p.Kind = kind
	return nil
}

func (p StimulusProtocol) IsBaseline() bool {
	return p.Name == BaselineStimulus
}

// StimulusDuration returns the configured duration, or 0 when unset.
func (p StimulusProtocol) StimulusDuration() float64 {
	if p.Duration == nil {
		return 0
	}
	return *p.Duration
}

// EffectiveThreshold is the threshold actually applied to the mark track.
func (p StimulusProtocol) EffectiveThreshold() float64 {
	if p.Kind == KindWhiteNoise && p.MarkIsStimulus {
		return WhiteNoiseMarkThreshold
	}
	return p.MarkThreshold
}

// TolerantCount reports whether an onset count mismatch is only a warning.
func (p StimulusProtocol) TolerantCount() bool {
	return p.Kind == KindWhiteNoise || p.TolerantOnsetCount
}

func (p StimulusProtocol) ToneAmplitudeOffset() float64 {
	if p.AmplitudeOffset == nil {
		return DefaultToneAmplitudeOffset
	}
	return *p.AmplitudeOffset
}

// Validate checks that the protocol holds a coherent set of values. Kind must
// already be resolved. All problems found are returned joined.
func (p StimulusProtocol) Validate() error {
	var errs []error
	invalid := func(field, format string, args ...any) {
		errs = append(errs, &ErrInvalidProtocol{Name: p.Name, Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	if p.Name == "" {
		invalid("name", "is required")
	}
	if p.Type != "" && !p.Type.IsValid() {
		invalid("type", "%q is invalid; valid values: discrete, continuous", p.Type)
	}
	if p.Duration != nil && *p.Duration < 0 {
		invalid("duration", "%g must not be negative", *p.Duration)
	}
	if p.ExpectedTrialCount != nil && *p.ExpectedTrialCount < 0 {
		invalid("expected_trial_count", "%d must not be negative", *p.ExpectedTrialCount)
	}
	if p.PlayLength < 0 {
		invalid("play_length", "%g must not be negative", p.PlayLength)
	}
	if p.MinSeparation < 0 {
		invalid("min_separation", "%g must not be negative", p.MinSeparation)
	}

	switch p.Kind {
	case KindTone:
		if p.Duration == nil {
			invalid("duration", "is required for tone stimuli")
		}
		if p.BaselineStart < 0 || p.BaselineEnd < 0 {
			invalid("baseline", "tone baseline windows must not be negative")
		}
	case KindWhiteNoise:
		if p.Duration == nil || *p.Duration <= 0 {
			invalid("duration", "a positive duration is required for white noise stimuli")
			break
		}
		if p.BaselineStart != p.BaselineEnd {
			if !(*p.Duration <= p.BaselineStart && p.BaselineStart < p.BaselineEnd) {
				invalid("baseline", "baseline period should start after the stimulus; got duration=%g, baseline_start=%g, baseline_end=%g",
					*p.Duration, p.BaselineStart, p.BaselineEnd)
			}
		}
	}
	return errors.Join(errs...)
}
