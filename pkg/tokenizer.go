package trials

import (
	"errors"
	"fmt"
)

// Tokenizer turns stimulus onsets into an ordered list of trial intervals
// covering [0, recEnd].
type Tokenizer interface {
	Tokenize(onsets []float64, protocol StimulusProtocol, recEnd float64, diags *Diagnostics) ([]TrialInterval, error)
	// Columns lists the trial table columns filled by this tokenizer.
	Columns() []TrialColumn
}

// OnsetRefiner is implemented by tokenizers that need to filter the detected
// onsets again before they are validated.
type OnsetRefiner interface {
	RefineOnsets(onsets []float64, protocol StimulusProtocol) []float64
}

// StimulusValues holds the per-trial values loaded from a protocol's parameter
// file. Only the field matching the protocol kind is used.
type StimulusValues struct {
	Tones           []ToneParameter
	SampleFilenames []string
}

var errNoParameterTable = errors.New("no parameter table loaded")

// NewTokenizer returns the tokenizer for the protocol's resolved kind.
func NewTokenizer(protocol StimulusProtocol, values StimulusValues) (Tokenizer, error) {
	switch protocol.Kind {
	case KindContinuous:
		return ContinuousTokenizer{}, nil
	case KindTone:
		if values.Tones == nil {
			return nil, &ErrMissingParameterData{Protocol: protocol.Name, Path: protocol.StimValuesPath, Err: errNoParameterTable}
		}
		return &ToneTokenizer{Parameters: values.Tones}, nil
	case KindTimit:
		if values.SampleFilenames == nil {
			return nil, &ErrMissingParameterData{Protocol: protocol.Name, Path: protocol.StimValuesPath, Err: errNoParameterTable}
		}
		return &TimitTokenizer{SampleFilenames: values.SampleFilenames}, nil
	case KindWhiteNoise:
		return WhiteNoiseTokenizer{}, nil
	}
	return nil, fmt.Errorf("stimulus %q: unsupported protocol kind %v", protocol.Name, protocol.Kind)
}

func checkParameterCount(protocol StimulusProtocol, onsets, parameters int) error {
	if onsets == parameters {
		return nil
	}
	return &ErrMissingParameterData{
		Protocol: protocol.Name,
		Path:     protocol.StimValuesPath,
		Err:      &ErrTrialCountMismatch{Onsets: onsets, Parameters: parameters},
	}
}
