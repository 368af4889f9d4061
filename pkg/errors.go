package trials

import "fmt"

// ErrOnsetCountMismatch is returned when the number of detected onsets does not
// agree with the number of trials the block is expected to contain.
type ErrOnsetCountMismatch struct {
	Expected int
	Found    int
	Block    string
	// AtLeast marks a lower bound rather than an exact count.
	AtLeast bool
}

func (e *ErrOnsetCountMismatch) Error() string {
	if e.AtLeast {
		return fmt.Sprintf("block %q: found %d stimulus onsets, expected at least %d", e.Block, e.Found, e.Expected)
	}
	return fmt.Sprintf("block %q: found %d stimulus onsets, expected %d", e.Block, e.Found, e.Expected)
}

// ErrUnknownProtocol is returned when a stimulus name cannot be mapped to a tokenizer.
type ErrUnknownProtocol struct {
	Name string
}

func (e *ErrUnknownProtocol) Error() string {
	return fmt.Sprintf("unknown stimulus protocol %q", e.Name)
}

// ErrMissingParameterData represents a failure to obtain per-trial stimulus values.
type ErrMissingParameterData struct {
	Protocol string
	Path     string
	Err      error
}

func (e *ErrMissingParameterData) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("stimulus %q: missing parameter data: %v", e.Protocol, e.Err)
	}
	return fmt.Sprintf("stimulus %q: missing parameter data from %q: %v", e.Protocol, e.Path, e.Err)
}

func (e *ErrMissingParameterData) Unwrap() error {
	return e.Err
}

// ErrTrialCountMismatch represents a parameter table whose length differs from
// the number of onsets.
type ErrTrialCountMismatch struct {
	Onsets     int
	Parameters int
}

func (e *ErrTrialCountMismatch) Error() string {
	return fmt.Sprintf("%d onsets but %d stimulus parameter entries", e.Onsets, e.Parameters)
}

// ErrInvalidProtocol represents an inconsistent protocol configuration.
type ErrInvalidProtocol struct {
	Name   string
	Field  string
	Reason string
}

func (e *ErrInvalidProtocol) Error() string {
	return fmt.Sprintf("stimulus %q: %s: %s", e.Name, e.Field, e.Reason)
}

// ErrInvalidMarkTrack represents a mark track that cannot be sampled in time.
type ErrInvalidMarkTrack struct {
	SampleRate float64
}

func (e *ErrInvalidMarkTrack) Error() string {
	return fmt.Sprintf("invalid mark track sample rate %g", e.SampleRate)
}
