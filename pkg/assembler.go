package trials

import (
	"errors"
	"fmt"
	"sort"
)

// Block is everything needed to tokenize one recording block. All inputs are
// fully loaded before tokenization starts.
type Block struct {
	Name     string
	Mark     MarkTrack
	Protocol StimulusProtocol
	Values   StimulusValues
	// LoggedEvents are onset times logged natively by the recording system,
	// nil when the source has none.
	LoggedEvents []float64
}

// TokenizationResult is the output handed to the file writer.
type TokenizationResult struct {
	Block              string
	Protocol           string
	Kind               ProtocolKind
	Onsets             []float64
	Trials             []TrialInterval
	Columns            []TrialColumn
	RecordingEndTime   float64
	AudioStartTime     float64
	AudioStartMeasured bool
	Diagnostics        Diagnostics
}

// AssembleTrials runs onset detection, validation, tokenization and timing
// reconciliation for a block. Any error aborts the block.
func AssembleTrials(block Block) (*TokenizationResult, error) {
	protocol := block.Protocol
	result := &TokenizationResult{
		Block:            block.Name,
		Protocol:         protocol.Name,
		Kind:             protocol.Kind,
		RecordingEndTime: block.Mark.EndTime(),
	}
	diags := &result.Diagnostics
	diags.Infof("assembler", "block %s: stimulus %s (%v), recording end %.3f s",
		block.Name, protocol.Name, protocol.Kind, result.RecordingEndTime)

	tokenizer, err := NewTokenizer(protocol, block.Values)
	if err != nil {
		return nil, err
	}

	onsets := stimulusOnsets(block, diags)
	if refiner, ok := tokenizer.(OnsetRefiner); ok {
		refined := refiner.RefineOnsets(onsets, protocol)
		if len(refined) != len(onsets) {
			diags.Infof("assembler", "block %s: dropped %d onsets closer than the protocol allows",
				block.Name, len(onsets)-len(refined))
		}
		onsets = refined
	}
	result.Onsets = onsets

	if err := ValidateOnsetCount(onsets, protocol.ExpectedTrialCount, protocol.TolerantCount(), block.Name, diags); err != nil {
		return nil, err
	}

	intervals, err := tokenizer.Tokenize(onsets, protocol, result.RecordingEndTime, diags)
	if err != nil {
		var mismatch *ErrOnsetCountMismatch
		if errors.As(err, &mismatch) && mismatch.Block == "" {
			mismatch.Block = block.Name
		}
		return nil, fmt.Errorf("tokenize block %s: %w", block.Name, err)
	}
	result.Trials = intervals
	result.Columns = tokenizer.Columns()
	diags.Infof("assembler", "block %s: %d onsets, %d trial intervals", block.Name, len(onsets), len(intervals))

	result.AudioStartTime, result.AudioStartMeasured = ComputeAudioStart(onsets, protocol)
	if !result.AudioStartMeasured {
		diags.Infof("timing", "block %s: no stimulus onset, audio start defaults to 0", block.Name)
	} else {
		diags.Debugf("timing", "block %s: audio starts at %.6f s", block.Name, result.AudioStartTime)
	}
	return result, nil
}

func stimulusOnsets(block Block, diags *Diagnostics) []float64 {
	protocol := block.Protocol
	if protocol.UseLoggedEvents {
		if block.LoggedEvents != nil {
			onsets := make([]float64, 0, len(block.LoggedEvents))
			sorted := append([]float64(nil), block.LoggedEvents...)
			sort.Float64s(sorted)
			for _, t := range sorted {
				if len(onsets) == 0 || t != onsets[len(onsets)-1] {
					onsets = append(onsets, t)
				}
			}
			diags.Infof("detector", "block %s: using %d logged events", block.Name, len(onsets))
			return EnforceMinSeparation(onsets, protocol.MinSeparation)
		}
		diags.Warnf("detector", "block %s: logged events requested but not available, detecting from the mark track", block.Name)
	}

	threshold := protocol.EffectiveThreshold()
	onsets := Detect(block.Mark, threshold, protocol.MinSeparation)
	diags.Infof("detector", "block %s: %d onsets above threshold %g", block.Name, len(onsets), threshold)
	return onsets
}
