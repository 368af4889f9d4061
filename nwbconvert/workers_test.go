package main

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	trials "github.com/Taiyounomiya/nsds-lab-to-nwb/pkg"
)

type fakeConverter struct{}

func (fakeConverter) ConvertBlock(name string) (*trials.TokenizationResult, error) {
	switch name {
	case "fail":
		return nil, errors.New("no mark track")
	case "panic":
		panic("corrupt block")
	}
	return &trials.TokenizationResult{Block: name}, nil
}

func TestRunBatch(t *testing.T) {
	blocks := []string{"R1_B1", "fail", "R1_B2", "panic", "R1_B3"}
	logger := NewLogger(io.Discard, io.Discard)

	outcomes, err := runBatch(context.Background(), fakeConverter{}, logger, blocks, 3)
	if err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	if len(outcomes) != len(blocks) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(blocks))
	}
	for i, outcome := range outcomes {
		if outcome.Block != blocks[i] {
			t.Errorf("outcome %d is for %s, want %s", i, outcome.Block, blocks[i])
		}
		switch blocks[i] {
		case "fail":
			if outcome.Err == nil {
				t.Error("expected an error for the failing block")
			}
		case "panic":
			if outcome.Err == nil || !strings.Contains(outcome.Err.Error(), "recovered from panic") {
				t.Errorf("expected a recovered panic, got %v", outcome.Err)
			}
		default:
			if outcome.Err != nil || outcome.Result.Block != blocks[i] {
				t.Errorf("unexpected outcome %+v", outcome)
			}
		}
	}
}

func TestRunBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := runBatch(ctx, fakeConverter{}, NewLogger(io.Discard, io.Discard), []string{"R1_B1", "R1_B2"}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	for _, outcome := range outcomes {
		if outcome.Err == nil {
			t.Errorf("block %s converted after cancellation", outcome.Block)
		}
	}
}
