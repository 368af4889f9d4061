package main

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	trials "github.com/Taiyounomiya/nsds-lab-to-nwb/pkg"
)

type BlockOutcome struct {
	Block  string
	Result *trials.TokenizationResult
	Err    error
}

type blockConverter interface {
	ConvertBlock(name string) (*trials.TokenizationResult, error)
}

func worker(ctx context.Context, id int, conv blockConverter, logger Logger, jobs <-chan int, blocks []string, outcomes []BlockOutcome) {
	for i := range jobs {
		if ctx.Err() != nil {
			outcomes[i] = BlockOutcome{Block: blocks[i], Err: ctx.Err()}
			continue
		}
		outcomes[i] = convertSafely(id, conv, logger, blocks[i])
	}
}

func convertSafely(id int, conv blockConverter, logger Logger, block string) (outcome BlockOutcome) {
	outcome.Block = block
	defer func() {
		if r := recover(); r != nil {
			outcome.Result = nil
			outcome.Err = fmt.Errorf("worker %d recovered from panic on block %s: %v", id, block, r)
		}
	}()
	logger.Info(fmt.Sprintf("Worker %d processing block %s", id, block), "workers")
	outcome.Result, outcome.Err = conv.ConvertBlock(block)
	return outcome
}

// runBatch converts blocks with numWorkers workers. A failed block does not
// stop the others; its error is reported in its outcome.
func runBatch(ctx context.Context, conv blockConverter, logger Logger, blocks []string, numWorkers int) ([]BlockOutcome, error) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	outcomes := make([]BlockOutcome, len(blocks))
	jobs := make(chan int)

	g, ctx := errgroup.WithContext(ctx)
	for id := 0; id < numWorkers; id++ {
		g.Go(func() error {
			worker(ctx, id, conv, logger, jobs, blocks, outcomes)
			return nil
		})
	}
	g.Go(func() error {
		defer close(jobs)
		for i := range blocks {
			if err := ctx.Err(); err != nil {
				return err
			}
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		for i := range outcomes {
			if outcomes[i].Block == "" {
				outcomes[i] = BlockOutcome{Block: blocks[i], Err: err}
			}
		}
		return outcomes, err
	}
	return outcomes, nil
}
