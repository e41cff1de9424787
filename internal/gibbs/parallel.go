package gibbs

import (
	"context"
	"runtime"
	"sync"
)

// TrialItem identifies one trial of the search.
type TrialItem struct {
	Seq   int
	K     int
	Trial int
}

// TrialFunc runs a single trial. It must not share mutable state with other
// calls.
type TrialFunc func(TrialItem) TrialResult

// ParallelTrials runs trial items on a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// Once ctx is done, remaining items are drained without being run.
// If workers is 0, runtime.NumCPU() is used.
func ParallelTrials(ctx context.Context, items <-chan TrialItem, workers int, fn TrialFunc) <-chan TrialResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan TrialResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				if ctx.Err() != nil {
					continue
				}
				r := fn(item)
				r.Seq = item.Seq
				r.K = item.K
				r.Trial = item.Trial
				results <- r
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan TrialResult, fn func(TrialResult) error) error {
	pending := make(map[int]TrialResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
