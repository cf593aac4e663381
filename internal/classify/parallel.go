package classify

import (
	"runtime"
	"sync"

	"github.com/HerwigLab/IsoTools2/internal/bamin"
)

// WorkItem holds a decoded alignment ready for classification.
type WorkItem struct {
	Seq int
	Aln *bamin.Alignment
}

// WorkResult holds the classification of a single alignment.
type WorkResult struct {
	Seq    int
	Result *Result
}

// ParallelClassify classifies work items using a pool of workers.
// Results arrive on the returned channel in completion order, not
// sequence order; consume them through OrderedCollect to restore the
// input order. If workers is 0, runtime.NumCPU() is used.
func (c *Classifier) ParallelClassify(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for item := range items {
				results <- WorkResult{
					Seq:    item.Seq,
					Result: c.ClassifyAlignment(item.Aln),
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order,
// buffering results that arrive early until the next expected sequence
// number shows up. Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			next, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(next); err != nil {
				// Drain the channel so the workers can finish.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
