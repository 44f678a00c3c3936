package uniprot

import (
	"context"
	"runtime"
	"sync"
)

// WorkItem holds an accession queued for retrieval.
type WorkItem struct {
	Seq int
	AC  string
}

// WorkResult holds the retrieval output for a single accession.
type WorkResult struct {
	Seq      int
	AC       string
	Proteins []*Protein
	Err      error
}

// ParallelRetrieve retrieves work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (s *RemoteService) ParallelRetrieve(ctx context.Context, items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range items {
				proteins, err := s.retrieveItem(ctx, item.AC)
				results <- WorkResult{
					Seq:      item.Seq,
					AC:       item.AC,
					Proteins: proteins,
					Err:      err,
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

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
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

// RetrieveBatchParallel behaves like RetrieveBatch with retrievals spread
// over workers goroutines. The entry service must be safe for concurrent use.
func (s *RemoteService) RetrieveBatchParallel(ctx context.Context, acs []string, workers int) (map[string][]*Protein, error) {
	if len(acs) == 0 {
		return nil, ErrEmptyAccessionList
	}

	items := make(chan WorkItem)
	go func() {
		defer close(items)
		for i, ac := range acs {
			select {
			case items <- WorkItem{Seq: i, AC: ac}:
			case <-ctx.Done():
				return
			}
		}
	}()

	results := make(map[string][]*Protein, len(acs))
	err := OrderedCollect(s.ParallelRetrieve(ctx, items, workers), func(r WorkResult) error {
		if r.Err == nil {
			results[r.AC] = r.Proteins
		}
		return nil
	})
	if err != nil {
		return results, err
	}
	return results, ctx.Err()
}
