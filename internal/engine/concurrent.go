package engine

import (
	"sync"

	"github.com/ritamzico/dmnfeel/internal/feel"
)

type indexedResult struct {
	index  int
	result EvaluationResult
	err    error
}

// EvaluateConcurrent fans batches out across goroutines and gathers
// their results in input order. Each batch gets its own Context and
// Trace; the shared Definition is read-only throughout, so no locking
// is required between goroutines.
func (e *Engine) EvaluateConcurrent(target string, batches []map[string]feel.Value) ([]EvaluationResult, error) {
	results := make([]EvaluationResult, len(batches))
	resCh := make(chan indexedResult, len(batches))

	var wg sync.WaitGroup
	wg.Add(len(batches))
	for i, inputs := range batches {
		go func(i int, inputs map[string]feel.Value) {
			defer wg.Done()
			res, err := e.Evaluate(target, inputs)
			resCh <- indexedResult{index: i, result: res, err: err}
		}(i, inputs)
	}

	go func() {
		wg.Wait()
		close(resCh)
	}()

	for ir := range resCh {
		if ir.err != nil {
			return nil, ir.err
		}
		results[ir.index] = ir.result
	}
	return results, nil
}
