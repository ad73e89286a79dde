package boxify

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// workItem holds everything a rewrite worker needs.
type workItem struct {
	index    int
	location string
	src      string
}

// RewriteFiles rewrites several scripts in two phases:
//
//	Phase A (serial):   Read every script. Any read failure aborts before
//	                    anything is rewritten.
//	Phase B (parallel): Rewrite via a worker pool.
//
// Outputs are returned in input order.
func (e *Engine) RewriteFiles(ctx context.Context, locations []string) ([]*Output, error) {
	// ---- Phase A: Serial reads ----
	items := make([]workItem, 0, len(locations))
	for i, location := range locations {
		src, err := ReadScript(ctx, location)
		if err != nil {
			return nil, err
		}
		items = append(items, workItem{index: i, location: location, src: src})
	}

	outputs := make([]*Output, len(items))
	if len(items) == 0 {
		return outputs, nil
	}

	if !e.useParallel || len(items) == 1 {
		for _, item := range items {
			out, err := e.RewriteSource(ctx, item.location, item.src)
			if err != nil {
				return nil, err
			}
			outputs[item.index] = out
		}
		return outputs, nil
	}

	// ---- Phase B: Parallel rewrite ----
	numWorkers := e.workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	numWorkers = max(1, min(numWorkers, len(items)))

	workCh := make(chan workItem, len(items))
	for _, item := range items {
		workCh <- item
	}
	close(workCh)

	type result struct {
		item workItem
		out  *Output
		err  error
	}
	resultCh := make(chan result, len(items))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workCh {
				if err := ctx.Err(); err != nil {
					resultCh <- result{item: item, err: err}
					continue
				}
				out, err := e.RewriteSource(ctx, item.location, item.src)
				resultCh <- result{item: item, out: out, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var errs []error
	for res := range resultCh {
		if res.err != nil {
			errs = append(errs, fmt.Errorf("rewrite %s: %w", res.item.location, res.err))
			continue
		}
		outputs[res.item.index] = res.out
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("boxify: parallel rewrite had %d error(s): %w", len(errs), errs[0])
	}
	return outputs, nil
}
