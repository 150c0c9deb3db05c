package main

import (
	"context"
	"sync"
)

type result struct {
	output []byte
	err    error
}

type job struct {
	index int
	path  string
}

// runAll processes paths with at most workers goroutines and returns the
// results indexed like paths. Jobs not started before ctx is cancelled
// report ctx.Err().
func runAll(ctx context.Context, paths []string, workers int, fn func(context.Context, string) ([]byte, error)) []result {
	if workers < 1 {
		workers = 1
	}
	results := make([]result, len(paths))
	jobs := make(chan job, workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results[j.index] = result{err: err}
					continue
				}
				out, err := fn(ctx, j.path)
				results[j.index] = result{output: out, err: err}
			}
		}()
	}

	for i, p := range paths {
		jobs <- job{index: i, path: p}
	}
	close(jobs)
	wg.Wait()
	return results
}
