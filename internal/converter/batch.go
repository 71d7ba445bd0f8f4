package converter

import (
	"context"
	"sync"

	"github.com/mono57/emvqr/internal/config"
)

// RunAll processes files concurrently, at most cfg.MaxConcurrency at a time.
// Results are returned in the order of files. Files not started before ctx
// is cancelled report ctx's error.
func RunAll(ctx context.Context, files []string, cfg *config.Config, opts ...Option) []Result {
	limit := cfg.MaxConcurrency
	if limit < 1 {
		limit = 1
	}

	type indexed struct {
		i int
		r Result
	}

	sem := make(chan struct{}, limit)
	results := make(chan indexed, len(files))
	var wg sync.WaitGroup

	for i, file := range files {
		wg.Add(1)
		go func(i int, file string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results <- indexed{i, Result{FilePath: file, Error: ctx.Err()}}
				return
			}
			defer func() { <-sem }()

			results <- indexed{i, New(file, cfg, opts...).Run(ctx)}
		}(i, file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]Result, len(files))
	for r := range results {
		out[r.i] = r.r
	}
	return out
}
