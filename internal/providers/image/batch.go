package image

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"imagecraft/internal/styles"
)

// MaxConcurrent bounds the per-batch fan-out.
const MaxConcurrent = 8

// Result is the outcome of one request in a batch. Exactly one of Asset and
// Err is set.
type Result struct {
	Request styles.Request
	Asset   *Asset
	Err     error
}

// GenerateAll runs every request concurrently. A failed request does not
// cancel the others. onDone, if set, is called as each request finishes and
// may be called from several goroutines at once. Results keep request order.
func GenerateAll(ctx context.Context, gen Generator, reqs []styles.Request, onDone func(Result)) []Result {
	results := make([]Result, len(reqs))
	var g errgroup.Group
	g.SetLimit(MaxConcurrent)
	for i, req := range reqs {
		g.Go(func() error {
			asset, err := gen.Generate(ctx, req)
			res := Result{Request: req, Asset: asset, Err: err}
			results[i] = res
			if onDone != nil {
				onDone(res)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Failed counts results with an error, separating cancellations.
func Failed(results []Result) (failed, cancelled int) {
	for _, r := range results {
		switch {
		case r.Err == nil:
		case errors.Is(r.Err, context.Canceled), errors.Is(r.Err, context.DeadlineExceeded):
			cancelled++
		default:
			failed++
		}
	}
	return failed, cancelled
}
