package polyglot

import (
	"context"
	"sync"
)

// DefaultParallelism bounds concurrent provider calls in TranslateMany.
const DefaultParallelism = 4

// TargetResult is the outcome of translating into one of several targets.
type TargetResult struct {
	TargetLang string
	Result     *TranslateResult
	Err        error
}

// TranslateMany translates text into every target language concurrently,
// running at most parallelism translations at once (<= 0 means
// DefaultParallelism). Results follow the order of targets, and a failure
// for one target does not stop the others. Each success is counted like
// a single Translate call.
func (t *Translator) TranslateMany(ctx context.Context, text, sourceLang string, targets []string, parallelism int) []TargetResult {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}

	results := make([]TargetResult, len(targets))
	sem := make(chan struct{}, parallelism)
	var wg sync.WaitGroup

	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i] = TargetResult{TargetLang: target, Err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			res, err := t.Translate(ctx, TranslateRequest{
				Text:       text,
				SourceLang: sourceLang,
				TargetLang: target,
			})
			results[i] = TargetResult{TargetLang: target, Result: res, Err: err}
		}(i, target)
	}

	wg.Wait()
	return results
}
