// Package dataflow provides small channel-based pipeline stages with
// configurable concurrency, buffering, and retry with backoff.
package dataflow

import (
	"context"
	"sync"
	"time"
)

// From emits the given items on a channel and closes it. Emission stops
// early if the context is cancelled.
func From(ctx context.Context, items ...interface{}) <-chan interface{} {
	out := make(chan interface{}, len(items))
	go func() {
		defer close(out)
		for _, item := range items {
			select {
			case out <- item:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Map applies fn to every item from in and forwards the results. Items whose
// fn fails after all retry attempts are dropped (or skipped via the error
// handler); the pipeline keeps flowing.
func Map(ctx context.Context, in <-chan interface{}, fn func(interface{}) (interface{}, error), opts ...Option) <-chan interface{} {
	cfg := applyOptions(opts)
	out := make(chan interface{}, cfg.bufferSize)

	var wg sync.WaitGroup
	wg.Add(cfg.workers)
	for i := 0; i < cfg.workers; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-in:
					if !ok {
						return
					}
					result, err := applyWithRetry(ctx, cfg, fn, msg)
					if err != nil {
						if cfg.errorHandler != nil {
							cfg.errorHandler(err)
						}
						continue
					}
					select {
					case out <- result:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// ForEach consumes in sequentially, calling fn for each item. The first error
// from fn stops consumption and is returned.
func ForEach(ctx context.Context, in <-chan interface{}, fn func(interface{}) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-in:
			if !ok {
				return nil
			}
			if err := fn(msg); err != nil {
				return err
			}
		}
	}
}

func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// applyWithRetry runs fn up to maxRetries+1 times, sleeping backoff(attempt)
// between attempts. Attempt numbering starts at 1 for the first retry.
func applyWithRetry(ctx context.Context, cfg *config, fn func(interface{}) (interface{}, error), msg interface{}) (interface{}, error) {
	result, err := fn(msg)
	if err == nil || cfg.maxRetries <= 0 {
		return result, err
	}

	for attempt := 1; attempt <= cfg.maxRetries; attempt++ {
		if cfg.backoff != nil {
			if !sleepCtx(ctx, cfg.backoff(attempt)) {
				return nil, ctx.Err()
			}
		}
		result, err = fn(msg)
		if err == nil {
			return result, nil
		}
	}
	return nil, err
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
