package tiercache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/devblac/sport-tracker-sub006/tier"
)

// prefetchedTag marks entries written by Prefetch.
const prefetchedTag = "prefetched"

const defaultPrefetchConcurrency = 4

// Loader fetches or computes the value for a key during Prefetch.
type Loader[V any] func(ctx context.Context, key string) (V, error)

type prefetchOptions struct {
	priority      tier.Priority
	ttl           time.Duration
	maxConcurrent int64
}

// PrefetchOption configures a single Prefetch call.
type PrefetchOption func(*prefetchOptions)

// PrefetchPriority sets the priority of prefetched entries.
func PrefetchPriority(p tier.Priority) PrefetchOption {
	return func(o *prefetchOptions) {
		o.priority = p
	}
}

// PrefetchTTL sets the TTL of prefetched entries.
func PrefetchTTL(d time.Duration) PrefetchOption {
	return func(o *prefetchOptions) {
		o.ttl = d
	}
}

// MaxConcurrent bounds the number of loader calls in flight.
func MaxConcurrent(n int) PrefetchOption {
	return func(o *prefetchOptions) {
		if n > 0 {
			o.maxConcurrent = int64(n)
		}
	}
}

// Prefetch warms the cache: for every key not already validly cached it calls
// the loader and stores the result tagged "prefetched". Loader calls run
// concurrently, bounded by a fixed-size slot pool (and the optional rate
// limiter from WithPrefetchLimiter).
//
// A failing loader is logged and skipped; the batch never aborts. Prefetch
// returns once every key has settled. There is no cancellation beyond ctx: a
// caller that stops waiting does not abort in-flight loader calls.
func (m *Manager[V]) Prefetch(ctx context.Context, keys []string, loader Loader[V], optFns ...PrefetchOption) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if !m.cfg.PrefetchEnabled {
		m.log.DebugContext(ctx, "prefetch disabled by config", "keys", len(keys))
		return nil
	}
	o := prefetchOptions{
		priority:      tier.PriorityMedium,
		maxConcurrent: defaultPrefetchConcurrency,
	}
	for _, fn := range optFns {
		fn(&o)
	}

	slots := semaphore.NewWeighted(o.maxConcurrent)
	var wg sync.WaitGroup
	var loaded, failed atomic.Int64

	for _, key := range keys {
		if _, _, err := m.lookup(ctx, key); err == nil {
			continue // already validly cached
		}
		if err := slots.Acquire(ctx, 1); err != nil {
			failed.Add(1)
			continue
		}

		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			defer slots.Release(1)

			if m.limiter != nil {
				if err := m.limiter.Wait(ctx); err != nil {
					failed.Add(1)
					return
				}
			}

			v, err := loader(ctx, key)
			if err != nil {
				failed.Add(1)
				m.log.WarnContext(ctx, "prefetch loader failed", "key", key, "error", err)
				return
			}

			setOpts := []SetOption{
				WithPriority(o.priority),
				WithTags(prefetchedTag),
			}
			if o.ttl > 0 {
				setOpts = append(setOpts, WithTTL(o.ttl))
			}
			if err := m.Set(ctx, key, v, setOpts...); err != nil {
				failed.Add(1)
				return
			}
			loaded.Add(1)
		}(key)
	}

	wg.Wait()
	m.log.LogPrefetch(ctx, len(keys), int(loaded.Load()), int(failed.Load()))
	return nil
}
