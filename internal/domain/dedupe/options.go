// Package dedupe defines the interface for hazard-id idempotency tracking.
package dedupe

// defaultMaxSize bounds the seen-id cache when no option overrides it.
const defaultMaxSize = 50000

// Option applies a configuration option to the inMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of IDs kept in memory.
// Zero or negative means unbounded.
func WithMaxSize(size int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = size
	}
}
