// Package parallel provides the worker helper used by the CPU backend
// to split row-wise tensor work across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how For splits work.
type Config struct {
	Enabled      bool // run chunks on worker goroutines
	NumWorkers   int  // number of goroutines to fan out to
	MinChunkSize int  // below this many items, run sequentially
}

// DefaultConfig sizes the pool to the machine. Small loops stay
// sequential; goroutine overhead dominates under MinChunkSize items.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64,
	}
}

// For executes f(i) for i in [0, n), chunked across workers. Falls back
// to a plain loop when parallelism is disabled or n is small.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}
