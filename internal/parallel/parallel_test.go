package parallel

import (
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000
	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("expected %d calls, got %d", n, counter)
	}
}

func TestForCoversEveryIndex(t *testing.T) {
	cfg := DefaultConfig()

	n := 500
	seen := make([]int32, n)
	For(n, func(i int) {
		atomic.AddInt32(&seen[i], 1)
	}, cfg)

	for i, c := range seen {
		if c != 1 {
			t.Errorf("index %d visited %d times", i, c)
		}
	}
}

func TestForSequentialFallback(t *testing.T) {
	var counter int64
	For(100, func(_ int) {
		counter++ // safe: disabled config never spawns goroutines
	}, Config{Enabled: false})

	if counter != 100 {
		t.Errorf("expected 100 calls, got %d", counter)
	}
}

func TestForSmallStaysSequential(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1
	For(n, func(_ int) {
		counter++ // safe: under MinChunkSize the loop is sequential
	}, cfg)

	if counter != int64(n) {
		t.Errorf("expected %d calls, got %d", n, counter)
	}
}
