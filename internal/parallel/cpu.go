package parallel

import (
	"fmt"
	"runtime"
	"sync"
)

type CPU struct {
	workers int
}

// NewCPU returns a goroutine backend. workers <= 0 uses GOMAXPROCS.
func NewCPU(workers int) *CPU {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &CPU{workers: workers}
}

func (c *CPU) Name() string { return fmt.Sprintf("cpu (%d workers)", c.workers) }
func (c *CPU) Workers() int { return c.workers }

func (c *CPU) For(n, minChunk int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || c.workers <= 1 {
		fn(0, n)
		return
	}

	workers := c.workers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// Serial runs everything on the calling goroutine.
type Serial struct{}

func (Serial) Name() string { return "serial" }
func (Serial) Workers() int { return 1 }

func (Serial) For(n, _ int, fn func(start, end int)) {
	if n > 0 {
		fn(0, n)
	}
}
