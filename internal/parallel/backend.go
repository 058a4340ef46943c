package parallel

import "sync"

type Backend interface {
	Name() string
	Workers() int
	// For runs fn over [0, n) split into contiguous chunks of at least
	// minChunk elements. It returns once every chunk has finished.
	For(n, minChunk int, fn func(start, end int))
}

var (
	mu            sync.RWMutex
	activeBackend Backend = NewCPU(0)
)

func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		b = NewCPU(0)
	}
	activeBackend = b
}

func GetBackend() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return activeBackend
}

// For dispatches to the active backend.
func For(n, minChunk int, fn func(start, end int)) {
	GetBackend().For(n, minChunk, fn)
}

// Select returns a CPU backend with the requested worker count, or the
// serial backend when workers == 1.
func Select(workers int) Backend {
	if workers == 1 {
		return Serial{}
	}
	return NewCPU(workers)
}
