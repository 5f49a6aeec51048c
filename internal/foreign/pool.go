package foreign

import (
	"log/slog"
	"sync"

	"go.starlark.net/starlark"
)

// threadPool reuses Starlark threads across file loads.
type threadPool struct {
	mu      sync.Mutex
	threads []*starlark.Thread
	maxSize int
	logger  *slog.Logger
}

func newThreadPool(maxSize int, logger *slog.Logger) *threadPool {
	if maxSize <= 0 {
		maxSize = 4
	}
	return &threadPool{
		threads: make([]*starlark.Thread, 0, maxSize),
		maxSize: maxSize,
		logger:  logger,
	}
}

// get returns a pooled or new thread named after the file it will run.
// print() in the file goes to the debug log.
func (p *threadPool) get(name string) *starlark.Thread {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.threads); n > 0 {
		thread := p.threads[n-1]
		p.threads = p.threads[:n-1]
		thread.Name = name
		return thread
	}

	logger := p.logger
	return &starlark.Thread{
		Name: name,
		Print: func(thread *starlark.Thread, msg string) {
			logger.Debug("starlark print", "file", thread.Name, "msg", msg)
		},
	}
}

// put returns a thread to the pool, discarding it if the pool is full.
func (p *threadPool) put(thread *starlark.Thread) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.threads) < p.maxSize {
		thread.Name = ""
		p.threads = append(p.threads, thread)
	}
}

func (p *threadPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.threads)
}
