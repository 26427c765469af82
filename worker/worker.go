package worker

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/dogfight/oerror"
	"go.uber.org/atomic"
)

var (
	defaultOnce sync.Once
	defaultPool *Pool
)

// Default returns a process-wide pool with one worker per CPU.
func Default() *Pool {
	defaultOnce.Do(func() {
		defaultPool = New(runtime.NumCPU())
	})
	return defaultPool
}

// Pool is a fixed set of goroutines fed through a channel.
type Pool struct {
	queue   chan func()
	workers int
	closed  sync.Once
}

// New starts a pool with the given number of workers. At least one worker is always started.
func New(workers int) *Pool {
	workers = max(workers, 1)
	p := &Pool{queue: make(chan func(), workers), workers: workers}
	for range workers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer sentry.Recover()

	for {
		f, ok := <-p.queue
		if !ok {
			return
		}

		f()
	}
}

// Workers returns the number of goroutines serving the pool.
func (p *Pool) Workers() int {
	return p.workers
}

// Submit queues f. It blocks while every worker is busy and the queue is full.
func (p *Pool) Submit(f func()) {
	p.queue <- f
}

// Run calls fn for every index in [0, n), split into contiguous chunks over the workers, and waits for all
// of them. A panic inside fn is reported to sentry and turned into an error, the remaining chunks still run.
func (p *Pool) Run(n int, fn func(i int)) error {
	if n <= 0 {
		return nil
	}
	chunks := min(p.workers, n)
	size := (n + chunks - 1) / chunks

	var (
		wg       sync.WaitGroup
		panicked atomic.Bool
	)
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			defer func() {
				if err := recover(); err != nil {
					panicked.Store(true)
					hub := sentry.CurrentHub().Clone()
					hub.ConfigureScope(func(scope *sentry.Scope) {
						scope.SetTag("chunk", fmt.Sprintf("%d-%d", start, end))
					})
					hub.Recover(oerror.New("worker job panicked: %v", err))
				}
			}()
			for i := start; i < end; i++ {
				fn(i)
			}
		})
	}
	wg.Wait()

	if panicked.Load() {
		return oerror.New("worker: job panicked")
	}
	return nil
}

// Close stops the workers once the queued jobs are done. Submitting after Close panics.
func (p *Pool) Close() {
	p.closed.Do(func() {
		close(p.queue)
	})
}
