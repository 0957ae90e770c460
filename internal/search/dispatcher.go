package search

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Task is one unit of index work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Dispatcher runs tasks on a fixed pool of workers fed by a bounded queue.
// Enqueue never blocks: when the queue is full the task is dropped.
type Dispatcher struct {
	tasks   chan Task
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	dropped atomic.Int64
	failed  atomic.Int64
}

// NewDispatcher starts workers goroutines draining a queue of queueSize
// tasks. Each task runs under its own timeout.
func NewDispatcher(workers, queueSize int, timeout time.Duration) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	d := &Dispatcher{
		tasks:   make(chan Task, queueSize),
		timeout: timeout,
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.work()
	}
	return d
}

// Enqueue schedules t and reports whether it was accepted.
func (d *Dispatcher) Enqueue(t Task) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		log.Printf("search: dispatcher closed, dropping %s", t.Name)
		d.dropped.Add(1)
		return false
	}
	select {
	case d.tasks <- t:
		return true
	default:
		log.Printf("search: queue full, dropping %s", t.Name)
		d.dropped.Add(1)
		return false
	}
}

// Dropped is the number of tasks rejected so far.
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

// Failed is the number of tasks that returned an error or panicked.
func (d *Dispatcher) Failed() int64 { return d.failed.Load() }

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for t := range d.tasks {
		d.run(t)
	}
}

func (d *Dispatcher) run(t Task) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			d.failed.Add(1)
			log.Printf("search: %s panicked: %v", t.Name, r)
		}
	}()
	if err := t.Run(ctx); err != nil {
		d.failed.Add(1)
		log.Printf("search: %s failed: %v", t.Name, err)
	}
}

// Close stops accepting tasks and waits for the queue to drain or ctx to
// expire, whichever comes first.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.tasks)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
