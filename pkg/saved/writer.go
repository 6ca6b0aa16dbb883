package saved

import (
	"context"
	"log/slog"
	"sync"
)

type writeOp struct {
	key    string
	value  any
	remove bool
	// barrier is closed once every earlier op has been applied.
	barrier chan struct{}
}

// writer applies persistence ops of one State in submission order. The
// worker goroutine exists only while ops are queued: the first submit starts
// it and it exits once the queue is empty. Submitters never wait; failed
// writes are logged by the Persister and not retried.
type writer struct {
	store  Persister
	logger *slog.Logger

	mu      sync.Mutex
	queue   []writeOp
	closed  bool
	running bool
	// drained is closed when the current worker exits.
	drained chan struct{}
}

func newWriter(store Persister, logger *slog.Logger) *writer {
	return &writer{store: store, logger: logger}
}

func (w *writer) put(key string, value any) { w.submit(writeOp{key: key, value: value}) }

func (w *writer) remove(key string) { w.submit(writeOp{key: key, remove: true}) }

func (w *writer) submit(op writeOp) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		if op.barrier == nil {
			w.logger.Debug("write dropped after close", "key", op.key)
		}
		return false
	}
	w.queue = append(w.queue, op)
	if !w.running {
		w.running = true
		w.drained = make(chan struct{})
		go w.run(w.drained)
	}
	return true
}

func (w *writer) run(drained chan struct{}) {
	ctx := context.Background()
	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			w.running = false
			w.queue = nil
			close(drained)
			w.mu.Unlock()
			return
		}
		op := w.queue[0]
		w.queue[0] = writeOp{}
		w.queue = w.queue[1:]
		w.mu.Unlock()

		switch {
		case op.barrier != nil:
			close(op.barrier)
		case op.remove:
			w.store.Remove(ctx, op.key)
		default:
			w.store.Store(ctx, op.key, op.value)
		}
	}
}

// idle reports whether nothing is queued or being applied.
func (w *writer) idle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.running
}

// flush waits until every op submitted before the call has been applied.
func (w *writer) flush(ctx context.Context) error {
	barrier := make(chan struct{})
	if !w.submit(writeOp{barrier: barrier}) {
		return w.wait(ctx)
	}
	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops accepting ops and waits for the queue to drain. If ctx ends
// first the remaining ops are still applied in the background; calling close
// again waits for them.
func (w *writer) close(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return w.wait(ctx)
}

func (w *writer) wait(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	drained := w.drained
	w.mu.Unlock()
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
