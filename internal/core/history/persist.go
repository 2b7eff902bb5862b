package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// writeOp is a pending backend mutation for a single key.
type writeOp struct {
	key    string
	value  string
	delete bool
}

func (op writeOp) name() string {
	if op.delete {
		return "delete"
	}
	return "set"
}

// persister applies backend writes on a background goroutine. Pending writes
// are coalesced per key so only the latest state of each key is written, and
// keys are written in the order they were first queued. Failures are logged
// and never reported to the caller.
type persister struct {
	backend Backend
	log     zerolog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]writeOp
	order   []string
	closed  bool

	wake      chan struct{}
	flush     chan chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newPersister(backend Backend, log zerolog.Logger, timeout time.Duration) *persister {
	p := &persister{
		backend: backend,
		log:     log,
		timeout: timeout,
		pending: make(map[string]writeOp),
		wake:    make(chan struct{}, 1),
		flush:   make(chan chan struct{}),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go p.run()
	return p
}

// enqueue queues op and returns immediately.
func (p *persister) enqueue(op writeOp) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.log.Warn().Str("key", op.key).Str("op", op.name()).Msg("history store closed, dropping write")
		return
	}
	if _, ok := p.pending[op.key]; !ok {
		p.order = append(p.order, op.key)
	}
	p.pending[op.key] = op
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *persister) run() {
	defer close(p.done)

	for {
		select {
		case <-p.wake:
			p.drain()
		case ack := <-p.flush:
			p.drain()
			close(ack)
		case <-p.quit:
			p.drain()
			return
		}
	}
}

// drain applies pending writes until the queue is empty.
func (p *persister) drain() {
	for {
		p.mu.Lock()
		if len(p.order) == 0 {
			p.mu.Unlock()
			return
		}

		ops := make([]writeOp, 0, len(p.order))
		for _, key := range p.order {
			ops = append(ops, p.pending[key])
		}
		p.pending = make(map[string]writeOp)
		p.order = nil
		p.mu.Unlock()

		for _, op := range ops {
			p.apply(op)
		}
	}
}

func (p *persister) apply(op writeOp) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	err := guard(func() error {
		if op.delete {
			err := p.backend.Delete(ctx, op.key)
			if errors.Is(err, ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return p.backend.Set(ctx, op.key, op.value)
	})
	if err != nil {
		p.log.Warn().
			Err(err).
			Str("key", op.key).
			Str("op", op.name()).
			Msg("history write failed")
		return
	}

	p.log.Debug().Str("key", op.key).Str("op", op.name()).Msg("history write applied")
}

// Flush blocks until every write queued before the call has been applied.
func (p *persister) Flush(ctx context.Context) error {
	ack := make(chan struct{})

	select {
	case p.flush <- ack:
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close applies remaining writes and stops the worker. Writes queued after
// Close are dropped.
func (p *persister) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.quit)
	})

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// guard runs fn and converts a panic into an error so a misbehaving backend
// cannot take the store down with it.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backend panic: %v", r)
		}
	}()
	return fn()
}
