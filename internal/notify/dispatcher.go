package notify

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Task is a side effect whose failure must never reach the caller.
type Task func(ctx context.Context) error

// Runner executes best-effort tasks.
type Runner interface {
	Go(name string, task Task)
}

// Dispatcher runs tasks on a bounded goroutine pool. Failures and panics are
// logged and swallowed; nothing is retried. Go never waits for a free worker:
// when every worker is busy the task is dropped and logged.
type Dispatcher struct {
	pool    *ants.Pool
	log     *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(workers int, timeout time.Duration, log *zap.Logger) (*Dispatcher, error) {
	if workers <= 0 {
		workers = 16
	}
	pool, err := ants.NewPool(workers,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p interface{}) {
			log.Error("best-effort task panicked", zap.Any("panic", p))
		}))
	if err != nil {
		return nil, err
	}
	return &Dispatcher{pool: pool, log: log, timeout: timeout}, nil
}

func (d *Dispatcher) Go(name string, task Task) {
	d.wg.Add(1)
	err := d.pool.Submit(func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := task(ctx); err != nil {
			d.log.Warn("best-effort task failed", zap.String("task", name), zap.Error(err))
		}
	})
	if err != nil {
		d.wg.Done()
		d.log.Warn("best-effort task dropped", zap.String("task", name), zap.Error(err))
	}
}

// Wait blocks until every submitted task has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close drains in-flight tasks and releases the pool.
func (d *Dispatcher) Close() {
	d.wg.Wait()
	d.pool.Release()
}

// Inline runs tasks synchronously on the caller's goroutine, still swallowing
// failures. Used by tests and CLI commands.
type Inline struct {
	Log *zap.Logger
}

func (i Inline) Go(name string, task Task) {
	if err := task(context.Background()); err != nil {
		i.Log.Warn("best-effort task failed", zap.String("task", name), zap.Error(err))
	}
}

var (
	_ Runner = (*Dispatcher)(nil)
	_ Runner = Inline{}
)
