package pool

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yaoapp/kun/log"
	"github.com/yaoapp/ssr/runtime"
)

// New create a new pool. The seed function is called every time a context
// is created, so the new contexts always run the latest bundle text.
func New(name string, factory runtime.Factory, seed Seed, option Option) *Pool {
	option.Validate()
	if seed == nil {
		seed = func() (string, string) { return "", "" }
	}

	pool := &Pool{
		name:    name,
		factory: factory,
		seed:    seed,
		option:  option,
		idle:    []*entry{},
		done:    make(chan struct{}),
	}

	pool.stopped.Add(1)
	go pool.janitor()
	return pool
}

// Name the pool name
func (pool *Pool) Name() string {
	return pool.name
}

// Warm fill the idle queue up to the minimum size
func (pool *Pool) Warm() error {
	for {
		pool.mu.Lock()
		if pool.closed || len(pool.idle) >= pool.option.MinSize {
			pool.mu.Unlock()
			return nil
		}
		generation := pool.generation
		pool.mu.Unlock()

		text, version := pool.seed()
		ctx, err := pool.factory.New(text)
		if err != nil {
			return fmt.Errorf("[Pool] %s %w: %s", pool.name, runtime.ErrContextCreation, err.Error())
		}
		pool.created.Add(1)
		pool.put(pool.newEntry(ctx, generation, version))
	}
}

// Acquire select an idle context or create a new one. The creation is
// bounded by the AcquireTimeout option and the given context.
func (pool *Pool) Acquire(ctx context.Context) (*Lease, error) {

	pool.mu.Lock()
	if pool.closed {
		pool.mu.Unlock()
		return nil, fmt.Errorf("[Pool] %s %w", pool.name, runtime.ErrClosed)
	}

	stale := []*entry{}
	for len(pool.idle) > 0 {
		last := len(pool.idle) - 1
		e := pool.idle[last]
		pool.idle = pool.idle[:last]
		if e.generation != pool.generation {
			stale = append(stale, e)
			continue
		}

		pool.leased++
		pool.mu.Unlock()
		pool.dispose(stale...)
		return &Lease{Context: e.ctx, pool: pool, entry: e}, nil
	}

	generation := pool.generation
	pool.mu.Unlock()
	pool.dispose(stale...)

	return pool.create(ctx, generation)
}

// Release give the context back to the pool. The context is disposed if the
// idle queue is full or the pool was rebuilt after the context was created.
func (pool *Pool) Release(lease *Lease) {
	if lease == nil {
		return
	}

	lease.mu.Lock()
	if lease.released {
		lease.mu.Unlock()
		return
	}
	lease.released = true
	lease.mu.Unlock()

	e := lease.entry
	pool.mu.Lock()
	pool.leased--
	if pool.closed || e.generation != pool.generation || len(pool.idle) >= pool.option.MaxSize {
		pool.mu.Unlock()
		pool.dispose(e)
		return
	}

	e.lastUsed = time.Now()
	pool.idle = append(pool.idle, e)
	pool.mu.Unlock()
}

// Rebuild invalidate the pool, the idle contexts are disposed and the leased
// ones will be disposed when they are released.
func (pool *Pool) Rebuild() {
	pool.mu.Lock()
	if pool.closed {
		pool.mu.Unlock()
		return
	}
	pool.generation++
	stale := pool.idle
	pool.idle = []*entry{}
	generation := pool.generation
	pool.mu.Unlock()

	pool.dispose(stale...)
	log.Trace("[Pool] %s rebuild. generation:%d", pool.name, generation)

	go func() {
		if err := pool.Warm(); err != nil {
			log.Error("[Pool] %s warm: %s", pool.name, err.Error())
		}
	}()
}

// Stats the pool statistics
func (pool *Pool) Stats() Stats {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	return Stats{
		Idle:       len(pool.idle),
		Leased:     pool.leased,
		Created:    pool.created.Load(),
		Disposed:   pool.disposed.Load(),
		Generation: pool.generation,
	}
}

// Close dispose all the idle contexts and stop the janitor
func (pool *Pool) Close() {
	pool.mu.Lock()
	if pool.closed {
		pool.mu.Unlock()
		return
	}
	pool.closed = true
	idle := pool.idle
	pool.idle = nil
	close(pool.done)
	pool.mu.Unlock()

	pool.dispose(idle...)
	pool.stopped.Wait()
	log.Trace("[Pool] %s closed", pool.name)
}

type created struct {
	ctx     runtime.Context
	version string
	err     error
}

func (pool *Pool) create(ctx context.Context, generation uint64) (*Lease, error) {

	ch := make(chan created, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- created{err: fmt.Errorf("%v", r)}
			}
		}()
		text, version := pool.seed()
		c, err := pool.factory.New(text)
		ch <- created{ctx: c, version: version, err: err}
	}()

	timer := time.NewTimer(pool.option.AcquireTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			log.Error("[Pool] %s create context: %s", pool.name, res.err.Error())
			return nil, fmt.Errorf("[Pool] %s %w: %s", pool.name, runtime.ErrContextCreation, res.err.Error())
		}
		pool.created.Add(1)
		e := pool.newEntry(res.ctx, generation, res.version)
		pool.mu.Lock()
		pool.leased++
		pool.mu.Unlock()
		return &Lease{Context: e.ctx, pool: pool, entry: e}, nil

	case <-timer.C:
		go pool.park(ch, generation)
		log.Warn("[Pool] %s create context timeout %v", pool.name, pool.option.AcquireTimeout)
		return nil, fmt.Errorf("[Pool] %s create context %w %v", pool.name, runtime.ErrTimeout, pool.option.AcquireTimeout)

	case <-ctx.Done():
		go pool.park(ch, generation)
		return nil, fmt.Errorf("[Pool] %s %w", pool.name, ctx.Err())
	}
}

// park keep the context created after the caller gave up
func (pool *Pool) park(ch chan created, generation uint64) {
	res := <-ch
	if res.err != nil {
		log.Error("[Pool] %s create context: %s", pool.name, res.err.Error())
		return
	}
	pool.created.Add(1)
	pool.put(pool.newEntry(res.ctx, generation, res.version))
}

func (pool *Pool) put(e *entry) {
	pool.mu.Lock()
	if pool.closed || e.generation != pool.generation || len(pool.idle) >= pool.option.MaxSize {
		pool.mu.Unlock()
		pool.dispose(e)
		return
	}
	pool.idle = append(pool.idle, e)
	pool.mu.Unlock()
}

func (pool *Pool) newEntry(ctx runtime.Context, generation uint64, version string) *entry {
	e := &entry{
		id:         uuid.New().String(),
		ctx:        ctx,
		generation: generation,
		version:    version,
		lastUsed:   time.Now(),
	}
	log.Trace("[Pool] %s [%s] context created. generation:%d", pool.name, e.id, generation)
	return e
}

func (pool *Pool) dispose(entries ...*entry) {
	for _, e := range entries {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error("[Pool] %s [%s] dispose: %v", pool.name, e.id, r)
				}
			}()
			e.ctx.Dispose()
		}()
		pool.disposed.Add(1)
		log.Trace("[Pool] %s [%s] context disposed", pool.name, e.id)
	}
}

// janitor evict the contexts idle longer than IdleTTL while the idle
// queue is larger than MinSize
func (pool *Pool) janitor() {
	defer pool.stopped.Done()

	interval := pool.option.IdleTTL / 2
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-pool.done:
			return
		case <-ticker.C:
			pool.evict()
		}
	}
}

func (pool *Pool) evict() {
	now := time.Now()
	pool.mu.Lock()
	evicted := []*entry{}
	keep := make([]*entry, 0, len(pool.idle))
	remain := len(pool.idle)

	// the oldest entries are at the bottom of the stack
	for _, e := range pool.idle {
		if remain > pool.option.MinSize && now.Sub(e.lastUsed) > pool.option.IdleTTL {
			evicted = append(evicted, e)
			remain--
			continue
		}
		keep = append(keep, e)
	}
	pool.idle = keep
	pool.mu.Unlock()

	if len(evicted) > 0 {
		log.Trace("[Pool] %s evict %d idle contexts", pool.name, len(evicted))
		pool.dispose(evicted...)
	}
}
