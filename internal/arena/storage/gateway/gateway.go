// Package gateway runs store queries asynchronously. Every submitted query
// is executed by a single worker in issue order, so two queries issued back
// to back by the same goroutine reach the engine in that order.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/louisbranch/ffa-arena/internal/arena/storage"
	apperrors "github.com/louisbranch/ffa-arena/internal/platform/errors"
	"github.com/louisbranch/ffa-arena/internal/platform/otel"
	"github.com/louisbranch/ffa-arena/internal/platform/timeouts"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrClosed is returned for queries submitted after shutdown.
var ErrClosed = apperrors.New(apperrors.CodeStoreClosed, "store gateway is closed")

// Failure describes one failed query as delivered to the failure handler.
type Failure struct {
	Query storage.Query
	UUID  string
	Err   error
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger used by the default failure handler.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithFailureHandler replaces the default handler, which logs the failure.
func WithFailureHandler(fn func(Failure)) Option {
	return func(g *Gateway) {
		if fn != nil {
			g.onFailure = fn
		}
	}
}

// WithOperationTimeout bounds each query.
func WithOperationTimeout(timeout time.Duration) Option {
	return func(g *Gateway) {
		if timeout > 0 {
			g.timeout = timeout
		}
	}
}

// WithTracer overrides the tracer used for per-query spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(g *Gateway) {
		if tracer != nil {
			g.tracer = tracer
		}
	}
}

type task struct {
	query storage.Query
	uuid  string
	run   func(ctx context.Context) error
	abort func(err error)
}

// Gateway implements storage.Gateway over a synchronous engine.
type Gateway struct {
	engine    storage.Engine
	logger    zerolog.Logger
	tracer    trace.Tracer
	timeout   time.Duration
	onFailure func(Failure)

	mu       sync.Mutex
	queue    []task
	inflight int
	idle     chan struct{}
	closed   bool

	runCtx    context.Context
	cancelRun context.CancelFunc
	wake      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	closeErr  error
}

var _ storage.Gateway = (*Gateway)(nil)

// New starts a gateway worker over engine.
func New(engine storage.Engine, opts ...Option) *Gateway {
	g := &Gateway{
		engine:  engine,
		logger:  zerolog.Nop(),
		tracer:  otel.Tracer("internal/arena/storage/gateway"),
		timeout: timeouts.StoreOperation,
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	g.runCtx, g.cancelRun = context.WithCancel(context.Background())
	g.onFailure = g.logFailure
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	go g.loop()
	return g
}

// Player upserts the identity row for uuid.
func (g *Gateway) Player(uuid, name string) *storage.Future[struct{}] {
	return submit(g, storage.QueryPlayer, uuid, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.engine.UpsertPlayer(ctx, uuid, name)
	})
}

// StatsByUUID reads the stats row for uuid.
func (g *Gateway) StatsByUUID(uuid string) *storage.Future[[]storage.StatsRow] {
	return submit(g, storage.QueryStatsByUUID, uuid, func(ctx context.Context) ([]storage.StatsRow, error) {
		return g.engine.StatsByUUID(ctx, uuid)
	})
}

// Update overwrites one counter for uuid.
func (g *Gateway) Update(uuid string, stat storage.Stat, value int) *storage.Future[struct{}] {
	return submit(g, storage.QueryUpdate, uuid, func(ctx context.Context) (struct{}, error) {
		if err := stat.Validate(); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, g.engine.UpdateStat(ctx, uuid, stat, value)
	})
}

// UpdateKDR overwrites the kill/death ratio for uuid.
func (g *Gateway) UpdateKDR(uuid string, value float64) *storage.Future[struct{}] {
	return submit(g, storage.QueryUpdateKDR, uuid, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.engine.UpdateKDR(ctx, uuid, value)
	})
}

func submit[T any](g *Gateway, query storage.Query, uuid string, exec func(context.Context) (T, error)) *storage.Future[T] {
	future := storage.NewFuture[T]()
	t := task{
		query: query,
		uuid:  uuid,
		run: func(ctx context.Context) error {
			value, err := exec(ctx)
			if err != nil {
				err = g.fail(query, uuid, err)
			}
			future.Complete(value, err)
			return err
		},
		abort: func(err error) {
			var zero T
			future.Complete(zero, g.fail(query, uuid, err))
		},
	}
	if !g.enqueue(t) {
		var zero T
		future.Complete(zero, g.fail(query, uuid, ErrClosed))
	}
	return future
}

func (g *Gateway) enqueue(t task) bool {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return false
	}
	g.queue = append(g.queue, t)
	g.inflight++
	if g.inflight == 1 {
		g.idle = make(chan struct{})
	}
	g.mu.Unlock()

	select {
	case g.wake <- struct{}{}:
	default:
	}
	return true
}

func (g *Gateway) loop() {
	defer close(g.stopped)
	for {
		g.mu.Lock()
		if len(g.queue) == 0 {
			closed := g.closed
			g.mu.Unlock()
			if closed {
				return
			}
			<-g.wake
			continue
		}
		t := g.queue[0]
		g.queue[0] = task{}
		g.queue = g.queue[1:]
		g.mu.Unlock()

		g.execute(t)
	}
}

func (g *Gateway) execute(t task) {
	defer g.finish()

	ctx, cancel := context.WithTimeout(g.runCtx, g.timeout)
	defer cancel()
	ctx, span := g.tracer.Start(ctx, "arena.store/"+string(t.query), trace.WithAttributes(
		attribute.String("arena.store.query", string(t.query)),
		attribute.String("arena.player.uuid", t.uuid),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			span.SetStatus(otelcodes.Error, "panic")
			g.logger.Error().
				Str("query", string(t.query)).
				Str("uuid", t.uuid).
				Interface("panic", r).
				Msg("store continuation panicked")
		}
	}()

	if err := t.run(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
}

func (g *Gateway) finish() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inflight--
	if g.inflight == 0 {
		close(g.idle)
	}
}

func (g *Gateway) fail(query storage.Query, uuid string, err error) error {
	var wrapped *apperrors.Error
	if errors.Is(err, ErrClosed) {
		wrapped = apperrors.WrapWithMetadata(apperrors.CodeStoreClosed, fmt.Sprintf("execute %s", query),
			map[string]string{"query": string(query), "uuid": uuid}, err)
	} else {
		wrapped = apperrors.WrapWithMetadata(apperrors.CodeStoreFailed, fmt.Sprintf("execute %s", query),
			map[string]string{"query": string(query), "uuid": uuid}, err)
	}
	g.onFailure(Failure{Query: query, UUID: uuid, Err: wrapped})
	return wrapped
}

func (g *Gateway) logFailure(f Failure) {
	g.logger.Error().
		Err(f.Err).
		Str("query", string(f.Query)).
		Str("uuid", f.UUID).
		Msg("store operation failed")
}

// Pending reports how many queries are queued or running.
func (g *Gateway) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inflight
}

// WaitAll blocks until every submitted query has run, including queries
// submitted by continuations of earlier ones, or until ctx ends.
func (g *Gateway) WaitAll(ctx context.Context) error {
	g.mu.Lock()
	if g.inflight == 0 {
		g.mu.Unlock()
		return nil
	}
	idle := g.idle
	g.mu.Unlock()

	select {
	case <-idle:
		// New work may have arrived after the idle signal.
		return g.WaitAll(ctx)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown flushes pending queries until the queue is idle or ctx ends, then
// stops accepting new ones and closes the engine. When ctx ends first, the
// running query is canceled and queued ones resolve with ErrClosed, and the
// ctx error is returned.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.closeOnce.Do(func() {
		flushErr := g.WaitAll(ctx)

		g.mu.Lock()
		g.closed = true
		var dropped []task
		if flushErr != nil {
			dropped = g.queue
			g.queue = nil
		}
		g.mu.Unlock()

		if flushErr != nil {
			g.cancelRun()
			abortErr := fmt.Errorf("%w: %w", ErrClosed, flushErr)
			for _, t := range dropped {
				t.abort(abortErr)
				g.finish()
			}
		}
		select {
		case g.wake <- struct{}{}:
		default:
		}
		<-g.stopped
		g.cancelRun()

		var closeErr error
		if g.engine != nil {
			closeErr = g.engine.Close()
		}
		g.closeErr = errors.Join(flushErr, closeErr)
	})
	return g.closeErr
}

// Close flushes without a deadline and releases the engine.
func (g *Gateway) Close() error {
	return g.Shutdown(context.Background())
}
