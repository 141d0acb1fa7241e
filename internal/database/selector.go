// Package database implements the storage backend selector: a managed
// relational database (postgres or mysql, from DATABASE_URL) preferred on
// every acquisition, with an embedded SQLite file as the fallback. Callers
// get a Conn tagged with the Dialect of whichever backend served it.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// backend is one physical store plus its lazily ensured schema.
type backend struct {
	db      *sql.DB
	dialect Dialect

	mu          sync.Mutex
	schemaReady bool
}

func (b *backend) ensureSchema(ctx context.Context, c *Conn) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.schemaReady {
		return nil
	}
	if err := EnsureSchema(ctx, c); err != nil {
		return err
	}
	b.schemaReady = true
	return nil
}

// Options tune the managed-backend probe.
type Options struct {
	ProbeTimeout  time.Duration // ping deadline for the managed backend
	RetryInterval time.Duration // how long a failed managed backend is skipped
}

// Status is a snapshot of the selector state for health reporting.
type Status struct {
	Backend         Kind
	Configured      bool      // a managed descriptor is configured
	DegradedSince   time.Time // zero when not degraded
	DegradedWindows int       // number of transitions into degraded mode
}

// Selector hands out connections from the managed backend when it is
// reachable and from the embedded backend otherwise.
type Selector struct {
	managed  *backend // nil when no descriptor is configured
	embedded *backend
	opts     Options
	log      *zap.Logger
	now      func() time.Time

	mu            sync.Mutex
	skipUntil     time.Time
	degradedSince time.Time
	windows       int
}

// NewSelector wires the two backends. managed may be nil.
func NewSelector(managed *sql.DB, managedDialect Dialect, embedded *sql.DB, opts Options, log *zap.Logger) *Selector {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 2 * time.Second
	}
	if opts.RetryInterval < 0 {
		opts.RetryInterval = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Selector{
		embedded: &backend{db: embedded, dialect: SQLite},
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
	if managed != nil {
		s.managed = &backend{db: managed, dialect: managedDialect}
	}
	return s
}

// Acquire returns a dedicated connection. The managed backend is tried first
// when configured; on failure the selector degrades to the embedded backend
// and records the transition. The caller must Close the returned Conn.
func (s *Selector) Acquire(ctx context.Context) (*Conn, error) {
	if s.managed != nil && s.shouldProbe() {
		c, err := s.open(ctx, s.managed, s.opts.ProbeTimeout)
		if err == nil {
			s.markHealthy()
			return c, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.markDegraded(err)
	}
	return s.open(ctx, s.embedded, 0)
}

func (s *Selector) open(ctx context.Context, b *backend, probe time.Duration) (*Conn, error) {
	connCtx := ctx
	if probe > 0 {
		var cancel context.CancelFunc
		connCtx, cancel = context.WithTimeout(ctx, probe)
		defer cancel()
	}
	raw, err := b.db.Conn(connCtx)
	if err != nil {
		return nil, fmt.Errorf("acquire %s connection: %w", b.dialect.Name, err)
	}
	if err := raw.PingContext(connCtx); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping %s: %w", b.dialect.Name, err)
	}
	c := NewConn(raw, b.dialect)
	if err := b.ensureSchema(ctx, c); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (s *Selector) shouldProbe() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.now().Before(s.skipUntil)
}

func (s *Selector) markDegraded(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.skipUntil = now.Add(s.opts.RetryInterval)
	if !s.degradedSince.IsZero() {
		return
	}
	s.degradedSince = now
	s.windows++
	s.log.Warn("storage.degraded",
		zap.String("from", string(KindRelational)),
		zap.String("to", string(KindEmbedded)),
		zap.Int("window", s.windows),
		zap.Error(cause),
	)
}

func (s *Selector) markHealthy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipUntil = time.Time{}
	if s.degradedSince.IsZero() {
		return
	}
	s.log.Info("storage.recovered",
		zap.String("backend", string(KindRelational)),
		zap.Duration("degraded_for", s.now().Sub(s.degradedSince)),
		zap.Int("window", s.windows),
	)
	s.degradedSince = time.Time{}
}

// Status reports the backend the next acquisition is expected to use.
func (s *Selector) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Backend:         KindEmbedded,
		Configured:      s.managed != nil,
		DegradedSince:   s.degradedSince,
		DegradedWindows: s.windows,
	}
	if s.managed != nil && s.degradedSince.IsZero() {
		st.Backend = KindRelational
	}
	return st
}

// Close closes both backends.
func (s *Selector) Close() error {
	var errs []error
	if s.managed != nil {
		errs = append(errs, s.managed.db.Close())
	}
	errs = append(errs, s.embedded.db.Close())
	return errors.Join(errs...)
}
