package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/safarline/busadmin/internal/api"
	"github.com/safarline/busadmin/internal/domain"
)

// ErrSuperseded is returned by a read whose result was discarded because a
// newer read of the same kind was dispatched after it.
var ErrSuperseded = errors.New("superseded by a newer request")

// Backend performs the network calls for one resource. *api.Resource
// implements it.
type Backend[T any] interface {
	Endpoint() api.Endpoint
	List(ctx context.Context, q api.Query) (api.ListResult[T], error)
	Show(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, p api.Payload) (T, error)
	Update(ctx context.Context, id int64, p api.Payload) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Snapshot is a copy of a collection's state at one point in time.
type Snapshot[T any] struct {
	Loading  bool
	Items    []T
	Selected *T
	Err      error
	Page     domain.PageInfo
	// Query is the last list query dispatched.
	Query api.Query
	// Patched is set when a write changed Items locally after the last list.
	// The list may then differ from server ordering until refreshed.
	Patched   bool
	UpdatedAt time.Time
}

type opKind int

const (
	opList opKind = iota
	opShow
	opWrite
)

// Collection owns the state of one resource and mediates all network access
// to it.
type Collection[T domain.Entity] struct {
	backend Backend[T]
	logger  *zap.Logger
	perPage int

	mu       sync.RWMutex
	snapshot Snapshot[T]
	pending  int
	latest   map[opKind]uint64
}

// NewCollection returns an empty collection for backend. perPage is sent
// with list queries that don't set their own.
func NewCollection[T domain.Entity](backend Backend[T], perPage int, logger *zap.Logger) *Collection[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection[T]{
		backend: backend,
		logger:  logger.Named("state").With(zap.String("resource", backend.Endpoint().Name)),
		perPage: perPage,
		latest:  map[opKind]uint64{},
	}
}

// Endpoint returns the backend endpoint description.
func (c *Collection[T]) Endpoint() api.Endpoint {
	return c.backend.Endpoint()
}

// Snapshot returns a copy of the current state.
func (c *Collection[T]) Snapshot() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := c.snapshot
	snap.Items = cloneItems(c.snapshot.Items)
	if c.snapshot.Selected != nil {
		sel := *c.snapshot.Selected
		snap.Selected = &sel
	}
	snap.Query = c.snapshot.Query.Clone()
	return snap
}

// List fetches one page and replaces the items and pagination wholesale.
func (c *Collection[T]) List(ctx context.Context, q api.Query) (api.ListResult[T], error) {
	if q.PerPage == 0 {
		q.PerPage = c.perPage
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	token := c.begin(opList, func(s *Snapshot[T]) { s.Query = q.Clone() })

	res, err := c.backend.List(ctx, q)
	if stale := c.finish(opList, token, err, func(s *Snapshot[T]) {
		s.Items = cloneItems(res.Items)
		s.Page = res.Page
		s.Patched = false
	}); stale {
		return res, ErrSuperseded
	}
	return res, err
}

// Refresh replays the last list query.
func (c *Collection[T]) Refresh(ctx context.Context) (api.ListResult[T], error) {
	c.mu.RLock()
	q := c.snapshot.Query.Clone()
	c.mu.RUnlock()
	return c.List(ctx, q)
}

// Show fetches one entity and makes it the selected item.
func (c *Collection[T]) Show(ctx context.Context, id int64) (T, error) {
	token := c.begin(opShow, nil)

	item, err := c.backend.Show(ctx, id)
	if stale := c.finish(opShow, token, err, func(s *Snapshot[T]) {
		sel := item
		s.Selected = &sel
	}); stale {
		return item, ErrSuperseded
	}
	return item, err
}

// Create posts a new entity. The echoed entity is prepended to the local
// list and the total incremented without refetching; the list is marked
// Patched because the server may order it elsewhere.
func (c *Collection[T]) Create(ctx context.Context, p api.Payload) (T, error) {
	if c.backend.Endpoint().ReadOnly {
		var zero T
		return zero, api.ErrUnsupported
	}
	token := c.begin(opWrite, nil)

	item, err := c.backend.Create(ctx, p)
	c.finish(opWrite, token, err, func(s *Snapshot[T]) {
		items := make([]T, 0, len(s.Items)+1)
		items = append(items, item)
		s.Items = append(items, s.Items...)
		s.Page.Total++
		s.Patched = true
	})
	return item, err
}

// Update posts changed fields for id and replaces the matching entity in
// place, and the selected item when it has the same id.
func (c *Collection[T]) Update(ctx context.Context, id int64, p api.Payload) (T, error) {
	token := c.begin(opWrite, nil)

	item, err := c.backend.Update(ctx, id, p)
	c.finish(opWrite, token, err, func(s *Snapshot[T]) {
		items := make([]T, len(s.Items))
		for i, existing := range s.Items {
			if existing.EntityID() == id {
				items[i] = item
			} else {
				items[i] = existing
			}
		}
		s.Items = items
		if s.Selected != nil && (*s.Selected).EntityID() == id {
			sel := item
			s.Selected = &sel
		}
		s.Patched = true
	})
	return item, err
}

// Delete removes id on the server and from the local list. Resources without
// a delete endpoint fail with api.ErrUnsupported and leave state untouched.
func (c *Collection[T]) Delete(ctx context.Context, id int64) error {
	if !c.backend.Endpoint().Deletable {
		return api.ErrUnsupported
	}
	token := c.begin(opWrite, nil)

	err := c.backend.Delete(ctx, id)
	c.finish(opWrite, token, err, func(s *Snapshot[T]) {
		items := make([]T, 0, len(s.Items))
		for _, existing := range s.Items {
			if existing.EntityID() != id {
				items = append(items, existing)
			}
		}
		s.Items = items
		if s.Page.Total > 0 {
			s.Page.Total--
		}
		if s.Selected != nil && (*s.Selected).EntityID() == id {
			s.Selected = nil
		}
		s.Patched = true
	})
	return err
}

// ClearSelection drops the selected item, as a form reset does.
func (c *Collection[T]) ClearSelection() {
	c.mu.Lock()
	c.snapshot.Selected = nil
	c.mu.Unlock()
}

// ClearError drops the recorded error.
func (c *Collection[T]) ClearError() {
	c.mu.Lock()
	c.snapshot.Err = nil
	c.mu.Unlock()
}

// begin marks an operation in flight and returns its request id.
func (c *Collection[T]) begin(kind opKind, prepare func(*Snapshot[T])) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending++
	c.snapshot.Loading = true
	c.latest[kind]++
	if prepare != nil {
		prepare(&c.snapshot)
	}
	return c.latest[kind]
}

// finish records an operation's outcome. Reads that are no longer the latest
// of their kind are discarded and reported as stale. Writes always apply,
// since each is a distinct server mutation.
func (c *Collection[T]) finish(kind opKind, token uint64, err error, apply func(*Snapshot[T])) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending--
	c.snapshot.Loading = c.pending > 0

	if kind != opWrite && token != c.latest[kind] {
		c.logger.Debug("discarding superseded result", zap.Int("kind", int(kind)), zap.Uint64("request", token))
		return true
	}

	c.snapshot.UpdatedAt = time.Now()
	if err != nil {
		c.snapshot.Err = err
		c.logger.Info("operation failed", zap.Int("kind", int(kind)), zap.Error(err))
		return false
	}
	apply(&c.snapshot)
	c.snapshot.Err = nil
	return false
}

func cloneItems[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
