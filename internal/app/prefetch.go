package app

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/safarline/busadmin/internal/api"
	"github.com/safarline/busadmin/internal/state"
)

const (
	lookupPerPage   = 100
	prefetchWorkers = 4
)

// lister is the part of a collection the prefetcher needs.
type lister interface {
	Endpoint() api.Endpoint
	listFirst(ctx context.Context) error
}

type listAdapter[T any] struct {
	endpoint func() api.Endpoint
	list     func(ctx context.Context, q api.Query) (api.ListResult[T], error)
}

func (l listAdapter[T]) Endpoint() api.Endpoint { return l.endpoint() }

func (l listAdapter[T]) listFirst(ctx context.Context) error {
	_, err := l.list(ctx, api.Query{Page: 1, PerPage: lookupPerPage})
	return err
}

func adapt[T any](endpoint func() api.Endpoint, list func(context.Context, api.Query) (api.ListResult[T], error)) lister {
	return listAdapter[T]{endpoint: endpoint, list: list}
}

// lookups are the collections forms pick ids from.
func lookups(store *state.Store) []lister {
	return []lister{
		adapt(store.Countries.Endpoint, store.Countries.List),
		adapt(store.Provinces.Endpoint, store.Provinces.List),
		adapt(store.Cities.Endpoint, store.Cities.List),
		adapt(store.Routes.Endpoint, store.Routes.List),
		adapt(store.Vendors.Endpoint, store.Vendors.List),
		adapt(store.Buses.Endpoint, store.Buses.List),
		adapt(store.Drivers.Endpoint, store.Drivers.List),
	}
}

// Prefetch loads the first page of every lookup collection concurrently so
// id pickers are populated when a form opens. A failing collection does not
// stop the others; all failures are returned joined.
func Prefetch(ctx context.Context, store *state.Store, logger *zap.Logger) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	var g errgroup.Group
	g.SetLimit(prefetchWorkers)
	for _, l := range lookups(store) {
		l := l // per-iteration copy; module targets go1.21 loop semantics
		g.Go(func() error {
			if err := l.listFirst(ctx); err != nil {
				logger.Warn("prefetch failed", zap.String("resource", l.Endpoint().Name), zap.Error(err))
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
