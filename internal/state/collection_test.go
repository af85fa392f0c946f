package state

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safarline/busadmin/internal/api"
	"github.com/safarline/busadmin/internal/apitest"
	"github.com/safarline/busadmin/internal/domain"
)

func country(id int64, name string) apitest.Record {
	return apitest.Record{"id": id, "name": map[string]any{"en": name}, "code": "", "status": "active"}
}

func names(items []domain.Country) []string {
	out := make([]string, 0, len(items))
	for _, c := range items {
		out = append(out, c.Name.EN)
	}
	return out
}

func newCountries(t *testing.T) (*apitest.Server, *Collection[domain.Country]) {
	t.Helper()
	srv := apitest.New(t)
	backend := api.NewResource[domain.Country](srv.Client(t), api.Countries)
	return srv, NewCollection[domain.Country](backend, 10, nil)
}

func TestCollection_ListReplacesItemsAndPagination(t *testing.T) {
	t.Parallel()

	srv := apitest.New(t)
	srv.Stub(http.MethodGet, "/provinces", http.StatusOK,
		`{"data":{"items":[{"id":7,"name":{"en":"Kabul"}}],"data":{"current_page":2,"last_page":3,"total":25}}}`)
	provinces := NewCollection[domain.Province](api.NewResource[domain.Province](srv.Client(t), api.Provinces), 10, nil)

	res, err := provinces.List(context.Background(), api.Query{Page: 2, Search: "Kabul"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	snap := provinces.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, int64(7), snap.Items[0].ID)
	assert.Equal(t, domain.PageInfo{CurrentPage: 2, LastPage: 3, Total: 25}, snap.Page)
	assert.False(t, snap.Loading)
	assert.NoError(t, snap.Err)

	req, ok := srv.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "2", req.Query.Get("page"))
	assert.Equal(t, "Kabul", req.Query.Get("search"))
	assert.Equal(t, "10", req.Query.Get("per_page"))
}

func TestCollection_CreatePrependsAndIncrementsTotal(t *testing.T) {
	t.Parallel()

	srv, countries := newCountries(t)
	srv.Seed("countries", country(1, "Kabul"))
	ctx := context.Background()

	_, err := countries.List(ctx, api.Query{})
	require.NoError(t, err)

	created, err := countries.Create(ctx, api.NewPayload(map[string]any{
		"name": map[string]any{"en": "Helmand"},
	}))
	require.NoError(t, err)
	assert.Equal(t, "Helmand", created.Name.EN)

	snap := countries.Snapshot()
	assert.Equal(t, []string{"Helmand", "Kabul"}, names(snap.Items))
	assert.Equal(t, 2, snap.Page.Total)
	assert.True(t, snap.Patched)

	// The server appends; a refresh adopts its ordering and clears the flag.
	_, err = countries.Refresh(ctx)
	require.NoError(t, err)
	snap = countries.Snapshot()
	assert.Equal(t, []string{"Kabul", "Helmand"}, names(snap.Items))
	assert.False(t, snap.Patched)
}

func TestCollection_UpdateReplacesInPlace(t *testing.T) {
	t.Parallel()

	srv, countries := newCountries(t)
	srv.Seed("countries", country(1, "Old"), country(2, "Other"))
	ctx := context.Background()

	_, err := countries.List(ctx, api.Query{})
	require.NoError(t, err)
	_, err = countries.Show(ctx, 1)
	require.NoError(t, err)

	_, err = countries.Update(ctx, 1, api.NewPayload(map[string]any{
		"name": map[string]any{"en": "Updated"},
	}))
	require.NoError(t, err)

	snap := countries.Snapshot()
	assert.Equal(t, []string{"Updated", "Other"}, names(snap.Items))
	require.NotNil(t, snap.Selected)
	assert.Equal(t, "Updated", snap.Selected.Name.EN)

	req, _ := srv.LastRequest()
	assert.Equal(t, "/countries/update", req.Path)
	assert.EqualValues(t, 1, req.Body["id"])
}

func TestCollection_FailureLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	srv, countries := newCountries(t)
	srv.Seed("countries", country(1, "Kabul"), country(2, "Herat"))
	ctx := context.Background()

	_, err := countries.List(ctx, api.Query{})
	require.NoError(t, err)
	before := countries.Snapshot()

	srv.Stub(http.MethodPost, "/countries/update", http.StatusInternalServerError, `{"message":"Server Error"}`)
	_, err = countries.Update(ctx, 1, api.NewPayload(map[string]any{"code": "AF"}))
	require.Error(t, err)

	var serverErr *api.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusInternalServerError, serverErr.Status)

	after := countries.Snapshot()
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.Page, after.Page)
	assert.False(t, after.Loading)
	assert.ErrorAs(t, after.Err, &serverErr)

	srv.Unstub(http.MethodPost, "/countries/update")
	_, err = countries.Refresh(ctx)
	require.NoError(t, err)
	assert.NoError(t, countries.Snapshot().Err)
}

func TestCollection_ValidationErrorCarriesFields(t *testing.T) {
	t.Parallel()

	srv, countries := newCountries(t)
	srv.Require("countries", "code", "status")

	_, err := countries.Create(context.Background(), api.NewPayload(map[string]any{"status": "active"}))
	require.Error(t, err)

	fields := api.FieldErrorsOf(err)
	assert.Equal(t, domain.FieldErrors{"code": "The code field is required."}, fields)
	assert.Empty(t, countries.Snapshot().Items)
	assert.Equal(t, 0, countries.Snapshot().Page.Total)
}

func TestCollection_DeleteFiltersAndDecrements(t *testing.T) {
	t.Parallel()

	srv, countries := newCountries(t)
	srv.Seed("countries", country(1, "Kabul"), country(2, "Herat"), country(3, "Balkh"))
	ctx := context.Background()

	_, err := countries.List(ctx, api.Query{})
	require.NoError(t, err)
	_, err = countries.Show(ctx, 2)
	require.NoError(t, err)

	require.NoError(t, countries.Delete(ctx, 2))

	snap := countries.Snapshot()
	assert.Equal(t, []string{"Kabul", "Balkh"}, names(snap.Items))
	assert.Equal(t, 2, snap.Page.Total)
	assert.Nil(t, snap.Selected)
	assert.Len(t, srv.Records("countries"), 2)
}

func TestCollection_DeleteUnsupportedSkipsNetwork(t *testing.T) {
	t.Parallel()

	srv := apitest.New(t)
	buses := NewCollection[domain.Bus](api.NewResource[domain.Bus](srv.Client(t), api.Buses), 10, nil)

	err := buses.Delete(context.Background(), 1)
	require.ErrorIs(t, err, api.ErrUnsupported)
	assert.Empty(t, srv.Requests())
	assert.NoError(t, buses.Snapshot().Err)
}

func TestCollection_CreateReadOnlySkipsNetwork(t *testing.T) {
	t.Parallel()

	srv := apitest.New(t)
	bookings := NewCollection[domain.Booking](api.NewResource[domain.Booking](srv.Client(t), api.Bookings), 10, nil)

	_, err := bookings.Create(context.Background(), api.NewPayload(nil))
	require.ErrorIs(t, err, api.ErrUnsupported)
	assert.Empty(t, srv.Requests())
}

func TestCollection_NetworkError(t *testing.T) {
	t.Parallel()

	srv, countries := newCountries(t)
	srv.Close()

	_, err := countries.List(context.Background(), api.Query{})
	require.Error(t, err)
	assert.Equal(t, api.NetworkMessage, api.Message(err))

	snap := countries.Snapshot()
	assert.False(t, snap.Loading)
	assert.Error(t, snap.Err)
}

func TestCollection_UnauthorizedIsServerError(t *testing.T) {
	t.Parallel()

	srv := apitest.New(t)
	c := srv.Client(t)
	c.SetToken("wrong")
	countries := NewCollection[domain.Country](api.NewResource[domain.Country](c, api.Countries), 10, nil)

	_, err := countries.List(context.Background(), api.Query{})
	var serverErr *api.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusUnauthorized, serverErr.Status)
	assert.Equal(t, "Unauthenticated.", serverErr.Message)
}

// gatedBackend lets a test decide when each List call returns.
type gatedBackend struct {
	mu      sync.Mutex
	entered chan int
	release map[int]chan api.ListResult[domain.Country]
	calls   int
}

func newGatedBackend() *gatedBackend {
	return &gatedBackend{
		entered: make(chan int, 8),
		release: map[int]chan api.ListResult[domain.Country]{},
	}
}

func (g *gatedBackend) gate(call int) chan api.ListResult[domain.Country] {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.release[call]
	if !ok {
		ch = make(chan api.ListResult[domain.Country], 1)
		g.release[call] = ch
	}
	return ch
}

func (g *gatedBackend) Endpoint() api.Endpoint { return api.Countries }

func (g *gatedBackend) List(ctx context.Context, _ api.Query) (api.ListResult[domain.Country], error) {
	g.mu.Lock()
	g.calls++
	call := g.calls
	g.mu.Unlock()

	ch := g.gate(call)
	g.entered <- call
	select {
	case res := <-ch:
		return res, nil
	case <-ctx.Done():
		return api.ListResult[domain.Country]{}, ctx.Err()
	}
}

func (g *gatedBackend) Show(context.Context, int64) (domain.Country, error) {
	return domain.Country{}, errors.New("not used")
}

func (g *gatedBackend) Create(context.Context, api.Payload) (domain.Country, error) {
	return domain.Country{}, errors.New("not used")
}

func (g *gatedBackend) Update(context.Context, int64, api.Payload) (domain.Country, error) {
	return domain.Country{}, errors.New("not used")
}

func (g *gatedBackend) Delete(context.Context, int64) error {
	return errors.New("not used")
}

func listResult(page int, items ...domain.Country) api.ListResult[domain.Country] {
	return api.ListResult[domain.Country]{
		Items: items,
		Page:  domain.PageInfo{CurrentPage: page, LastPage: 3, Total: 25},
	}
}

func TestCollection_SupersededListIsDiscarded(t *testing.T) {
	t.Parallel()

	backend := newGatedBackend()
	countries := NewCollection[domain.Country](backend, 10, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	firstErr := make(chan error, 1)
	go func() {
		_, err := countries.List(ctx, api.Query{Page: 1})
		firstErr <- err
	}()
	require.Equal(t, 1, <-backend.entered)

	secondErr := make(chan error, 1)
	go func() {
		_, err := countries.List(ctx, api.Query{Page: 2})
		secondErr <- err
	}()
	require.Equal(t, 2, <-backend.entered)

	assert.True(t, countries.Snapshot().Loading)

	// The newer request resolves first.
	backend.gate(2) <- listResult(2, domain.Country{ID: 2, Name: domain.LocalizedName{EN: "Page two"}})
	require.NoError(t, <-secondErr)
	assert.True(t, countries.Snapshot().Loading, "first list is still in flight")

	backend.gate(1) <- listResult(1, domain.Country{ID: 1, Name: domain.LocalizedName{EN: "Page one"}})
	require.ErrorIs(t, <-firstErr, ErrSuperseded)

	snap := countries.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, []string{"Page two"}, names(snap.Items))
	assert.Equal(t, 2, snap.Page.CurrentPage)
	assert.Equal(t, 2, snap.Query.Page)
}

func TestCollection_SnapshotIsACopy(t *testing.T) {
	t.Parallel()

	srv, countries := newCountries(t)
	srv.Seed("countries", country(1, "Kabul"))
	_, err := countries.List(context.Background(), api.Query{Filters: map[string]string{"status": "active"}})
	require.NoError(t, err)

	snap := countries.Snapshot()
	snap.Items[0].Name.EN = "Mutated"
	snap.Query.Filters["status"] = "inactive"

	again := countries.Snapshot()
	assert.Equal(t, "Kabul", again.Items[0].Name.EN)
	assert.Equal(t, "active", again.Query.Filters["status"])
}

func TestCollection_ClearSelectionAndError(t *testing.T) {
	t.Parallel()

	srv, countries := newCountries(t)
	srv.Seed("countries", country(1, "Kabul"))
	ctx := context.Background()

	_, err := countries.Show(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, countries.Snapshot().Selected)

	countries.ClearSelection()
	assert.Nil(t, countries.Snapshot().Selected)

	_, err = countries.Show(ctx, 99)
	require.Error(t, err)
	require.Error(t, countries.Snapshot().Err)

	countries.ClearError()
	assert.NoError(t, countries.Snapshot().Err)
}
