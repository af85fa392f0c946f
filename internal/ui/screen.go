package ui

import (
	"context"
	"strconv"

	"github.com/safarline/busadmin/internal/api"
	"github.com/safarline/busadmin/internal/domain"
	"github.com/safarline/busadmin/internal/state"
	"github.com/safarline/busadmin/internal/validate"
)

// column is one list column.
type column struct {
	Title string
	Width int
}

// detailLine is one label/value row of the detail pane.
type detailLine struct {
	Label string
	Value string
}

// listView is a collection snapshot reduced to what the list renders.
type listView struct {
	Loading bool
	Err     error
	Page    domain.PageInfo
	Query   api.Query
	Patched bool
	IDs     []int64
	Rows    [][]string
}

// screen is one resource as the console sees it. Every implementation is a
// binding over a state.Collection.
type screen interface {
	Title() string
	Endpoint() api.Endpoint
	Columns() []column
	View(locale string) listView
	// Detail describes the record with id, from the selection if it was
	// fetched, else from the current page.
	Detail(id int64, locale string) ([]detailLine, bool)
	// Draft returns form values for editing the record with id.
	Draft(id int64) (map[string]string, bool)
	// Form returns the schema for draft. Callers rebuild it whenever the
	// draft changes, since the discriminator may add or drop fields.
	Form(draft map[string]string, mode validate.Mode, locale string) validate.Schema
	Creatable() bool
	Editable() bool
	Deletable() bool

	List(ctx context.Context, q api.Query) error
	Refresh(ctx context.Context) error
	Show(ctx context.Context, id int64) error
	// Save creates when id is zero and updates otherwise.
	Save(ctx context.Context, id int64, p api.Payload) error
	Delete(ctx context.Context, id int64) error
	ClearError()
	ClearSelection()
}

// binding adapts a typed collection to screen.
type binding[T domain.Entity] struct {
	title   string
	coll    *state.Collection[T]
	columns []column
	row     func(item T, locale string) []string
	detail  func(item T, locale string) []detailLine
	// draft and schema are nil for resources without forms.
	draft  func(item T) map[string]string
	schema func(draft map[string]string, mode validate.Mode, locale string) validate.Schema
}

func (b *binding[T]) Title() string          { return b.title }
func (b *binding[T]) Endpoint() api.Endpoint { return b.coll.Endpoint() }
func (b *binding[T]) Columns() []column      { return b.columns }

func (b *binding[T]) Creatable() bool {
	return b.schema != nil && !b.coll.Endpoint().ReadOnly
}

func (b *binding[T]) Editable() bool {
	return b.schema != nil && b.draft != nil
}

func (b *binding[T]) Deletable() bool {
	return b.coll.Endpoint().Deletable
}

func (b *binding[T]) View(locale string) listView {
	snap := b.coll.Snapshot()
	v := listView{
		Loading: snap.Loading,
		Err:     snap.Err,
		Page:    snap.Page,
		Query:   snap.Query,
		Patched: snap.Patched,
		IDs:     make([]int64, 0, len(snap.Items)),
		Rows:    make([][]string, 0, len(snap.Items)),
	}
	for _, item := range snap.Items {
		v.IDs = append(v.IDs, item.EntityID())
		v.Rows = append(v.Rows, b.row(item, locale))
	}
	return v
}

func (b *binding[T]) find(id int64) (T, bool) {
	snap := b.coll.Snapshot()
	if snap.Selected != nil && (*snap.Selected).EntityID() == id {
		return *snap.Selected, true
	}
	for _, item := range snap.Items {
		if item.EntityID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (b *binding[T]) Detail(id int64, locale string) ([]detailLine, bool) {
	item, ok := b.find(id)
	if !ok {
		return nil, false
	}
	lines := []detailLine{{"ID", strconv.FormatInt(id, 10)}}
	return append(lines, b.detail(item, locale)...), true
}

func (b *binding[T]) Draft(id int64) (map[string]string, bool) {
	if b.draft == nil {
		return nil, false
	}
	item, ok := b.find(id)
	if !ok {
		return nil, false
	}
	return b.draft(item), true
}

func (b *binding[T]) Form(draft map[string]string, mode validate.Mode, locale string) validate.Schema {
	return b.schema(draft, mode, locale)
}

func (b *binding[T]) List(ctx context.Context, q api.Query) error {
	_, err := b.coll.List(ctx, q)
	return err
}

func (b *binding[T]) Refresh(ctx context.Context) error {
	_, err := b.coll.Refresh(ctx)
	return err
}

func (b *binding[T]) Show(ctx context.Context, id int64) error {
	_, err := b.coll.Show(ctx, id)
	return err
}

func (b *binding[T]) Save(ctx context.Context, id int64, p api.Payload) error {
	var err error
	if id == 0 {
		_, err = b.coll.Create(ctx, p)
	} else {
		_, err = b.coll.Update(ctx, id, p)
	}
	return err
}

func (b *binding[T]) Delete(ctx context.Context, id int64) error {
	return b.coll.Delete(ctx, id)
}

func (b *binding[T]) ClearError() {
	b.coll.ClearError()
}

func (b *binding[T]) ClearSelection() {
	b.coll.ClearSelection()
}

// lookup returns the label of the record with id in c's current page, or
// "#id" when it isn't loaded.
func lookup[T domain.Entity](c *state.Collection[T], id int64, label func(T) string) string {
	if id == 0 {
		return ""
	}
	for _, item := range c.Snapshot().Items {
		if item.EntityID() == id {
			return label(item)
		}
	}
	return "#" + strconv.FormatInt(id, 10)
}
