package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ErrUnsupported is returned for operations the backend does not expose for
// a resource. No request is made.
var ErrUnsupported = errors.New("operation not supported for this resource")

// Query configures a list request.
type Query struct {
	Page    int
	PerPage int
	Search  string
	Filters map[string]string
}

// Values encodes the query parameters. Empty values are omitted.
func (q Query) Values() url.Values {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		values.Set("search", s)
	}
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := strings.TrimSpace(q.Filters[k]); v != "" {
			values.Set(k, v)
		}
	}
	return values
}

// Clone returns an independent copy.
func (q Query) Clone() Query {
	dup := q
	if q.Filters != nil {
		dup.Filters = make(map[string]string, len(q.Filters))
		for k, v := range q.Filters {
			dup.Filters[k] = v
		}
	}
	return dup
}

// Resource performs the CRUD calls of one endpoint and decodes results as T.
type Resource[T any] struct {
	req Requester
	ep  Endpoint
}

// NewResource binds an endpoint to a requester.
func NewResource[T any](req Requester, ep Endpoint) *Resource[T] {
	return &Resource[T]{req: req, ep: ep}
}

// Endpoint returns the bound endpoint.
func (r *Resource[T]) Endpoint() Endpoint {
	return r.ep
}

// List fetches one page.
func (r *Resource[T]) List(ctx context.Context, q Query) (ListResult[T], error) {
	call := Call{Method: r.ep.listMethod(), Path: r.ep.listPath(), Group: r.ep.Group}
	if call.Method == http.MethodGet {
		call.Query = q.Values()
	} else {
		values := map[string]any{}
		for k, v := range q.Values() {
			values[k] = v[0]
		}
		p := NewPayload(values)
		call.Payload = &p
		call.Multipart = r.ep.MultipartList
	}
	body, err := r.req.Do(ctx, call)
	if err != nil {
		return ListResult[T]{}, fmt.Errorf("list %s: %w", r.ep.Name, err)
	}
	return DecodeList[T](body)
}

// Show fetches one entity by id.
func (r *Resource[T]) Show(ctx context.Context, id int64) (T, error) {
	var zero T
	body, err := r.req.Do(ctx, Call{
		Method: http.MethodGet,
		Path:   r.itemPath(id),
		Group:  r.ep.Group,
	})
	if err != nil {
		return zero, fmt.Errorf("show %s %d: %w", r.ep.Name, id, err)
	}
	return DecodeItem[T](body)
}

// Create posts a new entity and returns it as echoed by the server.
func (r *Resource[T]) Create(ctx context.Context, p Payload) (T, error) {
	var zero T
	if r.ep.ReadOnly {
		return zero, fmt.Errorf("create %s: %w", r.ep.Name, ErrUnsupported)
	}
	body, err := r.req.Do(ctx, Call{
		Method:    http.MethodPost,
		Path:      r.ep.Path,
		Payload:   &p,
		Multipart: r.ep.MultipartWrite,
		Group:     r.ep.Group,
	})
	if err != nil {
		return zero, fmt.Errorf("create %s: %w", r.ep.Name, err)
	}
	return DecodeItem[T](body)
}

// Update posts changed fields to the resource's update endpoint. The
// backend takes updates as POST <path>/update with the id in the body.
func (r *Resource[T]) Update(ctx context.Context, id int64, p Payload) (T, error) {
	var zero T
	withID := p.with("id", id)
	body, err := r.req.Do(ctx, Call{
		Method:    http.MethodPost,
		Path:      r.ep.Path + "/update",
		Payload:   &withID,
		Multipart: r.ep.MultipartWrite,
		Group:     r.ep.Group,
	})
	if err != nil {
		return zero, fmt.Errorf("update %s %d: %w", r.ep.Name, id, err)
	}
	return DecodeItem[T](body)
}

// Delete removes an entity by id.
func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	if !r.ep.Deletable {
		return fmt.Errorf("delete %s: %w", r.ep.Name, ErrUnsupported)
	}
	if _, err := r.req.Do(ctx, Call{
		Method: http.MethodDelete,
		Path:   r.itemPath(id),
		Group:  r.ep.Group,
	}); err != nil {
		return fmt.Errorf("delete %s %d: %w", r.ep.Name, id, err)
	}
	return nil
}

func (r *Resource[T]) itemPath(id int64) string {
	return r.ep.Path + "/" + strconv.FormatInt(id, 10)
}
