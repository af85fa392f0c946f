// Package apitest runs an in-process fake of the booking backend. It speaks
// the same envelopes, auth rules and error bodies as the real API so client,
// state and UI tests can exercise the full request path.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/safarline/busadmin/internal/api"
)

// Default credentials accepted by the fake login endpoint.
const (
	Email    = "admin@example.com"
	Password = "secret"
	Token    = "test-token"
)

const defaultPerPage = 10

// Record is one stored entity as loose JSON.
type Record map[string]any

// Request is a request the server received.
type Request struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	Query         url.Values
	Body          Record
}

type stub struct {
	status int
	body   string
}

// Server is a fake backend. All methods are safe for concurrent use.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	tables   map[string][]Record
	required map[string][]string
	stubs    map[string]stub
	requests []Request
	nextID   int64
}

// New starts a server that is closed when t finishes.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		tables:   map[string][]Record{},
		required: map[string][]string{},
		stubs:    map[string]stub{},
		nextID:   1,
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// Client returns an API client pointed at the server and signed in.
func (s *Server) Client(t testing.TB) *api.Client {
	t.Helper()

	c, err := api.NewClient(api.Options{BaseURL: s.URL, Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("api.NewClient: %v", err)
	}
	c.SetToken(Token)
	return c
}

// Seed appends records to a resource table. Each record needs an "id".
func (s *Server) Seed(resource string, records ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range records {
		dup := cloneRecord(rec)
		if id := idOf(dup["id"]); id >= s.nextID {
			s.nextID = id + 1
		}
		s.tables[resource] = append(s.tables[resource], dup)
	}
}

// Records returns a copy of a resource table in storage order.
func (s *Server) Records(resource string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, len(s.tables[resource]))
	for _, rec := range s.tables[resource] {
		out = append(out, cloneRecord(rec))
	}
	return out
}

// Require makes create and update on resource fail with 422 when any of the
// fields is missing or blank.
func (s *Server) Require(resource string, fields ...string) {
	s.mu.Lock()
	s.required[resource] = fields
	s.mu.Unlock()
}

// Stub answers every request for method and path with a fixed status and
// body until cleared with Unstub.
func (s *Server) Stub(method, path string, status int, body string) {
	s.mu.Lock()
	s.stubs[method+" "+path] = stub{status: status, body: body}
	s.mu.Unlock()
}

// Unstub removes a stub.
func (s *Server) Unstub(method, path string) {
	s.mu.Lock()
	delete(s.stubs, method+" "+path)
	s.mu.Unlock()
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"status": "ok"}})
	})
	r.Post("/auth/login", s.handleLogin)

	r.Group(func(pr chi.Router) {
		pr.Use(s.requireToken)

		pr.Post("/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{}})
		})

		pr.Route("/{resource}", func(rr chi.Router) {
			rr.Get("/", s.handleList)
			rr.Post("/list", s.handleList)
			rr.Post("/", s.handleCreate)
			rr.Post("/update", s.handleUpdate)
			rr.Get("/{id}", s.handleShow)
			rr.Delete("/{id}", s.handleDelete)
		})
	})
	return r
}

// record logs the request and serves stubs before routing.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := readBody(r)
		r = r.WithContext(withBody(r.Context(), body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			Query:         r.URL.Query(),
			Body:          body,
		})
		st, stubbed := s.stubs[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if stubbed {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(st.status)
			_, _ = io.WriteString(w, st.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header != Token && header != "Bearer "+Token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthenticated."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	if str(body["email"]) != Email || str(body["password"]) != Password {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "The given data was invalid.",
			"errors":  map[string]any{"email": []string{"These credentials do not match our records."}},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"token": Token,
		"user":  map[string]any{"id": 1, "name": "Admin", "email": Email, "role": "admin"},
	}})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	params := r.URL.Query()
	if r.Method == http.MethodPost {
		params = url.Values{}
		for k, v := range bodyFrom(r.Context()) {
			params.Set(k, str(v))
		}
	}

	page := atoiDefault(params.Get("page"), 1)
	perPage := atoiDefault(params.Get("per_page"), defaultPerPage)

	s.mu.Lock()
	matched := make([]Record, 0, len(s.tables[resource]))
	for _, rec := range s.tables[resource] {
		if matches(rec, params) {
			matched = append(matched, cloneRecord(rec))
		}
	}
	s.mu.Unlock()

	total := len(matched)
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"items": matched[start:end],
		"data":  map[string]any{"current_page": page, "last_page": lastPage, "total": total},
	}})
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	id := idOf(chi.URLParam(r, "id"))

	s.mu.Lock()
	idx := s.indexOf(resource, id)
	var rec Record
	if idx >= 0 {
		rec = cloneRecord(s.tables[resource][idx])
	}
	s.mu.Unlock()

	if idx < 0 {
		writeNotFound(w)
		return
	}
	writeItem(w, http.StatusOK, rec)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	body := bodyFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	if errs := s.missing(resource, body); len(errs) > 0 {
		writeInvalid(w, errs)
		return
	}
	rec := cloneRecord(body)
	rec["id"] = s.nextID
	s.nextID++
	s.tables[resource] = append(s.tables[resource], rec)
	writeItem(w, http.StatusCreated, cloneRecord(rec))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	body := bodyFrom(r.Context())
	id := idOf(body["id"])

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(resource, id)
	if idx < 0 {
		writeNotFound(w)
		return
	}
	if errs := s.missing(resource, body); len(errs) > 0 {
		writeInvalid(w, errs)
		return
	}
	rec := s.tables[resource][idx]
	for k, v := range body {
		rec[k] = v
	}
	rec["id"] = id
	writeItem(w, http.StatusOK, cloneRecord(rec))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	id := idOf(chi.URLParam(r, "id"))

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(resource, id)
	if idx < 0 {
		writeNotFound(w)
		return
	}
	table := s.tables[resource]
	s.tables[resource] = append(table[:idx:idx], table[idx+1:]...)
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{}})
}

// indexOf must be called with s.mu held.
func (s *Server) indexOf(resource string, id int64) int {
	for i, rec := range s.tables[resource] {
		if idOf(rec["id"]) == id {
			return i
		}
	}
	return -1
}

// missing must be called with s.mu held.
func (s *Server) missing(resource string, body Record) map[string][]string {
	errs := map[string][]string{}
	for _, field := range s.required[resource] {
		if strings.TrimSpace(str(body[field])) == "" {
			errs[field] = []string{fmt.Sprintf("The %s field is required.", strings.ReplaceAll(field, "_", " "))}
		}
	}
	return errs
}

// matches applies search and exact-match filters. Unknown filter keys are
// ignored, as the backend does.
func matches(rec Record, params url.Values) bool {
	for key := range params {
		value := strings.TrimSpace(params.Get(key))
		if value == "" {
			continue
		}
		switch key {
		case "page", "per_page":
			continue
		case "search":
			if !containsText(rec, strings.ToLower(value)) {
				return false
			}
		default:
			field, ok := rec[key]
			if ok && str(field) != value {
				return false
			}
		}
	}
	return true
}

func containsText(v any, needle string) bool {
	switch t := v.(type) {
	case Record:
		return containsText(map[string]any(t), needle)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if containsText(t[k], needle) {
				return true
			}
		}
	case string:
		return strings.Contains(strings.ToLower(t), needle)
	}
	return false
}

func writeItem(w http.ResponseWriter, status int, rec Record) {
	writeJSON(w, status, map[string]any{"data": map[string]any{"item": rec}})
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]any{"message": "Record not found."})
}

func writeInvalid(w http.ResponseWriter, errs map[string][]string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"message": "The given data was invalid.",
		"errors":  errs,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readBody(r *http.Request) Record {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var rec Record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			return Record{}
		}
		return rec
	case "multipart/form-data":
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			return Record{}
		}
		rec := unflatten(r.MultipartForm.Value)
		for field, headers := range r.MultipartForm.File {
			if len(headers) > 0 {
				rec[field] = headers[0].Filename
			}
		}
		return rec
	}
	return Record{}
}

// unflatten rebuilds key[sub] form fields into nested objects and coerces
// id references to numbers.
func unflatten(form map[string][]string) Record {
	rec := Record{}
	for key, values := range form {
		if len(values) == 0 {
			continue
		}
		if strings.HasSuffix(key, "[]") {
			rec[strings.TrimSuffix(key, "[]")] = values
			continue
		}
		if open := strings.Index(key, "["); open > 0 && strings.HasSuffix(key, "]") {
			parent, sub := key[:open], key[open+1:len(key)-1]
			nested, _ := rec[parent].(map[string]any)
			if nested == nil {
				nested = map[string]any{}
				rec[parent] = nested
			}
			nested[sub] = values[0]
			continue
		}
		rec[key] = coerce(key, values[0])
	}
	return rec
}

func coerce(key, value string) any {
	if key == "id" || strings.HasSuffix(key, "_id") {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return value
}

func cloneRecord(rec Record) Record {
	raw, err := json.Marshal(rec)
	if err != nil {
		return Record{}
	}
	var dup Record
	if err := json.Unmarshal(raw, &dup); err != nil {
		return Record{}
	}
	return dup
}

func idOf(v any) int64 {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int64:
		return t
	case float64:
		return int64(t)
	case json.Number:
		n, _ := t.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n
	}
	return 0
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func atoiDefault(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
