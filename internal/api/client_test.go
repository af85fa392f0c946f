package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/safarline/busadmin/internal/domain"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultBaseURL {
		t.Fatalf("url = %q, want %q", u.String(), defaultBaseURL)
	}

	u, err = parseBaseURL("api.example.af/v2/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Path != "/v2" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("parseBaseURL should reject a missing host")
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	c, err := NewClient(Options{
		BaseURL: server.URL + "/api/v1",
		SchemeFor: func(group string) string {
			if group == GroupCMS {
				return SchemeRaw
			}
			return SchemeBearer
		},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	c.SetToken("secret")
	return c
}

func writeItem(w http.ResponseWriter, item any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"item": item}})
}

func TestClient_AuthorizationSchemePerGroup(t *testing.T) {
	t.Parallel()

	got := map[string]string{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got[r.URL.Path] = r.Header.Get("Authorization")
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing X-Request-ID on %s", r.URL.Path)
		}
		writeItem(w, map[string]any{"id": 1})
	})

	ctx := context.Background()
	if _, err := NewResource[domain.Country](c, Countries).Show(ctx, 1); err != nil {
		t.Fatalf("Show countries: %v", err)
	}
	if _, err := NewResource[domain.Page](c, Pages).Show(ctx, 1); err != nil {
		t.Fatalf("Show pages: %v", err)
	}
	if _, err := c.Do(ctx, Call{Path: "/public", Anonymous: true}); err != nil {
		t.Fatalf("Do anonymous: %v", err)
	}

	if got["/api/v1/countries/1"] != "Bearer secret" {
		t.Fatalf("admin Authorization = %q, want Bearer secret", got["/api/v1/countries/1"])
	}
	if got["/api/v1/pages/1"] != "secret" {
		t.Fatalf("cms Authorization = %q, want raw token", got["/api/v1/pages/1"])
	}
	if got["/api/v1/public"] != "" {
		t.Fatalf("anonymous Authorization = %q, want empty", got["/api/v1/public"])
	}
}

func TestClient_CreateEncodesJSONWithoutFiles(t *testing.T) {
	t.Parallel()

	var contentType string
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeItem(w, map[string]any{"id": 99, "name": "Helmand"})
	})

	got, err := NewResource[domain.Country](c, Countries).Create(context.Background(), NewPayload(map[string]any{
		"name": map[string]any{"en": "Helmand"},
	}))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if got.ID != 99 || got.Name.EN != "Helmand" {
		t.Fatalf("Create = %#v, want id=99 Helmand", got)
	}
	if contentType != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", contentType)
	}
	name, _ := body["name"].(map[string]any)
	if name["en"] != "Helmand" {
		t.Fatalf("body = %#v, want nested name", body)
	}
}

func TestClient_CreateEncodesMultipartWithFile(t *testing.T) {
	t.Parallel()

	var fields map[string][]string
	var fileContent, fileName string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}
		fields = r.MultipartForm.Value
		f, hdr, err := r.FormFile("logo")
		if err == nil {
			data, _ := io.ReadAll(f)
			fileContent = string(data)
			fileName = hdr.Filename
			_ = f.Close()
		}
		writeItem(w, map[string]any{"id": 5})
	})

	p := NewPayload(map[string]any{
		"title":  map[string]any{"en": "About", "fa": "درباره"},
		"active": true,
		"seats":  []int{1, 2},
	}).WithFile("logo", File{
		Name: "logo.png",
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("PNGDATA")), nil },
	})

	if _, err := NewResource[domain.Country](c, Countries).Create(context.Background(), p); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if fileContent != "PNGDATA" || fileName != "logo.png" {
		t.Fatalf("file = %q (%q), want PNGDATA logo.png", fileContent, fileName)
	}
	if fields["title[en]"][0] != "About" || fields["title[fa]"][0] != "درباره" {
		t.Fatalf("fields = %v, want flattened title", fields)
	}
	if fields["active"][0] != "1" {
		t.Fatalf("active = %v, want 1", fields["active"])
	}
	if len(fields["seats[]"]) != 2 {
		t.Fatalf("seats[] = %v, want two values", fields["seats[]"])
	}
}

func TestClient_MultipartFlagWithoutFiles(t *testing.T) {
	t.Parallel()

	var contentType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		writeItem(w, map[string]any{"id": 1})
	})
	if _, err := NewResource[domain.Bus](c, Buses).Create(context.Background(), NewPayload(map[string]any{"bus_number": "KBL-1"})); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		t.Fatalf("Content-Type = %q, want multipart", contentType)
	}
}

func TestResource_ListEncodesQueryAndDecodesEnvelope(t *testing.T) {
	t.Parallel()

	var query string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"data":{"items":[{"id":7,"name":"Kabul"}],"data":{"current_page":2,"last_page":3,"total":25}}}`))
	})

	res, err := NewResource[domain.Province](c, Provinces).List(context.Background(), Query{
		Page:    2,
		Search:  " Kabul ",
		Filters: map[string]string{"country_id": "1", "status": ""},
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if query != "country_id=1&page=2&search=Kabul" {
		t.Fatalf("query = %q", query)
	}
	if len(res.Items) != 1 || res.Items[0].ID != 7 || res.Items[0].Name.EN != "Kabul" {
		t.Fatalf("items = %#v", res.Items)
	}
	want := domain.PageInfo{CurrentPage: 2, LastPage: 3, Total: 25}
	if res.Page != want {
		t.Fatalf("page = %#v, want %#v", res.Page, want)
	}
}

func TestResource_PostListUsesMultipartForm(t *testing.T) {
	t.Parallel()

	var method, page, contentType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		contentType = r.Header.Get("Content-Type")
		_ = r.ParseMultipartForm(1 << 20)
		page = r.FormValue("page")
		_, _ = w.Write([]byte(`{"data":{"items":[],"data":{"current_page":4,"last_page":4,"total":40}}}`))
	})

	if _, err := NewResource[domain.User](c, Users).List(context.Background(), Query{Page: 4}); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if method != http.MethodPost || page != "4" || !strings.HasPrefix(contentType, "multipart/form-data") {
		t.Fatalf("method=%s page=%q content-type=%q, want multipart POST page=4", method, page, contentType)
	}
}

func TestResource_UpdatePostsIDToUpdateEndpoint(t *testing.T) {
	t.Parallel()

	var path string
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeItem(w, map[string]any{"id": 1, "name": "Updated"})
	})

	original := NewPayload(map[string]any{"name": "Updated"})
	got, err := NewResource[domain.City](c, Cities).Update(context.Background(), 1, original)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if path != "/api/v1/cities/update" {
		t.Fatalf("path = %q, want /api/v1/cities/update", path)
	}
	if body["id"] != float64(1) || body["name"] != "Updated" {
		t.Fatalf("body = %#v, want id and name", body)
	}
	if got.Name.EN != "Updated" {
		t.Fatalf("Update = %#v", got)
	}
	if _, ok := original.Values["id"]; ok {
		t.Fatalf("Update must not mutate the caller's payload")
	}
}

func TestResource_UnsupportedOperationsSkipNetwork(t *testing.T) {
	t.Parallel()

	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	if err := NewResource[domain.Bus](c, Buses).Delete(context.Background(), 1); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Delete error = %v, want ErrUnsupported", err)
	}
	if _, err := NewResource[domain.Booking](c, Bookings).Create(context.Background(), NewPayload(nil)); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Create error = %v, want ErrUnsupported", err)
	}
	if called {
		t.Fatalf("unsupported operations must not reach the server")
	}
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/countries":
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"The given data was invalid.","errors":{"name.en":["The name field is required.","Must be unique."],"code":"Too long."}}`))
		case "/api/v1/countries/3":
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"message":"Permission denied"}`))
		case "/api/v1/countries/4":
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	res := NewResource[domain.Country](c, Countries)
	ctx := context.Background()

	_, err := res.Create(ctx, NewPayload(nil))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Create error = %v, want ValidationError", err)
	}
	if verr.Fields["name.en"] != "The name field is required. Must be unique." {
		t.Fatalf("name.en = %q, want joined messages", verr.Fields["name.en"])
	}
	if verr.Fields["code"] != "Too long." {
		t.Fatalf("code = %q", verr.Fields["code"])
	}
	if FieldErrorsOf(err) == nil {
		t.Fatalf("FieldErrorsOf returned nil for a validation error")
	}

	_, err = res.Show(ctx, 3)
	var serr *ServerError
	if !errors.As(err, &serr) || serr.Status != http.StatusForbidden || serr.Message != "Permission denied" {
		t.Fatalf("Show error = %v, want 403 Permission denied", err)
	}
	if Message(err) != "Permission denied" || FieldErrorsOf(err) != nil {
		t.Fatalf("Message = %q, want flat message", Message(err))
	}

	_, err = res.Show(ctx, 4)
	if !errors.As(err, &serr) || serr.Message != "upstream exploded" {
		t.Fatalf("Show error = %v, want text body message", err)
	}

	_, err = res.Show(ctx, 5)
	if !errors.As(err, &serr) || serr.Message != http.StatusText(http.StatusInternalServerError) {
		t.Fatalf("Show error = %v, want status text fallback", err)
	}
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	c, err := NewClient(Options{BaseURL: base, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = NewResource[domain.Country](c, Countries).List(context.Background(), Query{})
	var nerr *NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("List error = %v, want NetworkError", err)
	}
	if Message(err) != NetworkMessage {
		t.Fatalf("Message = %q, want %q", Message(err), NetworkMessage)
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatalf("Ping returned nil for an unreachable server")
	}
}

func TestDecodeEnvelope_Errors(t *testing.T) {
	if _, err := DecodeList[domain.Country]([]byte(`{"data":{}}`)); err == nil {
		t.Fatalf("DecodeList should fail without data.items")
	}
	if _, err := DecodeItem[domain.Country]([]byte(`{"item":{"id":1}}`)); err == nil {
		t.Fatalf("DecodeItem should require data.item nesting")
	}
	if _, err := DecodeItem[domain.Country]([]byte(`{not-json`)); err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("DecodeItem error = %v, want decode response", err)
	}

	res, err := DecodeList[domain.Country]([]byte(`{"data":{"items":[{"id":1},{"id":2}]}}`))
	if err != nil {
		t.Fatalf("DecodeList returned error: %v", err)
	}
	if res.Page != (domain.PageInfo{CurrentPage: 1, LastPage: 1, Total: 2}) {
		t.Fatalf("page = %#v, want single page fallback", res.Page)
	}
}

func TestClient_Login(t *testing.T) {
	t.Parallel()

	var auth string
	var creds map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&creds)
		_, _ = w.Write([]byte(`{"data":{"token":"tok-1","user":{"id":3,"name":"Admin","role":"admin"}}}`))
	})

	res, err := c.Login(context.Background(), " admin@example.af ", "pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.Token != "tok-1" || res.User.ID != 3 || res.User.Role != "admin" {
		t.Fatalf("Login = %#v", res)
	}
	if auth != "" {
		t.Fatalf("login Authorization = %q, want none", auth)
	}
	if creds["email"] != "admin@example.af" || creds["password"] != "pw" {
		t.Fatalf("credentials = %#v", creds)
	}
}
