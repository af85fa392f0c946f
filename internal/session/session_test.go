package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/safarline/busadmin/internal/domain"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return token
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if s.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", s.Theme, defaultTheme)
	}
	if s.Authenticated(time.Now()) {
		t.Fatalf("Authenticated = true for empty session")
	}
}

func TestSave_RoundTripsTokenAndProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "session.toml")

	want := Session{
		Token:  "opaque-token",
		User:   domain.Profile{ID: 7, Name: "Admin", Email: "admin@example.af", Role: "admin"},
		Theme:  "Slate",
		Locale: "fa",
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("session mode = %v, want 0600", info.Mode().Perm())
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != want {
		t.Fatalf("Load = %#v, want %#v", got, want)
	}
	if !got.Authenticated(time.Now()) {
		t.Fatalf("opaque token should count as authenticated")
	}
}

func TestLoad_InvalidTOMLFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	if err := os.WriteFile(path, []byte("not valid toml {{{\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if s.Token != "" || s.Theme != defaultTheme {
		t.Fatalf("Load = %#v, want empty default session", s)
	}
}

func TestAuthenticated_RespectsJWTExpiry(t *testing.T) {
	now := time.Now()

	live := Session{Token: signedToken(t, now.Add(time.Hour))}
	if !live.Authenticated(now) {
		t.Fatalf("unexpired JWT should be authenticated")
	}

	dead := Session{Token: signedToken(t, now.Add(-time.Minute))}
	if dead.Authenticated(now) {
		t.Fatalf("expired JWT should not be authenticated")
	}
}

func TestTokenExpiry_OpaqueToken(t *testing.T) {
	if _, ok := TokenExpiry("abc123"); ok {
		t.Fatalf("TokenExpiry should not report expiry for opaque tokens")
	}
	if _, ok := TokenExpiry("a.b.c"); ok {
		t.Fatalf("TokenExpiry should not report expiry for malformed JWTs")
	}
}

func TestSignedOut_KeepsPreferences(t *testing.T) {
	s := Session{Token: "t", User: domain.Profile{ID: 1}, Theme: "Slate", Locale: "ps"}
	out := s.SignedOut()
	if out.Token != "" || out.User.ID != 0 {
		t.Fatalf("SignedOut = %#v, want credential cleared", out)
	}
	if out.Theme != "Slate" || out.Locale != "ps" {
		t.Fatalf("SignedOut = %#v, want preferences kept", out)
	}
}
