// Package session persists the signed-in operator between runs.
// The session is stored in ~/.config/busadmin/session.toml under the fixed
// keys token and user, next to the UI preferences.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/safarline/busadmin/internal/domain"
)

// Session holds the persisted token, profile and preferences.
type Session struct {
	Token  string         `toml:"token"`
	User   domain.Profile `toml:"user"`
	Theme  string         `toml:"theme"`
	Locale string         `toml:"locale,omitempty"`
}

const (
	defaultSessionPath = "~/.config/busadmin/session.toml"
	defaultTheme       = "Nightfox"
)

// DefaultPath returns the default session file path.
func DefaultPath() string {
	return defaultSessionPath
}

// DefaultTheme returns the theme used when none is saved.
func DefaultTheme() string {
	return defaultTheme
}

// Load reads the session from the given path, falling back to an empty
// session if the file is missing or unreadable.
func Load(path string) (Session, error) {
	s := Session{Theme: defaultTheme}

	resolved, err := resolvePath(path)
	if err != nil {
		return s, nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return s, nil // Graceful degradation
	}

	if err := toml.Unmarshal(bytes, &s); err != nil {
		return Session{Theme: defaultTheme}, nil // Graceful degradation
	}

	s.Token = strings.TrimSpace(s.Token)
	if strings.TrimSpace(s.Theme) == "" {
		s.Theme = defaultTheme
	}

	return s, nil
}

// Save writes the session to the given path, creating directories as needed.
// The file holds a credential, so it is written owner-only.
func Save(path string, s Session) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	bytes, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	return nil
}

// Authenticated reports whether the session holds a usable token at now.
// Opaque tokens count as valid; JWTs are rejected once their exp has passed.
func (s Session) Authenticated(now time.Time) bool {
	if s.Token == "" {
		return false
	}
	exp, ok := TokenExpiry(s.Token)
	if !ok {
		return true
	}
	return now.Before(exp)
}

// SignedOut returns a copy with the credential and profile removed but the
// preferences kept.
func (s Session) SignedOut() Session {
	return Session{Theme: s.Theme, Locale: s.Locale}
}

// TokenExpiry extracts the exp claim from a JWT without verifying it. The
// signature is the server's business; the console only wants to avoid
// starting with a session it knows is dead.
func TokenExpiry(token string) (time.Time, bool) {
	if strings.Count(token, ".") != 2 {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultSessionPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
