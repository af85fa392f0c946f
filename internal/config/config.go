package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/safarline/busadmin/internal/domain"
)

// Authorization header schemes understood by the backend.
const (
	SchemeBearer = "bearer"
	SchemeRaw    = "raw"
)

// Config captures the console settings.
type Config struct {
	APIURL         string
	RequestTimeout time.Duration
	Locale         string
	PerPage        int

	// AuthScheme is used for endpoint groups missing from AuthGroups.
	AuthScheme string
	AuthGroups map[string]string

	LogPath  string
	LogLevel string
}

const (
	defaultConfigPath     = "~/.config/busadmin/config.toml"
	defaultAPIURL         = "http://127.0.0.1:8000/api/v1"
	defaultRequestTimeout = 15 * time.Second
	defaultLocale         = "en"
	defaultPerPage        = 15
	defaultLogPath        = "~/.local/state/busadmin/busadmin.log"
	defaultLogLevel       = "info"
)

// DefaultAuthGroups reflects the backend's route prefixes: the CMS routes
// expect the bare token, everything else a bearer token.
func DefaultAuthGroups() map[string]string {
	return map[string]string{
		"admin": SchemeBearer,
		"cms":   SchemeRaw,
	}
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:         defaultAPIURL,
		RequestTimeout: defaultRequestTimeout,
		Locale:         defaultLocale,
		PerPage:        defaultPerPage,
		AuthScheme:     SchemeBearer,
		AuthGroups:     DefaultAuthGroups(),
		LogPath:        mustExpand(defaultLogPath),
		LogLevel:       defaultLogLevel,
	}
}

type rawConfig struct {
	APIURL         string `toml:"api_url"`
	RequestTimeout int    `toml:"request_timeout"`
	Locale         string `toml:"locale"`
	PerPage        int    `toml:"per_page"`
	Auth           struct {
		DefaultScheme string            `toml:"default_scheme"`
		Groups        map[string]string `toml:"groups"`
	} `toml:"auth"`
	Log struct {
		Path  string `toml:"path"`
		Level string `toml:"level"`
	} `toml:"log"`
}

// Load locates and parses the console config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if raw.RequestTimeout > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeout) * time.Second
	}
	if v := strings.ToLower(strings.TrimSpace(raw.Locale)); v != "" {
		cfg.Locale = v
	}
	if raw.PerPage > 0 {
		cfg.PerPage = raw.PerPage
	}

	if v := strings.TrimSpace(raw.Auth.DefaultScheme); v != "" {
		scheme, err := normalizeScheme(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: auth.default_scheme: %w", err)
		}
		cfg.AuthScheme = scheme
	}
	for group, scheme := range raw.Auth.Groups {
		normalized, err := normalizeScheme(scheme)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: auth.groups.%s: %w", group, err)
		}
		cfg.AuthGroups[strings.ToLower(strings.TrimSpace(group))] = normalized
	}

	if v := strings.TrimSpace(raw.Log.Path); v != "" {
		cfg.LogPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Log.Level); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	return cfg, nil
}

// SchemeFor returns the authorization scheme for an endpoint group.
func (c Config) SchemeFor(group string) string {
	if scheme, ok := c.AuthGroups[strings.ToLower(strings.TrimSpace(group))]; ok {
		return scheme
	}
	if c.AuthScheme == "" {
		return SchemeBearer
	}
	return c.AuthScheme
}

// RTL reports whether the configured locale is right-to-left.
func (c Config) RTL() bool {
	return domain.IsRTL(c.Locale)
}

func normalizeScheme(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case SchemeBearer:
		return SchemeBearer, nil
	case SchemeRaw, "token":
		return SchemeRaw, nil
	default:
		return "", fmt.Errorf("unknown scheme %q", value)
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading tilde and returns an absolute path.
func ExpandPath(path string) (string, error) {
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
