package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Supported locales.
const (
	LocaleEnglish = "en"
	LocalePashto  = "ps"
	LocaleDari    = "fa"
)

// Locales lists supported locales in display order.
var Locales = []string{LocaleEnglish, LocalePashto, LocaleDari}

// IsRTL reports whether the locale is written right-to-left.
func IsRTL(locale string) bool {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case LocalePashto, LocaleDari:
		return true
	default:
		return false
	}
}

// LocalizedName holds one value per supported locale.
type LocalizedName struct {
	EN string `json:"en"`
	PS string `json:"ps"`
	FA string `json:"fa"`
}

// UnmarshalJSON accepts either the locale object or a bare string.
func (n *LocalizedName) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*n = LocalizedName{}
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode localized name: %w", err)
		}
		*n = LocalizedName{EN: s}
		return nil
	}
	type plain LocalizedName
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return fmt.Errorf("decode localized name: %w", err)
	}
	*n = LocalizedName(p)
	return nil
}

// In returns the value for locale, falling back to English and then to any
// non-empty value.
func (n LocalizedName) In(locale string) string {
	var v string
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case LocalePashto:
		v = n.PS
	case LocaleDari:
		v = n.FA
	default:
		v = n.EN
	}
	if strings.TrimSpace(v) != "" {
		return v
	}
	for _, candidate := range []string{n.EN, n.PS, n.FA} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return ""
}

// String returns the English value.
func (n LocalizedName) String() string {
	return n.In(LocaleEnglish)
}

// IsZero reports whether every locale is empty.
func (n LocalizedName) IsZero() bool {
	return n.EN == "" && n.PS == "" && n.FA == ""
}

// Values returns the locale map form used by form payloads.
func (n LocalizedName) Values() map[string]any {
	return map[string]any{
		LocaleEnglish: n.EN,
		LocalePashto:  n.PS,
		LocaleDari:    n.FA,
	}
}
