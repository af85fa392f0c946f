package validate

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DateTimeLayout is the accepted form of date-time inputs.
const DateTimeLayout = "2006-01-02 15:04"

// Kind selects the check applied to a non-empty value.
type Kind int

const (
	KindText Kind = iota
	KindEmail
	// KindMobile is a 10-digit numeric string.
	KindMobile
	KindEnum
	// KindPositive is a number greater than zero, optionally bounded by Max.
	KindPositive
	// KindNumber is a number within [Min, Max].
	KindNumber
	// KindID references another entity by its numeric id.
	KindID
	KindDateTime
	// KindFile is a local file path to upload.
	KindFile
	KindPassword
)

// Field describes one form input.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	Options  []string
	Min      float64
	Max      float64
	Integer  bool
	MaxLen   int
}

var engine = validator.New()

// Title returns the label shown next to the input.
func (f Field) Title() string {
	if f.Label != "" {
		return f.Label
	}
	return labelFor(f.Name)
}

// check returns an error message for value, or "" when it passes.
func (f Field) check(value string) string {
	if value == "" {
		if f.Required {
			return f.Title() + " is required"
		}
		return ""
	}

	switch f.Kind {
	case KindText:
		if f.MaxLen > 0 && engine.Var(value, "max="+strconv.Itoa(f.MaxLen)) != nil {
			return fmt.Sprintf("%s must be at most %d characters", f.Title(), f.MaxLen)
		}
	case KindPassword:
		if engine.Var(value, "min=8") != nil {
			return f.Title() + " must be at least 8 characters"
		}
	case KindEmail:
		if engine.Var(value, "email") != nil {
			return f.Title() + " must be a valid email address"
		}
	case KindMobile:
		if engine.Var(value, "len=10,number") != nil {
			return f.Title() + " must be a 10-digit number"
		}
	case KindEnum:
		if engine.Var(value, "oneof="+strings.Join(f.Options, " ")) != nil {
			return fmt.Sprintf("%s must be one of: %s", f.Title(), strings.Join(f.Options, ", "))
		}
	case KindPositive:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return f.Title() + " must be a number"
		}
		if f.Integer && n != math.Trunc(n) {
			return f.Title() + " must be a whole number"
		}
		if engine.Var(n, "gt=0") != nil {
			return f.Title() + " must be greater than zero"
		}
		if f.Max > 0 && engine.Var(n, "lte="+formatFloat(f.Max)) != nil {
			return fmt.Sprintf("%s must be at most %s", f.Title(), formatFloat(f.Max))
		}
	case KindNumber:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return f.Title() + " must be a number"
		}
		if engine.Var(n, fmt.Sprintf("gte=%s,lte=%s", formatFloat(f.Min), formatFloat(f.Max))) != nil {
			return fmt.Sprintf("%s must be between %s and %s", f.Title(), formatFloat(f.Min), formatFloat(f.Max))
		}
	case KindID:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || engine.Var(n, "gt=0") != nil {
			return "Select a valid " + strings.ToLower(f.Title())
		}
	case KindDateTime:
		if engine.Var(value, "datetime="+DateTimeLayout) != nil {
			return f.Title() + " must look like 2026-01-31 14:30"
		}
	case KindFile:
		info, err := os.Stat(value)
		if err != nil || info.IsDir() {
			return f.Title() + ": file not found"
		}
	}
	return ""
}

// convert turns a draft string into the value sent to the server.
func (f Field) convert(value string) any {
	switch f.Kind {
	case KindID:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	case KindPositive, KindNumber:
		if f.Integer {
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				return n
			}
		}
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return n
		}
	}
	return value
}

func labelFor(name string) string {
	base, locale, nested := strings.Cut(name, ".")
	base = strings.TrimSuffix(base, "_id")
	words := strings.ReplaceAll(base, "_", " ")
	if words != "" {
		words = strings.ToUpper(words[:1]) + words[1:]
	}
	if nested {
		return fmt.Sprintf("%s (%s)", words, locale)
	}
	return words
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
