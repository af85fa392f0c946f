// Package validate builds form schemas and checks drafts against them before
// anything is sent to the server.
//
// A schema is a pure function of the form's discriminator (a user's role, a
// commission type, a page locale, a trip status). Which fields are required
// can change with the discriminator, so forms rebuild the schema and
// validate the live draft on every submit.
package validate

import (
	"strings"

	"github.com/safarline/busadmin/internal/domain"
)

// Check is a cross-field rule. It returns the field to flag and a message,
// or an empty message when the draft passes.
type Check func(draft map[string]string) (field, message string)

// Schema is the set of inputs of one form.
type Schema struct {
	Name string
	// Discriminator names the field whose value selected this schema, if any.
	Discriminator string
	Fields        []Field
	Checks        []Check
}

// Field looks up a field by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Required reports whether name must be filled in.
func (s Schema) Required(name string) bool {
	f, ok := s.Field(name)
	return ok && f.Required
}

// Validate checks every field of draft and returns all failures, or nil.
// Field checks run first; a cross-field check never overrides a field's own
// message.
func (s Schema) Validate(draft map[string]string) domain.FieldErrors {
	errs := domain.FieldErrors{}
	for _, f := range s.Fields {
		if msg := f.check(strings.TrimSpace(draft[f.Name])); msg != "" {
			errs[f.Name] = msg
		}
	}
	for _, check := range s.Checks {
		field, msg := check(draft)
		if msg == "" {
			continue
		}
		if _, taken := errs[field]; !taken {
			errs[field] = msg
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Values converts draft into a request body. Numbers and ids are typed,
// dotted names such as "name.en" become nested objects, blank optional
// fields and file fields are left out.
func (s Schema) Values(draft map[string]string) map[string]any {
	values := map[string]any{}
	for _, f := range s.Fields {
		if f.Kind == KindFile {
			continue
		}
		raw := strings.TrimSpace(draft[f.Name])
		if f.Kind == KindPassword {
			raw = draft[f.Name]
		}
		if raw == "" {
			continue
		}
		value := f.convert(raw)
		if parent, child, ok := strings.Cut(f.Name, "."); ok {
			nested, _ := values[parent].(map[string]any)
			if nested == nil {
				nested = map[string]any{}
				values[parent] = nested
			}
			nested[child] = value
			continue
		}
		values[f.Name] = value
	}
	return values
}

// Files returns the file fields of draft that hold a path.
func (s Schema) Files(draft map[string]string) map[string]string {
	files := map[string]string{}
	for _, f := range s.Fields {
		if f.Kind != KindFile {
			continue
		}
		if path := strings.TrimSpace(draft[f.Name]); path != "" {
			files[f.Name] = path
		}
	}
	return files
}
