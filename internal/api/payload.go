package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// File is an upload attached to a payload.
type File struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileFromPath attaches a local file, opened lazily at encode time.
func FileFromPath(path string) File {
	return File{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// Payload is the body of a write request.
type Payload struct {
	Values map[string]any
	Files  map[string]File
}

// NewPayload returns a payload holding values.
func NewPayload(values map[string]any) Payload {
	if values == nil {
		values = map[string]any{}
	}
	return Payload{Values: values}
}

// WithFile attaches a file under field and returns the payload.
func (p Payload) WithFile(field string, f File) Payload {
	if p.Files == nil {
		p.Files = map[string]File{}
	}
	p.Files[field] = f
	return p
}

// HasFiles reports whether any file is attached.
func (p Payload) HasFiles() bool {
	return len(p.Files) > 0
}

// with returns a copy of p with key set, leaving p untouched.
func (p Payload) with(key string, value any) Payload {
	values := make(map[string]any, len(p.Values)+1)
	for k, v := range p.Values {
		values[k] = v
	}
	values[key] = value
	return Payload{Values: values, Files: p.Files}
}

type encodedBody struct {
	reader      io.Reader
	contentType string
}

func encodeJSON(p Payload) (encodedBody, error) {
	values := p.Values
	if values == nil {
		values = map[string]any{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return encodedBody{}, fmt.Errorf("encode json body: %w", err)
	}
	return encodedBody{reader: bytes.NewReader(data), contentType: "application/json"}, nil
}

// encodeMultipart writes values as form fields, flattening nested maps and
// slices the way the backend's form parser expects (name[en], seats[]).
func encodeMultipart(p Payload) (encodedBody, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	flat := map[string][]string{}
	for k, v := range p.Values {
		flatten(flat, k, v)
	}
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range flat[k] {
			if err := w.WriteField(k, v); err != nil {
				return encodedBody{}, fmt.Errorf("write field %s: %w", k, err)
			}
		}
	}

	fields := make([]string, 0, len(p.Files))
	for field := range p.Files {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if err := writeFile(w, field, p.Files[field]); err != nil {
			return encodedBody{}, err
		}
	}

	if err := w.Close(); err != nil {
		return encodedBody{}, fmt.Errorf("close multipart body: %w", err)
	}
	return encodedBody{reader: &buf, contentType: w.FormDataContentType()}, nil
}

func writeFile(w *multipart.Writer, field string, f File) error {
	if f.Open == nil {
		return fmt.Errorf("file %s has no source", field)
	}
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open file %s: %w", field, err)
	}
	defer func() { _ = src.Close() }()

	name := f.Name
	if name == "" {
		name = field
	}
	part, err := w.CreateFormFile(field, name)
	if err != nil {
		return fmt.Errorf("create file part %s: %w", field, err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copy file %s: %w", field, err)
	}
	return nil
}

func flatten(out map[string][]string, key string, value any) {
	switch v := value.(type) {
	case nil:
		return
	case map[string]any:
		for sub, inner := range v {
			flatten(out, key+"["+sub+"]", inner)
		}
	case map[string]string:
		for sub, inner := range v {
			out[key+"["+sub+"]"] = append(out[key+"["+sub+"]"], inner)
		}
	case []any:
		for _, inner := range v {
			flatten(out, key+"[]", inner)
		}
	case []string:
		out[key+"[]"] = append(out[key+"[]"], v...)
	case []int:
		for _, inner := range v {
			out[key+"[]"] = append(out[key+"[]"], strconv.Itoa(inner))
		}
	case bool:
		if v {
			out[key] = append(out[key], "1")
		} else {
			out[key] = append(out[key], "0")
		}
	case string:
		out[key] = append(out[key], v)
	default:
		out[key] = append(out[key], fmt.Sprint(v))
	}
}
