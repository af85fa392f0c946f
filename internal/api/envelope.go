package api

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/safarline/busadmin/internal/domain"
)

// Envelope paths. The backend wraps every result:
//
//	list:   {"data": {"items": [...], "data": {"current_page": 1, "last_page": 3, "total": 25}}}
//	single: {"data": {"item": {...}}}
const (
	pathItems = "data.items"
	pathPage  = "data.data"
	pathItem  = "data.item"
)

// ListResult is one page of a list endpoint.
type ListResult[T any] struct {
	Items []T
	Page  domain.PageInfo
}

// DecodeList unwraps a list envelope. A missing pagination block is
// reported as a single page holding every returned item.
func DecodeList[T any](body []byte) (ListResult[T], error) {
	if !gjson.ValidBytes(body) {
		return ListResult[T]{}, fmt.Errorf("decode response: invalid json")
	}
	items := gjson.GetBytes(body, pathItems)
	if !items.Exists() {
		return ListResult[T]{}, fmt.Errorf("decode response: missing %s", pathItems)
	}
	var out ListResult[T]
	if items.Type != gjson.Null {
		if err := json.Unmarshal([]byte(items.Raw), &out.Items); err != nil {
			return ListResult[T]{}, fmt.Errorf("decode response: %w", err)
		}
	}
	if page := gjson.GetBytes(body, pathPage); page.IsObject() {
		if err := json.Unmarshal([]byte(page.Raw), &out.Page); err != nil {
			return ListResult[T]{}, fmt.Errorf("decode pagination: %w", err)
		}
	} else {
		out.Page = domain.PageInfo{CurrentPage: 1, LastPage: 1, Total: len(out.Items)}
	}
	return out, nil
}

// DecodeItem unwraps a single-entity envelope.
func DecodeItem[T any](body []byte) (T, error) {
	var zero T
	if !gjson.ValidBytes(body) {
		return zero, fmt.Errorf("decode response: invalid json")
	}
	item := gjson.GetBytes(body, pathItem)
	if !item.IsObject() {
		return zero, fmt.Errorf("decode response: missing %s", pathItem)
	}
	var out T
	if err := json.Unmarshal([]byte(item.Raw), &out); err != nil {
		return zero, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
