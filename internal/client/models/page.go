package models

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
)

// Page is one page of a list endpoint.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// UnmarshalJSON accepts the paginated envelope or a bare array. A bare array
// becomes a single page with Count set to its length.
func (p *Page[T]) UnmarshalJSON(b []byte) error {
	if t := bytes.TrimLeft(b, " \t\r\n"); len(t) > 0 && t[0] == '[' {
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*p = Page[T]{Count: len(items), Results: items}
		return nil
	}
	var e struct {
		Count    int     `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
		Results  []T     `json:"results"`
	}
	if err := json.Unmarshal(b, &e); err != nil {
		return err
	}
	*p = Page[T]{Count: e.Count, Next: e.Next, Previous: e.Previous, Results: e.Results}
	return nil
}

func (p Page[T]) HasNext() bool { return p.Next != nil && *p.Next != "" }

// ListFilter holds the query parameters list endpoints understand. Zero
// values are omitted.
type ListFilter struct {
	Status   string
	Category string
	Search   string
	Page     int
}

func (f ListFilter) Values() url.Values {
	v := url.Values{}
	if f.Status != "" && f.Status != "all" {
		v.Set("status", f.Status)
	}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	return v
}
