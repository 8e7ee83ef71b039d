package csapi

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"time"
)

// QueryParams are the list parameters accepted by every collection endpoint.
//
// Zero values are never transmitted: an empty Search, a false SortDesc or a filter
// whose value is 0 is dropped from the query string. Callers therefore cannot ask
// the server to filter on a zero value.
type QueryParams struct {
	Page     int
	PageSize int
	Search   string
	SortBy   string
	SortDesc bool
	Filters  map[string]interface{}
}

// NewQueryParams creates a new QueryParams instance.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Filters: make(map[string]interface{}),
	}
}

// WithPage sets the page number.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithPageSize sets the page size.
func (q *QueryParams) WithPageSize(size int) *QueryParams {
	q.PageSize = size

	return q
}

// WithSearch sets the substring search term.
func (q *QueryParams) WithSearch(search string) *QueryParams {
	q.Search = search

	return q
}

// WithSort sets the sort field and direction.
func (q *QueryParams) WithSort(field string, desc bool) *QueryParams {
	q.SortBy = field
	q.SortDesc = desc

	return q
}

// WithFilter sets a resource-specific filter. A later call for the same key replaces the value.
func (q *QueryParams) WithFilter(key string, value interface{}) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string]interface{})
	}

	q.Filters[key] = value

	return q
}

// Clone returns a copy that can be modified without affecting q.
func (q *QueryParams) Clone() *QueryParams {
	if q == nil {
		return NewQueryParams()
	}

	clone := *q

	clone.Filters = make(map[string]interface{}, len(q.Filters))
	for k, v := range q.Filters {
		clone.Filters[k] = v
	}

	return &clone
}

// Validate rejects explicitly negative paging values.
func (q *QueryParams) Validate() error {
	if q == nil {
		return nil
	}

	if q.Page < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPage, q.Page)
	}

	if q.PageSize < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, q.PageSize)
	}

	return nil
}

// ToValues converts query parameters to URL values, omitting every zero value.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}
	if q == nil {
		return values
	}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if q.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(q.PageSize))
	}

	if q.Search != "" {
		values.Set("search", q.Search)
	}

	if q.SortBy != "" {
		values.Set("sort_by", q.SortBy)
	}

	if q.SortDesc {
		values.Set("sort_desc", "true")
	}

	for key, value := range q.Filters {
		if encoded, ok := encodeFilter(value); ok {
			values.Set(key, encoded)
		}
	}

	return values
}

func encodeFilter(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case bool:
		return strconv.FormatBool(v), v
	case int:
		return strconv.Itoa(v), v != 0
	case int64:
		return strconv.FormatInt(v, 10), v != 0
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), v != 0
	case time.Time:
		return v.Format(time.RFC3339), !v.IsZero()
	case Date:
		return v.String(), !v.IsZero()
	case fmt.Stringer:
		s := v.String()

		return s, s != ""
	}

	rv := reflect.ValueOf(value)
	if rv.IsZero() {
		return "", false
	}

	return fmt.Sprint(value), true
}
