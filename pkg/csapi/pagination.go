package csapi

import (
	"context"
	"fmt"

	"github.com/central-storage/csclient/internal/constants"
)

// Lister fetches one page of a collection.
type Lister[T any] interface {
	List(ctx context.Context, params *QueryParams) (*ListResponse[T], error)
}

// ListerFunc adapts a function to the Lister interface.
type ListerFunc[T any] func(ctx context.Context, params *QueryParams) (*ListResponse[T], error)

// List implements Lister.
func (f ListerFunc[T]) List(ctx context.Context, params *QueryParams) (*ListResponse[T], error) {
	return f(ctx, params)
}

// PaginationOptions bounds a full-collection scan.
type PaginationOptions struct {
	PageSize int
	// MaxPages caps the scan when the server does not report total_pages.
	MaxPages int
}

// DefaultPaginationOptions returns default pagination options.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{
		PageSize: constants.LargePageSize,
		MaxPages: constants.DefaultMaxPages,
	}
}

// Cursor tracks the next page request of a scan.
//
// has_next decides whether another page is requested, never total_pages. The scan is
// still bounded: it stops after total_pages pages when the server reports a nonzero
// total_pages, after ceil(total/page_size) pages when only total is known, and after
// MaxPages pages otherwise.
type Cursor struct {
	next     *QueryParams
	maxPages int
	fetched  int
	done     bool
}

// NewCursor starts a scan at params.Page (or 1).
func NewCursor(params *QueryParams, opts *PaginationOptions) *Cursor {
	if opts == nil {
		opts = DefaultPaginationOptions()
	}

	next := params.Clone()
	if next.Page < 1 {
		next.Page = 1
	}

	if next.PageSize < 1 && opts.PageSize > 0 {
		next.PageSize = opts.PageSize
	}

	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = constants.DefaultMaxPages
	}

	return &Cursor{next: next, maxPages: maxPages}
}

// Request returns the parameters for the next page, or nil once the scan is exhausted.
func (c *Cursor) Request() *QueryParams {
	if c.done {
		return nil
	}

	return c.next.Clone()
}

// Done reports whether the scan is exhausted.
func (c *Cursor) Done() bool {
	return c.done
}

// Fetched returns the number of pages consumed so far.
func (c *Cursor) Fetched() int {
	return c.fetched
}

// Advance consumes a page and reports whether another page should be requested.
func (c *Cursor) Advance(page Pagination, records int) bool {
	if c.done {
		return false
	}

	c.fetched++

	limit := c.maxPages

	switch {
	case page.TotalPages > 0:
		limit = page.TotalPages
	case page.Total > 0 && page.PageSize > 0:
		limit = min((page.Total+page.PageSize-1)/page.PageSize, c.maxPages)
	}

	if !page.HasNext || records == 0 || c.fetched >= limit {
		c.done = true

		return false
	}

	current := page.Page
	if current < 1 {
		current = c.next.Page
	}

	c.next.Page = current + 1

	return true
}

// PaginationIterator walks a collection one record at a time.
type PaginationIterator[T any] struct {
	ctx     context.Context //nolint:containedctx // iterator is bound to one scan
	lister  Lister[T]
	cursor  *Cursor
	buffer  []T
	index   int
	started bool
	err     error
}

// NewPaginationIterator creates an iterator over every page of lister.
func NewPaginationIterator[T any](ctx context.Context, lister Lister[T], params *QueryParams) *PaginationIterator[T] {
	return NewPaginationIteratorWithOptions(ctx, lister, params, nil)
}

// NewPaginationIteratorWithOptions creates an iterator with explicit bounds.
func NewPaginationIteratorWithOptions[T any](ctx context.Context, lister Lister[T], params *QueryParams, opts *PaginationOptions) *PaginationIterator[T] {
	return &PaginationIterator[T]{
		ctx:    ctx,
		lister: lister,
		cursor: NewCursor(params, opts),
	}
}

// HasNext reports whether another record is available, fetching the next page if needed.
func (it *PaginationIterator[T]) HasNext() bool {
	for it.index >= len(it.buffer) {
		if it.err != nil || (it.started && it.cursor.Done()) {
			return false
		}

		if !it.fetch() {
			return false
		}
	}

	return true
}

// Next returns the next record.
func (it *PaginationIterator[T]) Next() (T, error) {
	var zero T

	if !it.HasNext() {
		if it.err != nil {
			return zero, it.err
		}

		return zero, ErrNoMoreItems
	}

	item := it.buffer[it.index]
	it.index++

	return item, nil
}

// Err returns the error that stopped the iteration, if any.
func (it *PaginationIterator[T]) Err() error {
	return it.err
}

// All drains the iterator.
func (it *PaginationIterator[T]) All() ([]T, error) {
	var all []T

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return all, err
		}

		all = append(all, item)
	}

	return all, it.err
}

// ForEach calls fn for every record until fn fails or the collection is exhausted.
func (it *PaginationIterator[T]) ForEach(fn func(T) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return it.err
}

func (it *PaginationIterator[T]) fetch() bool {
	req := it.cursor.Request()
	if req == nil {
		return false
	}

	it.started = true

	resp, err := it.lister.List(it.ctx, req)
	if err != nil {
		it.err = fmt.Errorf("fetching page %d: %w", req.Page, err)

		return false
	}

	it.buffer = resp.Data
	it.index = 0
	it.cursor.Advance(resp.Pagination, len(resp.Data))

	return len(it.buffer) > 0
}

// FetchAllPages collects every record of a collection.
func FetchAllPages[T any](ctx context.Context, lister Lister[T], params *QueryParams, opts *PaginationOptions) ([]T, error) {
	return NewPaginationIteratorWithOptions(ctx, lister, params, opts).All()
}
