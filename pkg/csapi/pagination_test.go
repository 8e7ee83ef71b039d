package csapi_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-storage/csclient/pkg/csapi"
)

// pagedLister serves ids 1..total in pages and records the requested page numbers.
type pagedLister struct {
	total      int
	totalPages int
	alwaysNext bool
	hideTotal  bool
	requested  []int
}

func (l *pagedLister) List(_ context.Context, params *csapi.QueryParams) (*csapi.ListResponse[csapi.Item], error) {
	l.requested = append(l.requested, params.Page)

	size := params.PageSize
	first := (params.Page-1)*size + 1

	var data []csapi.Item
	for id := first; id < first+size && id <= l.total; id++ {
		data = append(data, item(id))
	}

	pages := (l.total + size - 1) / size

	reported := l.total
	if l.hideTotal {
		reported = 0
	}

	return &csapi.ListResponse[csapi.Item]{
		Pagination: csapi.Pagination{
			Total:      reported,
			Page:       params.Page,
			PageSize:   size,
			TotalPages: l.totalPages,
			HasNext:    l.alwaysNext || params.Page < pages,
			HasPrev:    params.Page > 1,
		},
		Data: data,
	}, nil
}

func TestFetchAllPages(t *testing.T) {
	t.Parallel()

	lister := &pagedLister{total: 7, totalPages: 3}

	all, err := csapi.FetchAllPages[csapi.Item](context.Background(), lister, csapi.NewQueryParams().WithPageSize(3), nil)
	require.NoError(t, err)
	require.Len(t, all, 7)
	assert.Equal(t, 7, all[6].ID)
	assert.Equal(t, []int{1, 2, 3}, lister.requested)
}

func TestFetchAllPages_StopsAtTotalPages(t *testing.T) {
	t.Parallel()

	// The server keeps claiming another page; total_pages bounds the scan.
	lister := &pagedLister{total: 100, totalPages: 2, alwaysNext: true}

	all, err := csapi.FetchAllPages[csapi.Item](context.Background(), lister, csapi.NewQueryParams().WithPageSize(5), nil)
	require.NoError(t, err)
	assert.Len(t, all, 10)
	assert.Equal(t, []int{1, 2}, lister.requested)
}

func TestFetchAllPages_MaxPagesWithoutTotalPages(t *testing.T) {
	t.Parallel()

	lister := &pagedLister{total: 100, alwaysNext: true, hideTotal: true}

	all, err := csapi.FetchAllPages[csapi.Item](context.Background(), lister, csapi.NewQueryParams(),
		&csapi.PaginationOptions{PageSize: 10, MaxPages: 4})
	require.NoError(t, err)
	assert.Len(t, all, 40)
	assert.Equal(t, []int{1, 2, 3, 4}, lister.requested)
}

func TestFetchAllPages_TotalBoundsScanWithoutTotalPages(t *testing.T) {
	t.Parallel()

	// total_pages is missing and has_next never clears; ceil(25/10) pages are read.
	lister := &pagedLister{total: 25, alwaysNext: true}

	all, err := csapi.FetchAllPages[csapi.Item](context.Background(), lister, csapi.NewQueryParams().WithPageSize(10), nil)
	require.NoError(t, err)
	assert.Len(t, all, 25)
	assert.Equal(t, []int{1, 2, 3}, lister.requested)
}

func TestFetchAllPages_MaxPagesCapsTotalBound(t *testing.T) {
	t.Parallel()

	lister := &pagedLister{total: 100, alwaysNext: true}

	all, err := csapi.FetchAllPages[csapi.Item](context.Background(), lister, csapi.NewQueryParams(),
		&csapi.PaginationOptions{PageSize: 10, MaxPages: 4})
	require.NoError(t, err)
	assert.Len(t, all, 40)
	assert.Equal(t, []int{1, 2, 3, 4}, lister.requested)
}

func TestFetchAllPages_EmptyPageEndsScan(t *testing.T) {
	t.Parallel()

	lister := &pagedLister{total: 4, alwaysNext: true, hideTotal: true}

	all, err := csapi.FetchAllPages[csapi.Item](context.Background(), lister, csapi.NewQueryParams().WithPageSize(2), nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, []int{1, 2, 3}, lister.requested)
}

func TestFetchAllPages_StartsAtRequestedPage(t *testing.T) {
	t.Parallel()

	lister := &pagedLister{total: 6, totalPages: 3}

	all, err := csapi.FetchAllPages[csapi.Item](context.Background(), lister, csapi.NewQueryParams().WithPage(2).WithPageSize(2), nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, 3, all[0].ID)
	assert.Equal(t, []int{2, 3}, lister.requested)
}

func TestPaginationIterator_Error(t *testing.T) {
	t.Parallel()

	lister := csapi.ListerFunc[csapi.Item](func(_ context.Context, params *csapi.QueryParams) (*csapi.ListResponse[csapi.Item], error) {
		if params.Page == 2 {
			return nil, errBoom
		}

		return &csapi.ListResponse[csapi.Item]{
			Pagination: csapi.Pagination{Page: 1, HasNext: true},
			Data:       []csapi.Item{item(1)},
		}, nil
	})

	it := csapi.NewPaginationIterator[csapi.Item](context.Background(), lister, nil)

	require.True(t, it.HasNext())
	first, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)

	assert.False(t, it.HasNext())
	require.ErrorIs(t, it.Err(), errBoom)

	_, err = it.Next()
	require.ErrorIs(t, err, errBoom)
}

func TestPaginationIterator_ForEachStopsOnCallbackError(t *testing.T) {
	t.Parallel()

	lister := &pagedLister{total: 10, totalPages: 5}
	seen := 0

	err := csapi.NewPaginationIterator[csapi.Item](context.Background(), lister, csapi.NewQueryParams().WithPageSize(2)).
		ForEach(func(it csapi.Item) error {
			seen++
			if it.ID == 3 {
				return errBoom
			}

			return nil
		})

	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 3, seen)
	assert.Equal(t, []int{1, 2}, lister.requested)
}

func TestCursor(t *testing.T) {
	t.Parallel()

	cursor := csapi.NewCursor(csapi.NewQueryParams().WithFilter("category", "reagent"), &csapi.PaginationOptions{PageSize: 50})

	req := cursor.Request()
	require.NotNil(t, req)
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 50, req.PageSize)
	assert.Equal(t, "reagent", req.Filters["category"])

	assert.True(t, cursor.Advance(csapi.Pagination{Page: 1, TotalPages: 2, HasNext: true}, 50))
	assert.Equal(t, 2, cursor.Request().Page)

	assert.False(t, cursor.Advance(csapi.Pagination{Page: 2, TotalPages: 2, HasNext: true}, 50))
	assert.True(t, cursor.Done())
	assert.Nil(t, cursor.Request())
	assert.Equal(t, 2, cursor.Fetched())
}

func TestCursor_TotalWithoutTotalPages(t *testing.T) {
	t.Parallel()

	cursor := csapi.NewCursor(csapi.NewQueryParams().WithPageSize(10), nil)

	// one record per page, has_next stuck on
	page := csapi.Pagination{Total: 25, PageSize: 10, HasNext: true}

	for i := 1; i <= 2; i++ {
		page.Page = i
		assert.True(t, cursor.Advance(page, 1))
	}

	page.Page = 3
	assert.False(t, cursor.Advance(page, 1))
	assert.Equal(t, 3, cursor.Fetched())
}
