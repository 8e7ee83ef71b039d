package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/central-storage/csclient/internal/constants"
	"github.com/central-storage/csclient/pkg/csapi"
)

// listFlags are the paging flags shared by every list command.
type listFlags struct {
	allPages bool
	page     int
	pageSize int
	search   string
	sortBy   string
	desc     bool
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&f.page, "page", 1, "page to fetch")
	cmd.Flags().IntVar(&f.pageSize, "page-size", constants.DefaultPageSize, "results per page")
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "substring search")
	cmd.Flags().StringVar(&f.sortBy, "sort", "", "sort field")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "sort descending")
}

func (f *listFlags) params() *csapi.QueryParams {
	params := csapi.NewQueryParams().
		WithSearch(f.search).
		WithSort(f.sortBy, f.desc)

	if f.allPages {
		return params.WithPageSize(constants.LargePageSize)
	}

	return params.WithPage(f.page).WithPageSize(f.pageSize)
}

// fetchList returns one page, or every page with --all.
func fetchList[T any](ctx context.Context, lister csapi.Lister[T], params *csapi.QueryParams, allPages bool) ([]T, csapi.Pagination, error) {
	err := params.Validate()
	if err != nil {
		return nil, csapi.Pagination{}, fmt.Errorf("invalid paging flags: %w", err)
	}

	if allPages {
		records, err := csapi.FetchAllPages(ctx, lister, params, nil)
		if err != nil {
			return nil, csapi.Pagination{}, err
		}

		return records, csapi.Pagination{Total: len(records), Page: 1, TotalPages: 1}, nil
	}

	page, err := lister.List(ctx, params)
	if err != nil {
		return nil, csapi.Pagination{}, err
	}

	return page.Data, page.Pagination, nil
}
