package apiclient

import (
	"context"

	"github.com/hostelhub/hostelctl/internal/pager"
)

// BusinessFetcher adapts ListBusinesses to a pager fetch function scoped to one category
func BusinessFetcher(c *Client, categoryID string, includeDescendants bool) pager.FetchFunc[Business] {
	return func(ctx context.Context, page pager.Page) ([]Business, error) {
		return c.ListBusinesses(ctx, BusinessQuery{
			CategoryID:         categoryID,
			IncludeDescendants: includeDescendants,
			Limit:              page.Limit,
			Offset:             page.Offset,
		})
	}
}
