package ports

import (
	"context"

	"schemalens/internal/types"
)

// TabularSourcePort decodes a tab-separated source into a header row and
// data rows.
type TabularSourcePort interface {
	FetchTable(ctx context.Context, sourceID string) (types.TabularTable, error)
}
