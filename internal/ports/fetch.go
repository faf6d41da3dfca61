package ports

import "context"

// FetcherPort retrieves the raw bytes behind a source identifier.
type FetcherPort interface {
	Fetch(ctx context.Context, sourceID string) ([]byte, error)
}
