package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"schemalens/internal/ports"
	"schemalens/internal/shared"
	"schemalens/internal/types"
)

// schema returns the cached accessor for url, or for the configured
// default schema when url is blank.
func (s Service) schema(ctx context.Context, url string) (ports.SchemaAccessorPort, error) {
	if s.Schemas == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("service has no schema cache")
	}
	source := shared.FirstNonEmpty(url, s.Defaults.SchemaURL)
	if source == "" {
		return nil, types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
			"schema url is required", nil)
	}
	return s.Schemas.GetOrLoad(ctx, source)
}

func requireValue(value string, name string) error {
	if strings.TrimSpace(value) == "" {
		return types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
			name+" is required", nil)
	}
	return nil
}

// CachedSchemas lists the schema sources currently held in the cache.
func (s Service) CachedSchemas() []string {
	if s.Schemas == nil {
		return []string{}
	}
	return s.Schemas.Keys()
}
