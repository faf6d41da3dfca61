package app

import (
	"schemalens/internal/adapters"
	"schemalens/internal/core"
	"schemalens/internal/ports"
	"schemalens/internal/types"
)

type Service struct {
	Schemas      ports.SchemaCachePort
	Tables       ports.TabularSourcePort
	TableWriter  ports.CodeTableWriterPort
	Resolver     core.TypecodeResolver
	TableBuilder core.CodeTableBuilder
	Presets      map[string]types.TermPreset
	Defaults     Defaults
}

// Defaults fill request fields left empty by callers.
type Defaults struct {
	SchemaURL string
	KeySlot   string
	SkipRows  int
}

func NewService(cfg Config) (Service, error) {
	fetcher := adapters.NewFetcherAdapter(cfg.Fetch)
	cache, err := core.NewViewCache(adapters.NewSchemaLoaderAdapter(fetcher), core.ViewCacheOptions{
		Capacity:    cfg.CacheCapacity,
		LoadTimeout: cfg.LoadTimeout,
	})
	if err != nil {
		return Service{}, err
	}
	return Service{
		Schemas:      cache,
		Tables:       adapters.NewTabularSourceAdapter(fetcher),
		TableWriter:  adapters.NewCodeTableTSVAdapter(),
		Resolver:     core.NewTypecodeResolver(),
		TableBuilder: core.NewCodeTableBuilder(),
		Presets:      cfg.Presets,
		Defaults: Defaults{
			SchemaURL: cfg.SchemaURL,
			KeySlot:   cfg.KeySlot,
			SkipRows:  cfg.SkipRows,
		},
	}, nil
}
