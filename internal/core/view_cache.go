package core

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"schemalens/internal/ports"
	"schemalens/internal/types"
)

const defaultLoadTimeout = 60 * time.Second

// ViewCacheOptions configures a ViewCache.
type ViewCacheOptions struct {
	// Capacity bounds the number of cached schemas; least recently used
	// entries are evicted first.  Zero or less keeps every entry.
	Capacity int

	// LoadTimeout bounds a single load.  Zero or less uses the default.
	LoadTimeout time.Duration
}

// ViewCache memoizes loaded schemas by source identifier.  Concurrent
// misses on one key share a single load; failed loads are not stored.
type ViewCache struct {
	loader      ports.SchemaLoaderPort
	loadTimeout time.Duration

	mu    sync.Mutex
	store viewStore
	group singleflight.Group
}

type viewStore interface {
	Get(key string) (ports.SchemaAccessorPort, bool)
	Add(key string, view ports.SchemaAccessorPort)
	Keys() []string
	Len() int
}

func NewViewCache(loader ports.SchemaLoaderPort, opts ViewCacheOptions) (*ViewCache, error) {
	if loader == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("view cache requires a schema loader")
	}
	timeout := opts.LoadTimeout
	if timeout <= 0 {
		timeout = defaultLoadTimeout
	}
	var store viewStore = mapStore{}
	if opts.Capacity > 0 {
		bounded, err := newLRUStore(opts.Capacity)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid view cache capacity").
				WithCause(err)
		}
		store = bounded
	}
	return &ViewCache{
		loader:      loader,
		loadTimeout: timeout,
		store:       store,
	}, nil
}

// GetOrLoad returns the cached schema for sourceID, loading it on a miss.
func (c *ViewCache) GetOrLoad(ctx context.Context, sourceID string) (ports.SchemaAccessorPort, error) {
	key := strings.TrimSpace(sourceID)
	if key == "" {
		return nil, types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
			"schema source is required", nil)
	}
	if view, ok := c.GetIfPresent(key); ok {
		log.Debug().Str("source", key).Msg("schema cache hit")
		return view, nil
	}
	log.Debug().Str("source", key).Msg("schema cache miss")

	result := c.group.DoChan(key, func() (any, error) {
		if view, ok := c.GetIfPresent(key); ok {
			return view, nil
		}
		return c.load(ctx, key)
	})
	select {
	case <-ctx.Done():
		return nil, types.NewFailure(types.ErrorKindLoad, errbuilder.CodeInternal,
			"schema load canceled: "+key, ctx.Err())
	case res := <-result:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(ports.SchemaAccessorPort), nil
	}
}

// GetIfPresent looks a schema up without loading it.
func (c *ViewCache) GetIfPresent(sourceID string) (ports.SchemaAccessorPort, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Get(strings.TrimSpace(sourceID))
}

// Put stores an already loaded schema under sourceID, replacing any
// previous entry.
func (c *ViewCache) Put(sourceID string, view ports.SchemaAccessorPort) error {
	key := strings.TrimSpace(sourceID)
	if key == "" || view == nil {
		return types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
			"schema source and view are required", nil)
	}
	c.mu.Lock()
	c.store.Add(key, view)
	c.mu.Unlock()
	log.Debug().Str("source", key).Msg("schema added to cache")
	return nil
}

// Keys lists cached source identifiers, sorted.
func (c *ViewCache) Keys() []string {
	c.mu.Lock()
	keys := c.store.Keys()
	c.mu.Unlock()
	sort.Strings(keys)
	return keys
}

func (c *ViewCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Len()
}

// load runs detached from the caller's cancellation so that callers
// sharing this load are not failed by the first one leaving.
func (c *ViewCache) load(ctx context.Context, key string) (ports.SchemaAccessorPort, error) {
	assert.NotEmpty(ctx, key, "schema source must be set before loading")
	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
	defer cancel()

	start := time.Now()
	view, err := c.loader.LoadSchema(loadCtx, key)
	if err == nil && view == nil {
		err = errors.New("loader returned no schema")
	}
	if err != nil {
		if errors.Is(loadCtx.Err(), context.DeadlineExceeded) {
			err = types.NewFailure(types.ErrorKindLoad, errbuilder.CodeInternal,
				"schema load timed out after "+c.loadTimeout.String()+": "+key, err)
		} else if types.KindOf(err) == types.ErrorKindNone {
			err = types.NewFailure(types.ErrorKindLoad, errbuilder.CodeInternal,
				"failed to load schema: "+key, err)
		}
		log.Warn().
			Str("source", key).
			Dur("elapsed", time.Since(start)).
			Err(err).
			Msg("schema load failed")
		return nil, err
	}

	c.mu.Lock()
	c.store.Add(key, view)
	c.mu.Unlock()
	log.Info().
		Str("source", key).
		Str("schema", view.SchemaName()).
		Dur("elapsed", time.Since(start)).
		Msg("schema added to cache")
	return view, nil
}

type mapStore map[string]ports.SchemaAccessorPort

func (s mapStore) Get(key string) (ports.SchemaAccessorPort, bool) {
	view, ok := s[key]
	return view, ok
}

func (s mapStore) Add(key string, view ports.SchemaAccessorPort) {
	s[key] = view
}

func (s mapStore) Keys() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	return keys
}

func (s mapStore) Len() int {
	return len(s)
}

type lruStore struct {
	cache *lru.Cache[string, ports.SchemaAccessorPort]
}

func newLRUStore(capacity int) (lruStore, error) {
	cache, err := lru.NewWithEvict[string, ports.SchemaAccessorPort](capacity, func(key string, _ ports.SchemaAccessorPort) {
		log.Debug().Str("source", key).Msg("schema evicted from cache")
	})
	if err != nil {
		return lruStore{}, err
	}
	return lruStore{cache: cache}, nil
}

func (s lruStore) Get(key string) (ports.SchemaAccessorPort, bool) {
	return s.cache.Get(key)
}

func (s lruStore) Add(key string, view ports.SchemaAccessorPort) {
	s.cache.Add(key, view)
}

func (s lruStore) Keys() []string {
	return s.cache.Keys()
}

func (s lruStore) Len() int {
	return s.cache.Len()
}

var _ ports.SchemaCachePort = (*ViewCache)(nil)
