package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"schemalens/internal/ports"
	"schemalens/internal/shared"
	"schemalens/internal/types"
)

const defaultHTTPTimeout = 60 * time.Second
const defaultHTTPRetries = 3
const defaultHTTPRetryDelay = 200 * time.Millisecond
const maxHTTPRetryDelay = 2 * time.Second

// maxFetchBytes bounds a single response body.
const maxFetchBytes = 64 << 20

type httpRetryConfig struct {
	timeout   time.Duration
	retries   int
	baseDelay time.Duration
}

// FetchConfig controls timeouts and retries of remote fetches.
type FetchConfig struct {
	TimeoutSec   int
	Retries      int
	RetryDelayMs int

	// AllowLocal permits filesystem paths and file:// URLs.  Off, only
	// http(s) sources are accepted.
	AllowLocal bool
}

func normalizeHTTPConfig(timeoutSec int, retries int, delayMs int) httpRetryConfig {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	retryCount := retries
	if retryCount <= 0 {
		retryCount = defaultHTTPRetries
	}
	baseDelay := time.Duration(delayMs) * time.Millisecond
	if baseDelay <= 0 {
		baseDelay = defaultHTTPRetryDelay
	}
	return httpRetryConfig{
		timeout:   timeout,
		retries:   retryCount,
		baseDelay: baseDelay,
	}
}

// FetcherAdapter reads schema and table sources from http(s) URLs,
// file:// URLs, or plain filesystem paths.
type FetcherAdapter struct {
	cfg        httpRetryConfig
	client     *http.Client
	allowLocal bool
	maxBytes   int64
}

func NewFetcherAdapter(cfg FetchConfig) FetcherAdapter {
	httpCfg := normalizeHTTPConfig(cfg.TimeoutSec, cfg.Retries, cfg.RetryDelayMs)
	return FetcherAdapter{
		cfg:        httpCfg,
		client:     &http.Client{Timeout: httpCfg.timeout},
		allowLocal: cfg.AllowLocal,
		maxBytes:   maxFetchBytes,
	}
}

func (a FetcherAdapter) Fetch(ctx context.Context, sourceID string) ([]byte, error) {
	source := strings.TrimSpace(sourceID)
	if source == "" {
		return nil, types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
			"source identifier is required", nil)
	}
	if !isRemote(source) {
		if !a.allowLocal {
			return nil, types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument,
				"only http(s) sources are accepted: "+source, nil)
		}
		return readLocal(source)
	}
	resp, err := a.doRequest(ctx, source)
	if err != nil {
		return nil, types.NewFailure(types.ErrorKindLoad, errbuilder.CodeInternal,
			"source unreachable: "+source, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := errbuilder.CodeInternal
		if resp.StatusCode == http.StatusNotFound {
			code = errbuilder.CodeNotFound
		}
		return nil, types.NewFailure(types.ErrorKindLoad, code,
			"source unreachable: "+source, shared.HTTPStatusError(resp.StatusCode, source))
	}
	limit := a.maxBytes
	if limit <= 0 {
		limit = maxFetchBytes
	}
	data, err := readLimited(resp.Body, limit)
	if err != nil {
		return nil, types.NewFailure(types.ErrorKindLoad, errbuilder.CodeInternal,
			"failed to read response body: "+source, err)
	}
	log.Debug().
		Str("source", source).
		Int("bytes", len(data)).
		Msg("source fetched")
	return data, nil
}

func (a FetcherAdapter) doRequest(ctx context.Context, source string) (*http.Response, error) {
	client := a.client
	if client == nil {
		client = &http.Client{Timeout: a.cfg.timeout}
	}
	cfg := a.cfg
	if cfg.retries <= 0 {
		cfg = normalizeHTTPConfig(0, 0, 0)
	}
	var lastErr error
	for attempt := 0; attempt < cfg.retries; attempt++ {
		if ctx.Err() != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("request canceled").
				WithCause(ctx.Err())
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create request").
				WithCause(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("request canceled").
					WithCause(ctx.Err())
			}
			lastErr = err
			if attempt < cfg.retries-1 {
				sleepContext(ctx, httpRetryDelay(attempt, cfg))
				continue
			}
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("request failed").
				WithCause(err)
		}
		if (resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests) && attempt < cfg.retries-1 {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			log.Debug().
				Str("url", source).
				Int("status", resp.StatusCode).
				Int("attempt", attempt+1).
				Msg("retrying fetch")
			sleepContext(ctx, httpRetryDelay(attempt, cfg))
			continue
		}
		return resp, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("request failed")
	}
	return nil, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("request failed").
		WithCause(lastErr)
}

// readLimited reads r fully and fails instead of truncating when r holds
// more than limit bytes.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}
	return data, nil
}

func httpRetryDelay(attempt int, cfg httpRetryConfig) time.Duration {
	delay := cfg.baseDelay * time.Duration(1<<attempt)
	if delay > maxHTTPRetryDelay {
		delay = maxHTTPRetryDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func readLocal(source string) ([]byte, error) {
	path := source
	if strings.HasPrefix(strings.ToLower(source), "file://") {
		parsed, err := url.Parse(source)
		if err != nil {
			return nil, types.NewFailure(types.ErrorKindLoad, errbuilder.CodeInvalidArgument,
				"invalid file url: "+source, err)
		}
		path = parsed.Path
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewFailure(types.ErrorKindLoad, errbuilder.CodeNotFound,
			"source not found: "+source, err)
	}
	return data, nil
}

var _ ports.FetcherPort = FetcherAdapter{}
