package web

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemalens/internal/adapters"
	"schemalens/internal/app"
)

func TestNewRequiresAddress(t *testing.T) {
	service, err := app.NewService(app.DefaultConfig())
	require.NoError(t, err)
	_, err = New(Config{}, service)
	assert.Error(t, err)
}

func TestServerRunReportsBoundAddress(t *testing.T) {
	cfg := app.DefaultConfig()
	cfg.Fetch = adapters.FetchConfig{TimeoutSec: 1, Retries: 1, RetryDelayMs: 1}
	service, err := app.NewService(cfg)
	require.NoError(t, err)

	serverCfg := DefaultConfig()
	serverCfg.Address = "127.0.0.1:0"
	server, err := New(serverCfg, service)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx, time.Second)
	}()

	require.Eventually(t, func() bool {
		return server.Addr() != serverCfg.Address
	}, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + server.Addr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
