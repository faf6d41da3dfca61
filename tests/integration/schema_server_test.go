//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"schemalens/internal/adapters"
	"schemalens/internal/app"
	"schemalens/internal/types"
	"schemalens/internal/web"
	"schemalens/tests/testutil"
)

func TestSchemaServiceAgainstStaticHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers test in short mode")
	}

	ctx := t.Context()
	endpoint, cleanup := startFixtureServer(ctx, t)
	t.Cleanup(cleanup)

	cfg := app.DefaultConfig()
	cfg.SchemaURL = endpoint + "/schema/sample.yaml"
	cfg.CacheCapacity = 4
	cfg.Fetch = adapters.FetchConfig{TimeoutSec: 10, Retries: 3, RetryDelayMs: 100}
	cfg.Presets[app.PresetTerms] = types.TermPreset{
		Name:             app.PresetTerms,
		DefinitionURL:    endpoint + "/terms/definitions.tsv",
		DefinitionColumn: "SAFE Structured comment name",
		AssignmentURL:    endpoint + "/terms/assignments.tsv",
		AssignmentColumn: "Structured comment name",
	}
	service, err := app.NewService(cfg)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.ResolveTypecode(ctx, app.TypecodeRequest{ClassName: "Study"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, []string{cfg.SchemaURL}, service.CachedSchemas())

	resolved, err := service.ResolveTypecode(ctx, app.TypecodeRequest{ClassName: "MagsAnalysisActivity"})
	require.NoError(t, err)
	assert.Equal(t, "acty", resolved.Value)

	table, err := service.TypecodeTable(ctx, app.TypecodeTableRequest{})
	require.NoError(t, err)
	assert.Len(t, table.Rows, 7)

	terms, err := service.TermDiff(ctx, app.TermDiffRequest{Preset: app.PresetTerms, Direction: types.TermDirectionUndefined})
	require.NoError(t, err)
	assert.Equal(t, []string{"baz"}, terms.Terms)

	api := httptest.NewServer(web.NewRouter(service, 30*time.Second))
	t.Cleanup(api.Close)

	resp, err := http.Get(api.URL + "/typecodes/Study")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "sty", body["typecode"])

	missing, err := http.Get(api.URL + "/typecodes/Study?schema=" + endpoint + "/schema/missing.yaml")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, missing.StatusCode)
}

func startFixtureServer(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()
	fixtures := filepath.Join(testutil.RepoRoot(t), "fixtures")
	req := testcontainers.ContainerRequest{
		Image:        "python:3.12-alpine",
		ExposedPorts: []string{"8081/tcp"},
		Files: []testcontainers.ContainerFile{
			{HostFilePath: filepath.Join(fixtures, "schema", "sample.yaml"), ContainerFilePath: "/srv/schema/sample.yaml", FileMode: 0o644},
			{HostFilePath: filepath.Join(fixtures, "schema", "core.yaml"), ContainerFilePath: "/srv/schema/core.yaml", FileMode: 0o644},
			{HostFilePath: filepath.Join(fixtures, "terms", "definitions.tsv"), ContainerFilePath: "/srv/terms/definitions.tsv", FileMode: 0o644},
			{HostFilePath: filepath.Join(fixtures, "terms", "assignments.tsv"), ContainerFilePath: "/srv/terms/assignments.tsv", FileMode: 0o644},
		},
		Cmd:        []string{"python", "-m", "http.server", "8081", "--directory", "/srv"},
		WaitingFor: wait.ForHTTP("/schema/sample.yaml").WithPort("8081/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8081/tcp")
	require.NoError(t, err)

	endpoint := fmt.Sprintf("http://%s:%s", host, port.Port())
	cleanup := func() {
		_ = container.Terminate(context.WithoutCancel(ctx))
	}
	return endpoint, cleanup
}
