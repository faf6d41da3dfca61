package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemalens/internal/types"
	"schemalens/tests/testutil"
)

func newTestLoader() SchemaLoaderAdapter {
	return NewSchemaLoaderAdapter(NewFetcherAdapter(FetchConfig{TimeoutSec: 5, Retries: 1, RetryDelayMs: 1, AllowLocal: true}))
}

func TestSchemaLoaderResolvesRemoteImports(t *testing.T) {
	server := httptest.NewServer(http.FileServer(http.Dir(filepath.Join(testutil.RepoRoot(t), "fixtures", "schema"))))
	defer server.Close()

	schema, err := newTestLoader().LoadDefinition(context.Background(), server.URL+"/sample.yaml")
	require.NoError(t, err)
	assert.Equal(t, "sample", schema.Name)
	assert.Contains(t, schema.Classes, "MagsAnalysisActivity")
	assert.Contains(t, schema.Slots, "has_input")
	assert.Contains(t, schema.Settings, "acty")
}

func TestSchemaLoaderFileURL(t *testing.T) {
	path := filepath.Join(testutil.RepoRoot(t), "fixtures", "schema", "sample.yaml")
	view, err := newTestLoader().LoadSchema(context.Background(), "file://"+filepath.ToSlash(path))
	require.NoError(t, err)
	assert.Contains(t, view.AllClassNames(), "Activity")
}

func TestSchemaLoaderImportingDocumentWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.yaml"), []byte(`
name: main
imports:
  - base
slots:
  shared:
    range: string
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(`
name: base
imports:
  - main
slots:
  shared:
    range: integer
  extra:
    range: float
`), 0644))

	schema, err := newTestLoader().LoadDefinition(context.Background(), filepath.Join(dir, "main.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "main", schema.Name)
	assert.Equal(t, "string", schema.Slots["shared"].Range)
	assert.Equal(t, "float", schema.Slots["extra"].Range)
}

func TestSchemaLoaderFailures(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("classes: [unterminated"), 0644))
	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte(""), 0644))
	dangling := filepath.Join(dir, "dangling.yaml")
	require.NoError(t, os.WriteFile(dangling, []byte("name: dangling\nimports:\n  - missing\n"), 0644))

	tests := []struct {
		name   string
		source string
		code   errbuilder.ErrCode
	}{
		{name: "missing file", source: filepath.Join(dir, "nope.yaml"), code: errbuilder.CodeNotFound},
		{name: "invalid yaml", source: broken, code: errbuilder.CodeInvalidArgument},
		{name: "empty document", source: empty, code: errbuilder.CodeInvalidArgument},
		{name: "missing import", source: dangling, code: errbuilder.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestLoader().LoadSchema(context.Background(), tt.source)
			require.Error(t, err)
			assert.Equal(t, types.ErrorKindLoad, types.KindOf(err))
			assert.Equal(t, tt.code, types.ErrorCode(err))
		})
	}
}

func TestSchemaLoaderRemoteNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := newTestLoader().LoadSchema(context.Background(), server.URL+"/missing.yaml")
	require.Error(t, err)
	assert.Equal(t, types.ErrorKindLoad, types.KindOf(err))
}

func TestResolveImport(t *testing.T) {
	tests := []struct {
		base  string
		entry string
		want  string
		ok    bool
	}{
		{base: "https://example.org/src/schema/nmdc.yaml", entry: "core", want: "https://example.org/src/schema/core.yaml", ok: true},
		{base: "https://example.org/src/schema/nmdc.yaml", entry: "../other/x.yaml", want: "https://example.org/src/other/x.yaml", ok: true},
		{base: "https://example.org/a.yaml", entry: "https://cdn.example.org/b", want: "https://cdn.example.org/b.yaml", ok: true},
		{base: "file:///schemas/main.yaml", entry: "core", want: "file:///schemas/core.yaml", ok: true},
		{base: "/schemas/main.yaml", entry: "core", want: filepath.Join("/schemas", "core.yaml"), ok: true},
		{base: "/schemas/main.yaml", entry: "linkml:types", ok: false},
		{base: "/schemas/main.yaml", entry: "  ", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.base+"|"+tt.entry, func(t *testing.T) {
			got, ok := resolveImport(tt.base, tt.entry)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
