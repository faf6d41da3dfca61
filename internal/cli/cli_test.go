package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemalens/internal/app"
	"schemalens/internal/types"
	"schemalens/tests/testutil"
)

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	expected := []string{
		"serve", "typecode", "typecode-table", "slot",
		"slot-drift", "compare-classes", "terms",
	}
	for _, name := range expected {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
}

func TestRootPersistentFlags(t *testing.T) {
	root := newRootCommand()
	flags := []string{
		"config", "log-level", "schema", "key-slot", "cache-capacity",
		"load-timeout", "fetch-timeout", "fetch-retries", "fetch-retry-delay-ms", "skip-rows",
	}
	for _, name := range flags {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "missing flag: %s", name)
	}
}

func TestServeCommandFlags(t *testing.T) {
	cmd := newServeCommand()
	for _, name := range []string{"listen", "request-timeout", "shutdown-grace", "allow-local-sources"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestServeRejectsLocalSourcesUnlessAllowed(t *testing.T) {
	cfg, err := serviceConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Fetch.AllowLocal, "one-shot commands read local files")

	cmd := newServeCommand()
	cfg, err = serveServiceConfig(cmd, serveOptions{})
	require.NoError(t, err)
	assert.False(t, cfg.Fetch.AllowLocal)

	require.NoError(t, cmd.Flags().Set("allow-local-sources", "true"))
	cfg, err = serveServiceConfig(cmd, serveOptions{AllowLocalSources: true})
	require.NoError(t, err)
	assert.True(t, cfg.Fetch.AllowLocal)
}

func TestTermsCommandFlags(t *testing.T) {
	cmd := newTermsCommand()
	for _, name := range []string{"preset", "def-url", "def-col", "assign-url", "assign-col", "json"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

// ---------- Command runs against fixtures ----------

func fixture(t *testing.T, parts ...string) string {
	t.Helper()
	return filepath.Join(append([]string{testutil.RepoRoot(t), "fixtures"}, parts...)...)
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--schema", fixture(t, "schema", "sample.yaml"), "--log-level", "error"))
	err := root.Execute()
	return out.String(), err
}

func TestTypecodeCommand(t *testing.T) {
	out, err := runRoot(t, "typecode", "Study")
	require.NoError(t, err)
	assert.Equal(t, "Study\tStudy\tsty\n", out)
}

func TestTypecodeCommandUnknownClass(t *testing.T) {
	_, err := runRoot(t, "typecode", "Nope")
	require.Error(t, err)
	assert.Equal(t, types.ErrorKindClassNotFound, types.KindOf(err))
	assert.Equal(t, 4, exitCodeForError(err))
}

func TestTypecodeTableCommandWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typecodes.tsv")
	_, err := runRoot(t, "typecode-table", "--output", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "class\tuses_id\tfrom_ancestor\ttypecode", lines[0])
	assert.Contains(t, lines, "Study\ttrue\tStudy\tsty")
}

func TestTypecodeTableCommandRejectsFormat(t *testing.T) {
	_, err := runRoot(t, "typecode-table", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, 2, exitCodeForError(err))
}

func TestSlotDriftCommand(t *testing.T) {
	out, err := runRoot(t, "slot-drift", "id", "Study")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "added\tstructured_pattern\t"), out)
}

func TestCompareClassesCommand(t *testing.T) {
	out, err := runRoot(t, "compare-classes", "Study", "MagsAnalysisActivity")
	require.NoError(t, err)
	assert.Equal(t, "<\tcurator\n>\thas_input\n>\tused\n>\twas_informed_by\n", out)
}

func TestTermsCommand(t *testing.T) {
	out, err := runRoot(t, "terms", "unassigned",
		"--preset", app.PresetTerms,
		"--def-url", fixture(t, "terms", "definitions.tsv"),
		"--assign-url", fixture(t, "terms", "assignments.tsv"))
	require.NoError(t, err)
	assert.Equal(t, "foo\n", out)
}

// ---------- Helper function tests ----------

func TestResolveString(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *cobra.Command
		value    string
		expected string
	}{
		{
			name:     "nil cmd with value returns value",
			cmd:      nil,
			value:    "explicit",
			expected: "explicit",
		},
		{
			name:     "nil cmd empty value returns empty",
			cmd:      nil,
			value:    "",
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveString(tt.cmd, tt.value, "test_key", "test-flag")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveBool(t *testing.T) {
	got := resolveBool(nil, true, "test_key", "test-flag")
	assert.True(t, got)

	got = resolveBool(nil, false, "test_key", "test-flag")
	assert.False(t, got)
}

func TestResolveInt(t *testing.T) {
	got := resolveInt(nil, 42, "test_key", "test-flag")
	assert.Equal(t, 42, got)
}

func TestFlagChanged(t *testing.T) {
	assert.False(t, flagChanged(nil, "anything"), "nil cmd should return false")
	assert.False(t, flagChanged(nil, ""), "nil cmd with empty name")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	assert.False(t, flagChanged(cmd, "myflag"), "unchanged flag")
	assert.False(t, flagChanged(cmd, "nonexistent"), "nonexistent flag")
}

func TestFlagChangedAfterSet(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	require.NoError(t, cmd.Flags().Set("myflag", "val"))
	assert.True(t, flagChanged(cmd, "myflag"))
}

func TestMergePresets(t *testing.T) {
	merged := mergePresets(app.DefaultPresets(), map[string]types.TermPreset{
		app.PresetTerms: {AssignmentColumn: "Term"},
		"local":         {DefinitionURL: "defs.tsv", DefinitionColumn: "a", AssignmentURL: "assign.tsv", AssignmentColumn: "b"},
	})

	assert.Len(t, merged, 3)
	assert.Equal(t, "Term", merged[app.PresetTerms].AssignmentColumn)
	assert.Equal(t, "SAFE Structured comment name", merged[app.PresetTerms].DefinitionColumn)
	assert.Equal(t, "local", merged["local"].Name)
	assert.Equal(t, "defs.tsv", merged["local"].DefinitionURL)
}

// ---------- Exit code tests ----------

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name: "invalid argument",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("bad input"),
			expected: 2,
		},
		{
			name: "already exists",
			err: errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg("dup"),
			expected: 2,
		},
		{
			name: "failed precondition",
			err: errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg("something else failed"),
			expected: 3,
		},
		{
			name: "not found generic",
			err: errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("file missing"),
			expected: 4,
		},
		{
			name: "internal error",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("boom"),
			expected: 5,
		},
		{
			name:     "invalid input kind",
			err:      types.NewFailure(types.ErrorKindInvalidInput, errbuilder.CodeInvalidArgument, "class name is required", nil),
			expected: 2,
		},
		{
			name:     "lookup kind",
			err:      types.NewFailure(types.ErrorKindSlotNotDefinedByHierarchy, errbuilder.CodeNotFound, "no class defines id", nil),
			expected: 4,
		},
		{
			name:     "load kind with not found code",
			err:      types.NewFailure(types.ErrorKindLoad, errbuilder.CodeNotFound, "source not found: x", nil),
			expected: 5,
		},
		{
			name:     "pattern kind",
			err:      types.NewFailure(types.ErrorKindPatternParse, errbuilder.CodeInternal, "cannot parse", nil),
			expected: 5,
		},
		{
			name:     "unknown error",
			err:      assert.AnError,
			expected: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exitCodeForError(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name: "errbuilder with msg",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("something broke"),
			expected: "something broke",
		},
		{
			name:     "kinded failure",
			err:      types.NewFailure(types.ErrorKindColumnNotFound, errbuilder.CodeNotFound, "column not found: class", nil),
			expected: "column not found: class",
		},
		{
			name:     "plain error",
			err:      assert.AnError,
			expected: assert.AnError.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errorMessage(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
