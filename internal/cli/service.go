package cli

import (
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"schemalens/internal/adapters"
	"schemalens/internal/app"
	"schemalens/internal/core"
	"schemalens/internal/shared"
	"schemalens/internal/types"
)

// serviceOptions are the persistent flags every command shares.
type serviceOptions struct {
	SchemaURL         string
	KeySlot           string
	CacheCapacity     int
	LoadTimeoutSec    int
	FetchTimeoutSec   int
	FetchRetries      int
	FetchRetryDelayMs int
	SkipRows          int
}

func bindServiceFlags(cmd *cobra.Command, opts *serviceOptions) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.SchemaURL, "schema", app.DefaultSchemaURL, "Default schema URL or path")
	flags.StringVar(&opts.KeySlot, "key-slot", app.DefaultKeySlot, "Identifier slot used for typecodes")
	flags.IntVar(&opts.CacheCapacity, "cache-capacity", 0, "Maximum cached schemas (0 = unbounded)")
	flags.IntVar(&opts.LoadTimeoutSec, "load-timeout", 120, "Schema load timeout in seconds (0 = default)")
	flags.IntVar(&opts.FetchTimeoutSec, "fetch-timeout", 60, "HTTP fetch timeout in seconds (0 = default)")
	flags.IntVar(&opts.FetchRetries, "fetch-retries", 3, "HTTP fetch attempts (0 = default)")
	flags.IntVar(&opts.FetchRetryDelayMs, "fetch-retry-delay-ms", 200, "HTTP retry base delay in ms (0 = default)")
	flags.IntVar(&opts.SkipRows, "skip-rows", core.DefaultSkipRows, "Metadata rows after the header of term sheets")
	_ = viper.BindPFlag("schema_url", flags.Lookup("schema"))
	_ = viper.BindPFlag("key_slot", flags.Lookup("key-slot"))
	_ = viper.BindPFlag("cache_capacity", flags.Lookup("cache-capacity"))
	_ = viper.BindPFlag("load_timeout_sec", flags.Lookup("load-timeout"))
	_ = viper.BindPFlag("fetch_timeout_sec", flags.Lookup("fetch-timeout"))
	_ = viper.BindPFlag("fetch_retries", flags.Lookup("fetch-retries"))
	_ = viper.BindPFlag("fetch_retry_delay_ms", flags.Lookup("fetch-retry-delay-ms"))
	_ = viper.BindPFlag("skip_rows", flags.Lookup("skip-rows"))
}

// serviceConfig reads the shared settings from viper.  Presets found
// under the "presets" key extend or override the built-in ones.
func serviceConfig() (app.Config, error) {
	cfg := app.DefaultConfig()
	cfg.SchemaURL = shared.FirstNonEmpty(viper.GetString("schema_url"), cfg.SchemaURL)
	cfg.KeySlot = shared.FirstNonEmpty(viper.GetString("key_slot"), cfg.KeySlot)
	cfg.CacheCapacity = viper.GetInt("cache_capacity")
	cfg.LoadTimeout = time.Duration(viper.GetInt("load_timeout_sec")) * time.Second
	cfg.Fetch = adapters.FetchConfig{
		TimeoutSec:   viper.GetInt("fetch_timeout_sec"),
		Retries:      viper.GetInt("fetch_retries"),
		RetryDelayMs: viper.GetInt("fetch_retry_delay_ms"),
		AllowLocal:   true,
	}
	if viper.IsSet("skip_rows") {
		cfg.SkipRows = viper.GetInt("skip_rows")
	}

	overrides := map[string]types.TermPreset{}
	if err := viper.UnmarshalKey("presets", &overrides); err != nil {
		return app.Config{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid presets configuration").
			WithCause(err)
	}
	cfg.Presets = mergePresets(cfg.Presets, overrides)
	return cfg, nil
}

func mergePresets(base map[string]types.TermPreset, overrides map[string]types.TermPreset) map[string]types.TermPreset {
	merged := make(map[string]types.TermPreset, len(base)+len(overrides))
	for name, preset := range base {
		merged[name] = preset
	}
	for name, override := range overrides {
		preset := merged[name]
		preset.Name = name
		preset.DefinitionURL = shared.FirstNonEmpty(override.DefinitionURL, preset.DefinitionURL)
		preset.DefinitionColumn = shared.FirstNonEmpty(override.DefinitionColumn, preset.DefinitionColumn)
		preset.AssignmentURL = shared.FirstNonEmpty(override.AssignmentURL, preset.AssignmentURL)
		preset.AssignmentColumn = shared.FirstNonEmpty(override.AssignmentColumn, preset.AssignmentColumn)
		merged[name] = preset
	}
	return merged
}

func newAppService() (app.Service, error) {
	cfg, err := serviceConfig()
	if err != nil {
		return app.Service{}, err
	}
	return newAppServiceFromConfig(cfg)
}

func newAppServiceFromConfig(cfg app.Config) (app.Service, error) {
	log.Debug().
		Str("schema", cfg.SchemaURL).
		Str("key_slot", cfg.KeySlot).
		Int("cache_capacity", cfg.CacheCapacity).
		Int("presets", len(cfg.Presets)).
		Msg("service configured")
	return app.NewService(cfg)
}
