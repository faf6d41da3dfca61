package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"schemalens/internal/app"
	"schemalens/internal/web"
)

type serveOptions struct {
	Listen            string
	RequestTimeoutSec int
	ShutdownGraceSec  int
	AllowLocalSources bool
}

func newServeCommand() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Listen, "listen", ":8080", "Listen address")
	cmd.Flags().IntVar(&opts.RequestTimeoutSec, "request-timeout", 120, "Per-request timeout in seconds (0 = none)")
	cmd.Flags().IntVar(&opts.ShutdownGraceSec, "shutdown-grace", 10, "Graceful shutdown timeout in seconds")
	_ = viper.BindPFlag("listen", cmd.Flags().Lookup("listen"))
	_ = viper.BindPFlag("request_timeout_sec", cmd.Flags().Lookup("request-timeout"))
	cmd.Flags().BoolVar(&opts.AllowLocalSources, "allow-local-sources", false, "Let clients name local paths and file:// URLs as sources")
	_ = viper.BindPFlag("shutdown_grace_sec", cmd.Flags().Lookup("shutdown-grace"))
	_ = viper.BindPFlag("allow_local_sources", cmd.Flags().Lookup("allow-local-sources"))
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, opts serveOptions) error {
	cfg, err := serveServiceConfig(cmd, opts)
	if err != nil {
		return err
	}
	service, err := newAppServiceFromConfig(cfg)
	if err != nil {
		return err
	}
	config := web.DefaultConfig()
	config.Address = resolveString(cmd, opts.Listen, "listen", "listen")
	config.RequestTimeout = time.Duration(resolveInt(cmd, opts.RequestTimeoutSec, "request_timeout_sec", "request-timeout")) * time.Second
	server, err := web.New(config, service)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	grace := time.Duration(resolveInt(cmd, opts.ShutdownGraceSec, "shutdown_grace_sec", "shutdown-grace")) * time.Second
	return server.Run(ctx, grace)
}

// serveServiceConfig builds the service config for the HTTP server.
// Request parameters name the sources there, so local reads are off
// unless explicitly allowed.
func serveServiceConfig(cmd *cobra.Command, opts serveOptions) (app.Config, error) {
	cfg, err := serviceConfig()
	if err != nil {
		return app.Config{}, err
	}
	cfg.Fetch.AllowLocal = resolveBool(cmd, opts.AllowLocalSources, "allow_local_sources", "allow-local-sources")
	if cfg.Fetch.AllowLocal {
		log.Warn().Msg("http server accepts local file sources")
	}
	return cfg, nil
}
