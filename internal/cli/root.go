package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"schemalens/internal/types"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "SCHEMALENS"

type RootConfig struct {
	ConfigFile string
	LogLevel   string
	Service    serviceOptions
}

func Execute() {
	root := newRootCommand()
	root.SilenceErrors = true
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", errorMessage(err))
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:          "schemalens",
		Short:        "Query, resolve and diff LinkML schema definitions",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	bindServiceFlags(cmd, &cfg.Service)

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newTypecodeCommand())
	cmd.AddCommand(newTypecodeTableCommand())
	cmd.AddCommand(newSlotCommand())
	cmd.AddCommand(newSlotDriftCommand())
	cmd.AddCommand(newCompareClassesCommand())
	cmd.AddCommand(newTermsCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("schemalens")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/schemalens")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse config file").
			WithCause(err)
	}
	log.Debug().Str("file", viper.ConfigFileUsed()).Msg("config loaded")
	return nil
}

// setupLogging writes to stderr; stdout carries command output.
func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func exitCodeForError(err error) int {
	switch types.KindOf(err) {
	case types.ErrorKindInvalidInput:
		return 2
	case types.ErrorKindLoad, types.ErrorKindPatternParse:
		return 5
	case types.ErrorKindNone:
	default:
		return 4
	}
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodeFailedPrecondition, errbuilder.CodePermissionDenied:
		return 3
	case errbuilder.CodeNotFound:
		return 4
	case errbuilder.CodeInternal:
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	message := types.ErrorMessage(err)
	if strings.TrimSpace(message) == "" {
		return err.Error()
	}
	return message
}
