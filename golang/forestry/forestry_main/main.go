package main

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tarstars/bridged_forestry/golang/forestry/rfl"
)

type rootCmdConfig struct {
	logLevel   string
	logFormat  string
	memprofile string
}

func main() {
	if err := cliParser().Execute(); err != nil {
		log.Error().Err(err).Msg("forestry failed")
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	config := &rootCmdConfig{}
	rootCmd := &cobra.Command{
		Use:           "forestry",
		Short:         "forestry applies random forests to npy data",
		Long:          `A tool to predict with random forest models, inspect their trees and render them as pictures`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(config.logLevel, config.logFormat)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return writeMemProfile(config.memprofile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&(config.logLevel), "log-level", "info", "one of trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&(config.logFormat), "log-format", "console", "either console or json")
	rootCmd.PersistentFlags().StringVar(&(config.memprofile), "memprofile", "", "write memory profile to `file`")
	rootCmd.AddCommand(versionCmd(), predictCmd(), graphCmd(), printCmd(), infoCmd())
	return rootCmd
}

func setupLogging(level, format string) error {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "log level %q", level)
	}
	zerolog.SetGlobalLevel(logLevel)

	switch format {
	case "console":
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	case "json":
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	default:
		return errors.Errorf("unknown log format %q", format)
	}
	return nil
}

func writeMemProfile(memprofile string) error {
	if memprofile == "" {
		return nil
	}
	f, err := os.Create(memprofile)
	if err != nil {
		return errors.Wrap(err, "could not create memory profile")
	}
	defer func() { rfl.HandleError(f.Close()) }()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return errors.Wrap(err, "could not write memory profile")
	}
	return nil
}
