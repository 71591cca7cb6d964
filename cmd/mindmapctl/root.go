package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pgy3-backend/infrastructure/config"
	"pgy3-backend/infrastructure/di"
)

type rootOptions struct {
	configFile string
	backend    string
	dataFile   string
	sqlitePath string
	logLevel   string

	tools   *di.Tooling
	cleanup func()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "mindmapctl",
		Short:         "Administer the PGY-3 mind map store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.open(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.cleanup != nil {
				opts.cleanup()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML configuration file (defaults to $CONFIG_FILE)")
	flags.StringVarP(&opts.backend, "backend", "b", "", "storage backend to operate on (overrides STORAGE_BACKEND)")
	flags.StringVar(&opts.dataFile, "data-file", "", "document path for the file backend")
	flags.StringVar(&opts.sqlitePath, "sqlite-path", "", "database path for the sqlite backend")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level")

	cmd.AddCommand(
		newSeedCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newCopyCmd(opts),
	)
	return cmd
}

// loadConfig applies command line overrides on top of the usual sources.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.Load(o.configFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return nil, err
	}

	if o.backend != "" {
		cfg.StorageBackend = o.backend
	}
	if o.dataFile != "" {
		cfg.DataFile = o.dataFile
	}
	if o.sqlitePath != "" {
		cfg.SQLitePath = o.sqlitePath
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (o *rootOptions) open(cmd *cobra.Command) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	tools, cleanup, err := di.InitializeTooling(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	o.tools = tools
	o.cleanup = cleanup
	return nil
}
