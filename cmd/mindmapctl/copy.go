package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pgy3-backend/infrastructure/config"
	"pgy3-backend/infrastructure/di"
)

type copyOptions struct {
	backend  string
	location string
}

func newCopyCmd(opts *rootOptions) *cobra.Command {
	copts := &copyOptions{}

	cmd := &cobra.Command{
		Use:   "copy --to <backend> [--to-location <path|dsn|url|table>]",
		Short: "Copy the stored mind map to another storage backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if copts.backend == "" {
				return errors.New("--to is required")
			}

			dst := *opts.tools.Config
			dst.StorageBackend = copts.backend
			if copts.location != "" {
				copts.apply(&dst)
			}
			if err := dst.Validate(); err != nil {
				return fmt.Errorf("invalid destination: %w", err)
			}

			doc, err := opts.tools.Store.Load(ctx)
			if err != nil {
				return err
			}

			medium, cleanup, err := di.NewMedium(ctx, &dst, opts.tools.AWS)
			if err != nil {
				return err
			}
			defer cleanup()

			target, err := di.ProvideToolingStore(medium, &dst, opts.tools.Logger)
			if err != nil {
				return err
			}
			if err := target.Save(ctx, doc); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "copied %s from %s to %s\n",
				formatCounts(doc.Counts()), opts.tools.Medium.Name(), medium.Name())
			return nil
		},
	}

	cmd.Flags().StringVar(&copts.backend, "to", "", "destination backend ("+strings.Join(config.Backends, "|")+")")
	cmd.Flags().StringVar(&copts.location, "to-location", "", "destination file path, DSN, URL or table name")
	return cmd
}

// apply routes --to-location to the setting the destination backend reads.
func (c *copyOptions) apply(cfg *config.Config) {
	switch c.backend {
	case config.BackendFile:
		cfg.DataFile = c.location
	case config.BackendSQLite:
		cfg.SQLitePath = c.location
	case config.BackendPostgres:
		cfg.PostgresDSN = c.location
	case config.BackendMongo:
		cfg.MongoURL = c.location
	case config.BackendDynamoDB:
		cfg.DynamoDBTable = c.location
	}
}
