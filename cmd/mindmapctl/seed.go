package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pgy3-backend/domain/mindmap"
	"pgy3-backend/pkg/utils"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the sample mind map if the store is empty",
		Long: "Write the sample mind map if the store is empty. With --force the\n" +
			"stored document is replaced by fresh sample data.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store := opts.tools.Store

			if force {
				doc := mindmap.SeedDocument(utils.NowUTC(), mindmap.NewID)
				if err := store.Save(ctx, doc); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "replaced %s document with sample data: %s\n",
					opts.tools.Medium.Name(), formatCounts(doc.Counts()))
				return nil
			}

			doc, err := store.Load(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s document ready: %s\n",
				opts.tools.Medium.Name(), formatCounts(doc.Counts()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "replace an existing document")
	return cmd
}

func formatCounts(c mindmap.Counts) string {
	return fmt.Sprintf("%d topics, %d cases, %d tasks, %d literature, %d connections",
		c.Topics, c.Cases, c.Tasks, c.Literature, c.Connections)
}
