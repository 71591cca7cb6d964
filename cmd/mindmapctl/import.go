package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pgy3-backend/domain/mindmap"
	"pgy3-backend/pkg/utils"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Replace the stored mind map with a JSON document",
		Long: "Replace the stored mind map with a JSON document read from a file,\n" +
			"or stdin when no file is given. The document is validated first and\n" +
			"the store is left untouched when it is rejected.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}

			doc, err := mindmap.DecodeDocument(data)
			if err != nil {
				return err
			}
			doc.Normalize(utils.NowUTC(), mindmap.NewID)
			if err := opts.tools.Store.Save(cmd.Context(), doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s into %s\n",
				formatCounts(doc.Counts()), opts.tools.Medium.Name())
			return nil
		},
	}
}
