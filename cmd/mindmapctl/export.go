package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pgy3-backend/domain/mindmap"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the stored mind map as JSON to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := opts.tools.Store.Load(cmd.Context())
			if err != nil {
				return err
			}
			data, err := mindmap.EncodeDocument(doc)
			if err != nil {
				return err
			}
			if !compact {
				var buf bytes.Buffer
				if err := json.Indent(&buf, data, "", "  "); err != nil {
					return err
				}
				data = buf.Bytes()
			}
			data = append(data, '\n')

			if len(args) == 0 || args[0] == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %s to %s\n", formatCounts(doc.Counts()), args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "write compact JSON")
	return cmd
}
