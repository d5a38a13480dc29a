package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chemtalent/jobchain/internal/ingest"
)

func newTemplateCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the upload template workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := ingest.Template()
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(b))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", ingest.TemplateFileName, "Output path")
	return cmd
}
