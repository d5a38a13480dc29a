package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chemtalent/jobchain/config"
	"github.com/chemtalent/jobchain/internal/bootstrap"
	"github.com/chemtalent/jobchain/internal/classify"
	"github.com/chemtalent/jobchain/internal/ingest"
	"github.com/chemtalent/jobchain/internal/logger"
	"github.com/chemtalent/jobchain/internal/services"
	"github.com/chemtalent/jobchain/internal/sheet"
	"github.com/chemtalent/jobchain/internal/taxonomy"
)

type ingestOptions struct {
	file     string
	uploader string
	dryRun   bool
}

func newIngestCmd() *cobra.Command {
	var opts ingestOptions

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Classify a spreadsheet and merge it into job_positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(opts.file)
			if err != nil {
				return err
			}
			if opts.dryRun {
				return runDryRun(cmd, data)
			}
			return runIngest(cmd, opts, data)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Spreadsheet to import, .xlsx or .xls (required)")
	cmd.Flags().StringVar(&opts.uploader, "uploader", "importer", "Uploader recorded in the archive and report")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Decode and classify only, print the records without touching storage")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runIngest(cmd *cobra.Command, opts ingestOptions, data []byte) error {
	ctx := cmd.Context()
	log := logger.New()

	cfg, err := config.LoadApp()
	if err != nil {
		return err
	}
	core, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer core.Close(ctx)

	rep, ingestErr := core.Ingest.Ingest(ctx, services.IngestRequest{
		FileName: filepath.Base(opts.file),
		Uploader: opts.uploader,
		Data:     data,
	})
	if rep != nil {
		if err := writeJSON(cmd.OutOrStdout(), rep); err != nil {
			return err
		}
	}
	return ingestErr
}

func runDryRun(cmd *cobra.Command, data []byte) error {
	cfg, err := config.LoadApp()
	if err != nil {
		return err
	}
	rules, err := taxonomy.Load(cfg.RulesPath)
	if err != nil {
		return err
	}

	rows, err := sheet.Decode(data)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	batch, err := ingest.NewPipeline(classify.New(rules), cfg.ClassifyWorkers).Run(cmd.Context(), rows)
	if err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), map[string]any{
		"total_rows":   len(rows),
		"per_industry": services.CountByIndustry(batch.Records),
		"records":      batch.Records,
		"row_errors":   batch.Errors,
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
