package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Udhayakumar116/ai-question-gen/internal/config"
	"github.com/Udhayakumar116/ai-question-gen/internal/core/ingestion_engine"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		verbose  bool
		strict   bool
		sorted   bool
		extended bool
		maxBytes int64
	)

	cmd := &cobra.Command{
		Use:   "extract [files...]",
		Short: "Extract plain text from PDF, PPTX and image files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			ingCfg := ingestion_engine.NewIngestConfig(cfg)
			if cmd.Flags().Changed("strict") {
				ingCfg.StrictPDF = strict
			}
			if cmd.Flags().Changed("sort-slides") {
				ingCfg.SortSlides = sorted
			}
			if cmd.Flags().Changed("extended") {
				ingCfg.ExtendedFormats = extended
			}
			if cmd.Flags().Changed("max-bytes") {
				ingCfg.MaxFileSize = maxBytes
			}

			logger := zap.NewNop()
			if verbose {
				l, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				logger = l
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runExtract(ctx, cmd, ingestion_engine.NewCoordinator(ingCfg, logger), args)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log ingestion details to stderr")
	cmd.Flags().BoolVar(&strict, "strict", false, "validate PDFs before decoding")
	cmd.Flags().BoolVar(&sorted, "sort-slides", false, "emit slides in numeric order")
	cmd.Flags().BoolVar(&extended, "extended", false, "accept docx, odt, rtf, html and text files")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", config.DefaultMaxUploadBytes, "per-file size ceiling")
	return cmd
}

func runExtract(ctx context.Context, cmd *cobra.Command, coord *ingestion_engine.Coordinator, paths []string) error {
	batch := make([]ingestion_engine.SourceFile, 0, len(paths))
	var openErrs int
	for _, p := range paths {
		f, err := ingestion_engine.NewLocalFile(p, mime.TypeByExtension(filepath.Ext(p)))
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", p, err)
			openErrs++
			continue
		}
		batch = append(batch, f)
	}

	res := coord.Ingest(ctx, nil, batch)
	out := cmd.OutOrStdout()
	for _, f := range res.Files {
		fmt.Fprintf(out, "=== %s (%s) ===\n", f.Name, f.Type)
		if f.IsImage() {
			fmt.Fprintf(out, "[image data URL, %d bytes]\n\n", len(f.Data))
			continue
		}
		fmt.Fprintf(out, "%s\n\n", f.Data)
	}
	for _, msg := range res.Messages() {
		fmt.Fprintln(cmd.ErrOrStderr(), msg)
	}

	if failed := openErrs + len(res.Errors); failed > 0 {
		cmd.SilenceUsage = true
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}
