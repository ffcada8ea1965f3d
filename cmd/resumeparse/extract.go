package main

import (
	"context"

	"github.com/spf13/cobra"

	"resume-parser/internal/bootstrap"
	"resume-parser/internal/shared/config"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE...",
	Short: "Print the plain text extracted from each file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExtract,
}

var (
	extractJSON        bool
	extractConcurrency int
)

func init() {
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "Write one JSON object per file")
	extractCmd.Flags().IntVarP(&extractConcurrency, "concurrency", "c", 4, "Files processed at once")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	pipeline, err := bootstrap.BuildPipeline(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	results, runErr := forEachFile(cmd.Context(), args, extractConcurrency, cfg.ParseTimeout, func(ctx context.Context, path string) fileResult {
		doc, err := readDocument(path)
		if err != nil {
			return failure(path, err)
		}
		text, format, err := pipeline.Parser.ExtractText(ctx, doc)
		if err != nil {
			return failure(path, err)
		}
		return fileResult{File: path, Format: format.String(), Text: text}
	})

	var writeErr error
	if extractJSON {
		writeErr = writeJSONLines(cmd.OutOrStdout(), results)
	} else {
		writeErr = writeText(cmd.OutOrStdout(), cmd.ErrOrStderr(), results)
	}
	if writeErr != nil {
		return writeErr
	}
	return runErr
}
