package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"resume-parser/internal/bootstrap"
	"resume-parser/internal/extract"
	"resume-parser/internal/shared/config"
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE...",
	Short: "Parse each file into a structured resume record",
	Long: "Parse runs sniffing, text extraction, the configured language model and " +
		"response validation over each file and prints one JSON object per file.\n\n" +
		"Supported media types: " + strings.Join(extract.SupportedMediaTypes(), ", "),
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

var (
	parseConcurrency int
	parseWithText    bool
)

func init() {
	parseCmd.Flags().IntVarP(&parseConcurrency, "concurrency", "c", 2, "Files processed at once")
	parseCmd.Flags().BoolVar(&parseWithText, "with-text", false, "Include the extracted text in the output")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	pipeline, err := bootstrap.BuildPipeline(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	results, runErr := forEachFile(cmd.Context(), args, parseConcurrency, cfg.ParseTimeout, func(ctx context.Context, path string) fileResult {
		doc, err := readDocument(path)
		if err != nil {
			return failure(path, err)
		}
		res, err := pipeline.Parser.Parse(ctx, doc)
		if err != nil {
			return failure(path, err)
		}
		out := fileResult{
			File:   path,
			Format: res.Format.String(),
			Data:   res.Record,
			Timings: &timingsPayload{
				Extract: res.Extract.Milliseconds(),
				Model:   res.Model.Milliseconds(),
				Total:   res.Total.Milliseconds(),
			},
		}
		if parseWithText {
			out.Text = res.Text
		}
		return out
	})

	if err := writeJSONLines(cmd.OutOrStdout(), results); err != nil {
		return err
	}
	return runErr
}
