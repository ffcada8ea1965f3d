package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"resume-parser/internal/extract"
	"resume-parser/internal/parsing"
)

// fileResult is one line of JSON output.
type fileResult struct {
	File    string          `json:"file"`
	Format  string          `json:"format,omitempty"`
	Text    string          `json:"text,omitempty"`
	Data    any             `json:"data,omitempty"`
	Timings *timingsPayload `json:"timingsMs,omitempty"`
	Error   *errorPayload   `json:"error,omitempty"`
}

type timingsPayload struct {
	Extract int64 `json:"extract"`
	Model   int64 `json:"model"`
	Total   int64 `json:"total"`
}

type errorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

var errSomeFailed = errors.New("one or more files failed")

func readDocument(path string) (extract.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return extract.Document{}, err
	}
	name := filepath.Base(path)
	return extract.Document{
		Data:      data,
		MediaType: extract.ResolveMediaType("", name, data),
		Size:      int64(len(data)),
		FileName:  name,
	}, nil
}

func failure(path string, err error) fileResult {
	return fileResult{
		File:  path,
		Error: &errorPayload{Kind: string(parsing.KindOf(err)), Message: err.Error()},
	}
}

// forEachFile runs fn over paths with at most limit in flight. Results keep
// the order of paths; one file failing does not stop the others.
func forEachFile(ctx context.Context, paths []string, limit int, timeout time.Duration, fn func(context.Context, string) fileResult) ([]fileResult, error) {
	if limit < 1 {
		limit = 1
	}
	results := make([]fileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			fctx := gctx
			if timeout > 0 {
				var cancel context.CancelFunc
				fctx, cancel = context.WithTimeout(gctx, timeout)
				defer cancel()
			}
			results[i] = fn(fctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	for _, r := range results {
		if r.Error != nil {
			return results, errSomeFailed
		}
	}
	return results, nil
}
