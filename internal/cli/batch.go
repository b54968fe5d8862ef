package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency bounds parallel uploads in Batch
const DefaultBatchConcurrency = 4

// BatchOptions configures Batch
type BatchOptions struct {
	Output      OutputOptions
	Concurrency int
	OutputDir   string // one file per document when set
}

// BatchSummary counts the outcomes of a batch
type BatchSummary struct {
	Succeeded int
	Failed    int
}

// Batch runs both stages for every document with bounded concurrency.
// Results are printed in input order. Failures do not stop the batch.
func (r *Runner) Batch(ctx context.Context, paths []string, opts BatchOptions) (BatchSummary, error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultBatchConcurrency
	}

	var names []string
	if opts.OutputDir != "" {
		names = resultFileNames(paths, opts.Output.Format)
	}

	outputs := make([]bytes.Buffer, len(paths))
	failures := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		g.Go(func() error {
			out := opts.Output
			if opts.OutputDir != "" {
				out.SavePath = filepath.Join(opts.OutputDir, names[i])
			}

			worker := &Runner{
				Client:   r.Client,
				Policy:   r.Policy,
				Renderer: r.Renderer,
				Logger:   r.Logger.With("document", filepath.Base(path)),
				Out:      &outputs[i],
				Err:      &outputs[i],
			}
			failures[i] = worker.Run(gctx, path, out)
			// Per-document failures are reported, not propagated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchSummary{}, err
	}

	var summary BatchSummary
	for i, path := range paths {
		fmt.Fprintf(r.Out, "==> %s <==\n", path)
		if failures[i] != nil {
			summary.Failed++
			fmt.Fprintf(r.Out, "Error: %v\n\n", failures[i])
			continue
		}
		summary.Succeeded++
		r.Out.Write(outputs[i].Bytes())
		fmt.Fprintln(r.Out)
	}

	if summary.Failed > 0 {
		return summary, &FailedError{Message: fmt.Sprintf("%d of %d documents failed", summary.Failed, len(paths))}
	}
	return summary, nil
}

// resultFileName keeps the document extension so scan.pdf and scan.jpg
// land in different files
func resultFileName(path, format string) string {
	ext := ".txt"
	switch format {
	case FormatJSON:
		ext = ".json"
	case FormatYAML:
		ext = ".yaml"
	}
	return filepath.Base(path) + ext
}

// resultFileNames returns one distinct file name per input. Documents sharing
// a base name are prefixed with their 1-based position in paths.
func resultFileNames(paths []string, format string) []string {
	counts := make(map[string]int, len(paths))
	for _, path := range paths {
		counts[strings.ToLower(resultFileName(path, format))]++
	}

	names := make([]string, len(paths))
	used := make(map[string]bool, len(paths))
	for i, path := range paths {
		name := resultFileName(path, format)
		if counts[strings.ToLower(name)] > 1 {
			name = fmt.Sprintf("%03d-%s", i+1, name)
		}
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%03d-%d-%s", i+1, n, resultFileName(path, format))
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

// IsFailed reports whether err is a workflow failure rather than a usage error
func IsFailed(err error) bool {
	var failed *FailedError
	return errors.As(err, &failed)
}
