// Package batch runs the parser across a directory of statement PDFs.
// Used to regression-test descriptor configs against a corpus: every
// file is attempted, failures are recorded rather than fatal, and the
// results land in a CSV for diffing between runs.
package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/insightdelivered/transtractor/internal/parser"
)

// Result is one file's outcome.
type Result struct {
	File         string
	Key          string
	Transactions int
	Duration     time.Duration
	Err          error
}

// Runner parses every PDF under a directory through one shared Parser.
type Runner struct {
	Parser *parser.Parser
	Log    *slog.Logger
	// Workers bounds parallelism; zero means 4.
	Workers int
	// Progress draws a terminal progress bar.
	Progress bool
}

// Run walks dir for PDF files and parses each one. Results come back in
// path order regardless of which worker finished first. The context
// stops the run early; files not yet started are simply absent from the
// results.
func (r *Runner) Run(ctx context.Context, dir string) ([]Result, error) {
	files, err := pdfFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no PDF files found under %s", dir)
	}
	workers := r.Workers
	if workers <= 0 {
		workers = 4
	}

	var bar *progressbar.ProgressBar
	if r.Progress {
		bar = progressbar.Default(int64(len(files)), "parsing")
	}

	results := make([]Result, len(files))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.parseOne(files[i])
				if bar != nil {
					_ = bar.Add(1)
				}
			}
		}()
	}

feed:
	for i := range files {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return compact(results), err
	}
	return results, nil
}

func (r *Runner) parseOne(path string) Result {
	start := time.Now()
	data, err := r.Parser.ParseFile(path)
	res := Result{File: path, Duration: time.Since(start), Err: err}
	if err != nil {
		r.Log.Warn("batch file failed", "file", path, "error", err)
		return res
	}
	res.Key = data.Key
	res.Transactions = len(data.Transactions)
	r.Log.Debug("batch file parsed", "file", path,
		"key", res.Key, "transactions", res.Transactions, "duration", res.Duration)
	return res
}

// WriteResults writes the run's outcome as CSV, one row per file.
func WriteResults(out io.Writer, results []Result) error {
	w := csv.NewWriter(out)
	defer w.Flush()
	if err := w.Write([]string{"file", "key", "transactions", "duration_ms", "error"}); err != nil {
		return err
	}
	for _, res := range results {
		errText := ""
		if res.Err != nil {
			errText = res.Err.Error()
		}
		row := []string{
			res.File,
			res.Key,
			strconv.Itoa(res.Transactions),
			strconv.FormatInt(res.Duration.Milliseconds(), 10),
			errText,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// Summary renders pass/fail counts for terminal output.
func Summary(results []Result) string {
	passed := 0
	for _, res := range results {
		if res.Err == nil {
			passed++
		}
	}
	return fmt.Sprintf("%d/%d parsed cleanly", passed, len(results))
}

func pdfFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// compact drops zero-valued entries left behind by an early stop.
func compact(results []Result) []Result {
	kept := results[:0]
	for _, res := range results {
		if res.File != "" {
			kept = append(kept, res)
		}
	}
	return kept
}
