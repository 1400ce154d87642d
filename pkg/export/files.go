// Package export saves extracted files to disk or bundles them into a zip archive.
package export

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/duynguyendang/maya/pkg/common/errors"
	"github.com/duynguyendang/maya/pkg/extract"
)

// DefaultConcurrency bounds the number of files written at once.
const DefaultConcurrency = 4

// Result is the outcome of saving one file. A failed save is a download failure:
// it is logged and reported, never retried.
type Result struct {
	File  string `json:"file"`
	Path  string `json:"path,omitempty"`
	Bytes int    `json:"bytes"`
	Error string `json:"error,omitempty"`
}

func (r Result) OK() bool { return r.Error == "" }

// Exporter writes extracted files under a directory.
type Exporter struct {
	Concurrency int
	Logger      zerolog.Logger
}

func NewExporter(logger zerolog.Logger) *Exporter {
	return &Exporter{
		Concurrency: DefaultConcurrency,
		Logger:      logger.With().Str("component", "export").Logger(),
	}
}

// DownloadName is the name a file is saved under. The raw name is kept unless
// sanitize is set.
func DownloadName(f extract.ExtractedFile, sanitize bool) string {
	if sanitize {
		return extract.SanitizeFilename(f.Name)
	}
	return f.Name
}

// entryName turns a file name into a relative slash path that cannot leave its root.
func entryName(name string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(name, `\`, "/"))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", fmt.Errorf("file name %q is empty: %w", name, apperrors.ErrInvalidInput)
	}
	return clean, nil
}

// uniqueNames assigns every file a distinct entry name, numbering repeats
// the way browsers do ("a (1).py"). Generated names are reserved too, so a
// later file literally named "a (1).py" moves on to "a (1) (1).py".
func uniqueNames(files []extract.ExtractedFile, sanitize bool) ([]string, []error) {
	names := make([]string, len(files))
	errs := make([]error, len(files))
	seen := make(map[string]int)
	for i, f := range files {
		name, err := entryName(DownloadName(f, sanitize))
		if err != nil {
			errs[i] = err
			continue
		}
		if n, dup := seen[name]; dup {
			ext := path.Ext(name)
			base := strings.TrimSuffix(name, ext)
			candidate := name
			for {
				n++
				candidate = fmt.Sprintf("%s (%d)%s", base, n, ext)
				if _, taken := seen[candidate]; !taken {
					break
				}
			}
			seen[name] = n
			seen[candidate] = 0
			name = candidate
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names, errs
}

// WriteDir saves every file under dir concurrently, creating parent directories.
// One result is returned per input file, in input order.
func (e *Exporter) WriteDir(ctx context.Context, dir string, files []extract.ExtractedFile, sanitize bool) ([]Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	names, nameErrs := uniqueNames(files, sanitize)
	results := make([]Result, len(files))

	limit := e.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, f := range files {
		i, f := i, f
		results[i].File = f.Name
		if nameErrs[i] != nil {
			results[i].Error = nameErrs[i].Error()
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Error = err.Error()
				return nil
			}
			target := filepath.Join(dir, filepath.FromSlash(names[i]))
			if err := writeFile(target, f.Content); err != nil {
				results[i].Error = err.Error()
				e.Logger.Warn().Err(err).Str("file", f.Name).Msg("download failed")
				return nil
			}
			results[i].Path = target
			results[i].Bytes = len(f.Content)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	e.Logger.Info().Str("dir", dir).Int("files", len(files)).Int("failed", failed).Msg("files saved")
	return results, nil
}

func writeFile(target, content string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(target, []byte(content), 0o644)
}
