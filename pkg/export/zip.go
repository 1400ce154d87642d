package export

import (
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/duynguyendang/maya/pkg/extract"
)

// WriteZip bundles files into a zip archive written to w. Files whose names
// cannot be used as archive entries are skipped and returned as failed results.
func WriteZip(w io.Writer, files []extract.ExtractedFile, sanitize bool) ([]Result, error) {
	zw := zip.NewWriter(w)
	names, nameErrs := uniqueNames(files, sanitize)
	results := make([]Result, len(files))
	now := time.Now()

	for i, f := range files {
		results[i].File = f.Name
		if nameErrs[i] != nil {
			results[i].Error = nameErrs[i].Error()
			continue
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     names[i],
			Method:   zip.Deflate,
			Modified: now,
		})
		if err != nil {
			return nil, fmt.Errorf("add %s: %w", names[i], err)
		}
		n, err := io.WriteString(fw, f.Content)
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", names[i], err)
		}
		results[i].Path = names[i]
		results[i].Bytes = n
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return results, nil
}
