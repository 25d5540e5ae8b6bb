// Package jsonfile implements the domain stores on top of flat JSON
// documents. Each store owns one file and a mutex; every mutation is a
// load-mutate-save of the whole document under that mutex. This matches the
// deployment this backend was built for: a single process at low request
// volume. The lifecycle daemon may touch the same files from outside the
// process during a sync window; that race is accepted and documented rather
// than solved here.
package jsonfile

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
)

// readDocument loads path into dst. A missing file is an empty collection,
// not an error. An unreadable or unparsable file is logged and reported as
// false so the caller falls back to an empty collection; the caller must not
// use dst in that case, since a failed unmarshal may leave it partially
// filled.
func readDocument(logger *slog.Logger, path string, dst any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Error("jsonfile: read failed, treating document as empty",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		logger.Error("jsonfile: unparsable document, treating as empty",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

// writeDocument pretty-prints v and replaces path atomically via a temp file
// and rename, so a crash mid-write never leaves a truncated document.
func writeDocument(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
