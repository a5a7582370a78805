// Package output writes rendered documents: atomically to disk, and
// optionally converted from HTML to Markdown.
package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// TempFilePrefix is the prefix of the temporary files a write stages its
// document in.
const TempFilePrefix = "deep-tmp-"

// Written describes the outcome of Write.
type Written struct {
	Path   string
	Format Format
	// Bytes is the size of the converted document.
	Bytes int
	// Unchanged is true when the file already held the document and was
	// left untouched.
	Unchanged bool
}

// Write converts rendered to f and stores it at path. A file that already
// holds the converted document is not rewritten, so repeated renders in
// watch mode do not touch the modification time of unchanged pages.
func Write(path, rendered string, f Format) (Written, error) {
	doc, err := Convert(rendered, f)
	if err != nil {
		return Written{}, err
	}
	res := Written{Path: path, Format: f, Bytes: len(doc)}

	if current, err := os.ReadFile(path); err == nil && bytes.Equal(current, []byte(doc)) {
		res.Unchanged = true
		return res, nil
	}
	if err := WriteFileAtomic(path, []byte(doc), 0o644); err != nil {
		return Written{}, err
	}
	return res, nil
}

// WriteFileAtomic stages data in a temp file beside filename and renames it
// into place. Readers see either the previous document or the new one.
// Missing parent directories are created.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("stage %s: %w", filename, err)
	}
	staged := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(staged)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("stage %s: %w", filename, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", staged, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", staged, err)
	}
	if err = os.Chmod(staged, perm); err != nil {
		return fmt.Errorf("chmod %s: %w", staged, err)
	}
	if err = os.Rename(staged, filename); err != nil {
		return fmt.Errorf("publish %s: %w", filename, err)
	}
	return nil
}
