// Package fs implements core.RecordSource on top of a directory of
// documents (a "vault"):
//
//	fields.yaml            custom field declarations (id, name, type)
//	channels/*.yaml        channel attributes, merged into their entries
//	authors/*.{yaml,csv}   member records
//	categories/*.yaml      category nodes (category_id, parent_id, group_id)
//	entries/**/*.md        entries: frontmatter attributes and fields, Markdown body
//
// Files are parsed once and cached by modification time; the domain
// snapshot is rebuilt only when a file changed.
package fs

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alexmglover/Deep/pkg/core"
)

// Vault sections.
const (
	SectionFields     = "fields"
	SectionChannels   = "channels"
	SectionAuthors    = "authors"
	SectionCategories = "categories"
	SectionEntries    = "entries"
)

// Config holds the configuration for the filesystem source.
type Config struct {
	Path   string
	Logger *slog.Logger
	// Strict decodes numbers as json.Number.
	Strict bool
	// ErrorHandler receives parse and watcher failures that are otherwise
	// only logged.
	ErrorHandler func(error)
	// Serializers overrides or extends the default serializers by extension.
	Serializers map[string]Serializer
}

// Source implements core.RecordSource over a vault directory.
type Source struct {
	Path        string
	config      Config
	serializers map[string]Serializer
	cache       *cache

	mu            sync.RWMutex
	vault         *vault
	fingerprint   string
	loads         int
	lastLoad      *time.Time
	watcherActive bool
}

// NewSource creates a new filesystem-backed record source.
func NewSource(config Config) *Source {
	serializers := DefaultSerializers(config.Strict)
	for ext, s := range config.Serializers {
		serializers[ext] = s
	}
	return &Source{
		Path:        config.Path,
		config:      config,
		serializers: serializers,
		cache:       newCache(),
	}
}

// Initialize checks that the vault directory exists.
func (s *Source) Initialize(ctx context.Context) error {
	info, err := os.Stat(s.Path)
	if os.IsNotExist(err) {
		return fmt.Errorf("vault path does not exist: %s", s.Path)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("vault path is not a directory: %s", s.Path)
	}
	return nil
}

type fileInfo struct {
	rel   string
	path  string
	mtime time.Time
	size  int64
}

// scan lists the vault files the source can parse, sorted by path.
func (s *Source) scan(ctx context.Context) ([]fileInfo, error) {
	var files []fileInfo
	err := filepath.WalkDir(s.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != s.Path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := s.serializers[filepath.Ext(d.Name())]; !ok {
			return nil
		}
		rel, err := filepath.Rel(s.Path, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, fileInfo{
			rel:   filepath.ToSlash(rel),
			path:  path,
			mtime: info.ModTime(),
			size:  info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan vault: %w", err)
	}
	slices.SortFunc(files, func(a, b fileInfo) int { return strings.Compare(a.rel, b.rel) })
	return files, nil
}

// load returns the current snapshot, rebuilding it when any file changed.
func (s *Source) load(ctx context.Context) (*vault, error) {
	files, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}

	var fp strings.Builder
	for _, f := range files {
		fmt.Fprintf(&fp, "%s|%d|%d\n", f.rel, f.mtime.UnixNano(), f.size)
	}

	s.mu.RLock()
	if s.vault != nil && s.fingerprint == fp.String() {
		v := s.vault
		s.mu.RUnlock()
		return v, nil
	}
	s.mu.RUnlock()

	sections := make(map[string][]Document)
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		section := sectionOf(f.rel)
		if section == "" {
			continue
		}
		seen[f.rel] = true
		docs, err := s.parseFile(f)
		if err != nil {
			s.reportError(fmt.Errorf("parse %s: %w", f.rel, err))
			continue
		}
		sections[section] = append(sections[section], docs...)
	}
	s.cache.Prune(seen)

	v := buildVault(sections, s.config.Logger)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.vault = v
	s.fingerprint = fp.String()
	s.loads++
	s.lastLoad = &now
	return v, nil
}

func (s *Source) parseFile(f fileInfo) ([]Document, error) {
	if entry, hit := s.cache.Get(f.rel, f.mtime, f.size); hit {
		return entry.Docs, nil
	}

	file, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	docs, err := s.serializers[filepath.Ext(f.rel)].Parse(file)
	if err != nil {
		return nil, err
	}

	id := strings.TrimSuffix(f.rel, filepath.Ext(f.rel))
	for i := range docs {
		docs[i].ID = id
		if len(docs) > 1 {
			docs[i].ID = id + "#" + strconv.Itoa(i+1)
		}
	}
	s.cache.Set(f.rel, &cacheEntry{Docs: docs, LastModified: f.mtime, Size: f.size})
	return docs, nil
}

// sectionOf maps a relative path onto its vault section. Top-level files
// other than the field declarations are not records.
func sectionOf(rel string) string {
	first, _, nested := strings.Cut(rel, "/")
	if !nested {
		if strings.TrimSuffix(first, filepath.Ext(first)) == SectionFields {
			return SectionFields
		}
		return ""
	}
	switch first {
	case SectionChannels, SectionAuthors, SectionCategories, SectionEntries:
		return first
	}
	return ""
}

func (s *Source) reportError(err error) {
	if s.config.Logger != nil {
		s.config.Logger.Warn("vault error", "error", err)
	}
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
	}
}

// Records implements core.RecordSource.
func (s *Source) Records(ctx context.Context, q core.Query) ([]core.Record, int, error) {
	v, err := s.load(ctx)
	if err != nil {
		return nil, 0, err
	}
	matched, err := v.query(q)
	if err != nil {
		return nil, 0, err
	}

	total := len(matched)
	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[q.Offset:]
		}
	}
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	out := make([]core.Record, len(matched))
	for i, e := range matched {
		out[i] = e.Entry
	}
	return out, total, nil
}

// CategoryTree implements core.RecordSource.
func (s *Source) CategoryTree(ctx context.Context, q core.CategoryQuery) ([]*core.Category, error) {
	v, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(q.GroupIDs) == 0 {
		return v.forest, nil
	}
	var out []*core.Category
	for _, root := range v.forest {
		if slices.Contains(q.GroupIDs, root.GroupID) {
			out = append(out, root)
		}
	}
	return out, nil
}

// Fields returns the declared custom fields.
func (s *Source) Fields(ctx context.Context) (core.FieldMap, error) {
	v, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return v.fieldMap, nil
}

// FieldID implements core.FieldNameResolver against the latest snapshot.
func (s *Source) FieldID(name string) (int, bool) {
	s.mu.RLock()
	v := s.vault
	s.mu.RUnlock()
	if v == nil {
		var err error
		if v, err = s.load(context.Background()); err != nil {
			return 0, false
		}
	}
	return v.fieldMap.FieldID(name)
}

var (
	_ core.RecordSource      = (*Source)(nil)
	_ core.FieldNameResolver = (*Source)(nil)
	_ core.Watchable         = (*Source)(nil)
)
