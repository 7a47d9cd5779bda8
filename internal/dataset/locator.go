// Package dataset finds, parses and validates the tabular dataset consumed by
// the report. Every outcome of a lookup, including failures, is returned as a
// Result value.
package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// DefaultRequiredColumns must be present after column names are trimmed.
var DefaultRequiredColumns = []string{"Cholesterol", "Heart Disease Status"}

// ExpectedColumns lists the columns the report sections read. Only
// DefaultRequiredColumns are enforced.
var ExpectedColumns = []string{"Age", "Gender", "Cholesterol", "Heart Disease Status", "Smoking"}

// Request describes one lookup. Upload, when non-nil, wins over the
// filesystem; an empty non-nil slice is an upload of zero bytes.
type Request struct {
	ID            string
	PrimaryPath   string
	SearchRoot    string
	SearchPattern string
	Upload        []byte
	UploadName    string
}

// NewRequest returns a filesystem request with a fresh request id.
func NewRequest(primaryPath, searchRoot, searchPattern string) Request {
	return Request{
		ID:            uuid.NewString(),
		PrimaryPath:   primaryPath,
		SearchRoot:    searchRoot,
		SearchPattern: searchPattern,
	}
}

// WithUpload returns a copy of r carrying uploaded bytes.
func (r Request) WithUpload(name string, data []byte) Request {
	if data == nil {
		data = []byte{}
	}
	r.Upload = data
	r.UploadName = name
	return r
}

// Locator resolves a Request into a Result.
type Locator struct {
	required []string
	logger   *slog.Logger
}

// Option configures a Locator.
type Option func(*Locator)

// WithRequiredColumns replaces the required column set.
func WithRequiredColumns(cols ...string) Option {
	return func(l *Locator) {
		l.required = TrimColumnNames(cols)
	}
}

// WithLogger sets the logger used for lookup events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locator) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLocator builds a Locator requiring DefaultRequiredColumns unless told otherwise.
func NewLocator(opts ...Option) *Locator {
	l := &Locator{
		required: append([]string(nil), DefaultRequiredColumns...),
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// RequiredColumns returns the columns a table must carry to be Loaded.
func (l *Locator) RequiredColumns() []string {
	return append([]string(nil), l.required...)
}

// Locate resolves req: an upload first, then the primary path, then the
// first fallback match under SearchRoot. It only reads from disk.
func (l *Locator) Locate(req Request) Result {
	log := l.logger.With("request_id", req.ID)
	res := l.locate(req, log)
	attrs := []any{"outcome", res.Outcome.String(), "source", res.Source.String()}
	switch res.Outcome {
	case OutcomeLoaded:
		attrs = append(attrs, "rows", res.Table.Len(), "columns", len(res.Table.columns))
		log.Info("dataset loaded", attrs...)
	case OutcomeNotFound:
		log.Warn("dataset not found", append(attrs, "primary_path", req.PrimaryPath, "search_root", req.SearchRoot, "pattern", req.SearchPattern)...)
	default:
		log.Warn("dataset rejected", append(attrs, "message", res.Message)...)
	}
	return res
}

func (l *Locator) locate(req Request, log *slog.Logger) Result {
	if req.Upload != nil {
		src := Source{Kind: SourceUploaded, Path: req.UploadName}
		log.Debug("using uploaded bytes", "name", req.UploadName, "bytes", len(req.Upload))
		return l.load(src, req.Upload)
	}
	if isRegularFile(req.PrimaryPath) {
		return l.loadFile(Source{Kind: SourcePrimary, Path: req.PrimaryPath})
	}
	if req.PrimaryPath != "" {
		log.Debug("primary path unavailable, searching", "primary_path", req.PrimaryPath)
	}
	matches, err := findMatches(req.SearchRoot, req.SearchPattern)
	if err != nil {
		return Result{Outcome: OutcomeNotFound, Message: err.Error()}
	}
	if len(matches) == 0 {
		return Result{Outcome: OutcomeNotFound, Message: notFoundMessage(req)}
	}
	if len(matches) > 1 {
		log.Warn("several files match the search pattern, using the first", "matches", len(matches), "chosen", matches[0])
	}
	return l.loadFile(Source{Kind: SourceDiscovered, Path: matches[0]})
}

func (l *Locator) loadFile(src Source) Result {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return Result{Outcome: OutcomeParseError, Source: src, Message: err.Error()}
	}
	return l.load(src, data)
}

func (l *Locator) load(src Source, data []byte) Result {
	rt, err := parseCSV(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, errEmptySource) || errors.Is(err, errNoRows) {
			return Result{Outcome: OutcomeEmptyFile, Source: src, Message: err.Error()}
		}
		return Result{Outcome: OutcomeParseError, Source: src, Message: err.Error()}
	}
	cols := TrimColumnNames(rt.header)
	if missing := MissingColumns(l.required, cols); len(missing) > 0 {
		return Result{Outcome: OutcomeMissingColumns, Source: src, Missing: missing, Message: (&MissingColumnsError{Columns: missing}).Error()}
	}
	return Result{Outcome: OutcomeLoaded, Source: src, Table: newTable(dedupeColumnNames(cols), rt.records)}
}

// MissingColumns returns required minus present, sorted.
func MissingColumns(required, present []string) []string {
	have := make(map[string]struct{}, len(present))
	for _, p := range present {
		have[p] = struct{}{}
	}
	var missing []string
	seen := map[string]struct{}{}
	for _, r := range required {
		if _, ok := have[r]; ok {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		missing = append(missing, r)
	}
	sort.Strings(missing)
	return missing
}

func isRegularFile(p string) bool {
	if p == "" {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// findMatches walks root and returns regular files matching pattern,
// shallowest first and lexically within a depth. Symlinks to regular files
// count as files and a symlinked root is resolved, but symlinked
// subdirectories are not entered. Unreadable directories are skipped, and an
// empty or absent root or an empty pattern yields no matches.
func findMatches(root, pattern string) ([]string, error) {
	if root == "" || pattern == "" {
		return nil, nil
	}
	pattern = filepath.ToSlash(pattern)
	if _, err := path.Match(strings.TrimPrefix(pattern, "**/"), ""); err != nil {
		return nil, fmt.Errorf("invalid search pattern %q: %w", pattern, err)
	}
	walkRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, nil
	}
	var matches []string
	walkErr := filepath.WalkDir(walkRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && p != walkRoot {
				return fs.SkipDir
			}
			return nil
		}
		if !isFileEntry(p, d) {
			return nil
		}
		rel, err := filepath.Rel(walkRoot, p)
		if err != nil {
			return nil
		}
		if MatchPattern(pattern, filepath.ToSlash(rel)) {
			matches = append(matches, filepath.Join(root, rel))
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	sort.SliceStable(matches, func(i, j int) bool {
		di, dj := depth(matches[i]), depth(matches[j])
		if di != dj {
			return di < dj
		}
		return matches[i] < matches[j]
	})
	return matches, nil
}

func isFileEntry(p string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// MatchPattern matches a slash-separated relative path against a glob. A
// leading "**/" lets the rest of the pattern match at any depth.
func MatchPattern(pattern, rel string) bool {
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		segs := strings.Split(rel, "/")
		n := strings.Count(rest, "/") + 1
		if len(segs) < n {
			return false
		}
		ok, _ := path.Match(rest, strings.Join(segs[len(segs)-n:], "/"))
		return ok
	}
	ok, _ := path.Match(pattern, rel)
	return ok
}

func depth(p string) int {
	return strings.Count(filepath.ToSlash(p), "/")
}

func notFoundMessage(req Request) string {
	name := filepath.Base(req.PrimaryPath)
	if req.PrimaryPath == "" {
		name = path.Base(strings.TrimPrefix(filepath.ToSlash(req.SearchPattern), "**/"))
	}
	return "file '" + name + "' not found"
}
