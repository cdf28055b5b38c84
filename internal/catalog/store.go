// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog indexes finished component directories in SQLite so
// entities from one or more split runs can be listed, searched, and
// exported without walking the tree each time.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/spl-splitter/pkg/types"
)

const defaultMaxResults = 20

// CategoryGlobals tags the globals.txt entry, which mixes field and mode
// blocks.
const CategoryGlobals types.Category = "globals"

// entityDirs maps per-entity output directories to their category.
var entityDirs = []struct {
	dir      string
	category types.Category
}{
	{"objects", types.CategoryObject},
	{"procedures", types.CategoryProcedure},
	{"screens", types.CategoryScreen},
	{"menus", types.CategoryMenu},
}

// aggregateFiles maps line-per-declaration output files to their category.
var aggregateFiles = []struct {
	path     string
	category types.Category
}{
	{"links/all_links.txt", types.CategoryLink},
	{"includes/all_includes.txt", types.CategoryInclude},
	{"defines/all_defines.txt", types.CategoryDefine},
	{"version.txt", types.CategoryVersion},
}

const globalsPath = "globals.txt"

// Entry is one cataloged component.
type Entry struct {
	// ID is stable for a given components directory and path/line.
	ID        string         `json:"id" yaml:"id"`
	SourceDir string         `json:"source_dir" yaml:"source_dir"`
	Category  types.Category `json:"category" yaml:"category"`
	Name      string         `json:"name" yaml:"name"`
	Path      string         `json:"path" yaml:"path"`
	Line      int            `json:"line,omitempty" yaml:"line,omitempty"`
	Content   string         `json:"content" yaml:"content"`
}

// Store manages the catalog SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
	now        func() time.Time
}

// NewStore opens or creates the catalog database at cfg.DBPath and creates
// the schema if it does not exist.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("catalog database path is required")
	}
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{
		db:         db,
		maxResults: maxResults,
		now:        time.Now,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ingest_runs (
			id TEXT PRIMARY KEY,
			source_dir TEXT NOT NULL,
			ingested_at TEXT NOT NULL,
			entries INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			source_dir TEXT NOT NULL,
			category TEXT NOT NULL,
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			line INTEGER NOT NULL DEFAULT 0,
			content TEXT NOT NULL,
			run_id TEXT NOT NULL REFERENCES ingest_runs(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_source ON entries(source_dir)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_category ON entries(category)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_name ON entries(name)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from one ingest run.
type IngestSummary struct {
	RunID   string
	Files   int
	Entries int
}

// Ingest reads a components directory produced by a split run and replaces
// everything previously cataloged for that directory. Progress lines go
// to w.
func (s *Store) Ingest(ctx context.Context, componentsDir string, w io.Writer) (IngestSummary, error) {
	sourceDir, err := filepath.Abs(componentsDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("resolving %s: %w", componentsDir, err)
	}
	info, err := os.Stat(sourceDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading components directory: %w", err)
	}
	if !info.IsDir() {
		return IngestSummary{}, fmt.Errorf("%s is not a directory", componentsDir)
	}

	entries, files, err := collect(ctx, sourceDir, w)
	if err != nil {
		return IngestSummary{}, err
	}

	summary := IngestSummary{
		RunID:   uuid.NewString(),
		Files:   files,
		Entries: len(entries),
	}
	if err := s.replace(ctx, sourceDir, summary, entries); err != nil {
		return IngestSummary{}, err
	}

	fmt.Fprintf(w, "\ncataloged: %d entries from %d files (run %s)\n",
		summary.Entries, summary.Files, summary.RunID)
	return summary, nil
}

// collect reads every known output file under sourceDir. Missing
// directories and files are skipped.
func collect(ctx context.Context, sourceDir string, w io.Writer) ([]Entry, int, error) {
	var (
		entries []Entry
		files   int
	)

	for _, ed := range entityDirs {
		dirEntries, err := os.ReadDir(filepath.Join(sourceDir, ed.dir))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, 0, fmt.Errorf("reading %s: %w", ed.dir, err)
		}
		for _, de := range dirEntries {
			if de.IsDir() || !strings.HasSuffix(de.Name(), ".txt") {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
			rel := ed.dir + "/" + de.Name()
			data, err := os.ReadFile(filepath.Join(sourceDir, ed.dir, de.Name()))
			if err != nil {
				return nil, 0, fmt.Errorf("reading %s: %w", rel, err)
			}
			content := string(data)
			entries = append(entries, Entry{
				ID:        entryID(sourceDir, rel, 0),
				SourceDir: sourceDir,
				Category:  ed.category,
				Name:      headerName(content, strings.TrimSuffix(de.Name(), ".txt")),
				Path:      rel,
				Content:   content,
			})
			files++
			fmt.Fprintf(w, "indexed %s\n", rel)
		}
	}

	for _, af := range aggregateFiles {
		lines, err := readLines(filepath.Join(sourceDir, filepath.FromSlash(af.path)))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, 0, fmt.Errorf("reading %s: %w", af.path, err)
		}
		for i, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			entries = append(entries, Entry{
				ID:        entryID(sourceDir, af.path, i+1),
				SourceDir: sourceDir,
				Category:  af.category,
				Name:      declarationName(af.category, line),
				Path:      af.path,
				Line:      i + 1,
				Content:   line,
			})
		}
		files++
		fmt.Fprintf(w, "indexed %s (%d lines)\n", af.path, len(lines))
	}

	data, err := os.ReadFile(filepath.Join(sourceDir, globalsPath))
	switch {
	case err == nil:
		entries = append(entries, Entry{
			ID:        entryID(sourceDir, globalsPath, 0),
			SourceDir: sourceDir,
			Category:  CategoryGlobals,
			Name:      "globals",
			Path:      globalsPath,
			Content:   string(data),
		})
		files++
		fmt.Fprintf(w, "indexed %s\n", globalsPath)
	case !os.IsNotExist(err):
		return nil, 0, fmt.Errorf("reading %s: %w", globalsPath, err)
	}

	return entries, files, nil
}

func (s *Store) replace(ctx context.Context, sourceDir string, summary IngestSummary, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE source_dir = ?`, sourceDir); err != nil {
		return fmt.Errorf("deleting old entries: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ingest_runs (id, source_dir, ingested_at, entries) VALUES (?, ?, ?, ?)`,
		summary.RunID, sourceDir, s.now().UTC().Format(time.RFC3339Nano), len(entries),
	)
	if err != nil {
		return fmt.Errorf("recording ingest run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (id, source_dir, category, name, path, line, content, run_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx,
			e.ID, e.SourceDir, string(e.Category), e.Name, e.Path, e.Line, e.Content, summary.RunID,
		)
		if err != nil {
			return fmt.Errorf("inserting %s: %w", e.Path, err)
		}
	}

	return tx.Commit()
}

// entryID derives a name-based UUID so re-ingesting the same directory
// keeps IDs stable.
func entryID(sourceDir, path string, line int) string {
	key := fmt.Sprintf("%s\x00%s\x00%d", sourceDir, path, line)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// headerName returns the second token of the first line ("object foo-bar"
// gives "foo-bar"), or fallback when the header has no name.
func headerName(content, fallback string) string {
	first, _, _ := strings.Cut(content, "\n")
	fields := strings.Fields(first)
	if len(fields) < 2 {
		return fallback
	}
	return fields[1]
}

// declarationName returns the operand of an aggregate line: the quoted
// value for links, includes and versions, the macro name for defines.
func declarationName(category types.Category, line string) string {
	_, rest, ok := strings.Cut(strings.TrimSpace(line), " ")
	if !ok {
		return ""
	}
	if category == types.CategoryDefine {
		name, _, _ := strings.Cut(rest, " ")
		return name
	}
	return strings.Trim(rest, `'"`)
}

// readLines returns the lines of path without terminators. Lines have no
// length limit; aggregate files can carry arbitrarily long declarations.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines, nil
}
