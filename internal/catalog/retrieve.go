// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/spl-splitter/pkg/types"
)

// ErrNotFound is returned by Show for an unknown entry ID.
var ErrNotFound = errors.New("entry not found")

// QueryOptions holds parameters for catalog queries.
type QueryOptions struct {
	// Query is a case-sensitive substring matched against entry content.
	Query string

	// Category filters by category.
	Category types.Category

	// Name filters by exact entity name.
	Name string

	// SourceDir filters by components directory.
	SourceDir string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Category == "" && q.Name == "" && q.SourceDir == ""
}

// Retrieve returns entries matching opts, ordered by components directory,
// path, and line.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT id, source_dir, category, name, path, line, content
		FROM entries
		WHERE 1=1`)

	if opts.Query != "" {
		qb.WriteString(` AND instr(content, ?) > 0`)
		args = append(args, opts.Query)
	}
	if opts.Category != "" {
		qb.WriteString(` AND category = ?`)
		args = append(args, string(opts.Category))
	}
	if opts.Name != "" {
		qb.WriteString(` AND name = ?`)
		args = append(args, opts.Name)
	}
	if opts.SourceDir != "" {
		dir, err := filepath.Abs(opts.SourceDir)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", opts.SourceDir, err)
		}
		qb.WriteString(` AND source_dir = ?`)
		args = append(args, dir)
	}

	qb.WriteString(` ORDER BY source_dir, path, line LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var results []Entry
	for rows.Next() {
		var (
			e        Entry
			category string
		)
		if err := rows.Scan(&e.ID, &e.SourceDir, &category, &e.Name, &e.Path, &e.Line, &e.Content); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.Category = types.Category(category)
		results = append(results, e)
	}

	return results, rows.Err()
}

// Show returns one entry by ID.
func (s *Store) Show(ctx context.Context, id string) (Entry, error) {
	var (
		e        Entry
		category string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source_dir, category, name, path, line, content FROM entries WHERE id = ?`, id,
	).Scan(&e.ID, &e.SourceDir, &category, &e.Name, &e.Path, &e.Line, &e.Content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Entry{}, fmt.Errorf("looking up entry: %w", err)
	}
	e.Category = types.Category(category)
	return e, nil
}

// Runs returns the number of ingest runs recorded for a components directory.
func (s *Store) Runs(ctx context.Context, componentsDir string) (int, error) {
	dir, err := filepath.Abs(componentsDir)
	if err != nil {
		return 0, fmt.Errorf("resolving %s: %w", componentsDir, err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM ingest_runs WHERE source_dir = ?`, dir,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting ingest runs: %w", err)
	}
	return n, nil
}
