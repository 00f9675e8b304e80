package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// DefaultSearchLimit caps SearchTopics when the caller passes limit <= 0.
const DefaultSearchLimit = 10

// SearchHit is one ranked full-text match.
type SearchHit struct {
	Domain  string  `json:"domain"`
	Topic   string  `json:"topic"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// SearchTopics ranks a project's topics against query using an FTS5
// index built in memory from the files on disk. The index lives only for
// the duration of the call. A missing project yields no hits.
func (s *Store) SearchTopics(ctx context.Context, project, query string, limit int) ([]SearchHit, error) {
	if err := validName(project); err != nil {
		return nil, err
	}
	ftsQuery := sanitizeFTS(query)
	if ftsQuery == "" {
		return nil, &Error{Kind: ErrEmptyQuery, Project: project}
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	structure, err := s.ListProjectStructure(project)
	if err != nil {
		return nil, err
	}
	if structure == nil {
		return []SearchHit{}, nil
	}

	db, err := openDB("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("knowledge: open index: %w", err)
	}
	defer db.Close()
	// Each connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `
		CREATE VIRTUAL TABLE topics USING fts5(
			domain UNINDEXED,
			topic,
			content,
			tokenize = 'porter unicode61'
		)`); err != nil {
		return nil, fmt.Errorf("knowledge: create index: %w", err)
	}
	if err := s.indexProject(ctx, db, structure); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT domain, topic, snippet(topics, 2, '**', '**', '...', 16), bm25(topics)
		FROM topics
		WHERE topics MATCH ?
		ORDER BY bm25(topics)
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("knowledge: search: %w", err)
	}
	defer rows.Close()

	hits := []SearchHit{}
	for rows.Next() {
		var h SearchHit
		var rank float64
		if err := rows.Scan(&h.Domain, &h.Topic, &h.Snippet, &rank); err != nil {
			return nil, fmt.Errorf("knowledge: scan hit: %w", err)
		}
		// bm25 is lower-is-better; flip it so callers see higher-is-better.
		h.Score = -rank
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (s *Store) indexProject(ctx context.Context, db *sql.DB, structure *ProjectStructure) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("knowledge: begin index: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO topics (domain, topic, content) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("knowledge: prepare index: %w", err)
	}
	defer stmt.Close()

	for _, d := range structure.Domains {
		topics, err := s.ReadDomain(structure.Project, d.Name)
		if err != nil {
			return err
		}
		for _, t := range topics {
			if _, err := stmt.ExecContext(ctx, t.Domain, t.Name, t.Content); err != nil {
				return fmt.Errorf("knowledge: index %s/%s: %w", t.Domain, t.Name, err)
			}
		}
	}
	return tx.Commit()
}

// sanitizeFTS quotes each word so FTS5 syntax in user input is treated
// literally, and ORs the words so partial matches still rank.
func sanitizeFTS(query string) string {
	words := strings.Fields(query)
	terms := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ReplaceAll(w, `"`, "")
		if w == "" {
			continue
		}
		terms = append(terms, `"`+w+`"`)
	}
	return strings.Join(terms, " OR ")
}
