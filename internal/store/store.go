// Package store implements the SQLite-backed repository for articles,
// briefs, collections and collection membership.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"curator/internal/core"

	"github.com/mattn/go-sqlite3"
)

// ProfileSource selects which table a distinct feed-profile scan runs over.
type ProfileSource int

const (
	// ProfileSourceArticles scans the articles table.
	ProfileSourceArticles ProfileSource = iota
	// ProfileSourceBriefs scans the briefs table.
	ProfileSourceBriefs
)

func (s ProfileSource) table() (string, error) {
	switch s {
	case ProfileSourceArticles:
		return "articles", nil
	case ProfileSourceBriefs:
		return "briefs", nil
	default:
		return "", fmt.Errorf("unknown profile source %d", int(s))
	}
}

// Store wraps the SQLite database holding all persisted state.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the SQLite database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "curator.db")
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_loc=UTC")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	articlesTable := `
	CREATE TABLE IF NOT EXISTS articles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		title TEXT,
		content TEXT,
		feed_profile TEXT NOT NULL DEFAULT 'default',
		created_at DATETIME NOT NULL
	);`

	briefsTable := `
	CREATE TABLE IF NOT EXISTS briefs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		brief_markdown TEXT,
		contributing_article_ids TEXT NOT NULL,
		feed_profile TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);`

	collectionsTable := `
	CREATE TABLE IF NOT EXISTS collections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);`

	membershipTable := `
	CREATE TABLE IF NOT EXISTS collection_articles (
		collection_id INTEGER NOT NULL REFERENCES collections (id),
		article_id INTEGER NOT NULL REFERENCES articles (id),
		PRIMARY KEY (collection_id, article_id)
	);`

	tables := []string{articlesTable, briefsTable, collectionsTable, membershipTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for read-only query composition
// (the query engine builds its own filtered SELECTs over it).
func (s *Store) DB() *sql.DB {
	return s.db
}

// AddArticle inserts a new article and returns its id. A duplicate URL is a
// rejected duplicate, not an error: the second return value is false and no
// row is written. An empty URL fails with core.ErrEmptyURL; the caller is
// expected to have validated URL syntax before calling.
func (s *Store) AddArticle(ctx context.Context, url, title, content, feedProfile string) (int64, bool, error) {
	if url == "" {
		return 0, false, core.ErrEmptyURL
	}
	if feedProfile == "" {
		feedProfile = core.DefaultFeedProfile
	}

	var existing int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM articles WHERE url = ?`, url).Scan(&existing)
	if err == nil {
		return 0, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("failed to check for existing article: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO articles (url, title, content, feed_profile, created_at) VALUES (?, ?, ?, ?, ?)`,
		url, title, content, feedProfile, time.Now().UTC(),
	)
	if err != nil {
		// A concurrent insert of the same URL loses to the unique
		// constraint; that is still the duplicate result, not a failure.
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to insert article: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read inserted article id: %w", err)
	}
	return id, true, nil
}

// GetArticleByID retrieves an article by id. A missing id returns nil, nil.
func (s *Store) GetArticleByID(ctx context.Context, id int64) (*core.Article, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, url, title, content, feed_profile, created_at FROM articles WHERE id = ?`, id)
	return scanArticleRow(row)
}

// GetAllArticles returns every article ordered by id ascending.
func (s *Store) GetAllArticles(ctx context.Context) ([]core.Article, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, title, content, feed_profile, created_at FROM articles ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// GetDistinctFeedProfiles returns the distinct feed-profile labels in the
// selected table, sorted ascending.
func (s *Store) GetDistinctFeedProfiles(ctx context.Context, source ProfileSource) ([]string, error) {
	table, err := source.table()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT DISTINCT feed_profile FROM %s ORDER BY feed_profile ASC`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to query feed profiles: %w", err)
	}
	defer rows.Close()

	var profiles []string
	for rows.Next() {
		var profile string
		if err := rows.Scan(&profile); err != nil {
			return nil, fmt.Errorf("failed to scan feed profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

// SaveBrief stores a generated brief and returns its id. Ids are strictly
// increasing across sequential calls. The contributing ids are stored as a
// JSON array and round-trip exactly, including the empty case.
func (s *Store) SaveBrief(ctx context.Context, markdown string, contributingIDs []int64, feedProfile string) (int64, error) {
	if feedProfile == "" {
		feedProfile = core.DefaultFeedProfile
	}
	if contributingIDs == nil {
		contributingIDs = []int64{}
	}

	idsJSON, err := json.Marshal(contributingIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal contributing article ids: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO briefs (brief_markdown, contributing_article_ids, feed_profile, created_at) VALUES (?, ?, ?, ?)`,
		markdown, string(idsJSON), feedProfile, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert brief: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted brief id: %w", err)
	}
	return id, nil
}

// GetBriefByID retrieves a brief by id. A missing id returns nil, nil.
func (s *Store) GetBriefByID(ctx context.Context, id int64) (*core.Brief, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, brief_markdown, contributing_article_ids, feed_profile, created_at FROM briefs WHERE id = ?`, id)

	var brief core.Brief
	var idsJSON string
	err := row.Scan(&brief.ID, &brief.BriefMarkdown, &idsJSON, &brief.FeedProfile, &brief.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan brief: %w", err)
	}

	if err := json.Unmarshal([]byte(idsJSON), &brief.ContributingArticleIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contributing article ids: %w", err)
	}
	return &brief, nil
}

// GetBriefs returns briefs newest first, optionally restricted to one feed
// profile. An empty profile returns every brief.
func (s *Store) GetBriefs(ctx context.Context, feedProfile string) ([]core.Brief, error) {
	query := `SELECT id, brief_markdown, contributing_article_ids, feed_profile, created_at FROM briefs`
	args := []any{}
	if feedProfile != "" {
		query += ` WHERE feed_profile = ?`
		args = append(args, feedProfile)
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query briefs: %w", err)
	}
	defer rows.Close()

	briefs := []core.Brief{}
	for rows.Next() {
		var brief core.Brief
		var idsJSON string
		if err := rows.Scan(&brief.ID, &brief.BriefMarkdown, &idsJSON, &brief.FeedProfile, &brief.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan brief: %w", err)
		}
		if err := json.Unmarshal([]byte(idsJSON), &brief.ContributingArticleIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contributing article ids: %w", err)
		}
		briefs = append(briefs, brief)
	}
	return briefs, rows.Err()
}

// CreateCollection inserts a new collection and returns its id. A name that
// is empty after trimming fails with core.ErrEmptyName. Names are not
// required to be unique.
func (s *Store) CreateCollection(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, core.ErrEmptyName
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (name, created_at) VALUES (?, ?)`,
		name, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert collection: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted collection id: %w", err)
	}
	return id, nil
}

// GetCollections returns every collection sorted by name ascending
// (case-sensitive lexical ordering).
func (s *Store) GetCollections(ctx context.Context) ([]core.Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM collections ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	collections := []core.Collection{}
	for rows.Next() {
		var c core.Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

// GetCollectionByID retrieves a collection by id. A missing id returns nil, nil.
func (s *Store) GetCollectionByID(ctx context.Context, id int64) (*core.Collection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM collections WHERE id = ?`, id)

	var c core.Collection
	err := row.Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan collection: %w", err)
	}
	return &c, nil
}

// AddArticleToCollection adds an article to a collection. Adding a pair that
// already exists is a no-op. Unknown collection or article ids are rejected
// by the foreign-key constraints and surface as a storage error.
func (s *Store) AddArticleToCollection(ctx context.Context, collectionID, articleID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO collection_articles (collection_id, article_id) VALUES (?, ?)`,
		collectionID, articleID,
	)
	if err != nil {
		return fmt.Errorf("failed to add article %d to collection %d: %w", articleID, collectionID, err)
	}
	return nil
}

// RemoveArticleFromCollection removes an article from a collection. Removing
// a pair that does not exist is a no-op.
func (s *Store) RemoveArticleFromCollection(ctx context.Context, collectionID, articleID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM collection_articles WHERE collection_id = ? AND article_id = ?`,
		collectionID, articleID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove article %d from collection %d: %w", articleID, collectionID, err)
	}
	return nil
}

// GetArticlesForCollection returns the full article rows belonging to a
// collection, ordered by article id ascending.
func (s *Store) GetArticlesForCollection(ctx context.Context, collectionID int64) ([]core.Article, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.url, a.title, a.content, a.feed_profile, a.created_at
		FROM articles a
		JOIN collection_articles ca ON ca.article_id = a.id
		WHERE ca.collection_id = ?
		ORDER BY a.id ASC`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// GetArticleCountForCollection counts the articles in a collection without
// materializing the rows.
func (s *Store) GetArticleCountForCollection(ctx context.Context, collectionID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM collection_articles WHERE collection_id = ?`, collectionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count collection articles: %w", err)
	}
	return count, nil
}

// GetCollectionStatusForArticle returns one entry per existing collection
// with a flag for whether it contains the given article, sorted by
// collection name ascending.
func (s *Store) GetCollectionStatusForArticle(ctx context.Context, articleID int64) ([]core.CollectionStatus, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name,
			EXISTS (
				SELECT 1 FROM collection_articles ca
				WHERE ca.collection_id = c.id AND ca.article_id = ?
			)
		FROM collections c
		ORDER BY c.name ASC`, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection status: %w", err)
	}
	defer rows.Close()

	statuses := []core.CollectionStatus{}
	for rows.Next() {
		var st core.CollectionStatus
		if err := rows.Scan(&st.ID, &st.Name, &st.Contains); err != nil {
			return nil, fmt.Errorf("failed to scan collection status: %w", err)
		}
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

func scanArticleRow(row *sql.Row) (*core.Article, error) {
	var a core.Article
	err := row.Scan(&a.ID, &a.URL, &a.Title, &a.Content, &a.FeedProfile, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan article: %w", err)
	}
	return &a, nil
}

func collectArticles(rows *sql.Rows) ([]core.Article, error) {
	articles := []core.Article{}
	for rows.Next() {
		var a core.Article
		if err := rows.Scan(&a.ID, &a.URL, &a.Title, &a.Content, &a.FeedProfile, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}
