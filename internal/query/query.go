// Package query builds filtered, paginated views over stored articles.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"curator/internal/core"
	"curator/internal/store"
)

// DefaultPerPage is the page size used when none is configured.
const DefaultPerPage = 20

// Filter describes an article listing request. All fields are optional and
// combine by logical AND; the zero Filter returns every article in the same
// order as the repository's full listing.
type Filter struct {
	Search      string     // Case-insensitive substring match against title or content
	FeedProfile string     // Exact feed-profile match
	StartDate   *time.Time // Inclusive lower bound on created_at
	EndDate     *time.Time // Inclusive upper bound on created_at
	Page        int        // 1-based page number; values below 1 are clamped to 1
}

// Page is one page of filtered articles plus the metadata a caller needs to
// render pagination controls.
type Page struct {
	Articles  []core.Article `json:"articles"`
	Total     int            `json:"total"`
	PageNum   int            `json:"page"`
	PageCount int            `json:"page_count"`
	PerPage   int            `json:"per_page"`
}

// Engine runs filtered article queries over the repository's database handle.
type Engine struct {
	db      *sql.DB
	perPage int
}

// New creates a query engine over the given store. perPage values below 1
// fall back to DefaultPerPage.
func New(st *store.Store, perPage int) *Engine {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return &Engine{db: st.DB(), perPage: perPage}
}

// FilterArticles returns the requested page of articles matching the filter,
// ordered by id ascending. A page past the end of the result set returns an
// empty page with the totals still populated.
func (e *Engine) FilterArticles(ctx context.Context, f Filter) (*Page, error) {
	conds := f.conditions()

	countQuery := sq.Select("COUNT(*)").From("articles")
	for _, cond := range conds {
		countQuery = countQuery.Where(cond)
	}
	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err := e.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}

	pageNum := f.Page
	if pageNum < 1 {
		pageNum = 1
	}
	pageCount := (total + e.perPage - 1) / e.perPage
	offset := (pageNum - 1) * e.perPage

	listQuery := sq.Select("id", "url", "title", "content", "feed_profile", "created_at").
		From("articles").
		OrderBy("id ASC").
		Limit(uint64(e.perPage)).
		Offset(uint64(offset))
	for _, cond := range conds {
		listQuery = listQuery.Where(cond)
	}
	listSQL, listArgs, err := listQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := e.db.QueryContext(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	articles := []core.Article{}
	for rows.Next() {
		var a core.Article
		if err := rows.Scan(&a.ID, &a.URL, &a.Title, &a.Content, &a.FeedProfile, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}

	return &Page{
		Articles:  articles,
		Total:     total,
		PageNum:   pageNum,
		PageCount: pageCount,
		PerPage:   e.perPage,
	}, nil
}

func (f Filter) conditions() []sq.Sqlizer {
	var conds []sq.Sqlizer

	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		conds = append(conds, sq.Or{
			sq.Like{"LOWER(title)": pattern},
			sq.Like{"LOWER(content)": pattern},
		})
	}
	if f.FeedProfile != "" {
		conds = append(conds, sq.Eq{"feed_profile": f.FeedProfile})
	}
	if f.StartDate != nil {
		conds = append(conds, sq.GtOrEq{"created_at": f.StartDate.UTC()})
	}
	if f.EndDate != nil {
		conds = append(conds, sq.LtOrEq{"created_at": f.EndDate.UTC()})
	}

	return conds
}
