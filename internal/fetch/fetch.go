// Package fetch retrieves remote pages and extracts the title and text
// content handed to the repository during ingestion. URL syntax validation
// lives here, not in the store.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"curator/internal/core"
)

const defaultTimeout = 30 * time.Second

// Result holds the extracted fields of one fetched page.
type Result struct {
	FetchID     string    `json:"fetch_id"`     // Unique id for this fetch event
	URL         string    `json:"url"`          // The URL that was fetched
	Title       string    `json:"title"`        // Extracted page title
	Content     string    `json:"content"`      // Extracted text content
	RetrievedAt time.Time `json:"retrieved_at"` // Timestamp of the fetch
}

// Fetcher retrieves article pages over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher with a sensible request timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// ValidateURL checks that a caller-supplied URL is non-empty, parseable and
// uses an http(s) scheme. Returns core.ErrEmptyURL for the empty case so
// callers can distinguish "missing" from "malformed".
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return core.ErrEmptyURL
	}
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid url %q: scheme must be http or https", raw)
	}
	return nil
}

// Fetch retrieves the page at the given URL and extracts its title and text.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (Result, error) {
	if err := ValidateURL(pageURL); err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build request for %s: %w", pageURL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("failed to fetch %s: status code %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	return Result{
		FetchID:     uuid.NewString(),
		URL:         pageURL,
		Title:       extractTitle(doc),
		Content:     extractContent(doc),
		RetrievedAt: time.Now().UTC(),
	}, nil
}

// extractTitle prefers the og:title meta tag over the document title.
func extractTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if title := strings.TrimSpace(og); title != "" {
			return title
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// extractContent joins the paragraph text of the page body.
func extractContent(doc *goquery.Document) string {
	var paragraphs []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n\n")
}
