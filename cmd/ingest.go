package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/config"
	"curator/internal/fetch"
	"curator/internal/logger"
	"curator/internal/store"
)

// NewIngestCmd creates the ingest command for adding a single article
func NewIngestCmd() *cobra.Command {
	var (
		profile string
		noFetch bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <url>",
		Short: "Fetch a URL and store it as an article",
		Long: `Fetch the given URL, extract its title and text content and store it
as an article. A URL that is already stored is reported as a duplicate and
left untouched.

Examples:
  curator ingest https://example.com/some-story
  curator ingest --profile tech https://example.com/go-release
  curator ingest --no-fetch https://example.com/paywalled`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args[0], profile, noFetch)
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "feed profile to assign (default: \"default\")")
	cmd.Flags().BoolVar(&noFetch, "no-fetch", false, "store the URL without fetching title and content")

	return cmd
}

func runIngest(cmd *cobra.Command, url, profile string, noFetch bool) error {
	log := logger.Get()
	ctx := cmd.Context()

	if err := fetch.ValidateURL(url); err != nil {
		return err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.NewStore(cfg.Database.Directory)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	var title, content string
	if !noFetch {
		result, err := fetch.NewFetcher().Fetch(ctx, url)
		if err != nil {
			return fmt.Errorf("failed to fetch article: %w", err)
		}
		title = result.Title
		content = result.Content
		log.Info("Fetched article", "url", url, "title", title, "fetch_id", result.FetchID)
	}

	id, created, err := st.AddArticle(ctx, url, title, content, profile)
	if err != nil {
		return fmt.Errorf("failed to store article: %w", err)
	}
	if !created {
		cmd.Printf("Article already exists: %s\n", url)
		return nil
	}

	cmd.Printf("Stored article %d: %s\n", id, url)
	return nil
}
