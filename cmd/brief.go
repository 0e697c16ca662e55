package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/config"
	"curator/internal/core"
	"curator/internal/llm"
	"curator/internal/logger"
	"curator/internal/query"
	"curator/internal/store"
)

// NewBriefCmd creates the brief command for generating a brief from the
// stored articles of one feed profile.
func NewBriefCmd() *cobra.Command {
	var (
		profile string
		model   string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "brief",
		Short: "Generate and store a brief for a feed profile",
		Long: `Generate a markdown brief from the most recent articles of a feed
profile using the configured Gemini model, and store it with the
contributing article ids.

Requires GEMINI_API_KEY (or gemini.api_key in the config file).

Examples:
  curator brief --profile tech
  curator brief --profile brasil --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrief(cmd, profile, model, limit)
		},
	}

	cmd.Flags().StringVar(&profile, "profile", core.DefaultFeedProfile, "feed profile to brief")
	cmd.Flags().StringVar(&model, "model", "", "Gemini model (default from config)")
	cmd.Flags().IntVar(&limit, "limit", 25, "maximum number of articles to include")

	return cmd
}

func runBrief(cmd *cobra.Command, profile, model string, limit int) error {
	log := logger.Get()
	ctx := cmd.Context()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.NewStore(cfg.Database.Directory)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	engine := query.New(st, limit)
	page, err := engine.FilterArticles(ctx, query.Filter{FeedProfile: profile})
	if err != nil {
		return fmt.Errorf("failed to load articles: %w", err)
	}
	if len(page.Articles) == 0 {
		return fmt.Errorf("no articles found for profile %q", profile)
	}

	client, err := llm.NewClient(model)
	if err != nil {
		return err
	}

	log.Info("Generating brief", "profile", profile, "articles", len(page.Articles))
	markdown, err := client.GenerateBrief(ctx, profile, page.Articles)
	if err != nil {
		return err
	}

	ids := make([]int64, len(page.Articles))
	for i, a := range page.Articles {
		ids[i] = a.ID
	}

	briefID, err := st.SaveBrief(ctx, markdown, ids, profile)
	if err != nil {
		return fmt.Errorf("failed to save brief: %w", err)
	}

	cmd.Printf("Stored brief %d for profile %q (%d articles)\n", briefID, profile, len(ids))
	return nil
}
