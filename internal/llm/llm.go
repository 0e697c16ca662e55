// Package llm generates brief markdown from a set of articles using the
// Gemini API.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"google.golang.org/genai"

	"curator/internal/core"
)

const (
	// DefaultModel is the default Gemini model used for brief generation.
	DefaultModel = "gemini-2.5-flash"

	// briefPromptTemplate frames the articles handed to the model. The
	// first placeholder is the feed profile, the second the article block.
	briefPromptTemplate = `You are an editor producing a daily brief for the "%s" feed.
Summarize the following articles into a single markdown document with a
short headline section per article. Write only the brief, no meta-commentary.

Articles:
%s`
)

// Client wraps the Gemini SDK for brief generation.
type Client struct {
	modelName string
	gClient   *genai.Client
}

// NewClient creates an LLM client. The API key is read from the
// GEMINI_API_KEY environment variable, falling back to the gemini.api_key
// config entry; the model falls back to gemini.model, then DefaultModel.
func NewClient(modelName string) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = viper.GetString("gemini.api_key")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY or gemini.api_key in the config file")
	}

	if modelName == "" {
		modelName = viper.GetString("gemini.model")
		if modelName == "" {
			modelName = DefaultModel
		}
	}

	gClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		modelName: modelName,
		gClient:   gClient,
	}, nil
}

// GenerateBrief produces the brief markdown for the given articles.
func (c *Client) GenerateBrief(ctx context.Context, feedProfile string, articles []core.Article) (string, error) {
	if len(articles) == 0 {
		return "", fmt.Errorf("no articles to brief for profile %q", feedProfile)
	}

	prompt := fmt.Sprintf(briefPromptTemplate, feedProfile, formatArticles(articles))

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate brief: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("model returned an empty brief")
	}
	return text, nil
}

func formatArticles(articles []core.Article) string {
	var b strings.Builder
	for _, a := range articles {
		fmt.Fprintf(&b, "## %s\nURL: %s\n", a.Title, a.URL)
		content := a.Content
		if len(content) > 4000 {
			content = content[:4000]
		}
		if content != "" {
			b.WriteString(content)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
