package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/reddit"
)

// TrafficSentimentInput defines the input schema for traffic_sentiment_search
type TrafficSentimentInput struct {
	Query           string `json:"query,omitempty" jsonschema_description:"Custom Reddit search query (default: Mumbai traffic posts)"`
	Limit           int    `json:"limit,omitempty" jsonschema_description:"Maximum posts to return (default: 5, max: 25)"`
	Sort            string `json:"sort,omitempty" jsonschema_description:"Reddit sort strategy: new, relevance, or top (default: new)"`
	IncludeComments *bool  `json:"include_comments,omitempty" jsonschema_description:"Fetch top comments per post (default: true)"`
}

// TrafficSentimentOutput defines the output schema for traffic_sentiment_search
type TrafficSentimentOutput struct {
	Result *reddit.SearchResult `json:"result"`
}

func (h *Handler) TrafficSentiment(ctx context.Context, req *mcp.CallToolRequest, input TrafficSentimentInput) (*mcp.CallToolResult, TrafficSentimentOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 5
	}
	includeComments := true
	if input.IncludeComments != nil {
		includeComments = *input.IncludeComments
	}

	result, err := h.reddit.TrafficSearch(ctx, reddit.SearchOptions{
		Query:           input.Query,
		Limit:           limit,
		Sort:            input.Sort,
		IncludeComments: includeComments,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("traffic sentiment search failed: %v", err)), TrafficSentimentOutput{}, nil
	}

	text, ok := jsonResult(result)
	if !ok {
		return text, TrafficSentimentOutput{}, nil
	}
	return text, TrafficSentimentOutput{Result: result}, nil
}
