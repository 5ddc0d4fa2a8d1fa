// Package reddit surfaces Mumbai traffic chatter from Reddit's public
// JSON API and classifies each post with a keyword sentiment
// heuristic. It is a discussion summary, not a live traffic feed.
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Default endpoints and request identity.
const (
	DefaultSearchURL   = "https://www.reddit.com/r/Mumbai/search.json"
	DefaultCommentsURL = "https://www.reddit.com/comments"
	DefaultQuery       = "subreddit:Mumbai selftext:Traffic"
	userAgent          = "MumbaiTravelAssistant/1.0 (by u/mumbai-travel-assistant)"
)

// MaxPosts caps how many posts a single search may return.
const MaxPosts = 25

// maxAge drops posts older than a day, stale chatter is worse than no
// chatter for traffic questions.
const maxAge = 24 * time.Hour

const commentsPerPost = 10

// ErrUpstream wraps failures talking to Reddit.
var ErrUpstream = errors.New("reddit request failed")

// Sort strategies Reddit accepts.
var sortStrategies = map[string]struct{}{"new": {}, "relevance": {}, "top": {}}

// Comment is one top-level reply on a post.
type Comment struct {
	ID        string     `json:"id,omitempty"`
	Author    string     `json:"author,omitempty"`
	Body      string     `json:"body"`
	Score     int        `json:"score"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Post is one classified search result.
type Post struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Permalink   string    `json:"permalink,omitempty"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	AgeHours    float64   `json:"age_hours"`
	Score       int       `json:"score"`
	NumComments int       `json:"num_comments"`
	Author      string    `json:"author,omitempty"`
	Sentiment   Sentiment `json:"sentiment"`
	Over18      bool      `json:"over_18"`
	Comments    []Comment `json:"comments"`
}

// Summary aggregates the sentiment across the returned posts.
type Summary struct {
	AverageSentimentScore float64 `json:"average_sentiment_score"`
	SentimentBias         string  `json:"sentiment_bias"`
	NoRecentPosts         bool    `json:"no_recent_posts"`
}

// SearchResult is the classified snapshot of recent traffic chatter.
type SearchResult struct {
	Source        string    `json:"source"`
	RetrievedAt   time.Time `json:"retrieved_at"`
	Query         string    `json:"query"`
	Sort          string    `json:"sort"`
	TotalReturned int       `json:"total_returned"`
	Summary       Summary   `json:"summary"`
	Posts         []Post    `json:"posts"`
}

// SearchOptions tunes a traffic chatter search. The zero value means
// the default query, newest first, five posts with comments.
type SearchOptions struct {
	Query           string
	Limit           int
	Sort            string
	IncludeComments bool
}

// Client talks to Reddit's public JSON endpoints.
type Client struct {
	httpClient  *http.Client
	searchURL   string
	commentsURL string
	now         func() time.Time
}

// NewClient wraps httpClient for Reddit lookups. A nil httpClient gets
// a dedicated client with a 30 second timeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient:  httpClient,
		searchURL:   DefaultSearchURL,
		commentsURL: DefaultCommentsURL,
		now:         time.Now,
	}
}

// WithSearchURL overrides the search endpoint.
func (c *Client) WithSearchURL(url string) *Client {
	c.searchURL = url
	return c
}

// WithCommentsURL overrides the comments endpoint prefix.
func (c *Client) WithCommentsURL(url string) *Client {
	c.commentsURL = url
	return c
}

// WithClock overrides the time source for age filtering.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

type listingPayload struct {
	Data struct {
		Children []struct {
			Data postData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type postData struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Selftext    string   `json:"selftext"`
	Permalink   string   `json:"permalink"`
	URL         string   `json:"url"`
	CreatedUTC  *float64 `json:"created_utc"`
	Score       int      `json:"score"`
	NumComments int      `json:"num_comments"`
	Author      string   `json:"author"`
	Over18      bool     `json:"over_18"`
}

type commentData struct {
	ID         string   `json:"id"`
	Author     string   `json:"author"`
	Body       string   `json:"body"`
	Score      int      `json:"score"`
	CreatedUTC *float64 `json:"created_utc"`
}

// TrafficSearch fetches recent traffic posts, drops anything older
// than a day and classifies the remainder.
func (c *Client) TrafficSearch(ctx context.Context, opts SearchOptions) (*SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		return nil, errors.New("limit must be greater than zero")
	}
	if limit > MaxPosts {
		limit = MaxPosts
	}
	sortBy := opts.Sort
	if sortBy == "" {
		sortBy = "new"
	}
	if _, ok := sortStrategies[sortBy]; !ok {
		return nil, fmt.Errorf("sort must be one of: new, relevance, top")
	}
	query := opts.Query
	if query == "" {
		query = DefaultQuery
	}

	// Over-fetch so the age filter still leaves a full page.
	fetchLimit := limit * 4
	if fetchLimit < 25 {
		fetchLimit = 25
	}
	params := url.Values{
		"q":           {query},
		"restrict_sr": {"on"},
		"sort":        {sortBy},
		"t":           {"day"},
		"limit":       {strconv.Itoa(fetchLimit)},
	}

	var payload listingPayload
	if err := c.getJSON(ctx, c.searchURL+"?"+params.Encode(), &payload); err != nil {
		return nil, err
	}

	now := c.now().UTC()
	cutoff := now.Add(-maxAge)

	posts := make([]Post, 0, limit)
	for _, child := range payload.Data.Children {
		item := child.Data
		if item.CreatedUTC == nil {
			continue
		}
		createdAt := time.Unix(int64(*item.CreatedUTC), 0).UTC()
		if createdAt.Before(cutoff) {
			continue
		}
		posts = append(posts, Post{
			ID:          item.ID,
			Title:       item.Title,
			Body:        item.Selftext,
			Permalink:   item.Permalink,
			URL:         item.URL,
			CreatedAt:   createdAt,
			AgeHours:    math.Round(now.Sub(createdAt).Hours()*100) / 100,
			Score:       item.Score,
			NumComments: item.NumComments,
			Author:      item.Author,
			Sentiment:   ScoreSentiment(item.Title + "\n" + item.Selftext),
			Over18:      item.Over18,
			Comments:    []Comment{},
		})
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if len(posts) > limit {
		posts = posts[:limit]
	}

	if opts.IncludeComments {
		for i := range posts {
			posts[i].Comments = c.fetchComments(ctx, posts[i].ID)
		}
	}

	var total int
	for _, post := range posts {
		total += post.Sentiment.Score
	}
	average := 0.0
	if len(posts) > 0 {
		average = math.Round(float64(total)/float64(len(posts))*100) / 100
	}
	bias := "mixed"
	switch {
	case average > 1:
		bias = SentimentPositive
	case average < -1:
		bias = SentimentNegative
	}

	return &SearchResult{
		Source:        c.searchURL,
		RetrievedAt:   now,
		Query:         query,
		Sort:          sortBy,
		TotalReturned: len(posts),
		Summary: Summary{
			AverageSentimentScore: average,
			SentimentBias:         bias,
			NoRecentPosts:         len(posts) == 0,
		},
		Posts: posts,
	}, nil
}

// fetchComments loads the top comments of a post. Failures degrade to
// an empty list, a missing thread never fails the whole search.
func (c *Client) fetchComments(ctx context.Context, postID string) []Comment {
	if postID == "" {
		return []Comment{}
	}
	endpoint := fmt.Sprintf("%s/%s.json?limit=%d", strings.TrimSuffix(c.commentsURL, "/"), postID, commentsPerPost)

	var payload []struct {
		Data struct {
			Children []struct {
				Kind string      `json:"kind"`
				Data commentData `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return []Comment{}
	}
	if len(payload) < 2 {
		return []Comment{}
	}

	comments := make([]Comment, 0, commentsPerPost)
	for _, child := range payload[1].Data.Children {
		if child.Kind == "more" || child.Data.Body == "" {
			continue
		}
		comment := Comment{
			ID:     child.Data.ID,
			Author: child.Data.Author,
			Body:   child.Data.Body,
			Score:  child.Data.Score,
		}
		if child.Data.CreatedUTC != nil {
			t := time.Unix(int64(*child.Data.CreatedUTC), 0).UTC()
			comment.CreatedAt = &t
		}
		comments = append(comments, comment)
		if len(comments) == commentsPerPost {
			break
		}
	}
	return comments
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %s", ErrUpstream, endpoint, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}
	return nil
}
