package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/mlovric/postdigest.api/models"
)

// pageSize is the fixed number of recent posts requested per account.
const pageSize = 30

// UpstreamError is returned when the feed API responds with a non-success
// status. It carries the upstream status so handlers can pass it through.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	return fmt.Sprintf("feed api returned status %d: %s", e.StatusCode, body)
}

type FeedClient struct {
	logger      *slog.Logger
	httpClient  *http.Client
	baseURL     string
	bearerToken string
}

func NewFeedClient(logger *slog.Logger, httpClient *http.Client, baseURL, bearerToken string) *FeedClient {
	return &FeedClient{
		logger:      logger,
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		bearerToken: bearerToken,
	}
}

// RecentPosts fetches the most recent posts for one account, with author
// expansion. There is no retry; callers decide how to degrade.
func (c *FeedClient) RecentPosts(ctx context.Context, accountID string) (models.Timeline, error) {
	reqURL := fmt.Sprintf(
		"%s/2/users/%s/tweets?max_results=%d&tweet.fields=created_at,author_id&expansions=author_id&user.fields=name,username",
		c.baseURL, url.PathEscape(accountID), pageSize,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return models.Timeline{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Timeline{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return models.Timeline{}, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var wire models.FeedTimeline
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return models.Timeline{}, fmt.Errorf("decode feed response: %w", err)
	}

	timeline := models.Timeline{
		Posts:   make([]models.Post, 0, len(wire.Data)),
		Authors: make(map[string]models.Author, len(wire.Includes.Users)),
	}
	for _, post := range wire.Data {
		timeline.Posts = append(timeline.Posts, models.Post{
			ID:        post.ID,
			Text:      post.Text,
			AuthorID:  post.AuthorID,
			CreatedAt: post.CreatedAt,
		})
	}
	for _, author := range wire.Includes.Users {
		timeline.Authors[author.ID] = models.Author{
			ID:       author.ID,
			Name:     author.Name,
			Username: author.Username,
		}
	}

	c.logger.Debug("fetched account timeline", "account_id", accountID, "posts", len(timeline.Posts))

	return timeline, nil
}
