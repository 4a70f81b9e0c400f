package gomafia

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/mafia-stats/gomafia-sync/internal/config"
	apperrors "github.com/mafia-stats/gomafia-sync/internal/errors"
	"github.com/mafia-stats/gomafia-sync/internal/models"
)

// Fetcher is the scraping capability consumed by the import phases and
// the verification service. Listing methods return the page's candidates
// and the listing's total page count; profile methods re-fetch a single
// record by its external ID.
type Fetcher interface {
	FetchClubsPage(ctx context.Context, page int) ([]*models.ClubCandidate, int, error)
	FetchPlayersPage(ctx context.Context, page int) ([]*models.PlayerCandidate, int, error)
	FetchTournamentsPage(ctx context.Context, page int) ([]*models.TournamentCandidate, int, error)
	FetchGamesPage(ctx context.Context, page int) ([]*models.GameCandidate, int, error)
	FetchJudgesPage(ctx context.Context, page int) ([]*models.JudgeCandidate, int, error)

	FetchClub(ctx context.Context, gomafiaID string) (*models.ClubCandidate, error)
	FetchPlayer(ctx context.Context, gomafiaID string) (*models.PlayerCandidate, error)
	FetchTournament(ctx context.Context, gomafiaID string) (*models.TournamentCandidate, error)
}

// Client scrapes gomafia.pro over plain HTTP
type Client struct {
	client   *http.Client
	baseURL  string
	logger   *logrus.Logger
	retry    config.RetryConfig
	pageSize int
}

// ClientOption allows configuring the gomafia client
type ClientOption func(*Client)

// WithRetryConfig overrides the backoff policy for transient failures
func WithRetryConfig(retry config.RetryConfig) ClientOption {
	return func(c *Client) {
		c.retry = retry
	}
}

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.client = httpClient
	}
}

// WithPageSize sets how many records each listing page requests
func WithPageSize(size int) ClientOption {
	return func(c *Client) {
		c.pageSize = size
	}
}

// NewClient creates a new gomafia client
func NewClient(cfg *config.GomafiaConfig, logger *logrus.Logger, opts ...ClientOption) *Client {
	client := &Client{
		client:   &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:  cfg.BaseURL,
		logger:   logger,
		retry:    cfg.Retry,
		pageSize: 50,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// fetchDocument performs a GET with bounded exponential backoff and
// parses the response body into a goquery document. Network errors,
// 5xx responses and 429 are retried; everything else fails immediately.
func (c *Client) fetchDocument(ctx context.Context, path string, query url.Values) (*goquery.Document, error) {
	pageURL := c.baseURL + path
	if len(query) > 0 {
		pageURL += "?" + query.Encode()
	}

	var lastErr error
	backoff := c.retry.InitialBackoff

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			// Jittered exponential backoff between attempts.
			delay := backoff + time.Duration(rand.Int63n(int64(backoff)/2+1))
			c.logger.WithFields(logrus.Fields{
				"url":     pageURL,
				"attempt": attempt + 1,
				"delay":   delay,
			}).Warn("Retrying gomafia request")

			select {
			case <-ctx.Done():
				return nil, apperrors.NewTransportError("request cancelled while backing off", ctx.Err())
			case <-time.After(delay):
			}
			backoff = time.Duration(math.Min(
				float64(backoff)*c.retry.RetryMultiplier,
				float64(c.retry.MaxBackoff),
			))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			doc, err := goquery.NewDocumentFromReader(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, NewParseError(path, "failed to read document", err)
			}
			return doc, nil
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("page not found: %s", pageURL), &HTTPError{StatusCode: resp.StatusCode, URL: pageURL})
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = &HTTPError{StatusCode: resp.StatusCode, URL: pageURL}
			continue
		default:
			resp.Body.Close()
			return nil, apperrors.NewTransportError(fmt.Sprintf("unexpected status fetching %s", pageURL), &HTTPError{StatusCode: resp.StatusCode, URL: pageURL})
		}
	}

	return nil, apperrors.NewTransportError(
		fmt.Sprintf("max retries exceeded fetching %s", pageURL), lastErr)
}

func (c *Client) pageQuery(page int) url.Values {
	return url.Values{
		"page":     []string{strconv.Itoa(page)},
		"per_page": []string{strconv.Itoa(c.pageSize)},
	}
}

// FetchClubsPage fetches one page of the club listing
func (c *Client) FetchClubsPage(ctx context.Context, page int) ([]*models.ClubCandidate, int, error) {
	doc, err := c.fetchDocument(ctx, "/club", c.pageQuery(page))
	if err != nil {
		return nil, 0, err
	}
	return ParseClubsPage(doc)
}

// FetchPlayersPage fetches one page of the player rating
func (c *Client) FetchPlayersPage(ctx context.Context, page int) ([]*models.PlayerCandidate, int, error) {
	doc, err := c.fetchDocument(ctx, "/rating", c.pageQuery(page))
	if err != nil {
		return nil, 0, err
	}
	return ParsePlayersPage(doc)
}

// FetchTournamentsPage fetches one page of the tournament listing
func (c *Client) FetchTournamentsPage(ctx context.Context, page int) ([]*models.TournamentCandidate, int, error) {
	doc, err := c.fetchDocument(ctx, "/tournament", c.pageQuery(page))
	if err != nil {
		return nil, 0, err
	}
	return ParseTournamentsPage(doc)
}

// FetchGamesPage fetches one page of the games listing
func (c *Client) FetchGamesPage(ctx context.Context, page int) ([]*models.GameCandidate, int, error) {
	doc, err := c.fetchDocument(ctx, "/games", c.pageQuery(page))
	if err != nil {
		return nil, 0, err
	}
	return ParseGamesPage(doc)
}

// FetchJudgesPage fetches one page of the judge listing
func (c *Client) FetchJudgesPage(ctx context.Context, page int) ([]*models.JudgeCandidate, int, error) {
	doc, err := c.fetchDocument(ctx, "/judges", c.pageQuery(page))
	if err != nil {
		return nil, 0, err
	}
	return ParseJudgesPage(doc)
}

// FetchClub re-fetches a single club profile
func (c *Client) FetchClub(ctx context.Context, gomafiaID string) (*models.ClubCandidate, error) {
	doc, err := c.fetchDocument(ctx, "/club/"+url.PathEscape(gomafiaID), nil)
	if err != nil {
		return nil, err
	}
	return ParseClubProfile(doc)
}

// FetchPlayer re-fetches a single player profile
func (c *Client) FetchPlayer(ctx context.Context, gomafiaID string) (*models.PlayerCandidate, error) {
	doc, err := c.fetchDocument(ctx, "/stats/"+url.PathEscape(gomafiaID), nil)
	if err != nil {
		return nil, err
	}
	return ParsePlayerProfile(doc)
}

// FetchTournament re-fetches a single tournament profile
func (c *Client) FetchTournament(ctx context.Context, gomafiaID string) (*models.TournamentCandidate, error) {
	doc, err := c.fetchDocument(ctx, "/tournament/"+url.PathEscape(gomafiaID), nil)
	if err != nil {
		return nil, err
	}
	return ParseTournamentProfile(doc)
}
