package xtream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/mmcdole/reel/internal/domain"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRPS        = 5
	defaultExtension  = "mp4"
	userAgent         = "Reel/1.0"
	breakerName       = "xtream-api"
	breakerTrip       = 5
	breakerOpenPeriod = 30 * time.Second
)

// Config holds the connection settings for an Xtream Codes panel
type Config struct {
	URL               string
	Username          string
	Password          string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client implements domain.CatalogSource for Xtream Codes panels
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *slog.Logger
}

// NewClient creates a new Xtream API client
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}

	c := &Client{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     breakerOpenPeriod,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTrip
		},
		// Only an unreachable server counts against the breaker
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, domain.ErrServerOffline)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return c
}

// ListCategories returns all VOD categories
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	body, err := c.doRequest(ctx, url.Values{"action": {"get_vod_categories"}})
	if err != nil {
		return nil, err
	}

	var dtos []CategoryDTO
	if err := c.decodeList(body, &dtos); err != nil {
		return nil, err
	}
	return MapCategories(dtos), nil
}

// ListMovies returns the raw VOD streams of one category
func (c *Client) ListMovies(ctx context.Context, categoryID string) ([]domain.RemoteMovie, error) {
	body, err := c.doRequest(ctx, url.Values{
		"action":      {"get_vod_streams"},
		"category_id": {categoryID},
	})
	if err != nil {
		return nil, err
	}

	var dtos []StreamDTO
	if err := c.decodeList(body, &dtos); err != nil {
		return nil, err
	}
	return MapStreams(dtos), nil
}

// Account verifies the credentials and returns the account details
func (c *Client) Account(ctx context.Context) (*AccountResponse, error) {
	body, err := c.doRequest(ctx, nil)
	if err != nil {
		return nil, err
	}

	var resp AccountResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse account response: %w", err)
	}
	if resp.UserInfo == nil || resp.UserInfo.Auth == 0 {
		return nil, domain.ErrAuthFailed
	}
	return &resp, nil
}

// StreamURL returns the playable URL of a movie
func (c *Client) StreamURL(m domain.Movie) string {
	ext := strings.TrimPrefix(strings.TrimSpace(m.ContainerExtension), ".")
	if ext == "" {
		ext = defaultExtension
	}
	return fmt.Sprintf("%s/movie/%s/%s/%s.%s",
		c.baseURL,
		url.PathEscape(c.username),
		url.PathEscape(c.password),
		strconv.FormatInt(m.StreamID, 10),
		ext,
	)
}

// doRequest performs a rate-limited, breaker-guarded player_api call
func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	if c.baseURL == "" || c.username == "" || c.password == "" {
		return nil, domain.ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetch(ctx, params)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	return body, err
}

func (c *Client) fetch(ctx context.Context, params url.Values) ([]byte, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("username", c.username)
	query.Set("password", c.password)

	reqURL := c.baseURL + "/player_api.php?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("xtream request", "action", params.Get("action"), "category", params.Get("category_id"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// url.Error carries the query string, which holds the password
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		c.logger.Error("xtream request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrAuthFailed
	case resp.StatusCode >= http.StatusInternalServerError:
		c.logger.Error("xtream server error", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", domain.ErrServerOffline, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		c.logger.Error("xtream request error", "status", resp.StatusCode, "bodyLen", len(body))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}

// decodeList decodes a JSON array response into out.
// An object in place of the array is either an auth rejection or an empty result.
func (c *Client) decodeList(body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if trimmed[0] == '{' {
		var acct AccountResponse
		if err := json.Unmarshal(trimmed, &acct); err == nil && acct.UserInfo != nil && acct.UserInfo.Auth == 0 {
			return domain.ErrAuthFailed
		}
		c.logger.Debug("object in place of list, treating as empty", "bodyLen", len(trimmed))
		return nil
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(trimmed))
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
