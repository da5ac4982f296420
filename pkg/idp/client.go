// Package idp talks to the third-party identity provider's REST API.
package idp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/damoang/angple-memo/internal/domain"
)

const (
	userPath   = "/auth/v1/user"
	healthPath = "/auth/v1/health"

	maxBodyBytes = 1 << 20
)

var (
	// ErrUnauthorized is returned when the provider rejects the token (4xx)
	ErrUnauthorized = errors.New("identity provider rejected token")
	// ErrUnavailable is returned when the provider cannot be reached or keeps failing
	ErrUnavailable = errors.New("identity provider unavailable")
	// ErrNoHost is returned by Discover when no candidate answers
	ErrNoHost = errors.New("no identity provider host reachable")
)

// Options configures a Client
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration // per attempt
	Retries int
	Backoff time.Duration // multiplied by the attempt number
}

// Client calls the provider's user endpoint
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	retries    int
	backoff    time.Duration
	httpClient *http.Client
}

// NewClient creates a Client for an already resolved base URL
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 200 * time.Millisecond
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		timeout:    opts.Timeout,
		retries:    opts.Retries,
		backoff:    opts.Backoff,
		httpClient: &http.Client{},
	}
}

// BaseURL returns the resolved provider URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchUser returns the authoritative user for accessToken. Network errors and
// 5xx responses are retried; 4xx responses are not.
func (c *Client) FetchUser(ctx context.Context, accessToken string) (*domain.ProviderUser, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}

		user, retry, err := c.fetchUserOnce(ctx, accessToken)
		if err == nil {
			return user, nil
		}
		lastErr = err
		if !retry {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func (c *Client) fetchUserOnce(ctx context.Context, accessToken string) (*domain.ProviderUser, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+userPath, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create user request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, true, fmt.Errorf("user endpoint returned %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	}

	var user domain.ProviderUser
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&user); err != nil {
		return nil, false, fmt.Errorf("decode user response failed: %w", err)
	}
	if user.ID == "" {
		return nil, false, fmt.Errorf("%w: empty user id", ErrUnauthorized)
	}
	return &user, false, nil
}

// Discover probes candidates in order and returns the first host whose health
// endpoint answers with a status below 500.
func Discover(ctx context.Context, candidates []string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	for _, host := range candidates {
		host = strings.TrimRight(strings.TrimSpace(host), "/")
		if host == "" {
			continue
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, host+healthPath, nil)
		if err != nil {
			continue
		}
		resp, err := client.Do(req)
		if err != nil {
			continue
		}
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()
		if resp.StatusCode < http.StatusInternalServerError {
			return host, nil
		}
	}
	return "", ErrNoHost
}
