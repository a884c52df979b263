package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/radiusdt/adbridge/internal/metrics"
	"go.uber.org/zap"
)

// Client is the typed surface of the remote advertising platform. Create
// calls return the external id assigned by the platform; list calls follow
// cursor pagination and return the next cursor, empty when exhausted.
type Client interface {
	CreateCampaign(ctx context.Context, creds Credentials, accountExternalID string, p CampaignPayload) (string, error)
	CreateAdSet(ctx context.Context, creds Credentials, accountExternalID string, p AdSetPayload) (string, error)
	CreateCreative(ctx context.Context, creds Credentials, accountExternalID string, p CreativePayload) (string, error)
	CreateAd(ctx context.Context, creds Credentials, accountExternalID string, p AdPayload) (string, error)

	UpdateEntity(ctx context.Context, creds Credentials, externalID string, fields map[string]any) error
	DeleteEntity(ctx context.Context, creds Credentials, externalID string) (bool, error)

	ListCampaigns(ctx context.Context, creds Credentials, accountExternalID, cursor string) ([]RemoteCampaign, string, error)
	ListAdSets(ctx context.Context, creds Credentials, accountExternalID, cursor string) ([]RemoteAdSet, string, error)
	ListAds(ctx context.Context, creds Credentials, accountExternalID, cursor string) ([]RemoteAd, string, error)
}

// HTTPClient implements Client over the platform's JSON HTTP API.
type HTTPClient struct {
	baseURL  string
	pageSize int
	httpc    *http.Client
	throttle Throttle
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// HTTPClientConfig holds construction options for HTTPClient.
type HTTPClientConfig struct {
	BaseURL  string
	Timeout  time.Duration
	PageSize int
	Throttle Throttle
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

// NewHTTPClient constructs an HTTPClient. Timeout should be generous;
// multi-entity publishes ride on these calls under slow network conditions.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL:  cfg.BaseURL,
		pageSize: pageSize,
		httpc:    &http.Client{Timeout: timeout},
		throttle: cfg.Throttle,
		logger:   logger,
		metrics:  cfg.Metrics,
	}
}

type createResponse struct {
	ID string `json:"id"`
}

type deleteResponse struct {
	Success bool `json:"success"`
}

type errorEnvelope struct {
	Error *Error `json:"error"`
}

type paging struct {
	Cursors struct {
		After string `json:"after"`
	} `json:"cursors"`
	Next string `json:"next,omitempty"`
}

// CreateCampaign creates a remote campaign under the given account.
func (c *HTTPClient) CreateCampaign(ctx context.Context, creds Credentials, accountExternalID string, p CampaignPayload) (string, error) {
	var resp createResponse
	path := fmt.Sprintf("/accounts/%s/campaigns", url.PathEscape(accountExternalID))
	if err := c.do(ctx, creds, http.MethodPost, path, nil, p, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// CreateAdSet creates a remote ad set under the given account.
func (c *HTTPClient) CreateAdSet(ctx context.Context, creds Credentials, accountExternalID string, p AdSetPayload) (string, error) {
	var resp createResponse
	path := fmt.Sprintf("/accounts/%s/adsets", url.PathEscape(accountExternalID))
	if err := c.do(ctx, creds, http.MethodPost, path, nil, p, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// CreateCreative creates a remote creative under the given account.
func (c *HTTPClient) CreateCreative(ctx context.Context, creds Credentials, accountExternalID string, p CreativePayload) (string, error) {
	var resp createResponse
	path := fmt.Sprintf("/accounts/%s/creatives", url.PathEscape(accountExternalID))
	if err := c.do(ctx, creds, http.MethodPost, path, nil, p, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// CreateAd creates a remote ad under the given account.
func (c *HTTPClient) CreateAd(ctx context.Context, creds Credentials, accountExternalID string, p AdPayload) (string, error) {
	var resp createResponse
	path := fmt.Sprintf("/accounts/%s/ads", url.PathEscape(accountExternalID))
	if err := c.do(ctx, creds, http.MethodPost, path, nil, p, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// UpdateEntity applies a partial update to any remote entity by external id.
func (c *HTTPClient) UpdateEntity(ctx context.Context, creds Credentials, externalID string, fields map[string]any) error {
	path := "/" + url.PathEscape(externalID)
	return c.do(ctx, creds, http.MethodPost, path, nil, fields, nil)
}

// DeleteEntity deletes a remote entity by external id. Deleting an already
// deleted entity is reported as success=false, not an error.
func (c *HTTPClient) DeleteEntity(ctx context.Context, creds Credentials, externalID string) (bool, error) {
	var resp deleteResponse
	path := "/" + url.PathEscape(externalID)
	if err := c.do(ctx, creds, http.MethodDelete, path, nil, nil, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// ListCampaigns fetches one page of campaigns for the account.
func (c *HTTPClient) ListCampaigns(ctx context.Context, creds Credentials, accountExternalID, cursor string) ([]RemoteCampaign, string, error) {
	var resp struct {
		Data   []RemoteCampaign `json:"data"`
		Paging paging           `json:"paging"`
	}
	path := fmt.Sprintf("/accounts/%s/campaigns", url.PathEscape(accountExternalID))
	if err := c.do(ctx, creds, http.MethodGet, path, c.listQuery(cursor), nil, &resp); err != nil {
		return nil, "", err
	}
	return resp.Data, nextCursor(resp.Paging), nil
}

// ListAdSets fetches one page of ad sets for the account.
func (c *HTTPClient) ListAdSets(ctx context.Context, creds Credentials, accountExternalID, cursor string) ([]RemoteAdSet, string, error) {
	var resp struct {
		Data   []RemoteAdSet `json:"data"`
		Paging paging        `json:"paging"`
	}
	path := fmt.Sprintf("/accounts/%s/adsets", url.PathEscape(accountExternalID))
	if err := c.do(ctx, creds, http.MethodGet, path, c.listQuery(cursor), nil, &resp); err != nil {
		return nil, "", err
	}
	return resp.Data, nextCursor(resp.Paging), nil
}

// ListAds fetches one page of ads for the account.
func (c *HTTPClient) ListAds(ctx context.Context, creds Credentials, accountExternalID, cursor string) ([]RemoteAd, string, error) {
	var resp struct {
		Data   []RemoteAd `json:"data"`
		Paging paging     `json:"paging"`
	}
	path := fmt.Sprintf("/accounts/%s/ads", url.PathEscape(accountExternalID))
	if err := c.do(ctx, creds, http.MethodGet, path, c.listQuery(cursor), nil, &resp); err != nil {
		return nil, "", err
	}
	return resp.Data, nextCursor(resp.Paging), nil
}

func (c *HTTPClient) listQuery(cursor string) url.Values {
	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", c.pageSize))
	if cursor != "" {
		q.Set("after", cursor)
	}
	return q
}

func nextCursor(p paging) string {
	if p.Next == "" {
		return ""
	}
	return p.Cursors.After
}

func (c *HTTPClient) do(ctx context.Context, creds Credentials, method, path string, query url.Values, body, out any) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	if c.throttle != nil {
		if err := c.throttle.Wait(ctx); err != nil {
			return fmt.Errorf("throttle wait: %w", err)
		}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordRemoteCall(method, "network_error", time.Since(start))
		}
		return fmt.Errorf("platform request failed: %w", err)
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.RecordRemoteCall(method, fmt.Sprintf("%d", resp.StatusCode), time.Since(start))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var env errorEnvelope
		if err := json.Unmarshal(data, &env); err == nil && env.Error != nil {
			c.logger.Debug("platform error response",
				zap.Int("status", resp.StatusCode),
				zap.Int("code", env.Error.Code),
				zap.String("path", path),
			)
			return env.Error
		}
		return fmt.Errorf("platform returned status %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
