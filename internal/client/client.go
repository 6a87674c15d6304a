// Package client talks to the HRM HTTP API. It implements workspace.Backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kettlegourmet/hrm/internal/circuitbreaker"
	"github.com/kettlegourmet/hrm/internal/leave"
	"github.com/kettlegourmet/hrm/internal/models"
	"go.uber.org/zap"
)

// APIError is a non-2xx response
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hrm api: %d %s", e.Status, e.Message)
}

// Unwrap maps well known statuses onto the leave sentinels
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return leave.ErrNotFound
	case http.StatusForbidden:
		return leave.ErrForbidden
	case http.StatusConflict:
		if strings.Contains(e.Message, leave.ErrTierInUse.Error()) {
			return leave.ErrTierInUse
		}
		return nil
	default:
		return nil
	}
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *circuitbreaker.Breaker
	logger     *zap.Logger
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithBreaker(cfg circuitbreaker.Config) Option {
	return func(c *Client) { c.breaker = circuitbreaker.New(cfg) }
}

func New(baseURL string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.breaker == nil {
		c.breaker = circuitbreaker.New(circuitbreaker.Config{
			Name:          "hrm-api",
			IsFailure:     isBackendFailure,
			OnStateChange: c.logStateChange,
		})
	}

	return c
}

// Only transport errors and 5xx responses count against the backend
func isBackendFailure(err error) bool {
	if leave.IsValidation(err) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	return !errors.Is(err, context.Canceled)
}

func (c *Client) logStateChange(name string, from, to circuitbreaker.State) {
	c.logger.Warn("Circuit breaker state changed",
		zap.String("breaker", name),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)
}

func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}

func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp models.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/user/auth", models.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}

	c.token = resp.Token
	return resp.Token, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/user", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListTiers(ctx context.Context) ([]models.LeaveQuota, error) {
	var tiers []models.LeaveQuota
	if err := c.do(ctx, http.MethodGet, "/api/leave/quota", nil, &tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

func (c *Client) CreateTier(ctx context.Context, req models.TierRequest) (*models.LeaveQuota, error) {
	var tier models.LeaveQuota
	if err := c.do(ctx, http.MethodPost, "/api/leave/quota", req, &tier); err != nil {
		return nil, err
	}
	return &tier, nil
}

func (c *Client) EditTier(ctx context.Context, req models.TierRequest) (*models.LeaveQuota, error) {
	var tier models.LeaveQuota
	if err := c.do(ctx, http.MethodPut, "/api/leave/quota", req, &tier); err != nil {
		return nil, err
	}
	return &tier, nil
}

func (c *Client) DeleteTier(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/leave/quota/%d", id), nil, nil)
}

func (c *Client) TierSize(ctx context.Context, tier string) (int64, error) {
	var resp models.TierSizeResponse
	if err := c.do(ctx, http.MethodGet, "/api/leave/quota/size/"+url.PathEscape(tier), nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *Client) DeleteAndReplaceTier(ctx context.Context, req models.ReplaceTierRequest) (int, error) {
	var resp struct {
		Moved int `json:"moved"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/leave/quota/replace", req, &resp); err != nil {
		return 0, err
	}
	return resp.Moved, nil
}

func (c *Client) ListEmployeeQuotas(ctx context.Context) ([]models.EmployeeLeaveQuota, error) {
	var records []models.EmployeeLeaveQuota
	if err := c.do(ctx, http.MethodGet, "/api/leave/employee-quota", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) EditEmployeeQuota(ctx context.Context, req models.EmployeeQuotaRequest) (*models.EmployeeLeaveQuota, error) {
	var record models.EmployeeLeaveQuota
	if err := c.do(ctx, http.MethodPut, "/api/leave/employee-quota", req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		var reader io.Reader
		if body != nil {
			payload, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("failed to encode request: %w", err)
			}
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return decodeError(resp)
		}

		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
		}
		return nil
	})
}

// 400 responses become validation errors so callers keep their state intact
func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
		if body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
	}

	if resp.StatusCode == http.StatusBadRequest && body.Field != "" {
		return &leave.ValidationError{Field: body.Field, Message: body.Error}
	}

	return &APIError{Status: resp.StatusCode, Message: body.Error}
}
