package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nao1215/prospector/internal/model"
)

const (
	campaignsPath = "/api/campaigns"
	submitPath    = "/api/prospects/from-extension"

	// DefaultTimeout bounds a single catalog request.
	DefaultTimeout = 30 * time.Second
)

// Destination is a selectable campaign.
type Destination struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// destinationWire is the catalog's representation of a campaign.
type destinationWire struct {
	ID    flexibleID `json:"id"`
	Name  string     `json:"name"`
	Count struct {
		Prospects int `json:"prospects"`
	} `json:"_count"`
}

// flexibleID accepts both string and numeric identifiers.
type flexibleID string

func (id *flexibleID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("catalog: id must be a string or number: %w", err)
	}
	*id = flexibleID(n.String())
	return nil
}

// Ack is the decoded acknowledgment of a submission.
type Ack map[string]any

// ID returns the identifier of the created prospect, if the catalog sent one.
func (a Ack) ID() string {
	switch v := a["id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// submission is the body of a submit request.
type submission struct {
	*model.ProfileRecord
	CampaignID string `json:"campaignId"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Client talks to the catalog service.
type Client struct {
	http   *resty.Client
	logger *slog.Logger

	token      string
	cookie     string
	timeout    time.Duration
	retryCount int
	retryWait  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithToken authenticates requests with a bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithCookie sends a session cookie header, for catalogs that authenticate
// browser sessions.
func WithCookie(cookie string) Option {
	return func(c *Client) {
		c.cookie = cookie
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetry sets how often idempotent requests are retried and the initial
// wait between attempts.
func WithRetry(count int, wait time.Duration) Option {
	return func(c *Client) {
		c.retryCount = count
		c.retryWait = wait
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the catalog at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := validateBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		timeout:    DefaultTimeout,
		retryCount: 2,
		retryWait:  200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	c.http = resty.New().
		SetBaseURL(base).
		SetTimeout(c.timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(c.retryCount).
		SetRetryWaitTime(c.retryWait).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(retryCondition)
	if c.token != "" {
		c.http.SetAuthToken(c.token)
	}
	if c.cookie != "" {
		c.http.SetHeader("Cookie", c.cookie)
	}
	c.http.OnAfterResponse(func(_ *resty.Client, r *resty.Response) error {
		c.logger.Debug("catalog request",
			"method", r.Request.Method,
			"url", r.Request.URL,
			"status", r.StatusCode(),
			"duration", r.Time(),
		)
		return nil
	})

	return c, nil
}

func validateBaseURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("%w: must be absolute, got %q", ErrInvalidBaseURL, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidBaseURL, u.Scheme)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// retryCondition retries reads on network errors and server-side failures.
// Submissions are never retried so a prospect is not created twice.
func retryCondition(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return true
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

// Destinations lists the campaigns a record can be submitted to. The call
// also verifies the credentials.
func (c *Client) Destinations(ctx context.Context) ([]Destination, error) {
	var wire []destinationWire
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&wire).
		SetError(&errorBody{}).
		Get(campaignsPath)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}

	out := make([]Destination, 0, len(wire))
	for _, w := range wire {
		out = append(out, Destination{ID: string(w.ID), Name: w.Name, Count: w.Count.Prospects})
	}
	return out, nil
}

// Submit sends record to the destination and returns the acknowledgment.
func (c *Client) Submit(ctx context.Context, record *model.ProfileRecord, destinationID string) (Ack, error) {
	if strings.TrimSpace(destinationID) == "" {
		return nil, ErrMissingDestination
	}
	if record == nil {
		record = model.NewProfileRecord()
	}

	ack := Ack{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(submission{ProfileRecord: record, CampaignID: destinationID}).
		SetResult(&ack).
		SetError(&errorBody{}).
		Post(submitPath)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return ack, nil
}

// check maps a resty outcome to the package errors.
func (c *Client) check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	if !resp.IsError() {
		if resp.IsSuccess() {
			return nil
		}
		return &APIError{Status: resp.StatusCode(), Message: "unexpected response"}
	}

	apiErr := &APIError{
		Status:  resp.StatusCode(),
		Message: fmt.Sprintf("request failed with status %d", resp.StatusCode()),
	}
	if body, ok := resp.Error().(*errorBody); ok && strings.TrimSpace(body.Error) != "" {
		apiErr.Message = strings.TrimSpace(body.Error)
	}

	if isUnauthorized(apiErr) {
		return fmt.Errorf("%w: %w", ErrUnauthorized, apiErr)
	}
	return apiErr
}

// isUnauthorized recognizes authentication failures: a 401, or a 403 whose
// message is a localized "non autorisé" or "unauthorized".
func isUnauthorized(e *APIError) bool {
	switch e.Status {
	case http.StatusUnauthorized:
		return true
	case http.StatusForbidden:
		msg := strings.ToLower(e.Message)
		return strings.Contains(msg, "autoris") || strings.Contains(msg, "unauthorized")
	default:
		return false
	}
}
