// Package zerobounce wraps the ZeroBounce v2 email validation API.
package zerobounce

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/outreach-cli/internal/model"
)

const defaultBaseURL = "https://api.zerobounce.net/v2"

// Client validates mailbox addresses.
type Client interface {
	// Validate checks a single address and returns a normalized result.
	// Transport failures and non-200 responses are reported as a result
	// with status "error" and the details preserved in Raw; the returned
	// error is non-nil only when the request could not be issued at all
	// (bad base URL, cancelled context).
	Validate(ctx context.Context, email string) (*model.ValidationResult, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the client-side requests-per-second cap.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a ZeroBounce API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// validateResponse is the raw ZeroBounce /validate payload. Score comes
// back as a JSON number or numeric string depending on the account tier,
// so both fields are kept loose.
type validateResponse struct {
	Address   string          `json:"address"`
	Status    string          `json:"status"`
	SubStatus string          `json:"sub_status"`
	Score     json.RawMessage `json:"score"`
	RiskScore json.RawMessage `json:"risk_score"`
}

// statusMapping normalizes ZeroBounce statuses into our enum.
var statusMapping = map[string]model.ValidationStatus{
	"valid":       model.StatusValid,
	"invalid":     model.StatusInvalid,
	"catch-all":   model.StatusCatchAll,
	"disposable":  model.StatusDisposable,
	"unknown":     model.StatusUnknown,
	"spamtrap":    model.StatusSpamtrap,
	"abuse":       model.StatusAbuse,
	"do_not_mail": model.StatusDontSend,
	"dont_send":   model.StatusDontSend,
}

func (c *httpClient) Validate(ctx context.Context, email string) (*model.ValidationResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "zerobounce: rate limiter wait")
	}

	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("email", email)
	// ip_address must be present even when blank.
	q.Set("ip_address", "")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/validate?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "zerobounce: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrap(err, "zerobounce: send request")
		}
		return errorResult(email, err.Error(), 0), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorResult(email, err.Error(), resp.StatusCode), nil
	}

	if resp.StatusCode != http.StatusOK {
		return errorResult(email, string(body), resp.StatusCode), nil
	}

	var raw validateResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return errorResult(email, string(body), resp.StatusCode), nil
	}

	status, ok := statusMapping[raw.Status]
	if !ok {
		status = model.StatusUnknown
	}

	return &model.ValidationResult{
		Email:     email,
		Status:    status,
		Score:     looseInt(raw.Score, 0),
		RiskScore: looseInt(raw.RiskScore, 100),
		Raw: map[string]any{
			"status":     raw.Status,
			"sub_status": raw.SubStatus,
		},
	}, nil
}

func errorResult(email, details string, statusCode int) *model.ValidationResult {
	return &model.ValidationResult{
		Email:     email,
		Status:    model.StatusError,
		Score:     0,
		RiskScore: 100,
		Raw: map[string]any{
			"error":       details,
			"status_code": statusCode,
		},
	}
}

// looseInt parses a JSON number or numeric string, falling back to def.
func looseInt(raw json.RawMessage, def int) int {
	if len(raw) == 0 {
		return def
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
	}
	return def
}
