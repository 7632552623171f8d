// Package upstream reads metric datasets from the KPI HTTP API.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Config holds the API location and the optional client credentials.
// When ClientID is empty requests are sent unauthenticated.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// APIError is returned for any non 2xx response
type APIError struct {
	StatusCode int
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream API error [%d] %s: %s", e.StatusCode, e.Path, e.Message)
}

func (e *APIError) Unwrap() error {
	return metric.ErrSourceFailed
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid upstream base url %q", cfg.BaseURL)
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.ClientID != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		// token requests reuse the same timeout
		tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: cfg.Timeout})
		httpClient = cc.Client(tokenCtx)
		httpClient.Timeout = cfg.Timeout
	}

	return &Client{baseURL: base, httpClient: httpClient}, nil
}

// Path returns the API route serving a metric for a dimension
func Path(kind metric.Kind, dimension metric.Dimension) (string, error) {
	if !dimension.IsValid() {
		return "", metric.ErrInvalidDimension
	}

	switch kind {
	case metric.KindOnTime:
		return "/kpi/on_time/" + string(dimension), nil
	case metric.KindCompletion:
		return "/work_hour/completion/" + string(dimension), nil
	case metric.KindLost:
		return "/work_hour/lost/" + string(dimension), nil
	case metric.KindLeave:
		return "/work_hour/leave/" + string(dimension), nil
	}
	return "", metric.ErrInvalidKind
}

func (c *Client) Fetch(ctx context.Context, kind metric.Kind, dimension metric.Dimension) ([]metric.Record, error) {
	path, err := Path(kind, dimension)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", metric.ErrSourceFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{StatusCode: resp.StatusCode, Path: path, Message: strings.TrimSpace(string(body))}
	}

	var payload []wireRecord
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", metric.ErrSourceFailed, path, err)
	}

	records := make([]metric.Record, 0, len(payload))
	for _, w := range payload {
		rec := w.Record
		rec.OnTimePct = float64(w.OnTimePct)
		records = append(records, rec)
	}
	return records, nil
}

// wireRecord accepts on_time_pct either as a number or as the text the KPI tables store
type wireRecord struct {
	metric.Record
	OnTimePct lenientFloat `json:"on_time_pct"`
}

type lenientFloat float64

func (f *lenientFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(strings.TrimSuffix(unquoted, "%"))
		if s == "" {
			*f = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.New("on_time_pct is not a number")
	}
	*f = lenientFloat(v)
	return nil
}
