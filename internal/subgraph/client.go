package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"betScope/internal/metrics"
	"betScope/internal/model"
)

// DefaultEntity is the top-level field the bet query returns.
const DefaultEntity = "bets"

// DefaultQuery pages bets by update time. Deployments with a different
// schema supply their own document through configuration.
const DefaultQuery = `query Bets($first: Int!, $skip: Int!, $updatedAfter: BigInt!) {
  bets(first: $first, skip: $skip, orderBy: updatedAt, orderDirection: asc, where: {updatedAt_gte: $updatedAfter}) {
    id
    options
    betType
    name
    description
    image
    link
    owner
    result
    status
    createdAt
    updatedAt
    betDuration
    privateBet
  }
}`

// Page selects one slice of the bet list.
type Page struct {
	First        int
	Skip         int
	UpdatedAfter int64
}

// Client queries a GraphQL indexer for raw bet records.
type Client struct {
	url        string
	query      string
	entity     string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithAPIKey sends key as a Bearer token.
func WithAPIKey(key string) Option {
	return func(cl *Client) { cl.apiKey = strings.TrimSpace(key) }
}

// WithQuery replaces DefaultQuery.
func WithQuery(query string) Option {
	return func(cl *Client) {
		if strings.TrimSpace(query) != "" {
			cl.query = query
		}
	}
}

// WithEntity replaces DefaultEntity.
func WithEntity(entity string) Option {
	return func(cl *Client) {
		if strings.TrimSpace(entity) != "" {
			cl.entity = strings.TrimSpace(entity)
		}
	}
}

// WithRateLimit caps requests per second. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(cl *Client) {
		if rps <= 0 {
			cl.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		cl.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func NewClient(url string, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		url:        url,
		query:      DefaultQuery,
		entity:     DefaultEntity,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []graphQLError             `json:"errors"`
}

// QueryError reports GraphQL-level errors returned with a 200 status.
type QueryError struct {
	Messages []string
}

func (e *QueryError) Error() string {
	return "subgraph query errors: " + strings.Join(e.Messages, "; ")
}

// StatusError reports a non-200 HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("subgraph query failed with status %d: %s", e.StatusCode, e.Body)
}

// FetchBets returns one page of raw bet records.
func (c *Client) FetchBets(ctx context.Context, page Page) ([]model.RawBetRecord, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(graphQLRequest{
		Query: c.query,
		Variables: map[string]interface{}{
			"first": page.First,
			"skip":  page.Skip,
			// BigInt scalars travel as strings.
			"updatedAfter": strconv.FormatInt(page.UpdatedAfter, 10),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.SubgraphRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SubgraphRequestsTotal.WithLabelValues("transport_error").Inc()
		return nil, fmt.Errorf("subgraph request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.SubgraphRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var decoded graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.SubgraphRequestsTotal.WithLabelValues("decode_error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		metrics.SubgraphRequestsTotal.WithLabelValues("graphql_error").Inc()
		messages := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			messages = append(messages, e.Message)
		}
		return nil, &QueryError{Messages: messages}
	}

	raw, ok := decoded.Data[c.entity]
	if !ok {
		metrics.SubgraphRequestsTotal.WithLabelValues("decode_error").Inc()
		return nil, fmt.Errorf("response has no data.%s field", c.entity)
	}

	var records []model.RawBetRecord
	if len(bytes.TrimSpace(raw)) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if err := json.Unmarshal(raw, &records); err != nil {
			metrics.SubgraphRequestsTotal.WithLabelValues("decode_error").Inc()
			return nil, fmt.Errorf("decode %s: %w", c.entity, err)
		}
	}

	metrics.SubgraphRequestsTotal.WithLabelValues("ok").Inc()
	c.logger.Debug("subgraph page fetched",
		zap.Int("first", page.First),
		zap.Int("skip", page.Skip),
		zap.Int64("updated_after", page.UpdatedAfter),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// Retryable reports whether a FetchBets error may succeed on a later attempt.
// Malformed queries and client-side HTTP errors other than 429 are permanent.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var queryErr *QueryError
	if errors.As(err, &queryErr) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		code := statusErr.StatusCode
		return code == http.StatusTooManyRequests || code >= 500
	}
	return !errors.Is(err, context.Canceled)
}
