package subgraph

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "https://indexer.example/subgraphs/bets"

func newMockedClient(t *testing.T, opts ...Option) (*Client, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	opts = append([]Option{WithHTTPClient(&http.Client{Transport: transport})}, opts...)
	return NewClient(testURL, nil, opts...), transport
}

func TestFetchBets(t *testing.T) {
	client, transport := newMockedClient(t, WithAPIKey("secret"), WithEntity("markets"), WithQuery("query { markets { id } }"))

	var captured map[string]interface{}
	transport.RegisterResponder(http.MethodPost, testURL, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
			return nil, err
		}
		return httpmock.NewStringResponse(http.StatusOK, `{"data":{"markets":[
			{"id":"1","options":"[]","status":2,"createdAt":"100","privateBet":true},
			{"id":"2","options":["0x00"],"status":"1","createdAt":null}
		]}}`), nil
	})

	records, err := client.FetchBets(context.Background(), Page{First: 50, Skip: 100, UpdatedAfter: 1234})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "1", records[0].ID.String())
	assert.Equal(t, "2", records[0].Status.String())
	assert.Equal(t, "true", records[0].PrivateBet.String())
	assert.Equal(t, "", records[1].CreatedAt.String())
	assert.JSONEq(t, `["0x00"]`, string(records[1].Options))

	assert.Equal(t, "query { markets { id } }", captured["query"])
	variables, ok := captured["variables"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(50), variables["first"])
	assert.Equal(t, float64(100), variables["skip"])
	assert.Equal(t, "1234", variables["updatedAfter"])
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestFetchBetsGraphQLErrors(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, testURL,
		httpmock.NewStringResponder(http.StatusOK, `{"data":null,"errors":[{"message":"indexing_error"},{"message":"bad field"}]}`))

	_, err := client.FetchBets(context.Background(), Page{First: 10})
	var queryErr *QueryError
	require.True(t, errors.As(err, &queryErr))
	assert.Equal(t, []string{"indexing_error", "bad field"}, queryErr.Messages)
}

func TestFetchBetsNon200(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, testURL, httpmock.NewStringResponder(http.StatusBadGateway, "upstream down"))

	_, err := client.FetchBets(context.Background(), Page{First: 10})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "upstream down", statusErr.Body)
}

func TestFetchBetsMissingEntity(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, testURL, httpmock.NewStringResponder(http.StatusOK, `{"data":{"other":[]}}`))

	_, err := client.FetchBets(context.Background(), Page{First: 10})
	assert.ErrorContains(t, err, "data.bets")
}

func TestFetchBetsEmptyPage(t *testing.T) {
	client, transport := newMockedClient(t, WithRateLimit(1000, 1))
	transport.RegisterResponder(http.MethodPost, testURL, httpmock.NewStringResponder(http.StatusOK, `{"data":{"bets":[]}}`))

	records, err := client.FetchBets(context.Background(), Page{First: 10})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchBetsCancelledWhileLimited(t *testing.T) {
	client, _ := newMockedClient(t, WithRateLimit(0.001, 1))
	ctx, cancel := context.WithCancel(context.Background())

	// Drain the only token.
	client.limiter.Allow()
	cancel()

	_, err := client.FetchBets(ctx, Page{First: 10})
	assert.Error(t, err)
}

func TestRetryable(t *testing.T) {
	assert.False(t, Retryable(nil))
	assert.False(t, Retryable(&QueryError{Messages: []string{"Type `Query` has no field `bets`"}}))
	assert.False(t, Retryable(&StatusError{StatusCode: http.StatusUnauthorized}))
	assert.False(t, Retryable(context.Canceled))
	assert.True(t, Retryable(&StatusError{StatusCode: http.StatusTooManyRequests}))
	assert.True(t, Retryable(&StatusError{StatusCode: http.StatusBadGateway}))
	assert.True(t, Retryable(errors.New("connection reset by peer")))
}
