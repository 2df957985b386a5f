package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"weektodo/backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(url string, timeout time.Duration) *Client {
	return NewClient(config.AIConfig{
		BaseURL:     url,
		Model:       "gpt-3.5-turbo",
		MaxTokens:   500,
		Temperature: 0.7,
		Timeout:     timeout,
	}, nil)
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	c := NewClient(config.AIConfig{}, nil)

	assert.Equal(t, 30*time.Second, c.timeout)
	assert.NotNil(t, c.httpClient)
}

func TestComplete_ReturnsFirstChoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"first"}},{"message":{"content":"second"}}]}`))
	}))
	defer server.Close()

	content, err := testClient(server.URL, time.Second).Complete(context.Background(), "key", []Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "first", content)
}

func TestComplete_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := testClient(server.URL, time.Second).Complete(context.Background(), "key", nil)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
}

func TestComplete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	_, err := testClient(server.URL, 20*time.Millisecond).Complete(context.Background(), "key", nil)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestComplete_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := testClient(url, time.Second).Complete(context.Background(), "key", nil)

	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr))
}

func TestComplete_InvalidEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := testClient(server.URL, time.Second).Complete(context.Background(), "key", nil)
	require.Error(t, err)

	var transportErr *TransportError
	assert.False(t, errors.As(err, &transportErr))
}
