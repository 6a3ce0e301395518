package openai_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nichiki/markitdown-rag-sample/pkg/llm"
	"github.com/nichiki/markitdown-rag-sample/pkg/llm/openai"
	"github.com/nichiki/markitdown-rag-sample/pkg/llm/resilience"
)

func TestNewProviderRequiresAPIKey(t *testing.T) {
	_, err := openai.NewProvider(map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestNewProviderViaRegistry(t *testing.T) {
	p, err := llm.NewProvider(openai.ProviderName, map[string]any{
		"api_key": "test-key",
	})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
}

func TestRegistryListsOpenAI(t *testing.T) {
	assert.Contains(t, llm.ListProviders(), "openai")
}

func TestRegistryUnknownProvider(t *testing.T) {
	_, err := llm.NewProvider("no-such-provider", nil)
	assert.Error(t, err)
}

func newProvider(t *testing.T, baseURL string) llm.Provider {
	t.Helper()
	p, err := openai.NewProvider(map[string]any{
		"base_url": baseURL,
		"api_key":  "test-key",
	})
	require.NoError(t, err)
	return p
}

func TestEmbedOrdersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "text-embedding-3-small")

		// Results deliberately out of order
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"data": [
				{"object": "embedding", "embedding": [0.2], "index": 1},
				{"object": "embedding", "embedding": [0.1], "index": 0}
			],
			"model": "text-embedding-3-small"
		}`))
	}))
	defer srv.Close()

	p := newProvider(t, srv.URL)
	embeddings, err := p.Embed(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	require.Len(t, embeddings, 2)
	assert.Equal(t, []float32{0.1}, embeddings[0])
	assert.Equal(t, []float32{0.2}, embeddings[1])
}

func TestEmbedShortResponseFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1],"index":0}]}`))
	}))
	defer srv.Close()

	p := newProvider(t, srv.URL)
	_, err := p.Embed(context.Background(), []string{"first", "second"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding count mismatch")
}

func TestEmbedOutOfRangeIndexFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1],"index":5}]}`))
	}))
	defer srv.Close()

	p := newProvider(t, srv.URL)
	_, err := p.Embed(context.Background(), []string{"only"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestEmbedServerErrorSingleAttempt(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := newProvider(t, srv.URL)
	_, err := p.Embed(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code 500")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestResilientEmbedAttemptBudget(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := newProvider(t, srv.URL)
	resilient := resilience.NewResilientEmbeddingProvider(p, &resilience.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}, nil)

	_, err := resilient.Embed(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestEmbedEmptyInput(t *testing.T) {
	p := newProvider(t, "http://unused.invalid")
	embeddings, err := p.Embed(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, embeddings)
}

func TestEmbedSingle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"embedding":[1,2,3],"index":0}]}`))
	}))
	defer srv.Close()

	p := newProvider(t, srv.URL)
	vec, err := p.EmbedSingle(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)
}

func TestGenerateSendsSystemPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"role":"system"`)
		assert.Contains(t, string(body), "answer from context")
		assert.Contains(t, string(body), `"role":"user"`)
		assert.Contains(t, string(body), "the question")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"the answer"}}]}`))
	}))
	defer srv.Close()

	p := newProvider(t, srv.URL)
	answer, err := p.Generate(context.Background(), "the question", "answer from context")
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
}

func TestChatErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer srv.Close()

	p := newProvider(t, srv.URL)
	_, err := p.Generate(context.Background(), "question", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestChatNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := newProvider(t, srv.URL)
	_, err := p.Generate(context.Background(), "question", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
