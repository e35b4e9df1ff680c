package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/repochat/internal/config"
)

func validConfig() config.EmbeddingsConfig {
	return config.EmbeddingsConfig{
		BaseURL: "https://api.openai.com/v1",
		Model:   "text-embedding-3-small",
		APIKey:  config.Secret("sk-test"),
	}
}

func TestNewServiceRequiresAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.APIKey = ""

	_, err := NewService(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewServiceValidatesConfig(t *testing.T) {
	cfg := validConfig()
	cfg.BaseURL = ""
	_, err := NewService(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = validConfig()
	cfg.Model = ""
	_, err = NewService(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEmbedRejectsEmptyInput(t *testing.T) {
	svc, err := NewService(validConfig())
	require.NoError(t, err)

	_, err = svc.EmbedDocuments(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = svc.EmbedQuery(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

// fakeEmbeddingServer speaks just enough of the OpenAI embeddings protocol
// for the langchaingo client.
func fakeEmbeddingServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		type datum struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		resp := struct {
			Object string  `json:"object"`
			Data   []datum `json:"data"`
		}{Object: "list"}
		for i := range req.Input {
			resp.Data = append(resp.Data, datum{
				Object:    "embedding",
				Index:     i,
				Embedding: []float32{0.1, 0.2, 0.3},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestEmbedDocumentsAgainstFakeServer(t *testing.T) {
	server := fakeEmbeddingServer(t)
	defer server.Close()

	cfg := validConfig()
	cfg.BaseURL = server.URL
	svc, err := NewService(cfg)
	require.NoError(t, err)

	vectors, err := svc.EmbedDocuments(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vectors[0])

	vector, err := svc.EmbedQuery(context.Background(), "gamma")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
}
