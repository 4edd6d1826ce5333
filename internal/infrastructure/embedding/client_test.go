package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/config"
)

func TestClient_EmbedStringsBatches(t *testing.T) {
	var batches [][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "bge-m3", req.Model)
		batches = append(batches, req.Texts)

		resp := embedResponse{}
		for _, text := range req.Texts {
			resp.Embeddings = append(resp.Embeddings, []float64{float64(len(text))})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c, err := NewClient(&config.EmbeddingConfig{Endpoint: srv.URL, Model: "bge-m3", BatchSize: 2})
	require.NoError(t, err)

	got, err := c.EmbedStrings(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{1}, {2}, {3}}, got)
	assert.Equal(t, [][]string{{"a", "bb"}, {"ccc"}}, batches)
}

func TestClient_Errors(t *testing.T) {
	_, err := NewClient(&config.EmbeddingConfig{})
	assert.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(&config.EmbeddingConfig{Endpoint: srv.URL})
	require.NoError(t, err)
	_, err = c.EmbedStrings(context.Background(), []string{"x"})
	assert.ErrorContains(t, err, "status=502")
}

func TestNewEmbedder_UnknownProvider(t *testing.T) {
	_, err := NewEmbedder(context.Background(), &config.EmbeddingConfig{Provider: "grpc"})
	assert.Error(t, err)
}
