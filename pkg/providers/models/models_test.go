package models

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/select-translator/pkg/providers"
)

func TestLister_OpenAI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		assert.Equal(t, "Bearer sk", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o","object":"model","owned_by":"openai"},{"id":"gpt-4o-mini","object":"model","owned_by":"openai"}]}`))
	}))
	defer server.Close()

	models, err := NewLister(0).List(context.Background(), providers.Config{
		ID: "openai", BaseURL: server.URL + "/v1/", APIKey: "sk",
	})
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "gpt-4o", models[0].ID)
	assert.Equal(t, "openai", models[0].OwnedBy)
}

func TestLister_Gemini(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "g-key", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"models":[{"name":"models/gemini-2.5-flash"},{"name":"models/gemini-1.5-pro"}]}`))
	}))
	defer server.Close()

	models, err := NewLister(0).List(context.Background(), providers.Config{
		ID: "gemini", BaseURL: server.URL, APIKey: "g-key",
	})
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "gemini-1.5-pro", models[0].ID)
	assert.Equal(t, "gemini-2.5-flash", models[1].ID)
}

func TestLister_Anthropic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ak", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		_, _ = w.Write([]byte(`{"data":[{"id":"claude-3-haiku-20240307","type":"model"}]}`))
	}))
	defer server.Close()

	models, err := NewLister(0).List(context.Background(), providers.Config{
		ID: "claude", BaseURL: server.URL, APIKey: "ak",
	})
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "claude-3-haiku-20240307", models[0].ID)
}

func TestLister_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewLister(0).List(context.Background(), providers.Config{ID: "gemini", BaseURL: server.URL})
	assert.Error(t, err)

	_, err = NewLister(0).List(context.Background(), providers.Config{ID: "x", Kind: "bogus"})
	assert.Error(t, err)
}
