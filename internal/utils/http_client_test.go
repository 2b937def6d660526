package utils

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugHTTPClient_PreservesBody(t *testing.T) {
	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received = string(body)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewDebugHTTPClient(5*time.Second, "test")
	req, err := http.NewRequest(http.MethodPost, server.URL, strings.NewReader(`{"model":"x"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"model":"x"}`, received)
}

func TestIsSensitiveHeader(t *testing.T) {
	assert.True(t, IsSensitiveHeader("Authorization"))
	assert.True(t, IsSensitiveHeader("X-Goog-Api-Key"))
	assert.False(t, IsSensitiveHeader("Content-Type"))
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "", MaskKey(""))
	assert.Equal(t, "****", MaskKey("abcd"))
	assert.Equal(t, "sk-abc...", MaskKey("sk-abcdefghijk"))
}
