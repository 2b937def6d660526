package utils

import (
	"bytes"
	"crypto/tls"
	"io"
	"net/http"
	"strings"
	"time"

	"medassist-backend/pkg/logger"
)

// maxLoggedBody caps how much of a request body the debug transport logs.
const maxLoggedBody = 4096

func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: newTransport(),
	}
}

// NewDebugHTTPClient logs every outgoing POST (headers redacted) under the
// given provider name before sending it.
func NewDebugHTTPClient(timeout time.Duration, provider string) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &DebugTransport{base: newTransport(), provider: provider},
	}
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}

type DebugTransport struct {
	base     http.RoundTripper
	provider string
}

func (t *DebugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method == http.MethodPost {
		t.logRequest(req)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		logger.WithFields(logger.Fields{"provider": t.provider, "url": req.URL.String()}).
			Errorf("model request failed: %v", err)
		return nil, err
	}

	logger.WithFields(logger.Fields{"provider": t.provider, "status": resp.StatusCode}).Debug("model response")
	return resp, nil
}

func (t *DebugTransport) logRequest(req *http.Request) {
	headers := make(map[string]string, len(req.Header))
	for name, values := range req.Header {
		if IsSensitiveHeader(name) {
			headers[name] = "[REDACTED]"
			continue
		}
		headers[name] = strings.Join(values, ", ")
	}

	fields := logger.Fields{
		"provider": t.provider,
		"url":      req.URL.String(),
		"headers":  headers,
	}

	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			logger.WithFields(fields).Errorf("read request body: %v", err)
			return
		}
		// Restore the body so the real request is unaffected.
		req.Body = io.NopCloser(bytes.NewReader(body))
		fields["body_bytes"] = len(body)
		if len(body) > maxLoggedBody {
			body = body[:maxLoggedBody]
		}
		fields["body"] = string(body)
	}

	logger.WithFields(fields).Debug("model request")
}

func IsSensitiveHeader(name string) bool {
	switch strings.ToLower(name) {
	case "authorization", "x-api-key", "x-goog-api-key", "x-auth-token", "cookie", "api-key":
		return true
	}
	return false
}

// MaskKey keeps a short prefix of a secret for log lines.
func MaskKey(key string) string {
	if len(key) <= 6 {
		return strings.Repeat("*", len(key))
	}
	return key[:6] + "..."
}
