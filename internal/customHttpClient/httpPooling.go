package customHttpClient

import (
	"net/http"
	"time"

	"github.com/akolanti/insightRAG/internal/config"
)

// NewTransport returns a pooled transport. Owners release it with CloseIdleConnections.
func NewTransport() *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
	}
}

var sharedTransport = NewTransport()

// Shared returns a client on the process wide pool, used by the LLM and embedding clients.
func Shared(timeout time.Duration) *http.Client {
	return &http.Client{Transport: sharedTransport, Timeout: timeout}
}

// NewClient returns a client with its own pool, for short lived sessions.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Transport: NewTransport(), Timeout: timeout}
}
