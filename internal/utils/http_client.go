package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly,
// while allowing extension with additional application-specific behavior.
//
// Example usage:
//
//	client := utils.NewHTTPClient("https://api.example.com", 5*time.Second)
//	resp, err := client.R().Get("/users")
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates and returns a new HTTPClient instance with the
// given base URL and per-request timeout. Either parameter may be left
// at its zero value to keep the resty default.
//
// Each call returns an independent client instance with its own
// configuration, connection pool, and state.
//
// Parameters:
//
//	baseURL - prefix applied to all relative request URLs
//	timeout - maximum time allowed for a single request
//
// Returns:
//
//	*HTTPClient - a ready-to-use HTTP client
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	client := resty.New()
	if baseURL != "" {
		client.SetBaseURL(baseURL)
	}
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &HTTPClient{Client: client}
}
