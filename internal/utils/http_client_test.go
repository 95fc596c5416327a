package utils

import (
	"testing"
	"time"
)

func TestNewHTTPClient_NotNil(t *testing.T) {
	client := NewHTTPClient("", 0)

	if client == nil {
		t.Fatal("expected non-nil *HTTPClient, got nil")
	}

	if client.Client == nil {
		t.Fatal("expected embedded *resty.Client to be non-nil, got nil")
	}
}

func TestNewHTTPClient_BaseURLAndTimeout(t *testing.T) {
	client := NewHTTPClient("https://api.example.com", 5*time.Second)

	if got := client.BaseURL; got != "https://api.example.com" {
		t.Errorf("expected base URL 'https://api.example.com', got '%s'", got)
	}
	if got := client.GetClient().Timeout; got != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", got)
	}
}

func TestNewHTTPClient_ZeroValuesKeepDefaults(t *testing.T) {
	client := NewHTTPClient("", 0)

	if client.BaseURL != "" {
		t.Errorf("expected empty base URL, got '%s'", client.BaseURL)
	}
	if client.GetClient().Timeout != 0 {
		t.Errorf("expected zero timeout, got %v", client.GetClient().Timeout)
	}
}

func TestNewHTTPClient_Independence(t *testing.T) {
	// Create two clients and make sure they don't share the same underlying resty.Client
	client1 := NewHTTPClient("", 0)
	client2 := NewHTTPClient("", 0)

	if client1.Client == client2.Client {
		t.Fatal("expected NewHTTPClient to return HTTPClients with different *resty.Client instances")
	}
}

func TestHTTPClient_EmbeddedClientUsable(t *testing.T) {
	client := NewHTTPClient("", 0)

	if req := client.R(); req == nil {
		t.Fatal("expected non-nil request from embedded resty client")
	}
}
