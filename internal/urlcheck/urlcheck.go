// Package urlcheck looks up URL reputation through the VirusTotal v3 API.
package urlcheck

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the VirusTotal v3 URL analysis endpoint.
const DefaultBaseURL = "https://www.virustotal.com/api/v3/urls"

// Result statuses.
const (
	StatusFound     = "found"
	StatusSubmitted = "submitted"
	StatusError     = "error"
)

// Stats holds the last analysis verdict counts for a known URL.
type Stats struct {
	Harmless   int `json:"harmless"`
	Malicious  int `json:"malicious"`
	Suspicious int `json:"suspicious"`
	Undetected int `json:"undetected"`
}

// Result is the outcome of a reputation lookup. Stats is set only when
// Status is "found"; Message is set for "submitted" and "error".
type Result struct {
	Status  string `json:"status"`
	Stats   *Stats `json:"stats,omitempty"`
	Message string `json:"message,omitempty"`
}

// Client queries VirusTotal. BaseURL and HTTPClient have working defaults;
// tests point BaseURL at a local server.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:     apiKey,
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Check looks up rawURL. A URL unknown to VirusTotal is submitted for
// scanning and reported as "submitted". Non-200/404 upstream responses
// become an "error" result rather than a Go error; only transport and
// decode failures return err.
func (c *Client) Check(ctx context.Context, rawURL string) (*Result, error) {
	// VirusTotal identifies a URL by its unpadded base64url encoding.
	urlID := base64.RawURLEncoding.EncodeToString([]byte(rawURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/"+urlID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-apikey", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload struct {
			Data struct {
				Attributes struct {
					LastAnalysisStats Stats `json:"last_analysis_stats"`
				} `json:"attributes"`
			} `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, err
		}
		stats := payload.Data.Attributes.LastAnalysisStats
		return &Result{Status: StatusFound, Stats: &stats}, nil
	case http.StatusNotFound:
		return c.submit(ctx, rawURL)
	default:
		return &Result{Status: StatusError, Message: fmt.Sprintf("API error: %d", resp.StatusCode)}, nil
	}
}

// submit queues an unknown URL for scanning.
func (c *Client) submit(ctx context.Context, rawURL string) (*Result, error) {
	form := url.Values{"url": {rawURL}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-apikey", c.APIKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &Result{Status: StatusError, Message: "Failed to submit URL for scanning."}, nil
	}
	return &Result{Status: StatusSubmitted, Message: "URL submitted for scanning. Please try again later."}, nil
}
