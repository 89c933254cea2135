package serp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultEndpoint = "https://api.brightdata.com/request"

// ErrNoCredentials signals that the client was constructed without an API
// key or zone. The search stage maps this onto its degraded-output path.
var ErrNoCredentials = errors.New("serp: missing API key or zone")

// Client calls the BrightData SERP API (Google search proxied through the
// unblocker, parsed_light format for the fast parser).
type Client struct {
	APIKey   string
	Zone     string
	Endpoint string
	Client   *http.Client
}

func NewClient(apiKey, zone string, timeout time.Duration) *Client {
	return &Client{
		APIKey:   apiKey,
		Zone:     zone,
		Endpoint: defaultEndpoint,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configured reports whether the client has usable credentials
func (c *Client) Configured() bool {
	return c.APIKey != "" && c.Zone != ""
}

type serpRequest struct {
	Zone   string `json:"zone"`
	URL    string `json:"url"`
	Format string `json:"format"`
}

// Search runs a Google web search for the query and returns the parsed body
func (c *Client) Search(ctx context.Context, query string) (*Body, error) {
	searchURL := fmt.Sprintf("https://www.google.com/search?q=%s&hl=en&gl=us&num=10", url.QueryEscape(query))
	return c.request(ctx, searchURL)
}

// SearchImages runs a Google image search (tbm=isch) for the query
func (c *Client) SearchImages(ctx context.Context, query string) (*Body, error) {
	searchURL := fmt.Sprintf("https://www.google.com/search?q=%s&tbm=isch&hl=en&gl=us&num=10", url.QueryEscape(query))
	return c.request(ctx, searchURL)
}

func (c *Client) request(ctx context.Context, searchURL string) (*Body, error) {
	if !c.Configured() {
		return nil, ErrNoCredentials
	}

	payload := serpRequest{
		Zone:   c.Zone,
		URL:    searchURL + "&brd_json=1",
		Format: "json",
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.Endpoint, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	// Fast parser: 2x speed, top 10 results only
	req.Header.Set("x-unblock-data-format", "parsed_light")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serp request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serp error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return parseBody(apiResp.Body)
}

// parseBody handles the body arriving either as an object or as a
// JSON-encoded string containing the object.
func parseBody(raw json.RawMessage) (*Body, error) {
	if len(raw) == 0 {
		return &Body{}, nil
	}

	data := []byte(raw)
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, fmt.Errorf("unwrap body string: %w", err)
		}
		data = []byte(inner)
	}

	var body Body
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("unmarshal body: %w", err)
	}
	return &body, nil
}

// Domain extracts the host part of a result link, or "" when unparseable
func Domain(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return u.Host
}
