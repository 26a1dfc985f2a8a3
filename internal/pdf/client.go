// Package pdf renders invoice documents through a headless-browser HTTP service.
package pdf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrGenerate = errors.New("could not generate document")

// Options are passed through to the rendering service.
type Options struct {
	Format          string `json:"format,omitempty"`
	Landscape       bool   `json:"landscape,omitempty"`
	PrintBackground bool   `json:"printBackground"`
	Margin          Margin `json:"margin"`
}

type Margin struct {
	Top    string `json:"top,omitempty"`
	Right  string `json:"right,omitempty"`
	Bottom string `json:"bottom,omitempty"`
	Left   string `json:"left,omitempty"`
}

// DefaultOptions prints A4 portrait with backgrounds and 1cm margins.
var DefaultOptions = Options{
	Format:          "A4",
	PrintBackground: true,
	Margin:          Margin{Top: "1cm", Right: "1cm", Bottom: "1cm", Left: "1cm"},
}

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

type renderRequest struct {
	HTML    string  `json:"html"`
	Options Options `json:"options"`
}

// Render sends html to the rendering service and returns the PDF bytes.
// Every failure wraps ErrGenerate.
func (c *Client) Render(ctx context.Context, html string, opts Options) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: rendering service not configured", ErrGenerate)
	}

	body, err := json.Marshal(renderRequest{HTML: html, Options: opts})
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %w", ErrGenerate, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pdf", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", ErrGenerate, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: executing request: %w", ErrGenerate, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrGenerate, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrGenerate, resp.StatusCode, snippet(raw))
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrGenerate)
	}

	return raw, nil
}

func snippet(raw []byte) string {
	const limit = 200

	s := strings.TrimSpace(string(raw))
	if len(s) > limit {
		s = s[:limit] + "..."
	}

	return s
}
