// Package mail sends transactional email through the SendGrid v3 API.
package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.sendgrid.com"

type Config struct {
	APIKey    string
	BaseURL   string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

type Client struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Attachment struct {
	Filename string
	MIMEType string
	Content  []byte
}

type Message struct {
	From        Address
	To          []Address
	CC          []Address
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Result reports the outcome of one send. Error is set when Success is false.
type Result struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode,omitempty"`
	MessageID  string `json:"messageId,omitempty"`
	Error      string `json:"error,omitempty"`
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             Address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
	Attachments      []attachment      `json:"attachments,omitempty"`
}

type personalization struct {
	To []Address `json:"to"`
	Cc []Address `json:"cc,omitempty"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type attachment struct {
	Content     string `json:"content"`
	Type        string `json:"type,omitempty"`
	Filename    string `json:"filename"`
	Disposition string `json:"disposition"`
}

type errorResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// HTTPError is a non-2xx answer from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, e.Message)
}

// Send delivers msg once. Failures are reported in the Result, never as an error.
func (c *Client) Send(ctx context.Context, msg Message) Result {
	statusCode, messageID, err := c.send(ctx, msg)
	if err != nil {
		slog.Error("failed to send email", "subject", msg.Subject, "error", err)

		return Result{StatusCode: statusCode, Error: err.Error()}
	}

	return Result{Success: true, StatusCode: statusCode, MessageID: messageID}
}

func (c *Client) send(ctx context.Context, msg Message) (int, string, error) {
	if c.cfg.APIKey == "" {
		return 0, "", errors.New("email delivery not configured")
	}

	wire, err := c.build(msg)
	if err != nil {
		return 0, "", err
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return 0, "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		he := &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}

		var er errorResponse
		if json.Unmarshal(raw, &er) == nil && len(er.Errors) > 0 && er.Errors[0].Message != "" {
			he.Message = er.Errors[0].Message
		}

		return resp.StatusCode, "", he
	}

	return resp.StatusCode, strings.TrimSpace(resp.Header.Get("X-Message-Id")), nil
}

func (c *Client) build(msg Message) (sendRequest, error) {
	from := msg.From
	if strings.TrimSpace(from.Email) == "" {
		from = Address{Email: c.cfg.FromEmail, Name: c.cfg.FromName}
	}

	if strings.TrimSpace(from.Email) == "" {
		return sendRequest{}, errors.New("sender address required")
	}

	if len(msg.To) == 0 {
		return sendRequest{}, errors.New("recipient required")
	}

	if strings.TrimSpace(msg.Subject) == "" {
		return sendRequest{}, errors.New("subject required")
	}

	var contents []content
	if t := strings.TrimSpace(msg.Text); t != "" {
		contents = append(contents, content{Type: "text/plain", Value: t})
	}

	if h := strings.TrimSpace(msg.HTML); h != "" {
		contents = append(contents, content{Type: "text/html", Value: h})
	}

	if len(contents) == 0 {
		return sendRequest{}, errors.New("text or html body required")
	}

	atts := make([]attachment, 0, len(msg.Attachments))

	for _, a := range msg.Attachments {
		if strings.TrimSpace(a.Filename) == "" {
			return sendRequest{}, errors.New("attachment filename required")
		}

		if len(a.Content) == 0 {
			return sendRequest{}, fmt.Errorf("attachment %q is empty", a.Filename)
		}

		atts = append(atts, attachment{
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			Type:        a.MIMEType,
			Filename:    a.Filename,
			Disposition: "attachment",
		})
	}

	return sendRequest{
		Personalizations: []personalization{{To: msg.To, Cc: msg.CC}},
		From:             from,
		Subject:          strings.TrimSpace(msg.Subject),
		Content:          contents,
		Attachments:      atts,
	}, nil
}
