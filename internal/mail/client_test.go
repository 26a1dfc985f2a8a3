package mail_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/flora/internal/mail"
)

func validMessage() mail.Message {
	return mail.Message{
		To:      []mail.Address{{Email: "buyer@bloom.example", Name: "Bloom BV"}},
		Subject: " Invoice 001-045 ",
		Text:    "Please find the invoice attached.",
		Attachments: []mail.Attachment{
			{Filename: "invoice-001-045.pdf", MIMEType: "application/pdf", Content: []byte("%PDF")},
		},
	}
}

func TestClient_Send(t *testing.T) {
	var got map[string]any

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer SG.key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("X-Message-Id", "msg-123")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	c := mail.NewClient(mail.Config{
		APIKey:    "SG.key",
		BaseURL:   ts.URL,
		FromEmail: "sales@flores.example",
		FromName:  "Flores del Valle",
		Timeout:   time.Second,
	})

	res := c.Send(context.Background(), validMessage())
	assert.Equal(t, mail.Result{Success: true, StatusCode: http.StatusAccepted, MessageID: "msg-123"}, res)

	assert.Equal(t, "Invoice 001-045", got["subject"])
	assert.Equal(t, map[string]any{"email": "sales@flores.example", "name": "Flores del Valle"}, got["from"])

	atts := got["attachments"].([]any)
	require.Len(t, atts, 1)

	att := atts[0].(map[string]any)
	assert.Equal(t, "invoice-001-045.pdf", att["filename"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF")), att["content"])
	assert.Equal(t, "attachment", att["disposition"])
}

func TestClient_SendFailures(t *testing.T) {
	type testCase struct {
		name       string
		handler    http.HandlerFunc
		apiKey     string
		message    func() mail.Message
		wantStatus int
		wantError  string
	}

	tests := []testCase{
		{
			name: "APIError",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"errors":[{"message":"The from address does not match a verified Sender Identity."}]}`))
			},
			apiKey:     "SG.key",
			message:    validMessage,
			wantStatus: http.StatusBadRequest,
			wantError:  "sendgrid http 400: The from address does not match a verified Sender Identity.",
		},
		{
			name: "PlainError",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "bad gateway", http.StatusBadGateway)
			},
			apiKey:     "SG.key",
			message:    validMessage,
			wantStatus: http.StatusBadGateway,
			wantError:  "sendgrid http 502: bad gateway",
		},
		{
			name:      "NotConfigured",
			message:   validMessage,
			wantError: "email delivery not configured",
		},
		{
			name:   "NoRecipient",
			apiKey: "SG.key",
			message: func() mail.Message {
				m := validMessage()
				m.To = nil

				return m
			},
			wantError: "recipient required",
		},
		{
			name:   "EmptyAttachment",
			apiKey: "SG.key",
			message: func() mail.Message {
				m := validMessage()
				m.Attachments[0].Content = nil

				return m
			},
			wantError: `attachment "invoice-001-045.pdf" is empty`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := tt.handler
			if handler == nil {
				handler = func(http.ResponseWriter, *http.Request) {
					t.Error("request must not be sent")
				}
			}

			ts := httptest.NewServer(handler)
			defer ts.Close()

			c := mail.NewClient(mail.Config{APIKey: tt.apiKey, BaseURL: ts.URL, FromEmail: "sales@flores.example"})
			res := c.Send(context.Background(), tt.message())

			assert.False(t, res.Success)
			assert.Equal(t, tt.wantStatus, res.StatusCode)
			assert.Equal(t, tt.wantError, res.Error)
		})
	}
}
