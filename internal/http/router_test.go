package http_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/flora/internal/app"
	"github.com/MrJamesThe3rd/flora/internal/config"
	floraHttp "github.com/MrJamesThe3rd/flora/internal/http"
	bootstrapHandler "github.com/MrJamesThe3rd/flora/internal/http/bootstrap"
	exportHandler "github.com/MrJamesThe3rd/flora/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/flora/internal/http/importcsv"
	invoiceHandler "github.com/MrJamesThe3rd/flora/internal/http/invoice"
	"github.com/MrJamesThe3rd/flora/internal/storage"
	"github.com/MrJamesThe3rd/flora/internal/storage/file"
)

const seed = `{
  "customers": [{"id": "c1", "name": "Bloom BV"}],
  "productos": [],
  "invoices": [
    {
      "id": "inv-1",
      "invoiceNumber": "001-045",
      "customerId": "c1",
      "legacyFlag": true,
      "items": [{"id": "a", "numberOfBoxes": 1, "numberOfBunches": 2, "bunches": [{"id": "b1", "stems": 25, "price": "0.30"}, {"id": "b2", "stems": 25, "price": "0.30"}]}]
    }
  ]
}`

type fixture struct {
	server *httptest.Server
	store  *file.Store

	pdfStatus  int
	mailStatus int
}

func newFixture(t *testing.T, secret string) *fixture {
	t.Helper()

	f := &fixture{pdfStatus: http.StatusOK, mailStatus: http.StatusAccepted}

	pdfServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if f.pdfStatus != http.StatusOK {
			w.WriteHeader(f.pdfStatus)
			return
		}

		w.Write([]byte("%PDF-1.7 fake"))
	}))
	t.Cleanup(pdfServer.Close)

	mailServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(f.mailStatus)

		if f.mailStatus >= 300 {
			w.Write([]byte(`{"errors":[{"message":"bad sender"}]}`))
		}
	}))
	t.Cleanup(mailServer.Close)

	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	f.store = file.New(path)

	var cfg config.Config
	cfg.PDF.URL = pdfServer.URL
	cfg.PDF.Timeout = time.Second
	cfg.Mail.APIKey = "SG.test"
	cfg.Mail.BaseURL = mailServer.URL
	cfg.Mail.FromEmail = "sales@flores.example"

	a := app.NewWithRepository(&cfg, f.store)

	router := floraHttp.New(
		floraHttp.Options{JWTSecret: secret, AllowedOrigins: []string{"*"}},
		a.Catalog,
		bootstrapHandler.NewHandler(a.Loader),
		invoiceHandler.NewHandler(a.Invoices, a.Export),
		importHandler.NewHandler(a.Importer),
		exportHandler.NewHandler(a.Export),
	)

	f.server = httptest.NewServer(router)
	t.Cleanup(f.server.Close)

	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, f.server.URL+path, r)
	require.NoError(t, err)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))

	return v
}

func TestRouter_Health(t *testing.T) {
	f := newFixture(t, "")

	resp := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_EntityLifecycle(t *testing.T) {
	f := newFixture(t, "")

	resp := f.do(t, http.MethodPost, "/api/v1/productos", `{"name":"Rose","id":"mine"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decode[map[string]string](t, resp)
	id := created["id"]
	require.NotEmpty(t, id)
	assert.NotEqual(t, "mine", id)

	resp = f.do(t, http.MethodGet, "/api/v1/productos", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []map[string]any{{"id": id, "name": "Rose"}}, decode[[]map[string]any](t, resp))

	resp = f.do(t, http.MethodPatch, "/api/v1/productos/"+id, `{"color":"red"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"id": id, "name": "Rose", "color": "red"}, decode[map[string]any](t, resp))

	resp = f.do(t, http.MethodDelete, "/api/v1/productos/"+id, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/v1/productos/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_EntityErrors(t *testing.T) {
	type testCase struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}

	tests := []testCase{
		{name: "PatchMissing", method: http.MethodPatch, path: "/api/v1/paises/404", body: `{"name":"x"}`, wantStatus: http.StatusNotFound},
		{name: "DeleteMissing", method: http.MethodDelete, path: "/api/v1/paises/404", wantStatus: http.StatusNoContent},
		{name: "MalformedBody", method: http.MethodPost, path: "/api/v1/paises", body: `{"name":`, wantStatus: http.StatusBadRequest},
		{name: "UnknownCollection", method: http.MethodGet, path: "/api/v1/bananas", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "")

			resp := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestRouter_RejectsNonJSONBodies(t *testing.T) {
	f := newFixture(t, "")

	resp, err := http.Post(f.server.URL+"/api/v1/paises", "text/plain", strings.NewReader("Ecuador"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

type draftBody struct {
	Draft struct {
		ID                string `json:"id"`
		FarmDepartureDate string `json:"farmDepartureDate"`
		LegacyFlag        bool   `json:"legacyFlag"`
		Items             []struct {
			ID         string `json:"id"`
			OriginalID string `json:"originalId"`
			Bunches    []struct {
				ID string `json:"id"`
			} `json:"bunches"`
		} `json:"items"`
	} `json:"draft"`
	Totals struct {
		Stems  int    `json:"stems"`
		Amount string `json:"amount"`
	} `json:"totals"`
}

func TestRouter_InvoiceEditAndSave(t *testing.T) {
	f := newFixture(t, "")

	resp := f.do(t, http.MethodGet, "/api/v1/invoices/inv-1/edit", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body draftBody
	require.NoError(t, json.Unmarshal(raw, &body))

	assert.Equal(t, "inv-1", body.Draft.ID)
	assert.Equal(t, time.Now().Format(time.DateOnly), body.Draft.FarmDepartureDate)
	assert.True(t, body.Draft.LegacyFlag)
	require.Len(t, body.Draft.Items, 1)
	assert.NotEqual(t, "a", body.Draft.Items[0].ID)
	assert.Equal(t, "a", body.Draft.Items[0].OriginalID)
	require.Len(t, body.Draft.Items[0].Bunches, 2)
	assert.Equal(t, 50, body.Totals.Stems)
	assert.Equal(t, "15", body.Totals.Amount)

	// Send the draft straight back.
	var envelope struct {
		Draft json.RawMessage `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))

	resp = f.do(t, http.MethodPut, "/api/v1/invoices/inv-1", string(envelope.Draft))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := f.store.Get(context.Background(), storage.Invoices, "inv-1")
	require.NoError(t, err)

	assert.Equal(t, true, stored["legacyFlag"])
	assert.Equal(t, time.Now().Format(time.DateOnly), stored["farmDepartureDate"])

	items := stored["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, body.Draft.Items[0].ID, items[0].(map[string]any)["id"])
	assert.NotContains(t, items[0], "originalId")

	bunch := items[0].(map[string]any)["bunches"].([]any)[0].(map[string]any)
	assert.Equal(t, json.Number("25"), bunch["stems"])
	assert.Equal(t, "0.30", bunch["price"])
}

func TestRouter_InvoiceAddAndList(t *testing.T) {
	f := newFixture(t, "")

	resp := f.do(t, http.MethodPost, "/api/v1/invoices", `{"invoiceNumber":"001-046","flightDate":"2026-02-01","items":[]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/v1/invoices", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	list := decode[[]map[string]any](t, resp)
	require.Len(t, list, 2)
	assert.Equal(t, "001-046", list[1]["invoiceNumber"])
	assert.Contains(t, list[1], "totals")
	assert.Equal(t, true, list[0]["legacyFlag"])
}

func TestRouter_InvoiceNotFound(t *testing.T) {
	f := newFixture(t, "")

	for _, path := range []string{"/api/v1/invoices/nope", "/api/v1/invoices/nope/edit", "/api/v1/invoices/nope/pdf"} {
		resp := f.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestRouter_InvoicePDF(t *testing.T) {
	f := newFixture(t, "")

	resp := f.do(t, http.MethodGet, "/api/v1/invoices/inv-1/pdf", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	content, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 fake", string(content))

	f.pdfStatus = http.StatusInternalServerError

	resp = f.do(t, http.MethodGet, "/api/v1/invoices/inv-1/pdf", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestRouter_InvoiceEmail(t *testing.T) {
	f := newFixture(t, "")

	resp := f.do(t, http.MethodPost, "/api/v1/invoices/inv-1/email", `{"to":[{"email":"buyer@bloom.example"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decode[map[string]any](t, resp)["success"])

	f.mailStatus = http.StatusBadRequest

	resp = f.do(t, http.MethodPost, "/api/v1/invoices/inv-1/email", `{"to":[{"email":"buyer@bloom.example"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	res := decode[map[string]any](t, resp)
	assert.Equal(t, false, res["success"])
	assert.Equal(t, "sendgrid http 400: bad sender", res["error"])

	resp = f.do(t, http.MethodPost, "/api/v1/invoices/inv-1/email", `{"to":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_Bootstrap(t *testing.T) {
	f := newFixture(t, "")

	resp := f.do(t, http.MethodGet, "/api/v1/bootstrap", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[struct {
		Collections map[string][]map[string]any `json:"collections"`
	}](t, resp)

	assert.Len(t, body.Collections, len(storage.Collections))
	assert.Len(t, body.Collections["invoices"], 1)
	assert.Empty(t, body.Collections["paises"])

	resp = f.do(t, http.MethodGet, "/api/v1/bootstrap?collections=customers,invoices", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body = decode[struct {
		Collections map[string][]map[string]any `json:"collections"`
	}](t, resp)
	assert.Len(t, body.Collections, 2)

	resp = f.do(t, http.MethodGet, "/api/v1/bootstrap?collections=bananas", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_ImportCSV(t *testing.T) {
	f := newFixture(t, "")

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "paises.csv")
	require.NoError(t, err)

	_, err = part.Write([]byte("Nombre;Código\nEcuador;EC\nColombia;CO\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(f.server.URL+"/api/v1/import/paises", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	countries, err := f.store.List(context.Background(), storage.Countries)
	require.NoError(t, err)
	assert.Len(t, countries, 2)
}

func TestRouter_ExportDownload(t *testing.T) {
	f := newFixture(t, "")

	resp := f.do(t, http.MethodPost, "/api/v1/export/download", `{"ids":["inv-1"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)

	var names []string
	for _, zf := range zr.File {
		names = append(names, zf.Name)
	}

	assert.ElementsMatch(t, []string{"invoice-001-045.pdf", "summary.txt"}, names)
}

func TestRouter_JWT(t *testing.T) {
	const secret = "s3cret"

	f := newFixture(t, secret)

	resp := f.do(t, http.MethodGet, "/api/v1/paises", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	sign := func(key string, exp time.Time) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "ana",
			ExpiresAt: jwt.NewNumericDate(exp),
		})

		s, err := tok.SignedString([]byte(key))
		require.NoError(t, err)

		return s
	}

	type testCase struct {
		name       string
		token      string
		wantStatus int
	}

	tests := []testCase{
		{name: "Valid", token: sign(secret, time.Now().Add(time.Hour)), wantStatus: http.StatusOK},
		{name: "WrongKey", token: sign("other", time.Now().Add(time.Hour)), wantStatus: http.StatusUnauthorized},
		{name: "Expired", token: sign(secret, time.Now().Add(-time.Hour)), wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, f.server.URL+"/api/v1/paises", nil)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+tt.token)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}

	resp = f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
