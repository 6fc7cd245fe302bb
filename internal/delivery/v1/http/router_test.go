package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/feedconv/internal/catalog"
	"github.com/DRSN-tech/feedconv/internal/cfg"
	"github.com/DRSN-tech/feedconv/internal/command"
	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/internal/usecase"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConverter struct {
	lastConvert *usecase.ConvertReq
	lastUpload  *usecase.UploadReq
	err         error
	runsErr     error
}

func (s *stubConverter) ListSuppliers() []usecase.SupplierInfo {
	return []usecase.SupplierInfo{{Name: "Maxima", Description: "toys", Format: domain.FormatMaxima, Configured: true}}
}

func (s *stubConverter) result(source string) *usecase.ConversionResult {
	return &usecase.ConversionResult{
		Report: &usecase.ConversionReport{
			Source:        source,
			Format:        domain.FormatMaxima,
			ParsedCount:   2,
			FilteredCount: 1,
			Summary:       catalog.Summary{TotalProducts: 1, TotalStock: 4},
			Producers:     []string{"Maxima"},
		},
		CSV:      []byte("product_id;ean\n1;2\n"),
		FileName: "maxima_20240101_000000.csv",
	}
}

func (s *stubConverter) Convert(_ context.Context, req *usecase.ConvertReq) (*usecase.ConversionResult, error) {
	s.lastConvert = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result(req.Supplier), nil
}

func (s *stubConverter) ConvertUpload(_ context.Context, req *usecase.UploadReq) (*usecase.ConversionResult, error) {
	s.lastUpload = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result(req.FileName), nil
}

func (s *stubConverter) ListRuns(context.Context, int) ([]domain.ConversionRun, error) {
	if s.runsErr != nil {
		return nil, s.runsErr
	}
	return []domain.ConversionRun{*domain.NewConversionRun("Maxima", domain.OriginSupplier, domain.FormatMaxima)}, nil
}

func (s *stubConverter) GetExport(_ context.Context, id uuid.UUID) (*usecase.ExportFile, error) {
	return nil, e.Wrap(id.String(), e.ErrExportNotFound)
}

type stubAPI struct{}

func (stubAPI) Call(context.Context, string, map[string]any) (map[string]any, error) {
	return map[string]any{"status": "SUCCESS", "categories": []any{}}, nil
}

func newTestServer(t *testing.T, conv *stubConverter, password string) *httptest.Server {
	t.Helper()

	log := logger.NewNopLogger()
	mux := chi.NewRouter()
	NewRouter(mux, NewMetrics(), log).Init(Deps{
		Converter:      conv,
		Commands:       usecase.NewCommandUC(command.NewTranslator(1), stubAPI{}, log),
		Auth:           usecase.NewAuthUC(&cfg.AuthCfg{Password: password, SessionSecret: []byte("secret"), SessionTTL: time.Hour}),
		UploadMaxBytes: 1 << 20,
		Health: map[string]HealthFunc{
			"postgres": func(*http.Request) error { return nil },
		},
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestConvertReport(t *testing.T) {
	conv := &stubConverter{}
	srv := newTestServer(t, conv, "")

	resp := postJSON(t, srv.URL+"/api/v1/feeds/convert", map[string]any{"supplier": "Maxima", "producer": " max ", "min_stock": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	report := decodeBody[ReportResponse](t, resp)
	assert.Equal(t, "Maxima", report.Source)
	assert.Equal(t, "Maxima", report.Format)
	assert.Equal(t, 2, report.ParsedCount)
	assert.Equal(t, "maxima_20240101_000000.csv", report.FileName)

	require.NotNil(t, conv.lastConvert)
	assert.Equal(t, "max", conv.lastConvert.Filter.Producer)
	require.NotNil(t, conv.lastConvert.Filter.MinStock)
	assert.Equal(t, 3, *conv.lastConvert.Filter.MinStock)
}

func TestConvertCSVOutput(t *testing.T) {
	srv := newTestServer(t, &stubConverter{}, "")

	resp := postJSON(t, srv.URL+"/api/v1/feeds/convert?output=csv", map[string]any{"supplier": "Maxima"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "maxima_20240101_000000.csv")
}

func TestConvertErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		body   map[string]any
		status int
		kind   string
	}{
		{"unknown supplier", &domain.UnknownSupplierError{Name: "Nope"}, map[string]any{"supplier": "Nope"}, http.StatusNotFound, "unknown_supplier"},
		{"fetch", &domain.FetchError{Supplier: "A", URL: "https://secret.example/?token=x", Err: errors.New("timeout")}, map[string]any{"supplier": "A"}, http.StatusBadGateway, "fetch_error"},
		{"parse", &domain.ParseError{Err: errors.New("unexpected EOF")}, map[string]any{"supplier": "A"}, http.StatusUnprocessableEntity, "parse_error"},
		{"missing supplier", nil, map[string]any{}, http.StatusBadRequest, "bad_request"},
		{"negative min stock", nil, map[string]any{"supplier": "A", "min_stock": -1}, http.StatusBadRequest, "bad_request"},
		{"not configured", e.Wrap("feed url", e.ErrNotConfigured), map[string]any{"supplier": "A"}, http.StatusServiceUnavailable, "not_configured"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, &stubConverter{err: tc.err}, "")

			resp := postJSON(t, srv.URL+"/api/v1/feeds/convert", tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)

			body := decodeBody[ErrorResponse](t, resp)
			assert.Equal(t, tc.kind, body.Kind)
			assert.NotContains(t, body.Message, "token=")
		})
	}
}

func TestConvertFetchErrorNamesSupplier(t *testing.T) {
	fetchErr := &domain.FetchError{
		Supplier: "Maxima",
		URL:      "https://secret.example/feed?token=x",
		Err:      &url.Error{Op: "Get", URL: "https://secret.example/feed?token=x", Err: errors.New("connection refused")},
	}
	srv := newTestServer(t, &stubConverter{err: fetchErr}, "")

	resp := postJSON(t, srv.URL+"/api/v1/feeds/convert", map[string]any{"supplier": "Maxima"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	body := decodeBody[ErrorResponse](t, resp)
	assert.Equal(t, `feed fetch failed for supplier "Maxima": connection refused`, body.Message)
	assert.NotContains(t, body.Message, "secret.example")
}

func TestUpload(t *testing.T) {
	conv := &stubConverter{}
	srv := newTestServer(t, conv, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "feed.xml")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("<products><product/></products>"))
	require.NoError(t, mw.WriteField("min_stock", "2"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/api/v1/feeds/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, conv.lastUpload)
	assert.Equal(t, "feed.xml", conv.lastUpload.FileName)
	assert.Equal(t, 2, *conv.lastUpload.Filter.MinStock)
}

func TestUploadRejectsNonMultipart(t *testing.T) {
	srv := newTestServer(t, &stubConverter{}, "")

	resp, err := http.Post(srv.URL+"/api/v1/feeds/upload", "application/xml", strings.NewReader("<x/>"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCommands(t *testing.T) {
	srv := newTestServer(t, &stubConverter{}, "")

	resp := postJSON(t, srv.URL+"/api/v1/baselinker/commands", map[string]any{"command": "get categories"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[CommandResponse](t, resp)
	assert.Equal(t, "getInventoryCategories", body.Method)
	require.NotNil(t, body.Table)
	assert.Equal(t, []string{"ID", "Name", "Parent ID"}, body.Table.Columns)

	resp = postJSON(t, srv.URL+"/api/v1/baselinker/commands", map[string]any{"command": "dance"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	errBody := decodeBody[ErrorResponse](t, resp)
	assert.Equal(t, "unrecognized_command", errBody.Kind)
	assert.Contains(t, errBody.Message, "dance")
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t, &stubConverter{}, "pw")

	resp, err := http.Get(srv.URL + "/api/v1/suppliers")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/v1/auth/login", map[string]any{"password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/v1/auth/login", map[string]any{"password": "pw"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decodeBody[LoginResponse](t, resp)
	require.NotEmpty(t, login.Token)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/suppliers", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/api/v1/baselinker/quick-actions", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: cookie.Value})
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestRuns(t *testing.T) {
	srv := newTestServer(t, &stubConverter{}, "")

	resp, err := http.Get(srv.URL + "/api/v1/runs?limit=5")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	runs := decodeBody[[]RunResponse](t, resp)
	require.Len(t, runs, 1)
	assert.Equal(t, "supplier", runs[0].Origin)

	resp2, err := http.Get(srv.URL + "/api/v1/runs/not-a-uuid/export")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)

	resp3, err := http.Get(srv.URL + "/api/v1/runs/" + uuid.NewString() + "/export")
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp3.StatusCode)
}

func TestRunsNotConfigured(t *testing.T) {
	srv := newTestServer(t, &stubConverter{runsErr: e.Wrap("conversion history", e.ErrNotConfigured)}, "")

	resp, err := http.Get(srv.URL + "/api/v1/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, &stubConverter{}, "pw")

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	health := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "ok", health["postgres"])

	resp2, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp2.Body)
	assert.Contains(t, buf.String(), "feedconv_http_requests_total")
}
