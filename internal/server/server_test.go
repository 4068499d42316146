package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fjacquet/statement-categorizer/internal/categorizer"
	"fjacquet/statement-categorizer/internal/factory"
	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/models"
	"fjacquet/statement-categorizer/internal/pdfparser"
	"fjacquet/statement-categorizer/internal/ratelimit"
	"fjacquet/statement-categorizer/internal/registry"
	"fjacquet/statement-categorizer/internal/session"
	"fjacquet/statement-categorizer/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	server *Server
	state  *session.State
	rules  *store.MockRuleStore
	logger *logging.MockLogger
}

func newFixture(t *testing.T, lookup categorizer.MerchantLookup, cfg Config) *fixture {
	t.Helper()
	logger := logging.NewMockLogger()
	cat := categorizer.NewCategorizer(categorizer.NewEngine(registry.Default()), logger)
	rs := &store.MockRuleStore{}
	state := session.New(cat, rs, logger)

	var esc *categorizer.Escalator
	if lookup != nil {
		esc = categorizer.NewEscalator(lookup, ratelimit.NewDispatcherWithInterval(0), registry.Default(),
			categorizer.EscalationConfig{}, logger)
	}

	s := New(cfg, Deps{
		State:       state,
		Categorizer: cat,
		Escalator:   esc,
		Parsers:     factory.Options{Extractor: pdfparser.NewMockExtractor("nothing useful here", nil), Year: 2024},
		Logger:      logger,
	})
	return &fixture{server: s, state: state, rules: rs, logger: logger}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func upload(t *testing.T, f *fixture, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/convert", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestClientID(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"first forwarded entry", "203.0.113.7, 10.0.0.1", "10.0.0.1:5555", "203.0.113.7"},
		{"remote host", "", "192.0.2.1:1234", "192.0.2.1"},
		{"remote without port", "", "192.0.2.1", "192.0.2.1"},
		{"nothing known", "", "", "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, ClientID(req))
		})
	}
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, nil, Config{APILimiter: ratelimit.NewFixedWindow(2, time.Minute)})

	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/rules", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		f.server.Handler().ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("198.51.100.1").Code)
	assert.Equal(t, http.StatusOK, call("198.51.100.1").Code)

	rec := call("198.51.100.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "Too many requests. Please try again later.", body["error"])
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, call("198.51.100.2").Code)
	assert.True(t, f.logger.HasEntry("WARN", "Rate limit exceeded"))
}

func TestConvert_CSV(t *testing.T) {
	f := newFixture(t, nil, Config{})
	csv := "Date,Description,Amount,Type\n2024-11-02,SHELL OIL,-45.00,debit\n2024-11-03,PAYROLL DEPOSIT,2500.00,credit\n"

	rec := upload(t, f, "statement.csv", []byte(csv))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Success      bool                     `json:"success"`
		Transactions []models.Transaction     `json:"transactions"`
		Metadata     models.StatementMetadata `json:"metadata"`
	}
	decodeBody(t, rec, &body)
	assert.True(t, body.Success)
	require.Len(t, body.Transactions, 2)
	assert.Equal(t, "Gas", body.Transactions[0].Category)
	assert.NotEmpty(t, body.Transactions[0].ID)
	assert.Equal(t, 2, body.Metadata.TotalTransactions)
	assert.Len(t, f.state.Transactions(), 2)
}

func TestConvert_Errors(t *testing.T) {
	f := newFixture(t, nil, Config{})

	rec := upload(t, f, "notes.txt", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(t, f, "statement.pdf", []byte("%PDF-1.4 fake"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body errorResponse
	decodeBody(t, rec, &body)
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Error)
}

func TestConvert_UploadLimit(t *testing.T) {
	f := newFixture(t, nil, Config{UploadLimiter: ratelimit.NewFixedWindow(1, time.Minute)})
	csv := []byte("Date,Description,Amount\n2024-11-02,SHELL OIL,-45.00\n")

	assert.Equal(t, http.StatusOK, upload(t, f, "a.csv", csv).Code)
	assert.Equal(t, http.StatusTooManyRequests, upload(t, f, "a.csv", csv).Code)
}

func TestCategorize(t *testing.T) {
	f := newFixture(t, nil, Config{})

	rec := f.do(t, http.MethodPost, "/api/categorize", map[string]interface{}{"description": "SHELL OIL 123", "amount": -40})
	require.Equal(t, http.StatusOK, rec.Code)
	var res models.CategorizationResult
	decodeBody(t, rec, &res)
	assert.Equal(t, "Gas", res.Category)

	_, err := f.state.AddMerchantRule("SHELL OIL", "Auto")
	require.NoError(t, err)
	rec = f.do(t, http.MethodPost, "/api/categorize", map[string]interface{}{"description": "SHELL OIL 123", "amount": -40})
	decodeBody(t, rec, &res)
	assert.Equal(t, "Auto", res.Category)
	assert.Equal(t, models.SourceUserHistory, res.Source)
}

func TestCategorize_BadBody(t *testing.T) {
	f := newFixture(t, nil, Config{})
	req := httptest.NewRequest(http.MethodPost, "/api/categorize", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchCategorize_NotConfigured(t *testing.T) {
	f := newFixture(t, nil, Config{})

	rec := f.do(t, http.MethodPost, "/api/batch-categorize", map[string]interface{}{
		"transactions": []models.Transaction{{ID: "1", Description: "OYATO AFRICAN FOOD MARKET"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var body batchResponse
	decodeBody(t, rec, &body)
	assert.False(t, body.Success)
	assert.Equal(t, "AI categorization not configured", body.Error)
	assert.NotNil(t, body.Categorizations)
	assert.Empty(t, body.Categorizations)
}

func TestBatchCategorize(t *testing.T) {
	lookup := categorizer.NewMockLookup()
	lookup.Func = func(_ context.Context, merchant string) (*models.MerchantInfo, error) {
		return &models.MerchantInfo{Name: merchant, SuggestedCategory: "Grocery", Confidence: 0.9}, nil
	}
	f := newFixture(t, lookup, Config{})

	rec := f.do(t, http.MethodPost, "/api/batch-categorize", map[string]interface{}{
		"transactions": []models.Transaction{
			{ID: "1", Description: "OYATO AFRICAN FOOD MARKET", Category: models.CategoryUncategorized, NeedsReview: true},
			{ID: "2", Description: "STARBUCKS", Category: "Meals & entertainment", Confidence: 0.9},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var body batchResponse
	decodeBody(t, rec, &body)
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Processed)
	assert.Equal(t, 0, body.Remaining)
	require.Len(t, body.Categorizations, 1)
	assert.Equal(t, "1", body.Categorizations[0].ID)
	assert.Equal(t, "Grocery", body.Categorizations[0].Category)
	assert.Equal(t, models.SourceAI, body.Categorizations[0].Source)
}

func TestBatchCategorize_MissingTransactions(t *testing.T) {
	f := newFixture(t, nil, Config{})
	rec := f.do(t, http.MethodPost, "/api/batch-categorize", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchMerchant(t *testing.T) {
	f := newFixture(t, nil, Config{})

	rec := f.do(t, http.MethodPost, "/api/search-merchant", map[string]string{"merchantName": "Oyato Food Market"})
	require.Equal(t, http.StatusOK, rec.Code)
	var body searchResponse
	decodeBody(t, rec, &body)
	assert.True(t, body.Success)
	require.NotNil(t, body.MerchantInfo)
	assert.Equal(t, "Grocery", body.MerchantInfo.SuggestedCategory)

	rec = f.do(t, http.MethodPost, "/api/search-merchant", map[string]string{"merchantName": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReport(t *testing.T) {
	f := newFixture(t, nil, Config{})

	rec := f.do(t, http.MethodPost, "/api/report", map[string]interface{}{
		"transactions": []map[string]interface{}{
			{"id": "1", "date": "2024-03-01", "description": "CLIENT", "amount": "1000", "type": "credit", "category": "Income"},
			{"id": "2", "date": "2024-03-02", "description": "SHELL", "amount": "-50", "type": "debit", "category": "Gas"},
		},
		"fiscalYearStartMonth": 4,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rep models.CorporateReport
	decodeBody(t, rec, &rep)
	assert.Equal(t, "950", rep.Summary.NetIncome.String())
	assert.Equal(t, 4, rep.FiscalYearStartMonth)
	assert.Len(t, rep.Categories, 2)

	rec = f.do(t, http.MethodPost, "/api/report", map[string]interface{}{"fiscalYearStartMonth": 13})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRules(t *testing.T) {
	f := newFixture(t, nil, Config{})

	rec := f.do(t, http.MethodPost, "/api/rules", map[string]string{"merchantName": "Oyato", "category": "grocery"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, f.rules.Saves)

	rec = f.do(t, http.MethodGet, "/api/rules", nil)
	var body rulesResponse
	decodeBody(t, rec, &body)
	require.Len(t, body.Rules, 1)
	assert.Equal(t, "Grocery", body.Rules[0].Category)

	rec = f.do(t, http.MethodPost, "/api/rules", map[string]string{"merchantName": "Oyato"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/rules/oyato", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodDelete, "/api/rules/oyato", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}

func TestRun_StopsOnCancel(t *testing.T) {
	f := newFixture(t, nil, Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.server.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
