package main

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testServer(t *testing.T, edit func(*Config)) *Server {
	t.Helper()
	cfg := DefaultConfig
	if edit != nil {
		edit(&cfg)
	}
	return NewServer(cfg, nil, nil)
}

func postEvaluate(t *testing.T, s *Server, body string) (*httptest.ResponseRecorder, EvaluateResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var resp EvaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestEvaluateBell(t *testing.T) {
	s := testServer(t, nil)
	rec, resp := postEvaluate(t, s, bellJSON)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	assert.Equal(t, bellState(t).ProbabilitiesReport(true), resp.Message)
	assert.Empty(t, resp.Warnings)
}

func TestEvaluateEchoesRequestID(t *testing.T) {
	s := testServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(bellJSON))
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))
}

func TestEvaluateWarnings(t *testing.T) {
	s := testServer(t, nil)
	rec, resp := postEvaluate(t, s, `[2, [{"gate": "Q", "link": null}]]`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, " 1.000+0.000i|00>\t-> 100.0%\n", resp.Message)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "column 0")
	assert.Contains(t, resp.Warnings[0], "unknown gate")
}

func TestEvaluateRejects(t *testing.T) {
	tests := []struct {
		name   string
		edit   func(*Config)
		body   string
		status int
		msg    string
	}{
		{"malformed json", nil, `[2, [`, http.StatusBadRequest, "malformed circuit"},
		{"no qubits", nil, `[0]`, http.StatusBadRequest, "invalid qubit count"},
		{"above the register ceiling", func(c *Config) { c.Engine.MaxQubits = 0 }, `[64]`, http.StatusBadRequest, "want 1 to 30"},
		{"too many qubits", nil, `[9]`, http.StatusBadRequest, "exceeds the limit of 8"},
		{
			"body too large",
			func(c *Config) { c.Server.MaxBodyBytes = 16 },
			bellJSON,
			http.StatusRequestEntityTooLarge,
			"body exceeds 16 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testServer(t, tt.edit)
			rec, resp := postEvaluate(t, s, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.True(t, strings.HasPrefix(resp.Message, "SERVER-SIDE ERROR: "), resp.Message)
			assert.Contains(t, resp.Message, tt.msg)
		})
	}
}

func TestEvaluateMethodNotAllowed(t *testing.T) {
	s := testServer(t, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/evaluate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthz(t *testing.T) {
	s := testServer(t, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := testServer(t, nil)
	postEvaluate(t, s, bellJSON)
	postEvaluate(t, s, `[2, [{"gate": "H", "link": 0}, {"gate": "H", "link": 0}]]`)
	postEvaluate(t, s, `[0]`)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `qgridsim_requests_total{status="OK"} 2`)
	assert.Contains(t, body, `qgridsim_requests_total{status="Bad Request"} 1`)
	assert.Contains(t, body, `qgridsim_operations_total{gate="CNOT"} 1`)
	assert.Contains(t, body, `qgridsim_operations_total{gate="H"} 1`)
	assert.Contains(t, body, `qgridsim_issues_total{reason="unmatched_group"} 1`)
	assert.Contains(t, body, "qgridsim_circuit_qubits_count 2")
	assert.Contains(t, body, "go_goroutines")
}

func TestMetricsCountOnlyAppliedOperations(t *testing.T) {
	s := testServer(t, nil)
	rec, resp := postEvaluate(t, s, `[2, [{"gate": "X", "link": null}, {"gate": "X", "link": null}, {"gate": "X", "link": null}]]`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Warnings, 1)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `qgridsim_operations_total{gate="X"} 2`)
	assert.Contains(t, body, `qgridsim_issues_total{reason="out_of_range"} 1`)
}

func TestCORS(t *testing.T) {
	s := testServer(t, func(c *Config) {
		c.Server.AllowedOrigins = []string{"http://editor.example"}
	})

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/evaluate", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		return rec
	}

	rec := preflight("http://editor.example")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://editor.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST", rec.Header().Get("Access-Control-Allow-Methods"))

	rec = preflight("http://elsewhere.example")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(bellJSON))
	req.Header.Set("Origin", "http://editor.example")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://editor.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := testServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "ok\n", string(body))

	cancel()
	assert.NoError(t, <-done)

	_, err = client.Get("http://" + ln.Addr().String() + "/healthz")
	assert.Error(t, err)
}
