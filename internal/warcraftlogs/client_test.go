package warcraftlogs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/raidsplit/internal/auth"
	"github.com/mmynk/raidsplit/internal/metrics"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

func TestParseReportCode(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "aBc123XyZ", want: "aBc123XyZ"},
		{input: "  aBc123XyZ  ", want: "aBc123XyZ"},
		{input: "https://www.warcraftlogs.com/reports/aBc123XyZ", want: "aBc123XyZ"},
		{input: "https://classic.warcraftlogs.com/reports/aBc123XyZ#fight=3", want: "aBc123XyZ"},
		{input: "https://fresh.warcraftlogs.com/reports/Q1w2E3?type=damage-done", want: "Q1w2E3"},
		{input: "", wantErr: true},
		{input: "not a code!", wantErr: true},
		{input: "https://example.com/reports/", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseReportCode(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidReportCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClientQuery(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"reportData":{"report":{"title":"Naxx"}}}}`))
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	c := NewClient(srv.URL, staticToken("tok"), WithMetrics(m))

	var env envelope
	require.NoError(t, c.Query(context.Background(), "report", reportQuery, nil, &env))
	assert.Equal(t, "Bearer tok", gotAuth)
	require.NotNil(t, env.ReportData.Report)
	assert.Equal(t, "Naxx", env.ReportData.Report.Title)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderQueries.WithLabelValues("report", metrics.OutcomeOK)))
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"Unauthenticated."}`, wantErr: auth.ErrInvalidToken},
		{name: "server error", status: http.StatusBadGateway, body: `bad gateway`, wantErr: ErrUpstream},
		{name: "graphql errors", status: http.StatusOK, body: `{"errors":[{"message":"This report does not exist."}]}`, wantErr: ErrUpstream},
		{name: "null data", status: http.StatusOK, body: `{"data":null}`, wantErr: ErrUpstream},
		{name: "garbage", status: http.StatusOK, body: `<html>`, wantErr: ErrUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			reg := prometheus.NewRegistry()
			m := metrics.New(reg)
			c := NewClient(srv.URL, staticToken("tok"), WithMetrics(m))

			var env envelope
			err := c.Query(context.Background(), "report", reportQuery, nil, &env)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderQueries.WithLabelValues("report", metrics.OutcomeError)))
		})
	}
}

func TestClientMissingToken(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", auth.Forwarding{})
	var env envelope
	err := c.Query(context.Background(), "report", reportQuery, nil, &env)
	assert.ErrorIs(t, err, auth.ErrMissingToken)
}
