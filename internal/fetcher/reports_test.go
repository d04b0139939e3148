package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachdehooge/damage-map/internal/report"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/data", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchReports(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[139.7,35.7]},
		 "properties":{"health_status":"重傷","rescue_needed":true,"damage":"火災","people_count":3}}]}`)

	reports, err := FetchReports(context.Background(), srv.URL+"/data")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, report.HealthSevere, reports[0].Health())
	assert.Equal(t, report.DamageFire, reports[0].DamageType())
}

func TestFetchReportsEmpty(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"type":"FeatureCollection","features":[]}`)

	reports, err := FetchReports(context.Background(), srv.URL+"/data")
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestFetchReportsHTTPError(t *testing.T) {
	srv := serve(t, http.StatusInternalServerError, `db down`)

	_, err := FetchReports(context.Background(), srv.URL+"/data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestFetchReportsBadJSON(t *testing.T) {
	srv := serve(t, http.StatusOK, `not json`)

	_, err := FetchReports(context.Background(), srv.URL+"/data")
	assert.Error(t, err)
}

func TestFetchReportsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/data"
	srv.Close()

	_, err := NewClient(url, time.Second).FetchReports(context.Background())
	assert.Error(t, err)
}
