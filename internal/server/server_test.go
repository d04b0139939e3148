package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachdehooge/damage-map/internal/fetcher"
	"github.com/Zachdehooge/damage-map/internal/generator"
	"github.com/Zachdehooge/damage-map/internal/popup"
	"github.com/Zachdehooge/damage-map/internal/report"
	"github.com/Zachdehooge/damage-map/internal/store"
)

const fireFeature = `{"type":"Feature","geometry":{"type":"Point","coordinates":[139.7,35.7]},
	"properties":{"health_status":"重傷","rescue_needed":true,"damage":"火災","people_count":3}}`

func newTestServer(t *testing.T, st store.Store) (*Server, *httptest.Server) {
	t.Helper()
	s, err := New(st, Options{
		Map: generator.Options{
			Locale: popup.Japanese,
			Legend: true,
			Center: [2]float64{35.6895, 139.6917},
			Zoom:   13,
		},
		CORSOrigins: []string{"*"},
	})
	require.NoError(t, err)
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(func() {
		s.Shutdown()
		ts.Close()
	})
	return s, ts
}

func postFeature(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url+"/api/reports", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestDataEmpty(t *testing.T) {
	_, ts := newTestServer(t, store.NewMemory())

	resp, err := http.Get(ts.URL + "/data")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(body))
}

func TestCreateThenFetch(t *testing.T) {
	_, ts := newTestServer(t, store.NewMemory())

	resp := postFeature(t, ts.URL, fireFeature)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created report.Feature
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotEmpty(t, created.Properties["id"])

	// The served /data feed is what the fetcher consumes.
	reports, err := fetcher.FetchReports(context.Background(), ts.URL+"/data")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, report.HealthSevere, reports[0].Health())
	assert.Equal(t, report.RescueYes, reports[0].Rescue)
	assert.Equal(t, 3, *reports[0].PeopleCount)
}

func TestCreateRejectsBadFeature(t *testing.T) {
	_, ts := newTestServer(t, store.NewMemory())

	resp := postFeature(t, ts.URL, `{"type":"Feature","geometry":null,"properties":{}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postFeature(t, ts.URL, `nope`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateOnReadOnlyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.geojson")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"FeatureCollection","features":[]}`), 0o644))
	st, err := store.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	_, ts := newTestServer(t, st)
	resp := postFeature(t, ts.URL, fireFeature)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMapPage(t *testing.T) {
	_, ts := newTestServer(t, store.NewMemory())
	postFeature(t, ts.URL, fireFeature)

	resp, err := http.Get(ts.URL + "/map")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	page := string(body)
	assert.Contains(t, page, `"color":"red"`)
	assert.Contains(t, page, "はい")
	assert.Contains(t, page, "new WebSocket")

	resp, err = http.Get(ts.URL + "/map?lang=en")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `<html lang="en">`)
}

func TestLivePush(t *testing.T) {
	s, ts := newTestServer(t, store.NewMemory())

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		return len(s.hub.clients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	postFeature(t, ts.URL, fireFeature)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var markers []generator.MapMarker
	require.NoError(t, json.Unmarshal(data, &markers))
	require.Len(t, markers, 1)
	assert.Equal(t, "red", markers[0].Color)
	assert.Contains(t, markers[0].IconHTML, "🔥")
}

func TestMetricsAndHealth(t *testing.T) {
	_, ts := newTestServer(t, store.NewMemory())
	postFeature(t, ts.URL, fireFeature)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `damage_map_reports_received_total{source="api"} 1`)
}

func TestWebhookMountedOnlyWithCredentials(t *testing.T) {
	_, ts := newTestServer(t, store.NewMemory())
	resp, err := http.Post(ts.URL+"/webhook", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)

	s, err := New(store.NewMemory(), Options{LineChannelSecret: "s", LineChannelAccessToken: "t"})
	require.NoError(t, err)
	ts2 := httptest.NewServer(s.Routes())
	defer ts2.Close()

	resp, err = http.Post(ts2.URL+"/webhook", "application/json", strings.NewReader(`{"events":[]}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "unsigned body is rejected")
}
