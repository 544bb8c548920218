package mirror

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"statusmirror/internal/domain"
	"statusmirror/internal/logger"
	"statusmirror/internal/sources/kuma"
)

// statusPageHTML embeds the payload the way current upstream versions emit
// it: a JS object literal, not strict JSON.
const statusPageHTML = `<html><body>
<div id="app"></div>
<script>
window.preloadData = {
	config: {slug: 'main', title: 'Example Status', description: 'All systems', icon: '/i.png', theme: 'dark', published: true,},
	maintenanceList: [
		{id: 1, title: 'DB upgrade', timeslotList: [{startDate: '2023-05-10 01:00:00', endDate: '2023-05-10 03:00:00'}],},
	],
	publicGroupList: [
		{id: 1, name: 'Core', monitorList: [{id: 11, name: 'API', type: 'http'}]},
	],
};
</script>
</body></html>`

const heartbeatBody = `{
	"heartbeatList": {"11": [{"status": 1, "time": "2023-05-09 10:00:00", "ping": 3.2}]},
	"uptimeList": {"11_24": 0.99}
}`

// fixedNow sits before the maintenance window above, so its derived status is
// "scheduled".
var fixedNow = time.Date(2023, 5, 9, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, handler http.Handler) (*Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	base := &domain.BaseConfig{
		BaseURL:       srv.URL,
		DefaultPageID: "main",
		Pages:         []domain.PageConfig{{ID: "main", Name: "Main"}},
		Features:      domain.FeatureFlags{ShowIncident: true, ShowMaintenance: true},
	}

	svc := New(Options{
		Base:    base,
		Fetcher: kuma.NewFetcher(kuma.FetcherOptions{BaseURL: srv.URL, Timeout: 2 * time.Second}),
		Logger:  logger.NewNop(),
		TimeNow: func() time.Time { return fixedNow },
	})
	return svc, srv
}

func upstreamHandler(statusHTML, heartbeat string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status/main", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(statusHTML))
	})
	mux.HandleFunc("/api/status-page/heartbeat/main", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(heartbeat))
	})
	return mux
}

func TestGetGlobalConfig(t *testing.T) {
	svc, srv := newTestService(t, upstreamHandler(statusPageHTML, heartbeatBody))

	gc, err := svc.GetGlobalConfig(context.Background(), "main")
	if err != nil {
		t.Fatalf("GetGlobalConfig() error = %v", err)
	}
	if !gc.Success {
		t.Error("Success = false, want true")
	}
	if gc.Config.Theme != "dark" {
		t.Errorf("Theme = %q, want dark", gc.Config.Theme)
	}
	if gc.Config.SiteMeta.Title != "Example Status" {
		t.Errorf("Title = %q", gc.Config.SiteMeta.Title)
	}
	if gc.Config.HTMLEndpoint != srv.URL+"/status/main" {
		t.Errorf("HTMLEndpoint = %q", gc.Config.HTMLEndpoint)
	}
	if len(gc.MaintenanceList) != 1 {
		t.Fatalf("MaintenanceList = %+v", gc.MaintenanceList)
	}
	if gc.MaintenanceList[0].Status != domain.StatusScheduled {
		t.Errorf("maintenance status = %q, want scheduled", gc.MaintenanceList[0].Status)
	}
}

func TestGetGlobalConfigMalformedMaintenanceDegrades(t *testing.T) {
	html := `<html><body><script>
		window.preloadData = {
			config: {slug: 'main', title: 'T', description: 'D', icon: '/i', theme: 'light'},
			maintenanceList: {not: 'a sequence'},
		};
	</script></body></html>`
	svc, _ := newTestService(t, upstreamHandler(html, heartbeatBody))

	gc, err := svc.GetGlobalConfig(context.Background(), "main")
	if err != nil {
		t.Fatalf("GetGlobalConfig() error = %v", err)
	}
	if gc.Success {
		t.Error("Success = true, want false after degradation")
	}
	if len(gc.MaintenanceList) != 0 {
		t.Errorf("MaintenanceList = %+v, want empty", gc.MaintenanceList)
	}
	// The config itself is intact; only the maintenance data degraded.
	if gc.Config.SiteMeta.Title != "T" {
		t.Errorf("Title = %q", gc.Config.SiteMeta.Title)
	}
}

func TestGetGlobalConfigInvalidConfigServesPlaceholder(t *testing.T) {
	html := `<html><body><script>
		window.preloadData = {config: {title: 'no slug here'}};
	</script></body></html>`
	svc, _ := newTestService(t, upstreamHandler(html, heartbeatBody))

	gc, err := svc.GetGlobalConfig(context.Background(), "main")
	if err != nil {
		t.Fatalf("GetGlobalConfig() error = %v", err)
	}
	if gc.Success {
		t.Error("Success = true, want false for placeholder")
	}
	if gc.Config.Theme != "system" {
		t.Errorf("Theme = %q, want system", gc.Config.Theme)
	}
	if gc.Config.SiteMeta.Icon != domain.DefaultIcon {
		t.Errorf("Icon = %q, want %q", gc.Config.SiteMeta.Icon, domain.DefaultIcon)
	}
	if gc.MaintenanceList == nil {
		t.Error("MaintenanceList must be an empty list, not null")
	}
}

func TestGetGlobalConfigFetchErrorPropagates(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := svc.GetGlobalConfig(context.Background(), "main")
	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error type = %T, want *domain.FetchError", err)
	}
	if fetchErr.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d", fetchErr.Status)
	}
}

func TestGetGlobalConfigPayloadNotFoundPropagates(t *testing.T) {
	svc, _ := newTestService(t, upstreamHandler("<html><body>nothing here</body></html>", heartbeatBody))

	_, err := svc.GetGlobalConfig(context.Background(), "main")
	var notFound *domain.PayloadNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error type = %T, want *domain.PayloadNotFoundError", err)
	}
}

func TestGetMonitor(t *testing.T) {
	svc, _ := newTestService(t, upstreamHandler(statusPageHTML, heartbeatBody))

	md, err := svc.GetMonitor(context.Background(), "main")
	if err != nil {
		t.Fatalf("GetMonitor() error = %v", err)
	}
	if !md.Success {
		t.Error("Success = false, want true")
	}
	if len(md.MonitorGroups) != 1 || md.MonitorGroups[0].Name != "Core" {
		t.Errorf("MonitorGroups = %+v", md.MonitorGroups)
	}
	beats := md.Data.HeartbeatList[11]
	if len(beats) != 1 || beats[0].Status != 1 {
		t.Errorf("HeartbeatList = %+v", md.Data.HeartbeatList)
	}
	if md.Data.UptimeList["11_24"] != 0.99 {
		t.Errorf("UptimeList = %+v", md.Data.UptimeList)
	}
}

func TestGetMonitorHeartbeatErrorPropagates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/status/main", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(statusPageHTML))
	})
	mux.HandleFunc("/api/status-page/heartbeat/main", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	svc, _ := newTestService(t, mux)

	_, err := svc.GetMonitor(context.Background(), "main")
	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error type = %T, want *domain.FetchError", err)
	}
}

func TestGetMonitorBadHeartbeatShapeDegrades(t *testing.T) {
	svc, _ := newTestService(t, upstreamHandler(statusPageHTML, `["wrong"]`))

	md, err := svc.GetMonitor(context.Background(), "main")
	if err != nil {
		t.Fatalf("GetMonitor() error = %v", err)
	}
	if md.Success {
		t.Error("Success = true, want false after heartbeat degradation")
	}
	// Groups from the page still come through.
	if len(md.MonitorGroups) != 1 {
		t.Errorf("MonitorGroups = %+v", md.MonitorGroups)
	}
	if md.Data.HeartbeatList == nil || md.Data.UptimeList == nil {
		t.Error("monitoring maps must be initialized even when degraded")
	}
}

func TestGetMonitorInvalidPreloadServesSeriesOnly(t *testing.T) {
	html := `<html><body><script>
		window.preloadData = {config: {title: 'no slug'}};
	</script></body></html>`
	svc, _ := newTestService(t, upstreamHandler(html, heartbeatBody))

	md, err := svc.GetMonitor(context.Background(), "main")
	if err != nil {
		t.Fatalf("GetMonitor() error = %v", err)
	}
	if md.Success {
		t.Error("Success = true, want false")
	}
	if len(md.MonitorGroups) != 0 {
		t.Errorf("MonitorGroups = %+v, want empty", md.MonitorGroups)
	}
	if md.Data.UptimeList["11_24"] != 0.99 {
		t.Errorf("UptimeList = %+v, series should still be served", md.Data.UptimeList)
	}
}
