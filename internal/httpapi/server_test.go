package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/hamed0406/statusnotifier/internal/domain"
	"github.com/hamed0406/statusnotifier/internal/notify"
	"github.com/hamed0406/statusnotifier/internal/render"
	"github.com/hamed0406/statusnotifier/internal/scheduler"
	"github.com/hamed0406/statusnotifier/internal/uptime"
)

// ---- test helpers ----

type fixedSource struct{ snap scheduler.Snapshot }

func (f fixedSource) Snapshot() scheduler.Snapshot { return f.snap }

func sampleSnapshot() scheduler.Snapshot {
	web := domain.UptimeCounter{Up: 3, Total: 4}
	app := domain.UptimeCounter{Up: 4, Total: 4}
	return scheduler.Snapshot{
		Mode:     scheduler.Alert,
		Period:   5 * time.Second,
		LastTick: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Statuses: map[string]domain.Status{
			domain.TargetWeb: domain.Offline,
			domain.TargetApp: domain.Online,
		},
		Uptime: []uptime.Stats{
			uptime.NewStats(domain.TargetWeb, web, 5*time.Second),
			uptime.NewStats(domain.TargetApp, app, 5*time.Second),
		},
		Destinations: []notify.Destination{{GuildID: "g1", ChannelID: "c1", MessageID: "m1"}},
		Presentation: &render.Presentation{Color: render.Red, WebText: "Offline", AppText: "Online"},
	}
}

func setupRouter(t *testing.T, snap scheduler.Snapshot, keys []string) http.Handler {
	t.Helper()
	return NewServer(zap.NewNop(), fixedSource{snap}, keys, 0, 0).Router()
}

func get(h http.Handler, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ---- tests ----

func TestHealthz(t *testing.T) {
	rec := get(setupRouter(t, scheduler.Snapshot{}, []string{"k"}), "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
	}
}

func TestStatus(t *testing.T) {
	rec := get(setupRouter(t, sampleSnapshot(), nil), "/api/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type %q", ct)
	}

	var got struct {
		Mode         string       `json:"mode"`
		Period       string       `json:"period"`
		LastTick     *time.Time   `json:"last_tick"`
		Targets      []targetView `json:"targets"`
		Destinations int          `json:"destinations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []targetView{
		{Name: "web", Status: "offline", Up: 3, Total: 4, Percentage: 75, Tracked: "20s"},
		{Name: "app", Status: "online", Up: 4, Total: 4, Percentage: 100, Tracked: "20s"},
	}
	if diff := cmp.Diff(want, got.Targets); diff != "" {
		t.Fatalf("targets (-want +got):\n%s", diff)
	}
	if got.Mode != "alert" || got.Period != "5s" || got.Destinations != 1 {
		t.Fatalf("unexpected view: %+v", got)
	}
	if got.LastTick == nil || !got.LastTick.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Fatalf("last tick: %v", got.LastTick)
	}
	if !strings.Contains(rec.Body.String(), `"color":"red"`) {
		t.Fatalf("presentation color not rendered as text: %s", rec.Body.String())
	}
}

func TestStatus_BeforeFirstTick(t *testing.T) {
	rec := get(setupRouter(t, scheduler.Snapshot{}, nil), "/api/status", "")
	body := rec.Body.String()
	if rec.Code != http.StatusOK || strings.Contains(body, "last_tick") || strings.Contains(body, "presentation") {
		t.Fatalf("unexpected empty status: %d %s", rec.Code, body)
	}
}

func TestDestinations(t *testing.T) {
	h := setupRouter(t, sampleSnapshot(), nil)
	var ds []notify.Destination
	if err := json.Unmarshal(get(h, "/api/destinations", "").Body.Bytes(), &ds); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(sampleSnapshot().Destinations, ds); diff != "" {
		t.Fatalf("destinations (-want +got):\n%s", diff)
	}

	empty := get(setupRouter(t, scheduler.Snapshot{}, nil), "/api/destinations", "")
	if strings.TrimSpace(empty.Body.String()) != "[]" {
		t.Fatalf("want empty list, got %q", empty.Body.String())
	}
}

func TestAPIKeys(t *testing.T) {
	h := setupRouter(t, sampleSnapshot(), []string{"secret"})
	if rec := get(h, "/api/status", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing key: got %d", rec.Code)
	}
	if rec := get(h, "/api/status", "secret"); rec.Code != http.StatusOK {
		t.Fatalf("valid key: got %d", rec.Code)
	}
}

func TestRateLimitApplied(t *testing.T) {
	h := NewServer(zap.NewNop(), fixedSource{sampleSnapshot()}, nil, 60, 1).Router()
	if rec := get(h, "/api/status", ""); rec.Code != http.StatusOK {
		t.Fatalf("first request: got %d", rec.Code)
	}
	if rec := get(h, "/api/status", ""); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", rec.Code)
	}
	// health checks are never limited
	if rec := get(h, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz limited: %d", rec.Code)
	}
}
