package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	apimw "github.com/hamed0406/statusnotifier/internal/httpapi/middleware"
	"github.com/hamed0406/statusnotifier/internal/notify"
	"github.com/hamed0406/statusnotifier/internal/render"
	"github.com/hamed0406/statusnotifier/internal/scheduler"
)

// StatusSource is satisfied by *scheduler.Loop.
type StatusSource interface {
	Snapshot() scheduler.Snapshot
}

type Server struct {
	Logger *zap.Logger
	Status StatusSource

	Keys  []string
	RPM   int
	Burst int
}

func NewServer(l *zap.Logger, src StatusSource, keys []string, rpm, burst int) *Server {
	return &Server{Logger: l, Status: src, Keys: keys, RPM: rpm, Burst: burst}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(apimw.RateLimit(s.RPM, s.Burst))
		r.Use(apimw.RequireAny(s.Keys))
		r.Get("/status", s.handleStatus)
		r.Get("/destinations", s.handleDestinations)
	})

	return r
}

type targetView struct {
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	Up         int64   `json:"up"`
	Total      int64   `json:"total"`
	Percentage float64 `json:"percentage"`
	Tracked    string  `json:"tracked"`
}

type statusView struct {
	Mode         string               `json:"mode"`
	Period       string               `json:"period"`
	LastTick     *time.Time           `json:"last_tick,omitempty"`
	Targets      []targetView         `json:"targets"`
	Destinations int                  `json:"destinations"`
	Presentation *render.Presentation `json:"presentation,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Status.Snapshot()

	v := statusView{
		Mode:         snap.Mode.String(),
		Period:       snap.Period.String(),
		Targets:      make([]targetView, 0, len(snap.Uptime)),
		Destinations: len(snap.Destinations),
		Presentation: snap.Presentation,
	}
	if !snap.LastTick.IsZero() {
		t := snap.LastTick.UTC()
		v.LastTick = &t
	}
	for _, st := range snap.Uptime {
		status := "unknown"
		if cur, ok := snap.Statuses[st.Target]; ok {
			status = cur.String()
		}
		v.Targets = append(v.Targets, targetView{
			Name:       st.Target,
			Status:     status,
			Up:         st.Counter.Up,
			Total:      st.Counter.Total,
			Percentage: st.Percentage,
			Tracked:    st.Elapsed.String(),
		})
	}
	writeJSON(w, v)
}

func (s *Server) handleDestinations(w http.ResponseWriter, r *http.Request) {
	ds := s.Status.Snapshot().Destinations
	if ds == nil {
		ds = []notify.Destination{}
	}
	writeJSON(w, ds)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
