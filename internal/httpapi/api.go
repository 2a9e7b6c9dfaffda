package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"atelierhq.io/internal/audit"
	"atelierhq.io/internal/authz"
	"atelierhq.io/internal/obs"
	"atelierhq.io/internal/portal"
)

// ReadyProbe checks backing-store readiness for /readyz.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config wires the HTTP layer to the engine and the stores behind it.
type Config struct {
	Engine     *authz.Engine
	AuditStore audit.Store
	Stream     *audit.Stream
	Portal     *portal.Service
	Ready      ReadyProbe
	Version    string

	// Rate limiting; zero values fall back to the defaults below.
	RateBurst     int
	RatePerSecond int
}

// API is the HTTP layer. Every guarded route funnels through authorize,
// which is the only caller of the decision engine.
type API struct {
	mux        *http.ServeMux
	engine     *authz.Engine
	auditStore audit.Store
	stream     *audit.Stream
	portal     *portal.Service
	readyProbe ReadyProbe
	version    string

	rateBurst     int
	ratePerSecond int
}

func New(cfg Config) *API {
	a := &API{
		mux:           http.NewServeMux(),
		engine:        cfg.Engine,
		auditStore:    cfg.AuditStore,
		stream:        cfg.Stream,
		portal:        cfg.Portal,
		readyProbe:    cfg.Ready,
		version:       cfg.Version,
		rateBurst:     cfg.RateBurst,
		ratePerSecond: cfg.RatePerSecond,
	}
	if a.rateBurst <= 0 {
		a.rateBurst = 50
	}
	if a.ratePerSecond <= 0 {
		a.ratePerSecond = 25
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/organizations", a.handleOrganizations)
	a.mux.HandleFunc("/v1/organizations/", a.handleOrganizationScoped)
	a.mux.HandleFunc("/v1/orders/", a.handleOrderResource)
	a.mux.HandleFunc("/v1/audit", a.handleAuditQuery)
	a.mux.HandleFunc("/v1/audit/stream", a.handleAuditStream)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, a.rateBurst, a.ratePerSecond)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "atelier-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "atelier-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}
