package http

import (
	"net/http"
	"time"

	"github.com/opslane/clientdesk/pkg/httpx"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type livezResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /livez", r.handleLivez)
	r.Mux.HandleFunc("GET /readyz", r.handleReadyz)
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}

// handleLivez handles GET /livez
//
//	@Summary	Liveness probe
//	@Tags		System
//	@Produce	json
//	@Success	200	{object}	livezResponse
//	@Router		/livez [get].
func (r *Router) handleLivez(w http.ResponseWriter, req *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, livezResponse{
		Status:  "ok",
		Version: r.buildVersion,
		Uptime:  time.Since(r.startTime).Round(time.Second).String(),
	})
}

// handleReadyz handles GET /readyz
//
//	@Summary	Readiness probe
//	@Tags		System
//	@Produce	json
//	@Success	200	{object}	livezResponse
//	@Failure	503	{object}	httpx.ErrorResponse	"Database unreachable"
//	@Router		/readyz [get].
func (r *Router) handleReadyz(w http.ResponseWriter, req *http.Request) {
	if err := r.store.Ping(req.Context()); err != nil {
		httpx.WriteError(w, http.StatusServiceUnavailable, "not_ready", "database unreachable")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, livezResponse{
		Status:  "ok",
		Version: r.buildVersion,
		Uptime:  time.Since(r.startTime).Round(time.Second).String(),
	})
}
