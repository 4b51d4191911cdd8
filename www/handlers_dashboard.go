package www

import (
	"net/http"
	"time"
)

func (h *Handlers) apiDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.engine.Views().Dashboard()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, dash)
}

func (h *Handlers) apiHealthCheck(w http.ResponseWriter, r *http.Request) {
	dbOK := h.engine.DB().Ping() == nil
	h.jsonOK(w, map[string]any{
		"database":    dbOK,
		"messaging":   h.engine.MsgClient().IsConnected(),
		"sse_clients": h.eventHub.ClientCount(),
		"time":        time.Now(),
	})
}

func (h *Handlers) apiAuditLog(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	entries, err := h.engine.DB().ListAuditLog(limit)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, entries)
}
