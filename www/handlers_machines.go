package www

import (
	"net/http"
	"time"

	"shopcore/engine"
	"shopcore/shopfloor"
	"shopcore/store"
)

func (h *Handlers) apiListMachines(w http.ResponseWriter, r *http.Request) {
	board, err := h.engine.Views().MachineBoard()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, board)
}

func (h *Handlers) apiCreateMachine(w http.ResponseWriter, r *http.Request) {
	var m store.Machine
	if !h.decodeBody(w, r, &m) {
		return
	}
	if m.Name == "" || m.Code == "" {
		h.jsonError(w, "name and code are required", http.StatusBadRequest)
		return
	}
	if m.Status == "" {
		m.Status = string(shopfloor.MachineAvailable)
	}
	if !shopfloor.MachineStatus(m.Status).Valid() {
		h.jsonError(w, "invalid machine status", http.StatusBadRequest)
		return
	}
	m.Active = true
	if err := h.engine.DB().CreateMachine(&m); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.Views().Invalidate("machines")
	h.jsonOK(w, m)
}

func (h *Handlers) apiUpdateMachine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var m store.Machine
	if !h.decodeBody(w, r, &m) {
		return
	}
	m.ID = id
	if err := h.engine.DB().UpdateMachine(&m); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.Views().Invalidate("machines")
	h.jsonOK(w, m)
}

// apiSetMachineStatus is the operator's manual status override. It
// writes the stored status only; downtime logs and maintenance jobs
// keep their own say in the derived status.
func (h *Handlers) apiSetMachineStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}
	if !shopfloor.MachineStatus(req.Status).Valid() {
		h.jsonError(w, "invalid machine status", http.StatusBadRequest)
		return
	}
	if err := h.engine.DB().SetMachineStatus(id, req.Status, req.Reason); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.Events.Emit(engine.Event{Type: engine.EventMachineStatusChanged, Payload: engine.MachineStatusChangedEvent{
		MachineID: id,
		Status:    req.Status,
		Reason:    req.Reason,
	}})
	h.jsonOK(w, map[string]bool{"ok": true})
}

func (h *Handlers) apiMachineDowntime(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	logs, err := h.engine.DB().ListDowntimeLogsByMachine(id, queryInt(r, "limit", 50))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, logs)
}

func (h *Handlers) apiCloseDowntime(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.engine.DB().CloseOpenDowntimeLogs(id, time.Now()); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.Views().Invalidate("machine_downtime_logs")
	h.engine.Views().Invalidate("machines")
	h.jsonOK(w, map[string]bool{"ok": true})
}
