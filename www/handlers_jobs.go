package www

import (
	"net/http"
	"strings"
	"time"

	"shopcore/shopfloor"
)

func (h *Handlers) apiListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if wo := queryInt(r, "work_order_id", 0); wo > 0 {
		jobs, err := h.engine.DB().ListJobsByWorkOrder(int64(wo))
		if err != nil {
			h.jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.jsonOK(w, jobs)
		return
	}

	if statuses := q.Get("status"); statuses != "" {
		jobs, err := h.engine.DB().ListJobsByStatus(strings.Split(statuses, ",")...)
		if err != nil {
			h.jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.jsonOK(w, jobs)
		return
	}

	jobs, err := h.engine.Views().UnassignedJobs()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, jobs)
}

func (h *Handlers) apiGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	job, err := h.engine.DB().GetJob(id)
	if err != nil {
		h.jsonError(w, "not found", http.StatusNotFound)
		return
	}
	h.jsonOK(w, job)
}

func (h *Handlers) apiAdvanceJob(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := h.engine.Controller().AdvanceJob(id, shopfloor.JobStatus(req.Status), h.getUsername(r)); err != nil {
		h.domainError(w, err)
		return
	}
	h.jsonOK(w, map[string]bool{"ok": true})
}

func (h *Handlers) apiCompleteJobManufacturing(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		GoodPieces       float64 `json:"good_pieces"`
		BadPieces        float64 `json:"bad_pieces"`
		NeedsPassivation bool    `json:"needs_passivation"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := h.engine.Controller().CompleteJobManufacturing(id, req.GoodPieces, req.BadPieces, req.NeedsPassivation, h.getUsername(r)); err != nil {
		h.domainError(w, err)
		return
	}
	h.jsonOK(w, map[string]bool{"ok": true})
}

func (h *Handlers) apiEditJob(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Quantity float64 `json:"quantity"`
		Priority string  `json:"priority"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := h.engine.Controller().EditJob(id, req.Quantity, shopfloor.Priority(req.Priority), h.getUsername(r)); err != nil {
		h.domainError(w, err)
		return
	}
	h.jsonOK(w, map[string]bool{"ok": true})
}

func (h *Handlers) apiCancelJob(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.engine.Controller().CancelJob(id, h.getUsername(r)); err != nil {
		h.domainError(w, err)
		return
	}
	h.jsonOK(w, map[string]bool{"ok": true})
}

func (h *Handlers) apiScheduleJob(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		MachineID int64     `json:"machine_id"`
		Start     time.Time `json:"start"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := h.engine.Controller().ScheduleJob(id, req.MachineID, req.Start, h.getUsername(r)); err != nil {
		h.domainError(w, err)
		return
	}
	h.jsonOK(w, map[string]bool{"ok": true})
}

func (h *Handlers) apiRequeueJob(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Note string `json:"note"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := h.engine.Controller().RequeueIncompleteJob(id, req.Note, h.getUsername(r)); err != nil {
		h.domainError(w, err)
		return
	}
	h.jsonOK(w, map[string]bool{"ok": true})
}
