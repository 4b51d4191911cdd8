package www

import (
	"net/http"

	"shopcore/shopfloor"
)

func (h *Handlers) apiListWorkOrders(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit := queryInt(r, "limit", 100)
	orders, err := h.engine.DB().ListWorkOrders(status, limit)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, orders)
}

func (h *Handlers) apiGetWorkOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	detail, err := h.engine.DB().GetWorkOrderDetail(id)
	if err != nil {
		h.jsonError(w, "not found", http.StatusNotFound)
		return
	}
	h.jsonOK(w, detail)
}

func (h *Handlers) apiWorkOrderStatusCounts(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	counts, err := h.engine.DB().CountJobsByWorkOrderStatus(id)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, counts)
}

func (h *Handlers) apiCreateWorkOrder(w http.ResponseWriter, r *http.Request) {
	var in shopfloor.WorkOrderInput
	if !h.decodeBody(w, r, &in) {
		return
	}
	in.Actor = h.getUsername(r)

	detail, err := h.engine.Controller().CreateWorkOrder(&in)
	if err != nil {
		h.domainError(w, err)
		return
	}
	h.jsonOK(w, detail)
}

func (h *Handlers) apiApproveTCO(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.engine.Controller().ApproveTCO(id, h.getUsername(r), h.getRole(r)); err != nil {
		h.domainError(w, err)
		return
	}
	h.jsonOK(w, map[string]bool{"ok": true})
}

func (h *Handlers) apiPlanMaintenance(w http.ResponseWriter, r *http.Request) {
	var req shopfloor.MaintenanceRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	req.Actor = h.getUsername(r)

	plan, err := h.engine.Controller().PlanMaintenance(&req)
	if err != nil {
		h.domainError(w, err)
		return
	}
	h.jsonOK(w, plan)
}

func (h *Handlers) apiResolveMaintenance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Plan   *shopfloor.MaintenancePlan `json:"plan"`
		Policy string                     `json:"policy"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.Plan == nil || req.Plan.Request == nil {
		h.jsonError(w, "plan is required", http.StatusBadRequest)
		return
	}
	req.Plan.Request.Actor = h.getUsername(r)

	wo, err := h.engine.Controller().ResolveAndCreate(req.Plan, shopfloor.ResolvePolicy(req.Policy))
	if err != nil {
		h.domainError(w, err)
		return
	}
	h.jsonOK(w, wo)
}
