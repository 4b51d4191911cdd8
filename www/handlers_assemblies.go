package www

import (
	"net/http"

	"shopcore/shopfloor"
)

func (h *Handlers) apiAssemblyBoard(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.engine.Views().AssemblyBoard()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, buckets)
}

func (h *Handlers) apiStartAssembly(w http.ResponseWriter, r *http.Request) {
	var in shopfloor.StartAssemblyInput
	if !h.decodeBody(w, r, &in) {
		return
	}
	in.Actor = h.getUsername(r)

	if err := h.engine.Controller().StartAssembly(&in); err != nil {
		h.domainError(w, err)
		return
	}
	h.jsonOK(w, map[string]bool{"ok": true})
}

func (h *Handlers) apiCompleteAssembly(w http.ResponseWriter, r *http.Request) {
	var in shopfloor.CompleteAssemblyInput
	if !h.decodeBody(w, r, &in) {
		return
	}
	in.Actor = h.getUsername(r)

	warning, err := h.engine.Controller().CompleteAssembly(&in)
	if err != nil {
		h.domainError(w, err)
		return
	}
	resp := map[string]any{"ok": true}
	if warning != "" {
		resp["warning"] = warning
	}
	h.jsonOK(w, resp)
}
