package www

import (
	"net/http"

	"shopcore/shopfloor"
	"shopcore/store"
)

func (h *Handlers) apiListParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.engine.DB().ListParts(r.URL.Query().Get("type"))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, parts)
}

func (h *Handlers) apiCreatePart(w http.ResponseWriter, r *http.Request) {
	var p store.Part
	if !h.decodeBody(w, r, &p) {
		return
	}
	if p.PartNumber == "" {
		h.jsonError(w, "part_number is required", http.StatusBadRequest)
		return
	}
	if !shopfloor.PartType(p.PartType).Valid() {
		h.jsonError(w, "invalid part_type", http.StatusBadRequest)
		return
	}
	p.Active = true
	if err := h.engine.DB().CreatePart(&p); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.Views().Invalidate("parts")
	h.jsonOK(w, p)
}

func (h *Handlers) apiUpdatePart(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var p store.Part
	if !h.decodeBody(w, r, &p) {
		return
	}
	p.ID = id
	if err := h.engine.DB().UpdatePart(&p); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.Views().Invalidate("parts")
	h.jsonOK(w, p)
}

func (h *Handlers) apiGetBOM(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	edges, err := h.engine.DB().ListBOM(id)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, edges)
}

func (h *Handlers) apiAddBOMEdge(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var e store.BOMEdge
	if !h.decodeBody(w, r, &e) {
		return
	}
	e.AssemblyPartID = id
	if e.Quantity <= 0 {
		h.jsonError(w, "quantity must be positive", http.StatusBadRequest)
		return
	}
	if err := h.engine.DB().AddBOMEdge(&e); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, e)
}

func (h *Handlers) apiDeleteBOMEdge(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.engine.DB().DeleteBOMEdge(id); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, map[string]bool{"ok": true})
}

func (h *Handlers) apiMasterData(w http.ResponseWriter, r *http.Request) {
	locations, err := h.engine.DB().ListLocations()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	materials, err := h.engine.DB().ListMaterialTypes()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	bars, err := h.engine.DB().ListBarSizes()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, map[string]any{
		"locations":      locations,
		"material_types": materials,
		"bar_sizes":      bars,
	})
}

func (h *Handlers) apiCreateLocation(w http.ResponseWriter, r *http.Request) {
	var l store.Location
	if !h.decodeBody(w, r, &l) {
		return
	}
	if l.Name == "" {
		h.jsonError(w, "name is required", http.StatusBadRequest)
		return
	}
	if err := h.engine.DB().CreateLocation(&l); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, l)
}

func (h *Handlers) apiCreateMaterialType(w http.ResponseWriter, r *http.Request) {
	var m store.MaterialType
	if !h.decodeBody(w, r, &m) {
		return
	}
	if m.Name == "" {
		h.jsonError(w, "name is required", http.StatusBadRequest)
		return
	}
	if err := h.engine.DB().CreateMaterialType(&m); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, m)
}

func (h *Handlers) apiCreateBarSize(w http.ResponseWriter, r *http.Request) {
	var b store.BarSize
	if !h.decodeBody(w, r, &b) {
		return
	}
	if b.Label == "" {
		h.jsonError(w, "label is required", http.StatusBadRequest)
		return
	}
	if err := h.engine.DB().CreateBarSize(&b); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, b)
}
