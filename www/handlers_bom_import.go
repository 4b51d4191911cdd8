package www

import (
	"database/sql"
	"errors"
	"net/http"

	"shopcore/shopfloor"
	"shopcore/store"
)

// apiBOMImportText runs the wizard's processing step on pasted text
// and returns a draft in review state.
func (h *Handlers) apiBOMImportText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		h.jsonError(w, "text is required", http.StatusBadRequest)
		return
	}
	draft, err := shopfloor.ParseBOMText(req.Text)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	h.jsonOK(w, draft)
}

// apiBOMImportDocument uploads a document to the extraction service
// and parses the returned text. An extraction failure is the caller's
// problem to retry; nothing else is affected.
func (h *Handlers) apiBOMImportDocument(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		h.jsonError(w, "file upload required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	text, err := h.ocr.ExtractText(header.Filename, file)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}
	draft, err := shopfloor.ParseBOMText(text)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	h.jsonOK(w, draft)
}

// apiBOMImportSave persists a reviewed draft: the assembly part, any
// component parts not already on file, and the BOM edges between them.
func (h *Handlers) apiBOMImportSave(w http.ResponseWriter, r *http.Request) {
	var draft shopfloor.BOMDraft
	if !h.decodeBody(w, r, &draft) {
		return
	}
	if err := draft.Advance(shopfloor.DraftSaving); err != nil {
		h.domainError(w, err)
		return
	}
	if draft.PartNumber == "" || len(draft.Components) == 0 {
		h.jsonError(w, "draft has no part number or components", http.StatusBadRequest)
		return
	}

	db := h.engine.DB()
	assembly, err := db.GetPartByNumber(draft.PartNumber)
	if errors.Is(err, sql.ErrNoRows) {
		assembly = &store.Part{
			PartNumber:  draft.PartNumber,
			Description: draft.Description,
			PartType:    string(shopfloor.PartAssembly),
			Cost:        draft.Cost,
			Active:      true,
		}
		if err := db.CreatePart(assembly); err != nil {
			h.jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
	} else if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	for i, line := range draft.Components {
		component, err := db.GetPartByNumber(line.PartNumber)
		if errors.Is(err, sql.ErrNoRows) {
			component = &store.Part{
				PartNumber:  line.PartNumber,
				Description: line.Description,
				PartType:    string(componentPartType(line.Unit)),
				Active:      true,
			}
			if err := db.CreatePart(component); err != nil {
				h.jsonError(w, err.Error(), http.StatusInternalServerError)
				return
			}
		} else if err != nil {
			h.jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		edge := &store.BOMEdge{
			AssemblyPartID:  assembly.ID,
			ComponentPartID: component.ID,
			Quantity:        line.Quantity,
			SortOrder:       i,
		}
		if err := db.AddBOMEdge(edge); err != nil {
			h.jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	if err := draft.Advance(shopfloor.DraftComplete); err != nil {
		h.domainError(w, err)
		return
	}
	db.AppendAudit("part", assembly.ID, "bom_imported", "", draft.PartNumber, h.getUsername(r))
	h.engine.Views().Invalidate("parts")

	h.jsonOK(w, map[string]any{"part_id": assembly.ID, "state": draft.State})
}

// componentPartType guesses a part type from the BOM unit: dimensional
// units mean raw stock we machine, piece counts mean bought hardware.
func componentPartType(unit string) shopfloor.PartType {
	switch unit {
	case "lb", "ft":
		return shopfloor.PartManufactured
	default:
		return shopfloor.PartPurchased
	}
}
