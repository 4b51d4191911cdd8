package shopfloor

import "shopcore/store"

// JobCandidate is one machining job the composer derives from an
// assembly selection, before anything is written.
type JobCandidate struct {
	PartID             int64   `json:"part_id"`
	PartNumber         string  `json:"part_number"`
	Quantity           float64 `json:"quantity"`
	QuantityCustomized bool    `json:"quantity_customized"`
}

// ComposeJobs derives the machining jobs for one assembly line item.
// Manufactured components each get a candidate; purchased parts and
// nested sub-assemblies are not independently scheduled and are
// skipped. A finished good has no BOM and yields exactly one job for
// the part itself. Each candidate inherits the order quantity unless
// an override pins it; pinned quantities survive later bulk changes
// at the assembly level.
func ComposeJobs(part *store.Part, bom []*store.BOMEdge, orderQty float64, overrides map[int64]float64) []JobCandidate {
	if PartType(part.PartType) == PartFinishedGood {
		qty := orderQty
		customized := false
		if o, ok := overrides[part.ID]; ok && o != orderQty {
			qty = o
			customized = true
		}
		return []JobCandidate{{PartID: part.ID, PartNumber: part.PartNumber, Quantity: qty, QuantityCustomized: customized}}
	}

	var out []JobCandidate
	for _, edge := range bom {
		if PartType(edge.ComponentType) != PartManufactured {
			continue
		}
		qty := orderQty
		customized := false
		if o, ok := overrides[edge.ComponentPartID]; ok && o != orderQty {
			qty = o
			customized = true
		}
		out = append(out, JobCandidate{
			PartID:             edge.ComponentPartID,
			PartNumber:         edge.ComponentNumber,
			Quantity:           qty,
			QuantityCustomized: customized,
		})
	}
	return out
}
