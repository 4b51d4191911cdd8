package shopfloor

import (
	"testing"

	"shopcore/store"
)

func TestComposeJobs_Assembly(t *testing.T) {
	asm := &store.Part{ID: 1, PartNumber: "ASM-100", PartType: string(PartAssembly)}
	bom := []*store.BOMEdge{
		{ComponentPartID: 2, ComponentNumber: "1234-100", ComponentType: string(PartManufactured), Quantity: 1, SortOrder: 1},
		{ComponentPartID: 3, ComponentNumber: "ORING-1", ComponentType: string(PartPurchased), Quantity: 4, SortOrder: 2},
		{ComponentPartID: 4, ComponentNumber: "SUB-ASM", ComponentType: string(PartAssembly), Quantity: 1, SortOrder: 3},
		{ComponentPartID: 5, ComponentNumber: "1234-200", ComponentType: string(PartManufactured), Quantity: 2, SortOrder: 4},
	}

	jobs := ComposeJobs(asm, bom, 10, nil)
	if len(jobs) != 2 {
		t.Fatalf("jobs = %d, want 2 (manufactured components only)", len(jobs))
	}
	if jobs[0].PartID != 2 || jobs[1].PartID != 5 {
		t.Errorf("parts = %d,%d, want 2,5", jobs[0].PartID, jobs[1].PartID)
	}
	// Candidates inherit the order quantity, not the BOM edge quantity
	for _, j := range jobs {
		if j.Quantity != 10 {
			t.Errorf("%s quantity = %f, want 10", j.PartNumber, j.Quantity)
		}
		if j.QuantityCustomized {
			t.Errorf("%s should not be customized", j.PartNumber)
		}
	}
}

func TestComposeJobs_Overrides(t *testing.T) {
	asm := &store.Part{ID: 1, PartNumber: "ASM-100", PartType: string(PartAssembly)}
	bom := []*store.BOMEdge{
		{ComponentPartID: 2, ComponentNumber: "1234-100", ComponentType: string(PartManufactured), Quantity: 1},
		{ComponentPartID: 3, ComponentNumber: "1234-200", ComponentType: string(PartManufactured), Quantity: 1},
	}

	jobs := ComposeJobs(asm, bom, 10, map[int64]float64{2: 12})
	if jobs[0].Quantity != 12 || !jobs[0].QuantityCustomized {
		t.Errorf("overridden = %f customized=%v, want 12 true", jobs[0].Quantity, jobs[0].QuantityCustomized)
	}
	if jobs[1].Quantity != 10 || jobs[1].QuantityCustomized {
		t.Errorf("untouched = %f customized=%v, want 10 false", jobs[1].Quantity, jobs[1].QuantityCustomized)
	}

	// An override equal to the order quantity is not a customization
	jobs2 := ComposeJobs(asm, bom, 10, map[int64]float64{2: 10})
	if jobs2[0].QuantityCustomized {
		t.Error("override equal to order quantity should not pin")
	}
}

func TestComposeJobs_FinishedGood(t *testing.T) {
	fg := &store.Part{ID: 7, PartNumber: "FG-500", PartType: string(PartFinishedGood)}

	jobs := ComposeJobs(fg, nil, 25, nil)
	if len(jobs) != 1 {
		t.Fatalf("jobs = %d, want exactly 1", len(jobs))
	}
	if jobs[0].PartID != 7 {
		t.Errorf("part = %d, want the finished good itself", jobs[0].PartID)
	}
	if jobs[0].Quantity != 25 {
		t.Errorf("quantity = %f, want 25", jobs[0].Quantity)
	}
}
