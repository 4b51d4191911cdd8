package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"shopcore/config"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	db, err := Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: dbPath},
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

// --- Machine tests ---

func TestMachineCRUD(t *testing.T) {
	db := testDB(t)

	m := &Machine{Name: "Haas VF-2", Code: "CNC-01", Status: "idle", Active: true}
	if err := db.CreateMachine(m); err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.ID == 0 {
		t.Fatal("ID should be assigned")
	}

	got, err := db.GetMachine(m.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Haas VF-2" {
		t.Errorf("Name = %q, want %q", got.Name, "Haas VF-2")
	}
	if got.Status != "idle" {
		t.Errorf("Status = %q, want %q", got.Status, "idle")
	}
	if !got.Active {
		t.Error("Active should be true")
	}

	// Update, including the active flag
	got.Name = "Haas VF-2SS"
	got.Active = false
	if err := db.UpdateMachine(got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got2, _ := db.GetMachine(m.ID)
	if got2.Name != "Haas VF-2SS" {
		t.Errorf("Name after update = %q, want %q", got2.Name, "Haas VF-2SS")
	}
	if got2.Active {
		t.Error("Active should be false after update")
	}
	got2.Active = true
	if err := db.UpdateMachine(got2); err != nil {
		t.Fatalf("update: %v", err)
	}

	// GetByCode
	got3, err := db.GetMachineByCode("CNC-01")
	if err != nil {
		t.Fatalf("getByCode: %v", err)
	}
	if got3.ID != m.ID {
		t.Errorf("getByCode ID = %d, want %d", got3.ID, m.ID)
	}

	// SetStatus
	if err := db.SetMachineStatus(m.ID, "down", "spindle fault"); err != nil {
		t.Fatalf("set status: %v", err)
	}
	got4, _ := db.GetMachine(m.ID)
	if got4.Status != "down" {
		t.Errorf("Status = %q, want %q", got4.Status, "down")
	}
	if got4.StatusReason != "spindle fault" {
		t.Errorf("StatusReason = %q, want %q", got4.StatusReason, "spindle fault")
	}

	// SetStatus on missing machine
	if err := db.SetMachineStatus(9999, "down", ""); err == nil {
		t.Error("expected error for missing machine")
	}

	// List skips inactive machines
	db.CreateMachine(&Machine{Name: "Retired lathe", Code: "CNC-99", Status: "idle", Active: false})
	machines, err := db.ListMachines()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(machines) != 1 {
		t.Errorf("len = %d, want 1", len(machines))
	}

	// ListByStatus
	down, _ := db.ListMachinesByStatus("down")
	if len(down) != 1 {
		t.Errorf("down count = %d, want 1", len(down))
	}
}

// --- Downtime log tests ---

func TestDowntimeLogs(t *testing.T) {
	db := testDB(t)

	m := &Machine{Name: "Mill", Code: "CNC-02", Status: "idle", Active: true}
	db.CreateMachine(m)

	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local)
	id, err := db.OpenDowntimeLog(m.ID, start, "unplanned_maintenance", "coolant leak")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if id == 0 {
		t.Fatal("id should be assigned")
	}

	open, err := db.ListOpenDowntimeLogs()
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("open len = %d, want 1", len(open))
	}
	if open[0].Reason != "unplanned_maintenance" {
		t.Errorf("reason = %q, want %q", open[0].Reason, "unplanned_maintenance")
	}
	if open[0].EndTime != nil {
		t.Error("EndTime should be nil while open")
	}

	end := start.Add(2 * time.Hour)
	if err := db.CloseDowntimeLog(id, end); err != nil {
		t.Fatalf("close: %v", err)
	}
	open2, _ := db.ListOpenDowntimeLogs()
	if len(open2) != 0 {
		t.Errorf("open after close = %d, want 0", len(open2))
	}

	// Closing twice is an error (no open row left)
	if err := db.CloseDowntimeLog(id, end); err == nil {
		t.Error("expected error closing an already-closed log")
	}

	// CloseOpenDowntimeLogs sweeps whatever remains open for the machine
	db.OpenDowntimeLog(m.ID, start, "machine_fault", "")
	db.OpenDowntimeLog(m.ID, start, "machine_fault", "")
	if err := db.CloseOpenDowntimeLogs(m.ID, end); err != nil {
		t.Fatalf("close all: %v", err)
	}
	open3, _ := db.ListOpenDowntimeLogs()
	if len(open3) != 0 {
		t.Errorf("open after sweep = %d, want 0", len(open3))
	}

	logs, _ := db.ListDowntimeLogsByMachine(m.ID, 10)
	if len(logs) != 3 {
		t.Errorf("history len = %d, want 3", len(logs))
	}
}

// --- Part and BOM tests ---

func TestPartCRUD(t *testing.T) {
	db := testDB(t)

	p := &Part{PartNumber: "1234-100", Description: "Valve body", PartType: "manufactured", Cost: 42.50, Active: true}
	if err := db.CreatePart(p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("ID should be assigned")
	}

	got, err := db.GetPartByNumber("1234-100")
	if err != nil {
		t.Fatalf("getByNumber: %v", err)
	}
	if got.Description != "Valve body" {
		t.Errorf("Description = %q, want %q", got.Description, "Valve body")
	}
	if got.Cost != 42.50 {
		t.Errorf("Cost = %f, want 42.50", got.Cost)
	}

	got.Description = "Valve body rev B"
	if err := db.UpdatePart(got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got2, _ := db.GetPart(p.ID)
	if got2.Description != "Valve body rev B" {
		t.Errorf("Description after update = %q, want %q", got2.Description, "Valve body rev B")
	}

	db.CreatePart(&Part{PartNumber: "ASM-1", PartType: "assembly", Active: true})
	db.CreatePart(&Part{PartNumber: "BOLT-1", PartType: "purchased", Active: true})

	all, _ := db.ListParts("")
	if len(all) != 3 {
		t.Errorf("all len = %d, want 3", len(all))
	}
	mfg, _ := db.ListParts("manufactured")
	if len(mfg) != 1 {
		t.Errorf("manufactured len = %d, want 1", len(mfg))
	}
}

func TestBOM(t *testing.T) {
	db := testDB(t)

	asm := &Part{PartNumber: "ASM-1", PartType: "assembly", Active: true}
	c1 := &Part{PartNumber: "1234-100", PartType: "manufactured", Active: true}
	c2 := &Part{PartNumber: "BOLT-1", PartType: "purchased", Active: true}
	db.CreatePart(asm)
	db.CreatePart(c1)
	db.CreatePart(c2)

	// Insert out of order; sort_order controls the line order
	db.AddBOMEdge(&BOMEdge{AssemblyPartID: asm.ID, ComponentPartID: c2.ID, Quantity: 4, SortOrder: 2})
	db.AddBOMEdge(&BOMEdge{AssemblyPartID: asm.ID, ComponentPartID: c1.ID, Quantity: 1, SortOrder: 1})

	bom, err := db.ListBOM(asm.ID)
	if err != nil {
		t.Fatalf("list bom: %v", err)
	}
	if len(bom) != 2 {
		t.Fatalf("bom len = %d, want 2", len(bom))
	}
	if bom[0].ComponentNumber != "1234-100" {
		t.Errorf("first component = %q, want %q", bom[0].ComponentNumber, "1234-100")
	}
	if bom[0].ComponentType != "manufactured" {
		t.Errorf("component type = %q, want %q", bom[0].ComponentType, "manufactured")
	}
	if bom[1].Quantity != 4 {
		t.Errorf("second quantity = %f, want 4", bom[1].Quantity)
	}

	db.DeleteBOMEdge(bom[1].ID)
	bom2, _ := db.ListBOM(asm.ID)
	if len(bom2) != 1 {
		t.Errorf("bom after delete = %d, want 1", len(bom2))
	}
}

// --- Work order tests ---

func TestWorkOrderNumbering(t *testing.T) {
	db := testDB(t)

	bucket := NumberPrefix("WO", time.Now())

	wo1 := &WorkOrder{OrderType: "production", Customer: "Acme", Priority: "normal", Status: "pending"}
	wo2 := &WorkOrder{OrderType: "production", Customer: "Acme", Priority: "normal", Status: "pending"}
	if err := db.CreateWorkOrder(wo1, "WO"); err != nil {
		t.Fatalf("create: %v", err)
	}
	db.CreateWorkOrder(wo2, "WO")

	if wo1.WONumber != bucket+"0001" {
		t.Errorf("first number = %q, want %q", wo1.WONumber, bucket+"0001")
	}
	if wo2.WONumber != bucket+"0002" {
		t.Errorf("second number = %q, want %q", wo2.WONumber, bucket+"0002")
	}

	// Maintenance orders count in their own MO bucket
	mo := &WorkOrder{OrderType: "maintenance", MaintenanceType: "planned", Priority: "normal", Status: "pending"}
	db.CreateWorkOrder(mo, "MO")
	moBucket := NumberPrefix("MO", time.Now())
	if mo.WONumber != moBucket+"0001" {
		t.Errorf("maintenance number = %q, want %q", mo.WONumber, moBucket+"0001")
	}
}

func TestWorkOrderCRUD(t *testing.T) {
	db := testDB(t)

	due := time.Date(2024, 7, 15, 0, 0, 0, 0, time.Local)
	wo := &WorkOrder{OrderType: "production", Customer: "Acme", PONumber: "PO-99", Priority: "high", DueDate: &due, Status: "pending", Notes: "rush"}
	if err := db.CreateWorkOrder(wo, "WO"); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := db.GetWorkOrderByNumber(wo.WONumber)
	if err != nil {
		t.Fatalf("getByNumber: %v", err)
	}
	if got.Customer != "Acme" {
		t.Errorf("Customer = %q, want %q", got.Customer, "Acme")
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("DueDate = %v, want %v", got.DueDate, due)
	}

	if err := db.UpdateWorkOrderStatus(wo.ID, "in_progress"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	got2, _ := db.GetWorkOrder(wo.ID)
	if got2.Status != "in_progress" {
		t.Errorf("Status = %q, want %q", got2.Status, "in_progress")
	}
	if err := db.UpdateWorkOrderStatus(9999, "complete"); err == nil {
		t.Error("expected error for missing work order")
	}

	got2.Customer = "Acme Corp"
	got2.Priority = "urgent"
	if err := db.UpdateWorkOrderFields(got2); err != nil {
		t.Fatalf("update fields: %v", err)
	}
	got3, _ := db.GetWorkOrder(wo.ID)
	if got3.Customer != "Acme Corp" {
		t.Errorf("Customer after update = %q, want %q", got3.Customer, "Acme Corp")
	}

	// Lists
	wo2 := &WorkOrder{OrderType: "production", Priority: "normal", Status: "complete"}
	db.CreateWorkOrder(wo2, "WO")
	all, _ := db.ListWorkOrders("", 10)
	if len(all) != 2 {
		t.Errorf("all len = %d, want 2", len(all))
	}
	open, _ := db.ListOpenWorkOrders()
	if len(open) != 1 {
		t.Errorf("open len = %d, want 1", len(open))
	}
}

func TestWorkOrderDetail(t *testing.T) {
	db := testDB(t)

	asm := &Part{PartNumber: "ASM-1", PartType: "assembly", Active: true}
	db.CreatePart(asm)

	wo := &WorkOrder{OrderType: "production", Priority: "normal", Status: "pending"}
	db.CreateWorkOrder(wo, "WO")

	woa := &WorkOrderAssembly{WorkOrderID: wo.ID, AssemblyPartID: asm.ID, Quantity: 10, Status: "pending"}
	db.CreateAssembly(woa)

	db.CreateJob(&Job{WorkOrderID: wo.ID, WorkOrderAssemblyID: &woa.ID, PartID: &asm.ID, Quantity: 10, Priority: "normal", Status: "pending_compliance"})

	detail, err := db.GetWorkOrderDetail(wo.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if len(detail.Assemblies) != 1 {
		t.Errorf("assemblies = %d, want 1", len(detail.Assemblies))
	}
	if len(detail.Jobs) != 1 {
		t.Errorf("jobs = %d, want 1", len(detail.Jobs))
	}
}

// --- Job tests ---

func TestJobNumbering(t *testing.T) {
	db := testDB(t)

	wo := &WorkOrder{OrderType: "production", Priority: "normal", Status: "pending"}
	db.CreateWorkOrder(wo, "WO")

	j1 := &Job{WorkOrderID: wo.ID, Quantity: 5, Priority: "normal", Status: "pending_compliance"}
	j2 := &Job{WorkOrderID: wo.ID, Quantity: 5, Priority: "normal", Status: "pending_compliance"}
	if err := db.CreateJob(j1); err != nil {
		t.Fatalf("create: %v", err)
	}
	db.CreateJob(j2)

	if j1.JobNumber != "J-000001" {
		t.Errorf("first job number = %q, want %q", j1.JobNumber, "J-000001")
	}
	if j2.JobNumber != "J-000002" {
		t.Errorf("second job number = %q, want %q", j2.JobNumber, "J-000002")
	}

	got, err := db.GetJobByNumber("J-000001")
	if err != nil {
		t.Fatalf("getByNumber: %v", err)
	}
	if got.ID != j1.ID {
		t.Errorf("getByNumber ID = %d, want %d", got.ID, j1.ID)
	}
}

func TestJobScheduling(t *testing.T) {
	db := testDB(t)

	m := &Machine{Name: "Mill", Code: "CNC-01", Status: "idle", Active: true}
	db.CreateMachine(m)
	wo := &WorkOrder{OrderType: "production", Priority: "normal", Status: "pending"}
	db.CreateWorkOrder(wo, "WO")

	j := &Job{WorkOrderID: wo.ID, Quantity: 5, Priority: "normal", Status: "ready", EstimatedMinutes: 120}
	db.CreateJob(j)

	start := time.Date(2024, 6, 3, 7, 0, 0, 0, time.Local)
	end := start.Add(2 * time.Hour)
	if err := db.UpdateJobSchedule(j.ID, m.ID, start, end, "assigned"); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	got, _ := db.GetJob(j.ID)
	if got.Status != "assigned" {
		t.Errorf("Status = %q, want %q", got.Status, "assigned")
	}
	if got.AssignedMachineID == nil || *got.AssignedMachineID != m.ID {
		t.Errorf("AssignedMachineID = %v, want %d", got.AssignedMachineID, m.ID)
	}
	if got.ScheduledStart == nil || !got.ScheduledStart.Equal(start) {
		t.Errorf("ScheduledStart = %v, want %v", got.ScheduledStart, start)
	}

	// Clear puts the job back in the unassigned ready pool and notes why
	if err := db.ClearJobSchedule(j.ID, "machine down, returned to queue"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got2, _ := db.GetJob(j.ID)
	if got2.Status != "ready" {
		t.Errorf("Status after clear = %q, want %q", got2.Status, "ready")
	}
	if got2.AssignedMachineID != nil {
		t.Error("AssignedMachineID should be nil after clear")
	}
	if got2.ScheduledStart != nil || got2.ScheduledEnd != nil {
		t.Error("schedule times should be nil after clear")
	}
	if got2.Notes != "machine down, returned to queue" {
		t.Errorf("Notes = %q, want %q", got2.Notes, "machine down, returned to queue")
	}

	// A second clear appends rather than overwrites
	db.UpdateJobSchedule(j.ID, m.ID, start, end, "assigned")
	db.ClearJobSchedule(j.ID, "second outage")
	got3, _ := db.GetJob(j.ID)
	want := "machine down, returned to queue | second outage"
	if got3.Notes != want {
		t.Errorf("Notes = %q, want %q", got3.Notes, want)
	}

	ready, _ := db.ListUnassignedReadyJobs()
	if len(ready) != 1 {
		t.Errorf("unassigned ready = %d, want 1", len(ready))
	}
}

func TestListMachineJobsByStatus(t *testing.T) {
	db := testDB(t)

	m := &Machine{Name: "Mill", Code: "CNC-01", Status: "idle", Active: true}
	db.CreateMachine(m)
	wo := &WorkOrder{OrderType: "production", Priority: "normal", Status: "pending"}
	db.CreateWorkOrder(wo, "WO")

	start := time.Date(2024, 6, 3, 7, 0, 0, 0, time.Local)
	for i := 0; i < 3; i++ {
		j := &Job{WorkOrderID: wo.ID, Quantity: 1, Priority: "normal", Status: "ready"}
		db.CreateJob(j)
		db.UpdateJobSchedule(j.ID, m.ID, start.Add(time.Duration(i)*time.Hour), start.Add(time.Duration(i+1)*time.Hour), "assigned")
	}
	// One in a status outside the filter
	other := &Job{WorkOrderID: wo.ID, Quantity: 1, Priority: "normal", Status: "ready"}
	db.CreateJob(other)
	db.UpdateJobSchedule(other.ID, m.ID, start, start.Add(time.Hour), "in_progress")

	jobs, err := db.ListMachineJobsByStatus(m.ID, "assigned")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("len = %d, want 3", len(jobs))
	}
	// Insertion order, oldest first
	if jobs[0].ID > jobs[1].ID || jobs[1].ID > jobs[2].ID {
		t.Error("jobs should come back in insertion order")
	}

	both, _ := db.ListMachineJobsByStatus(m.ID, "assigned", "in_progress")
	if len(both) != 4 {
		t.Errorf("len = %d, want 4", len(both))
	}
}

func TestJobEditAndPieces(t *testing.T) {
	db := testDB(t)

	wo := &WorkOrder{OrderType: "production", Priority: "normal", Status: "pending"}
	db.CreateWorkOrder(wo, "WO")
	j := &Job{WorkOrderID: wo.ID, Quantity: 10, Priority: "normal", Status: "ready"}
	db.CreateJob(j)

	if err := db.UpdateJobEdit(j.ID, 12, true, "high", "pending_compliance"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	got, _ := db.GetJob(j.ID)
	if got.Quantity != 12 {
		t.Errorf("Quantity = %f, want 12", got.Quantity)
	}
	if !got.QuantityCustomized {
		t.Error("QuantityCustomized should be true")
	}
	if got.Status != "pending_compliance" {
		t.Errorf("Status = %q, want %q", got.Status, "pending_compliance")
	}

	if err := db.UpdateJobPieces(j.ID, 11, 1); err != nil {
		t.Fatalf("pieces: %v", err)
	}
	got2, _ := db.GetJob(j.ID)
	if got2.GoodPieces != 11 || got2.BadPieces != 1 {
		t.Errorf("pieces = %f/%f, want 11/1", got2.GoodPieces, got2.BadPieces)
	}
}

func TestActiveMaintenanceJobs(t *testing.T) {
	db := testDB(t)

	mo := &WorkOrder{OrderType: "maintenance", MaintenanceType: "planned", Priority: "normal", Status: "pending"}
	db.CreateWorkOrder(mo, "MO")

	j1 := &Job{WorkOrderID: mo.ID, Quantity: 1, Priority: "normal", Status: "assigned", IsMaintenance: true, MaintenanceDesc: "spindle service"}
	j2 := &Job{WorkOrderID: mo.ID, Quantity: 1, Priority: "normal", Status: "complete", IsMaintenance: true}
	db.CreateJob(j1)
	db.CreateJob(j2)

	active, err := db.ListActiveMaintenanceJobs()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("len = %d, want 1", len(active))
	}
	if active[0].MaintenanceDesc != "spindle service" {
		t.Errorf("desc = %q, want %q", active[0].MaintenanceDesc, "spindle service")
	}
}

func TestCountJobsByWorkOrderStatus(t *testing.T) {
	db := testDB(t)

	wo := &WorkOrder{OrderType: "production", Priority: "normal", Status: "pending"}
	db.CreateWorkOrder(wo, "WO")

	for _, s := range []string{"ready", "ready", "complete", "cancelled"} {
		db.CreateJob(&Job{WorkOrderID: wo.ID, Quantity: 1, Priority: "normal", Status: s})
	}

	counts, err := db.CountJobsByWorkOrderStatus(wo.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts["ready"] != 2 {
		t.Errorf("ready = %d, want 2", counts["ready"])
	}
	if counts["complete"] != 1 {
		t.Errorf("complete = %d, want 1", counts["complete"])
	}
	// Cancelled jobs never count toward a work order's progress
	if _, ok := counts["cancelled"]; ok {
		t.Error("cancelled should be excluded")
	}
}

// --- Assembly cascade tests ---

func TestStartAssemblyCascade(t *testing.T) {
	db := testDB(t)

	asm := &Part{PartNumber: "ASM-1", PartType: "assembly", Active: true}
	db.CreatePart(asm)
	wo := &WorkOrder{OrderType: "production", Priority: "normal", Status: "in_progress"}
	db.CreateWorkOrder(wo, "WO")
	woa := &WorkOrderAssembly{WorkOrderID: wo.ID, AssemblyPartID: asm.ID, Quantity: 10, Status: "pending"}
	db.CreateAssembly(woa)

	j := &Job{WorkOrderID: wo.ID, WorkOrderAssemblyID: &woa.ID, Quantity: 10, Priority: "normal", Status: "ready_for_assembly"}
	db.CreateJob(j)
	// A job still machining is left alone
	j2 := &Job{WorkOrderID: wo.ID, WorkOrderAssemblyID: &woa.ID, Quantity: 10, Priority: "normal", Status: "in_progress"}
	db.CreateJob(j2)

	startedAt := time.Date(2024, 6, 3, 8, 0, 0, 0, time.Local)
	if err := db.StartAssemblyCascade(woa.ID, wo.ID, "ST-4", "EMP-17", "jdoe", "fixture A", startedAt); err != nil {
		t.Fatalf("start: %v", err)
	}

	got, _ := db.GetAssembly(woa.ID)
	if got.Status != "in_progress" {
		t.Errorf("Status = %q, want %q", got.Status, "in_progress")
	}
	if got.StationNumber != "ST-4" {
		t.Errorf("StationNumber = %q, want %q", got.StationNumber, "ST-4")
	}
	if got.AssemblyStartedAt == nil || !got.AssemblyStartedAt.Equal(startedAt) {
		t.Errorf("AssemblyStartedAt = %v, want %v", got.AssemblyStartedAt, startedAt)
	}
	if got.AssemblyNotes != "fixture A" {
		t.Errorf("AssemblyNotes = %q, want %q", got.AssemblyNotes, "fixture A")
	}

	gj, _ := db.GetJob(j.ID)
	if gj.Status != "in_assembly" {
		t.Errorf("job status = %q, want %q", gj.Status, "in_assembly")
	}
	gj2, _ := db.GetJob(j2.ID)
	if gj2.Status != "in_progress" {
		t.Errorf("machining job status = %q, want %q", gj2.Status, "in_progress")
	}

	// Starting again fails: the assembly is no longer pending
	if err := db.StartAssemblyCascade(woa.ID, wo.ID, "ST-4", "EMP-17", "jdoe", "", startedAt); err == nil {
		t.Error("expected error starting a non-pending assembly")
	}
}

func TestCompleteAssemblyCascade(t *testing.T) {
	db := testDB(t)

	asm := &Part{PartNumber: "ASM-1", PartType: "assembly", Active: true}
	db.CreatePart(asm)
	wo := &WorkOrder{OrderType: "production", Priority: "normal", Status: "in_progress"}
	db.CreateWorkOrder(wo, "WO")
	woa := &WorkOrderAssembly{WorkOrderID: wo.ID, AssemblyPartID: asm.ID, Quantity: 10, Status: "pending"}
	db.CreateAssembly(woa)

	j := &Job{WorkOrderID: wo.ID, WorkOrderAssemblyID: &woa.ID, Quantity: 10, Priority: "normal", Status: "ready_for_assembly"}
	db.CreateJob(j)

	startedAt := time.Date(2024, 6, 3, 8, 0, 0, 0, time.Local)
	db.StartAssemblyCascade(woa.ID, wo.ID, "ST-4", "EMP-17", "jdoe", "start note", startedAt)

	completedAt := startedAt.Add(3 * time.Hour)
	if err := db.CompleteAssemblyCascade(woa.ID, wo.ID, 9, 1, "jdoe", "one scrapped", completedAt); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, _ := db.GetAssembly(woa.ID)
	if got.Status != "complete" {
		t.Errorf("Status = %q, want %q", got.Status, "complete")
	}
	if got.GoodQuantity != 9 || got.BadQuantity != 1 {
		t.Errorf("quantities = %f/%f, want 9/1", got.GoodQuantity, got.BadQuantity)
	}
	if got.AssemblyNotes != "start note | one scrapped" {
		t.Errorf("AssemblyNotes = %q, want %q", got.AssemblyNotes, "start note | one scrapped")
	}

	gj, _ := db.GetJob(j.ID)
	if gj.Status != "pending_tco" {
		t.Errorf("job status = %q, want %q", gj.Status, "pending_tco")
	}

	// Completing leaves the parent work order alone
	gwo, _ := db.GetWorkOrder(wo.ID)
	if gwo.Status != "in_progress" {
		t.Errorf("work order status = %q, want %q", gwo.Status, "in_progress")
	}
}

func TestApproveTCOCascade(t *testing.T) {
	db := testDB(t)

	asm := &Part{PartNumber: "ASM-1", PartType: "assembly", Active: true}
	db.CreatePart(asm)
	wo := &WorkOrder{OrderType: "production", Priority: "normal", Status: "in_progress"}
	db.CreateWorkOrder(wo, "WO")
	woa := &WorkOrderAssembly{WorkOrderID: wo.ID, AssemblyPartID: asm.ID, Quantity: 10, Status: "complete"}
	db.CreateAssembly(woa)
	woa2 := &WorkOrderAssembly{WorkOrderID: wo.ID, AssemblyPartID: asm.ID, Quantity: 5, Status: "pending"}
	db.CreateAssembly(woa2)

	j := &Job{WorkOrderID: wo.ID, Quantity: 10, Priority: "normal", Status: "pending_tco"}
	db.CreateJob(j)

	completedAt := time.Date(2024, 6, 4, 10, 0, 0, 0, time.Local)
	if err := db.ApproveTCOCascade(wo.ID, completedAt, "qa-lead"); err != nil {
		t.Fatalf("approve: %v", err)
	}

	gwo, _ := db.GetWorkOrder(wo.ID)
	if gwo.Status != "complete" {
		t.Errorf("work order status = %q, want %q", gwo.Status, "complete")
	}
	if gwo.CompletedAt == nil {
		t.Error("CompletedAt should be set")
	}

	gj, _ := db.GetJob(j.ID)
	if gj.Status != "complete" {
		t.Errorf("job status = %q, want %q", gj.Status, "complete")
	}

	// The never-started assembly is swept closed with the approval time
	g2, _ := db.GetAssembly(woa2.ID)
	if g2.Status != "complete" {
		t.Errorf("assembly status = %q, want %q", g2.Status, "complete")
	}
	if g2.AssemblyCompletedAt == nil || !g2.AssemblyCompletedAt.Equal(completedAt) {
		t.Errorf("AssemblyCompletedAt = %v, want %v", g2.AssemblyCompletedAt, completedAt)
	}

	// Approving twice fails, the work order is already complete
	if err := db.ApproveTCOCascade(wo.ID, completedAt, "qa-lead"); err == nil {
		t.Error("expected error on double approval")
	}
}

// --- Master data tests ---

func TestMasterData(t *testing.T) {
	db := testDB(t)

	if err := db.CreateLocation(&Location{Name: "Bay 3", Description: "north wall"}); err != nil {
		t.Fatalf("create location: %v", err)
	}
	locs, _ := db.ListLocations()
	if len(locs) != 1 || locs[0].Name != "Bay 3" {
		t.Errorf("locations = %v", locs)
	}

	db.CreateMaterialType(&MaterialType{Name: "303 SS"})
	db.CreateMaterialType(&MaterialType{Name: "6061 AL"})
	mats, _ := db.ListMaterialTypes()
	if len(mats) != 2 {
		t.Errorf("material types = %d, want 2", len(mats))
	}

	db.CreateBarSize(&BarSize{Label: `1.25" round`})
	bars, _ := db.ListBarSizes()
	if len(bars) != 1 {
		t.Errorf("bar sizes = %d, want 1", len(bars))
	}
}

// --- Outbox tests ---

func TestOutboxCRUD(t *testing.T) {
	db := testDB(t)

	if err := db.EnqueueOutbox("shopcore.changes", []byte(`{"test":true}`), "job_status_changed", "core-1"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	db.EnqueueOutbox("shopcore.changes", []byte(`{"test":2}`), "work_order_created", "core-1")

	msgs, err := db.ListPendingOutbox(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2", len(msgs))
	}
	if msgs[0].MsgType != "job_status_changed" {
		t.Errorf("msg_type = %q, want %q", msgs[0].MsgType, "job_status_changed")
	}

	db.AckOutbox(msgs[0].ID)
	msgs2, _ := db.ListPendingOutbox(10)
	if len(msgs2) != 1 {
		t.Errorf("pending after ack = %d, want 1", len(msgs2))
	}

	db.IncrementOutboxRetries(msgs2[0].ID)
	msgs3, _ := db.ListPendingOutbox(10)
	if msgs3[0].Retries != 1 {
		t.Errorf("retries = %d, want 1", msgs3[0].Retries)
	}
}

// --- Audit tests ---

func TestAuditLog(t *testing.T) {
	db := testDB(t)

	db.AppendAudit(AuditJob, 1, "status_changed", "ready", "assigned", "scheduler")
	db.AppendAudit(AuditJob, 1, "status_changed", "assigned", "in_setup", "op-12")
	db.AppendAudit(AuditWorkOrder, 2, "created", "", "WO-2406-0001", "admin")

	entries, err := db.ListAuditLog(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("len = %d, want 3", len(entries))
	}
	// Most recent first
	if entries[0].Action != "created" {
		t.Errorf("first entry action = %q, want %q", entries[0].Action, "created")
	}

	jobEntries, _ := db.ListEntityAudit(AuditJob, 1)
	if len(jobEntries) != 2 {
		t.Errorf("job entries = %d, want 2", len(jobEntries))
	}
	if jobEntries[0].EntityType != AuditJob {
		t.Errorf("entity = %q, want %q", jobEntries[0].EntityType, AuditJob)
	}
}

// --- Admin user tests ---

func TestAdminUsers(t *testing.T) {
	db := testDB(t)

	exists, err := db.AdminUserExists()
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Error("no users expected in a fresh db")
	}

	if err := db.CreateAdminUser("qa-lead", "hash123", "compliance"); err != nil {
		t.Fatalf("create: %v", err)
	}

	u, err := db.GetAdminUser("qa-lead")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u == nil {
		t.Fatal("user should exist")
	}
	if u.Role != "compliance" {
		t.Errorf("Role = %q, want %q", u.Role, "compliance")
	}

	missing, err := db.GetAdminUser("nobody")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("missing user should be nil")
	}

	exists2, _ := db.AdminUserExists()
	if !exists2 {
		t.Error("user should exist now")
	}
}

// --- Sequence and dialect tests ---

func TestNumberPrefix(t *testing.T) {
	now := time.Date(2024, 5, 12, 0, 0, 0, 0, time.Local)
	if got := NumberPrefix("WO", now); got != "WO-2405-" {
		t.Errorf("WO prefix = %q, want %q", got, "WO-2405-")
	}
	if got := NumberPrefix("MO", now); got != "MO-2405-" {
		t.Errorf("MO prefix = %q, want %q", got, "MO-2405-")
	}
	if got := NumberPrefix("J", now); got != "J-" {
		t.Errorf("J prefix = %q, want %q", got, "J-")
	}
}

func TestNextNumberFallback(t *testing.T) {
	db := testDB(t)

	// Plant a malformed number in the current bucket; allocation falls back to 0001
	bucket := NumberPrefix("WO", time.Now())
	db.Exec(db.Q(`INSERT INTO work_orders (wo_number, order_type, priority, status) VALUES (?, 'production', 'normal', 'pending')`), bucket+"XXXX")

	got := db.NextNumber("WO", "work_orders", "wo_number", 4)
	if got != bucket+"0001" {
		t.Errorf("NextNumber = %q, want %q", got, bucket+"0001")
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"SELECT * FROM t WHERE a=? AND b=?", "SELECT * FROM t WHERE a=$1 AND b=$2"},
		{"INSERT INTO t (a) VALUES (?)", "INSERT INTO t (a) VALUES ($1)"},
		{"SELECT 1", "SELECT 1"},
	}
	for _, tt := range tests {
		got := Rebind(tt.input)
		if got != tt.want {
			t.Errorf("Rebind(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseTime(t *testing.T) {
	// time.Parse with a zone-less layout yields UTC.
	want := time.Date(2024, 6, 3, 15, 4, 5, 0, time.UTC)
	if got := parseTime("2024-06-03 15:04:05"); !got.Equal(want) {
		t.Errorf("parseTime = %v, want %v", got, want)
	}
	if got := parseTime(nil); !got.IsZero() {
		t.Errorf("parseTime(nil) = %v, want zero", got)
	}
	if got := parseTime("2024-06-03"); got.Day() != 3 {
		t.Errorf("date-only parse day = %d, want 3", got.Day())
	}
}
