package views

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"shopcore/config"
	"shopcore/shopfloor"
	"shopcore/store"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	db, err := store.Open(&config.DatabaseConfig{
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

func machineWithStatus(t *testing.T, db *store.DB, code, status string) *store.Machine {
	t.Helper()
	m := &store.Machine{Name: "Machine " + code, Code: code, Status: status, Active: true}
	if err := db.CreateMachine(m); err != nil {
		t.Fatalf("create machine: %v", err)
	}
	return m
}

func TestEffectiveMachineStatus(t *testing.T) {
	m := &store.Machine{ID: 7, Status: "available"}
	other := int64(9)
	self := int64(7)

	tests := []struct {
		name      string
		logs      []*store.DowntimeLog
		maintJobs []*store.Job
		want      shopfloor.MachineStatus
	}{
		{"no signals", nil, nil, shopfloor.MachineAvailable},
		{"open log wins", []*store.DowntimeLog{{MachineID: 7}}, nil, shopfloor.MachineDown},
		{"closed log ignored", []*store.DowntimeLog{{MachineID: 7, EndTime: &time.Time{}}}, nil, shopfloor.MachineAvailable},
		{"other machine log ignored", []*store.DowntimeLog{{MachineID: 9}}, nil, shopfloor.MachineAvailable},
		{"maintenance job", nil, []*store.Job{{IsMaintenance: true, AssignedMachineID: &self}}, shopfloor.MachineMaintenance},
		{"maintenance job elsewhere", nil, []*store.Job{{IsMaintenance: true, AssignedMachineID: &other}}, shopfloor.MachineAvailable},
		{"log outranks maintenance job", []*store.DowntimeLog{{MachineID: 7}}, []*store.Job{{IsMaintenance: true, AssignedMachineID: &self}}, shopfloor.MachineDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectiveMachineStatus(m, tt.logs, tt.maintJobs)
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	down := &store.Machine{ID: 7, Status: "down"}
	if got := EffectiveMachineStatus(down, nil, nil); got != shopfloor.MachineDown {
		t.Errorf("stored down status: got %s, want down", got)
	}
}

func TestMachineUnavailable(t *testing.T) {
	if !MachineUnavailable(shopfloor.MachineDown) || !MachineUnavailable(shopfloor.MachineMaintenance) || !MachineUnavailable(shopfloor.MachineOffline) {
		t.Error("down, maintenance and offline should be unavailable")
	}
	if MachineUnavailable(shopfloor.MachineAvailable) || MachineUnavailable(shopfloor.MachineInUse) {
		t.Error("available and in_use should not be unavailable")
	}
}

func TestMachineBoard(t *testing.T) {
	db := testDB(t)
	m := NewManager(db, nil)

	up := machineWithStatus(t, db, "VF2", "available")
	logged := machineWithStatus(t, db, "ST20", "available")
	if _, err := db.OpenDowntimeLog(logged.ID, time.Now(), "unplanned_maintenance", "spindle fault"); err != nil {
		t.Fatalf("open downtime log: %v", err)
	}

	board, err := m.MachineBoard()
	if err != nil {
		t.Fatalf("machine board: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("got %d machines, want 2", len(board))
	}

	byID := make(map[int64]*MachineView)
	for _, mv := range board {
		byID[mv.ID] = mv
	}
	if got := byID[up.ID].EffectiveStatus; got != "available" {
		t.Errorf("up machine: got %s, want available", got)
	}
	if got := byID[logged.ID].EffectiveStatus; got != "down" {
		t.Errorf("logged machine: got %s, want down", got)
	}
	if got := byID[logged.ID].DowntimeReason; got != "unplanned_maintenance" {
		t.Errorf("downtime reason: got %q", got)
	}

	down, err := m.DownMachines()
	if err != nil {
		t.Fatalf("down machines: %v", err)
	}
	if len(down) != 1 || down[0].ID != logged.ID {
		t.Errorf("down machines: got %v, want just machine %d", down, logged.ID)
	}
}

func TestDashboardWithoutCache(t *testing.T) {
	db := testDB(t)
	m := NewManager(db, nil)
	machineID := machineWithStatus(t, db, "VF2", "available").ID

	wo := &store.WorkOrder{OrderType: "make_to_order", Priority: "normal", Status: "in_progress"}
	if err := db.CreateWorkOrder(wo, store.NumberPrefix("WO", time.Now())); err != nil {
		t.Fatalf("create work order: %v", err)
	}

	ready := &store.Job{WorkOrderID: wo.ID, Quantity: 5, Priority: "normal", Status: "ready"}
	if err := db.CreateJob(ready); err != nil {
		t.Fatalf("create ready job: %v", err)
	}
	start := time.Now()
	end := start.Add(2 * time.Hour)
	running := &store.Job{WorkOrderID: wo.ID, Quantity: 5, Priority: "normal", Status: "ready"}
	if err := db.CreateJob(running); err != nil {
		t.Fatalf("create running job: %v", err)
	}
	if err := db.UpdateJobSchedule(running.ID, machineID, start, end, "in_progress"); err != nil {
		t.Fatalf("schedule job: %v", err)
	}

	dash, err := m.Dashboard()
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dash.ActiveJobs) != 1 || dash.ActiveJobs[0].ID != running.ID {
		t.Errorf("active jobs: got %d, want the running job", len(dash.ActiveJobs))
	}
	if len(dash.UnassignedJobs) != 1 || dash.UnassignedJobs[0].ID != ready.ID {
		t.Errorf("unassigned jobs: got %d, want the ready job", len(dash.UnassignedJobs))
	}
	if len(dash.DownMachines) != 0 {
		t.Errorf("down machines: got %d, want 0", len(dash.DownMachines))
	}
	if dash.Assemblies == nil {
		t.Fatal("assemblies bucket missing")
	}
}

func TestAssemblyBoardSkipsMaintenanceOrders(t *testing.T) {
	db := testDB(t)
	m := NewManager(db, nil)

	mo := &store.WorkOrder{OrderType: "maintenance", MaintenanceType: "planned", Priority: "high", Status: "in_progress"}
	if err := db.CreateWorkOrder(mo, store.NumberPrefix("MO", time.Now())); err != nil {
		t.Fatalf("create maintenance order: %v", err)
	}
	job := &store.Job{WorkOrderID: mo.ID, Quantity: 1, Priority: "high", Status: "ready_for_assembly", IsMaintenance: true}
	if err := db.CreateJob(job); err != nil {
		t.Fatalf("create maintenance job: %v", err)
	}

	buckets, err := m.AssemblyBoard()
	if err != nil {
		t.Fatalf("assembly board: %v", err)
	}
	if len(buckets.Queued) != 0 || len(buckets.InProgress) != 0 {
		t.Errorf("maintenance order leaked into assembly board: %+v", buckets)
	}
}
