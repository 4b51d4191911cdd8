package shopfloor

import (
	"testing"
	"time"

	"shopcore/store"
)

func jobWithStatus(woaID int64, status JobStatus) *store.Job {
	j := &store.Job{Status: string(status)}
	if woaID != 0 {
		j.WorkOrderAssemblyID = &woaID
	}
	return j
}

func TestIsAssemblyReady(t *testing.T) {
	tests := []struct {
		name     string
		statuses []JobStatus
		want     bool
	}{
		{"no jobs", nil, false},
		{"all ready for assembly", []JobStatus{JobReadyForAssembly, JobReadyForAssembly}, true},
		{"mix of assembly stages", []JobStatus{JobReadyForAssembly, JobInAssembly, JobComplete}, true},
		{"one still machining", []JobStatus{JobReadyForAssembly, JobInProgress}, false},
		{"one pending compliance", []JobStatus{JobComplete, JobPendingCompliance}, false},
		{"all complete, nothing left to assemble", []JobStatus{JobComplete, JobComplete}, false},
		{"single in assembly", []JobStatus{JobInAssembly}, true},
		{"pending tco not assembly work", []JobStatus{JobPendingTCO}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var jobs []*store.Job
			for _, s := range tt.statuses {
				jobs = append(jobs, jobWithStatus(1, s))
			}
			if got := IsAssemblyReady(jobs); got != tt.want {
				t.Errorf("IsAssemblyReady(%v) = %v, want %v", tt.statuses, got, tt.want)
			}
		})
	}
}

func TestClassifyAssemblies(t *testing.T) {
	now := dt(2024, 6, 5, 12, 0) // Wednesday
	thisWeek := dt(2024, 6, 4, 14, 0)
	lastWeek := dt(2024, 5, 28, 14, 0)

	mkDetail := func(woID int64) *store.WorkOrderDetail {
		return &store.WorkOrderDetail{WorkOrder: &store.WorkOrder{ID: woID, Status: "in_progress"}}
	}

	// WO 1: one queued assembly, one in-progress assembly
	d1 := mkDetail(1)
	d1.Assemblies = []*store.WorkOrderAssembly{
		{ID: 10, WorkOrderID: 1, AssemblyPartID: 100, Status: string(WOAPending)},
		{ID: 11, WorkOrderID: 1, AssemblyPartID: 100, Status: string(WOAInProgress)},
	}
	d1.Jobs = []*store.Job{
		jobWithStatus(10, JobReadyForAssembly),
		jobWithStatus(11, JobInAssembly),
	}

	// WO 2: completed this week and completed last week
	d2 := mkDetail(2)
	d2.Assemblies = []*store.WorkOrderAssembly{
		{ID: 20, WorkOrderID: 2, AssemblyPartID: 100, Status: string(WOAComplete), AssemblyCompletedAt: &thisWeek},
		{ID: 21, WorkOrderID: 2, AssemblyPartID: 100, Status: string(WOAComplete), AssemblyCompletedAt: &lastWeek},
	}

	// WO 3: assembly whose jobs are still machining, excluded
	d3 := mkDetail(3)
	d3.Assemblies = []*store.WorkOrderAssembly{
		{ID: 30, WorkOrderID: 3, AssemblyPartID: 100, Status: string(WOAPending)},
	}
	d3.Jobs = []*store.Job{jobWithStatus(30, JobInProgress)}

	// WO 4: finished-good assembly, skipped outright
	d4 := mkDetail(4)
	d4.Assemblies = []*store.WorkOrderAssembly{
		{ID: 40, WorkOrderID: 4, AssemblyPartID: 200, Status: string(WOAPending)},
	}
	d4.Jobs = []*store.Job{jobWithStatus(40, JobReadyForAssembly)}

	partTypes := map[int64]PartType{100: PartAssembly, 200: PartFinishedGood}

	buckets := ClassifyAssemblies([]*store.WorkOrderDetail{d1, d2, d3, d4}, partTypes, now)

	if len(buckets.Queued) != 1 || buckets.Queued[0].Assembly.ID != 10 {
		t.Errorf("queued = %v, want assembly 10", buckets.Queued)
	}
	if len(buckets.InProgress) != 1 || buckets.InProgress[0].Assembly.ID != 11 {
		t.Errorf("inProgress = %v, want assembly 11", buckets.InProgress)
	}
	if len(buckets.CompletedThisWeek) != 1 || buckets.CompletedThisWeek[0].Assembly.ID != 20 {
		t.Errorf("completedThisWeek = %v, want assembly 20 only", buckets.CompletedThisWeek)
	}
}

func TestClassifyAssemblies_VirtualEntry(t *testing.T) {
	now := dt(2024, 6, 5, 12, 0)

	// Jobs ready for assembly but no assembly rows at all
	d := &store.WorkOrderDetail{WorkOrder: &store.WorkOrder{ID: 1, Status: "in_progress"}}
	d.Jobs = []*store.Job{
		jobWithStatus(0, JobReadyForAssembly),
		jobWithStatus(0, JobComplete),
	}

	buckets := ClassifyAssemblies([]*store.WorkOrderDetail{d}, nil, now)
	if len(buckets.Queued) != 1 {
		t.Fatalf("queued = %d, want 1 virtual entry", len(buckets.Queued))
	}
	entry := buckets.Queued[0]
	if !entry.MissingAssembly {
		t.Error("entry should be flagged MissingAssembly")
	}
	if entry.Assembly != nil {
		t.Error("virtual entry carries no assembly row")
	}

	// Jobs still machining: no virtual entry either
	d2 := &store.WorkOrderDetail{WorkOrder: &store.WorkOrder{ID: 2, Status: "in_progress"}}
	d2.Jobs = []*store.Job{jobWithStatus(0, JobInProgress)}
	buckets2 := ClassifyAssemblies([]*store.WorkOrderDetail{d2}, nil, now)
	if len(buckets2.Queued) != 0 {
		t.Errorf("queued = %d, want 0", len(buckets2.Queued))
	}
}

func TestClassifyAssemblies_CompletedSortedDescending(t *testing.T) {
	now := dt(2024, 6, 5, 12, 0)
	mon := dt(2024, 6, 3, 9, 0)
	tue := dt(2024, 6, 4, 9, 0)
	wed := dt(2024, 6, 5, 9, 0)

	d := &store.WorkOrderDetail{WorkOrder: &store.WorkOrder{ID: 1, Status: "in_progress"}}
	d.Assemblies = []*store.WorkOrderAssembly{
		{ID: 1, AssemblyPartID: 100, Status: string(WOAComplete), AssemblyCompletedAt: &mon},
		{ID: 2, AssemblyPartID: 100, Status: string(WOAComplete), AssemblyCompletedAt: &wed},
		{ID: 3, AssemblyPartID: 100, Status: string(WOAComplete), AssemblyCompletedAt: &tue},
	}

	buckets := ClassifyAssemblies([]*store.WorkOrderDetail{d}, map[int64]PartType{100: PartAssembly}, now)
	if len(buckets.CompletedThisWeek) != 3 {
		t.Fatalf("completed = %d, want 3", len(buckets.CompletedThisWeek))
	}
	ids := []int64{buckets.CompletedThisWeek[0].Assembly.ID, buckets.CompletedThisWeek[1].Assembly.ID, buckets.CompletedThisWeek[2].Assembly.ID}
	if ids[0] != 2 || ids[1] != 3 || ids[2] != 1 {
		t.Errorf("order = %v, want [2 3 1] (most recent first)", ids)
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{dt(2024, 6, 5, 12, 0), dt(2024, 6, 3, 0, 0)},  // Wednesday
		{dt(2024, 6, 3, 0, 0), dt(2024, 6, 3, 0, 0)},   // Monday itself
		{dt(2024, 6, 9, 23, 0), dt(2024, 6, 3, 0, 0)},  // Sunday belongs to the prior Monday
		{dt(2024, 6, 10, 1, 0), dt(2024, 6, 10, 0, 0)}, // next Monday
	}
	for _, tt := range tests {
		if got := WeekStart(tt.in); !got.Equal(tt.want) {
			t.Errorf("WeekStart(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
