package shopfloor

// Job statuses form a linear manufacturing pipeline with two escape
// states: cancelled (terminal) and incomplete (requeued back to ready).
type JobStatus string

const (
	JobPendingCompliance        JobStatus = "pending_compliance"
	JobReady                    JobStatus = "ready"
	JobAssigned                 JobStatus = "assigned"
	JobInSetup                  JobStatus = "in_setup"
	JobInProgress               JobStatus = "in_progress"
	JobManufacturingComplete    JobStatus = "manufacturing_complete"
	JobPendingPassivation       JobStatus = "pending_passivation"
	JobInPassivation            JobStatus = "in_passivation"
	JobPendingPostManufacturing JobStatus = "pending_post_manufacturing"
	JobReadyForAssembly         JobStatus = "ready_for_assembly"
	JobInAssembly               JobStatus = "in_assembly"
	JobPendingTCO               JobStatus = "pending_tco"
	JobComplete                 JobStatus = "complete"
	JobCancelled                JobStatus = "cancelled"
	JobIncomplete               JobStatus = "incomplete"
)

// jobPipelineRank orders the linear pipeline. The passivation branch
// slots between in_progress and pending_post_manufacturing; escape
// states carry no rank.
var jobPipelineRank = map[JobStatus]int{
	JobPendingCompliance:        0,
	JobReady:                    1,
	JobAssigned:                 2,
	JobInSetup:                  3,
	JobInProgress:               4,
	JobManufacturingComplete:    5,
	JobPendingPassivation:       5,
	JobInPassivation:            6,
	JobPendingPostManufacturing: 7,
	JobReadyForAssembly:         8,
	JobInAssembly:               9,
	JobPendingTCO:               10,
	JobComplete:                 11,
}

func (s JobStatus) Valid() bool {
	if s == JobCancelled || s == JobIncomplete {
		return true
	}
	_, ok := jobPipelineRank[s]
	return ok
}

// Terminal reports whether the status ends the job's lifecycle.
func (s JobStatus) Terminal() bool {
	return s == JobComplete || s == JobCancelled
}

// AtLeast reports whether s sits at or past other in the pipeline.
// Escape states never satisfy an ordering test.
func (s JobStatus) AtLeast(other JobStatus) bool {
	a, ok1 := jobPipelineRank[s]
	b, ok2 := jobPipelineRank[other]
	return ok1 && ok2 && a >= b
}

func (s JobStatus) String() string { return string(s) }

// ActiveMachineJobStatuses are the statuses that hold a machine's
// schedule. Maintenance conflict detection scans exactly these.
var ActiveMachineJobStatuses = []JobStatus{JobAssigned, JobInSetup, JobInProgress}

type WOStatus string

const (
	WOPending    WOStatus = "pending"
	WOInProgress WOStatus = "in_progress"
	WOComplete   WOStatus = "complete"
)

func (s WOStatus) Valid() bool {
	switch s {
	case WOPending, WOInProgress, WOComplete:
		return true
	}
	return false
}

func (s WOStatus) String() string { return string(s) }

type WOAStatus string

const (
	WOAPending    WOAStatus = "pending"
	WOAInProgress WOAStatus = "in_progress"
	WOAComplete   WOAStatus = "complete"
)

func (s WOAStatus) Valid() bool {
	switch s {
	case WOAPending, WOAInProgress, WOAComplete:
		return true
	}
	return false
}

func (s WOAStatus) String() string { return string(s) }

type MachineStatus string

const (
	MachineAvailable   MachineStatus = "available"
	MachineInUse       MachineStatus = "in_use"
	MachineMaintenance MachineStatus = "maintenance"
	MachineDown        MachineStatus = "down"
	MachineOffline     MachineStatus = "offline"
)

func (s MachineStatus) Valid() bool {
	switch s {
	case MachineAvailable, MachineInUse, MachineMaintenance, MachineDown, MachineOffline:
		return true
	}
	return false
}

func (s MachineStatus) String() string { return string(s) }

type OrderType string

const (
	OrderMakeToOrder OrderType = "make_to_order"
	OrderMakeToStock OrderType = "make_to_stock"
	OrderMaintenance OrderType = "maintenance"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderMakeToOrder, OrderMakeToStock, OrderMaintenance:
		return true
	}
	return false
}

func (t OrderType) String() string { return string(t) }

type MaintenanceType string

const (
	MaintenancePlanned   MaintenanceType = "planned"
	MaintenanceUnplanned MaintenanceType = "unplanned"
)

func (t MaintenanceType) Valid() bool {
	return t == MaintenancePlanned || t == MaintenanceUnplanned
}

func (t MaintenanceType) String() string { return string(t) }

type PartType string

const (
	PartAssembly     PartType = "assembly"
	PartFinishedGood PartType = "finished_good"
	PartManufactured PartType = "manufactured"
	PartPurchased    PartType = "purchased"
)

func (t PartType) Valid() bool {
	switch t {
	case PartAssembly, PartFinishedGood, PartManufactured, PartPurchased:
		return true
	}
	return false
}

func (t PartType) String() string { return string(t) }

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityNormal   Priority = "normal"
	PriorityLow      Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

func (p Priority) String() string { return string(p) }
