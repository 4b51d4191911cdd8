package engine

import "time"

const (
	EventJobStatusChanged EventType = iota + 1
	EventJobRequeued
	EventJobRescheduled
	EventWorkOrderCreated
	EventWorkOrderCompleted
	EventAssemblyStarted
	EventAssemblyCompleted
	EventTCOApproved
	EventMaintenanceScheduled
	EventMachineStatusChanged
	EventMessagingConnected
	EventMessagingDisconnected
)

// --- Event payloads ---

type JobStatusChangedEvent struct {
	JobID     int64
	JobNumber string
	OldStatus string
	NewStatus string
	Actor     string
}

type JobRequeuedEvent struct {
	JobID     int64
	JobNumber string
	Reason    string
}

type JobRescheduledEvent struct {
	JobID     int64
	MachineID int64
	Start     time.Time
	End       time.Time
}

type WorkOrderCreatedEvent struct {
	WorkOrderID int64
	WONumber    string
	OrderType   string
	Actor       string
}

type WorkOrderCompletedEvent struct {
	WorkOrderID int64
	WONumber    string
	Actor       string
}

type AssemblyStartedEvent struct {
	AssemblyID  int64
	WorkOrderID int64
	Station     string
	Assembler   string
	Actor       string
}

type AssemblyCompletedEvent struct {
	AssemblyID  int64
	WorkOrderID int64
	GoodQty     float64
	BadQty      float64
	Actor       string
}

type TCOApprovedEvent struct {
	WorkOrderID int64
	WONumber    string
	Actor       string
}

type MaintenanceScheduledEvent struct {
	WorkOrderID     int64
	JobID           int64
	MachineID       int64
	MaintenanceType string
	Policy          string
}

type MachineStatusChangedEvent struct {
	MachineID int64
	Status    string
	Reason    string
}

type ConnectionEvent struct {
	Detail string
}
