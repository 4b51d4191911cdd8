package engine

import "time"

// shopfloorEmitter bridges the shopfloor package's emitter interface to the
// EventBus. The lifecycle controller stays unaware of the bus.
type shopfloorEmitter struct {
	bus *EventBus
}

func (e *shopfloorEmitter) EmitJobStatusChanged(jobID int64, jobNumber, oldStatus, newStatus, actor string) {
	e.bus.Emit(Event{Type: EventJobStatusChanged, Payload: JobStatusChangedEvent{
		JobID:     jobID,
		JobNumber: jobNumber,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Actor:     actor,
	}})
}

func (e *shopfloorEmitter) EmitJobRequeued(jobID int64, jobNumber, reason string) {
	e.bus.Emit(Event{Type: EventJobRequeued, Payload: JobRequeuedEvent{
		JobID:     jobID,
		JobNumber: jobNumber,
		Reason:    reason,
	}})
}

func (e *shopfloorEmitter) EmitJobRescheduled(jobID, machineID int64, start, end time.Time) {
	e.bus.Emit(Event{Type: EventJobRescheduled, Payload: JobRescheduledEvent{
		JobID:     jobID,
		MachineID: machineID,
		Start:     start,
		End:       end,
	}})
}

func (e *shopfloorEmitter) EmitWorkOrderCreated(woID int64, woNumber, orderType, actor string) {
	e.bus.Emit(Event{Type: EventWorkOrderCreated, Payload: WorkOrderCreatedEvent{
		WorkOrderID: woID,
		WONumber:    woNumber,
		OrderType:   orderType,
		Actor:       actor,
	}})
}

func (e *shopfloorEmitter) EmitWorkOrderCompleted(woID int64, woNumber, actor string) {
	e.bus.Emit(Event{Type: EventWorkOrderCompleted, Payload: WorkOrderCompletedEvent{
		WorkOrderID: woID,
		WONumber:    woNumber,
		Actor:       actor,
	}})
}

func (e *shopfloorEmitter) EmitAssemblyStarted(woaID, woID int64, station, assembler, actor string) {
	e.bus.Emit(Event{Type: EventAssemblyStarted, Payload: AssemblyStartedEvent{
		AssemblyID:  woaID,
		WorkOrderID: woID,
		Station:     station,
		Assembler:   assembler,
		Actor:       actor,
	}})
}

func (e *shopfloorEmitter) EmitAssemblyCompleted(woaID, woID int64, goodQty, badQty float64, actor string) {
	e.bus.Emit(Event{Type: EventAssemblyCompleted, Payload: AssemblyCompletedEvent{
		AssemblyID:  woaID,
		WorkOrderID: woID,
		GoodQty:     goodQty,
		BadQty:      badQty,
		Actor:       actor,
	}})
}

func (e *shopfloorEmitter) EmitTCOApproved(woID int64, woNumber, actor string) {
	e.bus.Emit(Event{Type: EventTCOApproved, Payload: TCOApprovedEvent{
		WorkOrderID: woID,
		WONumber:    woNumber,
		Actor:       actor,
	}})
}

func (e *shopfloorEmitter) EmitMaintenanceScheduled(woID, jobID, machineID int64, maintenanceType, policy string) {
	e.bus.Emit(Event{Type: EventMaintenanceScheduled, Payload: MaintenanceScheduledEvent{
		WorkOrderID:     woID,
		JobID:           jobID,
		MachineID:       machineID,
		MaintenanceType: maintenanceType,
		Policy:          policy,
	}})
}

func (e *shopfloorEmitter) EmitMachineStatusChanged(machineID int64, status, reason string) {
	e.bus.Emit(Event{Type: EventMachineStatusChanged, Payload: MachineStatusChangedEvent{
		MachineID: machineID,
		Status:    status,
		Reason:    reason,
	}})
}
