package shopfloor

import "time"

// Emitter is the interface adapters must satisfy to bridge shop-floor
// events to the engine.
type Emitter interface {
	EmitJobStatusChanged(jobID int64, jobNumber, oldStatus, newStatus, actor string)
	EmitJobRequeued(jobID int64, jobNumber, reason string)
	EmitJobRescheduled(jobID, machineID int64, start, end time.Time)
	EmitWorkOrderCreated(woID int64, woNumber, orderType, actor string)
	EmitWorkOrderCompleted(woID int64, woNumber, actor string)
	EmitAssemblyStarted(woaID, woID int64, station, assembler, actor string)
	EmitAssemblyCompleted(woaID, woID int64, goodQty, badQty float64, actor string)
	EmitTCOApproved(woID int64, woNumber, actor string)
	EmitMaintenanceScheduled(woID, jobID, machineID int64, maintenanceType, policy string)
	EmitMachineStatusChanged(machineID int64, status, reason string)
}
