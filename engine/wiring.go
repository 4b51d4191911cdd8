package engine

import (
	"encoding/json"
	"fmt"
	"log"

	"shopcore/messaging"
)

func (e *Engine) wireEventHandlers() {
	// Job lifecycle: the controller writes the audit rows itself, so the
	// engine only fans the change out.
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(JobStatusChangedEvent)
		e.logFn("engine: job %s %s -> %s (%s)", ev.JobNumber, ev.OldStatus, ev.NewStatus, ev.Actor)
		e.publishChange("jobs", "status_changed", ev.JobID)
	}, EventJobStatusChanged)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(JobRequeuedEvent)
		e.logFn("engine: job %s requeued: %s", ev.JobNumber, ev.Reason)
		e.publishChange("jobs", "requeued", ev.JobID)
	}, EventJobRequeued)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(JobRescheduledEvent)
		e.publishChange("jobs", "rescheduled", ev.JobID)
		e.views.Invalidate("machines")
	}, EventJobRescheduled)

	// Work orders
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(WorkOrderCreatedEvent)
		e.logFn("engine: work order %s created (%s) by %s", ev.WONumber, ev.OrderType, ev.Actor)
		e.db.AppendAudit("work_order", ev.WorkOrderID, "created", "", fmt.Sprintf("%s %s", ev.WONumber, ev.OrderType), ev.Actor)
		e.publishChange("work_orders", "created", ev.WorkOrderID)
	}, EventWorkOrderCreated)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(WorkOrderCompletedEvent)
		e.logFn("engine: work order %s completed", ev.WONumber)
		e.publishChange("work_orders", "completed", ev.WorkOrderID)
	}, EventWorkOrderCompleted)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(TCOApprovedEvent)
		e.logFn("engine: TCO approved for %s by %s", ev.WONumber, ev.Actor)
		e.publishChange("work_orders", "tco_approved", ev.WorkOrderID)
	}, EventTCOApproved)

	// Assemblies
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(AssemblyStartedEvent)
		e.db.AppendAudit("assembly", ev.AssemblyID, "started", "", fmt.Sprintf("station=%s assembler=%s", ev.Station, ev.Assembler), ev.Actor)
		e.publishChange("work_order_assemblies", "started", ev.AssemblyID)
	}, EventAssemblyStarted)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(AssemblyCompletedEvent)
		e.db.AppendAudit("assembly", ev.AssemblyID, "completed", "", fmt.Sprintf("good=%.2f bad=%.2f", ev.GoodQty, ev.BadQty), ev.Actor)
		e.publishChange("work_order_assemblies", "completed", ev.AssemblyID)
	}, EventAssemblyCompleted)

	// Maintenance and machine state
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(MaintenanceScheduledEvent)
		e.logFn("engine: maintenance scheduled on machine %d (wo %d, policy %q)", ev.MachineID, ev.WorkOrderID, ev.Policy)
		e.db.AppendAudit("machine", ev.MachineID, "maintenance_scheduled", "", fmt.Sprintf("type=%s policy=%s", ev.MaintenanceType, ev.Policy), "system")
		e.publishChange("work_orders", "created", ev.WorkOrderID)
		e.views.Invalidate("machines")
	}, EventMaintenanceScheduled)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(MachineStatusChangedEvent)
		e.db.AppendAudit("machine", ev.MachineID, "status_changed", "", fmt.Sprintf("%s: %s", ev.Status, ev.Reason), "system")
		e.publishChange("machines", "status_changed", ev.MachineID)
	}, EventMachineStatusChanged)

	// Messaging health transitions are log-only.
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(ConnectionEvent)
		log.Printf("engine: messaging connection change: %s", ev.Detail)
	}, EventMessagingConnected, EventMessagingDisconnected)
}

// publishChange stages a change record on the outbox and invalidates the
// local view for the touched table. The drainer picks the record up on its
// next pass, so a publish survives a broker outage.
func (e *Engine) publishChange(table, action string, id int64) {
	rec := messaging.ChangeRecord{Table: table, Action: action, ID: id}
	data, err := json.Marshal(rec)
	if err != nil {
		log.Printf("engine: marshal change record: %v", err)
		return
	}
	if err := e.db.EnqueueOutbox(e.cfg.Messaging.ChangesTopic, data, "change."+table, e.cfg.Messaging.StationID); err != nil {
		log.Printf("engine: enqueue change record: %v", err)
	}
	e.views.Invalidate(table)
}
