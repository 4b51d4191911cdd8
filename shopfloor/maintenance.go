package shopfloor

import (
	"fmt"
	"log"
	"time"

	"shopcore/store"
)

// ResolvePolicy picks what happens to jobs displaced by an unplanned
// maintenance window.
type ResolvePolicy string

const (
	// ResolveReturnToQueue unschedules every conflicted job back to the
	// ready pool.
	ResolveReturnToQueue ResolvePolicy = "return_to_queue"
	// ResolveMoveNext re-packs conflicted jobs serially after the
	// maintenance window, preserving durations and fetch order.
	ResolveMoveNext ResolvePolicy = "move_next"
)

type MaintenanceRequest struct {
	MachineID     int64           `json:"machine_id"`
	Type          MaintenanceType `json:"maintenance_type"`
	Description   string          `json:"description"`
	Start         time.Time       `json:"start"`
	DurationHours float64         `json:"duration_hours"`
	Priority      Priority        `json:"priority"`
	Actor         string          `json:"-"`
}

// MaintenancePlan is the halted first phase of maintenance creation:
// the computed window plus any scheduled jobs it would displace.
// Nothing has been written when a plan comes back with conflicts; the
// caller must pick a policy and resolve.
type MaintenancePlan struct {
	Request   *MaintenanceRequest `json:"request"`
	WindowEnd time.Time           `json:"window_end"`
	Conflicts []*store.Job        `json:"conflicts"`
}

// PlanMaintenance computes the maintenance window on the shift
// calendar and collects the jobs it collides with. Planned maintenance
// never conflicts; it is scheduled around, not through, existing work.
func (c *Controller) PlanMaintenance(req *MaintenanceRequest) (*MaintenancePlan, error) {
	if req.MachineID == 0 {
		return nil, &ValidationError{Field: "machine_id", Msg: "a machine is required"}
	}
	if req.Description == "" {
		return nil, &ValidationError{Field: "description", Msg: "a description is required"}
	}
	if !req.Type.Valid() {
		return nil, &ValidationError{Field: "maintenance_type", Msg: "must be planned or unplanned"}
	}
	if req.DurationHours <= 0 {
		return nil, &ValidationError{Field: "duration_hours", Msg: "duration must be positive"}
	}
	if req.Priority == "" {
		req.Priority = PriorityNormal
	}
	if _, err := c.db.GetMachine(req.MachineID); err != nil {
		return nil, &ValidationError{Field: "machine_id", Msg: fmt.Sprintf("machine %d not found", req.MachineID)}
	}

	plan := &MaintenancePlan{
		Request:   req,
		WindowEnd: ComputeEnd(req.Start, req.DurationHours),
	}
	if req.Type != MaintenanceUnplanned {
		return plan, nil
	}

	statuses := make([]string, len(ActiveMachineJobStatuses))
	for i, s := range ActiveMachineJobStatuses {
		statuses[i] = string(s)
	}
	jobs, err := c.db.ListMachineJobsByStatus(req.MachineID, statuses...)
	if err != nil {
		return nil, fmt.Errorf("jobs on machine %d: %w", req.MachineID, err)
	}
	for _, j := range jobs {
		if overlaps(j, req.Start, plan.WindowEnd) {
			plan.Conflicts = append(plan.Conflicts, j)
		}
	}
	return plan, nil
}

// overlaps is a strict interval intersection: a job with no schedule
// never conflicts.
func overlaps(j *store.Job, start, end time.Time) bool {
	if j.ScheduledStart == nil || j.ScheduledEnd == nil {
		return false
	}
	return j.ScheduledStart.Before(end) && j.ScheduledEnd.After(start)
}

// ResolveAndCreate is the second phase: apply the caller's policy to
// every conflicted job, then create the maintenance order and its
// single job. Unplanned maintenance forces the machine down and opens
// a downtime log. A plan with conflicts and no policy is rejected; the
// system never bumps scheduled work silently.
func (c *Controller) ResolveAndCreate(plan *MaintenancePlan, policy ResolvePolicy) (*store.WorkOrder, error) {
	req := plan.Request

	if len(plan.Conflicts) > 0 {
		switch policy {
		case ResolveReturnToQueue:
			for _, j := range plan.Conflicts {
				note := fmt.Sprintf("returned to queue: maintenance on machine %d", req.MachineID)
				if err := c.db.ClearJobSchedule(j.ID, note); err != nil {
					return nil, fmt.Errorf("requeue job %s: %w", j.JobNumber, err)
				}
				c.db.AppendAudit("job", j.ID, "requeued", j.Status, string(JobReady), req.Actor)
				c.emitter.EmitJobRequeued(j.ID, j.JobNumber, note)
			}
		case ResolveMoveNext:
			// Serial re-pack in fetch order: each job keeps its duration
			// and starts where the previous one ends.
			cursor := plan.WindowEnd
			for _, j := range plan.Conflicts {
				start := cursor
				end := start.Add(time.Duration(JobDurationHours(j) * float64(time.Hour)))
				if err := c.db.UpdateJobSchedule(j.ID, req.MachineID, start, end, j.Status); err != nil {
					return nil, fmt.Errorf("reschedule job %s: %w", j.JobNumber, err)
				}
				c.db.AppendAudit("job", j.ID, "rescheduled", "", fmt.Sprintf("%s..%s", start.Format("15:04"), end.Format("15:04")), req.Actor)
				c.emitter.EmitJobRescheduled(j.ID, req.MachineID, start, end)
				cursor = end
			}
		default:
			return nil, &ValidationError{Field: "policy", Msg: fmt.Sprintf("%d conflicting job(s); choose return_to_queue or move_next", len(plan.Conflicts))}
		}
	}

	wo := &store.WorkOrder{
		OrderType:       string(OrderMaintenance),
		MaintenanceType: string(req.Type),
		Priority:        string(req.Priority),
		Status:          string(WOInProgress),
		Notes:           req.Description,
	}
	if err := c.db.CreateWorkOrder(wo, "MO"); err != nil {
		return nil, fmt.Errorf("create maintenance order: %w", err)
	}

	machineID := req.MachineID
	job := &store.Job{
		WorkOrderID:       wo.ID,
		Quantity:          1,
		Priority:          string(req.Priority),
		AssignedMachineID: &machineID,
		ScheduledStart:    &req.Start,
		ScheduledEnd:      &plan.WindowEnd,
		EstimatedMinutes:  int(req.DurationHours * 60),
		Status:            string(JobAssigned),
		IsMaintenance:     true,
		MaintenanceDesc:   req.Description,
	}
	if err := c.db.CreateJob(job); err != nil {
		return nil, fmt.Errorf("create maintenance job: %w", err)
	}

	if req.Type == MaintenanceUnplanned {
		reason := "unplanned maintenance: " + req.Description
		if err := c.db.SetMachineStatus(req.MachineID, string(MachineDown), reason); err != nil {
			log.Printf("maintenance: set machine %d down: %v", req.MachineID, err)
		} else {
			c.emitter.EmitMachineStatusChanged(req.MachineID, string(MachineDown), reason)
		}
		if _, err := c.db.OpenDowntimeLog(req.MachineID, c.now(), "unplanned_maintenance", req.Description); err != nil {
			log.Printf("maintenance: open downtime log for machine %d: %v", req.MachineID, err)
		}
	}

	// The work_order "created" audit row is written by the event wiring.
	c.emitter.EmitMaintenanceScheduled(wo.ID, job.ID, req.MachineID, string(req.Type), string(policy))
	c.emitter.EmitWorkOrderCreated(wo.ID, wo.WONumber, wo.OrderType, req.Actor)
	return wo, nil
}
