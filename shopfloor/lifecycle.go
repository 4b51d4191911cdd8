package shopfloor

import (
	"fmt"
	"log"
	"time"

	"shopcore/store"
)

// ValidationError marks input problems caught before any store call.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// Roles allowed to approve TCO closeout.
const (
	RoleAdmin      = "admin"
	RoleCompliance = "compliance"
	RoleOperator   = "operator"
)

// Controller drives status transitions across work orders, assemblies
// and jobs in response to user actions.
type Controller struct {
	db      *store.DB
	emitter Emitter
	now     func() time.Time
}

func NewController(db *store.DB, emitter Emitter) *Controller {
	return &Controller{db: db, emitter: emitter, now: time.Now}
}

// --- Work order creation ---

// AssemblySelection is one assembly line item on a new work order,
// with optional per-component quantity overrides keyed by part id.
type AssemblySelection struct {
	PartID    int64             `json:"part_id"`
	Quantity  float64           `json:"quantity"`
	Overrides map[int64]float64 `json:"overrides,omitempty"`
}

type WorkOrderInput struct {
	OrderType  OrderType           `json:"order_type"`
	Customer   string              `json:"customer"`
	PONumber   string              `json:"po_number"`
	Priority   Priority            `json:"priority"`
	DueDate    *time.Time          `json:"due_date,omitempty"`
	Notes      string              `json:"notes"`
	Assemblies []AssemblySelection `json:"assemblies"`
	Actor      string              `json:"-"`
}

// CreateWorkOrder creates a work order, one assembly row per selected
// assembly, and the manufacturing jobs the composer derives from each
// assembly's BOM. Every job starts at pending_compliance.
func (c *Controller) CreateWorkOrder(in *WorkOrderInput) (*store.WorkOrderDetail, error) {
	if !in.OrderType.Valid() || in.OrderType == OrderMaintenance {
		return nil, &ValidationError{Field: "order_type", Msg: "must be make_to_order or make_to_stock"}
	}
	if in.Priority == "" {
		in.Priority = PriorityNormal
	}
	if !in.Priority.Valid() {
		return nil, &ValidationError{Field: "priority", Msg: "unknown priority"}
	}
	if len(in.Assemblies) == 0 {
		return nil, &ValidationError{Field: "assemblies", Msg: "at least one assembly is required"}
	}
	for _, sel := range in.Assemblies {
		if sel.Quantity <= 0 {
			return nil, &ValidationError{Field: "quantity", Msg: "quantity must be positive"}
		}
	}

	wo := &store.WorkOrder{
		OrderType: string(in.OrderType),
		Customer:  in.Customer,
		PONumber:  in.PONumber,
		Priority:  string(in.Priority),
		DueDate:   in.DueDate,
		Status:    string(WOPending),
		Notes:     in.Notes,
	}
	if err := c.db.CreateWorkOrder(wo, "WO"); err != nil {
		return nil, fmt.Errorf("create work order: %w", err)
	}

	for _, sel := range in.Assemblies {
		part, err := c.db.GetPart(sel.PartID)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", sel.PartID, err)
		}

		woa := &store.WorkOrderAssembly{
			WorkOrderID:    wo.ID,
			AssemblyPartID: part.ID,
			Quantity:       sel.Quantity,
			Status:         string(WOAPending),
		}
		if err := c.db.CreateAssembly(woa); err != nil {
			return nil, err
		}

		var bom []*store.BOMEdge
		if PartType(part.PartType) == PartAssembly {
			bom, err = c.db.ListBOM(part.ID)
			if err != nil {
				return nil, fmt.Errorf("bom for part %d: %w", part.ID, err)
			}
		}
		candidates := ComposeJobs(part, bom, sel.Quantity, sel.Overrides)
		for _, cand := range candidates {
			partID := cand.PartID
			job := &store.Job{
				WorkOrderID:         wo.ID,
				WorkOrderAssemblyID: &woa.ID,
				PartID:              &partID,
				Quantity:            cand.Quantity,
				QuantityCustomized:  cand.QuantityCustomized,
				Priority:            string(in.Priority),
				Status:              string(JobPendingCompliance),
			}
			if err := c.db.CreateJob(job); err != nil {
				return nil, fmt.Errorf("create job for part %s: %w", cand.PartNumber, err)
			}
		}
	}

	c.emitter.EmitWorkOrderCreated(wo.ID, wo.WONumber, wo.OrderType, in.Actor)
	return c.db.GetWorkOrderDetail(wo.ID)
}

// --- Assembly lifecycle ---

type StartAssemblyInput struct {
	AssemblyID     int64  `json:"assembly_id"` // zero for a virtual queue entry
	WorkOrderID    int64  `json:"work_order_id"`
	AssemblyPartID int64  `json:"assembly_part_id,omitempty"` // required when AssemblyID is zero
	Station        string `json:"station_number"`
	Assembler      string `json:"assembler_number"`
	Notes          string `json:"notes"`
	Actor          string `json:"-"`
}

// StartAssembly marks an assembly in progress and advances the parent
// work order's ready_for_assembly jobs to in_assembly. A virtual queue
// entry (work order with no assembly rows) gets its assembly row
// created first, backfilling the missing configuration.
func (c *Controller) StartAssembly(in *StartAssemblyInput) error {
	if in.Station == "" {
		return &ValidationError{Field: "station_number", Msg: "station is required"}
	}
	if in.Assembler == "" {
		return &ValidationError{Field: "assembler_number", Msg: "assembler is required"}
	}

	woaID := in.AssemblyID
	if woaID == 0 {
		if in.AssemblyPartID == 0 {
			return &ValidationError{Field: "assembly_part_id", Msg: "part is required to backfill the assembly"}
		}
		jobs, err := c.db.ListJobsByWorkOrder(in.WorkOrderID)
		if err != nil {
			return fmt.Errorf("jobs for work order %d: %w", in.WorkOrderID, err)
		}
		var qty float64
		for _, j := range jobs {
			if JobStatus(j.Status) != JobCancelled {
				qty += j.Quantity
			}
		}
		woa := &store.WorkOrderAssembly{
			WorkOrderID:    in.WorkOrderID,
			AssemblyPartID: in.AssemblyPartID,
			Quantity:       qty,
			Status:         string(WOAPending),
		}
		if err := c.db.CreateAssembly(woa); err != nil {
			return err
		}
		log.Printf("lifecycle: backfilled assembly %d for work order %d", woa.ID, in.WorkOrderID)
		woaID = woa.ID
	}

	if err := c.db.StartAssemblyCascade(woaID, in.WorkOrderID, in.Station, in.Assembler, in.Actor, in.Notes, c.now()); err != nil {
		return err
	}
	c.db.UpdateWorkOrderStatus(in.WorkOrderID, string(WOInProgress))

	c.emitter.EmitAssemblyStarted(woaID, in.WorkOrderID, in.Station, in.Assembler, in.Actor)
	return nil
}

type CompleteAssemblyInput struct {
	AssemblyID  int64   `json:"assembly_id"`
	WorkOrderID int64   `json:"work_order_id"`
	GoodQty     float64 `json:"good_quantity"`
	BadQty      float64 `json:"bad_quantity"`
	Notes       string  `json:"notes"`
	Actor       string  `json:"-"`
}

// CompleteAssembly closes out an assembly and moves the parent work
// order's remaining assembly-stage jobs to pending_tco. The work order
// itself stays open until TCO approval. Returns a warning string when
// the good/bad counts don't reconcile with the ordered quantity.
func (c *Controller) CompleteAssembly(in *CompleteAssemblyInput) (string, error) {
	if in.GoodQty < 0 || in.BadQty < 0 {
		return "", &ValidationError{Field: "quantity", Msg: "counts cannot be negative"}
	}

	woa, err := c.db.GetAssembly(in.AssemblyID)
	if err != nil {
		return "", fmt.Errorf("assembly %d: %w", in.AssemblyID, err)
	}

	if err := c.db.CompleteAssemblyCascade(in.AssemblyID, in.WorkOrderID, in.GoodQty, in.BadQty, in.Actor, in.Notes, c.now()); err != nil {
		return "", err
	}
	c.emitter.EmitAssemblyCompleted(in.AssemblyID, in.WorkOrderID, in.GoodQty, in.BadQty, in.Actor)

	var warning string
	if in.GoodQty+in.BadQty != woa.Quantity {
		warning = fmt.Sprintf("counted %.1f good + %.1f bad but assembly quantity is %.1f", in.GoodQty, in.BadQty, woa.Quantity)
		log.Printf("lifecycle: assembly %d count mismatch: %s", in.AssemblyID, warning)
	}
	return warning, nil
}

// ApproveTCO closes out a work order: all active jobs must already be
// pending_tco, and the caller must hold a compliance-capable role.
func (c *Controller) ApproveTCO(woID int64, actor, role string) error {
	if role != RoleCompliance && role != RoleAdmin {
		return &ValidationError{Field: "role", Msg: "TCO approval requires a compliance role"}
	}

	wo, err := c.db.GetWorkOrder(woID)
	if err != nil {
		return fmt.Errorf("work order %d: %w", woID, err)
	}
	if WOStatus(wo.Status) == WOComplete {
		return &ValidationError{Field: "status", Msg: "work order is already complete"}
	}

	counts, err := c.db.CountJobsByWorkOrderStatus(woID)
	if err != nil {
		return fmt.Errorf("job counts for %s: %w", wo.WONumber, err)
	}
	if len(counts) == 0 {
		return &ValidationError{Field: "jobs", Msg: "work order has no active jobs"}
	}
	for status, n := range counts {
		if JobStatus(status) != JobPendingTCO {
			return &ValidationError{Field: "jobs", Msg: fmt.Sprintf("%d job(s) still %s, all must be pending_tco", n, status)}
		}
	}

	if err := c.db.ApproveTCOCascade(woID, c.now(), actor); err != nil {
		return err
	}
	c.db.AppendAudit("work_order", woID, "tco_approved", string(WOInProgress), string(WOComplete), actor)

	c.emitter.EmitTCOApproved(woID, wo.WONumber, actor)
	c.emitter.EmitWorkOrderCompleted(woID, wo.WONumber, actor)
	return nil
}

// --- Job lifecycle ---

// AdvanceJob moves a job forward along the manufacturing pipeline.
// Backward moves are rejected; edits and cancellation have their own
// entry points. A maintenance job reaching complete releases its
// machine and closes any open downtime logs.
func (c *Controller) AdvanceJob(jobID int64, to JobStatus, actor string) error {
	if !to.Valid() || to == JobCancelled || to == JobIncomplete {
		return &ValidationError{Field: "status", Msg: fmt.Sprintf("cannot advance to %s", to)}
	}

	job, err := c.db.GetJob(jobID)
	if err != nil {
		return fmt.Errorf("job %d: %w", jobID, err)
	}
	from := JobStatus(job.Status)
	if from.Terminal() {
		return &ValidationError{Field: "status", Msg: fmt.Sprintf("job %s is %s", job.JobNumber, from)}
	}
	if !to.AtLeast(from) || to == from {
		return &ValidationError{Field: "status", Msg: fmt.Sprintf("cannot move %s from %s to %s", job.JobNumber, from, to)}
	}

	if err := c.db.UpdateJobStatus(jobID, string(to)); err != nil {
		return err
	}
	if from == JobPendingCompliance || from == JobReady {
		c.db.UpdateWorkOrderStatus(job.WorkOrderID, string(WOInProgress))
	}
	if job.IsMaintenance && to == JobComplete && job.AssignedMachineID != nil {
		c.releaseMaintenanceMachine(*job.AssignedMachineID)
	}
	c.db.AppendAudit("job", jobID, "status_changed", string(from), string(to), actor)

	c.emitter.EmitJobStatusChanged(jobID, job.JobNumber, string(from), string(to), actor)
	return nil
}

// CompleteJobManufacturing records piece counts and routes the job out
// of machining: into the passivation sub-pipeline when the part needs
// treatment, otherwise straight to manufacturing_complete.
func (c *Controller) CompleteJobManufacturing(jobID int64, good, bad float64, needsPassivation bool, actor string) error {
	if good < 0 || bad < 0 {
		return &ValidationError{Field: "pieces", Msg: "counts cannot be negative"}
	}
	if err := c.db.UpdateJobPieces(jobID, good, bad); err != nil {
		return err
	}
	next := JobManufacturingComplete
	if needsPassivation {
		next = JobPendingPassivation
	}
	return c.AdvanceJob(jobID, next, actor)
}

// EditJob applies a quantity/priority change to a not-yet-scheduled
// job. Any edit invalidates prior compliance sign-off, so the status
// always resets to pending_compliance.
func (c *Controller) EditJob(jobID int64, quantity float64, priority Priority, actor string) error {
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Msg: "quantity must be positive"}
	}
	if !priority.Valid() {
		return &ValidationError{Field: "priority", Msg: "unknown priority"}
	}

	job, err := c.db.GetJob(jobID)
	if err != nil {
		return fmt.Errorf("job %d: %w", jobID, err)
	}
	from := JobStatus(job.Status)
	if from.Terminal() {
		return &ValidationError{Field: "status", Msg: fmt.Sprintf("job %s is %s", job.JobNumber, from)}
	}
	if job.AssignedMachineID != nil {
		return &ValidationError{Field: "status", Msg: fmt.Sprintf("job %s is scheduled; unschedule it first", job.JobNumber)}
	}

	customized := job.QuantityCustomized || quantity != job.Quantity
	if err := c.db.UpdateJobEdit(jobID, quantity, customized, string(priority), string(JobPendingCompliance)); err != nil {
		return err
	}
	c.db.AppendAudit("job", jobID, "edited", string(from), string(JobPendingCompliance), actor)

	c.emitter.EmitJobStatusChanged(jobID, job.JobNumber, string(from), string(JobPendingCompliance), actor)
	return nil
}

// CancelJob moves a job to cancelled from any non-terminal state.
func (c *Controller) CancelJob(jobID int64, actor string) error {
	job, err := c.db.GetJob(jobID)
	if err != nil {
		return fmt.Errorf("job %d: %w", jobID, err)
	}
	from := JobStatus(job.Status)
	if from.Terminal() {
		return &ValidationError{Field: "status", Msg: fmt.Sprintf("job %s is already %s", job.JobNumber, from)}
	}

	if err := c.db.UpdateJobStatus(jobID, string(JobCancelled)); err != nil {
		return err
	}
	c.db.AppendAudit("job", jobID, "cancelled", string(from), string(JobCancelled), actor)

	c.emitter.EmitJobStatusChanged(jobID, job.JobNumber, string(from), string(JobCancelled), actor)
	return nil
}

// ScheduleJob assigns a ready job to a machine, computing the end of
// its window on the shift calendar.
func (c *Controller) ScheduleJob(jobID, machineID int64, start time.Time, actor string) error {
	job, err := c.db.GetJob(jobID)
	if err != nil {
		return fmt.Errorf("job %d: %w", jobID, err)
	}
	if JobStatus(job.Status) != JobReady {
		return &ValidationError{Field: "status", Msg: fmt.Sprintf("job %s is %s, only ready jobs can be scheduled", job.JobNumber, job.Status)}
	}
	if _, err := c.db.GetMachine(machineID); err != nil {
		return &ValidationError{Field: "machine", Msg: fmt.Sprintf("machine %d not found", machineID)}
	}

	end := ComputeEnd(start, JobDurationHours(job))
	if err := c.db.UpdateJobSchedule(jobID, machineID, start, end, string(JobAssigned)); err != nil {
		return err
	}
	c.db.AppendAudit("job", jobID, "scheduled", string(JobReady), string(JobAssigned), actor)

	c.emitter.EmitJobRescheduled(jobID, machineID, start, end)
	c.emitter.EmitJobStatusChanged(jobID, job.JobNumber, string(JobReady), string(JobAssigned), actor)
	return nil
}

// RequeueIncompleteJob sends a partially-finished job back to the
// ready pool, clearing its machine assignment.
func (c *Controller) RequeueIncompleteJob(jobID int64, note, actor string) error {
	job, err := c.db.GetJob(jobID)
	if err != nil {
		return fmt.Errorf("job %d: %w", jobID, err)
	}
	from := JobStatus(job.Status)
	if from.Terminal() {
		return &ValidationError{Field: "status", Msg: fmt.Sprintf("job %s is %s", job.JobNumber, from)}
	}

	// Pass through incomplete so the escape shows in the audit trail,
	// then requeue.
	if err := c.db.UpdateJobStatus(jobID, string(JobIncomplete)); err != nil {
		return err
	}
	if err := c.db.ClearJobSchedule(jobID, note); err != nil {
		return err
	}
	c.db.AppendAudit("job", jobID, "requeued", string(from), string(JobReady), actor)

	c.emitter.EmitJobRequeued(jobID, job.JobNumber, note)
	return nil
}

func (c *Controller) releaseMaintenanceMachine(machineID int64) {
	if err := c.db.CloseOpenDowntimeLogs(machineID, c.now()); err != nil {
		log.Printf("lifecycle: close downtime logs for machine %d: %v", machineID, err)
	}
	if err := c.db.SetMachineStatus(machineID, string(MachineAvailable), "maintenance complete"); err != nil {
		log.Printf("lifecycle: release machine %d: %v", machineID, err)
		return
	}
	c.emitter.EmitMachineStatusChanged(machineID, string(MachineAvailable), "maintenance complete")
}
