package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type Job struct {
	ID                  int64      `json:"id"`
	JobNumber           string     `json:"job_number"`
	WorkOrderID         int64      `json:"work_order_id"`
	WorkOrderAssemblyID *int64     `json:"work_order_assembly_id,omitempty"`
	PartID              *int64     `json:"part_id,omitempty"`
	Quantity            float64    `json:"quantity"`
	QuantityCustomized  bool       `json:"quantity_customized"`
	Priority            string     `json:"priority"`
	AssignedMachineID   *int64     `json:"assigned_machine_id,omitempty"`
	ScheduledStart      *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd        *time.Time `json:"scheduled_end,omitempty"`
	EstimatedMinutes    int        `json:"estimated_minutes"`
	Status              string     `json:"status"`
	GoodPieces          float64    `json:"good_pieces"`
	BadPieces           float64    `json:"bad_pieces"`
	IsMaintenance       bool       `json:"is_maintenance"`
	MaintenanceDesc     string     `json:"maintenance_description,omitempty"`
	Notes               string     `json:"notes"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

const jobSelectCols = `id, job_number, work_order_id, work_order_assembly_id, part_id, quantity, quantity_customized, priority, assigned_machine_id, scheduled_start, scheduled_end, estimated_minutes, status, good_pieces, bad_pieces, is_maintenance, maintenance_description, notes, created_at, updated_at`

func scanJob(row interface{ Scan(...any) error }) (*Job, error) {
	var j Job
	var woaID, partID, machineID sql.NullInt64
	var qtyCustomized, isMaintenance any
	var schedStart, schedEnd, createdAt, updatedAt any
	err := row.Scan(&j.ID, &j.JobNumber, &j.WorkOrderID, &woaID, &partID, &j.Quantity, &qtyCustomized,
		&j.Priority, &machineID, &schedStart, &schedEnd, &j.EstimatedMinutes, &j.Status,
		&j.GoodPieces, &j.BadPieces, &isMaintenance, &j.MaintenanceDesc, &j.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if woaID.Valid {
		j.WorkOrderAssemblyID = &woaID.Int64
	}
	if partID.Valid {
		j.PartID = &partID.Int64
	}
	if machineID.Valid {
		j.AssignedMachineID = &machineID.Int64
	}
	j.QuantityCustomized = parseBool(qtyCustomized)
	j.IsMaintenance = parseBool(isMaintenance)
	j.ScheduledStart = parseTimePtr(schedStart)
	j.ScheduledEnd = parseTimePtr(schedEnd)
	j.CreatedAt = parseTime(createdAt)
	j.UpdatedAt = parseTime(updatedAt)
	return &j, nil
}

func scanJobs(rows *sql.Rows) ([]*Job, error) {
	var jobs []*Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// CreateJob inserts a job, allocating its J-NNNNNN number inside the same
// transaction when none is set. Job numbers are one global sequence shared
// by every work order.
func (db *DB) CreateJob(j *Job) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	defer tx.Rollback()

	if j.JobNumber == "" {
		j.JobNumber = db.nextNumberTx(tx, "J", "jobs", "job_number", 6)
	}

	var woaID, partID, machineID, schedStart, schedEnd any
	if j.WorkOrderAssemblyID != nil {
		woaID = *j.WorkOrderAssemblyID
	}
	if j.PartID != nil {
		partID = *j.PartID
	}
	if j.AssignedMachineID != nil {
		machineID = *j.AssignedMachineID
	}
	if j.ScheduledStart != nil {
		schedStart = fmtTime(*j.ScheduledStart)
	}
	if j.ScheduledEnd != nil {
		schedEnd = fmtTime(*j.ScheduledEnd)
	}

	id, err := db.txInsertID(tx, db.Q(`INSERT INTO jobs (job_number, work_order_id, work_order_assembly_id, part_id, quantity, quantity_customized, priority, assigned_machine_id, scheduled_start, scheduled_end, estimated_minutes, status, is_maintenance, maintenance_description, notes) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		j.JobNumber, j.WorkOrderID, woaID, partID, j.Quantity, j.QuantityCustomized, j.Priority,
		machineID, schedStart, schedEnd, j.EstimatedMinutes, j.Status, j.IsMaintenance, j.MaintenanceDesc, j.Notes)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	j.ID = id
	return nil
}

func (db *DB) GetJob(id int64) (*Job, error) {
	row := db.QueryRow(db.Q(fmt.Sprintf(`SELECT %s FROM jobs WHERE id=?`, jobSelectCols)), id)
	return scanJob(row)
}

func (db *DB) GetJobByNumber(number string) (*Job, error) {
	row := db.QueryRow(db.Q(fmt.Sprintf(`SELECT %s FROM jobs WHERE job_number=?`, jobSelectCols)), number)
	return scanJob(row)
}

func (db *DB) ListJobsByWorkOrder(woID int64) ([]*Job, error) {
	rows, err := db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM jobs WHERE work_order_id=? ORDER BY id`, jobSelectCols)), woID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (db *DB) ListJobsByAssembly(woaID int64) ([]*Job, error) {
	rows, err := db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM jobs WHERE work_order_assembly_id=? ORDER BY id`, jobSelectCols)), woaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// ListMachineJobsByStatus returns a machine's jobs in the given statuses,
// in id order. The maintenance scheduler depends on this fetch order for
// move_next re-stacking.
func (db *DB) ListMachineJobsByStatus(machineID int64, statuses ...string) ([]*Job, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?, ", len(statuses)-1) + "?"
	args := make([]any, 0, len(statuses)+1)
	args = append(args, machineID)
	for _, s := range statuses {
		args = append(args, s)
	}
	rows, err := db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM jobs WHERE assigned_machine_id=? AND status IN (%s) ORDER BY id`, jobSelectCols, placeholders)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (db *DB) ListJobsByStatus(statuses ...string) ([]*Job, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?, ", len(statuses)-1) + "?"
	args := make([]any, 0, len(statuses))
	for _, s := range statuses {
		args = append(args, s)
	}
	rows, err := db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM jobs WHERE status IN (%s) ORDER BY id`, jobSelectCols, placeholders)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// ListRecentJobs returns the newest jobs up to limit, for exports and
// history views.
func (db *DB) ListRecentJobs(limit int) ([]*Job, error) {
	rows, err := db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM jobs ORDER BY id DESC LIMIT ?`, jobSelectCols)), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// ListUnassignedReadyJobs returns ready jobs with no machine, oldest first.
func (db *DB) ListUnassignedReadyJobs() ([]*Job, error) {
	rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM jobs WHERE status='ready' AND assigned_machine_id IS NULL ORDER BY id`, jobSelectCols))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// ListActiveMaintenanceJobs returns unfinished maintenance jobs, used as one
// leg of the effective machine-down union.
func (db *DB) ListActiveMaintenanceJobs() ([]*Job, error) {
	rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM jobs WHERE is_maintenance=%s AND status NOT IN ('complete', 'cancelled') ORDER BY id`, jobSelectCols, db.dialect.BoolTrue()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// UpdateJobStatus writes a new status. Zero rows affected is an error:
// lifecycle-critical writes must not fail silently.
func (db *DB) UpdateJobStatus(id int64, status string) error {
	result, err := db.Exec(db.Q(`UPDATE jobs SET status=?, updated_at=datetime('now','localtime') WHERE id=?`), status, id)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	n, err := result.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("update job status: job %d not found", id)
	}
	return nil
}

// UpdateJobSchedule assigns a machine and schedule window.
func (db *DB) UpdateJobSchedule(id int64, machineID int64, start, end time.Time, status string) error {
	result, err := db.Exec(db.Q(`UPDATE jobs SET assigned_machine_id=?, scheduled_start=?, scheduled_end=?, status=?, updated_at=datetime('now','localtime') WHERE id=?`),
		machineID, fmtTime(start), fmtTime(end), status, id)
	if err != nil {
		return fmt.Errorf("update job schedule: %w", err)
	}
	n, err := result.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("update job schedule: job %d not found", id)
	}
	return nil
}

// ClearJobSchedule unassigns a job and returns it to the ready queue,
// appending an audit note to the job's notes.
func (db *DB) ClearJobSchedule(id int64, note string) error {
	result, err := db.Exec(db.Q(`UPDATE jobs SET assigned_machine_id=NULL, scheduled_start=NULL, scheduled_end=NULL, status='ready', notes=CASE WHEN ?='' THEN notes WHEN notes='' THEN ? ELSE notes || ' | ' || ? END, updated_at=datetime('now','localtime') WHERE id=?`),
		note, note, note, id)
	if err != nil {
		return fmt.Errorf("clear job schedule: %w", err)
	}
	n, err := result.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("clear job schedule: job %d not found", id)
	}
	return nil
}

// UpdateJobEdit applies a quantity/priority edit. The caller decides the
// status; any edit of an unscheduled job resets it to pending_compliance.
func (db *DB) UpdateJobEdit(id int64, quantity float64, quantityCustomized bool, priority, status string) error {
	result, err := db.Exec(db.Q(`UPDATE jobs SET quantity=?, quantity_customized=?, priority=?, status=?, updated_at=datetime('now','localtime') WHERE id=?`),
		quantity, quantityCustomized, priority, status, id)
	if err != nil {
		return fmt.Errorf("update job edit: %w", err)
	}
	n, err := result.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("update job edit: job %d not found", id)
	}
	return nil
}

// UpdateJobPieces records production counts.
func (db *DB) UpdateJobPieces(id int64, good, bad float64) error {
	_, err := db.Exec(db.Q(`UPDATE jobs SET good_pieces=?, bad_pieces=?, updated_at=datetime('now','localtime') WHERE id=?`),
		good, bad, id)
	return err
}

// CountJobsByWorkOrderStatus returns active (non-cancelled) job counts per
// status for one work order.
func (db *DB) CountJobsByWorkOrderStatus(woID int64) (map[string]int, error) {
	rows, err := db.Query(db.Q(`SELECT status, COUNT(*) FROM jobs WHERE work_order_id=? AND status != 'cancelled' GROUP BY status`), woID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
