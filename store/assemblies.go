package store

import (
	"database/sql"
	"fmt"
	"time"
)

type WorkOrderAssembly struct {
	ID                  int64      `json:"id"`
	WorkOrderID         int64      `json:"work_order_id"`
	AssemblyPartID      int64      `json:"assembly_part_id"`
	Quantity            float64    `json:"quantity"`
	Status              string     `json:"status"`
	StationNumber       string     `json:"station_number"`
	AssemblerNumber     string     `json:"assembler_number"`
	AssemblyStartedAt   *time.Time `json:"assembly_started_at,omitempty"`
	AssemblyStartedBy   string     `json:"assembly_started_by"`
	AssemblyCompletedAt *time.Time `json:"assembly_completed_at,omitempty"`
	AssemblyCompletedBy string     `json:"assembly_completed_by"`
	GoodQuantity        float64    `json:"good_quantity"`
	BadQuantity         float64    `json:"bad_quantity"`
	AssemblyNotes       string     `json:"assembly_notes"`
	CreatedAt           time.Time  `json:"created_at"`
}

const woaSelectCols = `id, work_order_id, assembly_part_id, quantity, status, station_number, assembler_number, assembly_started_at, assembly_started_by, assembly_completed_at, assembly_completed_by, good_quantity, bad_quantity, assembly_notes, created_at`

func scanAssembly(row interface{ Scan(...any) error }) (*WorkOrderAssembly, error) {
	var a WorkOrderAssembly
	var startedAt, completedAt, createdAt any
	err := row.Scan(&a.ID, &a.WorkOrderID, &a.AssemblyPartID, &a.Quantity, &a.Status,
		&a.StationNumber, &a.AssemblerNumber, &startedAt, &a.AssemblyStartedBy,
		&completedAt, &a.AssemblyCompletedBy, &a.GoodQuantity, &a.BadQuantity, &a.AssemblyNotes, &createdAt)
	if err != nil {
		return nil, err
	}
	a.AssemblyStartedAt = parseTimePtr(startedAt)
	a.AssemblyCompletedAt = parseTimePtr(completedAt)
	a.CreatedAt = parseTime(createdAt)
	return &a, nil
}

func scanAssemblies(rows *sql.Rows) ([]*WorkOrderAssembly, error) {
	var assemblies []*WorkOrderAssembly
	for rows.Next() {
		a, err := scanAssembly(rows)
		if err != nil {
			return nil, err
		}
		assemblies = append(assemblies, a)
	}
	return assemblies, rows.Err()
}

func (db *DB) CreateAssembly(a *WorkOrderAssembly) error {
	id, err := db.insertID(db.Q(`INSERT INTO work_order_assemblies (work_order_id, assembly_part_id, quantity, status) VALUES (?, ?, ?, ?)`),
		a.WorkOrderID, a.AssemblyPartID, a.Quantity, a.Status)
	if err != nil {
		return fmt.Errorf("create assembly: %w", err)
	}
	a.ID = id
	return nil
}

func (db *DB) GetAssembly(id int64) (*WorkOrderAssembly, error) {
	row := db.QueryRow(db.Q(fmt.Sprintf(`SELECT %s FROM work_order_assemblies WHERE id=?`, woaSelectCols)), id)
	return scanAssembly(row)
}

func (db *DB) ListAssembliesByWorkOrder(woID int64) ([]*WorkOrderAssembly, error) {
	rows, err := db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM work_order_assemblies WHERE work_order_id=? ORDER BY id`, woaSelectCols)), woID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssemblies(rows)
}

// StartAssemblyCascade marks an assembly in progress and moves the parent
// work order's ready_for_assembly jobs to in_assembly, in one transaction.
// A zero-row assembly update is reported as an error rather than silently
// succeeding (permission rules can block writes without failing them).
func (db *DB) StartAssemblyCascade(woaID, woID int64, station, assembler, startedBy, notes string, startedAt time.Time) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("start assembly: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(db.Q(`UPDATE work_order_assemblies SET status='in_progress', station_number=?, assembler_number=?, assembly_started_at=?, assembly_started_by=?, assembly_notes=CASE WHEN ?='' THEN assembly_notes WHEN assembly_notes='' THEN ? ELSE assembly_notes || ' | ' || ? END WHERE id=? AND status='pending'`),
		station, assembler, fmtTime(startedAt), startedBy, notes, notes, notes, woaID)
	if err != nil {
		return fmt.Errorf("start assembly: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("start assembly rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("start assembly: no rows updated for assembly %d (blocked, missing or already started)", woaID)
	}

	if _, err := tx.Exec(db.Q(`UPDATE jobs SET status='in_assembly', updated_at=datetime('now','localtime') WHERE work_order_id=? AND status='ready_for_assembly'`), woID); err != nil {
		return fmt.Errorf("start assembly jobs: %w", err)
	}
	return tx.Commit()
}

// CompleteAssemblyCascade completes an assembly and moves the parent work
// order's ready_for_assembly/in_assembly jobs to pending_tco, in one
// transaction. The parent work order status is deliberately untouched;
// closing the order is the TCO approval's job.
func (db *DB) CompleteAssemblyCascade(woaID, woID int64, goodQty, badQty float64, completedBy, notes string, completedAt time.Time) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("complete assembly: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(db.Q(`UPDATE work_order_assemblies SET status='complete', assembly_completed_at=?, assembly_completed_by=?, good_quantity=?, bad_quantity=?, assembly_notes=CASE WHEN ?='' THEN assembly_notes WHEN assembly_notes='' THEN ? ELSE assembly_notes || ' | ' || ? END WHERE id=? AND status != 'complete'`),
		fmtTime(completedAt), completedBy, goodQty, badQty, notes, notes, notes, woaID)
	if err != nil {
		return fmt.Errorf("complete assembly: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete assembly rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("complete assembly: no rows updated for assembly %d (blocked or missing)", woaID)
	}

	if _, err := tx.Exec(db.Q(`UPDATE jobs SET status='pending_tco', updated_at=datetime('now','localtime') WHERE work_order_id=? AND status IN ('ready_for_assembly', 'in_assembly')`), woID); err != nil {
		return fmt.Errorf("complete assembly jobs: %w", err)
	}
	return tx.Commit()
}
