package store

import (
	"database/sql"
	"fmt"
	"time"
)

type WorkOrder struct {
	ID              int64      `json:"id"`
	WONumber        string     `json:"wo_number"`
	OrderType       string     `json:"order_type"`
	MaintenanceType string     `json:"maintenance_type,omitempty"`
	Customer        string     `json:"customer"`
	PONumber        string     `json:"po_number"`
	Priority        string     `json:"priority"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// WorkOrderDetail is a work order with its children expanded.
type WorkOrderDetail struct {
	*WorkOrder
	Assemblies []*WorkOrderAssembly `json:"assemblies"`
	Jobs       []*Job               `json:"jobs"`
}

const woSelectCols = `id, wo_number, order_type, maintenance_type, customer, po_number, priority, due_date, status, notes, created_at, updated_at, completed_at`

func scanWorkOrder(row interface{ Scan(...any) error }) (*WorkOrder, error) {
	var wo WorkOrder
	var dueDate, createdAt, updatedAt, completedAt any
	err := row.Scan(&wo.ID, &wo.WONumber, &wo.OrderType, &wo.MaintenanceType, &wo.Customer, &wo.PONumber,
		&wo.Priority, &dueDate, &wo.Status, &wo.Notes, &createdAt, &updatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	wo.DueDate = parseTimePtr(dueDate)
	wo.CreatedAt = parseTime(createdAt)
	wo.UpdatedAt = parseTime(updatedAt)
	wo.CompletedAt = parseTimePtr(completedAt)
	return &wo, nil
}

func scanWorkOrders(rows *sql.Rows) ([]*WorkOrder, error) {
	var orders []*WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, wo)
	}
	return orders, rows.Err()
}

// CreateWorkOrder inserts a work order, allocating its wo_number inside the
// same transaction when none is set. The prefix decides the numbering bucket
// (WO- for manufacturing, MO- for maintenance).
func (db *DB) CreateWorkOrder(wo *WorkOrder, numberPrefix string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("create work order: %w", err)
	}
	defer tx.Rollback()

	if wo.WONumber == "" {
		wo.WONumber = db.nextNumberTx(tx, numberPrefix, "work_orders", "wo_number", 4)
	}

	var dueDate any
	if wo.DueDate != nil {
		dueDate = fmtTime(*wo.DueDate)
	}
	id, err := db.txInsertID(tx, db.Q(`INSERT INTO work_orders (wo_number, order_type, maintenance_type, customer, po_number, priority, due_date, status, notes) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		wo.WONumber, wo.OrderType, wo.MaintenanceType, wo.Customer, wo.PONumber, wo.Priority, dueDate, wo.Status, wo.Notes)
	if err != nil {
		return fmt.Errorf("create work order: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create work order: %w", err)
	}
	wo.ID = id
	return nil
}

func (db *DB) GetWorkOrder(id int64) (*WorkOrder, error) {
	row := db.QueryRow(db.Q(fmt.Sprintf(`SELECT %s FROM work_orders WHERE id=?`, woSelectCols)), id)
	return scanWorkOrder(row)
}

func (db *DB) GetWorkOrderByNumber(number string) (*WorkOrder, error) {
	row := db.QueryRow(db.Q(fmt.Sprintf(`SELECT %s FROM work_orders WHERE wo_number=?`, woSelectCols)), number)
	return scanWorkOrder(row)
}

// GetWorkOrderDetail expands a work order with its assemblies and jobs.
func (db *DB) GetWorkOrderDetail(id int64) (*WorkOrderDetail, error) {
	wo, err := db.GetWorkOrder(id)
	if err != nil {
		return nil, err
	}
	assemblies, err := db.ListAssembliesByWorkOrder(id)
	if err != nil {
		return nil, fmt.Errorf("work order %d assemblies: %w", id, err)
	}
	jobs, err := db.ListJobsByWorkOrder(id)
	if err != nil {
		return nil, fmt.Errorf("work order %d jobs: %w", id, err)
	}
	return &WorkOrderDetail{WorkOrder: wo, Assemblies: assemblies, Jobs: jobs}, nil
}

func (db *DB) ListWorkOrders(status string, limit int) ([]*WorkOrder, error) {
	var rows *sql.Rows
	var err error
	if status != "" {
		rows, err = db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM work_orders WHERE status=? ORDER BY id DESC LIMIT ?`, woSelectCols)), status, limit)
	} else {
		rows, err = db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM work_orders ORDER BY id DESC LIMIT ?`, woSelectCols)), limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkOrders(rows)
}

func (db *DB) ListOpenWorkOrders() ([]*WorkOrder, error) {
	rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM work_orders WHERE status != 'complete' ORDER BY id`, woSelectCols))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkOrders(rows)
}

func (db *DB) UpdateWorkOrderStatus(id int64, status string) error {
	result, err := db.Exec(db.Q(`UPDATE work_orders SET status=?, updated_at=datetime('now','localtime') WHERE id=?`), status, id)
	if err != nil {
		return fmt.Errorf("update work order status: %w", err)
	}
	n, err := result.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("update work order status: work order %d not found", id)
	}
	return nil
}

func (db *DB) UpdateWorkOrderFields(wo *WorkOrder) error {
	var dueDate any
	if wo.DueDate != nil {
		dueDate = fmtTime(*wo.DueDate)
	}
	_, err := db.Exec(db.Q(`UPDATE work_orders SET customer=?, po_number=?, priority=?, due_date=?, notes=?, updated_at=datetime('now','localtime') WHERE id=?`),
		wo.Customer, wo.PONumber, wo.Priority, dueDate, wo.Notes, wo.ID)
	return err
}

// ApproveTCOCascade closes out a work order in one transaction: all
// pending_tco jobs complete, all assemblies complete, the order complete.
// Callers must have verified the all-jobs-pending_tco precondition first.
func (db *DB) ApproveTCOCascade(woID int64, completedAt time.Time, completedBy string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("approve tco: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(db.Q(`UPDATE jobs SET status='complete', updated_at=datetime('now','localtime') WHERE work_order_id=? AND status='pending_tco'`), woID); err != nil {
		return fmt.Errorf("approve tco jobs: %w", err)
	}
	if _, err := tx.Exec(db.Q(`UPDATE work_order_assemblies SET status='complete', assembly_completed_at=COALESCE(assembly_completed_at, ?), assembly_completed_by=CASE WHEN assembly_completed_by='' THEN ? ELSE assembly_completed_by END WHERE work_order_id=? AND status != 'complete'`),
		fmtTime(completedAt), completedBy, woID); err != nil {
		return fmt.Errorf("approve tco assemblies: %w", err)
	}
	result, err := tx.Exec(db.Q(`UPDATE work_orders SET status='complete', completed_at=?, updated_at=datetime('now','localtime') WHERE id=?`),
		fmtTime(completedAt), woID)
	if err != nil {
		return fmt.Errorf("approve tco work order: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("approve tco: work order %d not found", woID)
	}
	return tx.Commit()
}
