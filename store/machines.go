package store

import (
	"database/sql"
	"fmt"
	"time"
)

type Machine struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Code         string     `json:"code"`
	LocationID   *int64     `json:"location_id,omitempty"`
	Status       string     `json:"status"`
	StatusReason string     `json:"status_reason"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

const machineSelectCols = `id, name, code, location_id, status, status_reason, active, created_at, updated_at`

func scanMachine(row interface{ Scan(...any) error }) (*Machine, error) {
	var m Machine
	var locationID sql.NullInt64
	var active any
	var createdAt, updatedAt any
	err := row.Scan(&m.ID, &m.Name, &m.Code, &locationID, &m.Status, &m.StatusReason, &active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if locationID.Valid {
		m.LocationID = &locationID.Int64
	}
	m.Active = parseBool(active)
	m.CreatedAt = parseTime(createdAt)
	m.UpdatedAt = parseTime(updatedAt)
	return &m, nil
}

func scanMachines(rows *sql.Rows) ([]*Machine, error) {
	var machines []*Machine
	for rows.Next() {
		m, err := scanMachine(rows)
		if err != nil {
			return nil, err
		}
		machines = append(machines, m)
	}
	return machines, rows.Err()
}

func (db *DB) CreateMachine(m *Machine) error {
	var locID any
	if m.LocationID != nil {
		locID = *m.LocationID
	}
	id, err := db.insertID(db.Q(`INSERT INTO machines (name, code, location_id, status, status_reason, active) VALUES (?, ?, ?, ?, ?, ?)`),
		m.Name, m.Code, locID, m.Status, m.StatusReason, m.Active)
	if err != nil {
		return fmt.Errorf("create machine: %w", err)
	}
	m.ID = id
	return nil
}

func (db *DB) UpdateMachine(m *Machine) error {
	var locID any
	if m.LocationID != nil {
		locID = *m.LocationID
	}
	_, err := db.Exec(db.Q(`UPDATE machines SET name=?, code=?, location_id=?, status=?, status_reason=?, active=?, updated_at=datetime('now','localtime') WHERE id=?`),
		m.Name, m.Code, locID, m.Status, m.StatusReason, m.Active, m.ID)
	if err != nil {
		return fmt.Errorf("update machine: %w", err)
	}
	return nil
}

// SetMachineStatus overwrites the stored status and reason. The effective
// down signal is still the union of this field, open downtime logs, and
// active maintenance jobs; callers must not treat this write as exclusive.
func (db *DB) SetMachineStatus(id int64, status, reason string) error {
	result, err := db.Exec(db.Q(`UPDATE machines SET status=?, status_reason=?, updated_at=datetime('now','localtime') WHERE id=?`),
		status, reason, id)
	if err != nil {
		return fmt.Errorf("set machine status: %w", err)
	}
	n, err := result.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("set machine status: machine %d not found", id)
	}
	return nil
}

func (db *DB) GetMachine(id int64) (*Machine, error) {
	row := db.QueryRow(db.Q(fmt.Sprintf(`SELECT %s FROM machines WHERE id=?`, machineSelectCols)), id)
	return scanMachine(row)
}

func (db *DB) GetMachineByCode(code string) (*Machine, error) {
	row := db.QueryRow(db.Q(fmt.Sprintf(`SELECT %s FROM machines WHERE code=?`, machineSelectCols)), code)
	return scanMachine(row)
}

func (db *DB) ListMachines() ([]*Machine, error) {
	rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM machines WHERE active=%s ORDER BY name`, machineSelectCols, db.dialect.BoolTrue()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMachines(rows)
}

func (db *DB) ListMachinesByStatus(status string) ([]*Machine, error) {
	rows, err := db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM machines WHERE active=%s AND status=? ORDER BY name`, machineSelectCols, db.dialect.BoolTrue())), status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMachines(rows)
}
