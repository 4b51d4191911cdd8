package store

import (
	"database/sql"
	"fmt"
	"time"
)

type DowntimeLog struct {
	ID        int64      `json:"id"`
	MachineID int64      `json:"machine_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Reason    string     `json:"reason"`
	Notes     string     `json:"notes"`
	CreatedAt time.Time  `json:"created_at"`
}

const downtimeSelectCols = `id, machine_id, start_time, end_time, reason, notes, created_at`

func scanDowntime(row interface{ Scan(...any) error }) (*DowntimeLog, error) {
	var d DowntimeLog
	var startTime, endTime, createdAt any
	err := row.Scan(&d.ID, &d.MachineID, &startTime, &endTime, &d.Reason, &d.Notes, &createdAt)
	if err != nil {
		return nil, err
	}
	d.StartTime = parseTime(startTime)
	d.EndTime = parseTimePtr(endTime)
	d.CreatedAt = parseTime(createdAt)
	return &d, nil
}

func scanDowntimes(rows *sql.Rows) ([]*DowntimeLog, error) {
	var logs []*DowntimeLog
	for rows.Next() {
		d, err := scanDowntime(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, d)
	}
	return logs, rows.Err()
}

// OpenDowntimeLog starts a downtime window. An open log (end_time NULL)
// marks the machine down regardless of its stored status field.
func (db *DB) OpenDowntimeLog(machineID int64, start time.Time, reason, notes string) (int64, error) {
	id, err := db.insertID(db.Q(`INSERT INTO machine_downtime_logs (machine_id, start_time, reason, notes) VALUES (?, ?, ?, ?)`),
		machineID, fmtTime(start), reason, notes)
	if err != nil {
		return 0, fmt.Errorf("open downtime log: %w", err)
	}
	return id, nil
}

func (db *DB) CloseDowntimeLog(id int64, end time.Time) error {
	result, err := db.Exec(db.Q(`UPDATE machine_downtime_logs SET end_time=? WHERE id=? AND end_time IS NULL`),
		fmtTime(end), id)
	if err != nil {
		return fmt.Errorf("close downtime log: %w", err)
	}
	n, err := result.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("close downtime log: log %d not open", id)
	}
	return nil
}

// CloseOpenDowntimeLogs closes every open log for a machine.
func (db *DB) CloseOpenDowntimeLogs(machineID int64, end time.Time) error {
	_, err := db.Exec(db.Q(`UPDATE machine_downtime_logs SET end_time=? WHERE machine_id=? AND end_time IS NULL`),
		fmtTime(end), machineID)
	return err
}

func (db *DB) ListOpenDowntimeLogs() ([]*DowntimeLog, error) {
	rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM machine_downtime_logs WHERE end_time IS NULL ORDER BY start_time`, downtimeSelectCols))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDowntimes(rows)
}

func (db *DB) ListDowntimeLogsByMachine(machineID int64, limit int) ([]*DowntimeLog, error) {
	rows, err := db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM machine_downtime_logs WHERE machine_id=? ORDER BY start_time DESC LIMIT ?`, downtimeSelectCols)), machineID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDowntimes(rows)
}
