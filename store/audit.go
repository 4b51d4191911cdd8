package store

import (
	"database/sql"
	"fmt"
	"time"
)

// AuditEntity names the kind of record an audit row is about.
type AuditEntity string

const (
	AuditMachine   AuditEntity = "machine"
	AuditWorkOrder AuditEntity = "work_order"
	AuditAssembly  AuditEntity = "assembly"
	AuditJob       AuditEntity = "job"
	AuditPart      AuditEntity = "part"
)

type AuditEntry struct {
	ID         int64       `json:"id"`
	EntityType AuditEntity `json:"entity_type"`
	EntityID   int64       `json:"entity_id"`
	Action     string      `json:"action"`
	OldValue   string      `json:"old_value"`
	NewValue   string      `json:"new_value"`
	Actor      string      `json:"actor"`
	CreatedAt  time.Time   `json:"created_at"`
}

const auditSelectCols = `id, entity_type, entity_id, action, old_value, new_value, actor, created_at`

func scanAuditEntry(row interface{ Scan(...any) error }) (*AuditEntry, error) {
	var e AuditEntry
	var createdAt any
	err := row.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.OldValue, &e.NewValue, &e.Actor, &createdAt)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}

func scanAuditEntries(rows *sql.Rows) ([]*AuditEntry, error) {
	var entries []*AuditEntry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AppendAudit records one lifecycle action. The log is append-only;
// nothing in the module updates or deletes rows.
func (db *DB) AppendAudit(entity AuditEntity, entityID int64, action, oldValue, newValue, actor string) error {
	_, err := db.Exec(db.Q(`INSERT INTO audit_log (entity_type, entity_id, action, old_value, new_value, actor) VALUES (?, ?, ?, ?, ?, ?)`),
		entity, entityID, action, oldValue, newValue, actor)
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

// ListAuditLog returns the newest entries across all entities.
func (db *DB) ListAuditLog(limit int) ([]*AuditEntry, error) {
	rows, err := db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM audit_log ORDER BY id DESC LIMIT ?`, auditSelectCols)), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditEntries(rows)
}

// ListEntityAudit returns one record's full history, newest first.
func (db *DB) ListEntityAudit(entity AuditEntity, entityID int64) ([]*AuditEntry, error) {
	rows, err := db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM audit_log WHERE entity_type=? AND entity_id=? ORDER BY id DESC`, auditSelectCols)), entity, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditEntries(rows)
}
