package store

import (
	"fmt"
	"time"
)

type Location struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type MaterialType struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type BarSize struct {
	ID          int64  `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

func (db *DB) CreateLocation(l *Location) error {
	id, err := db.insertID(db.Q(`INSERT INTO locations (name, description) VALUES (?, ?)`), l.Name, l.Description)
	if err != nil {
		return fmt.Errorf("create location: %w", err)
	}
	l.ID = id
	return nil
}

func (db *DB) ListLocations() ([]*Location, error) {
	rows, err := db.Query(`SELECT id, name, description, created_at FROM locations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var locations []*Location
	for rows.Next() {
		var l Location
		var createdAt any
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &createdAt); err != nil {
			return nil, err
		}
		l.CreatedAt = parseTime(createdAt)
		locations = append(locations, &l)
	}
	return locations, rows.Err()
}

func (db *DB) CreateMaterialType(m *MaterialType) error {
	id, err := db.insertID(db.Q(`INSERT INTO material_types (name, description) VALUES (?, ?)`), m.Name, m.Description)
	if err != nil {
		return fmt.Errorf("create material type: %w", err)
	}
	m.ID = id
	return nil
}

func (db *DB) ListMaterialTypes() ([]*MaterialType, error) {
	rows, err := db.Query(`SELECT id, name, description FROM material_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var types []*MaterialType
	for rows.Next() {
		var m MaterialType
		if err := rows.Scan(&m.ID, &m.Name, &m.Description); err != nil {
			return nil, err
		}
		types = append(types, &m)
	}
	return types, rows.Err()
}

func (db *DB) CreateBarSize(b *BarSize) error {
	id, err := db.insertID(db.Q(`INSERT INTO bar_sizes (label, description) VALUES (?, ?)`), b.Label, b.Description)
	if err != nil {
		return fmt.Errorf("create bar size: %w", err)
	}
	b.ID = id
	return nil
}

func (db *DB) ListBarSizes() ([]*BarSize, error) {
	rows, err := db.Query(`SELECT id, label, description FROM bar_sizes ORDER BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sizes []*BarSize
	for rows.Next() {
		var b BarSize
		if err := rows.Scan(&b.ID, &b.Label, &b.Description); err != nil {
			return nil, err
		}
		sizes = append(sizes, &b)
	}
	return sizes, rows.Err()
}
