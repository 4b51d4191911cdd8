package store

import (
	"database/sql"
	"fmt"
	"time"
)

type Part struct {
	ID             int64     `json:"id"`
	PartNumber     string    `json:"part_number"`
	Description    string    `json:"description"`
	PartType       string    `json:"part_type"`
	MaterialTypeID *int64    `json:"material_type_id,omitempty"`
	BarSizeID      *int64    `json:"bar_size_id,omitempty"`
	Cost           float64   `json:"cost"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

// BOMEdge is one component line of an assembly's bill of materials,
// ordered by SortOrder. ComponentType is joined from parts.part_type.
type BOMEdge struct {
	ID              int64   `json:"id"`
	AssemblyPartID  int64   `json:"assembly_part_id"`
	ComponentPartID int64   `json:"component_part_id"`
	ComponentNumber string  `json:"component_number"`
	ComponentDesc   string  `json:"component_desc"`
	ComponentType   string  `json:"component_type"`
	Quantity        float64 `json:"quantity"`
	SortOrder       int     `json:"sort_order"`
}

const partSelectCols = `id, part_number, description, part_type, material_type_id, bar_size_id, cost, active, created_at`

func scanPart(row interface{ Scan(...any) error }) (*Part, error) {
	var p Part
	var materialTypeID, barSizeID sql.NullInt64
	var active, createdAt any
	err := row.Scan(&p.ID, &p.PartNumber, &p.Description, &p.PartType, &materialTypeID, &barSizeID, &p.Cost, &active, &createdAt)
	if err != nil {
		return nil, err
	}
	if materialTypeID.Valid {
		p.MaterialTypeID = &materialTypeID.Int64
	}
	if barSizeID.Valid {
		p.BarSizeID = &barSizeID.Int64
	}
	p.Active = parseBool(active)
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

func scanParts(rows *sql.Rows) ([]*Part, error) {
	var parts []*Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

func (db *DB) CreatePart(p *Part) error {
	var matID, barID any
	if p.MaterialTypeID != nil {
		matID = *p.MaterialTypeID
	}
	if p.BarSizeID != nil {
		barID = *p.BarSizeID
	}
	id, err := db.insertID(db.Q(`INSERT INTO parts (part_number, description, part_type, material_type_id, bar_size_id, cost, active) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		p.PartNumber, p.Description, p.PartType, matID, barID, p.Cost, p.Active)
	if err != nil {
		return fmt.Errorf("create part: %w", err)
	}
	p.ID = id
	return nil
}

func (db *DB) UpdatePart(p *Part) error {
	var matID, barID any
	if p.MaterialTypeID != nil {
		matID = *p.MaterialTypeID
	}
	if p.BarSizeID != nil {
		barID = *p.BarSizeID
	}
	_, err := db.Exec(db.Q(`UPDATE parts SET part_number=?, description=?, part_type=?, material_type_id=?, bar_size_id=?, cost=?, active=? WHERE id=?`),
		p.PartNumber, p.Description, p.PartType, matID, barID, p.Cost, p.Active, p.ID)
	if err != nil {
		return fmt.Errorf("update part: %w", err)
	}
	return nil
}

func (db *DB) GetPart(id int64) (*Part, error) {
	row := db.QueryRow(db.Q(fmt.Sprintf(`SELECT %s FROM parts WHERE id=?`, partSelectCols)), id)
	return scanPart(row)
}

func (db *DB) GetPartByNumber(partNumber string) (*Part, error) {
	row := db.QueryRow(db.Q(fmt.Sprintf(`SELECT %s FROM parts WHERE part_number=?`, partSelectCols)), partNumber)
	return scanPart(row)
}

func (db *DB) ListParts(partType string) ([]*Part, error) {
	if partType != "" {
		rows, err := db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM parts WHERE active=%s AND part_type=? ORDER BY part_number`, partSelectCols, db.dialect.BoolTrue())), partType)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return scanParts(rows)
	}
	rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM parts WHERE active=%s ORDER BY part_number`, partSelectCols, db.dialect.BoolTrue()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanParts(rows)
}

// ListBOM returns the ordered component edges for an assembly part.
func (db *DB) ListBOM(assemblyPartID int64) ([]*BOMEdge, error) {
	rows, err := db.Query(db.Q(`SELECT b.id, b.assembly_part_id, b.component_part_id, p.part_number, p.description, p.part_type, b.quantity, b.sort_order
		FROM assembly_bom b JOIN parts p ON p.id = b.component_part_id
		WHERE b.assembly_part_id=? ORDER BY b.sort_order, b.id`), assemblyPartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var edges []*BOMEdge
	for rows.Next() {
		var e BOMEdge
		if err := rows.Scan(&e.ID, &e.AssemblyPartID, &e.ComponentPartID, &e.ComponentNumber, &e.ComponentDesc, &e.ComponentType, &e.Quantity, &e.SortOrder); err != nil {
			return nil, err
		}
		edges = append(edges, &e)
	}
	return edges, rows.Err()
}

func (db *DB) AddBOMEdge(e *BOMEdge) error {
	id, err := db.insertID(db.Q(`INSERT INTO assembly_bom (assembly_part_id, component_part_id, quantity, sort_order) VALUES (?, ?, ?, ?)`),
		e.AssemblyPartID, e.ComponentPartID, e.Quantity, e.SortOrder)
	if err != nil {
		return fmt.Errorf("add bom edge: %w", err)
	}
	e.ID = id
	return nil
}

func (db *DB) DeleteBOMEdge(id int64) error {
	_, err := db.Exec(db.Q(`DELETE FROM assembly_bom WHERE id=?`), id)
	return err
}
