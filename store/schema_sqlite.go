package store

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS locations (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS machines (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    name          TEXT NOT NULL UNIQUE,
    code          TEXT NOT NULL UNIQUE,
    location_id   INTEGER REFERENCES locations(id),
    status        TEXT NOT NULL DEFAULT 'available',
    status_reason TEXT NOT NULL DEFAULT '',
    active        INTEGER NOT NULL DEFAULT 1,
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at    TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_machines_status ON machines(status);

CREATE TABLE IF NOT EXISTS material_types (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS bar_sizes (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    label       TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS parts (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    part_number      TEXT NOT NULL UNIQUE,
    description      TEXT NOT NULL DEFAULT '',
    part_type        TEXT NOT NULL DEFAULT 'manufactured',
    material_type_id INTEGER REFERENCES material_types(id),
    bar_size_id      INTEGER REFERENCES bar_sizes(id),
    cost             REAL NOT NULL DEFAULT 0,
    active           INTEGER NOT NULL DEFAULT 1,
    created_at       TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_parts_type ON parts(part_type);

CREATE TABLE IF NOT EXISTS assembly_bom (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    assembly_part_id  INTEGER NOT NULL REFERENCES parts(id),
    component_part_id INTEGER NOT NULL REFERENCES parts(id),
    quantity          REAL NOT NULL DEFAULT 1,
    sort_order        INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_bom_assembly ON assembly_bom(assembly_part_id, sort_order);

CREATE TABLE IF NOT EXISTS work_orders (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    wo_number        TEXT NOT NULL UNIQUE,
    order_type       TEXT NOT NULL DEFAULT 'make_to_order',
    maintenance_type TEXT NOT NULL DEFAULT '',
    customer         TEXT NOT NULL DEFAULT '',
    po_number        TEXT NOT NULL DEFAULT '',
    priority         TEXT NOT NULL DEFAULT 'normal',
    due_date         TEXT,
    status           TEXT NOT NULL DEFAULT 'pending',
    notes            TEXT NOT NULL DEFAULT '',
    created_at       TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at       TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    completed_at     TEXT
);
CREATE INDEX IF NOT EXISTS idx_wo_status ON work_orders(status);
CREATE INDEX IF NOT EXISTS idx_wo_number ON work_orders(wo_number);

CREATE TABLE IF NOT EXISTS work_order_assemblies (
    id                    INTEGER PRIMARY KEY AUTOINCREMENT,
    work_order_id         INTEGER NOT NULL REFERENCES work_orders(id),
    assembly_part_id      INTEGER NOT NULL REFERENCES parts(id),
    quantity              REAL NOT NULL DEFAULT 1,
    status                TEXT NOT NULL DEFAULT 'pending',
    station_number        TEXT NOT NULL DEFAULT '',
    assembler_number      TEXT NOT NULL DEFAULT '',
    assembly_started_at   TEXT,
    assembly_started_by   TEXT NOT NULL DEFAULT '',
    assembly_completed_at TEXT,
    assembly_completed_by TEXT NOT NULL DEFAULT '',
    good_quantity         REAL NOT NULL DEFAULT 0,
    bad_quantity          REAL NOT NULL DEFAULT 0,
    assembly_notes        TEXT NOT NULL DEFAULT '',
    created_at            TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_woa_wo ON work_order_assemblies(work_order_id);

CREATE TABLE IF NOT EXISTS jobs (
    id                      INTEGER PRIMARY KEY AUTOINCREMENT,
    job_number              TEXT NOT NULL UNIQUE,
    work_order_id           INTEGER NOT NULL REFERENCES work_orders(id),
    work_order_assembly_id  INTEGER REFERENCES work_order_assemblies(id),
    part_id                 INTEGER REFERENCES parts(id),
    quantity                REAL NOT NULL DEFAULT 1,
    quantity_customized     INTEGER NOT NULL DEFAULT 0,
    priority                TEXT NOT NULL DEFAULT 'normal',
    assigned_machine_id     INTEGER REFERENCES machines(id),
    scheduled_start         TEXT,
    scheduled_end           TEXT,
    estimated_minutes       INTEGER NOT NULL DEFAULT 0,
    status                  TEXT NOT NULL DEFAULT 'pending_compliance',
    good_pieces             REAL NOT NULL DEFAULT 0,
    bad_pieces              REAL NOT NULL DEFAULT 0,
    is_maintenance          INTEGER NOT NULL DEFAULT 0,
    maintenance_description TEXT NOT NULL DEFAULT '',
    notes                   TEXT NOT NULL DEFAULT '',
    created_at              TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at              TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_jobs_wo ON jobs(work_order_id);
CREATE INDEX IF NOT EXISTS idx_jobs_woa ON jobs(work_order_assembly_id);
CREATE INDEX IF NOT EXISTS idx_jobs_machine ON jobs(assigned_machine_id, status);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);

CREATE TABLE IF NOT EXISTS machine_downtime_logs (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    machine_id INTEGER NOT NULL REFERENCES machines(id),
    start_time TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    end_time   TEXT,
    reason     TEXT NOT NULL DEFAULT '',
    notes      TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_downtime_open ON machine_downtime_logs(machine_id) WHERE end_time IS NULL;

CREATE TABLE IF NOT EXISTS outbox (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    topic       TEXT NOT NULL,
    payload     BLOB NOT NULL,
    msg_type    TEXT NOT NULL DEFAULT '',
    station_id  TEXT NOT NULL DEFAULT '',
    retries     INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    sent_at     TEXT
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at) WHERE sent_at IS NULL;

CREATE TABLE IF NOT EXISTS audit_log (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    entity_type TEXT NOT NULL,
    entity_id   INTEGER NOT NULL DEFAULT 0,
    action      TEXT NOT NULL,
    old_value   TEXT NOT NULL DEFAULT '',
    new_value   TEXT NOT NULL DEFAULT '',
    actor       TEXT NOT NULL DEFAULT 'system',
    created_at  TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_log(entity_type, entity_id);

CREATE TABLE IF NOT EXISTS admin_users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'operator',
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
`
