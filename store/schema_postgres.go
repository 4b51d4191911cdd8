package store

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS locations (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS machines (
    id            BIGSERIAL PRIMARY KEY,
    name          TEXT NOT NULL UNIQUE,
    code          TEXT NOT NULL UNIQUE,
    location_id   BIGINT REFERENCES locations(id),
    status        TEXT NOT NULL DEFAULT 'available',
    status_reason TEXT NOT NULL DEFAULT '',
    active        BOOLEAN NOT NULL DEFAULT TRUE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_machines_status ON machines(status);

CREATE TABLE IF NOT EXISTS material_types (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS bar_sizes (
    id          BIGSERIAL PRIMARY KEY,
    label       TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS parts (
    id               BIGSERIAL PRIMARY KEY,
    part_number      TEXT NOT NULL UNIQUE,
    description      TEXT NOT NULL DEFAULT '',
    part_type        TEXT NOT NULL DEFAULT 'manufactured',
    material_type_id BIGINT REFERENCES material_types(id),
    bar_size_id      BIGINT REFERENCES bar_sizes(id),
    cost             DOUBLE PRECISION NOT NULL DEFAULT 0,
    active           BOOLEAN NOT NULL DEFAULT TRUE,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_parts_type ON parts(part_type);

CREATE TABLE IF NOT EXISTS assembly_bom (
    id                BIGSERIAL PRIMARY KEY,
    assembly_part_id  BIGINT NOT NULL REFERENCES parts(id),
    component_part_id BIGINT NOT NULL REFERENCES parts(id),
    quantity          DOUBLE PRECISION NOT NULL DEFAULT 1,
    sort_order        INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_bom_assembly ON assembly_bom(assembly_part_id, sort_order);

CREATE TABLE IF NOT EXISTS work_orders (
    id               BIGSERIAL PRIMARY KEY,
    wo_number        TEXT NOT NULL UNIQUE,
    order_type       TEXT NOT NULL DEFAULT 'make_to_order',
    maintenance_type TEXT NOT NULL DEFAULT '',
    customer         TEXT NOT NULL DEFAULT '',
    po_number        TEXT NOT NULL DEFAULT '',
    priority         TEXT NOT NULL DEFAULT 'normal',
    due_date         TIMESTAMPTZ,
    status           TEXT NOT NULL DEFAULT 'pending',
    notes            TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    completed_at     TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_wo_status ON work_orders(status);
CREATE INDEX IF NOT EXISTS idx_wo_number ON work_orders(wo_number);

CREATE TABLE IF NOT EXISTS work_order_assemblies (
    id                    BIGSERIAL PRIMARY KEY,
    work_order_id         BIGINT NOT NULL REFERENCES work_orders(id),
    assembly_part_id      BIGINT NOT NULL REFERENCES parts(id),
    quantity              DOUBLE PRECISION NOT NULL DEFAULT 1,
    status                TEXT NOT NULL DEFAULT 'pending',
    station_number        TEXT NOT NULL DEFAULT '',
    assembler_number      TEXT NOT NULL DEFAULT '',
    assembly_started_at   TIMESTAMPTZ,
    assembly_started_by   TEXT NOT NULL DEFAULT '',
    assembly_completed_at TIMESTAMPTZ,
    assembly_completed_by TEXT NOT NULL DEFAULT '',
    good_quantity         DOUBLE PRECISION NOT NULL DEFAULT 0,
    bad_quantity          DOUBLE PRECISION NOT NULL DEFAULT 0,
    assembly_notes        TEXT NOT NULL DEFAULT '',
    created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_woa_wo ON work_order_assemblies(work_order_id);

CREATE TABLE IF NOT EXISTS jobs (
    id                      BIGSERIAL PRIMARY KEY,
    job_number              TEXT NOT NULL UNIQUE,
    work_order_id           BIGINT NOT NULL REFERENCES work_orders(id),
    work_order_assembly_id  BIGINT REFERENCES work_order_assemblies(id),
    part_id                 BIGINT REFERENCES parts(id),
    quantity                DOUBLE PRECISION NOT NULL DEFAULT 1,
    quantity_customized     BOOLEAN NOT NULL DEFAULT FALSE,
    priority                TEXT NOT NULL DEFAULT 'normal',
    assigned_machine_id     BIGINT REFERENCES machines(id),
    scheduled_start         TIMESTAMPTZ,
    scheduled_end           TIMESTAMPTZ,
    estimated_minutes       INTEGER NOT NULL DEFAULT 0,
    status                  TEXT NOT NULL DEFAULT 'pending_compliance',
    good_pieces             DOUBLE PRECISION NOT NULL DEFAULT 0,
    bad_pieces              DOUBLE PRECISION NOT NULL DEFAULT 0,
    is_maintenance          BOOLEAN NOT NULL DEFAULT FALSE,
    maintenance_description TEXT NOT NULL DEFAULT '',
    notes                   TEXT NOT NULL DEFAULT '',
    created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_jobs_wo ON jobs(work_order_id);
CREATE INDEX IF NOT EXISTS idx_jobs_woa ON jobs(work_order_assembly_id);
CREATE INDEX IF NOT EXISTS idx_jobs_machine ON jobs(assigned_machine_id, status);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);

CREATE TABLE IF NOT EXISTS machine_downtime_logs (
    id         BIGSERIAL PRIMARY KEY,
    machine_id BIGINT NOT NULL REFERENCES machines(id),
    start_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    end_time   TIMESTAMPTZ,
    reason     TEXT NOT NULL DEFAULT '',
    notes      TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_downtime_open ON machine_downtime_logs(machine_id) WHERE end_time IS NULL;

CREATE TABLE IF NOT EXISTS outbox (
    id          BIGSERIAL PRIMARY KEY,
    topic       TEXT NOT NULL,
    payload     BYTEA NOT NULL,
    msg_type    TEXT NOT NULL DEFAULT '',
    station_id  TEXT NOT NULL DEFAULT '',
    retries     INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    sent_at     TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at) WHERE sent_at IS NULL;

CREATE TABLE IF NOT EXISTS audit_log (
    id          BIGSERIAL PRIMARY KEY,
    entity_type TEXT NOT NULL,
    entity_id   BIGINT NOT NULL DEFAULT 0,
    action      TEXT NOT NULL,
    old_value   TEXT NOT NULL DEFAULT '',
    new_value   TEXT NOT NULL DEFAULT '',
    actor       TEXT NOT NULL DEFAULT 'system',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_log(entity_type, entity_id);

CREATE TABLE IF NOT EXISTS admin_users (
    id            BIGSERIAL PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'operator',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
