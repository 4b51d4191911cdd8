package views

import (
	"context"
	"log"
	"time"

	"shopcore/shopfloor"
	"shopcore/store"
)

const (
	snapActiveJobs     = "active_jobs"
	snapUnassignedJobs = "unassigned_jobs"
	snapMachines       = "machine_board"
	snapAssemblies     = "assembly_board"
)

// MachineView is a machine joined with its derived status and the jobs
// currently holding it.
type MachineView struct {
	*store.Machine
	EffectiveStatus string       `json:"effective_status"`
	DowntimeReason  string       `json:"downtime_reason,omitempty"`
	Jobs            []*store.Job `json:"jobs"`
}

// Dashboard is the aggregate snapshot served to the front end.
type Dashboard struct {
	ActiveJobs     []*store.Job               `json:"active_jobs"`
	UnassignedJobs []*store.Job               `json:"unassigned_jobs"`
	Machines       []*MachineView             `json:"machines"`
	DownMachines   []*MachineView             `json:"down_machines"`
	Assemblies     *shopfloor.AssemblyBuckets `json:"assemblies"`
	GeneratedAt    time.Time                  `json:"generated_at"`
}

// Manager recomputes derived collections from SQL and writes them
// through to the redis cache. Invalidation is coarse: a table-level
// hint recomputes every view the table feeds, never patches one.
type Manager struct {
	db    *store.DB
	cache *Cache
	now   func() time.Time
}

// NewManager builds a manager. cache may be nil, in which case every
// read recomputes from SQL.
func NewManager(db *store.DB, cache *Cache) *Manager {
	return &Manager{db: db, cache: cache, now: time.Now}
}

// viewsByTable maps a changed table to the snapshots it feeds.
var viewsByTable = map[string][]string{
	"jobs":                  {snapActiveJobs, snapUnassignedJobs, snapMachines, snapAssemblies},
	"work_orders":           {snapAssemblies},
	"work_order_assemblies": {snapAssemblies},
	"machines":              {snapMachines},
	"machine_downtime_logs": {snapMachines},
	"parts":                 {snapAssemblies},
}

// Invalidate recomputes and rewrites every snapshot fed by the table.
// Unknown tables are ignored.
func (m *Manager) Invalidate(table string) {
	for _, name := range viewsByTable[table] {
		if err := m.rebuild(name); err != nil {
			log.Printf("views: rebuild %s after %s change: %v", name, table, err)
		}
	}
}

// RebuildAll recomputes every snapshot. Called on startup and when the
// change-feed subscriber cannot tell what moved.
func (m *Manager) RebuildAll() error {
	for _, name := range []string{snapActiveJobs, snapUnassignedJobs, snapMachines, snapAssemblies} {
		if err := m.rebuild(name); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) rebuild(name string) error {
	if m.cache == nil {
		return nil
	}
	v, err := m.compute(name)
	if err != nil {
		return err
	}
	return m.cache.Set(context.Background(), name, v)
}

func (m *Manager) compute(name string) (any, error) {
	switch name {
	case snapActiveJobs:
		return m.computeActiveJobs()
	case snapUnassignedJobs:
		return m.db.ListUnassignedReadyJobs()
	case snapMachines:
		return m.computeMachineBoard()
	default:
		return m.computeAssemblyBoard()
	}
}

// ActiveJobs returns jobs currently holding machine time.
func (m *Manager) ActiveJobs() ([]*store.Job, error) {
	var jobs []*store.Job
	if m.cached(snapActiveJobs, &jobs) {
		return jobs, nil
	}
	return m.computeActiveJobs()
}

// UnassignedJobs returns ready jobs with no machine assigned.
func (m *Manager) UnassignedJobs() ([]*store.Job, error) {
	var jobs []*store.Job
	if m.cached(snapUnassignedJobs, &jobs) {
		return jobs, nil
	}
	return m.db.ListUnassignedReadyJobs()
}

// MachineBoard returns every machine with its effective status.
func (m *Manager) MachineBoard() ([]*MachineView, error) {
	var board []*MachineView
	if m.cached(snapMachines, &board) {
		return board, nil
	}
	return m.computeMachineBoard()
}

// DownMachines filters the machine board to unavailable machines.
func (m *Manager) DownMachines() ([]*MachineView, error) {
	board, err := m.MachineBoard()
	if err != nil {
		return nil, err
	}
	var down []*MachineView
	for _, mv := range board {
		if MachineUnavailable(shopfloor.MachineStatus(mv.EffectiveStatus)) {
			down = append(down, mv)
		}
	}
	return down, nil
}

// AssemblyBoard returns the classified assembly queue.
func (m *Manager) AssemblyBoard() (*shopfloor.AssemblyBuckets, error) {
	var buckets shopfloor.AssemblyBuckets
	if m.cached(snapAssemblies, &buckets) {
		return &buckets, nil
	}
	return m.computeAssemblyBoard()
}

// Dashboard assembles the full snapshot.
func (m *Manager) Dashboard() (*Dashboard, error) {
	active, err := m.ActiveJobs()
	if err != nil {
		return nil, err
	}
	unassigned, err := m.UnassignedJobs()
	if err != nil {
		return nil, err
	}
	board, err := m.MachineBoard()
	if err != nil {
		return nil, err
	}
	var down []*MachineView
	for _, mv := range board {
		if MachineUnavailable(shopfloor.MachineStatus(mv.EffectiveStatus)) {
			down = append(down, mv)
		}
	}
	assemblies, err := m.AssemblyBoard()
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		ActiveJobs:     active,
		UnassignedJobs: unassigned,
		Machines:       board,
		DownMachines:   down,
		Assemblies:     assemblies,
		GeneratedAt:    m.now(),
	}, nil
}

// cached loads a snapshot into dest, reporting whether it was present.
// Cache errors degrade to a SQL recompute.
func (m *Manager) cached(name string, dest any) bool {
	if m.cache == nil {
		return false
	}
	ok, err := m.cache.Get(context.Background(), name, dest)
	if err != nil {
		log.Printf("views: cache read %s: %v", name, err)
		return false
	}
	return ok
}

func (m *Manager) computeActiveJobs() ([]*store.Job, error) {
	statuses := make([]string, len(shopfloor.ActiveMachineJobStatuses))
	for i, s := range shopfloor.ActiveMachineJobStatuses {
		statuses[i] = string(s)
	}
	return m.db.ListJobsByStatus(statuses...)
}

func (m *Manager) computeMachineBoard() ([]*MachineView, error) {
	machines, err := m.db.ListMachines()
	if err != nil {
		return nil, err
	}
	openLogs, err := m.db.ListOpenDowntimeLogs()
	if err != nil {
		return nil, err
	}
	maintJobs, err := m.db.ListActiveMaintenanceJobs()
	if err != nil {
		return nil, err
	}

	board := make([]*MachineView, 0, len(machines))
	for _, mach := range machines {
		mv := &MachineView{
			Machine:         mach,
			EffectiveStatus: string(EffectiveMachineStatus(mach, openLogs, maintJobs)),
		}
		for _, l := range openLogs {
			if l.MachineID == mach.ID {
				mv.DowntimeReason = l.Reason
				break
			}
		}
		jobs, err := m.db.ListMachineJobsByStatus(mach.ID, activeStatusStrings()...)
		if err != nil {
			return nil, err
		}
		mv.Jobs = jobs
		board = append(board, mv)
	}
	return board, nil
}

func (m *Manager) computeAssemblyBoard() (*shopfloor.AssemblyBuckets, error) {
	workOrders, err := m.db.ListWorkOrders("", 250)
	if err != nil {
		return nil, err
	}

	details := make([]*store.WorkOrderDetail, 0, len(workOrders))
	for _, wo := range workOrders {
		if wo.OrderType == string(shopfloor.OrderMaintenance) {
			continue
		}
		d, err := m.db.GetWorkOrderDetail(wo.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}

	parts, err := m.db.ListParts("")
	if err != nil {
		return nil, err
	}
	partTypes := make(map[int64]shopfloor.PartType, len(parts))
	for _, p := range parts {
		partTypes[p.ID] = shopfloor.PartType(p.PartType)
	}

	return shopfloor.ClassifyAssemblies(details, partTypes, m.now()), nil
}

func activeStatusStrings() []string {
	out := make([]string, len(shopfloor.ActiveMachineJobStatuses))
	for i, s := range shopfloor.ActiveMachineJobStatuses {
		out[i] = string(s)
	}
	return out
}
