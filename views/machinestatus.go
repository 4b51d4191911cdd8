package views

import (
	"shopcore/shopfloor"
	"shopcore/store"
)

// EffectiveMachineStatus projects the three independent down signals
// (stored status, open downtime log, active maintenance job) into one
// presentation status. The writers stay decoupled; nothing is
// denormalized back onto the machine row.
func EffectiveMachineStatus(m *store.Machine, openLogs []*store.DowntimeLog, maintJobs []*store.Job) shopfloor.MachineStatus {
	for _, l := range openLogs {
		if l.MachineID == m.ID && l.EndTime == nil {
			return shopfloor.MachineDown
		}
	}
	for _, j := range maintJobs {
		if j.IsMaintenance && j.AssignedMachineID != nil && *j.AssignedMachineID == m.ID {
			return shopfloor.MachineMaintenance
		}
	}
	return shopfloor.MachineStatus(m.Status)
}

// MachineUnavailable reports whether an effective status should keep
// the machine off the scheduling board.
func MachineUnavailable(s shopfloor.MachineStatus) bool {
	switch s {
	case shopfloor.MachineDown, shopfloor.MachineMaintenance, shopfloor.MachineOffline:
		return true
	}
	return false
}
