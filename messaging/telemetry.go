package messaging

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"shopcore/shopfloor"
	"shopcore/store"
)

// TelemetryReport is a machine status heartbeat from the floor,
// published on machines/<code>/status.
type TelemetryReport struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// MachineTelemetry applies floor heartbeats to machine rows. A `down`
// report opens a downtime log and a recovery to `available` closes the
// open logs, so telemetry participates in the derived down signal the
// same way operators do.
type MachineTelemetry struct {
	db    *store.DB
	views ViewInvalidator
}

func NewMachineTelemetry(db *store.DB, views ViewInvalidator) *MachineTelemetry {
	return &MachineTelemetry{db: db, views: views}
}

func (t *MachineTelemetry) Start(client *Client, topic string) error {
	return client.Subscribe(topic, t.handleMessage)
}

func (t *MachineTelemetry) handleMessage(topic string, payload []byte) {
	code := machineCodeFromTopic(topic)
	if code == "" {
		log.Printf("telemetry: unparseable topic %q", topic)
		return
	}

	var report TelemetryReport
	if err := json.Unmarshal(payload, &report); err != nil {
		log.Printf("telemetry: decode report on %s: %v", topic, err)
		return
	}
	status := shopfloor.MachineStatus(report.Status)
	if !status.Valid() {
		log.Printf("telemetry: machine %s reported unknown status %q", code, report.Status)
		return
	}

	m, err := t.db.GetMachineByCode(code)
	if err != nil {
		log.Printf("telemetry: unknown machine %s: %v", code, err)
		return
	}
	if m.Status == string(status) {
		return
	}

	reason := report.Reason
	if reason == "" {
		reason = "telemetry"
	}
	if err := t.db.SetMachineStatus(m.ID, string(status), reason); err != nil {
		log.Printf("telemetry: set machine %s status: %v", code, err)
		return
	}

	now := time.Now()
	switch status {
	case shopfloor.MachineDown:
		if !t.hasOpenLog(m.ID) {
			if _, err := t.db.OpenDowntimeLog(m.ID, now, "telemetry", reason); err != nil {
				log.Printf("telemetry: open downtime log for %s: %v", code, err)
			}
		}
	case shopfloor.MachineAvailable:
		if err := t.db.CloseOpenDowntimeLogs(m.ID, now); err != nil {
			log.Printf("telemetry: close downtime logs for %s: %v", code, err)
		}
	}

	t.db.AppendAudit("machine", m.ID, "telemetry", m.Status, string(status), "telemetry")
	t.views.Invalidate("machines")
	t.views.Invalidate("machine_downtime_logs")
}

func (t *MachineTelemetry) hasOpenLog(machineID int64) bool {
	logs, err := t.db.ListOpenDowntimeLogs()
	if err != nil {
		return false
	}
	for _, l := range logs {
		if l.MachineID == machineID {
			return true
		}
	}
	return false
}

// machineCodeFromTopic extracts the machine code from a telemetry
// topic of the form machines/<code>/status.
func machineCodeFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "machines" || parts[2] != "status" {
		return ""
	}
	return parts[1]
}
