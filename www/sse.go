package www

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"shopcore/engine"
)

type SSEEvent struct {
	Event string
	Data  string
}

type EventHub struct {
	mu        sync.RWMutex
	clients   map[chan SSEEvent]struct{}
	broadcast chan SSEEvent
	stopChan  chan struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{
		clients:   make(map[chan SSEEvent]struct{}),
		broadcast: make(chan SSEEvent, 256),
		stopChan:  make(chan struct{}),
	}
}

func (h *EventHub) Start() {
	go h.run()
}

func (h *EventHub) Stop() {
	select {
	case h.stopChan <- struct{}{}:
	default:
	}
}

func (h *EventHub) run() {
	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-h.stopChan:
			return
		case evt := <-h.broadcast:
			h.mu.RLock()
			for ch := range h.clients {
				select {
				case ch <- evt:
				default:
					// drop if full
				}
			}
			h.mu.RUnlock()
		case <-keepalive.C:
			h.mu.RLock()
			for ch := range h.clients {
				select {
				case ch <- SSEEvent{Event: "keepalive", Data: "ping"}:
				default:
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *EventHub) Broadcast(event, data string) {
	select {
	case h.broadcast <- SSEEvent{Event: event, Data: data}:
	default:
	}
}

func (h *EventHub) AddClient() chan SSEEvent {
	ch := make(chan SSEEvent, 64)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *EventHub) RemoveClient(ch chan SSEEvent) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SetupEngineListeners wires engine events to SSE broadcasts.
func (h *EventHub) SetupEngineListeners(eng *engine.Engine) {
	eng.Events.SubscribeTypes(func(evt engine.Event) {
		ev := evt.Payload.(engine.JobStatusChangedEvent)
		h.Broadcast("job-update", fmt.Sprintf(`{"type":"status_changed","job_id":%d,"new_status":"%s"}`, ev.JobID, ev.NewStatus))
	}, engine.EventJobStatusChanged)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		ev := evt.Payload.(engine.JobRequeuedEvent)
		h.Broadcast("job-update", fmt.Sprintf(`{"type":"requeued","job_id":%d}`, ev.JobID))
	}, engine.EventJobRequeued)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		ev := evt.Payload.(engine.JobRescheduledEvent)
		h.Broadcast("job-update", fmt.Sprintf(`{"type":"rescheduled","job_id":%d,"machine_id":%d}`, ev.JobID, ev.MachineID))
	}, engine.EventJobRescheduled)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		ev := evt.Payload.(engine.WorkOrderCreatedEvent)
		h.Broadcast("workorder-update", fmt.Sprintf(`{"type":"created","work_order_id":%d,"wo_number":"%s"}`, ev.WorkOrderID, ev.WONumber))
	}, engine.EventWorkOrderCreated)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		ev := evt.Payload.(engine.WorkOrderCompletedEvent)
		h.Broadcast("workorder-update", fmt.Sprintf(`{"type":"completed","work_order_id":%d}`, ev.WorkOrderID))
	}, engine.EventWorkOrderCompleted)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		ev := evt.Payload.(engine.TCOApprovedEvent)
		h.Broadcast("workorder-update", fmt.Sprintf(`{"type":"tco_approved","work_order_id":%d}`, ev.WorkOrderID))
	}, engine.EventTCOApproved)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		ev := evt.Payload.(engine.AssemblyStartedEvent)
		h.Broadcast("assembly-update", fmt.Sprintf(`{"type":"started","assembly_id":%d,"work_order_id":%d}`, ev.AssemblyID, ev.WorkOrderID))
	}, engine.EventAssemblyStarted)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		ev := evt.Payload.(engine.AssemblyCompletedEvent)
		h.Broadcast("assembly-update", fmt.Sprintf(`{"type":"completed","assembly_id":%d,"work_order_id":%d}`, ev.AssemblyID, ev.WorkOrderID))
	}, engine.EventAssemblyCompleted)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		ev := evt.Payload.(engine.MaintenanceScheduledEvent)
		h.Broadcast("machine-update", fmt.Sprintf(`{"type":"maintenance_scheduled","machine_id":%d,"work_order_id":%d}`, ev.MachineID, ev.WorkOrderID))
	}, engine.EventMaintenanceScheduled)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		ev := evt.Payload.(engine.MachineStatusChangedEvent)
		h.Broadcast("machine-update", fmt.Sprintf(`{"type":"status_changed","machine_id":%d,"new_status":"%s"}`, ev.MachineID, ev.Status))
	}, engine.EventMachineStatusChanged)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		h.Broadcast("system-status", `{"messaging":"connected"}`)
	}, engine.EventMessagingConnected)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		h.Broadcast("system-status", `{"messaging":"disconnected"}`)
	}, engine.EventMessagingDisconnected)
}

// SSEHandler serves the SSE endpoint.
func (h *EventHub) SSEHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.AddClient()
	defer h.RemoveClient(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-ch:
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Event, evt.Data); err != nil {
				log.Printf("sse: write error: %v", err)
				return
			}
			flusher.Flush()
		}
	}
}
