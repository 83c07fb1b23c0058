package ops

import "time"

const (
	LoadStartedEventType  = "cache.load_started"
	LoadFinishedEventType = "cache.load_finished"
	ReloadEventType       = "cache.reload_requested"
)

type LoadEvent struct {
	Type      string    `json:"type"`
	Endpoints []string  `json:"endpoints,omitempty"`
	Total     int       `json:"total,omitempty"`
	ElapsedMS int64     `json:"elapsed_ms,omitempty"`
	JobID     string    `json:"job_id,omitempty"`
	At        time.Time `json:"at"`
}

// LoadStarted and LoadFinished make the Hub a catalog load notifier.
// Broadcasts run on their own goroutine so the loader never waits on a
// slow websocket peer.

func (h *Hub) LoadStarted(endpoints []string) {
	go h.BroadcastJSON(LoadEvent{
		Type:      LoadStartedEventType,
		Endpoints: endpoints,
		At:        time.Now(),
	})
}

func (h *Hub) LoadFinished(total int, elapsed time.Duration) {
	go h.BroadcastJSON(LoadEvent{
		Type:      LoadFinishedEventType,
		Total:     total,
		ElapsedMS: elapsed.Milliseconds(),
		At:        time.Now(),
	})
}
