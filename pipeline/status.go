package pipeline

import "time"

// Per-day statuses emitted as the pipeline progresses.
const (
	StatusQueued     = "queued"
	StatusGenerating = "generating"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// StatusEvent is one progress update for one day of a job.
type StatusEvent struct {
	JobID     string
	DayOfYear int
	Status    string
	Provider  string
	Attempt   int
	Detail    string
	At        time.Time
}

// StatusSink receives progress events. Implementations must tolerate
// concurrent calls; the production sink persists into the jobstore.
type StatusSink interface {
	Emit(event StatusEvent)
}

// NopSink discards all events.
type NopSink struct{}

// Emit implements StatusSink.
func (NopSink) Emit(StatusEvent) {}

var _ StatusSink = NopSink{}
