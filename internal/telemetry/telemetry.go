// Package telemetry defines the one-way usage-observation interface the
// core emits events through, plus a Prometheus-backed recorder.
//
// Recorders are injected where they are needed; nothing in the core
// reaches into package globals, and nothing ever depends on an event
// being delivered.
package telemetry

// Event names emitted by the session.
const (
	EventStageChanged     = "stage_changed"
	EventPersonAdded      = "person_added"
	EventPersonRemoved    = "person_removed"
	EventItemAssigned     = "item_assigned"
	EventReceiptProcessed = "receipt_processed"
	EventReceiptFailed    = "receipt_processing_failed"
	EventBillSaved        = "bill_saved"
	EventBillSaveFailed   = "bill_save_failed"
)

// Recorder receives usage observations. Implementations must be cheap
// and must never fail the caller.
type Recorder interface {
	Record(event string, params map[string]any)
}

// Noop discards every observation. Useful default for tests.
type Noop struct{}

// Record implements Recorder.
func (Noop) Record(string, map[string]any) {}
