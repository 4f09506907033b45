package outbox

// Outbox rows are persisted inside the same DB transaction as state changes.
// Worker relays read pending rows and publish them to the message bus. The
// status values here are shared by every module outbox table.
const (
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusFailed    = "failed"
)
