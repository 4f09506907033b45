package events

import (
	contractsv1 "funnelforge/contracts/gen/events/v1"
)

// Envelope re-exports the canonical event contract for platform code.
// Context services alias the same type inside their ports packages so module
// code never imports another module's ports to exchange events.
type Envelope = contractsv1.Envelope
