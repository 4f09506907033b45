// Package flowengine implements the quiz flow engine inside the
// funnel-runtime context.
//
// The module owns participant session orchestration (start/answer/advance/
// retreat/reset), weighted style scoring with click-order tie-breaking, and
// session lifecycle event production through the outbox-backed relay. It keeps
// business rules in application/domain layers and isolates infrastructure
// concerns behind ports and adapters.
package flowengine
