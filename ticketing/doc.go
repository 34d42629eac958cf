// Package ticketing implements the ticketing tool and the external-sync
// bridge. A local Ticket record is authoritative and always advances;
// mirroring its lifecycle onto an external issue tracker is best-effort per
// attempt (transition, comment, attachment, subtask, worklog) and never
// blocks or fails the local operation.
//
// When the tracker is unconfigured, misconfigured or unreachable the bridge
// runs in simulated mode, synthesizing placeholder issue keys so the rest of
// the pipeline is unaffected. Every external attempt yields a typed
// Outcome (Applied, Skipped, Simulated or Failed) that callers can assert on
// instead of parsing log text.
package ticketing
