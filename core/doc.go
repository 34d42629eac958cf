// Package core defines the shared protocol types of incidentmesh: the
// message/part model exchanged between callers and agents, the task state
// machine that tracks one unit of work from message receipt to a terminal
// state, and the agent card / capability declarations.
//
// Everything in this package is transport-agnostic. Delivery of a message to
// an agent is a local synchronous call; core only fixes the shapes and the
// lifecycle invariants:
//
//   - A Message is immutable once attached to a Task.
//   - A Task's message sequence is append-only.
//   - Task states advance monotonically along
//     SUBMITTED → WORKING → {COMPLETED | FAILED | CANCELLED}.
package core
