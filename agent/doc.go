// Package agent contains the agent runtime: a shared dispatch lifecycle
// (receive message, create task, run domain logic, append response, complete)
// and the three concrete agents of the incident response workflow:
// Coordinator, Diagnostic and Resolution.
//
// Incoming structured payloads are decoded into a closed Request union so
// every agent's dispatch switch is exhaustive over the known request shapes;
// an unrecognized payload is a defined "unknown request" response, not an
// error.
package agent
