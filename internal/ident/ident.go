// Package ident derives stable surrogate keys for dimension values.
//
// Action ids are content-derived: id = uuidv5(namespace, name). The function
// is pure — no I/O, no shared state — so any number of parallel parse workers
// can compute ids independently and are guaranteed to agree, which is what
// lets the parse phase run without a shared sequence generator or lock
// service. The merge stage re-checks the agreement as a defense against an
// implementation bug, not a race.
package ident

import "github.com/google/uuid"

// actionNamespace is fixed forever. Changing it would re-key every action
// dimension row ever loaded.
var actionNamespace = uuid.MustParse("12345678-1234-5678-1234-567812345678")

// ForAction returns the deterministic id for an action name. Identical input
// yields an identical id across calls, processes, and runs.
func ForAction(name string) uuid.UUID {
	return uuid.NewSHA1(actionNamespace, []byte(name))
}
