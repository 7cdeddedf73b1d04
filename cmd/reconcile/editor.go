package main

import (
	"io"

	"github.com/ledgerkit/reconcile/stage"
)

// dryRunEditor is a reference stage.Editor that only reports what it would
// do, in the teacher's printInfof style, rather than touching any files.
// A real deployment supplies an Editor that rewrites the ledger's files in
// place (spec.md §6's Editor is an external collaborator; none of that
// belongs to the engine).
type dryRunEditor struct {
	w io.Writer
}

func (e dryRunEditor) Apply(changes stage.StagedChanges) (map[string]string, error) {
	for _, rm := range changes.Removals {
		printInfof(e.w, "would remove %s:%d", rm.Filename, rm.Line)
	}
	for _, ins := range changes.Insertions {
		printInfof(e.w, "would append to %s: %s %s", ins.Filename, ins.Transaction.Date, ins.Transaction.Payee)
	}
	return nil, nil
}
