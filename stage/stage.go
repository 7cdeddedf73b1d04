// Package stage implements the engine side of the staged-edits interface
// (C9): building a StagedChanges value from a selected extender candidate.
// Applying it back to ledger files is the Editor's job, an external
// collaborator the engine only calls through an interface (spec.md §1
// Non-goals, §6).
package stage

import (
	"github.com/google/uuid"

	"github.com/ledgerkit/reconcile/extend"
	"github.com/ledgerkit/reconcile/posting"
)

// EntryRef locates an on-disk ledger entry by file and line, the unit the
// Editor removes or rewrites.
type EntryRef struct {
	Filename string
	Line     int
}

// Insertion is a brand-new entry to append to a file (spec.md §6: "add an
// 'add entry' targeting the default output file unless already on-disk").
type Insertion struct {
	Filename    string
	Transaction *posting.Transaction
}

// StagedChanges is the value the engine hands the Editor: a set of
// removals, insertions, and edits to apply atomically to the ledger's
// files (spec.md §6).
type StagedChanges struct {
	ID         uuid.UUID
	Removals   []EntryRef
	Insertions []Insertion
	Edits      []EntryRef // entries targeted for rewrite rather than removal+add
}

// Editor is the external collaborator that applies a StagedChanges value
// and returns the resulting per-file contents (spec.md §6). Interface
// only: no implementation lives in this module.
type Editor interface {
	Apply(changes StagedChanges) (filesByName map[string]string, err error)
}

// BuildStagedChanges implements spec.md §6's construction rule for a
// selected candidate: every on-disk transaction the merge drew from is
// removed (the merged transaction fully supersedes it), and the merged
// transaction itself is inserted — into its own file if it was already on
// disk (a self-merge edit), otherwise into defaultFile.
func BuildStagedChanges(candidate extend.Result, sources []*posting.Transaction, defaultFile string) StagedChanges {
	changes := StagedChanges{ID: uuid.New()}

	for _, src := range sources {
		if !src.Pos.OnDisk() {
			continue
		}
		changes.Removals = append(changes.Removals, EntryRef{
			Filename: src.Pos.Filename,
			Line:     src.Pos.Line,
		})
	}

	file := defaultFile
	if candidate.Merged.Pos.OnDisk() {
		file = candidate.Merged.Pos.Filename
	}
	changes.Insertions = append(changes.Insertions, Insertion{
		Filename:    file,
		Transaction: candidate.Merged,
	})

	return changes
}
