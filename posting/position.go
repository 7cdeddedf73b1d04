package posting

import "fmt"

// Position records where a Posting or Transaction came from in an on-disk
// ledger file. Entries proposed by an importer (not yet on disk) carry a
// zero Position (Filename == ""); the engine uses that distinction to
// decide whether a merge needs a "remove entry" edit (spec.md §6, Editor).
//
// Position intentionally does not carry an Offset/Column: the engine never
// re-serializes or diffs source text (that is the formatter/editor's job,
// out of scope here), it only needs enough to let the host locate the
// original line.
type Position struct {
	Filename string
	Line     int
}

// OnDisk reports whether this position refers to an existing ledger entry.
func (p Position) OnDisk() bool {
	return p.Filename != ""
}

// String renders "filename:line", or "(proposed)" for ephemeral entries.
func (p Position) String() string {
	if !p.OnDisk() {
		return "(proposed)"
	}
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}
