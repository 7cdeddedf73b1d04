package review

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/ledgerkit/reconcile/extend"
	"github.com/ledgerkit/reconcile/posting"
)

// minAccountColumn mirrors the formatter's fixed minimum spacing between an
// account name and its amount, so a short account still lines up with
// longer ones in the same candidate.
const minAccountColumn = 2

// defaultWidth is used when the terminal width can't be determined (not a
// TTY, e.g. piped output or tests).
const defaultWidth = 80

// RenderTable renders one candidate's merged transaction as an aligned
// posting table, truncated to width. Every amount starts in the same
// column, just past the widest account name, using display width
// (go-runewidth) rather than byte length so multi-byte account names
// still line up.
func RenderTable(candidate extend.Result, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	txn := candidate.Merged
	var b strings.Builder

	header := fmt.Sprintf("%s %s", txn.Date.String(), txn.Payee)
	if txn.Narration != "" {
		header += " | " + txn.Narration
	}
	b.WriteString(wrap(header, width))
	b.WriteString("\n")

	accountCol := 0
	for _, p := range txn.Postings {
		if w := runewidth.StringWidth(p.Account); w > accountCol {
			accountCol = w
		}
	}

	for _, p := range txn.Postings {
		line := renderPostingLine(p, accountCol)
		b.WriteString(wrap(line, width))
		b.WriteString("\n")
	}

	return b.String()
}

func renderPostingLine(p *posting.Posting, accountCol int) string {
	pad := accountCol - runewidth.StringWidth(p.Account) + minAccountColumn
	if pad < minAccountColumn {
		pad = minAccountColumn
	}

	amount := p.Units.String()
	marker := " "
	line := fmt.Sprintf("  %s %s%s%s", marker, p.Account, strings.Repeat(" ", pad), amount)
	if p.Cleared {
		line = fmt.Sprintf("  %s %s%s%s", "*", p.Account, strings.Repeat(" ", pad), amount)
		return clearedStyle.Render(line)
	}
	return line
}

// wrap truncates lines wider than width's display width, leaving an
// ellipsis; the terminal rarely needs full reflow for single posting
// lines, only a guard against overflow on a narrow pane.
func wrap(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width-1, "…")
}

// terminalWidth reports the current terminal's column width, or
// defaultWidth if stdout isn't a terminal.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}
