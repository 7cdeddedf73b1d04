// Package review implements the host-facing presentation of ranked
// extender candidates: a table of postings per candidate and a
// accept/edit/skip prompt, in the terminal style the rest of the tool
// uses (spec.md §6: "Review surfaces ranked candidates to a human and
// lets them accept, edit, or skip each one").
package review

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ledgerkit/reconcile/extend"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	clearedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
)

// Decision is the outcome of reviewing one candidate.
type Decision int

const (
	Skip Decision = iota
	Accept
	Edit
)

// Prompt presents one ranked candidate and asks the reviewer what to do
// with it. Returns Skip by default when stdin is not a terminal, matching
// the CLI's non-interactive fallback convention.
func Prompt(w io.Writer, candidate extend.Result, rank, total int) (Decision, error) {
	_, _ = fmt.Fprintf(w, "%s\n", headerStyle.Render(fmt.Sprintf("Candidate %d/%d", rank, total)))
	_, _ = fmt.Fprint(w, RenderTable(candidate, terminalWidth()))

	if !isTerminal() {
		return Skip, nil
	}

	var choice string
	form := huh.NewSelect[string]().
		Title("What would you like to do?").
		Options(
			huh.NewOption("Accept", "accept"),
			huh.NewOption("Edit", "edit"),
			huh.NewOption("Skip", "skip"),
		).
		Value(&choice)

	if err := form.Run(); err != nil {
		return Skip, fmt.Errorf("failed to read response: %w", err)
	}

	switch choice {
	case "accept":
		return Accept, nil
	case "edit":
		return Edit, nil
	default:
		return Skip, nil
	}
}

func isTerminal() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
