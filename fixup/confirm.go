package fixup

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Confirmer decides whether a proposed correction should be applied.
type Confirmer interface {
	Confirm(d Discrepancy) (bool, error)
}

// AutoConfirm approves every correction. Used by the --auto-confirm flag and
// by non-interactive callers.
type AutoConfirm struct{}

func (AutoConfirm) Confirm(Discrepancy) (bool, error) { return true, nil }

// Prompt asks the user interactively before each correction. When stdin is
// not a terminal it declines, so a scripted run never blocks.
type Prompt struct{}

func (Prompt) Confirm(d Discrepancy) (bool, error) {
	if !isTerminal() {
		return false, nil
	}

	var confirm bool
	form := huh.NewConfirm().
		Title(fmt.Sprintf("Insert correction of %+.2f on %s?", -d.Delta, d.PreviousDate)).
		Description(d.String()).
		WithButtonAlignment(lipgloss.Left).
		Value(&confirm)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	return confirm, nil
}

func isTerminal() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
