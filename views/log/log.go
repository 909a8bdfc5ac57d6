package log

import (
	"fmt"

	"base-nft-tui/helpers"
	"base-nft-tui/styles"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// PanelHeight is the number of log lines shown for a terminal of the given
// height: at most a third of the screen and never more than 15 lines
func PanelHeight(termHeight int) int {
	// header (3 lines), nav (1 line), title + borders (4 lines), margins (2 lines)
	const reservedHeight = 10
	availableHeight := helpers.Max(5, termHeight-reservedHeight)
	return helpers.Min(availableHeight, helpers.Min(termHeight/3, 15))
}

// Render renders the log panel. vp must already be sized with PanelHeight.
func Render(width int, logReady bool, logSpinnerView string, vp viewport.Model) string {
	title := lipgloss.NewStyle().
		Foreground(styles.CAccent2).
		Bold(true).
		Render("Log")

	border := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.CBorder).
		Padding(0, 1).
		Width(helpers.Max(0, width-2)).
		Height(vp.Height + 2) // +2 for title and spacing

	if !logReady {
		return border.Render(title + "\n\n" + "initializing...\n" + logSpinnerView)
	}

	if vp.TotalLineCount() > vp.Height {
		title += styles.MutedStyle.Render(fmt.Sprintf(" [%d%%]  pgup/pgdn to scroll", int(vp.ScrollPercent()*100)))
	}

	return border.Render(title + "\n\n" + vp.View())
}
