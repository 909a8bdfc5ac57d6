package gallery

import (
	"fmt"
	"strings"

	"base-nft-tui/helpers"
	"base-nft-tui/nft"
	"base-nft-tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Props is everything the gallery needs to render
type Props struct {
	NFTs        []nft.NFT
	Cursor      int
	Selected    map[string]bool
	Hidden      func(id string) bool
	TotalOwned  int
	ShowHidden  bool
	Loading     bool
	SpinnerView string
	Err         string
	FilterView  string
	Filtering   bool
	Height      int
}

// Nav returns the navigation bar for the gallery
func Nav(width int, filtering bool) string {
	var left string
	if filtering {
		left = strings.Join([]string{
			styles.Key("Enter") + " apply",
			styles.Key("Esc") + " clear filter",
		}, "   ")
	} else {
		left = strings.Join([]string{
			styles.Key("↑/↓") + " move",
			styles.Key("Space") + " select",
			styles.Key("Enter") + " details",
			styles.Key("s") + " send",
			styles.Key("/") + " filter",
			styles.Key("x") + " hide",
			styles.Key("H") + " show hidden",
			styles.Key("r") + " reload",
			styles.Key("o") + " settings",
			styles.Key("h") + " home",
			styles.Key("l") + " debug log",
			styles.Key("q") + " quit",
		}, "   ")
	}

	return styles.NavStyle.Width(width).Render(left)
}

// Window returns the first and last index to draw so the cursor stays visible
func Window(total, cursor, rows int) (int, int) {
	if rows <= 0 || total <= rows {
		return 0, total
	}
	start := cursor - rows/2
	start = helpers.Max(0, helpers.Min(start, total-rows))
	return start, start + rows
}

// Render renders the gallery list
func Render(p Props) string {
	h := styles.TitleStyle.Render("Your NFTs on Base")

	selectedCount := 0
	for _, v := range p.Selected {
		if v {
			selectedCount++
		}
	}
	sub := styles.MutedStyle.Render(fmt.Sprintf("%d shown • %d owned • %d selected", len(p.NFTs), p.TotalOwned, selectedCount))
	if p.ShowHidden {
		sub += "  " + lipgloss.NewStyle().Foreground(styles.CWarn).Render("(showing hidden)")
	}

	lines := []string{h, sub}
	if p.FilterView != "" || p.Filtering {
		lines = append(lines, p.FilterView)
	}
	lines = append(lines, "")

	switch {
	case p.Loading:
		lines = append(lines, p.SpinnerView+" loading NFTs…")
		return strings.Join(lines, "\n")
	case p.Err != "":
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.CWarn).Render("⚠ "+p.Err))
		lines = append(lines, "", styles.MutedStyle.Render("Press ")+styles.Key("r")+styles.MutedStyle.Render(" to retry."))
		return strings.Join(lines, "\n")
	case len(p.NFTs) == 0:
		lines = append(lines, styles.MutedStyle.Render("No NFTs found."))
		return strings.Join(lines, "\n")
	}

	rows := p.Height
	if rows <= 0 {
		rows = 12
	}
	start, end := Window(len(p.NFTs), p.Cursor, rows)
	for i := start; i < end; i++ {
		n := p.NFTs[i]
		check := "[ ]"
		if p.Selected[n.ID()] {
			check = lipgloss.NewStyle().Foreground(styles.CAccent).Render("[✓]")
		}

		title := helpers.Truncate(n.Title(), 36)
		meta := styles.MutedStyle.Render(helpers.Truncate(n.Collection, 28) + " • " + helpers.FormatPrice(n.FloorPrice))
		if p.Hidden != nil && p.Hidden(n.ID()) {
			meta += lipgloss.NewStyle().Foreground(styles.CWarn).Render("  hidden")
		}

		if i == p.Cursor {
			title = styles.SelectedStyle.Render(title)
		} else {
			title = lipgloss.NewStyle().Foreground(styles.CText).Render(title)
		}
		lines = append(lines, fmt.Sprintf("%s%s %s  %s", styles.Marker(i == p.Cursor), check, title, meta))
	}
	if end < len(p.NFTs) || start > 0 {
		lines = append(lines, "", styles.MutedStyle.Render(fmt.Sprintf("%d–%d of %d", start+1, end, len(p.NFTs))))
	}

	return strings.Join(lines, "\n")
}
