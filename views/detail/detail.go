package detail

import (
	"fmt"
	"math/big"
	"strings"

	"base-nft-tui/helpers"
	"base-nft-tui/nft"
	"base-nft-tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Props is everything the detail view needs to render
type Props struct {
	NFT          nft.NFT
	Stats        *nft.CollectionStats
	StatsLoading bool
	StatsErr     string
	Sales        []nft.Sale
	SalesLoading bool
	SalesErr     string
	Hidden       bool
	OwnerOnChain string
	CopiedMsg    string
	SpinnerView  string
}

// Nav returns the navigation bar for the detail view
func Nav(width int) string {
	left := strings.Join([]string{
		styles.Key("s") + " send",
		styles.Key("c") + " copy contract",
		styles.Key("x") + " hide/unhide",
		styles.Key("r") + " refresh",
		styles.Key("l") + " debug log",
		styles.Key("Esc") + " back",
	}, "   ")

	return styles.NavStyle.Width(width).Render(left)
}

func label(s string) string {
	return lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true).Width(14).Render(s)
}

func optional(s *string) string {
	if s == nil || *s == "" {
		return "—"
	}
	return *s
}

// weiToETH renders a wei amount string as ETH
func weiToETH(amount string) string {
	wei, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return amount
	}
	return helpers.FormatETH(wei)
}

// Render renders the NFT detail view
func Render(p Props) string {
	n := p.NFT
	h := styles.TitleStyle.Render(n.Title())

	basescan := fmt.Sprintf("https://basescan.org/token/%s?a=%s", n.Contract, n.TokenID)
	linkStyle := lipgloss.NewStyle().Foreground(styles.CMuted).Underline(true)
	// OSC 8 hyperlink
	sub := fmt.Sprintf("\x1b]8;;%s\x1b\\%s\x1b]8;;\x1b\\", basescan, linkStyle.Render(n.Contract+" #"+n.TokenID))
	if p.Hidden {
		sub += "  " + lipgloss.NewStyle().Foreground(styles.CWarn).Render("hidden")
	}
	if p.CopiedMsg != "" {
		sub += "  " + lipgloss.NewStyle().Foreground(styles.CAccent).Render(p.CopiedMsg)
	}

	lines := []string{h, sub, ""}
	lines = append(lines, label("Collection")+n.Collection)
	if n.TokenType != "" {
		lines = append(lines, label("Standard")+n.TokenType)
	}
	if p.OwnerOnChain != "" {
		lines = append(lines, label("Owner")+p.OwnerOnChain)
	}
	if n.Image != "" {
		lines = append(lines, label("Image")+helpers.Truncate(n.Image, 60))
	}
	if n.Description != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(styles.CText).Width(80).Render(n.Description))
	}

	lines = append(lines, "", styles.TitleStyle.Render("Collection stats"))
	switch {
	case p.StatsLoading:
		lines = append(lines, p.SpinnerView+" loading…")
	case p.StatsErr != "":
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.CWarn).Render("⚠ "+p.StatsErr))
	case p.Stats != nil:
		lines = append(lines,
			label("Floor")+helpers.FormatPrice(p.Stats.Floor),
			label("Top offer")+helpers.FormatPrice(p.Stats.TopOffer),
			label("Supply")+optional(p.Stats.Supply),
		)
		if d := optional(p.Stats.Description); d != "—" && d != n.Description {
			lines = append(lines, "", styles.MutedStyle.Width(80).Render(helpers.Truncate(d, 240)))
		}
	default:
		lines = append(lines, label("Floor")+helpers.FormatPrice(n.FloorPrice))
	}

	lines = append(lines, "", styles.TitleStyle.Render("Sales history"))
	switch {
	case p.SalesLoading:
		lines = append(lines, p.SpinnerView+" loading…")
	case p.SalesErr != "":
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.CWarn).Render("⚠ "+p.SalesErr))
	case len(p.Sales) == 0:
		lines = append(lines, styles.MutedStyle.Render("No sales recorded."))
	default:
		for i, s := range p.Sales {
			if i == 8 {
				lines = append(lines, styles.MutedStyle.Render(fmt.Sprintf("… %d more", len(p.Sales)-i)))
				break
			}
			when := "unknown date"
			if !s.Timestamp.IsZero() {
				when = s.Timestamp.Format("2006-01-02")
			}
			lines = append(lines, fmt.Sprintf("%s  %-14s  %s → %s",
				styles.MutedStyle.Render(when),
				weiToETH(s.Price),
				helpers.ShortenAddr(s.Seller),
				helpers.ShortenAddr(s.Buyer),
			))
		}
	}

	return strings.Join(lines, "\n")
}
