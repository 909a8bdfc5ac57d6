package home

import (
	"fmt"
	"strings"

	"base-nft-tui/styles"

	"github.com/charmbracelet/huh"
)

// Menu choices
const (
	ChoiceGallery  = "gallery"
	ChoiceSend     = "send"
	ChoiceSettings = "settings"
	ChoiceQuit     = "quit"
)

// TempSelection stores the home menu selection
var TempSelection string

// Summary is what the menu knows about the session
type Summary struct {
	Owned    int
	Selected int
	Hidden   int
	Wallet   string
}

// CreateForm builds the menu. Sending is offered only when there is
// something to send.
func CreateForm(s Summary) *huh.Form {
	TempSelection = ""

	options := []huh.Option[string]{
		huh.NewOption(fmt.Sprintf("NFT Gallery (%d)", s.Owned), ChoiceGallery),
	}
	if s.Selected > 0 {
		label := "Send 1 NFT"
		if s.Selected > 1 {
			label = fmt.Sprintf("Send %d NFTs", s.Selected)
		}
		options = append(options, huh.NewOption(label, ChoiceSend))
	}
	options = append(options,
		huh.NewOption("RPC & Wallet Settings", ChoiceSettings),
		huh.NewOption("Quit", ChoiceQuit),
	)

	desc := "No wallet connected"
	if s.Wallet != "" {
		desc = "Signing with " + s.Wallet
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Options(options...).
				Title("Base NFTs").
				Description(desc).
				Value(&TempSelection),
		),
	).WithTheme(huh.ThemeCatppuccin())

	form.Init()
	return form
}

// Render renders the menu with a one-line session summary above it
func Render(form *huh.Form, s Summary) string {
	if form == nil {
		return "Loading menu..."
	}
	line := fmt.Sprintf("%d owned", s.Owned)
	if s.Hidden > 0 {
		line += fmt.Sprintf(" · %d hidden", s.Hidden)
	}
	return styles.MutedStyle.Render(line) + "\n\n" + form.View()
}

// Nav returns the navigation bar for home view
func Nav(width int) string {
	left := strings.Join([]string{
		styles.Key("↑/↓") + " select",
		styles.Key("Enter") + " go",
		styles.Key("Esc") + " back",
	}, "   ")

	return styles.NavStyle.Width(width).Render(left)
}
