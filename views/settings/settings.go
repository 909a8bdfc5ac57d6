package settings

import (
	"strings"

	"base-nft-tui/config"
	"base-nft-tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Status summarises what is wired besides the RPC list
type Status struct {
	WalletMode   string
	WalletName   string
	Capabilities []string
	WalletErr    string
	Owner        string
	ChainOK      bool
	HasNeynar    bool
	HasAlchemy   bool
	ConfigPath   string
}

// Nav returns the navigation bar for settings view
func Nav(width int, settingsMode string) string {
	var left string
	if settingsMode == "add" {
		left = strings.Join([]string{
			styles.Key("Enter") + " next/save",
			styles.Key("Esc") + " cancel",
		}, "   ")
	} else {
		left = strings.Join([]string{
			styles.Key("↑/↓") + " select",
			styles.Key("Enter") + " activate",
			styles.Key("a") + " add",
			styles.Key("w") + " reconnect wallet",
			styles.Key("g") + " gallery",
			styles.Key("h") + " home",
			styles.Key("l") + " debug log",
			styles.Key("Esc") + " back",
		}, "   ")
	}

	return styles.NavStyle.Width(width).Render(left)
}

func check(ok bool) string {
	if ok {
		return lipgloss.NewStyle().Foreground(styles.CAccent).Render("✓")
	}
	return lipgloss.NewStyle().Foreground(styles.CWarn).Render("✗")
}

// Render renders the settings view
func Render(rpcURLs []config.RPCUrl, selectedIdx int, st Status) string {
	lines := []string{styles.TitleStyle.Render("RPC Endpoints"), ""}

	if len(rpcURLs) == 0 {
		lines = append(lines, styles.MutedStyle.Render("No RPC URLs configured."))
		lines = append(lines, "")
		lines = append(lines, styles.MutedStyle.Render("Press ")+styles.Key("a")+styles.MutedStyle.Render(" to add your first RPC URL."))
	}

	for i, rpc := range rpcURLs {
		var marker string
		if rpc.Active {
			marker = lipgloss.NewStyle().Foreground(styles.CAccent).Render("● ")
		} else {
			marker = styles.MutedStyle.Render("○ ")
		}

		nameStyle := lipgloss.NewStyle().Foreground(styles.CText)
		urlStyle := styles.MutedStyle

		if i == selectedIdx {
			nameStyle = nameStyle.Background(styles.CPanel).Foreground(styles.CAccent2).Bold(true)
			urlStyle = urlStyle.Background(styles.CPanel)
			marker = styles.Marker(true)
		}

		lines = append(lines, marker+nameStyle.Render(rpc.Name))
		lines = append(lines, "  "+urlStyle.Render(rpc.URL))
		lines = append(lines, "")
	}

	lines = append(lines, styles.TitleStyle.Render("Wallet"), "")
	mode := st.WalletMode
	if mode == "" {
		mode = config.WalletModeNone
	}
	lines = append(lines, "  mode      "+mode)
	if st.WalletName != "" {
		lines = append(lines, "  provider  "+st.WalletName)
	}
	if len(st.Capabilities) > 0 {
		lines = append(lines, "  supports  "+strings.Join(st.Capabilities, ", "))
	}
	if st.WalletErr != "" {
		lines = append(lines, "  "+lipgloss.NewStyle().Foreground(styles.CWarn).Render("⚠ "+st.WalletErr))
	}
	owner := st.Owner
	if owner == "" {
		owner = styles.MutedStyle.Render("not set (use --owner or a wallet that exposes an account)")
	}
	lines = append(lines, "  owner     "+owner, "")

	lines = append(lines, styles.TitleStyle.Render("Providers"), "")
	lines = append(lines,
		"  "+check(st.ChainOK)+" Base mainnet RPC",
		"  "+check(st.HasNeynar)+" NEYNAR_API_KEY",
		"  "+check(st.HasAlchemy)+" ALCHEMY_API_KEY",
	)
	if st.ConfigPath != "" {
		lines = append(lines, "", styles.MutedStyle.Render("config: "+st.ConfigPath))
	}

	return strings.Join(lines, "\n")
}
