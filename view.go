package main

import (
	"fmt"
	"strings"
	"time"

	"base-nft-tui/config"
	"base-nft-tui/helpers"
	"base-nft-tui/styles"
	"base-nft-tui/transfer"
	"base-nft-tui/views/detail"
	"base-nft-tui/views/gallery"
	"base-nft-tui/views/home"
	logview "base-nft-tui/views/log"
	"base-nft-tui/views/send"
	"base-nft-tui/views/settings"
	"base-nft-tui/wallet"

	"github.com/charmbracelet/lipgloss"
)

// -------------------- VIEW --------------------

func (m *model) globalHeader() string {
	availableWidth := max(0, m.w-8) // Account for panel padding

	// Owner address and balance
	var addrDisplay string
	if m.owner != "" {
		addrDisplay = lipgloss.NewStyle().
			Foreground(cAccent2).
			Bold(true).
			Render("Owner: " + helpers.FadeString(helpers.ShortenAddr(m.owner), "#0052FF", "#82CFFD"))
		if m.balanceLoaded && m.balance.ErrMessage == "" {
			addrDisplay += lipgloss.NewStyle().Foreground(cMuted).Render("  " + m.balanceLine())
		} else if !m.balanceLoaded && m.ethClient != nil {
			addrDisplay += lipgloss.NewStyle().Foreground(cMuted).Render("  " + helpers.LoadedAt(time.Time{}, true))
		}
	} else {
		addrDisplay = lipgloss.NewStyle().
			Foreground(cMuted).
			Render("Owner: not set")
	}

	// RPC Status with green dot
	var statusIcon string
	var statusColor lipgloss.Color
	var statusText string

	if m.rpcURL == "" {
		statusIcon = "○"
		statusColor = lipgloss.Color("#c01c28")
		statusText = "No RPC"
	} else if m.rpcConnecting {
		statusIcon = "○"
		statusColor = lipgloss.Color("#c01c28")
		statusText = "Connecting..."
	} else if !m.rpcConnected {
		statusIcon = "○"
		statusColor = lipgloss.Color("#c01c28")
		statusText = "Connection Failed"
	} else if !m.ethClient.IsChain(m.cfg.ChainID) {
		statusIcon = "●"
		statusColor = cWarn
		statusText = fmt.Sprintf("Wrong chain (%v)", m.ethClient.ChainID)
	} else {
		statusIcon = "●"
		statusColor = cAccent
		// Find active RPC name
		for _, r := range m.cfg.RPCURLs {
			if r.Active && r.URL == m.rpcURL {
				statusText = r.Name
				break
			}
		}
		if statusText == "" {
			statusText = "Connected"
		}
	}

	rpcDisplay := lipgloss.NewStyle().
		Foreground(statusColor).
		Bold(true).
		Render(statusIcon + " " + statusText)

	// Center title
	titleStyle := lipgloss.NewStyle().
		Foreground(cAccent).
		Bold(true)
	titleText := titleStyle.Render(helpers.FadeString("base nft", "#578BFA", "#7EE787"))

	// Calculate widths
	addrWidth := lipgloss.Width(addrDisplay)
	rpcWidth := lipgloss.Width(rpcDisplay)
	titleWidth := lipgloss.Width(titleText)

	// Calculate spacing to center the title
	totalOtherWidth := addrWidth + rpcWidth + titleWidth

	var headerLine string
	if totalOtherWidth+4 > availableWidth {
		// Not enough space, stack vertically
		headerLine = addrDisplay + "\n" + titleText + "\n" + rpcDisplay
	} else {
		// Three-column layout: Address | Title (centered) | RPC
		remainingSpace := availableWidth - totalOtherWidth
		leftPadding := remainingSpace / 2
		rightPadding := remainingSpace - leftPadding

		leftSpacer := strings.Repeat(" ", max(1, leftPadding))
		rightSpacer := strings.Repeat(" ", max(1, rightPadding))

		headerLine = addrDisplay + leftSpacer + titleText + rightSpacer + rpcDisplay
	}

	// Add separator line
	separator := lipgloss.NewStyle().
		Foreground(cBorder).
		Render(strings.Repeat("─", availableWidth))

	return headerLine + "\n" + separator
}

// balanceLine is the owner's balance and the time it was read
func (m *model) balanceLine() string {
	return helpers.FormatETH(m.balance.Wei) + " · " + helpers.LoadedAt(m.balance.LoadedAt, false)
}

// galleryRows is how many list rows fit between header, nav and log panel
func (m *model) galleryRows() int {
	rows := m.h - 18
	if m.filtering || m.filterInput.Value() != "" {
		rows--
	}
	if m.logEnabled {
		rows -= logview.PanelHeight(m.h) + 4
	}
	return max(3, rows)
}

func (m *model) settingsStatus() settings.Status {
	st := settings.Status{
		WalletMode: m.cfg.Wallet.Mode,
		WalletErr:  m.walletErr,
		Owner:      m.owner,
		ChainOK:    m.rpcConnected && m.ethClient.IsChain(m.cfg.ChainID),
		HasNeynar:  m.cfg.Secrets.NeynarAPIKey != "",
		HasAlchemy: m.cfg.Secrets.AlchemyAPIKey != "",
		ConfigPath: m.configPath,
	}
	if m.provider != nil {
		st.WalletName = m.provider.Name()
		st.Capabilities = wallet.Capabilities(m.provider)
	} else if m.walletOpening {
		st.WalletName = "connecting…"
	}
	return st
}

func (m *model) sendView() string {
	if m.flow == nil {
		return ""
	}
	switch m.flow.State {
	case transfer.CollectingRecipient:
		return send.RenderRecipient(m.flow.Items, m.recipientInput.View(), m.candidates, m.candCursor, m.searching, m.spin.View(), m.sendErr)
	case transfer.ConfirmingSend:
		formView := ""
		if m.confirmForm != nil {
			formView = m.confirmForm.View()
		}
		strategy := m.strategy()
		if strategy == "" {
			strategy = lipgloss.NewStyle().Foreground(cWarn).Render("no wallet connected")
		}
		return send.RenderConfirm(m.flow.Items, *m.flow.Target, strategy, formView)
	case transfer.Sending:
		return send.RenderSending(m.flow.Items, *m.flow.Target, m.spin.View())
	case transfer.Complete:
		return send.RenderComplete(*m.flow.Result, *m.flow.Target, m.copiedMsg)
	default:
		return send.RenderFailed(*m.flow.Result, *m.flow.Target)
	}
}

func (m *model) View() string {
	// Render global header outside of page content
	globalHdr := m.globalHeader()
	headerPanel := panelStyle.Width(max(0, m.w-2)).Render(globalHdr)

	var pageContent string
	var nav string

	switch m.activePage {
	case config.PageHome:
		pageContent = panelStyle.Width(max(0, m.w-2)).Render(home.Render(m.homeForm, m.homeSummary(0)))
		nav = home.Nav(m.w - 2)

	case config.PageGallery:
		galleryContent := gallery.Render(gallery.Props{
			NFTs:        m.visibleNFTs(),
			Cursor:      m.cursor,
			Selected:    m.selected,
			Hidden:      m.cfg.IsHidden,
			TotalOwned:  len(m.nfts),
			ShowHidden:  m.showHidden,
			Loading:     m.galleryLoading,
			SpinnerView: m.spin.View(),
			Err:         m.galleryErr,
			FilterView:  m.filterView(),
			Filtering:   m.filtering,
			Height:      m.galleryRows(),
		})
		if m.owner == "" && !m.galleryLoading {
			galleryContent += "\n\n" + styles.MutedStyle.Render("No owner address. Start with --owner 0x… or configure a wallet in settings (")+styles.Key("o")+styles.MutedStyle.Render(").")
		}
		pageContent = panelStyle.Width(max(0, m.w-2)).Render(galleryContent)
		nav = gallery.Nav(m.w-2, m.filtering)

	case config.PageDetail:
		if m.detail == nil {
			pageContent = panelStyle.Width(max(0, m.w-2)).Render(styles.MutedStyle.Render("Nothing selected."))
			break
		}
		detailContent := detail.Render(detail.Props{
			NFT:          *m.detail,
			Stats:        m.stats,
			StatsLoading: m.statsLoading,
			StatsErr:     m.statsErr,
			Sales:        m.sales,
			SalesLoading: m.salesLoading,
			SalesErr:     m.salesErr,
			Hidden:       m.cfg.IsHidden(m.detail.ID()),
			OwnerOnChain: m.ownerOnChain,
			CopiedMsg:    m.copiedMsg,
			SpinnerView:  m.spin.View(),
		})
		pageContent = panelStyle.Width(max(0, m.w-2)).Render(detailContent)
		nav = detail.Nav(m.w - 2)

	case config.PageSend:
		sendPanel := panelStyle
		if m.flow != nil {
			switch m.flow.State {
			case transfer.Complete:
				sendPanel = sendPanel.BorderForeground(cAccent)
			case transfer.Failed:
				sendPanel = sendPanel.BorderForeground(cError)
			default:
				sendPanel = sendPanel.BorderForeground(cAccent2)
			}
			nav = send.Nav(m.w-2, m.flow.State)
		}
		pageContent = sendPanel.Width(max(0, m.w-2)).Render(m.sendView())

	case config.PageSettings:
		settingsContent := settings.Render(m.cfg.RPCURLs, m.selectedRPCIdx, m.settingsStatus())

		// Show form if in add mode
		if m.settingsMode == "add" && m.form != nil {
			settingsContent = styles.TitleStyle.Render("RPC Settings") + "\n\n" + m.form.View()
		}

		pageContent = panelStyle.Width(max(0, m.w-2)).Render(settingsContent)
		nav = settings.Nav(m.w-2, m.settingsMode)
	}

	// Render log panel only if enabled
	if m.logEnabled {
		// Ensure viewport height stays in sync with the rendered panel
		m.logViewport.Height = logview.PanelHeight(m.h)
		logPanel := logview.Render(m.w, m.logReady, m.logSpinner.View(), m.logViewport)
		content := lipgloss.JoinVertical(lipgloss.Left, headerPanel, pageContent, nav, logPanel)
		return appStyle.Render(content)
	}

	// Use lipgloss to join sections vertically (without log panel)
	content := lipgloss.JoinVertical(lipgloss.Left, headerPanel, pageContent, nav)
	return appStyle.Render(content)
}

func (m *model) filterView() string {
	if !m.filtering && m.filterInput.Value() == "" {
		return ""
	}
	return m.filterInput.View()
}
