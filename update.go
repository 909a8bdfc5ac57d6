package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"base-nft-tui/config"
	"base-nft-tui/directory"
	"base-nft-tui/helpers"
	"base-nft-tui/nft"
	"base-nft-tui/transfer"
	"base-nft-tui/views/home"
	"base-nft-tui/views/send"
	"base-nft-tui/wallet"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// -------------------- TEMP FORM STORAGE --------------------
// Temporary form field storage (package-level to avoid pointer-to-copy issues)
var (
	tempRPCFormName string
	tempRPCFormURL  string
	tempConfirmSend bool
)

func (m *model) createAddRPCForm() {
	tempRPCFormName = ""
	tempRPCFormURL = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("RPC Name").
				Description("A friendly name for this RPC endpoint").
				Value(&tempRPCFormName).
				Placeholder("My Base Node"),

			huh.NewInput().
				Title("RPC URL").
				Description("The complete RPC URL (https://...)").
				Value(&tempRPCFormURL).
				Placeholder("https://mainnet.base.org").
				Validate(func(s string) error {
					if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") &&
						!strings.HasPrefix(s, "ws://") && !strings.HasPrefix(s, "wss://") {
						return fmt.Errorf("url must start with http(s):// or ws(s)://")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeCatppuccin())

	// Initialize the form
	m.form.Init()
}

func (m *model) createConfirmForm() {
	tempConfirmSend = true

	title := fmt.Sprintf("Send %d NFTs to %s?", len(m.flow.Items), m.flow.Target.Label())
	if len(m.flow.Items) == 1 {
		title = fmt.Sprintf("Send %s to %s?", helpers.Truncate(m.flow.Items[0].Label(), 32), m.flow.Target.Label())
	}

	m.confirmForm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description("This cannot be undone.").
				Affirmative("Send").
				Negative("Back").
				Value(&tempConfirmSend),
		),
	).WithTheme(huh.ThemeCatppuccin())

	// Initialize the form
	m.confirmForm.Init()
}

// -------------------- UPDATE --------------------

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	// library loggers write from command goroutines
	m.updateLogViewport()
	return next, cmd
}

// update routes messages through an active form first. Keys stop at the
// form; everything else is also handled by the main switch.
func (m *model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var formCmd tea.Cmd
	_, isKey := msg.(tea.KeyMsg)

	// Handle send confirmation first
	if m.activePage == config.PageSend && m.flow != nil && m.flow.State == transfer.ConfirmingSend && m.confirmForm != nil {
		// Intercept ESC key to go back to recipient entry
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
			return m, m.backToRecipient()
		}

		form, cmd := m.confirmForm.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.confirmForm = f

			// Check if form is completed
			if m.confirmForm.State == huh.StateCompleted {
				m.confirmForm = nil
				if !tempConfirmSend {
					return m, m.backToRecipient()
				}
				return m, m.startSubmit()
			}

			// Check if form was aborted (ESC pressed)
			if m.confirmForm.State == huh.StateAborted {
				return m, m.backToRecipient()
			}
		}
		if isKey {
			return m, cmd
		}
		formCmd = cmd
	}

	if m.activePage == config.PageHome && m.homeForm != nil {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.homeForm = nil
				m.activePage = config.PageGallery
				return m, nil
			case "ctrl+c":
				return m, m.quit()
			}
		}

		form, cmd := m.homeForm.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.homeForm = f

			if m.homeForm.State == huh.StateCompleted {
				m.homeForm = nil
				return m, m.navigateHome(home.TempSelection)
			}
			if m.homeForm.State == huh.StateAborted {
				m.homeForm = nil
				m.activePage = config.PageGallery
				return m, nil
			}
		}
		if isKey {
			return m, cmd
		}
		formCmd = tea.Batch(formCmd, cmd)
	}

	if m.activePage == config.PageSettings && m.settingsMode == "add" && m.form != nil {
		// Intercept ESC key to cancel form
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
			m.settingsMode = "list"
			m.form = nil
			return m, nil
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f

			// Check if form is completed
			if m.form.State == huh.StateCompleted {
				if tempRPCFormName != "" && tempRPCFormURL != "" {
					newRPC := config.RPCUrl{Name: tempRPCFormName, URL: tempRPCFormURL, Active: false}
					m.cfg.RPCURLs = append(m.cfg.RPCURLs, newRPC)
					m.saveConfig()
					m.addLog("success", fmt.Sprintf("Added RPC endpoint: `%s` (%s)", tempRPCFormName, tempRPCFormURL))
				}
				m.settingsMode = "list"
				m.form = nil
				// Return without the form's cmd to ensure we're back in list mode
				return m, nil
			}

			// Check if form was aborted (ESC pressed)
			if m.form.State == huh.StateAborted {
				m.settingsMode = "list"
				m.form = nil
				return m, nil
			}
		}
		if isKey {
			return m, cmd
		}
		formCmd = tea.Batch(formCmd, cmd)
	}

	next, cmd := m.handleMsg(msg)
	return next, tea.Batch(formCmd, cmd)
}

func (m *model) handleMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case logInitMsg:
		if !m.logEnabled {
			return m, nil
		}
		m.logReady = true
		m.logLen = -1
		m.addLog("info", "Logger enabled")
		return m, nil

	case rpcConnectedMsg:
		m.rpcConnecting = false
		if msg.err != nil {
			// Connection failed
			m.ethClient = nil
			m.rpcConnected = false
			m.addLog("error", fmt.Sprintf("RPC connection failed: `%s`", msg.err.Error()))
			return m, nil
		}

		// Connection successful
		m.ethClient = msg.client
		m.rpcConnected = true
		m.addLog("success", fmt.Sprintf("RPC connected to `%s`", msg.client.URL))
		if !msg.client.IsChain(m.cfg.ChainID) {
			m.addLog("warning", fmt.Sprintf("RPC is on chain %v, expected %d", msg.client.ChainID, m.cfg.ChainID))
		}

		cmds := []tea.Cmd{m.loadBalanceCmd()}
		if m.cfg.Wallet.Mode == config.WalletModeKey && m.provider == nil && !m.walletOpening {
			cmds = append(cmds, m.openWalletCmd())
		}
		return m, tea.Batch(cmds...)

	case balanceLoadedMsg:
		if !m.isOwner(msg.b.Address) {
			return m, nil
		}
		m.balance = msg.b
		m.balanceLoaded = true
		if msg.b.ErrMessage != "" {
			m.addLog("error", fmt.Sprintf("Balance of `%s`: %s", helpers.ShortenAddr(msg.b.Address), msg.b.ErrMessage))
		} else {
			m.addLog("debug", fmt.Sprintf("Balance of `%s`: %s", helpers.ShortenAddr(msg.b.Address), helpers.FormatETH(msg.b.Wei)))
		}
		return m, nil

	case walletOpenedMsg:
		m.walletOpening = false
		if msg.err != nil {
			m.provider = nil
			m.walletErr = msg.err.Error()
			m.addLog("error", "Wallet unavailable: "+msg.err.Error())
			return m, nil
		}
		if msg.provider == nil {
			m.addLog("info", "No wallet configured")
			return m, nil
		}

		m.provider = msg.provider
		m.walletErr = ""
		m.addLog("success", fmt.Sprintf("Wallet `%s` ready (%s)", msg.provider.Name(), strings.Join(wallet.Capabilities(msg.provider), ", ")))

		if msg.from == "" {
			return m, nil
		}
		if m.owner == "" {
			m.owner = msg.from
			m.addLog("info", fmt.Sprintf("Showing NFTs of wallet account `%s`", helpers.ShortenAddr(msg.from)))
			return m, tea.Batch(m.loadGalleryCmd(), m.loadBalanceCmd())
		}
		if !m.isOwner(msg.from) {
			m.addLog("warning", fmt.Sprintf("Wallet account `%s` is not the owner `%s`; transfers are sent from the wallet account", helpers.ShortenAddr(msg.from), helpers.ShortenAddr(m.owner)))
		}
		return m, nil

	case nftsLoadedMsg:
		if msg.owner != m.owner {
			return m, nil
		}
		m.galleryLoading = false
		if msg.err != nil {
			m.galleryErr = msg.err.Error()
			m.addLog("error", "Failed to load NFTs: "+msg.err.Error())
			return m, nil
		}
		m.galleryErr = ""
		m.nfts = msg.nfts

		// drop selections of tokens that are no longer owned
		owned := make(map[string]bool, len(m.nfts))
		for _, n := range m.nfts {
			owned[n.ID()] = true
		}
		for id := range m.selected {
			if !owned[id] {
				delete(m.selected, id)
			}
		}
		m.clampCursor()
		m.addLog("success", fmt.Sprintf("Loaded %d NFTs for `%s`", len(m.nfts), helpers.ShortenAddr(m.owner)))
		return m, nil

	case collectionLoadedMsg:
		if m.detail == nil || !strings.EqualFold(m.detail.Contract, msg.contract) {
			return m, nil
		}
		m.statsLoading = false
		switch {
		case errors.Is(msg.err, nft.ErrCollectionNotFound):
			m.statsErr = "Collection is not indexed by the marketplace."
		case msg.err != nil:
			m.statsErr = "Failed to load collection stats."
			m.addLog("error", "Collection stats: "+msg.err.Error())
		default:
			stats := msg.stats
			m.stats = &stats
		}
		return m, nil

	case salesLoadedMsg:
		if m.detail == nil || m.detail.ID() != msg.id {
			return m, nil
		}
		m.salesLoading = false
		if msg.err != nil {
			m.salesErr = "Failed to load sales history."
			m.addLog("error", "Sales history: "+msg.err.Error())
			return m, nil
		}
		m.sales = msg.sales
		return m, nil

	case ownerLoadedMsg:
		if m.detail == nil || m.detail.ID() != msg.id {
			return m, nil
		}
		if msg.err != nil {
			m.addLog("warning", "ownerOf failed: "+msg.err.Error())
			return m, nil
		}
		m.ownerOnChain = msg.owner
		if !m.isOwner(msg.owner) {
			m.addLog("warning", fmt.Sprintf("`%s` is owned on chain by `%s`", m.detail.Title(), helpers.ShortenAddr(msg.owner)))
		}
		return m, nil

	case lookupDueMsg:
		// a newer keystroke replaced this query while it was debouncing
		if !m.seq.IsLatest(msg.seq) || m.resolver == nil {
			return m, nil
		}
		m.cancelLookup()
		ctx, cancel := context.WithCancel(context.Background())
		m.lookupCancel = cancel
		return m, resolveRecipients(ctx, m.resolver, msg.seq, msg.query)

	case recipientsResolvedMsg:
		if !m.seq.IsLatest(msg.seq) {
			m.addLog("debug", fmt.Sprintf("Dropped stale lookup for `%s`", msg.query))
			return m, nil
		}
		if m.flow == nil || m.flow.State != transfer.CollectingRecipient {
			return m, nil
		}
		m.searching = false
		m.candidates = m.resolvedCandidates(msg.query, msg.entries)
		m.candCursor = 0
		return m, nil

	case transferDoneMsg:
		return m, m.finishTransfer(msg)

	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height

		// Only initialize viewport if log is enabled
		if m.logEnabled {
			// Width accounts for border and padding
			m.logViewport.Width = max(0, msg.Width-6)
			m.logLen = -1
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		var cmds []tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		// Update log spinner too if log is enabled but not ready
		if m.logEnabled && !m.logReady {
			m.logSpinner, cmd = m.logSpinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		// wheel scrolling in the log panel
		if m.logEnabled && m.logReady {
			var cmd tea.Cmd
			m.logViewport, cmd = m.logViewport.Update(msg)
			return m, cmd
		}
		return m, nil

	case clipboardCopiedMsg:
		m.copiedMsg = "✓ Copied " + msg.what + " to clipboard"
		m.copiedMsgTime = time.Now()
		return m, clearClipboard()

	case clearClipboardMsg:
		// Clear clipboard message after timeout
		if time.Since(m.copiedMsgTime) >= 2*time.Second {
			m.copiedMsg = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

// -------------------- KEYS --------------------

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	allowMenuHotkeys := !m.textInputActive()
	// global keys
	if allowMenuHotkeys {
		switch msg.String() {
		case "q":
			return m.quit()

		case "l", "L":
			// Toggle logger
			m.logEnabled = !m.logEnabled
			if m.logEnabled {
				// Initialize viewport when enabling
				if m.w > 0 {
					m.logViewport.Width = m.w - 6
				}
				m.logReady = false
				m.saveConfig()
				return tea.Batch(initLogViewport(), m.logSpinner.Tick)
			}
			// Clear logs and de-initialize when disabling
			m.logBuffer.Reset()
			m.logLen = 0
			m.logReady = false
			m.saveConfig()
			return nil

		case "pageup", "pagedown":
			// Allow scrolling in log viewport when enabled
			if m.logEnabled && m.logReady {
				var cmd tea.Cmd
				m.logViewport, cmd = m.logViewport.Update(msg)
				return cmd
			}
		}
	}

	// page-specific behavior
	switch m.activePage {
	case config.PageGallery:
		return m.handleGalleryKey(msg)
	case config.PageDetail:
		return m.handleDetailKey(msg)
	case config.PageSend:
		return m.handleSendKey(msg)
	case config.PageSettings:
		return m.handleSettingsKey(msg)
	}
	return nil
}

func (m *model) handleGalleryKey(msg tea.KeyMsg) tea.Cmd {
	if m.filtering {
		switch msg.String() {
		case "esc":
			m.filtering = false
			m.filterInput.SetValue("")
			m.filterInput.Blur()
			m.cursor = 0
			return nil
		case "enter":
			m.filtering = false
			m.filterInput.Blur()
			return nil
		}
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.cursor = 0
		return cmd
	}

	visible := m.visibleNFTs()
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case " ":
		if n, ok := m.current(); ok {
			if m.selected[n.ID()] {
				delete(m.selected, n.ID())
			} else {
				m.selected[n.ID()] = true
			}
		}
	case "enter":
		if n, ok := m.current(); ok {
			return m.openDetail(n)
		}
	case "s":
		return m.startSend(m.sendItems())
	case "/":
		m.filtering = true
		return m.filterInput.Focus()
	case "x":
		if n, ok := m.current(); ok {
			m.toggleHidden(n)
			m.clampCursor()
		}
	case "H":
		m.showHidden = !m.showHidden
		m.clampCursor()
	case "r", "R":
		if m.owner == "" {
			m.addLog("warning", "No owner address. Start with --owner or connect a wallet.")
			return nil
		}
		return tea.Batch(m.loadGalleryCmd(), m.loadBalanceCmd())
	case "o", "O":
		m.activePage = config.PageSettings
	case "h":
		m.goHome()
	case "esc":
		if m.filterInput.Value() != "" {
			m.filterInput.SetValue("")
			m.cursor = 0
		}
	}
	return nil
}

func (m *model) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	if m.detail == nil {
		m.activePage = config.PageGallery
		return nil
	}
	switch msg.String() {
	case "esc", "backspace":
		m.activePage = config.PageGallery
		m.detail = nil
	case "s":
		return m.startSend([]transfer.NFTReference{m.detail.Reference()})
	case "c":
		m.addLog("info", fmt.Sprintf("Copied contract `%s` to clipboard", m.detail.Contract))
		return copyToClipboard(m.detail.Contract, "contract")
	case "x":
		m.toggleHidden(*m.detail)
	case "r", "R":
		return m.openDetail(*m.detail)
	}
	return nil
}

func (m *model) handleSendKey(msg tea.KeyMsg) tea.Cmd {
	if m.flow == nil {
		m.activePage = m.prevPage
		return nil
	}

	switch m.flow.State {
	case transfer.CollectingRecipient:
		switch msg.String() {
		case "esc":
			m.closeFlow()
			m.addLog("info", "Send canceled")
			return nil
		case "up":
			if m.candCursor > 0 {
				m.candCursor--
			}
			return nil
		case "down":
			if m.candCursor < len(m.candidates)-1 {
				m.candCursor++
			}
			return nil
		case "ctrl+v":
			text, err := clipboard.ReadAll()
			if err != nil {
				m.addLog("error", "Clipboard read failed: "+err.Error())
				return nil
			}
			m.recipientInput.SetValue(strings.TrimSpace(text))
			m.recipientInput.CursorEnd()
			return m.onQueryChanged()
		case "enter":
			return m.chooseRecipient()
		}

		before := m.recipientInput.Value()
		var cmd tea.Cmd
		m.recipientInput, cmd = m.recipientInput.Update(msg)
		if m.recipientInput.Value() != before {
			return tea.Batch(cmd, m.onQueryChanged())
		}
		return cmd

	case transfer.Sending:
		if msg.String() == "esc" {
			m.addLog("warning", "Send abandoned; transfers already approved in the wallet stay submitted")
			m.closeFlow()
		}
		return nil

	case transfer.Complete, transfer.Failed:
		switch msg.String() {
		case "c":
			if m.flow.Result != nil {
				if ref := m.flow.Result.LastReference(); ref != "" {
					return copyToClipboard(ref, "transaction hash")
				}
			}
		case "enter":
			if m.flow.State == transfer.Failed && m.flow.Result != nil && m.flow.Result.Succeeded == 0 {
				// nothing went out, so start over with the same items
				items := m.flow.Items
				m.closeFlow()
				return m.startSend(items)
			}
			m.closeFlow()
		case "esc":
			m.closeFlow()
		}
	}
	return nil
}

func (m *model) handleSettingsKey(msg tea.KeyMsg) tea.Cmd {
	// Only handle list mode controls here (form handled at top of Update)
	if m.settingsMode != "list" {
		return nil
	}
	switch msg.String() {
	case "esc", "g":
		m.activePage = config.PageGallery

	case "h":
		m.goHome()

	case "a", "A":
		m.settingsMode = "add"
		m.createAddRPCForm()

	case "w", "W":
		m.provider = nil
		return m.openWalletCmd()

	case "up", "k":
		if m.selectedRPCIdx > 0 {
			m.selectedRPCIdx--
		}

	case "down", "j":
		if m.selectedRPCIdx < len(m.cfg.RPCURLs)-1 {
			m.selectedRPCIdx++
		}

	case "enter", " ":
		// Set as active
		if len(m.cfg.RPCURLs) > 0 && m.selectedRPCIdx < len(m.cfg.RPCURLs) {
			for i := range m.cfg.RPCURLs {
				m.cfg.RPCURLs[i].Active = (i == m.selectedRPCIdx)
			}
			m.rpcURL = m.cfg.RPCURLs[m.selectedRPCIdx].URL
			m.saveConfig()
			// Set connecting state and reconnect with new RPC
			m.rpcConnecting = true
			m.rpcConnected = false
			if m.cfg.Wallet.Mode == config.WalletModeKey {
				// the key wallet signs through the old connection
				m.provider = nil
			}
			return connectRPC(m.rpcURL)
		}
	}
	return nil
}

// -------------------- NAVIGATION --------------------

func (m *model) goHome() {
	// sendItems falls back to the highlighted token only on the gallery
	selected := len(m.sendItems())
	m.activePage = config.PageHome
	m.homeForm = home.CreateForm(m.homeSummary(selected))
}

func (m *model) homeSummary(selected int) home.Summary {
	s := home.Summary{Owned: len(m.nfts), Selected: selected}
	for _, n := range m.nfts {
		if m.cfg.IsHidden(n.ID()) {
			s.Hidden++
		}
	}
	if m.provider != nil {
		s.Wallet = m.provider.Name()
	}
	return s
}

func (m *model) navigateHome(selection string) tea.Cmd {
	switch selection {
	case home.ChoiceGallery:
		m.activePage = config.PageGallery
	case home.ChoiceSend:
		m.activePage = config.PageGallery
		return m.startSend(m.sendItems())
	case home.ChoiceSettings:
		m.activePage = config.PageSettings
	case home.ChoiceQuit:
		return m.quit()
	default:
		m.activePage = config.PageGallery
	}
	return nil
}

func (m *model) quit() tea.Cmd {
	m.cancelLookup()
	if m.sendCancel != nil {
		m.sendCancel()
		m.sendCancel = nil
	}
	return tea.Quit
}

// -------------------- GALLERY --------------------

// visibleNFTs is the gallery list after hiding and filtering
func (m *model) visibleNFTs() []nft.NFT {
	return nft.Filter(nft.Visible(m.nfts, m.cfg.IsHidden, m.showHidden), m.filterInput.Value())
}

func (m *model) current() (nft.NFT, bool) {
	visible := m.visibleNFTs()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return nft.NFT{}, false
	}
	return visible[m.cursor], true
}

func (m *model) clampCursor() {
	n := len(m.visibleNFTs())
	if m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

// sendItems is the selection in gallery order, or the highlighted token
// when nothing is selected
func (m *model) sendItems() []transfer.NFTReference {
	var items []transfer.NFTReference
	for _, n := range m.nfts {
		if m.selected[n.ID()] {
			items = append(items, n.Reference())
		}
	}
	if len(items) == 0 && m.activePage == config.PageGallery {
		if n, ok := m.current(); ok {
			items = append(items, n.Reference())
		}
	}
	return items
}

func (m *model) toggleHidden(n nft.NFT) {
	if m.cfg.ToggleHidden(n.ID()) {
		delete(m.selected, n.ID())
		m.addLog("info", fmt.Sprintf("Hid `%s`", n.Title()))
	} else {
		m.addLog("info", fmt.Sprintf("Unhid `%s`", n.Title()))
	}
	m.saveConfig()
}

func (m *model) openDetail(n nft.NFT) tea.Cmd {
	m.activePage = config.PageDetail
	m.detail = &n
	m.stats = nil
	m.statsErr = ""
	m.sales = nil
	m.salesErr = ""
	m.ownerOnChain = ""

	var cmds []tea.Cmd
	if m.collections != nil {
		m.statsLoading = true
		cmds = append(cmds, loadCollection(m.collections, n.Contract))
	}
	if m.inventory != nil {
		m.salesLoading = true
		cmds = append(cmds, loadSales(m.inventory, n))
	}
	if m.ethClient != nil {
		cmds = append(cmds, loadOwner(m.ethClient, n))
	}
	return tea.Batch(cmds...)
}

// -------------------- SEND FLOW --------------------

func (m *model) startSend(items []transfer.NFTReference) tea.Cmd {
	if len(items) == 0 {
		m.addLog("warning", "Nothing selected to send")
		return nil
	}
	if m.activePage != config.PageSend {
		m.prevPage = m.activePage
	}
	m.flow = transfer.NewFlow(items)
	m.activePage = config.PageSend
	m.sendErr = ""
	m.searching = false
	m.recipientInput.SetValue("")
	m.candidates = m.defaultCandidates()
	m.candCursor = 0
	m.addLog("info", fmt.Sprintf("Send %d NFT(s): choose a recipient", len(items)))
	m.logger.Debug("send flow opened", "flow", m.flow.ID[:8], "items", len(items))
	return m.recipientInput.Focus()
}

// defaultCandidates are offered before anything is typed
func (m *model) defaultCandidates() []send.Candidate {
	var out []send.Candidate
	if helpers.IsValidEthAddress(m.owner) {
		c := send.AddressCandidate(m.owner, send.KindSelf)
		c.Label = "My wallet"
		out = append(out, c)
	}
	for _, r := range m.cfg.Recents {
		if !helpers.IsValidEthAddress(r) || m.isOwner(r) {
			continue
		}
		out = append(out, send.AddressCandidate(r, send.KindRecent))
	}
	return out
}

// resolvedCandidates turns directory entries into rows. A typed address is
// always selectable, even when the directory knows nothing about it.
func (m *model) resolvedCandidates(query string, entries []directory.Entry) []send.Candidate {
	byAddress := directory.Classify(query) == directory.AddressLike && helpers.IsValidEthAddress(query)

	out := make([]send.Candidate, 0, len(entries)+1)
	for _, e := range entries {
		if byAddress {
			out = append(out, send.AddressMatchCandidate(e, query))
		} else {
			out = append(out, send.EntryCandidate(e))
		}
	}
	if byAddress && len(out) == 0 {
		out = append(out, send.AddressCandidate(query, send.KindAddress))
	}
	return out
}

func (m *model) cancelLookup() {
	if m.lookupCancel != nil {
		m.lookupCancel()
		m.lookupCancel = nil
	}
}

// onQueryChanged issues a new sequence number and debounces the lookup
func (m *model) onQueryChanged() tea.Cmd {
	q := m.recipientInput.Value()
	if err := m.flow.SetQuery(q); err != nil {
		return nil
	}
	m.sendErr = ""
	m.cancelLookup()
	seq := m.seq.Next()

	trimmed := strings.TrimSpace(q)
	if directory.TooShort(trimmed) {
		m.searching = false
		m.candidates = m.defaultCandidates()
		m.candCursor = 0
		return nil
	}

	m.candidates = nil
	if helpers.IsValidEthAddress(trimmed) {
		m.candidates = []send.Candidate{send.AddressCandidate(trimmed, send.KindAddress)}
	}
	m.candCursor = 0
	m.searching = true
	return scheduleLookup(seq, trimmed)
}

func (m *model) chooseRecipient() tea.Cmd {
	var target transfer.Target
	if m.candCursor >= 0 && m.candCursor < len(m.candidates) {
		target = m.candidates[m.candCursor].Target()
	} else {
		target = transfer.NewTarget(m.recipientInput.Value())
	}

	if err := m.flow.ChooseTarget(target); err != nil {
		m.sendErr = send.Describe(err)
		m.addLog("error", err.Error())
		return nil
	}

	// a lookup still in flight must not touch the confirmed recipient
	m.cancelLookup()
	m.seq.Next()
	m.searching = false
	m.recipientInput.Blur()
	m.createConfirmForm()
	m.addLog("info", fmt.Sprintf("Recipient `%s`", target.Label()))
	return nil
}

func (m *model) backToRecipient() tea.Cmd {
	m.confirmForm = nil
	if err := m.flow.Back(); err != nil {
		m.addLog("error", err.Error())
		return nil
	}
	return tea.Batch(m.recipientInput.Focus(), m.onQueryChanged())
}

// strategy predicts what the submitter will use, for display
func (m *model) strategy() string {
	if _, ok := m.provider.(wallet.TokenSender); ok {
		return transfer.StrategySendToken
	}
	if _, ok := m.provider.(wallet.TransactionSender); ok {
		return transfer.StrategySendTransaction
	}
	return ""
}

func (m *model) startSubmit() tea.Cmd {
	target, err := m.flow.Confirm()
	if err != nil {
		m.sendErr = err.Error()
		m.addLog("error", err.Error())
		return m.backToRecipient()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.sendCancel = cancel
	s := transfer.NewSubmitter(m.provider, m.cfg.ChainID, m.logger.With("flow", m.flow.ID[:8]))
	m.addLog("info", fmt.Sprintf("Submitting %d transfer(s) to `%s`", len(m.flow.Items), target.Label()))
	return submitTransfer(ctx, s, m.flow.ID, target, m.flow.Items)
}

func (m *model) finishTransfer(msg transferDoneMsg) tea.Cmd {
	if m.flow == nil || m.flow.ID != msg.flowID {
		m.addLog("debug", "Dropped result of a closed send: "+msg.result.Summary())
		return nil
	}
	if m.sendCancel != nil {
		m.sendCancel()
		m.sendCancel = nil
	}
	if err := m.flow.Finish(msg.result); err != nil {
		m.addLog("error", err.Error())
		return nil
	}

	if m.flow.State == transfer.Failed {
		m.addLog("error", fmt.Sprintf("Send failed (%s): %v", msg.result.Summary(), msg.result.Err))
		if msg.result.Succeeded == 0 {
			return nil
		}
		// some items did go out
		return tea.Batch(m.loadGalleryCmd(), m.loadBalanceCmd())
	}

	m.addLog("success", fmt.Sprintf("Sent to `%s`: %s", m.flow.Target.Label(), msg.result.Summary()))
	if !m.isOwner(m.flow.Target.Address) {
		m.cfg.AddRecent(m.flow.Target.Address)
		m.saveConfig()
	}
	for _, it := range msg.result.Items {
		delete(m.selected, nft.NFT{Contract: it.Item.Contract, TokenID: fmt.Sprint(it.Item.TokenID)}.ID())
	}
	return tea.Batch(m.loadGalleryCmd(), m.loadBalanceCmd())
}

// closeFlow resets the flow and leaves the send page. A submission still
// running is canceled and its late result dropped by flow id.
func (m *model) closeFlow() {
	m.cancelLookup()
	if m.sendCancel != nil {
		m.sendCancel()
		m.sendCancel = nil
	}
	completed := false
	if m.flow != nil {
		completed = m.flow.State == transfer.Complete
		m.flow.Close()
	}
	m.flow = nil
	m.seq.Next()
	m.confirmForm = nil
	m.candidates = nil
	m.searching = false
	m.sendErr = ""
	m.recipientInput.SetValue("")
	m.recipientInput.Blur()
	m.activePage = m.prevPage
	if completed && m.activePage == config.PageDetail {
		// the token shown there was just sent away
		m.detail = nil
		m.activePage = config.PageGallery
	}
	if m.activePage == config.PageSend || m.activePage == config.PageHome {
		m.activePage = config.PageGallery
	}
}
