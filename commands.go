package main

import (
	"context"
	"strings"
	"time"

	"base-nft-tui/config"
	"base-nft-tui/directory"
	"base-nft-tui/nft"
	"base-nft-tui/rpc"
	"base-nft-tui/transfer"
	"base-nft-tui/wallet"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// -------------------- COMMAND FUNCTIONS --------------------
// Functions that return tea.Cmd for async operations

// connectRPC establishes an RPC connection to the Base node
func connectRPC(url string) tea.Cmd {
	return func() tea.Msg {
		result := rpc.Connect(url)
		return rpcConnectedMsg{client: result.Client, err: result.Error}
	}
}

// initLogViewport initializes the log viewport
func initLogViewport() tea.Cmd {
	return func() tea.Msg {
		return logInitMsg{}
	}
}

// loadBalance fetches the owner's ETH balance
func loadBalance(client *rpc.Client, owner string) tea.Cmd {
	return func() tea.Msg {
		return balanceLoadedMsg{b: rpc.LoadBalance(client, common.HexToAddress(owner))}
	}
}

// openWallet opens the configured wallet and asks it for its account
func openWallet(cfg config.Config, client *rpc.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), config.RequestTimeout)
		defer cancel()

		var eth *ethclient.Client
		if client != nil {
			eth = client.Client
		}
		p, err := wallet.Open(ctx, cfg, eth)
		if err != nil || p == nil {
			return walletOpenedMsg{provider: p, err: err}
		}

		msg := walletOpenedMsg{provider: p}
		if ts, ok := p.(wallet.TransactionSender); ok {
			if from, err := ts.From(ctx); err == nil {
				msg.from = from.Hex()
			}
		}
		return msg
	}
}

// loadGallery fetches every NFT the owner holds
func loadGallery(inv nft.Inventory, owner string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*config.RequestTimeout)
		defer cancel()
		nfts, err := inv.OwnedNFTs(ctx, owner)
		return nftsLoadedMsg{owner: owner, nfts: nfts, err: err}
	}
}

// loadCollection fetches market stats for a collection
func loadCollection(src nft.CollectionSource, contract string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), config.RequestTimeout)
		defer cancel()
		stats, err := src.Collection(ctx, contract)
		return collectionLoadedMsg{contract: contract, stats: stats, err: err}
	}
}

// loadSales fetches the sales history of one token
func loadSales(inv nft.Inventory, n nft.NFT) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), config.RequestTimeout)
		defer cancel()
		sales, err := inv.Sales(ctx, n.Contract, n.TokenID)
		return salesLoadedMsg{id: n.ID(), sales: sales, err: err}
	}
}

// loadOwner reads the current owner of a token from the chain
func loadOwner(client *rpc.Client, n nft.NFT) tea.Cmd {
	return func() tea.Msg {
		contract, err := transfer.ParseContract(n.Contract)
		if err != nil {
			return ownerLoadedMsg{id: n.ID(), err: err}
		}
		tokenID, err := transfer.ParseTokenID(n.TokenID)
		if err != nil {
			return ownerLoadedMsg{id: n.ID(), err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.RequestTimeout)
		defer cancel()
		owner, err := rpc.OwnerOf(ctx, client, contract, tokenID)
		if err != nil {
			return ownerLoadedMsg{id: n.ID(), err: err}
		}
		return ownerLoadedMsg{id: n.ID(), owner: owner.Hex()}
	}
}

// scheduleLookup fires lookupDueMsg once the debounce interval has passed
func scheduleLookup(seq uint64, query string) tea.Cmd {
	return tea.Tick(directory.DebounceInterval, func(time.Time) tea.Msg {
		return lookupDueMsg{seq: seq, query: query}
	})
}

// resolveRecipients looks a recipient query up in the directory
func resolveRecipients(ctx context.Context, r *directory.Resolver, seq uint64, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
		defer cancel()
		return recipientsResolvedMsg{seq: seq, query: query, entries: r.Resolve(ctx, query)}
	}
}

// submitTransfer runs one submission; ctx is canceled if the flow is closed
func submitTransfer(ctx context.Context, s *transfer.Submitter, flowID string, target transfer.Target, items []transfer.NFTReference) tea.Cmd {
	return func() tea.Msg {
		return transferDoneMsg{flowID: flowID, result: s.Submit(ctx, target, items)}
	}
}

// copyToClipboard copies text to clipboard
func copyToClipboard(text, what string) tea.Cmd {
	return func() tea.Msg {
		err := clipboard.WriteAll(text)
		if err == nil {
			return clipboardCopiedMsg{what: what}
		}
		return nil
	}
}

// clearClipboard waits 2 seconds then sends a message to clear clipboard feedback
func clearClipboard() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return clearClipboardMsg{}
	})
}

// -------------------- MODEL HELPERS --------------------

// openWalletCmd opens the configured wallet
func (m *model) openWalletCmd() tea.Cmd {
	if m.cfg.Wallet.Mode == "" || m.cfg.Wallet.Mode == config.WalletModeNone {
		return nil
	}
	m.walletOpening = true
	m.walletErr = ""
	return openWallet(m.cfg, m.ethClient)
}

// loadGalleryCmd reloads the gallery when an owner is known
func (m *model) loadGalleryCmd() tea.Cmd {
	if m.owner == "" || m.inventory == nil {
		return nil
	}
	m.galleryLoading = true
	m.galleryErr = ""
	return loadGallery(m.inventory, m.owner)
}

// loadBalanceCmd reloads the owner's balance when possible
func (m *model) loadBalanceCmd() tea.Cmd {
	if m.owner == "" || m.ethClient == nil {
		return nil
	}
	return loadBalance(m.ethClient, m.owner)
}

// addLog adds a log entry with timestamp and type
func (m *model) addLog(logType, message string) {
	if !m.logEnabled || m.logger == nil {
		return
	}

	// Use the logger to write messages
	switch logType {
	case "info":
		m.logger.Info(message)
	case "success":
		m.logger.Info("✓", "msg", message)
	case "error":
		m.logger.Error(message)
	case "warning":
		m.logger.Warn(message)
	case "debug":
		m.logger.Debug(message)
	default:
		m.logger.Print(message)
	}

	// Update viewport content
	m.updateLogViewport()
}

// updateLogViewport refreshes the viewport when the buffer grew
func (m *model) updateLogViewport() {
	if !m.logReady || m.logBuffer == nil {
		return
	}
	n := m.logBuffer.Len()
	if n == m.logLen {
		return
	}
	m.logLen = n

	// Get content from log buffer
	m.logViewport.SetContent(m.logBuffer.String())
	// Scroll to bottom to show latest entries
	m.logViewport.GotoBottom()
}

// textInputActive returns true if any text input is currently active
func (m *model) textInputActive() bool {
	if m.activePage == config.PageSend && m.flow != nil && m.flow.State == transfer.CollectingRecipient {
		return true
	}
	if m.activePage == config.PageGallery && m.filtering {
		return true
	}
	if m.settingsMode == "add" && m.form != nil {
		return true
	}
	return false
}

// saveConfig writes the config and logs failures
func (m *model) saveConfig() {
	m.cfg.Logger = m.logEnabled
	if err := config.Save(m.configPath, m.cfg); err != nil {
		m.addLog("error", "Failed to save config: "+err.Error())
	}
}

// isOwner reports whether addr is the current owner
func (m *model) isOwner(addr string) bool {
	return m.owner != "" && strings.EqualFold(m.owner, addr)
}
