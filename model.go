package main

import (
	"bytes"
	"context"
	"sync"
	"time"

	"base-nft-tui/config"
	"base-nft-tui/directory"
	"base-nft-tui/nft"
	"base-nft-tui/rpc"
	"base-nft-tui/styles"
	"base-nft-tui/transfer"
	"base-nft-tui/views/send"
	"base-nft-tui/wallet"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// -------------------- MODEL --------------------

// syncBuffer is the log sink. Resolver and submitter log from command
// goroutines while View reads it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// model represents the application state following The Elm Architecture
type model struct {
	w, h int

	activePage config.Page
	prevPage   config.Page

	cfg        config.Config
	configPath string

	spin spinner.Model

	// chain
	rpcURL        string
	ethClient     *rpc.Client
	rpcConnected  bool
	rpcConnecting bool
	balance       rpc.Balance
	balanceLoaded bool

	// wallet
	provider      wallet.Provider
	walletErr     string
	walletOpening bool
	owner         string

	// data sources
	inventory   nft.Inventory
	collections nft.CollectionSource
	resolver    *directory.Resolver

	// gallery
	nfts           []nft.NFT
	galleryLoading bool
	galleryErr     string
	cursor         int
	selected       map[string]bool
	showHidden     bool
	filtering      bool
	filterInput    textinput.Model

	// detail
	detail       *nft.NFT
	stats        *nft.CollectionStats
	statsLoading bool
	statsErr     string
	sales        []nft.Sale
	salesLoading bool
	salesErr     string
	ownerOnChain string

	// send flow
	flow           *transfer.Flow
	seq            *directory.Sequencer
	recipientInput textinput.Model
	candidates     []send.Candidate
	candCursor     int
	searching      bool
	lookupCancel   context.CancelFunc
	sendErr        string
	confirmForm    *huh.Form
	sendCancel     context.CancelFunc

	// clipboard feedback
	copiedMsg     string
	copiedMsgTime time.Time

	// settings state
	settingsMode   string // "list", "add"
	selectedRPCIdx int
	form           *huh.Form

	// home form
	homeForm *huh.Form

	// logger panel
	logEnabled  bool
	logger      *log.Logger
	logBuffer   *syncBuffer
	logLen      int
	logViewport viewport.Model
	logReady    bool
	logSpinner  spinner.Model
}

// -------------------- INIT --------------------

// newLogger creates the logger that writes into the log panel buffer
func newLogger(buf *syncBuffer) *log.Logger {
	logger := log.NewWithOptions(buf, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "",
	})
	logger.SetLevel(log.DebugLevel)
	logger.SetStyles(&log.Styles{
		Timestamp: lipgloss.NewStyle().Foreground(cMuted),
		Caller:    lipgloss.NewStyle().Faint(true),
		Prefix:    lipgloss.NewStyle().Bold(true).Foreground(cAccent2),
		Message:   lipgloss.NewStyle().Foreground(cText),
		Key:       lipgloss.NewStyle().Foreground(cAccent),
		Value:     lipgloss.NewStyle().Foreground(cText),
		Separator: lipgloss.NewStyle().Faint(true),
		Levels: map[log.Level]lipgloss.Style{
			log.DebugLevel: lipgloss.NewStyle().Foreground(cMuted).SetString("DEBUG"),
			log.InfoLevel:  lipgloss.NewStyle().Foreground(cAccent2).SetString("INFO"),
			log.WarnLevel:  lipgloss.NewStyle().Foreground(cWarn).SetString("WARN"),
			log.ErrorLevel: lipgloss.NewStyle().Foreground(cError).SetString("ERROR"),
		},
	})
	return logger
}

// newModel creates and initializes a new model from a loaded config
func newModel(cfg config.Config, configPath string) model {
	// recipient input
	in := textinput.New()
	in.Placeholder = "Farcaster username or 0x address"
	in.Prompt = "To: "
	in.PromptStyle = lipgloss.NewStyle().Foreground(styles.CAccent)
	in.TextStyle = lipgloss.NewStyle().Foreground(styles.CText)
	in.Cursor.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)
	in.CharLimit = 64
	in.Width = 48

	// gallery filter
	filter := textinput.New()
	filter.Placeholder = "name, collection or token id"
	filter.Prompt = "/ "
	filter.PromptStyle = lipgloss.NewStyle().Foreground(styles.CAccent2)
	filter.TextStyle = lipgloss.NewStyle().Foreground(styles.CText)
	filter.CharLimit = 64
	filter.Width = 40

	// spinner
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	// Initialize log viewport
	vp := viewport.New(0, 20) // Will be resized in Update on first WindowSizeMsg
	vp.Style = lipgloss.NewStyle().
		Foreground(styles.CText).
		Background(styles.CPanel)

	// Initialize log spinner
	logSpin := spinner.New()
	logSpin.Spinner = spinner.Dot
	logSpin.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	logBuf := &syncBuffer{}
	logger := newLogger(logBuf)

	m := model{
		activePage:     config.PageGallery,
		prevPage:       config.PageGallery,
		cfg:            cfg,
		configPath:     configPath,
		spin:           sp,
		rpcURL:         cfg.ActiveRPC(),
		owner:          cfg.Owner,
		inventory:      nft.NewAlchemyClient(cfg.Providers.AlchemyURL, cfg.Secrets.AlchemyAPIKey, nil),
		collections:    nft.NewReservoirClient(cfg.Providers.ReservoirURL, nil, logger),
		resolver:       directory.NewResolver(directory.NewNeynarClient(cfg.Providers.DirectoryURL, cfg.Secrets.NeynarAPIKey, nil), logger),
		selected:       make(map[string]bool),
		filterInput:    filter,
		seq:            &directory.Sequencer{},
		recipientInput: in,
		settingsMode:   "list",
		logEnabled:     cfg.Logger,
		logger:         logger,
		logBuffer:      logBuf,
		logViewport:    vp,
		logSpinner:     logSpin,
	}

	for i, r := range cfg.RPCURLs {
		if r.Active {
			m.selectedRPCIdx = i
			break
		}
	}

	return m
}

// Init implements tea.Model interface and returns initial commands
func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick}
	if m.logEnabled {
		cmds = append(cmds, initLogViewport(), m.logSpinner.Tick)
	}
	// connect if rpc is set
	if m.rpcURL != "" {
		m.rpcConnecting = true
		cmds = append(cmds, connectRPC(m.rpcURL))
	}
	// the key wallet signs through the RPC connection, so it opens later
	if m.cfg.Wallet.Mode != config.WalletModeKey {
		cmds = append(cmds, m.openWalletCmd())
	}
	cmds = append(cmds, m.loadGalleryCmd())
	return tea.Batch(cmds...)
}
