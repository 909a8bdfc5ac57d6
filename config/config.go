package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// BaseChainID is the EIP-155 chain id of Base mainnet
	BaseChainID int64 = 8453

	// RequestTimeout bounds every read-only provider call
	RequestTimeout = 10 * time.Second
	// WalletTimeout bounds a single wallet interaction, which waits on a human
	WalletTimeout = 5 * time.Minute

	maxRecents = 5
)

// Wallet modes
const (
	WalletModeNone   = "none"
	WalletModeRPC    = "rpc"
	WalletModeKey    = "key"
	WalletModeBridge = "bridge"
)

// Config represents the application configuration
type Config struct {
	RPCURLs    []RPCUrl  `json:"rpc_urls"`
	ChainID    int64     `json:"chain_id"`
	Owner      string    `json:"owner,omitempty"`
	Wallet     Wallet    `json:"wallet"`
	Providers  Providers `json:"providers"`
	HiddenNFTs []string  `json:"hidden_nfts,omitempty"`
	Recents    []string  `json:"recent_recipients,omitempty"`
	Logger     bool      `json:"logger"`

	// Secrets are read from the environment and never written to disk
	Secrets Secrets `json:"-"`
}

// RPCUrl represents an RPC endpoint
type RPCUrl struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// Wallet selects how transfers get signed
type Wallet struct {
	Mode string `json:"mode"`
	URL  string `json:"url,omitempty"`
}

// Providers holds the base URLs of the external data services
type Providers struct {
	DirectoryURL string `json:"directory_url"`
	AlchemyURL   string `json:"alchemy_url"`
	ReservoirURL string `json:"reservoir_url"`
}

// Secrets holds API keys and signing material
type Secrets struct {
	NeynarAPIKey     string
	AlchemyAPIKey    string
	WalletPrivateKey string
}

// Load reads the config from the specified path
func Load(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig()
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig()
	}

	return cfg
}

// Save writes the config to the specified path
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// DefaultConfig returns a new configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		RPCURLs: []RPCUrl{
			{
				Name:   "Base Public",
				URL:    "https://mainnet.base.org",
				Active: true,
			},
		},
		ChainID: BaseChainID,
		Wallet:  Wallet{Mode: WalletModeNone},
		Providers: Providers{
			DirectoryURL: "https://api.neynar.com",
			AlchemyURL:   "https://base-mainnet.g.alchemy.com",
			ReservoirURL: "https://api-base.reservoir.tools",
		},
		Logger: false,
	}
}

// LoadOrCreate loads config from path, or creates a default one if not found
func LoadOrCreate(path string) (Config, error) {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		return cfg, Save(path, cfg)
	}
	if err != nil {
		return DefaultConfig(), err
	}
	return Load(path), nil
}

// LoadEnv loads .env files into the process environment. Missing files are
// not an error.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEnv overlays environment variables on top of cfg
func ApplyEnv(cfg *Config) {
	cfg.Secrets.NeynarAPIKey = strings.TrimSpace(os.Getenv("NEYNAR_API_KEY"))
	cfg.Secrets.AlchemyAPIKey = strings.TrimSpace(os.Getenv("ALCHEMY_API_KEY"))
	cfg.Secrets.WalletPrivateKey = strings.TrimSpace(os.Getenv("WALLET_PRIVATE_KEY"))

	// An RPC from the environment always wins and becomes the active one
	if u := strings.TrimSpace(os.Getenv("BASE_RPC_URL")); u != "" {
		found := false
		for i := range cfg.RPCURLs {
			cfg.RPCURLs[i].Active = cfg.RPCURLs[i].URL == u
			found = found || cfg.RPCURLs[i].Active
		}
		if !found {
			cfg.RPCURLs = append(cfg.RPCURLs, RPCUrl{Name: "Env", URL: u, Active: true})
		}
	}

	switch {
	case os.Getenv("WALLET_BRIDGE_URL") != "":
		cfg.Wallet = Wallet{Mode: WalletModeBridge, URL: os.Getenv("WALLET_BRIDGE_URL")}
	case os.Getenv("WALLET_RPC_URL") != "":
		cfg.Wallet = Wallet{Mode: WalletModeRPC, URL: os.Getenv("WALLET_RPC_URL")}
	case cfg.Secrets.WalletPrivateKey != "" && (cfg.Wallet.Mode == "" || cfg.Wallet.Mode == WalletModeNone):
		cfg.Wallet = Wallet{Mode: WalletModeKey}
	}

	if cfg.ChainID == 0 {
		cfg.ChainID = BaseChainID
	}
}

// ActiveRPC returns the URL of the active RPC endpoint, or "" if none
func (c Config) ActiveRPC() string {
	for _, r := range c.RPCURLs {
		if r.Active {
			return r.URL
		}
	}
	return ""
}

// IsHidden reports whether an NFT id is on the hidden list
func (c Config) IsHidden(id string) bool {
	for _, h := range c.HiddenNFTs {
		if strings.EqualFold(h, id) {
			return true
		}
	}
	return false
}

// ToggleHidden hides or unhides an NFT and returns its new hidden state
func (c *Config) ToggleHidden(id string) bool {
	for i, h := range c.HiddenNFTs {
		if strings.EqualFold(h, id) {
			c.HiddenNFTs = append(c.HiddenNFTs[:i], c.HiddenNFTs[i+1:]...)
			return false
		}
	}
	c.HiddenNFTs = append(c.HiddenNFTs, id)
	return true
}

// AddRecent records a recipient address, most recent first
func (c *Config) AddRecent(addr string) {
	out := []string{addr}
	for _, r := range c.Recents {
		if !strings.EqualFold(r, addr) {
			out = append(out, r)
		}
	}
	if len(out) > maxRecents {
		out = out[:maxRecents]
	}
	c.Recents = out
}
