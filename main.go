package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"base-nft-tui/config"
	"base-nft-tui/directory"
	"base-nft-tui/metrics"
	"base-nft-tui/nft"
	"base-nft-tui/server"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var version = "dev"

// -------------------- MAIN --------------------

type rootOptions struct {
	configPath string
	envFile    string
	owner      string
	logEnabled bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "base-nft",
		Short:         "Browse and send your NFTs on Base",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}

			m := newModel(cfg, opts.configPath)
			p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseCellMotion())
			_, err = p.Run()
			return err
		},
	}

	homeDir, _ := os.UserHomeDir()
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", filepath.Join(homeDir, ".base-nft-config.json"), "config file")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "dotenv file with API keys")
	cmd.PersistentFlags().StringVar(&opts.owner, "owner", "", "wallet address whose NFTs are shown")
	cmd.Flags().BoolVar(&opts.logEnabled, "log", false, "start with the debug log panel open")

	cmd.AddCommand(newServeCmd(opts), newVersionCmd())
	return cmd
}

// load reads the config file and overlays .env, environment and flags
func (o *rootOptions) load(cmd *cobra.Command) (config.Config, error) {
	if err := config.LoadEnv(o.envFile); err != nil {
		return config.Config{}, fmt.Errorf("load %s: %w", o.envFile, err)
	}

	cfg, err := config.LoadOrCreate(o.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	config.ApplyEnv(&cfg)

	if o.owner != "" {
		cfg.Owner = strings.TrimSpace(o.owner)
	}
	if cmd.Flags().Changed("log") {
		cfg.Logger = o.logEnabled
	}
	return cfg, nil
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the NFT, collection and recipient JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}

			logger := log.NewWithOptions(os.Stderr, log.Options{
				ReportTimestamp: true,
				Prefix:          "base-nft",
			})
			metrics.Register(prometheus.DefaultRegisterer, logger)

			srv := server.New(
				nft.NewAlchemyClient(cfg.Providers.AlchemyURL, cfg.Secrets.AlchemyAPIKey, nil),
				nft.NewReservoirClient(cfg.Providers.ReservoirURL, nil, logger),
				directory.NewResolver(directory.NewNeynarClient(cfg.Providers.DirectoryURL, cfg.Secrets.NeynarAPIKey, nil), logger),
				logger,
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":3000", "listen address")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version)
		},
	}
}
