// Package wallet holds the signing back ends a transfer can run against.
//
// A provider exposes one or both capabilities: TokenSender is the host
// wallet's high-level "send this asset" action, TransactionSender the raw
// eth_sendTransaction path.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"base-nft-tui/config"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrNoAccount is returned when the wallet exposes no account to sign with
var ErrNoAccount = errors.New("wallet exposes no account")

// Provider is the common part of every wallet back end
type Provider interface {
	Name() string
}

// TokenSender is the high-level capability: the wallet builds the transfer
type TokenSender interface {
	Provider
	SendToken(ctx context.Context, req SendTokenRequest) (SendTokenResult, error)
}

// TransactionSender is the low-level capability: the caller builds call data
type TransactionSender interface {
	Provider
	From(ctx context.Context) (common.Address, error)
	SendTransaction(ctx context.Context, tx TxRequest) (string, error)
}

// SendTokenRequest asks the wallet to move one unit of a CAIP-19 asset
type SendTokenRequest struct {
	Token            string `json:"token"`
	Amount           string `json:"amount"`
	RecipientAddress string `json:"recipientAddress"`
}

// SendTokenResult is the wallet's answer to a SendTokenRequest
type SendTokenResult struct {
	Success bool `json:"success"`
	Send    *struct {
		Transaction string `json:"transaction"`
	} `json:"send,omitempty"`
	Reason string          `json:"reason,omitempty"`
	Error  json.RawMessage `json:"error,omitempty"`
}

// Transaction returns the submitted transaction hash, if any
func (r SendTokenResult) Transaction() string {
	if r.Send == nil {
		return ""
	}
	return r.Send.Transaction
}

// FailureReason renders the reason and error detail of an unsuccessful send
func (r SendTokenResult) FailureReason() string {
	var parts []string
	if r.Reason != "" {
		parts = append(parts, r.Reason)
	}
	if msg := errorMessage(r.Error); msg != "" {
		parts = append(parts, msg)
	}
	if len(parts) == 0 {
		return "no reason given"
	}
	return strings.Join(parts, ": ")
}

func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(raw)
}

// TxRequest is an unsigned contract call
type TxRequest struct {
	From  common.Address
	To    common.Address
	Data  []byte
	Value *big.Int
}

// Open builds the provider selected by cfg.Wallet. It returns nil, nil when
// no wallet is configured. eth is only used by the key provider.
func Open(ctx context.Context, cfg config.Config, eth *ethclient.Client) (Provider, error) {
	switch cfg.Wallet.Mode {
	case "", config.WalletModeNone:
		return nil, nil
	case config.WalletModeRPC:
		p, err := DialRPC(ctx, cfg.Wallet.URL)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.WalletModeBridge:
		return NewBridgeProvider(cfg.Wallet.URL, nil), nil
	case config.WalletModeKey:
		if eth == nil {
			return nil, errors.New("key wallet needs an RPC connection")
		}
		p, err := NewKeyProvider(eth, cfg.Secrets.WalletPrivateKey, big.NewInt(cfg.ChainID))
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown wallet mode %q", cfg.Wallet.Mode)
	}
}

// Capabilities lists what p can do, for display
func Capabilities(p Provider) []string {
	var caps []string
	if _, ok := p.(TokenSender); ok {
		caps = append(caps, "sendToken")
	}
	if _, ok := p.(TransactionSender); ok {
		caps = append(caps, "eth_sendTransaction")
	}
	return caps
}
