package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// chainBackend is the part of ethclient.Client the key provider needs
type chainBackend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// KeyProvider signs locally with a private key and broadcasts through a node
type KeyProvider struct {
	backend chainBackend
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
}

// NewKeyProvider parses a hex private key, with or without 0x
func NewKeyProvider(backend chainBackend, hexKey string, chainID *big.Int) (*KeyProvider, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, errors.New("WALLET_PRIVATE_KEY is not set")
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &KeyProvider{
		backend: backend,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
	}, nil
}

// Name implements Provider
func (p *KeyProvider) Name() string { return "key:" + p.from.Hex() }

// From returns the address of the local key
func (p *KeyProvider) From(context.Context) (common.Address, error) {
	return p.from, nil
}

// SendTransaction fills nonce, gas and EIP-1559 fees, signs and broadcasts
func (p *KeyProvider) SendTransaction(ctx context.Context, req TxRequest) (string, error) {
	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	nonce, err := p.backend.PendingNonceAt(ctx, p.from)
	if err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	tip, err := p.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return "", fmt.Errorf("gas tip: %w", err)
	}
	head, err := p.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("latest header: %w", err)
	}
	baseFee := head.BaseFee
	if baseFee == nil {
		baseFee = new(big.Int)
	}
	// feeCap = tip + 2*baseFee covers a few full blocks of base fee growth
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(baseFee, big.NewInt(2)))

	to := req.To
	gas, err := p.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  p.from,
		To:    &to,
		Value: value,
		Data:  req.Data,
	})
	if err != nil {
		return "", fmt.Errorf("estimate gas: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   p.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      req.Data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(p.chainID), p.key)
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}
	if err := p.backend.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("broadcast: %w", err)
	}
	return signed.Hash().Hex(), nil
}
