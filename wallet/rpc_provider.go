package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// RPCProvider forwards to an external wallet's JSON-RPC endpoint, which
// owns the keys and the signing prompt.
type RPCProvider struct {
	client *gethrpc.Client
	url    string
	from   common.Address
}

// DialRPC connects to a wallet JSON-RPC endpoint
func DialRPC(ctx context.Context, url string) (*RPCProvider, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("wallet rpc url is empty")
	}
	c, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial wallet rpc: %w", err)
	}
	return &RPCProvider{client: c, url: url}, nil
}

// Name implements Provider
func (p *RPCProvider) Name() string { return "rpc:" + p.url }

// From returns the first account the wallet exposes, asking for access
// when none is exposed yet.
func (p *RPCProvider) From(ctx context.Context) (common.Address, error) {
	if p.from != (common.Address{}) {
		return p.from, nil
	}

	var accounts []common.Address
	if err := p.client.CallContext(ctx, &accounts, "eth_accounts"); err != nil || len(accounts) == 0 {
		if err := p.client.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
			return common.Address{}, fmt.Errorf("request accounts: %w", err)
		}
	}
	if len(accounts) == 0 {
		return common.Address{}, ErrNoAccount
	}
	p.from = accounts[0]
	return p.from, nil
}

type txArgs struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Data  hexutil.Bytes  `json:"data"`
	Value *hexutil.Big   `json:"value"`
}

// SendTransaction submits tx through eth_sendTransaction and returns the hash
func (p *RPCProvider) SendTransaction(ctx context.Context, tx TxRequest) (string, error) {
	value := tx.Value
	if value == nil {
		value = new(big.Int)
	}
	args := txArgs{
		From:  tx.From,
		To:    tx.To,
		Data:  tx.Data,
		Value: (*hexutil.Big)(value),
	}

	var hash string
	if err := p.client.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return "", err
	}
	return hash, nil
}

// Close releases the connection
func (p *RPCProvider) Close() {
	p.client.Close()
}
