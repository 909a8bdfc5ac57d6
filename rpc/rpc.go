package rpc

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client wraps a Base RPC client
type Client struct {
	*ethclient.Client
	URL     string
	ChainID *big.Int
}

// ConnectResult holds the result of an RPC connection attempt
type ConnectResult struct {
	Client *Client
	Error  error
}

// Connect attempts to connect to a Base RPC endpoint
func Connect(url string) ConnectResult {
	return ConnectWithTimeout(url, 8*time.Second)
}

// ConnectWithTimeout attempts to connect with a custom timeout and reads the
// chain id so a wrong network is caught at connect time
func ConnectWithTimeout(url string, timeout time.Duration) ConnectResult {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return ConnectResult{Client: nil, Error: err}
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return ConnectResult{Client: nil, Error: fmt.Errorf("read chain id: %w", err)}
	}

	return ConnectResult{
		Client: &Client{
			Client:  client,
			URL:     url,
			ChainID: chainID,
		},
		Error: nil,
	}
}

// IsChain reports whether the client is connected to the given chain
func (c *Client) IsChain(id int64) bool {
	return c != nil && c.ChainID != nil && c.ChainID.Cmp(big.NewInt(id)) == 0
}

// Balance is the ETH balance of the owner
type Balance struct {
	Address    string
	Wei        *big.Int
	LoadedAt   time.Time
	ErrMessage string
}

// LoadBalance fetches the ETH balance of an address
func LoadBalance(client *Client, addr common.Address) Balance {
	return LoadBalanceWithTimeout(client, addr, 12*time.Second)
}

// LoadBalanceWithTimeout fetches the ETH balance with a custom timeout
func LoadBalanceWithTimeout(client *Client, addr common.Address, timeout time.Duration) Balance {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	b := Balance{
		Address:  addr.Hex(),
		Wei:      big.NewInt(0),
		LoadedAt: time.Now(),
	}

	if client == nil || client.Client == nil {
		b.ErrMessage = "No RPC client (set BASE_RPC_URL)."
		return b
	}

	wei, err := client.BalanceAt(ctx, addr, nil)
	if err != nil {
		b.ErrMessage = "Failed to load ETH balance."
		return b
	}
	b.Wei = wei
	return b
}

// ownerOf(uint256) methodID = keccak256("ownerOf(uint256)")[:4]
var ownerOfSelector = []byte{0x63, 0x52, 0x21, 0x1e}

// OwnerOf reads the current owner of an ERC-721 token via eth_call
func OwnerOf(ctx context.Context, client *Client, contract common.Address, tokenID *big.Int) (common.Address, error) {
	if client == nil || client.Client == nil {
		return common.Address{}, fmt.Errorf("no rpc client")
	}

	// calldata = selector + 32-byte left-padded token id
	data := append(append([]byte{}, ownerOfSelector...), common.LeftPadBytes(tokenID.Bytes(), 32)...)

	out, err := client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return common.Address{}, err
	}
	if len(out) < 32 {
		return common.Address{}, fmt.Errorf("ownerOf returned %d bytes", len(out))
	}
	return common.BytesToAddress(out[12:32]), nil
}
