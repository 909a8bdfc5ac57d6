package rpc

import (
	"context"
	"math/big"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	rpcURL := os.Getenv("BASE_RPC_URL")
	if rpcURL == "" {
		t.Skip("BASE_RPC_URL not set, skipping connection test")
	}

	t.Run("successful connection", func(t *testing.T) {
		result := Connect(rpcURL)
		require.NoError(t, result.Error)
		require.NotNil(t, result.Client)
		assert.Equal(t, rpcURL, result.Client.URL)
		assert.True(t, result.Client.IsChain(8453), "expected Base mainnet, got chain %s", result.Client.ChainID)
	})

	t.Run("connection with timeout", func(t *testing.T) {
		result := ConnectWithTimeout(rpcURL, 10*time.Second)
		require.NoError(t, result.Error)
		require.NotNil(t, result.Client)
	})
}

func TestConnectInvalidURL(t *testing.T) {
	result := ConnectWithTimeout("not-a-valid-url", time.Second)
	assert.Error(t, result.Error)
	assert.Nil(t, result.Client)
}

func TestLoadBalance(t *testing.T) {
	// Base fee vault, always holds ETH
	addr := common.HexToAddress("0x4200000000000000000000000000000000000019")

	t.Run("nil client", func(t *testing.T) {
		b := LoadBalance(nil, addr)
		assert.True(t, strings.Contains(b.ErrMessage, "No RPC client"))
		assert.Equal(t, addr.Hex(), b.Address)
		assert.Zero(t, b.Wei.Sign())
	})

	rpcURL := os.Getenv("BASE_RPC_URL")
	if rpcURL == "" {
		t.Skip("BASE_RPC_URL not set, skipping balance test")
	}
	conn := Connect(rpcURL)
	require.NoError(t, conn.Error)

	b := LoadBalance(conn.Client, addr)
	if b.ErrMessage != "" {
		t.Logf("Got error message (may be due to rate limiting): %s", b.ErrMessage)
	}
	assert.False(t, b.LoadedAt.IsZero())
}

func TestOwnerOf(t *testing.T) {
	_, err := OwnerOf(context.Background(), nil, common.Address{}, big.NewInt(1))
	assert.Error(t, err)
}

func TestIsChainNilSafe(t *testing.T) {
	var c *Client
	assert.False(t, c.IsChain(8453))
	assert.True(t, (&Client{ChainID: big.NewInt(8453)}).IsChain(8453))
}
