package wallet

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"base-nft-tui/config"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	contract  = common.HexToAddress("0x00000000000000000000000000000000000000c0")
	recipient = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

type fakeBackend struct {
	sent *types.Transaction
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 7, nil
}

func (f *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000), nil
}

func (f *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{BaseFee: big.NewInt(50_000)}, nil
}

func (f *fakeBackend) EstimateGas(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
	return 85_000, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.sent = tx
	return nil
}

func TestKeyProviderSignsDynamicFeeTx(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hexKey := hexutil.Encode(crypto.FromECDSA(key))

	backend := &fakeBackend{}
	chainID := big.NewInt(config.BaseChainID)
	p, err := NewKeyProvider(backend, hexKey, chainID)
	require.NoError(t, err)

	from, err := p.From(context.Background())
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), from)

	data := []byte{0x42, 0x84, 0x2e, 0x0e}
	hash, err := p.SendTransaction(context.Background(), TxRequest{From: from, To: contract, Data: data})
	require.NoError(t, err)

	tx := backend.sent
	require.NotNil(t, tx)
	assert.Equal(t, tx.Hash().Hex(), hash)
	assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(85_000), tx.Gas())
	assert.Equal(t, big.NewInt(101_000), tx.GasFeeCap())
	assert.Equal(t, contract, *tx.To())
	assert.Equal(t, data, tx.Data())
	assert.Zero(t, tx.Value().Sign())

	sender, err := types.Sender(types.LatestSignerForChainID(chainID), tx)
	require.NoError(t, err)
	assert.Equal(t, from, sender)
}

func TestKeyProviderRejectsBadKey(t *testing.T) {
	_, err := NewKeyProvider(&fakeBackend{}, "", big.NewInt(1))
	assert.Error(t, err)
	_, err = NewKeyProvider(&fakeBackend{}, "0xnothex", big.NewInt(1))
	assert.Error(t, err)
}

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

func rpcServer(t *testing.T, handle func(method string, params []json.RawMessage) (any, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		result, rerr := handle(req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rerr != nil {
			resp["error"] = rerr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func TestRPCProviderRequestsAccountsAndSends(t *testing.T) {
	from := "0x1111111111111111111111111111111111111111"
	var methods []string
	var sent txArgs
	srv := rpcServer(t, func(method string, params []json.RawMessage) (any, *rpcError) {
		methods = append(methods, method)
		switch method {
		case "eth_accounts":
			return []string{}, nil
		case "eth_requestAccounts":
			return []string{from}, nil
		case "eth_sendTransaction":
			require.Len(t, params, 1)
			require.NoError(t, json.Unmarshal(params[0], &sent))
			return "0xabc", nil
		}
		return nil, &rpcError{Code: -32601, Message: "method not found"}
	})
	defer srv.Close()

	p, err := DialRPC(context.Background(), srv.URL)
	require.NoError(t, err)
	defer p.Close()

	addr, err := p.From(context.Background())
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(from), addr)

	hash, err := p.SendTransaction(context.Background(), TxRequest{From: addr, To: contract, Data: []byte{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, "0xabc", hash)
	assert.Equal(t, contract, sent.To)
	assert.Equal(t, hexutil.Bytes{1, 2}, sent.Data)
	assert.Zero(t, sent.Value.ToInt().Sign())

	// the account is remembered
	_, err = p.From(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"eth_accounts", "eth_requestAccounts", "eth_sendTransaction"}, methods)
}

func TestRPCProviderUserRejection(t *testing.T) {
	srv := rpcServer(t, func(string, []json.RawMessage) (any, *rpcError) {
		return nil, &rpcError{Code: 4001, Message: "User rejected the request."}
	})
	defer srv.Close()

	p, err := DialRPC(context.Background(), srv.URL)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.SendTransaction(context.Background(), TxRequest{To: contract})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "User rejected")
}

func TestBridgeProviderSendToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sendToken", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"token":"eip155:8453/erc721:0xc0/1","amount":"1","recipientAddress":"`+recipient.Hex()+`"}`, string(body))
		_, _ = w.Write([]byte(`{"success":true,"send":{"transaction":"0xfeed"}}`))
	}))
	defer srv.Close()

	p := NewBridgeProvider(srv.URL+"/", nil)
	res, err := p.SendToken(context.Background(), SendTokenRequest{
		Token:            "eip155:8453/erc721:0xc0/1",
		Amount:           "1",
		RecipientAddress: recipient.Hex(),
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "0xfeed", res.Transaction())
}

func TestSendTokenResultFailureReason(t *testing.T) {
	var res SendTokenResult
	require.NoError(t, json.Unmarshal([]byte(`{"success":false,"reason":"rejected_by_user"}`), &res))
	assert.Equal(t, "rejected_by_user", res.FailureReason())

	require.NoError(t, json.Unmarshal([]byte(`{"success":false,"reason":"send_failed","error":{"message":"insufficient funds"}}`), &res))
	assert.Equal(t, "send_failed: insufficient funds", res.FailureReason())

	assert.Equal(t, "no reason given", SendTokenResult{}.FailureReason())
}

func TestOpenAndCapabilities(t *testing.T) {
	p, err := Open(context.Background(), config.DefaultConfig(), nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	cfg := config.DefaultConfig()
	cfg.Wallet = config.Wallet{Mode: config.WalletModeBridge, URL: "http://localhost:1"}
	p, err = Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"sendToken"}, Capabilities(p))

	cfg.Wallet = config.Wallet{Mode: config.WalletModeKey}
	_, err = Open(context.Background(), cfg, nil)
	assert.Error(t, err)

	cfg.Wallet = config.Wallet{Mode: "carrier-pigeon"}
	_, err = Open(context.Background(), cfg, nil)
	assert.Error(t, err)
}
