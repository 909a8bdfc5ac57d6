package transfer

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"

	"base-nft-tui/directory"
	"base-nft-tui/wallet"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner = "0x1111111111111111111111111111111111111111"
	dest  = "0x2222222222222222222222222222222222222222"
)

type tokenWallet struct {
	mu     sync.Mutex
	calls  []wallet.SendTokenRequest
	failAt int
	result wallet.SendTokenResult
}

func (w *tokenWallet) Name() string { return "fake-token" }

func (w *tokenWallet) SendToken(_ context.Context, req wallet.SendTokenRequest) (wallet.SendTokenResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, req)
	if len(w.calls) == w.failAt {
		return w.result, nil
	}
	return wallet.SendTokenResult{Success: true, Send: &struct {
		Transaction string `json:"transaction"`
	}{Transaction: "0xtx" + req.Token[len(req.Token)-1:]}}, nil
}

type txWallet struct {
	mu       sync.Mutex
	calls    []wallet.TxRequest
	inFlight int
	maxSeen  int
	hashes   []string
	err      error
}

func (w *txWallet) Name() string { return "fake-tx" }

func (w *txWallet) From(context.Context) (common.Address, error) {
	return common.HexToAddress(owner), nil
}

func (w *txWallet) SendTransaction(_ context.Context, tx wallet.TxRequest) (string, error) {
	w.mu.Lock()
	w.inFlight++
	if w.inFlight > w.maxSeen {
		w.maxSeen = w.inFlight
	}
	w.calls = append(w.calls, tx)
	n := len(w.calls)
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.inFlight--
		w.mu.Unlock()
	}()
	if w.err != nil {
		return "", w.err
	}
	if n <= len(w.hashes) {
		return w.hashes[n-1], nil
	}
	return "0xhash", nil
}

type bothWallet struct {
	*tokenWallet
	*txWallet
}

func (bothWallet) Name() string { return "both" }

func items(n int) []NFTReference {
	out := make([]NFTReference, n)
	for i := range out {
		out[i] = NFTReference{Contract: "0x00000000000000000000000000000000000000c0", TokenID: i + 1}
	}
	return out
}

func TestSubmitInvalidRecipientNeverTouchesWallet(t *testing.T) {
	w := &tokenWallet{}
	s := NewSubmitter(w, 8453, nil)
	for _, addr := range []string{"", "vitalik.eth", "0x1234", "0x" + strings.Repeat("g", 40)} {
		res := s.Submit(context.Background(), NewTarget(addr), items(2))
		assert.Equal(t, Failed, res.State)
		assert.ErrorIs(t, res.Err, ErrInvalidRecipient)
		assert.Zero(t, res.Succeeded)
	}
	assert.Empty(t, w.calls)
}

func TestSubmitWithoutWallet(t *testing.T) {
	type nameOnly struct{ wallet.Provider }
	for _, p := range []wallet.Provider{nil, nameOnly{}} {
		res := NewSubmitter(p, 8453, nil).Submit(context.Background(), NewTarget(dest), items(1))
		assert.Equal(t, Failed, res.State)
		assert.ErrorIs(t, res.Err, ErrWalletUnavailable)
	}
}

func TestSubmitHighLevelInOrder(t *testing.T) {
	w := &tokenWallet{}
	res := NewSubmitter(w, 8453, nil).Submit(context.Background(), NewTarget(dest), items(3))

	require.NoError(t, res.Err)
	assert.Equal(t, Complete, res.State)
	assert.Equal(t, StrategySendToken, res.Strategy)
	assert.Equal(t, "3 of 3 succeeded", res.Summary())
	require.Len(t, w.calls, 3)
	for i, c := range w.calls {
		assert.Equal(t, "eip155:8453/erc721:0x00000000000000000000000000000000000000c0/"+big.NewInt(int64(i+1)).String(), c.Token)
		assert.Equal(t, "1", c.Amount)
		assert.Equal(t, common.HexToAddress(dest).Hex(), c.RecipientAddress)
	}
	assert.Equal(t, "0xtx3", res.LastReference())
}

func TestSubmitAbortsAfterRejectedItem(t *testing.T) {
	w := &tokenWallet{failAt: 2, result: wallet.SendTokenResult{Success: false, Reason: "rejected_by_user"}}
	res := NewSubmitter(w, 8453, nil).Submit(context.Background(), NewTarget(dest), items(3))

	assert.Equal(t, Failed, res.State)
	assert.ErrorIs(t, res.Err, ErrTransferRejected)
	assert.Contains(t, res.Err.Error(), "rejected_by_user")
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 3, res.Total)
	assert.Len(t, w.calls, 2, "item 3 must never reach the wallet")
}

func TestSubmitLowLevelCallData(t *testing.T) {
	w := &txWallet{}
	refs := []NFTReference{{Contract: "0x1", TokenID: "0x0"}}
	res := NewSubmitter(w, 8453, nil).Submit(context.Background(), NewTarget(dest), refs)

	require.NoError(t, res.Err)
	assert.Equal(t, StrategySendTransaction, res.Strategy)
	require.Len(t, w.calls, 1)

	tx := w.calls[0]
	assert.Equal(t, common.HexToAddress("0x1"), tx.To)
	assert.Equal(t, common.HexToAddress(owner), tx.From)
	assert.Zero(t, tx.Value.Sign())

	data := hex.EncodeToString(tx.Data)
	require.Len(t, data, 8+3*64)
	assert.Equal(t, "42842e0e", data[:8])
	assert.Equal(t, strings.Repeat("0", 24)+owner[2:], data[8:72])
	assert.Equal(t, strings.Repeat("0", 24)+dest[2:], data[72:136])
	assert.Equal(t, strings.Repeat("0", 64), data[136:])
}

func TestSubmitLowLevelSequentialAndMissingHash(t *testing.T) {
	w := &txWallet{hashes: []string{"0xa", ""}}
	res := NewSubmitter(w, 8453, nil).Submit(context.Background(), NewTarget(dest), items(3))

	assert.Equal(t, Failed, res.State)
	assert.ErrorIs(t, res.Err, ErrTransferFailed)
	assert.Equal(t, 1, res.Succeeded)
	assert.Len(t, w.calls, 2)
	assert.Equal(t, 1, w.maxSeen, "wallet calls never overlap")
}

func TestSubmitLowLevelTransportError(t *testing.T) {
	w := &txWallet{err: errors.New("connection refused")}
	res := NewSubmitter(w, 8453, nil).Submit(context.Background(), NewTarget(dest), items(1))
	assert.ErrorIs(t, res.Err, ErrTransferFailed)
}

func TestSubmitPrefersHighLevel(t *testing.T) {
	tw, xw := &tokenWallet{}, &txWallet{}
	res := NewSubmitter(bothWallet{tw, xw}, 8453, nil).Submit(context.Background(), NewTarget(dest), items(2))
	require.NoError(t, res.Err)
	assert.Len(t, tw.calls, 2)
	assert.Empty(t, xw.calls)
}

func TestSubmitBadTokenIDSubmitsNothing(t *testing.T) {
	w := &tokenWallet{}
	refs := append(items(1), NFTReference{Contract: "0x00000000000000000000000000000000000000c0", TokenID: "-3"})
	res := NewSubmitter(w, 8453, nil).Submit(context.Background(), NewTarget(dest), refs)
	assert.ErrorIs(t, res.Err, ErrTransferFailed)
	assert.Zero(t, res.Succeeded)
	assert.Empty(t, w.calls)
}

func TestSubmitCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := &tokenWallet{}
	res := NewSubmitter(w, 8453, nil).Submit(ctx, NewTarget(dest), items(2))
	assert.ErrorIs(t, res.Err, ErrTransferFailed)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Empty(t, w.calls)
}

func TestParseTokenID(t *testing.T) {
	cases := map[string]struct {
		in   any
		want string
	}{
		"decimal":     {"42", "42"},
		"hex":         {"0x2a", "42"},
		"int":         {42, "42"},
		"float":       {float64(42), "42"},
		"json number": {json.Number("42"), "42"},
		"big":         {big.NewInt(42), "42"},
		"zero hex":    {"0x0", "0"},
		"uint256 max": {"0x" + strings.Repeat("f", 64), new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)).String()},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := DecimalTokenID(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, bad := range []any{nil, "", "0x", "abc", "-1", 1.5, "0x1" + strings.Repeat("0", 64), struct{}{}} {
		_, err := ParseTokenID(bad)
		assert.Error(t, err, "%v", bad)
	}
}

func TestAssetID(t *testing.T) {
	c := common.HexToAddress("0xAbCdEf0000000000000000000000000000000001")
	assert.Equal(t, "eip155:8453/erc721:0xabcdef0000000000000000000000000000000001/7", AssetID(8453, c, big.NewInt(7)))
}

func TestFlowTransitions(t *testing.T) {
	f := NewFlow(items(1))
	id := f.ID
	require.Equal(t, CollectingRecipient, f.State)

	require.NoError(t, f.SetQuery("vita"))
	assert.ErrorIs(t, f.ChooseTarget(NewTarget("vita")), ErrInvalidRecipient)
	assert.Equal(t, CollectingRecipient, f.State)

	entry := directory.Entry{FID: 1, Username: "vitalik", VerifiedAddresses: []string{dest}}
	require.NoError(t, f.ChooseTarget(EntryTarget(entry)))
	assert.Equal(t, ConfirmingSend, f.State)
	assert.Equal(t, "@vitalik (0x2222…2222)", f.Target.Label())

	require.NoError(t, f.Back())
	assert.Equal(t, CollectingRecipient, f.State)
	assert.Equal(t, "vita", f.Query)
	assert.Nil(t, f.Target)

	require.NoError(t, f.ChooseTarget(NewTarget(dest)))
	target, err := f.Confirm()
	require.NoError(t, err)
	assert.Equal(t, dest, target.Address)
	assert.Equal(t, Sending, f.State)
	assert.ErrorIs(t, f.Back(), ErrInvalidTransition)

	require.NoError(t, f.Finish(Result{State: Complete, Succeeded: 1, Total: 1}))
	assert.Equal(t, Complete, f.State)

	f.Close()
	assert.Equal(t, CollectingRecipient, f.State)
	assert.Empty(t, f.Query)
	assert.Nil(t, f.Result)
	assert.NotEqual(t, id, f.ID)
}

func TestFlowFailedAndEmptySelection(t *testing.T) {
	f := NewFlow(items(2))
	require.NoError(t, f.ChooseTarget(NewTarget(dest)))
	_, err := f.Confirm()
	require.NoError(t, err)
	require.NoError(t, f.Finish(Result{State: Failed, Err: ErrTransferRejected}))
	assert.Equal(t, Failed, f.State)
	assert.True(t, f.State.Terminal())

	empty := NewFlow(nil)
	require.NoError(t, empty.ChooseTarget(NewTarget(dest)))
	_, err = empty.Confirm()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, ConfirmingSend, empty.State)
}
