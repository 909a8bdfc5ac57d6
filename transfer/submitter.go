// Package transfer moves NFTs to a resolved recipient through a wallet
// provider, one wallet interaction per token, and models the send flow.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"base-nft-tui/config"
	"base-nft-tui/metrics"
	"base-nft-tui/wallet"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/google/uuid"
)

// Submission strategies
const (
	StrategySendToken       = "sendToken"
	StrategySendTransaction = "eth_sendTransaction"
)

// ItemResult is one submitted item and its transaction reference
type ItemResult struct {
	Item      NFTReference
	Reference string
}

// Result is the outcome of one Submit call
type Result struct {
	RunID     string
	State     State
	Strategy  string
	Succeeded int
	Total     int
	Items     []ItemResult
	Err       error
}

// Summary renders "N of M succeeded"
func (r Result) Summary() string {
	return fmt.Sprintf("%d of %d succeeded", r.Succeeded, r.Total)
}

// LastReference returns the most recent transaction reference, if any
func (r Result) LastReference() string {
	for i := len(r.Items) - 1; i >= 0; i-- {
		if r.Items[i].Reference != "" {
			return r.Items[i].Reference
		}
	}
	return ""
}

// Submitter sends a batch of NFTs strictly one after the other
type Submitter struct {
	provider wallet.Provider
	chainID  int64
	logger   *log.Logger

	// ItemTimeout bounds each wallet interaction
	ItemTimeout time.Duration
}

// NewSubmitter creates a submitter. provider may be nil, in which case every
// submission fails with ErrWalletUnavailable.
func NewSubmitter(provider wallet.Provider, chainID int64, logger *log.Logger) *Submitter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Submitter{
		provider:    provider,
		chainID:     chainID,
		logger:      logger,
		ItemTimeout: config.WalletTimeout,
	}
}

type preparedItem struct {
	ref      NFTReference
	contract common.Address
	tokenID  *big.Int
}

// Submit transfers items to target in input order. The first failing item
// stops the batch; items already submitted stay submitted.
func (s *Submitter) Submit(ctx context.Context, target Target, items []NFTReference) Result {
	res := Result{
		RunID: uuid.NewString(),
		State: Sending,
		Total: len(items),
	}
	logger := s.logger.With("run", res.RunID[:8])

	to, err := target.Recipient()
	if err != nil {
		return s.fail(logger, res, err)
	}

	var (
		tokens  wallet.TokenSender
		txs     wallet.TransactionSender
		hasHigh bool
		hasLow  bool
	)
	if s.provider != nil {
		tokens, hasHigh = s.provider.(wallet.TokenSender)
		txs, hasLow = s.provider.(wallet.TransactionSender)
	}
	switch {
	case hasHigh:
		res.Strategy = StrategySendToken
	case hasLow:
		res.Strategy = StrategySendTransaction
	default:
		return s.fail(logger, res, ErrWalletUnavailable)
	}

	prepared := make([]preparedItem, 0, len(items))
	for i, it := range items {
		contract, err := ParseContract(it.Contract)
		if err != nil {
			return s.fail(logger, res, fmt.Errorf("%w: item %d: %w", ErrTransferFailed, i+1, err))
		}
		id, err := ParseTokenID(it.TokenID)
		if err != nil {
			return s.fail(logger, res, fmt.Errorf("%w: item %d: %w", ErrTransferFailed, i+1, err))
		}
		prepared = append(prepared, preparedItem{ref: it, contract: contract, tokenID: id})
	}

	var from common.Address
	if res.Strategy == StrategySendTransaction {
		from, err = txs.From(ctx)
		if err != nil {
			return s.fail(logger, res, fmt.Errorf("%w: %w", ErrWalletUnavailable, err))
		}
	}

	logger.Info("submitting transfers", "strategy", res.Strategy, "items", len(prepared), "to", to.Hex(), "wallet", s.provider.Name())

	for i, it := range prepared {
		if err := ctx.Err(); err != nil {
			return s.fail(logger, res, fmt.Errorf("%w: %w", ErrTransferFailed, err))
		}

		var ref string
		if res.Strategy == StrategySendToken {
			ref, err = s.sendToken(ctx, tokens, to, it)
		} else {
			ref, err = s.sendTransaction(ctx, txs, from, to, it)
		}
		if err != nil {
			metrics.ObserveTransfer(res.Strategy, outcome(err))
			return s.fail(logger, res, fmt.Errorf("item %d of %d: %w", i+1, len(prepared), err))
		}

		metrics.ObserveTransfer(res.Strategy, "ok")
		res.Succeeded++
		res.Items = append(res.Items, ItemResult{Item: it.ref, Reference: ref})
		logger.Info("transfer submitted", "item", i+1, "contract", it.contract.Hex(), "token", it.tokenID, "tx", ref)
	}

	res.State = Complete
	logger.Info("transfers complete", "summary", res.Summary())
	return res
}

func (s *Submitter) itemContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.ItemTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.ItemTimeout)
}

func (s *Submitter) sendToken(ctx context.Context, w wallet.TokenSender, to common.Address, it preparedItem) (string, error) {
	ctx, cancel := s.itemContext(ctx)
	defer cancel()

	out, err := w.SendToken(ctx, wallet.SendTokenRequest{
		Token:            AssetID(s.chainID, it.contract, it.tokenID),
		Amount:           "1",
		RecipientAddress: to.Hex(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	if !out.Success {
		return "", fmt.Errorf("%w: %s", ErrTransferRejected, out.FailureReason())
	}
	return out.Transaction(), nil
}

func (s *Submitter) sendTransaction(ctx context.Context, w wallet.TransactionSender, from, to common.Address, it preparedItem) (string, error) {
	data, err := EncodeSafeTransferFrom(from, to, it.tokenID)
	if err != nil {
		return "", fmt.Errorf("%w: encode call data: %w", ErrTransferFailed, err)
	}

	ctx, cancel := s.itemContext(ctx)
	defer cancel()

	hash, err := w.SendTransaction(ctx, wallet.TxRequest{
		From:  from,
		To:    it.contract,
		Data:  data,
		Value: new(big.Int),
	})
	if err != nil {
		// a JSON-RPC error object means the signer answered and declined
		var rpcErr gethrpc.Error
		if errors.As(err, &rpcErr) {
			return "", fmt.Errorf("%w: %w", ErrTransferRejected, err)
		}
		return "", fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	if hash == "" {
		return "", fmt.Errorf("%w: wallet returned no transaction hash", ErrTransferFailed)
	}
	return hash, nil
}

func (s *Submitter) fail(logger *log.Logger, res Result, err error) Result {
	res.State = Failed
	res.Err = err
	logger.Error("transfer aborted", "err", err, "summary", res.Summary())
	return res
}

func outcome(err error) string {
	if errors.Is(err, ErrTransferRejected) {
		return "rejected"
	}
	return "failed"
}
