package main

import (
	"base-nft-tui/directory"
	"base-nft-tui/nft"
	"base-nft-tui/rpc"
	"base-nft-tui/transfer"
	"base-nft-tui/wallet"
)

// -------------------- TEA MESSAGES --------------------
// All custom message types for The Elm Architecture

// logInitMsg signals that log viewport should be initialized
type logInitMsg struct{}

// rpcConnectedMsg contains result of RPC connection attempt
type rpcConnectedMsg struct {
	client *rpc.Client
	err    error
}

// balanceLoadedMsg contains the owner's ETH balance
type balanceLoadedMsg struct {
	b rpc.Balance
}

// walletOpenedMsg contains the opened wallet and the account it exposes
type walletOpenedMsg struct {
	provider wallet.Provider
	from     string
	err      error
}

// nftsLoadedMsg contains the owner's tokens
type nftsLoadedMsg struct {
	owner string
	nfts  []nft.NFT
	err   error
}

// collectionLoadedMsg contains collection stats for the detail view
type collectionLoadedMsg struct {
	contract string
	stats    nft.CollectionStats
	err      error
}

// salesLoadedMsg contains sales history for one token
type salesLoadedMsg struct {
	id    string
	sales []nft.Sale
	err   error
}

// ownerLoadedMsg contains the on-chain owner of one token
type ownerLoadedMsg struct {
	id    string
	owner string
	err   error
}

// lookupDueMsg fires once the debounce interval after a keystroke passed
type lookupDueMsg struct {
	seq   uint64
	query string
}

// recipientsResolvedMsg contains directory matches for one query
type recipientsResolvedMsg struct {
	seq     uint64
	query   string
	entries []directory.Entry
}

// transferDoneMsg contains the outcome of one submission run
type transferDoneMsg struct {
	flowID string
	result transfer.Result
}

// clipboardCopiedMsg indicates clipboard copy completed
type clipboardCopiedMsg struct {
	what string
}

// clearClipboardMsg asks to clear clipboard feedback
type clearClipboardMsg struct{}
