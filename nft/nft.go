// Package nft reads the owner's tokens, their sales and collection stats
// from the Base data providers.
package nft

import (
	"context"
	"strings"
	"time"

	"base-nft-tui/transfer"
)

// NFT is one owned token as shown in the gallery
type NFT struct {
	Contract    string         `json:"contract"`
	TokenID     string         `json:"tokenId"`
	TokenType   string         `json:"tokenType,omitempty"`
	Name        string         `json:"name"`
	Collection  string         `json:"collection"`
	Description string         `json:"description,omitempty"`
	Image       string         `json:"image,omitempty"`
	FloorPrice  *float64       `json:"floorPrice,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ID is the stable key used for selection and the hidden list
func (n NFT) ID() string {
	return strings.ToLower(n.Contract) + "-" + strings.ToLower(n.TokenID)
}

// Title falls back to the collection name, then to the token id
func (n NFT) Title() string {
	switch {
	case n.Name != "":
		return n.Name
	case n.Collection != "":
		return n.Collection + " #" + n.TokenID
	default:
		return "#" + n.TokenID
	}
}

// Reference converts the token into a transfer item
func (n NFT) Reference() transfer.NFTReference {
	return transfer.NFTReference{
		Contract:   n.Contract,
		TokenID:    n.TokenID,
		Name:       n.Title(),
		Collection: n.Collection,
		Image:      n.Image,
		Metadata:   n.Metadata,
	}
}

// Sale is one marketplace sale of a token
type Sale struct {
	Timestamp   time.Time `json:"timestamp"`
	BlockNumber uint64    `json:"blockNumber"`
	Marketplace string    `json:"marketplace,omitempty"`
	Price       string    `json:"price"`
	Symbol      string    `json:"symbol,omitempty"`
	Buyer       string    `json:"buyer"`
	Seller      string    `json:"seller"`
	TxHash      string    `json:"txHash,omitempty"`
}

// CollectionStats is the market summary of a collection. Every field is
// optional upstream.
type CollectionStats struct {
	Name        string   `json:"name,omitempty"`
	Floor       *float64 `json:"collectionFloor"`
	TopOffer    *float64 `json:"topOffer"`
	Description *string  `json:"description"`
	Supply      *string  `json:"supply"`
}

// Inventory lists tokens and their sales
type Inventory interface {
	OwnedNFTs(ctx context.Context, owner string) ([]NFT, error)
	Sales(ctx context.Context, contract, tokenID string) ([]Sale, error)
}

// CollectionSource returns market stats for a collection contract
type CollectionSource interface {
	Collection(ctx context.Context, contract string) (CollectionStats, error)
}
