package nft

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"base-nft-tui/config"
	"base-nft-tui/httpclient"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	ownerPageSize = 100
	// maxOwnerPages stops a provider that keeps returning a page key
	maxOwnerPages = 50
	salesLimit    = 50
)

// ErrMissingAPIKey is returned when no Alchemy key is configured
var ErrMissingAPIKey = errors.New("ALCHEMY_API_KEY is not set")

// AlchemyClient reads the Alchemy NFT v3 API
type AlchemyClient struct {
	baseURL string
	apiKey  string
	http    *retryablehttp.Client
}

// NewAlchemyClient creates a client. hc may be nil.
func NewAlchemyClient(baseURL, apiKey string, hc *retryablehttp.Client) *AlchemyClient {
	if hc == nil {
		hc = httpclient.New(2, config.RequestTimeout)
	}
	return &AlchemyClient{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, http: hc}
}

type alchemyNFT struct {
	Contract struct {
		Address         string `json:"address"`
		Name            string `json:"name"`
		TokenType       string `json:"tokenType"`
		OpenSeaMetadata struct {
			FloorPrice     *float64 `json:"floorPrice"`
			CollectionName string   `json:"collectionName"`
		} `json:"openSeaMetadata"`
	} `json:"contract"`
	TokenID     string `json:"tokenId"`
	TokenType   string `json:"tokenType"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       struct {
		CachedURL    string `json:"cachedUrl"`
		ThumbnailURL string `json:"thumbnailUrl"`
		OriginalURL  string `json:"originalUrl"`
	} `json:"image"`
	Collection *struct {
		Name string `json:"name"`
	} `json:"collection"`
	Raw struct {
		Metadata map[string]any `json:"metadata"`
	} `json:"raw"`
}

func (a alchemyNFT) nft() NFT {
	n := NFT{
		Contract:    a.Contract.Address,
		TokenID:     a.TokenID,
		TokenType:   a.TokenType,
		Name:        a.Name,
		Description: a.Description,
		FloorPrice:  a.Contract.OpenSeaMetadata.FloorPrice,
		Metadata:    a.Raw.Metadata,
	}
	if n.TokenType == "" {
		n.TokenType = a.Contract.TokenType
	}

	switch {
	case a.Collection != nil && a.Collection.Name != "":
		n.Collection = a.Collection.Name
	case a.Contract.OpenSeaMetadata.CollectionName != "":
		n.Collection = a.Contract.OpenSeaMetadata.CollectionName
	case a.Contract.Name != "":
		n.Collection = a.Contract.Name
	default:
		n.Collection = "Unknown Collection"
	}

	for _, img := range []string{a.Image.CachedURL, a.Image.ThumbnailURL, a.Image.OriginalURL} {
		if img != "" {
			n.Image = img
			break
		}
	}
	return n
}

type ownerPage struct {
	OwnedNfts  []alchemyNFT `json:"ownedNfts"`
	PageKey    string       `json:"pageKey"`
	TotalCount int          `json:"totalCount"`
}

// OwnedNFTs follows pageKey until every page of the owner's tokens is read
func (c *AlchemyClient) OwnedNFTs(ctx context.Context, owner string) ([]NFT, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var (
		out     []NFT
		pageKey string
	)
	for page := 0; page < maxOwnerPages; page++ {
		q := url.Values{}
		q.Set("owner", owner)
		q.Set("withMetadata", "true")
		q.Set("pageSize", strconv.Itoa(ownerPageSize))
		if pageKey != "" {
			q.Set("pageKey", pageKey)
		}

		var resp ownerPage
		if err := httpclient.GetJSON(ctx, c.http, c.endpoint("getNFTsForOwner", q), http.Header{}, &resp); err != nil {
			return nil, fmt.Errorf("list nfts: %w", err)
		}
		for _, a := range resp.OwnedNfts {
			out = append(out, a.nft())
		}

		if resp.PageKey == "" {
			return out, nil
		}
		pageKey = resp.PageKey
	}
	return out, fmt.Errorf("list nfts: stopped after %d pages", maxOwnerPages)
}

type alchemyFee struct {
	Amount   string `json:"amount"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

type alchemySale struct {
	Marketplace     string      `json:"marketplace"`
	BuyerAddress    string      `json:"buyerAddress"`
	SellerAddress   string      `json:"sellerAddress"`
	SellerFee       *alchemyFee `json:"sellerFee"`
	BlockNumber     uint64      `json:"blockNumber"`
	BlockTimestamp  string      `json:"blockTimestamp"`
	TransactionHash string      `json:"transactionHash"`
}

func (a alchemySale) sale() Sale {
	s := Sale{
		BlockNumber: a.BlockNumber,
		Marketplace: a.Marketplace,
		Price:       "0",
		Buyer:       a.BuyerAddress,
		Seller:      a.SellerAddress,
		TxHash:      a.TransactionHash,
	}
	if a.SellerFee != nil && a.SellerFee.Amount != "" {
		s.Price = a.SellerFee.Amount
		s.Symbol = a.SellerFee.Symbol
	}
	if ts, err := time.Parse(time.RFC3339, a.BlockTimestamp); err == nil {
		s.Timestamp = ts
	}
	return s
}

// Sales returns the most recent sales of one token, newest first
func (c *AlchemyClient) Sales(ctx context.Context, contract, tokenID string) ([]Sale, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	q := url.Values{}
	q.Set("contractAddress", contract)
	q.Set("tokenId", tokenID)
	q.Set("order", "desc")
	q.Set("limit", strconv.Itoa(salesLimit))

	var resp struct {
		NftSales []alchemySale `json:"nftSales"`
	}
	if err := httpclient.GetJSON(ctx, c.http, c.endpoint("getNFTSales", q), http.Header{}, &resp); err != nil {
		return nil, fmt.Errorf("sales history: %w", err)
	}

	sales := make([]Sale, 0, len(resp.NftSales))
	for _, s := range resp.NftSales {
		sales = append(sales, s.sale())
	}
	return sales, nil
}

func (c *AlchemyClient) endpoint(method string, q url.Values) string {
	return c.baseURL + "/nft/v3/" + url.PathEscape(c.apiKey) + "/" + method + "?" + q.Encode()
}
