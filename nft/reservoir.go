package nft

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"base-nft-tui/config"
	"base-nft-tui/httpclient"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/patrickmn/go-cache"
)

const (
	statsTTL     = 5 * time.Minute
	statsCleanup = 10 * time.Minute
)

// ErrCollectionNotFound is returned when the provider knows no such collection
var ErrCollectionNotFound = errors.New("collection not found")

// ReservoirClient reads collection stats from Reservoir v7 and keeps them
// for a few minutes.
type ReservoirClient struct {
	baseURL string
	http    *retryablehttp.Client
	cache   *cache.Cache
	logger  *log.Logger
}

// NewReservoirClient creates a client. hc and logger may be nil.
func NewReservoirClient(baseURL string, hc *retryablehttp.Client, logger *log.Logger) *ReservoirClient {
	if hc == nil {
		hc = httpclient.New(2, config.RequestTimeout)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ReservoirClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		cache:   cache.New(statsTTL, statsCleanup),
		logger:  logger,
	}
}

type reservoirPrice struct {
	Price *struct {
		Amount *struct {
			Native *float64 `json:"native"`
		} `json:"amount"`
	} `json:"price"`
}

func (p *reservoirPrice) native() *float64 {
	if p == nil || p.Price == nil || p.Price.Amount == nil {
		return nil
	}
	return p.Price.Amount.Native
}

type reservoirCollection struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	TokenCount  any             `json:"tokenCount"`
	FloorAsk    *reservoirPrice `json:"floorAsk"`
	TopBid      *reservoirPrice `json:"topBid"`
}

// Collection returns floor, top offer, description and supply
func (c *ReservoirClient) Collection(ctx context.Context, contract string) (CollectionStats, error) {
	key := strings.ToLower(strings.TrimSpace(contract))
	if v, ok := c.cache.Get(key); ok {
		c.logger.Debug("collection stats cache hit", "contract", key)
		return v.(CollectionStats), nil
	}

	q := url.Values{}
	q.Set("id", contract)

	var resp struct {
		Collections []reservoirCollection `json:"collections"`
	}
	if err := httpclient.GetJSON(ctx, c.http, c.baseURL+"/collections/v7?"+q.Encode(), http.Header{}, &resp); err != nil {
		return CollectionStats{}, fmt.Errorf("collection stats: %w", err)
	}
	if len(resp.Collections) == 0 {
		return CollectionStats{}, fmt.Errorf("%w: %s", ErrCollectionNotFound, contract)
	}

	col := resp.Collections[0]
	stats := CollectionStats{
		Name:        col.Name,
		Floor:       col.FloorAsk.native(),
		TopOffer:    col.TopBid.native(),
		Description: col.Description,
		Supply:      supply(col.TokenCount),
	}
	c.cache.Set(key, stats, cache.DefaultExpiration)
	return stats, nil
}

func supply(v any) *string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return nil
	}
	return &s
}
