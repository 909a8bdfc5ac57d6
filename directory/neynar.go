package directory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"base-nft-tui/config"
	"base-nft-tui/httpclient"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrDirectoryLookupFailed wraps every transport, status and decode failure
var ErrDirectoryLookupFailed = errors.New("directory lookup failed")

// Client is the identity directory the resolver queries
type Client interface {
	SearchByName(ctx context.Context, name string, limit int) ([]Entry, error)
	SearchByAddress(ctx context.Context, address string) ([]Entry, error)
}

// NeynarClient talks to the Neynar v2 Farcaster API
type NeynarClient struct {
	baseURL string
	apiKey  string
	http    *retryablehttp.Client
}

// NewNeynarClient creates a client. hc may be nil.
func NewNeynarClient(baseURL, apiKey string, hc *retryablehttp.Client) *NeynarClient {
	if hc == nil {
		hc = httpclient.New(2, config.RequestTimeout)
	}
	return &NeynarClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    hc,
	}
}

type neynarUser struct {
	FID               uint64 `json:"fid"`
	Username          string `json:"username"`
	DisplayName       string `json:"display_name"`
	PfpURL            string `json:"pfp_url"`
	CustodyAddress    string `json:"custody_address"`
	VerifiedAddresses struct {
		EthAddresses []string `json:"eth_addresses"`
	} `json:"verified_addresses"`
}

func (u neynarUser) entry() Entry {
	return Entry{
		FID:               u.FID,
		Username:          u.Username,
		DisplayName:       u.DisplayName,
		PfpURL:            u.PfpURL,
		CustodyAddress:    u.CustodyAddress,
		VerifiedAddresses: u.VerifiedAddresses.EthAddresses,
	}
}

type searchResponse struct {
	Result struct {
		Users []neynarUser `json:"users"`
	} `json:"result"`
}

// SearchByName runs GET /v2/farcaster/user/search?q=<name>&limit=<n>
func (c *NeynarClient) SearchByName(ctx context.Context, name string, limit int) ([]Entry, error) {
	rawQuery := "q=" + url.QueryEscape(name) + "&limit=" + strconv.Itoa(limit)

	var resp searchResponse
	if err := c.get(ctx, "/v2/farcaster/user/search", rawQuery, &resp); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(resp.Result.Users))
	for _, u := range resp.Result.Users {
		entries = append(entries, u.entry())
	}
	return entries, nil
}

// SearchByAddress runs GET /v2/farcaster/user/bulk-by-address?addresses=<addr>
func (c *NeynarClient) SearchByAddress(ctx context.Context, address string) ([]Entry, error) {
	q := url.Values{}
	q.Set("addresses", address)

	resp := map[string][]neynarUser{}
	if err := c.get(ctx, "/v2/farcaster/user/bulk-by-address", q.Encode(), &resp); err != nil {
		return nil, err
	}

	users, ok := resp[strings.ToLower(address)]
	if !ok {
		for k, v := range resp {
			if strings.EqualFold(k, address) {
				users = v
				break
			}
		}
	}

	entries := make([]Entry, 0, len(users))
	for _, u := range users {
		entries = append(entries, u.entry())
	}
	return entries, nil
}

func (c *NeynarClient) get(ctx context.Context, path, rawQuery string, out any) error {
	h := http.Header{}
	if c.apiKey != "" {
		h.Set("x-api-key", c.apiKey)
	}
	u := c.baseURL + path + "?" + rawQuery
	if err := httpclient.GetJSON(ctx, c.http, u, h, out); err != nil {
		return fmt.Errorf("%w: %w", ErrDirectoryLookupFailed, err)
	}
	return nil
}
