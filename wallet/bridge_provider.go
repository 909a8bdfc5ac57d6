package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"base-nft-tui/config"
	"base-nft-tui/httpclient"

	"github.com/hashicorp/go-retryablehttp"
)

// BridgeProvider forwards the host wallet's sendToken action over HTTP. The
// bridge shows the signing prompt, so its calls are never retried.
type BridgeProvider struct {
	baseURL string
	http    *retryablehttp.Client
}

// NewBridgeProvider creates a bridge client. hc may be nil.
func NewBridgeProvider(baseURL string, hc *retryablehttp.Client) *BridgeProvider {
	if hc == nil {
		hc = httpclient.New(0, config.WalletTimeout)
	}
	return &BridgeProvider{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Name implements Provider
func (p *BridgeProvider) Name() string { return "bridge:" + p.baseURL }

// SendToken posts req to {url}/sendToken
func (p *BridgeProvider) SendToken(ctx context.Context, req SendTokenRequest) (SendTokenResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return SendTokenResult{}, err
	}
	r, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/sendToken", bytes.NewReader(body))
	if err != nil {
		return SendTokenResult{}, err
	}
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json")

	var res SendTokenResult
	if err := httpclient.Do(p.http, r, &res); err != nil {
		return SendTokenResult{}, err
	}
	return res, nil
}
