package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"base-nft-tui/directory"
	"base-nft-tui/nft"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInventory struct {
	nfts  []nft.NFT
	sales []nft.Sale
	err   error
}

func (f *fakeInventory) OwnedNFTs(_ context.Context, owner string) ([]nft.NFT, error) {
	return f.nfts, f.err
}

func (f *fakeInventory) Sales(_ context.Context, contract, tokenID string) ([]nft.Sale, error) {
	return f.sales, f.err
}

type fakeCollections struct {
	stats nft.CollectionStats
	err   error
}

func (f fakeCollections) Collection(context.Context, string) (nft.CollectionStats, error) {
	return f.stats, f.err
}

type fakeDirectory struct{}

func (fakeDirectory) SearchByName(context.Context, string, int) ([]directory.Entry, error) {
	return []directory.Entry{{FID: 3, Username: "dwr", CustodyAddress: "0x1111111111111111111111111111111111111111"}}, nil
}

func (fakeDirectory) SearchByAddress(context.Context, string) ([]directory.Entry, error) {
	return nil, nil
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestNFTsRoute(t *testing.T) {
	inv := &fakeInventory{
		nfts:  []nft.NFT{{Contract: "0xc0", TokenID: "1", Name: "One"}},
		sales: []nft.Sale{{Price: "1", Buyer: "0xb", Seller: "0xs"}},
	}
	h := New(inv, nil, nil, nil).Router()

	rec, body := do(t, h, http.MethodGet, "/api/nfts?address=0xowner", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["nfts"], 1)

	rec, body = do(t, h, http.MethodGet, "/api/nfts?history=true&address=0xc0&tokenId=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["sales"], 1)

	rec, body = do(t, h, http.MethodGet, "/api/nfts", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Wallet address is required", body["error"])

	inv.err = errors.New("boom")
	rec, _ = do(t, h, http.MethodGet, "/api/nfts?address=0xowner", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCollectionRoute(t *testing.T) {
	floor := 0.5
	h := New(nil, fakeCollections{stats: nft.CollectionStats{Floor: &floor}}, nil, nil).Router()

	rec, body := do(t, h, http.MethodGet, "/api/opensea-data?contract=0xc0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.5, body["collectionFloor"])
	assert.Contains(t, body, "topOffer")
	assert.Nil(t, body["topOffer"])

	rec, _ = do(t, h, http.MethodGet, "/api/opensea-data", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h = New(nil, fakeCollections{err: nft.ErrCollectionNotFound}, nil, nil).Router()
	rec, _ = do(t, h, http.MethodGet, "/api/opensea-data?contract=0xc0", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecipientsRoute(t *testing.T) {
	h := New(nil, nil, directory.NewResolver(fakeDirectory{}, nil), nil).Router()

	rec, body := do(t, h, http.MethodGet, "/api/recipients?q=dwr", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["users"], 1)

	_, body = do(t, h, http.MethodGet, "/api/recipients?q=d", "")
	assert.Empty(t, body["users"])
}

func TestFeedbackRoute(t *testing.T) {
	h := New(nil, nil, nil, nil).Router()

	rec, body := do(t, h, http.MethodPost, "/api/feedback", `{"message":"love it"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["id"])

	rec, body = do(t, h, http.MethodPost, "/api/feedback", `{"message":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Message is required", body["error"])

	rec, _ = do(t, h, http.MethodGet, "/api/feedback", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestUnconfiguredAndUnknownRoutes(t *testing.T) {
	h := New(nil, nil, nil, nil).Router()

	rec, _ := do(t, h, http.MethodGet, "/api/nfts?address=0x1", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, body := do(t, h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Page not found", body["error"])
}
