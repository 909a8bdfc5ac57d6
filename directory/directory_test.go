package directory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"base-nft-tui/httpclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	addrA = "0x1111111111111111111111111111111111111111"
	addrB = "0x2222222222222222222222222222222222222222"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, NameLike, Classify("vita"))
	assert.Equal(t, NameLike, Classify("0x"))
	assert.Equal(t, NameLike, Classify("0xAbC1234"))
	assert.Equal(t, NameLike, Classify("0xAbC12345"), "exactly 10 characters is not enough")
	assert.Equal(t, AddressLike, Classify("0xAbC123456"))
	assert.Equal(t, AddressLike, Classify(addrA))
	assert.Equal(t, AddressLike, Classify("0XABC1234567"))
}

func TestEntryAddresses(t *testing.T) {
	e := Entry{
		CustodyAddress:    addrB,
		VerifiedAddresses: []string{"not-an-address", addrA, "0x1111111111111111111111111111111111111111"},
	}
	assert.Equal(t, []string{addrA, addrB}, e.Addresses())
	assert.Equal(t, addrA, e.PrimaryAddress())

	assert.Empty(t, Entry{Username: "nobody"}.PrimaryAddress())
	assert.Equal(t, "@vitalik", Entry{Username: "vitalik"}.Handle())
}

func TestNeynarSearchByName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/farcaster/user/search", r.URL.Path)
		assert.Equal(t, "q=vita&limit=5", r.URL.RawQuery)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		_, _ = w.Write([]byte(`{"result":{"users":[
			{"fid":5650,"username":"vitalik.eth","display_name":"Vitalik Buterin","pfp_url":"https://p/1.png",
			 "custody_address":"` + addrB + `","verified_addresses":{"eth_addresses":["` + addrA + `"]}},
			{"fid":7,"username":"vitabot","display_name":"Vita Bot"}
		]}}`))
	}))
	defer srv.Close()

	c := NewNeynarClient(srv.URL+"/", "key", httpclient.New(0, time.Second))
	entries, err := c.SearchByName(context.Background(), "vita", 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(5650), entries[0].FID)
	assert.Equal(t, "Vitalik Buterin", entries[0].DisplayName)
	assert.Equal(t, []string{addrA}, entries[0].VerifiedAddresses)
	assert.Equal(t, addrB, entries[0].CustodyAddress)
}

func TestNeynarSearchByAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/farcaster/user/bulk-by-address", r.URL.Path)
		assert.Equal(t, "0xAbC1111111111111111111111111111111111111", r.URL.Query().Get("addresses"))
		_, _ = w.Write([]byte(`{"0xabc1111111111111111111111111111111111111":[{"fid":1,"username":"alice","custody_address":"` + addrA + `"}]}`))
	}))
	defer srv.Close()

	c := NewNeynarClient(srv.URL, "", httpclient.New(0, time.Second))
	entries, err := c.SearchByAddress(context.Background(), "0xAbC1111111111111111111111111111111111111")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].Username)
}

func TestNeynarStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewNeynarClient(srv.URL, "bad", httpclient.New(0, time.Second))
	_, err := c.SearchByName(context.Background(), "vita", 5)
	assert.True(t, errors.Is(err, ErrDirectoryLookupFailed))
}

type call struct {
	kind  Kind
	query string
	limit int
}

type fakeClient struct {
	mu      sync.Mutex
	calls   []call
	byName  []Entry
	byAddr  []Entry
	err     error
	release map[string]chan struct{}
}

func (f *fakeClient) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeClient) wait(ctx context.Context, q string) {
	if ch, ok := f.release[q]; ok {
		select {
		case <-ch:
		case <-ctx.Done():
		}
	}
}

func (f *fakeClient) SearchByName(ctx context.Context, name string, limit int) ([]Entry, error) {
	f.record(call{NameLike, name, limit})
	f.wait(ctx, name)
	return f.byName, f.err
}

func (f *fakeClient) SearchByAddress(ctx context.Context, address string) ([]Entry, error) {
	f.record(call{AddressLike, address, 0})
	f.wait(ctx, address)
	return f.byAddr, f.err
}

func TestResolveShortQueryMakesNoCall(t *testing.T) {
	fc := &fakeClient{}
	r := NewResolver(fc, nil)
	for _, q := range []string{"", "v", " v ", "é", "🙂", "名", " é "} {
		assert.Empty(t, r.Resolve(context.Background(), q))
	}
	assert.Empty(t, fc.calls)
}

func TestTooShortCountsCharacters(t *testing.T) {
	assert.True(t, TooShort("é"))
	assert.True(t, TooShort("🙂"))
	assert.False(t, TooShort("éa"))
	assert.False(t, TooShort("名字"))
	assert.True(t, TooShort("  v  "))
}

func TestResolvePicksLookupPath(t *testing.T) {
	fc := &fakeClient{
		byName: []Entry{{FID: 1, Username: "vitalik", CustodyAddress: addrA}},
		byAddr: []Entry{{FID: 2, Username: "bob", CustodyAddress: addrB}},
	}
	r := NewResolver(fc, nil)

	got := r.Resolve(context.Background(), "vita")
	require.Len(t, got, 1)
	assert.Equal(t, uint64(1), got[0].FID)

	got = r.Resolve(context.Background(), "0xAbC123456789")
	require.Len(t, got, 1)
	assert.Equal(t, uint64(2), got[0].FID)

	assert.Equal(t, []call{
		{NameLike, "vita", DefaultSearchLimit},
		{AddressLike, "0xAbC123456789", 0},
	}, fc.calls)
}

func TestResolveDropsEntriesWithoutAddress(t *testing.T) {
	fc := &fakeClient{
		byName: []Entry{
			{FID: 1, Username: "first", VerifiedAddresses: []string{addrA}},
			{FID: 2, Username: "noaddr"},
			{FID: 3, Username: "third", CustodyAddress: addrB},
		},
		byAddr: []Entry{{FID: 4, Username: "bare"}},
	}
	r := NewResolver(fc, nil)

	got := r.Resolve(context.Background(), "somebody")
	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].FID)
	assert.Equal(t, uint64(3), got[1].FID)

	assert.Empty(t, r.Resolve(context.Background(), addrA))
}

func TestResolveFailureIsEmpty(t *testing.T) {
	fc := &fakeClient{err: errors.New("connection reset")}
	r := NewResolver(fc, nil)
	assert.NotPanics(t, func() {
		assert.Empty(t, r.Resolve(context.Background(), "vita"))
	})
}

func TestSequencerOutOfOrderResponses(t *testing.T) {
	fc := &fakeClient{
		byName:  []Entry{{FID: 9, CustodyAddress: addrA}},
		release: map[string]chan struct{}{"vi": make(chan struct{}), "vita": make(chan struct{})},
	}
	r := NewResolver(fc, nil)
	var seq Sequencer

	type applied struct {
		seq   uint64
		query string
	}
	var (
		mu      sync.Mutex
		visible []applied
		wg      sync.WaitGroup
	)
	lookup := func(q string) {
		s := seq.Next()
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Resolve(context.Background(), q)
			mu.Lock()
			defer mu.Unlock()
			if seq.IsLatest(s) {
				visible = append(visible, applied{s, q})
			}
		}()
	}

	lookup("vi")
	lookup("vita")

	// the newer query answers first, the older one last
	close(fc.release["vita"])
	time.Sleep(20 * time.Millisecond)
	close(fc.release["vi"])
	wg.Wait()

	require.Len(t, visible, 1)
	assert.Equal(t, "vita", visible[0].query)
	assert.False(t, seq.IsLatest(0))
}
