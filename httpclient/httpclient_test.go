package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "k", r.Header.Get("x-api-key"))
		_, _ = w.Write([]byte(`{"name":"base"}`))
	}))
	defer srv.Close()

	var out struct {
		Name string `json:"name"`
	}
	h := http.Header{}
	h.Set("x-api-key", "k")
	require.NoError(t, GetJSON(context.Background(), New(0, time.Second), srv.URL, h, &out))
	assert.Equal(t, "base", out.Name)
}

func TestGetJSONStatusError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := GetJSON(context.Background(), New(1, time.Second), srv.URL+"/v2/x", nil, &struct{}{})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.EqualValues(t, 2, calls.Load(), "one retry on 5xx")
}

func TestGetJSONNoRetryOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := GetJSON(context.Background(), New(3, time.Second), srv.URL, nil, nil)
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestRedact(t *testing.T) {
	p := "/nft/v3/abcdefghijklmnopqrstuvwxyz0123456789/getNFTsForOwner"
	assert.Equal(t, "/nft/v3/…/getNFTsForOwner", redact(p))
	assert.Equal(t, "/short", redact("/short"))
}
