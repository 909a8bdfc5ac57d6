package directory

import (
	"context"
	"errors"
	"io"
	"strings"

	"base-nft-tui/metrics"

	"github.com/charmbracelet/log"
)

// Resolver turns a recipient query into candidate entries. It never fails:
// lookups that go wrong are logged and resolve to no results.
type Resolver struct {
	client Client
	logger *log.Logger
	limit  int
}

// NewResolver wraps a directory client
func NewResolver(client Client, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{client: client, logger: logger, limit: DefaultSearchLimit}
}

// Resolve looks the query up. Entries keep the provider's order; entries
// without a usable wallet address are dropped on both lookup paths.
func (r *Resolver) Resolve(ctx context.Context, query string) []Entry {
	q := strings.TrimSpace(query)
	if TooShort(q) || r.client == nil {
		return nil
	}

	kind := Classify(q)
	var (
		entries []Entry
		err     error
	)
	switch kind {
	case AddressLike:
		entries, err = r.client.SearchByAddress(ctx, q)
	default:
		entries, err = r.client.SearchByName(ctx, q, r.limit)
	}

	if err != nil {
		if !errors.Is(err, ErrDirectoryLookupFailed) {
			err = errors.Join(ErrDirectoryLookupFailed, err)
		}
		outcome := "error"
		if errors.Is(err, context.Canceled) {
			outcome = "canceled"
		}
		metrics.ObserveLookup(kind.String(), outcome)
		r.logger.Warn("directory lookup failed", "kind", kind, "query", q, "err", err)
		return nil
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.PrimaryAddress() == "" {
			continue
		}
		out = append(out, e)
	}
	metrics.ObserveLookup(kind.String(), "ok")
	r.logger.Debug("directory lookup", "kind", kind, "query", q, "results", len(out), "dropped", len(entries)-len(out))
	return out
}
