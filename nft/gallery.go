package nft

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

type searchable []NFT

func (s searchable) String(i int) string {
	return s[i].Title() + " " + s[i].Collection + " " + s[i].TokenID
}

func (s searchable) Len() int { return len(s) }

// Filter keeps the NFTs matching a fuzzy query, best match first. An empty
// query keeps everything in its original order.
func Filter(nfts []NFT, query string) []NFT {
	query = strings.TrimSpace(query)
	if query == "" {
		return nfts
	}
	matches := fuzzy.FindFrom(query, searchable(nfts))
	out := make([]NFT, 0, len(matches))
	for _, m := range matches {
		out = append(out, nfts[m.Index])
	}
	return out
}

// Visible drops hidden NFTs unless showHidden is set
func Visible(nfts []NFT, hidden func(id string) bool, showHidden bool) []NFT {
	if showHidden || hidden == nil {
		return nfts
	}
	out := make([]NFT, 0, len(nfts))
	for _, n := range nfts {
		if !hidden(n.ID()) {
			out = append(out, n)
		}
	}
	return out
}
