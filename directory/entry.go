// Package directory resolves free-text recipient input into Farcaster
// identities and the wallet addresses they control.
package directory

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Entry is one identity record returned by the directory service
type Entry struct {
	FID               uint64   `json:"fid"`
	Username          string   `json:"username"`
	DisplayName       string   `json:"displayName"`
	PfpURL            string   `json:"pfpUrl,omitempty"`
	CustodyAddress    string   `json:"custodyAddress,omitempty"`
	VerifiedAddresses []string `json:"verifiedAddresses,omitempty"`
}

// Addresses returns the usable wallet addresses of the entry, verified
// addresses first, custody address last, without duplicates.
func (e Entry) Addresses() []string {
	var out []string
	seen := make(map[string]bool)
	add := func(a string) {
		a = strings.TrimSpace(a)
		if !common.IsHexAddress(a) || !strings.HasPrefix(a, "0x") {
			return
		}
		k := strings.ToLower(a)
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, common.HexToAddress(a).Hex())
	}
	for _, a := range e.VerifiedAddresses {
		add(a)
	}
	add(e.CustodyAddress)
	return out
}

// PrimaryAddress is the address a transfer to this entry goes to
func (e Entry) PrimaryAddress() string {
	if addrs := e.Addresses(); len(addrs) > 0 {
		return addrs[0]
	}
	return ""
}

// Handle renders the username as @handle
func (e Entry) Handle() string {
	if e.Username == "" {
		return ""
	}
	return "@" + e.Username
}

// Label is the best human-readable name for the entry
func (e Entry) Label() string {
	switch {
	case e.DisplayName != "":
		return e.DisplayName
	case e.Username != "":
		return e.Username
	default:
		return e.PrimaryAddress()
	}
}
