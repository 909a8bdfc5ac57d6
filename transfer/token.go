package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var contractRe = regexp.MustCompile(`^0x[0-9a-fA-F]{1,40}$`)

// NFTReference identifies one token to move. TokenID arrives in whatever
// shape the inventory provider used: decimal or hex string, or a number.
type NFTReference struct {
	Contract   string         `json:"contract"`
	TokenID    any            `json:"tokenId"`
	Name       string         `json:"name,omitempty"`
	Collection string         `json:"collection,omitempty"`
	Image      string         `json:"image,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Label is a short display name for the item
func (r NFTReference) Label() string {
	if r.Name != "" {
		return r.Name
	}
	id, err := DecimalTokenID(r.TokenID)
	if err != nil {
		id = fmt.Sprint(r.TokenID)
	}
	return "#" + id
}

// ParseTokenID normalises a token id to a non-negative uint256
func ParseTokenID(v any) (*big.Int, error) {
	var n *big.Int
	switch t := v.(type) {
	case nil:
		return nil, errors.New("token id is missing")
	case string:
		n = parseIntString(t)
	case json.Number:
		n = parseIntString(t.String())
	case *big.Int:
		if t != nil {
			n = new(big.Int).Set(t)
		}
	case int:
		n = big.NewInt(int64(t))
	case int32:
		n = big.NewInt(int64(t))
	case int64:
		n = big.NewInt(t)
	case uint:
		n = new(big.Int).SetUint64(uint64(t))
	case uint32:
		n = new(big.Int).SetUint64(uint64(t))
	case uint64:
		n = new(big.Int).SetUint64(t)
	case float64:
		// JSON numbers decoded into any
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.IsNaN(t) {
			return nil, fmt.Errorf("token id %v is not an integer", t)
		}
		n, _ = new(big.Float).SetFloat64(t).Int(nil)
	default:
		return nil, fmt.Errorf("unsupported token id type %T", v)
	}

	if n == nil {
		return nil, fmt.Errorf("token id %v is not an integer", v)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("token id %s is negative", n)
	}
	if n.BitLen() > 256 {
		return nil, fmt.Errorf("token id %s does not fit in uint256", n)
	}
	return n, nil
}

func parseIntString(s string) *big.Int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
		if s == "" {
			return nil
		}
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil
	}
	return n
}

// DecimalTokenID renders a token id as a base-10 string
func DecimalTokenID(v any) (string, error) {
	n, err := ParseTokenID(v)
	if err != nil {
		return "", err
	}
	return n.String(), nil
}

// ParseContract accepts a 0x-prefixed hex contract address of up to 20 bytes
func ParseContract(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !contractRe.MatchString(s) {
		return common.Address{}, fmt.Errorf("contract %q is not a hex address", s)
	}
	return common.HexToAddress(s), nil
}

// AssetID builds the slash-delimited CAIP-19 id of an ERC-721 token
func AssetID(chainID int64, contract common.Address, tokenID *big.Int) string {
	return fmt.Sprintf("eip155:%d/erc721:%s/%s", chainID, strings.ToLower(contract.Hex()), tokenID.String())
}
