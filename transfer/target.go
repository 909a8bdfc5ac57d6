package transfer

import (
	"fmt"
	"strings"

	"base-nft-tui/directory"
	"base-nft-tui/helpers"

	"github.com/ethereum/go-ethereum/common"
)

// Target is the resolved recipient. Entry is only kept for display.
type Target struct {
	Address string
	Entry   *directory.Entry
}

// NewTarget builds a target for a raw address typed by the user
func NewTarget(address string) Target {
	return Target{Address: strings.TrimSpace(address)}
}

// EntryTarget builds a target from a directory entry's primary address
func EntryTarget(e directory.Entry) Target {
	return Target{Address: e.PrimaryAddress(), Entry: &e}
}

// Validate checks the address is a strict 20-byte hex address
func (t Target) Validate() error {
	if !helpers.IsValidEthAddress(t.Address) {
		return fmt.Errorf("%w: %q", ErrInvalidRecipient, t.Address)
	}
	return nil
}

// Recipient returns the validated address
func (t Target) Recipient() (common.Address, error) {
	if err := t.Validate(); err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(t.Address), nil
}

// Label is how the target is shown to the user
func (t Target) Label() string {
	if t.Entry != nil {
		return t.Entry.Handle() + " (" + helpers.ShortenAddr(t.Address) + ")"
	}
	return helpers.ShortenAddr(t.Address)
}
