package send

import (
	"errors"
	"fmt"
	"strings"

	"base-nft-tui/directory"
	"base-nft-tui/helpers"
	"base-nft-tui/styles"
	"base-nft-tui/transfer"

	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
)

// Candidate kinds
const (
	KindSelf      = "self"
	KindRecent    = "recent"
	KindDirectory = "directory"
	KindAddress   = "address"
)

// Candidate is one selectable recipient row
type Candidate struct {
	Kind    string
	Label   string
	Sub     string
	Address string
	Entry   *directory.Entry
}

// Target converts the candidate into a transfer target
func (c Candidate) Target() transfer.Target {
	t := transfer.NewTarget(c.Address)
	t.Entry = c.Entry
	return t
}

// EntryCandidate builds a candidate that sends to the entry's primary address
func EntryCandidate(e directory.Entry) Candidate {
	return entryCandidate(e, e.PrimaryAddress())
}

// AddressMatchCandidate builds a candidate for an entry found by address
// lookup. The transfer goes to the address that was searched for.
func AddressMatchCandidate(e directory.Entry, address string) Candidate {
	return entryCandidate(e, common.HexToAddress(address).Hex())
}

func entryCandidate(e directory.Entry, address string) Candidate {
	sub := e.Handle()
	if sub != "" {
		sub += " • "
	}
	sub += helpers.ShortenAddr(address)
	return Candidate{
		Kind:    KindDirectory,
		Label:   e.Label(),
		Sub:     sub,
		Address: address,
		Entry:   &e,
	}
}

// AddressCandidate builds a candidate for a raw typed address
func AddressCandidate(address string, kind string) Candidate {
	addr := common.HexToAddress(address).Hex()
	return Candidate{
		Kind:    kind,
		Label:   helpers.ShortenAddr(addr),
		Sub:     addr,
		Address: addr,
	}
}

// Nav returns the navigation bar for the send flow
func Nav(width int, state transfer.State) string {
	var keys []string
	switch state {
	case transfer.CollectingRecipient:
		keys = []string{
			styles.Key("↑/↓") + " choose",
			styles.Key("Enter") + " select",
			styles.Key("Ctrl+v") + " paste",
			styles.Key("Esc") + " cancel",
		}
	case transfer.ConfirmingSend:
		keys = []string{
			styles.Key("←/→") + " toggle",
			styles.Key("Enter") + " confirm",
			styles.Key("Esc") + " back",
		}
	case transfer.Sending:
		keys = []string{
			styles.MutedStyle.Render("approve each transfer in your wallet"),
			styles.Key("Esc") + " abandon",
		}
	default:
		keys = []string{
			styles.Key("c") + " copy tx hash",
			styles.Key("Enter") + " done",
			styles.Key("Esc") + " close",
		}
	}
	return styles.NavStyle.Width(width).Render(strings.Join(keys, "   "))
}

func itemList(items []transfer.NFTReference, max int) []string {
	var lines []string
	for i, it := range items {
		if i == max {
			lines = append(lines, styles.MutedStyle.Render(fmt.Sprintf("  … and %d more", len(items)-i)))
			break
		}
		lines = append(lines, "  • "+helpers.Truncate(it.Label(), 48))
	}
	return lines
}

func sendingTitle(items []transfer.NFTReference) string {
	if len(items) == 1 {
		return "Send " + helpers.Truncate(items[0].Label(), 40)
	}
	return fmt.Sprintf("Send %d NFTs", len(items))
}

// RenderRecipient renders the recipient search step
func RenderRecipient(items []transfer.NFTReference, inputView string, candidates []Candidate, cursor int, searching bool, spinnerView, errMsg string) string {
	lines := []string{styles.TitleStyle.Render(sendingTitle(items)), ""}
	lines = append(lines, itemList(items, 3)...)
	lines = append(lines, "", inputView, "")

	if errMsg != "" {
		lines = append(lines, styles.ErrorStyle.Render("✗ "+errMsg), "")
	}

	if searching {
		lines = append(lines, spinnerView+" searching…")
	}

	if len(candidates) == 0 && !searching {
		lines = append(lines, styles.MutedStyle.Render("Type a Farcaster username or paste a 0x address."))
	}

	for i, c := range candidates {
		tag := ""
		switch c.Kind {
		case KindSelf:
			tag = lipgloss.NewStyle().Foreground(styles.CAccent).Render(" you")
		case KindRecent:
			tag = styles.MutedStyle.Render(" recent")
		case KindAddress:
			tag = styles.MutedStyle.Render(" address")
		}
		label := c.Label
		if i == cursor {
			label = styles.SelectedStyle.Render(label)
		}
		lines = append(lines, styles.Marker(i == cursor)+label+tag)
		if c.Sub != "" {
			lines = append(lines, "    "+styles.MutedStyle.Render(c.Sub))
		}
	}

	return strings.Join(lines, "\n")
}

// RenderConfirm renders the confirmation step around the confirm form
func RenderConfirm(items []transfer.NFTReference, target transfer.Target, strategy, formView string) string {
	lines := []string{styles.TitleStyle.Render("Confirm transfer"), ""}
	lines = append(lines, itemList(items, 6)...)
	lines = append(lines, "",
		"  to      "+lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true).Render(target.Label()),
		"  address "+styles.MutedStyle.Render(target.Address),
	)
	if strategy != "" {
		lines = append(lines, "  via     "+styles.MutedStyle.Render(strategy))
	}
	lines = append(lines, "", formView)
	return strings.Join(lines, "\n")
}

// RenderSending renders the in-progress step
func RenderSending(items []transfer.NFTReference, target transfer.Target, spinnerView string) string {
	lines := []string{
		styles.TitleStyle.Render(sendingTitle(items)),
		"",
		spinnerView + " sending to " + target.Label() + "…",
		"",
		styles.MutedStyle.Render("Your wallet will ask you to approve each transfer."),
	}
	return strings.Join(lines, "\n")
}

// RenderComplete renders the success step with a QR code of the last transaction
func RenderComplete(res transfer.Result, target transfer.Target, copiedMsg string) string {
	lines := []string{
		styles.SuccessStyle.Render("✓ Sent to " + target.Label()),
		styles.MutedStyle.Render(res.Summary()),
		"",
	}
	for _, it := range res.Items {
		ref := it.Reference
		if ref == "" {
			ref = "submitted"
		}
		lines = append(lines, "  • "+helpers.Truncate(it.Item.Label(), 36)+"  "+styles.MutedStyle.Render(helpers.Truncate(ref, 24)))
	}

	if ref := res.LastReference(); strings.HasPrefix(ref, "0x") {
		u := helpers.BasescanTxURL(ref)
		lines = append(lines, "", styles.MutedStyle.Render(u))
		if qr := helpers.GenerateQRCode(u); qr != "" {
			lines = append(lines, "", qr)
		}
	}
	if copiedMsg != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(styles.CAccent).Render(copiedMsg))
	}
	return strings.Join(lines, "\n")
}

// Describe maps a submission error to the message shown to the user
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, transfer.ErrInvalidRecipient):
		return "That recipient address is not valid."
	case errors.Is(err, transfer.ErrWalletUnavailable):
		return "No wallet is connected. Configure one in settings."
	case errors.Is(err, transfer.ErrTransferRejected):
		return "The wallet rejected the transfer."
	default:
		return "The transfer failed."
	}
}

// RenderFailed renders the failure step
func RenderFailed(res transfer.Result, target transfer.Target) string {
	lines := []string{
		styles.ErrorStyle.Render("✗ " + Describe(res.Err)),
		styles.MutedStyle.Render(res.Summary()),
	}
	if res.Err != nil {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(styles.CWarn).Width(80).Render(res.Err.Error()))
	}
	if res.Succeeded > 0 {
		lines = append(lines, "", styles.MutedStyle.Render("Already sent to "+target.Label()+":"))
		for _, it := range res.Items {
			lines = append(lines, "  • "+helpers.Truncate(it.Item.Label(), 36)+"  "+styles.MutedStyle.Render(helpers.Truncate(it.Reference, 24)))
		}
	}
	return strings.Join(lines, "\n")
}
