package transfer

import "errors"

// Submission errors. Every failed Result wraps exactly one of them.
var (
	ErrInvalidRecipient  = errors.New("invalid recipient address")
	ErrWalletUnavailable = errors.New("no wallet available")
	ErrTransferRejected  = errors.New("transfer rejected")
	ErrTransferFailed    = errors.New("transfer failed")
)

// ErrInvalidTransition is returned when a flow intent does not apply to the
// current state
var ErrInvalidTransition = errors.New("invalid flow transition")
