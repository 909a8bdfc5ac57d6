package transfer

// State is the step a send flow is in
type State int

const (
	CollectingRecipient State = iota
	ConfirmingSend
	Sending
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case CollectingRecipient:
		return "collecting recipient"
	case ConfirmingSend:
		return "confirming send"
	case Sending:
		return "sending"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends the flow
func (s State) Terminal() bool {
	return s == Complete || s == Failed
}
