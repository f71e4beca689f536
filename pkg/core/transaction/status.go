package transaction

// Status is a lifecycle state of the transaction.
type Status byte

// Transaction states. Confirmed and Rejected are terminal.
const (
	Initialized Status = iota
	Pending
	Confirmed
	Rejected
)

// String implements the fmt.Stringer interface.
func (s Status) String() string {
	switch s {
	case Initialized:
		return "Initialized"
	case Pending:
		return "Pending"
	case Confirmed:
		return "Confirmed"
	case Rejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// IsTerminal returns true for states that allow no further transitions.
func (s Status) IsTerminal() bool {
	return s == Confirmed || s == Rejected
}
