package purchase

// State is the position of a Session in the purchase workflow.
type State int

const (
	Idle State = iota
	PlanSelected
	AwaitingServerAck
	AwaitingPayment
	PaymentSubmitted
	Confirmed
	Expired
	Cancelled
	Failed
)

var stateNames = [...]string{
	Idle:              "idle",
	PlanSelected:      "plan_selected",
	AwaitingServerAck: "awaiting_server_ack",
	AwaitingPayment:   "awaiting_payment",
	PaymentSubmitted:  "payment_submitted",
	Confirmed:         "confirmed",
	Expired:           "expired",
	Cancelled:         "cancelled",
	Failed:            "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// ParseState is the inverse of String.
func ParseState(name string) (State, bool) {
	for i, n := range stateNames {
		if n == name {
			return State(i), true
		}
	}
	return 0, false
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	switch s {
	case Confirmed, Expired, Cancelled, Failed:
		return true
	}
	return false
}

// InFlight reports whether a backend call is outstanding in this state.
func (s State) InFlight() bool {
	return s == AwaitingServerAck || s == PaymentSubmitted
}

// Transition records a single state change.
type Transition struct {
	From State
	To   State
	Err  error
}
