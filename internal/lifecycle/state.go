package lifecycle

import (
	"fmt"
	"strings"
)

// TargetState is the state a caller wants a transfer to be in after an
// invocation. It is a request intent, not the server's lifecycle state.
type TargetState string

const (
	Present       TargetState = "present"
	Absent        TargetState = "absent"
	Halted        TargetState = "halted"
	Kept          TargetState = "kept"
	Started       TargetState = "started"
	Resumed       TargetState = "resumed"
	Submitted     TargetState = "submitted"
	Acknowledged  TargetState = "acknowledged"
	Nacknowledged TargetState = "nacknowledged"
	Ended         TargetState = "ended"
)

// States lists every target state in declaration order.
var States = []TargetState{
	Present, Absent, Halted, Kept, Started, Resumed, Submitted, Acknowledged, Nacknowledged, Ended,
}

// ParseTargetState parses a state name.
func ParseTargetState(s string) (TargetState, error) {
	for _, st := range States {
		if string(st) == strings.ToLower(strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown state %q", s)
}

func (s TargetState) String() string {
	return string(s)
}

// acknowledges reports whether the state sends an acknowledgement.
func (s TargetState) acknowledges() bool {
	return s == Acknowledged || s == Nacknowledged
}

// addressesTransfer reports whether the state acts on an existing transfer.
func (s TargetState) addressesTransfer() bool {
	return s != Present && s != ""
}
