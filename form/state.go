package form

import (
	"github.com/pkg/errors"
)

// State is a step of the submit lifecycle:
// Idle -> Validating -> Invalid | Submitting -> Submitted | Failed.
type State int

const (
	Idle State = iota
	Validating
	Invalid
	Submitting
	Submitted
	Failed
)

var stateNames = map[State]string{
	Idle:       "idle",
	Validating: "validating",
	Invalid:    "invalid",
	Submitting: "submitting",
	Submitted:  "submitted",
	Failed:     "failed",
}

func (s State) String() string {
	name, ok := stateNames[s]
	if !ok {
		return "unknown"
	}
	return name
}

var transitions = map[State][]State{
	Idle:       {Validating},
	Validating: {Invalid, Submitting},
	Invalid:    {Validating, Idle},
	Submitting: {Submitted, Failed},
	Submitted:  {Validating, Idle},
	Failed:     {Validating, Idle},
}

var ErrInvalidTransition = errors.New("invalid form state transition")

func (s State) canMoveTo(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}
