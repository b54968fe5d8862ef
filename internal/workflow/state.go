package workflow

import (
	"fmt"

	"github.com/studiowebux/kycfill/internal/types"
)

// Phase is the user-visible stage of the workflow
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseProcessing
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseProcessing:
		return "processing"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// Status labels shown while a call is in flight
const (
	LabelProcessing = "Processing document..."
	LabelGenerating = "Generating answers..."
)

// State is the display state. Only the fields of its Phase are set.
type State struct {
	Phase   Phase
	Label   string                  // PhaseProcessing
	Result  *types.GenerationResult // PhaseSuccess
	Message string                  // PhaseError
}

// Idle is the state with nothing to show
func Idle() State {
	return State{Phase: PhaseIdle}
}

// Processing is the state while a call is in flight
func Processing(label string) State {
	return State{Phase: PhaseProcessing, Label: label}
}

// Success holds a payload to render
func Success(result *types.GenerationResult) State {
	return State{Phase: PhaseSuccess, Result: result}
}

// Failed holds a service error message
func Failed(message string) State {
	return State{Phase: PhaseError, Message: message}
}

func (s State) String() string {
	switch s.Phase {
	case PhaseProcessing:
		return fmt.Sprintf("processing(%s)", s.Label)
	case PhaseError:
		return fmt.Sprintf("error(%s)", s.Message)
	default:
		return s.Phase.String()
	}
}

// Operation identifies which controller issued a request
type Operation string

const (
	OpIntake     Operation = "intake"
	OpGeneration Operation = "generation"
)

// Ticket identifies one issued request
type Ticket struct {
	Seq uint64
	Op  Operation
}

// RacePolicy decides what happens when responses overlap
type RacePolicy int

const (
	// LastResponseWins applies every response as it arrives
	LastResponseWins RacePolicy = iota
	// LatestRequestWins discards responses to requests that were superseded
	LatestRequestWins
)

func (p RacePolicy) String() string {
	if p == LatestRequestWins {
		return "latest-request-wins"
	}
	return "last-response-wins"
}

// ParseRacePolicy parses a policy name as used in configuration
func ParseRacePolicy(name string) (RacePolicy, error) {
	switch name {
	case "", "last-response-wins":
		return LastResponseWins, nil
	case "latest-request-wins":
		return LatestRequestWins, nil
	default:
		return LastResponseWins, fmt.Errorf("unknown race policy %q", name)
	}
}
