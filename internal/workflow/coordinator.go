package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/studiowebux/kycfill/internal/types"
)

// Service is the outbound side of both controllers
type Service interface {
	Process(ctx context.Context, doc *types.Document) (*types.ExtractionResult, error)
	Generate(ctx context.Context, text string) (*types.GenerationResult, error)
}

// Coordinator owns the display state and the text buffer.
// Controllers change them only through Begin*/Resolve* transitions.
type Coordinator struct {
	mu     sync.Mutex
	state  State
	buffer string
	seq    uint64
	policy RacePolicy
	logger *slog.Logger
}

// NewCoordinator creates a Coordinator in the idle state
func NewCoordinator(policy RacePolicy, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		state:  Idle(),
		policy: policy,
		logger: logger,
	}
}

// State returns the current display state
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Buffer returns the current text buffer
func (c *Coordinator) Buffer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer
}

// SetBuffer stores user edits to the text buffer
func (c *Coordinator) SetBuffer(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffer = text
}

// Policy returns the race policy in effect
func (c *Coordinator) Policy() RacePolicy {
	return c.policy
}

// BeginIntake starts an intake request. Without a document it does nothing
// and returns false.
func (c *Coordinator) BeginIntake(doc *types.Document) (Ticket, bool) {
	if doc == nil {
		return Ticket{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	ticket := c.issue(OpIntake)
	c.state = Processing(LabelProcessing)
	c.logger.Debug("workflow.begin", "op", ticket.Op, "seq", ticket.Seq, "document", doc.Name)
	return ticket, true
}

// ResolveIntake applies the outcome of an intake request. It returns false
// when the response was discarded by the race policy.
func (c *Coordinator) ResolveIntake(ticket Ticket, result *types.ExtractionResult, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.accept(ticket) {
		return false
	}

	switch {
	case err != nil:
		c.state = Failed(ErrorMessage(err))
	case result.HasProfile():
		c.buffer = ""
		c.state = Success(result.AsGeneration())
	default:
		if result != nil {
			c.buffer = result.Text
		} else {
			c.buffer = ""
		}
		c.state = Idle()
	}

	c.logger.Debug("workflow.resolve", "op", ticket.Op, "seq", ticket.Seq, "state", c.state.String())
	return true
}

// BeginGeneration starts a generation request with the trimmed buffer.
// A blank buffer does nothing and returns false.
func (c *Coordinator) BeginGeneration() (Ticket, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	text := strings.TrimSpace(c.buffer)
	if text == "" {
		return Ticket{}, "", false
	}

	ticket := c.issue(OpGeneration)
	c.state = Processing(LabelGenerating)
	c.logger.Debug("workflow.begin", "op", ticket.Op, "seq", ticket.Seq, "chars", len(text))
	return ticket, text, true
}

// ResolveGeneration applies the outcome of a generation request. It returns
// false when the response was discarded by the race policy.
func (c *Coordinator) ResolveGeneration(ticket Ticket, result *types.GenerationResult, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.accept(ticket) {
		return false
	}

	if err != nil {
		c.state = Failed(ErrorMessage(err))
	} else {
		c.state = Success(result)
	}

	c.logger.Debug("workflow.resolve", "op", ticket.Op, "seq", ticket.Seq, "state", c.state.String())
	return true
}

// Intake runs a full intake exchange and returns the resulting state
func (c *Coordinator) Intake(ctx context.Context, svc Service, doc *types.Document) State {
	ticket, ok := c.BeginIntake(doc)
	if !ok {
		return c.State()
	}
	result, err := svc.Process(ctx, doc)
	c.ResolveIntake(ticket, result, err)
	return c.State()
}

// Generate runs a full generation exchange and returns the resulting state
func (c *Coordinator) Generate(ctx context.Context, svc Service) State {
	ticket, text, ok := c.BeginGeneration()
	if !ok {
		return c.State()
	}
	result, err := svc.Generate(ctx, text)
	c.ResolveGeneration(ticket, result, err)
	return c.State()
}

// issue must be called with mu held
func (c *Coordinator) issue(op Operation) Ticket {
	c.seq++
	return Ticket{Seq: c.seq, Op: op}
}

// accept must be called with mu held
func (c *Coordinator) accept(ticket Ticket) bool {
	if c.policy == LatestRequestWins && ticket.Seq != c.seq {
		c.logger.Info("workflow.stale_response", "op", ticket.Op, "seq", ticket.Seq, "latest", c.seq)
		return false
	}
	return true
}

// ErrorMessage extracts the text to display for a failed exchange
func ErrorMessage(err error) string {
	var svcErr *types.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return err.Error()
}
