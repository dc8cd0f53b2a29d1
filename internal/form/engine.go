// internal/form/engine.go
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"librabot/internal/session"
)

var (
	// ErrNoActiveForm is returned when Advance is called for a session
	// with no pending form. Routing to Advance is the caller's job.
	ErrNoActiveForm = errors.New("no active form for session")

	// ErrUnknownForm is returned when a pending form references a kind
	// that was never registered.
	ErrUnknownForm = errors.New("unknown form kind")
)

// ValidationError is a recoverable input failure. The engine replies
// with Message and re-prompts the same step without advancing.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validator converts raw message text into a typed field value, or
// fails with a *ValidationError carrying the user-facing message.
type Validator func(raw string) (any, error)

// Step is one prompt/collect round-trip of a form.
type Step struct {
	Field    string
	Prompt   string
	Validate Validator
}

// CommitFunc executes the completed form against the store exactly
// once and returns the reply text.
type CommitFunc func(ctx context.Context, chatID int64, fields map[string]any) (string, error)

// Definition declares a form: an ordered step list and a commit
// action. Steps execute strictly in declared order, no skipping, no
// going back.
type Definition struct {
	Kind   string
	Steps  []Step
	Commit CommitFunc
}

// Result is the outcome of one Advance call.
type Result struct {
	// Kind identifies the form that consumed the message.
	Kind string
	// Reply is the text to send back: a re-prompt, the next step's
	// prompt, or the commit reply.
	Reply string
	// Done reports that the form finished and was cleared, whether or
	// not the commit succeeded.
	Done bool
}

// Engine collects ordered typed fields across message round-trips,
// keeping all interim state in the session store.
type Engine struct {
	sessions session.Store
	defs     map[string]*Definition
	log      *zap.Logger
}

// NewEngine creates a form engine over the given session store.
func NewEngine(sessions session.Store, log *zap.Logger) *Engine {
	return &Engine{
		sessions: sessions,
		defs:     make(map[string]*Definition),
		log:      log,
	}
}

// Register adds a form definition. Definitions are registered once at
// startup, before any messages are handled.
func (e *Engine) Register(def *Definition) {
	e.defs[def.Kind] = def
}

// Start begins a form for the session and returns the first prompt.
// Any previously pending form is discarded.
func (e *Engine) Start(chatID int64, kind string) (string, error) {
	def, ok := e.defs[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownForm, kind)
	}
	state := session.NewFormState(kind)
	e.sessions.SetPendingForm(chatID, state)
	e.log.Debug("form started",
		zap.Int64("chat_id", chatID),
		zap.String("form", kind),
		zap.String("form_id", state.ID.String()))
	return def.Steps[0].Prompt, nil
}

// Advance feeds one inbound message into the session's pending form.
//
// Validation failure replies with the failure message and leaves the
// state untouched, so the same step is retried. A valid input records
// the field and either prompts the next step or, after the final
// step, clears the state and runs the commit. The state is cleared
// before the commit executes, so the commit runs exactly once even
// when it fails.
func (e *Engine) Advance(ctx context.Context, chatID int64, raw string) (Result, error) {
	state, ok := e.sessions.PendingForm(chatID)
	if !ok {
		return Result{}, ErrNoActiveForm
	}
	def, ok := e.defs[state.Kind]
	if !ok {
		e.sessions.ClearPendingForm(chatID)
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownForm, state.Kind)
	}

	step := def.Steps[state.Step]
	value, err := step.Validate(strings.TrimSpace(raw))
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return Result{Kind: state.Kind, Reply: ve.Message + "\n" + step.Prompt}, nil
		}
		return Result{}, fmt.Errorf("validate field %s: %w", step.Field, err)
	}

	state.Fields[step.Field] = value
	state.Step++
	e.log.Debug("form step collected",
		zap.Int64("chat_id", chatID),
		zap.String("form", state.Kind),
		zap.String("form_id", state.ID.String()),
		zap.String("field", step.Field),
		zap.Int("step", state.Step))

	if state.Step < len(def.Steps) {
		e.sessions.SetPendingForm(chatID, state)
		return Result{Kind: state.Kind, Reply: def.Steps[state.Step].Prompt}, nil
	}

	e.sessions.ClearPendingForm(chatID)
	reply, err := def.Commit(ctx, chatID, state.Fields)
	if err != nil {
		return Result{Kind: state.Kind, Done: true}, fmt.Errorf("commit form %s: %w", state.Kind, err)
	}
	e.log.Info("form committed",
		zap.Int64("chat_id", chatID),
		zap.String("form", state.Kind),
		zap.String("form_id", state.ID.String()))
	return Result{Kind: state.Kind, Reply: reply, Done: true}, nil
}
