// internal/form/engine_test.go
package form

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"librabot/internal/session"
)

const testChatID int64 = 101

func newTestEngine() (*Engine, session.Store) {
	sessions := session.NewStore()
	return NewEngine(sessions, zap.NewNop()), sessions
}

// twoStepForm commits into *got and counts commits in *commits.
func twoStepForm(commits *int, got *map[string]any) *Definition {
	return &Definition{
		Kind: "test_form",
		Steps: []Step{
			{Field: "name", Prompt: "Name?", Validate: NonEmpty(2, "Name too short.")},
			{Field: "copies", Prompt: "Copies?", Validate: IntOrDefault(1, 1)},
		},
		Commit: func(_ context.Context, _ int64, fields map[string]any) (string, error) {
			*commits++
			*got = fields
			return "done", nil
		},
	}
}

func TestStartReturnsFirstPrompt(t *testing.T) {
	e, sessions := newTestEngine()
	var commits int
	var got map[string]any
	e.Register(twoStepForm(&commits, &got))

	prompt, err := e.Start(testChatID, "test_form")
	require.NoError(t, err)
	assert.Equal(t, "Name?", prompt)

	state, ok := sessions.PendingForm(testChatID)
	require.True(t, ok)
	assert.Equal(t, 0, state.Step)
}

func TestStartUnknownKind(t *testing.T) {
	e, _ := newTestEngine()
	_, err := e.Start(testChatID, "nope")
	assert.ErrorIs(t, err, ErrUnknownForm)
}

func TestAdvanceWithoutForm(t *testing.T) {
	e, _ := newTestEngine()
	_, err := e.Advance(context.Background(), testChatID, "hello")
	assert.ErrorIs(t, err, ErrNoActiveForm)
}

func TestStrictFailureRepromptsSameStep(t *testing.T) {
	e, sessions := newTestEngine()
	var commits int
	var got map[string]any
	e.Register(twoStepForm(&commits, &got))

	_, err := e.Start(testChatID, "test_form")
	require.NoError(t, err)

	res, err := e.Advance(context.Background(), testChatID, "x")
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "Name too short.")
	assert.Contains(t, res.Reply, "Name?")
	assert.False(t, res.Done)

	// State did not advance.
	state, ok := sessions.PendingForm(testChatID)
	require.True(t, ok)
	assert.Equal(t, 0, state.Step)
	assert.Empty(t, state.Fields)

	// The same step accepts a valid retry.
	res, err = e.Advance(context.Background(), testChatID, "Dune")
	require.NoError(t, err)
	assert.Equal(t, "Copies?", res.Reply)
	assert.Zero(t, commits)
}

func TestCommitExactlyOnce(t *testing.T) {
	e, sessions := newTestEngine()
	var commits int
	var got map[string]any
	e.Register(twoStepForm(&commits, &got))

	_, err := e.Start(testChatID, "test_form")
	require.NoError(t, err)

	_, err = e.Advance(context.Background(), testChatID, "Dune")
	require.NoError(t, err)

	res, err := e.Advance(context.Background(), testChatID, "3")
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, "done", res.Reply)
	assert.Equal(t, 1, commits)
	assert.Equal(t, "Dune", got["name"])
	assert.Equal(t, 3, got["copies"])

	// The form is gone; another message has nowhere to go.
	_, ok := sessions.PendingForm(testChatID)
	assert.False(t, ok)
	_, err = e.Advance(context.Background(), testChatID, "again")
	assert.ErrorIs(t, err, ErrNoActiveForm)
}

func TestPermissiveStepFallsBackToDefault(t *testing.T) {
	e, _ := newTestEngine()
	var commits int
	var got map[string]any
	e.Register(twoStepForm(&commits, &got))

	_, err := e.Start(testChatID, "test_form")
	require.NoError(t, err)
	_, err = e.Advance(context.Background(), testChatID, "Dune")
	require.NoError(t, err)

	// Garbage copy counts do not re-prompt, they default.
	res, err := e.Advance(context.Background(), testChatID, "lots")
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, 1, got["copies"])
	assert.Equal(t, 1, commits)
}

func TestCommitFailureClearsState(t *testing.T) {
	e, sessions := newTestEngine()
	boom := errors.New("store down")
	e.Register(&Definition{
		Kind: "fragile",
		Steps: []Step{
			{Field: "v", Prompt: "V?", Validate: Text()},
		},
		Commit: func(context.Context, int64, map[string]any) (string, error) {
			return "", boom
		},
	})

	_, err := e.Start(testChatID, "fragile")
	require.NoError(t, err)

	res, err := e.Advance(context.Background(), testChatID, "anything")
	require.ErrorIs(t, err, boom)
	assert.True(t, res.Done)

	// No retry: the form is cleared despite the failure.
	_, ok := sessions.PendingForm(testChatID)
	assert.False(t, ok)
}

func TestStartOverridesPendingForm(t *testing.T) {
	e, sessions := newTestEngine()
	var commits int
	var got map[string]any
	e.Register(twoStepForm(&commits, &got))
	e.Register(&Definition{
		Kind: "other",
		Steps: []Step{
			{Field: "v", Prompt: "Other?", Validate: Text()},
		},
		Commit: func(context.Context, int64, map[string]any) (string, error) {
			return "ok", nil
		},
	})

	_, err := e.Start(testChatID, "test_form")
	require.NoError(t, err)
	_, err = e.Advance(context.Background(), testChatID, "Dune")
	require.NoError(t, err)

	prompt, err := e.Start(testChatID, "other")
	require.NoError(t, err)
	assert.Equal(t, "Other?", prompt)

	state, ok := sessions.PendingForm(testChatID)
	require.True(t, ok)
	assert.Equal(t, "other", state.Kind)
	assert.Equal(t, 0, state.Step)
	assert.Empty(t, state.Fields)
}

func TestStepsRunInDeclaredOrder(t *testing.T) {
	e, _ := newTestEngine()
	var order []string
	var steps []Step
	for i := 0; i < 4; i++ {
		field := fmt.Sprintf("f%d", i)
		steps = append(steps, Step{
			Field:  field,
			Prompt: field + "?",
			Validate: func(raw string) (any, error) {
				order = append(order, field)
				return raw, nil
			},
		})
	}
	e.Register(&Definition{
		Kind:  "ordered",
		Steps: steps,
		Commit: func(context.Context, int64, map[string]any) (string, error) {
			return "ok", nil
		},
	})

	_, err := e.Start(testChatID, "ordered")
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err = e.Advance(context.Background(), testChatID, "v")
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"f0", "f1", "f2", "f3"}, order)
}
