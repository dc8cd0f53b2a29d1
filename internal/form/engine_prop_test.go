// internal/form/engine_prop_test.go
package form

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"
	"pgregory.net/rapid"

	"librabot/internal/session"
)

// A form with N strict steps commits after exactly N valid inputs, no
// matter how many invalid inputs are interleaved.
func TestFormCommitsAfterExactlyNValidInputs(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(t, "steps")

		sessions := session.NewStore()
		engine := NewEngine(sessions, zap.NewNop())

		var commits int
		steps := make([]Step, n)
		for i := range steps {
			steps[i] = Step{
				Field:    fmt.Sprintf("f%d", i),
				Prompt:   fmt.Sprintf("f%d?", i),
				Validate: NonEmpty(1, "required"),
			}
		}
		engine.Register(&Definition{
			Kind:  "prop",
			Steps: steps,
			Commit: func(_ context.Context, _ int64, fields map[string]any) (string, error) {
				commits++
				if len(fields) != n {
					t.Fatalf("commit saw %d fields, want %d", len(fields), n)
				}
				return "ok", nil
			},
		})

		const chatID int64 = 1
		_, err := engine.Start(chatID, "prop")
		if err != nil {
			t.Fatalf("start: %v", err)
		}

		inputs := rapid.SliceOfN(rapid.Bool(), 1, 4*n).Draw(t, "inputs")
		valid := 0
		for _, ok := range inputs {
			if valid == n {
				break
			}
			if ok {
				res, err := engine.Advance(context.Background(), chatID, "value")
				if err != nil {
					t.Fatalf("advance valid: %v", err)
				}
				valid++
				if (valid == n) != res.Done {
					t.Fatalf("done=%v after %d/%d valid inputs", res.Done, valid, n)
				}
			} else {
				res, err := engine.Advance(context.Background(), chatID, "")
				if err != nil {
					t.Fatalf("advance invalid: %v", err)
				}
				if res.Done {
					t.Fatalf("form finished on invalid input")
				}
				state, pending := sessions.PendingForm(chatID)
				if !pending || state.Step != valid {
					t.Fatalf("invalid input moved the form")
				}
			}
			if valid < n && commits != 0 {
				t.Fatalf("committed after %d/%d valid inputs", valid, n)
			}
		}

		if valid == n && commits != 1 {
			t.Fatalf("commits = %d after completing the form", commits)
		}
		if valid < n {
			if commits != 0 {
				t.Fatalf("commits = %d on incomplete form", commits)
			}
			state, pending := sessions.PendingForm(chatID)
			if !pending || state.Step != valid {
				t.Fatalf("incomplete form lost its position")
			}
		}
	})
}
