package migrate

import (
	"context"

	"github.com/snikjou/usagemig/internal/constants"
	"github.com/snikjou/usagemig/internal/store"
)

// preservedFields are the payload fields a mutation must leave untouched.
// The spot check compares each of them before and after.
var preservedFields = []string{
	constants.FieldID,
	constants.FieldType,
	constants.FieldUserID,
	constants.FieldConversationID,
	constants.FieldRole,
	constants.FieldContent,
	constants.FieldFeedback,
	constants.FieldCreatedAt,
}

// FieldMismatch records one field that differs from its expected
// post-mutation value.
type FieldMismatch struct {
	DocumentID string
	Field      string
	Before     any
	After      any
}

// SpotCheckResult reports the post-mutation verification of a small sample.
// Verification is observational only; a failed check never rolls anything
// back.
type SpotCheckResult struct {
	Checked     int
	FetchErrors int
	Mismatches  []FieldMismatch
}

// Passed reports whether every sampled document verified cleanly.
func (s *SpotCheckResult) Passed() bool {
	return s.FetchErrors == 0 && len(s.Mismatches) == 0
}

// spotCheck re-fetches each snapshotted document and asserts that the patch
// was applied and nothing else changed.
func (r *Runner) spotCheck(ctx context.Context, snapshots []store.Document) *SpotCheckResult {
	res := &SpotCheckResult{Checked: len(snapshots)}

	for _, before := range snapshots {
		id := before.ID()

		after, err := r.container.ReadByID(ctx, id)
		if err != nil {
			r.logger.Error("spot check failed to re-read document", "id", id, "error", err)
			res.FetchErrors++
			continue
		}

		res.Mismatches = append(res.Mismatches, r.compareDocument(before, after)...)
	}

	if res.Passed() {
		r.logger.Info("spot check passed", "checked", res.Checked)
	} else {
		r.logger.Warn("spot check detected issues",
			"checked", res.Checked,
			"mismatches", len(res.Mismatches),
			"fetch_errors", res.FetchErrors,
		)
	}

	return res
}

func (r *Runner) compareDocument(before, after store.Document) []FieldMismatch {
	id := before.ID()
	var mismatches []FieldMismatch

	for _, field := range preservedFields {
		if !equalValue(before[field], after[field]) {
			mismatches = append(mismatches, FieldMismatch{
				DocumentID: id,
				Field:      field,
				Before:     before[field],
				After:      after[field],
			})
		}
	}

	mismatches = append(mismatches, r.checkUsageTransition(before, after)...)

	if got := after.GetString(constants.FieldUpdatedBy); got != r.migration.ExpectedUpdatedBy() {
		mismatches = append(mismatches, FieldMismatch{
			DocumentID: id,
			Field:      constants.FieldUpdatedBy,
			Before:     r.migration.ExpectedUpdatedBy(),
			After:      got,
		})
	}

	return mismatches
}

// checkUsageTransition asserts the direction-specific usage change: added
// with all-null counters when absent before, unchanged when it already had
// values, removed when reverting or stripping.
func (r *Runner) checkUsageTransition(before, after store.Document) []FieldMismatch {
	id := before.ID()

	if r.migration.Direction != Forward {
		if after.Has(constants.FieldUsage) {
			return []FieldMismatch{{
				DocumentID: id,
				Field:      constants.FieldUsage,
				Before:     nil,
				After:      after[constants.FieldUsage],
			}}
		}
		return nil
	}

	afterUsage, ok := after.Usage()
	if !ok {
		return []FieldMismatch{{
			DocumentID: id,
			Field:      constants.FieldUsage,
			Before:     store.NullUsage(),
			After:      nil,
		}}
	}

	expected := any(store.NullUsage())
	if beforeUsage, had := before.Usage(); had {
		// Already had usage values; they must be untouched.
		expected = beforeUsage
	}

	if !equalValue(expected, map[string]any(afterUsage)) {
		return []FieldMismatch{{
			DocumentID: id,
			Field:      constants.FieldUsage,
			Before:     expected,
			After:      afterUsage,
		}}
	}

	return nil
}

// equalValue compares two document values structurally, normalizing
// numbers so an int written by one producer matches the float64 the store
// hands back.
func equalValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case map[string]any:
		bv, ok := asMap(b)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bval, present := bv[k]
			if !present || !equalValue(v, bval) {
				return false
			}
		}
		return true
	case store.Document:
		return equalValue(map[string]any(av), b)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalValue(av[i], bv[i]) {
				return false
			}
		}
		return true
	}

	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}

	return a == b
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case store.Document:
		return t, true
	default:
		return nil, false
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}
