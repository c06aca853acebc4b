// Package controller binds user-entered drafts to the calculation core and
// submits normalized payloads to the billing backend.
//
// Controllers enforce the orchestration rules the calculation packages
// cannot see:
//   - computed totals are read-only outputs of the calculation core, never
//     independently editable fields;
//   - exactly one submission may be in flight per controller, and each
//     user-initiated submit surfaces exactly one success or failure;
//   - a failed submission preserves the draft so the user can retry without
//     re-entering data;
//   - validation failures never reach the backend.
package controller

import (
	"errors"
	"sync/atomic"

	"github.com/go-playground/validator/v10"

	"rmsbilling/internal/validation"
)

// Common controller errors
var (
	// ErrSubmissionInFlight is returned when a submit is attempted while a
	// previous one has not finished. Submission is not idempotent, so the
	// second attempt is refused rather than queued.
	ErrSubmissionInFlight = errors.New("a submission is already in flight")

	// ErrStaleLoad is returned when a reference-data load finishes after a
	// newer load has started; its results are discarded.
	ErrStaleLoad = errors.New("reference data load superseded by a newer request")
)

// submitGuard serializes submissions: one in flight at a time.
type submitGuard struct {
	busy atomic.Bool
}

func (g *submitGuard) begin() error {
	if !g.busy.CompareAndSwap(false, true) {
		return ErrSubmissionInFlight
	}
	return nil
}

func (g *submitGuard) end() {
	g.busy.Store(false)
}

// checkTags runs struct-tag validation and converts failures into the
// field-error shape the rest of the module reports.
func checkTags(v *validator.Validate, doc interface{}) error {
	err := v.Struct(doc)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var out validation.Errors
	for _, fe := range verrs {
		out.Add(fe.Field(), fe.Value(), "failed '"+fe.Tag()+"' validation")
	}
	return out
}
