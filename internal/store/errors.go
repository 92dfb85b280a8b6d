package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned only at edges where absence is an error;
// Get methods return a nil entity instead.
var ErrNotFound = errors.New("not found")

// ReferentialError reports a write or delete that would violate a
// foreign-key invariant: a missing composer or work, a dangling track
// part index, or a delete of a still-referenced entity.
type ReferentialError struct {
	Op  string
	Err error
}

func (e *ReferentialError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ReferentialError) Unwrap() error {
	return e.Err
}

// MissingItemError reports a dangling reference discovered while
// rehydrating a description. Should not occur while the write-side
// invariants hold, but deletes do not cascade, so it is checked.
type MissingItemError struct {
	Kind string
	ID   string
}

func (e *MissingItemError) Error() string {
	return fmt.Sprintf("missing %s %q", e.Kind, e.ID)
}

const (
	sqliteConstraint           = 19
	sqliteConstraintCheck      = 275
	sqliteConstraintForeignKey = 787
)

func isConstraintErr(err error) bool {
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		switch coder.Code() {
		case sqliteConstraint, sqliteConstraintCheck, sqliteConstraintForeignKey:
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "CHECK constraint failed")
}

// classify maps engine constraint violations to ReferentialError and
// wraps everything else with the failing operation.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var refErr *ReferentialError
	if errors.As(err, &refErr) {
		return err
	}
	if isConstraintErr(err) {
		return &ReferentialError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
