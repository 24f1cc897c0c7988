package recgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/recgo/dictionary"
	"github.com/hupe1980/recgo/graph"
	"github.com/hupe1980/recgo/model"
	"github.com/hupe1980/recgo/serializer"
	"github.com/hupe1980/recgo/storage"
)

var (
	// ErrNotFound is returned when a record or property name does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCorrupted is returned when stored bytes cannot be decoded.
	ErrCorrupted = errors.New("corrupted record")

	// ErrNameConflict is returned when a rename target is already in use.
	ErrNameConflict = errors.New("property name already in use")

	// ErrClosed is returned by operations on a closed DB.
	ErrClosed = errors.New("database is closed")
)

// ErrRecordTypeMismatch indicates a record of the wrong kind or schema type.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrRecordTypeMismatch struct {
	RID      model.RID
	Expected string
	Actual   string
	cause    error
}

func (e *ErrRecordTypeMismatch) Error() string {
	return fmt.Sprintf("record %s: expected %s, got %s", e.RID, e.Expected, e.Actual)
}

func (e *ErrRecordTypeMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var rte *serializer.RecordTypeError
	if errors.As(err, &rte) {
		return &ErrRecordTypeMismatch{RID: rte.RID, Expected: "property record", Actual: rte.Type.String(), cause: err}
	}

	// Anything that failed to decode or verify. Checked before not-found: a record
	// naming an unassigned property id wraps dictionary.ErrNotFound.
	if errors.Is(err, serializer.ErrCorrupted) || errors.Is(err, storage.ErrChecksum) {
		return fmt.Errorf("%w: %w", ErrCorrupted, err)
	}

	// Not found unification.
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, dictionary.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	if errors.Is(err, dictionary.ErrNameConflict) {
		return fmt.Errorf("%w: %w", ErrNameConflict, err)
	}

	if errors.Is(err, graph.ErrNotVertex) {
		return &ErrRecordTypeMismatch{Expected: model.RecordVertex.String(), Actual: "non-vertex", cause: err}
	}

	return err
}
