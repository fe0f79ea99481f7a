package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrReadOnly indicates an edit was attempted on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")

	// ErrNoCurrentSheet indicates the document has no current sheet.
	ErrNoCurrentSheet = errors.New("no current sheet")

	// ErrLastSheet indicates an attempt to delete the only sheet.
	ErrLastSheet = errors.New("cannot delete the last sheet")

	// ErrUndoGroupOpen indicates state was requested mid-transaction.
	ErrUndoGroupOpen = errors.New("undo group is open")
)
