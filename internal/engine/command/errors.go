package command

import "errors"

// Errors returned by command constructors and decoding.
var (
	// ErrSheetNotFound indicates the target sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrShapeNotFound indicates a referenced shape does not exist.
	ErrShapeNotFound = errors.New("shape not found")

	// ErrConnectorNotFound indicates a referenced connector does not exist.
	ErrConnectorNotFound = errors.New("connector not found")

	// ErrNotAGroup indicates an ungroup target that is not a group shape.
	ErrNotAGroup = errors.New("shape is not a group")

	// ErrAlreadyGrouped indicates a group member that already has a parent.
	ErrAlreadyGrouped = errors.New("shape already belongs to a group")

	// ErrNothingSelected indicates an empty ID list where one is required.
	ErrNothingSelected = errors.New("no shapes given")

	// ErrUnknownKind indicates a record with an unrecognized type tag.
	ErrUnknownKind = errors.New("unknown command kind")
)
