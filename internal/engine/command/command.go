package command

import (
	"time"

	"github.com/dshills/drawstorm/internal/diagram"
	"github.com/dshills/drawstorm/internal/engine/history"
)

// State is the document accessor injected into commands.
type State interface {
	// Snapshot returns the current document.
	Snapshot() diagram.Document

	// Update replaces the document with fn applied to it.
	Update(fn func(diagram.Document) diagram.Document)
}

// Kind is the type tag of a command.
type Kind string

// Command kinds.
const (
	KindAddShape                  Kind = "AddShape"
	KindDeleteShapes              Kind = "DeleteShapes"
	KindMoveShapes                Kind = "MoveShapes"
	KindResizeShape               Kind = "ResizeShape"
	KindUpdateShapeProperties     Kind = "UpdateShapeProperties"
	KindReorderShapes             Kind = "ReorderShapes"
	KindGroupShapes               Kind = "GroupShapes"
	KindUngroupShapes             Kind = "UngroupShapes"
	KindAddConnector              Kind = "AddConnector"
	KindDeleteConnectors          Kind = "DeleteConnectors"
	KindMoveConnectors            Kind = "MoveConnectors"
	KindUpdateConnectorProperties Kind = "UpdateConnectorProperties"
	KindReorderConnectors         Kind = "ReorderConnectors"
	KindAddSheet                  Kind = "AddSheet"
	KindRenameSheet               Kind = "RenameSheet"
	KindDeleteSheet               Kind = "DeleteSheet"
	KindSetSelection              Kind = "SetSelection"
)

// payload is implemented only by the *Data types in this package.
type payload interface {
	kind() Kind
	sheet() string
	describe() string
}

// Target identifies the sheet a command operates on.
type Target struct {
	SheetID string `json:"sheetId"`
}

func (t Target) sheet() string { return t.SheetID }

// now is the clock used for command timestamps.
var now = time.Now

// Command is a reversible diagram edit.
type Command struct {
	state     State
	payload   payload
	timestamp int64
}

var _ history.Command = (*Command)(nil)

func newCommand(st State, p payload) *Command {
	return &Command{
		state:     st,
		payload:   p,
		timestamp: now().UnixMilli(),
	}
}

// Kind returns the command's type tag.
func (c *Command) Kind() Kind {
	return c.payload.kind()
}

// SheetID returns the ID of the sheet the command targets.
func (c *Command) SheetID() string {
	return c.payload.sheet()
}

// Timestamp returns the creation time in Unix milliseconds.
func (c *Command) Timestamp() int64 {
	return c.timestamp
}

// Data returns the command's payload. Callers must treat it as read-only.
func (c *Command) Data() any {
	return c.payload
}

// Execute applies the command. Payloads that capture state lazily record it
// inside the same update, so the snapshot and the mutation are atomic.
func (c *Command) Execute() {
	c.state.Update(func(doc diagram.Document) diagram.Document {
		next, p := forward(doc, c.payload)
		c.payload = p
		return next
	})
}

// Undo reverses the command.
func (c *Command) Undo() {
	c.state.Update(func(doc diagram.Document) diagram.Document {
		return backward(doc, c.payload)
	})
}

// Description returns a human-readable label.
func (c *Command) Description() string {
	return c.payload.describe()
}

// Record returns the serialized form of the command.
func (c *Command) Record() history.Record {
	return history.Record{
		Type:      string(c.payload.kind()),
		Data:      c.payload,
		Timestamp: c.timestamp,
	}
}
