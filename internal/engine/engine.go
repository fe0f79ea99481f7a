package engine

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/dshills/drawstorm/internal/diagram"
	"github.com/dshills/drawstorm/internal/engine/command"
	"github.com/dshills/drawstorm/internal/engine/history"
	"github.com/dshills/drawstorm/internal/store"
)

// Re-export commonly used types for convenience.
type (
	// Command is an undoable edit.
	Command = history.Command

	// Record is the serialized form of a command.
	Record = history.Record

	// HistorySnapshot is the serialized form of both history stacks.
	HistorySnapshot = history.Snapshot

	// HistorySize reports the depth of both history stacks.
	HistorySize = history.Size

	// Logger receives debug traces.
	Logger = history.Logger
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Engine is the main facade of the diagram editor backend.
// It binds one document store to one undo/redo history and offers
// builders for the edits that UI triggers and scripts perform.
//
// All operations are safe for concurrent use. Builders read the document
// and execute the resulting command under one lock, and Undo and Redo take
// the same lock, so none of them can run between a builder's read and its
// execute. Transaction does not hold the lock across fn.
type Engine struct {
	mu sync.Mutex

	store   *store.Store
	history *history.Manager
	logger  Logger

	// Configuration
	maxHistory int
	readOnly   bool
	initDoc    *diagram.Document
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxHistory: DefaultMaxHistorySize,
		logger:     nopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}

	doc := diagram.NewDocument(diagram.NewID(), "Untitled")
	if e.initDoc != nil {
		doc = *e.initDoc
	}
	e.store = store.New(doc)
	e.history = history.NewManager(
		history.WithMaxHistorySize(e.maxHistory),
		history.WithLogger(e.logger),
	)
	return e
}

// ============================================================================
// State
// ============================================================================

// Document returns the current document.
func (e *Engine) Document() diagram.Document {
	return e.store.Snapshot()
}

// Revision returns the store revision; it increases on every change.
func (e *Engine) Revision() uint64 {
	return e.store.Revision()
}

// Subscribe registers fn for document changes and returns an unsubscribe
// function. fn runs on the writing goroutine and must not edit the engine.
func (e *Engine) Subscribe(fn store.Observer) func() {
	return e.store.Subscribe(fn)
}

// Store returns the underlying document store.
func (e *Engine) Store() *store.Store {
	return e.store
}

// IsReadOnly reports whether edits are rejected.
func (e *Engine) IsReadOnly() bool {
	return e.readOnly
}

// CurrentSheet returns the current sheet.
func (e *Engine) CurrentSheet() (diagram.Sheet, error) {
	s, ok := e.store.Snapshot().CurrentSheet()
	if !ok {
		return diagram.Sheet{}, ErrNoCurrentSheet
	}
	return s, nil
}

// Open replaces the document and resets history. When historyJSON is not
// empty, the history stacks are rebuilt from it.
func (e *Engine) Open(doc diagram.Document, historyJSON []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var undo, redo []history.Command
	if len(historyJSON) > 0 {
		var err error
		undo, redo, err = command.DecodeSnapshot(e.store, historyJSON)
		if err != nil {
			return fmt.Errorf("open %s: %w", doc.ID, err)
		}
	}

	e.store.Replace(doc)
	e.history.Clear()
	e.history.Restore(undo, redo)
	e.logger.Debug("open: %s (%d undo, %d redo)", doc.ID, len(undo), len(redo))
	return nil
}

// ============================================================================
// History
// ============================================================================

// ExecuteCommand executes cmd and records it for undo.
func (e *Engine) ExecuteCommand(cmd Command) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.executeLocked(cmd)
}

func (e *Engine) executeLocked(cmd Command) error {
	if e.readOnly {
		return ErrReadOnly
	}
	e.history.Execute(cmd)
	return nil
}

// Undo reverses the most recent command. It returns false when there is
// nothing to undo.
func (e *Engine) Undo() bool {
	if e.readOnly {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Undo()
}

// Redo re-applies the most recently undone command. It returns false when
// there is nothing to redo.
func (e *Engine) Redo() bool {
	if e.readOnly {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Redo()
}

// CanUndo returns true if there are operations to undo.
func (e *Engine) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo returns true if there are operations to redo.
func (e *Engine) CanRedo() bool {
	return e.history.CanRedo()
}

// UndoDescription returns the label of the next undo, if any.
func (e *Engine) UndoDescription() (string, bool) {
	return e.history.UndoDescription()
}

// RedoDescription returns the label of the next redo, if any.
func (e *Engine) RedoDescription() (string, bool) {
	return e.history.RedoDescription()
}

// HistorySize returns the depth of both stacks.
func (e *Engine) HistorySize() HistorySize {
	return e.history.Size()
}

// History returns the serialized history, oldest entry first.
func (e *Engine) History() HistorySnapshot {
	return e.history.Snapshot()
}

// HistoryJSON returns History encoded as JSON.
func (e *Engine) HistoryJSON() ([]byte, error) {
	return e.history.MarshalJSON()
}

// Checkpoint returns the document together with the history JSON that
// describes how it was reached. It fails with ErrUndoGroupOpen while an
// undo group is collecting commands.
func (e *Engine) Checkpoint() (diagram.Document, []byte, error) {
	var doc diagram.Document
	snap, settled := e.history.SnapshotWith(func() {
		doc = e.store.Snapshot()
	})
	if !settled {
		return diagram.Document{}, nil, ErrUndoGroupOpen
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return diagram.Document{}, nil, fmt.Errorf("encode history: %w", err)
	}
	return doc, data, nil
}

// ClearHistory empties both stacks without touching the document.
func (e *Engine) ClearHistory() {
	e.history.Clear()
}

// SetMaxHistorySize changes the history limit, evicting old entries at once.
func (e *Engine) SetMaxHistorySize(n int) {
	e.history.SetMaxHistorySize(n)
}

// BeginUndoGroup starts grouping commands into a single undo unit.
func (e *Engine) BeginUndoGroup(name string) {
	e.history.BeginGroup(name)
}

// EndUndoGroup closes the current undo group.
func (e *Engine) EndUndoGroup() {
	e.history.EndGroup()
}

// CancelUndoGroup reverts and discards the commands of the open group.
func (e *Engine) CancelUndoGroup() {
	e.history.CancelGroup()
}

// Transaction runs fn inside an undo group. If fn fails the group is
// cancelled and its edits reverted.
func (e *Engine) Transaction(name string, fn func() error) error {
	return e.history.Transaction(name, fn)
}

// ============================================================================
// Shape edits
// ============================================================================

// AddShape adds shape to the current sheet and returns its ID. An ID is
// generated when shape has none.
func (e *Engine) AddShape(shape diagram.Shape) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sheet, err := e.currentSheetLocked()
	if err != nil {
		return "", err
	}
	if shape.ID == "" {
		shape.ID = diagram.NewID()
	}
	return shape.ID, e.executeLocked(command.NewAddShape(e.store, sheet.ID, shape))
}

// DeleteSelection deletes the selected shapes and connectors of the current
// sheet, together with connectors attached to the deleted shapes.
func (e *Engine) DeleteSelection() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sheet, err := e.currentSheetLocked()
	if err != nil {
		return err
	}
	var shapes, connectors []string
	for _, id := range sheet.Selection {
		if _, ok := sheet.Shapes[id]; ok {
			shapes = append(shapes, id)
		} else if _, ok := sheet.Connectors[id]; ok {
			connectors = append(connectors, id)
		}
	}
	if len(shapes) == 0 && len(connectors) == 0 {
		return command.ErrNothingSelected
	}
	return e.executeLocked(command.NewDeleteShapes(e.store, sheet.ID, shapes, connectors))
}

// DeleteShapes deletes shapes from the current sheet.
func (e *Engine) DeleteShapes(ids []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sheet, err := e.currentSheetLocked()
	if err != nil {
		return err
	}
	return e.executeLocked(command.NewDeleteShapes(e.store, sheet.ID, ids, nil))
}

// MoveShapes moves shapes on the current sheet by delta. Unknown IDs are
// skipped.
func (e *Engine) MoveShapes(ids []string, delta diagram.Point) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sheet, err := e.currentSheetLocked()
	if err != nil {
		return err
	}
	moves := make([]command.ShapeMove, 0, len(ids))
	for _, id := range ids {
		sh, ok := sheet.Shape(id)
		if !ok {
			continue
		}
		from := sh.Position()
		moves = append(moves, command.ShapeMove{ID: id, From: from, To: from.Add(delta)})
	}
	if len(moves) == 0 {
		return command.ErrNothingSelected
	}
	return e.executeLocked(command.NewMoveShapes(e.store, sheet.ID, moves))
}

// ResizeShape sets the bounds of a shape on the current sheet.
func (e *Engine) ResizeShape(id string, bounds diagram.Rect) error {
	return e.build(func(sheetID string) (*command.Command, error) {
		return command.NewResizeShape(e.store, sheetID, id, bounds)
	})
}

// UpdateShapeProperties merges patch into a shape's properties.
func (e *Engine) UpdateShapeProperties(id string, patch diagram.Properties) error {
	return e.build(func(sheetID string) (*command.Command, error) {
		return command.NewUpdateShapeProperties(e.store, sheetID, id, patch)
	})
}

// BringToFront moves shapes to the top of the z-order.
func (e *Engine) BringToFront(ids []string) error {
	return e.reorder(ids, diagram.BringToFront)
}

// SendToBack moves shapes to the bottom of the z-order.
func (e *Engine) SendToBack(ids []string) error {
	return e.reorder(ids, diagram.SendToBack)
}

// MoveForward moves shapes one step up the z-order.
func (e *Engine) MoveForward(ids []string) error {
	return e.reorder(ids, diagram.MoveForward)
}

// MoveBackward moves shapes one step down the z-order.
func (e *Engine) MoveBackward(ids []string) error {
	return e.reorder(ids, diagram.MoveBackward)
}

func (e *Engine) reorder(ids []string, fn func(order, ids []string) []string) error {
	return e.buildSheet(func(sheet diagram.Sheet) (*command.Command, error) {
		return command.NewReorderShapes(e.store, sheet.ID, fn(sheet.ShapeOrder, ids))
	})
}

// GroupSelection groups the selected shapes of the current sheet and
// returns the ID of the new group.
func (e *Engine) GroupSelection() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sheet, err := e.currentSheetLocked()
	if err != nil {
		return "", err
	}
	var ids []string
	var members []diagram.Shape
	for _, id := range sheet.Selection {
		if sh, ok := sheet.Shape(id); ok && sh.ParentID == "" {
			ids = append(ids, id)
			members = append(members, sh)
		}
	}
	group := diagram.NewGroup(diagram.NewID(), members)
	cmd, err := command.NewGroupShapes(e.store, sheet.ID, ids, group)
	if err != nil {
		return "", err
	}
	return group.ID, e.executeLocked(cmd)
}

// Ungroup dissolves a group on the current sheet.
func (e *Engine) Ungroup(id string) error {
	return e.build(func(sheetID string) (*command.Command, error) {
		return command.NewUngroupShapes(e.store, sheetID, id)
	})
}

// Select replaces the selection of the current sheet.
func (e *Engine) Select(ids []string) error {
	return e.build(func(sheetID string) (*command.Command, error) {
		return command.NewSetSelection(e.store, sheetID, ids)
	})
}

// ============================================================================
// Connector edits
// ============================================================================

// AddConnector adds c to the current sheet and returns its ID.
func (e *Engine) AddConnector(c diagram.Connector) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sheet, err := e.currentSheetLocked()
	if err != nil {
		return "", err
	}
	if c.ID == "" {
		c.ID = diagram.NewID()
	}
	if c.Type == "" {
		c.Type = diagram.ConnectorStraight
	}
	return c.ID, e.executeLocked(command.NewAddConnector(e.store, sheet.ID, c))
}

// DeleteConnectors deletes connectors from the current sheet.
func (e *Engine) DeleteConnectors(ids []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sheet, err := e.currentSheetLocked()
	if err != nil {
		return err
	}
	return e.executeLocked(command.NewDeleteConnectors(e.store, sheet.ID, ids))
}

// UpdateConnectorProperties merges patch into a connector's properties.
func (e *Engine) UpdateConnectorProperties(id string, patch diagram.Properties) error {
	return e.build(func(sheetID string) (*command.Command, error) {
		return command.NewUpdateConnectorProperties(e.store, sheetID, id, patch)
	})
}

// ============================================================================
// Sheets
// ============================================================================

// AddSheet appends a new sheet, makes it current and returns its ID.
func (e *Engine) AddSheet(name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sheet := diagram.NewSheet(diagram.NewID(), name)
	return sheet.ID, e.executeLocked(command.NewAddSheet(e.store, sheet, -1))
}

// RenameSheet renames a sheet.
func (e *Engine) RenameSheet(id, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cmd, err := command.NewRenameSheet(e.store, id, name)
	if err != nil {
		return err
	}
	return e.executeLocked(cmd)
}

// DeleteSheet deletes a sheet. The last remaining sheet cannot be deleted.
func (e *Engine) DeleteSheet(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc := e.store.Snapshot()
	if _, ok := doc.Sheet(id); !ok {
		return fmt.Errorf("%w: %s", command.ErrSheetNotFound, id)
	}
	if len(doc.Sheets) == 1 {
		return ErrLastSheet
	}
	return e.executeLocked(command.NewDeleteSheet(e.store, id))
}

// SwitchSheet makes id the current sheet. Switching is navigation, not an
// edit, so it is not recorded in history.
func (e *Engine) SwitchSheet(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.store.Snapshot().Sheet(id); !ok {
		return fmt.Errorf("%w: %s", command.ErrSheetNotFound, id)
	}
	e.store.Update(func(d diagram.Document) diagram.Document {
		return d.WithCurrentSheet(id)
	})
	return nil
}

// SheetIDs returns sheet IDs in tab order.
func (e *Engine) SheetIDs() []string {
	return slices.Clone(e.store.Snapshot().SheetOrder)
}

// ============================================================================
// Helpers
// ============================================================================

func (e *Engine) currentSheetLocked() (diagram.Sheet, error) {
	s, ok := e.store.Snapshot().CurrentSheet()
	if !ok {
		return diagram.Sheet{}, ErrNoCurrentSheet
	}
	return s, nil
}

// build constructs a command for the current sheet and executes it.
func (e *Engine) build(fn func(sheetID string) (*command.Command, error)) error {
	return e.buildSheet(func(s diagram.Sheet) (*command.Command, error) {
		return fn(s.ID)
	})
}

func (e *Engine) buildSheet(fn func(diagram.Sheet) (*command.Command, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sheet, err := e.currentSheetLocked()
	if err != nil {
		return err
	}
	cmd, err := fn(sheet)
	if err != nil {
		return err
	}
	return e.executeLocked(cmd)
}
