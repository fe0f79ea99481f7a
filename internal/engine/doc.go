// Package engine provides the editing core of drawstorm.
//
// The engine package serves as the main facade, combining the document
// store, the concrete diagram commands and the undo/redo history into a
// single thread-safe API used by UI triggers, scripts and the application
// layer.
//
// # Architecture
//
// The engine is built on several packages:
//
//   - diagram: immutable document model (shapes, connectors, sheets)
//   - store: authoritative document holder with observers
//   - engine/command: reversible diagram edits as a closed set of kinds
//   - engine/history: bounded undo/redo stacks, groups and checkpoints
//
// # Basic Usage
//
//	e := engine.New()
//
//	id, _ := e.AddShape(diagram.Shape{Type: "rectangle", Width: 40, Height: 30})
//	e.MoveShapes([]string{id}, diagram.Point{X: 10, Y: 0})
//
//	e.Undo() // shape back at its original position
//	e.Redo()
//
//	desc, ok := e.UndoDescription() // "Move 1 shape(s)", true
//
// Commands built elsewhere are run through ExecuteCommand:
//
//	cmd := command.NewAddShape(e.Store(), sheetID, shape)
//	e.ExecuteCommand(cmd)
//
// # Grouping
//
// Several edits can be merged into a single undo unit:
//
//	e.Transaction("Align", func() error {
//	    if err := e.MoveShapes(left, dx); err != nil {
//	        return err
//	    }
//	    return e.MoveShapes(right, dx)
//	})
//
// # Persistence
//
// History serializes to JSON (HistoryJSON) and is restored with Open, which
// decodes each record back into a live command bound to the engine's store.
//
// # Read-Only Mode
//
//	e := engine.New(engine.WithDocument(doc), engine.WithReadOnly())
//	_, err := e.AddShape(shape) // err == engine.ErrReadOnly
package engine
