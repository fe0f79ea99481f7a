// Package command implements the concrete diagram editing commands.
//
// Every command is a *Command value whose behaviour is selected by a closed
// set of payload types, one per Kind. A single dispatcher applies a payload
// forwards (execute/redo) or backwards (undo). Payloads capture target IDs and
// the pre-state needed for undo; they never hold references into the live
// document.
//
// Commands reach the document only through the State they were built with:
//
//	cmd := command.NewAddShape(st, sheetID, shape)
//	manager.Execute(cmd)
//
// Constructors that must validate the current document return an error
// before anything is mutated, e.g. NewUngroupShapes on a non-group shape.
// Once built, commands never fail: when their sheet has disappeared,
// execute and undo leave the document unchanged.
package command
