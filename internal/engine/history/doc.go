// Package history provides undo/redo for diagram editing.
//
// The history system uses the Command pattern: every user edit is wrapped in
// a Command that can apply itself, reverse itself, describe itself for menu
// labels, and serialize itself to a Record.
//
// # Commands
//
// A Command mutates shared state only through the state accessor it was
// constructed with. Execute must be repeatable: after Undo, calling Execute
// again reproduces the original effect from data captured when the command
// was built, never from whatever the state happens to hold at redo time.
//
// # Manager
//
// The Manager owns two bounded stacks:
//
//	m := history.NewManager(history.WithMaxHistorySize(500))
//
//	m.Execute(cmd) // apply and record; clears redo
//	m.Undo()       // false when nothing to undo
//	m.Redo()       // false when nothing to redo
//
// Executing any new command empties the redo stack; branching history is not
// supported. When the undo stack grows past the limit the oldest entries are
// evicted first.
//
// # Grouping
//
// Several commands can be recorded as one undo unit:
//
//	m.BeginGroup("Align shapes")
//	m.Execute(moveA)
//	m.Execute(moveB)
//	m.EndGroup()
//
// # Serialization
//
// Snapshot returns the wire form of both stacks, bottom to top:
//
//	{"undo": [{"type": "AddShape", "data": {...}, "timestamp": 1700000000000}], "redo": []}
//
// Records carry no schema version.
package history
