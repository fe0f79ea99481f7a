package history

import (
	"encoding/json"
	"sync"
)

// DefaultMaxHistorySize is the undo depth used when none is configured.
const DefaultMaxHistorySize = 500

// Logger receives debug traces of history activity.
type Logger interface {
	Debug(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxHistorySize sets the maximum undo depth. Non-positive values are
// ignored.
func WithMaxHistorySize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxSize = n
		}
	}
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Manager manages undo/redo state for a document.
//
// Execute, Undo and Redo are serialized by a single mutex that is held while
// the command body runs, so commands must not call back into the Manager.
type Manager struct {
	mu sync.Mutex

	undoStack []Command
	redoStack []Command

	// Grouping state. groupStarts holds, per open nesting level, the index
	// into groupCmds where that level began.
	grouping    bool
	groupName   string
	groupCmds   []Command
	groupStarts []int

	maxSize int
	logger  Logger
}

// NewManager creates a new history manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		maxSize: DefaultMaxHistorySize,
		logger:  nopLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Execute runs a command and records it on the undo stack.
// The redo stack is cleared unconditionally.
func (m *Manager) Execute(cmd Command) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd.Execute()
	m.logger.Debug("execute: %s", cmd.Description())

	m.redoStack = nil
	if m.grouping {
		m.groupCmds = append(m.groupCmds, cmd)
		return
	}
	m.pushLocked(cmd)
}

// pushLocked adds a command without acquiring the lock.
func (m *Manager) pushLocked(cmd Command) {
	m.undoStack = append(m.undoStack, cmd)
	m.redoStack = nil
	m.trimLocked()
}

// trimLocked evicts the oldest entries beyond maxSize.
func (m *Manager) trimLocked() {
	if excess := len(m.undoStack) - m.maxSize; excess > 0 {
		clear(m.undoStack[:excess])
		m.undoStack = m.undoStack[excess:]
		m.logger.Debug("evicted %d oldest history entries", excess)
	}
}

// Undo reverses the most recent command.
// Returns false when there is nothing to undo. An open group is closed first.
func (m *Manager) Undo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.endGroupLocked()
	if len(m.undoStack) == 0 {
		return false
	}

	cmd := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	cmd.Undo()
	m.redoStack = append(m.redoStack, cmd)
	m.logger.Debug("undo: %s", cmd.Description())
	return true
}

// Redo re-applies the most recently undone command.
// Returns false when there is nothing to redo.
func (m *Manager) Redo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.endGroupLocked()
	if len(m.redoStack) == 0 {
		return false
	}

	cmd := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	cmd.Execute()
	m.undoStack = append(m.undoStack, cmd)
	m.trimLocked()
	m.logger.Debug("redo: %s", cmd.Description())
	return true
}

// CanUndo returns true if undo is available.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redoStack) > 0
}

// UndoDescription returns the label of the next undo without removing it.
// The boolean is false when the undo stack is empty.
func (m *Manager) UndoDescription() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undoStack) == 0 {
		return "", false
	}
	return m.undoStack[len(m.undoStack)-1].Description(), true
}

// RedoDescription returns the label of the next redo without removing it.
// The boolean is false when the redo stack is empty.
func (m *Manager) RedoDescription() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.redoStack) == 0 {
		return "", false
	}
	return m.redoStack[len(m.redoStack)-1].Description(), true
}

// Size returns the depth of both stacks.
func (m *Manager) Size() Size {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Size{Undo: len(m.undoStack), Redo: len(m.redoStack)}
}

// Clear removes all undo/redo history, e.g. when another document is loaded.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.undoStack = nil
	m.redoStack = nil
	m.grouping = false
	m.groupCmds = nil
	m.groupStarts = nil
}

// Restore replaces both stacks with previously recorded commands without
// executing them. The caller guarantees the current state matches the top of
// undo.
func (m *Manager) Restore(undo, redo []Command) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.undoStack = append([]Command(nil), undo...)
	m.redoStack = append([]Command(nil), redo...)
	m.grouping = false
	m.groupCmds = nil
	m.groupStarts = nil
	m.trimLocked()
}

// Snapshot returns the serialized stacks, bottom to top.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// SnapshotWith calls read and serializes the stacks while no command can
// run, so whatever read observes matches the returned history. The boolean
// is false when a group is open and its commands are not yet on the stack.
func (m *Manager) SnapshotWith(read func()) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	read()
	return m.snapshotLocked(), !m.grouping
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{
		Undo: make([]Record, len(m.undoStack)),
		Redo: make([]Record, len(m.redoStack)),
	}
	for i, cmd := range m.undoStack {
		snap.Undo[i] = cmd.Record()
	}
	for i, cmd := range m.redoStack {
		snap.Redo[i] = cmd.Record()
	}
	return snap
}

// MarshalJSON encodes the history snapshot.
func (m *Manager) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Snapshot())
}

// UndoInfo returns info about available undo entries, oldest first.
func (m *Manager) UndoInfo() []EntryInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]EntryInfo, len(m.undoStack))
	for i, cmd := range m.undoStack {
		result[i] = infoOf(cmd)
	}
	return result
}

// RedoInfo returns info about available redo entries, oldest first.
func (m *Manager) RedoInfo() []EntryInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]EntryInfo, len(m.redoStack))
	for i, cmd := range m.redoStack {
		result[i] = infoOf(cmd)
	}
	return result
}

// SetMaxHistorySize changes the maximum undo depth.
// If the current stack is larger, oldest entries are removed.
func (m *Manager) SetMaxHistorySize(n int) {
	if n <= 0 {
		n = DefaultMaxHistorySize
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.maxSize = n
	m.trimLocked()
}

// MaxHistorySize returns the maximum undo depth.
func (m *Manager) MaxHistorySize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxSize
}
