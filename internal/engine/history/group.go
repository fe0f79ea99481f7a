package history

// BeginGroup starts a command group.
// Commands executed while grouping are recorded as a single undo unit.
// Groups nest: only the outermost EndGroup records the unit, under the
// outermost name.
func (m *Manager) BeginGroup(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.grouping {
		m.grouping = true
		m.groupName = name
		m.groupCmds = nil
	}
	m.groupStarts = append(m.groupStarts, len(m.groupCmds))
}

// EndGroup closes the innermost open group. When it was the outermost,
// all commands since its BeginGroup are combined into a CompoundCommand.
func (m *Manager) EndGroup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.grouping {
		return
	}
	m.groupStarts = m.groupStarts[:len(m.groupStarts)-1]
	if len(m.groupStarts) == 0 {
		m.endGroupLocked()
	}
}

// GroupDepth returns the number of open groups.
func (m *Manager) GroupDepth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.groupStarts)
}

// endGroupLocked closes every open level and records the collected
// commands.
func (m *Manager) endGroupLocked() {
	if !m.grouping {
		return
	}

	m.grouping = false
	m.groupStarts = nil
	cmds := m.groupCmds
	m.groupCmds = nil

	switch len(cmds) {
	case 0:
		return
	case 1:
		m.pushLocked(cmds[0])
	default:
		m.pushLocked(NewCompoundCommand(m.groupName, cmds...))
	}
}

// CancelGroup reverts the commands executed since the innermost BeginGroup
// and closes that level. Enclosing groups stay open with their earlier
// commands intact.
func (m *Manager) CancelGroup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.grouping {
		return
	}
	depth := len(m.groupStarts) - 1
	from := m.groupStarts[depth]
	for i := len(m.groupCmds) - 1; i >= from; i-- {
		m.groupCmds[i].Undo()
	}
	clear(m.groupCmds[from:])
	m.groupCmds = m.groupCmds[:from]
	m.groupStarts = m.groupStarts[:depth]

	if depth == 0 {
		m.grouping = false
		m.groupCmds = nil
	}
}

// IsGrouping returns true if currently in a command group.
func (m *Manager) IsGrouping() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.grouping
}

// Transaction executes fn within a grouped undo context.
// If fn returns an error the group is cancelled and its effects reverted,
// including those of transactions nested inside fn.
func (m *Manager) Transaction(name string, fn func() error) error {
	m.BeginGroup(name)

	if err := fn(); err != nil {
		m.CancelGroup()
		return err
	}

	m.EndGroup()
	return nil
}

// Checkpoint represents a point in history that can be returned to.
type Checkpoint struct {
	undoDepth int
}

// CreateCheckpoint creates a checkpoint at the current history position.
func (m *Manager) CreateCheckpoint() Checkpoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Checkpoint{undoDepth: len(m.undoStack)}
}

// UndoToCheckpoint undoes all commands recorded since the checkpoint and
// returns how many were undone.
func (m *Manager) UndoToCheckpoint(cp Checkpoint) int {
	n := 0
	for m.Size().Undo > cp.undoDepth && m.Undo() {
		n++
	}
	return n
}

// RedoToCheckpoint redoes commands until the undo depth reaches the
// checkpoint or the redo stack runs out.
func (m *Manager) RedoToCheckpoint(cp Checkpoint) int {
	n := 0
	for m.Size().Undo < cp.undoDepth && m.Redo() {
		n++
	}
	return n
}
