package history

import (
	"fmt"
	"time"
)

// Command is a reversible unit of change.
type Command interface {
	// Execute applies the forward effect. It is called again on redo.
	Execute()

	// Undo reverses the effect of the last Execute.
	Undo()

	// Description returns a short human-readable label.
	Description() string

	// Record returns the serializable form of the command.
	Record() Record
}

// KindBatch is the record type of a CompoundCommand.
const KindBatch = "Batch"

// CompoundCommand groups multiple commands as one undo unit.
type CompoundCommand struct {
	Name      string
	Commands  []Command
	timestamp int64
}

// NewCompoundCommand creates a new compound command.
func NewCompoundCommand(name string, commands ...Command) *CompoundCommand {
	return &CompoundCommand{
		Name:      name,
		Commands:  commands,
		timestamp: time.Now().UnixMilli(),
	}
}

// NewCompoundCommandAt creates a compound command with an explicit
// timestamp, used when rebuilding history from records.
func NewCompoundCommandAt(name string, timestamp int64, commands ...Command) *CompoundCommand {
	return &CompoundCommand{
		Name:      name,
		Commands:  commands,
		timestamp: timestamp,
	}
}

// Execute runs all commands in order.
func (c *CompoundCommand) Execute() {
	for _, cmd := range c.Commands {
		cmd.Execute()
	}
}

// Undo reverses all commands in reverse order.
func (c *CompoundCommand) Undo() {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		c.Commands[i].Undo()
	}
}

// Description returns the compound command's name.
func (c *CompoundCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d operations", len(c.Commands))
}

// BatchData is the payload of a Batch record.
type BatchData struct {
	Name     string   `json:"name"`
	Commands []Record `json:"commands"`
}

// Record serializes the compound command and its children.
func (c *CompoundCommand) Record() Record {
	children := make([]Record, len(c.Commands))
	for i, cmd := range c.Commands {
		children[i] = cmd.Record()
	}
	return Record{
		Type:      KindBatch,
		Data:      BatchData{Name: c.Name, Commands: children},
		Timestamp: c.timestamp,
	}
}

// Add adds a command to the compound command.
func (c *CompoundCommand) Add(cmd Command) {
	c.Commands = append(c.Commands, cmd)
}

// IsEmpty returns true if the compound command has no commands.
func (c *CompoundCommand) IsEmpty() bool {
	return len(c.Commands) == 0
}
