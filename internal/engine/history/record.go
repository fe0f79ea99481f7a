package history

import "time"

// Record is the serialized form of a command.
//
// Type is a closed set of tags, one per command kind. Data holds the
// kind-specific payload and must be JSON-safe. Timestamp is the creation
// time in Unix milliseconds.
type Record struct {
	Type      string `json:"type"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

// Time returns the timestamp as a time.Time.
func (r Record) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Snapshot is the serialized form of both history stacks, bottom to top.
type Snapshot struct {
	Undo []Record `json:"undo"`
	Redo []Record `json:"redo"`
}

// Size reports the depth of both stacks.
type Size struct {
	Undo int `json:"undo"`
	Redo int `json:"redo"`
}

// EntryInfo provides read-only info about a history entry.
// Used for displaying undo/redo history to users.
type EntryInfo struct {
	Type        string
	Description string
	Timestamp   time.Time
}

func infoOf(cmd Command) EntryInfo {
	rec := cmd.Record()
	return EntryInfo{
		Type:        rec.Type,
		Description: cmd.Description(),
		Timestamp:   rec.Time(),
	}
}
