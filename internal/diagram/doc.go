// Package diagram defines the document model edited by drawstorm.
//
// A Document holds an ordered set of Sheets. Each Sheet owns the shapes and
// connectors drawn on it, their z-order, and the current selection.
//
// # Value Semantics
//
// Documents and sheets are values. Every With*/Without* method returns a
// modified copy and leaves the receiver untouched, so a state store can swap
// whole documents atomically and readers holding an older snapshot never
// observe a partial update:
//
//	doc = doc.UpdateSheet(sheetID, func(s diagram.Sheet) diagram.Sheet {
//	    return s.WithShape(shape)
//	})
//
// Property maps are treated as immutable once stored; helpers such as
// Properties.Merge return new maps instead of writing in place.
//
// # Identifiers
//
// Entities are addressed by string IDs that are unique within a sheet.
// NewID generates random UUIDs for new entities.
package diagram
