package command

import (
	"fmt"
	"slices"

	"github.com/dshills/drawstorm/internal/diagram"
)

// AddSheetData adds a sheet and makes it current.
type AddSheetData struct {
	Target
	Sheet       diagram.Sheet `json:"sheet"`
	Index       int           `json:"index"`
	PrevCurrent string        `json:"prevCurrent,omitempty"`
}

func (AddSheetData) kind() Kind { return KindAddSheet }

func (p AddSheetData) describe() string {
	return fmt.Sprintf("Add sheet: %s", p.Sheet.Name)
}

func (p AddSheetData) execute(doc diagram.Document) diagram.Document {
	return doc.WithSheet(p.Sheet, p.Index).WithCurrentSheet(p.Sheet.ID)
}

func (p AddSheetData) undo(doc diagram.Document) diagram.Document {
	return doc.WithoutSheet(p.Sheet.ID).WithCurrentSheet(p.PrevCurrent)
}

// NewAddSheet creates a command that inserts sheet at index (append when
// index is negative) and switches to it.
func NewAddSheet(st State, sheet diagram.Sheet, index int) *Command {
	return newCommand(st, AddSheetData{
		Target:      Target{SheetID: sheet.ID},
		Sheet:       sheet.Clone(),
		Index:       index,
		PrevCurrent: st.Snapshot().CurrentSheetID,
	})
}

// RenameSheetData renames a sheet.
type RenameSheetData struct {
	Target
	Old string `json:"old"`
	New string `json:"new"`
}

func (RenameSheetData) kind() Kind { return KindRenameSheet }

func (p RenameSheetData) describe() string {
	return fmt.Sprintf("Rename sheet to %q", p.New)
}

func (p RenameSheetData) execute(s diagram.Sheet) diagram.Sheet {
	return s.WithName(p.New)
}

func (p RenameSheetData) undo(s diagram.Sheet) diagram.Sheet {
	return s.WithName(p.Old)
}

// NewRenameSheet creates a command that renames a sheet.
func NewRenameSheet(st State, sheetID, name string) (*Command, error) {
	sheet, ok := st.Snapshot().Sheet(sheetID)
	if !ok {
		return nil, fmt.Errorf("rename sheet: %w: %s", ErrSheetNotFound, sheetID)
	}
	return newCommand(st, RenameSheetData{
		Target: Target{SheetID: sheetID},
		Old:    sheet.Name,
		New:    name,
	}), nil
}

// DeleteSheetData removes a whole sheet, captured at execution time.
type DeleteSheetData struct {
	Target
	Captured   bool          `json:"captured"`
	Sheet      diagram.Sheet `json:"sheet"`
	Index      int           `json:"index"`
	WasCurrent bool          `json:"wasCurrent"`
}

func (DeleteSheetData) kind() Kind { return KindDeleteSheet }

func (p DeleteSheetData) describe() string {
	if p.Captured {
		return fmt.Sprintf("Delete sheet: %s", p.Sheet.Name)
	}
	return "Delete sheet"
}

func (p DeleteSheetData) execute(doc diagram.Document) (diagram.Document, payload) {
	sheet, ok := doc.Sheet(p.SheetID)
	if !ok {
		return doc, p
	}
	p.Captured = true
	p.Sheet = sheet
	p.Index = doc.SheetIndex(p.SheetID)
	p.WasCurrent = doc.CurrentSheetID == p.SheetID
	return doc.WithoutSheet(p.SheetID), p
}

func (p DeleteSheetData) undo(doc diagram.Document) diagram.Document {
	if !p.Captured {
		return doc
	}
	doc = doc.WithSheet(p.Sheet, p.Index)
	if p.WasCurrent {
		doc = doc.WithCurrentSheet(p.Sheet.ID)
	}
	return doc
}

// NewDeleteSheet creates a command that deletes a sheet.
func NewDeleteSheet(st State, sheetID string) *Command {
	return newCommand(st, DeleteSheetData{Target: Target{SheetID: sheetID}})
}

// SetSelectionData replaces a sheet's selection.
type SetSelectionData struct {
	Target
	Old []string `json:"old"`
	New []string `json:"new"`
}

func (SetSelectionData) kind() Kind { return KindSetSelection }

func (p SetSelectionData) describe() string {
	return fmt.Sprintf("Select %d item(s)", len(p.New))
}

func (p SetSelectionData) execute(s diagram.Sheet) diagram.Sheet {
	return s.WithSelection(p.New)
}

func (p SetSelectionData) undo(s diagram.Sheet) diagram.Sheet {
	return s.WithSelection(p.Old)
}

// NewSetSelection creates a command that selects ids on a sheet.
func NewSetSelection(st State, sheetID string, ids []string) (*Command, error) {
	sheet, ok := st.Snapshot().Sheet(sheetID)
	if !ok {
		return nil, fmt.Errorf("set selection: %w: %s", ErrSheetNotFound, sheetID)
	}
	return newCommand(st, SetSelectionData{
		Target: Target{SheetID: sheetID},
		Old:    slices.Clone(sheet.Selection),
		New:    slices.Clone(ids),
	}), nil
}
