package diagram

import "slices"

// Document is the root of the editable state.
type Document struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Sheets         map[string]Sheet `json:"sheets"`
	SheetOrder     []string         `json:"sheetOrder"`
	CurrentSheetID string           `json:"currentSheetId"`
}

// NewDocument creates a document with a single empty sheet selected.
func NewDocument(id, name string) Document {
	sheet := NewSheet(NewID(), "Sheet 1")
	return Document{
		ID:             id,
		Name:           name,
		Sheets:         map[string]Sheet{sheet.ID: sheet},
		SheetOrder:     []string{sheet.ID},
		CurrentSheetID: sheet.ID,
	}
}

func (d Document) clone() Document {
	out := d
	out.Sheets = make(map[string]Sheet, len(d.Sheets))
	for id, s := range d.Sheets {
		out.Sheets[id] = s
	}
	out.SheetOrder = slices.Clone(d.SheetOrder)
	return out
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := d.clone()
	for id, s := range out.Sheets {
		out.Sheets[id] = s.Clone()
	}
	return out
}

// Sheet looks up a sheet by ID.
func (d Document) Sheet(id string) (Sheet, bool) {
	s, ok := d.Sheets[id]
	return s, ok
}

// CurrentSheet returns the sheet being edited.
func (d Document) CurrentSheet() (Sheet, bool) {
	return d.Sheet(d.CurrentSheetID)
}

// OrderedSheets returns the sheets in tab order.
func (d Document) OrderedSheets() []Sheet {
	out := make([]Sheet, 0, len(d.SheetOrder))
	for _, id := range d.SheetOrder {
		if s, ok := d.Sheets[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

// UpdateSheet applies fn to the sheet with the given ID.
// When the sheet does not exist the document is returned unchanged.
func (d Document) UpdateSheet(id string, fn func(Sheet) Sheet) Document {
	s, ok := d.Sheets[id]
	if !ok {
		return d
	}
	out := d.clone()
	out.Sheets[id] = fn(s)
	return out
}

// WithSheet inserts or replaces a sheet. New sheets are appended to the
// tab order, or placed at index when 0 <= index < len(SheetOrder).
func (d Document) WithSheet(s Sheet, index int) Document {
	out := d.clone()
	if _, exists := out.Sheets[s.ID]; !exists {
		if index >= 0 && index < len(out.SheetOrder) {
			out.SheetOrder = slices.Insert(out.SheetOrder, index, s.ID)
		} else {
			out.SheetOrder = append(out.SheetOrder, s.ID)
		}
	}
	out.Sheets[s.ID] = s
	return out
}

// WithoutSheet removes a sheet. When it was current, the neighbouring sheet
// becomes current.
func (d Document) WithoutSheet(id string) Document {
	idx := slices.Index(d.SheetOrder, id)
	if _, ok := d.Sheets[id]; !ok {
		return d
	}
	out := d.clone()
	delete(out.Sheets, id)
	if idx >= 0 {
		out.SheetOrder = slices.Delete(out.SheetOrder, idx, idx+1)
	}
	if out.CurrentSheetID == id {
		out.CurrentSheetID = ""
		if len(out.SheetOrder) > 0 {
			out.CurrentSheetID = out.SheetOrder[max(0, min(idx, len(out.SheetOrder)-1))]
		}
	}
	return out
}

// WithCurrentSheet switches the current sheet. Unknown IDs are ignored.
func (d Document) WithCurrentSheet(id string) Document {
	if _, ok := d.Sheets[id]; !ok {
		return d
	}
	out := d.clone()
	out.CurrentSheetID = id
	return out
}

// SheetIndex returns the tab position of a sheet, or -1.
func (d Document) SheetIndex(id string) int {
	return slices.Index(d.SheetOrder, id)
}
