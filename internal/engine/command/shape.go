package command

import (
	"fmt"
	"slices"

	"github.com/dshills/drawstorm/internal/diagram"
)

// AddShapeData adds one shape. Redo re-adds the identical shape.
type AddShapeData struct {
	Target
	Shape diagram.Shape `json:"shape"`
}

func (AddShapeData) kind() Kind { return KindAddShape }

func (p AddShapeData) describe() string {
	return fmt.Sprintf("Add shape: %s", p.Shape.Type)
}

func (p AddShapeData) execute(s diagram.Sheet) diagram.Sheet {
	return s.WithShape(p.Shape)
}

func (p AddShapeData) undo(s diagram.Sheet) diagram.Sheet {
	return s.WithoutShapes(p.Shape.ID)
}

// NewAddShape creates a command that adds shape to a sheet.
func NewAddShape(st State, sheetID string, shape diagram.Shape) *Command {
	return newCommand(st, AddShapeData{
		Target: Target{SheetID: sheetID},
		Shape:  shape.Clone(),
	})
}

// DeleteShapesData deletes shapes and connectors. The removed entities are
// captured when the command executes, not when it is built.
type DeleteShapesData struct {
	Target
	ShapeIDs     []string `json:"shapeIds"`
	ConnectorIDs []string `json:"connectorIds,omitempty"`
	Removed      Removal  `json:"removed"`
}

func (DeleteShapesData) kind() Kind { return KindDeleteShapes }

func (p DeleteShapesData) describe() string {
	if p.Removed.Captured {
		return describeDelete(len(p.Removed.Shapes), len(p.Removed.Connectors))
	}
	return describeDelete(len(p.ShapeIDs), len(p.ConnectorIDs))
}

func deleteForward(doc diagram.Document, p DeleteShapesData) (diagram.Document, payload) {
	sheet, ok := doc.Sheet(p.SheetID)
	if !ok {
		return doc, p
	}
	p.Removed = captureRemoval(sheet, p.ShapeIDs, p.ConnectorIDs)
	return doc.WithSheet(p.Removed.remove(sheet), -1), p
}

// NewDeleteShapes creates a command that deletes the given shapes and
// connectors, along with every connector attached to a deleted shape and the
// members of deleted groups.
func NewDeleteShapes(st State, sheetID string, shapeIDs, connectorIDs []string) *Command {
	return newCommand(st, DeleteShapesData{
		Target:       Target{SheetID: sheetID},
		ShapeIDs:     slices.Clone(shapeIDs),
		ConnectorIDs: slices.Clone(connectorIDs),
	})
}

// ShapeMove is the transition of one shape from one position to another.
type ShapeMove struct {
	ID   string        `json:"id"`
	From diagram.Point `json:"from"`
	To   diagram.Point `json:"to"`
}

// MoveShapesData applies precomputed positions.
type MoveShapesData struct {
	Target
	Moves []ShapeMove `json:"moves"`
}

func (MoveShapesData) kind() Kind { return KindMoveShapes }

func (p MoveShapesData) describe() string {
	return fmt.Sprintf("Move %d shape(s)", len(p.Moves))
}

func (p MoveShapesData) execute(s diagram.Sheet) diagram.Sheet {
	return p.apply(s, func(m ShapeMove) diagram.Point { return m.To })
}

func (p MoveShapesData) undo(s diagram.Sheet) diagram.Sheet {
	return p.apply(s, func(m ShapeMove) diagram.Point { return m.From })
}

func (p MoveShapesData) apply(s diagram.Sheet, pick func(ShapeMove) diagram.Point) diagram.Sheet {
	var moved []diagram.Shape
	for _, m := range p.Moves {
		if sh, ok := s.Shape(m.ID); ok {
			moved = append(moved, sh.WithPosition(pick(m)))
		}
	}
	return s.WithShapes(moved...)
}

// NewMoveShapes creates a command from a finished drag gesture. Both the
// old and the new positions come from the caller.
func NewMoveShapes(st State, sheetID string, moves []ShapeMove) *Command {
	return newCommand(st, MoveShapesData{
		Target: Target{SheetID: sheetID},
		Moves:  slices.Clone(moves),
	})
}

// ResizeShapeData changes the bounds of one shape.
type ResizeShapeData struct {
	Target
	ID   string       `json:"id"`
	From diagram.Rect `json:"from"`
	To   diagram.Rect `json:"to"`
}

func (ResizeShapeData) kind() Kind { return KindResizeShape }

func (ResizeShapeData) describe() string { return "Resize shape" }

func (p ResizeShapeData) execute(s diagram.Sheet) diagram.Sheet {
	return p.apply(s, p.To)
}

func (p ResizeShapeData) undo(s diagram.Sheet) diagram.Sheet {
	return p.apply(s, p.From)
}

func (p ResizeShapeData) apply(s diagram.Sheet, r diagram.Rect) diagram.Sheet {
	sh, ok := s.Shape(p.ID)
	if !ok {
		return s
	}
	return s.WithShape(sh.WithBounds(r))
}

// NewResizeShape creates a command that resizes a shape to bounds. The
// current bounds are read now, before the resize is applied.
func NewResizeShape(st State, sheetID, shapeID string, bounds diagram.Rect) (*Command, error) {
	sh, err := lookupShape(st, sheetID, shapeID)
	if err != nil {
		return nil, err
	}
	return newCommand(st, ResizeShapeData{
		Target: Target{SheetID: sheetID},
		ID:     shapeID,
		From:   sh.Bounds(),
		To:     bounds,
	}), nil
}

// UpdateShapePropertiesData merges a property patch into a shape.
//
// Old holds only the keys of New that existed on the shape when the command
// was built. Undo merges Old back, so a key the patch introduced is not
// removed again.
type UpdateShapePropertiesData struct {
	Target
	ID  string             `json:"id"`
	Old diagram.Properties `json:"old"`
	New diagram.Properties `json:"new"`
}

func (UpdateShapePropertiesData) kind() Kind { return KindUpdateShapeProperties }

func (UpdateShapePropertiesData) describe() string { return "Update shape properties" }

func (p UpdateShapePropertiesData) execute(s diagram.Sheet) diagram.Sheet {
	return p.apply(s, p.New)
}

func (p UpdateShapePropertiesData) undo(s diagram.Sheet) diagram.Sheet {
	return p.apply(s, p.Old)
}

func (p UpdateShapePropertiesData) apply(s diagram.Sheet, props diagram.Properties) diagram.Sheet {
	sh, ok := s.Shape(p.ID)
	if !ok {
		return s
	}
	sh.Props = sh.Props.Merge(props)
	return s.WithShape(sh)
}

// NewUpdateShapeProperties creates a command that merges patch into a
// shape's properties.
func NewUpdateShapeProperties(st State, sheetID, shapeID string, patch diagram.Properties) (*Command, error) {
	sh, err := lookupShape(st, sheetID, shapeID)
	if err != nil {
		return nil, err
	}
	return newCommand(st, UpdateShapePropertiesData{
		Target: Target{SheetID: sheetID},
		ID:     shapeID,
		Old:    sh.Props.Subset(patch),
		New:    patch.Clone(),
	}), nil
}

// ReorderShapesData replaces the z-order of a sheet's shapes.
type ReorderShapesData struct {
	Target
	Old []string `json:"old"`
	New []string `json:"new"`
}

func (ReorderShapesData) kind() Kind { return KindReorderShapes }

func (ReorderShapesData) describe() string { return "Reorder shapes" }

func (p ReorderShapesData) execute(s diagram.Sheet) diagram.Sheet {
	return s.WithShapeOrder(normalize(p.New, s.ShapeOrder, shapeExists(s)))
}

func (p ReorderShapesData) undo(s diagram.Sheet) diagram.Sheet {
	return s.WithShapeOrder(normalize(p.Old, s.ShapeOrder, shapeExists(s)))
}

// NewReorderShapes creates a command that sets the z-order of shapes. The
// whole current order is snapshotted for undo.
func NewReorderShapes(st State, sheetID string, order []string) (*Command, error) {
	sheet, ok := st.Snapshot().Sheet(sheetID)
	if !ok {
		return nil, fmt.Errorf("reorder shapes: %w: %s", ErrSheetNotFound, sheetID)
	}
	return newCommand(st, ReorderShapesData{
		Target: Target{SheetID: sheetID},
		Old:    slices.Clone(sheet.ShapeOrder),
		New:    slices.Clone(order),
	}), nil
}

func lookupShape(st State, sheetID, shapeID string) (diagram.Shape, error) {
	sheet, ok := st.Snapshot().Sheet(sheetID)
	if !ok {
		return diagram.Shape{}, fmt.Errorf("%w: %s", ErrSheetNotFound, sheetID)
	}
	sh, ok := sheet.Shape(shapeID)
	if !ok {
		return diagram.Shape{}, fmt.Errorf("%w: %s", ErrShapeNotFound, shapeID)
	}
	return sh, nil
}
