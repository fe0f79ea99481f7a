package command

import (
	"fmt"
	"slices"

	"github.com/dshills/drawstorm/internal/diagram"
)

// GroupShapesData wraps shapes in a new group container.
type GroupShapesData struct {
	Target
	Group     diagram.Shape   `json:"group"`
	Members   []diagram.Shape `json:"members"`
	Selection []string        `json:"selection,omitempty"`
}

func (GroupShapesData) kind() Kind { return KindGroupShapes }

func (p GroupShapesData) describe() string {
	return fmt.Sprintf("Group %d shape(s)", len(p.Members))
}

func (p GroupShapesData) execute(s diagram.Sheet) diagram.Sheet {
	origin := p.Group.Position()
	members := make([]diagram.Shape, len(p.Members))
	for i, m := range p.Members {
		m.ParentID = p.Group.ID
		members[i] = m.WithPosition(m.Position().Sub(origin))
	}
	s = s.WithShapes(members...).WithShape(p.Group)
	return s.WithSelection([]string{p.Group.ID})
}

func (p GroupShapesData) undo(s diagram.Sheet) diagram.Sheet {
	s = s.WithShapes(p.Members...).WithoutShapes(p.Group.ID)
	return s.WithSelection(p.Selection)
}

// NewGroupShapes creates a command that groups shapeIDs under group, which
// the caller has already sized (see diagram.NewGroup). Each member's state
// is snapshotted now. Members must be top-level shapes: a shape with a
// ParentID fails with ErrAlreadyGrouped.
func NewGroupShapes(st State, sheetID string, shapeIDs []string, group diagram.Shape) (*Command, error) {
	if len(shapeIDs) == 0 {
		return nil, fmt.Errorf("group shapes: %w", ErrNothingSelected)
	}
	sheet, ok := st.Snapshot().Sheet(sheetID)
	if !ok {
		return nil, fmt.Errorf("group shapes: %w: %s", ErrSheetNotFound, sheetID)
	}

	members := make([]diagram.Shape, 0, len(shapeIDs))
	for _, id := range shapeIDs {
		sh, ok := sheet.Shape(id)
		if !ok {
			return nil, fmt.Errorf("group shapes: %w: %s", ErrShapeNotFound, id)
		}
		if sh.ParentID != "" {
			return nil, fmt.Errorf("group shapes: %w: %s is in %s", ErrAlreadyGrouped, id, sh.ParentID)
		}
		members = append(members, sh.Clone())
	}

	group.Type = diagram.ShapeTypeGroup
	return newCommand(st, GroupShapesData{
		Target:    Target{SheetID: sheetID},
		Group:     group.Clone(),
		Members:   members,
		Selection: slices.Clone(sheet.Selection),
	}), nil
}

// UngroupShapesData dissolves a group, moving its children to absolute
// coordinates.
type UngroupShapesData struct {
	Target
	Group     diagram.Shape   `json:"group"`
	Children  []diagram.Shape `json:"children"`
	Order     []string        `json:"order"`
	Selection []string        `json:"selection,omitempty"`
}

func (UngroupShapesData) kind() Kind { return KindUngroupShapes }

func (p UngroupShapesData) describe() string {
	return fmt.Sprintf("Ungroup %d shape(s)", len(p.Children))
}

func (p UngroupShapesData) execute(s diagram.Sheet) diagram.Sheet {
	origin := p.Group.Position()
	children := make([]diagram.Shape, len(p.Children))
	ids := make([]string, len(p.Children))
	for i, c := range p.Children {
		c.ParentID = p.Group.ParentID
		children[i] = c.WithPosition(c.Position().Add(origin))
		ids[i] = c.ID
	}
	s = s.WithShapes(children...).WithoutShapes(p.Group.ID)
	return s.WithSelection(ids)
}

func (p UngroupShapesData) undo(s diagram.Sheet) diagram.Sheet {
	s = s.WithShapes(p.Children...).WithShape(p.Group)
	s = s.WithShapeOrder(reinsert(s.ShapeOrder, p.Order, []string{p.Group.ID}))
	return s.WithSelection(p.Selection)
}

// NewUngroupShapes creates a command that dissolves the group groupID.
// It fails if the shape is missing or is not a group.
func NewUngroupShapes(st State, sheetID, groupID string) (*Command, error) {
	sheet, ok := st.Snapshot().Sheet(sheetID)
	if !ok {
		return nil, fmt.Errorf("ungroup shapes: %w: %s", ErrSheetNotFound, sheetID)
	}
	group, ok := sheet.Shape(groupID)
	if !ok {
		return nil, fmt.Errorf("ungroup shapes: %w: %s", ErrShapeNotFound, groupID)
	}
	if !group.IsGroup() {
		return nil, fmt.Errorf("ungroup shapes: %w: %s has type %q", ErrNotAGroup, groupID, group.Type)
	}

	var children []diagram.Shape
	for _, c := range sheet.Children(groupID) {
		children = append(children, c.Clone())
	}

	return newCommand(st, UngroupShapesData{
		Target:    Target{SheetID: sheetID},
		Group:     group.Clone(),
		Children:  children,
		Order:     slices.Clone(sheet.ShapeOrder),
		Selection: slices.Clone(sheet.Selection),
	}), nil
}
