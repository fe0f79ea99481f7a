package diagram

// ShapeTypeGroup is the type tag of group container shapes.
const ShapeTypeGroup = "group"

// Shape is a node on a sheet.
//
// Members of a group carry the group's ID in ParentID and store their
// position relative to the group's origin.
type Shape struct {
	ID       string     `json:"id"`
	Type     string     `json:"type"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	Rotation float64    `json:"rotation,omitempty"`
	ParentID string     `json:"parentId,omitempty"`
	Props    Properties `json:"props,omitempty"`
}

// Bounds returns the shape's rectangle.
func (s Shape) Bounds() Rect {
	return Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

// Position returns the shape's origin.
func (s Shape) Position() Point {
	return Point{X: s.X, Y: s.Y}
}

// IsGroup reports whether the shape is a group container.
func (s Shape) IsGroup() bool {
	return s.Type == ShapeTypeGroup
}

// WithBounds returns a copy moved and sized to r.
func (s Shape) WithBounds(r Rect) Shape {
	s.X, s.Y, s.Width, s.Height = r.X, r.Y, r.Width, r.Height
	return s
}

// WithPosition returns a copy moved to p.
func (s Shape) WithPosition(p Point) Shape {
	s.X, s.Y = p.X, p.Y
	return s
}

// Clone returns a copy that shares nothing mutable with s.
func (s Shape) Clone() Shape {
	s.Props = s.Props.Clone()
	return s
}

// NewGroup builds a group container sized to the bounding box of members.
func NewGroup(id string, members []Shape) Shape {
	box := BoundingBox(members)
	return Shape{
		ID:     id,
		Type:   ShapeTypeGroup,
		X:      box.X,
		Y:      box.Y,
		Width:  box.Width,
		Height: box.Height,
	}
}
