package diagram

import "slices"

// Sheet is a named canvas holding shapes and connectors.
//
// ShapeOrder and ConnectorOrder list entity IDs back to front. Every ID in an
// order slice has an entry in the corresponding map and vice versa.
type Sheet struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	Shapes         map[string]Shape     `json:"shapes"`
	ShapeOrder     []string             `json:"shapeOrder"`
	Connectors     map[string]Connector `json:"connectors"`
	ConnectorOrder []string             `json:"connectorOrder"`
	Selection      []string             `json:"selection,omitempty"`
}

// NewSheet creates an empty sheet.
func NewSheet(id, name string) Sheet {
	return Sheet{
		ID:         id,
		Name:       name,
		Shapes:     make(map[string]Shape),
		Connectors: make(map[string]Connector),
	}
}

// clone copies the maps and slices so the copy can be edited freely.
// Entity values are shared; their Props are immutable by convention.
func (s Sheet) clone() Sheet {
	out := s
	out.Shapes = make(map[string]Shape, len(s.Shapes))
	for id, sh := range s.Shapes {
		out.Shapes[id] = sh
	}
	out.Connectors = make(map[string]Connector, len(s.Connectors))
	for id, c := range s.Connectors {
		out.Connectors[id] = c
	}
	out.ShapeOrder = slices.Clone(s.ShapeOrder)
	out.ConnectorOrder = slices.Clone(s.ConnectorOrder)
	out.Selection = slices.Clone(s.Selection)
	return out
}

// Clone returns a deep copy of the sheet.
func (s Sheet) Clone() Sheet {
	out := s.clone()
	for id, sh := range out.Shapes {
		out.Shapes[id] = sh.Clone()
	}
	for id, c := range out.Connectors {
		out.Connectors[id] = c.Clone()
	}
	return out
}

// Shape looks up a shape by ID.
func (s Sheet) Shape(id string) (Shape, bool) {
	sh, ok := s.Shapes[id]
	return sh, ok
}

// Connector looks up a connector by ID.
func (s Sheet) Connector(id string) (Connector, bool) {
	c, ok := s.Connectors[id]
	return c, ok
}

// OrderedShapes returns the shapes back to front.
func (s Sheet) OrderedShapes() []Shape {
	out := make([]Shape, 0, len(s.ShapeOrder))
	for _, id := range s.ShapeOrder {
		if sh, ok := s.Shapes[id]; ok {
			out = append(out, sh)
		}
	}
	return out
}

// OrderedConnectors returns the connectors back to front.
func (s Sheet) OrderedConnectors() []Connector {
	out := make([]Connector, 0, len(s.ConnectorOrder))
	for _, id := range s.ConnectorOrder {
		if c, ok := s.Connectors[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Children returns the shapes whose ParentID is parentID, back to front.
func (s Sheet) Children(parentID string) []Shape {
	var out []Shape
	for _, sh := range s.OrderedShapes() {
		if sh.ParentID == parentID {
			out = append(out, sh)
		}
	}
	return out
}

// ConnectorsReferencing returns the IDs of connectors attached to any of
// the given shapes, in connector order.
func (s Sheet) ConnectorsReferencing(shapeIDs []string) []string {
	var out []string
	for _, c := range s.OrderedConnectors() {
		for _, id := range shapeIDs {
			if c.References(id) {
				out = append(out, c.ID)
				break
			}
		}
	}
	return out
}

// WithShape inserts or replaces a shape. New shapes go to the front.
func (s Sheet) WithShape(sh Shape) Sheet {
	out := s.clone()
	if _, exists := out.Shapes[sh.ID]; !exists {
		out.ShapeOrder = append(out.ShapeOrder, sh.ID)
	}
	out.Shapes[sh.ID] = sh
	return out
}

// WithShapes inserts or replaces several shapes at once.
func (s Sheet) WithShapes(shapes ...Shape) Sheet {
	out := s.clone()
	for _, sh := range shapes {
		if _, exists := out.Shapes[sh.ID]; !exists {
			out.ShapeOrder = append(out.ShapeOrder, sh.ID)
		}
		out.Shapes[sh.ID] = sh
	}
	return out
}

// WithoutShapes removes shapes from the map, the z-order and the selection.
// Unknown IDs are ignored.
func (s Sheet) WithoutShapes(ids ...string) Sheet {
	out := s.clone()
	for _, id := range ids {
		delete(out.Shapes, id)
	}
	out.ShapeOrder = without(out.ShapeOrder, ids)
	out.Selection = without(out.Selection, ids)
	return out
}

// WithConnector inserts or replaces a connector. New connectors go to the front.
func (s Sheet) WithConnector(c Connector) Sheet {
	out := s.clone()
	if _, exists := out.Connectors[c.ID]; !exists {
		out.ConnectorOrder = append(out.ConnectorOrder, c.ID)
	}
	out.Connectors[c.ID] = c
	return out
}

// WithConnectors inserts or replaces several connectors at once.
func (s Sheet) WithConnectors(cs ...Connector) Sheet {
	out := s.clone()
	for _, c := range cs {
		if _, exists := out.Connectors[c.ID]; !exists {
			out.ConnectorOrder = append(out.ConnectorOrder, c.ID)
		}
		out.Connectors[c.ID] = c
	}
	return out
}

// WithoutConnectors removes connectors. Unknown IDs are ignored.
func (s Sheet) WithoutConnectors(ids ...string) Sheet {
	out := s.clone()
	for _, id := range ids {
		delete(out.Connectors, id)
	}
	out.ConnectorOrder = without(out.ConnectorOrder, ids)
	out.Selection = without(out.Selection, ids)
	return out
}

// WithShapeOrder replaces the z-order of shapes.
func (s Sheet) WithShapeOrder(order []string) Sheet {
	out := s.clone()
	out.ShapeOrder = slices.Clone(order)
	return out
}

// WithConnectorOrder replaces the z-order of connectors.
func (s Sheet) WithConnectorOrder(order []string) Sheet {
	out := s.clone()
	out.ConnectorOrder = slices.Clone(order)
	return out
}

// WithSelection replaces the selection.
func (s Sheet) WithSelection(ids []string) Sheet {
	out := s.clone()
	out.Selection = slices.Clone(ids)
	return out
}

// WithName returns a renamed copy.
func (s Sheet) WithName(name string) Sheet {
	out := s.clone()
	out.Name = name
	return out
}

func without(list, remove []string) []string {
	if len(list) == 0 || len(remove) == 0 {
		return list
	}
	out := list[:0:0]
	for _, id := range list {
		if !slices.Contains(remove, id) {
			out = append(out, id)
		}
	}
	return out
}
