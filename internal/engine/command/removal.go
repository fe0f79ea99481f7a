package command

import (
	"fmt"
	"slices"

	"github.com/dshills/drawstorm/internal/diagram"
)

// Removal is the pre-state captured by a delete at execution time.
type Removal struct {
	Captured       bool                `json:"captured"`
	Shapes         []diagram.Shape     `json:"shapes,omitempty"`
	Connectors     []diagram.Connector `json:"connectors,omitempty"`
	ShapeOrder     []string            `json:"shapeOrder,omitempty"`
	ConnectorOrder []string            `json:"connectorOrder,omitempty"`
	Selection      []string            `json:"selection,omitempty"`
}

// captureRemoval snapshots the entities a delete will remove. IDs that do not
// exist are dropped. Members of deleted groups are included, and so is every
// connector attached to a deleted shape.
func captureRemoval(s diagram.Sheet, shapeIDs, connectorIDs []string) Removal {
	r := Removal{
		Captured:       true,
		ShapeOrder:     slices.Clone(s.ShapeOrder),
		ConnectorOrder: slices.Clone(s.ConnectorOrder),
		Selection:      slices.Clone(s.Selection),
	}

	var ids []string
	queue := slices.Clone(shapeIDs)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if slices.Contains(ids, id) {
			continue
		}
		if _, ok := s.Shapes[id]; !ok {
			continue
		}
		ids = append(ids, id)
		for _, child := range s.Children(id) {
			queue = append(queue, child.ID)
		}
	}
	for _, sh := range s.OrderedShapes() {
		if slices.Contains(ids, sh.ID) {
			r.Shapes = append(r.Shapes, sh)
		}
	}

	cascade := s.ConnectorsReferencing(ids)
	for _, c := range s.OrderedConnectors() {
		if slices.Contains(connectorIDs, c.ID) || slices.Contains(cascade, c.ID) {
			r.Connectors = append(r.Connectors, c)
		}
	}
	return r
}

func (r Removal) shapeIDs() []string {
	ids := make([]string, len(r.Shapes))
	for i, sh := range r.Shapes {
		ids[i] = sh.ID
	}
	return ids
}

func (r Removal) connectorIDs() []string {
	ids := make([]string, len(r.Connectors))
	for i, c := range r.Connectors {
		ids[i] = c.ID
	}
	return ids
}

func (r Removal) remove(s diagram.Sheet) diagram.Sheet {
	return s.WithoutConnectors(r.connectorIDs()...).WithoutShapes(r.shapeIDs()...)
}

func (r Removal) restore(s diagram.Sheet) diagram.Sheet {
	if !r.Captured {
		return s
	}
	shapeIDs, connIDs := r.shapeIDs(), r.connectorIDs()
	s = s.WithShapes(r.Shapes...).WithConnectors(r.Connectors...)
	s = s.WithShapeOrder(reinsert(s.ShapeOrder, r.ShapeOrder, shapeIDs))
	s = s.WithConnectorOrder(reinsert(s.ConnectorOrder, r.ConnectorOrder, connIDs))
	return s.WithSelection(r.Selection)
}

// describeDelete formats "Delete N shape(s) and M connector(s)".
func describeDelete(shapes, connectors int) string {
	switch {
	case shapes > 0 && connectors > 0:
		return fmt.Sprintf("Delete %d shape(s) and %d connector(s)", shapes, connectors)
	case connectors > 0:
		return fmt.Sprintf("Delete %d connector(s)", connectors)
	default:
		return fmt.Sprintf("Delete %d shape(s)", shapes)
	}
}
