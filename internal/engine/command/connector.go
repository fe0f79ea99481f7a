package command

import (
	"fmt"
	"slices"

	"github.com/dshills/drawstorm/internal/diagram"
)

// AddConnectorData adds one connector.
type AddConnectorData struct {
	Target
	Connector diagram.Connector `json:"connector"`
}

func (AddConnectorData) kind() Kind { return KindAddConnector }

func (AddConnectorData) describe() string { return "Add connector" }

func (p AddConnectorData) execute(s diagram.Sheet) diagram.Sheet {
	return s.WithConnector(p.Connector)
}

func (p AddConnectorData) undo(s diagram.Sheet) diagram.Sheet {
	return s.WithoutConnectors(p.Connector.ID)
}

// NewAddConnector creates a command that adds a connector to a sheet.
func NewAddConnector(st State, sheetID string, c diagram.Connector) *Command {
	return newCommand(st, AddConnectorData{
		Target:    Target{SheetID: sheetID},
		Connector: c.Clone(),
	})
}

// DeleteConnectorsData deletes connectors, capturing them at execution time.
type DeleteConnectorsData struct {
	Target
	ConnectorIDs []string `json:"connectorIds"`
	Removed      Removal  `json:"removed"`
}

func (DeleteConnectorsData) kind() Kind { return KindDeleteConnectors }

func (p DeleteConnectorsData) describe() string {
	n := len(p.ConnectorIDs)
	if p.Removed.Captured {
		n = len(p.Removed.Connectors)
	}
	return fmt.Sprintf("Delete %d connector(s)", n)
}

func deleteConnectorsForward(doc diagram.Document, p DeleteConnectorsData) (diagram.Document, payload) {
	sheet, ok := doc.Sheet(p.SheetID)
	if !ok {
		return doc, p
	}
	p.Removed = captureRemoval(sheet, nil, p.ConnectorIDs)
	return doc.WithSheet(p.Removed.remove(sheet), -1), p
}

// NewDeleteConnectors creates a command that deletes connectors.
func NewDeleteConnectors(st State, sheetID string, ids []string) *Command {
	return newCommand(st, DeleteConnectorsData{
		Target:       Target{SheetID: sheetID},
		ConnectorIDs: slices.Clone(ids),
	})
}

// ConnectorMove is the transition of one connector's route.
type ConnectorMove struct {
	ID   string        `json:"id"`
	From diagram.Route `json:"from"`
	To   diagram.Route `json:"to"`
}

// MoveConnectorsData applies precomputed routes.
type MoveConnectorsData struct {
	Target
	Moves []ConnectorMove `json:"moves"`
}

func (MoveConnectorsData) kind() Kind { return KindMoveConnectors }

func (p MoveConnectorsData) describe() string {
	return fmt.Sprintf("Move %d connector(s)", len(p.Moves))
}

func (p MoveConnectorsData) execute(s diagram.Sheet) diagram.Sheet {
	return p.apply(s, func(m ConnectorMove) diagram.Route { return m.To })
}

func (p MoveConnectorsData) undo(s diagram.Sheet) diagram.Sheet {
	return p.apply(s, func(m ConnectorMove) diagram.Route { return m.From })
}

func (p MoveConnectorsData) apply(s diagram.Sheet, pick func(ConnectorMove) diagram.Route) diagram.Sheet {
	var moved []diagram.Connector
	for _, m := range p.Moves {
		if c, ok := s.Connector(m.ID); ok {
			c.Route = pick(m).Clone()
			moved = append(moved, c)
		}
	}
	return s.WithConnectors(moved...)
}

// NewMoveConnectors creates a command from finished connector drags.
func NewMoveConnectors(st State, sheetID string, moves []ConnectorMove) *Command {
	cloned := make([]ConnectorMove, len(moves))
	for i, m := range moves {
		cloned[i] = ConnectorMove{ID: m.ID, From: m.From.Clone(), To: m.To.Clone()}
	}
	return newCommand(st, MoveConnectorsData{
		Target: Target{SheetID: sheetID},
		Moves:  cloned,
	})
}

// UpdateConnectorPropertiesData merges a property patch into a connector.
// Undo has the same limitation as UpdateShapePropertiesData.
type UpdateConnectorPropertiesData struct {
	Target
	ID  string             `json:"id"`
	Old diagram.Properties `json:"old"`
	New diagram.Properties `json:"new"`
}

func (UpdateConnectorPropertiesData) kind() Kind { return KindUpdateConnectorProperties }

func (UpdateConnectorPropertiesData) describe() string { return "Update connector properties" }

func (p UpdateConnectorPropertiesData) execute(s diagram.Sheet) diagram.Sheet {
	return p.apply(s, p.New)
}

func (p UpdateConnectorPropertiesData) undo(s diagram.Sheet) diagram.Sheet {
	return p.apply(s, p.Old)
}

func (p UpdateConnectorPropertiesData) apply(s diagram.Sheet, props diagram.Properties) diagram.Sheet {
	c, ok := s.Connector(p.ID)
	if !ok {
		return s
	}
	c.Props = c.Props.Merge(props)
	return s.WithConnector(c)
}

// NewUpdateConnectorProperties creates a command that merges patch into a
// connector's properties.
func NewUpdateConnectorProperties(st State, sheetID, connectorID string, patch diagram.Properties) (*Command, error) {
	sheet, ok := st.Snapshot().Sheet(sheetID)
	if !ok {
		return nil, fmt.Errorf("update connector: %w: %s", ErrSheetNotFound, sheetID)
	}
	c, ok := sheet.Connector(connectorID)
	if !ok {
		return nil, fmt.Errorf("update connector: %w: %s", ErrConnectorNotFound, connectorID)
	}
	return newCommand(st, UpdateConnectorPropertiesData{
		Target: Target{SheetID: sheetID},
		ID:     connectorID,
		Old:    c.Props.Subset(patch),
		New:    patch.Clone(),
	}), nil
}

// ReorderConnectorsData replaces the z-order of a sheet's connectors.
type ReorderConnectorsData struct {
	Target
	Old []string `json:"old"`
	New []string `json:"new"`
}

func (ReorderConnectorsData) kind() Kind { return KindReorderConnectors }

func (ReorderConnectorsData) describe() string { return "Reorder connectors" }

func (p ReorderConnectorsData) execute(s diagram.Sheet) diagram.Sheet {
	return s.WithConnectorOrder(normalize(p.New, s.ConnectorOrder, connectorExists(s)))
}

func (p ReorderConnectorsData) undo(s diagram.Sheet) diagram.Sheet {
	return s.WithConnectorOrder(normalize(p.Old, s.ConnectorOrder, connectorExists(s)))
}

// NewReorderConnectors creates a command that sets the connector z-order.
func NewReorderConnectors(st State, sheetID string, order []string) (*Command, error) {
	sheet, ok := st.Snapshot().Sheet(sheetID)
	if !ok {
		return nil, fmt.Errorf("reorder connectors: %w: %s", ErrSheetNotFound, sheetID)
	}
	return newCommand(st, ReorderConnectorsData{
		Target: Target{SheetID: sheetID},
		Old:    slices.Clone(sheet.ConnectorOrder),
		New:    slices.Clone(order),
	}), nil
}
