package command

import (
	"slices"

	"github.com/dshills/drawstorm/internal/diagram"
)

// reinsert puts ids back into current at the positions they held in
// captured. IDs already in current are moved.
func reinsert(current, captured, ids []string) []string {
	out := make([]string, 0, len(current)+len(ids))
	for _, id := range current {
		if !slices.Contains(ids, id) {
			out = append(out, id)
		}
	}
	for i, id := range captured {
		if slices.Contains(ids, id) {
			out = slices.Insert(out, min(i, len(out)), id)
		}
	}
	return out
}

// normalize returns order restricted to IDs for which exists reports true,
// followed by any IDs of current that order omitted. This keeps the order
// slice consistent with the entity map when the map changed since order was
// captured.
func normalize(order, current []string, exists func(string) bool) []string {
	out := make([]string, 0, len(current))
	for _, id := range order {
		if exists(id) && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	for _, id := range current {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func shapeExists(s diagram.Sheet) func(string) bool {
	return func(id string) bool {
		_, ok := s.Shapes[id]
		return ok
	}
}

func connectorExists(s diagram.Sheet) func(string) bool {
	return func(id string) bool {
		_, ok := s.Connectors[id]
		return ok
	}
}
