package engine

import (
	"testing"

	"github.com/dshills/drawstorm/internal/diagram"
)

// ============================================================================
// Setup Helpers
// ============================================================================

func setupLargeEngine(b *testing.B, shapes int) (*Engine, []string) {
	b.Helper()
	e := New(WithMaxHistorySize(shapes + 1))
	ids := make([]string, shapes)
	for i := range ids {
		id, err := e.AddShape(diagram.Shape{Type: "rectangle", X: float64(i), Width: 10, Height: 10})
		if err != nil {
			b.Fatal(err)
		}
		ids[i] = id
	}
	e.ClearHistory()
	return e, ids
}

// ============================================================================
// Edit Benchmarks
// ============================================================================

func BenchmarkEngineAddShape(b *testing.B) {
	e := New()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		e.AddShape(diagram.Shape{Type: "rectangle", Width: 10, Height: 10})
	}
}

func BenchmarkEngineMoveShapes(b *testing.B) {
	e, ids := setupLargeEngine(b, 1000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		e.MoveShapes(ids[:10], diagram.Point{X: 1})
	}
}

func BenchmarkEngineUndoRedo(b *testing.B) {
	e, ids := setupLargeEngine(b, 1000)
	e.MoveShapes(ids, diagram.Point{X: 1})
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		e.Undo()
		e.Redo()
	}
}

func BenchmarkEngineDeleteCascade(b *testing.B) {
	e, ids := setupLargeEngine(b, 1000)
	for i := 1; i < len(ids); i++ {
		e.AddConnector(diagram.Connector{SourceID: ids[0], TargetID: ids[i]})
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		e.DeleteShapes(ids[:1])
		e.Undo()
	}
}

func BenchmarkEngineHistoryJSON(b *testing.B) {
	e, ids := setupLargeEngine(b, 500)
	for _, id := range ids {
		e.MoveShapes([]string{id}, diagram.Point{X: 1})
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := e.HistoryJSON(); err != nil {
			b.Fatal(err)
		}
	}
}
