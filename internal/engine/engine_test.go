package engine

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/dshills/drawstorm/internal/diagram"
	"github.com/dshills/drawstorm/internal/engine/command"
	"github.com/dshills/drawstorm/internal/store"
)

func rect(w, h float64) diagram.Shape {
	return diagram.Shape{Type: "rectangle", Width: w, Height: h}
}

func currentSheet(t *testing.T, e *Engine) diagram.Sheet {
	t.Helper()
	s, err := e.CurrentSheet()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

// ============================================================================
// Basic Operations
// ============================================================================

func TestNew(t *testing.T) {
	e := New()
	s := currentSheet(t, e)
	if len(s.Shapes) != 0 {
		t.Errorf("expected empty sheet, got %d shapes", len(s.Shapes))
	}
	if e.CanUndo() || e.CanRedo() {
		t.Error("expected empty history")
	}
	if got := e.history.MaxHistorySize(); got != DefaultMaxHistorySize {
		t.Errorf("expected max history %d, got %d", DefaultMaxHistorySize, got)
	}
}

func TestNewWithDocument(t *testing.T) {
	doc := diagram.NewDocument("doc-1", "Plan")
	e := New(WithDocument(doc))
	if got := e.Document().ID; got != "doc-1" {
		t.Errorf("expected doc-1, got %q", got)
	}
}

// Add a rectangle, undo removes it, redo restores it with the same ID.
func TestAddUndoRedo(t *testing.T) {
	e := New()

	id, err := e.AddShape(rect(40, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !e.CanUndo() || e.CanRedo() {
		t.Fatal("expected canUndo and not canRedo")
	}
	if desc, _ := e.UndoDescription(); desc != "Add shape: rectangle" {
		t.Errorf("expected %q, got %q", "Add shape: rectangle", desc)
	}

	if !e.Undo() {
		t.Fatal("Undo returned false")
	}
	if _, ok := currentSheet(t, e).Shape(id); ok {
		t.Error("shape still present after undo")
	}

	if !e.Redo() {
		t.Fatal("Redo returned false")
	}
	if _, ok := currentSheet(t, e).Shape(id); !ok {
		t.Error("shape missing after redo")
	}
}

func TestUndoRedoEmpty(t *testing.T) {
	e := New()
	if e.Undo() {
		t.Error("Undo on empty history returned true")
	}
	if e.Redo() {
		t.Error("Redo on empty history returned true")
	}
	if _, ok := e.UndoDescription(); ok {
		t.Error("expected no undo description")
	}
}

func TestHistoryBounded(t *testing.T) {
	e := New(WithMaxHistorySize(3))
	for i := 0; i < 5; i++ {
		if _, err := e.AddShape(rect(1, 1)); err != nil {
			t.Fatal(err)
		}
	}
	if got := e.HistorySize(); got.Undo != 3 || got.Redo != 0 {
		t.Errorf("expected size {3 0}, got %+v", got)
	}

	for e.Undo() {
	}
	// The two oldest adds were evicted and cannot be undone.
	if got := len(currentSheet(t, e).Shapes); got != 2 {
		t.Errorf("expected 2 shapes left, got %d", got)
	}
}

func TestExecuteClearsRedo(t *testing.T) {
	e := New()
	e.AddShape(rect(1, 1))
	e.Undo()
	if !e.CanRedo() {
		t.Fatal("expected redo after undo")
	}
	e.AddShape(rect(2, 2))
	if e.CanRedo() {
		t.Error("expected redo cleared by new edit")
	}
}

// ============================================================================
// Edits
// ============================================================================

func TestDeleteSelectionCascade(t *testing.T) {
	e := New()
	a, _ := e.AddShape(rect(10, 10))
	b, _ := e.AddShape(rect(10, 10))
	if _, err := e.AddConnector(diagram.Connector{SourceID: a, TargetID: b}); err != nil {
		t.Fatal(err)
	}
	if err := e.Select([]string{a, b}); err != nil {
		t.Fatal(err)
	}

	if err := e.DeleteSelection(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Delete 2 shape(s) and 1 connector(s)"
	if desc, _ := e.UndoDescription(); desc != want {
		t.Errorf("expected %q, got %q", want, desc)
	}
	s := currentSheet(t, e)
	if len(s.Shapes) != 0 || len(s.Connectors) != 0 {
		t.Errorf("expected empty sheet, got %d shapes %d connectors", len(s.Shapes), len(s.Connectors))
	}

	e.Undo()
	s = currentSheet(t, e)
	if len(s.Shapes) != 2 || len(s.Connectors) != 1 {
		t.Errorf("expected 2 shapes 1 connector, got %d and %d", len(s.Shapes), len(s.Connectors))
	}
	if !slices.Equal(s.Selection, []string{a, b}) {
		t.Errorf("expected selection restored, got %v", s.Selection)
	}
}

func TestDeleteSelectionEmpty(t *testing.T) {
	e := New()
	if err := e.DeleteSelection(); !errors.Is(err, command.ErrNothingSelected) {
		t.Errorf("expected ErrNothingSelected, got %v", err)
	}
}

func TestMoveShapes(t *testing.T) {
	e := New()
	id, _ := e.AddShape(diagram.Shape{Type: "rectangle", X: 5, Y: 5, Width: 10, Height: 10})

	if err := e.MoveShapes([]string{id, "ghost"}, diagram.Point{X: 10, Y: -5}); err != nil {
		t.Fatal(err)
	}
	sh, _ := currentSheet(t, e).Shape(id)
	if sh.Position() != (diagram.Point{X: 15, Y: 0}) {
		t.Errorf("expected (15,0), got %+v", sh.Position())
	}

	e.Undo()
	sh, _ = currentSheet(t, e).Shape(id)
	if sh.Position() != (diagram.Point{X: 5, Y: 5}) {
		t.Errorf("expected (5,5) after undo, got %+v", sh.Position())
	}

	if err := e.MoveShapes([]string{"ghost"}, diagram.Point{X: 1}); !errors.Is(err, command.ErrNothingSelected) {
		t.Errorf("expected ErrNothingSelected, got %v", err)
	}
}

func TestResizeAndProperties(t *testing.T) {
	e := New()
	id, _ := e.AddShape(rect(10, 10))

	if err := e.ResizeShape(id, diagram.Rect{Width: 50, Height: 60}); err != nil {
		t.Fatal(err)
	}
	if err := e.UpdateShapeProperties(id, diagram.Properties{"fill": "blue"}); err != nil {
		t.Fatal(err)
	}
	sh, _ := currentSheet(t, e).Shape(id)
	if sh.Width != 50 || sh.Props["fill"] != "blue" {
		t.Errorf("unexpected shape %+v", sh)
	}

	if err := e.ResizeShape("ghost", diagram.Rect{}); !errors.Is(err, command.ErrShapeNotFound) {
		t.Errorf("expected ErrShapeNotFound, got %v", err)
	}
}

func TestZOrder(t *testing.T) {
	e := New()
	a, _ := e.AddShape(rect(1, 1))
	b, _ := e.AddShape(rect(1, 1))
	c, _ := e.AddShape(rect(1, 1))

	e.BringToFront([]string{a})
	if got := currentSheet(t, e).ShapeOrder; !slices.Equal(got, []string{b, c, a}) {
		t.Errorf("BringToFront: got %v", got)
	}
	e.SendToBack([]string{c})
	if got := currentSheet(t, e).ShapeOrder; !slices.Equal(got, []string{c, b, a}) {
		t.Errorf("SendToBack: got %v", got)
	}
	e.MoveForward([]string{c})
	if got := currentSheet(t, e).ShapeOrder; !slices.Equal(got, []string{b, c, a}) {
		t.Errorf("MoveForward: got %v", got)
	}
	e.MoveBackward([]string{a})
	if got := currentSheet(t, e).ShapeOrder; !slices.Equal(got, []string{b, a, c}) {
		t.Errorf("MoveBackward: got %v", got)
	}

	e.Undo()
	e.Undo()
	e.Undo()
	e.Undo()
	if got := currentSheet(t, e).ShapeOrder; !slices.Equal(got, []string{a, b, c}) {
		t.Errorf("after undo: got %v", got)
	}
}

func TestGroupSelectionAndUngroup(t *testing.T) {
	e := New()
	a, _ := e.AddShape(diagram.Shape{Type: "rectangle", X: 10, Y: 10, Width: 10, Height: 10})
	b, _ := e.AddShape(diagram.Shape{Type: "rectangle", X: 30, Y: 40, Width: 10, Height: 10})
	e.Select([]string{a, b})

	gid, err := e.GroupSelection()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g, ok := currentSheet(t, e).Shape(gid)
	if !ok || !g.IsGroup() {
		t.Fatalf("expected group %s", gid)
	}
	if g.Bounds() != (diagram.Rect{X: 10, Y: 10, Width: 30, Height: 40}) {
		t.Errorf("unexpected group bounds %+v", g.Bounds())
	}

	if err := e.Ungroup(a); !errors.Is(err, command.ErrNotAGroup) {
		t.Errorf("expected ErrNotAGroup, got %v", err)
	}
	if err := e.Ungroup(gid); err != nil {
		t.Fatal(err)
	}
	s := currentSheet(t, e)
	if _, ok := s.Shape(gid); ok {
		t.Error("group still present after ungroup")
	}
	if sh := s.Shapes[b]; sh.X != 30 || sh.Y != 40 || sh.ParentID != "" {
		t.Errorf("expected b back at (30,40), got %+v", sh)
	}
}

func TestGroupSelectionEmpty(t *testing.T) {
	e := New()
	if _, err := e.GroupSelection(); !errors.Is(err, command.ErrNothingSelected) {
		t.Errorf("expected ErrNothingSelected, got %v", err)
	}
}

func TestConnectors(t *testing.T) {
	e := New()
	a, _ := e.AddShape(rect(1, 1))
	cid, err := e.AddConnector(diagram.Connector{SourceID: a})
	if err != nil {
		t.Fatal(err)
	}
	c, _ := currentSheet(t, e).Connector(cid)
	if c.Type != diagram.ConnectorStraight {
		t.Errorf("expected default type %q, got %q", diagram.ConnectorStraight, c.Type)
	}
	if err := e.UpdateConnectorProperties(cid, diagram.Properties{"stroke": "red"}); err != nil {
		t.Fatal(err)
	}
	if err := e.DeleteConnectors([]string{cid}); err != nil {
		t.Fatal(err)
	}
	if desc, _ := e.UndoDescription(); desc != "Delete 1 connector(s)" {
		t.Errorf("unexpected description %q", desc)
	}
}

// ============================================================================
// Sheets
// ============================================================================

func TestSheets(t *testing.T) {
	e := New()
	first := e.Document().CurrentSheetID

	second, err := e.AddSheet("Second")
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Document().CurrentSheetID; got != second {
		t.Errorf("expected new sheet current, got %s", got)
	}

	rev := e.Revision()
	size := e.HistorySize()
	if err := e.SwitchSheet(first); err != nil {
		t.Fatal(err)
	}
	if e.Document().CurrentSheetID != first {
		t.Error("SwitchSheet did not switch")
	}
	if e.Revision() == rev {
		t.Error("expected revision bump on switch")
	}
	if e.HistorySize() != size {
		t.Error("SwitchSheet must not be recorded in history")
	}

	if err := e.RenameSheet(second, "Renamed"); err != nil {
		t.Fatal(err)
	}
	if err := e.DeleteSheet(second); err != nil {
		t.Fatal(err)
	}
	if err := e.DeleteSheet(first); !errors.Is(err, ErrLastSheet) {
		t.Errorf("expected ErrLastSheet, got %v", err)
	}
	if err := e.SwitchSheet("nope"); !errors.Is(err, command.ErrSheetNotFound) {
		t.Errorf("expected ErrSheetNotFound, got %v", err)
	}

	e.Undo()
	if !slices.Contains(e.SheetIDs(), second) {
		t.Error("undo did not restore deleted sheet")
	}
	if s, _ := e.Document().Sheet(second); s.Name != "Renamed" {
		t.Errorf("expected restored name Renamed, got %q", s.Name)
	}
}

// ============================================================================
// History
// ============================================================================

func TestTransaction(t *testing.T) {
	e := New()
	a, _ := e.AddShape(rect(1, 1))
	b, _ := e.AddShape(rect(1, 1))

	err := e.Transaction("Nudge", func() error {
		if err := e.MoveShapes([]string{a}, diagram.Point{X: 1}); err != nil {
			return err
		}
		return e.MoveShapes([]string{b}, diagram.Point{X: 1})
	})
	if err != nil {
		t.Fatal(err)
	}
	if desc, _ := e.UndoDescription(); desc != "Nudge" {
		t.Errorf("expected Nudge, got %q", desc)
	}
	if got := e.HistorySize().Undo; got != 3 {
		t.Errorf("expected 3 undo entries, got %d", got)
	}

	failed := errors.New("boom")
	err = e.Transaction("Broken", func() error {
		e.MoveShapes([]string{a}, diagram.Point{X: 100})
		return failed
	})
	if !errors.Is(err, failed) {
		t.Errorf("expected boom, got %v", err)
	}
	if sh := currentSheet(t, e).Shapes[a]; sh.X != 1 {
		t.Errorf("expected cancelled move reverted, x = %v", sh.X)
	}
}

func TestNestedTransactionRollback(t *testing.T) {
	e := New()
	a, _ := e.AddShape(rect(1, 1))
	before := e.HistorySize()

	failed := errors.New("boom")
	err := e.Transaction("Outer", func() error {
		if err := e.Transaction("Inner", func() error {
			return e.MoveShapes([]string{a}, diagram.Point{X: 10})
		}); err != nil {
			return err
		}
		if err := e.MoveShapes([]string{a}, diagram.Point{X: 100}); err != nil {
			return err
		}
		return failed
	})
	if !errors.Is(err, failed) {
		t.Fatalf("expected boom, got %v", err)
	}
	if sh := currentSheet(t, e).Shapes[a]; sh.X != 0 {
		t.Errorf("expected nested edits reverted, x = %v", sh.X)
	}
	if got := e.HistorySize(); got != before {
		t.Errorf("expected history %+v, got %+v", before, got)
	}

	err = e.Transaction("Outer", func() error {
		if err := e.Transaction("Inner", func() error {
			return e.MoveShapes([]string{a}, diagram.Point{X: 10})
		}); err != nil {
			return err
		}
		return e.MoveShapes([]string{a}, diagram.Point{X: 100})
	})
	if err != nil {
		t.Fatal(err)
	}
	if desc, _ := e.UndoDescription(); desc != "Outer" {
		t.Errorf("expected Outer, got %q", desc)
	}
	if got := e.HistorySize().Undo; got != before.Undo+1 {
		t.Errorf("expected %d undo entries, got %d", before.Undo+1, got)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	e := New()
	a, _ := e.AddShape(rect(10, 10))
	e.MoveShapes([]string{a}, diagram.Point{X: 5, Y: 5})
	e.AddShape(rect(20, 20))
	e.Undo()

	data, err := e.HistoryJSON()
	if err != nil {
		t.Fatal(err)
	}
	doc := e.Document()

	reopened := New()
	if err := reopened.Open(doc, data); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := reopened.HistorySize(); got.Undo != 2 || got.Redo != 1 {
		t.Fatalf("expected size {2 1}, got %+v", got)
	}
	h := reopened.History()
	if h.Undo[0].Type != string(command.KindAddShape) || h.Undo[1].Type != string(command.KindMoveShapes) {
		t.Errorf("unexpected undo types %s, %s", h.Undo[0].Type, h.Undo[1].Type)
	}

	reopened.Undo()
	sh, _ := currentSheet(t, reopened).Shape(a)
	if sh.Position() != (diagram.Point{}) {
		t.Errorf("expected restored move undone, got %+v", sh.Position())
	}
	reopened.Redo()
	reopened.Redo()
	if got := len(currentSheet(t, reopened).Shapes); got != 2 {
		t.Errorf("expected 2 shapes after redo, got %d", got)
	}
}

func TestCheckpoint(t *testing.T) {
	e := New()
	e.AddShape(rect(10, 10))

	doc, data, err := e.Checkpoint()
	if err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
	if doc.ID != e.Document().ID {
		t.Errorf("expected document %q, got %q", e.Document().ID, doc.ID)
	}
	reopened := New()
	if err := reopened.Open(doc, data); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := reopened.HistorySize(); got.Undo != 1 {
		t.Errorf("expected 1 undo entry, got %+v", got)
	}

	e.BeginUndoGroup("Batch")
	e.AddShape(rect(5, 5))
	if _, _, err := e.Checkpoint(); !errors.Is(err, ErrUndoGroupOpen) {
		t.Errorf("expected ErrUndoGroupOpen, got %v", err)
	}
	e.EndUndoGroup()
	if _, _, err := e.Checkpoint(); err != nil {
		t.Errorf("Checkpoint after group: %v", err)
	}
}

func TestOpenRejectsBadHistory(t *testing.T) {
	e := New()
	e.AddShape(rect(1, 1))
	doc := e.Document()

	err := e.Open(diagram.NewDocument("other", "Other"), []byte(`{"undo":[{"type":"Teleport","data":{}}],"redo":[]}`))
	if !errors.Is(err, command.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if e.Document().ID != doc.ID {
		t.Error("failed Open replaced the document")
	}
	if !e.CanUndo() {
		t.Error("failed Open cleared history")
	}
}

func TestReadOnly(t *testing.T) {
	e := New(WithReadOnly())
	if !e.IsReadOnly() {
		t.Fatal("expected read-only engine")
	}
	if _, err := e.AddShape(rect(1, 1)); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
	if len(currentSheet(t, e).Shapes) != 0 {
		t.Error("read-only engine was modified")
	}
}

func TestSubscribe(t *testing.T) {
	e := New()
	var revisions []uint64
	unsubscribe := e.Subscribe(func(c store.Change) {
		revisions = append(revisions, c.Revision)
	})

	e.AddShape(rect(1, 1))
	e.Undo()
	unsubscribe()
	e.Redo()

	if len(revisions) != 2 {
		t.Errorf("expected 2 notifications, got %d", len(revisions))
	}
}

type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) Debug(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
}

func TestLoggerWired(t *testing.T) {
	l := &recordingLogger{}
	e := New(WithLogger(l))
	e.AddShape(rect(1, 1))
	if len(l.msgs) == 0 {
		t.Error("expected history traces in logger")
	}
}

// ============================================================================
// Concurrency
// ============================================================================

func TestConcurrentEdits(t *testing.T) {
	e := New(WithMaxHistorySize(1000))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				e.AddShape(rect(1, 1))
			}
		}()
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = e.Document()
				_ = e.CanUndo()
			}
		}()
	}
	wg.Wait()

	if got := len(currentSheet(t, e).Shapes); got != 100 {
		t.Errorf("expected 100 shapes, got %d", got)
	}
	if got := e.HistorySize().Undo; got != 100 {
		t.Errorf("expected 100 undo entries, got %d", got)
	}
}

// Undo and redo racing with builders must never let a move record a
// position read before an undo landed.
func TestConcurrentUndoDuringMoves(t *testing.T) {
	doc := diagram.NewDocument("doc", "Race")
	doc = doc.UpdateSheet(doc.CurrentSheetID, func(s diagram.Sheet) diagram.Sheet {
		return s.WithShape(diagram.Shape{ID: "a", Type: "rectangle", Width: 1, Height: 1})
	})
	e := New(WithDocument(doc), WithMaxHistorySize(1000))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			e.MoveShapes([]string{"a"}, diagram.Point{X: 1})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			e.Undo()
			e.Redo()
		}
	}()
	wg.Wait()

	depth := e.HistorySize().Undo
	if x := currentSheet(t, e).Shapes["a"].X; x != float64(depth) {
		t.Errorf("expected x = undo depth %d, got %v", depth, x)
	}
	for e.Undo() {
	}
	if x := currentSheet(t, e).Shapes["a"].X; x != 0 {
		t.Errorf("expected x = 0 after undoing everything, got %v", x)
	}
	for e.Redo() {
	}
	if x := currentSheet(t, e).Shapes["a"].X; x != float64(depth) {
		t.Errorf("expected x = %d after redoing everything, got %v", depth, x)
	}
}
