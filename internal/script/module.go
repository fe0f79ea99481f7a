package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/drawstorm/internal/diagram"
)

// module implements the ds table.
type module struct {
	editor Editor
}

func newModule(editor Editor) *module {
	return &module{editor: editor}
}

func (m *module) register(L *lua.LState) {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"add_shape":    m.addShape,
		"move":         m.move,
		"resize":       m.resize,
		"set_props":    m.setProps,
		"delete":       m.delete,
		"select":       m.selectShapes,
		"group":        m.group,
		"ungroup":      m.ungroup,
		"connect":      m.connect,
		"undo":         m.undo,
		"redo":         m.redo,
		"can_undo":     m.canUndo,
		"can_redo":     m.canRedo,
		"history_size": m.historySize,
		"shapes":       m.shapes,
		"shape":        m.shape,
		"batch":        m.batch,
	})
	L.SetGlobal("ds", mod)
}

// add_shape{type=, x=, y=, width=, height=, rotation=, id=, props=} -> id
func (m *module) addShape(L *lua.LState) int {
	t := L.CheckTable(1)
	shape := diagram.Shape{
		ID:       optString(L, t, "id"),
		Type:     optString(L, t, "type"),
		X:        optNumber(L, t, "x"),
		Y:        optNumber(L, t, "y"),
		Width:    optNumber(L, t, "width"),
		Height:   optNumber(L, t, "height"),
		Rotation: optNumber(L, t, "rotation"),
	}
	if shape.Type == "" {
		shape.Type = "rectangle"
	}
	if props, ok := t.RawGetString("props").(*lua.LTable); ok {
		shape.Props = tableToProperties(props)
	}

	id, err := m.editor.AddShape(shape)
	if err != nil {
		L.RaiseError("add_shape: %v", err)
		return 0
	}
	L.Push(lua.LString(id))
	return 1
}

// move(ids, dx, dy)
func (m *module) move(L *lua.LState) int {
	ids := checkIDs(L, 1)
	delta := diagram.Point{X: float64(L.CheckNumber(2)), Y: float64(L.CheckNumber(3))}
	if err := m.editor.MoveShapes(ids, delta); err != nil {
		L.RaiseError("move: %v", err)
	}
	return 0
}

// resize(id, x, y, width, height)
func (m *module) resize(L *lua.LState) int {
	id := L.CheckString(1)
	bounds := diagram.Rect{
		X:      float64(L.CheckNumber(2)),
		Y:      float64(L.CheckNumber(3)),
		Width:  float64(L.CheckNumber(4)),
		Height: float64(L.CheckNumber(5)),
	}
	if err := m.editor.ResizeShape(id, bounds); err != nil {
		L.RaiseError("resize: %v", err)
	}
	return 0
}

// set_props(id, {key = value, ...})
func (m *module) setProps(L *lua.LState) int {
	id := L.CheckString(1)
	patch := tableToProperties(L.CheckTable(2))
	if err := m.editor.UpdateShapeProperties(id, patch); err != nil {
		L.RaiseError("set_props: %v", err)
	}
	return 0
}

// delete(ids)
func (m *module) delete(L *lua.LState) int {
	if err := m.editor.DeleteShapes(checkIDs(L, 1)); err != nil {
		L.RaiseError("delete: %v", err)
	}
	return 0
}

// select(ids)
func (m *module) selectShapes(L *lua.LState) int {
	if err := m.editor.Select(checkIDs(L, 1)); err != nil {
		L.RaiseError("select: %v", err)
	}
	return 0
}

// group([ids]) -> id
// Groups the given shapes, or the current selection when called bare.
func (m *module) group(L *lua.LState) int {
	if L.GetTop() >= 1 {
		if err := m.editor.Select(checkIDs(L, 1)); err != nil {
			L.RaiseError("group: %v", err)
			return 0
		}
	}
	id, err := m.editor.GroupSelection()
	if err != nil {
		L.RaiseError("group: %v", err)
		return 0
	}
	L.Push(lua.LString(id))
	return 1
}

// ungroup(id)
func (m *module) ungroup(L *lua.LState) int {
	if err := m.editor.Ungroup(L.CheckString(1)); err != nil {
		L.RaiseError("ungroup: %v", err)
	}
	return 0
}

// connect(source_id, target_id[, type]) -> id
// The route runs between the centers of both shapes.
func (m *module) connect(L *lua.LState) int {
	src := L.CheckString(1)
	dst := L.CheckString(2)
	kind := L.OptString(3, diagram.ConnectorStraight)

	sheet, err := m.editor.CurrentSheet()
	if err != nil {
		L.RaiseError("connect: %v", err)
		return 0
	}
	a, ok := sheet.Shape(src)
	if !ok {
		L.RaiseError("connect: unknown shape %q", src)
		return 0
	}
	b, ok := sheet.Shape(dst)
	if !ok {
		L.RaiseError("connect: unknown shape %q", dst)
		return 0
	}

	id, err := m.editor.AddConnector(diagram.Connector{
		Type:     kind,
		SourceID: src,
		TargetID: dst,
		Route:    diagram.Route{Source: center(a), Target: center(b)},
	})
	if err != nil {
		L.RaiseError("connect: %v", err)
		return 0
	}
	L.Push(lua.LString(id))
	return 1
}

func center(s diagram.Shape) diagram.Point {
	return diagram.Point{X: s.X + s.Width/2, Y: s.Y + s.Height/2}
}

// undo() -> bool
func (m *module) undo(L *lua.LState) int {
	L.Push(lua.LBool(m.editor.Undo()))
	return 1
}

// redo() -> bool
func (m *module) redo(L *lua.LState) int {
	L.Push(lua.LBool(m.editor.Redo()))
	return 1
}

func (m *module) canUndo(L *lua.LState) int {
	L.Push(lua.LBool(m.editor.CanUndo()))
	return 1
}

func (m *module) canRedo(L *lua.LState) int {
	L.Push(lua.LBool(m.editor.CanRedo()))
	return 1
}

// history_size() -> undo, redo
func (m *module) historySize(L *lua.LState) int {
	size := m.editor.HistorySize()
	L.Push(lua.LNumber(size.Undo))
	L.Push(lua.LNumber(size.Redo))
	return 2
}

// shapes() -> {shape, ...} back to front
func (m *module) shapes(L *lua.LState) int {
	sheet, err := m.editor.CurrentSheet()
	if err != nil {
		L.RaiseError("shapes: %v", err)
		return 0
	}
	out := L.NewTable()
	for i, sh := range sheet.OrderedShapes() {
		out.RawSetInt(i+1, shapeToTable(L, sh))
	}
	L.Push(out)
	return 1
}

// shape(id) -> shape or nil
func (m *module) shape(L *lua.LState) int {
	id := L.CheckString(1)
	sheet, err := m.editor.CurrentSheet()
	if err != nil {
		L.RaiseError("shape: %v", err)
		return 0
	}
	sh, ok := sheet.Shape(id)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(shapeToTable(L, sh))
	return 1
}

// batch(name, fn)
// Runs fn as one undo step. An error inside fn reverts its edits.
func (m *module) batch(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)

	err := m.editor.Transaction(name, func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	})
	if err != nil {
		L.RaiseError("batch %s: %v", name, err)
	}
	return 0
}
