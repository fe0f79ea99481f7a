// Package script runs Lua automation against a diagram engine.
//
// Scripts see a global ds table:
//
//	local a = ds.add_shape{type = "rectangle", x = 10, y = 10, width = 80, height = 40}
//	local b = ds.add_shape{type = "ellipse", x = 200, y = 10, width = 40, height = 40}
//	ds.connect(a, b)
//	ds.set_props(a, {fill = "#ffcc00"})
//	ds.batch("Nudge", function()
//	    ds.move({a, b}, 5, 0)
//	    ds.move({a, b}, 5, 0)
//	end)
//	print(ds.history_size())
//
// Every mutation is an engine command, so script edits can be undone like
// interactive ones. The io, os, debug and package libraries are not loaded
// and file loading functions are removed.
package script
