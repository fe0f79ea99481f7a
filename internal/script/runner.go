package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/drawstorm/internal/diagram"
	"github.com/dshills/drawstorm/internal/engine"
)

// DefaultTimeout bounds a single Run.
const DefaultTimeout = 5 * time.Second

// Editor is the engine surface scripts can drive.
type Editor interface {
	AddShape(shape diagram.Shape) (string, error)
	MoveShapes(ids []string, delta diagram.Point) error
	ResizeShape(id string, bounds diagram.Rect) error
	UpdateShapeProperties(id string, patch diagram.Properties) error
	DeleteShapes(ids []string) error
	Select(ids []string) error
	GroupSelection() (string, error)
	Ungroup(id string) error
	AddConnector(c diagram.Connector) (string, error)
	Undo() bool
	Redo() bool
	CanUndo() bool
	CanRedo() bool
	HistorySize() engine.HistorySize
	CurrentSheet() (diagram.Sheet, error)
	Transaction(name string, fn func() error) error
}

var _ Editor = (*engine.Engine)(nil)

// Logger receives script diagnostics.
type Logger interface {
	Debug(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout bounds each Run. Non-positive values disable the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithOutput redirects print.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.out = w
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// Runner owns one sandboxed Lua state bound to an Editor.
//
// gopher-lua states are not goroutine-safe; Runner serializes access.
type Runner struct {
	mu     sync.Mutex
	L      *lua.LState
	editor Editor

	timeout time.Duration
	out     io.Writer
	logger  Logger
	closed  bool
}

// NewRunner creates a Runner with the ds module installed.
func NewRunner(editor Editor, opts ...Option) *Runner {
	r := &Runner{
		editor:  editor,
		timeout: DefaultTimeout,
		out:     os.Stdout,
		logger:  nopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}

	r.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(r.L)
	r.L.SetGlobal("print", r.L.NewFunction(r.print))
	newModule(editor).register(r.L)
	return r
}

// openSafeLibraries opens the base, table, string and math libraries and
// removes the loaders that reach the file system.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func (r *Runner) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	fmt.Fprintln(r.out, strings.Join(parts, "\t"))
	return 0
}

// Run executes code. name labels errors and log lines.
func (r *Runner) Run(ctx context.Context, name, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	r.logger.Debug("script %s: start", name)
	start := time.Now()

	fn, err := r.L.Load(strings.NewReader(code), name)
	if err != nil {
		return fmt.Errorf("script %s: %w", name, err)
	}
	r.L.Push(fn)
	if err := r.pcall(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("script %s: %w", name, ErrTimeout)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("script %s: %w", name, ctxErr)
		}
		return fmt.Errorf("script %s: %w", name, err)
	}

	r.logger.Debug("script %s: done in %s", name, time.Since(start))
	return nil
}

// pcall calls the function on top of the stack, converting Go panics
// raised inside callbacks into errors.
func (r *Runner) pcall() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lua panic: %v", rec)
		}
	}()
	defer r.L.SetTop(0)
	return r.L.PCall(0, lua.MultRet, nil)
}

// RunFile executes the Lua file at path.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	return r.Run(ctx, path, string(code))
}

// Close releases the Lua state.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.L.Close()
	r.closed = true
	return nil
}
