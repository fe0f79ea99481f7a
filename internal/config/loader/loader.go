// Package loader decodes drawstorm configuration files.
//
// The format is chosen from the file extension: TOML, YAML, JSON and JSON
// with comments (JSONC) are supported. Environment variables are applied on
// top of a decoded value with LoadEnv.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat indicates a file extension no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Format identifies a configuration file syntax.
type Format string

// Supported formats.
const (
	FormatTOML  Format = "toml"
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
)

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".jsonc":
		return FormatJSONC, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Decoder decodes data in one format into v.
type Decoder func(data []byte, v any) error

var decoders = map[Format]Decoder{
	FormatTOML:  decodeTOML,
	FormatYAML:  decodeYAML,
	FormatJSON:  decodeJSON,
	FormatJSONC: decodeJSONC,
}

// Decode decodes data in the given format into v. Syntax errors are
// reported as *ParseError.
func Decode(format Format, source string, data []byte, v any) error {
	dec, ok := decoders[format]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err := dec(data, v); err != nil {
		return &ParseError{Path: source, Format: format, Message: err.Error(), Err: err}
	}
	return nil
}

// DecodeReader reads r fully and decodes it.
func DecodeReader(format Format, r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	return Decode(format, "<reader>", data, v)
}

// LoadFile decodes the file at path into v. It reports false, without an
// error, when the file does not exist.
func LoadFile(fsys FileSystem, path string, v any) (bool, error) {
	format, err := FormatOf(path)
	if err != nil {
		return false, err
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := Decode(format, path, data, v); err != nil {
		return false, err
	}
	return true, nil
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Format is the syntax the file was parsed as.
	Format Format
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s (%s): %s", e.Path, e.Format, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MapFS is an in-memory FileSystem keyed by path.
type MapFS map[string][]byte

// ReadFile returns the contents stored for path.
func (m MapFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return data, nil
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}
