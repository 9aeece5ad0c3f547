// Package tools exposes the fixed capability set an agent run may use:
// read a file, write the one writable file, list the project tree, and run
// the type-check. A Registry is bound to a single project root and a
// single writable path at construction; it holds no conversation state.
package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vuebench/vuebench/internal/validation"
)

const (
	ToolReadFile       = "read_file"
	ToolWriteFile      = "write_file"
	ToolListFiles      = "list_files"
	ToolRunCompilation = "run_compilation"
	ToolFinish         = "finish"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrPathEscape  = errors.New("path outside project")
	ErrWriteDenied = errors.New("write not permitted")
)

// ParamType is a primitive JSON parameter type.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
)

type Param struct {
	Name     string
	Type     ParamType
	Required bool
}

// ToolSpec describes one tool's name and parameter schema.
type ToolSpec struct {
	Name        string
	Description string
	Params      []Param
}

// Specs returns the fixed tool set. Adding a tool means extending this
// enumeration and the dispatch switch in the agent loop.
func Specs() []ToolSpec {
	return []ToolSpec{
		{
			Name:        ToolReadFile,
			Description: "Read a file from the project.",
			Params:      []Param{{Name: "path", Type: TypeString, Required: true}},
		},
		{
			Name:        ToolWriteFile,
			Description: "Write complete content to the task's target file.",
			Params: []Param{
				{Name: "path", Type: TypeString, Required: true},
				{Name: "content", Type: TypeString, Required: true},
			},
		},
		{
			Name:        ToolListFiles,
			Description: "List files in a project directory, recursively.",
			Params:      []Param{{Name: "directory", Type: TypeString, Required: false}},
		},
		{
			Name:        ToolRunCompilation,
			Description: "Run the TypeScript type-check and return errors.",
		},
		{
			Name:        ToolFinish,
			Description: "Signal that the task is complete.",
		},
	}
}

// SpecByName looks a tool up in the fixed set.
func SpecByName(name string) (ToolSpec, bool) {
	for _, s := range Specs() {
		if s.Name == name {
			return s, true
		}
	}
	return ToolSpec{}, false
}

// ToolResult is the outcome of executing one tool call. Failed results
// carry a typed Failure and a model-readable Message; they are relayed to
// the model, not raised.
type ToolResult struct {
	OK      bool
	Payload string
	Message string
	Failure error
}

func okResult(payload string) ToolResult {
	return ToolResult{OK: true, Payload: payload}
}

func failResult(failure error, format string, args ...any) ToolResult {
	return ToolResult{
		OK:      false,
		Message: "ERROR: " + fmt.Sprintf(format, args...),
		Failure: failure,
	}
}

// Output is what gets relayed back to the model.
func (r ToolResult) Output() string {
	if r.OK {
		return r.Payload
	}
	return r.Message
}

// Registry binds the tool set to one project root and one writable file.
type Registry struct {
	root     string
	writable string
	compile  *validation.CompileCheck
}

// NewRegistry resolves projectDir and fixes writablePath (slash-separated,
// relative to the root) as the only path Write will accept.
func NewRegistry(projectDir, writablePath string, compile *validation.CompileCheck) (*Registry, error) {
	root, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", root)
	}
	return &Registry{
		root:     root,
		writable: filepath.ToSlash(writablePath),
		compile:  compile,
	}, nil
}

// WritablePath is the single relative path Write accepts.
func (r *Registry) WritablePath() string {
	return r.writable
}

func (r *Registry) resolve(rel string) (string, error) {
	full := filepath.Join(r.root, filepath.FromSlash(rel))
	resolved, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	if resolved != r.root && !strings.HasPrefix(resolved, r.root+string(filepath.Separator)) {
		return "", ErrPathEscape
	}
	return resolved, nil
}

func (r *Registry) Read(path string) ToolResult {
	full, err := r.resolve(path)
	if err != nil {
		return failResult(ErrPathEscape, "Path '%s' is outside the project directory.", path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return failResult(ErrNotFound, "File not found: %s", path)
		}
		return failResult(err, "Reading %s: %v", path, err)
	}
	return okResult(string(data))
}

func (r *Registry) Write(path, content string) ToolResult {
	if filepath.ToSlash(path) != r.writable {
		return failResult(ErrWriteDenied, "Writing to '%s' is not permitted. Allowed: %s", path, r.writable)
	}
	full, err := r.resolve(path)
	if err != nil {
		return failResult(ErrPathEscape, "Path '%s' is outside the project directory.", path)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return failResult(err, "Writing %s: %v", path, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return failResult(err, "Writing %s: %v", path, err)
	}
	return okResult("OK")
}

// skipDirs are dependency/build trees excluded from listings.
var skipDirs = map[string]bool{"node_modules": true, ".git": true, "dist": true}

func (r *Registry) List(dir string) ToolResult {
	if dir == "" {
		dir = "."
	}
	full, err := r.resolve(dir)
	if err != nil {
		return failResult(ErrPathEscape, "Path '%s' is outside the project directory.", dir)
	}
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return failResult(ErrNotFound, "File not found: %s", dir)
		}
		return failResult(err, "Listing %s: %v", dir, err)
	}
	if !info.IsDir() {
		return failResult(ErrNotFound, "'%s' is not a directory.", dir)
	}

	var entries []string
	err = filepath.Walk(full, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if skipDirs[fi.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(r.root, path)
		if err != nil {
			return err
		}
		entries = append(entries, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return failResult(err, "Listing %s: %v", dir, err)
	}
	sort.Strings(entries)
	if len(entries) == 0 {
		return okResult("(empty)")
	}
	return okResult(strings.Join(entries, "\n"))
}

// Compile runs the type-check in the project root. An error means the
// toolchain itself is broken, which is fatal configuration, not agent
// behavior.
func (r *Registry) Compile(ctx context.Context) (*validation.CompilationResult, error) {
	return r.compile.Run(ctx, r.root)
}
