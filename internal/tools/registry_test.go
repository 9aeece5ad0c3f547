package tools_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/vuebench/vuebench/internal/tools"
	"github.com/vuebench/vuebench/internal/validation"
)

func newRegistry(t *testing.T) (*tools.Registry, string) {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"package.json":              `{"name":"t"}`,
		"src/App.vue":               "<template/>",
		"src/components/Button.vue": "<template/>",
		"node_modules/x/index.js":   "ignored",
	}
	for path, content := range files {
		full := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	reg, err := tools.NewRegistry(root, "src/App.vue", &validation.CompileCheck{
		Cmd:     []string{"sh", "-c", "echo ok"},
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return reg, root
}

func TestRead(t *testing.T) {
	reg, _ := newRegistry(t)
	res := reg.Read("src/App.vue")
	if !res.OK {
		t.Fatalf("Read failed: %s", res.Message)
	}
	if res.Payload != "<template/>" {
		t.Errorf("unexpected payload %q", res.Payload)
	}
}

func TestReadNotFound(t *testing.T) {
	reg, _ := newRegistry(t)
	res := reg.Read("src/Missing.vue")
	if res.OK {
		t.Fatal("expected failure")
	}
	if !errors.Is(res.Failure, tools.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", res.Failure)
	}
	if !strings.HasPrefix(res.Message, "ERROR: ") {
		t.Errorf("failure message must carry the ERROR prefix, got %q", res.Message)
	}
}

func TestReadPathEscape(t *testing.T) {
	reg, _ := newRegistry(t)
	for _, path := range []string{"../outside.txt", "../../etc/passwd", "src/../../x"} {
		res := reg.Read(path)
		if res.OK {
			t.Errorf("expected escape rejection for %q", path)
		}
		if !errors.Is(res.Failure, tools.ErrPathEscape) {
			t.Errorf("expected ErrPathEscape for %q, got %v", path, res.Failure)
		}
	}
}

func TestWrite(t *testing.T) {
	reg, root := newRegistry(t)
	res := reg.Write("src/App.vue", "updated")
	if !res.OK {
		t.Fatalf("Write failed: %s", res.Message)
	}
	data, err := os.ReadFile(filepath.Join(root, "src", "App.vue"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "updated" {
		t.Errorf("file content not written, got %q", data)
	}
}

func TestWriteDenied(t *testing.T) {
	reg, root := newRegistry(t)
	res := reg.Write("src/components/Button.vue", "nope")
	if res.OK {
		t.Fatal("expected write denial")
	}
	if !errors.Is(res.Failure, tools.ErrWriteDenied) {
		t.Errorf("expected ErrWriteDenied, got %v", res.Failure)
	}
	if !strings.Contains(res.Message, "src/App.vue") {
		t.Errorf("denial should name the allowed path, got %q", res.Message)
	}
	data, _ := os.ReadFile(filepath.Join(root, "src", "components", "Button.vue"))
	if string(data) != "<template/>" {
		t.Error("denied write must not touch the file")
	}
}

func TestWriteDeniedOutsideProject(t *testing.T) {
	reg, _ := newRegistry(t)
	res := reg.Write("../escape.vue", "nope")
	if res.OK {
		t.Fatal("expected denial")
	}
	if !errors.Is(res.Failure, tools.ErrWriteDenied) {
		t.Errorf("expected ErrWriteDenied, got %v", res.Failure)
	}
}

func TestList(t *testing.T) {
	reg, _ := newRegistry(t)
	res := reg.List("")
	if !res.OK {
		t.Fatalf("List failed: %s", res.Message)
	}
	entries := strings.Split(res.Payload, "\n")
	want := []string{"package.json", "src/App.vue", "src/components/Button.vue"}
	if len(entries) != len(want) {
		t.Fatalf("expected %v, got %v", want, entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d: expected %q, got %q", i, want[i], entries[i])
		}
	}
	if strings.Contains(res.Payload, "node_modules") {
		t.Error("node_modules must be excluded from listings")
	}
}

func TestListSubdir(t *testing.T) {
	reg, _ := newRegistry(t)
	res := reg.List("src")
	if !res.OK {
		t.Fatalf("List failed: %s", res.Message)
	}
	if strings.Contains(res.Payload, "package.json") {
		t.Error("subdirectory listing leaked parent entries")
	}
}

func TestListMissingDir(t *testing.T) {
	reg, _ := newRegistry(t)
	res := reg.List("no-such-dir")
	if res.OK {
		t.Fatal("expected failure")
	}
	if !errors.Is(res.Failure, tools.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", res.Failure)
	}
}

func TestCompile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	reg, _ := newRegistry(t)
	res, err := reg.Compile(context.Background())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !res.Success {
		t.Error("expected success")
	}
}

func TestSpecByName(t *testing.T) {
	spec, ok := tools.SpecByName(tools.ToolWriteFile)
	if !ok {
		t.Fatal("write_file not in the tool set")
	}
	if len(spec.Params) != 2 {
		t.Errorf("expected 2 params, got %d", len(spec.Params))
	}
	if _, ok := tools.SpecByName("delete_file"); ok {
		t.Error("unknown tool should not resolve")
	}
}

func TestNewRegistryBadRoot(t *testing.T) {
	_, err := tools.NewRegistry(filepath.Join(t.TempDir(), "missing"), "src/App.vue", nil)
	if err == nil {
		t.Error("expected error for a nonexistent project root")
	}
}
