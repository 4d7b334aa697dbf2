package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/prefstore/storable"
)

const sampleTOML = `
theme = "dark"
tabSize = 4
ratio = 0.5
enabled = true
tags = ["a", "b"]

[editor]
wordWrap = "off"
`

func TestTOMLLoader_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.toml")
	if err := os.WriteFile(path, []byte(sampleTOML), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	values, err := NewTOMLLoader(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if v, _ := storable.ToString(values["theme"]); v != "dark" {
		t.Errorf("theme = %q", v)
	}
	if v, _ := storable.ToInt64(values["tabSize"]); v != 4 {
		t.Errorf("tabSize = %d", v)
	}
	if v, _ := storable.ToFloat64(values["ratio"]); v != 0.5 {
		t.Errorf("ratio = %v", v)
	}
	if v, _ := storable.ToBool(values["enabled"]); !v {
		t.Error("enabled = false")
	}

	tags, ok := storable.ToSlice(values["tags"], storable.ToString)
	if !ok || len(tags) != 2 || tags[0] != "a" {
		t.Errorf("tags = %v (ok=%v)", tags, ok)
	}

	// Nested tables become dictionary values.
	editor := values["editor"]
	if editor.Kind() != storable.KindDict {
		t.Fatalf("editor kind = %v", editor.Kind())
	}
	wrap, _ := editor.Get("wordWrap")
	if v, _ := storable.ToString(wrap); v != "off" {
		t.Errorf("editor.wordWrap = %q", v)
	}
}

func TestTOMLLoader_MissingFile(t *testing.T) {
	values, err := NewTOMLLoader(filepath.Join(t.TempDir(), "absent.toml")).Load()
	if err != nil {
		t.Fatalf("Load of missing file errored: %v", err)
	}
	if values != nil {
		t.Errorf("Load of missing file = %v, want nil", values)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	_, err := NewTOMLLoader("bad.toml").LoadFromReader(strings.NewReader("= not toml ="))
	if err == nil {
		t.Fatal("malformed TOML parsed")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Errorf("error type = %T, want *ParseError", err)
	}
}
