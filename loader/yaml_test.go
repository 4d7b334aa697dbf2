package loader

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/prefstore/storable"
)

const sampleYAML = `
theme: dark
tabSize: 4
enabled: true
nested:
  level: 2
`

func TestYAMLLoader_LoadFromReader(t *testing.T) {
	values, err := NewYAMLLoader("defaults.yaml").LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if v, _ := storable.ToString(values["theme"]); v != "dark" {
		t.Errorf("theme = %q", v)
	}
	if v, _ := storable.ToInt64(values["tabSize"]); v != 4 {
		t.Errorf("tabSize = %d", v)
	}
	if v, _ := storable.ToBool(values["enabled"]); !v {
		t.Error("enabled = false")
	}

	nested := values["nested"]
	if nested.Kind() != storable.KindDict {
		t.Fatalf("nested kind = %v", nested.Kind())
	}
	level, _ := nested.Get("level")
	if v, _ := storable.ToInt64(level); v != 2 {
		t.Errorf("nested.level = %d", v)
	}
}

func TestYAMLLoader_MissingFile(t *testing.T) {
	values, err := NewYAMLLoader("/nonexistent/absent.yaml").Load()
	if err != nil {
		t.Fatalf("Load of missing file errored: %v", err)
	}
	if values != nil {
		t.Errorf("Load of missing file = %v, want nil", values)
	}
}

func TestYAMLLoader_ParseError(t *testing.T) {
	_, err := NewYAMLLoader("bad.yaml").LoadFromReader(strings.NewReader(":\n  - ]["))
	if err == nil {
		t.Fatal("malformed YAML parsed")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Errorf("error type = %T, want *ParseError", err)
	}
}
