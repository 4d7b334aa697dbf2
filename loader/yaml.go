package loader

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dshills/prefstore/storable"
)

// YAMLLoader loads defaults from YAML files.
type YAMLLoader struct {
	path string
}

// NewYAMLLoader creates a YAML loader for the given path.
func NewYAMLLoader(path string) *YAMLLoader {
	return &YAMLLoader{path: path}
}

// Load reads defaults from the configured path. A missing file is not an
// error; it yields a nil map.
func (l *YAMLLoader) Load() (map[string]storable.Value, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return l.parse(l.path, data)
}

// LoadFromReader reads defaults from an io.Reader.
func (l *YAMLLoader) LoadFromReader(r io.Reader) (map[string]storable.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return l.parse("<reader>", data)
}

func (l *YAMLLoader) parse(source string, data []byte) (map[string]storable.Value, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
	}
	return convert(source, raw)
}
