package loader

import (
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/prefstore/storable"
)

// TOMLLoader loads defaults from TOML files.
type TOMLLoader struct {
	path string
}

// NewTOMLLoader creates a TOML loader for the given path.
func NewTOMLLoader(path string) *TOMLLoader {
	return &TOMLLoader{path: path}
}

// Load reads defaults from the configured path. A missing file is not an
// error; it yields a nil map.
func (l *TOMLLoader) Load() (map[string]storable.Value, error) {
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
func (l *TOMLLoader) LoadFromReader(r io.Reader) (map[string]storable.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return l.parse("<reader>", data)
}

func (l *TOMLLoader) parse(source string, data []byte) (map[string]storable.Value, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
	}
	return convert(source, raw)
}
