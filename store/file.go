package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"howett.net/plist"

	"github.com/dshills/prefstore/fragment"
	"github.com/dshills/prefstore/storable"
)

const plistHeader = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
`

// FileStore is a Store persisted as an XML property-list file, the
// on-disk shape of a platform defaults database. Explicit values are
// written through to the file on every mutation; registered defaults are
// volatile and never persisted.
//
// The backing file is watched, so edits made by other processes surface
// as ordinary change events on the watcher goroutine. Dates are
// persisted at second precision, the resolution of the plist grammar.
type FileStore struct {
	mem  *MemoryStore
	path string

	watcher *fsnotify.Watcher
	closeCh chan struct{}
	wg      sync.WaitGroup

	// mu serializes persistence and guards lastWritten, the exact bytes
	// of our most recent write. Reload compares file bytes against it so
	// our own writes never echo back as change events.
	mu          sync.Mutex
	lastWritten []byte
	closed      bool
}

// OpenFile opens (or creates on first write) the plist file at path and
// returns a store backed by it.
func OpenFile(path string) (*FileStore, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	s := &FileStore{
		mem:     NewMemory(),
		path:    absPath,
		closeCh: make(chan struct{}),
	}

	if err := s.loadInitial(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: the file itself may not exist yet, and
	// atomic-rename writers replace the inode on every save.
	if err := w.Add(filepath.Dir(absPath)); err != nil {
		w.Close()
		return nil, err
	}
	s.watcher = w

	s.wg.Add(1)
	go s.watchLoop()

	return s, nil
}

// Get returns the effective value for key.
func (s *FileStore) Get(key string) (storable.Value, bool) {
	return s.mem.Get(key)
}

// Set stores an explicit value, notifies observers, and persists.
func (s *FileStore) Set(key string, value storable.Value) {
	s.mem.Set(key, value)
	s.persist()
}

// Remove deletes the explicit value for key and persists.
func (s *FileStore) Remove(key string) {
	s.mem.Remove(key)
	s.persist()
}

// RegisterDefaults installs volatile fallback values.
func (s *FileStore) RegisterDefaults(defaults map[string]storable.Value) {
	s.mem.RegisterDefaults(defaults)
}

// Observe subscribes fn to changes of key.
func (s *FileStore) Observe(key string, fn ObserveFunc) Token {
	return s.mem.Observe(key, fn)
}

// Unobserve removes a subscription.
func (s *FileStore) Unobserve(token Token) {
	s.mem.Unobserve(token)
}

// Close stops watching the backing file. It is safe to call more than
// once. The store remains usable in memory but no longer reacts to
// external edits.
func (s *FileStore) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.closeCh)
	s.watcher.Close()
	s.wg.Wait()
}

// loadInitial reads the backing file into the memory layer. A missing
// file is an empty store.
func (s *FileStore) loadInitial() error {
	values, err := readDocument(s.path)
	if err != nil {
		return err
	}
	for key, value := range values {
		s.mem.Set(key, value)
	}
	return nil
}

// watchLoop applies external file changes to the memory layer.
func (s *FileStore) watchLoop() {
	defer s.wg.Done()

	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != s.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) ||
				ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				s.reload()
			}
		case _, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

// reload re-reads the backing file and applies the difference to the
// memory layer key by key, so observers see ordinary set/remove events.
// A self-write reads back byte-identical and is skipped outright.
func (s *FileStore) reload() {
	data, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return
	}

	s.mu.Lock()
	if data != nil && bytes.Equal(data, s.lastWritten) {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	var values map[string]storable.Value
	if data != nil {
		values, err = parseDocument(data)
		if err != nil {
			// Partial write or foreign content; keep current state.
			return
		}
	}

	current := s.mem.Snapshot()
	for key := range current {
		if _, ok := values[key]; !ok {
			s.mem.Remove(key)
		}
	}
	for key, value := range values {
		if cur, ok := current[key]; ok && cur.Equal(value) {
			continue
		}
		s.mem.Set(key, value)
	}
}

// persist writes the explicit values as an XML plist document, via a
// temp file and rename.
func (s *FileStore) persist() {
	values := s.mem.Snapshot()
	doc := renderDocument(values)

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, doc, 0o644); err != nil {
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return
	}
	s.lastWritten = doc
}

// renderDocument wraps the value dictionary, keys sorted for
// determinism, in a plist document around the fragment encoding.
func renderDocument(values map[string]storable.Value) []byte {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]storable.Entry, len(keys))
	for i, k := range keys {
		entries[i] = storable.Entry{Key: k, Value: values[k]}
	}

	var b bytes.Buffer
	b.WriteString(plistHeader)
	b.WriteString(fragment.Encode(storable.Dict(entries...)))
	b.WriteString("\n</plist>\n")
	return b.Bytes()
}

// readDocument loads and parses the file at path. A missing file yields
// an empty map.
func readDocument(path string) (map[string]storable.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return parseDocument(data)
}

// parseDocument decodes a plist document into storable values.
func parseDocument(data []byte) (map[string]storable.Value, error) {
	var raw map[string]any
	if _, err := plist.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("store: parsing plist document: %w", err)
	}

	values := make(map[string]storable.Value, len(raw))
	for key, rv := range raw {
		v, ok := storable.FromAny(rv)
		if !ok {
			return nil, fmt.Errorf("store: key %q holds an unsupported value", key)
		}
		values[key] = v
	}
	return values, nil
}
