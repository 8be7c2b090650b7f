package names

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/wonny/warrantscan/internal/contracts"
)

// MappingStore is the persistent ticker → listing-name cache.
// Loaded once; every Put rewrites the whole file before returning.
// ⭐ SSOT: 이름 매핑 파일은 여기서만 읽고 씀
type MappingStore struct {
	path string

	mu      sync.RWMutex
	mapping contracts.NameMapping
}

// LoadMappingStore reads the mapping file. A missing or unreadable file
// yields the seed mapping; the file is created on the first Put.
func LoadMappingStore(path string) (*MappingStore, error) {
	s := &MappingStore{path: path, mapping: defaultMapping()}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read mapping file: %w", err)
	}

	var loaded contracts.NameMapping
	if err := json.Unmarshal(data, &loaded); err != nil {
		return s, fmt.Errorf("decode mapping file: %w", err)
	}
	if loaded == nil {
		loaded = contracts.NameMapping{}
	}
	s.mapping = loaded
	return s, nil
}

// NewMemoryStore creates a store that never touches disk
func NewMemoryStore(initial contracts.NameMapping) *MappingStore {
	if initial == nil {
		initial = contracts.NameMapping{}
	}
	return &MappingStore{mapping: initial.Clone()}
}

// Get returns a copy of the cached names for ticker
func (s *MappingStore) Get(ticker string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.mapping[ticker]
	if !ok || len(v) == 0 {
		return nil, false
	}
	return append([]string(nil), v...), true
}

// Put stores names for ticker and writes the file through.
// Entries are never deleted.
func (s *MappingStore) Put(ticker string, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mapping[ticker] = append([]string(nil), names...)
	return s.persistLocked()
}

// Snapshot returns a copy of the whole mapping
func (s *MappingStore) Snapshot() contracts.NameMapping {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mapping.Clone()
}

// Path returns the backing file path ("" for memory stores)
func (s *MappingStore) Path() string {
	return s.path
}

// persistLocked rewrites the file via a temp file + rename
func (s *MappingStore) persistLocked() error {
	if s.path == "" {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // "AT&T" 그대로 저장
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.mapping); err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".mapping-*.json")
	if err != nil {
		return fmt.Errorf("create temp mapping file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write mapping: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close mapping: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace mapping file: %w", err)
	}
	return nil
}
