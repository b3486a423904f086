package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Cache is the last-used state of the tool, persisted between runs.
type Cache struct {
	LastWin64Dir      string    `json:"last_win64_dir"`
	LastInstalledMods []string  `json:"last_installed_mods"`
	LastScannedDirs   []string  `json:"last_scanned_files"`
	LastOutput        string    `json:"last_debug_output"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type Store interface {
	Load() (Cache, error)
	Save(Cache) error
}

type FileStore struct {
	path string
	now  func() time.Time
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: func() time.Time { return time.Now().UTC() }}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() (Cache, error) {
	return Load(s.path)
}

func (s *FileStore) Save(c Cache) error {
	c.UpdatedAt = s.now()
	return SaveAtomic(s.path, c)
}

func Load(path string) (Cache, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Cache{}, nil
		}
		return Cache{}, fmt.Errorf("read cache: %w", err)
	}
	var c Cache
	if err := json.Unmarshal(b, &c); err != nil {
		return Cache{}, fmt.Errorf("parse cache: %w", err)
	}
	return c, nil
}

func SaveAtomic(path string, c Cache) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "cache-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		tmp.Close()
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("atomic replace cache: %w", err)
	}
	return nil
}

// MemoryStore keeps the cache in memory only.
type MemoryStore struct {
	Cache Cache
	Saves int
}

func (m *MemoryStore) Load() (Cache, error) { return m.Cache, nil }

func (m *MemoryStore) Save(c Cache) error {
	m.Cache = c
	m.Saves++
	return nil
}
