package cache

import (
	"fmt"
	"sync"
)

// Config sizes the two tiers.
type Config struct {
	MemoryCapacity   int64
	DiskCapacity     int64
	DiskPath         string
	CompressionLevel int
}

// DefaultConfig returns 32MB of memory and 256MB of zstd level 3 disk.
func DefaultConfig(dir string) Config {
	return Config{
		MemoryCapacity:   32 * 1024 * 1024,
		DiskCapacity:     256 * 1024 * 1024,
		DiskPath:         dir,
		CompressionLevel: 3,
	}
}

// Manager looks up memory first, then disk, promoting disk hits.
type Manager struct {
	memory *MemoryCache
	disk   *DiskCache

	mu     sync.Mutex
	closed bool
}

// NewManager builds both tiers. An empty DiskPath yields a memory-only
// cache.
func NewManager(cfg Config) (*Manager, error) {
	m := &Manager{memory: NewMemoryCache(cfg.MemoryCapacity)}
	if cfg.DiskPath == "" {
		return m, nil
	}

	disk, err := NewDiskCache(cfg.DiskPath, cfg.DiskCapacity, cfg.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create disk cache: %w", err)
	}
	m.disk = disk
	return m, nil
}

// Get returns the cached value and the tier it came from.
func (m *Manager) Get(key string) ([]byte, Level, bool) {
	if data, ok := m.memory.Get(key); ok {
		return data, LevelMemory, true
	}
	if m.disk == nil {
		return nil, LevelMemory, false
	}
	data, ok := m.disk.Get(key)
	if !ok {
		return nil, LevelDisk, false
	}
	_ = m.memory.Put(key, data)
	return data, LevelDisk, true
}

// Put writes to both tiers. A value too large for memory still lands on
// disk.
func (m *Manager) Put(key string, value []byte) error {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return ErrClosed
	}

	memErr := m.memory.Put(key, value)
	if m.disk == nil {
		return memErr
	}
	return m.disk.Put(key, value)
}

// Clear empties both tiers.
func (m *Manager) Clear() error {
	_ = m.memory.Clear()
	if m.disk != nil {
		return m.disk.Clear()
	}
	return nil
}

// Stats returns per-tier statistics.
func (m *Manager) Stats() map[Level]Stats {
	stats := map[Level]Stats{LevelMemory: m.memory.Stats()}
	if m.disk != nil {
		stats[LevelDisk] = m.disk.Stats()
	}
	return stats
}

// Close persists the disk index.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if m.disk != nil {
		return m.disk.Close()
	}
	return nil
}
