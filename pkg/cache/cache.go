package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const xdgAppName = "taskflow"

// Cache is the device-local durable key-value fallback store: one file per
// key under dir, read and written synchronously. It is what load and save
// degrade to when the remote store is unreachable.
type Cache struct {
	mu  sync.Mutex
	dir string
}

func New(dir string) *Cache {
	return &Cache{dir: dir}
}

func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

// Read returns the stored value for key, or ok=false if the key is absent or
// unreadable.
func (c *Cache) Read(key string) (value string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := os.ReadFile(c.path(key))
	if err != nil {
		return "", false
	}
	return string(b), true
}

func (c *Cache) Write(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0700); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", c.dir, err)
	}
	if err := os.WriteFile(c.path(key), []byte(value), 0600); err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	return nil
}

// Remove purges the entry for key entirely. Removing an absent key is not an
// error.
func (c *Cache) Remove(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache entry %s: %w", key, err)
	}
	return nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, sanitize(key)+".json")
}

// sanitize keeps keys filesystem-safe; identities are email addresses.
func sanitize(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, key)
}
