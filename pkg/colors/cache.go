package colors

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// CategoryState tracks the calendar color assigned to a task category and
// when it was last used, for LRU recycling once the palette runs out.
type CategoryState struct {
	ColorID  string    `json:"color_id"`
	LastUsed time.Time `json:"last_used"`
}

// Cache assigns stable Google Calendar event colors per task category.
type Cache struct {
	Categories map[string]*CategoryState `json:"categories"`

	path  string
	dirty bool
}

const defaultColorID = "14" // gray, for tasks with no category

func New(path string) (*Cache, error) {
	c := &Cache{
		Categories: make(map[string]*CategoryState),
		path:       path,
	}
	if _, err := os.Stat(path); err == nil {
		if err := c.load(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "taskflow", "category_colors.json"), nil
}

func (c *Cache) load() error {
	f, err := os.Open(c.path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(&c.Categories)
}

func (c *Cache) Save() error {
	if !c.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return err
	}
	f, err := os.Create(c.path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(c.Categories); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// ColorID returns the color assigned to a category, assigning one on first
// sight.
func (c *Cache) ColorID(category string) string {
	if category == "" {
		return defaultColorID
	}

	if state, ok := c.Categories[category]; ok {
		state.LastUsed = time.Now()
		c.dirty = true
		return state.ColorID
	}
	return c.assign(category)
}

func (c *Cache) assign(category string) string {
	// Calendar event colors 1 through 11.
	used := make(map[string]bool)
	for _, s := range c.Categories {
		used[s.ColorID] = true
	}
	for i := 1; i <= 11; i++ {
		id := strconv.Itoa(i)
		if !used[id] {
			c.Categories[category] = &CategoryState{ColorID: id, LastUsed: time.Now()}
			c.dirty = true
			return id
		}
	}

	// Palette exhausted: recycle the color of the least recently used category.
	var oldest string
	var oldestTime time.Time
	first := true
	for cat, s := range c.Categories {
		if first || s.LastUsed.Before(oldestTime) {
			oldest = cat
			oldestTime = s.LastUsed
			first = false
		}
	}
	if oldest == "" {
		return "1"
	}

	recycled := c.Categories[oldest].ColorID
	delete(c.Categories, oldest)
	c.Categories[category] = &CategoryState{ColorID: recycled, LastUsed: time.Now()}
	c.dirty = true
	return recycled
}
