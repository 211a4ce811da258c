package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/harrisonrobin/taskflow/pkg/model"
)

// Export writes the collection as an indented JSON document, preserving store
// order and every field.
func Export(w io.Writer, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tasks); err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	return nil
}

// Import parses and validates a previously exported document. The whole
// document is rejected if it is not a JSON array, carries trailing data after
// the array, or holds any element missing an id, title, category, or due
// date; callers replace the store only on a nil error, so a rejected import
// never mutates anything.
func Import(r io.Reader) ([]model.Task, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse import document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		// A top-level null decodes into a nil slice without complaint, so the
		// document must be checked for an actual array before decoding.
		return nil, fmt.Errorf("import document must be a JSON array of tasks, got %v", tok)
	}

	var tasks []model.Task
	for dec.More() {
		var t model.Task
		if err := dec.Decode(&t); err != nil {
			return nil, fmt.Errorf("task %d: %w", len(tasks), err)
		}
		if err := validate(t); err != nil {
			return nil, fmt.Errorf("task %d: %w", len(tasks), err)
		}
		tasks = append(tasks, t)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to parse import document: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("import document has trailing data after the task array")
	}
	return tasks, nil
}

func validate(t model.Task) error {
	switch {
	case t.ID == "":
		return fmt.Errorf("missing id")
	case strings.TrimSpace(t.Title) == "":
		return fmt.Errorf("missing title")
	case t.Category == "":
		return fmt.Errorf("missing category")
	case t.DueDate.IsZero():
		return fmt.Errorf("missing due date")
	}
	return nil
}
