package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nissyi-gh/dailytask/internal/model"
	"gopkg.in/yaml.v3"
)

// Template documents the accepted YAML format.
const Template = `tasks:
  - title: "Task title"
    project: "Project (optional)"
    due_at: "2006-01-02 15:04"`

// DueLayouts are the accepted due_at layouts, tried in order. Layouts
// without a zone are read in local time.
var DueLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Creator creates tasks.
type Creator interface {
	Create(title, project string, dueAt *time.Time) (model.Task, error)
}

// YAMLTask represents a single task in the YAML input.
type YAMLTask struct {
	Title   string `yaml:"title"`
	Project string `yaml:"project,omitempty"`
	DueAt   string `yaml:"due_at,omitempty"`
}

// YAMLInput represents the root structure of the YAML input.
type YAMLInput struct {
	Tasks []YAMLTask `yaml:"tasks"`
}

// ParseDue parses a due time in one of DueLayouts.
func ParseDue(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DueLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid due_at %q", s)
}

// Import parses a YAML string and creates its tasks so that they appear in
// document order at the top of the list. Nothing is created unless every
// entry is valid. Returns the number of tasks created.
func Import(c Creator, yamlStr string) (int, error) {
	var input YAMLInput
	if err := yaml.Unmarshal([]byte(yamlStr), &input); err != nil {
		return 0, fmt.Errorf("YAML parse error: %w", err)
	}

	if len(input.Tasks) == 0 {
		return 0, errors.New("no tasks found in YAML")
	}

	dues := make([]*time.Time, len(input.Tasks))
	for i, yt := range input.Tasks {
		if strings.TrimSpace(yt.Title) == "" {
			return 0, fmt.Errorf("task %d: title is required", i+1)
		}
		if yt.DueAt != "" {
			d, err := ParseDue(yt.DueAt)
			if err != nil {
				return 0, fmt.Errorf("task %q: %w", yt.Title, err)
			}
			dues[i] = &d
		}
	}

	count := 0
	for i := len(input.Tasks) - 1; i >= 0; i-- {
		yt := input.Tasks[i]
		if _, err := c.Create(yt.Title, yt.Project, dues[i]); err != nil {
			return count, fmt.Errorf("add task %q: %w", yt.Title, err)
		}
		count++
	}
	return count, nil
}
