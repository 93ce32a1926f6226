// Package tasks holds the task list and its state transitions: creation,
// time tracking, completion and due-time reminders.
package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nissyi-gh/dailytask/internal/model"
)

// DefaultKey is the slot the task list is persisted under.
const DefaultKey = "tasks_v4"

var (
	ErrEmptyTitle = errors.New("please enter a task title")
	ErrNotFound   = errors.New("task not found")
)

// Slot is a durable key/value slot.
type Slot interface {
	Load(key string) (data []byte, ok bool, err error)
	Save(key string, data []byte) error
	Delete(key string) error
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the task id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithKey sets the slot key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// Store is the in-memory task list, newest first, written through to a Slot
// after every mutation. It is not safe for concurrent use.
type Store struct {
	slot  Slot
	key   string
	now   func() time.Time
	newID func() string
	tasks []model.Task
}

// Open hydrates a Store from slot. Missing or unreadable data yields an
// empty list.
func Open(slot Slot, opts ...Option) *Store {
	s := &Store{
		slot:  slot,
		key:   DefaultKey,
		now:   time.Now,
		newID: newTaskID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tasks = s.load()
	return s
}

func newTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (s *Store) load() []model.Task {
	data, ok, err := s.slot.Load(s.key)
	if err != nil {
		log.Printf("load tasks: %v", err)
		return nil
	}
	if !ok {
		return nil
	}
	var tasks []model.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		log.Printf("decode tasks: %v", err)
		return nil
	}
	return tasks
}

func (s *Store) persist() error {
	tasks := s.tasks
	if tasks == nil {
		tasks = []model.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.slot.Save(s.key, data); err != nil {
		return fmt.Errorf("persist tasks: %w", err)
	}
	return nil
}

// Tasks returns a copy of the task list, newest first.
func (s *Store) Tasks() []model.Task {
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (model.Task, bool) {
	if i := s.index(id); i >= 0 {
		return s.tasks[i], true
	}
	return model.Task{}, false
}

func (s *Store) index(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Create prepends a new task. project and dueAt are optional.
func (s *Store) Create(title, project string, dueAt *time.Time) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, ErrEmptyTitle
	}

	t := model.Task{
		ID:        s.newID(),
		Title:     title,
		CreatedAt: s.now(),
	}
	if p := strings.TrimSpace(project); p != "" {
		t.Project = &p
	}
	if dueAt != nil {
		d := *dueAt
		t.DueAt = &d
	}

	s.tasks = append([]model.Task{t}, s.tasks...)
	return t, s.persist()
}

// ToggleTracking starts or stops time tracking. Unknown and completed tasks
// are left alone.
func (s *Store) ToggleTracking(id string) (model.Task, error) {
	i := s.index(id)
	if i < 0 {
		return model.Task{}, nil
	}
	t := &s.tasks[i]
	if t.Completed {
		return *t, nil
	}
	if t.Tracking {
		t.Tracking = false
		t.StartTimestamp = nil
	} else {
		ms := s.now().UnixMilli()
		t.Tracking = true
		t.StartTimestamp = &ms
	}
	return *t, s.persist()
}

// ToggleComplete flips completion. Tracking always stops.
func (s *Store) ToggleComplete(id string) (model.Task, error) {
	i := s.index(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("toggle task %s: %w", id, ErrNotFound)
	}
	t := &s.tasks[i]
	t.Completed = !t.Completed
	t.Tracking = false
	t.StartTimestamp = nil
	if t.Completed {
		now := s.now()
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
	return *t, s.persist()
}

// Delete removes a task.
func (s *Store) Delete(id string) error {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return s.persist()
}

// ClearAll removes every task and the persisted slot.
func (s *Store) ClearAll() error {
	s.tasks = nil
	if err := s.slot.Delete(s.key); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	return nil
}

// Tick accrues whole elapsed seconds to every tracked task and moves its
// startTimestamp to now. A sub-second remainder is dropped.
func (s *Store) Tick() (bool, error) {
	nowMs := s.now().UnixMilli()
	changed := false
	for i := range s.tasks {
		t := &s.tasks[i]
		if !t.Tracking || t.Completed || t.StartTimestamp == nil {
			continue
		}
		delta := (nowMs - *t.StartTimestamp) / 1000
		if delta < 1 {
			continue
		}
		t.TimeSpentSeconds += delta
		start := nowMs
		t.StartTimestamp = &start
		changed = true
	}
	if !changed {
		return false, nil
	}
	return true, s.persist()
}

// CheckReminders marks every due task as reminded and returns them. A task
// is returned at most once over its lifetime.
func (s *Store) CheckReminders() ([]model.Task, error) {
	now := s.now()
	var due []model.Task
	for i := range s.tasks {
		t := &s.tasks[i]
		if !t.IsDue(now) {
			continue
		}
		t.Reminded = true
		due = append(due, *t)
	}
	if len(due) == 0 {
		return nil, nil
	}
	return due, s.persist()
}
