package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nissyi-gh/dailytask/internal/notify"
	"github.com/nissyi-gh/dailytask/internal/store"
	"github.com/nissyi-gh/dailytask/internal/tasks"
)

type fakeNotifier struct {
	granted bool
	sent    []notify.Notification
}

func (f *fakeNotifier) RequestPermission() error { return nil }
func (f *fakeNotifier) Granted() bool            { return f.granted }
func (f *fakeNotifier) Notify(n notify.Notification) error {
	f.sent = append(f.sent, n)
	return nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

type harness struct {
	model    Model
	store    *tasks.Store
	notifier *fakeNotifier
	clock    *fakeClock
	dir      string
}

func newHarness(t *testing.T, granted bool) *harness {
	t.Helper()
	dir := t.TempDir()
	slots, err := store.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	t.Cleanup(func() { slots.Close() })

	clock := &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local)}
	s := tasks.Open(slots, tasks.WithClock(clock.Now))
	n := &fakeNotifier{granted: granted}
	m := NewModel(s, n, Options{
		TickInterval:     time.Millisecond,
		ReminderInterval: time.Millisecond,
		ExportDir:        filepath.Join(dir, "exports"),
		Now:              clock.Now,
		LastSaved: func() (time.Time, bool, error) {
			return slots.UpdatedAt(tasks.DefaultKey)
		},
	})
	h := &harness{model: m, store: s, notifier: n, clock: clock, dir: dir}
	h.send(t, tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

func (h *harness) send(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := h.model.Update(msg)
	m, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	h.model = m
	return cmd
}

func (h *harness) press(t *testing.T, keys ...string) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		switch k {
		case "enter":
			cmd = h.send(t, tea.KeyMsg{Type: tea.KeyEnter})
		case "esc":
			cmd = h.send(t, tea.KeyMsg{Type: tea.KeyEsc})
		case "tab":
			cmd = h.send(t, tea.KeyMsg{Type: tea.KeyTab})
		default:
			cmd = h.send(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		}
	}
	return cmd
}

// run executes cmd and any batched commands, discarding their messages.
func run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			run(c)
		}
	}
}

func TestAddTask(t *testing.T) {
	h := newHarness(t, false)

	h.press(t, "a", "Write report", "tab", "Work", "enter")

	if h.model.state != stateList {
		t.Errorf("Expected list state after save, got %v", h.model.state)
	}
	all := h.store.Tasks()
	if len(all) != 1 || all[0].Title != "Write report" || all[0].ProjectName() != "Work" {
		t.Fatalf("unexpected tasks %+v", all)
	}
	if all[0].DueAt != nil {
		t.Errorf("Expected no due time, got %v", all[0].DueAt)
	}
}

func TestAddTaskWithDueDate(t *testing.T) {
	h := newHarness(t, false)

	h.press(t, "a", "Call", "tab", "tab", "2025", "tab", "03", "tab", "02", "tab", "14", "tab", "30", "enter")

	all := h.store.Tasks()
	if len(all) != 1 {
		t.Fatalf("Expected one task, got %d", len(all))
	}
	want := time.Date(2025, 3, 2, 14, 30, 0, 0, time.Local)
	if all[0].DueAt == nil || !all[0].DueAt.Equal(want) {
		t.Errorf("Expected due %v, got %v", want, all[0].DueAt)
	}
}

func TestAddBlankTitleAlerts(t *testing.T) {
	h := newHarness(t, false)

	h.press(t, "a", "   ", "enter")

	if h.store.Len() != 0 {
		t.Errorf("Expected no task, got %d", h.store.Len())
	}
	if len(h.model.alerts) != 1 || !strings.Contains(h.model.View(), "Please enter a task title") {
		t.Fatalf("Expected title alert, got %v", h.model.alerts)
	}
	if h.model.state != stateAdd {
		t.Errorf("Expected to stay in the add form")
	}

	h.press(t, "enter")
	if len(h.model.alerts) != 0 {
		t.Error("Expected alert dismissed")
	}
}

func TestTrackingThroughTicks(t *testing.T) {
	h := newHarness(t, false)
	h.store.Create("Focus", "", nil)
	h.model.refresh()

	h.press(t, "s")
	h.clock.t = h.clock.t.Add(3 * time.Second)
	h.send(t, tickMsg(h.clock.t))
	h.press(t, "s")

	got := h.store.Tasks()[0]
	if got.TimeSpentSeconds != 3 || got.Tracking || got.StartTimestamp != nil {
		t.Errorf("Expected 3 tracked seconds and stopped, got %+v", got)
	}
}

func TestReminderFallsBackToAlert(t *testing.T) {
	h := newHarness(t, false)
	due := h.clock.t.Add(time.Minute)
	h.store.Create("Call mom", "", &due)

	h.send(t, reminderMsg(h.clock.t))
	if len(h.model.alerts) != 0 {
		t.Fatalf("Expected no alert before due time")
	}

	h.clock.t = h.clock.t.Add(2 * time.Minute)
	h.send(t, reminderMsg(h.clock.t))
	h.send(t, reminderMsg(h.clock.t))

	if len(h.model.alerts) != 1 || h.model.alerts[0] != "⚠️ Reminder: Call mom is due now!" {
		t.Errorf("Expected a single reminder alert, got %v", h.model.alerts)
	}
	if len(h.notifier.sent) != 0 {
		t.Errorf("Expected no desktop notification, got %v", h.notifier.sent)
	}
}

func TestReminderNotifiesWhenGranted(t *testing.T) {
	h := newHarness(t, true)
	due := h.clock.t
	h.store.Create("Standup", "Work", &due)

	run(h.send(t, reminderMsg(h.clock.t)))

	if len(h.model.alerts) != 0 {
		t.Errorf("Expected no alert, got %v", h.model.alerts)
	}
	if len(h.notifier.sent) != 1 {
		t.Fatalf("Expected one notification, got %d", len(h.notifier.sent))
	}
	n := h.notifier.sent[0]
	if n.Title != "⏰ Task Due: Standup" || n.Body != "Project: Work — due time exceeded" || !n.Sticky {
		t.Errorf("unexpected notification %+v", n)
	}
}

func TestCompleteSendsNotification(t *testing.T) {
	h := newHarness(t, true)
	h.store.Create("Ship", "", nil)
	h.model.refresh()

	run(h.press(t, "x"))
	run(h.press(t, "x"))

	if len(h.notifier.sent) != 2 {
		t.Fatalf("Expected a notification per toggle, got %d", len(h.notifier.sent))
	}
	for _, n := range h.notifier.sent {
		if n.Title != "Task Updated" || n.Body != "Task marked complete/undo." {
			t.Errorf("unexpected notification %+v", n)
		}
	}
	if h.store.Tasks()[0].Completed {
		t.Error("Expected task undone after second toggle")
	}
}

func TestExportNothingAlerts(t *testing.T) {
	h := newHarness(t, false)
	h.store.Create("Open", "", nil)

	h.press(t, "E")

	if len(h.model.alerts) != 1 || h.model.alerts[0] != "No completed tasks to export!" {
		t.Errorf("Expected export alert, got %v", h.model.alerts)
	}
	if _, err := os.Stat(h.model.opts.ExportDir); !os.IsNotExist(err) {
		t.Errorf("Expected no export directory, stat err=%v", err)
	}
}

func TestExportWritesTimesheet(t *testing.T) {
	h := newHarness(t, false)
	task, _ := h.store.Create("Report", "", nil)
	h.store.ToggleTracking(task.ID)
	h.clock.t = h.clock.t.Add(3661 * time.Second)
	h.store.Tick()
	h.store.ToggleComplete(task.ID)

	h.press(t, "E")

	path := filepath.Join(h.model.opts.ExportDir, "timesheet_2025-03-01.csv")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected export file: %v", err)
	}
	if !strings.Contains(string(data), "Report,,01:01:01") {
		t.Errorf("unexpected export %q", data)
	}
	if !strings.Contains(h.model.status, path) {
		t.Errorf("Expected status to name the file, got %q", h.model.status)
	}
}

func TestDeleteAndClearAll(t *testing.T) {
	h := newHarness(t, false)
	h.store.Create("A", "", nil)
	h.store.Create("B", "", nil)
	h.store.Create("C", "", nil)
	h.model.refresh()

	h.press(t, "d", "n")
	if h.store.Len() != 3 {
		t.Fatalf("Expected cancel to keep tasks, got %d", h.store.Len())
	}
	h.press(t, "d", "y")
	if h.store.Len() != 2 {
		t.Fatalf("Expected one task deleted, got %d", h.store.Len())
	}

	h.press(t, "C", "y")
	if h.store.Len() != 0 {
		t.Errorf("Expected all tasks cleared, got %d", h.store.Len())
	}
}

func TestLastSavedFollowsSlot(t *testing.T) {
	h := newHarness(t, false)
	if strings.Contains(h.model.View(), "Last saved") {
		t.Error("Expected no last saved time before anything is written")
	}

	h.press(t, "a", "Write report", "enter")
	if h.model.lastSaved.IsZero() {
		t.Fatal("Expected last saved time after adding a task")
	}
	if !strings.Contains(h.model.View(), "Last saved") {
		t.Errorf("Expected last saved time in view:\n%s", h.model.View())
	}

	h.press(t, "C", "y")
	if !h.model.lastSaved.IsZero() {
		t.Errorf("Expected last saved time cleared with the slot, got %v", h.model.lastSaved)
	}
}

func TestImportFromTextarea(t *testing.T) {
	h := newHarness(t, false)

	h.press(t, "I")
	h.model.importInput.SetValue("tasks:\n  - title: First\n  - title: Second\n")
	h.send(t, tea.KeyMsg{Type: tea.KeyCtrlS})

	all := h.store.Tasks()
	if len(all) != 2 || all[0].Title != "First" || all[1].Title != "Second" {
		t.Fatalf("unexpected tasks %+v", all)
	}
	if h.model.state != stateList {
		t.Errorf("Expected list state after import")
	}
}

func TestImportInvalidAlerts(t *testing.T) {
	h := newHarness(t, false)

	h.press(t, "I")
	h.model.importInput.SetValue("tasks: []")
	h.send(t, tea.KeyMsg{Type: tea.KeyCtrlS})

	if len(h.model.alerts) != 1 || h.model.state != stateImport {
		t.Errorf("Expected alert in import state, got alerts=%v state=%v", h.model.alerts, h.model.state)
	}
}
