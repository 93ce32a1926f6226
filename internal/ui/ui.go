package ui

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nissyi-gh/dailytask/internal/importer"
	"github.com/nissyi-gh/dailytask/internal/notify"
	"github.com/nissyi-gh/dailytask/internal/tasks"
	"github.com/nissyi-gh/dailytask/internal/timesheet"
)

type appState int

const (
	stateList appState = iota
	stateAdd
	stateConfirm
	stateConfirmClear
	stateImport
)

const (
	addFieldTitle = iota
	addFieldProject
	addFieldDue
)

var (
	appStyle     = lipgloss.NewStyle().Padding(1, 2)
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	confirmStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(9)
	detailStyle  = lipgloss.NewStyle().
			Padding(1, 2).
			BorderLeft(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241"))
	alertStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("214")).
			Bold(true)
)

type extraKeyMap struct {
	Add      key.Binding
	Track    key.Binding
	Toggle   key.Binding
	Delete   key.Binding
	ClearAll key.Binding
	Export   key.Binding
	Import   key.Binding
}

func newExtraKeyMap() extraKeyMap {
	return extraKeyMap{
		Add: key.NewBinding(
			key.WithKeys("a", "n"),
			key.WithHelp("a/n", "add"),
		),
		Track: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start/stop"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter", "x"),
			key.WithHelp("enter/x", "complete"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear all"),
		),
		Export: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "export"),
		),
		Import: key.NewBinding(
			key.WithKeys("I"),
			key.WithHelp("I", "import"),
		),
	}
}

func (k extraKeyMap) bindings() []key.Binding {
	return []key.Binding{k.Add, k.Track, k.Toggle, k.Delete, k.ClearAll, k.Export, k.Import}
}

// Options configures the TUI.
type Options struct {
	TickInterval     time.Duration
	ReminderInterval time.Duration
	ExportDir        string
	CopyToClipboard  bool
	// Now is the wall clock used for display and export names.
	Now func() time.Time
	// LastSaved reports when the task list was last written, if known.
	LastSaved func() (time.Time, bool, error)
}

func (o *Options) setDefaults() {
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.ReminderInterval <= 0 {
		o.ReminderInterval = 5 * time.Second
	}
	if o.ExportDir == "" {
		o.ExportDir = "."
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Model is the top-level BubbleTea model for the dailytask TUI.
type Model struct {
	state        appState
	list         list.Model
	titleInput   textinput.Model
	projectInput textinput.Model
	dueInput     dateInput
	addFocus     int
	importInput  textarea.Model
	store        *tasks.Store
	notifier     notify.Notifier
	opts         Options
	keys         extraKeyMap
	alerts       []string
	status       string
	lastSaved    time.Time
	err          error
	width        int
	height       int
}

type tickMsg time.Time
type reminderMsg time.Time
type clipboardMsg string

// NewModel creates a new TUI model.
func NewModel(s *tasks.Store, n notify.Notifier, opts Options) Model {
	opts.setDefaults()

	ti := textinput.New()
	ti.Placeholder = "Task title..."
	ti.CharLimit = 256

	pi := textinput.New()
	pi.Placeholder = "Project (optional)"
	pi.CharLimit = 128

	keys := newExtraKeyMap()

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetHeight(1)
	delegate.SetSpacing(0)
	l := list.New(nil, delegate, 0, 0)
	l.Title = "Daily Task Tracker"
	l.Styles.Title = titleStyle
	l.SetShowHelp(true)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("task", "tasks")
	l.AdditionalShortHelpKeys = keys.bindings
	l.AdditionalFullHelpKeys = keys.bindings

	ta := textarea.New()
	ta.Placeholder = importer.Template
	ta.CharLimit = 16384

	m := Model{
		state:        stateList,
		list:         l,
		titleInput:   ti,
		projectInput: pi,
		dueInput:     newDateInput(opts.Now),
		importInput:  ta,
		store:        s,
		notifier:     n,
		opts:         opts,
		keys:         keys,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		requestPermissionCmd(m.notifier),
		m.scheduleTick(),
		m.scheduleReminder(),
	)
}

func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.opts.TickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) scheduleReminder() tea.Cmd {
	return tea.Tick(m.opts.ReminderInterval, func(t time.Time) tea.Msg { return reminderMsg(t) })
}

// refresh rebuilds the list items from the store.
func (m *Model) refresh() tea.Cmd {
	now := m.opts.Now()
	all := m.store.Tasks()
	items := make([]list.Item, len(all))
	for i, t := range all {
		items[i] = TaskItem{Task: t, Now: now}
	}
	if m.opts.LastSaved != nil {
		saved, ok, err := m.opts.LastSaved()
		switch {
		case err != nil:
			log.Printf("read last saved time: %v", err)
		case ok:
			m.lastSaved = saved
		default:
			m.lastSaved = time.Time{}
		}
	}
	return m.list.SetItems(items)
}

func (m *Model) alert(msg string) {
	m.alerts = append(m.alerts, msg)
}

func (m *Model) selected() (TaskItem, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	return item, ok
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h, v := appStyle.GetFrameSize()
		contentWidth := msg.Width - h
		leftWidth := contentWidth * 60 / 100
		m.list.SetSize(leftWidth, msg.Height-v)
		m.importInput.SetWidth(contentWidth - 2)
		m.importInput.SetHeight(msg.Height - v - 8)
		return m, nil

	case tickMsg:
		changed, err := m.store.Tick()
		if err != nil {
			m.err = err
		}
		cmds := []tea.Cmd{m.scheduleTick()}
		if changed {
			cmds = append(cmds, m.refresh())
		}
		return m, tea.Batch(cmds...)

	case reminderMsg:
		fired, err := m.store.CheckReminders()
		if err != nil {
			m.err = err
		}
		cmds := []tea.Cmd{m.scheduleReminder()}
		for _, t := range fired {
			if m.notifier.Granted() {
				cmds = append(cmds, notifyCmd(m.notifier, reminderNotice(t)))
			} else {
				m.alert(reminderAlert(t))
			}
		}
		if len(fired) > 0 {
			cmds = append(cmds, m.refresh())
		}
		return m, tea.Batch(cmds...)

	case clipboardMsg:
		if m.state == stateImport && m.importInput.Value() == "" {
			m.importInput.SetValue(string(msg))
		}
		return m, nil
	}

	if len(m.alerts) > 0 {
		return m.updateAlert(msg)
	}

	switch m.state {
	case stateList:
		return m.updateList(msg)
	case stateAdd:
		return m.updateAdd(msg)
	case stateConfirm:
		return m.updateConfirm(msg)
	case stateConfirmClear:
		return m.updateConfirmClear(msg)
	case stateImport:
		return m.updateImport(msg)
	}

	return m, nil
}

// updateAlert swallows input until the front alert is dismissed.
func (m Model) updateAlert(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter", "esc", " ":
			m.alerts = m.alerts[1:]
		case "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.list.SettingFilter() {
		switch keyMsg.String() {
		case "a", "n":
			m.state = stateAdd
			m.err = nil
			m.titleInput.Reset()
			m.projectInput.Reset()
			m.dueInput = newDateInput(m.opts.Now)
			return m, m.focusAdd(addFieldTitle)
		case "s":
			if item, ok := m.selected(); ok {
				if _, err := m.store.ToggleTracking(item.Task.ID); err != nil {
					m.err = err
				}
				return m, m.refresh()
			}
		case "enter", "x":
			if item, ok := m.selected(); ok {
				if _, err := m.store.ToggleComplete(item.Task.ID); err != nil {
					m.err = err
					return m, nil
				}
				cmds := []tea.Cmd{m.refresh()}
				if m.notifier.Granted() {
					cmds = append(cmds, notifyCmd(m.notifier, completionNotice()))
				}
				return m, tea.Batch(cmds...)
			}
		case "d":
			if m.list.SelectedItem() != nil {
				m.state = stateConfirm
				return m, nil
			}
		case "C":
			if m.store.Len() > 0 {
				m.state = stateConfirmClear
				return m, nil
			}
		case "E":
			return m.export()
		case "I":
			m.state = stateImport
			m.err = nil
			m.importInput.Reset()
			return m, tea.Batch(m.importInput.Focus(), readClipboardCmd)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) export() (tea.Model, tea.Cmd) {
	all := m.store.Tasks()
	path, err := timesheet.Export(m.opts.ExportDir, all, m.opts.Now())
	if errors.Is(err, timesheet.ErrNothingToExport) {
		m.alert("No completed tasks to export!")
		return m, nil
	}
	if err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.status = "Exported " + path
	if !m.opts.CopyToClipboard {
		return m, nil
	}
	content, err := timesheet.Render(all)
	if err != nil {
		return m, nil
	}
	return m, func() tea.Msg {
		if err := clipboard.WriteAll(content); err != nil {
			log.Printf("copy timesheet: %v", err)
		}
		return nil
	}
}

func readClipboardCmd() tea.Msg {
	text, err := clipboard.ReadAll()
	if err != nil {
		log.Printf("read clipboard: %v", err)
		return nil
	}
	return clipboardMsg(text)
}

func (m *Model) focusAdd(field int) tea.Cmd {
	m.addFocus = field
	m.titleInput.Blur()
	m.projectInput.Blur()
	m.dueInput.Blur()
	switch field {
	case addFieldTitle:
		return m.titleInput.Focus()
	case addFieldProject:
		return m.projectInput.Focus()
	default:
		return m.dueInput.Focus()
	}
}

func (m Model) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			return m.submitAdd()
		case "esc":
			m.state = stateList
			m.err = nil
			return m, nil
		case "tab":
			if m.addFocus != addFieldDue {
				return m, m.focusAdd(m.addFocus + 1)
			}
			if m.dueInput.AtLast() {
				return m, m.focusAdd(addFieldTitle)
			}
		case "shift+tab":
			if m.addFocus == addFieldDue && m.dueInput.focus > 0 {
				break
			}
			if m.addFocus == addFieldTitle {
				return m, m.focusAdd(addFieldDue)
			}
			return m, m.focusAdd(m.addFocus - 1)
		}
	}

	var cmd tea.Cmd
	switch m.addFocus {
	case addFieldTitle:
		m.titleInput, cmd = m.titleInput.Update(msg)
	case addFieldProject:
		m.projectInput, cmd = m.projectInput.Update(msg)
	default:
		m.dueInput, cmd = m.dueInput.Update(msg)
	}
	return m, cmd
}

func (m Model) submitAdd() (tea.Model, tea.Cmd) {
	var due *time.Time
	if !m.dueInput.IsEmpty() {
		d, err := m.dueInput.Value()
		if err != nil {
			m.err = err
			return m, nil
		}
		due = &d
	}

	if _, err := m.store.Create(m.titleInput.Value(), m.projectInput.Value(), due); err != nil {
		if errors.Is(err, tasks.ErrEmptyTitle) {
			m.alert("Please enter a task title")
			return m, nil
		}
		m.err = err
	}
	m.state = stateList
	m.list.Select(0)
	return m, m.refresh()
}

func (m Model) updateImport(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "ctrl+s":
			n, err := importer.Import(m.store, m.importInput.Value())
			if err != nil && n == 0 {
				m.alert(err.Error())
				return m, nil
			}
			if err != nil {
				m.err = err
			}
			m.status = fmt.Sprintf("Imported %d tasks", n)
			m.state = stateList
			m.list.Select(0)
			return m, m.refresh()
		case "esc":
			m.state = stateList
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.importInput, cmd = m.importInput.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "y":
			if item, ok := m.selected(); ok {
				if err := m.store.Delete(item.Task.ID); err != nil {
					m.err = err
				}
			}
			m.state = stateList
			return m, m.refresh()
		case "n", "esc":
			m.state = stateList
			return m, nil
		}
	}
	return m, nil
}

func (m Model) updateConfirmClear(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "y":
			if err := m.store.ClearAll(); err != nil {
				m.err = err
			}
			m.status = "Cleared all tasks"
			m.state = stateList
			return m, m.refresh()
		case "n", "esc":
			m.state = stateList
			return m, nil
		}
	}
	return m, nil
}

func detailLine(label, value string) string {
	return labelStyle.Render(label) + value
}

func (m Model) renderDetail() string {
	item, ok := m.selected()
	if !ok {
		return statusStyle.Render("No tasks yet. Press a to add one.")
	}
	t := item.Task
	now := m.opts.Now()

	state := "idle"
	switch {
	case t.Completed:
		state = "completed"
	case t.Tracking:
		state = "▶ tracking"
	}

	lines := []string{
		titleStyle.Render(t.Title),
		"",
		detailLine("status", state),
		detailLine("time", timesheet.FormatDuration(t.TimeSpentSeconds)),
	}
	if p := t.ProjectName(); p != "" {
		lines = append(lines, detailLine("project", p))
	}
	lines = append(lines, detailLine("created", t.CreatedAt.Local().Format(timesheet.TimeLayout)))
	if t.DueAt != nil {
		due := t.DueAt.Local().Format(timesheet.TimeLayout)
		if t.IsOverdue(now) {
			due = errorStyle.Render("⚠️ " + due)
		}
		lines = append(lines, detailLine("due", due))
	}
	if t.CompletedAt != nil {
		lines = append(lines, detailLine("done", t.CompletedAt.Local().Format(timesheet.TimeLayout)))
	}
	lines = append(lines, "", statusStyle.Render("s: start/stop  x: complete  E: export"))
	return strings.Join(lines, "\n")
}

func (m Model) View() string {
	if len(m.alerts) > 0 {
		return appStyle.Render(
			alertStyle.Render(m.alerts[0]) + "\n\n" +
				statusStyle.Render("enter: ok"),
		)
	}

	var errView string
	if m.err != nil {
		errView = "\n" + errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}

	switch m.state {
	case stateAdd:
		return appStyle.Render(
			titleStyle.Render("New Task") + "\n\n" +
				m.titleInput.View() + "\n" +
				m.projectInput.View() + "\n" +
				"Due: " + m.dueInput.View() + "\n\n" +
				statusStyle.Render("tab: next field • enter: save • esc: cancel") +
				errView,
		)
	case stateImport:
		return appStyle.Render(
			titleStyle.Render("Import Tasks (YAML)") + "\n\n" +
				m.importInput.View() + "\n\n" +
				statusStyle.Render("ctrl+s: import • esc: cancel") +
				errView,
		)
	case stateConfirm:
		item, _ := m.selected()
		return appStyle.Render(
			confirmStyle.Render("Delete Task?") + "\n\n" +
				"  " + item.Task.Title + "\n\n" +
				statusStyle.Render("y: delete • n/esc: cancel") +
				errView,
		)
	case stateConfirmClear:
		return appStyle.Render(
			confirmStyle.Render("Clear all tasks?") + "\n\n" +
				fmt.Sprintf("  %d tasks will be removed permanently.", m.store.Len()) + "\n\n" +
				statusStyle.Render("y: clear • n/esc: cancel") +
				errView,
		)
	default:
		h, v := appStyle.GetFrameSize()
		contentWidth := m.width - h
		contentHeight := m.height - v
		leftWidth := contentWidth * 60 / 100
		rightWidth := contentWidth - leftWidth

		leftPane := m.list.View()
		rightPane := detailStyle.
			Width(rightWidth).
			Height(contentHeight).
			Render(m.renderDetail())
		content := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
		var statusView string
		if m.status != "" {
			statusView = "\n" + statusStyle.Render(m.status)
		}
		if !m.lastSaved.IsZero() {
			statusView += "\n" + statusStyle.Render("Last saved "+m.lastSaved.Local().Format("15:04:05"))
		}
		return appStyle.Render(content + statusView + errView)
	}
}
