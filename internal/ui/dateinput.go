package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldYear = iota
	fieldMonth
	fieldDay
	fieldHour
	fieldMinute
	numDateFields
)

// dateInput edits a local date and time as separate numeric fields.
type dateInput struct {
	fields [numDateFields]textinput.Model
	focus  int
	now    func() time.Time
}

func newDateInput(now func() time.Time) dateInput {
	placeholders := [numDateFields]string{"YYYY", "MM", "DD", "hh", "mm"}
	charLimits := [numDateFields]int{4, 2, 2, 2, 2}

	var fields [numDateFields]textinput.Model
	for i := 0; i < numDateFields; i++ {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = charLimits[i]
		ti.Width = charLimits[i] + 2
		ti.Validate = func(s string) error {
			for _, r := range s {
				if !unicode.IsDigit(r) {
					return fmt.Errorf("digits only")
				}
			}
			return nil
		}
		fields[i] = ti
	}

	return dateInput{fields: fields, now: now}
}

func (d *dateInput) Focus() tea.Cmd {
	return d.focusField(0)
}

func (d *dateInput) Blur() {
	for i := range d.fields {
		d.fields[i].Blur()
	}
}

// Value returns the entered instant. Year and month default to the current
// ones, the time of day to 09:00. The day is required.
func (d *dateInput) Value() (time.Time, error) {
	now := d.now()

	yyyy := strings.TrimSpace(d.fields[fieldYear].Value())
	mm := strings.TrimSpace(d.fields[fieldMonth].Value())
	dd := strings.TrimSpace(d.fields[fieldDay].Value())
	hh := strings.TrimSpace(d.fields[fieldHour].Value())
	mi := strings.TrimSpace(d.fields[fieldMinute].Value())

	if yyyy == "" {
		yyyy = fmt.Sprintf("%04d", now.Year())
	}
	if mm == "" {
		mm = fmt.Sprintf("%02d", int(now.Month()))
	}
	if dd == "" {
		return time.Time{}, fmt.Errorf("day is required")
	}
	if hh == "" {
		hh = "09"
	}
	if mi == "" {
		mi = "00"
	}

	dateStr := fmt.Sprintf("%s-%s-%s %s:%s", yyyy, padLeft(mm, 2), padLeft(dd, 2), padLeft(hh, 2), padLeft(mi, 2))

	t, err := time.ParseInLocation("2006-01-02 15:04", dateStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %s", dateStr)
	}
	return t, nil
}

func padLeft(s string, length int) string {
	for len(s) < length {
		s = "0" + s
	}
	return s
}

func (d *dateInput) IsEmpty() bool {
	for i := range d.fields {
		if d.fields[i].Value() != "" {
			return false
		}
	}
	return true
}

// AtLast reports whether the last field has focus.
func (d *dateInput) AtLast() bool {
	return d.focus == numDateFields-1
}

func (d *dateInput) focusField(idx int) tea.Cmd {
	d.focus = idx
	var cmds []tea.Cmd
	for i := range d.fields {
		if i == idx {
			cmds = append(cmds, d.fields[i].Focus())
		} else {
			d.fields[i].Blur()
		}
	}
	return tea.Batch(cmds...)
}

func (d dateInput) Update(msg tea.Msg) (dateInput, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "tab", "right":
			if d.focus < numDateFields-1 {
				cmd := d.focusField(d.focus + 1)
				return d, cmd
			}
			return d, nil
		case "shift+tab", "left":
			if d.focus > 0 {
				cmd := d.focusField(d.focus - 1)
				return d, cmd
			}
			return d, nil
		}
	}

	var cmd tea.Cmd
	d.fields[d.focus], cmd = d.fields[d.focus].Update(msg)
	return d, cmd
}

func (d dateInput) View() string {
	f := d.fields
	return f[fieldYear].View() + " - " + f[fieldMonth].View() + " - " + f[fieldDay].View() +
		"   " + f[fieldHour].View() + " : " + f[fieldMinute].View()
}
