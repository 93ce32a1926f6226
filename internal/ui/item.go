package ui

import (
	"fmt"
	"time"

	"github.com/nissyi-gh/dailytask/internal/model"
	"github.com/nissyi-gh/dailytask/internal/timesheet"
)

// TaskItem wraps model.Task to satisfy the list.DefaultItem interface.
type TaskItem struct {
	Task model.Task
	Now  time.Time
}

func (i TaskItem) Title() string {
	check := "[ ]"
	if i.Task.Completed {
		check = "[x]"
	}
	trackMark := ""
	if i.Task.Tracking {
		trackMark = "▶ "
	}
	dueMark := ""
	if i.Task.IsOverdue(i.Now) {
		dueMark = "⚠️ "
	} else if !i.Task.Completed && i.Task.IsDueToday(i.Now) {
		dueMark = "📅 "
	}
	project := ""
	if p := i.Task.ProjectName(); p != "" {
		project = "  " + p + " •"
	}
	return fmt.Sprintf("%s %s%s%s%s ⏱ %s", check, trackMark, dueMark, i.Task.Title, project,
		timesheet.FormatDuration(i.Task.TimeSpentSeconds))
}

func (i TaskItem) Description() string {
	return ""
}

func (i TaskItem) FilterValue() string {
	if p := i.Task.ProjectName(); p != "" {
		return i.Task.Title + " " + p
	}
	return i.Task.Title
}
