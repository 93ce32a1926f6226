package ui

import (
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nissyi-gh/dailytask/internal/model"
	"github.com/nissyi-gh/dailytask/internal/notify"
)

func completionNotice() notify.Notification {
	return notify.Notification{
		Title: "Task Updated",
		Body:  "Task marked complete/undo.",
	}
}

func reminderNotice(t model.Task) notify.Notification {
	body := fmt.Sprintf("Task \"%s\" is overdue!", t.Title)
	if p := t.ProjectName(); p != "" {
		body = fmt.Sprintf("Project: %s — due time exceeded", p)
	}
	return notify.Notification{
		Title:  "⏰ Task Due: " + t.Title,
		Body:   body,
		Sticky: true,
	}
}

func reminderAlert(t model.Task) string {
	return fmt.Sprintf("⚠️ Reminder: %s is due now!", t.Title)
}

// notifyCmd delivers n off the update loop. Failures are logged only.
func notifyCmd(n notify.Notifier, note notify.Notification) tea.Cmd {
	return func() tea.Msg {
		if err := n.Notify(note); err != nil {
			log.Printf("notify: %v", err)
		}
		return nil
	}
}

func requestPermissionCmd(n notify.Notifier) tea.Cmd {
	return func() tea.Msg {
		if err := n.RequestPermission(); err != nil {
			log.Printf("notification permission: %v", err)
		}
		return nil
	}
}
