package timesheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nissyi-gh/dailytask/internal/model"
)

// TimeLayout is the layout of the timestamp columns.
const TimeLayout = "2006-01-02 15:04:05"

var ErrNothingToExport = errors.New("no completed tasks to export")

var header = []string{"Title", "Project", "Time (HH:MM:SS)", "CreatedAt", "CompletedAt", "DueAt"}

// Rows returns the tasks that belong on a timesheet: completed with
// positive tracked time.
func Rows(tasks []model.Task) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if t.Completed && t.TimeSpentSeconds > 0 {
			out = append(out, t)
		}
	}
	return out
}

// FormatDuration formats seconds as HH:MM:SS. Hours are not capped.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Filename returns the export file name for the given day.
func Filename(now time.Time) string {
	return "timesheet_" + now.Format("2006-01-02") + ".csv"
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Local().Format(TimeLayout)
}

// Write writes the timesheet CSV for tasks to w.
func Write(w io.Writer, tasks []model.Task) error {
	rows := Rows(tasks)
	if len(rows) == 0 {
		return ErrNothingToExport
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range rows {
		created := t.CreatedAt
		record := []string{
			t.Title,
			t.ProjectName(),
			FormatDuration(t.TimeSpentSeconds),
			formatTime(&created),
			formatTime(t.CompletedAt),
			formatTime(t.DueAt),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %q: %w", t.Title, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Render returns the timesheet CSV as a string.
func Render(tasks []model.Task) (string, error) {
	var buf bytes.Buffer
	if err := Write(&buf, tasks); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Export writes the timesheet into dir and returns the file path. No file is
// created when nothing qualifies.
func Export(dir string, tasks []model.Task, now time.Time) (string, error) {
	content, err := Render(tasks)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, Filename(now))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write timesheet: %w", err)
	}
	return path, nil
}
