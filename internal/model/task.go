package model

import "time"

// Task represents a single tracked task. The JSON field names are the
// persisted format of the task list.
type Task struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Project          *string    `json:"project"`
	CreatedAt        time.Time  `json:"createdAt"`
	DueAt            *time.Time `json:"dueAt"`
	Reminded         bool       `json:"reminded"`
	Completed        bool       `json:"completed"`
	CompletedAt      *time.Time `json:"completedAt"`
	Tracking         bool       `json:"tracking"`
	StartTimestamp   *int64     `json:"startTimestamp"`
	TimeSpentSeconds int64      `json:"timeSpentSeconds"`
}

// ProjectName returns the project or "" when unset.
func (t Task) ProjectName() string {
	if t.Project == nil {
		return ""
	}
	return *t.Project
}

// IsOverdue returns true if the task is past its due time and not completed.
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueAt == nil || t.Completed {
		return false
	}
	return !now.Before(*t.DueAt)
}

// IsDue returns true if a reminder should fire for the task at now.
func (t Task) IsDue(now time.Time) bool {
	return !t.Reminded && t.IsOverdue(now)
}

// IsDueToday returns true if the task's due time falls on now's calendar day.
func (t Task) IsDueToday(now time.Time) bool {
	if t.DueAt == nil {
		return false
	}
	y1, m1, d1 := t.DueAt.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
