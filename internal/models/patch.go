package models

import (
	"errors"
	"fmt"
)

// ErrNullRequiredField is returned when a patch sets a non-nullable field to null.
var ErrNullRequiredField = errors.New("field cannot be null")

// TaskPatch is the partial task body accepted on create and update.
type TaskPatch struct {
	Title     Optional[string] `json:"title"`
	Completed Optional[bool]   `json:"completed"`
	Date      Optional[string] `json:"date"`
	Time      Optional[string] `json:"time"`
	Color     Optional[string] `json:"color"`
	Recurring Optional[string] `json:"recurring"`
	ListID    Optional[string] `json:"listId"`
	Reminder  Optional[string] `json:"reminder"`
	Priority  Optional[string] `json:"priority"`
}

// NewTask builds a task from a creation body. Missing or null required fields
// take their defaults; ListID is left for the caller to decide.
func NewTask(id string, p TaskPatch) Task {
	return Task{
		ID:        id,
		Title:     p.Title.Or(""),
		Completed: p.Completed.Or(false),
		Date:      p.Date.Or(""),
		Time:      p.Time.Ptr(),
		Color:     p.Color.Or(DefaultTaskColor),
		Recurring: p.Recurring.Ptr(),
		Reminder:  p.Reminder.Ptr(),
		Priority:  p.Priority.Ptr(),
	}
}

// Validate rejects explicit nulls on columns that are NOT NULL.
func (p TaskPatch) Validate() error {
	switch {
	case p.Title.Null:
		return fmt.Errorf("title: %w", ErrNullRequiredField)
	case p.Completed.Null:
		return fmt.Errorf("completed: %w", ErrNullRequiredField)
	case p.Date.Null:
		return fmt.Errorf("date: %w", ErrNullRequiredField)
	case p.Color.Null:
		return fmt.Errorf("color: %w", ErrNullRequiredField)
	}
	return nil
}

// Apply copies the present keys of p onto t. ListID is applied as well; the
// caller checks that a non-null target list exists before persisting.
func (p TaskPatch) Apply(t *Task) {
	if p.Title.HasValue() {
		t.Title = p.Title.Value
	}
	if p.Completed.HasValue() {
		t.Completed = p.Completed.Value
	}
	if p.Date.HasValue() {
		t.Date = p.Date.Value
	}
	if p.Color.HasValue() {
		t.Color = p.Color.Value
	}
	if p.Time.Present {
		t.Time = p.Time.Ptr()
	}
	if p.Recurring.Present {
		t.Recurring = p.Recurring.Ptr()
	}
	if p.Reminder.Present {
		t.Reminder = p.Reminder.Ptr()
	}
	if p.Priority.Present {
		t.Priority = p.Priority.Ptr()
	}
	if p.ListID.Present {
		t.ListID = p.ListID.Ptr()
	}
}
