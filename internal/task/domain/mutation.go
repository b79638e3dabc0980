package domain

import "time"

// Assignment carries assignedTo together with the isSelfTask flag derived from
// it. The two fields are only ever written as a pair.
type Assignment struct {
	AssignedTo string
	IsSelfTask bool
}

// Mutation is the authorized change to an existing task. Stores apply it
// atomically: every Set* field and the note land together or not at all.
type Mutation struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *Priority
	Assignment  *Assignment

	// DueDateSet distinguishes "leave alone" from "clear" (DueDate nil).
	DueDateSet bool
	DueDate    *time.Time

	AppendNote *ProgressNote
	UpdatedAt  time.Time
}

// IsEmpty reports whether the mutation changes nothing.
func (m *Mutation) IsEmpty() bool {
	return m.Title == nil && m.Description == nil && m.Status == nil &&
		m.Priority == nil && m.Assignment == nil && !m.DueDateSet && m.AppendNote == nil
}

// ApplyTo returns the state t would have after the mutation. t is not modified.
func (m *Mutation) ApplyTo(t *Task) *Task {
	next := t.Clone()
	if m.IsEmpty() {
		return next
	}
	if m.Title != nil {
		next.Title = *m.Title
	}
	if m.Description != nil {
		next.Description = *m.Description
	}
	if m.Status != nil {
		next.Status = *m.Status
	}
	if m.Priority != nil {
		next.Priority = *m.Priority
	}
	if m.Assignment != nil {
		next.AssignedTo = m.Assignment.AssignedTo
		next.IsSelfTask = m.Assignment.IsSelfTask
	}
	if m.DueDateSet {
		next.DueDate = m.DueDate
	}
	if m.AppendNote != nil {
		next.ProgressNotes = append(next.ProgressNotes, *m.AppendNote)
	}
	next.UpdatedAt = m.UpdatedAt
	return next
}
