// Package policy holds the task authorization rules. Every function here is
// pure: it reads the identity, the current task state and the request, and
// returns either the next state or an error. Persistence is the caller's job.
package policy

import (
	"strings"
	"time"

	authdomain "taskboard-backend/internal/auth/domain"
	"taskboard-backend/internal/task/domain"
	"taskboard-backend/internal/task/dto"
)

// ListFilter returns the predicate selecting the tasks identity may list.
func ListFilter(identity authdomain.Identity) domain.TaskFilter {
	if identity.IsAdmin() {
		return domain.TaskFilter{}
	}
	return domain.TaskFilter{AssignedTo: identity.NormalizedEmail()}
}

// CanView gates reading a single task with the same rule as ListFilter.
func CanView(identity authdomain.Identity, task *domain.Task) error {
	if !ListFilter(identity).Matches(task) {
		return domain.ErrForbidden
	}
	return nil
}

// CreateDecision is the outcome of the creation policy.
type CreateDecision struct {
	Task *domain.Task
	// AssigneeOverridden is set when a member asked for a different assignee
	// and was assigned the task themselves instead.
	AssigneeOverridden bool
}

// Create builds the task to persist for req. The ID and timestamps are left
// for the store to assign.
func Create(identity authdomain.Identity, req dto.CreateTaskRequest) (*CreateDecision, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return nil, domain.NewValidationError("title and description are required")
	}

	self := identity.NormalizedEmail()
	assignee := authdomain.NormalizeEmail(req.AssignedTo)
	overridden := false
	if !identity.IsAdmin() {
		overridden = assignee != "" && assignee != self
		assignee = self
	} else if assignee == "" {
		assignee = self
	}
	if assignee == "" {
		return nil, domain.NewValidationError("assignedTo is required")
	}

	status := domain.TaskStatusTodo
	if req.Status != "" {
		status = domain.TaskStatus(req.Status)
		if !status.Valid() {
			return nil, domain.NewValidationError("invalid status: " + req.Status)
		}
	}

	priority := domain.PriorityMedium
	if req.Priority != "" {
		priority = domain.Priority(req.Priority)
		if !priority.Valid() {
			return nil, domain.NewValidationError("invalid priority: " + req.Priority)
		}
	}

	var dueDate *time.Time
	if strings.TrimSpace(req.DueDate) != "" {
		d, err := ParseDueDate(req.DueDate)
		if err != nil {
			return nil, err
		}
		dueDate = d
	}

	return &CreateDecision{
		Task: &domain.Task{
			Title:         title,
			Description:   description,
			AssignedTo:    assignee,
			Status:        status,
			Priority:      priority,
			DueDate:       dueDate,
			CreatedBy:     identity.ID,
			IsSelfTask:    isSelfTask(assignee, self),
			ProgressNotes: []domain.ProgressNote{},
		},
		AssigneeOverridden: overridden,
	}, nil
}

// UpdateDecision is the outcome of the update policy.
type UpdateDecision struct {
	Mutation *domain.Mutation
	// Ignored lists the fields present in the request that the role may not
	// change.
	Ignored []Field
}

// Update decides what req may change on current. Nothing is applied when any
// permitted field carries an invalid value.
func Update(identity authdomain.Identity, current *domain.Task, req dto.UpdateTaskRequest, now time.Time) (*UpdateDecision, error) {
	if !identity.IsAdmin() && !authdomain.SameEmail(current.AssignedTo, identity.Email) {
		return nil, domain.ErrForbidden
	}

	d := &UpdateDecision{Mutation: &domain.Mutation{UpdatedAt: now}}
	m := d.Mutation
	allowed := func(f Field, present bool) bool {
		if !present {
			return false
		}
		if !CanMutate(identity.Role, f) {
			d.Ignored = append(d.Ignored, f)
			return false
		}
		return true
	}

	if allowed(FieldTitle, req.Title != nil) {
		v := strings.TrimSpace(*req.Title)
		if v == "" {
			return nil, domain.NewValidationError("title must not be empty")
		}
		m.Title = &v
	}
	if allowed(FieldDescription, req.Description != nil) {
		v := strings.TrimSpace(*req.Description)
		if v == "" {
			return nil, domain.NewValidationError("description must not be empty")
		}
		m.Description = &v
	}
	if allowed(FieldAssignedTo, req.AssignedTo != nil) {
		assignee := authdomain.NormalizeEmail(*req.AssignedTo)
		if assignee == "" {
			return nil, domain.NewValidationError("assignedTo must not be empty")
		}
		m.Assignment = &domain.Assignment{
			AssignedTo: assignee,
			IsSelfTask: isSelfTask(assignee, identity.NormalizedEmail()),
		}
	}
	if allowed(FieldStatus, req.Status != nil) {
		s := domain.TaskStatus(*req.Status)
		if !s.Valid() {
			return nil, domain.NewValidationError("invalid status: " + *req.Status)
		}
		m.Status = &s
	}
	if allowed(FieldPriority, req.Priority != nil) {
		p := domain.Priority(*req.Priority)
		if !p.Valid() {
			return nil, domain.NewValidationError("invalid priority: " + *req.Priority)
		}
		m.Priority = &p
	}
	if allowed(FieldDueDate, req.DueDate != nil) {
		m.DueDateSet = true
		if strings.TrimSpace(*req.DueDate) != "" {
			due, err := ParseDueDate(*req.DueDate)
			if err != nil {
				return nil, err
			}
			m.DueDate = due
		}
	}
	if allowed(FieldProgressNote, req.ProgressNote != nil) {
		if text := strings.TrimSpace(*req.ProgressNote); text != "" {
			m.AppendNote = &domain.ProgressNote{Text: text, CreatedAt: now}
		}
	}

	return d, nil
}

// Delete gates task removal. Only admins may delete.
func Delete(identity authdomain.Identity) error {
	if !identity.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

// ParseDueDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC midnight).
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, domain.NewValidationError("invalid dueDate: " + s)
}

func isSelfTask(assignee, actor string) bool {
	return assignee != "" && actor != "" && assignee == actor
}
