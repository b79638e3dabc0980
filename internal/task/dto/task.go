package dto

// CreateTaskRequest is the body of POST /api/tasks
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssignedTo  string `json:"assignedTo,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
}

// UpdateTaskRequest is the body of PATCH /api/tasks/:id. Nil fields are
// absent from the request and leave the task untouched.
type UpdateTaskRequest struct {
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	AssignedTo   *string `json:"assignedTo,omitempty"`
	Status       *string `json:"status,omitempty"`
	Priority     *string `json:"priority,omitempty"`
	DueDate      *string `json:"dueDate,omitempty"` // "" clears the due date
	ProgressNote *string `json:"progressNote,omitempty"`
}
