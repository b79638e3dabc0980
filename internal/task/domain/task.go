package domain

import "time"

// Priority represents task priority level
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// ProgressNote is one entry of a task's append-only journal
type ProgressNote struct {
	ID        uint      `json:"-" gorm:"primaryKey;autoIncrement" bson:"-"`
	TaskID    string    `json:"-" gorm:"index;not null" bson:"-"`
	Text      string    `json:"text" gorm:"not null" bson:"text"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Task is a unit of work assigned to a single mailbox
type Task struct {
	ID            string         `json:"id" gorm:"primaryKey" bson:"_id"`
	Title         string         `json:"title" gorm:"not null" bson:"title"`
	Description   string         `json:"description" gorm:"not null" bson:"description"`
	AssignedTo    string         `json:"assignedTo" gorm:"index;not null" bson:"assignedTo"`
	Status        TaskStatus     `json:"status" gorm:"default:todo" bson:"status"`
	Priority      Priority       `json:"priority" gorm:"default:medium" bson:"priority"`
	DueDate       *time.Time     `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	CreatedBy     string         `json:"createdBy" gorm:"index" bson:"createdBy"`
	IsSelfTask    bool           `json:"isSelfTask" gorm:"default:false" bson:"isSelfTask"`
	ProgressNotes []ProgressNote `json:"progressNotes" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" bson:"progressNotes"`
	CreatedAt     time.Time      `json:"createdAt" gorm:"index" bson:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// Clone returns a deep copy so callers can derive a next state without
// touching the original.
func (t *Task) Clone() *Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	c.ProgressNotes = make([]ProgressNote, len(t.ProgressNotes))
	copy(c.ProgressNotes, t.ProgressNotes)
	return &c
}
