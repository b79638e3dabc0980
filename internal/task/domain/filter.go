package domain

import "sort"

// TaskFilter is the listing predicate handed to a TaskRepository. A zero
// AssignedTo matches every task. Results are always newest first.
type TaskFilter struct {
	AssignedTo string
}

func (f TaskFilter) MatchesAll() bool {
	return f.AssignedTo == ""
}

// Matches evaluates the predicate in memory. AssignedTo is expected to be in
// normalized form, as is every stored assignee.
func (f TaskFilter) Matches(t *Task) bool {
	return f.MatchesAll() || t.AssignedTo == f.AssignedTo
}

// SortNewestFirst orders tasks the way listings are returned.
func SortNewestFirst(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}
