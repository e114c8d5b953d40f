package client

import "github.com/example/task-tracker/domain/task"

// SelectTasks derives the tasks actor sees under filter.
// It is recomputed on every call and never touches s.
func SelectTasks(s State, actor string, filter task.Filter) []task.Task {
	return task.Apply(s.Tasks, actor, filter)
}

// SelectFiltered derives the tasks actor sees under the selected filter.
func SelectFiltered(s State, actor string) []task.Task {
	return SelectTasks(s, actor, s.Filter)
}
