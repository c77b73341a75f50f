// Package sequence decides which todos on a board are actionable and expands
// new tasks into their keyword-driven sub-tasks.
//
// A todo is locked while its immediate predecessor in the board's ordered
// list is not completed. The first todo is never locked. Locking only hides
// the complete, edit and delete actions; stored records are never changed.
package sequence

import (
	"context"
	"fmt"

	"taskvault/internal/keywords"
	"taskvault/internal/models"
)

// Locked returns, for every position of todos, whether that todo is locked.
// It keeps no state and must be recomputed whenever the list changes.
func Locked(todos []models.Todo) []bool {
	locked := make([]bool, len(todos))
	for i := 1; i < len(todos); i++ {
		locked[i] = todos[i-1].Status != models.StatusCompleted
	}
	return locked
}

// TodoView is a todo annotated with its lock state.
type TodoView struct {
	models.Todo
	Locked bool `json:"locked"`
}

// Annotate pairs every todo with its lock state.
func Annotate(todos []models.Todo) []TodoView {
	locked := Locked(todos)
	views := make([]TodoView, len(todos))
	for i, t := range todos {
		views[i] = TodoView{Todo: t, Locked: locked[i]}
	}
	return views
}

// SubTaskRules maps task keywords to the sub-tasks created alongside the task.
var SubTaskRules = keywords.Table{
	{Keywords: []string{"exam", "study"}, Result: []string{"Review syllabus", "Solve sample paper", "Final revision"}},
	{Keywords: []string{"project", "work"}, Result: []string{"Research & Outline", "Draft content", "Proofread & Submit"}},
	{Keywords: []string{"trip", "travel"}, Result: []string{"Book tickets/Hotel", "Pack bags", "Set out of office mail"}},
	{Keywords: []string{"gym", "fitness"}, Result: []string{"Workout session", "Drink protein shake", "Track water intake"}},
	{Keywords: []string{"code", "bug"}, Result: []string{"Fix logic error", "Run local tests", "Push to production"}},
}

// SubTasks returns the sub-task texts for a task, or nil when no rule matches.
func SubTasks(task string) []string {
	return SubTaskRules.Lookup(task)
}

// Expand returns the todos to create for task on a board: the parent first,
// then its sub-tasks flagged as such, in rule order.
func Expand(boardID, task string) []models.Todo {
	subs := SubTasks(task)
	todos := make([]models.Todo, 0, 1+len(subs))
	todos = append(todos, models.Todo{Task: task, BoardID: boardID, Status: models.StatusPending})
	for _, s := range subs {
		todos = append(todos, models.Todo{Task: s, BoardID: boardID, Status: models.StatusPending, IsSubTask: true})
	}
	return todos
}

// TodoCreator persists a single todo.
type TodoCreator interface {
	CreateTodo(ctx context.Context, t models.Todo) (models.Todo, error)
}

// Create persists the expansion of task one todo at a time so that storage
// order matches the expansion order. It stops at the first failure and
// returns what was created so far.
func Create(ctx context.Context, store TodoCreator, boardID, task string) ([]models.Todo, error) {
	planned := Expand(boardID, task)
	created := make([]models.Todo, 0, len(planned))
	for _, t := range planned {
		saved, err := store.CreateTodo(ctx, t)
		if err != nil {
			return created, fmt.Errorf("create todo %q: %w", t.Task, err)
		}
		created = append(created, saved)
	}
	return created, nil
}
