package models

import "time"

// Board is a named collection of todo items owned by one user.
type Board struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UserEmail string    `json:"userEmail"`
	CreatedAt time.Time `json:"createdAt"`
}

// TodoStatus is the completion state of a todo item.
type TodoStatus string

const (
	StatusPending   TodoStatus = "pending"
	StatusCompleted TodoStatus = "completed"
)

// ValidTodoStatuses enumerates the statuses a todo may hold.
var ValidTodoStatuses = map[TodoStatus]struct{}{
	StatusPending:   {},
	StatusCompleted: {},
}

// Toggle flips pending to completed and back.
func (s TodoStatus) Toggle() TodoStatus {
	if s == StatusPending {
		return StatusCompleted
	}
	return StatusPending
}

// Todo is a single actionable item inside a board.
type Todo struct {
	ID        string     `json:"id"`
	Task      string     `json:"task"`
	Status    TodoStatus `json:"status"`
	BoardID   string     `json:"boardId"`
	IsSubTask bool       `json:"isSubTask"`
	CreatedAt time.Time  `json:"createdAt"`
}

// TodoChanges carries a partial todo update; nil fields are left untouched.
type TodoChanges struct {
	Task   *string     `json:"task"`
	Status *TodoStatus `json:"status"`
}

// Project statuses written by the client; any other string is accepted as well.
const (
	ProjectInProgress = "In Progress"
	ProjectActive     = "Active"
)

// Project categories with dedicated analytics.
const (
	CategoryDev       = "Dev"
	CategoryDesign    = "Design"
	CategoryMarketing = "Marketing"
)

// Project is a tracked unit of work, independent of boards.
type Project struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	Tasks     int        `json:"tasks"`
	Completed int        `json:"completed"`
	Progress  int        `json:"progress"`
	Status    string     `json:"status"`
	UserEmail string     `json:"userEmail"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ProjectChanges carries a partial project update; nil fields are left untouched.
type ProjectChanges struct {
	Title     *string    `json:"title"`
	Category  *string    `json:"category"`
	Tasks     *int       `json:"tasks"`
	Completed *int       `json:"completed"`
	Progress  *int       `json:"progress"`
	Status    *string    `json:"status"`
	Deadline  *time.Time `json:"deadline"`
}

// Apply merges the changes into p.
func (c ProjectChanges) Apply(p *Project) {
	if c.Title != nil {
		p.Title = *c.Title
	}
	if c.Category != nil {
		p.Category = *c.Category
	}
	if c.Tasks != nil {
		p.Tasks = *c.Tasks
	}
	if c.Completed != nil {
		p.Completed = *c.Completed
	}
	if c.Progress != nil {
		p.Progress = *c.Progress
	}
	if c.Status != nil {
		p.Status = *c.Status
	}
	if c.Deadline != nil {
		d := *c.Deadline
		p.Deadline = &d
	}
}

// Notifications holds per-user notification toggles.
type Notifications struct {
	Push   bool `json:"push"`
	Email  bool `json:"email"`
	Alerts bool `json:"alerts"`
}

// Settings is the per-user preference record keyed by email.
type Settings struct {
	Email  string        `json:"email"`
	Name   string        `json:"name"`
	Theme  string        `json:"theme"`
	Notifs Notifications `json:"notifs"`
}

// DefaultTheme is assigned to settings created without a theme.
const DefaultTheme = "Deep Blue"

// DefaultSettings returns the record a new user starts from.
func DefaultSettings(email string) Settings {
	return Settings{
		Email:  email,
		Theme:  DefaultTheme,
		Notifs: Notifications{Push: true, Email: false, Alerts: true},
	}
}

// SettingsUpdate is the upsert payload; nil fields keep their stored value.
type SettingsUpdate struct {
	Email  string         `json:"email"`
	Name   *string        `json:"name"`
	Theme  *string        `json:"theme"`
	Notifs *Notifications `json:"notifs"`
}

// Apply merges the update into s.
func (u SettingsUpdate) Apply(s *Settings) {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Theme != nil {
		s.Theme = *u.Theme
	}
	if u.Notifs != nil {
		s.Notifs = *u.Notifs
	}
}

// TicketOpen is the status of a freshly filed ticket.
const TicketOpen = "Open"

// Ticket is a support request.
type Ticket struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Issue     string    `json:"issue"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
