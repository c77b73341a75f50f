package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskvault/internal/models"
)

type boardDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	UserEmail string             `bson:"userEmail"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d boardDoc) model() models.Board {
	return models.Board{ID: d.ID.Hex(), Title: d.Title, UserEmail: d.UserEmail, CreatedAt: d.CreatedAt}
}

type todoDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Task      string             `bson:"task"`
	Status    string             `bson:"status"`
	BoardID   primitive.ObjectID `bson:"boardId"`
	IsSubTask bool               `bson:"isSubTask"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d todoDoc) model() models.Todo {
	return models.Todo{
		ID:        d.ID.Hex(),
		Task:      d.Task,
		Status:    models.TodoStatus(d.Status),
		BoardID:   d.BoardID.Hex(),
		IsSubTask: d.IsSubTask,
		CreatedAt: d.CreatedAt,
	}
}

type projectDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Category  string             `bson:"category"`
	Tasks     int                `bson:"tasks"`
	Completed int                `bson:"completed"`
	Progress  int                `bson:"progress"`
	Status    string             `bson:"status"`
	UserEmail string             `bson:"userEmail"`
	Deadline  *time.Time         `bson:"deadline,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func newProjectDoc(p models.Project) projectDoc {
	return projectDoc{
		Title:     p.Title,
		Category:  p.Category,
		Tasks:     p.Tasks,
		Completed: p.Completed,
		Progress:  p.Progress,
		Status:    p.Status,
		UserEmail: p.UserEmail,
		Deadline:  p.Deadline,
		CreatedAt: p.CreatedAt,
	}
}

func (d projectDoc) model() models.Project {
	return models.Project{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Category:  d.Category,
		Tasks:     d.Tasks,
		Completed: d.Completed,
		Progress:  d.Progress,
		Status:    d.Status,
		UserEmail: d.UserEmail,
		Deadline:  d.Deadline,
		CreatedAt: d.CreatedAt,
	}
}

type notifsDoc struct {
	Push   bool `bson:"push"`
	Email  bool `bson:"email"`
	Alerts bool `bson:"alerts"`
}

type settingsDoc struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Email  string             `bson:"email"`
	Name   string             `bson:"name"`
	Theme  string             `bson:"theme"`
	Notifs notifsDoc          `bson:"notifs"`
}

func (d settingsDoc) model() models.Settings {
	return models.Settings{
		Email:  d.Email,
		Name:   d.Name,
		Theme:  d.Theme,
		Notifs: models.Notifications{Push: d.Notifs.Push, Email: d.Notifs.Email, Alerts: d.Notifs.Alerts},
	}
}

type ticketDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Issue     string             `bson:"issue"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"createdAt"`
}
