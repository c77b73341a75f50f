package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskvault/internal/models"
	"taskvault/internal/storage"
)

// CreateBoard inserts a board document.
func (s *Store) CreateBoard(ctx context.Context, b models.Board) (models.Board, error) {
	b, err := storage.PrepareBoard(b, s.now())
	if err != nil {
		return models.Board{}, err
	}
	doc := boardDoc{ID: primitive.NewObjectID(), Title: b.Title, UserEmail: b.UserEmail, CreatedAt: b.CreatedAt}
	if _, err := s.boards.InsertOne(ctx, doc); err != nil {
		return models.Board{}, fmt.Errorf("insert board: %w", err)
	}
	return doc.model(), nil
}

// ListBoards returns the owner's boards in creation order.
func (s *Store) ListBoards(ctx context.Context, email string) ([]models.Board, error) {
	cur, err := s.boards.Find(ctx, bson.M{"userEmail": email}, creationOrder())
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	var docs []boardDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode boards: %w", err)
	}
	boards := make([]models.Board, 0, len(docs))
	for _, d := range docs {
		boards = append(boards, d.model())
	}
	return boards, nil
}

// GetBoard fetches a board by id.
func (s *Store) GetBoard(ctx context.Context, id string) (models.Board, error) {
	oid, err := objectID("board", id)
	if err != nil {
		return models.Board{}, err
	}
	var doc boardDoc
	if err := s.boards.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return models.Board{}, notFound(err, "board", id)
	}
	return doc.model(), nil
}

// UpdateBoard renames a board.
func (s *Store) UpdateBoard(ctx context.Context, id, title string) (models.Board, error) {
	title, err := storage.ValidateBoardTitle(title)
	if err != nil {
		return models.Board{}, err
	}
	oid, err := objectID("board", id)
	if err != nil {
		return models.Board{}, err
	}
	var doc boardDoc
	err = s.boards.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"title": title}}, afterUpdate()).Decode(&doc)
	if err != nil {
		return models.Board{}, notFound(err, "board", id)
	}
	return doc.model(), nil
}

// DeleteBoard removes the board's todos and then the board. Without a
// replica set there is no multi-document transaction, so a failure between
// the two steps leaves an empty board rather than orphaned todos.
func (s *Store) DeleteBoard(ctx context.Context, id string) error {
	oid, err := objectID("board", id)
	if err != nil {
		return err
	}
	if _, err := s.GetBoard(ctx, id); err != nil {
		return err
	}
	removed, err := s.todos.DeleteMany(ctx, bson.M{"boardId": oid})
	if err != nil {
		return fmt.Errorf("delete board todos: %w", err)
	}
	res, err := s.boards.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("board %s: %w", id, storage.ErrNotFound)
	}
	s.logger.Debug("board deleted", slog.String("id", id), slog.Int64("todos", removed.DeletedCount))
	return nil
}

// CreateTodo appends a todo to an existing board.
func (s *Store) CreateTodo(ctx context.Context, t models.Todo) (models.Todo, error) {
	t, err := storage.PrepareTodo(t, s.now())
	if err != nil {
		return models.Todo{}, err
	}
	boardID, err := objectID("board", t.BoardID)
	if err != nil {
		return models.Todo{}, err
	}
	if _, err := s.GetBoard(ctx, t.BoardID); err != nil {
		return models.Todo{}, err
	}
	doc := todoDoc{
		ID:        primitive.NewObjectID(),
		Task:      t.Task,
		Status:    string(t.Status),
		BoardID:   boardID,
		IsSubTask: t.IsSubTask,
		CreatedAt: t.CreatedAt,
	}
	if _, err := s.todos.InsertOne(ctx, doc); err != nil {
		return models.Todo{}, fmt.Errorf("insert todo: %w", err)
	}
	return doc.model(), nil
}

// ListTodos returns the board's todos in creation order.
func (s *Store) ListTodos(ctx context.Context, boardID string) ([]models.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(boardID)
	if err != nil {
		return []models.Todo{}, nil
	}
	cur, err := s.todos.Find(ctx, bson.M{"boardId": oid}, creationOrder())
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	var docs []todoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode todos: %w", err)
	}
	todos := make([]models.Todo, 0, len(docs))
	for _, d := range docs {
		todos = append(todos, d.model())
	}
	return todos, nil
}

// GetTodo fetches a todo by id.
func (s *Store) GetTodo(ctx context.Context, id string) (models.Todo, error) {
	oid, err := objectID("todo", id)
	if err != nil {
		return models.Todo{}, err
	}
	var doc todoDoc
	if err := s.todos.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return models.Todo{}, notFound(err, "todo", id)
	}
	return doc.model(), nil
}

// UpdateTodo merges text and status changes into a stored todo.
func (s *Store) UpdateTodo(ctx context.Context, id string, changes models.TodoChanges) (models.Todo, error) {
	current, err := s.GetTodo(ctx, id)
	if err != nil {
		return models.Todo{}, err
	}
	next, err := storage.ApplyTodoChanges(current, changes)
	if err != nil {
		return models.Todo{}, err
	}
	oid, _ := objectID("todo", id)

	var doc todoDoc
	update := bson.M{"$set": bson.M{"task": next.Task, "status": string(next.Status)}}
	if err := s.todos.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, afterUpdate()).Decode(&doc); err != nil {
		return models.Todo{}, notFound(err, "todo", id)
	}
	return doc.model(), nil
}

// DeleteTodo removes a todo by id.
func (s *Store) DeleteTodo(ctx context.Context, id string) error {
	return s.deleteByID(ctx, s.todos, "todo", id)
}

// CreateProject inserts a project document.
func (s *Store) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	p, err := storage.PrepareProject(p, s.now())
	if err != nil {
		return models.Project{}, err
	}
	doc := newProjectDoc(p)
	doc.ID = primitive.NewObjectID()
	if _, err := s.projects.InsertOne(ctx, doc); err != nil {
		return models.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return doc.model(), nil
}

// ListProjects returns the owner's projects in creation order.
func (s *Store) ListProjects(ctx context.Context, email string) ([]models.Project, error) {
	cur, err := s.projects.Find(ctx, bson.M{"userEmail": email}, creationOrder())
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	projects := make([]models.Project, 0, len(docs))
	for _, d := range docs {
		projects = append(projects, d.model())
	}
	return projects, nil
}

// GetProject fetches a project by id.
func (s *Store) GetProject(ctx context.Context, id string) (models.Project, error) {
	oid, err := objectID("project", id)
	if err != nil {
		return models.Project{}, err
	}
	var doc projectDoc
	if err := s.projects.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return models.Project{}, notFound(err, "project", id)
	}
	return doc.model(), nil
}

// UpdateProject merges the given fields into a stored project.
func (s *Store) UpdateProject(ctx context.Context, id string, changes models.ProjectChanges) (models.Project, error) {
	current, err := s.GetProject(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	next, err := storage.ApplyProjectChanges(current, changes)
	if err != nil {
		return models.Project{}, err
	}
	oid, _ := objectID("project", id)

	set := bson.M{
		"title":     next.Title,
		"category":  next.Category,
		"tasks":     next.Tasks,
		"completed": next.Completed,
		"progress":  next.Progress,
		"status":    next.Status,
	}
	if next.Deadline != nil {
		set["deadline"] = *next.Deadline
	}
	var doc projectDoc
	if err := s.projects.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, afterUpdate()).Decode(&doc); err != nil {
		return models.Project{}, notFound(err, "project", id)
	}
	return doc.model(), nil
}

// DeleteProject removes a project by id.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.deleteByID(ctx, s.projects, "project", id)
}

// GetSettings loads the settings document for an email.
func (s *Store) GetSettings(ctx context.Context, email string) (models.Settings, error) {
	var doc settingsDoc
	if err := s.settings.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		return models.Settings{}, notFound(err, "settings", email)
	}
	return doc.model(), nil
}

// UpsertSettings updates the provided fields in place, creating the document
// with defaults for the remaining fields when the email has none yet.
func (s *Store) UpsertSettings(ctx context.Context, u models.SettingsUpdate) (models.Settings, error) {
	u, err := storage.PrepareSettings(u)
	if err != nil {
		return models.Settings{}, err
	}
	defaults := models.DefaultSettings(u.Email)

	set := bson.M{}
	onInsert := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
	} else {
		onInsert["name"] = defaults.Name
	}
	if u.Theme != nil {
		set["theme"] = *u.Theme
	} else {
		onInsert["theme"] = defaults.Theme
	}
	notifs := defaults.Notifs
	if u.Notifs != nil {
		notifs = *u.Notifs
		set["notifs"] = notifsDoc(notifs)
	} else {
		onInsert["notifs"] = notifsDoc(notifs)
	}

	update := bson.M{}
	if len(onInsert) > 0 {
		update["$setOnInsert"] = onInsert
	}
	if len(set) > 0 {
		update["$set"] = set
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc settingsDoc
	if err := s.settings.FindOneAndUpdate(ctx, bson.M{"email": u.Email}, update, opts).Decode(&doc); err != nil {
		return models.Settings{}, fmt.Errorf("upsert settings: %w", err)
	}
	return doc.model(), nil
}

// CreateTicket files a support ticket.
func (s *Store) CreateTicket(ctx context.Context, t models.Ticket) (models.Ticket, error) {
	t, err := storage.PrepareTicket(t, s.now())
	if err != nil {
		return models.Ticket{}, err
	}
	doc := ticketDoc{ID: primitive.NewObjectID(), Name: t.Name, Email: t.Email, Issue: t.Issue, Status: t.Status, CreatedAt: t.CreatedAt}
	if _, err := s.tickets.InsertOne(ctx, doc); err != nil {
		return models.Ticket{}, fmt.Errorf("insert ticket: %w", err)
	}
	t.ID = doc.ID.Hex()
	s.logger.Info("ticket filed", slog.String("id", t.ID), slog.String("email", t.Email))
	return t, nil
}

func (s *Store) deleteByID(ctx context.Context, coll *mongo.Collection, kind, id string) error {
	oid, err := objectID(kind, id)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
