package portal

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"taskvault/internal/client"
	"taskvault/internal/models"
	"taskvault/internal/server"
	"taskvault/internal/storage"
	"taskvault/internal/storage/sqlite"
)

const owner = "ada@example.com"

func setupTestClient(t *testing.T) *client.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	ts := httptest.NewServer(server.New(store, nil, server.Options{}).Engine())
	t.Cleanup(func() {
		ts.Close()
		_ = store.Close()
	})
	return client.New(ts.URL+"/api", client.WithHTTPClient(ts.Client()))
}

type recordingRemote struct {
	mu     sync.Mutex
	inputs []string
	answer []string
}

func (r *recordingRemote) Suggest(_ context.Context, _, input string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, input)
	return r.answer, nil
}

func (r *recordingRemote) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.inputs...)
}

func TestBoardSessionLifecycle(t *testing.T) {
	api := setupTestClient(t)
	ctx := context.Background()

	b, err := api.CreateBoard(ctx, "Study", owner)
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	s, err := OpenBoard(ctx, api, b.ID, BoardOptions{})
	if err != nil {
		t.Fatalf("open board: %v", err)
	}
	defer s.Close()

	if created, err := s.Add(ctx, "   "); err != nil || created != nil {
		t.Fatalf("blank task should be ignored: %v %v", created, err)
	}
	if _, err := s.Add(ctx, "Prepare for exam"); err != nil {
		t.Fatalf("add: %v", err)
	}
	todos := s.Todos()
	if len(todos) != 4 || !todos[1].Locked {
		t.Fatalf("unexpected todos after add: %+v", todos)
	}

	if _, err := s.Toggle(ctx, todos[1].ID); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	updated, err := s.Toggle(ctx, todos[0].ID)
	if err != nil || updated.Status != models.StatusCompleted {
		t.Fatalf("toggle: %+v %v", updated, err)
	}
	if s.Todos()[1].Locked {
		t.Fatal("second todo should unlock once the first is completed")
	}

	if err := s.Delete(ctx, todos[1].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	left := s.Todos()
	if len(left) != 3 {
		t.Fatalf("expected 3 todos after delete, got %d", len(left))
	}
	if left[1].Locked || !left[2].Locked {
		t.Fatalf("unexpected lock state after delete: %+v", left)
	}

	if err := s.Rename(ctx, "Finals"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if s.Board().Title != "Finals" {
		t.Fatalf("title not reloaded: %+v", s.Board())
	}
}

func TestBoardSessionRefusesLockedDelete(t *testing.T) {
	api := setupTestClient(t)
	ctx := context.Background()

	b, err := api.CreateBoard(ctx, "Study", owner)
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	s, err := OpenBoard(ctx, api, b.ID, BoardOptions{})
	if err != nil {
		t.Fatalf("open board: %v", err)
	}
	defer s.Close()

	if _, err := s.Add(ctx, "Prepare for exam"); err != nil {
		t.Fatalf("add: %v", err)
	}
	todos := s.Todos()
	if !todos[2].Locked {
		t.Fatalf("expected third todo to be locked: %+v", todos)
	}

	if err := s.Delete(ctx, todos[2].ID); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if err := s.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := len(s.Todos()); got != 4 {
		t.Fatalf("locked todo was removed: %d todos left", got)
	}

	if err := s.Delete(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown todo, got %v", err)
	}
}

func TestBoardSessionSuggestionsDebounced(t *testing.T) {
	api := setupTestClient(t)
	ctx := context.Background()

	b, err := api.CreateBoard(ctx, "Work", owner)
	if err != nil {
		t.Fatalf("create board: %v", err)
	}

	remote := &recordingRemote{answer: []string{"Send Report", "Send Email"}}
	updates := make(chan []string, 8)
	s, err := OpenBoard(ctx, api, b.ID, BoardOptions{
		Remote:        remote,
		Debounce:      20 * time.Millisecond,
		OnSuggestions: func(list []string) { updates <- list },
	})
	if err != nil {
		t.Fatalf("open board: %v", err)
	}
	defer s.Close()

	s.Type("s")
	s.Type("se")
	s.Type("send")

	var last []string
	for i := 0; i < 2; i++ {
		select {
		case last = <-updates:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for suggestions")
		}
	}

	want := []string{"Send Email", "Send Report"}
	if !reflect.DeepEqual(last, want) {
		t.Fatalf("suggestions = %v, want %v", last, want)
	}
	if calls := remote.calls(); !reflect.DeepEqual(calls, []string{"send"}) {
		t.Fatalf("expected a single remote call for the final input, got %v", calls)
	}
	if !reflect.DeepEqual(s.Suggestions(), want) {
		t.Fatalf("stored suggestions = %v", s.Suggestions())
	}
}

func TestProjectsSession(t *testing.T) {
	api := setupTestClient(t)
	ctx := context.Background()

	s, err := OpenProjects(ctx, api, owner)
	if err != nil {
		t.Fatalf("open projects: %v", err)
	}
	if _, err := s.Create(ctx, "", "Dev", 3); err == nil {
		t.Fatal("expected blank title to be rejected")
	}

	p, err := s.Create(ctx, "Website", "Design", 3)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(ctx, "Campaign", "Marketing", 2); err != nil {
		t.Fatalf("create: %v", err)
	}

	wantProgress := []int{33, 67, 100}
	for i, want := range wantProgress {
		got, err := s.QuickProgress(ctx, p.ID)
		if err != nil {
			t.Fatalf("quick progress %d: %v", i, err)
		}
		if got.Progress != want {
			t.Fatalf("step %d: progress %d, want %d", i, got.Progress, want)
		}
	}
	final, err := s.QuickProgress(ctx, p.ID)
	if err != nil || final.Completed != 3 || final.Status != models.ProjectActive {
		t.Fatalf("expected saturated active project, got %+v %v", final, err)
	}

	if got := s.Filter("web", FilterAll); len(got) != 1 || got[0].ID != p.ID {
		t.Fatalf("search filter: %+v", got)
	}
	if got := s.Filter("", models.ProjectInProgress); len(got) != 1 || got[0].Title != "Campaign" {
		t.Fatalf("status filter: %+v", got)
	}
	if s.Pending() != 1 {
		t.Fatalf("expected one pending project, got %d", s.Pending())
	}

	if err := s.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(s.Projects()) != 1 {
		t.Fatalf("expected one project after delete, got %d", len(s.Projects()))
	}
}
