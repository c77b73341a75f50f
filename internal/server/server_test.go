package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"taskvault/internal/models"
	"taskvault/internal/sequence"
	"taskvault/internal/storage/sqlite"
	"taskvault/internal/suggest"
)

const owner = "ada@example.com"

type fakeRemote struct {
	answer []string
	err    error
}

func (f fakeRemote) Suggest(context.Context, string, string) ([]string, error) {
	return f.answer, f.err
}

func setupTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	srv := New(store, nil, opts)
	srv.now = func() time.Time { return time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC) }
	return srv
}

func doJSON(t *testing.T, srv *Server, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func createBoard(t *testing.T, srv *Server, title string) models.Board {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/boards", gin.H{"title": title, "userEmail": owner})
	expectStatus(t, rec, http.StatusCreated)
	return decode[models.Board](t, rec)
}

func TestHealth(t *testing.T) {
	srv := setupTestServer(t, Options{})
	rec := doJSON(t, srv, http.MethodGet, "/api/healthz", nil)
	expectStatus(t, rec, http.StatusOK)
}

func TestBoardEndpoints(t *testing.T) {
	srv := setupTestServer(t, Options{})

	b := createBoard(t, srv, "Work")
	if b.ID == "" || b.UserEmail != owner {
		t.Fatalf("unexpected board: %+v", b)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/boards/"+owner, nil)
	expectStatus(t, rec, http.StatusOK)
	if boards := decode[[]models.Board](t, rec); len(boards) != 1 || boards[0].ID != b.ID {
		t.Fatalf("unexpected listing: %+v", boards)
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/boards/"+b.ID, gin.H{"title": "Office"})
	expectStatus(t, rec, http.StatusOK)
	if got := decode[models.Board](t, rec); got.Title != "Office" {
		t.Fatalf("expected renamed board, got %+v", got)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/boards/"+b.ID, nil)
	expectStatus(t, rec, http.StatusOK)

	rec = doJSON(t, srv, http.MethodPut, "/api/boards/"+b.ID, gin.H{"title": "Gone"})
	expectStatus(t, rec, http.StatusNotFound)
}

func TestCreateBoardValidation(t *testing.T) {
	srv := setupTestServer(t, Options{})

	tests := []struct {
		name string
		body any
	}{
		{"missing title", gin.H{"userEmail": owner}},
		{"missing owner", gin.H{"title": "Work"}},
		{"blank title", gin.H{"title": "   ", "userEmail": owner}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/boards", tt.body)
			expectStatus(t, rec, http.StatusBadRequest)
		})
	}
}

func TestSmartAddAndLockedView(t *testing.T) {
	srv := setupTestServer(t, Options{})
	b := createBoard(t, srv, "Study")

	rec := doJSON(t, srv, http.MethodPost, "/api/boards/"+b.ID+"/tasks", gin.H{"task": "Prepare for exam"})
	expectStatus(t, rec, http.StatusCreated)
	created := decode[struct {
		Todos []models.Todo `json:"todos"`
	}](t, rec).Todos

	var texts []string
	for _, td := range created {
		texts = append(texts, td.Task)
	}
	want := []string{"Prepare for exam", "Review syllabus", "Solve sample paper", "Final revision"}
	if !reflect.DeepEqual(texts, want) {
		t.Fatalf("created %v, want %v", texts, want)
	}
	if created[0].IsSubTask || !created[1].IsSubTask {
		t.Fatalf("unexpected sub-task flags: %+v", created)
	}

	view := func() []bool {
		rec := doJSON(t, srv, http.MethodGet, "/api/boards/"+b.ID+"/view", nil)
		expectStatus(t, rec, http.StatusOK)
		v := decode[struct {
			Todos []sequence.TodoView `json:"todos"`
		}](t, rec)
		locked := make([]bool, len(v.Todos))
		for i, td := range v.Todos {
			locked[i] = td.Locked
		}
		return locked
	}
	if got := view(); !reflect.DeepEqual(got, []bool{false, true, true, true}) {
		t.Fatalf("locked = %v", got)
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/todos/"+created[0].ID, gin.H{"status": "completed"})
	expectStatus(t, rec, http.StatusOK)
	if got := view(); !reflect.DeepEqual(got, []bool{false, false, true, true}) {
		t.Fatalf("locked after completing first = %v", got)
	}
}

func TestTodoEndpoints(t *testing.T) {
	srv := setupTestServer(t, Options{})
	b := createBoard(t, srv, "Home")

	rec := doJSON(t, srv, http.MethodPost, "/api/todos", gin.H{"task": "Laundry", "boardId": b.ID})
	expectStatus(t, rec, http.StatusCreated)
	todo := decode[models.Todo](t, rec)
	if todo.Status != models.StatusPending {
		t.Fatalf("expected pending default, got %q", todo.Status)
	}

	first := doJSON(t, srv, http.MethodGet, "/api/todos/"+b.ID, nil)
	second := doJSON(t, srv, http.MethodGet, "/api/todos/"+b.ID, nil)
	expectStatus(t, first, http.StatusOK)
	if first.Body.String() != second.Body.String() {
		t.Fatalf("listing is not idempotent:\n%s\n%s", first.Body, second.Body)
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/todos/"+todo.ID, gin.H{"status": "archived"})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = doJSON(t, srv, http.MethodPost, "/api/todos", gin.H{"task": "Orphan", "boardId": "missing"})
	expectStatus(t, rec, http.StatusNotFound)

	rec = doJSON(t, srv, http.MethodDelete, "/api/todos/"+todo.ID, nil)
	expectStatus(t, rec, http.StatusOK)
	rec = doJSON(t, srv, http.MethodDelete, "/api/todos/"+todo.ID, nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestProjectEndpoints(t *testing.T) {
	srv := setupTestServer(t, Options{})

	rec := doJSON(t, srv, http.MethodPost, "/api/projects", gin.H{"title": "Launch", "tasks": 10, "userEmail": owner})
	expectStatus(t, rec, http.StatusCreated)
	p := decode[models.Project](t, rec)
	if p.Category != models.CategoryDev || p.Status != models.ProjectInProgress {
		t.Fatalf("defaults not applied: %+v", p)
	}

	rec = doJSON(t, srv, http.MethodPatch, "/api/projects/"+p.ID, gin.H{"completed": 10, "progress": 100, "status": "Active"})
	expectStatus(t, rec, http.StatusOK)
	if got := decode[models.Project](t, rec); got.Progress != 100 || got.Status != models.ProjectActive {
		t.Fatalf("update not applied: %+v", got)
	}

	rec = doJSON(t, srv, http.MethodPatch, "/api/projects/"+p.ID, gin.H{"completed": 11})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = doJSON(t, srv, http.MethodPost, "/api/projects", gin.H{"title": "No tasks", "userEmail": owner})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = doJSON(t, srv, http.MethodGet, "/api/projects?email="+owner, nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[[]models.Project](t, rec); len(got) != 1 {
		t.Fatalf("expected one project, got %d", len(got))
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/projects", nil)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = doJSON(t, srv, http.MethodDelete, "/api/projects/"+p.ID, nil)
	expectStatus(t, rec, http.StatusOK)
}

func TestSettingsUpsert(t *testing.T) {
	srv := setupTestServer(t, Options{})

	rec := doJSON(t, srv, http.MethodGet, "/api/settings?email="+owner, nil)
	expectStatus(t, rec, http.StatusOK)
	if strings.TrimSpace(rec.Body.String()) != "{}" {
		t.Fatalf("expected empty object, got %s", rec.Body)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/settings/update", gin.H{"email": owner, "name": "Ada"})
	expectStatus(t, rec, http.StatusOK)
	created := decode[models.Settings](t, rec)
	if created.Theme != models.DefaultTheme || !created.Notifs.Push || created.Notifs.Email {
		t.Fatalf("defaults not applied: %+v", created)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/settings/update", gin.H{"email": owner, "theme": "Midnight"})
	expectStatus(t, rec, http.StatusOK)

	rec = doJSON(t, srv, http.MethodGet, "/api/settings?email="+owner, nil)
	expectStatus(t, rec, http.StatusOK)
	got := decode[models.Settings](t, rec)
	if got.Name != "Ada" || got.Theme != "Midnight" {
		t.Fatalf("unexpected settings: %+v", got)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/settings/update", gin.H{"name": "Nobody"})
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestCreateTicket(t *testing.T) {
	srv := setupTestServer(t, Options{})

	rec := doJSON(t, srv, http.MethodPost, "/api/tickets", gin.H{"name": "Ada", "email": owner, "issue": "Sync fails"})
	expectStatus(t, rec, http.StatusCreated)
	ticket := decode[models.Ticket](t, rec)
	if ticket.ID == "" || ticket.Status != models.TicketOpen {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/tickets", gin.H{"name": "Ada", "email": owner})
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestAISuggest(t *testing.T) {
	tests := []struct {
		name   string
		remote suggest.Suggester
		want   []string
	}{
		{"no remote", nil, suggest.FallbackSuggestions},
		{"remote error", fakeRemote{err: errors.New("boom")}, suggest.FallbackSuggestions},
		{"remote empty", fakeRemote{}, suggest.FallbackSuggestions},
		{"remote answer", fakeRemote{answer: []string{"Lift weights", "Stretch"}}, []string{"Lift weights", "Stretch"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := setupTestServer(t, Options{Remote: tt.remote})
			rec := doJSON(t, srv, http.MethodPost, "/api/ai/suggest", gin.H{"boardTitle": "Gym", "currentTask": "lift"})
			expectStatus(t, rec, http.StatusOK)
			got := decode[struct {
				Suggestions []string `json:"suggestions"`
			}](t, rec).Suggestions
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("suggestions = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoardSuggestions(t *testing.T) {
	srv := setupTestServer(t, Options{Remote: fakeRemote{answer: []string{"Send Invoice"}}})
	b := createBoard(t, srv, "Errands")

	rec := doJSON(t, srv, http.MethodGet, "/api/boards/"+b.ID+"/suggestions?input=send", nil)
	expectStatus(t, rec, http.StatusOK)
	got := decode[struct {
		Suggestions []string `json:"suggestions"`
	}](t, rec).Suggestions
	if !reflect.DeepEqual(got, []string{"Send Email", "Send Invoice"}) {
		t.Fatalf("suggestions = %v", got)
	}
}

func seedProjects(t *testing.T, srv *Server) {
	t.Helper()
	deadline := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	for _, body := range []gin.H{
		{"title": "API", "category": "Dev", "tasks": 10, "completed": 5, "progress": 40, "userEmail": owner, "deadline": deadline},
		{"title": "Brand", "category": "Design", "tasks": 5, "completed": 5, "progress": 100, "userEmail": owner},
	} {
		expectStatus(t, doJSON(t, srv, http.MethodPost, "/api/projects", body), http.StatusCreated)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	srv := setupTestServer(t, Options{})
	seedProjects(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/analytics?email="+owner, nil)
	expectStatus(t, rec, http.StatusOK)
	dash := decode[struct {
		Stats struct {
			CompletionRate int `json:"completionRate"`
			DesignProgress int `json:"designProgress"`
		} `json:"stats"`
		Weekly []struct {
			Tasks int `json:"tasks"`
		} `json:"weekly"`
	}](t, rec)
	if dash.Stats.CompletionRate != 67 || dash.Stats.DesignProgress != 100 || len(dash.Weekly) != 7 {
		t.Fatalf("unexpected dashboard: %+v", dash)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/analytics/report?email="+owner, nil)
	expectStatus(t, rec, http.StatusOK)
	disposition := rec.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "TaskVault_Report_1792143000000.json") {
		t.Fatalf("unexpected disposition %q", disposition)
	}
	if !json.Valid(rec.Body.Bytes()) {
		t.Fatalf("report is not JSON: %s", rec.Body)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/notifications?email="+owner+"&type=upcoming", nil)
	expectStatus(t, rec, http.StatusOK)
	if items := decode[[]map[string]any](t, rec); len(items) != 1 || items[0]["title"] != "API" {
		t.Fatalf("unexpected notifications: %v", items)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/history?email="+owner+"&q=bra", nil)
	expectStatus(t, rec, http.StatusOK)
	if entries := decode[[]map[string]any](t, rec); len(entries) != 1 || entries[0]["project"] != "Brand" {
		t.Fatalf("unexpected history: %v", entries)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/profile?email="+owner, nil)
	expectStatus(t, rec, http.StatusOK)
	if profile := decode[map[string]any](t, rec); profile["rank"] != "#990" {
		t.Fatalf("unexpected profile: %v", profile)
	}
}

func signToken(t *testing.T, secret, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Email: email})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}

func TestIdentityBinding(t *testing.T) {
	const secret = "test-secret"
	srv := setupTestServer(t, Options{AuthSecret: secret})

	rec := doJSON(t, srv, http.MethodGet, "/api/boards/"+owner, nil)
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = doJSON(t, srv, http.MethodGet, "/api/boards/"+owner, nil, "Authorization", "Bearer not-a-token")
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = doJSON(t, srv, http.MethodGet, "/api/boards/"+owner, nil, "Authorization", signToken(t, secret, "eve@example.com"))
	expectStatus(t, rec, http.StatusForbidden)

	auth := signToken(t, secret, owner)
	rec = doJSON(t, srv, http.MethodPost, "/api/boards", gin.H{"title": "Work", "userEmail": owner}, "Authorization", auth)
	expectStatus(t, rec, http.StatusCreated)
	b := decode[models.Board](t, rec)

	rec = doJSON(t, srv, http.MethodDelete, "/api/boards/"+b.ID, nil, "Authorization", signToken(t, secret, "eve@example.com"))
	expectStatus(t, rec, http.StatusForbidden)

	rec = doJSON(t, srv, http.MethodGet, "/api/boards/"+owner, nil, "Authorization", auth)
	expectStatus(t, rec, http.StatusOK)

	rec = doJSON(t, srv, http.MethodGet, "/api/healthz", nil)
	expectStatus(t, rec, http.StatusOK)
}

func TestCORSPreflight(t *testing.T) {
	srv := setupTestServer(t, Options{AllowedOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow origin %q (status %d)", got, rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec = httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected disallowed origin to be rejected, got %d", rec.Code)
	}
}

func TestStaticFallbacks(t *testing.T) {
	srv := setupTestServer(t, Options{})

	rec := doJSON(t, srv, http.MethodGet, "/", nil)
	expectStatus(t, rec, http.StatusOK)
	if rec.Body.String() != bannerText {
		t.Fatalf("unexpected banner %q", rec.Body)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/nope", nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestStaticFrontend(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "assets"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>vault</html>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "favicon.ico"), []byte("icon"), 0o644); err != nil {
		t.Fatalf("write favicon: %v", err)
	}
	srv := setupTestServer(t, Options{StaticDir: dir})

	tests := []struct {
		path string
		want string
	}{
		{"/assets/app.js", "console.log(1)"},
		{"/favicon.ico", "icon"},
		{"/assets/missing.js", "<html>vault</html>"},
		{"/projects/board-42", "<html>vault</html>"},
		{"/", "<html>vault</html>"},
	}
	for _, tt := range tests {
		rec := doJSON(t, srv, http.MethodGet, tt.path, nil)
		expectStatus(t, rec, http.StatusOK)
		if rec.Body.String() != tt.want {
			t.Errorf("GET %s = %q, want %q", tt.path, rec.Body.String(), tt.want)
		}
	}
}
