package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"taskvault/internal/config"
	"taskvault/internal/server"
	"taskvault/internal/storage/sqlite"
	"taskvault/internal/suggest"
)

func setupTestAPI(t *testing.T) string {
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
	return ts.URL + "/api"
}

func run(t *testing.T, api string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--api", api, "--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("taskvault %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestBoardsAndTodosCommands(t *testing.T) {
	api := setupTestAPI(t)

	out := run(t, api, "boards", "create", "--email", "ada@example.com", "Exam", "prep")
	if !strings.HasPrefix(out, "created board ") {
		t.Fatalf("unexpected create output: %q", out)
	}
	id := strings.Fields(out)[2]

	out = run(t, api, "boards", "list", "--email", "ada@example.com")
	if !strings.Contains(out, "Exam prep") || !strings.Contains(out, id) {
		t.Fatalf("board missing from listing:\n%s", out)
	}

	out = run(t, api, "todos", "add", id, "Prepare", "for", "exam")
	if !strings.Contains(out, "added 4 todo(s)") || !strings.Contains(out, "[#]") {
		t.Fatalf("unexpected add output:\n%s", out)
	}

	out = run(t, api, "suggest", "--board", id, "--input", "exam")
	if !strings.HasPrefix(out, "Review syllabus\n") {
		t.Fatalf("expected sub-task preview first:\n%s", out)
	}
}

func TestReportCommandToStdout(t *testing.T) {
	api := setupTestAPI(t)

	out := run(t, api, "report", "--email", "ada@example.com", "--out", "-")
	var report struct {
		User string `json:"user"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("report is not JSON: %v\n%s", err, out)
	}
	if report.User != "ada@example.com" {
		t.Fatalf("unexpected report user %q", report.User)
	}
}

func TestNewRemoteWithoutToken(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.InferenceToken = ""

	remote := newRemote(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if remote == nil {
		t.Fatal("expected a remote suggester without a token")
	}
	got, err := remote.Suggest(context.Background(), "Groceries", "Buy")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if !reflect.DeepEqual(got, suggest.FallbackSuggestions) {
		t.Fatalf("got %v, want %v", got, suggest.FallbackSuggestions)
	}

	engine := &suggest.Engine{Remote: remote}
	merged := engine.Suggest(context.Background(), "Groceries", "zq")
	for _, want := range suggest.FallbackSuggestions {
		found := false
		for _, s := range merged {
			found = found || s == want
		}
		if !found {
			t.Fatalf("board suggestions %v missing %q", merged, want)
		}
	}
}
