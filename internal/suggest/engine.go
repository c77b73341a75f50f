// Package suggest proposes autocomplete text for new tasks: a local keyword
// filter, sub-task previews, and an optional remote language model whose
// answers are merged in when they arrive.
package suggest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"taskvault/internal/sequence"
)

const (
	// MaxLocal caps the filtered pool before previews are prepended.
	MaxLocal = 6
	// MaxMerged caps the list after remote suggestions are merged in.
	MaxMerged = 10
	// DefaultTimeout bounds one remote suggestion round.
	DefaultTimeout = 4 * time.Second
)

// Suggester fetches remote suggestions for a board and partial input.
type Suggester interface {
	Suggest(ctx context.Context, boardTitle, input string) ([]string, error)
}

// Pool returns the candidate phrases for a board: the first matching
// category list followed by the quick actions.
func Pool(boardTitle string) []string {
	category := CategoryRules.Lookup(boardTitle)
	pool := make([]string, 0, len(category)+len(QuickActions))
	pool = append(pool, category...)
	return append(pool, QuickActions...)
}

// Local computes the suggestions that need no network call.
func Local(boardTitle, input string) []string {
	pool := Pool(boardTitle)
	if input == "" {
		return dedupe(pool, MaxLocal)
	}

	needle := strings.ToLower(input)
	var filtered []string
	for _, p := range pool {
		if strings.Contains(strings.ToLower(p), needle) {
			filtered = append(filtered, p)
		}
	}
	filtered = dedupe(filtered, MaxLocal)

	preview := sequence.SubTasks(input)
	return dedupe(append(preview, filtered...), 0)
}

// Merge appends remote suggestions to the current list, cleans them, drops
// duplicates and caps the result at MaxMerged.
func Merge(current, remote []string) []string {
	out := make([]string, 0, len(current)+len(remote))
	out = append(out, current...)
	for _, r := range remote {
		if c := Clean(r); c != "" {
			out = append(out, c)
		}
	}
	return dedupe(out, MaxMerged)
}

// Clean trims a suggestion and strips quotes, periods, newlines and asterisks.
func Clean(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case '"', '.', '\n', '*':
			return -1
		}
		return r
	}, s))
}

// dedupe keeps the first occurrence of every trimmed string; limit <= 0
// means no cap.
func dedupe(items []string, limit int) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		key := strings.TrimSpace(it)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Engine combines local suggestions with a remote Suggester.
type Engine struct {
	Remote  Suggester
	Timeout time.Duration
	Logger  *slog.Logger
}

// Suggest returns the local list merged with remote answers. Remote errors
// and timeouts are logged and leave the local list unchanged.
func (e *Engine) Suggest(ctx context.Context, boardTitle, input string) []string {
	local := Local(boardTitle, input)
	if e.Remote == nil || len(input) < 1 {
		return local
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	remote, err := e.Remote.Suggest(ctx, boardTitle, input)
	if err != nil {
		e.logger().Warn("remote suggestions unavailable", slog.String("error", err.Error()))
		return local
	}
	return Merge(local, remote)
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}
