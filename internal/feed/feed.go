// Package feed derives the notification and history views from a user's
// projects. Nothing here is stored; every call recomputes from the list.
package feed

import (
	"fmt"
	"strings"
	"time"

	"taskvault/internal/models"
)

// Notification types.
const (
	TypeOverdue  = "overdue"
	TypeUpcoming = "upcoming"
	TypeActivity = "activity"
)

// UpcomingWindow is how far ahead a deadline counts as upcoming.
const UpcomingWindow = 48 * time.Hour

// lowProgress marks projects still reported as freshly started.
const lowProgress = 15

// Notification is one alert in the feed.
type Notification struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Msg      string `json:"msg"`
	Time     string `json:"time"`
	Priority string `json:"priority"`
}

// Notifications builds the alert feed for projects as of now.
func Notifications(projects []models.Project, now time.Time) []Notification {
	out := []Notification{}
	for _, p := range projects {
		if d := p.Deadline; d != nil {
			if d.Before(now) && p.Progress < 100 {
				out = append(out, Notification{
					ID:       "ov-" + p.ID,
					Type:     TypeOverdue,
					Title:    p.Title,
					Msg:      fmt.Sprintf("Deadline crossed at %d%%. Immediate action required.", p.Progress),
					Time:     "ALERT",
					Priority: "high",
				})
			}
			if d.After(now) && d.Sub(now) < UpcomingWindow {
				out = append(out, Notification{
					ID:       "up-" + p.ID,
					Type:     TypeUpcoming,
					Title:    p.Title,
					Msg:      fmt.Sprintf("Critical deadline approaching. System remains at %d%%.", p.Progress),
					Time:     "SOON",
					Priority: "medium",
				})
			}
		}
		if p.Progress < lowProgress {
			out = append(out, Notification{
				ID:       "act-" + p.ID,
				Type:     TypeActivity,
				Title:    "Project Initialized",
				Msg:      fmt.Sprintf("%q is now active in your secure vault.", p.Title),
				Time:     "RECENT",
				Priority: "low",
			})
		}
	}
	return out
}

// FilterType keeps notifications of one type; "" and "all" keep everything.
func FilterType(items []Notification, kind string) []Notification {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" || kind == "all" {
		return items
	}
	out := []Notification{}
	for _, n := range items {
		if n.Type == kind {
			out = append(out, n)
		}
	}
	return out
}

// Entry is one line of the activity history.
type Entry struct {
	ID      string     `json:"id"`
	Action  string     `json:"action"`
	Project string     `json:"project"`
	Type    string     `json:"type"`
	Status  string     `json:"status"`
	Time    string     `json:"time"`
	Date    *time.Time `json:"date,omitempty"`
}

// History lists one entry per project.
func History(projects []models.Project) []Entry {
	out := make([]Entry, 0, len(projects))
	for _, p := range projects {
		kind := "project"
		if p.Category == models.CategoryDev {
			kind = "task"
		}
		out = append(out, Entry{
			ID:      p.ID,
			Action:  "Project Accessed",
			Project: p.Title,
			Type:    kind,
			Status:  p.Status,
			Time:    "LIVE",
			Date:    p.Deadline,
		})
	}
	return out
}

// Search keeps entries whose action or project name contains q, ignoring case.
func Search(entries []Entry, q string) []Entry {
	needle := strings.ToLower(q)
	out := []Entry{}
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Action), needle) || strings.Contains(strings.ToLower(e.Project), needle) {
			out = append(out, e)
		}
	}
	return out
}
