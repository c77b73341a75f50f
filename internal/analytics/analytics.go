// Package analytics reduces a user's projects into the dashboard summary,
// the weekly performance series, profile statistics and the export report.
package analytics

import (
	"math"

	"taskvault/internal/models"
)

// Stats is the dashboard summary.
type Stats struct {
	CompletionRate    int `json:"completionRate"`
	ActiveProjects    int `json:"activeProjects"`
	TotalTasks        int `json:"totalTasks"`
	Velocity          int `json:"velocity"`
	DevProgress       int `json:"devProgress"`
	DesignProgress    int `json:"designProgress"`
	MarketingProgress int `json:"marketingProgress"`
}

// Summarize computes the dashboard summary. An empty list yields zeros.
func Summarize(projects []models.Project) Stats {
	if len(projects) == 0 {
		return Stats{}
	}
	return Stats{
		CompletionRate:    CompletionRate(projects),
		ActiveProjects:    len(projects),
		TotalTasks:        totalTasks(projects),
		Velocity:          totalCompleted(projects),
		DevProgress:       CategoryProgress(projects, models.CategoryDev),
		DesignProgress:    CategoryProgress(projects, models.CategoryDesign),
		MarketingProgress: CategoryProgress(projects, models.CategoryMarketing),
	}
}

// CompletionRate is round(100 × Σcompleted / Σtasks), or 0 without tasks.
func CompletionRate(projects []models.Project) int {
	tasks := totalTasks(projects)
	if tasks == 0 {
		return 0
	}
	return int(math.Round(float64(totalCompleted(projects)) / float64(tasks) * 100))
}

// CategoryProgress is the rounded mean progress of the projects in category,
// or 0 when none match.
func CategoryProgress(projects []models.Project, category string) int {
	var sum, n int
	for _, p := range projects {
		if p.Category == category {
			sum += p.Progress
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

// MeanProgress is the rounded mean progress over all projects.
func MeanProgress(projects []models.Project) int {
	if len(projects) == 0 {
		return 0
	}
	var sum int
	for _, p := range projects {
		sum += p.Progress
	}
	return int(math.Round(float64(sum) / float64(len(projects))))
}

func totalTasks(projects []models.Project) int {
	var n int
	for _, p := range projects {
		n += p.Tasks
	}
	return n
}

func totalCompleted(projects []models.Project) int {
	var n int
	for _, p := range projects {
		n += p.Completed
	}
	return n
}

// DayPoint is one entry of the weekly series.
type DayPoint struct {
	Day   string `json:"day"`
	Tasks int    `json:"tasks"`
}

// weekShape holds the fraction of the completed total shown per day and the
// placeholder used when that share floors to zero.
var weekShape = []struct {
	day      string
	fraction float64
	fallback int
}{
	{"Mon", 0.1, 2},
	{"Tue", 0.3, 5},
	{"Wed", 0.2, 4},
	{"Thu", 0.5, 7},
	{"Fri", 1.0, 10},
	{"Sat", 0.8, 8},
	{"Sun", 0.6, 6},
}

// Weekly derives the synthetic seven day series from the completed total.
// It is a display placeholder, not measured history.
func Weekly(velocity int) []DayPoint {
	points := make([]DayPoint, len(weekShape))
	for i, w := range weekShape {
		n := int(math.Floor(float64(velocity) * w.fraction))
		if n == 0 {
			n = w.fallback
		}
		points[i] = DayPoint{Day: w.day, Tasks: n}
	}
	return points
}

// Dashboard bundles the summary with the weekly series.
type Dashboard struct {
	Stats  Stats      `json:"stats"`
	Weekly []DayPoint `json:"weekly"`
}

// Build computes the full dashboard for a project list.
func Build(projects []models.Project) Dashboard {
	stats := Summarize(projects)
	return Dashboard{Stats: stats, Weekly: Weekly(stats.Velocity)}
}
