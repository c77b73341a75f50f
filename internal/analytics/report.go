package analytics

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskvault/internal/models"
)

// Report is the downloadable summary document.
type Report struct {
	VaultID           string            `json:"vault_id"`
	Timestamp         string            `json:"timestamp"`
	User              string            `json:"user"`
	Summary           ReportSummary     `json:"summary"`
	DepartmentMetrics DepartmentMetrics `json:"department_metrics"`
	ProjectLog        []ProjectEntry    `json:"project_log"`
}

// ReportSummary holds the report's headline counts.
type ReportSummary struct {
	ActiveProjects   int    `json:"active_projects"`
	TotalTasks       int    `json:"total_tasks"`
	CompletedTasks   int    `json:"completed_tasks"`
	SystemEfficiency string `json:"system_efficiency"`
}

// DepartmentMetrics holds per-category progress as percentages.
type DepartmentMetrics struct {
	Dev       string `json:"dev"`
	Design    string `json:"design"`
	Marketing string `json:"marketing"`
}

// ProjectEntry is one line of the report's project log.
type ProjectEntry struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	Completion string `json:"completion"`
}

func percent(n int) string { return fmt.Sprintf("%d%%", n) }

// NewVaultID returns a random report identifier.
func NewVaultID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "VAULT-" + strings.ToUpper(raw[:8])
}

// BuildReport assembles the export document for a user's projects.
func BuildReport(email string, projects []models.Project, now time.Time) Report {
	stats := Summarize(projects)
	log := make([]ProjectEntry, 0, len(projects))
	for _, p := range projects {
		log = append(log, ProjectEntry{Name: p.Title, Category: p.Category, Completion: percent(p.Progress)})
	}
	return Report{
		VaultID:   NewVaultID(),
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		User:      email,
		Summary: ReportSummary{
			ActiveProjects:   len(projects),
			TotalTasks:       stats.TotalTasks,
			CompletedTasks:   stats.Velocity,
			SystemEfficiency: percent(stats.CompletionRate),
		},
		DepartmentMetrics: DepartmentMetrics{
			Dev:       percent(stats.DevProgress),
			Design:    percent(stats.DesignProgress),
			Marketing: percent(stats.MarketingProgress),
		},
		ProjectLog: log,
	}
}

// ReportFilename names the downloaded report after the export instant.
func ReportFilename(now time.Time) string {
	return fmt.Sprintf("TaskVault_Report_%d.json", now.UnixMilli())
}

// Encode writes the report as indented JSON.
func (r Report) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
