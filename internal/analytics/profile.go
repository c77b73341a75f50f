package analytics

import (
	"fmt"

	"taskvault/internal/models"
)

// Profile is the derived identity card shown on the profile page.
type Profile struct {
	Rank         string       `json:"rank"`
	Streak       string       `json:"streak"`
	Badges       string       `json:"badges"`
	ProgressData ProgressData `json:"progressData"`
}

// ProgressData holds the three profile gauges.
type ProgressData struct {
	Architect   int `json:"architect"`
	Executioner int `json:"executioner"`
	King        int `json:"king"`
}

// BuildProfile derives the profile card from a user's projects.
func BuildProfile(projects []models.Project) Profile {
	completed := totalCompleted(projects)
	badges := "04"
	if completed > 5 {
		badges = "12"
	}
	king := 0
	if len(projects) > 0 {
		king = 90
	}
	return Profile{
		Rank:   fmt.Sprintf("#%d", 1000-completed),
		Streak: fmt.Sprintf("%d Days", len(projects)*2),
		Badges: badges,
		ProgressData: ProgressData{
			Architect:   MeanProgress(projects),
			Executioner: min(100, completed*5),
			King:        king,
		},
	}
}
