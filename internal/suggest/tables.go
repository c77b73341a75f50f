package suggest

import "taskvault/internal/keywords"

// QuickActions is the generic phrase pool offered on every board.
var QuickActions = []string{
	"Review Notes", "Update Status", "Send Email", "Research", "Meeting",
	"Complete Assignment", "Fix Bug", "Deployment", "Database Backup",
	"Client Call", "Project Planning", "UI Design", "Testing", "Documentation",
	"Code Review", "Market Analysis", "Coffee Break", "Gym Session", "Buy Groceries",
}

// CategoryRules maps board title keywords to phrases placed ahead of the
// quick actions.
var CategoryRules = keywords.Table{
	{Keywords: []string{"gym"}, Result: []string{"Workout Session", "Protein Shake", "Track Water", "Leg Day", "Cardio", "Gym Gear"}},
	{Keywords: []string{"study"}, Result: []string{"Review Notes", "Read Chapter", "Solve Paper", "Assignment", "Library Session"}},
	{Keywords: []string{"work"}, Result: []string{"Team Meeting", "Send Email", "Fix Bug", "Code Review", "Update Jira", "Client Call"}},
	{Keywords: []string{"trip"}, Result: []string{"Book Tickets", "Pack Bags", "Hotel Check", "Plan Route", "Travel Insurance"}},
	{Keywords: []string{"home"}, Result: []string{"Buy Groceries", "Clean Room", "Laundry", "Pay Bills", "Kitchen Restock"}},
}

// FallbackSuggestions is returned by the remote endpoint when every model fails.
var FallbackSuggestions = []string{"Update task", "Check status", "Finish now"}

// DefaultModels are tried in order; the second only when the first fails.
var DefaultModels = []string{
	"meta-llama/Llama-3.2-3B-Instruct",
	"mistralai/Mistral-Nemo-Instruct-2407",
}
