package uploads

import (
	"fleetcheck/frontend/shared/nav"
	"fleetcheck/infrastructure/recordstore"
	"fleetcheck/models"
)

// Upload run outcomes.
const (
	RunRejected  = "rejected"
	RunFailed    = "failed"
	RunForwarded = "forwarded"
)

// headerRule is satisfied by a header cell containing any of its words.
type headerRule struct {
	Label string
	Words []string
}

// Kind describes one reference spreadsheet.
type Kind struct {
	Name     string
	Label    string
	Required []headerRule
}

var Kinds = []Kind{
	{
		Name:  recordstore.UploadAssets,
		Label: "Machines (assets)",
		Required: []headerRule{
			{Label: "Make", Words: []string{"make"}},
			{Label: "Model or Name", Words: []string{"model", "name"}},
		},
	},
	{
		Name:  recordstore.UploadStaff,
		Label: "Staff",
		Required: []headerRule{
			{Label: "Name", Words: []string{"name"}},
			{Label: "Employee Number", Words: []string{"number", "employee", "emp"}},
		},
	},
	{
		Name:  recordstore.UploadChecklists,
		Label: "Checklist templates",
		Required: []headerRule{
			{Label: "Check Type", Words: []string{"check"}},
			{Label: "Item", Words: []string{"item"}},
		},
	},
}

func kindByName(name string) (Kind, bool) {
	for _, k := range Kinds {
		if k.Name == name {
			return k, true
		}
	}
	return Kind{}, false
}

type PageData struct {
	TopNav nav.TopNavData
	Kinds  []Kind
	Runs   []models.UploadRun
	Status string
	Error  string
}
