package checklists

import "fleetcheck/frontend/shared/nav"

// Form steps.
const (
	StepMake  = "make"
	StepModel = "model"
	StepItems = "items"
)

type PageData struct {
	TopNav     nav.TopNavData
	Step       string
	StaffName  string
	Makes      []string
	Models     []string
	Make       string
	Model      string
	CheckType  string
	CheckTypes []string
	Items      []string
	Templated  bool
	Status     string
	Error      string
}
