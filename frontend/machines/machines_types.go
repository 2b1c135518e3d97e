package machines

import (
	"fleetcheck/frontend/shared/nav"
	"fleetcheck/models"
)

type PageData struct {
	TopNav         nav.TopNavData
	Pending        []models.ChecklistRecord
	CanAcknowledge bool
	Status         string
	Error          string
}

type RequestPageData struct {
	TopNav nav.TopNavData
	Makes  []string
	Status string
	Error  string
}
