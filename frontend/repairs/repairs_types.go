package repairs

import (
	repairsvc "fleetcheck/domain/repairs"
	"fleetcheck/frontend/shared/nav"
	"fleetcheck/models"
)

// ItemView is a repair item with its derived state and priority.
type ItemView struct {
	repairsvc.RepairItem
	State    repairsvc.State
	Priority repairsvc.Priority
}

func newItemView(item repairsvc.RepairItem, board repairsvc.Board) ItemView {
	return ItemView{
		RepairItem: item,
		State:      board.State(item.ID),
		Priority:   repairsvc.Classify(item),
	}
}

type PageData struct {
	TopNav         nav.TopNavData
	View           string
	NewCount       int
	DueCount       int
	CompletedCount int
	Items          []ItemView
	CanAcknowledge bool
	CanComplete    bool
	CanExport      bool
	Status         string
	Error          string
}

type DetailData struct {
	TopNav         nav.TopNavData
	Item           ItemView
	Audit          []models.AuditLog
	CanAcknowledge bool
	CanComplete    bool
	Status         string
	Error          string
}

type ReportPageData struct {
	TopNav    nav.TopNavData
	Urgencies []string
	Makes     []string
	Status    string
	Error     string
}
