package repairs

import (
	"fleetcheck/infrastructure/ledger"
	"fleetcheck/models"
)

// View names.
const (
	ViewNew       = "new"
	ViewDue       = "due"
	ViewCompleted = "completed"
)

// StateOf resolves lifecycle state from ledger membership. Completed wins
// over Acknowledged, which wins over New.
func StateOf(id string, snap ledger.Snapshot) State {
	switch {
	case snap.RepairCompleted(id):
		return StateCompleted
	case snap.RepairAcknowledged(id):
		return StateAcknowledged
	}
	return StateNew
}

// Views splits items by state. New and Completed keep extraction order; Due
// is sorted by priority.
type Views struct {
	New       []RepairItem
	Due       []RepairItem
	Completed []RepairItem
}

func BuildViews(items []RepairItem, snap ledger.Snapshot) Views {
	v := Views{
		New:       make([]RepairItem, 0),
		Due:       make([]RepairItem, 0),
		Completed: make([]RepairItem, 0),
	}
	for _, item := range items {
		switch StateOf(item.ID, snap) {
		case StateCompleted:
			v.Completed = append(v.Completed, item)
		case StateAcknowledged:
			v.Due = append(v.Due, item)
		default:
			v.New = append(v.New, item)
		}
	}
	SortByPriority(v.Due)
	return v
}

// ByName returns one view. ok is false for unknown names.
func (v Views) ByName(name string) (items []RepairItem, ok bool) {
	switch name {
	case ViewNew, "":
		return v.New, true
	case ViewDue:
		return v.Due, true
	case ViewCompleted:
		return v.Completed, true
	}
	return nil, false
}

// Board is one consistent read of records, derived items and ledger state.
type Board struct {
	Records []models.ChecklistRecord
	Items   []RepairItem
	Ledger  ledger.Snapshot
}

func (b Board) Views() Views {
	return BuildViews(b.Items, b.Ledger)
}

// Find returns the item with id.
func (b Board) Find(id string) (RepairItem, bool) {
	for _, item := range b.Items {
		if item.ID == id {
			return item, true
		}
	}
	return RepairItem{}, false
}

// State returns the lifecycle state of id on this board.
func (b Board) State(id string) State {
	return StateOf(id, b.Ledger)
}
