// Package repairs derives repair items from checklist records and drives
// their New, Acknowledged, Completed lifecycle through the ledger.
package repairs

import "fleetcheck/models"

// Source tags where a repair item came from.
type Source string

const (
	SourceUnsatisfactoryItem Source = "unsatisfactory_item"
	SourceGeneralRepair      Source = "general_repair"
)

// GeneralItemIndex marks items derived from a whole GENERAL REPAIR record.
const GeneralItemIndex = -1

// GeneralItemLabel is the item text of every general repair.
const GeneralItemLabel = "General Equipment Issue"

// RepairItem is one outstanding or resolved issue. It is derived on every
// read and never stored; its state lives in the ledger.
type RepairItem struct {
	ID             string         `json:"id"`
	RecordID       string         `json:"record_id"`
	ItemIndex      int            `json:"item_index"`
	Source         Source         `json:"source"`
	Item           string         `json:"item"`
	Notes          string         `json:"notes"`
	Photos         []models.Photo `json:"photos,omitempty"`
	MachineMake    string         `json:"machine_make"`
	MachineModel   string         `json:"machine_model"`
	StaffName      string         `json:"staff_name"`
	EmployeeNumber string         `json:"employee_number"`
	CheckType      string         `json:"check_type"`
	Date           string         `json:"date"`
	Urgency        string         `json:"urgency,omitempty"`
}

// Machine is the display name of the item's machine.
func (r RepairItem) Machine() string {
	switch {
	case r.MachineMake == "":
		return r.MachineModel
	case r.MachineModel == "":
		return r.MachineMake
	}
	return r.MachineMake + " " + r.MachineModel
}

// State is the lifecycle position of a repair item.
type State int

const (
	StateNew State = iota
	StateAcknowledged
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateAcknowledged:
		return "acknowledged"
	case StateCompleted:
		return "completed"
	}
	return "new"
}

// Completion is the form submitted to close a repair.
type Completion struct {
	Notes          string
	EmployeeNumber string
	StaffName      string
	Photos         []models.Photo
}
