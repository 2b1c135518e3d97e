package models

import "strings"

// Check types accepted by the record store.
const (
	CheckTypeDaily           = "daily_check"
	CheckTypeGraderStartup   = "grader_startup"
	CheckTypeWorkshopService = "workshop_service"
	CheckTypeNewMachine      = "NEW MACHINE"
	CheckTypeMachineAdd      = "MACHINE ADD"
	CheckTypeRepairCompleted = "REPAIR COMPLETED"
	CheckTypeGeneralRepair   = "GENERAL REPAIR"
)

// Checklist item statuses.
const (
	ItemSatisfactory   = "satisfactory"
	ItemUnsatisfactory = "unsatisfactory"
	ItemNotApplicable  = "n/a"
	ItemUnchecked      = "unchecked"
)

// Photo is an image captured on a device and embedded in a record.
type Photo struct {
	ID        int64  `json:"id"`
	Data      string `json:"data"`
	Timestamp string `json:"timestamp"`
}

// ChecklistItem is one line of an inspection.
type ChecklistItem struct {
	Item   string  `json:"item"`
	Status string  `json:"status"`
	Notes  string  `json:"notes"`
	Photos []Photo `json:"photos,omitempty"`
}

// ChecklistRecord is one submitted inspection, service or repair event as held
// by the record store. ID and CompletedAt are assigned by the store.
type ChecklistRecord struct {
	ID             string          `json:"id,omitempty"`
	EmployeeNumber string          `json:"employee_number"`
	StaffName      string          `json:"staff_name"`
	MachineMake    string          `json:"machine_make"`
	MachineModel   string          `json:"machine_model"`
	CheckType      string          `json:"check_type"`
	ChecklistItems []ChecklistItem `json:"checklist_items"`
	WorkshopNotes  string          `json:"workshop_notes"`
	WorkshopPhotos []Photo         `json:"workshop_photos"`
	CompletedAt    string          `json:"completed_at,omitempty"`
}

// IsMachineAddition covers the current and legacy spellings.
func (r ChecklistRecord) IsMachineAddition() bool {
	return r.CheckType == CheckTypeNewMachine || r.CheckType == CheckTypeMachineAdd
}

// Employee is a directory entry returned by the employee login endpoint.
type Employee struct {
	EmployeeNumber  string `json:"employee_number"`
	Name            string `json:"name"`
	AdminControl    string `json:"admin_control,omitempty"`
	WorkshopControl string `json:"workshop_control,omitempty"`
}

// IsAdmin reports the directory admin flag ("yes").
func (e Employee) IsAdmin() bool {
	return strings.EqualFold(strings.TrimSpace(e.AdminControl), "yes")
}

// IsWorkshop reports the directory workshop flag ("yes").
func (e Employee) IsWorkshop() bool {
	return strings.EqualFold(strings.TrimSpace(e.WorkshopControl), "yes")
}

// Staff is a directory listing row.
type Staff struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	EmployeeNumber string `json:"employee_number,omitempty"`
}
