// Package checklists validates and submits inspection and service records.
package checklists

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"fleetcheck/models"
)

// DefaultDailyItems is used when the record store has no template for a
// check type that needs one.
var DefaultDailyItems = []string{
	"Oil level check - Engine oil at correct level",
	"Fuel level check - Adequate fuel for operation",
	"Hydraulic fluid level - Within acceptable range",
	"Battery condition - Terminals clean, voltage adequate",
	"Tire/track condition - No visible damage or excessive wear",
	"Safety guards in place - All protective covers secured",
	"Emergency stop function - Test emergency stop button",
	"Warning lights operational - All safety lights working",
	"Operator seat condition - Seat belt and controls functional",
	"Air filter condition - Clean and properly sealed",
	"Cooling system - Radiator clear, coolant level adequate",
	"Brake system function - Service and parking brakes operational",
	"Steering operation - Smooth operation, no excessive play",
	"Lights and signals - All operational lights working",
	"Fire extinguisher - Present and within service date",
}

// CheckTypes are the check types an operator can submit from the form.
var CheckTypes = []string{models.CheckTypeDaily, models.CheckTypeGraderStartup, models.CheckTypeWorkshopService}

var (
	ErrNoItems              = errors.New("the checklist has no items")
	ErrWorkshopNotesMissing = errors.New("workshop notes are required for a workshop service")
)

// Item is one answered checklist line.
type Item struct {
	Item   string `validate:"required"`
	Status string `validate:"oneof=satisfactory unsatisfactory n/a unchecked"`
	Notes  string
	Photos []models.Photo
}

// Submission is a completed checklist form.
type Submission struct {
	EmployeeNumber string `validate:"required"`
	StaffName      string `validate:"required"`
	MachineMake    string `validate:"required"`
	MachineModel   string `validate:"required"`
	CheckType      string `validate:"oneof=daily_check grader_startup workshop_service"`
	Items          []Item `validate:"dive"`
	WorkshopNotes  string
	WorkshopPhotos []models.Photo
}

// ValidationError collects every problem with a submission. Fields maps the
// struct field to the failed tag; Problems holds the form rule failures.
type ValidationError struct {
	Fields   map[string]string
	Problems []string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields)+len(e.Problems))
	for field, tag := range e.Fields {
		parts = append(parts, fieldMessage(field, tag))
	}
	parts = append(parts, e.Problems...)
	return strings.Join(parts, "; ")
}

func fieldMessage(field, tag string) string {
	switch field {
	case "MachineMake":
		return "machine make is required"
	case "MachineModel":
		return "machine model is required"
	case "CheckType":
		return "unknown check type"
	case "EmployeeNumber", "StaffName":
		return "sign in again to submit"
	}
	return fmt.Sprintf("%s failed %s", field, tag)
}

var validate = validator.New()

// Validate applies the struct tags and then the form rules: every item is
// answered, unsatisfactory items explain the fault and workshop services
// carry notes.
func (s Submission) Validate() error {
	verr := &ValidationError{Fields: map[string]string{}}
	if err := validate.Struct(s); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			return err
		}
		for _, ve := range ves {
			verr.Fields[ve.Field()] = ve.Tag()
		}
	}

	if s.CheckType == models.CheckTypeWorkshopService {
		if strings.TrimSpace(s.WorkshopNotes) == "" {
			verr.Problems = append(verr.Problems, ErrWorkshopNotesMissing.Error())
		}
	} else if len(s.Items) == 0 {
		verr.Problems = append(verr.Problems, ErrNoItems.Error())
	}

	for _, it := range s.Items {
		switch it.Status {
		case models.ItemUnchecked, "":
			verr.Problems = append(verr.Problems, "not answered: "+it.Item)
		case models.ItemUnsatisfactory:
			if strings.TrimSpace(it.Notes) == "" {
				verr.Problems = append(verr.Problems, "explain the fault: "+it.Item)
			}
		}
	}

	if len(verr.Fields) == 0 && len(verr.Problems) == 0 {
		return nil
	}
	return verr
}

// Record builds the record posted to the store.
func (s Submission) Record() models.ChecklistRecord {
	items := make([]models.ChecklistItem, 0, len(s.Items))
	for _, it := range s.Items {
		photos := it.Photos
		if photos == nil {
			photos = []models.Photo{}
		}
		items = append(items, models.ChecklistItem{
			Item:   it.Item,
			Status: it.Status,
			Notes:  strings.TrimSpace(it.Notes),
			Photos: photos,
		})
	}
	workshopPhotos := s.WorkshopPhotos
	if workshopPhotos == nil {
		workshopPhotos = []models.Photo{}
	}
	return models.ChecklistRecord{
		EmployeeNumber: s.EmployeeNumber,
		StaffName:      s.StaffName,
		MachineMake:    strings.TrimSpace(s.MachineMake),
		MachineModel:   strings.TrimSpace(s.MachineModel),
		CheckType:      s.CheckType,
		ChecklistItems: items,
		WorkshopNotes:  strings.TrimSpace(s.WorkshopNotes),
		WorkshopPhotos: workshopPhotos,
	}
}

// IsCheckType reports whether v is a form check type.
func IsCheckType(v string) bool {
	for _, ct := range CheckTypes {
		if ct == v {
			return true
		}
	}
	return false
}
