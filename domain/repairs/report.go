package repairs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fleetcheck/models"
)

var (
	ErrUnknownUrgency      = errors.New("choose one of the urgency options")
	ErrMissingDescription  = errors.New("describe the problem")
	ErrMissingMachineIdent = errors.New("machine make and model are required")
)

// Report is a general repair submitted outside a checklist.
type Report struct {
	EmployeeNumber string
	StaffName      string
	MachineMake    string
	MachineModel   string
	Urgency        string
	Description    string
	Photos         []models.Photo
}

// Validate checks the report against the form rules.
func (r Report) Validate() error {
	if strings.TrimSpace(r.MachineMake) == "" || strings.TrimSpace(r.MachineModel) == "" {
		return ErrMissingMachineIdent
	}
	known := false
	for _, u := range UrgencyOptions {
		if r.Urgency == u {
			known = true
			break
		}
	}
	if !known {
		return ErrUnknownUrgency
	}
	if strings.TrimSpace(r.Description) == "" {
		return ErrMissingDescription
	}
	return nil
}

// Record builds the GENERAL REPAIR record for the report.
func (r Report) Record() models.ChecklistRecord {
	photos := r.Photos
	if photos == nil {
		photos = []models.Photo{}
	}
	return models.ChecklistRecord{
		EmployeeNumber: r.EmployeeNumber,
		StaffName:      r.StaffName,
		MachineMake:    strings.TrimSpace(r.MachineMake),
		MachineModel:   strings.TrimSpace(r.MachineModel),
		CheckType:      models.CheckTypeGeneralRepair,
		ChecklistItems: []models.ChecklistItem{},
		WorkshopNotes:  ComposeReport(r.Urgency, r.Description),
		WorkshopPhotos: photos,
	}
}

// Report validates and submits a general repair. Nothing reaches the record
// store when validation fails.
func (s *Service) Report(ctx context.Context, r Report) (models.ChecklistRecord, error) {
	if err := r.Validate(); err != nil {
		return models.ChecklistRecord{}, err
	}
	created, err := s.records.CreateChecklist(ctx, r.Record())
	if err != nil {
		return models.ChecklistRecord{}, fmt.Errorf("create general repair: %w", err)
	}
	return created, nil
}
