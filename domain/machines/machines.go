// Package machines handles new machine requests and their acknowledgment.
package machines

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fleetcheck/infrastructure/ledger"
	"fleetcheck/models"
)

var (
	ErrRequestNotFound = errors.New("machine request not found")
	ErrMissingMachine  = errors.New("machine make and model are required")
)

// RecordStore is the part of the record store machine requests need.
type RecordStore interface {
	ListChecklists(ctx context.Context, limit int) ([]models.ChecklistRecord, error)
	CreateChecklist(ctx context.Context, record models.ChecklistRecord) (models.ChecklistRecord, error)
}

// Request is a new machine submission.
type Request struct {
	EmployeeNumber string
	StaffName      string
	Make           string
	Model          string
	Notes          string
}

// Pending returns machine additions not yet acknowledged, in record order.
func Pending(records []models.ChecklistRecord, snap ledger.Snapshot) []models.ChecklistRecord {
	out := make([]models.ChecklistRecord, 0)
	for _, rec := range records {
		if rec.IsMachineAddition() && !snap.MachineAcknowledged(rec.ID) {
			out = append(out, rec)
		}
	}
	return out
}

type Service struct {
	records RecordStore
	ledger  ledger.Store
}

func NewService(records RecordStore, store ledger.Store) *Service {
	return &Service{records: records, ledger: store}
}

func (s *Service) Pending(ctx context.Context) ([]models.ChecklistRecord, error) {
	records, err := s.records.ListChecklists(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	snap, err := ledger.Load(ctx, s.ledger)
	if err != nil {
		return nil, err
	}
	return Pending(records, snap), nil
}

// Acknowledge marks a machine addition record as handled.
func (s *Service) Acknowledge(ctx context.Context, recordID string) error {
	records, err := s.records.ListChecklists(ctx, 0)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	for _, rec := range records {
		if rec.ID == recordID && rec.IsMachineAddition() {
			return s.ledger.Append(ctx, ledger.KeyAcknowledgedMachines, recordID)
		}
	}
	return ErrRequestNotFound
}

// Submit posts a NEW MACHINE record.
func (s *Service) Submit(ctx context.Context, req Request) (models.ChecklistRecord, error) {
	if strings.TrimSpace(req.Make) == "" || strings.TrimSpace(req.Model) == "" {
		return models.ChecklistRecord{}, ErrMissingMachine
	}
	return s.records.CreateChecklist(ctx, models.ChecklistRecord{
		EmployeeNumber: req.EmployeeNumber,
		StaffName:      req.StaffName,
		MachineMake:    strings.TrimSpace(req.Make),
		MachineModel:   strings.TrimSpace(req.Model),
		CheckType:      models.CheckTypeNewMachine,
		ChecklistItems: []models.ChecklistItem{},
		WorkshopNotes:  strings.TrimSpace(req.Notes),
		WorkshopPhotos: []models.Photo{},
	})
}
