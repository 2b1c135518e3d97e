package repairs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"fleetcheck/infrastructure/ledger"
	"fleetcheck/models"
)

var (
	ErrRepairNotFound       = errors.New("repair item not found")
	ErrEmptyCompletionNotes = errors.New("completion notes are required")
	ErrNotAcknowledged      = errors.New("repair must be acknowledged before completion")
	ErrAlreadyCompleted     = errors.New("repair is already completed")
)

// RecordStore is the part of the record store the lifecycle needs.
type RecordStore interface {
	ListChecklists(ctx context.Context, limit int) ([]models.ChecklistRecord, error)
	CreateChecklist(ctx context.Context, record models.ChecklistRecord) (models.ChecklistRecord, error)
}

// Service owns the two lifecycle transitions. Completions are serialized so a
// double submit cannot create two REPAIR COMPLETED records.
type Service struct {
	records    RecordStore
	ledger     ledger.Store
	requireAck bool

	mu sync.Mutex
}

func NewService(records RecordStore, store ledger.Store, requireAck bool) *Service {
	return &Service{records: records, ledger: store, requireAck: requireAck}
}

// Load fetches every record and the ledger and derives the repair items.
func (s *Service) Load(ctx context.Context) (Board, error) {
	records, err := s.records.ListChecklists(ctx, 0)
	if err != nil {
		return Board{}, fmt.Errorf("list records: %w", err)
	}
	snap, err := ledger.Load(ctx, s.ledger)
	if err != nil {
		return Board{}, err
	}
	return Board{Records: records, Items: Extract(records), Ledger: snap}, nil
}

// Acknowledge moves a New item to Acknowledged. It is a no-op for items
// already acknowledged or completed.
func (s *Service) Acknowledge(ctx context.Context, id string) error {
	board, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if _, ok := board.Find(id); !ok {
		return ErrRepairNotFound
	}
	if board.State(id) != StateNew {
		return nil
	}
	if err := s.ledger.Append(ctx, ledger.KeyAcknowledgedRepairs, id); err != nil {
		return fmt.Errorf("acknowledge %s: %w", id, err)
	}
	return nil
}

// Complete records the repair in the record store and, only when that
// succeeds, marks the item completed and acknowledged in the ledger.
func (s *Service) Complete(ctx context.Context, id string, c Completion) (models.ChecklistRecord, error) {
	c.Notes = strings.TrimSpace(c.Notes)
	if c.Notes == "" {
		return models.ChecklistRecord{}, ErrEmptyCompletionNotes
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	board, err := s.Load(ctx)
	if err != nil {
		return models.ChecklistRecord{}, err
	}
	item, ok := board.Find(id)
	if !ok {
		return models.ChecklistRecord{}, ErrRepairNotFound
	}
	switch board.State(id) {
	case StateCompleted:
		return models.ChecklistRecord{}, ErrAlreadyCompleted
	case StateNew:
		if s.requireAck {
			return models.ChecklistRecord{}, ErrNotAcknowledged
		}
	}

	created, err := s.records.CreateChecklist(ctx, completionRecord(item, c))
	if err != nil {
		return models.ChecklistRecord{}, fmt.Errorf("create completion record: %w", err)
	}

	for _, key := range []string{ledger.KeyAcknowledgedRepairs, ledger.KeyCompletedRepairs} {
		if err := s.ledger.Append(ctx, key, id); err != nil {
			slog.Error("ledger append after completion failed",
				slog.String("repair_id", id),
				slog.String("record_id", created.ID),
				slog.String("key", key),
				slog.Any("err", err))
			return created, fmt.Errorf("mark %s completed: %w", id, err)
		}
	}
	return created, nil
}

func completionRecord(item RepairItem, c Completion) models.ChecklistRecord {
	notes := "REPAIR COMPLETED:\nRepair ID: " + item.ID +
		"\nOriginal Issue: " + item.Item
	if item.Notes != "" {
		notes += " - " + item.Notes
	}
	notes += "\nRepair Notes: " + c.Notes

	photos := c.Photos
	if photos == nil {
		photos = []models.Photo{}
	}
	return models.ChecklistRecord{
		EmployeeNumber: c.EmployeeNumber,
		StaffName:      c.StaffName,
		MachineMake:    item.MachineMake,
		MachineModel:   item.MachineModel,
		CheckType:      models.CheckTypeRepairCompleted,
		ChecklistItems: []models.ChecklistItem{},
		WorkshopNotes:  notes,
		WorkshopPhotos: photos,
	}
}
