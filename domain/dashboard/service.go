package dashboard

import (
	"context"
	"fmt"
	"time"

	"fleetcheck/infrastructure/ledger"
	"fleetcheck/models"
)

// RecordLister lists records from the record store.
type RecordLister interface {
	ListChecklists(ctx context.Context, limit int) ([]models.ChecklistRecord, error)
}

type Service struct {
	records RecordLister
	ledger  ledger.Store
	Now     func() time.Time
}

func NewService(records RecordLister, store ledger.Store) *Service {
	return &Service{records: records, ledger: store, Now: time.Now}
}

// Stats reads every record and the ledger and aggregates at Now.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	records, err := s.records.ListChecklists(ctx, 0)
	if err != nil {
		return Stats{}, fmt.Errorf("list records: %w", err)
	}
	snap, err := ledger.Load(ctx, s.ledger)
	if err != nil {
		return Stats{}, err
	}
	return Aggregate(records, snap, s.Now()), nil
}
