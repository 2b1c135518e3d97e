package checklists

import (
	"context"
	"fmt"
	"log/slog"

	"fleetcheck/infrastructure/recordstore"
	"fleetcheck/models"
)

// Catalog is the machine and template lookup side of the record store.
type Catalog interface {
	CheckType(ctx context.Context, machineMake, name string) (string, error)
	ChecklistTemplate(ctx context.Context, checkType string) (recordstore.ChecklistTemplate, error)
}

// RecordCreator posts finished records.
type RecordCreator interface {
	CreateChecklist(ctx context.Context, record models.ChecklistRecord) (models.ChecklistRecord, error)
}

// Form is what the item step needs to render.
type Form struct {
	CheckType string
	Items     []string
	Templated bool
}

type Service struct {
	catalog Catalog
	records RecordCreator
}

func NewService(catalog Catalog, records RecordCreator) *Service {
	return &Service{catalog: catalog, records: records}
}

// ResolveCheckType returns override when it is a known check type, otherwise
// the type registered for the machine, otherwise daily_check.
func (s *Service) ResolveCheckType(ctx context.Context, machineMake, name, override string) string {
	if IsCheckType(override) {
		return override
	}
	ct, err := s.catalog.CheckType(ctx, machineMake, name)
	if err != nil {
		if !recordstore.IsNotFound(err) {
			slog.Warn("check type lookup failed",
				slog.String("make", machineMake),
				slog.String("name", name),
				slog.Any("err", err))
		}
		return models.CheckTypeDaily
	}
	if !IsCheckType(ct) {
		return models.CheckTypeDaily
	}
	return ct
}

// Form loads the item list for a check type. Workshop services have no
// items; other types fall back to DefaultDailyItems.
func (s *Service) Form(ctx context.Context, checkType string) Form {
	if checkType == models.CheckTypeWorkshopService {
		return Form{CheckType: checkType, Items: []string{}}
	}
	tmpl, err := s.catalog.ChecklistTemplate(ctx, checkType)
	if err != nil || len(tmpl.Items) == 0 {
		if err != nil && !recordstore.IsNotFound(err) {
			slog.Warn("checklist template lookup failed", slog.String("check_type", checkType), slog.Any("err", err))
		}
		return Form{CheckType: checkType, Items: append([]string(nil), DefaultDailyItems...)}
	}
	return Form{CheckType: checkType, Items: tmpl.Items, Templated: true}
}

// Submit validates locally and posts the record. Invalid submissions never
// reach the record store.
func (s *Service) Submit(ctx context.Context, sub Submission) (models.ChecklistRecord, error) {
	if err := sub.Validate(); err != nil {
		return models.ChecklistRecord{}, err
	}
	created, err := s.records.CreateChecklist(ctx, sub.Record())
	if err != nil {
		return models.ChecklistRecord{}, fmt.Errorf("create checklist: %w", err)
	}
	return created, nil
}
