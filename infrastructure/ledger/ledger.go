// Package ledger stores the installation's acknowledgment and completion
// flags as append-only id sets under fixed keys.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Fixed ledger keys.
const (
	KeyAcknowledgedRepairs  = "acknowledgedRepairs"
	KeyCompletedRepairs     = "completedRepairs"
	KeyAcknowledgedMachines = "acknowledgedMachines"
)

// ErrUnknownKey is returned for keys outside the fixed set.
var ErrUnknownKey = errors.New("unknown ledger key")

// Store is a named set store. Append is idempotent; Get returns members in
// first-append order.
type Store interface {
	Get(ctx context.Context, key string) ([]string, error)
	Set(ctx context.Context, key string, ids []string) error
	Append(ctx context.Context, key, id string) error
}

type actorKey struct{}

// WithActor tags ledger writes made with ctx.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFrom(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok {
		return v
	}
	return ""
}

func validKey(key string) error {
	switch key {
	case KeyAcknowledgedRepairs, KeyCompletedRepairs, KeyAcknowledgedMachines:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

func validID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("ledger id is required")
	}
	return nil
}

// Snapshot is a point-in-time read of all three sets.
type Snapshot struct {
	acknowledgedRepairs  map[string]struct{}
	completedRepairs     map[string]struct{}
	acknowledgedMachines map[string]struct{}
}

// NewSnapshot builds a snapshot from explicit id lists.
func NewSnapshot(acknowledged, completed, machines []string) Snapshot {
	return Snapshot{
		acknowledgedRepairs:  toSet(acknowledged),
		completedRepairs:     toSet(completed),
		acknowledgedMachines: toSet(machines),
	}
}

// Load reads every ledger key from s.
func Load(ctx context.Context, s Store) (Snapshot, error) {
	ack, err := s.Get(ctx, KeyAcknowledgedRepairs)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load %s: %w", KeyAcknowledgedRepairs, err)
	}
	done, err := s.Get(ctx, KeyCompletedRepairs)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load %s: %w", KeyCompletedRepairs, err)
	}
	machines, err := s.Get(ctx, KeyAcknowledgedMachines)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load %s: %w", KeyAcknowledgedMachines, err)
	}
	return NewSnapshot(ack, done, machines), nil
}

func (s Snapshot) RepairAcknowledged(id string) bool {
	_, ok := s.acknowledgedRepairs[id]
	return ok
}

func (s Snapshot) RepairCompleted(id string) bool {
	_, ok := s.completedRepairs[id]
	return ok
}

func (s Snapshot) MachineAcknowledged(id string) bool {
	_, ok := s.acknowledgedMachines[id]
	return ok
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
