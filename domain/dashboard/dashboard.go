// Package dashboard computes the summary counts shown on the landing page.
package dashboard

import (
	"strings"
	"time"

	"fleetcheck/domain/machines"
	"fleetcheck/domain/repairs"
	"fleetcheck/infrastructure/ledger"
	"fleetcheck/models"
)

// Categories for today's records.
const (
	CategoryVehicles         = "Vehicles"
	CategoryMounted          = "Mounted machines"
	CategoryOther            = "Other equipment"
	CategoryMachineAdd       = "Machine add"
	CategoryRepairsCompleted = "Repairs completed"
	CategoryWorkshopService  = "Workshop service"
)

// DisplayOrder is the fixed ordering of known categories. Anything else
// follows in encounter order.
var DisplayOrder = []string{
	CategoryVehicles,
	CategoryMounted,
	CategoryOther,
	CategoryMachineAdd,
	CategoryRepairsCompleted,
	CategoryWorkshopService,
}

const completedWindow = 7 * 24 * time.Hour

// CategoryCount is one row of today's breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Stats is the dashboard summary.
type Stats struct {
	Total                     int             `json:"total"`
	TodayByType               []CategoryCount `json:"today_by_type"`
	TodayTotal                int             `json:"today_total"`
	NonAcknowledgedRepairs    int             `json:"non_acknowledged_repairs"`
	RepairsDue                int             `json:"repairs_due"`
	RepairsCompletedLast7Days int             `json:"repairs_completed_last_7_days"`
	PendingMachineAdditions   int             `json:"pending_machine_additions"`
}

// TodayCount returns the count for one category, zero when absent.
func (s Stats) TodayCount(category string) int {
	for _, c := range s.TodayByType {
		if c.Category == category {
			return c.Count
		}
	}
	return 0
}

// Aggregate computes Stats at now. "Today" is a prefix match of completed_at
// against now's calendar date in now's location, so records stamped in
// another zone bucket by their own local date.
func Aggregate(records []models.ChecklistRecord, snap ledger.Snapshot, now time.Time) Stats {
	today := now.Format("2006-01-02")
	since := now.Add(-completedWindow)

	var stats Stats
	counts := make(map[string]int)
	encounter := make([]string, 0)

	for _, rec := range records {
		if rec.CheckType == models.CheckTypeGeneralRepair {
			continue
		}
		stats.Total++

		if rec.CheckType == models.CheckTypeRepairCompleted {
			if t, ok := ParseTimestamp(rec.CompletedAt, now.Location()); ok && !t.Before(since) {
				stats.RepairsCompletedLast7Days++
			}
		}

		if !strings.HasPrefix(rec.CompletedAt, today) {
			continue
		}
		category := Categorize(rec)
		if _, seen := counts[category]; !seen {
			encounter = append(encounter, category)
		}
		counts[category]++
		stats.TodayTotal++
	}

	stats.TodayByType = ordered(counts, encounter)

	// Counted by ledger membership, not lifecycle state: an item completed
	// without ever being acknowledged still counts as non-acknowledged.
	for _, item := range repairs.Extract(records) {
		acknowledged := snap.RepairAcknowledged(item.ID)
		if !acknowledged {
			stats.NonAcknowledgedRepairs++
		}
		if acknowledged && !snap.RepairCompleted(item.ID) {
			stats.RepairsDue++
		}
	}
	stats.PendingMachineAdditions = len(machines.Pending(records, snap))
	return stats
}

// Categorize buckets a non-general record for today's breakdown.
func Categorize(rec models.ChecklistRecord) string {
	switch rec.CheckType {
	case models.CheckTypeDaily, models.CheckTypeGraderStartup:
		machineMake := strings.ToLower(rec.MachineMake)
		switch {
		case strings.Contains(machineMake, "cat"):
			return CategoryMounted
		case strings.Contains(machineMake, "john deere"):
			return CategoryVehicles
		}
		return CategoryOther
	case models.CheckTypeWorkshopService:
		return CategoryWorkshopService
	case models.CheckTypeNewMachine, models.CheckTypeMachineAdd:
		return CategoryMachineAdd
	case models.CheckTypeRepairCompleted:
		return CategoryRepairsCompleted
	}
	return rec.CheckType
}

func ordered(counts map[string]int, encounter []string) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	known := make(map[string]struct{}, len(DisplayOrder))
	for _, c := range DisplayOrder {
		known[c] = struct{}{}
		if n, ok := counts[c]; ok {
			out = append(out, CategoryCount{Category: c, Count: n})
		}
	}
	for _, c := range encounter {
		if _, ok := known[c]; ok {
			continue
		}
		out = append(out, CategoryCount{Category: c, Count: counts[c]})
	}
	return out
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp reads an ISO-8601 completed_at. Values without a zone are
// taken in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
