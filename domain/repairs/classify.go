package repairs

import (
	"sort"
	"strings"
)

// Priority orders repair items. Higher is more urgent.
type Priority int

const (
	PriorityUnknown Priority = iota
	PriorityNotUrgent
	PriorityASAP
	PriorityStopped
	PrioritySafety
)

// Classify ranks an item. Safety items from failed checklist entries always
// outrank general repairs, whatever their text says.
func Classify(item RepairItem) Priority {
	if item.Source == SourceUnsatisfactoryItem {
		return PrioritySafety
	}
	return urgencyPriority(item.Urgency)
}

func urgencyPriority(label string) Priority {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, keywordStopped):
		return PriorityStopped
	case strings.Contains(lower, keywordASAP):
		return PriorityASAP
	case strings.Contains(lower, keywordNotUrgent):
		return PriorityNotUrgent
	}
	return PriorityUnknown
}

// Style is the CSS bucket for the priority badge.
func (p Priority) Style() string {
	switch p {
	case PrioritySafety:
		return "critical"
	case PriorityStopped:
		return "high"
	case PriorityASAP:
		return "medium"
	case PriorityNotUrgent:
		return "low"
	}
	return "unknown"
}

// Color is the badge colour used in printed output.
func (p Priority) Color() string {
	switch p {
	case PrioritySafety:
		return "red"
	case PriorityStopped:
		return "orange"
	case PriorityASAP:
		return "yellow"
	case PriorityNotUrgent:
		return "green"
	}
	return "gray"
}

func (p Priority) Label() string {
	switch p {
	case PrioritySafety:
		return "Safety"
	case PriorityStopped:
		return "Machine stopped"
	case PriorityASAP:
		return "ASAP"
	case PriorityNotUrgent:
		return "Not urgent"
	}
	return "Unspecified"
}

// SortByPriority orders items most urgent first. Equal ranks keep their
// relative order.
func SortByPriority(items []RepairItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return Classify(items[i]) > Classify(items[j])
	})
}
