package repairs

import "strings"

// Canonical urgency labels offered by the general repair form.
const (
	UrgencyStopped   = "Breakdown has stopped machine"
	UrgencyASAP      = "Needs attention ASAP but still running"
	UrgencyNotUrgent = "Not urgent"
)

// UrgencyOptions lists the form choices, most urgent first.
var UrgencyOptions = []string{UrgencyStopped, UrgencyASAP, UrgencyNotUrgent}

const (
	reportHeader      = "general repair report:"
	urgencyPrefix     = "urgency level:"
	descriptionPrefix = "problem description:"
	keywordStopped    = "stopped machine"
	keywordASAP       = "asap but still running"
	keywordNotUrgent  = "not urgent"
)

// ParseUrgency reads the urgency label and the problem description out of a
// GENERAL REPAIR workshop_notes blob. A structured "Urgency Level:" line wins
// over keyword matches anywhere in the text. Urgency is empty when neither
// form is present.
func ParseUrgency(notes string) (urgency, description string) {
	notes = strings.ReplaceAll(notes, "\r\n", "\n")
	found := false
	kept := make([]string, 0)
	for _, line := range strings.Split(notes, "\n") {
		trimmed := strings.TrimSpace(line)
		if rest, ok := cutPrefixFold(trimmed, reportHeader); ok {
			if rest = strings.TrimSpace(rest); rest != "" {
				kept = append(kept, rest)
			}
			continue
		}
		if rest, ok := cutPrefixFold(trimmed, urgencyPrefix); ok {
			if !found {
				urgency = strings.TrimSpace(rest)
				found = urgency != ""
			}
			continue
		}
		if rest, ok := cutPrefixFold(trimmed, descriptionPrefix); ok {
			kept = append(kept, strings.TrimSpace(rest))
			continue
		}
		kept = append(kept, line)
	}
	description = strings.TrimSpace(strings.Join(kept, "\n"))

	if !found {
		urgency = keywordUrgency(notes)
	}
	return urgency, description
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

func keywordUrgency(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, keywordStopped):
		return UrgencyStopped
	case strings.Contains(lower, keywordASAP):
		return UrgencyASAP
	case strings.Contains(lower, keywordNotUrgent):
		return UrgencyNotUrgent
	}
	return ""
}

// ComposeReport builds workshop_notes in the structured form ParseUrgency reads.
func ComposeReport(urgency, description string) string {
	return "GENERAL REPAIR REPORT:\nUrgency Level: " + strings.TrimSpace(urgency) +
		"\nProblem Description: " + strings.TrimSpace(description)
}
