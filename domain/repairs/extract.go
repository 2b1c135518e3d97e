package repairs

import (
	"fmt"

	"fleetcheck/models"
)

// Extract emits one item per unsatisfactory checklist entry and one per
// GENERAL REPAIR record, in record order then item order.
func Extract(records []models.ChecklistRecord) []RepairItem {
	out := make([]RepairItem, 0)
	for _, rec := range records {
		for i, it := range rec.ChecklistItems {
			if it.Status != models.ItemUnsatisfactory {
				continue
			}
			item := fromRecord(rec)
			item.ID = fmt.Sprintf("%s-%d", rec.ID, i)
			item.ItemIndex = i
			item.Source = SourceUnsatisfactoryItem
			item.Item = it.Item
			item.Notes = it.Notes
			item.Photos = it.Photos
			out = append(out, item)
		}
		if rec.CheckType == models.CheckTypeGeneralRepair {
			urgency, description := ParseUrgency(rec.WorkshopNotes)
			item := fromRecord(rec)
			item.ID = rec.ID + "-general"
			item.ItemIndex = GeneralItemIndex
			item.Source = SourceGeneralRepair
			item.Item = GeneralItemLabel
			item.Notes = description
			item.Photos = rec.WorkshopPhotos
			item.Urgency = urgency
			out = append(out, item)
		}
	}
	return out
}

func fromRecord(rec models.ChecklistRecord) RepairItem {
	return RepairItem{
		RecordID:       rec.ID,
		MachineMake:    rec.MachineMake,
		MachineModel:   rec.MachineModel,
		StaffName:      rec.StaffName,
		EmployeeNumber: rec.EmployeeNumber,
		CheckType:      rec.CheckType,
		Date:           rec.CompletedAt,
	}
}
