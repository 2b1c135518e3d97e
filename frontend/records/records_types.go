package records

import (
	"time"

	"fleetcheck/frontend/shared/nav"
	"fleetcheck/models"
)

// Limits offered on the records page; 0 lists everything.
var Limits = []int{50, 200, 0}

const defaultLimit = 50

type RecordRow struct {
	models.ChecklistRecord
	Faults int
	Photos int
}

type ExportRun struct {
	Actor      string    `bun:"actor"`
	ExportType string    `bun:"export_type"`
	CreatedAt  time.Time `bun:"created_at"`
}

type PageData struct {
	TopNav    nav.TopNavData
	Limit     int
	Limits    []int
	Rows      []RecordRow
	Exports   []ExportRun
	CanExport bool
	Status    string
	Error     string
}
