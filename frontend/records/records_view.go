package records

import (
	"strconv"

	"github.com/a-h/templ"

	"fleetcheck/frontend/shared/html"
	"fleetcheck/frontend/shared/nav"
)

func RecordsPage(data PageData) templ.Component {
	return html.Page(nav.Translate(data.TopNav.Language, "records"), data.TopNav, html.Fragment(func(b *html.Builder) {
		b.Flash(data.Status, data.Error)

		b.Raw(`<nav class="tabs">`)
		for _, l := range data.Limits {
			label := "Latest " + strconv.Itoa(l)
			if l == 0 {
				label = "All"
			}
			class := ""
			if l == data.Limit {
				class = ` class="active"`
			}
			b.Raw(`<a href="/tasker/records?limit=` + strconv.Itoa(l) + `"` + class + `>`)
			b.Text(label)
			b.Raw(`</a>`)
		}
		b.Raw(`</nav>`)

		if data.CanExport {
			b.Raw(`<p class="actions">`)
			b.Raw(`<a class="button" href="/tasker/records/export/csv">Export CSV</a> `)
			b.Raw(`<a class="button" href="/tasker/records/export/excel">Export Excel</a> `)
			b.Fmt(`<a class="button secondary" href="/tasker/records/summary.csv?limit=%d">Summary CSV</a>`, data.Limit)
			b.Raw(`</p>`)
		}

		if len(data.Rows) == 0 {
			b.Raw(`<p class="muted">No records.</p>`)
		} else {
			b.Raw(`<table><thead><tr><th>Completed</th><th>Staff</th><th>Machine</th><th>Check type</th><th class="num">Items</th><th class="num">Faults</th><th class="num">Photos</th></tr></thead><tbody>`)
			for _, row := range data.Rows {
				rowClass := ""
				if row.Faults > 0 {
					rowClass = ` class="has-faults"`
				}
				b.Raw(`<tr` + rowClass + `>`)
				b.Fmt(`<td>%s</td><td>%s</td><td>%s %s</td><td>%s</td>`, row.CompletedAt, row.StaffName, row.MachineMake, row.MachineModel, row.CheckType)
				b.Fmt(`<td class="num">%d</td><td class="num">%d</td><td class="num">%d</td></tr>`, len(row.ChecklistItems), row.Faults, row.Photos)
			}
			b.Raw(`</tbody></table>`)
		}

		if len(data.Exports) > 0 {
			b.Raw(`<section class="card"><h2>Recent exports</h2><table><thead><tr><th>When</th><th>Who</th><th>Type</th></tr></thead><tbody>`)
			for _, run := range data.Exports {
				b.Fmt(`<tr><td>%s</td><td>%s</td><td>%s</td></tr>`, run.CreatedAt.Local().Format("02/01/2006 15:04"), run.Actor, run.ExportType)
			}
			b.Raw(`</tbody></table></section>`)
		}
	}))
}
