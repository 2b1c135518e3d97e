package repairs

import (
	"fmt"
	"net/url"

	"github.com/a-h/templ"

	repairsvc "fleetcheck/domain/repairs"
	"fleetcheck/frontend/shared/html"
	"fleetcheck/frontend/shared/nav"
)

func RepairsPage(data PageData) templ.Component {
	return html.Page(nav.Translate(data.TopNav.Language, "repairs"), data.TopNav, html.Fragment(func(b *html.Builder) {
		b.Flash(data.Status, data.Error)

		b.Raw(`<nav class="tabs">`)
		tab(b, repairsvc.ViewNew, "New", data.NewCount, data.View)
		tab(b, repairsvc.ViewDue, "Due", data.DueCount, data.View)
		tab(b, repairsvc.ViewCompleted, "Completed", data.CompletedCount, data.View)
		if data.CanExport {
			b.Raw(`<a class="button secondary" href="/tasker/repairs/export.xlsx">Download workbook</a>`)
		}
		b.Raw(`</nav>`)

		if len(data.Items) == 0 {
			b.Raw(`<p class="muted">No repairs in this view.</p>`)
			return
		}

		b.Raw(`<table class="repairs"><thead><tr><th>Priority</th><th>Machine</th><th>Issue</th><th>Reported by</th><th>Reported</th><th>Photos</th><th></th></tr></thead><tbody>`)
		for _, item := range data.Items {
			detail := detailPath(item.ID)
			b.Fmt(`<tr class="priority-%s">`, item.Priority.Style())
			b.Fmt(`<td><span class="badge badge-%s">%s</span></td>`, item.Priority.Style(), item.Priority.Label())
			b.Fmt(`<td>%s</td>`, item.Machine())
			b.Fmt(`<td><strong>%s</strong>`, item.Item)
			if item.Notes != "" {
				b.Fmt(`<br><span class="muted">%s</span>`, item.Notes)
			}
			b.Raw(`</td>`)
			b.Fmt(`<td>%s</td><td>%s</td>`, item.StaffName, displayDate(item.Date))
			if len(item.Photos) > 0 {
				b.Fmt(`<td><img class="thumb" alt="photo" loading="lazy" src="%s"></td>`, html.URL(detail+"/photos/0"))
			} else {
				b.Raw(`<td>-</td>`)
			}
			b.Fmt(`<td class="actions"><a href="%s">Open</a>`, html.URL(detail))
			if data.View == repairsvc.ViewNew && data.CanAcknowledge {
				b.Fmt(`<form method="POST" action="%s" class="inline"><input type="hidden" name="return" value="/tasker/repairs?view=new"><button type="submit">Acknowledge</button></form>`, html.URL(detail+"/acknowledge"))
			}
			b.Raw(`</td></tr>`)
		}
		b.Raw(`</tbody></table>`)
	}))
}

func RepairDetailPage(data DetailData) templ.Component {
	item := data.Item
	return html.Page("Repair "+item.ID, data.TopNav, html.Fragment(func(b *html.Builder) {
		b.Flash(data.Status, data.Error)
		detail := detailPath(item.ID)

		b.Fmt(`<section class="card"><p><span class="badge badge-%s">%s</span> <span class="state state-%s">%s</span></p>`,
			item.Priority.Style(), item.Priority.Label(), item.State.String(), item.State.String())
		b.Raw(`<dl class="facts">`)
		fact(b, "Machine", item.Machine())
		fact(b, "Issue", item.Item)
		fact(b, "Notes", item.Notes)
		if item.Urgency != "" {
			fact(b, "Urgency", item.Urgency)
		}
		fact(b, "Reported by", item.StaffName)
		fact(b, "Reported", displayDate(item.Date))
		fact(b, "Check type", item.CheckType)
		fact(b, "Source record", item.RecordID)
		b.Raw(`</dl>`)
		b.Fmt(`<p><a class="button secondary" href="%s" target="_blank">Print job sheet</a></p></section>`, html.URL(detail+"/job-sheet.pdf"))

		if len(item.Photos) > 0 {
			b.Raw(`<section class="card photos">`)
			for i := range item.Photos {
				src := fmt.Sprintf("%s/photos/%d", detail, i)
				b.Fmt(`<a href="%s" target="_blank"><img class="thumb" alt="photo" loading="lazy" src="%s"></a>`, html.URL(src+"?full=1"), html.URL(src))
			}
			b.Raw(`</section>`)
		}

		if item.State == repairsvc.StateNew && data.CanAcknowledge {
			b.Fmt(`<form method="POST" action="%s" class="card"><input type="hidden" name="return" value="%s"><button type="submit">Acknowledge</button></form>`, html.URL(detail+"/acknowledge"), detail)
		}
		if item.State != repairsvc.StateCompleted && data.CanComplete {
			b.Fmt(`<form method="POST" action="%s" enctype="multipart/form-data" class="card">`, html.URL(detail+"/complete"))
			b.Raw(`<h2>Complete repair</h2><label for="notes">Repair notes</label><textarea id="notes" name="notes" rows="4" required></textarea>`)
			b.Raw(`<label for="photos">Photos</label><input id="photos" name="photos" type="file" accept="image/*" capture="environment" multiple>`)
			b.Raw(`<button type="submit">Mark completed</button></form>`)
		}

		if len(data.Audit) > 0 {
			b.Raw(`<section class="card"><h2>History</h2><table><thead><tr><th>When</th><th>Who</th><th>Action</th></tr></thead><tbody>`)
			for _, a := range data.Audit {
				b.Fmt(`<tr><td>%s</td><td>%s</td><td>%s</td></tr>`, a.CreatedAt.Local().Format("02/01/2006 15:04"), a.Actor, a.Action)
			}
			b.Raw(`</tbody></table></section>`)
		}
	}))
}

func ReportPage(data ReportPageData) templ.Component {
	return html.Page(nav.Translate(data.TopNav.Language, "report"), data.TopNav, html.Fragment(func(b *html.Builder) {
		b.Flash(data.Status, data.Error)
		b.Raw(`<form method="POST" action="/tasker/repairs/report" enctype="multipart/form-data" class="card">`)
		b.Raw(`<label for="machine_make">Machine make</label><input id="machine_make" name="machine_make" list="makes" required>`)
		b.Raw(`<datalist id="makes">`)
		for _, m := range data.Makes {
			b.Fmt(`<option value="%s">`, m)
		}
		b.Raw(`</datalist>`)
		b.Raw(`<label for="machine_model">Machine name / model</label><input id="machine_model" name="machine_model" required>`)
		b.Raw(`<fieldset><legend>Urgency</legend>`)
		for _, u := range data.Urgencies {
			b.Fmt(`<label class="choice"><input type="radio" name="urgency" value="%s" required> %s</label>`, u, u)
		}
		b.Raw(`</fieldset>`)
		b.Raw(`<label for="description">Problem description</label><textarea id="description" name="description" rows="5" required></textarea>`)
		b.Raw(`<label for="photos">Photos</label><input id="photos" name="photos" type="file" accept="image/*" capture="environment" multiple>`)
		b.Raw(`<button type="submit">Submit report</button></form>`)
	}))
}

func tab(b *html.Builder, view, label string, count int, active string) {
	class := "tab"
	if view == active {
		class += " active"
	}
	b.Fmt(`<a class="%s" href="%s">%s <span class="count">%d</span></a>`, class, html.URL("/tasker/repairs?view="+url.QueryEscape(view)), label, count)
}

func fact(b *html.Builder, label, value string) {
	if value == "" {
		value = "-"
	}
	b.Fmt(`<dt>%s</dt><dd>%s</dd>`, label, value)
}

func detailPath(id string) string {
	return "/tasker/repairs/" + url.PathEscape(id)
}
