package machines

import (
	"net/url"

	"github.com/a-h/templ"

	"fleetcheck/frontend/shared/html"
)

func MachinesPage(data PageData) templ.Component {
	return html.Page("Pending machine additions", data.TopNav, html.Fragment(func(b *html.Builder) {
		b.Flash(data.Status, data.Error)
		b.Raw(`<p><a class="button secondary" href="/tasker/machines/new">Request a new machine</a></p>`)

		if len(data.Pending) == 0 {
			b.Raw(`<p class="muted">No machine additions are waiting.</p>`)
			return
		}
		b.Raw(`<table><thead><tr><th>Make</th><th>Model</th><th>Requested by</th><th>Requested</th><th>Notes</th><th></th></tr></thead><tbody>`)
		for _, rec := range data.Pending {
			b.Fmt(`<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>`,
				rec.MachineMake, rec.MachineModel, rec.StaffName, rec.CompletedAt, rec.WorkshopNotes)
			if data.CanAcknowledge {
				b.Fmt(`<form method="POST" action="%s" class="inline"><button type="submit">Acknowledge</button></form>`,
					html.URL("/tasker/machines/"+url.PathEscape(rec.ID)+"/acknowledge"))
			}
			b.Raw(`</td></tr>`)
		}
		b.Raw(`</tbody></table>`)
	}))
}

func RequestPage(data RequestPageData) templ.Component {
	return html.Page("Request a new machine", data.TopNav, html.Fragment(func(b *html.Builder) {
		b.Flash(data.Status, data.Error)
		b.Raw(`<form method="POST" action="/tasker/machines/new" class="card">`)
		b.Raw(`<label for="machine_make">Make</label><input id="machine_make" name="machine_make" list="makes" required>`)
		b.Raw(`<datalist id="makes">`)
		for _, m := range data.Makes {
			b.Fmt(`<option value="%s">`, m)
		}
		b.Raw(`</datalist>`)
		b.Raw(`<label for="machine_model">Model / name</label><input id="machine_model" name="machine_model" required>`)
		b.Raw(`<label for="notes">Notes</label><textarea id="notes" name="notes" rows="3"></textarea>`)
		b.Raw(`<button type="submit">Send request</button></form>`)
	}))
}
