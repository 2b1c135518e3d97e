package help

import (
	"github.com/a-h/templ"

	"fleetcheck/frontend/shared/html"
	"fleetcheck/frontend/shared/nav"
)

func HelpPage(data PageData) templ.Component {
	return html.Page(nav.Translate(data.TopNav.Language, "help"), data.TopNav, html.Fragment(func(b *html.Builder) {
		b.Raw(`<section class="card"><h2>Daily checks</h2><ol>`)
		b.Raw(`<li>Open <a href="/tasker/checklists/new">Checklist</a> and pick the machine make, then the machine.</li>`)
		b.Raw(`<li>The check type is chosen for you. Change it only when you are doing a different kind of check.</li>`)
		b.Raw(`<li>Answer every item. A fault needs a short explanation and, if you can, a photo.</li>`)
		b.Raw(`<li>Workshop services need workshop notes instead of item answers.</li>`)
		b.Raw(`</ol></section>`)

		b.Raw(`<section class="card"><h2>Reporting a problem</h2>`)
		b.Raw(`<p>Use <a href="/tasker/repairs/report">Report</a> for problems found outside a check. Choose how urgent it is and describe it.</p>`)
		b.Raw(`<p>New machines that are not listed can be requested from <a href="/tasker/machines/new">the machine request form</a>.</p></section>`)

		if data.IsWorkshop || data.IsAdmin {
			b.Raw(`<section class="card"><h2>Workshop repairs</h2><ul>`)
			b.Raw(`<li><strong>New</strong> lists faults nobody has looked at yet. Acknowledge them to move them to Due.</li>`)
			b.Raw(`<li><strong>Due</strong> is sorted most urgent first. Safety faults from checklists always come first.</li>`)
			b.Raw(`<li>Complete a repair with notes describing the work. This records a REPAIR COMPLETED entry.</li>`)
			b.Raw(`<li>Print a job sheet from the repair page to take to the machine.</li>`)
			b.Raw(`</ul></section>`)
		}

		if data.IsAdmin {
			b.Raw(`<section class="card"><h2>Administration</h2><ul>`)
			b.Raw(`<li>Acknowledge machine additions once the machine is set up in the asset list.</li>`)
			b.Raw(`<li>Upload staff, asset and checklist template spreadsheets from <a href="/tasker/uploads">Uploads</a>.</li>`)
			b.Raw(`<li>Export every record from <a href="/tasker/records">Records</a>.</li>`)
			b.Raw(`</ul></section>`)
		}

		if data.IsOperator {
			b.Raw(`<p class="muted">Ask the workshop if a fault you reported has not been picked up.</p>`)
		}
	}))
}
