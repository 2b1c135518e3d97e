package dashboard

import (
	"github.com/a-h/templ"

	dashboardsvc "fleetcheck/domain/dashboard"
	"fleetcheck/frontend/shared/html"
	"fleetcheck/frontend/shared/nav"
)

type PageData struct {
	TopNav      nav.TopNavData
	Permissions map[string]int
	Stats       dashboardsvc.Stats
	Status      string
	Error       string
}

func DashboardPage(data PageData) templ.Component {
	return html.Page(nav.Translate(data.TopNav.Language, "dashboard"), data.TopNav, html.Fragment(func(b *html.Builder) {
		b.Flash(data.Status, data.Error)
		s := data.Stats

		b.Raw(`<section class="cards">`)
		card(b, "Total records", s.Total, "")
		card(b, "Completed today", s.TodayTotal, "")
		if data.Permissions["REPAIRS_VIEW"] == 1 {
			card(b, "Repairs awaiting acknowledgment", s.NonAcknowledgedRepairs, "/tasker/repairs?view=new")
			card(b, "Repairs due", s.RepairsDue, "/tasker/repairs?view=due")
			card(b, "Repairs completed (7 days)", s.RepairsCompletedLast7Days, "/tasker/repairs?view=completed")
		} else {
			card(b, "Repairs awaiting acknowledgment", s.NonAcknowledgedRepairs, "")
			card(b, "Repairs due", s.RepairsDue, "")
			card(b, "Repairs completed (7 days)", s.RepairsCompletedLast7Days, "")
		}
		if data.Permissions["MACHINES_VIEW"] == 1 {
			card(b, "Pending machine additions", s.PendingMachineAdditions, "/tasker/machines")
		} else {
			card(b, "Pending machine additions", s.PendingMachineAdditions, "")
		}
		b.Raw(`</section>`)

		b.Raw(`<section class="card"><h2>Today by type</h2>`)
		if len(s.TodayByType) == 0 {
			b.Raw(`<p class="muted">Nothing submitted today.</p></section>`)
			return
		}
		b.Raw(`<table><thead><tr><th>Category</th><th class="num">Count</th></tr></thead><tbody>`)
		for _, c := range s.TodayByType {
			b.Fmt(`<tr><td>%s</td><td class="num">%d</td></tr>`, c.Category, c.Count)
		}
		b.Fmt(`</tbody><tfoot><tr><th>Total</th><th class="num">%d</th></tr></tfoot></table></section>`, s.TodayTotal)
	}))
}

func card(b *html.Builder, label string, value int, href string) {
	if href == "" {
		b.Fmt(`<div class="stat"><span class="value">%d</span><span class="label">%s</span></div>`, value, label)
		return
	}
	b.Fmt(`<a class="stat" href="%s"><span class="value">%d</span><span class="label">%s</span></a>`, html.URL(href), value, label)
}
