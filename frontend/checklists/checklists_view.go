package checklists

import (
	"net/url"

	"github.com/a-h/templ"

	"fleetcheck/frontend/shared/html"
	"fleetcheck/frontend/shared/nav"
	"fleetcheck/models"
)

var checkTypeLabels = map[string]string{
	models.CheckTypeDaily:           "Daily check",
	models.CheckTypeGraderStartup:   "Grader start-up",
	models.CheckTypeWorkshopService: "Workshop service",
}

var statusChoices = []struct {
	value string
	label string
}{
	{models.ItemSatisfactory, "OK"},
	{models.ItemUnsatisfactory, "Fault"},
	{models.ItemNotApplicable, "N/A"},
}

func ChecklistPage(data PageData) templ.Component {
	return html.Page(nav.Translate(data.TopNav.Language, "checklist"), data.TopNav, html.Fragment(func(b *html.Builder) {
		b.Flash(data.Status, data.Error)
		b.Fmt(`<p class="muted">Inspector: <strong>%s</strong></p>`, data.StaffName)

		switch data.Step {
		case StepMake:
			renderMakeStep(b, data)
		case StepModel:
			renderModelStep(b, data)
		default:
			renderItemsStep(b, data)
		}
	}))
}

func renderMakeStep(b *html.Builder, data PageData) {
	b.Raw(`<section class="card"><h2>1. Machine make</h2>`)
	if len(data.Makes) == 0 {
		b.Raw(`<p class="muted">No machines are registered.</p></section>`)
		return
	}
	b.Raw(`<ul class="choices">`)
	for _, m := range data.Makes {
		b.Fmt(`<li><a class="button" href="%s">%s</a></li>`, html.URL("/tasker/checklists/new?"+url.Values{"make": {m}}.Encode()), m)
	}
	b.Raw(`</ul></section>`)
}

func renderModelStep(b *html.Builder, data PageData) {
	b.Fmt(`<section class="card"><h2>2. %s machine</h2>`, data.Make)
	b.Raw(`<p><a href="/tasker/checklists/new">Change make</a></p>`)
	if len(data.Models) == 0 {
		b.Raw(`<p class="muted">No machines for this make.</p></section>`)
		return
	}
	b.Raw(`<ul class="choices">`)
	for _, name := range data.Models {
		q := url.Values{"make": {data.Make}, "model": {name}}
		b.Fmt(`<li><a class="button" href="%s">%s</a></li>`, html.URL("/tasker/checklists/new?"+q.Encode()), name)
	}
	b.Raw(`</ul></section>`)
}

func renderItemsStep(b *html.Builder, data PageData) {
	b.Fmt(`<section class="card"><h2>3. %s %s</h2>`, data.Make, data.Model)
	b.Raw(`<form method="GET" action="/tasker/checklists/new" class="inline">`)
	b.Fmt(`<input type="hidden" name="make" value="%s"><input type="hidden" name="model" value="%s">`, data.Make, data.Model)
	b.Raw(`<label for="check_type">Check type</label><select id="check_type" name="check_type" onchange="this.form.submit()">`)
	for _, ct := range data.CheckTypes {
		selected := ""
		if ct == data.CheckType {
			selected = " selected"
		}
		b.Fmt(`<option value="%s"%s>%s</option>`, ct, selected, checkTypeLabel(ct))
	}
	b.Raw(`</select><noscript><button type="submit">Change</button></noscript></form></section>`)

	b.Raw(`<form method="POST" action="/tasker/checklists" enctype="multipart/form-data" class="checklist">`)
	b.Fmt(`<input type="hidden" name="machine_make" value="%s">`, data.Make)
	b.Fmt(`<input type="hidden" name="machine_model" value="%s">`, data.Model)
	b.Fmt(`<input type="hidden" name="check_type" value="%s">`, data.CheckType)
	b.Fmt(`<input type="hidden" name="item_count" value="%d">`, len(data.Items))

	if len(data.Items) > 0 && !data.Templated {
		b.Raw(`<p class="muted">Using the standard daily checklist.</p>`)
	}
	for i, item := range data.Items {
		b.Raw(`<fieldset class="card item">`)
		b.Fmt(`<legend>%s</legend><input type="hidden" name="item_%d" value="%s">`, item, i, item)
		for _, choice := range statusChoices {
			b.Fmt(`<label class="radio"><input type="radio" name="status_%d" value="%s" required> %s</label>`, i, choice.value, choice.label)
		}
		b.Fmt(`<input name="notes_%d" placeholder="Notes (required for a fault)">`, i)
		b.Fmt(`<input name="photos_%d" type="file" accept="image/*" capture="environment" multiple>`, i)
		b.Raw(`</fieldset>`)
	}

	notesRequired := ""
	if data.CheckType == models.CheckTypeWorkshopService {
		notesRequired = " required"
	}
	b.Raw(`<section class="card">`)
	b.Fmt(`<label for="workshop_notes">Workshop notes</label><textarea id="workshop_notes" name="workshop_notes" rows="4"%s></textarea>`, notesRequired)
	b.Raw(`<label for="workshop_photos">Photos</label><input id="workshop_photos" name="workshop_photos" type="file" accept="image/*" capture="environment" multiple>`)
	b.Raw(`</section><button type="submit">Submit checklist</button></form>`)
}

func checkTypeLabel(ct string) string {
	if label, ok := checkTypeLabels[ct]; ok {
		return label
	}
	return ct
}
