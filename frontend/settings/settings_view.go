package settings

import (
	"github.com/a-h/templ"

	"fleetcheck/frontend/shared/html"
	"fleetcheck/frontend/shared/nav"
)

type PageData struct {
	TopNav   nav.TopNavData
	Language string
	Status   string
	Error    string
}

func SettingsPage(data PageData) templ.Component {
	return html.Page(nav.Translate(data.Language, "settings"), data.TopNav, html.Fragment(func(b *html.Builder) {
		b.Flash(data.Status, data.Error)
		b.Raw(`<form method="POST" action="/tasker/settings/language" class="card"><label for="language">Language</label><select id="language" name="language">`)
		for _, code := range nav.SupportedLanguages {
			if code == data.Language {
				b.Fmt(`<option value="%s" selected>%s</option>`, code, nav.LanguageNames[code])
				continue
			}
			b.Fmt(`<option value="%s">%s</option>`, code, nav.LanguageNames[code])
		}
		b.Raw(`</select><button type="submit">Save</button></form>`)
	}))
}
