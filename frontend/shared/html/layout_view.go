package html

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"fleetcheck/frontend/shared/nav"
)

// Page wraps body in the document shell with the top navigation.
func Page(title string, topNav nav.TopNavData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lang := topNav.Language
		if lang == "" {
			lang = nav.DefaultLanguage
		}
		var head Builder
		head.Fmt(`<!doctype html><html lang="%s"><head><meta charset="utf-8">`, lang)
		head.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		head.Fmt(`<title>%s - FleetCheck</title>`, title)
		head.Raw(`<link rel="stylesheet" href="/assets/app.css"></head><body>`)
		if topNav.DisplayName != "" {
			renderTopNav(&head, topNav)
		}
		head.Fmt(`<main class="page"><h1>%s</h1>`, title)
		if _, err := io.WriteString(w, head.String()); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</main>"+CSRFFormScript()+"</body></html>")
		return err
	})
}

// Bare renders a page without navigation, used by the login screens.
func Bare(title, language string, body templ.Component) templ.Component {
	return Page(title, nav.TopNavData{Language: language}, body)
}

func renderTopNav(b *Builder, data nav.TopNavData) {
	b.Raw(`<nav class="topnav"><span class="brand">FleetCheck</span><ul>`)
	for _, link := range data.Links {
		b.Fmt(`<li><a href="%s"`, URL(link.Href))
		if link.Active {
			b.Raw(` class="active"`)
		}
		b.Fmt(`>%s</a></li>`, link.Label)
	}
	b.Raw(`</ul>`)
	b.Fmt(`<span class="who">%s (%s)</span>`, data.DisplayName, data.Role)
	b.Fmt(`<form method="POST" action="/logout" class="inline"><button type="submit">%s</button></form>`, data.LogoutLabel)
	b.Raw(`</nav>`)
}
