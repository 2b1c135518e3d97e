package uploads

import (
	"github.com/a-h/templ"

	"fleetcheck/frontend/shared/html"
	"fleetcheck/frontend/shared/nav"
)

func UploadsPage(data PageData) templ.Component {
	return html.Page(nav.Translate(data.TopNav.Language, "uploads"), data.TopNav, html.Fragment(func(b *html.Builder) {
		b.Flash(data.Status, data.Error)

		b.Raw(`<form method="POST" action="/tasker/uploads" enctype="multipart/form-data" class="card">`)
		b.Raw(`<label for="kind">Spreadsheet</label><select id="kind" name="kind" required>`)
		for _, k := range data.Kinds {
			b.Fmt(`<option value="%s">%s</option>`, k.Name, k.Label)
		}
		b.Raw(`</select>`)
		b.Raw(`<label for="file">Workbook (.xlsx)</label><input id="file" name="file" type="file" accept=".xlsx" required>`)
		b.Raw(`<button type="submit">Upload</button></form>`)

		b.Raw(`<section class="card"><h2>Required columns</h2><ul>`)
		for _, k := range data.Kinds {
			b.Fmt(`<li><strong>%s</strong>: `, k.Label)
			for i, rule := range k.Required {
				if i > 0 {
					b.Raw(`, `)
				}
				b.Text(rule.Label)
			}
			b.Raw(`</li>`)
		}
		b.Raw(`</ul></section>`)

		if len(data.Runs) == 0 {
			return
		}
		b.Raw(`<section class="card"><h2>Recent uploads</h2><table><thead><tr><th>When</th><th>Who</th><th>Type</th><th>File</th><th class="num">Rows</th><th>Result</th></tr></thead><tbody>`)
		for _, run := range data.Runs {
			b.Fmt(`<tr class="run-%s"><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td class="num">%d</td><td>%s: %s</td></tr>`,
				run.Status, run.CreatedAt.Local().Format("02/01/2006 15:04"), run.Actor, run.Kind, run.FileName, run.RowCount, run.Status, run.Message)
		}
		b.Raw(`</tbody></table></section>`)
	}))
}
