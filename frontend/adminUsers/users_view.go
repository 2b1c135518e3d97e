package adminusers

import (
	"github.com/a-h/templ"

	"fleetcheck/frontend/shared/html"
	"fleetcheck/frontend/shared/nav"
)

func UsersListPage(data PageData) templ.Component {
	return html.Page(nav.Translate(data.TopNav.Language, "users"), data.TopNav, html.Fragment(func(b *html.Builder) {
		b.Flash(data.Status, data.ErrorMessage)
		b.Raw(`<p class="muted">Local accounts sign in at <a href="/login/admin">/login/admin</a>. Employees sign in with their employee number.</p>`)

		b.Raw(`<table><thead><tr><th>Username</th><th>Role</th><th>Updated</th><th>New password</th></tr></thead><tbody>`)
		for _, u := range data.Users {
			b.Fmt(`<tr><td>%s</td><td>%s</td><td>%s</td>`, u.Username, u.Role, u.UpdatedAt)
			b.Fmt(`<td><form method="POST" action="/tasker/admin/users/%d/password" class="inline">`, u.ID)
			b.Raw(`<input type="password" name="password" autocomplete="new-password" required><button type="submit">Set</button></form></td></tr>`)
		}
		b.Raw(`</tbody></table>`)

		b.Raw(`<form method="POST" action="/tasker/admin/users" class="card"><h2>New account</h2>`)
		b.Raw(`<label for="username">Username</label><input id="username" name="username" required>`)
		b.Raw(`<label for="password">Password</label><input id="password" name="password" type="password" autocomplete="new-password" required>`)
		b.Raw(`<label for="role">Role</label><select id="role" name="role">`)
		for _, role := range data.Roles {
			b.Fmt(`<option value="%s">%s</option>`, role, role)
		}
		b.Raw(`</select><button type="submit">Create</button></form>`)
	}))
}
