package login

import (
	"github.com/a-h/templ"

	"fleetcheck/frontend/shared/html"
)

func GetLoginScreen(errorMessage string) templ.Component {
	return html.Bare("Sign in", "", html.Fragment(func(b *html.Builder) {
		b.Flash("", errorMessage)
		b.Raw(`<form method="POST" action="/login" class="card login">`)
		b.Raw(`<label for="employee_number">Employee number</label>`)
		b.Raw(`<input id="employee_number" name="employee_number" inputmode="numeric" autocomplete="off" required autofocus>`)
		b.Raw(`<button type="submit">Start</button></form>`)
		b.Raw(`<p class="muted"><a href="/login/admin">Administrator sign in</a></p>`)
	}))
}

func GetAdminLoginScreen(errorMessage string) templ.Component {
	return html.Bare("Administrator sign in", "", html.Fragment(func(b *html.Builder) {
		b.Flash("", errorMessage)
		b.Raw(`<form method="POST" action="/login/admin" class="card login">`)
		b.Raw(`<label for="username">Username</label><input id="username" name="username" autocomplete="username" required>`)
		b.Raw(`<label for="password">Password</label><input id="password" name="password" type="password" autocomplete="current-password" required>`)
		b.Raw(`<button type="submit">Sign in</button></form>`)
		b.Raw(`<p class="muted"><a href="/login">Employee sign in</a></p>`)
	}))
}
