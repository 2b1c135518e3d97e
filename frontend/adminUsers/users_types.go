package adminusers

import "fleetcheck/frontend/shared/nav"

type UserView struct {
	ID        int64  `bun:"id"`
	Username  string `bun:"username"`
	Role      string `bun:"role"`
	UpdatedAt string `bun:"updated_at"`
}

type PageData struct {
	TopNav       nav.TopNavData
	Users        []UserView
	Roles        []string
	Status       string
	ErrorMessage string
}
