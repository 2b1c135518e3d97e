package login

import "net/http"

// GetLoginScreenHandler renders the employee number screen.
func GetLoginScreenHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := GetLoginScreen(r.URL.Query().Get("error")).Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render login screen", http.StatusInternalServerError)
		return
	}
}

// GetAdminLoginScreenHandler renders the local admin password screen.
func GetAdminLoginScreenHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := GetAdminLoginScreen(r.URL.Query().Get("error")).Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render login screen", http.StatusInternalServerError)
		return
	}
}
