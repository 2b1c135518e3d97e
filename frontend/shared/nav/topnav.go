package nav

import (
	"strings"

	"fleetcheck/models"
)

const DefaultLanguage = "en"

// SupportedLanguages is the order shown in the settings picker.
var SupportedLanguages = []string{"en", "ro", "bg", "lt"}

// LanguageNames are the native names of SupportedLanguages.
var LanguageNames = map[string]string{
	"en": "English",
	"ro": "Română",
	"bg": "Български",
	"lt": "Lietuvių",
}

var labels = map[string]map[string]string{
	"en": {
		"dashboard": "Dashboard", "checklist": "New checklist", "report": "Report repair", "newMachine": "Request machine",
		"repairs": "Repairs", "machines": "Machines", "records": "Records",
		"uploads": "Uploads", "users": "Admin users", "settings": "Settings", "help": "Help", "logout": "Log out",
	},
	"ro": {
		"dashboard": "Panou", "checklist": "Verificare nouă", "report": "Raportează defect", "newMachine": "Solicită utilaj",
		"repairs": "Reparații", "machines": "Utilaje", "records": "Înregistrări",
		"uploads": "Încărcări", "users": "Administratori", "settings": "Setări", "help": "Ajutor", "logout": "Deconectare",
	},
	"bg": {
		"dashboard": "Табло", "checklist": "Нова проверка", "report": "Докладвай повреда", "newMachine": "Заяви машина",
		"repairs": "Ремонти", "machines": "Машини", "records": "Записи",
		"uploads": "Качване", "users": "Администратори", "settings": "Настройки", "help": "Помощ", "logout": "Изход",
	},
	"lt": {
		"dashboard": "Suvestinė", "checklist": "Naujas patikrinimas", "report": "Pranešti apie gedimą", "newMachine": "Prašyti mašinos",
		"repairs": "Remontai", "machines": "Mašinos", "records": "Įrašai",
		"uploads": "Įkėlimai", "users": "Administratoriai", "settings": "Nustatymai", "help": "Pagalba", "logout": "Atsijungti",
	},
}

// Link is one navigation entry.
type Link struct {
	Code   string
	Href   string
	Label  string
	Active bool
}

// TopNavData is shared with page renderers.
type TopNavData struct {
	DisplayName string
	Role        string
	Language    string
	LogoutLabel string
	Links       []Link
}

var menu = []struct {
	code string
	key  string
	href string
}{
	{code: "DASHBOARD_VIEW", key: "dashboard", href: "/tasker/dashboard"},
	{code: "CHECKLIST_NEW", key: "checklist", href: "/tasker/checklists/new"},
	{code: "REPAIR_REPORT_NEW", key: "report", href: "/tasker/repairs/report"},
	{code: "MACHINE_REQUEST", key: "newMachine", href: "/tasker/machines/new"},
	{code: "REPAIRS_VIEW", key: "repairs", href: "/tasker/repairs"},
	{code: "MACHINES_VIEW", key: "machines", href: "/tasker/machines"},
	{code: "RECORDS_VIEW", key: "records", href: "/tasker/records"},
	{code: "UPLOADS_VIEW", key: "uploads", href: "/tasker/uploads"},
	{code: "ADMIN_USERS_LIST_VIEW", key: "users", href: "/tasker/admin/users"},
	{code: "SETTINGS_VIEW", key: "settings", href: "/tasker/settings"},
	{code: "HELP_VIEW", key: "help", href: "/tasker/help"},
}

// NormalizeLanguage returns a supported language code, falling back to English.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if _, ok := labels[lang]; ok {
		return lang
	}
	return DefaultLanguage
}

// Translate returns the navigation label for key in lang.
func Translate(lang, key string) string {
	if v, ok := labels[NormalizeLanguage(lang)][key]; ok {
		return v
	}
	return labels[DefaultLanguage][key]
}

// BuildTopNavData filters the menu by the session's screen permissions.
func BuildTopNavData(session models.Session, activePath string) TopNavData {
	lang := NormalizeLanguage(session.Language)
	data := TopNavData{
		DisplayName: session.DisplayName,
		Role:        session.Role,
		Language:    lang,
		LogoutLabel: Translate(lang, "logout"),
	}
	for _, item := range menu {
		if session.ScreenPermissions[item.code] != 1 {
			continue
		}
		data.Links = append(data.Links, Link{
			Code:   item.code,
			Href:   item.href,
			Label:  Translate(lang, item.key),
			Active: activePath == item.href,
		})
	}
	return data
}
