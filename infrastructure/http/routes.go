package http

import (
	"net/http"

	adminusers "fleetcheck/frontend/adminUsers"
	"fleetcheck/frontend/checklists"
	"fleetcheck/frontend/dashboard"
	"fleetcheck/frontend/help"
	"fleetcheck/frontend/login"
	"fleetcheck/frontend/machines"
	"fleetcheck/frontend/records"
	"fleetcheck/frontend/repairs"
	"fleetcheck/frontend/settings"
	"fleetcheck/frontend/uploads"
	"fleetcheck/infrastructure/rbac"

	"github.com/go-chi/chi/v5"
)

var (
	allRoles      = []string{rbac.RoleAdmin, rbac.RoleWorkshop, rbac.RoleOperator}
	workshopRoles = []string{rbac.RoleAdmin, rbac.RoleWorkshop}
	adminOnly     = []string{rbac.RoleAdmin}
)

// RegisterLoginRoutes registers login/logout routes.
func (s *Server) RegisterLoginRoutes() {
	s.router.Get("/login", login.GetLoginScreenHandler)
	s.router.Post("/login", login.CreateLoginHandler(s.DB, s.Services.Store, s.SessionCache, s.DefaultLanguage))
	s.router.Get("/login/admin", login.GetAdminLoginScreenHandler)
	s.router.Post("/login/admin", login.CreateAdminLoginHandler(s.DB, s.SessionCache, s.UserCache, s.DefaultLanguage))
	s.router.Post("/logout", login.LogoutHandler(s.DB, s.SessionCache))
}

// RegisterAdminRoutes registers admin-only routes.
func (s *Server) RegisterAdminRoutes(r chi.Router) chi.Router {
	s.Rbac.AddAll(adminOnly, "UPLOADS_VIEW", http.MethodGet, "/tasker/uploads")
	r.Get("/uploads", uploads.UploadsPageQueryHandler(s.DB))
	s.Rbac.AddAll(adminOnly, "UPLOADS_CREATE", http.MethodPost, "/tasker/uploads")
	r.Post("/uploads", uploads.UploadCommandHandler(s.Services.Store, s.DB, s.Audit))

	s.Rbac.AddAll(adminOnly, "ADMIN_USERS_LIST_VIEW", http.MethodGet, "/tasker/admin/users")
	r.Get("/admin/users", adminusers.UsersPageQueryHandler(s.DB))
	s.Rbac.AddAll(adminOnly, "ADMIN_USERS_CREATE", http.MethodPost, "/tasker/admin/users")
	r.Post("/admin/users", adminusers.CreateUserCommandHandler(s.DB, s.Audit))
	s.Rbac.AddAll(adminOnly, "ADMIN_USERS_PASSWORD_RESET", http.MethodPost, "/tasker/admin/users/*/password")
	r.Post("/admin/users/{id}/password", adminusers.ResetPasswordCommandHandler(s.DB, s.UserCache, s.Audit))

	s.Rbac.AddAll(adminOnly, "MACHINES_ACKNOWLEDGE", http.MethodPost, "/tasker/machines/*/acknowledge")
	r.Post("/machines/{id}/acknowledge", machines.AcknowledgeMachineCommandHandler(s.Services.Machines, s.DB, s.Audit))
	return r
}

// RegisterFrontendRoutes registers authenticated routes.
func (s *Server) RegisterFrontendRoutes(r chi.Router) chi.Router {
	s.RegisterDashboardRoutes(r)
	s.RegisterChecklistRoutes(r)
	s.RegisterRepairRoutes(r)
	s.RegisterMachineRoutes(r)
	s.RegisterRecordRoutes(r)

	s.Rbac.AddAll(allRoles, "SETTINGS_VIEW", http.MethodGet, "/tasker/settings")
	r.Get("/settings", settings.SettingsPageHandler())
	s.Rbac.AddAll(allRoles, "SETTINGS_LANGUAGE_EDIT", http.MethodPost, "/tasker/settings/language")
	r.Post("/settings/language", settings.LanguageUpdateHandler(s.DB, s.SessionCache))

	s.Rbac.AddAll(allRoles, "HELP_VIEW", http.MethodGet, "/tasker/help")
	r.Get("/help", help.HelpPageQueryHandler())

	return r
}

func (s *Server) RegisterDashboardRoutes(r chi.Router) {
	s.Rbac.AddAll(workshopRoles, "DASHBOARD_VIEW", http.MethodGet, "/tasker/dashboard")
	r.Get("/dashboard", dashboard.DashboardPageQueryHandler(s.Services.Dashboard))

	s.Rbac.AddAll(workshopRoles, "DASHBOARD_API", http.MethodGet, "/tasker/api/dashboard")
	r.Get("/api/dashboard", dashboard.DashboardStatsAPIHandler(s.Services.Dashboard))
}

func (s *Server) RegisterChecklistRoutes(r chi.Router) {
	s.Rbac.AddAll(allRoles, "CHECKLIST_NEW", http.MethodGet, "/tasker/checklists/new")
	r.Get("/checklists/new", checklists.NewChecklistPageQueryHandler(s.Services.Checklists, s.Services.Store))

	s.Rbac.AddAll(allRoles, "CHECKLIST_SUBMIT", http.MethodPost, "/tasker/checklists")
	r.Post("/checklists", checklists.SubmitChecklistCommandHandler(s.Services.Checklists))
}

func (s *Server) RegisterRepairRoutes(r chi.Router) {
	s.Rbac.AddAll(allRoles, "REPAIR_REPORT_NEW", http.MethodGet, "/tasker/repairs/report")
	r.Get("/repairs/report", repairs.ReportPageQueryHandler(s.Services.Store))
	s.Rbac.AddAll(allRoles, "REPAIR_REPORT_SUBMIT", http.MethodPost, "/tasker/repairs/report")
	r.Post("/repairs/report", repairs.ReportCommandHandler(s.Services.Repairs))

	s.Rbac.AddAll(workshopRoles, "REPAIRS_VIEW", http.MethodGet, "/tasker/repairs")
	r.Get("/repairs", repairs.RepairsPageQueryHandler(s.Services.Repairs))

	s.Rbac.AddAll(workshopRoles, "REPAIRS_EXPORT", http.MethodGet, "/tasker/repairs/export.xlsx")
	r.Get("/repairs/export.xlsx", repairs.RepairsWorkbookHandler(s.Services.Repairs))

	s.Rbac.AddAll(workshopRoles, "REPAIRS_VIEW", http.MethodGet, "/tasker/repairs/*")
	r.Get("/repairs/{id}", repairs.RepairDetailQueryHandler(s.Services.Repairs, s.DB))

	s.Rbac.AddAll(workshopRoles, "REPAIRS_ACKNOWLEDGE", http.MethodPost, "/tasker/repairs/*/acknowledge")
	r.Post("/repairs/{id}/acknowledge", repairs.AcknowledgeRepairCommandHandler(s.Services.Repairs, s.DB, s.Audit))

	s.Rbac.AddAll(workshopRoles, "REPAIRS_COMPLETE", http.MethodPost, "/tasker/repairs/*/complete")
	r.Post("/repairs/{id}/complete", repairs.CompleteRepairCommandHandler(s.Services.Repairs, s.DB, s.Audit))

	s.Rbac.AddAll(workshopRoles, "REPAIRS_JOB_SHEET", http.MethodGet, "/tasker/repairs/*/job-sheet.pdf")
	r.Get("/repairs/{id}/job-sheet.pdf", repairs.RepairJobSheetPDFHandler(s.Services.Repairs))

	s.Rbac.AddAll(workshopRoles, "REPAIRS_PHOTO_VIEW", http.MethodGet, "/tasker/repairs/*/photos/*")
	r.Get("/repairs/{id}/photos/{index}", repairs.RepairPhotoQueryHandler(s.Services.Repairs))
}

func (s *Server) RegisterMachineRoutes(r chi.Router) {
	s.Rbac.AddAll(workshopRoles, "MACHINES_VIEW", http.MethodGet, "/tasker/machines")
	r.Get("/machines", machines.MachinesPageQueryHandler(s.Services.Machines))

	s.Rbac.AddAll(allRoles, "MACHINE_REQUEST", http.MethodGet, "/tasker/machines/new")
	r.Get("/machines/new", machines.RequestPageQueryHandler(s.Services.Store))
	s.Rbac.AddAll(allRoles, "MACHINE_REQUEST_SUBMIT", http.MethodPost, "/tasker/machines/new")
	r.Post("/machines/new", machines.RequestCommandHandler(s.Services.Machines))
}

func (s *Server) RegisterRecordRoutes(r chi.Router) {
	s.Rbac.AddAll(workshopRoles, "RECORDS_VIEW", http.MethodGet, "/tasker/records")
	r.Get("/records", records.RecordsPageQueryHandler(s.Services.Records, s.DB))

	s.Rbac.AddAll(workshopRoles, "RECORDS_EXPORT", http.MethodGet, "/tasker/records/export/*")
	r.Get("/records/export/{format}", records.RecordsExportHandler(s.Services.Store, s.DB))

	s.Rbac.AddAll(workshopRoles, "RECORDS_EXPORT", http.MethodGet, "/tasker/records/summary.csv")
	r.Get("/records/summary.csv", records.RecordsSummaryCSVHandler(s.Services.Records, s.DB))
}
