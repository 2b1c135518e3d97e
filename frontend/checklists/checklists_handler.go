package checklists

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	checklistsvc "fleetcheck/domain/checklists"
	sessioncontext "fleetcheck/frontend/shared/context"
	"fleetcheck/frontend/shared/nav"
	"fleetcheck/frontend/shared/photos"
	"fleetcheck/models"
)

// maxItems bounds the item fields read from one form.
const maxItems = 200

// MachineCatalog lists makes and machine names.
type MachineCatalog interface {
	Makes(ctx context.Context) ([]string, error)
	MachineNames(ctx context.Context, machineMake string) ([]string, error)
}

func NewChecklistPageQueryHandler(svc *checklistsvc.Service, catalog MachineCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		q := r.URL.Query()
		data := PageData{
			TopNav:     nav.BuildTopNavData(session, "/tasker/checklists/new"),
			StaffName:  session.DisplayName,
			Make:       strings.TrimSpace(q.Get("make")),
			Model:      strings.TrimSpace(q.Get("model")),
			CheckTypes: checklistsvc.CheckTypes,
			Status:     q.Get("status"),
			Error:      q.Get("error"),
		}

		switch {
		case data.Make == "":
			data.Step = StepMake
			makes, err := catalog.Makes(r.Context())
			if err != nil {
				slog.Error("load machine makes failed", slog.Any("err", err))
				data.Error = joinMessages(data.Error, "Could not load machines: "+err.Error())
			}
			data.Makes = makes
		case data.Model == "":
			data.Step = StepModel
			names, err := catalog.MachineNames(r.Context(), data.Make)
			if err != nil {
				slog.Error("load machine names failed", slog.String("make", data.Make), slog.Any("err", err))
				data.Error = joinMessages(data.Error, "Could not load machines: "+err.Error())
			}
			data.Models = names
		default:
			data.Step = StepItems
			data.CheckType = svc.ResolveCheckType(r.Context(), data.Make, data.Model, q.Get("check_type"))
			form := svc.Form(r.Context(), data.CheckType)
			data.Items = form.Items
			data.Templated = form.Templated
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := ChecklistPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render checklist", http.StatusInternalServerError)
			return
		}
	}
}

func SubmitChecklistCommandHandler(svc *checklistsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		if err := parseForm(r); err != nil {
			http.Redirect(w, r, "/tasker/checklists/new?error="+url.QueryEscape("invalid form"), http.StatusSeeOther)
			return
		}

		machineMake := strings.TrimSpace(r.FormValue("machine_make"))
		machineModel := strings.TrimSpace(r.FormValue("machine_model"))
		checkType := r.FormValue("check_type")
		back := itemsPath(machineMake, machineModel, checkType)

		sub, err := readSubmission(r, time.Now())
		if err != nil {
			http.Redirect(w, r, back+"&error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
			return
		}
		sub.EmployeeNumber = session.EmployeeNumber
		if sub.EmployeeNumber == "" {
			sub.EmployeeNumber = session.ActorKey()
		}
		sub.StaffName = session.DisplayName

		created, err := svc.Submit(r.Context(), sub)
		if err != nil {
			var verr *checklistsvc.ValidationError
			if errors.As(err, &verr) {
				http.Redirect(w, r, back+"&error="+url.QueryEscape(verr.Error()), http.StatusSeeOther)
				return
			}
			slog.Error("submit checklist failed",
				slog.String("make", machineMake),
				slog.String("model", machineModel),
				slog.Any("err", err))
			http.Redirect(w, r, back+"&error="+url.QueryEscape("Failed to save checklist: "+err.Error()), http.StatusSeeOther)
			return
		}

		slog.Info("checklist submitted",
			slog.String("record_id", created.ID),
			slog.String("check_type", created.CheckType),
			slog.String("actor", session.ActorKey()))
		http.Redirect(w, r, "/tasker/checklists/new?status="+url.QueryEscape("Checklist completed successfully"), http.StatusSeeOther)
	}
}

func readSubmission(r *http.Request, now time.Time) (checklistsvc.Submission, error) {
	sub := checklistsvc.Submission{
		MachineMake:   r.FormValue("machine_make"),
		MachineModel:  r.FormValue("machine_model"),
		CheckType:     r.FormValue("check_type"),
		WorkshopNotes: r.FormValue("workshop_notes"),
	}

	count, err := strconv.Atoi(r.FormValue("item_count"))
	if err != nil || count < 0 || count > maxItems {
		count = 0
	}
	sub.Items = make([]checklistsvc.Item, 0, count)
	for i := 0; i < count; i++ {
		attached, err := photos.FromRequest(r, fmt.Sprintf("photos_%d", i), now)
		if err != nil {
			return checklistsvc.Submission{}, fmt.Errorf("item %d photo: %w", i+1, err)
		}
		status := r.FormValue(fmt.Sprintf("status_%d", i))
		if status == "" {
			status = models.ItemUnchecked
		}
		sub.Items = append(sub.Items, checklistsvc.Item{
			Item:   r.FormValue(fmt.Sprintf("item_%d", i)),
			Status: status,
			Notes:  r.FormValue(fmt.Sprintf("notes_%d", i)),
			Photos: attached,
		})
	}

	workshopPhotos, err := photos.FromRequest(r, "workshop_photos", now)
	if err != nil {
		return checklistsvc.Submission{}, fmt.Errorf("workshop photo: %w", err)
	}
	sub.WorkshopPhotos = workshopPhotos
	return sub, nil
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data") {
		return r.ParseMultipartForm(32 << 20)
	}
	return r.ParseForm()
}

func itemsPath(machineMake, machineModel, checkType string) string {
	q := url.Values{}
	q.Set("make", machineMake)
	q.Set("model", machineModel)
	if checkType != "" {
		q.Set("check_type", checkType)
	}
	return "/tasker/checklists/new?" + q.Encode()
}

func joinMessages(a, b string) string {
	if a == "" {
		return b
	}
	return a + " / " + b
}
