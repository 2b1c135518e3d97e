// Package recordstoretest runs an in-memory record store for tests.
package recordstoretest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"fleetcheck/models"
)

// Upload is one reference spreadsheet received by the fake store.
type Upload struct {
	Kind     string
	FileName string
	Size     int
}

// Server is a fake record store. Records are returned newest first.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	records    []models.ChecklistRecord
	employees  map[string]models.Employee
	assets     map[string][]string
	checkTypes map[string]string
	templates  map[string][]string
	staff      []models.Staff
	uploads    []Upload
	listCalls  int
	nextID     int
	failCreate bool

	Now func() time.Time
}

// NewServer starts a fake store seeded with records (given newest first).
func NewServer(t testing.TB, records ...models.ChecklistRecord) *Server {
	t.Helper()
	s := &Server{
		records:    append([]models.ChecklistRecord(nil), records...),
		employees:  make(map[string]models.Employee),
		assets:     make(map[string][]string),
		checkTypes: make(map[string]string),
		templates:  make(map[string][]string),
		Now:        time.Now,
	}

	r := chi.NewRouter()
	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Get("/api/checklists", s.listChecklists)
	r.Post("/api/checklists", s.createChecklist)
	r.Get("/api/checklists/export/csv", s.exportCSV)
	r.Get("/api/checklists/export/excel", s.exportExcel)
	r.Post("/api/auth/employee-login", s.employeeLogin)
	r.Get("/api/staff", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, s.staff)
	})
	r.Get("/api/assets/makes", s.makes)
	r.Get("/api/assets/names/{make}", s.names)
	r.Get("/api/assets/checktype/{make}/{name}", s.checkType)
	r.Get("/api/checklist-templates/{checkType}", s.template)
	r.Post("/api/admin/upload/{kind}", s.upload)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Server.Close)
	return s
}

// AddEmployee registers a directory entry for employee login.
func (s *Server) AddEmployee(e models.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.EmployeeNumber] = e
	s.staff = append(s.staff, models.Staff{ID: e.EmployeeNumber, Name: e.Name, EmployeeNumber: e.EmployeeNumber})
}

// AddMachine registers a machine and the template check type it uses.
func (s *Server) AddMachine(machineMake, name, checkType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[machineMake] = append(s.assets[machineMake], name)
	s.checkTypes[machineMake+"/"+name] = checkType
}

// AddTemplate registers a checklist template.
func (s *Server) AddTemplate(checkType string, items ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[checkType] = items
}

// FailCreates makes POST /api/checklists answer 500.
func (s *Server) FailCreates(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCreate = fail
}

// Records returns a copy of the stored records, newest first.
func (s *Server) Records() []models.ChecklistRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChecklistRecord(nil), s.records...)
}

// RecordsOfType returns stored records with the given check type.
func (s *Server) RecordsOfType(checkType string) []models.ChecklistRecord {
	out := make([]models.ChecklistRecord, 0)
	for _, rec := range s.Records() {
		if rec.CheckType == checkType {
			out = append(out, rec)
		}
	}
	return out
}

// Uploads returns received reference uploads.
func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

// ListCalls counts GET /api/checklists requests.
func (s *Server) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func (s *Server) listChecklists(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		limit = 50
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	out := s.records
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	if out == nil {
		out = []models.ChecklistRecord{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createChecklist(w http.ResponseWriter, r *http.Request) {
	var rec models.ChecklistRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid json", http.StatusUnprocessableEntity)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		http.Error(w, "store unavailable", http.StatusInternalServerError)
		return
	}
	s.nextID++
	rec.ID = fmt.Sprintf("created-%d", s.nextID)
	rec.CompletedAt = s.Now().Format(time.RFC3339)
	s.records = append([]models.ChecklistRecord{rec}, s.records...)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) exportCSV(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=machine_checklists.csv")
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"ID", "Staff Name", "Machine Make", "Machine Model", "Check Type", "Completed At"})
	for _, rec := range s.Records() {
		_ = writer.Write([]string{rec.ID, rec.StaffName, rec.MachineMake, rec.MachineModel, rec.CheckType, rec.CompletedAt})
	}
	writer.Flush()
}

func (s *Server) exportExcel(w http.ResponseWriter, _ *http.Request) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	_ = f.SetCellValue(sheet, "A1", "ID")
	_ = f.SetCellValue(sheet, "B1", "Check Type")
	for i, rec := range s.Records() {
		row := strconv.Itoa(i + 2)
		_ = f.SetCellValue(sheet, "A"+row, rec.ID)
		_ = f.SetCellValue(sheet, "B"+row, rec.CheckType)
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=machine_checklists.xlsx")
	_ = f.Write(w)
}

func (s *Server) employeeLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeNumber string `json:"employee_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusUnprocessableEntity)
		return
	}
	s.mu.Lock()
	e, ok := s.employees[req.EmployeeNumber]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid employee number"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "employee": e})
}

func (s *Server) makes(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.assets))
	for m := range s.assets {
		out = append(out, m)
	}
	sort.Strings(out)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) names(w http.ResponseWriter, r *http.Request) {
	machineMake := pathParam(r, "make")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]string{}, s.assets[machineMake]...)
	sort.Strings(out)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) checkType(w http.ResponseWriter, r *http.Request) {
	key := pathParam(r, "make") + "/" + pathParam(r, "name")
	s.mu.Lock()
	ct, ok := s.checkTypes[key]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Asset not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"check_type": ct})
}

func (s *Server) template(w http.ResponseWriter, r *http.Request) {
	ct := pathParam(r, "checkType")
	s.mu.Lock()
	items, ok := s.templates[ct]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Template not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"check_type": ct, "items": items})
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read failed", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.uploads = append(s.uploads, Upload{Kind: kind, FileName: header.Filename, Size: len(data)})
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"message": "Imported " + kind, "imported": 1})
}

func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
