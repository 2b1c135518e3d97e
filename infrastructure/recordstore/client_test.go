package recordstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fleetcheck/infrastructure/recordstore/recordstoretest"
	"fleetcheck/models"
)

var ctx = context.Background()

func newTestClient(t *testing.T, records ...models.ChecklistRecord) (*Client, *recordstoretest.Server) {
	t.Helper()
	store := recordstoretest.NewServer(t, records...)
	return NewWithHTTPClient(store.URL, store.Client()), store
}

func TestListChecklistsHonoursLimit(t *testing.T) {
	client, _ := newTestClient(t,
		models.ChecklistRecord{ID: "c", CheckType: models.CheckTypeDaily},
		models.ChecklistRecord{ID: "b", CheckType: models.CheckTypeDaily},
		models.ChecklistRecord{ID: "a", CheckType: models.CheckTypeDaily},
	)

	all, err := client.ListChecklists(ctx, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records with limit 0, got %d", len(all))
	}

	latest, err := client.ListChecklists(ctx, 2)
	if err != nil {
		t.Fatalf("list latest: %v", err)
	}
	if len(latest) != 2 || latest[0].ID != "c" {
		t.Fatalf("unexpected latest records: %+v", latest)
	}
}

func TestCreateChecklistReturnsAssignedID(t *testing.T) {
	client, store := newTestClient(t)
	store.Now = func() time.Time { return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC) }

	created, err := client.CreateChecklist(ctx, models.ChecklistRecord{
		ID:          "client-supplied",
		CheckType:   models.CheckTypeRepairCompleted,
		MachineMake: "John Deere",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.ID == "client-supplied" {
		t.Fatalf("expected store-assigned id, got %q", created.ID)
	}
	if created.CompletedAt != "2026-03-02T09:30:00Z" {
		t.Fatalf("unexpected completed_at %q", created.CompletedAt)
	}
	if got := len(store.RecordsOfType(models.CheckTypeRepairCompleted)); got != 1 {
		t.Fatalf("expected 1 stored record, got %d", got)
	}
}

func TestCreateChecklistSurfacesStatusError(t *testing.T) {
	client, store := newTestClient(t)
	store.FailCreates(true)

	_, err := client.CreateChecklist(ctx, models.ChecklistRecord{CheckType: models.CheckTypeDaily})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusInternalServerError || se.Path != "/api/checklists" {
		t.Fatalf("unexpected status error: %+v", se)
	}
}

func TestEmployeeLogin(t *testing.T) {
	client, store := newTestClient(t)
	store.AddEmployee(models.Employee{EmployeeNumber: "1042", Name: "Alan Day", WorkshopControl: "Yes"})

	employee, err := client.EmployeeLogin(ctx, "1042")
	if err != nil {
		t.Fatalf("employee login: %v", err)
	}
	if employee.Name != "Alan Day" || !employee.IsWorkshop() || employee.IsAdmin() {
		t.Fatalf("unexpected employee: %+v", employee)
	}

	if _, err := client.EmployeeLogin(ctx, "9999"); !errors.Is(err, ErrInvalidEmployee) {
		t.Fatalf("expected ErrInvalidEmployee, got %v", err)
	}
}

func TestMachineLookups(t *testing.T) {
	client, store := newTestClient(t)
	store.AddMachine("John Deere", "6155R", "Vehicle")
	store.AddMachine("Team/Bye", "Stainless steel front tank", "Drill/Planter")
	store.AddTemplate("Drill/Planter", "Hitch secure", "Seed tubes clear")

	makes, err := client.Makes(ctx)
	if err != nil {
		t.Fatalf("makes: %v", err)
	}
	if len(makes) != 2 || makes[0] != "John Deere" {
		t.Fatalf("unexpected makes %v", makes)
	}

	names, err := client.MachineNames(ctx, "Team/Bye")
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) != 1 || names[0] != "Stainless steel front tank" {
		t.Fatalf("unexpected names %v", names)
	}

	ct, err := client.CheckType(ctx, "Team/Bye", "Stainless steel front tank")
	if err != nil {
		t.Fatalf("check type: %v", err)
	}
	if ct != "Drill/Planter" {
		t.Fatalf("unexpected check type %q", ct)
	}

	tpl, err := client.ChecklistTemplate(ctx, ct)
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	if len(tpl.Items) != 2 {
		t.Fatalf("unexpected template %+v", tpl)
	}

	if _, err := client.ChecklistTemplate(ctx, "Unknown"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExportStreamsFile(t *testing.T) {
	client, _ := newTestClient(t, models.ChecklistRecord{ID: "r1", CheckType: models.CheckTypeDaily})

	dl, err := client.Export(ctx, ExportCSV)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer dl.Body.Close()
	body, err := io.ReadAll(dl.Body)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if dl.FileName != "machine_checklists.csv" {
		t.Fatalf("unexpected file name %q", dl.FileName)
	}
	if !bytes.Contains(body, []byte("r1")) {
		t.Fatalf("expected record id in csv, got %q", body)
	}

	if _, err := client.Export(ctx, "pdf"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestUploadReference(t *testing.T) {
	client, store := newTestClient(t)

	res, err := client.UploadReference(ctx, UploadStaff, "staff.xlsx", bytes.NewReader([]byte("xlsx-bytes")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.Imported != 1 {
		t.Fatalf("unexpected upload result %+v", res)
	}
	uploads := store.Uploads()
	if len(uploads) != 1 || uploads[0].Kind != UploadStaff || uploads[0].FileName != "staff.xlsx" || uploads[0].Size != 10 {
		t.Fatalf("unexpected uploads %+v", uploads)
	}

	if _, err := client.UploadReference(ctx, "invoices", "x.xlsx", bytes.NewReader(nil)); err == nil {
		t.Fatalf("expected unsupported kind error")
	}
}

func TestTransportErrorIsWrapped(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	client := New(url, time.Second)
	err := client.Health(ctx)
	if err == nil {
		t.Fatalf("expected transport error")
	}
	var se *StatusError
	if errors.As(err, &se) {
		t.Fatalf("transport failure must not be a StatusError")
	}
}
