package repairs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetcheck/infrastructure/ledger"
	"fleetcheck/models"
)

type memRecords struct {
	mu      sync.Mutex
	records []models.ChecklistRecord
	created int
	failErr error
}

func (m *memRecords) ListChecklists(_ context.Context, _ int) ([]models.ChecklistRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ChecklistRecord(nil), m.records...), nil
}

func (m *memRecords) CreateChecklist(_ context.Context, rec models.ChecklistRecord) (models.ChecklistRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return models.ChecklistRecord{}, m.failErr
	}
	m.created++
	rec.ID = "done-" + rec.MachineModel
	m.records = append(m.records, rec)
	return rec, nil
}

func (m *memRecords) countType(checkType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.records {
		if r.CheckType == checkType {
			n++
		}
	}
	return n
}

func dailyCheck(id string, statuses ...string) models.ChecklistRecord {
	items := make([]models.ChecklistItem, 0, len(statuses))
	for i, st := range statuses {
		items = append(items, models.ChecklistItem{Item: "item " + string(rune('A'+i)), Status: st, Notes: "note"})
	}
	return models.ChecklistRecord{
		ID:             id,
		StaffName:      "Alan Day",
		MachineMake:    "John Deere",
		MachineModel:   "6155R",
		CheckType:      models.CheckTypeDaily,
		ChecklistItems: items,
		CompletedAt:    "2026-03-02T08:00:00",
	}
}

func generalRepair(id, notes string) models.ChecklistRecord {
	return models.ChecklistRecord{
		ID:            id,
		MachineMake:   "Cat",
		MachineModel:  "D6",
		CheckType:     models.CheckTypeGeneralRepair,
		WorkshopNotes: notes,
		WorkshopPhotos: []models.Photo{
			{ID: 1, Data: "data:image/png;base64,AAAA", Timestamp: "2026-03-02T08:00:00Z"},
		},
	}
}

func TestExtractUnsatisfactoryItemsUseRecordIndex(t *testing.T) {
	rec := dailyCheck("r1", models.ItemSatisfactory, models.ItemUnsatisfactory, models.ItemNotApplicable, models.ItemUnsatisfactory)

	items := Extract([]models.ChecklistRecord{rec})

	require.Len(t, items, 2)
	assert.Equal(t, "r1-1", items[0].ID)
	assert.Equal(t, 1, items[0].ItemIndex)
	assert.Equal(t, "r1-3", items[1].ID)
	assert.Equal(t, SourceUnsatisfactoryItem, items[0].Source)
	assert.Equal(t, "John Deere 6155R", items[0].Machine())
	assert.Equal(t, "2026-03-02T08:00:00", items[0].Date)
}

func TestExtractGeneralRepairExactlyOnce(t *testing.T) {
	rec := generalRepair("g1", "GENERAL REPAIR REPORT:\nUrgency Level: Not urgent\nProblem Description: squeaky door")
	rec.ChecklistItems = []models.ChecklistItem{{Item: "x", Status: models.ItemSatisfactory}}

	items := Extract([]models.ChecklistRecord{rec})

	require.Len(t, items, 1)
	assert.Equal(t, "g1-general", items[0].ID)
	assert.Equal(t, GeneralItemIndex, items[0].ItemIndex)
	assert.Equal(t, GeneralItemLabel, items[0].Item)
	assert.Equal(t, "squeaky door", items[0].Notes)
	assert.Equal(t, UrgencyNotUrgent, items[0].Urgency)
	assert.Len(t, items[0].Photos, 1)
}

func TestExtractIsDeterministicAndOrdered(t *testing.T) {
	records := []models.ChecklistRecord{
		dailyCheck("r1", models.ItemUnsatisfactory),
		generalRepair("g1", "Urgency Level: Breakdown has stopped machine\nengine"),
		{ID: "empty", CheckType: models.CheckTypeWorkshopService},
		dailyCheck("r2", models.ItemUnsatisfactory, models.ItemUnsatisfactory),
	}

	first := Extract(records)
	second := Extract(records)

	assert.Equal(t, first, second)
	ids := make([]string, 0, len(first))
	for _, it := range first {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"r1-0", "g1-general", "r2-0", "r2-1"}, ids)
}

func TestParseUrgencyStructured(t *testing.T) {
	urgency, description := ParseUrgency("GENERAL REPAIR REPORT:\nUrgency Level: Breakdown has stopped machine\nProblem Description: engine won't start")

	assert.Equal(t, "Breakdown has stopped machine", urgency)
	assert.Equal(t, "engine won't start", description)
}

func TestParseUrgencyFallbackKeywords(t *testing.T) {
	cases := []struct {
		notes string
		want  string
	}{
		{"hydraulic leak, needs attention asap but still running", UrgencyASAP},
		{"STOPPED MACHINE in the top field", UrgencyStopped},
		{"not urgent - wiper blade", UrgencyNotUrgent},
		{"loose mirror", ""},
		{"", ""},
	}
	for _, tc := range cases {
		urgency, _ := ParseUrgency(tc.notes)
		assert.Equal(t, tc.want, urgency, tc.notes)
	}
}

func TestParseUrgencyStructuredLineWinsOverKeywords(t *testing.T) {
	urgency, description := ParseUrgency("Urgency Level: Not urgent\nProblem Description: was a stopped machine last week")

	assert.Equal(t, UrgencyNotUrgent, urgency)
	assert.Equal(t, "was a stopped machine last week", description)
}

func TestParseUrgencyIsPureAndRoundTripsComposedReport(t *testing.T) {
	notes := ComposeReport(UrgencyASAP, "  brake pedal soft \n")
	u1, d1 := ParseUrgency(notes)
	u2, d2 := ParseUrgency(notes)

	assert.Equal(t, u1, u2)
	assert.Equal(t, d1, d2)
	assert.Equal(t, UrgencyASAP, u1)
	assert.Equal(t, "brake pedal soft", d1)
}

func TestClassifySafetyOutranksEveryGeneralRepair(t *testing.T) {
	safety := RepairItem{Source: SourceUnsatisfactoryItem}
	for _, urgency := range []string{UrgencyStopped, UrgencyASAP, UrgencyNotUrgent, "", "Breakdown has stopped machine!!"} {
		general := RepairItem{Source: SourceGeneralRepair, Urgency: urgency}
		assert.Greater(t, Classify(safety), Classify(general), urgency)
	}
	assert.Equal(t, "critical", Classify(safety).Style())
}

func TestClassifyGeneralOrder(t *testing.T) {
	stopped := Classify(RepairItem{Source: SourceGeneralRepair, Urgency: UrgencyStopped})
	asap := Classify(RepairItem{Source: SourceGeneralRepair, Urgency: UrgencyASAP})
	low := Classify(RepairItem{Source: SourceGeneralRepair, Urgency: UrgencyNotUrgent})
	unknown := Classify(RepairItem{Source: SourceGeneralRepair})

	assert.Greater(t, stopped, asap)
	assert.Greater(t, asap, low)
	assert.Greater(t, low, unknown)
	assert.Equal(t, "unknown", unknown.Style())
}

func TestSortByPriorityIsStable(t *testing.T) {
	items := []RepairItem{
		{ID: "g-low", Source: SourceGeneralRepair, Urgency: UrgencyNotUrgent},
		{ID: "s1", Source: SourceUnsatisfactoryItem},
		{ID: "g-stop-1", Source: SourceGeneralRepair, Urgency: UrgencyStopped},
		{ID: "s2", Source: SourceUnsatisfactoryItem},
		{ID: "g-none", Source: SourceGeneralRepair},
		{ID: "g-stop-2", Source: SourceGeneralRepair, Urgency: UrgencyStopped},
	}

	SortByPriority(items)

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"s1", "s2", "g-stop-1", "g-stop-2", "g-low", "g-none"}, ids)
}

func TestStateOfCompletedWins(t *testing.T) {
	snap := ledger.NewSnapshot([]string{"a", "b"}, []string{"b", "c"}, nil)

	assert.Equal(t, StateAcknowledged, StateOf("a", snap))
	assert.Equal(t, StateCompleted, StateOf("b", snap))
	assert.Equal(t, StateCompleted, StateOf("c", snap))
	assert.Equal(t, StateNew, StateOf("d", snap))
}

func newTestService(t *testing.T, requireAck bool, records ...models.ChecklistRecord) (*Service, *memRecords, *ledger.MemoryStore) {
	t.Helper()
	store := &memRecords{records: records}
	led := ledger.NewMemoryStore()
	return NewService(store, led, requireAck), store, led
}

func viewIDs(items []RepairItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestAcknowledgeMovesItemFromNewToDue(t *testing.T) {
	svc, _, _ := newTestService(t, false, dailyCheck("r1", models.ItemUnsatisfactory))
	ctx := context.Background()

	board, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1-0"}, viewIDs(board.Views().New))
	assert.Empty(t, board.Views().Due)

	require.NoError(t, svc.Acknowledge(ctx, "r1-0"))

	board, err = svc.Load(ctx)
	require.NoError(t, err)
	views := board.Views()
	assert.Empty(t, views.New)
	assert.Equal(t, []string{"r1-0"}, viewIDs(views.Due))

	require.NoError(t, svc.Acknowledge(ctx, "r1-0"))
	assert.ErrorIs(t, svc.Acknowledge(ctx, "missing-0"), ErrRepairNotFound)
}

func TestCompleteRemovesFromDueAndCreatesOneRecord(t *testing.T) {
	svc, store, _ := newTestService(t, false, dailyCheck("r1", models.ItemUnsatisfactory))
	ctx := context.Background()
	require.NoError(t, svc.Acknowledge(ctx, "r1-0"))

	created, err := svc.Complete(ctx, "r1-0", Completion{Notes: "replaced hose", EmployeeNumber: "7", StaffName: "Mike Cameron"})
	require.NoError(t, err)
	assert.Equal(t, models.CheckTypeRepairCompleted, created.CheckType)
	assert.Contains(t, created.WorkshopNotes, "replaced hose")
	assert.Contains(t, created.WorkshopNotes, "r1-0")
	assert.Equal(t, 1, store.countType(models.CheckTypeRepairCompleted))

	board, err := svc.Load(ctx)
	require.NoError(t, err)
	views := board.Views()
	assert.Empty(t, views.Due)
	assert.Empty(t, views.New)
	assert.Equal(t, []string{"r1-0"}, viewIDs(views.Completed))
}

func TestCompleteRejectsEmptyNotesWithoutMutation(t *testing.T) {
	svc, store, led := newTestService(t, false, dailyCheck("r1", models.ItemUnsatisfactory))
	ctx := context.Background()

	_, err := svc.Complete(ctx, "r1-0", Completion{Notes: "   "})

	assert.ErrorIs(t, err, ErrEmptyCompletionNotes)
	assert.Equal(t, 0, store.created)
	done, _ := led.Get(ctx, ledger.KeyCompletedRepairs)
	assert.Empty(t, done)
}

func TestCompleteWithoutAcknowledgmentPolicy(t *testing.T) {
	ctx := context.Background()

	lenient, _, led := newTestService(t, false, dailyCheck("r1", models.ItemUnsatisfactory))
	_, err := lenient.Complete(ctx, "r1-0", Completion{Notes: "fixed"})
	require.NoError(t, err)
	ack, _ := led.Get(ctx, ledger.KeyAcknowledgedRepairs)
	assert.Equal(t, []string{"r1-0"}, ack, "completion also acknowledges")

	strict, store, _ := newTestService(t, true, dailyCheck("r1", models.ItemUnsatisfactory))
	_, err = strict.Complete(ctx, "r1-0", Completion{Notes: "fixed"})
	assert.ErrorIs(t, err, ErrNotAcknowledged)
	assert.Equal(t, 0, store.created)
}

func TestCompleteTwiceIsRejected(t *testing.T) {
	svc, store, _ := newTestService(t, false, generalRepair("g1", "Urgency Level: Not urgent\nloose panel"))
	ctx := context.Background()

	_, err := svc.Complete(ctx, "g1-general", Completion{Notes: "tightened"})
	require.NoError(t, err)
	_, err = svc.Complete(ctx, "g1-general", Completion{Notes: "tightened again"})
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.Equal(t, 1, store.created)
}

func TestConcurrentCompletionsCreateOneRecord(t *testing.T) {
	svc, store, _ := newTestService(t, false, dailyCheck("r1", models.ItemUnsatisfactory))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Complete(ctx, "r1-0", Completion{Notes: "done"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyCompleted)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, store.created)
}

func TestCompleteStoreFailureLeavesLedgerUntouched(t *testing.T) {
	svc, store, led := newTestService(t, false, dailyCheck("r1", models.ItemUnsatisfactory))
	store.failErr = errors.New("record store down")
	ctx := context.Background()

	_, err := svc.Complete(ctx, "r1-0", Completion{Notes: "fixed"})
	require.Error(t, err)

	done, _ := led.Get(ctx, ledger.KeyCompletedRepairs)
	assert.Empty(t, done)
	board, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateNew, board.State("r1-0"))
}

// failingKeyStore rejects appends to one key and passes everything else
// through to a memory store.
type failingKeyStore struct {
	*ledger.MemoryStore
	failKey string
}

func (f failingKeyStore) Append(ctx context.Context, key, id string) error {
	if key == f.failKey {
		return errors.New("ledger write failed")
	}
	return f.MemoryStore.Append(ctx, key, id)
}

func TestCompleteMarksAcknowledgedBeforeCompleted(t *testing.T) {
	store := &memRecords{records: []models.ChecklistRecord{dailyCheck("r1", models.ItemUnsatisfactory)}}
	led := failingKeyStore{MemoryStore: ledger.NewMemoryStore(), failKey: ledger.KeyCompletedRepairs}
	svc := NewService(store, led, false)
	ctx := context.Background()

	_, err := svc.Complete(ctx, "r1-0", Completion{Notes: "fixed"})
	require.Error(t, err)

	ack, _ := led.Get(ctx, ledger.KeyAcknowledgedRepairs)
	assert.Equal(t, []string{"r1-0"}, ack)
	done, _ := led.Get(ctx, ledger.KeyCompletedRepairs)
	assert.Empty(t, done)
}

func TestViewsByName(t *testing.T) {
	v := Views{New: []RepairItem{{ID: "a"}}}
	items, ok := v.ByName("")
	assert.True(t, ok)
	assert.Len(t, items, 1)
	_, ok = v.ByName("archived")
	assert.False(t, ok)
}

func TestReportComposesParsableGeneralRepair(t *testing.T) {
	svc, store, _ := newTestService(t, false)
	created, err := svc.Report(context.Background(), Report{
		StaffName:    "Alan Day",
		MachineMake:  "Cat",
		MachineModel: " D6 ",
		Urgency:      UrgencyASAP,
		Description:  "hydraulic leak on left ram",
	})
	require.NoError(t, err)
	assert.Equal(t, models.CheckTypeGeneralRepair, created.CheckType)
	assert.Equal(t, "D6", created.MachineModel)
	assert.Equal(t, 1, store.countType(models.CheckTypeGeneralRepair))

	items := Extract([]models.ChecklistRecord{created})
	require.Len(t, items, 1)
	assert.Equal(t, UrgencyASAP, items[0].Urgency)
	assert.Equal(t, "hydraulic leak on left ram", items[0].Notes)
}

func TestReportValidationBlocksSubmission(t *testing.T) {
	svc, store, _ := newTestService(t, false)
	cases := []struct {
		report Report
		want   error
	}{
		{Report{MachineModel: "D6", Urgency: UrgencyASAP, Description: "x"}, ErrMissingMachineIdent},
		{Report{MachineMake: "Cat", MachineModel: "D6", Urgency: "soon", Description: "x"}, ErrUnknownUrgency},
		{Report{MachineMake: "Cat", MachineModel: "D6", Urgency: UrgencyNotUrgent, Description: "  "}, ErrMissingDescription},
	}
	for _, tc := range cases {
		_, err := svc.Report(context.Background(), tc.report)
		assert.ErrorIs(t, err, tc.want)
	}
	assert.Equal(t, 0, store.countType(models.CheckTypeGeneralRepair))
}
