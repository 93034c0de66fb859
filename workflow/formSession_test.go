package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mmdatafocus/ghg_reports/models"
	"github.com/mmdatafocus/ghg_reports/storage"
	"github.com/mmdatafocus/ghg_reports/utils"
)

type memStore struct {
	mu      sync.Mutex
	records map[string]json.RawMessage
	saves   int
	loadErr error
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{records: map[string]json.RawMessage{}}
}

func (m *memStore) Load(ctx context.Context, userId string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	rec, ok := m.records[userId]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	return rec, nil
}

func (m *memStore) Save(ctx context.Context, userId string, record json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[userId] = record
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) count() (int, json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves, m.records["alice"]
}

var fixedNow = func() time.Time { return time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC) }

const testDelay = 30 * time.Millisecond

func TestDispatchDebouncesSaves(t *testing.T) {
	store := newMemStore()
	sess := NewFormSession("alice", store, testDelay, fixedNow)

	for _, code := range []models.ReportCode{
		models.ReportCodeObservation,
		models.ReportCodeSummary,
		models.ReportCodeFindings,
	} {
		if _, err := sess.Dispatch(models.SetActiveReport{Report: code}); err != nil {
			t.Fatal(err)
		}
		time.Sleep(testDelay / 3)
	}
	time.Sleep(testDelay * 5)

	saves, rec := store.count()
	if saves != 1 {
		t.Fatalf("saves = %d, want 1", saves)
	}
	if !strings.Contains(string(rec), `"reportType":"G-3027"`) {
		t.Errorf("saved record does not hold the last edit: %s", rec)
	}
	if ts, ok := storage.LastUpdated(rec); !ok || !ts.Equal(fixedNow()) {
		t.Errorf("lastUpdated = %v, %v", ts, ok)
	}
}

func TestCloseDropsPendingSave(t *testing.T) {
	store := newMemStore()
	sess := NewFormSession("alice", store, testDelay, fixedNow)
	if _, err := sess.Dispatch(models.SetActiveReport{Report: models.ReportCodeFindings}); err != nil {
		t.Fatal(err)
	}
	sess.Close()
	time.Sleep(testDelay * 4)
	if saves, _ := store.count(); saves != 0 {
		t.Fatalf("saves = %d after Close, want 0", saves)
	}
	// Edits after Close still apply but are never saved.
	if _, err := sess.Dispatch(models.SetActiveReport{Report: models.ReportCodeSummary}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(testDelay * 4)
	if saves, _ := store.count(); saves != 0 {
		t.Fatalf("saves = %d after Close, want 0", saves)
	}
}

func TestRejectedActionSchedulesNothing(t *testing.T) {
	store := newMemStore()
	sess := NewFormSession("alice", store, testDelay, fixedNow)
	before := sess.State()
	_, err := sess.Dispatch(models.ResetReport{Report: models.ReportCodeSummary, Confirm: "yes"})
	if !errors.Is(err, models.ErrResetNotConfirmed) {
		t.Fatalf("err = %v", err)
	}
	time.Sleep(testDelay * 4)
	if saves, _ := store.count(); saves != 0 {
		t.Errorf("saves = %d, want 0", saves)
	}
	if got := sess.State(); got.ActiveReport != before.ActiveReport || len(got.Summary.Checklist) != len(before.Summary.Checklist) {
		t.Errorf("state changed after rejected action")
	}
}

func TestSaveFailureIsNotRetried(t *testing.T) {
	store := newMemStore()
	store.saveErr = errors.New("disk full")
	sess := NewFormSession("alice", store, testDelay, fixedNow)
	if _, err := sess.Dispatch(models.SetActiveReport{Report: models.ReportCodeFindings}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(testDelay * 6)
	if saves, _ := store.count(); saves != 1 {
		t.Fatalf("saves = %d, want exactly one attempt", saves)
	}
}

func TestHydrate(t *testing.T) {
	stored := models.DefaultAppState(fixedNow())
	stored.ActiveReport = models.ReportCodeObservation
	stored.Summary.BasicInfo.ClientName = "Acme Cement"
	body, err := models.EncodeState(stored)
	if err != nil {
		t.Fatal(err)
	}
	record, err := storage.Stamp(body, fixedNow())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		store      *memStore
		wantErr    bool
		wantClient string
		wantActive models.ReportCode
	}{
		{
			name:       "stored record replaces defaults",
			store:      &memStore{records: map[string]json.RawMessage{"alice": record}},
			wantClient: "Acme Cement",
			wantActive: models.ReportCodeObservation,
		},
		{
			name:       "missing record keeps defaults",
			store:      newMemStore(),
			wantActive: models.ReportCodeSummary,
		},
		{
			name:       "load failure keeps defaults",
			store:      &memStore{loadErr: errors.New("connection refused")},
			wantErr:    true,
			wantActive: models.ReportCodeSummary,
		},
		{
			name:       "corrupt record keeps defaults",
			store:      &memStore{records: map[string]json.RawMessage{"alice": json.RawMessage(`{"g3022":7}`)}},
			wantErr:    true,
			wantActive: models.ReportCodeSummary,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := NewFormSession("alice", tt.store, testDelay, fixedNow)
			err := sess.Hydrate(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			got := sess.State()
			if got.Summary.BasicInfo.ClientName != tt.wantClient {
				t.Errorf("client = %q, want %q", got.Summary.BasicInfo.ClientName, tt.wantClient)
			}
			if got.ActiveReport != tt.wantActive {
				t.Errorf("active = %q, want %q", got.ActiveReport, tt.wantActive)
			}
			if err := sess.Hydrate(context.Background()); err != nil {
				t.Errorf("second Hydrate = %v, want no-op", err)
			}
		})
	}
}

func TestSaveNowReplacesPendingSave(t *testing.T) {
	store := newMemStore()
	sess := NewFormSession("alice", store, testDelay, fixedNow)
	if _, err := sess.Dispatch(models.SetActiveReport{Report: models.ReportCodeFindings}); err != nil {
		t.Fatal(err)
	}
	if err := sess.SaveNow(context.Background()); err != nil {
		t.Fatalf("SaveNow: %v", err)
	}
	time.Sleep(testDelay * 5)
	saves, rec := store.count()
	if saves != 1 {
		t.Fatalf("saves = %d, want the flush only", saves)
	}
	if !strings.Contains(string(rec), `"reportType":"G-3027"`) {
		t.Errorf("record = %s", rec)
	}
}

func TestSaveNowFailureKeepsPendingSave(t *testing.T) {
	const delay = 100 * time.Millisecond
	store := newMemStore()
	store.saveErr = errors.New("connection reset")
	sess := NewFormSession("alice", store, delay, fixedNow)
	if _, err := sess.Dispatch(models.SetActiveReport{Report: models.ReportCodeFindings}); err != nil {
		t.Fatal(err)
	}
	if err := sess.SaveNow(context.Background()); err == nil {
		t.Fatal("SaveNow succeeded against a failing store")
	}
	store.mu.Lock()
	store.saveErr = nil
	store.mu.Unlock()

	time.Sleep(delay * 3)
	saves, rec := store.count()
	if saves != 2 || rec == nil {
		t.Fatalf("saves = %d, record %s; want the debounced save to run after the failed flush", saves, rec)
	}
}

// gatedStore holds every Load until release is closed.
type gatedStore struct {
	*memStore
	release chan struct{}
	loads   chan struct{}
}

func (g *gatedStore) Load(ctx context.Context, userId string) (json.RawMessage, error) {
	g.loads <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.memStore.Load(ctx, userId)
}

func TestHydrateSurvivesCancelledRequest(t *testing.T) {
	stored := models.DefaultAppState(fixedNow())
	stored.Summary.BasicInfo.ClientName = "Acme Cement"
	body, err := models.EncodeState(stored)
	if err != nil {
		t.Fatal(err)
	}
	store := &gatedStore{
		memStore: &memStore{records: map[string]json.RawMessage{"alice": body}},
		release:  make(chan struct{}),
		loads:    make(chan struct{}, 2),
	}
	sess := NewFormSession("alice", store, testDelay, fixedNow)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() { first <- sess.Hydrate(ctx) }()
	<-store.loads
	cancel()

	second := make(chan error, 1)
	go func() { second <- sess.Hydrate(context.Background()) }()
	select {
	case <-second:
		t.Fatal("second Hydrate returned before the first load finished")
	case <-time.After(testDelay):
	}

	close(store.release)
	if err := <-first; err != nil {
		t.Fatalf("first Hydrate: %v", err)
	}
	if err := <-second; err != nil {
		t.Fatalf("second Hydrate: %v", err)
	}
	if got := sess.State().Summary.BasicInfo.ClientName; got != "Acme Cement" {
		t.Errorf("client = %q after a cancelled first request", got)
	}
	if n := len(store.loads); n != 0 {
		t.Errorf("store loaded %d extra times", n)
	}
}

func TestSessionManagerReusesSessions(t *testing.T) {
	m := NewSessionManager(newMemStore(), testDelay)
	defer m.Close()
	a, err := m.Session(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := m.Session(context.Background(), "alice")
	if a != b {
		t.Error("Session returned a new session for the same user")
	}
	if _, err := m.Session(context.Background(), "bad/id"); !errors.Is(err, utils.ErrorInvalidUserId) {
		t.Errorf("err = %v", err)
	}
}
