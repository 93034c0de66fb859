package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/mmdatafocus/ghg_reports/config"
	"github.com/mmdatafocus/ghg_reports/models"
	"github.com/mmdatafocus/ghg_reports/storage"
	"github.com/mmdatafocus/ghg_reports/workflow"
)

var testNow = time.Date(2024, 3, 5, 1, 2, 3, 456000000, time.UTC)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func newTestApp(t *testing.T) (*gin.Engine, storage.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "server-data.json"))
	if err != nil {
		t.Fatal(err)
	}
	settings := config.Settings{}
	a := &app{
		exporter: workflow.NewExporter(settings),
		logger:   config.GetLogger(),
		now:      func() time.Time { return testNow },
	}
	sessions := workflow.NewSessionManager(store, time.Hour)
	t.Cleanup(sessions.Close)
	a.start(store, sessions)
	return newRouter(a, settings), store
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return env
}

func TestDataAPI(t *testing.T) {
	r, _ := newTestApp(t)

	w := do(t, r, http.MethodGet, "/api/data/alice", "")
	env := decode(t, w)
	if w.Code != http.StatusOK || !env.Success || string(env.Data) != "null" {
		t.Fatalf("empty load: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPost, "/api/data/alice", `{"reportType":"G-3026","custom":[1,2]}`)
	env = decode(t, w)
	if w.Code != http.StatusOK || !env.Success || env.Message != "Data saved successfully" {
		t.Fatalf("save: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/data/alice", "")
	env = decode(t, w)
	var got map[string]any
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatal(err)
	}
	if got["reportType"] != "G-3026" || got["lastUpdated"] != "2024-03-05T01:02:03.456Z" {
		t.Errorf("record = %v", got)
	}
	if _, ok := got["custom"]; !ok {
		t.Error("unknown fields must be stored verbatim")
	}
}

func TestDataAPIRejects(t *testing.T) {
	r, _ := newTestApp(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"array body", http.MethodPost, "/api/data/alice", `[1]`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/api/data/alice", `{`, http.StatusBadRequest},
		{"bad user id", http.MethodGet, "/api/data/bad!id", "", http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/nothing", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
			if env := decode(t, w); env.Success || env.Error == "" {
				t.Errorf("envelope = %+v", env)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	r, _ := newTestApp(t)
	w := do(t, r, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"OK"`) {
		t.Errorf("health: %d %s", w.Code, w.Body.String())
	}
	if w := do(t, r, http.MethodGet, "/healthz", ""); w.Code != http.StatusNoContent {
		t.Errorf("healthz: %d", w.Code)
	}
}

func TestReadinessGate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := &app{logger: config.GetLogger(), now: time.Now}
	r := newRouter(a, config.Settings{})
	if w := do(t, r, http.MethodGet, "/api/data/alice", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("before start: %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/health", ""); w.Code != http.StatusOK {
		t.Errorf("health before start: %d", w.Code)
	}
}

func TestExportFromBody(t *testing.T) {
	r, _ := newTestApp(t)
	state := models.DefaultAppState(testNow)
	state.Summary.BasicInfo.CaseNumber = "113-T-0042"
	body, err := json.Marshal(state)
	if err != nil {
		t.Fatal(err)
	}

	w := do(t, r, http.MethodPost, "/api/export/G-3022", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="G-3022_Report_113-T-0042.xlsx"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("not a workbook: %v", err)
	}
	defer f.Close()

	if w := do(t, r, http.MethodPost, "/api/export/G-1234", string(body)); w.Code != http.StatusBadRequest {
		t.Errorf("unknown report: %d", w.Code)
	}
}

func TestFormSessionAPI(t *testing.T) {
	r, store := newTestApp(t)

	w := do(t, r, http.MethodPost, "/api/forms/alice/actions", `{"type":"setFindingsStage","payload":{"stage":"S2"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("action: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPost, "/api/forms/alice/actions", `{"type":"launchRocket"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown action: %d", w.Code)
	}

	w = do(t, r, http.MethodPost, "/api/forms/alice/reset/G-3027", `{"confirm":"yes"}`)
	if w.Code != http.StatusPreconditionFailed {
		t.Errorf("unconfirmed reset: %d %s", w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodPost, "/api/forms/alice/reset/G-3027", `{"confirm":"RESET"}`)
	if w.Code != http.StatusOK {
		t.Errorf("confirmed reset: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/forms/alice/export/G-3027", "")
	if w.Code != http.StatusOK {
		t.Fatalf("export: %d %s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasSuffix(cd, `_S2.xlsx"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}

	// Debounce is an hour here, so nothing is stored until an explicit save.
	if _, err := store.Load(context.Background(), "alice"); err == nil {
		t.Fatal("record saved before debounce elapsed")
	}
	if w := do(t, r, http.MethodPost, "/api/forms/alice/save", ""); w.Code != http.StatusOK {
		t.Fatalf("save: %d %s", w.Code, w.Body.String())
	}
	rec, err := store.Load(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	st, err := models.DecodeState(rec, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if st.Findings.BasicInfo.Stage != models.StageS2 {
		t.Errorf("stored stage = %q", st.Findings.BasicInfo.Stage)
	}
}
