package pulse

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/HerbHall/pollnow/internal/config"
	"github.com/HerbHall/pollnow/internal/execnow"
	"github.com/HerbHall/pollnow/internal/store"
	"github.com/HerbHall/pollnow/pkg/models"
	"github.com/HerbHall/pollnow/pkg/plugin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// newTestModule returns an initialized, not started module with the fixture set loaded.
func newTestModule(t *testing.T, settings ...map[string]any) (*Module, map[string]models.MonitoredObject) {
	t.Helper()
	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	v := viper.New()
	for _, kv := range settings {
		for k, val := range kv {
			v.Set(k, val)
		}
	}
	m := New()
	if err := m.Init(context.Background(), plugin.Dependencies{
		Logger: zap.NewNop(),
		Config: config.New(v),
		Store:  db,
	}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return m, fixtureSet(t, m.store)
}

func idsOf(objs map[string]models.MonitoredObject, names ...string) []string {
	ids := make([]string, len(names))
	for i, n := range names {
		ids[i] = objs[n].ID
	}
	return ids
}

func postExecute(t *testing.T, m *Module, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pulse/execute", strings.NewReader(body))
	w := httptest.NewRecorder()
	m.handleExecute(w, req)
	return w
}

func executeBody(t *testing.T, ids []string) string {
	t.Helper()
	b, err := json.Marshal(ExecuteRequest{IDs: ids})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestHandleExecute_Sent(t *testing.T) {
	tests := []struct {
		name     string
		objects  []string
		outcome  execnow.Kind
		message  string
		accepted int
		filtered int
	}{
		{
			name:     "items on pollable types",
			objects:  []string{"I1-lvl1-agent-num", "I5-agent-txt"},
			outcome:  execnow.KindAccepted,
			message:  execnow.MessageSent,
			accepted: 2,
		},
		{
			name:     "dependents of agent master",
			objects:  []string{"I1-lvl2-dep-log", "I1-lvl3-dep-txt"},
			outcome:  execnow.KindAccepted,
			message:  execnow.MessageSent,
			accepted: 2,
		},
		{
			name:     "mixed item selection",
			objects:  []string{"I1-lvl1-agent-num", "I2-lvl2-dep-log", "I4-trap-log", "I5-agent-txt"},
			outcome:  execnow.KindPartiallyAccepted,
			message:  execnow.MessageSentFiltered,
			accepted: 2,
			filtered: 2,
		},
		{
			name:     "mixed discovery rules",
			objects:  []string{"DR1-agent", "DR2-trap", "DR3-I1-dep-agent", "DR4-I2-dep-trap", "DR5-web-dep"},
			outcome:  execnow.KindPartiallyAccepted,
			message:  execnow.MessageSentFiltered,
			accepted: 2,
			filtered: 3,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, objs := newTestModule(t)
			w := postExecute(t, m, executeBody(t, idsOf(objs, tc.objects...)))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200; body=%s", w.Code, w.Body.String())
			}
			var resp ExecuteResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Outcome != string(tc.outcome) || resp.Message != tc.message {
				t.Errorf("outcome/message = %q/%q, want %q/%q", resp.Outcome, resp.Message, tc.outcome, tc.message)
			}
			if resp.Accepted != tc.accepted || resp.Filtered != tc.filtered {
				t.Errorf("accepted/filtered = %d/%d, want %d/%d", resp.Accepted, resp.Filtered, tc.accepted, tc.filtered)
			}
			if len(resp.TaskIDs) != tc.accepted || resp.Selected != 0 {
				t.Errorf("task_ids = %v selected = %d", resp.TaskIDs, resp.Selected)
			}
			for _, id := range resp.TaskIDs {
				task, err := m.store.GetTask(context.Background(), id)
				if err != nil || task == nil || task.Status != TaskQueued {
					t.Errorf("task %s = %+v, %v; want queued", id, task, err)
				}
			}
		})
	}
}

func TestHandleExecute_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		objects []string
		reason  execnow.Reason
		detail  string
	}{
		{
			name:    "dependents of trapper and web masters",
			objects: []string{"I2-lvl2-dep-log", "I2-lvl3-dep-txt", "I3-web-dep"},
			reason:  execnow.ReasonWrongMasterType,
			detail:  "Cannot send request: wrong master item type.",
		},
		{
			name:    "dependent discovery rules of bad masters",
			objects: []string{"DR4-I2-dep-trap", "DR5-web-dep"},
			reason:  execnow.ReasonWrongMasterType,
			detail:  "Cannot send request: wrong master item type.",
		},
		{
			name:    "trapper and web items",
			objects: []string{"I4-trap-log", "web-download", "I2-lvl1-trap-num"},
			reason:  execnow.ReasonWrongItemType,
			detail:  "Cannot send request: wrong item type.",
		},
		{
			name:    "trapper item with bad dependent",
			objects: []string{"I4-trap-log", "I3-web-dep"},
			reason:  execnow.ReasonWrongItemType,
			detail:  "Cannot send request: wrong item type.",
		},
		{
			name:    "trapper discovery rule",
			objects: []string{"DR2-trap"},
			reason:  execnow.ReasonWrongDiscoveryRuleType,
			detail:  "Cannot send request: wrong discovery rule type.",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, objs := newTestModule(t)
			w := postExecute(t, m, executeBody(t, idsOf(objs, tc.objects...)))

			if w.Code != http.StatusConflict {
				t.Fatalf("status = %d, want 409; body=%s", w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("Content-Type = %q", ct)
			}
			var p ExecuteProblem
			if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if p.Title != execnow.TitleRejected || p.Detail != tc.detail || p.Reason != string(tc.reason) {
				t.Errorf("problem = %+v", p)
			}
			if p.Selected != len(tc.objects) {
				t.Errorf("selected = %d, want %d", p.Selected, len(tc.objects))
			}
		})
	}
}

func TestHandleExecute_BadRequest(t *testing.T) {
	m, objs := newTestModule(t)
	orphan := insertTestObject(t, m.store, models.MonitoredObject{
		HostID:   objs["I5-agent-txt"].HostID,
		Name:     "orphan",
		Type:     models.TypeDependent,
		MasterID: uuid.NewString(),
	})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", "{"},
		{"empty ids", `{"ids":[]}`},
		{"missing ids", `{}`},
		{"not a uuid", `{"ids":["abc"]}`},
		{"unknown object", executeBody(t, []string{uuid.NewString()})},
		{"missing master", executeBody(t, []string{orphan.ID})},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := postExecute(t, m, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body=%s", w.Code, w.Body.String())
			}
		})
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var pb dto.Metric
	if err := c.Write(&pb); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return pb.GetCounter().GetValue()
}

func TestHandleExecute_QueueFull(t *testing.T) {
	accepted := executeRequestsTotal.WithLabelValues(string(execnow.KindAccepted))
	full := executeRequestsTotal.WithLabelValues(outcomeQueueFull)
	eligible := executeObjectsTotal.WithLabelValues("eligible")
	acceptedBefore, fullBefore, eligibleBefore := counterValue(t, accepted), counterValue(t, full), counterValue(t, eligible)

	m, objs := newTestModule(t, map[string]any{"queue_size": 1})
	w := postExecute(t, m, executeBody(t, idsOf(objs, "I1-lvl1-agent-num", "I5-agent-txt")))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
	var p models.APIProblem
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Type != "https://pollnow.dev/problems/service-unavailable" || p.Detail != ErrQueueFull.Error() {
		t.Errorf("problem = %+v", p)
	}

	if got := counterValue(t, full) - fullBefore; got != 1 {
		t.Errorf("queue_full requests delta = %v, want 1", got)
	}
	if got := counterValue(t, accepted) - acceptedBefore; got != 0 {
		t.Errorf("accepted requests delta = %v, want 0", got)
	}
	if got := counterValue(t, eligible) - eligibleBefore; got != 0 {
		t.Errorf("eligible objects delta = %v, want 0", got)
	}
}

func TestHandleExecute_RejectedCountsDistinctIDs(t *testing.T) {
	m, objs := newTestModule(t)
	id := objs["I4-trap-log"].ID
	w := postExecute(t, m, executeBody(t, []string{id, id, id}))
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body=%s", w.Code, w.Body.String())
	}
	var p ExecuteProblem
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Selected != 1 {
		t.Errorf("selected = %d, want 1", p.Selected)
	}
	if p.Type != models.ProblemTypeFor(http.StatusConflict) || p.Status != http.StatusConflict {
		t.Errorf("problem type/status = %q/%d", p.Type, p.Status)
	}
}

func TestHandleExecute_NilStore(t *testing.T) {
	m := &Module{logger: zap.NewNop()}
	w := postExecute(t, m, executeBody(t, []string{uuid.NewString()}))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestHandleExecute_Completes(t *testing.T) {
	m, objs := newTestModule(t)
	m.poller.SetChecker(models.TypeAgent, &fakeChecker{})
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop(context.Background())

	w := postExecute(t, m, executeBody(t, idsOf(objs, "I1-lvl2-dep-log")))
	var resp ExecuteResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.TaskIDs) != 1 {
		t.Fatalf("task_ids = %v", resp.TaskIDs)
	}
	waitForStatus(t, m.store, resp.TaskIDs[0], TaskDone)
}

func TestHandleObjectAvailability(t *testing.T) {
	m, objs := newTestModule(t)
	tests := []struct {
		name      string
		available bool
		eligible  bool
	}{
		{"I1-lvl1-agent-num", true, true},
		{"I1-lvl2-dep-log", true, true},
		{"I2-lvl2-dep-log", true, false},
		{"I4-trap-log", false, false},
		{"web-error", false, false},
		{"DR5-web-dep", true, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/objects/x/execute", http.NoBody)
			req.SetPathValue("id", objs[tc.name].ID)
			w := httptest.NewRecorder()
			m.handleObjectAvailability(w, req)

			var got Availability
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Available != tc.available || got.Eligible != tc.eligible {
				t.Errorf("availability = %+v, want available=%v eligible=%v", got, tc.available, tc.eligible)
			}
		})
	}
}

func TestHandleGetObject(t *testing.T) {
	m, objs := newTestModule(t)

	req := httptest.NewRequest(http.MethodGet, "/objects/x", http.NoBody)
	req.SetPathValue("id", objs["I3-web-dep"].ID)
	w := httptest.NewRecorder()
	m.handleGetObject(w, req)
	var got models.MonitoredObject
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.MasterType != models.TypeWeb {
		t.Errorf("MasterType = %q, want web", got.MasterType)
	}

	req = httptest.NewRequest(http.MethodGet, "/objects/x", http.NoBody)
	req.SetPathValue("id", uuid.NewString())
	w = httptest.NewRecorder()
	m.handleGetObject(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandleListObjects(t *testing.T) {
	m, objs := newTestModule(t)
	host := objs["I5-agent-txt"].HostID

	tests := []struct {
		query  string
		status int
		count  int
	}{
		{"?host_id=" + host + "&kind=discovery_rule", http.StatusOK, 5},
		{"?kind=item&name=dep", http.StatusOK, 5},
		{"?kind=bogus", http.StatusBadRequest, 0},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/objects"+tc.query, http.NoBody)
			w := httptest.NewRecorder()
			m.handleListObjects(w, req)
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d", w.Code, tc.status)
			}
			if tc.status != http.StatusOK {
				return
			}
			var got []models.MonitoredObject
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != tc.count {
				t.Errorf("len = %d, want %d", len(got), tc.count)
			}
		})
	}
}

func TestHandleListHosts(t *testing.T) {
	m, _ := newTestModule(t)
	req := httptest.NewRequest(http.MethodGet, "/hosts", http.NoBody)
	w := httptest.NewRecorder()
	m.handleListHosts(w, req)

	var hosts []models.Host
	if err := json.NewDecoder(w.Body).Decode(&hosts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(hosts) != 1 || hosts[0].Name != "Host for execute now permissions" {
		t.Errorf("hosts = %+v", hosts)
	}
}

func TestHandleResultsAndTask(t *testing.T) {
	m, objs := newTestModule(t)
	fc := &fakeChecker{}
	m.poller.SetChecker(models.TypeAgent, fc)
	obj := objs["I5-agent-txt"]
	if _, err := m.poller.Poll(context.Background(), obj); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/results/x?limit=5", http.NoBody)
	req.SetPathValue("object_id", obj.ID)
	w := httptest.NewRecorder()
	m.handleObjectResults(w, req)
	var results []Result
	if err := json.NewDecoder(w.Body).Decode(&results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results) != 1 || results[0].Value != "42" {
		t.Errorf("results = %+v", results)
	}

	exec, err := m.ExecuteNow(context.Background(), []string{obj.ID})
	if err != nil {
		t.Fatalf("ExecuteNow: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/tasks/x", http.NoBody)
	req.SetPathValue("id", exec.Tasks[0].ID)
	w = httptest.NewRecorder()
	m.handleGetTask(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/tasks/x", http.NoBody)
	req.SetPathValue("id", "missing")
	w = httptest.NewRecorder()
	m.handleGetTask(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRoutesMounted(t *testing.T) {
	m, objs := newTestModule(t)
	mux := http.NewServeMux()
	for _, r := range m.Routes() {
		mux.HandleFunc(r.Method+" /api/v1/pulse"+r.Path, r.Handler)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pulse/execute",
		bytes.NewBufferString(executeBody(t, idsOf(objs, "DR2-trap"))))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("POST execute status = %d, want 409", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/pulse/objects/"+objs["DR1-agent"].ID+"/execute", http.NoBody)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("GET availability status = %d, want 200", w.Code)
	}
}
