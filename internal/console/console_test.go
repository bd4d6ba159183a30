package console

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/HerbHall/pollnow/internal/pulse"
	"github.com/HerbHall/pollnow/pkg/models"
	"go.uber.org/zap"
)

type fakeCatalog struct {
	hosts   []models.Host
	objects []models.MonitoredObject
	err     error
}

func (f *fakeCatalog) ListHosts(context.Context) ([]models.Host, error) {
	return f.hosts, f.err
}

func (f *fakeCatalog) ListObjects(_ context.Context, filter pulse.ObjectFilter) ([]models.MonitoredObject, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.MonitoredObject
	for _, o := range f.objects {
		if filter.HostID != "" && o.HostID != filter.HostID {
			continue
		}
		if filter.Kind != "" && o.Kind != filter.Kind {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeCatalog) GetObject(_ context.Context, id string) (*models.MonitoredObject, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.objects {
		if f.objects[i].ID == id {
			o := f.objects[i]
			return &o, nil
		}
	}
	return nil, nil
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{
		hosts: []models.Host{
			{ID: "h1", Name: "Host for execute now permissions"},
			{ID: "h2", Name: "Other host"},
		},
		objects: []models.MonitoredObject{
			{ID: "agent", HostID: "h1", Name: "I1-lvl1-agent-num", Kind: models.KindItem, Type: models.TypeAgent},
			{ID: "trap", HostID: "h1", Name: "I2-lvl1-trap-num", Kind: models.KindItem, Type: models.TypeTrapper},
			{ID: "dep", HostID: "h1", Name: "I2-lvl2-dep-log", Kind: models.KindItem, Type: models.TypeDependent, MasterID: "trap"},
			{ID: "rule", HostID: "h1", Name: "DR4-I2-dep-trap", Kind: models.KindDiscoveryRule, Type: models.TypeDependent, MasterID: "trap"},
			{ID: "other", HostID: "h2", Name: "elsewhere", Kind: models.KindItem, Type: models.TypeAgent},
		},
	}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPage_DefaultsToFirstHostItems(t *testing.T) {
	h := New(testCatalog(), zap.NewNop())
	rec := get(t, h, "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`<h2 id="host-name">Host for execute now permissions</h2>`,
		`data-name="I1-lvl1-agent-num" data-candidate="true"`,
		`data-name="I2-lvl1-trap-num" data-candidate="false"`,
		`data-name="I2-lvl2-dep-log" data-candidate="true"`,
		`<span id="selected_count">0 selected</span>`,
		`id="execute-now" disabled`,
		`<td>I2-lvl1-trap-num</td>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	for _, absent := range []string{"DR4-I2-dep-trap", "elsewhere"} {
		if strings.Contains(body, `data-name="`+absent+`"`) {
			t.Errorf("page should not list %q", absent)
		}
	}
}

func TestPage_DiscoveryRulesShowMasterName(t *testing.T) {
	h := New(testCatalog(), zap.NewNop())
	rec := get(t, h, "/?host_id=h1&kind=discovery_rule")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `data-name="DR4-I2-dep-trap" data-candidate="true"`) {
		t.Error("discovery rule row missing")
	}
	if !strings.Contains(body, `<td>I2-lvl1-trap-num</td>`) {
		t.Error("master name of the rule should be rendered")
	}
	if strings.Contains(body, `data-name="I1-lvl1-agent-num"`) {
		t.Error("items should not be listed on the rules tab")
	}
}

func TestPage_Errors(t *testing.T) {
	tests := []struct {
		name       string
		catalog    *fakeCatalog
		target     string
		wantStatus int
		wantBody   string
	}{
		{"unknown host", testCatalog(), "/?host_id=missing", http.StatusNotFound, ""},
		{"unknown kind", testCatalog(), "/?kind=template", http.StatusBadRequest, ""},
		{"catalog failure", &fakeCatalog{err: errors.New("db down")}, "/", http.StatusInternalServerError, ""},
		{"no hosts", &fakeCatalog{}, "/", http.StatusOK, "pollnow seed"},
		{"host without objects", testCatalog(), "/?host_id=h2&kind=discovery_rule", http.StatusOK, "No discovery rules on this host."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, New(tc.catalog, zap.NewNop()), tc.target)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantBody != "" && !strings.Contains(rec.Body.String(), tc.wantBody) {
				t.Errorf("body missing %q", tc.wantBody)
			}
		})
	}
}

func TestObjectPage(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		want     []string
		disabled bool
	}{
		{
			name: "pollable item",
			id:   "agent",
			want: []string{
				`<h2 id="object-name">I1-lvl1-agent-num</h2>`,
				`<dd id="object-kind">Item</dd>`,
				`<a href="../?host_id=h1&amp;kind=item" id="back">Host for execute now permissions</a>`,
			},
		},
		{
			name:     "trapper item",
			id:       "trap",
			want:     []string{`<dd id="object-type">trapper</dd>`},
			disabled: true,
		},
		{
			name: "dependent item links its master",
			id:   "dep",
			want: []string{`<dd id="object-master"><a href="trap">I2-lvl1-trap-num</a></dd>`},
		},
		{
			name: "dependent discovery rule",
			id:   "rule",
			want: []string{
				`<dd id="object-kind">Discovery rule</dd>`,
				`href="../?host_id=h1&amp;kind=discovery_rule"`,
			},
		},
	}
	h := New(testCatalog(), zap.NewNop())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, h, "/objects/"+tc.id)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			body := rec.Body.String()
			for _, want := range tc.want {
				if !strings.Contains(body, want) {
					t.Errorf("page missing %q", want)
				}
			}
			button := `id="execute-one" data-id="` + tc.id + `"`
			if tc.disabled {
				button += " disabled>"
			} else {
				button += ">"
			}
			if !strings.Contains(body, button) {
				t.Errorf("page missing button %q", button)
			}
		})
	}
}

func TestObjectPage_Errors(t *testing.T) {
	if rec := get(t, New(testCatalog(), zap.NewNop()), "/objects/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("missing object status = %d, want 404", rec.Code)
	}
	failing := &fakeCatalog{err: errors.New("db down")}
	if rec := get(t, New(failing, zap.NewNop()), "/objects/agent"); rec.Code != http.StatusInternalServerError {
		t.Errorf("catalog failure status = %d, want 500", rec.Code)
	}
}

func TestPage_LinksToObjects(t *testing.T) {
	rec := get(t, New(testCatalog(), zap.NewNop()), "/")
	if want := `<a href="objects/agent">I1-lvl1-agent-num</a>`; !strings.Contains(rec.Body.String(), want) {
		t.Errorf("page missing %q", want)
	}
}

func TestStaticAssets(t *testing.T) {
	h := New(testCatalog(), zap.NewNop())

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/static/app.js", http.StatusOK, "/api/v1/pulse/execute"},
		{"/static/console.css", http.StatusOK, ".msg-good"},
		{"/static/missing.js", http.StatusNotFound, ""},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rec := get(t, h, tc.path)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantBody != "" && !strings.Contains(rec.Body.String(), tc.wantBody) {
				t.Errorf("body missing %q", tc.wantBody)
			}
		})
	}
}

func TestMountedUnderConsolePrefix(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/console/", http.StripPrefix("/console", New(testCatalog(), zap.NewNop())))

	if rec := get(t, mux, "/console/"); rec.Code != http.StatusOK {
		t.Errorf("GET /console/ = %d, want 200", rec.Code)
	}
	if rec := get(t, mux, "/console/objects/agent"); rec.Code != http.StatusOK {
		t.Errorf("GET /console/objects/agent = %d, want 200", rec.Code)
	}
	if rec := get(t, mux, "/console/static/app.js"); rec.Code != http.StatusOK {
		t.Errorf("GET /console/static/app.js = %d, want 200", rec.Code)
	}
}
