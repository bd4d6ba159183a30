// Package console serves the server-rendered operator pages at /console/.
// It lists a host's items or discovery rules, shows a single object, and
// drives the Execute now action through the pulse API.
package console

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/HerbHall/pollnow/internal/execnow"
	"github.com/HerbHall/pollnow/internal/pulse"
	"github.com/HerbHall/pollnow/internal/version"
	"github.com/HerbHall/pollnow/pkg/models"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var (
	pageTmpl   = template.Must(template.ParseFS(templateFS, "templates/console.html"))
	objectTmpl = template.Must(template.ParseFS(templateFS, "templates/object.html"))
)

// Catalog is the read side of the object catalog the page needs.
type Catalog interface {
	ListHosts(ctx context.Context) ([]models.Host, error)
	ListObjects(ctx context.Context, f pulse.ObjectFilter) ([]models.MonitoredObject, error)
	GetObject(ctx context.Context, id string) (*models.MonitoredObject, error)
}

// Handler renders the console. Mount it with http.StripPrefix("/console", h).
type Handler struct {
	catalog Catalog
	logger  *zap.Logger
	mux     *http.ServeMux
}

// New creates a console Handler.
func New(catalog Catalog, logger *zap.Logger) *Handler {
	h := &Handler{catalog: catalog, logger: logger, mux: http.NewServeMux()}

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("console: failed to create static sub filesystem: " + err.Error())
	}
	h.mux.HandleFunc("GET /{$}", h.handlePage)
	h.mux.HandleFunc("GET /objects/{id}", h.handleObject)
	h.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type row struct {
	ID        string
	Name      string
	Type      models.ObjectType
	Master    string
	Candidate bool
}

type tab struct {
	Label  string
	Kind   models.ObjectKind
	Active bool
}

type pageData struct {
	Hosts   []models.Host
	Host    *models.Host
	Kind    models.ObjectKind
	Tabs    []tab
	Rows    []row
	Noun    string
	Version string
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind := models.ObjectKind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = models.KindItem
	}
	if !kind.Valid() {
		http.Error(w, "unknown kind", http.StatusBadRequest)
		return
	}

	hosts, err := h.catalog.ListHosts(ctx)
	if err != nil {
		h.logger.Error("console: list hosts", zap.Error(err))
		http.Error(w, "failed to load hosts", http.StatusInternalServerError)
		return
	}

	data := pageData{
		Hosts: hosts,
		Kind:  kind,
		Tabs: []tab{
			{Label: "Items", Kind: models.KindItem, Active: kind == models.KindItem},
			{Label: "Discovery rules", Kind: models.KindDiscoveryRule, Active: kind == models.KindDiscoveryRule},
		},
		Noun:    "items",
		Version: version.Short(),
	}
	if kind == models.KindDiscoveryRule {
		data.Noun = "discovery rules"
	}

	if hostID := r.URL.Query().Get("host_id"); hostID != "" {
		for i := range hosts {
			if hosts[i].ID == hostID {
				data.Host = &hosts[i]
			}
		}
		if data.Host == nil {
			http.NotFound(w, r)
			return
		}
	} else if len(hosts) > 0 {
		data.Host = &hosts[0]
	}

	if data.Host != nil {
		objects, err := h.catalog.ListObjects(ctx, pulse.ObjectFilter{HostID: data.Host.ID, Kind: kind})
		if err != nil {
			h.logger.Error("console: list objects", zap.String("host_id", data.Host.ID), zap.Error(err))
			http.Error(w, "failed to load objects", http.StatusInternalServerError)
			return
		}
		data.Rows = buildRows(objects, h.masterNames(ctx, data.Host.ID, objects))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		h.logger.Error("console: render", zap.Error(err))
	}
}

type objectData struct {
	Object    models.MonitoredObject
	Host      models.Host
	Master    *models.MonitoredObject
	Noun      string
	Candidate bool
	Version   string
}

// handleObject renders one item or discovery rule with its own Execute now
// button. The button is offered under the same rule as on the list page.
func (h *Handler) handleObject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	obj, err := h.catalog.GetObject(ctx, id)
	if err != nil {
		h.logger.Error("console: get object", zap.String("object_id", id), zap.Error(err))
		http.Error(w, "failed to load object", http.StatusInternalServerError)
		return
	}
	if obj == nil {
		http.NotFound(w, r)
		return
	}

	hosts, err := h.catalog.ListHosts(ctx)
	if err != nil {
		h.logger.Error("console: list hosts", zap.Error(err))
		http.Error(w, "failed to load hosts", http.StatusInternalServerError)
		return
	}

	data := objectData{
		Object:    *obj,
		Host:      models.Host{ID: obj.HostID, Name: obj.HostID},
		Noun:      "Item",
		Candidate: execnow.Available([]models.MonitoredObject{*obj}),
		Version:   version.Short(),
	}
	if obj.Kind == models.KindDiscoveryRule {
		data.Noun = "Discovery rule"
	}
	for i := range hosts {
		if hosts[i].ID == obj.HostID {
			data.Host = hosts[i]
		}
	}
	if obj.IsDependent() {
		master, err := h.catalog.GetObject(ctx, obj.MasterID)
		if err != nil {
			h.logger.Warn("console: get master", zap.String("master_id", obj.MasterID), zap.Error(err))
		}
		data.Master = master
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := objectTmpl.Execute(w, data); err != nil {
		h.logger.Error("console: render", zap.Error(err))
	}
}

// masterNames maps master ids to names. Rules list their masters from the
// items of the same host, so both kinds are consulted.
func (h *Handler) masterNames(ctx context.Context, hostID string, objects []models.MonitoredObject) map[string]string {
	names := make(map[string]string, len(objects))
	need := false
	for i := range objects {
		names[objects[i].ID] = objects[i].Name
		if objects[i].IsDependent() {
			need = true
		}
	}
	if !need {
		return names
	}
	items, err := h.catalog.ListObjects(ctx, pulse.ObjectFilter{HostID: hostID, Kind: models.KindItem})
	if err != nil {
		h.logger.Warn("console: list master items", zap.Error(err))
		return names
	}
	for i := range items {
		names[items[i].ID] = items[i].Name
	}
	return names
}

func buildRows(objects []models.MonitoredObject, names map[string]string) []row {
	rows := make([]row, 0, len(objects))
	for i := range objects {
		o := objects[i]
		rows = append(rows, row{
			ID:        o.ID,
			Name:      o.Name,
			Type:      o.Type,
			Master:    names[o.MasterID],
			Candidate: execnow.Available([]models.MonitoredObject{o}),
		})
	}
	return rows
}
