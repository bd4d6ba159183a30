package pulse

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/HerbHall/pollnow/internal/execnow"
	"github.com/HerbHall/pollnow/pkg/models"
	"github.com/HerbHall/pollnow/pkg/plugin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxExecuteIDs bounds a single Execute now request.
const maxExecuteIDs = 1000

// ExecuteRequest is the body of POST /pulse/execute.
type ExecuteRequest struct {
	IDs []string `json:"ids" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// ExecuteResponse is returned when the request was sent.
type ExecuteResponse struct {
	Outcome  string   `json:"outcome" example:"partially_accepted"`
	Message  string   `json:"message" example:"Request sent successfully"`
	Accepted int      `json:"accepted" example:"2"`
	Filtered int      `json:"filtered" example:"1"`
	TaskIDs  []string `json:"task_ids"`
	Selected int      `json:"selected" example:"0"`
}

// ExecuteProblem is the 409 body for a rejected selection.
type ExecuteProblem struct {
	models.APIProblem
	Reason   string `json:"reason" example:"wrong_master_type"`
	Selected int    `json:"selected" example:"3"`
}

// Availability reports whether Execute now is offered for one object.
type Availability struct {
	ObjectID  string `json:"object_id"`
	Available bool   `json:"available"`
	Eligible  bool   `json:"eligible"`
}

// Routes implements plugin.HTTPProvider.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/hosts", Handler: m.handleListHosts},
		{Method: "GET", Path: "/objects", Handler: m.handleListObjects},
		{Method: "GET", Path: "/objects/{id}", Handler: m.handleGetObject},
		{Method: "GET", Path: "/objects/{id}/execute", Handler: m.handleObjectAvailability},
		{Method: "GET", Path: "/results/{object_id}", Handler: m.handleObjectResults},
		{Method: "GET", Path: "/tasks/{id}", Handler: m.handleGetTask},
		{Method: "POST", Path: "/execute", Handler: m.handleExecute},
	}
}

// handleListHosts returns all hosts.
//
//	@Summary		List hosts
//	@Tags			pulse
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200 {array} models.Host
//	@Failure		500 {object} models.APIProblem
//	@Router			/pulse/hosts [get]
func (m *Module) handleListHosts(w http.ResponseWriter, r *http.Request) {
	if m.store == nil {
		pulseWriteError(w, http.StatusServiceUnavailable, ErrUnavailable.Error())
		return
	}
	hosts, err := m.store.ListHosts(r.Context())
	if err != nil {
		m.logger.Warn("failed to list hosts", zap.Error(err))
		pulseWriteError(w, http.StatusInternalServerError, "failed to list hosts")
		return
	}
	if hosts == nil {
		hosts = []models.Host{}
	}
	pulseWriteJSON(w, http.StatusOK, hosts)
}

// handleListObjects returns items and discovery rules.
//
//	@Summary		List objects
//	@Description	Returns items and discovery rules, optionally filtered by host, kind and name substring.
//	@Tags			pulse
//	@Produce		json
//	@Security		BearerAuth
//	@Param			host_id query string false "Host ID"
//	@Param			kind query string false "item or discovery_rule"
//	@Param			name query string false "Name substring"
//	@Success		200 {array} models.MonitoredObject
//	@Failure		400 {object} models.APIProblem
//	@Router			/pulse/objects [get]
func (m *Module) handleListObjects(w http.ResponseWriter, r *http.Request) {
	if m.store == nil {
		pulseWriteError(w, http.StatusServiceUnavailable, ErrUnavailable.Error())
		return
	}
	q := r.URL.Query()
	f := ObjectFilter{
		HostID: q.Get("host_id"),
		Kind:   models.ObjectKind(q.Get("kind")),
		Name:   q.Get("name"),
	}
	if f.Kind != "" && !f.Kind.Valid() {
		pulseWriteError(w, http.StatusBadRequest, "kind must be item or discovery_rule")
		return
	}
	objects, err := m.store.ListObjects(r.Context(), f)
	if err != nil {
		m.logger.Warn("failed to list objects", zap.Error(err))
		pulseWriteError(w, http.StatusInternalServerError, "failed to list objects")
		return
	}
	if objects == nil {
		objects = []models.MonitoredObject{}
	}
	pulseWriteJSON(w, http.StatusOK, objects)
}

// handleGetObject returns one object.
//
//	@Summary		Get object
//	@Tags			pulse
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id path string true "Object ID"
//	@Success		200 {object} models.MonitoredObject
//	@Failure		404 {object} models.APIProblem
//	@Router			/pulse/objects/{id} [get]
func (m *Module) handleGetObject(w http.ResponseWriter, r *http.Request) {
	obj, ok := m.lookupObject(w, r)
	if !ok {
		return
	}
	pulseWriteJSON(w, http.StatusOK, obj)
}

// handleObjectAvailability reports the state of the Execute now action for
// one object, as shown in its context menu or on its page.
//
//	@Summary		Execute now availability
//	@Tags			pulse
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id path string true "Object ID"
//	@Success		200 {object} Availability
//	@Failure		404 {object} models.APIProblem
//	@Router			/pulse/objects/{id}/execute [get]
func (m *Module) handleObjectAvailability(w http.ResponseWriter, r *http.Request) {
	obj, ok := m.lookupObject(w, r)
	if !ok {
		return
	}
	pulseWriteJSON(w, http.StatusOK, Availability{
		ObjectID:  obj.ID,
		Available: execnow.Available([]models.MonitoredObject{*obj}),
		Eligible:  execnow.Eligible(obj),
	})
}

func (m *Module) lookupObject(w http.ResponseWriter, r *http.Request) (*models.MonitoredObject, bool) {
	if m.store == nil {
		pulseWriteError(w, http.StatusServiceUnavailable, ErrUnavailable.Error())
		return nil, false
	}
	id := r.PathValue("id")
	if id == "" {
		pulseWriteError(w, http.StatusBadRequest, "id is required")
		return nil, false
	}
	obj, err := m.store.GetObject(r.Context(), id)
	if err != nil {
		m.logger.Warn("failed to get object", zap.String("id", id), zap.Error(err))
		pulseWriteError(w, http.StatusInternalServerError, "failed to get object")
		return nil, false
	}
	if obj == nil {
		pulseWriteError(w, http.StatusNotFound, "object not found")
		return nil, false
	}
	return obj, true
}

// handleObjectResults returns recent poll results for an object.
//
//	@Summary		Object results
//	@Tags			pulse
//	@Produce		json
//	@Security		BearerAuth
//	@Param			object_id path string true "Object ID"
//	@Param			limit query int false "Maximum results" default(100)
//	@Success		200 {array} Result
//	@Failure		500 {object} models.APIProblem
//	@Router			/pulse/results/{object_id} [get]
func (m *Module) handleObjectResults(w http.ResponseWriter, r *http.Request) {
	if m.store == nil {
		pulseWriteError(w, http.StatusServiceUnavailable, ErrUnavailable.Error())
		return
	}
	objectID := r.PathValue("object_id")
	if objectID == "" {
		pulseWriteError(w, http.StatusBadRequest, "object_id is required")
		return
	}
	results, err := m.store.ListResults(r.Context(), objectID, pulseParseLimit(r, 100))
	if err != nil {
		m.logger.Warn("failed to list results", zap.String("object_id", objectID), zap.Error(err))
		pulseWriteError(w, http.StatusInternalServerError, "failed to list results")
		return
	}
	if results == nil {
		results = []Result{}
	}
	pulseWriteJSON(w, http.StatusOK, results)
}

// handleGetTask returns the state of one execute-now task.
//
//	@Summary		Get task
//	@Tags			pulse
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id path string true "Task ID"
//	@Success		200 {object} Task
//	@Failure		404 {object} models.APIProblem
//	@Router			/pulse/tasks/{id} [get]
func (m *Module) handleGetTask(w http.ResponseWriter, r *http.Request) {
	if m.store == nil {
		pulseWriteError(w, http.StatusServiceUnavailable, ErrUnavailable.Error())
		return
	}
	task, err := m.store.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		m.logger.Warn("failed to get task", zap.Error(err))
		pulseWriteError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		pulseWriteError(w, http.StatusNotFound, "task not found")
		return
	}
	pulseWriteJSON(w, http.StatusOK, task)
}

// handleExecute is the Execute now request.
//
//	@Summary		Execute now
//	@Description	Polls the selected items or discovery rules immediately. Ineligible objects are filtered; if none is eligible the request is rejected.
//	@Tags			pulse
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request body ExecuteRequest true "Selected object ids"
//	@Success		200 {object} ExecuteResponse
//	@Failure		400 {object} models.APIProblem
//	@Failure		409 {object} ExecuteProblem
//	@Failure		503 {object} models.APIProblem
//	@Router			/pulse/execute [post]
func (m *Module) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		pulseWriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		pulseWriteError(w, http.StatusBadRequest, "ids must not be empty")
		return
	}
	if len(req.IDs) > maxExecuteIDs {
		pulseWriteError(w, http.StatusBadRequest, "too many ids; maximum is "+strconv.Itoa(maxExecuteIDs))
		return
	}
	for _, id := range req.IDs {
		if _, err := uuid.Parse(id); err != nil {
			pulseWriteError(w, http.StatusBadRequest, "invalid object id "+strconv.Quote(id))
			return
		}
	}

	exec, err := m.ExecuteNow(r.Context(), req.IDs)
	switch {
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrQueueFull):
		pulseWriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	case errors.Is(err, ErrObjectNotFound), errors.Is(err, ErrMissingMaster):
		pulseWriteError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		m.logger.Warn("execute now failed", zap.Error(err))
		pulseWriteError(w, http.StatusInternalServerError, "failed to dispatch request")
		return
	}

	o := exec.Outcome
	if !o.Accepted() {
		problem := models.NewProblem(http.StatusConflict, o.Message(), r.URL.Path)
		problem.Title = execnow.TitleRejected
		pulseWriteJSONType(w, http.StatusConflict, "application/problem+json", ExecuteProblem{
			APIProblem: problem,
			Reason:     string(o.Reason),
			Selected:   exec.Selected,
		})
		return
	}

	m.logger.Info("execute now dispatched",
		zap.String("outcome", string(o.Kind)),
		zap.Int("accepted", o.ActedUpon()),
		zap.Int("filtered", len(o.Filtered)),
	)
	pulseWriteJSON(w, http.StatusOK, ExecuteResponse{
		Outcome:  string(o.Kind),
		Message:  o.Message(),
		Accepted: o.ActedUpon(),
		Filtered: len(o.Filtered),
		TaskIDs:  exec.TaskIDs(),
		Selected: 0,
	})
}

// -- helpers --

func pulseWriteJSON(w http.ResponseWriter, status int, data any) {
	pulseWriteJSONType(w, status, "application/json", data)
}

func pulseWriteJSONType(w http.ResponseWriter, status int, contentType string, data any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func pulseWriteError(w http.ResponseWriter, status int, detail string) {
	pulseWriteJSONType(w, status, "application/problem+json", models.NewProblem(status, detail, ""))
}

func pulseParseLimit(r *http.Request, defaultLimit int) int {
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 1000 {
			return n
		}
	}
	return defaultLimit
}
