package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"evaluation-console/internal/app"
	"evaluation-console/internal/domain"
	"evaluation-console/internal/logging"
)

const maxImageSize = 10 << 20

// CatalogBackend is the part of the REST client acting on evaluations and courses.
type CatalogBackend interface {
	ToggleEvaluationStatus(ctx context.Context, matricule string) (domain.Evaluation, error)
	UploadCourseImage(ctx context.Context, course, filename string, image io.Reader) (domain.Course, error)
}

// OptionInvalidator drops a cached option list.
type OptionInvalidator interface {
	Invalidate(ctx context.Context, level int, parent string) error
}

// APIDeps lists what the HTTP API serves from.
type APIDeps struct {
	Results   *app.ResultsService
	Dashboard *app.DashboardService
	Questions *app.QuestionService
	Theme     *app.ThemeStore
	Notices   *app.Notifier
	Catalog   CatalogBackend
	Options   OptionInvalidator
	Logger    logging.Logger
}

// APIHandler serves the console over plain HTTP.
type APIHandler struct {
	deps   APIDeps
	logger logging.Logger
}

func NewAPIHandler(deps APIDeps) *APIHandler {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Nop{}
	}
	return &APIHandler{deps: deps, logger: logger}
}

// Register mounts the API routes on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/results", h.ServeResults)
	mux.HandleFunc("/api/theme", h.ServeTheme)
	mux.HandleFunc("GET /api/dashboard", h.ServeDashboard)

	mux.HandleFunc("GET /api/notices", h.listNotices)
	mux.HandleFunc("DELETE /api/notices/{id}", h.dismissNotice)

	mux.HandleFunc("GET /api/evaluations/{m}/questions", h.listQuestions)
	mux.HandleFunc("POST /api/questions", h.createQuestion)
	mux.HandleFunc("PATCH /api/questions/{m}", h.updateQuestion)
	mux.HandleFunc("DELETE /api/questions/{m}", h.deleteQuestion)

	mux.HandleFunc("PATCH /api/evaluations/{m}/status", h.toggleEvaluationStatus)
	mux.HandleFunc("POST /api/courses/{m}/image", h.uploadCourseImage)
	mux.HandleFunc("POST /api/options/refresh", h.refreshOptions)
}

type errorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ServeResults ranks the results of an evaluation (?evaluation=) or a student
// (?etudiant=). q filters, sort and dir order, archived=1 reads the archive.
func (h *APIHandler) ServeResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	query := r.URL.Query()

	kind, subject := app.ResultsByEvaluation, query.Get("evaluation")
	if subject == "" {
		kind, subject = app.ResultsByStudent, query.Get("etudiant")
	}
	if subject == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "missing evaluation or etudiant"})
		return
	}
	sortState, err := app.ParseSortState(query.Get("sort"), query.Get("dir"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}

	var page *app.ResultsPage
	if query.Get("archived") == "1" {
		page, err = h.deps.Results.OpenArchived(r.Context(), kind, subject)
	} else {
		page, err = h.deps.Results.Open(r.Context(), kind, subject)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	page.SetFilter(query.Get("q"))
	page.SetSort(sortState)
	rendered, err := page.Render()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rendered)
}

// ServeTheme reads (GET) or sets (PUT {"mode":"dark"}) the console theme.
func (h *APIHandler) ServeTheme(w http.ResponseWriter, r *http.Request) {
	theme := h.deps.Theme
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, themePayload{Mode: string(theme.Current())})
	case http.MethodPut:
		var payload themePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid theme payload"})
			return
		}
		if err := theme.Set(r.Context(), domain.Theme(payload.Mode)); err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, themePayload{Mode: string(theme.Current())})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ServeDashboard returns the panels that loaded with the notices of the
// failed ones; it only fails when no panel loaded.
func (h *APIHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.Dashboard.Load(r.Context())
	if err != nil && len(view.Loaded) == 0 {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *APIHandler) listNotices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Notices.Pending())
}

func (h *APIHandler) dismissNotice(w http.ResponseWriter, r *http.Request) {
	if !h.deps.Notices.Dismiss(r.PathValue("id")) {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "notice not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type questionList struct {
	Evaluation domain.Evaluation `json:"evaluation"`
	Questions  []domain.Question `json:"questions"`
}

func (h *APIHandler) listQuestions(w http.ResponseWriter, r *http.Request) {
	ev, questions, err := h.deps.Questions.ByEvaluation(r.Context(), r.PathValue("m"), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questionList{Evaluation: ev, Questions: questions})
}

func (h *APIHandler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var draft domain.QuestionDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid question payload"})
		return
	}
	draft.Matricule = ""
	h.saveQuestion(w, r, draft, http.StatusCreated)
}

func (h *APIHandler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var draft domain.QuestionDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid question payload"})
		return
	}
	draft.Matricule = r.PathValue("m")
	h.saveQuestion(w, r, draft, http.StatusOK)
}

func (h *APIHandler) saveQuestion(w http.ResponseWriter, r *http.Request, draft domain.QuestionDraft, status int) {
	q, err := h.deps.Questions.Save(r.Context(), draft)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, status, q)
}

// deleteQuestion requires ?confirm=1; there is no undo.
func (h *APIHandler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	confirmed := r.URL.Query().Get("confirm") == "1"
	if err := h.deps.Questions.Delete(r.Context(), r.PathValue("m"), confirmed); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) toggleEvaluationStatus(w http.ResponseWriter, r *http.Request) {
	ev, err := h.deps.Catalog.ToggleEvaluationStatus(r.Context(), r.PathValue("m"))
	if err != nil {
		h.deps.Notices.PushError(err)
		h.writeError(w, err)
		return
	}
	// the evaluation list of its matiere may now differ
	if ev.Matiere != nil && ev.Matiere.Matricule != "" && h.deps.Options != nil {
		if err := h.deps.Options.Invalidate(r.Context(), 2, ev.Matiere.Matricule); err != nil {
			h.logger.Warn("invalidate evaluation options", ev.Matiere.Matricule, err)
		}
	}
	writeJSON(w, http.StatusOK, ev)
}

func (h *APIHandler) uploadCourseImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid multipart body"})
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Message: "image is required",
			Errors:  map[string]string{"image": "image is required"},
		})
		return
	}
	defer file.Close()

	course, err := h.deps.Catalog.UploadCourseImage(r.Context(), r.PathValue("m"), header.Filename, file)
	if err != nil {
		h.deps.Notices.PushError(err)
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// refreshOptions drops one cached option list (?level=&parent=).
func (h *APIHandler) refreshOptions(w http.ResponseWriter, r *http.Request) {
	level, err := strconv.Atoi(r.URL.Query().Get("level"))
	if err != nil || level < 0 || level >= len(app.DefaultLevels) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: domain.ErrInvalidLevel.Error()})
		return
	}
	if h.deps.Options != nil {
		if err := h.deps.Options.Invalidate(r.Context(), level, r.URL.Query().Get("parent")); err != nil {
			h.writeError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Message: domain.UserMessage(err)}
	status := http.StatusBadGateway
	switch domain.Classify(err) {
	case domain.KindValidation:
		status = http.StatusUnprocessableEntity
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			resp.Errors = verr.Fields
		}
	case domain.KindNotFound:
		status = http.StatusNotFound
	default:
		switch {
		case errors.Is(err, domain.ErrSnapshotNotFound):
			status = http.StatusNotFound
		case errors.Is(err, domain.ErrInvalidTheme):
			status = http.StatusBadRequest
			resp.Message = err.Error()
		case errors.Is(err, domain.ErrConfirmationRequired):
			status = http.StatusPreconditionRequired
			resp.Message = err.Error()
		default:
			h.logger.Error("api request failed", err)
		}
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
