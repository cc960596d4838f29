package novel

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	novelModel "github.com/nennneko5787/novelist-ai/internal/model/novel"
	novelservice "github.com/nennneko5787/novelist-ai/internal/service/novel"
	"github.com/nennneko5787/novelist-ai/pkg/utils"
)

// Handler exposes novel creation and page navigation over HTTP.
type Handler struct {
	engine   *novelservice.Engine
	upgrader websocket.Upgrader
}

// New creates the novel handler.
func New(engine *novelservice.Engine) *Handler {
	return &Handler{
		engine: engine,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the novel routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/novels", h.handleCreate)
	r.Get("/novels", h.handleList)
	r.Get("/novels/{novelID}", h.handleRecall)
	r.Get("/novels/{novelID}/pages/{page}", h.handlePage)
	r.Post("/novels/{novelID}/navigate", h.handleNavigate)
	r.Get("/novels/{novelID}/stream", h.handleStream)
	r.Get("/novels/{novelID}/ws", h.handleWebSocket)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Premise string `json:"premise"`
		Owner   int64  `json:"owner"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.engine.CreateNovel(r.Context(), payload.Premise, payload.Owner)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, view)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("owner")
	if raw == "" {
		utils.RespondError(w, http.StatusBadRequest, "owner query parameter is required")
		return
	}

	owner, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "owner must be an integer")
		return
	}

	summaries, err := h.engine.ListByOwner(r.Context(), owner)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	if summaries == nil {
		summaries = []novelModel.Summary{}
	}

	utils.RespondJSON(w, http.StatusOK, summaries)
}

// handleRecall opens a novel at its first page, the entry point for a
// shared novel id.
func (h *Handler) handleRecall(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.RequestPage(r.Context(), chi.URLParam(r, "novelID"), 0)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "page must be an integer")
		return
	}

	view, err := h.engine.RequestPage(r.Context(), chi.URLParam(r, "novelID"), page)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, view)
}

// handleNavigate applies a prev/next offset to the reader's current page
// and serves the result; this is the JSON form of the reader UI's
// navigation buttons.
func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Direction   string `json:"direction"`
		CurrentPage int    `json:"currentPage"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	page := payload.CurrentPage
	switch payload.Direction {
	case "prev":
		page--
	case "next":
		page++
	default:
		utils.RespondError(w, http.StatusBadRequest, "direction must be prev or next")
		return
	}

	view, err := h.engine.RequestPage(r.Context(), chi.URLParam(r, "novelID"), page)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, view)
}

// respondEngineError translates the engine's error taxonomy into HTTP
// statuses and reader-facing messages.
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, novelModel.ErrNovelNotFound):
		utils.RespondError(w, http.StatusNotFound, "novel not found")
	case errors.Is(err, novelModel.ErrPageOutOfRange):
		utils.RespondError(w, http.StatusNotFound, "no more pages")
	case errors.Is(err, novelModel.ErrGenerationBusy):
		utils.RespondError(w, http.StatusConflict, "a page is already being generated")
	case errors.Is(err, novelModel.ErrPremiseRequired):
		utils.RespondError(w, http.StatusBadRequest, "premise is required")
	case errors.Is(err, novelModel.ErrGenerationFailed):
		utils.RespondError(w, http.StatusBadGateway, "page generation failed")
	default:
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
