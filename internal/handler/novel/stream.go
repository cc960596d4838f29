package novel

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	novelModel "github.com/nennneko5787/novelist-ai/internal/model/novel"
	"github.com/nennneko5787/novelist-ai/pkg/utils"
)

// handleStream generates the frontier page and relays it over
// Server-Sent Events as the model produces it. Events: start, delta
// (text fragments), page (the final view), end, error.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	novelID := chi.URLParam(r, "novelID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "start", map[string]string{"novelId": novelID})

	view, err := h.engine.StreamFrontier(r.Context(), novelID, func(delta string) {
		utils.SendSSEEvent(w, flusher, "delta", map[string]string{"content": delta})
	})
	if err != nil {
		log.Printf("[stream] generation failed for novel %s: %v", novelID, err)
		utils.SendSSEEvent(w, flusher, "error", map[string]string{"error": streamErrorMessage(err)})
		return
	}

	utils.SendSSEEvent(w, flusher, "page", view)
	utils.SendSSEEvent(w, flusher, "end", map[string]bool{"finished": view.Finished})
}

func streamErrorMessage(err error) string {
	switch {
	case errors.Is(err, novelModel.ErrNovelNotFound):
		return "novel not found"
	case errors.Is(err, novelModel.ErrPageOutOfRange):
		return "no more pages"
	case errors.Is(err, novelModel.ErrGenerationBusy):
		return "a page is already being generated"
	case errors.Is(err, novelModel.ErrGenerationFailed):
		return "page generation failed"
	default:
		return "internal error"
	}
}
