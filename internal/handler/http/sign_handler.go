package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/vasiliy-maslov/vura/internal/sign"
)

type SignHandler struct {
	service sign.Service
}

func NewSignHandler(service sign.Service) *SignHandler {
	return &SignHandler{service: service}
}

func (h *SignHandler) RegisterRoutes(router chi.Router) {
	router.Get("/signos", h.handleList)
	router.Get("/signos/{nome}", h.handleGet)
}

func (h *SignHandler) handleList(w http.ResponseWriter, r *http.Request) {
	signs, err := h.service.List(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to list signs via service")
		respondWithError(w, mapErrorToStatusCode(err), "Erro no banco de dados")
		return
	}

	respondWithJSON(w, http.StatusOK, signs)
}

func (h *SignHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	// chi hands back the escaped segment when the path has non-ASCII names like "Áries".
	nameParam, err := url.PathUnescape(chi.URLParam(r, "nome"))
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Signo não encontrado")
		return
	}

	found, err := h.service.Get(r.Context(), nameParam)
	if err != nil {
		clientMessage := "Signo não encontrado"
		if !errors.Is(err, sign.ErrNotFound) {
			hlog.FromRequest(r).Error().Err(err).Str("sign", nameParam).Msg("Failed to get sign via service")
			clientMessage = "Erro no banco"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, found)
}
