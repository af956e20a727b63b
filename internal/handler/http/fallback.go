package http

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/hlog"
)

// NotFound answers unmatched paths in the same JSON shape as every other failure.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusNotFound, "Rota não encontrada")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
}

// Recoverer turns a handler panic into a logged JSON 500. It follows chi's
// middleware.Recoverer, including re-panicking http.ErrAbortHandler.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			hlog.FromRequest(r).Error().
				Interface("panic_value", rvr).
				Str("stack", string(debug.Stack())).
				Msg("Recovered from handler panic")

			if r.Header.Get("Connection") != "Upgrade" {
				respondWithError(w, http.StatusInternalServerError, "Erro no servidor")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
