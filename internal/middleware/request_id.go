package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestIDHeader es el header de respuesta con el id del request.
const RequestIDHeader = "X-Request-ID"

// EchoRequestID devuelve en la respuesta el id que asignó chimw.RequestID,
// así la UI puede citarlo al reportar un error. Va después de chimw.RequestID.
func EchoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			w.Header().Set(RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}
