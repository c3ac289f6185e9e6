package screen

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"vet-console/internal/domain/editsession"
	"vet-console/internal/domain/entity"
	"vet-console/internal/ports/resources"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, c *Console) {
	r.Get("/kinds", listKindsHandler(c))

	r.Route("/screens/{kind}", func(sr chi.Router) {
		sr.Get("/", viewHandler(c))
		sr.Post("/load", loadHandler(c))
		sr.Post("/show-all", showAllHandler(c))
		sr.Post("/search/{variant}", searchHandler(c))
		sr.Get("/options/{ref}", optionsHandler(c))
		sr.Get("/notifications", notificationsHandler(c))

		// Sesión de edición
		sr.Put("/session/fields", setFieldsHandler(c))
		sr.Post("/session/edit/{id}", editHandler(c))
		sr.Post("/session/cancel", cancelHandler(c))
		sr.Post("/session/submit", submitHandler(c))

		sr.Delete("/rows/{id}", deleteHandler(c))
	})
}

type searchRequest struct {
	Params map[string]string `json:"params"`
}

type setFieldsRequest struct {
	Fields map[string]string `json:"fields"`
}

type editRequest struct {
	ConfirmDiscard bool `json:"confirmDiscard"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func listKindsHandler(c *Console) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		kinds := c.Registry().Kinds()
		out := make([]entity.Schema, 0, len(kinds))
		for _, k := range kinds {
			s, _ := c.Registry().Get(k)
			out = append(out, s)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func viewHandler(c *Console) http.HandlerFunc {
	return withScreen(c, func(w http.ResponseWriter, _ *http.Request, sc *Screen) {
		writeJSON(w, http.StatusOK, sc.View())
	})
}

func loadHandler(c *Console) http.HandlerFunc {
	return withScreen(c, func(w http.ResponseWriter, r *http.Request, sc *Screen) {
		if err := sc.Load(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sc.View())
	})
}

func showAllHandler(c *Console) http.HandlerFunc {
	return withScreen(c, func(w http.ResponseWriter, r *http.Request, sc *Screen) {
		if err := sc.ShowAll(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sc.View())
	})
}

func searchHandler(c *Console) http.HandlerFunc {
	return withScreen(c, func(w http.ResponseWriter, r *http.Request, sc *Screen) {
		var req searchRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := sc.Search(r.Context(), chi.URLParam(r, "variant"), req.Params); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sc.View())
	})
}

func optionsHandler(c *Console) http.HandlerFunc {
	return withScreen(c, func(w http.ResponseWriter, r *http.Request, sc *Screen) {
		opts, err := sc.Options(chi.URLParam(r, "ref"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, opts)
	})
}

func notificationsHandler(c *Console) http.HandlerFunc {
	return withScreen(c, func(w http.ResponseWriter, _ *http.Request, sc *Screen) {
		writeJSON(w, http.StatusOK, sc.Notifications())
	})
}

func setFieldsHandler(c *Console) http.HandlerFunc {
	return withScreen(c, func(w http.ResponseWriter, r *http.Request, sc *Screen) {
		var req setFieldsRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := sc.Set(req.Fields); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sc.Session().View())
	})
}

func editHandler(c *Console) http.HandlerFunc {
	return withScreen(c, func(w http.ResponseWriter, r *http.Request, sc *Screen) {
		var req editRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := sc.Edit(chi.URLParam(r, "id"), req.ConfirmDiscard); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sc.Session().View())
	})
}

func cancelHandler(c *Console) http.HandlerFunc {
	return withScreen(c, func(w http.ResponseWriter, _ *http.Request, sc *Screen) {
		sc.Cancel()
		writeJSON(w, http.StatusOK, sc.Session().View())
	})
}

func submitHandler(c *Console) http.HandlerFunc {
	return withScreen(c, func(w http.ResponseWriter, r *http.Request, sc *Screen) {
		if err := sc.Submit(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sc.View())
	})
}

func deleteHandler(c *Console) http.HandlerFunc {
	return withScreen(c, func(w http.ResponseWriter, r *http.Request, sc *Screen) {
		if err := sc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sc.View())
	})
}

func withScreen(c *Console, h func(http.ResponseWriter, *http.Request, *Screen)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := c.Screen(entity.Kind(chi.URLParam(r, "kind")))
		if err != nil {
			writeError(w, err)
			return
		}
		h(w, r, sc)
	}
}

// decodeBody acepta body vacío (queda el zero value).
func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json", Code: "invalid_input"})
		return false
	}
	return true
}

// writeError traduce errores de dominio a status HTTP.
func writeError(w http.ResponseWriter, err error) {
	if f, ok := resources.AsFailure(err); ok {
		status := http.StatusBadGateway
		if errors.Is(f, entity.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorResponse{Error: f.Message, Code: string(f.Op)})
		return
	}

	switch {
	case errors.Is(err, entity.ErrUnknownKind):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Code: "unknown_kind"})
	case errors.Is(err, ErrRowNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, editsession.ErrUnsavedChanges):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Code: "unsaved_changes"})
	case errors.Is(err, entity.ErrUnknownField), errors.Is(err, entity.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_input"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
