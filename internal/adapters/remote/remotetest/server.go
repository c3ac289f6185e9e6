// Package remotetest levanta un servicio REST de clínica en memoria para tests
// de la consola. Implementa el contrato de listados ({"content": [...]}),
// create/update/delete por id y respuestas enlatadas para búsquedas.
package remotetest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"vet-console/internal/domain/entity"

	"github.com/go-chi/chi/v5"
)

// Request es una llamada recibida por el server.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     map[string]any
}

type canned struct {
	status int
	body   string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	reg      *entity.Registry
	byKind   map[entity.Kind][]entity.Record
	nextID   int
	requests []Request
	canned   map[string]canned // "METHOD /path?query"
	failures map[string]canned // "METHOD /path", consumido una vez
	hold     map[string]chan struct{}
}

// New arranca el server y lo cierra con t.Cleanup.
func New(t testing.TB, reg *entity.Registry) *Server {
	t.Helper()

	s := &Server{
		reg:      reg,
		byKind:   map[entity.Kind][]entity.Record{},
		nextID:   100,
		canned:   map[string]canned{},
		failures: map[string]canned{},
		hold:     map[string]chan struct{}{},
	}

	r := chi.NewRouter()
	r.Use(s.record)
	for _, kind := range reg.Kinds() {
		sch, _ := reg.Get(kind)
		r.Route(sch.Path, func(kr chi.Router) {
			kr.Get("/", s.list(sch))
			kr.Get("/{action}", s.search(sch))
			kr.Post("/", s.create(sch))
			kr.Put("/{id}", s.update(sch))
			kr.Delete("/{id}", s.delete(sch))
		})
	}

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Seed agrega registros tal cual (con su id) al final de la colección.
func (s *Server) Seed(kind entity.Kind, records ...entity.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.byKind[kind] = append(s.byKind[kind], r.Clone())
	}
}

// Records devuelve una copia de la colección del servidor.
func (s *Server) Records(kind entity.Kind) []entity.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Record, 0, len(s.byKind[kind]))
	for _, r := range s.byKind[kind] {
		out = append(out, r.Clone())
	}
	return out
}

// Respond fija un body crudo para "METHOD /path?query" (query tal cual la
// manda el cliente, o vacía).
func (s *Server) Respond(method, target string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canned[method+" "+target] = canned{status: status, body: body}
}

// FailNext hace que la próxima llamada METHOD /path falle con status y
// {"message": message} (message vacío => body vacío).
func (s *Server) FailNext(method, path string, status int, message string) {
	body := ""
	if message != "" {
		b, _ := json.Marshal(map[string]string{"message": message})
		body = string(b)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = canned{status: status, body: body}
}

// Hold bloquea la próxima llamada METHOD /path hasta que se llame al release.
func (s *Server) Hold(method, path string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.hold[method+" "+path] = ch
	s.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// Requests devuelve las llamadas recibidas en orden.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count cuenta llamadas METHOD /path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			if len(raw) > 0 {
				dec := json.NewDecoder(strings.NewReader(string(raw)))
				dec.UseNumber()
				_ = dec.Decode(&body)
			}
		}

		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Header:   r.Header.Clone(),
			Body:     body,
		})
		hold, held := s.hold[key]
		delete(s.hold, key)
		fail, failing := s.failures[key]
		delete(s.failures, key)
		target := key
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		c, isCanned := s.canned[target]
		s.mu.Unlock()

		if held {
			<-hold
		}
		if failing {
			writeRaw(w, fail.status, fail.body)
			return
		}
		if isCanned {
			writeRaw(w, c.status, c.body)
			return
		}

		// El body ya se consumió; los handlers lo leen del contexto.
		next.ServeHTTP(w, r.WithContext(withBody(r.Context(), body)))
	})
}

func (s *Server) list(sch entity.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"content": s.Records(sch.Kind)})
	}
}

// search sin respuesta enlatada devuelve una página vacía.
func (s *Server) search(sch entity.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action := "/" + chi.URLParam(r, "action")
		for _, v := range sch.Searches {
			if v.Path == action {
				writeJSON(w, http.StatusOK, map[string]any{"content": []any{}})
				return
			}
		}
		writeMessage(w, http.StatusNotFound, "no such search")
	}
}

func (s *Server) create(sch entity.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := bodyFrom(r.Context())
		if body == nil {
			writeMessage(w, http.StatusBadRequest, "invalid json")
			return
		}

		s.mu.Lock()
		s.nextID++
		rec := s.materialize(sch, body)
		rec["id"] = json.Number(strconv.Itoa(s.nextID))
		s.byKind[sch.Kind] = append(s.byKind[sch.Kind], rec)
		out := rec.Clone()
		s.mu.Unlock()

		writeJSON(w, http.StatusCreated, out)
	}
}

func (s *Server) update(sch entity.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		body := bodyFrom(r.Context())
		if body == nil {
			writeMessage(w, http.StatusBadRequest, "invalid json")
			return
		}

		s.mu.Lock()
		idx := s.indexOf(sch.Kind, id)
		if idx < 0 {
			s.mu.Unlock()
			writeMessage(w, http.StatusNotFound, fmt.Sprintf("%s %s not found", sch.Name, id))
			return
		}
		rec := s.materialize(sch, body)
		rec["id"] = s.byKind[sch.Kind][idx]["id"]
		s.byKind[sch.Kind][idx] = rec
		out := rec.Clone()
		s.mu.Unlock()

		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) delete(sch entity.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		s.mu.Lock()
		idx := s.indexOf(sch.Kind, id)
		if idx < 0 {
			s.mu.Unlock()
			writeMessage(w, http.StatusNotFound, fmt.Sprintf("%s %s not found", sch.Name, id))
			return
		}
		items := s.byKind[sch.Kind]
		s.byKind[sch.Kind] = append(items[:idx:idx], items[idx+1:]...)
		s.mu.Unlock()

		w.WriteHeader(http.StatusNoContent)
	}
}

// materialize arma el registro guardado: las refs anidadas se expanden al
// registro referenciado completo, como hace el backend real.
func (s *Server) materialize(sch entity.Schema, body map[string]any) entity.Record {
	rec := entity.Record{}
	for k, v := range body {
		rec[k] = v
	}
	for _, ref := range sch.Refs {
		if ref.Wire != entity.WireNested {
			continue
		}
		id := entity.Record(body).RefID(ref)
		if id == "" {
			continue
		}
		if idx := s.indexOf(ref.Kind, id); idx >= 0 {
			rec[ref.Key] = s.byKind[ref.Kind][idx].Clone()
		}
	}
	return rec
}

func (s *Server) indexOf(kind entity.Kind, id string) int {
	for i, r := range s.byKind[kind] {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeRaw(w http.ResponseWriter, status int, body string) {
	if body != "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
