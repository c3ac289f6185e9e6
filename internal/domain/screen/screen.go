// Package screen es la pantalla genérica de la consola: un kind principal,
// sus colecciones auxiliares, la sesión de edición y el feed de avisos.
// Toda falla remota termina acá como una sola notificación y nunca deja el
// estado local a medias.
package screen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"vet-console/internal/domain/collection"
	"vet-console/internal/domain/editsession"
	"vet-console/internal/domain/entity"
	"vet-console/internal/domain/relation"
	"vet-console/internal/domain/search"
	"vet-console/internal/platform/logger"
	"vet-console/internal/ports/resources"
)

var ErrRowNotFound = errors.New("row not found")

type Options struct {
	Client            resources.Client
	Registry          *entity.Registry
	Logger            logger.Logger
	NotificationLimit int
}

type Screen struct {
	schema entity.Schema
	aux    []entity.Kind

	client   resources.Client
	cache    *collection.Cache
	resolver *relation.Resolver
	search   *search.Dispatcher
	feed     *Feed
	log      logger.Logger

	mu      sync.Mutex
	session editsession.Session
}

func New(kind entity.Kind, opts Options) (*Screen, error) {
	if opts.Client == nil || opts.Registry == nil {
		return nil, errors.New("screen: client and registry are required")
	}
	s, err := opts.Registry.Lookup(kind)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	cache := collection.New()
	return &Screen{
		schema:   s,
		aux:      opts.Registry.Dependencies(kind),
		client:   opts.Client,
		cache:    cache,
		resolver: relation.NewResolver(opts.Registry, cache),
		search:   search.NewDispatcher(opts.Client, cache, opts.Registry),
		feed:     NewFeed(opts.NotificationLimit),
		log:      log.With(map[string]any{"screen": string(kind)}),
		session:  editsession.New(s),
	}, nil
}

func (sc *Screen) Kind() entity.Kind { return sc.schema.Kind }
func (sc *Screen) Schema() entity.Schema { return sc.schema }

// Auxiliaries son los kinds que la pantalla carga para resolver labels.
func (sc *Screen) Auxiliaries() []entity.Kind {
	return append([]entity.Kind(nil), sc.aux...)
}

// Load trae las colecciones auxiliares y después la principal. Si una falla
// las demás se cargan igual; el error devuelto junta todas las fallas.
func (sc *Screen) Load(ctx context.Context) error {
	var errs []error
	for _, kind := range sc.aux {
		t := sc.cache.Begin(kind)
		records, err := sc.client.List(ctx, kind)
		if err != nil {
			sc.cache.Abandon(t)
			sc.fail(err)
			errs = append(errs, err)
			continue
		}
		sc.cache.Commit(t, records, nil)
	}
	if err := sc.ShowAll(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Rows devuelve la colección principal con sus labels resueltos.
func (sc *Screen) Rows() []relation.Row {
	rows := sc.resolver.Rows(sc.schema.Kind, sc.cache.Records(sc.schema.Kind))
	sess := sc.Session()
	for i := range rows {
		rows[i].Editing = sess.Editing(rows[i].ID)
	}
	return rows
}

// Options arma el selector de la ref refKey a partir de su colección auxiliar.
func (sc *Screen) Options(refKey string) ([]relation.Option, error) {
	ref, ok := sc.schema.Ref(refKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no reference %q", entity.ErrUnknownField, sc.schema.Name, refKey)
	}
	return sc.resolver.Options(ref.Kind), nil
}

func (sc *Screen) Session() editsession.Session {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.session
}

// Filter es el filtro activo de la colección principal (nil = sin filtro).
func (sc *Screen) Filter() *collection.Filter {
	return sc.cache.Get(sc.schema.Kind).Filter
}

func (sc *Screen) Notifications() []Notification {
	return sc.feed.List()
}

func (sc *Screen) Set(values map[string]string) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	next, err := sc.session.SetAll(values)
	if err != nil {
		return err
	}
	sc.session = next
	return nil
}

// Edit pone la fila id en edición.
func (sc *Screen) Edit(id string, confirmDiscard bool) error {
	rec, ok := sc.cache.Find(sc.schema.Kind, strings.TrimSpace(id))
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrRowNotFound, sc.schema.Name, id)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	next, err := sc.session.Edit(rec, confirmDiscard)
	if err != nil {
		return err
	}
	sc.session = next
	return nil
}

func (sc *Screen) Cancel() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.session = sc.session.Cancel()
}

// Submit crea (Idle/Drafting) o actualiza (Editing) con el draft completo.
// Si la mutación falla, la sesión y el cache quedan como estaban. Si la
// recarga posterior falla solo se notifica.
func (sc *Screen) Submit(ctx context.Context) error {
	sess := sc.Session()
	payload := sess.Payload()

	var (
		op  = resources.OpCreate
		err error
	)
	if sess.State() == editsession.StateEditing {
		op = resources.OpUpdate
		_, err = sc.client.Update(ctx, sc.schema.Kind, sess.ID(), payload)
	} else {
		_, err = sc.client.Create(ctx, sc.schema.Kind, payload)
	}
	if err != nil {
		sc.fail(err)
		return err
	}

	sc.mu.Lock()
	// Si la sesión cambió mientras tanto, no se pisa.
	if sc.session.Rev() == sess.Rev() {
		sc.session = sc.session.Submitted()
	}
	sc.mu.Unlock()

	sc.succeed(op, sess.ID())
	_ = sc.Refresh(ctx)
	return nil
}

// Delete borra la fila id. Si era la fila en edición, la sesión se cancela.
func (sc *Screen) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if err := sc.client.Delete(ctx, sc.schema.Kind, id); err != nil {
		sc.fail(err)
		return err
	}

	sc.mu.Lock()
	if sc.session.Editing(id) {
		sc.session = sc.session.Cancel()
	}
	sc.mu.Unlock()

	sc.succeed(resources.OpDelete, id)
	_ = sc.Refresh(ctx)
	return nil
}

// Search reemplaza la colección principal con el resultado de variant.
func (sc *Screen) Search(ctx context.Context, variant string, params map[string]string) error {
	applied, err := sc.search.Search(ctx, sc.schema.Kind, variant, params)
	if err != nil {
		sc.fail(err)
		return err
	}
	if !applied {
		sc.log.Debug("stale search response discarded", map[string]any{"variant": variant})
	}
	return nil
}

// ShowAll quita el filtro y vuelve a listar.
func (sc *Screen) ShowAll(ctx context.Context) error {
	applied, err := sc.search.ShowAll(ctx, sc.schema.Kind)
	if err != nil {
		sc.fail(err)
		return err
	}
	if !applied {
		sc.log.Debug("stale list response discarded", nil)
	}
	return nil
}

// Refresh relista la colección principal después de una mutación.
func (sc *Screen) Refresh(ctx context.Context) error {
	return sc.ShowAll(ctx)
}

// View es la foto serializable de la pantalla.
type View struct {
	Kind          entity.Kind        `json:"kind"`
	Title         string             `json:"title"`
	Loaded        bool               `json:"loaded"`
	LoadedAt      *time.Time         `json:"loaded_at,omitempty"`
	Filter        *collection.Filter `json:"filter"`
	Rows          []relation.Row     `json:"rows"`
	Session       editsession.View   `json:"session"`
	Notifications []Notification     `json:"notifications"`
}

func (sc *Screen) View() View {
	snap := sc.cache.Get(sc.schema.Kind)
	v := View{
		Kind:          sc.schema.Kind,
		Title:         sc.schema.Title(),
		Loaded:        snap.Loaded,
		Filter:        snap.Filter,
		Rows:          sc.Rows(),
		Session:       sc.Session().View(),
		Notifications: sc.feed.List(),
	}
	if snap.Loaded {
		at := snap.LoadedAt.UTC()
		v.LoadedAt = &at
	}
	return v
}

func (sc *Screen) fail(err error) {
	f, ok := resources.AsFailure(err)
	if !ok {
		f = resources.Fail(resources.OpFetch, sc.schema, "", 0, err)
	}
	sc.feed.Push(LevelError, f.Op, f.Message)

	fields := map[string]any{
		"op":      string(f.Op),
		"kind":    string(f.Kind),
		"message": f.Message,
	}
	if f.Status != 0 {
		fields["status"] = f.Status
	}
	if f.Err != nil {
		fields["error"] = f.Err.Error()
	}
	sc.log.Error("operation failed", fields)
}

func (sc *Screen) succeed(op resources.Op, id string) {
	var verb string
	switch op {
	case resources.OpCreate:
		verb = "created"
	case resources.OpUpdate:
		verb = "updated"
	case resources.OpDelete:
		verb = "deleted"
	}
	sc.feed.Push(LevelSuccess, op, fmt.Sprintf("%s %s successfully!", sc.schema.Title(), verb))
	sc.log.Info(sc.schema.Name+" "+verb, map[string]any{"id": id})
}
