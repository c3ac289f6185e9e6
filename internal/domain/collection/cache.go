package collection

import (
	"sync"
	"time"

	"vet-console/internal/domain/entity"
)

// Filter es el filtro de búsqueda activo de una colección (nil = sin filtro).
type Filter struct {
	Variant string            `json:"variant"`
	Params  map[string]string `json:"params"`
}

func (f *Filter) clone() *Filter {
	if f == nil {
		return nil
	}
	p := make(map[string]string, len(f.Params))
	for k, v := range f.Params {
		p[k] = v
	}
	return &Filter{Variant: f.Variant, Params: p}
}

// Ticket identifica una lectura en vuelo para un kind.
type Ticket struct {
	Kind entity.Kind
	Seq  uint64
}

// Snapshot es la última verdad conocida del servidor para un kind.
type Snapshot struct {
	Kind     entity.Kind
	Records  []entity.Record
	Filter   *Filter
	Loaded   bool
	LoadedAt time.Time
	Seq      uint64
}

type entry struct {
	records  []entity.Record
	filter   *Filter
	loadedAt time.Time
	seq      uint64
}

// tickets lleva la secuencia emitida de un kind y las lecturas en vuelo.
type tickets struct {
	issued  uint64
	pending map[uint64]struct{}
}

// Cache guarda una colección por kind. El reemplazo es completo (sin diffs)
// y solo lo aplica la lectura más nueva que sigue viva: una respuesta vieja
// que llega tarde se descarta, y una lectura que falla (Abandon) deja de
// bloquear a las anteriores.
type Cache struct {
	mu      sync.RWMutex
	tickets map[entity.Kind]*tickets
	entries map[entity.Kind]*entry
	now     func() time.Time
}

func New() *Cache {
	return &Cache{
		tickets: make(map[entity.Kind]*tickets),
		entries: make(map[entity.Kind]*entry),
		now:     time.Now,
	}
}

// Begin emite un ticket nuevo para una lectura de kind.
func (c *Cache) Begin(kind entity.Kind) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	tk, ok := c.tickets[kind]
	if !ok {
		tk = &tickets{pending: make(map[uint64]struct{})}
		c.tickets[kind] = tk
	}
	tk.issued++
	tk.pending[tk.issued] = struct{}{}
	return Ticket{Kind: kind, Seq: tk.issued}
}

// Latest indica si ninguna lectura más nueva que t está en vuelo o aplicada.
func (c *Cache) Latest(t Ticket) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest(t)
}

// Commit reemplaza la colección con records si t es la lectura viva más
// nueva. Devuelve false si la respuesta quedó vieja y se descartó.
func (c *Cache) Commit(t Ticket, records []entity.Record, filter *Filter) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ok := c.latest(t)
	if e, committed := c.entries[t.Kind]; committed && e.seq == t.Seq {
		ok = false
	}
	c.release(t)
	if !ok {
		return false
	}

	c.entries[t.Kind] = &entry{
		records:  cloneRecords(records),
		filter:   filter.clone(),
		loadedAt: c.now(),
		seq:      t.Seq,
	}
	return true
}

// Abandon libera el ticket de una lectura fallida sin tocar la colección.
func (c *Cache) Abandon(t Ticket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.release(t)
}

func (c *Cache) latest(t Ticket) bool {
	if e, ok := c.entries[t.Kind]; ok && e.seq > t.Seq {
		return false
	}
	tk, ok := c.tickets[t.Kind]
	if !ok {
		return false
	}
	for seq := range tk.pending {
		if seq > t.Seq {
			return false
		}
	}
	return true
}

func (c *Cache) release(t Ticket) {
	if tk, ok := c.tickets[t.Kind]; ok {
		delete(tk.pending, t.Seq)
	}
}

// Get devuelve una copia de la colección de kind.
func (c *Cache) Get(kind entity.Kind) Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[kind]
	if !ok {
		return Snapshot{Kind: kind, Records: []entity.Record{}}
	}
	return Snapshot{
		Kind:     kind,
		Records:  cloneRecords(e.records),
		Filter:   e.filter.clone(),
		Loaded:   true,
		LoadedAt: e.loadedAt,
		Seq:      e.seq,
	}
}

// Records devuelve una copia de los registros de kind (vacío si no se cargó).
func (c *Cache) Records(kind entity.Kind) []entity.Record {
	return c.Get(kind).Records
}

// Find busca un registro por id en la colección de kind.
func (c *Cache) Find(kind entity.Kind, id string) (entity.Record, bool) {
	if id == "" {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[kind]
	if !ok {
		return nil, false
	}
	for _, r := range e.records {
		if r.ID() == id {
			return r.Clone(), true
		}
	}
	return nil, false
}

func cloneRecords(in []entity.Record) []entity.Record {
	out := make([]entity.Record, 0, len(in))
	for _, r := range in {
		out = append(out, r.Clone())
	}
	return out
}
