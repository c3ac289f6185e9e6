// Package relation resuelve referencias por id a labels para mostrar,
// usando solo colecciones ya cargadas. Nunca dispara un fetch y nunca falla:
// lo que no se puede resolver cae en "Unknown <Kind>".
package relation

import (
	"vet-console/internal/domain/entity"
)

// Source es de donde salen las colecciones auxiliares (el cache de la pantalla).
type Source interface {
	Find(kind entity.Kind, id string) (entity.Record, bool)
	Records(kind entity.Kind) []entity.Record
}

type Resolver struct {
	reg *entity.Registry
	src Source
}

func NewResolver(reg *entity.Registry, src Source) *Resolver {
	return &Resolver{reg: reg, src: src}
}

// Row es un registro listo para mostrar.
type Row struct {
	ID      string            `json:"id"`
	Record  entity.Record     `json:"record"`
	Labels  map[string]string `json:"labels"`
	Editing bool              `json:"editing"`
}

// Option es una entrada de un selector de referencia.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Rows anota cada registro con los labels de sus refs y cadenas derivadas.
// El orden de records se respeta.
func (r *Resolver) Rows(kind entity.Kind, records []entity.Record) []Row {
	s, ok := r.reg.Get(kind)
	out := make([]Row, 0, len(records))
	for _, rec := range records {
		row := Row{ID: rec.ID(), Record: rec, Labels: map[string]string{}}
		if ok {
			for _, ref := range s.Refs {
				row.Labels[ref.Key] = r.RefLabel(ref, rec)
			}
			for _, d := range s.Derived {
				row.Labels[d.Key] = r.DerivedLabel(s, d, rec)
			}
		}
		out = append(out, row)
	}
	return out
}

// RefLabel resuelve una ref directa de rec.
func (r *Resolver) RefLabel(ref entity.Ref, rec entity.Record) string {
	return r.Label(ref.Kind, rec.RefID(ref))
}

// Label resuelve id de kind a su label, o el fallback si no está cargado.
// Un id vacío (ref opcional ausente) cae en el mismo fallback.
func (r *Resolver) Label(kind entity.Kind, id string) string {
	s, ok := r.reg.Get(kind)
	if !ok {
		return "Unknown"
	}
	target, found := r.src.Find(kind, id)
	if !found {
		return s.FallbackLabel()
	}
	return s.DisplayLabel(target)
}

// DerivedLabel recorre la cadena d.Via desde rec (ej: report -> appointment
// -> doctor). Si algún eslabón falta, devuelve el fallback del kind final.
func (r *Resolver) DerivedLabel(s entity.Schema, d entity.Derived, rec entity.Record) string {
	refs, err := r.reg.Chain(s.Kind, d.Via)
	if err != nil || len(refs) == 0 {
		return "Unknown"
	}

	last := refs[len(refs)-1]
	cur := rec
	for i, ref := range refs {
		id := cur.RefID(ref)
		if i == len(refs)-1 {
			return r.Label(last.Kind, id)
		}
		next, found := r.src.Find(ref.Kind, id)
		if !found {
			break
		}
		cur = next
	}

	final, _ := r.reg.Get(last.Kind)
	return final.FallbackLabel()
}

// Options arma las opciones de un selector a partir de la colección de kind.
func (r *Resolver) Options(kind entity.Kind) []Option {
	s, ok := r.reg.Get(kind)
	records := r.src.Records(kind)
	out := make([]Option, 0, len(records))
	for _, rec := range records {
		label := rec.ID()
		if ok {
			label = s.DisplayLabel(rec)
		}
		out = append(out, Option{ID: rec.ID(), Label: label})
	}
	return out
}
