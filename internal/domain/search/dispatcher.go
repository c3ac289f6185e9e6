package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vet-console/internal/domain/collection"
	"vet-console/internal/domain/entity"
	"vet-console/internal/ports/resources"
)

const dateLayout = "2006-01-02"

// Dispatcher manda cada filtro a su endpoint y reemplaza la colección con
// el resultado. Los filtros no se combinan: cada búsqueda reemplaza la anterior.
type Dispatcher struct {
	client resources.Client
	cache  *collection.Cache
	reg    *entity.Registry
}

func NewDispatcher(client resources.Client, cache *collection.Cache, reg *entity.Registry) *Dispatcher {
	return &Dispatcher{client: client, cache: cache, reg: reg}
}

// Search ejecuta variant con params. applied es false si la respuesta llegó
// después de una lectura más nueva y se descartó. Si la búsqueda falla, su
// ticket se libera y una lectura anterior todavía en vuelo puede aplicarse.
func (d *Dispatcher) Search(ctx context.Context, kind entity.Kind, variant string, params map[string]string) (applied bool, err error) {
	s, err := d.reg.Lookup(kind)
	if err != nil {
		return false, resources.Fail(resources.OpSearch, entity.Schema{Kind: kind}, "", 0, err)
	}
	v, clean, err := Validate(s, variant, params)
	if err != nil {
		return false, err
	}

	t := d.cache.Begin(kind)
	records, err := d.client.Search(ctx, kind, v.Name, clean)
	if err != nil {
		d.cache.Abandon(t)
		return false, err
	}
	return d.cache.Commit(t, records, &collection.Filter{Variant: v.Name, Params: clean}), nil
}

// ShowAll vuelve a listar sin filtro.
func (d *Dispatcher) ShowAll(ctx context.Context, kind entity.Kind) (applied bool, err error) {
	t := d.cache.Begin(kind)
	records, err := d.client.List(ctx, kind)
	if err != nil {
		d.cache.Abandon(t)
		return false, err
	}
	return d.cache.Commit(t, records, nil), nil
}

// Validate revisa variant y params sin tocar la red. Devuelve solo los
// params declarados, sin espacios alrededor.
func Validate(s entity.Schema, variant string, params map[string]string) (entity.SearchVariant, map[string]string, error) {
	v, ok := s.Search(variant)
	if !ok {
		return v, nil, invalid(s, fmt.Sprintf("Unknown search %q for %s.", variant, s.Plural))
	}

	clean := make(map[string]string, len(v.Params))
	var missing []string
	for _, p := range v.Params {
		val := strings.TrimSpace(params[p])
		if val == "" {
			missing = append(missing, p)
			continue
		}
		clean[p] = val
	}
	if len(missing) > 0 {
		return v, nil, invalid(s, "Missing search parameters: "+strings.Join(missing, ", ")+".")
	}

	switch v.Shape {
	case entity.ShapeByRange, entity.ShapeByRelatedRange:
		start, errStart := time.Parse(dateLayout, clean["startDate"])
		end, errEnd := time.Parse(dateLayout, clean["endDate"])
		if errStart == nil && errEnd == nil && end.Before(start) {
			return v, nil, invalid(s, "Start date must not be after end date.")
		}
	}

	return v, clean, nil
}

func invalid(s entity.Schema, msg string) error {
	return resources.Fail(resources.OpSearch, s, msg, 0, entity.ErrInvalidInput)
}
