package entity

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidSchema = errors.New("invalid schema")

// Registry es el conjunto de schemas conocidos. Se arma con Builder y es
// de solo lectura después de Build.
type Registry struct {
	schemas map[Kind]Schema
	order   []Kind
}

type Builder struct {
	schemas []Schema
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Register(s Schema) *Builder {
	b.schemas = append(b.schemas, s)
	return b
}

// Build valida los schemas (kinds únicos, refs a kinds registrados,
// cadenas derivadas válidas) y devuelve el Registry.
func (b *Builder) Build() (*Registry, error) {
	reg := &Registry{schemas: make(map[Kind]Schema, len(b.schemas))}

	for _, s := range b.schemas {
		if strings.TrimSpace(string(s.Kind)) == "" {
			return nil, fmt.Errorf("%w: empty kind", ErrInvalidSchema)
		}
		if _, dup := reg.schemas[s.Kind]; dup {
			return nil, fmt.Errorf("%w: duplicate kind %q", ErrInvalidSchema, s.Kind)
		}
		if !strings.HasPrefix(s.Path, "/") {
			return nil, fmt.Errorf("%w: %s path must start with /", ErrInvalidSchema, s.Kind)
		}
		if err := checkKeys(s); err != nil {
			return nil, err
		}
		reg.schemas[s.Kind] = s
		reg.order = append(reg.order, s.Kind)
	}

	for _, s := range b.schemas {
		for _, ref := range s.Refs {
			if _, ok := reg.schemas[ref.Kind]; !ok {
				return nil, fmt.Errorf("%w: %s.%s references unregistered kind %q", ErrInvalidSchema, s.Kind, ref.Key, ref.Kind)
			}
		}
		for _, d := range s.Derived {
			if _, err := reg.chainTarget(s, d.Via); err != nil {
				return nil, fmt.Errorf("%w: %s derived %q: %v", ErrInvalidSchema, s.Kind, d.Key, err)
			}
		}
	}

	return reg, nil
}

func checkKeys(s Schema) error {
	seen := map[string]struct{}{}
	for _, k := range s.Keys() {
		if strings.TrimSpace(k) == "" || k == "id" {
			return fmt.Errorf("%w: %s has invalid key %q", ErrInvalidSchema, s.Kind, k)
		}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: %s duplicate key %q", ErrInvalidSchema, s.Kind, k)
		}
		seen[k] = struct{}{}
	}
	names := map[string]struct{}{}
	for _, v := range s.Searches {
		if _, dup := names[v.Name]; dup || v.Name == "" {
			return fmt.Errorf("%w: %s invalid search %q", ErrInvalidSchema, s.Kind, v.Name)
		}
		names[v.Name] = struct{}{}
	}
	return nil
}

// Get devuelve el schema de kind.
func (r *Registry) Get(kind Kind) (Schema, bool) {
	s, ok := r.schemas[kind]
	return s, ok
}

// Lookup es Get pero con error tipado.
func (r *Registry) Lookup(kind Kind) (Schema, error) {
	s, ok := r.schemas[kind]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return s, nil
}

// Kinds en orden de registro.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, len(r.order))
	copy(out, r.order)
	return out
}

// Chain devuelve las refs que recorre una cadena derivada, en orden.
func (r *Registry) Chain(from Kind, via []string) ([]Ref, error) {
	s, err := r.Lookup(from)
	if err != nil {
		return nil, err
	}
	return r.chainTarget(s, via)
}

func (r *Registry) chainTarget(s Schema, via []string) ([]Ref, error) {
	if len(via) == 0 {
		return nil, errors.New("empty chain")
	}
	refs := make([]Ref, 0, len(via))
	cur := s
	for _, key := range via {
		ref, ok := cur.Ref(key)
		if !ok {
			return nil, fmt.Errorf("%s has no ref %q", cur.Kind, key)
		}
		next, ok := r.schemas[ref.Kind]
		if !ok {
			return nil, fmt.Errorf("unregistered kind %q", ref.Kind)
		}
		refs = append(refs, ref)
		cur = next
	}
	return refs, nil
}

// Dependencies devuelve los kinds auxiliares que necesita una pantalla de
// kind para resolver refs y cadenas derivadas (sin incluir kind). El orden
// es estable: primero los más profundos.
func (r *Registry) Dependencies(kind Kind) []Kind {
	s, ok := r.schemas[kind]
	if !ok {
		return nil
	}

	seen := map[Kind]bool{kind: true}
	var out []Kind
	var visit func(k Kind)
	visit = func(k Kind) {
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, k)
	}

	for _, d := range s.Derived {
		refs, err := r.chainTarget(s, d.Via)
		if err != nil {
			continue
		}
		for i := len(refs) - 1; i >= 0; i-- {
			visit(refs[i].Kind)
		}
	}
	for _, ref := range s.Refs {
		visit(ref.Kind)
	}
	return out
}
