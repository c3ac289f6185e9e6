package entity

import (
	"strings"
)

// Kind identifica un tipo de entidad remota (customer, animal, ...).
type Kind string

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldDate     FieldType = "date"
	FieldDateTime FieldType = "datetime"
	FieldNumber   FieldType = "number"
)

// Field es un campo editable propio de la entidad.
type Field struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Type  FieldType `json:"type"`

	// Solo aplica a FieldNumber.
	NonNegative bool `json:"non_negative,omitempty"`
}

// RefWire define cómo viaja una referencia en el JSON.
type RefWire string

const (
	// WireNested: {"customer": {"id": 7}}
	WireNested RefWire = "nested"
	// WireFlat: {"doctorId": 7}
	WireFlat RefWire = "flat"
)

// Ref es un campo que apunta a otra entidad por id.
type Ref struct {
	Key      string  `json:"key"`
	Label    string  `json:"label"`
	Kind     Kind    `json:"kind"`
	Wire     RefWire `json:"wire"`
	Optional bool    `json:"optional,omitempty"`
}

// Derived es una referencia encadenada solo para mostrar
// (ej: report -> appointment -> doctor).
// Via lista las keys de Ref a recorrer, empezando por una Ref de este schema.
type Derived struct {
	Key   string   `json:"key"`
	Label string   `json:"label"`
	Via   []string `json:"via"`
}

// FilterShape es el conjunto cerrado de formas de búsqueda.
type FilterShape string

const (
	ShapeByName         FilterShape = "by_name"
	ShapeByRelated      FilterShape = "by_related"
	ShapeByRelatedRange FilterShape = "by_related_range"
	ShapeByRange        FilterShape = "by_range"
)

// SearchVariant mapea un filtro a un endpoint de búsqueda.
type SearchVariant struct {
	Name   string      `json:"name"`
	Path   string      `json:"path"` // relativo al Path del schema, ej: "/searchByName"
	Shape  FilterShape `json:"shape"`
	Params []string    `json:"params"`
}

// Schema describe un tipo de entidad: campos, endpoints y referencias.
type Schema struct {
	Kind   Kind   `json:"kind"`
	Name   string `json:"name"`   // singular, ej: "animal"
	Plural string `json:"plural"` // ej: "animals"
	Path   string `json:"path"`   // ej: "/api/v1/animals"

	Fields   []Field         `json:"fields"`
	Refs     []Ref           `json:"refs"`
	Derived  []Derived       `json:"derived,omitempty"`
	Searches []SearchVariant `json:"searches,omitempty"`

	// Label arma el texto para mostrar un registro de este tipo.
	// Si es nil se usa "name" y, si no existe, el id.
	Label func(Record) string `json:"-"`
}

func (s Schema) Field(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

func (s Schema) Ref(key string) (Ref, bool) {
	for _, r := range s.Refs {
		if r.Key == key {
			return r, true
		}
	}
	return Ref{}, false
}

func (s Schema) Search(name string) (SearchVariant, bool) {
	for _, v := range s.Searches {
		if v.Name == name {
			return v, true
		}
	}
	return SearchVariant{}, false
}

// Keys devuelve todas las keys editables (campos + refs) en orden.
func (s Schema) Keys() []string {
	out := make([]string, 0, len(s.Fields)+len(s.Refs))
	for _, f := range s.Fields {
		out = append(out, f.Key)
	}
	for _, r := range s.Refs {
		out = append(out, r.Key)
	}
	return out
}

// HasKey indica si key es un campo o una ref del schema.
func (s Schema) HasKey(key string) bool {
	if _, ok := s.Field(key); ok {
		return true
	}
	_, ok := s.Ref(key)
	return ok
}

// DisplayLabel devuelve el label de r según el schema.
func (s Schema) DisplayLabel(r Record) string {
	if s.Label != nil {
		if l := strings.TrimSpace(s.Label(r)); l != "" {
			return l
		}
	}
	if n := strings.TrimSpace(r.String("name")); n != "" {
		return n
	}
	return r.ID()
}

// Title es el nombre singular capitalizado ("Animal").
func (s Schema) Title() string {
	return capitalize(s.Name)
}

// FallbackLabel es el texto que se muestra cuando una referencia a este tipo
// no se puede resolver.
func (s Schema) FallbackLabel() string {
	return "Unknown " + s.Title()
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
