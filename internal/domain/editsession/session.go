// Package editsession modela el formulario de una pantalla como un valor
// inmutable: cada transición devuelve una Session nueva.
package editsession

import (
	"errors"
	"fmt"
	"strings"

	"vet-console/internal/domain/entity"
)

var ErrUnsavedChanges = errors.New("unsaved changes")

type State string

const (
	StateIdle     State = "idle"
	StateDrafting State = "drafting"
	StateEditing  State = "editing"
)

// Session es el estado del formulario. El zero value no sirve: usar New.
type Session struct {
	schema   entity.Schema
	state    State
	id       string
	draft    entity.Draft
	original entity.Draft
	rev      uint64
}

// New devuelve una sesión Idle con el formulario en blanco.
func New(s entity.Schema) Session {
	return Session{
		schema: s,
		state:  StateIdle,
		draft:  entity.BlankDraft(s),
	}
}

func (s Session) State() State { return s.state }
func (s Session) Kind() entity.Kind { return s.schema.Kind }

// ID es el id del registro en edición ("" fuera de Editing).
func (s Session) ID() string { return s.id }

// Rev cambia en cada transición.
func (s Session) Rev() uint64 { return s.rev }

// Draft devuelve una copia de los valores del formulario.
func (s Session) Draft() entity.Draft { return s.draft.Clone() }

// Editing indica si id es la fila en edición.
func (s Session) Editing(id string) bool {
	return s.state == StateEditing && id != "" && s.id == id
}

// Dirty indica si hay cambios sin guardar.
func (s Session) Dirty() bool {
	switch s.state {
	case StateDrafting:
		return !s.draft.Equal(entity.BlankDraft(s.schema))
	case StateEditing:
		return !s.draft.Equal(s.original)
	default:
		return false
	}
}

// Set cambia un valor del formulario. En Idle pasa a Drafting.
func (s Session) Set(key, value string) (Session, error) {
	return s.SetAll(map[string]string{key: value})
}

// SetAll aplica varios valores de una vez; si alguna key no existe no se
// aplica ninguno.
func (s Session) SetAll(values map[string]string) (Session, error) {
	for k := range values {
		if !s.schema.HasKey(k) {
			return s, fmt.Errorf("%w: %s has no field %q", entity.ErrUnknownField, s.schema.Name, k)
		}
	}
	if len(values) == 0 {
		return s, nil
	}

	next := s.next()
	next.draft = s.draft.Clone()
	for k, v := range values {
		next.draft[k] = v
	}
	if next.state == StateIdle {
		next.state = StateDrafting
	}
	return next, nil
}

// Edit carga rec en el formulario. Si ya se está editando otra fila con
// cambios sin guardar, hace falta confirmDiscard.
func (s Session) Edit(rec entity.Record, confirmDiscard bool) (Session, error) {
	id := strings.TrimSpace(rec.ID())
	if id == "" {
		return s, fmt.Errorf("%w: record without id", entity.ErrInvalidInput)
	}
	if s.state == StateEditing && s.Dirty() && !confirmDiscard {
		return s, fmt.Errorf("%w: %s %s", ErrUnsavedChanges, s.schema.Name, s.id)
	}

	next := s.next()
	next.state = StateEditing
	next.id = id
	next.original = entity.DraftFromRecord(s.schema, rec)
	next.draft = next.original.Clone()
	return next, nil
}

// Cancel descarta el formulario. No hay llamada remota.
func (s Session) Cancel() Session {
	return s.reset()
}

// Submitted vuelve a Idle después de un create/update exitoso.
func (s Session) Submitted() Session {
	return s.reset()
}

// Payload es el draft completo que se manda en create/update: los campos
// no tocados conservan el valor de la fila original.
func (s Session) Payload() entity.Draft {
	out := entity.BlankDraft(s.schema)
	for k, v := range s.original {
		out[k] = v
	}
	for k, v := range s.draft {
		out[k] = v
	}
	return out
}

func (s Session) reset() Session {
	next := s.next()
	next.state = StateIdle
	next.id = ""
	next.original = nil
	next.draft = entity.BlankDraft(s.schema)
	return next
}

func (s Session) next() Session {
	n := s
	n.rev++
	return n
}

// View es la forma serializable de la sesión.
type View struct {
	State State        `json:"state"`
	ID    string       `json:"id,omitempty"`
	Draft entity.Draft `json:"draft"`
	Dirty bool         `json:"dirty"`
}

func (s Session) View() View {
	return View{
		State: s.state,
		ID:    s.id,
		Draft: s.draft.Clone(),
		Dirty: s.Dirty(),
	}
}
