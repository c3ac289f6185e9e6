package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnknownKind  = errors.New("unknown entity kind")
	ErrUnknownField = errors.New("unknown field")
)

// Draft son los valores de formulario (todavía sin guardar) de un create o edit.
// Las refs se guardan como el id referenciado.
type Draft map[string]string

// BlankDraft devuelve un draft con todas las keys del schema en "".
func BlankDraft(s Schema) Draft {
	d := make(Draft, len(s.Fields)+len(s.Refs))
	for _, k := range s.Keys() {
		d[k] = ""
	}
	return d
}

// DraftFromRecord carga en un draft los valores actuales de una fila.
func DraftFromRecord(s Schema, r Record) Draft {
	d := BlankDraft(s)
	for _, f := range s.Fields {
		d[f.Key] = r.String(f.Key)
	}
	for _, ref := range s.Refs {
		d[ref.Key] = r.RefID(ref)
	}
	return d
}

func (d Draft) Clone() Draft {
	if d == nil {
		return nil
	}
	out := make(Draft, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func (d Draft) Equal(o Draft) bool {
	if len(d) != len(o) {
		return false
	}
	for k, v := range d {
		ov, ok := o[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Encode arma el body completo de create/update a partir del draft.
// Nunca es un patch parcial: todas las keys del schema viajan.
func Encode(s Schema, d Draft) (map[string]any, error) {
	body := make(map[string]any, len(s.Fields)+len(s.Refs))

	for _, f := range s.Fields {
		raw := strings.TrimSpace(d[f.Key])
		if f.Type != FieldNumber {
			body[f.Key] = d[f.Key]
			continue
		}
		if raw == "" {
			body[f.Key] = nil
			continue
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidInput, f.Key)
		}
		if f.NonNegative && n < 0 {
			return nil, fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, f.Key)
		}
		body[f.Key] = json.Number(strconv.FormatFloat(n, 'f', -1, 64))
	}

	for _, ref := range s.Refs {
		id := strings.TrimSpace(d[ref.Key])
		if id == "" {
			body[ref.Key] = nil
			continue
		}
		switch ref.Wire {
		case WireFlat:
			body[ref.Key] = id
		default:
			body[ref.Key] = map[string]any{"id": id}
		}
	}

	return body, nil
}
