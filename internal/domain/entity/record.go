package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record es un registro tal como lo devuelve el servicio remoto.
// Se decodifica con UseNumber, así que los ids numéricos llegan como json.Number.
type Record map[string]any

// ID devuelve el identificador normalizado a string ("" si no tiene).
func (r Record) ID() string {
	if r == nil {
		return ""
	}
	return scalarString(r["id"])
}

// Value busca un valor por path con puntos ("doctor.name").
func (r Record) Value(path string) (any, bool) {
	if r == nil {
		return nil, false
	}
	var cur any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		v, exists := m[part]
		if !exists {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// String devuelve el valor del path formateado para mostrar ("" si no existe).
func (r Record) String(path string) string {
	v, ok := r.Value(path)
	if !ok {
		return ""
	}
	return scalarString(v)
}

// RefID extrae el id referenciado según el wire de la ref.
func (r Record) RefID(ref Ref) string {
	v, ok := r[ref.Key]
	if !ok || v == nil {
		return ""
	}
	if ref.Wire == WireFlat {
		return scalarString(v)
	}
	m, ok := asMap(v)
	if !ok {
		// Algunos backends mandan el id pelado aunque el request sea anidado.
		return scalarString(v)
	}
	return scalarString(m["id"])
}

// Clone copia el registro (maps y slices anidados incluidos).
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return cloneValue(map[string]any(r)).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = cloneValue(vv)
		}
		return out
	case Record:
		return Record(cloneValue(map[string]any(t)).(map[string]any))
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = cloneValue(vv)
		}
		return out
	default:
		return v
	}
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Record:
		return map[string]any(t), true
	default:
		return nil, false
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any, []any, Record:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
