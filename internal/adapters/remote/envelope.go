package remote

import (
	"bytes"
	"encoding/json"

	"vet-console/internal/domain/entity"
)

// envelope es la respuesta paginada {"content": [...]}.
type envelope struct {
	Content json.RawMessage `json:"content"`
}

// DecodeEnvelope valida el envelope y devuelve los registros en el orden del
// servidor. Un body que no es objeto, un content ausente o que no es array da
// una colección vacía, nunca un error. Elementos que no son objetos se descartan.
func DecodeEnvelope(raw []byte) []entity.Record {
	out := make([]entity.Record, 0)

	var env envelope
	if err := decodeNumbers(raw, &env); err != nil {
		return out
	}

	var items []json.RawMessage
	if err := json.Unmarshal(env.Content, &items); err != nil {
		return out
	}

	for _, item := range items {
		if r := DecodeRecord(item); r != nil {
			out = append(out, r)
		}
	}
	return out
}

// DecodeRecord decodifica un objeto JSON (nil si no es un objeto).
func DecodeRecord(raw []byte) entity.Record {
	var m map[string]any
	if err := decodeNumbers(raw, &m); err != nil || m == nil {
		return nil
	}
	return entity.Record(m)
}

func decodeNumbers(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}
