package resources

import (
	"errors"
	"fmt"

	"vet-console/internal/domain/entity"
)

// Op clasifica en qué operación remota falló algo.
type Op string

const (
	OpFetch  Op = "FetchFailed"
	OpSearch Op = "SearchFailed"
	OpCreate Op = "CreateFailed"
	OpUpdate Op = "UpdateFailed"
	OpDelete Op = "DeleteFailed"
)

var (
	ErrFetchFailed  = errors.New("fetch failed")
	ErrSearchFailed = errors.New("search failed")
	ErrCreateFailed = errors.New("create failed")
	ErrUpdateFailed = errors.New("update failed")
	ErrDeleteFailed = errors.New("delete failed")
)

func (op Op) sentinel() error {
	switch op {
	case OpFetch:
		return ErrFetchFailed
	case OpSearch:
		return ErrSearchFailed
	case OpCreate:
		return ErrCreateFailed
	case OpUpdate:
		return ErrUpdateFailed
	case OpDelete:
		return ErrDeleteFailed
	default:
		return nil
	}
}

// Failure es el único error que ve el usuario por una llamada remota fallida.
// Message es el mensaje del servidor si vino, si no un fallback genérico.
type Failure struct {
	Op      Op
	Kind    entity.Kind
	Message string
	Status  int // 0 si no hubo respuesta HTTP
	Err     error
}

func (f *Failure) Error() string {
	if f.Status != 0 {
		return fmt.Sprintf("%s (%s, status=%d): %s", f.Op, f.Kind, f.Status, f.Message)
	}
	return fmt.Sprintf("%s (%s): %s", f.Op, f.Kind, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

// Is permite errors.Is(err, ErrCreateFailed) y similares.
func (f *Failure) Is(target error) bool {
	s := f.Op.sentinel()
	return s != nil && target == s
}

// Fail arma un Failure. Si msg viene vacío usa el fallback del op.
func Fail(op Op, s entity.Schema, msg string, status int, err error) *Failure {
	if msg == "" {
		msg = Fallback(op, s)
	}
	return &Failure{
		Op:      op,
		Kind:    s.Kind,
		Message: msg,
		Status:  status,
		Err:     err,
	}
}

// Fallback es el mensaje genérico por op ("Failed to create animal.").
func Fallback(op Op, s entity.Schema) string {
	name := s.Name
	plural := s.Plural
	if name == "" {
		name = string(s.Kind)
	}
	if plural == "" {
		plural = string(s.Kind)
	}
	switch op {
	case OpFetch:
		return "Failed to fetch " + plural + "."
	case OpSearch:
		return "Failed to search " + plural + "."
	case OpCreate:
		return "Failed to create " + name + "."
	case OpUpdate:
		return "Failed to update " + name + "."
	case OpDelete:
		return "Failed to delete " + name + "."
	default:
		return "Request failed."
	}
}

// AsFailure extrae el Failure de err, si lo hay.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
