package screen

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"vet-console/internal/ports/resources"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification es un aviso para el operador. Cada falla produce exactamente una.
type Notification struct {
	ID      string       `json:"id"`
	Level   Level        `json:"level"`
	Op      resources.Op `json:"op,omitempty"`
	Message string       `json:"message"`
	At      time.Time    `json:"at"`
}

// Feed guarda las últimas notificaciones (las más viejas se descartan).
type Feed struct {
	mu    sync.Mutex
	items []Notification
	limit int
	now   func() time.Time
}

func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = 50
	}
	return &Feed{limit: limit, now: time.Now}
}

func (f *Feed) Push(level Level, op resources.Op, msg string) Notification {
	n := Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Op:      op,
		Message: msg,
		At:      f.now().UTC(),
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, n)
	if over := len(f.items) - f.limit; over > 0 {
		f.items = append([]Notification(nil), f.items[over:]...)
	}
	return n
}

// List devuelve las notificaciones en orden de llegada.
func (f *Feed) List() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Notification, len(f.items))
	copy(out, f.items)
	return out
}
